package http

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// stripTags removes HTML/script tags but keeps their inner text, so
// `<script>alert("x")</script>hi` becomes `alert("x")hi`. Stored content is
// plain text; this is the XSS defense for anything a browser later renders.
func stripTags(s string) string {
	return tagPattern.ReplaceAllString(s, "")
}

// sanitizeFilter prepares a user-supplied filter value for an exact-match
// query. A mangled value just matches nothing; it never errors.
func sanitizeFilter(s string) string {
	return strings.TrimSpace(stripTags(s))
}

// hashAddr pseudonymizes a client address with HMAC-SHA256 under the server
// secret. The raw address is never stored, and the keyed hash resists
// rainbow-table reversal.
func hashAddr(addr string, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(addr))
	return hex.EncodeToString(mac.Sum(nil))
}
