package http

import (
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/sujalbistaa/sonymous/internal/models"
)

const adminContextKey = "admin"

// AdminAuthMiddleware authenticates the Bearer token against the issued
// token table and stashes the admin on the context. The answer is always a
// plain 401; it never says whether the token was missing, stale or revoked.
func (e *Env) AdminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			abortError(c, http.StatusUnauthorized, "Unauthenticated.")
			return
		}

		var issued models.AdminToken
		err := e.DB.Where("token_hash = ?", hashToken(token)).First(&issued).Error
		var admin models.Admin
		if err == nil {
			err = e.DB.First(&admin, issued.AdminID).Error
		}
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				abortError(c, http.StatusInternalServerError, "Failed to authenticate.")
				return
			}
			abortError(c, http.StatusUnauthorized, "Unauthenticated.")
			return
		}

		c.Set(adminContextKey, admin)
		c.Next()
	}
}

// SecurityHeadersMiddleware adds the response headers every API reply
// carries.
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "no-referrer")
		c.Next()
	}
}

// IPRateLimiter keeps one token-bucket limiter per client address. Each
// throttled route gets its own instance so the budgets are independent.
type IPRateLimiter struct {
	visitors map[string]*rate.Limiter
	mu       sync.Mutex
	rps      rate.Limit
	burst    int
}

// PerMinute builds a limiter allowing n requests per minute per IP.
func PerMinute(n int) *IPRateLimiter {
	return &IPRateLimiter{
		visitors: make(map[string]*rate.Limiter),
		rps:      rate.Limit(float64(n) / 60.0),
		burst:    n,
	}
}

func (rl *IPRateLimiter) getLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	limiter, exists := rl.visitors[ip]
	if !exists {
		limiter = rate.NewLimiter(rl.rps, rl.burst)
		rl.visitors[ip] = limiter
	}
	return limiter
}

// cleanup drops visitors whose buckets have refilled; they carry no state
// worth keeping.
func (rl *IPRateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, v := range rl.visitors {
		if v.Tokens() >= float64(rl.burst) {
			delete(rl.visitors, ip)
		}
	}
}

// StartCleanup evicts idle visitors on an interval, for the life of the
// process.
func (rl *IPRateLimiter) StartCleanup(interval time.Duration) {
	go func() {
		for {
			time.Sleep(interval)
			rl.cleanup()
		}
	}()
}

func RateLimitMiddleware(limiter *IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.getLimiter(c.ClientIP()).Allow() {
			abortError(c, http.StatusTooManyRequests, "Too many requests. Please wait.")
			return
		}
		c.Next()
	}
}
