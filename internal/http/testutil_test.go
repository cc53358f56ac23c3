package http

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sujalbistaa/sonymous/internal/likeguard"
	"github.com/sujalbistaa/sonymous/internal/models"
)

const testSecret = "test-secret"

func newTestEnv(t *testing.T) (*gin.Engine, *Env) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	database, err := gorm.Open(
		sqlite.Open(filepath.Join(t.TempDir(), "test.db")),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
	)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(
		&models.Message{},
		&models.Admin{},
		&models.AdminToken{},
		&models.Announcement{},
	))

	env := &Env{
		DB:     database,
		Guard:  likeguard.New(nil),
		Secret: []byte(testSecret),
	}
	router := gin.New()
	SetupRoutes(router, env, "http://localhost:3000")
	return router, env
}

// doJSON performs a request against the router and returns the recorder.
// body may be nil; a non-nil body is JSON-encoded.
func doJSON(t *testing.T, router *gin.Engine, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func seedMessage(t *testing.T, env *Env, m models.Message) models.Message {
	t.Helper()
	if m.IPHash == "" {
		m.IPHash = strings.Repeat("a", 64)
	}
	require.NoError(t, env.DB.Create(&m).Error)
	return m
}

func seedAdminAccount(t *testing.T, env *Env, email, password string) models.Admin {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	admin := models.Admin{Name: "Daniel", Email: email, PasswordHash: string(hash)}
	require.NoError(t, env.DB.Create(&admin).Error)
	return admin
}

// loginToken authenticates through the API and returns the bearer token.
func loginToken(t *testing.T, router *gin.Engine, email, password string) string {
	t.Helper()
	w := doJSON(t, router, "POST", "/api/admin/login", gin.H{"email": email, "password": password}, "")
	require.Equal(t, 200, w.Code, w.Body.String())
	data := decodeBody(t, w)["data"].(map[string]any)
	token, _ := data["token"].(string)
	require.NotEmpty(t, token)
	return token
}
