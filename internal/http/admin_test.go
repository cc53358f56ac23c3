package http

import (
	"fmt"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sujalbistaa/sonymous/internal/models"
)

const (
	adminEmail    = "daniel@example.com"
	adminPassword = "correct-horse"
)

func TestAdminLogin(t *testing.T) {
	router, env := newTestEnv(t)
	admin := seedAdminAccount(t, env, adminEmail, adminPassword)

	w := doJSON(t, router, "POST", "/api/admin/login", gin.H{
		"email":    adminEmail,
		"password": adminPassword,
	}, "")

	require.Equal(t, 200, w.Code, w.Body.String())
	data := decodeBody(t, w)["data"].(map[string]any)
	assert.NotEmpty(t, data["token"])

	got := data["admin"].(map[string]any)
	assert.EqualValues(t, admin.ID, got["id"])
	assert.Equal(t, admin.Name, got["name"])
	assert.Equal(t, adminEmail, got["email"])
	assert.NotContains(t, got, "password")
	assert.NotContains(t, got, "password_hash")
}

func TestAdminLoginRejectsBadCredentials(t *testing.T) {
	router, env := newTestEnv(t)
	seedAdminAccount(t, env, adminEmail, adminPassword)

	// Wrong password and unknown account get the same answer.
	for _, body := range []gin.H{
		{"email": adminEmail, "password": "wrong"},
		{"email": "nobody@example.com", "password": adminPassword},
	} {
		w := doJSON(t, router, "POST", "/api/admin/login", body, "")
		assert.Equal(t, 401, w.Code)
		assert.Equal(t, "Invalid credentials.", decodeBody(t, w)["message"])
	}
}

func TestAdminLoginValidation(t *testing.T) {
	router, _ := newTestEnv(t)

	cases := []struct {
		name  string
		body  gin.H
		field string
	}{
		{"missing email", gin.H{"password": "secret"}, "email"},
		{"invalid email", gin.H{"email": "not-an-email", "password": "secret"}, "email"},
		{"missing password", gin.H{"email": adminEmail}, "password"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, router, "POST", "/api/admin/login", tc.body, "")
			require.Equal(t, 422, w.Code, w.Body.String())
			errs := decodeBody(t, w)["errors"].(map[string]any)
			assert.Contains(t, errs, tc.field)
		})
	}
}

func TestAdminLoginRevokesPreviousTokens(t *testing.T) {
	router, env := newTestEnv(t)
	seedAdminAccount(t, env, adminEmail, adminPassword)

	oldToken := loginToken(t, router, adminEmail, adminPassword)
	newToken := loginToken(t, router, adminEmail, adminPassword)

	w := doJSON(t, router, "GET", "/api/admin/messages", nil, oldToken)
	assert.Equal(t, 401, w.Code)

	w = doJSON(t, router, "GET", "/api/admin/messages", nil, newToken)
	assert.Equal(t, 200, w.Code)

	var count int64
	require.NoError(t, env.DB.Model(&models.AdminToken{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestAdminMessagesRequireAuth(t *testing.T) {
	router, _ := newTestEnv(t)

	w := doJSON(t, router, "GET", "/api/admin/messages", nil, "")
	assert.Equal(t, 401, w.Code)
	assert.Equal(t, "Unauthenticated.", decodeBody(t, w)["message"])

	w = doJSON(t, router, "GET", "/api/admin/messages", nil, "bogus-token")
	assert.Equal(t, 401, w.Code)

	w = doJSON(t, router, "DELETE", "/api/admin/messages/1", nil, "")
	assert.Equal(t, 401, w.Code)
}

func TestAdminGetMessages(t *testing.T) {
	router, env := newTestEnv(t)
	seedAdminAccount(t, env, adminEmail, adminPassword)
	token := loginToken(t, router, adminEmail, adminPassword)

	now := time.Date(2026, 2, 15, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	seedMessage(t, env, models.Message{Content: "kept", Category: strptr("fun"), CreatedAt: now.Add(-2 * time.Minute)})
	deleted := seedMessage(t, env, models.Message{Content: "moderated", CreatedAt: now.Add(-time.Minute), IsDeleted: true})
	seedMessage(t, env, models.Message{Content: "expired", CreatedAt: now, ExpiresAt: &past})

	// Unlike the public feed, the admin view includes everything.
	w := doJSON(t, router, "GET", "/api/admin/messages", nil, token)
	require.Equal(t, 200, w.Code, w.Body.String())
	body := decodeBody(t, w)
	items := body["data"].([]any)
	require.Len(t, items, 3)

	first := items[0].(map[string]any)
	assert.Contains(t, first, "is_deleted")
	assert.NotContains(t, first, "ip_hash")

	meta := body["meta"].(map[string]any)
	assert.EqualValues(t, 50, meta["per_page"])
	assert.EqualValues(t, 3, meta["total"])

	// is_deleted filter, truthy form.
	w = doJSON(t, router, "GET", "/api/admin/messages?is_deleted=1", nil, token)
	require.Equal(t, 200, w.Code)
	items = decodeBody(t, w)["data"].([]any)
	require.Len(t, items, 1)
	assert.EqualValues(t, deleted.ID, items[0].(map[string]any)["id"])

	// Falsy form.
	w = doJSON(t, router, "GET", "/api/admin/messages?is_deleted=false", nil, token)
	require.Equal(t, 200, w.Code)
	assert.Len(t, decodeBody(t, w)["data"].([]any), 2)

	// Unparseable values are ignored rather than erroring.
	w = doJSON(t, router, "GET", "/api/admin/messages?is_deleted=whatever", nil, token)
	require.Equal(t, 200, w.Code)
	assert.Len(t, decodeBody(t, w)["data"].([]any), 3)

	// Category filter.
	w = doJSON(t, router, "GET", "/api/admin/messages?category=fun", nil, token)
	require.Equal(t, 200, w.Code)
	items = decodeBody(t, w)["data"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "kept", items[0].(map[string]any)["content"])
}

func TestAdminGetMessagesPagination(t *testing.T) {
	router, env := newTestEnv(t)
	seedAdminAccount(t, env, adminEmail, adminPassword)
	token := loginToken(t, router, adminEmail, adminPassword)

	now := time.Date(2026, 2, 15, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 60; i++ {
		seedMessage(t, env, models.Message{
			Content:   fmt.Sprintf("msg %d", i),
			CreatedAt: now.Add(time.Duration(-i) * time.Minute),
		})
	}

	w := doJSON(t, router, "GET", "/api/admin/messages", nil, token)
	require.Equal(t, 200, w.Code)
	body := decodeBody(t, w)
	assert.Len(t, body["data"].([]any), 50)
	meta := body["meta"].(map[string]any)
	assert.EqualValues(t, 2, meta["last_page"])
	assert.EqualValues(t, 60, meta["total"])

	w = doJSON(t, router, "GET", "/api/admin/messages?page=2", nil, token)
	require.Equal(t, 200, w.Code)
	assert.Len(t, decodeBody(t, w)["data"].([]any), 10)
}

func TestAdminDestroyMessage(t *testing.T) {
	router, env := newTestEnv(t)
	seedAdminAccount(t, env, adminEmail, adminPassword)
	token := loginToken(t, router, adminEmail, adminPassword)

	message := seedMessage(t, env, models.Message{Content: "doomed", CreatedAt: time.Now()})
	path := fmt.Sprintf("/api/admin/messages/%d", message.ID)

	w := doJSON(t, router, "DELETE", path, nil, token)
	require.Equal(t, 200, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.Equal(t, "Message has been deleted.", body["message"])
	data := body["data"].(map[string]any)
	assert.EqualValues(t, message.ID, data["id"])
	assert.Equal(t, true, data["is_deleted"])

	var stored models.Message
	require.NoError(t, env.DB.First(&stored, message.ID).Error)
	assert.True(t, stored.IsDeleted)

	// Deleting again reports a conflict, not a silent success.
	w = doJSON(t, router, "DELETE", path, nil, token)
	assert.Equal(t, 409, w.Code)
	assert.Equal(t, "Message is already deleted.", decodeBody(t, w)["message"])

	w = doJSON(t, router, "DELETE", "/api/admin/messages/9999", nil, token)
	assert.Equal(t, 404, w.Code)
	assert.Equal(t, "Message not found.", decodeBody(t, w)["message"])
}

func TestAdminDestroyHidesFromPublicFeed(t *testing.T) {
	router, env := newTestEnv(t)
	seedAdminAccount(t, env, adminEmail, adminPassword)
	token := loginToken(t, router, adminEmail, adminPassword)

	message := seedMessage(t, env, models.Message{Content: "soon gone", CreatedAt: time.Now()})

	w := doJSON(t, router, "GET", "/api/messages", nil, "")
	require.Equal(t, 200, w.Code)
	require.Len(t, decodeBody(t, w)["data"].([]any), 1)

	w = doJSON(t, router, "DELETE", fmt.Sprintf("/api/admin/messages/%d", message.ID), nil, token)
	require.Equal(t, 200, w.Code)

	w = doJSON(t, router, "GET", "/api/messages", nil, "")
	require.Equal(t, 200, w.Code)
	assert.Empty(t, decodeBody(t, w)["data"])
}
