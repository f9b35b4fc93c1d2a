package middleware_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"newsdesk/internal/api/apitest"
	"newsdesk/internal/api/apiutil"
	"newsdesk/internal/app/http/middleware"
	"newsdesk/internal/domain/access"
	"newsdesk/internal/domain/users"
	"newsdesk/internal/oops"
	"newsdesk/internal/settings"
	"newsdesk/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func sign(t *testing.T, key []byte, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	require.NoError(t, err)
	return "Bearer " + s
}

func whoami(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"user_id": c.GetString(apiutil.KeyUserID),
		"role":    c.GetString(apiutil.KeyRole),
		"email":   c.GetString(apiutil.KeyEmail),
	})
}

func TestAuthMiddleware(t *testing.T) {
	r := apitest.Engine()
	r.GET("/me", middleware.AuthMiddleware(secret, nil), whoami)
	valid := jwt.MapClaims{"user_id": "u1", "role": "editor", "email": "u1@example.com", "exp": time.Now().Add(time.Hour).Unix()}

	w := apitest.Do(t, r, apitest.Request{Method: http.MethodGet, Path: "/me"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = apitest.Do(t, r, apitest.Request{Method: http.MethodGet, Path: "/me", Header: map[string]string{"Authorization": "Token abc"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Bearer token malformed")

	w = apitest.Do(t, r, apitest.Request{Method: http.MethodGet, Path: "/me", Header: map[string]string{"Authorization": sign(t, []byte("other"), valid)}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	expired := jwt.MapClaims{"user_id": "u1", "exp": time.Now().Add(-time.Minute).Unix()}
	w = apitest.Do(t, r, apitest.Request{Method: http.MethodGet, Path: "/me", Header: map[string]string{"Authorization": sign(t, secret, expired)}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	numeric := jwt.MapClaims{"user_id": 7, "exp": time.Now().Add(time.Hour).Unix()}
	w = apitest.Do(t, r, apitest.Request{Method: http.MethodGet, Path: "/me", Header: map[string]string{"Authorization": sign(t, secret, numeric)}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = apitest.Do(t, r, apitest.Request{Method: http.MethodGet, Path: "/me", Header: map[string]string{"Authorization": sign(t, secret, valid)}})
	require.Equal(t, http.StatusOK, w.Code)
	got := apitest.Decode[map[string]string](t, w)
	assert.Equal(t, "u1", got["user_id"])
	assert.Equal(t, "editor", got["role"])
	assert.Equal(t, "u1@example.com", got["email"])
}

func TestAuthMiddlewareReadsStoredAccount(t *testing.T) {
	accounts := store.NewMemory[users.User]("users")
	u := users.User{Base: store.Base{ID: "g-123"}, Email: "ed@example.com", DisplayName: "Ed", Role: string(access.RoleAdmin)}
	_, err := accounts.Create(t.Context(), &u)
	require.NoError(t, err)

	r := apitest.Engine()
	r.GET("/me", middleware.AuthMiddleware(secret, accounts), whoami)
	token := sign(t, secret, jwt.MapClaims{"user_id": "g-123", "role": "admin", "email": "ed@example.com", "exp": time.Now().Add(time.Hour).Unix()})
	call := func() *httptest.ResponseRecorder {
		return apitest.Do(t, r, apitest.Request{Method: http.MethodGet, Path: "/me", Header: map[string]string{"Authorization": token}})
	}

	w := call()
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin", apitest.Decode[map[string]string](t, w)["role"])

	require.NoError(t, accounts.Update(t.Context(), "g-123", map[string]any{"role": string(access.RoleReader)}))
	w = call()
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "reader", apitest.Decode[map[string]string](t, w)["role"], "a demotion applies to the existing token")

	require.NoError(t, accounts.Update(t.Context(), "g-123", map[string]any{"disabled": true}))
	w = call()
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Account disabled")

	require.NoError(t, accounts.Delete(t.Context(), "g-123"))
	assert.Equal(t, http.StatusUnauthorized, call().Code)
}

func TestOptionalAuth(t *testing.T) {
	r := apitest.Engine()
	r.GET("/me", middleware.OptionalAuth(secret, nil), whoami)

	w := apitest.Do(t, r, apitest.Request{Method: http.MethodGet, Path: "/me"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, apitest.Decode[map[string]string](t, w)["user_id"])

	w = apitest.Do(t, r, apitest.Request{Method: http.MethodGet, Path: "/me", Header: map[string]string{"Authorization": "Bearer garbage"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireCapabilityAndRole(t *testing.T) {
	r := apitest.Engine()
	r.Use(apitest.As())
	r.GET("/settings", middleware.RequireCapability(access.ManageSettings), whoami)
	r.GET("/admin", middleware.RequireRole(access.RoleAdmin), whoami)

	w := apitest.Do(t, r, apitest.Request{Method: http.MethodGet, Path: "/settings"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = apitest.Do(t, r, apitest.Request{Method: http.MethodGet, Path: "/settings", Actor: apitest.User("r", access.RoleReader)})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = apitest.Do(t, r, apitest.Request{Method: http.MethodGet, Path: "/settings", Actor: apitest.User("a", access.RoleAdmin)})
	assert.Equal(t, http.StatusOK, w.Code)

	w = apitest.Do(t, r, apitest.Request{Method: http.MethodGet, Path: "/admin", Actor: apitest.User("e", access.RoleEditor)})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = apitest.Do(t, r, apitest.Request{Method: http.MethodGet, Path: "/admin", Actor: apitest.User("a", access.RoleAdmin)})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSanitizeInputStripsNestedMarkup(t *testing.T) {
	r := apitest.Engine()
	r.POST("/echo", middleware.SanitizeInput(), func(c *gin.Context) {
		var body map[string]any
		require.NoError(t, c.ShouldBindJSON(&body))
		c.JSON(http.StatusOK, body)
	})

	w := apitest.Do(t, r, apitest.Request{Method: http.MethodPost, Path: "/echo", Body: map[string]any{
		"title": "<script>alert(1)</script>Bake sale",
		"tags":  []string{"<b>fun</b>"},
		"venue": map[string]any{"name": "<i>Hall</i>"},
		"count": 3,
	}})
	require.Equal(t, http.StatusOK, w.Code)
	got := apitest.Decode[map[string]any](t, w)
	assert.Equal(t, "Bake sale", got["title"])
	assert.Equal(t, []any{"fun"}, got["tags"])
	assert.Equal(t, map[string]any{"name": "Hall"}, got["venue"])
	assert.EqualValues(t, 3, got["count"])

	w = apitest.Do(t, r, apitest.Request{Method: http.MethodPost, Path: "/echo", Body: map[string]any{
		"title":      "Fish & Chips Fair",
		"organizer":  "O'Neill's",
		"ticket_url": "https://tix.example/buy?e=1&seat=2",
	}})
	require.Equal(t, http.StatusOK, w.Code)
	got = apitest.Decode[map[string]any](t, w)
	assert.Equal(t, "Fish & Chips Fair", got["title"])
	assert.Equal(t, "O'Neill's", got["organizer"])
	assert.Equal(t, "https://tix.example/buy?e=1&seat=2", got["ticket_url"])

	w = apitest.Do(t, r, apitest.Request{Method: http.MethodPost, Path: "/echo", Body: "{not json"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequireComponent(t *testing.T) {
	components := settings.NewStore(settings.NewMemoryKV())
	r := apitest.Engine()
	r.GET("/events", middleware.RequireComponent(components, "events", zerolog.Nop()), whoami)

	w := apitest.Do(t, r, apitest.Request{Method: http.MethodGet, Path: "/events"})
	assert.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, components.Update(context.Background(), "events", map[string]any{"enabled": false}))
	w = apitest.Do(t, r, apitest.Request{Method: http.MethodGet, Path: "/events"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecoveryAndRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)
	r := apitest.Engine()
	r.Use(middleware.Recovery(log), middleware.RequestLogger(log))
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := apitest.Do(t, r, apitest.Request{Method: http.MethodGet, Path: "/boom"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, buf.String(), "request panicked")
	assert.Contains(t, buf.String(), "kaboom")

	buf.Reset()
	apitest.Do(t, r, apitest.Request{Method: http.MethodGet, Path: "/ok"})
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"status":204`)
	assert.Contains(t, lines[0], `"path":"/ok"`)
}

func TestRequestLoggerRecordsHandlerErrorWithStack(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)
	r := apitest.Engine()
	r.Use(middleware.RequestLogger(log))
	r.GET("/fail", func(c *gin.Context) {
		apiutil.RespondError(c, oops.New(errors.New("connection reset"), "list articles"), "Article")
	})

	w := apitest.Do(t, r, apitest.Request{Method: http.MethodGet, Path: "/fail"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, buf.String(), `"level":"error"`)
	assert.Contains(t, buf.String(), "list articles: connection reset")
	assert.Contains(t, buf.String(), `"stack":[`)
}
