package auth_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"newsdesk/config"
	"newsdesk/internal/api/apitest"
	"newsdesk/internal/api/auth"
	"newsdesk/internal/domain/users"
	"newsdesk/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVerifier map[string]*auth.GoogleClaims

func (f fakeVerifier) Verify(ctx context.Context, raw string) (*auth.GoogleClaims, error) {
	if c, ok := f[raw]; ok {
		return c, nil
	}
	return nil, errors.New("invalid id_token")
}

const secret = "test-secret"

func setup() (*gin.Engine, *store.Memory[users.User]) {
	col := store.NewMemory[users.User]("users")
	verifier := fakeVerifier{
		"good": {Sub: "g-1", Email: "Reporter@Example.com", EmailVerified: true, Name: "Rita Reporter", Picture: "https://img.test/r.png"},
	}
	oauth := auth.GoogleOAuthConfig(config.AuthConfig{GoogleClientID: "cid", GoogleRedirectURL: "http://localhost/api/auth/google/callback"})
	h := auth.NewHandler(col, oauth, verifier, secret, time.Hour, zerolog.Nop())
	r := apitest.Engine()
	r.POST("/api/auth/token", h.Token)
	r.GET("/api/auth/google", h.GoogleStart)
	r.GET("/api/auth/google/callback", h.GoogleCallback)
	return r, col
}

func parse(t *testing.T, token string) jwt.MapClaims {
	t.Helper()
	parsed, err := jwt.Parse(token, func(*jwt.Token) (any, error) { return []byte(secret), nil })
	require.NoError(t, err)
	return parsed.Claims.(jwt.MapClaims)
}

func TestTokenCreatesReaderOnFirstSignIn(t *testing.T) {
	r, col := setup()
	w := apitest.Do(t, r, apitest.Request{Method: http.MethodPost, Path: "/api/auth/token", Body: map[string]any{"id_token": "good"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := apitest.Decode[auth.TokenResponse](t, w)
	assert.Equal(t, "g-1", resp.User.ID)
	assert.Equal(t, "reader", resp.User.Role)
	assert.Equal(t, "reporter@example.com", resp.User.Email)

	claims := parse(t, resp.Token)
	assert.Equal(t, "g-1", claims["user_id"])
	assert.Equal(t, "reader", claims["role"])
	assert.Equal(t, "reporter@example.com", claims["email"])
	assert.Equal(t, "Rita Reporter", claims["name"])

	// A promoted user keeps the role on later sign-ins.
	_, err := col.Mutate(t.Context(), "g-1", func(u *users.User) error { u.Role = "editor"; return nil })
	require.NoError(t, err)
	w = apitest.Do(t, r, apitest.Request{Method: http.MethodPost, Path: "/api/auth/token", Body: map[string]any{"id_token": "good"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "editor", parse(t, apitest.Decode[auth.TokenResponse](t, w).Token)["role"])

	n, _ := col.Count(t.Context(), store.Query{})
	assert.EqualValues(t, 1, n)
}

func TestTokenLinksExistingEmailAndBlocksDisabled(t *testing.T) {
	r, col := setup()
	_, err := col.Create(t.Context(), &users.User{Base: store.Base{ID: "legacy"}, Email: "reporter@example.com", Role: "author"})
	require.NoError(t, err)

	w := apitest.Do(t, r, apitest.Request{Method: http.MethodPost, Path: "/api/auth/token", Body: map[string]any{"id_token": "good"}})
	require.Equal(t, http.StatusOK, w.Code)
	resp := apitest.Decode[auth.TokenResponse](t, w)
	assert.Equal(t, "legacy", resp.User.ID)
	assert.Equal(t, "g-1", resp.User.ProviderSub)
	assert.Equal(t, "author", resp.User.Role)

	_, err = col.Mutate(t.Context(), "legacy", func(u *users.User) error { u.Disabled = true; return nil })
	require.NoError(t, err)
	w = apitest.Do(t, r, apitest.Request{Method: http.MethodPost, Path: "/api/auth/token", Body: map[string]any{"id_token": "good"}})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestTokenRejectsBadInput(t *testing.T) {
	r, _ := setup()
	w := apitest.Do(t, r, apitest.Request{Method: http.MethodPost, Path: "/api/auth/token", Body: map[string]any{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = apitest.Do(t, r, apitest.Request{Method: http.MethodPost, Path: "/api/auth/token", Body: map[string]any{"id_token": "forged"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGoogleStartSetsStateCookie(t *testing.T) {
	r, _ := setup()
	w := apitest.Do(t, r, apitest.Request{Method: http.MethodGet, Path: "/api/auth/google"})
	require.Equal(t, http.StatusFound, w.Code)
	loc := w.Header().Get("Location")
	assert.True(t, strings.HasPrefix(loc, "https://accounts.google.com/"), loc)
	assert.Contains(t, loc, "client_id=cid")
	assert.Contains(t, w.Header().Get("Set-Cookie"), "oauth_state=")
}

func TestGoogleCallbackChecksState(t *testing.T) {
	r, _ := setup()
	w := apitest.Do(t, r, apitest.Request{Method: http.MethodGet, Path: "/api/auth/google/callback?code=c"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/google/callback?code=c&state=abc", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "other"})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"invalid oauth state"}`, rec.Body.String())
}

func TestIssueTokenExpiry(t *testing.T) {
	now := time.Now()
	token, err := auth.IssueToken([]byte(secret), &users.User{Base: store.Base{ID: "u"}, Role: "admin"}, time.Minute, now)
	require.NoError(t, err)
	exp, err := parse(t, token).GetExpirationTime()
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Minute).Unix(), exp.Unix())
}
