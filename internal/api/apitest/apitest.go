// Package apitest has helpers for driving handlers through a gin engine in tests.
package apitest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"newsdesk/internal/api/apiutil"
	"newsdesk/internal/domain/access"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// Engine returns a bare test-mode engine.
func Engine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// As reads the acting user from X-Test-User / X-Test-Role headers, standing in for the JWT middleware.
func As() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := c.GetHeader("X-Test-User"); id != "" {
			c.Set(apiutil.KeyUserID, id)
			c.Set(apiutil.KeyRole, c.GetHeader("X-Test-Role"))
			c.Set(apiutil.KeyEmail, id+"@example.com")
			c.Set(apiutil.KeyName, "User "+id)
		}
		c.Next()
	}
}

// Request describes one call. A nil Actor is anonymous.
type Request struct {
	Method string
	Path   string
	Body   any
	Actor  *access.Actor
	Header map[string]string
}

func Do(t *testing.T, h http.Handler, r Request) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	switch b := r.Body.(type) {
	case nil:
	case string:
		body = bytes.NewBufferString(b)
	case []byte:
		body = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(r.Method, r.Path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.Actor != nil {
		req.Header.Set("X-Test-User", r.Actor.ID)
		req.Header.Set("X-Test-Role", string(r.Actor.Role))
	}
	for k, v := range r.Header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// Decode unmarshals the recorded body into T.
func Decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// User builds an actor pointer for Request.Actor.
func User(id string, role access.Role) *access.Actor {
	return &access.Actor{ID: id, Role: role}
}
