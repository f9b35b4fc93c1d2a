package apiutil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"newsdesk/internal/domain/content"
	"newsdesk/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func respond(err error) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	RespondError(c, err, "Article")
	return w
}

func TestRespondError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{store.ErrNotFound, http.StatusNotFound, "Article not found"},
		{store.ErrInvalid, http.StatusBadRequest, "Invalid request"},
		{&content.TransitionError{From: "draft", To: "sent"}, http.StatusBadRequest, `cannot change status from "draft" to "sent"`},
		{errors.New("connection refused"), http.StatusInternalServerError, "connection refused"},
	}
	for _, tc := range cases {
		w := respond(tc.err)
		assert.Equal(t, tc.status, w.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, tc.msg, body["error"])
	}
}

func TestFieldsDecode(t *testing.T) {
	f := Fields{
		"title":        Text,
		"content":      HTML,
		"tags":         StringList,
		"published_at": Time,
		"featured":     Bool,
		"priority":     Int,
	}
	body := map[string]json.RawMessage{
		"title":        json.RawMessage(`"<b>Hi</b> there"`),
		"content":      json.RawMessage(`"<p>ok</p><script>x</script>"`),
		"tags":         json.RawMessage(`["a","<i>b</i>"]`),
		"published_at": json.RawMessage(`"2026-05-01"`),
		"featured":     json.RawMessage(`true`),
		"priority":     json.RawMessage(`3`),
		"author_id":    json.RawMessage(`"someone-else"`),
	}
	out, err := f.Decode(body)
	require.NoError(t, err)
	assert.Equal(t, "Hi there", out["title"])
	assert.Equal(t, "<p>ok</p>", out["content"])
	assert.Equal(t, []string{"a", "b"}, out["tags"])
	assert.Equal(t, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), out["published_at"])
	assert.Equal(t, true, out["featured"])
	assert.EqualValues(t, 3, out["priority"])
	assert.NotContains(t, out, "author_id")

	_, err = f.Decode(map[string]json.RawMessage{"priority": json.RawMessage(`"high"`)})
	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "priority", fe.Field)

	out, err = f.Decode(map[string]json.RawMessage{"published_at": json.RawMessage(`null`)})
	require.NoError(t, err)
	assert.Nil(t, out["published_at"])
}

func TestLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	for q, want := range map[string]int{"": DefaultLimit, "?limit=5": 5, "?limit=-1": DefaultLimit, "?limit=9999": MaxLimit} {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/x"+q, nil)
		assert.Equal(t, want, Limit(c), q)
	}
}
