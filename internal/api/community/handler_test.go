package community_test

import (
	"net/http"
	"testing"

	"newsdesk/internal/api/apitest"
	"newsdesk/internal/api/apiutil"
	communityapi "newsdesk/internal/api/community"
	"newsdesk/internal/domain/access"
	"newsdesk/internal/domain/community"
	"newsdesk/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = apitest.User("alice", access.RoleReader)
	bob   = apitest.User("bob", access.RoleReader)
	mod   = apitest.User("mod", access.RoleEditor)
)

func setup() (*gin.Engine, *store.Memory[community.Post]) {
	col := store.NewMemory[community.Post]("community_posts")
	h := communityapi.NewHandler(col)
	r := apitest.Engine()
	r.Use(apitest.As())
	r.GET("/api/community", h.List)
	r.GET("/api/community/:id", h.Get)
	r.POST("/api/community", h.Create)
	r.DELETE("/api/community/:id", h.Delete)
	r.POST("/api/community/:id/like", h.Like)
	r.DELETE("/api/community/:id/like", h.Unlike)
	r.POST("/api/community/:id/flag", h.Flag)
	r.POST("/api/community/:id/hide", h.Hide)
	r.POST("/api/community/:id/restore", h.Restore)
	r.POST("/api/community/:id/pin", h.Pin)
	r.DELETE("/api/community/:id/pin", h.Unpin)
	return r, col
}

func post(t *testing.T, r http.Handler, actor *access.Actor, text string) string {
	t.Helper()
	w := apitest.Do(t, r, apitest.Request{Method: http.MethodPost, Path: "/api/community", Actor: actor, Body: map[string]any{"content": text, "topic": "harbor"}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return apitest.Decode[map[string]string](t, w)["id"]
}

func TestLikesAreASet(t *testing.T) {
	r, col := setup()
	id := post(t, r, alice, "Fog this morning")

	for i := 0; i < 3; i++ {
		w := apitest.Do(t, r, apitest.Request{Method: http.MethodPost, Path: "/api/community/" + id + "/like", Actor: bob})
		require.Equal(t, http.StatusOK, w.Code)
	}
	apitest.Do(t, r, apitest.Request{Method: http.MethodPost, Path: "/api/community/" + id + "/like", Actor: alice})

	p, _ := col.GetByID(t.Context(), id)
	assert.EqualValues(t, 2, p.Likes)
	assert.ElementsMatch(t, []string{"alice", "bob"}, p.LikedBy)

	w := apitest.Do(t, r, apitest.Request{Method: http.MethodDelete, Path: "/api/community/" + id + "/like", Actor: bob})
	require.Equal(t, http.StatusOK, w.Code)
	got := apitest.Decode[community.Post](t, w)
	assert.EqualValues(t, 1, got.Likes)
	assert.Equal(t, []string{"alice"}, got.LikedBy)

	w = apitest.Do(t, r, apitest.Request{Method: http.MethodPost, Path: "/api/community/" + id + "/like"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListOrderAndModeration(t *testing.T) {
	r, _ := setup()
	first := post(t, r, alice, "first")
	second := post(t, r, bob, "second")
	third := post(t, r, alice, "third")

	w := apitest.Do(t, r, apitest.Request{Method: http.MethodPost, Path: "/api/community/" + first + "/pin", Actor: alice})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = apitest.Do(t, r, apitest.Request{Method: http.MethodPost, Path: "/api/community/" + first + "/pin", Actor: mod})
	require.Equal(t, http.StatusOK, w.Code)

	w = apitest.Do(t, r, apitest.Request{Method: http.MethodPost, Path: "/api/community/" + second + "/flag", Actor: alice})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, community.StatusFlagged, apitest.Decode[community.Post](t, w).Status)

	w = apitest.Do(t, r, apitest.Request{Method: http.MethodGet, Path: "/api/community?topic=harbor"})
	items := apitest.Decode[apiutil.Page[community.Post]](t, w).Items
	require.Len(t, items, 2, "flagged posts drop out of the public list")
	assert.Equal(t, first, items[0].ID, "pinned first")
	assert.Equal(t, third, items[1].ID)

	w = apitest.Do(t, r, apitest.Request{Method: http.MethodGet, Path: "/api/community?status=flagged", Actor: alice})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = apitest.Do(t, r, apitest.Request{Method: http.MethodPost, Path: "/api/community/" + second + "/hide", Actor: mod})
	require.Equal(t, http.StatusOK, w.Code)
	w = apitest.Do(t, r, apitest.Request{Method: http.MethodGet, Path: "/api/community/" + second, Actor: alice})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = apitest.Do(t, r, apitest.Request{Method: http.MethodPost, Path: "/api/community/" + second + "/restore", Actor: mod})
	require.Equal(t, http.StatusOK, w.Code)
	restored := apitest.Decode[community.Post](t, w)
	assert.Equal(t, community.StatusActive, restored.Status)
	assert.Empty(t, restored.FlaggedBy)
}

func TestCreateAndDelete(t *testing.T) {
	r, _ := setup()
	w := apitest.Do(t, r, apitest.Request{Method: http.MethodPost, Path: "/api/community", Actor: alice, Body: map[string]any{"content": "<script>x</script>"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	id := post(t, r, alice, "<b>hello</b>")
	w = apitest.Do(t, r, apitest.Request{Method: http.MethodGet, Path: "/api/community/" + id})
	assert.Equal(t, "hello", apitest.Decode[community.Post](t, w).Content)

	w = apitest.Do(t, r, apitest.Request{Method: http.MethodDelete, Path: "/api/community/" + id, Actor: bob})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = apitest.Do(t, r, apitest.Request{Method: http.MethodDelete, Path: "/api/community/" + id, Actor: mod})
	assert.Equal(t, http.StatusOK, w.Code)
}
