package users_test

import (
	"net/http"
	"testing"

	"newsdesk/internal/api/apitest"
	"newsdesk/internal/api/apiutil"
	usersapi "newsdesk/internal/api/users"
	"newsdesk/internal/domain/access"
	"newsdesk/internal/domain/users"
	"newsdesk/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*gin.Engine, *store.Memory[users.User]) {
	col := store.NewMemory[users.User]("users")
	for _, u := range []users.User{
		{Base: store.Base{ID: "adm"}, Email: "adm@example.com", Role: "admin"},
		{Base: store.Base{ID: "rdr"}, Email: "rdr@example.com", Role: "reader"},
	} {
		_, err := col.Create(t.Context(), &u)
		require.NoError(t, err)
	}
	h := usersapi.NewHandler(col)
	r := apitest.Engine()
	r.Use(apitest.As())
	r.GET("/api/me", h.Me)
	r.GET("/api/admin/users", h.List)
	r.PUT("/api/admin/users/:id/role", h.SetRole)
	r.PUT("/api/admin/users/:id/disabled", h.SetDisabled)
	return r, col
}

func TestMeUsesStoredRole(t *testing.T) {
	r, _ := setup(t)
	w := apitest.Do(t, r, apitest.Request{Method: http.MethodGet, Path: "/api/me"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// The token still says reader; the stored role wins.
	w = apitest.Do(t, r, apitest.Request{Method: http.MethodGet, Path: "/api/me", Actor: apitest.User("adm", access.RoleReader)})
	require.Equal(t, http.StatusOK, w.Code)
	me := apitest.Decode[usersapi.MeResponse](t, w)
	assert.Equal(t, "admin", me.Access.Role)
	assert.Contains(t, me.Access.Capabilities, string(access.ManageUsers))

	w = apitest.Do(t, r, apitest.Request{Method: http.MethodGet, Path: "/api/me", Actor: apitest.User("ghost", access.RoleReader)})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSetRole(t *testing.T) {
	r, col := setup(t)
	admin := apitest.User("adm", access.RoleAdmin)

	w := apitest.Do(t, r, apitest.Request{Method: http.MethodPut, Path: "/api/admin/users/rdr/role", Actor: admin, Body: map[string]any{"role": "editor"}})
	require.Equal(t, http.StatusOK, w.Code)
	u, _ := col.GetByID(t.Context(), "rdr")
	assert.Equal(t, "editor", u.Role)

	w = apitest.Do(t, r, apitest.Request{Method: http.MethodPut, Path: "/api/admin/users/rdr/role", Actor: admin, Body: map[string]any{"role": "overlord"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = apitest.Do(t, r, apitest.Request{Method: http.MethodPut, Path: "/api/admin/users/adm/role", Actor: admin, Body: map[string]any{"role": "reader"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = apitest.Do(t, r, apitest.Request{Method: http.MethodPut, Path: "/api/admin/users/nobody/role", Actor: admin, Body: map[string]any{"role": "reader"}})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListAndDisable(t *testing.T) {
	r, col := setup(t)
	admin := apitest.User("adm", access.RoleAdmin)

	w := apitest.Do(t, r, apitest.Request{Method: http.MethodGet, Path: "/api/admin/users?role=reader", Actor: admin})
	require.Equal(t, http.StatusOK, w.Code)
	page := apitest.Decode[apiutil.Page[usersapi.UserDTO]](t, w)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "rdr", page.Items[0].ID)

	w = apitest.Do(t, r, apitest.Request{Method: http.MethodPut, Path: "/api/admin/users/rdr/disabled", Actor: admin, Body: map[string]any{"disabled": true}})
	require.Equal(t, http.StatusOK, w.Code)
	u, _ := col.GetByID(t.Context(), "rdr")
	assert.True(t, u.Disabled)

	w = apitest.Do(t, r, apitest.Request{Method: http.MethodPut, Path: "/api/admin/users/adm/disabled", Actor: admin, Body: map[string]any{"disabled": true}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
