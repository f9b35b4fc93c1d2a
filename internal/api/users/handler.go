package users

import (
	"net/http"
	"strings"

	"newsdesk/internal/api/apiutil"
	"newsdesk/internal/domain/access"
	"newsdesk/internal/domain/users"
	"newsdesk/internal/store"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Users store.Collection[users.User]
}

func NewHandler(col store.Collection[users.User]) *Handler {
	return &Handler{Users: col}
}

// ------------------------------
// GET /api/me
// ------------------------------
// Me reports the stored role, which may be newer than the one in the caller's token.
func (h *Handler) Me(c *gin.Context) {
	actor, ok := apiutil.MustActor(c)
	if !ok {
		return
	}
	u, err := h.Users.GetByID(c.Request.Context(), actor.ID)
	if err != nil {
		apiutil.RespondError(c, err, "User")
		return
	}
	c.JSON(http.StatusOK, MeResponse{User: buildUserDTO(u), Access: buildAccessDTO(u.Role)})
}

// ------------------------------
// GET /api/admin/users
// ------------------------------
func (h *Handler) List(c *gin.Context) {
	q := store.Query{}
	if v := c.Query("role"); v != "" {
		q = q.Where("role", store.Eq, v)
	}
	if v := strings.TrimSpace(c.Query("email")); v != "" {
		q = q.Where("email", store.Eq, strings.ToLower(v))
	}
	list, err := h.Users.List(c.Request.Context(), q.OrderBy("created_at", true).Take(apiutil.Limit(c)).Skip(apiutil.Offset(c)))
	if err != nil {
		apiutil.RespondError(c, err, "User")
		return
	}
	out := make([]UserDTO, len(list))
	for i := range list {
		out[i] = buildUserDTO(&list[i])
	}
	apiutil.RespondList(c, out)
}

// ------------------------------
// PUT /api/admin/users/:id/role
// ------------------------------
func (h *Handler) SetRole(c *gin.Context) {
	actor, ok := apiutil.MustActor(c)
	if !ok {
		return
	}
	var req SetRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiutil.BadRequest(c, "role is required")
		return
	}
	role, ok := access.ParseRole(req.Role)
	if !ok {
		apiutil.BadRequest(c, "Unknown role")
		return
	}
	id := c.Param("id")
	if id == actor.ID && role != access.RoleAdmin {
		apiutil.BadRequest(c, "You cannot remove your own admin role")
		return
	}
	u, err := h.Users.Mutate(c.Request.Context(), id, func(u *users.User) error {
		u.Role = string(role)
		return nil
	})
	if err != nil {
		apiutil.RespondError(c, err, "User")
		return
	}
	c.JSON(http.StatusOK, buildUserDTO(u))
}

// ------------------------------
// PUT /api/admin/users/:id/disabled
// ------------------------------
func (h *Handler) SetDisabled(c *gin.Context) {
	actor, ok := apiutil.MustActor(c)
	if !ok {
		return
	}
	var req SetDisabledRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiutil.BadRequest(c, "Invalid request body")
		return
	}
	id := c.Param("id")
	if id == actor.ID && req.Disabled {
		apiutil.BadRequest(c, "You cannot disable your own account")
		return
	}
	u, err := h.Users.Mutate(c.Request.Context(), id, func(u *users.User) error {
		u.Disabled = req.Disabled
		return nil
	})
	if err != nil {
		apiutil.RespondError(c, err, "User")
		return
	}
	c.JSON(http.StatusOK, buildUserDTO(u))
}
