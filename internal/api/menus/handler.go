package menus

import (
	"errors"
	"net/http"
	"strings"

	"newsdesk/internal/api/apiutil"
	"newsdesk/internal/domain/menus"
	"newsdesk/internal/store"

	"github.com/gin-gonic/gin"
)

type MenuRequest struct {
	Name     string       `json:"name" binding:"required"`
	Location string       `json:"location"`
	Items    []menus.Item `json:"items"`
}

type UpdateMenuRequest struct {
	Name     *string       `json:"name"`
	Location *string       `json:"location"`
	Items    *[]menus.Item `json:"items"`
}

type Handler struct {
	Menus store.Collection[menus.Menu]
}

func NewHandler(col store.Collection[menus.Menu]) *Handler {
	return &Handler{Menus: col}
}

func (h *Handler) List(c *gin.Context) {
	list, err := h.Menus.List(c.Request.Context(), store.Query{}.OrderBy("name", false))
	if err != nil {
		apiutil.RespondError(c, err, "Menu")
		return
	}
	apiutil.RespondList(c, list)
}

func (h *Handler) Get(c *gin.Context) {
	m, err := h.Menus.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		apiutil.RespondError(c, err, "Menu")
		return
	}
	c.JSON(http.StatusOK, m)
}

// ------------------------------
// GET /api/menus/location/:location
// ------------------------------
// ByLocation returns the most recently updated menu assigned to the location.
func (h *Handler) ByLocation(c *gin.Context) {
	m, err := h.Menus.FindOne(c.Request.Context(), store.Query{}.
		Where("location", store.Eq, c.Param("location")).
		OrderBy("updated_at", true))
	if err != nil {
		apiutil.RespondError(c, err, "Menu")
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) Create(c *gin.Context) {
	var req MenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiutil.BadRequest(c, "Menu name is required")
		return
	}
	items, err := menus.NormalizeItems(req.Items)
	if err != nil {
		h.invalid(c, err)
		return
	}
	m := menus.Menu{
		Name:     strings.TrimSpace(req.Name),
		Location: strings.TrimSpace(req.Location),
		Items:    items,
	}
	id, err := h.Menus.Create(c.Request.Context(), &m)
	if err != nil {
		apiutil.RespondError(c, err, "Menu")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *Handler) Update(c *gin.Context) {
	var req UpdateMenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiutil.BadRequest(c, "Invalid request body")
		return
	}
	updated, err := h.Menus.Mutate(c.Request.Context(), c.Param("id"), func(m *menus.Menu) error {
		if req.Name != nil {
			if strings.TrimSpace(*req.Name) == "" {
				return menus.ErrInvalidItem
			}
			m.Name = strings.TrimSpace(*req.Name)
		}
		if req.Location != nil {
			m.Location = strings.TrimSpace(*req.Location)
		}
		if req.Items != nil {
			items, err := menus.NormalizeItems(*req.Items)
			if err != nil {
				return err
			}
			m.Items = items
		}
		return nil
	})
	if errors.Is(err, menus.ErrInvalidItem) {
		h.invalid(c, err)
		return
	}
	if err != nil {
		apiutil.RespondError(c, err, "Menu")
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.Menus.Delete(c.Request.Context(), c.Param("id")); err != nil {
		apiutil.RespondError(c, err, "Menu")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *Handler) invalid(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid menu", "details": err.Error()})
}
