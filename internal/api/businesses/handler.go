package businesses

import (
	"net/http"
	"strconv"

	"newsdesk/internal/api/apiutil"
	"newsdesk/internal/domain/access"
	"newsdesk/internal/domain/content"
	"newsdesk/internal/domain/directory"
	"newsdesk/internal/store"
	"newsdesk/internal/validation"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Businesses store.Collection[directory.Business]
}

func NewHandler(col store.Collection[directory.Business]) *Handler {
	return &Handler{Businesses: col}
}

// ------------------------------
// GET /api/businesses
// ------------------------------
func (h *Handler) List(c *gin.Context) {
	actor := apiutil.ActorFrom(c)
	q := store.Query{}
	status := c.DefaultQuery("status", directory.StatusActive)
	switch {
	case status == directory.StatusActive:
	case c.Query("mine") == "true" && actor.Authenticated():
		q = q.Where("owner_id", store.Eq, actor.ID)
	case !access.CanAny(actor, access.ApproveBusinesses):
		apiutil.Forbidden(c)
		return
	}
	if status != "all" {
		q = q.Where("status", store.Eq, status)
	}
	if v := c.Query("category"); v != "" {
		q = q.Where("category", store.Eq, v)
	}
	if v := c.Query("city"); v != "" {
		q = q.Where("city", store.Eq, v)
	}
	if v, err := strconv.ParseBool(c.Query("featured")); err == nil {
		q = q.Where("featured", store.Eq, v)
	}

	list, err := h.Businesses.List(c.Request.Context(), q.OrderBy("featured", true).OrderBy("name", false).Take(apiutil.Limit(c)).Skip(apiutil.Offset(c)))
	if err != nil {
		apiutil.RespondError(c, err, "Business")
		return
	}
	apiutil.RespondList(c, list)
}

func (h *Handler) Get(c *gin.Context) {
	b, err := h.Businesses.GetByID(c.Request.Context(), c.Param("id"))
	h.respondOne(c, b, err)
}

func (h *Handler) GetBySlug(c *gin.Context) {
	b, err := h.Businesses.GetBySlug(c.Request.Context(), c.Param("slug"))
	h.respondOne(c, b, err)
}

func (h *Handler) respondOne(c *gin.Context, b *directory.Business, err error) {
	if err != nil {
		apiutil.RespondError(c, err, "Business")
		return
	}
	if b.Status != directory.StatusActive && !access.Authorize(apiutil.ActorFrom(c), access.ManageBusinesses, b.OwnerID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Business not found"})
		return
	}
	c.JSON(http.StatusOK, b)
}

// Create registers a listing owned by the caller. It waits for approval unless the caller is an approver.
func (h *Handler) Create(c *gin.Context) {
	actor, ok := apiutil.MustActor(c)
	if !ok {
		return
	}
	var req CreateBusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiutil.BadRequest(c, "Business name is required")
		return
	}
	if req.Email != "" && !validation.IsEmail(req.Email) {
		apiutil.BadRequest(c, "Invalid email address")
		return
	}
	if req.Website != "" && !validation.IsURL(req.Website) {
		apiutil.BadRequest(c, "Invalid website URL")
		return
	}

	status := directory.StatusPending
	if access.CanAny(actor, access.ApproveBusinesses) {
		status = directory.StatusActive
	}
	b := directory.Business{
		Name:        content.StripTags(req.Name),
		Slug:        content.SlugOr(req.Slug, req.Name),
		Description: content.SanitizeHTML(req.Description),
		Category:    req.Category,
		Address:     content.StripTags(req.Address),
		City:        content.StripTags(req.City),
		Lat:         req.Lat,
		Lng:         req.Lng,
		Phone:       content.StripTags(req.Phone),
		Email:       req.Email,
		Website:     req.Website,
		Hours:       req.Hours,
		Images:      req.Images,
		OwnerID:     actor.ID,
		Status:      status,
	}
	id, err := h.Businesses.Create(c.Request.Context(), &b)
	if err != nil {
		apiutil.RespondError(c, err, "Business")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id, "status": status})
}

func (h *Handler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	actor, ok := apiutil.MustActor(c)
	if !ok {
		return
	}
	id := c.Param("id")
	current, err := h.Businesses.GetByID(ctx, id)
	if err != nil {
		apiutil.RespondError(c, err, "Business")
		return
	}
	if !access.Authorize(actor, access.ManageBusinesses, current.OwnerID) {
		apiutil.Forbidden(c)
		return
	}

	allowed := ownerFields
	if access.CanAny(actor, access.ApproveBusinesses) {
		allowed = approverFields
	}
	fields, ok := apiutil.BindFields(c, allowed)
	if !ok {
		return
	}
	if slug, ok := fields["slug"].(string); ok {
		fields["slug"] = content.SlugOr(slug, current.Name)
	}
	if email, ok := fields["email"].(string); ok && email != "" && !validation.IsEmail(email) {
		apiutil.BadRequest(c, "Invalid email address")
		return
	}
	if website, ok := fields["website"].(string); ok && website != "" && !validation.IsURL(website) {
		apiutil.BadRequest(c, "Invalid website URL")
		return
	}

	if err := h.Businesses.Update(ctx, id, fields); err != nil {
		apiutil.RespondError(c, err, "Business")
		return
	}
	updated, err := h.Businesses.GetByID(ctx, id)
	if err != nil {
		apiutil.RespondError(c, err, "Business")
		return
	}
	c.JSON(http.StatusOK, updated)
}

// ------------------------------
// POST /api/businesses/:id/approve | /suspend
// ------------------------------
func (h *Handler) Approve(c *gin.Context) {
	h.setStatus(c, directory.StatusActive)
}

func (h *Handler) Suspend(c *gin.Context) {
	h.setStatus(c, directory.StatusSuspended)
}

func (h *Handler) setStatus(c *gin.Context, status string) {
	actor, ok := apiutil.MustActor(c)
	if !ok {
		return
	}
	if !access.CanAny(actor, access.ApproveBusinesses) {
		apiutil.Forbidden(c)
		return
	}
	b, err := h.Businesses.Mutate(c.Request.Context(), c.Param("id"), func(b *directory.Business) error {
		if err := directory.Transitions.Check(b.Status, status); err != nil {
			return err
		}
		b.Status = status
		return nil
	})
	if err != nil {
		apiutil.RespondError(c, err, "Business")
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *Handler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	actor, ok := apiutil.MustActor(c)
	if !ok {
		return
	}
	b, err := h.Businesses.GetByID(ctx, c.Param("id"))
	if err != nil {
		apiutil.RespondError(c, err, "Business")
		return
	}
	if !access.Authorize(actor, access.ManageBusinesses, b.OwnerID) {
		apiutil.Forbidden(c)
		return
	}
	if err := h.Businesses.Delete(ctx, b.ID); err != nil {
		apiutil.RespondError(c, err, "Business")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
