package blog

import (
	"net/http"
	"time"

	"newsdesk/internal/api/apiutil"
	"newsdesk/internal/domain/access"
	"newsdesk/internal/domain/blog"
	"newsdesk/internal/domain/content"
	"newsdesk/internal/store"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Posts store.Collection[blog.Post]
	Now   func() time.Time
}

func NewHandler(col store.Collection[blog.Post]) *Handler {
	return &Handler{Posts: col, Now: time.Now}
}

// List returns published posts newest first; managers may pass ?status=.
func (h *Handler) List(c *gin.Context) {
	actor := apiutil.ActorFrom(c)
	q := store.Query{}
	status := c.DefaultQuery("status", blog.StatusPublished)
	if status != blog.StatusPublished {
		if !access.Can(actor, access.ManageBlog) {
			apiutil.Forbidden(c)
			return
		}
		if !access.CanAny(actor, access.ManageBlog) {
			q = q.Where("author_id", store.Eq, actor.ID)
		}
	}
	if status != "all" {
		q = q.Where("status", store.Eq, status)
	}
	if v := c.Query("category"); v != "" {
		q = q.Where("category", store.Eq, v)
	}
	if v := c.Query("tag"); v != "" {
		q = q.Where("tags", store.Contains, v)
	}

	list, err := h.Posts.List(c.Request.Context(), q.OrderBy("created_at", true).Take(apiutil.Limit(c)).Skip(apiutil.Offset(c)))
	if err != nil {
		apiutil.RespondError(c, err, "Post")
		return
	}
	apiutil.RespondList(c, list)
}

func (h *Handler) Get(c *gin.Context) {
	p, err := h.Posts.GetByID(c.Request.Context(), c.Param("id"))
	h.respondOne(c, p, err)
}

// GetBySlug only reads; the view counter moves through RecordView.
func (h *Handler) GetBySlug(c *gin.Context) {
	p, err := h.Posts.GetBySlug(c.Request.Context(), c.Param("slug"))
	h.respondOne(c, p, err)
}

func (h *Handler) respondOne(c *gin.Context, p *blog.Post, err error) {
	if err != nil {
		apiutil.RespondError(c, err, "Post")
		return
	}
	if p.Status != blog.StatusPublished && !access.Authorize(apiutil.ActorFrom(c), access.ManageBlog, p.AuthorID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}
	c.JSON(http.StatusOK, p)
}

// RecordView handles POST /api/blog/:id/view.
func (h *Handler) RecordView(c *gin.Context) {
	if err := h.Posts.Increment(c.Request.Context(), c.Param("id"), "view_count", 1); err != nil {
		apiutil.RespondError(c, err, "Post")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Create(c *gin.Context) {
	actor, ok := apiutil.MustActor(c)
	if !ok {
		return
	}
	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiutil.BadRequest(c, "Title is required")
		return
	}
	status := req.Status
	if status == "" {
		status = blog.StatusDraft
	}
	if !blog.Transitions.Known(status) {
		apiutil.RespondError(c, &content.TransitionError{To: status}, "Post")
		return
	}
	if !access.Can(actor, access.ManageBlog) || (status == blog.StatusPublished && !canPublish(actor)) {
		apiutil.Forbidden(c)
		return
	}

	body := content.SanitizeHTML(req.Content)
	p := blog.Post{
		Title:         content.StripTags(req.Title),
		Content:       body,
		Excerpt:       content.StripTags(req.Excerpt),
		Slug:          content.SlugOr(req.Slug, req.Title),
		Category:      req.Category,
		Tags:          req.Tags,
		FeaturedImage: req.FeaturedImage,
		AuthorID:      actor.ID,
		AuthorName:    c.GetString(apiutil.KeyName),
		AuthorBio:     content.StripTags(req.AuthorBio),
		AuthorPhoto:   req.AuthorPhoto,
		Status:        status,
	}
	if p.Excerpt == "" {
		p.Excerpt = content.Excerpt(body, 200)
	}
	if status == blog.StatusPublished {
		now := h.Now().UTC()
		p.PublishedAt = &now
	}

	id, err := h.Posts.Create(c.Request.Context(), &p)
	if err != nil {
		apiutil.RespondError(c, err, "Post")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *Handler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	actor, ok := apiutil.MustActor(c)
	if !ok {
		return
	}
	id := c.Param("id")
	current, err := h.Posts.GetByID(ctx, id)
	if err != nil {
		apiutil.RespondError(c, err, "Post")
		return
	}
	if !access.Authorize(actor, access.ManageBlog, current.AuthorID) {
		apiutil.Forbidden(c)
		return
	}

	fields, ok := apiutil.BindFields(c, updateFields)
	if !ok {
		return
	}
	if slug, ok := fields["slug"].(string); ok {
		fields["slug"] = content.SlugOr(slug, current.Title)
	}
	if status, ok := fields["status"].(string); ok && status != current.Status {
		if err := blog.Transitions.Check(current.Status, status); err != nil {
			apiutil.RespondError(c, err, "Post")
			return
		}
		if status == blog.StatusPublished && !canPublish(actor) {
			apiutil.Forbidden(c)
			return
		}
		if status == blog.StatusPublished && current.PublishedAt == nil {
			fields["published_at"] = h.Now().UTC()
		}
	}

	if err := h.Posts.Update(ctx, id, fields); err != nil {
		apiutil.RespondError(c, err, "Post")
		return
	}
	updated, err := h.Posts.GetByID(ctx, id)
	if err != nil {
		apiutil.RespondError(c, err, "Post")
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	actor, ok := apiutil.MustActor(c)
	if !ok {
		return
	}
	p, err := h.Posts.GetByID(ctx, c.Param("id"))
	if err != nil {
		apiutil.RespondError(c, err, "Post")
		return
	}
	if !access.Authorize(actor, access.ManageBlog, p.AuthorID) {
		apiutil.Forbidden(c)
		return
	}
	if err := h.Posts.Delete(ctx, p.ID); err != nil {
		apiutil.RespondError(c, err, "Post")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// Posts go live under the same grant as articles; authors draft their own.
func canPublish(actor access.Actor) bool {
	return access.Can(actor, access.PublishArticles)
}
