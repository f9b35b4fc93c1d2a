package articles

import (
	"net/http"
	"time"

	"newsdesk/internal/api/apiutil"
	"newsdesk/internal/domain/access"
	"newsdesk/internal/domain/articles"
	"newsdesk/internal/domain/content"
	"newsdesk/internal/store"

	"github.com/gin-gonic/gin"
)

const excerptLength = 200

type Handler struct {
	Articles store.Collection[articles.Article]
	Now      func() time.Time
}

func NewHandler(col store.Collection[articles.Article]) *Handler {
	return &Handler{Articles: col, Now: time.Now}
}

// ------------------------------
// GET /api/articles
// ------------------------------
func (h *Handler) List(c *gin.Context) {
	q, ok := listQuery(c, apiutil.ActorFrom(c))
	if !ok {
		apiutil.Forbidden(c)
		return
	}
	list, err := h.Articles.List(c.Request.Context(), q.Take(apiutil.Limit(c)).Skip(apiutil.Offset(c)))
	if err != nil {
		apiutil.RespondError(c, err, "Article")
		return
	}
	apiutil.RespondList(c, list)
}

func (h *Handler) Get(c *gin.Context) {
	a, err := h.Articles.GetByID(c.Request.Context(), c.Param("id"))
	h.respondOne(c, a, err)
}

func (h *Handler) GetBySlug(c *gin.Context) {
	a, err := h.Articles.GetBySlug(c.Request.Context(), c.Param("slug"))
	h.respondOne(c, a, err)
}

func (h *Handler) respondOne(c *gin.Context, a *articles.Article, err error) {
	if err != nil {
		apiutil.RespondError(c, err, "Article")
		return
	}
	if !visible(a, apiutil.ActorFrom(c)) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
		return
	}
	c.JSON(http.StatusOK, a)
}

// ------------------------------
// POST /api/articles
// ------------------------------
func (h *Handler) Create(c *gin.Context) {
	actor, ok := apiutil.MustActor(c)
	if !ok {
		return
	}
	var req CreateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiutil.BadRequest(c, "Title is required")
		return
	}

	status := req.Status
	if status == "" {
		status = articles.StatusDraft
	}
	if !articles.Transitions.Known(status) {
		apiutil.RespondError(c, &content.TransitionError{To: status}, "Article")
		return
	}
	if status == articles.StatusPublished && !access.Can(actor, access.PublishArticles) {
		apiutil.Forbidden(c)
		return
	}

	body := content.SanitizeHTML(req.Content)
	a := articles.Article{
		Title:         content.StripTags(req.Title),
		Content:       body,
		Excerpt:       content.StripTags(req.Excerpt),
		Slug:          content.SlugOr(req.Slug, req.Title),
		Category:      req.Category,
		Tags:          req.Tags,
		FeaturedImage: req.FeaturedImage,
		AuthorID:      actor.ID,
		AuthorName:    c.GetString(apiutil.KeyName),
		Status:        status,
		Source:        articles.SourceManual,
	}
	if a.Excerpt == "" {
		a.Excerpt = content.Excerpt(body, excerptLength)
	}
	if status == articles.StatusPublished {
		now := h.Now().UTC()
		a.PublishedAt = &now
	}

	id, err := h.Articles.Create(c.Request.Context(), &a)
	if err != nil {
		apiutil.RespondError(c, err, "Article")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// ------------------------------
// PUT /api/articles/:id
// ------------------------------
func (h *Handler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	actor, ok := apiutil.MustActor(c)
	if !ok {
		return
	}
	id := c.Param("id")

	current, err := h.Articles.GetByID(ctx, id)
	if err != nil {
		apiutil.RespondError(c, err, "Article")
		return
	}
	if !access.Authorize(actor, access.EditArticles, current.AuthorID) {
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
		if err := articles.Transitions.Check(current.Status, status); err != nil {
			apiutil.RespondError(c, err, "Article")
			return
		}
		if !access.Can(actor, access.PublishArticles) {
			apiutil.Forbidden(c)
			return
		}
		if status == articles.StatusPublished {
			fields["published_at"] = h.Now().UTC()
		} else {
			fields["published_at"] = nil
		}
	}

	if err := h.Articles.Update(ctx, id, fields); err != nil {
		apiutil.RespondError(c, err, "Article")
		return
	}
	updated, err := h.Articles.GetByID(ctx, id)
	if err != nil {
		apiutil.RespondError(c, err, "Article")
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
	a, err := h.Articles.GetByID(ctx, c.Param("id"))
	if err != nil {
		apiutil.RespondError(c, err, "Article")
		return
	}
	if !access.Authorize(actor, access.DeleteArticles, a.AuthorID) {
		apiutil.Forbidden(c)
		return
	}
	if err := h.Articles.Delete(ctx, a.ID); err != nil {
		apiutil.RespondError(c, err, "Article")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// BulkDelete removes every listed article or none of them.
func (h *Handler) BulkDelete(c *gin.Context) {
	actor, ok := apiutil.MustActor(c)
	if !ok {
		return
	}
	if !access.CanAny(actor, access.DeleteArticles) {
		apiutil.Forbidden(c)
		return
	}
	var req apiutil.IDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiutil.BadRequest(c, "ids are required")
		return
	}
	if err := h.Articles.DeleteMany(c.Request.Context(), req.IDs); err != nil {
		apiutil.RespondError(c, err, "Article")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": len(req.IDs)})
}

// ------------------------------
// POST /api/articles/:id/publish | /unpublish
// ------------------------------
func (h *Handler) Publish(c *gin.Context) {
	h.setStatus(c, articles.StatusPublished)
}

func (h *Handler) Unpublish(c *gin.Context) {
	h.setStatus(c, articles.StatusDraft)
}

func (h *Handler) setStatus(c *gin.Context, status string) {
	actor, ok := apiutil.MustActor(c)
	if !ok {
		return
	}
	if !access.Can(actor, access.PublishArticles) {
		apiutil.Forbidden(c)
		return
	}
	now := h.Now().UTC()
	a, err := h.Articles.Mutate(c.Request.Context(), c.Param("id"), func(a *articles.Article) error {
		if a.Status == status {
			return nil
		}
		if err := articles.Transitions.Check(a.Status, status); err != nil {
			return err
		}
		a.Status = status
		if status == articles.StatusPublished {
			a.PublishedAt = &now
		} else {
			a.PublishedAt = nil
		}
		return nil
	})
	if err != nil {
		apiutil.RespondError(c, err, "Article")
		return
	}
	c.JSON(http.StatusOK, a)
}
