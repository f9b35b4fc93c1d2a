package community

import (
	"net/http"

	"newsdesk/internal/api/apiutil"
	"newsdesk/internal/domain/access"
	"newsdesk/internal/domain/community"
	"newsdesk/internal/domain/content"
	"newsdesk/internal/store"

	"github.com/gin-gonic/gin"
)

const maxPostLength = 5000

type CreatePostRequest struct {
	Content string   `json:"content" binding:"required"`
	Images  []string `json:"images"`
	Topic   string   `json:"topic"`
}

type Handler struct {
	Posts store.Collection[community.Post]
}

func NewHandler(col store.Collection[community.Post]) *Handler {
	return &Handler{Posts: col}
}

// List returns active posts, pinned first and then newest first. Moderators may ask for other statuses.
func (h *Handler) List(c *gin.Context) {
	q := store.Query{}
	status := c.DefaultQuery("status", community.StatusActive)
	if status != community.StatusActive && !access.CanAny(apiutil.ActorFrom(c), access.ModerateCommunity) {
		apiutil.Forbidden(c)
		return
	}
	if status != "all" {
		q = q.Where("status", store.Eq, status)
	}
	if v := c.Query("topic"); v != "" {
		q = q.Where("topic", store.Eq, v)
	}
	if v := c.Query("author"); v != "" {
		q = q.Where("author_id", store.Eq, v)
	}
	q = q.OrderBy("pinned", true).OrderBy("created_at", true)

	list, err := h.Posts.List(c.Request.Context(), q.Take(apiutil.Limit(c)).Skip(apiutil.Offset(c)))
	if err != nil {
		apiutil.RespondError(c, err, "Post")
		return
	}
	apiutil.RespondList(c, list)
}

func (h *Handler) Get(c *gin.Context) {
	p, err := h.Posts.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		apiutil.RespondError(c, err, "Post")
		return
	}
	actor := apiutil.ActorFrom(c)
	if p.Status == community.StatusHidden && p.AuthorID != actor.ID && !access.CanAny(actor, access.ModerateCommunity) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) Create(c *gin.Context) {
	actor, ok := apiutil.MustActor(c)
	if !ok {
		return
	}
	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiutil.BadRequest(c, "Content is required")
		return
	}
	text := content.StripTags(req.Content)
	if text == "" {
		apiutil.BadRequest(c, "Content is required")
		return
	}
	if len([]rune(text)) > maxPostLength {
		apiutil.BadRequest(c, "Content is too long")
		return
	}
	p := community.Post{
		AuthorID:   actor.ID,
		AuthorName: c.GetString(apiutil.KeyName),
		Content:    text,
		Images:     req.Images,
		Topic:      content.StripTags(req.Topic),
		Status:     community.StatusActive,
	}
	id, err := h.Posts.Create(c.Request.Context(), &p)
	if err != nil {
		apiutil.RespondError(c, err, "Post")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// ------------------------------
// POST|DELETE /api/community/:id/like
// ------------------------------
func (h *Handler) Like(c *gin.Context) {
	h.mutate(c, func(actor access.Actor, p *community.Post) error {
		p.Like(actor.ID)
		return nil
	})
}

func (h *Handler) Unlike(c *gin.Context) {
	h.mutate(c, func(actor access.Actor, p *community.Post) error {
		p.Unlike(actor.ID)
		return nil
	})
}

// Flag is open to every signed-in user.
func (h *Handler) Flag(c *gin.Context) {
	h.mutate(c, func(actor access.Actor, p *community.Post) error {
		p.Flag(actor.ID)
		return nil
	})
}

// ------------------------------
// moderation
// ------------------------------
func (h *Handler) Hide(c *gin.Context) {
	h.moderate(c, func(p *community.Post) error { return setStatus(p, community.StatusHidden) })
}

func (h *Handler) Restore(c *gin.Context) {
	h.moderate(c, func(p *community.Post) error {
		if err := setStatus(p, community.StatusActive); err != nil {
			return err
		}
		p.FlaggedBy = nil
		return nil
	})
}

func (h *Handler) Pin(c *gin.Context) {
	h.moderate(c, func(p *community.Post) error {
		p.Pinned = true
		return nil
	})
}

func (h *Handler) Unpin(c *gin.Context) {
	h.moderate(c, func(p *community.Post) error {
		p.Pinned = false
		return nil
	})
}

func setStatus(p *community.Post, status string) error {
	if err := community.Transitions.Check(p.Status, status); err != nil {
		return err
	}
	p.Status = status
	return nil
}

func (h *Handler) moderate(c *gin.Context, fn func(*community.Post) error) {
	if !access.CanAny(apiutil.ActorFrom(c), access.ModerateCommunity) {
		apiutil.Forbidden(c)
		return
	}
	h.mutate(c, func(_ access.Actor, p *community.Post) error { return fn(p) })
}

func (h *Handler) mutate(c *gin.Context, fn func(access.Actor, *community.Post) error) {
	actor, ok := apiutil.MustActor(c)
	if !ok {
		return
	}
	p, err := h.Posts.Mutate(c.Request.Context(), c.Param("id"), func(p *community.Post) error {
		return fn(actor, p)
	})
	if err != nil {
		apiutil.RespondError(c, err, "Post")
		return
	}
	c.JSON(http.StatusOK, p)
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
	if !access.Authorize(actor, access.DeleteCommunity, p.AuthorID) {
		apiutil.Forbidden(c)
		return
	}
	if err := h.Posts.Delete(ctx, p.ID); err != nil {
		apiutil.RespondError(c, err, "Post")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
