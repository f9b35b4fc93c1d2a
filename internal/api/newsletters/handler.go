package newsletters

import (
	"errors"
	"net/http"
	"time"

	"newsdesk/internal/api/apiutil"
	"newsdesk/internal/domain/content"
	"newsdesk/internal/domain/newsletters"
	"newsdesk/internal/mail"
	"newsdesk/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const msgAlreadySent = "Newsletter already sent"

var errAlreadySent = errors.New("newsletter already sent")

type Handler struct {
	Newsletters store.Collection[newsletters.Newsletter]
	Subscribers store.Collection[newsletters.Subscriber]
	Mailer      mail.Mailer
	Log         zerolog.Logger
	Now         func() time.Time
	// UnsubscribeURL is linked from the footer of every issue.
	UnsubscribeURL string
}

func NewHandler(
	issues store.Collection[newsletters.Newsletter],
	subs store.Collection[newsletters.Subscriber],
	mailer mail.Mailer,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		Newsletters: issues,
		Subscribers: subs,
		Mailer:      mailer,
		Log:         log.With().Str("handler", "newsletters").Logger(),
		Now:         time.Now,
	}
}

func (h *Handler) List(c *gin.Context) {
	q := store.Query{}
	if v := c.Query("status"); v != "" {
		q = q.Where("status", store.Eq, v)
	}
	list, err := h.Newsletters.List(c.Request.Context(), q.OrderBy("created_at", true).Take(apiutil.Limit(c)).Skip(apiutil.Offset(c)))
	if err != nil {
		apiutil.RespondError(c, err, "Newsletter")
		return
	}
	apiutil.RespondList(c, list)
}

func (h *Handler) Get(c *gin.Context) {
	n, err := h.Newsletters.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		apiutil.RespondError(c, err, "Newsletter")
		return
	}
	c.JSON(http.StatusOK, n)
}

// ------------------------------
// POST /api/newsletters
// ------------------------------
func (h *Handler) Create(c *gin.Context) {
	var req CreateNewsletterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiutil.BadRequest(c, "Title is required")
		return
	}
	subject := req.Subject
	if subject == "" {
		subject = req.Title
	}
	audience := req.Audience
	if audience == "" {
		audience = newsletters.AudienceAll
	}
	n := newsletters.Newsletter{
		Title:       content.StripTags(req.Title),
		Subject:     content.StripTags(subject),
		PreviewText: content.StripTags(req.PreviewText),
		Content:     content.SanitizeHTML(req.Content),
		Audience:    audience,
		Status:      newsletters.StatusDraft,
		CreatedBy:   apiutil.ActorFrom(c).ID,
	}
	id, err := h.Newsletters.Create(c.Request.Context(), &n)
	if err != nil {
		apiutil.RespondError(c, err, "Newsletter")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *Handler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	current, err := h.Newsletters.GetByID(ctx, id)
	if err != nil {
		apiutil.RespondError(c, err, "Newsletter")
		return
	}
	if newsletters.Dispatched(current.Status) {
		apiutil.BadRequest(c, msgAlreadySent)
		return
	}
	fields, ok := apiutil.BindFields(c, updateFields)
	if !ok {
		return
	}
	if status, ok := fields["status"].(string); ok && status != current.Status {
		if err := newsletters.Transitions.Check(current.Status, status); err != nil {
			apiutil.RespondError(c, err, "Newsletter")
			return
		}
		if status == newsletters.StatusDraft {
			fields["scheduled_at"] = nil
		}
	}
	if err := h.Newsletters.Update(ctx, id, fields); err != nil {
		apiutil.RespondError(c, err, "Newsletter")
		return
	}
	updated, err := h.Newsletters.GetByID(ctx, id)
	if err != nil {
		apiutil.RespondError(c, err, "Newsletter")
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.Newsletters.Delete(c.Request.Context(), c.Param("id")); err != nil {
		apiutil.RespondError(c, err, "Newsletter")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// Schedule marks a draft for sending at scheduled_at. Dispatch itself is triggered through Send.
func (h *Handler) Schedule(c *gin.Context) {
	var req ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiutil.BadRequest(c, "scheduled_at is required")
		return
	}
	at, err := apiutil.ParseTime(req.ScheduledAt)
	if err != nil || !at.After(h.Now()) {
		apiutil.BadRequest(c, "scheduled_at must be in the future")
		return
	}
	n, err := h.Newsletters.Mutate(c.Request.Context(), c.Param("id"), func(n *newsletters.Newsletter) error {
		if newsletters.Dispatched(n.Status) {
			return errAlreadySent
		}
		if err := newsletters.Transitions.Check(n.Status, newsletters.StatusScheduled); err != nil {
			return err
		}
		n.Status = newsletters.StatusScheduled
		n.ScheduledAt = &at
		return nil
	})
	if errors.Is(err, errAlreadySent) {
		apiutil.BadRequest(c, msgAlreadySent)
		return
	}
	if err != nil {
		apiutil.RespondError(c, err, "Newsletter")
		return
	}
	c.JSON(http.StatusOK, n)
}
