package events

import (
	"errors"
	"net/http"
	"time"

	"newsdesk/internal/api/apiutil"
	"newsdesk/internal/domain/access"
	"newsdesk/internal/domain/content"
	"newsdesk/internal/domain/events"
	"newsdesk/internal/store"
	"newsdesk/internal/validation"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Events store.Collection[events.Event]
	Now    func() time.Time
}

func NewHandler(col store.Collection[events.Event]) *Handler {
	return &Handler{Events: col, Now: time.Now}
}

// ------------------------------
// GET /api/events?from=&to=
// ------------------------------
func (h *Handler) List(c *gin.Context) {
	actor := apiutil.ActorFrom(c)
	q, err := rangeQuery(c, h.Now().UTC())
	if err != nil {
		apiutil.RespondError(c, err, "Event")
		return
	}
	status := c.DefaultQuery("status", events.StatusPublished)
	switch {
	case status == events.StatusPublished:
	case c.Query("mine") == "true" && actor.Authenticated():
		q = q.Where("submitted_by", store.Eq, actor.ID)
	case !canReview(actor):
		apiutil.Forbidden(c)
		return
	}
	if status != "all" {
		q = q.Where("status", store.Eq, status)
	}

	list, err := h.Events.List(c.Request.Context(), q.OrderBy("start_date", false).Take(apiutil.Limit(c)).Skip(apiutil.Offset(c)))
	if err != nil {
		apiutil.RespondError(c, err, "Event")
		return
	}
	apiutil.RespondList(c, list)
}

func (h *Handler) Get(c *gin.Context) {
	e, err := h.Events.GetByID(c.Request.Context(), c.Param("id"))
	h.respondOne(c, e, err)
}

func (h *Handler) GetBySlug(c *gin.Context) {
	e, err := h.Events.GetBySlug(c.Request.Context(), c.Param("slug"))
	h.respondOne(c, e, err)
}

func (h *Handler) respondOne(c *gin.Context, e *events.Event, err error) {
	if err != nil {
		apiutil.RespondError(c, err, "Event")
		return
	}
	if !visible(e, apiutil.ActorFrom(c)) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}
	c.JSON(http.StatusOK, e)
}

// ------------------------------
// POST /api/events/submit
// ------------------------------
// Submit accepts an event from any signed-in user. It starts pending unless an approver sets a status.
func (h *Handler) Submit(c *gin.Context) {
	actor, ok := apiutil.MustActor(c)
	if !ok {
		return
	}
	var req SubmitEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiutil.BadRequest(c, "Title and start date are required")
		return
	}
	start, err := apiutil.ParseTime(req.StartDate)
	if err != nil {
		apiutil.BadRequest(c, "Invalid start date")
		return
	}
	var end *time.Time
	if req.EndDate != "" {
		t, err := apiutil.ParseTime(req.EndDate)
		if err != nil || t.Before(start) {
			apiutil.BadRequest(c, "Invalid end date")
			return
		}
		end = &t
	}
	if req.OrganizerEmail != "" && !validation.IsEmail(req.OrganizerEmail) {
		apiutil.BadRequest(c, "Invalid email address")
		return
	}
	for _, u := range []string{req.TicketURL, req.ImageURL} {
		if u != "" && !validation.IsURL(u) {
			apiutil.BadRequest(c, "Invalid URL")
			return
		}
	}

	status := events.StatusPending
	if req.Status != "" && canReview(actor) {
		if !events.Transitions.Known(req.Status) {
			apiutil.RespondError(c, &content.TransitionError{To: req.Status}, "Event")
			return
		}
		status = req.Status
	}

	e := events.Event{
		Title:          content.StripTags(req.Title),
		Slug:           content.SlugOr(req.Slug, req.Title),
		Description:    content.SanitizeHTML(req.Description),
		StartDate:      start,
		EndDate:        end,
		Location:       content.StripTags(req.Location),
		Address:        content.StripTags(req.Address),
		Organizer:      content.StripTags(req.Organizer),
		OrganizerEmail: req.OrganizerEmail,
		TicketURL:      req.TicketURL,
		ImageURL:       req.ImageURL,
		Category:       req.Category,
		SubmittedBy:    actor.ID,
		Status:         status,
	}
	if status != events.StatusPending {
		now := h.Now().UTC()
		e.ReviewedBy, e.ReviewedAt = actor.ID, &now
	}

	id, err := h.Events.Create(c.Request.Context(), &e)
	if err != nil {
		apiutil.RespondError(c, err, "Event")
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
	current, err := h.Events.GetByID(ctx, id)
	if err != nil {
		apiutil.RespondError(c, err, "Event")
		return
	}
	if !access.Authorize(actor, access.ManageEvents, current.SubmittedBy) {
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
	if email, ok := fields["organizer_email"].(string); ok && email != "" && !validation.IsEmail(email) {
		apiutil.BadRequest(c, "Invalid email address")
		return
	}
	for _, key := range []string{"ticket_url", "image_url"} {
		if u, ok := fields[key].(string); ok && u != "" && !validation.IsURL(u) {
			apiutil.BadRequest(c, "Invalid URL")
			return
		}
	}
	if v, ok := fields["start_date"]; ok && v == nil {
		apiutil.BadRequest(c, "Invalid start date")
		return
	}
	start := current.StartDate
	if t, ok := fields["start_date"].(time.Time); ok {
		start = t
	}
	end := current.EndDate
	if v, ok := fields["end_date"]; ok {
		end = nil
		if t, ok := v.(time.Time); ok {
			end = &t
		}
	}
	if end != nil && end.Before(start) {
		apiutil.BadRequest(c, "Invalid end date")
		return
	}
	// A submitter's edit to a reviewed event goes back to the review queue.
	if !canReview(actor) && (current.Status == events.StatusApproved || current.Status == events.StatusPublished) {
		fields["status"] = events.StatusPending
		fields["reviewed_by"] = ""
		fields["reviewed_at"] = nil
	}

	if err := h.Events.Update(ctx, id, fields); err != nil {
		apiutil.RespondError(c, err, "Event")
		return
	}
	updated, err := h.Events.GetByID(ctx, id)
	if err != nil {
		apiutil.RespondError(c, err, "Event")
		return
	}
	c.JSON(http.StatusOK, updated)
}

// ------------------------------
// POST /api/events/:id/approve | /publish | /cancel
// ------------------------------
func (h *Handler) Approve(c *gin.Context) {
	h.review(c, events.StatusApproved)
}

func (h *Handler) Publish(c *gin.Context) {
	h.review(c, events.StatusPublished)
}

// Cancel is open to reviewers and to the submitter of the event.
func (h *Handler) Cancel(c *gin.Context) {
	h.review(c, events.StatusCancelled)
}

func (h *Handler) review(c *gin.Context, status string) {
	actor, ok := apiutil.MustActor(c)
	if !ok {
		return
	}
	now := h.Now().UTC()
	e, err := h.Events.Mutate(c.Request.Context(), c.Param("id"), func(e *events.Event) error {
		allowed := canReview(actor) ||
			(status == events.StatusCancelled && access.Authorize(actor, access.ManageEvents, e.SubmittedBy))
		if !allowed {
			return errForbidden
		}
		if err := events.Transitions.Check(e.Status, status); err != nil {
			return err
		}
		e.Status = status
		e.ReviewedBy, e.ReviewedAt = actor.ID, &now
		return nil
	})
	if errors.Is(err, errForbidden) {
		apiutil.Forbidden(c)
		return
	}
	if err != nil {
		apiutil.RespondError(c, err, "Event")
		return
	}
	c.JSON(http.StatusOK, e)
}

func (h *Handler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	actor, ok := apiutil.MustActor(c)
	if !ok {
		return
	}
	e, err := h.Events.GetByID(ctx, c.Param("id"))
	if err != nil {
		apiutil.RespondError(c, err, "Event")
		return
	}
	if !access.Authorize(actor, access.ManageEvents, e.SubmittedBy) {
		apiutil.Forbidden(c)
		return
	}
	if err := h.Events.Delete(ctx, e.ID); err != nil {
		apiutil.RespondError(c, err, "Event")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
