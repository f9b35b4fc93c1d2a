package newsletters

import (
	"errors"
	"net/http"

	"newsdesk/internal/api/apiutil"
	"newsdesk/internal/domain/content"
	"newsdesk/internal/domain/newsletters"
	"newsdesk/internal/store"
	"newsdesk/internal/validation"

	"github.com/gin-gonic/gin"
)

// ------------------------------
// POST /api/newsletters/subscribe
// ------------------------------
// Subscribe adds or reactivates an address. The unsubscribe token is returned
// once; only its hash is kept.
func (h *Handler) Subscribe(c *gin.Context) {
	ctx := c.Request.Context()
	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil || !validation.IsEmail(req.Email) {
		apiutil.BadRequest(c, "Invalid email address")
		return
	}
	email := newsletters.NormalizeEmail(req.Email)

	existing, err := h.Subscribers.FindOne(ctx, store.Query{}.Where("email", store.Eq, email))
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		apiutil.RespondError(c, err, "Subscriber")
		return
	}
	if existing != nil && existing.Status == newsletters.SubscriberActive {
		c.JSON(http.StatusOK, gin.H{"message": "Already subscribed"})
		return
	}

	token, hash, err := newsletters.NewUnsubscribeToken()
	if err != nil {
		apiutil.RespondError(c, err, "Subscriber")
		return
	}
	now := h.Now().UTC()

	if existing != nil {
		_, err := h.Subscribers.Mutate(ctx, existing.ID, func(s *newsletters.Subscriber) error {
			s.Status = newsletters.SubscriberActive
			s.TokenHash = hash
			s.SubscribedAt = now
			s.UnsubscribedAt = nil
			if req.Name != "" {
				s.Name = content.StripTags(req.Name)
			}
			return nil
		})
		if err != nil {
			apiutil.RespondError(c, err, "Subscriber")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Subscription reactivated", "id": existing.ID, "unsubscribe_token": token})
		return
	}

	s := newsletters.Subscriber{
		Email:        email,
		Name:         content.StripTags(req.Name),
		Status:       newsletters.SubscriberActive,
		TokenHash:    hash,
		Source:       content.StripTags(req.Source),
		SubscribedAt: now,
	}
	id, err := h.Subscribers.Create(ctx, &s)
	if err != nil {
		apiutil.RespondError(c, err, "Subscriber")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Subscribed", "id": id, "unsubscribe_token": token})
}

func (h *Handler) Unsubscribe(c *gin.Context) {
	ctx := c.Request.Context()
	var req UnsubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiutil.BadRequest(c, "Email and token are required")
		return
	}
	s, err := h.Subscribers.FindOne(ctx, store.Query{}.Where("email", store.Eq, newsletters.NormalizeEmail(req.Email)))
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		apiutil.RespondError(c, err, "Subscriber")
		return
	}
	// Unknown addresses and bad tokens get the same answer.
	if s == nil || !s.TokenMatches(req.Token) {
		apiutil.BadRequest(c, "Invalid unsubscribe token")
		return
	}
	if s.Status == newsletters.SubscriberUnsubscribed {
		c.JSON(http.StatusOK, gin.H{"message": "Already unsubscribed"})
		return
	}
	now := h.Now().UTC()
	if err := h.Subscribers.Update(ctx, s.ID, map[string]any{
		"status":          newsletters.SubscriberUnsubscribed,
		"unsubscribed_at": now,
	}); err != nil {
		apiutil.RespondError(c, err, "Subscriber")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Unsubscribed"})
}

// ListSubscribers handles GET /api/newsletters/subscribers.
func (h *Handler) ListSubscribers(c *gin.Context) {
	q := store.Query{}
	if v := c.Query("status"); v != "" {
		q = q.Where("status", store.Eq, v)
	}
	list, err := h.Subscribers.List(c.Request.Context(), q.OrderBy("subscribed_at", true).Take(apiutil.Limit(c)).Skip(apiutil.Offset(c)))
	if err != nil {
		apiutil.RespondError(c, err, "Subscriber")
		return
	}
	out := make([]SubscriberDTO, 0, len(list))
	for _, s := range list {
		out = append(out, toSubscriberDTO(s))
	}
	apiutil.RespondList(c, out)
}
