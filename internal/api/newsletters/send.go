package newsletters

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"newsdesk/internal/api/apiutil"
	"newsdesk/internal/domain/content"
	"newsdesk/internal/domain/newsletters"
	"newsdesk/internal/mail"
	"newsdesk/internal/store"

	"github.com/gin-gonic/gin"
)

// ------------------------------
// POST /api/newsletters/:id/send
// ------------------------------
// Send delivers the issue to every active subscriber through the configured
// mailer and records the result. The issue is claimed before dispatch so a
// second send cannot deliver it again. There is no retry; failed recipients are only counted.
func (h *Handler) Send(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	var previous string
	n, err := h.Newsletters.Mutate(ctx, id, func(n *newsletters.Newsletter) error {
		if newsletters.Dispatched(n.Status) {
			return errAlreadySent
		}
		previous = n.Status
		n.Status = newsletters.StatusSending
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

	subs, err := h.Subscribers.List(ctx, store.Query{}.Where("status", store.Eq, newsletters.SubscriberActive))
	if err != nil {
		h.release(id, previous)
		apiutil.RespondError(c, err, "Subscriber")
		return
	}
	msgs := make([]mail.Message, 0, len(subs))
	for _, s := range subs {
		msgs = append(msgs, h.message(n, s))
	}

	result, err := h.Mailer.SendBatch(ctx, msgs)
	if err != nil {
		h.Log.Error().Err(err).Str("newsletter_id", id).Msg("newsletter dispatch failed")
		h.release(id, previous)
		apiutil.RespondError(c, err, "Newsletter")
		return
	}

	sentAt := h.Now().UTC()
	sent, err := h.Newsletters.Mutate(context.WithoutCancel(ctx), id, func(n *newsletters.Newsletter) error {
		n.Status = newsletters.StatusSent
		n.SentAt = &sentAt
		n.Stats.Recipients = result.Recipients
		n.Stats.Delivered = result.Delivered
		n.Stats.Failed = result.Failed
		return nil
	})
	if err != nil {
		h.Log.Error().Stack().Err(err).Str("newsletter_id", id).Msg("record newsletter send")
		apiutil.RespondError(c, err, "Newsletter")
		return
	}

	h.Log.Info().
		Str("newsletter_id", id).
		Int("recipients", result.Recipients).
		Int("failed", result.Failed).
		Msg("newsletter sent")
	c.JSON(http.StatusOK, gin.H{"message": "Newsletter sent", "stats": sent.Stats, "sent_at": sent.SentAt})
}

// release hands a claimed issue back when nothing went out.
func (h *Handler) release(id, status string) {
	_, err := h.Newsletters.Mutate(context.Background(), id, func(n *newsletters.Newsletter) error {
		if n.Status == newsletters.StatusSending {
			n.Status = status
		}
		return nil
	})
	if err != nil {
		h.Log.Error().Err(err).Str("newsletter_id", id).Msg("release newsletter claim")
	}
}

func (h *Handler) message(n *newsletters.Newsletter, s newsletters.Subscriber) mail.Message {
	body := n.Content
	if h.UnsubscribeURL != "" {
		body += fmt.Sprintf(`<p style="font-size:12px"><a href="%s">Unsubscribe</a></p>`, h.UnsubscribeURL)
	}
	return mail.Message{
		To:      s.Email,
		Subject: n.Subject,
		HTML:    body,
		Text:    content.StripTags(n.Content),
	}
}
