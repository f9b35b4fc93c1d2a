package stripewebhook

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"newsdesk/internal/domain/ads"
	"newsdesk/internal/domain/billing"
	"newsdesk/internal/infra/stripe"
	"newsdesk/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	stripego "github.com/stripe/stripe-go/v75"
)

const maxBodyBytes = 65536

type Handler struct {
	Stripe   stripe.Payments
	Ads      store.Collection[ads.Advertisement]
	Payments store.Collection[billing.Payment]
	Log      zerolog.Logger
	Now      func() time.Time
}

func NewHandler(sp stripe.Payments, col store.Collection[ads.Advertisement], payments store.Collection[billing.Payment], log zerolog.Logger) *Handler {
	return &Handler{
		Stripe:   sp,
		Ads:      col,
		Payments: payments,
		Log:      log.With().Str("handler", "stripe_webhook").Logger(),
		Now:      time.Now,
	}
}

// ------------------------------
// POST /api/webhooks/stripe
// ------------------------------
func (h *Handler) Handle(c *gin.Context) {
	payload, err := readStripeBody(c, maxBodyBytes)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Error reading request body"})
		return
	}

	event, err := h.Stripe.ParseWebhook(payload, c.GetHeader("Stripe-Signature"))
	if errors.Is(err, stripe.ErrNotConfigured) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "STRIPE_WEBHOOK_SECRET not configured"})
		return
	}
	if err != nil {
		h.Log.Warn().Err(err).Msg("stripe signature verification failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Signature verification failed"})
		return
	}

	log := h.Log.With().Str("event_id", event.ID).Str("event_type", string(event.Type)).Logger()

	switch event.Type {
	case "checkout.session.completed", "checkout.session.async_payment_succeeded":
		session, ok := parseSession(c, event)
		if !ok {
			return
		}
		if err := h.handleCheckoutSessionCompleted(c, session); err != nil {
			log.Error().Err(err).Str("session_id", session.ID).Msg("apply checkout session")
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "received"})

	case "checkout.session.expired", "checkout.session.async_payment_failed":
		session, ok := parseSession(c, event)
		if !ok {
			return
		}
		if err := h.handleCheckoutSessionExpired(c, session); err != nil {
			log.Error().Err(err).Str("session_id", session.ID).Msg("expire checkout session")
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "received"})

	default:
		// Acknowledge unknown events to avoid retries
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
	}
}

func parseSession(c *gin.Context, event stripego.Event) (*stripego.CheckoutSession, bool) {
	var session stripego.CheckoutSession
	if event.Data == nil || json.Unmarshal(event.Data.Raw, &session) != nil || session.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse session"})
		return nil, false
	}
	return &session, true
}

func readStripeBody(c *gin.Context, maxBytes int64) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
	return io.ReadAll(c.Request.Body)
}
