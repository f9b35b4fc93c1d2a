package stripewebhook

import (
	"errors"
	"fmt"

	"newsdesk/internal/domain/ads"
	"newsdesk/internal/domain/billing"
	"newsdesk/internal/infra/stripe"
	"newsdesk/internal/store"

	"github.com/gin-gonic/gin"
	stripego "github.com/stripe/stripe-go/v75"
)

// handleCheckoutSessionCompleted marks the payment paid and takes the campaign live, or
// schedules it when its start date is still ahead. Replayed events are no-ops.
func (h *Handler) handleCheckoutSessionCompleted(c *gin.Context, session *stripego.CheckoutSession) error {
	ctx := c.Request.Context()
	if stripe.NormalizePaymentStatus(string(session.PaymentStatus)) != billing.PaymentPaid {
		h.Log.Info().Str("session_id", session.ID).Str("payment_status", string(session.PaymentStatus)).Msg("checkout completed without payment; waiting")
		return nil
	}

	adID := adIDFromSession(session)
	payment, err := h.Payments.FindOne(ctx, store.Query{}.Where("stripe_session_id", store.Eq, session.ID))
	switch {
	case err == nil:
		if adID == "" {
			adID = payment.AdID
		}
		if _, err := h.Payments.Mutate(ctx, payment.ID, func(p *billing.Payment) error {
			p.Status = billing.PaymentPaid
			if session.PaymentIntent != nil {
				p.PaymentIntentID = session.PaymentIntent.ID
			}
			if session.AmountTotal > 0 {
				p.AmountCents = session.AmountTotal
			}
			return nil
		}); err != nil {
			return fmt.Errorf("mark payment paid: %w", err)
		}
	case errors.Is(err, store.ErrNotFound):
		h.Log.Warn().Str("session_id", session.ID).Msg("no payment record for checkout session")
	default:
		return fmt.Errorf("load payment: %w", err)
	}

	if adID == "" {
		return errors.New("checkout session missing ad_id (metadata.ad_id or client_reference_id)")
	}

	now := h.Now()
	_, err = h.Ads.Mutate(ctx, adID, func(a *ads.Advertisement) error {
		if a.Status != ads.StatusPendingPayment {
			return nil
		}
		next := ads.StatusAfterPayment(a.StartDate, now)
		if err := ads.Transitions.Check(a.Status, next); err != nil {
			return err
		}
		a.Status = next
		a.StripeSessionID = session.ID
		a.PaidAt = &now
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		h.Log.Warn().Str("ad_id", adID).Msg("paid checkout for unknown advertisement")
		return nil
	}
	return err
}

func adIDFromSession(session *stripego.CheckoutSession) string {
	if id := session.Metadata["ad_id"]; id != "" {
		return id
	}
	return session.ClientReferenceID
}
