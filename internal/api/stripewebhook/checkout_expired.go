package stripewebhook

import (
	"errors"

	"newsdesk/internal/domain/billing"
	"newsdesk/internal/store"

	"github.com/gin-gonic/gin"
	stripego "github.com/stripe/stripe-go/v75"
)

// handleCheckoutSessionExpired closes the payment record. The campaign stays in
// pending_payment so the advertiser can start a new checkout.
func (h *Handler) handleCheckoutSessionExpired(c *gin.Context, session *stripego.CheckoutSession) error {
	ctx := c.Request.Context()
	payment, err := h.Payments.FindOne(ctx, store.Query{}.Where("stripe_session_id", store.Eq, session.ID))
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	_, err = h.Payments.Mutate(ctx, payment.ID, func(p *billing.Payment) error {
		if p.Status == billing.PaymentUnpaid {
			p.Status = billing.PaymentExpired
		}
		return nil
	})
	return err
}
