package ads

import (
	"errors"
	"net/http"
	"strings"

	"newsdesk/internal/api/apiutil"
	"newsdesk/internal/domain/access"
	"newsdesk/internal/domain/ads"
	"newsdesk/internal/domain/billing"
	"newsdesk/internal/infra/stripe"

	"github.com/gin-gonic/gin"
)

// ------------------------------
// POST /api/ads/:id/checkout
// ------------------------------
// Checkout opens a Stripe Checkout session for a campaign. The ad stays in
// pending_payment until the webhook confirms the session.
func (h *Handler) Checkout(c *gin.Context) {
	ctx := c.Request.Context()
	actor, ok := apiutil.MustActor(c)
	if !ok {
		return
	}
	a, err := h.Ads.GetByID(ctx, c.Param("id"))
	if err != nil {
		apiutil.RespondError(c, err, "Advertisement")
		return
	}
	email := c.GetString(apiutil.KeyEmail)
	if !access.CanAny(actor, access.ManageAds) && !strings.EqualFold(email, a.AdvertiserEmail) {
		apiutil.Forbidden(c)
		return
	}
	if a.Kind != ads.KindCampaign {
		apiutil.BadRequest(c, "Only campaigns can be paid for")
		return
	}
	if a.Status != ads.StatusPendingPayment {
		apiutil.BadRequest(c, "Advertisement is not awaiting payment")
		return
	}
	if a.PriceCents <= 0 {
		apiutil.BadRequest(c, "Advertisement has no price")
		return
	}

	payer := a.AdvertiserEmail
	if payer == "" {
		payer = email
	}
	session, err := h.Stripe.CreateAdCheckout(ctx, stripe.AdCheckout{
		AdID:        a.ID,
		Name:        a.Name,
		Email:       payer,
		AmountCents: a.PriceCents,
		Currency:    a.Currency,
	})
	if errors.Is(err, stripe.ErrNotConfigured) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Payments are not configured"})
		return
	}
	if err != nil {
		h.Log.Error().Err(err).Str("ad_id", a.ID).Msg("create checkout session")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to create checkout session"})
		return
	}

	if _, err := h.Payments.Create(ctx, &billing.Payment{
		AdID:            a.ID,
		PayerEmail:      payer,
		StripeSessionID: session.ID,
		AmountCents:     a.PriceCents,
		Currency:        a.Currency,
		Status:          billing.PaymentUnpaid,
	}); err != nil {
		apiutil.RespondError(c, err, "Payment")
		return
	}
	if _, err := h.Ads.Mutate(ctx, a.ID, func(ad *ads.Advertisement) error {
		ad.StripeSessionID = session.ID
		return nil
	}); err != nil {
		apiutil.RespondError(c, err, "Advertisement")
		return
	}

	c.JSON(http.StatusOK, CheckoutResponse{SessionID: session.ID, URL: session.URL})
}
