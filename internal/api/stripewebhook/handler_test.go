package stripewebhook_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"newsdesk/internal/api/apitest"
	"newsdesk/internal/api/stripewebhook"
	"newsdesk/internal/domain/ads"
	"newsdesk/internal/domain/billing"
	"newsdesk/internal/infra/stripe"
	"newsdesk/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	stripego "github.com/stripe/stripe-go/v75"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// signedStripe trusts any payload carrying the signature "ok" and reads it as {"type", "object"}.
type signedStripe struct{}

func (signedStripe) CreateAdCheckout(ctx context.Context, in stripe.AdCheckout) (*stripe.Session, error) {
	return nil, stripe.ErrNotConfigured
}

func (signedStripe) ParseWebhook(payload []byte, signature string) (stripego.Event, error) {
	if signature != "ok" {
		return stripego.Event{}, errors.New("bad signature")
	}
	var in struct {
		Type   string          `json:"type"`
		Object json.RawMessage `json:"object"`
	}
	if err := json.Unmarshal(payload, &in); err != nil {
		return stripego.Event{}, err
	}
	var ev stripego.Event
	if err := json.Unmarshal([]byte(`{"id":"evt_1","type":"`+in.Type+`"}`), &ev); err != nil {
		return stripego.Event{}, err
	}
	ev.Data = &stripego.EventData{Raw: in.Object}
	return ev, nil
}

var now = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	r        *gin.Engine
	ads      *store.Memory[ads.Advertisement]
	payments *store.Memory[billing.Payment]
}

func setup(t *testing.T) fixture {
	f := fixture{
		ads:      store.NewMemory[ads.Advertisement]("advertisements"),
		payments: store.NewMemory[billing.Payment]("payments"),
	}
	h := stripewebhook.NewHandler(signedStripe{}, f.ads, f.payments, zerolog.Nop())
	h.Now = func() time.Time { return now }
	f.r = apitest.Engine()
	f.r.POST("/api/webhooks/stripe", h.Handle)
	return f
}

func (f fixture) campaign(t *testing.T, start *time.Time) string {
	t.Helper()
	id, err := f.ads.Create(t.Context(), &ads.Advertisement{Kind: ads.KindCampaign, Name: "c", Placement: "header",
		Status: ads.StatusPendingPayment, PriceCents: 4999, StartDate: start, StripeSessionID: "cs_1"})
	require.NoError(t, err)
	_, err = f.payments.Create(t.Context(), &billing.Payment{AdID: id, StripeSessionID: "cs_1", AmountCents: 4999, Status: billing.PaymentUnpaid})
	require.NoError(t, err)
	return id
}

func deliver(t *testing.T, r http.Handler, eventType string, object map[string]any) int {
	t.Helper()
	w := apitest.Do(t, r, apitest.Request{Method: http.MethodPost, Path: "/api/webhooks/stripe",
		Body:   map[string]any{"type": eventType, "object": object},
		Header: map[string]string{"Stripe-Signature": "ok"}})
	return w.Code
}

func TestCompletedCheckoutActivatesCampaign(t *testing.T) {
	f := setup(t)
	id := f.campaign(t, nil)

	code := deliver(t, f.r, "checkout.session.completed", map[string]any{
		"id": "cs_1", "payment_status": "paid", "client_reference_id": id, "payment_intent": "pi_9",
	})
	require.Equal(t, http.StatusOK, code)

	a, _ := f.ads.GetByID(t.Context(), id)
	assert.Equal(t, ads.StatusActive, a.Status)
	require.NotNil(t, a.PaidAt)

	p, err := f.payments.FindOne(t.Context(), store.Query{}.Where("stripe_session_id", store.Eq, "cs_1"))
	require.NoError(t, err)
	assert.Equal(t, billing.PaymentPaid, p.Status)
	assert.Equal(t, "pi_9", p.PaymentIntentID)

	// Replays leave a paused campaign paused.
	_, err = f.ads.Mutate(t.Context(), id, func(a *ads.Advertisement) error { a.Status = ads.StatusPaused; return nil })
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, deliver(t, f.r, "checkout.session.completed", map[string]any{
		"id": "cs_1", "payment_status": "paid", "client_reference_id": id,
	}))
	a, _ = f.ads.GetByID(t.Context(), id)
	assert.Equal(t, ads.StatusPaused, a.Status)
}

func TestCompletedCheckoutSchedulesFutureCampaign(t *testing.T) {
	f := setup(t)
	start := now.Add(72 * time.Hour)
	id := f.campaign(t, &start)

	require.Equal(t, http.StatusOK, deliver(t, f.r, "checkout.session.completed", map[string]any{
		"id": "cs_1", "payment_status": "paid", "metadata": map[string]string{"ad_id": id},
	}))
	a, _ := f.ads.GetByID(t.Context(), id)
	assert.Equal(t, ads.StatusScheduled, a.Status)
}

func TestUnpaidCompletionWaits(t *testing.T) {
	f := setup(t)
	id := f.campaign(t, nil)
	require.Equal(t, http.StatusOK, deliver(t, f.r, "checkout.session.completed", map[string]any{
		"id": "cs_1", "payment_status": "unpaid", "client_reference_id": id,
	}))
	a, _ := f.ads.GetByID(t.Context(), id)
	assert.Equal(t, ads.StatusPendingPayment, a.Status)
}

func TestExpiredCheckoutClosesPayment(t *testing.T) {
	f := setup(t)
	id := f.campaign(t, nil)
	require.Equal(t, http.StatusOK, deliver(t, f.r, "checkout.session.expired", map[string]any{"id": "cs_1"}))

	p, _ := f.payments.FindOne(t.Context(), store.Query{}.Where("stripe_session_id", store.Eq, "cs_1"))
	assert.Equal(t, billing.PaymentExpired, p.Status)
	a, _ := f.ads.GetByID(t.Context(), id)
	assert.Equal(t, ads.StatusPendingPayment, a.Status)
}

func TestRejectsBadSignatureAndIgnoresOtherEvents(t *testing.T) {
	f := setup(t)
	w := apitest.Do(t, f.r, apitest.Request{Method: http.MethodPost, Path: "/api/webhooks/stripe",
		Body: map[string]any{"type": "checkout.session.completed"}, Header: map[string]string{"Stripe-Signature": "forged"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Equal(t, http.StatusOK, deliver(t, f.r, "invoice.paid", map[string]any{"id": "in_1"}))
	assert.Equal(t, http.StatusBadRequest, deliver(t, f.r, "checkout.session.completed", map[string]any{}))
}
