package billing_test

import (
	"net/http"
	"testing"

	"newsdesk/internal/api/apitest"
	"newsdesk/internal/api/apiutil"
	billingapi "newsdesk/internal/api/billing"
	"newsdesk/internal/domain/billing"
	"newsdesk/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListFiltersPayments(t *testing.T) {
	col := store.NewMemory[billing.Payment]("payments")
	for _, p := range []billing.Payment{
		{AdID: "a1", StripeSessionID: "cs_1", Status: billing.PaymentPaid},
		{AdID: "a1", StripeSessionID: "cs_2", Status: billing.PaymentExpired},
		{AdID: "a2", StripeSessionID: "cs_3", Status: billing.PaymentPaid},
	} {
		_, err := col.Create(t.Context(), &p)
		require.NoError(t, err)
	}
	r := apitest.Engine()
	r.GET("/api/admin/payments", billingapi.NewHandler(col).List)

	w := apitest.Do(t, r, apitest.Request{Method: http.MethodGet, Path: "/api/admin/payments?ad_id=a1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, apitest.Decode[apiutil.Page[billing.Payment]](t, w).Items, 2)

	w = apitest.Do(t, r, apitest.Request{Method: http.MethodGet, Path: "/api/admin/payments?status=paid&ad_id=a2"})
	page := apitest.Decode[apiutil.Page[billing.Payment]](t, w)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "cs_3", page.Items[0].StripeSessionID)

	w = apitest.Do(t, r, apitest.Request{Method: http.MethodGet, Path: "/api/admin/payments?status=unpaid"})
	assert.JSONEq(t, `{"items":[],"total":0}`, w.Body.String())
}
