package billing

import (
	"newsdesk/internal/api/apiutil"
	"newsdesk/internal/domain/billing"
	"newsdesk/internal/store"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Payments store.Collection[billing.Payment]
}

func NewHandler(col store.Collection[billing.Payment]) *Handler {
	return &Handler{Payments: col}
}

// ------------------------------
// GET /api/admin/payments
// ------------------------------
func (h *Handler) List(c *gin.Context) {
	q := store.Query{}
	if v := c.Query("ad_id"); v != "" {
		q = q.Where("ad_id", store.Eq, v)
	}
	if v := c.Query("status"); v != "" {
		q = q.Where("status", store.Eq, v)
	}
	payments, err := h.Payments.List(c.Request.Context(), q.OrderBy("created_at", true).Take(apiutil.Limit(c)).Skip(apiutil.Offset(c)))
	if err != nil {
		apiutil.RespondError(c, err, "Payment")
		return
	}
	apiutil.RespondList(c, payments)
}
