package ads

import (
	"net/http"
	"strings"
	"time"

	"newsdesk/internal/api/apiutil"
	"newsdesk/internal/domain/access"
	"newsdesk/internal/domain/ads"
	"newsdesk/internal/domain/billing"
	"newsdesk/internal/domain/site"
	"newsdesk/internal/infra/stripe"
	"newsdesk/internal/settings"
	"newsdesk/internal/store"
	"newsdesk/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type Handler struct {
	Ads      store.Collection[ads.Advertisement]
	Payments store.Collection[billing.Payment]
	Stripe   stripe.Payments
	Log      zerolog.Logger
	Now      func() time.Time

	// Seed fills the placements configured in Site, falling back to SiteDefaults.
	Site         *settings.Store
	SiteDefaults site.SiteConfig
}

func NewHandler(col store.Collection[ads.Advertisement], payments store.Collection[billing.Payment], sp stripe.Payments, log zerolog.Logger) *Handler {
	return &Handler{
		Ads:      col,
		Payments: payments,
		Stripe:   sp,
		Log:      log.With().Str("handler", "ads").Logger(),
		Now:      time.Now,

		SiteDefaults: site.DefaultSiteConfig(),
	}
}

// ------------------------------
// GET /api/ads?placement=
// ------------------------------
// List serves live ads to the public. Managers may ask for any status; expired is a filter
// value only, nothing moves ads into it automatically.
func (h *Handler) List(c *gin.Context) {
	status := c.DefaultQuery("status", ads.StatusActive)
	managing := access.CanAny(apiutil.ActorFrom(c), access.ManageAds)
	if status != ads.StatusActive && !managing {
		apiutil.Forbidden(c)
		return
	}

	q := store.Query{}
	if status != "all" {
		q = q.Where("status", store.Eq, status)
	}
	if v := c.Query("placement"); v != "" {
		q = q.Where("placement", store.Eq, v)
	}
	if v := c.Query("kind"); v != "" {
		q = q.Where("kind", store.Eq, v)
	}
	q = q.OrderBy("priority", true).OrderBy("created_at", true)

	list, err := h.Ads.List(c.Request.Context(), q)
	if err != nil {
		apiutil.RespondError(c, err, "Advertisement")
		return
	}
	if status == ads.StatusActive {
		now := h.Now()
		live := list[:0]
		for _, a := range list {
			if a.InWindow(now) {
				live = append(live, a)
			}
		}
		list = live
	}
	apiutil.RespondList(c, list)
}

func (h *Handler) Get(c *gin.Context) {
	a, err := h.Ads.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		apiutil.RespondError(c, err, "Advertisement")
		return
	}
	if a.Status != ads.StatusActive && !access.CanAny(apiutil.ActorFrom(c), access.ManageAds) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Advertisement not found"})
		return
	}
	c.JSON(http.StatusOK, a)
}

// ------------------------------
// POST /api/ads/:id/impression | /click
// ------------------------------
func (h *Handler) Impression(c *gin.Context) {
	h.count(c, "impressions")
}

func (h *Handler) Click(c *gin.Context) {
	h.count(c, "clicks")
}

func (h *Handler) count(c *gin.Context, field string) {
	if err := h.Ads.Increment(c.Request.Context(), c.Param("id"), field, 1); err != nil {
		apiutil.RespondError(c, err, "Advertisement")
		return
	}
	c.Status(http.StatusNoContent)
}

// ------------------------------
// POST /api/admin/ads
// ------------------------------
func (h *Handler) Create(c *gin.Context) {
	var req CreateAdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiutil.BadRequest(c, "Name and placement are required")
		return
	}
	a, msg := h.fromRequest(req)
	if msg != "" {
		apiutil.BadRequest(c, msg)
		return
	}
	id, err := h.Ads.Create(c.Request.Context(), a)
	if err != nil {
		apiutil.RespondError(c, err, "Advertisement")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id, "status": a.Status})
}

func (h *Handler) fromRequest(req CreateAdRequest) (*ads.Advertisement, string) {
	kind := req.Kind
	if kind == "" {
		kind = ads.KindSlot
	}
	if kind != ads.KindSlot && kind != ads.KindCampaign {
		return nil, "Invalid kind"
	}
	if req.TargetURL != "" && !validation.IsURL(req.TargetURL) {
		return nil, "Invalid target URL"
	}
	if req.AdvertiserEmail != "" && !validation.IsEmail(req.AdvertiserEmail) {
		return nil, "Invalid email address"
	}
	start, err := optionalTime(req.StartDate)
	if err != nil {
		return nil, "Invalid start_date"
	}
	end, err := optionalTime(req.EndDate)
	if err != nil {
		return nil, "Invalid end_date"
	}
	if start != nil && end != nil && end.Before(*start) {
		return nil, "end_date must not be before start_date"
	}

	status := req.Status
	switch {
	case status != "":
		if !knownStatus(status) {
			return nil, "Invalid status"
		}
	case kind == ads.KindCampaign:
		status = ads.StatusPendingPayment
	case start != nil && start.After(h.Now()):
		status = ads.StatusScheduled
	default:
		status = ads.StatusActive
	}
	if kind == ads.KindCampaign && status == ads.StatusPendingPayment && req.PriceCents <= 0 {
		return nil, "Campaigns awaiting payment need a price"
	}

	return &ads.Advertisement{
		Kind:            kind,
		Name:            strings.TrimSpace(req.Name),
		Advertiser:      strings.TrimSpace(req.Advertiser),
		AdvertiserEmail: req.AdvertiserEmail,
		Placement:       req.Placement,
		ImageURL:        req.ImageURL,
		TargetURL:       req.TargetURL,
		AltText:         req.AltText,
		Priority:        req.Priority,
		StartDate:       start,
		EndDate:         end,
		Status:          status,
		PriceCents:      req.PriceCents,
		Currency:        strings.ToLower(req.Currency),
	}, ""
}

// ------------------------------
// PUT /api/admin/ads/:id
// ------------------------------
func (h *Handler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	fields, ok := apiutil.BindFields(c, updateFields)
	if !ok {
		return
	}
	if v, ok := fields["target_url"].(string); ok && v != "" && !validation.IsURL(v) {
		apiutil.BadRequest(c, "Invalid target URL")
		return
	}
	if v, ok := fields["advertiser_email"].(string); ok && v != "" && !validation.IsEmail(v) {
		apiutil.BadRequest(c, "Invalid email address")
		return
	}

	current, err := h.Ads.GetByID(ctx, id)
	if err != nil {
		apiutil.RespondError(c, err, "Advertisement")
		return
	}
	if status, ok := fields["status"].(string); ok && status != current.Status {
		if err := ads.Transitions.Check(current.Status, status); err != nil {
			apiutil.RespondError(c, err, "Advertisement")
			return
		}
	}
	if err := h.Ads.Update(ctx, id, fields); err != nil {
		apiutil.RespondError(c, err, "Advertisement")
		return
	}
	updated, err := h.Ads.GetByID(ctx, id)
	if err != nil {
		apiutil.RespondError(c, err, "Advertisement")
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.Ads.Delete(c.Request.Context(), c.Param("id")); err != nil {
		apiutil.RespondError(c, err, "Advertisement")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func optionalTime(s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := apiutil.ParseTime(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func knownStatus(s string) bool {
	switch s {
	case ads.StatusActive, ads.StatusScheduled, ads.StatusPaused, ads.StatusExpired, ads.StatusPendingPayment:
		return true
	}
	return false
}
