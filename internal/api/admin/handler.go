package admin

import (
	"context"
	"net/http"
	"time"

	"newsdesk/internal/domain/access"
	"newsdesk/internal/domain/articles"
	"newsdesk/internal/domain/billing"
	"newsdesk/internal/domain/site"
	"newsdesk/internal/settings"
	"newsdesk/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Counter is the part of a collection the dashboard needs.
type Counter interface {
	Count(ctx context.Context, q store.Query) (int64, error)
}

// Stat is one dashboard number: how many records of Col match Query.
type Stat struct {
	Name  string
	Col   Counter
	Query store.Query
}

// ModelLister checks an AI key by listing the models it can use.
type ModelLister interface {
	ListModels(ctx context.Context, apiKey string) ([]string, error)
}

type Handler struct {
	Stats      []Stat
	Payments   store.Collection[billing.Payment]
	Articles   store.Collection[articles.Article]
	Settings   *settings.Store
	Components *settings.Store
	Models     ModelLister
	Log        zerolog.Logger
	Now        func() time.Time

	SiteDefaults site.SiteConfig
	FallbackKey  string
	// Debug exposes masked secrets and upstream bodies.
	Debug bool
}

func NewHandler(payments store.Collection[billing.Payment], col store.Collection[articles.Article], s, components *settings.Store, models ModelLister, log zerolog.Logger) *Handler {
	return &Handler{
		Payments:     payments,
		Articles:     col,
		Settings:     s,
		Components:   components,
		Models:       models,
		Log:          log.With().Str("handler", "admin").Logger(),
		Now:          time.Now,
		SiteDefaults: site.DefaultSiteConfig(),
	}
}

type AdminStats struct {
	Counts            map[string]int64 `json:"counts"`
	TotalRevenueCents int64            `json:"total_revenue_cents"`
	// RecentRevenueCents covers the last 30 days.
	RecentRevenueCents int64 `json:"recent_revenue_cents"`
}

// ------------------------------
// GET /api/admin/stats
// ------------------------------
func (h *Handler) GetAdminStats(c *gin.Context) {
	ctx := c.Request.Context()
	stats := AdminStats{Counts: make(map[string]int64, len(h.Stats))}
	for _, s := range h.Stats {
		n, err := s.Col.Count(ctx, s.Query)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		stats.Counts[s.Name] = n
	}

	paid, err := h.Payments.List(ctx, store.Query{}.Where("status", store.Eq, billing.PaymentPaid))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	thirtyDaysAgo := h.Now().AddDate(0, 0, -30)
	for _, p := range paid {
		stats.TotalRevenueCents += p.AmountCents
		if !p.CreatedAt.Before(thirtyDaysAgo) {
			stats.RecentRevenueCents += p.AmountCents
		}
	}
	c.JSON(http.StatusOK, stats)
}

// ------------------------------
// GET /api/admin/roles
// ------------------------------
func (h *Handler) RoleMatrix(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"roles":        access.Roles,
		"capabilities": access.Capabilities,
		"matrix":       access.Matrix(),
	})
}
