package ads

import (
	"fmt"
	"net/http"

	"newsdesk/internal/api/apiutil"
	"newsdesk/internal/domain/ads"
	"newsdesk/internal/domain/site"
	"newsdesk/internal/settings"
	"newsdesk/internal/store"

	lorem "github.com/HandmadeNetwork/golorem"
	"github.com/gin-gonic/gin"
)

const maxSeedPerPlacement = 10

// ------------------------------
// POST /api/admin/ads/seed
// ------------------------------
// Seed fills every placement with placeholder slot ads so layouts can be checked before real
// advertisers sign up.
func (h *Handler) Seed(c *gin.Context) {
	var req SeedRequest
	_ = c.ShouldBindJSON(&req)
	n := req.PerPlacement
	if n <= 0 {
		n = 1
	}
	if n > maxSeedPerPlacement {
		n = maxSeedPerPlacement
	}

	ctx := c.Request.Context()
	cfg := h.SiteDefaults
	if h.Site != nil {
		loaded, err := settings.Load(ctx, h.Site, site.KeySiteConfig, h.SiteDefaults)
		if err != nil {
			apiutil.RespondError(c, err, "Site config")
			return
		}
		cfg = loaded
	}
	placements := cfg.AdPlacements
	if len(placements) == 0 {
		apiutil.BadRequest(c, "No ad placements configured")
		return
	}

	ids := make([]string, 0, n*len(placements))
	for _, p := range placements {
		for i := 0; i < n; i++ {
			a := &ads.Advertisement{
				Kind:       ads.KindSlot,
				Name:       lorem.Sentence(2, 5),
				Advertiser: lorem.Word(4, 10),
				Placement:  p,
				ImageURL:   fmt.Sprintf("https://placehold.co/%s?text=%s", placeholderSize(p), p),
				TargetURL:  "https://" + lorem.Host(),
				AltText:    lorem.Sentence(3, 8),
				Status:     ads.StatusActive,
				Seeded:     true,
			}
			id, err := h.Ads.Create(ctx, a)
			if err != nil {
				apiutil.RespondError(c, err, "Advertisement")
				return
			}
			ids = append(ids, id)
		}
	}
	h.Log.Info().Int("count", len(ids)).Msg("seeded placeholder ads")
	c.JSON(http.StatusCreated, gin.H{"created": len(ids), "ids": ids})
}

// ------------------------------
// DELETE /api/admin/ads/seed
// ------------------------------
func (h *Handler) Unseed(c *gin.Context) {
	ctx := c.Request.Context()
	seeded, err := h.Ads.List(ctx, store.Query{}.Where("seeded", store.Eq, true))
	if err != nil {
		apiutil.RespondError(c, err, "Advertisement")
		return
	}
	ids := make([]string, len(seeded))
	for i, a := range seeded {
		ids[i] = a.ID
	}
	if err := h.Ads.DeleteMany(ctx, ids); err != nil {
		apiutil.RespondError(c, err, "Advertisement")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": len(ids)})
}

func placeholderSize(placement string) string {
	switch placement {
	case site.PlacementHeader, site.PlacementFooter:
		return "728x90"
	case site.PlacementSidebar:
		return "300x250"
	}
	return "468x60"
}
