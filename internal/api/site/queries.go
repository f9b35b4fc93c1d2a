package siteapi

import (
	"context"

	"newsdesk/internal/domain/site"
	"newsdesk/internal/settings"
)

func (h *Handler) siteConfig(ctx context.Context) (site.SiteConfig, error) {
	return settings.Load(ctx, h.Settings, site.KeySiteConfig, h.Defaults)
}

func (h *Handler) component(ctx context.Context, feature string) (site.ComponentSettings, bool, error) {
	def, ok := site.DefaultComponentSettings(feature)
	if !ok {
		return site.ComponentSettings{}, false, nil
	}
	got, err := settings.Load(ctx, h.Components, feature, def)
	return got, true, err
}
