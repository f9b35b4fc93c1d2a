package siteapi

import (
	"net/http"

	"newsdesk/internal/domain/site"
	"newsdesk/internal/settings"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Settings   *settings.Store
	Components *settings.Store
	// Defaults is served until an admin saves a site config.
	Defaults site.SiteConfig
}

func NewHandler(siteSettings, components *settings.Store, defaults site.SiteConfig) *Handler {
	return &Handler{Settings: siteSettings, Components: components, Defaults: defaults}
}

// GET /api/site-config
func (h *Handler) GetSiteConfig(c *gin.Context) {
	cfg, err := h.siteConfig(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// PUT /api/site-config
// The body is merged into the stored document as sent.
func (h *Handler) UpdateSiteConfig(c *gin.Context) {
	var partial map[string]any
	if err := c.ShouldBindJSON(&partial); err != nil || len(partial) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	ctx := c.Request.Context()
	if err := h.Settings.Update(ctx, site.KeySiteConfig, partial); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	cfg, err := h.siteConfig(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// GET /api/components
func (h *Handler) ListComponents(c *gin.Context) {
	out := GetComponentsResponse{Components: make([]ComponentDTO, 0, len(site.Features))}
	for _, f := range site.Features {
		cs, _, err := h.component(c.Request.Context(), f)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		out.Components = append(out.Components, ComponentDTO{Feature: f, ComponentSettings: cs})
	}
	c.JSON(http.StatusOK, out)
}

// GET /api/components/:feature
func (h *Handler) GetComponent(c *gin.Context) {
	feature := c.Param("feature")
	cs, ok, err := h.component(c.Request.Context(), feature)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Component not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, ComponentDTO{Feature: feature, ComponentSettings: cs})
}

// PUT /api/components/:feature
func (h *Handler) UpdateComponent(c *gin.Context) {
	feature := c.Param("feature")
	if _, ok := site.DefaultComponentSettings(feature); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Component not found"})
		return
	}
	var partial map[string]any
	if err := c.ShouldBindJSON(&partial); err != nil || len(partial) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	ctx := c.Request.Context()
	if err := h.Components.Update(ctx, feature, partial); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	cs, _, err := h.component(ctx, feature)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, ComponentDTO{Feature: feature, ComponentSettings: cs})
}
