package admin

import (
	"errors"
	"net/http"
	"sort"
	"strings"

	"newsdesk/internal/api/apiutil"
	"newsdesk/internal/domain/site"
	"newsdesk/internal/infra/gemini"
	"newsdesk/internal/settings"
	"newsdesk/internal/store"

	"github.com/gin-gonic/gin"
)

const maxDebugArticles = 50

type CategoryReport struct {
	Configured []string         `json:"configured"`
	Counts     map[string]int64 `json:"counts"`
	// Unmatched lists categories used by articles but missing from the site config.
	Unmatched     []string `json:"unmatched"`
	Uncategorized int64    `json:"uncategorized"`
}

// ------------------------------
// GET /api/admin/debug/categories
// ------------------------------
func (h *Handler) Categories(c *gin.Context) {
	ctx := c.Request.Context()
	cfg, err := settings.Load(ctx, h.Settings, site.KeySiteConfig, h.SiteDefaults)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	all, err := h.Articles.List(ctx, store.Query{})
	if err != nil {
		apiutil.RespondError(c, err, "Article")
		return
	}

	report := CategoryReport{Configured: cfg.Categories, Counts: map[string]int64{}, Unmatched: []string{}}
	for _, cat := range cfg.Categories {
		report.Counts[cat] = 0
	}
	for _, a := range all {
		if a.Category == "" {
			report.Uncategorized++
			continue
		}
		report.Counts[a.Category]++
	}
	for cat := range report.Counts {
		if !cfg.HasCategory(cat) {
			report.Unmatched = append(report.Unmatched, cat)
		}
	}
	sort.Strings(report.Unmatched)
	c.JSON(http.StatusOK, report)
}

type SettingsKey struct {
	Table   string         `json:"table"`
	Key     string         `json:"key"`
	Present bool           `json:"present"`
	Value   map[string]any `json:"value,omitempty"`
}

// ------------------------------
// GET /api/admin/debug/settings-keys
// ------------------------------
func (h *Handler) SettingsKeys(c *gin.Context) {
	ctx := c.Request.Context()
	out := []SettingsKey{}
	add := func(table string, s *settings.Store, key string) error {
		doc, ok, err := s.Raw(ctx, key)
		if err != nil {
			return err
		}
		entry := SettingsKey{Table: table, Key: key, Present: ok}
		if ok && h.Debug {
			entry.Value = maskSecrets(doc)
		}
		out = append(out, entry)
		return nil
	}
	for _, key := range []string{site.KeySiteConfig, site.KeyAI, site.KeyAgentSchedule} {
		if err := add(settings.SiteTable, h.Settings, key); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}
	for _, feature := range site.Features {
		if err := add(settings.ComponentTable, h.Components, feature); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}
	stored, err := h.Settings.Keys(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"keys": out, "stored": stored})
}

type AgentScheduleRequest struct {
	Paused *bool `json:"paused" binding:"required"`
}

// ------------------------------
// POST /api/admin/debug/agent-schedule
// ------------------------------
func (h *Handler) SetAgentSchedule(c *gin.Context) {
	actor, ok := apiutil.MustActor(c)
	if !ok {
		return
	}
	var req AgentScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiutil.BadRequest(c, "paused is required")
		return
	}
	schedule := site.AgentSchedule{Paused: *req.Paused}
	if schedule.Paused {
		now := h.Now().UTC()
		schedule.PausedAt = &now
		schedule.PausedBy = actor.ID
	}
	if err := h.Settings.Replace(c.Request.Context(), site.KeyAgentSchedule, schedule); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.Log.Info().Bool("paused", schedule.Paused).Str("user_id", actor.ID).Msg("agent schedule changed")
	c.JSON(http.StatusOK, schedule)
}

type AIKeyReport struct {
	Configured bool   `json:"configured"`
	Source     string `json:"source"`
	Valid      bool   `json:"valid"`
	Models     int    `json:"models"`
	Error      string `json:"error,omitempty"`
	// Key and Details are only filled in debug mode.
	Key     string `json:"key,omitempty"`
	Details string `json:"details,omitempty"`
}

// ------------------------------
// GET /api/admin/debug/ai-key
// ------------------------------
func (h *Handler) AIKey(c *gin.Context) {
	ctx := c.Request.Context()
	aiCfg, err := settings.Load(ctx, h.Settings, site.KeyAI, site.DefaultAISettings())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	report := AIKeyReport{Source: "settings"}
	key := strings.TrimSpace(aiCfg.APIKey)
	if key == "" {
		key, report.Source = h.FallbackKey, "env"
	}
	if key == "" {
		report.Source = "none"
		c.JSON(http.StatusOK, report)
		return
	}
	report.Configured = true
	if h.Debug {
		report.Key = mask(key)
	}

	models, err := h.Models.ListModels(ctx, key)
	if err != nil {
		report.Error = err.Error()
		var ue *gemini.UpstreamError
		if h.Debug && errors.As(err, &ue) {
			report.Details = ue.Body
		}
		c.JSON(http.StatusOK, report)
		return
	}
	report.Valid = true
	report.Models = len(models)
	c.JSON(http.StatusOK, report)
}

// ------------------------------
// GET /api/admin/debug/articles
// ------------------------------
// LatestArticles returns the newest articles as stored, drafts included.
func (h *Handler) LatestArticles(c *gin.Context) {
	limit := apiutil.Limit(c)
	if limit > maxDebugArticles {
		limit = maxDebugArticles
	}
	list, err := h.Articles.List(c.Request.Context(), store.Query{}.OrderBy("created_at", true).Take(limit))
	if err != nil {
		apiutil.RespondError(c, err, "Article")
		return
	}
	apiutil.RespondList(c, list)
}

var secretFields = []string{"key", "secret", "token", "password"}

func maskSecrets(doc map[string]any) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		s, isString := v.(string)
		if isString && isSecretField(k) {
			out[k] = mask(s)
			continue
		}
		out[k] = v
	}
	return out
}

func isSecretField(name string) bool {
	name = strings.ToLower(name)
	for _, f := range secretFields {
		if strings.Contains(name, f) {
			return true
		}
	}
	return false
}

// mask keeps the first and last four characters of long secrets.
func mask(s string) string {
	if len(s) <= 10 {
		return strings.Repeat("*", len(s))
	}
	return s[:4] + strings.Repeat("*", len(s)-8) + s[len(s)-4:]
}
