package ai

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"newsdesk/internal/api/apiutil"
	"newsdesk/internal/domain/articles"
	"newsdesk/internal/domain/content"
	"newsdesk/internal/domain/site"
	"newsdesk/internal/infra/gemini"
	"newsdesk/internal/settings"
	"newsdesk/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const maxTitleRunes = 200

// Model is the chat-completion endpoint the handlers talk to.
type Model interface {
	Chat(ctx context.Context, in gemini.ChatRequest) (string, error)
}

type Handler struct {
	Model    Model
	Settings *settings.Store
	Articles store.Collection[articles.Article]
	Log      zerolog.Logger
	Now      func() time.Time

	// SiteDefaults is used when no site config has been saved.
	SiteDefaults site.SiteConfig
	DefaultModel string
	FallbackKey  string
	// Debug includes upstream response bodies in error replies.
	Debug bool
}

func NewHandler(model Model, s *settings.Store, col store.Collection[articles.Article], log zerolog.Logger) *Handler {
	return &Handler{
		Model:        model,
		Settings:     s,
		Articles:     col,
		Log:          log.With().Str("handler", "ai").Logger(),
		Now:          time.Now,
		SiteDefaults: site.DefaultSiteConfig(),
	}
}

type ChatRequest struct {
	Prompt   string           `json:"prompt" binding:"required"`
	History  []gemini.Message `json:"history"`
	Category string           `json:"category"`
}

// ------------------------------
// POST /api/admin/ai/chat
// ------------------------------
func (h *Handler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiutil.BadRequest(c, "Prompt is required")
		return
	}
	text, _, ok := h.generate(c, req)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": text})
}

// ------------------------------
// POST /api/admin/ai/draft
// ------------------------------
// Draft turns the model's markdown into a draft article authored by the caller.
func (h *Handler) Draft(c *gin.Context) {
	actor, ok := apiutil.MustActor(c)
	if !ok {
		return
	}
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiutil.BadRequest(c, "Prompt is required")
		return
	}
	text, cfg, ok := h.generate(c, req)
	if !ok {
		return
	}
	if req.Category != "" && !cfg.HasCategory(req.Category) {
		apiutil.BadRequest(c, "Unknown category")
		return
	}

	title, body := splitDraft(gemini.StripFences(text))
	if title == "" {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Model returned an empty draft"})
		return
	}
	if r := []rune(title); len(r) > maxTitleRunes {
		title = string(r[:maxTitleRunes])
	}
	html, err := content.MarkdownToHTML(body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	a := articles.Article{
		Title:      content.StripTags(title),
		Content:    html,
		Excerpt:    content.Excerpt(html, 200),
		Slug:       content.MakeSlug(title),
		Category:   req.Category,
		Tags:       []string{},
		AuthorID:   actor.ID,
		AuthorName: c.GetString(apiutil.KeyName),
		Status:     articles.StatusDraft,
		Source:     articles.SourceAI,
	}
	id, err := h.Articles.Create(c.Request.Context(), &a)
	if err != nil {
		apiutil.RespondError(c, err, "Article")
		return
	}
	h.Log.Info().Str("article_id", id).Str("user_id", actor.ID).Msg("created AI draft")
	c.JSON(http.StatusCreated, gin.H{"id": id, "title": a.Title, "slug": a.Slug})
}

// generate runs one model call and writes the error response itself when ok is false.
func (h *Handler) generate(c *gin.Context, req ChatRequest) (string, site.SiteConfig, bool) {
	ctx := c.Request.Context()
	schedule, err := settings.Load(ctx, h.Settings, site.KeyAgentSchedule, site.DefaultAgentSchedule())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return "", site.SiteConfig{}, false
	}
	if schedule.Paused {
		c.JSON(http.StatusConflict, gin.H{"error": "AI agent is paused"})
		return "", site.SiteConfig{}, false
	}
	cfg, err := settings.Load(ctx, h.Settings, site.KeySiteConfig, h.SiteDefaults)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return "", site.SiteConfig{}, false
	}
	aiCfg, err := settings.Load(ctx, h.Settings, site.KeyAI, site.DefaultAISettings())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return "", site.SiteConfig{}, false
	}

	key := strings.TrimSpace(aiCfg.APIKey)
	if key == "" {
		key = h.FallbackKey
	}
	model := aiCfg.Model
	if model == "" {
		model = h.DefaultModel
	}

	text, err := h.Model.Chat(ctx, gemini.ChatRequest{
		APIKey:          key,
		Model:           model,
		System:          SystemPrompt(cfg),
		History:         req.History,
		Prompt:          req.Prompt,
		Temperature:     aiCfg.Temperature,
		MaxOutputTokens: aiCfg.MaxOutputTokens,
	})
	if err != nil {
		h.respondUpstream(c, err)
		return "", site.SiteConfig{}, false
	}
	return text, cfg, true
}

func (h *Handler) respondUpstream(c *gin.Context, err error) {
	h.Log.Error().Err(err).Msg("AI request failed")
	if errors.Is(err, gemini.ErrNoKey) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	resp := gin.H{"error": err.Error()}
	var ue *gemini.UpstreamError
	if h.Debug && errors.As(err, &ue) {
		resp["details"] = ue.Body
	}
	c.JSON(http.StatusInternalServerError, resp)
}
