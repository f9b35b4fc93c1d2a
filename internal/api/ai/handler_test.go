package ai_test

import (
	"context"
	"net/http"
	"testing"

	aiapi "newsdesk/internal/api/ai"
	"newsdesk/internal/api/apitest"
	"newsdesk/internal/domain/access"
	"newsdesk/internal/domain/articles"
	"newsdesk/internal/domain/site"
	"newsdesk/internal/infra/gemini"
	"newsdesk/internal/settings"
	"newsdesk/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeModel struct {
	reply string
	err   error
	last  gemini.ChatRequest
}

func (f *fakeModel) Chat(ctx context.Context, in gemini.ChatRequest) (string, error) {
	f.last = in
	return f.reply, f.err
}

type fixture struct {
	r        *gin.Engine
	model    *fakeModel
	settings *settings.Store
	articles *store.Memory[articles.Article]
	h        *aiapi.Handler
}

func setup() fixture {
	f := fixture{
		model:    &fakeModel{},
		settings: settings.NewStore(settings.NewMemoryKV()),
		articles: store.NewMemory[articles.Article]("articles"),
	}
	f.h = aiapi.NewHandler(f.model, f.settings, f.articles, zerolog.Nop())
	f.h.DefaultModel = "gemini-test"
	f.h.FallbackKey = "env-key"
	f.r = apitest.Engine()
	f.r.Use(apitest.As())
	f.r.POST("/api/admin/ai/chat", f.h.Chat)
	f.r.POST("/api/admin/ai/draft", f.h.Draft)
	return f
}

var editor = apitest.User("ed", access.RoleEditor)

func TestChatForwardsPromptAndReturnsTextUnmodified(t *testing.T) {
	f := setup()
	f.model.reply = "  **Bold** reply\n"
	require.NoError(t, f.settings.Update(t.Context(), site.KeyAI, map[string]any{"api_key": "stored-key"}))

	w := apitest.Do(t, f.r, apitest.Request{Method: http.MethodPost, Path: "/api/admin/ai/chat", Actor: editor, Body: map[string]any{
		"prompt":  "Summarise the council meeting",
		"history": []map[string]string{{"role": "user", "content": "hi"}, {"role": "assistant", "content": "hello"}},
	}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "  **Bold** reply\n", apitest.Decode[map[string]string](t, w)["text"])

	assert.Equal(t, "stored-key", f.model.last.APIKey)
	assert.Equal(t, "gemini-test", f.model.last.Model)
	assert.Len(t, f.model.last.History, 2)
	assert.Contains(t, f.model.last.System, "Local News")
	assert.Contains(t, f.model.last.System, "sports")
	assert.Equal(t, 0.7, f.model.last.Temperature)
}

func TestChatFallsBackToEnvKey(t *testing.T) {
	f := setup()
	f.model.reply = "ok"
	w := apitest.Do(t, f.r, apitest.Request{Method: http.MethodPost, Path: "/api/admin/ai/chat", Actor: editor, Body: map[string]any{"prompt": "x"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "env-key", f.model.last.APIKey)
}

func TestUpstreamErrorsHideBodyUnlessDebug(t *testing.T) {
	f := setup()
	f.model.err = &gemini.UpstreamError{Status: 403, Body: `{"error":"API key leaked-part invalid"}`}

	w := apitest.Do(t, f.r, apitest.Request{Method: http.MethodPost, Path: "/api/admin/ai/chat", Actor: editor, Body: map[string]any{"prompt": "x"}})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"AI upstream returned status 403"}`, w.Body.String())

	f.h.Debug = true
	w = apitest.Do(t, f.r, apitest.Request{Method: http.MethodPost, Path: "/api/admin/ai/chat", Actor: editor, Body: map[string]any{"prompt": "x"}})
	assert.Contains(t, w.Body.String(), "leaked-part")
}

func TestPausedAgentBlocksRequests(t *testing.T) {
	f := setup()
	require.NoError(t, f.settings.Update(t.Context(), site.KeyAgentSchedule, map[string]any{"paused": true}))
	for _, path := range []string{"/api/admin/ai/chat", "/api/admin/ai/draft"} {
		w := apitest.Do(t, f.r, apitest.Request{Method: http.MethodPost, Path: path, Actor: editor, Body: map[string]any{"prompt": "x"}})
		assert.Equal(t, http.StatusConflict, w.Code, path)
	}
	assert.Empty(t, f.model.last.Prompt, "the model is never called")
}

func TestDraftCreatesAIArticle(t *testing.T) {
	f := setup()
	f.model.reply = "```markdown\n# Harbor bridge reopens\n\nThe bridge reopened on **Monday**.\n\n<script>alert(1)</script>\n```"

	w := apitest.Do(t, f.r, apitest.Request{Method: http.MethodPost, Path: "/api/admin/ai/draft", Actor: editor,
		Body: map[string]any{"prompt": "Write about the bridge", "category": "news"}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := apitest.Decode[map[string]string](t, w)["id"]

	a, err := f.articles.GetByID(t.Context(), id)
	require.NoError(t, err)
	assert.Equal(t, "Harbor bridge reopens", a.Title)
	assert.Equal(t, "harbor-bridge-reopens", a.Slug)
	assert.Equal(t, articles.StatusDraft, a.Status)
	assert.Equal(t, articles.SourceAI, a.Source)
	assert.Equal(t, "ed", a.AuthorID)
	assert.Contains(t, a.Content, "<strong>Monday</strong>")
	assert.NotContains(t, a.Content, "<script>")
	assert.Nil(t, a.PublishedAt)
}

func TestDraftRejectsUnknownCategoryAndEmptyReply(t *testing.T) {
	f := setup()
	f.model.reply = "# Title\n\nbody"
	w := apitest.Do(t, f.r, apitest.Request{Method: http.MethodPost, Path: "/api/admin/ai/draft", Actor: editor,
		Body: map[string]any{"prompt": "x", "category": "astrology"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	f.model.reply = "   "
	w = apitest.Do(t, f.r, apitest.Request{Method: http.MethodPost, Path: "/api/admin/ai/draft", Actor: editor, Body: map[string]any{"prompt": "x"}})
	assert.Equal(t, http.StatusBadGateway, w.Code)

	n, _ := f.articles.Count(t.Context(), store.Query{})
	assert.Zero(t, n)
}
