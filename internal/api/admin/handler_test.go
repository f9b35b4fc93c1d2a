package admin_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"newsdesk/internal/api/admin"
	"newsdesk/internal/api/apitest"
	"newsdesk/internal/domain/access"
	"newsdesk/internal/domain/articles"
	"newsdesk/internal/domain/billing"
	"newsdesk/internal/domain/site"
	"newsdesk/internal/infra/gemini"
	"newsdesk/internal/settings"
	"newsdesk/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeModels struct {
	gotKey string
	err    error
}

func (f *fakeModels) ListModels(ctx context.Context, apiKey string) ([]string, error) {
	f.gotKey = apiKey
	if f.err != nil {
		return nil, f.err
	}
	return []string{"models/gemini-1.5-flash", "models/gemini-1.5-pro"}, nil
}

type fixture struct {
	r        *gin.Engine
	h        *admin.Handler
	articles *store.Memory[articles.Article]
	payments *store.Memory[billing.Payment]
	settings *settings.Store
	models   *fakeModels
}

var now = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

func setup(debug bool) *fixture {
	f := &fixture{
		articles: store.NewMemory[articles.Article]("articles"),
		payments: store.NewMemory[billing.Payment]("payments"),
		settings: settings.NewStore(settings.NewMemoryKV()),
		models:   &fakeModels{},
	}
	f.h = admin.NewHandler(f.payments, f.articles, f.settings, settings.NewStore(settings.NewMemoryKV()), f.models, zerolog.Nop())
	f.h.Now = func() time.Time { return now }
	f.h.Debug = debug
	f.h.Stats = []admin.Stat{
		{Name: "articles", Col: f.articles},
		{Name: "drafts", Col: f.articles, Query: store.Query{}.Where("status", store.Eq, articles.StatusDraft)},
	}

	r := apitest.Engine()
	r.Use(apitest.As())
	r.GET("/api/admin/stats", f.h.GetAdminStats)
	r.GET("/api/admin/roles", f.h.RoleMatrix)
	r.GET("/api/admin/debug/categories", f.h.Categories)
	r.GET("/api/admin/debug/settings-keys", f.h.SettingsKeys)
	r.POST("/api/admin/debug/agent-schedule", f.h.SetAgentSchedule)
	r.GET("/api/admin/debug/ai-key", f.h.AIKey)
	r.GET("/api/admin/debug/articles", f.h.LatestArticles)
	f.r = r
	return f
}

var boss = apitest.User("boss", access.RoleAdmin)

func TestStatsCountsAndRevenue(t *testing.T) {
	f := setup(false)
	ctx := context.Background()
	_, _ = f.articles.Create(ctx, &articles.Article{Title: "a", Status: articles.StatusDraft})
	_, _ = f.articles.Create(ctx, &articles.Article{Title: "b", Status: articles.StatusPublished})

	f.payments.Now = func() time.Time { return now.AddDate(0, -3, 0) }
	_, _ = f.payments.Create(ctx, &billing.Payment{AdID: "ad1", AmountCents: 5000, Status: billing.PaymentPaid})
	f.payments.Now = func() time.Time { return now.AddDate(0, 0, -2) }
	_, _ = f.payments.Create(ctx, &billing.Payment{AdID: "ad2", AmountCents: 2500, Status: billing.PaymentPaid})
	_, _ = f.payments.Create(ctx, &billing.Payment{AdID: "ad3", AmountCents: 9999, Status: billing.PaymentUnpaid})

	w := apitest.Do(t, f.r, apitest.Request{Method: http.MethodGet, Path: "/api/admin/stats", Actor: boss})
	require.Equal(t, http.StatusOK, w.Code)
	got := apitest.Decode[admin.AdminStats](t, w)
	assert.EqualValues(t, 2, got.Counts["articles"])
	assert.EqualValues(t, 1, got.Counts["drafts"])
	assert.EqualValues(t, 7500, got.TotalRevenueCents)
	assert.EqualValues(t, 2500, got.RecentRevenueCents)
}

func TestRoleMatrix(t *testing.T) {
	f := setup(false)
	w := apitest.Do(t, f.r, apitest.Request{Method: http.MethodGet, Path: "/api/admin/roles", Actor: boss})
	require.Equal(t, http.StatusOK, w.Code)
	body := apitest.Decode[map[string]any](t, w)
	assert.Len(t, body["roles"], len(access.Roles))
	assert.Contains(t, body["matrix"], string(access.RoleEditor))
}

func TestCategoriesReportsUnmatched(t *testing.T) {
	f := setup(false)
	ctx := context.Background()
	for _, cat := range []string{"news", "news", "weather", ""} {
		_, err := f.articles.Create(ctx, &articles.Article{Title: "x", Category: cat, Status: articles.StatusPublished})
		require.NoError(t, err)
	}

	w := apitest.Do(t, f.r, apitest.Request{Method: http.MethodGet, Path: "/api/admin/debug/categories", Actor: boss})
	require.Equal(t, http.StatusOK, w.Code)
	got := apitest.Decode[admin.CategoryReport](t, w)
	assert.EqualValues(t, 2, got.Counts["news"])
	assert.EqualValues(t, 0, got.Counts["sports"])
	assert.Equal(t, []string{"weather"}, got.Unmatched)
	assert.EqualValues(t, 1, got.Uncategorized)
	assert.Equal(t, site.DefaultSiteConfig().Categories, got.Configured)
}

func TestSettingsKeysMasksOnlyInDebug(t *testing.T) {
	ctx := context.Background()
	for _, debug := range []bool{false, true} {
		f := setup(debug)
		require.NoError(t, f.settings.Update(ctx, site.KeyAI, map[string]any{"api_key": "AIzaSyEXAMPLEKEY1234", "model": "gemini-1.5-flash"}))

		w := apitest.Do(t, f.r, apitest.Request{Method: http.MethodGet, Path: "/api/admin/debug/settings-keys", Actor: boss})
		require.Equal(t, http.StatusOK, w.Code)
		body := apitest.Decode[struct {
			Keys   []admin.SettingsKey `json:"keys"`
			Stored []string            `json:"stored"`
		}](t, w)
		assert.Equal(t, []string{site.KeyAI}, body.Stored)
		assert.Len(t, body.Keys, 3+len(site.Features))

		var ai admin.SettingsKey
		for _, k := range body.Keys {
			if k.Key == site.KeyAI {
				ai = k
			}
		}
		assert.True(t, ai.Present)
		assert.NotContains(t, w.Body.String(), "AIzaSyEXAMPLEKEY1234")
		if debug {
			assert.Equal(t, "AIza************1234", ai.Value["api_key"])
			assert.Equal(t, "gemini-1.5-flash", ai.Value["model"])
		} else {
			assert.Nil(t, ai.Value)
		}
	}
}

func TestAgentSchedule(t *testing.T) {
	f := setup(false)
	ctx := context.Background()

	w := apitest.Do(t, f.r, apitest.Request{Method: http.MethodPost, Path: "/api/admin/debug/agent-schedule", Body: map[string]any{"paused": true}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = apitest.Do(t, f.r, apitest.Request{Method: http.MethodPost, Path: "/api/admin/debug/agent-schedule", Body: map[string]any{}, Actor: boss})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = apitest.Do(t, f.r, apitest.Request{Method: http.MethodPost, Path: "/api/admin/debug/agent-schedule", Body: map[string]any{"paused": true}, Actor: boss})
	require.Equal(t, http.StatusOK, w.Code)
	got, err := settings.Load(ctx, f.settings, site.KeyAgentSchedule, site.DefaultAgentSchedule())
	require.NoError(t, err)
	assert.True(t, got.Paused)
	assert.Equal(t, "boss", got.PausedBy)
	require.NotNil(t, got.PausedAt)
	assert.True(t, now.Equal(*got.PausedAt))

	w = apitest.Do(t, f.r, apitest.Request{Method: http.MethodPost, Path: "/api/admin/debug/agent-schedule", Body: map[string]any{"paused": false}, Actor: boss})
	require.Equal(t, http.StatusOK, w.Code)
	got, _ = settings.Load(ctx, f.settings, site.KeyAgentSchedule, site.DefaultAgentSchedule())
	assert.False(t, got.Paused)
	assert.Nil(t, got.PausedAt)
}

func TestAIKey(t *testing.T) {
	f := setup(false)
	w := apitest.Do(t, f.r, apitest.Request{Method: http.MethodGet, Path: "/api/admin/debug/ai-key", Actor: boss})
	require.Equal(t, http.StatusOK, w.Code)
	got := apitest.Decode[admin.AIKeyReport](t, w)
	assert.False(t, got.Configured)
	assert.Equal(t, "none", got.Source)

	f.h.FallbackKey = "env-key-abcdefgh"
	w = apitest.Do(t, f.r, apitest.Request{Method: http.MethodGet, Path: "/api/admin/debug/ai-key", Actor: boss})
	got = apitest.Decode[admin.AIKeyReport](t, w)
	assert.True(t, got.Valid)
	assert.Equal(t, "env", got.Source)
	assert.Equal(t, 2, got.Models)
	assert.Empty(t, got.Key)
	assert.Equal(t, "env-key-abcdefgh", f.models.gotKey)

	f.h.Debug = true
	f.models.err = &gemini.UpstreamError{Status: http.StatusBadRequest, Body: `{"error":"API key not valid"}`}
	w = apitest.Do(t, f.r, apitest.Request{Method: http.MethodGet, Path: "/api/admin/debug/ai-key", Actor: boss})
	got = apitest.Decode[admin.AIKeyReport](t, w)
	assert.False(t, got.Valid)
	assert.Equal(t, "AI upstream returned status 400", got.Error)
	assert.Contains(t, got.Details, "API key not valid")
	assert.Equal(t, "env-********efgh", got.Key)
}

func TestLatestArticlesIncludesDrafts(t *testing.T) {
	f := setup(false)
	ctx := context.Background()
	for i, title := range []string{"old", "mid", "new"} {
		stamp := now.Add(time.Duration(i) * time.Hour)
		f.articles.Now = func() time.Time { return stamp }
		_, err := f.articles.Create(ctx, &articles.Article{Title: title, Status: articles.StatusDraft})
		require.NoError(t, err)
	}

	w := apitest.Do(t, f.r, apitest.Request{Method: http.MethodGet, Path: "/api/admin/debug/articles?limit=2", Actor: boss})
	require.Equal(t, http.StatusOK, w.Code)
	page := apitest.Decode[struct {
		Items []articles.Article `json:"items"`
	}](t, w)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "new", page.Items[0].Title)
	assert.Equal(t, "mid", page.Items[1].Title)
}
