// Package app wires configuration, stores and external services into the HTTP server.
package app

import (
	"context"
	"strings"
	"time"

	"newsdesk/config"
	"newsdesk/database"
	adminapi "newsdesk/internal/api/admin"
	adsapi "newsdesk/internal/api/ads"
	aiapi "newsdesk/internal/api/ai"
	articlesapi "newsdesk/internal/api/articles"
	authapi "newsdesk/internal/api/auth"
	billingapi "newsdesk/internal/api/billing"
	blogapi "newsdesk/internal/api/blog"
	businessesapi "newsdesk/internal/api/businesses"
	communityapi "newsdesk/internal/api/community"
	eventsapi "newsdesk/internal/api/events"
	menusapi "newsdesk/internal/api/menus"
	newslettersapi "newsdesk/internal/api/newsletters"
	siteapi "newsdesk/internal/api/site"
	stripewebhooks "newsdesk/internal/api/stripewebhook"
	uploadsapi "newsdesk/internal/api/uploads"
	usersapi "newsdesk/internal/api/users"
	routes "newsdesk/internal/app/http"
	"newsdesk/internal/app/http/middleware"
	"newsdesk/internal/domain/access"
	"newsdesk/internal/domain/articles"
	"newsdesk/internal/domain/community"
	"newsdesk/internal/domain/directory"
	"newsdesk/internal/domain/events"
	"newsdesk/internal/domain/newsletters"
	"newsdesk/internal/domain/site"
	"newsdesk/internal/infra/gemini"
	"newsdesk/internal/infra/stripe"
	"newsdesk/internal/mail"
	"newsdesk/internal/storage"
	"newsdesk/internal/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

// Services are the outside systems the handlers talk to. Storage is nil when unconfigured.
type Services struct {
	Mailer   mail.Mailer
	Payments stripe.Payments
	Storage  storage.Storage
	AI       *gemini.Client
	OAuth    *oauth2.Config
	Verifier authapi.IDTokenVerifier
}

func NewServices(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Services, error) {
	svc := &Services{
		Mailer:   mail.New(cfg.Mail, log),
		Payments: stripe.NewClient(cfg.Stripe),
		AI:       gemini.New(cfg.AI.BaseURL, cfg.AI.Timeout),
		OAuth:    authapi.GoogleOAuthConfig(cfg.Auth),
		Verifier: authapi.NewGoogleVerifier(cfg.Auth.GoogleClientID),
	}
	if !cfg.Stripe.Enabled() {
		log.Warn().Msg("STRIPE_SECRET_KEY not set, ad checkout disabled")
	}
	if cfg.Storage.Enabled() {
		st, err := storage.New(ctx, cfg.Storage)
		if err != nil {
			return nil, err
		}
		svc.Storage = st
	} else {
		log.Warn().Msg("object storage not configured, uploads disabled")
	}
	return svc, nil
}

// OpenStores picks the in-process stores for DB_URL=memory:// and postgres otherwise.
func OpenStores(cfg *config.Config, log zerolog.Logger) (*Stores, error) {
	if cfg.Database.InMemory() {
		log.Warn().Msg("using in-memory stores")
		return MemoryStores(), nil
	}
	db, err := database.InitDB(cfg.Database, log)
	if err != nil {
		return nil, err
	}
	return SQLStores(db), nil
}

func NewHandlers(cfg *config.Config, s *Stores, svc *Services, log zerolog.Logger) *routes.Handlers {
	siteDefaults := site.DefaultSiteConfig()
	siteDefaults.MasterSite = cfg.Site.MasterSite
	siteDefaults.PartnerID = cfg.Site.PartnerID
	siteDefaults.AnalyticsID = cfg.Site.AnalyticsID

	issues := newslettersapi.NewHandler(s.Newsletters, s.Subscribers, svc.Mailer, log)
	issues.UnsubscribeURL = strings.TrimRight(cfg.Stripe.AppURL, "/") + "/newsletter/unsubscribe"

	ads := adsapi.NewHandler(s.Ads, s.Payments, svc.Payments, log)
	ads.Site = s.Site
	ads.SiteDefaults = siteDefaults

	auth := authapi.NewHandler(s.Users, svc.OAuth, svc.Verifier, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, log)
	auth.FrontendRedirect = cfg.Auth.GoogleFrontendRedirect
	auth.SecureCookies = strings.HasPrefix(cfg.Auth.GoogleRedirectURL, "https://")

	ai := aiapi.NewHandler(svc.AI, s.Site, s.Articles, log)
	ai.SiteDefaults = siteDefaults
	ai.DefaultModel = cfg.AI.DefaultModel
	ai.FallbackKey = cfg.AI.FallbackKey
	ai.Debug = cfg.DebugDiagnostics

	admin := adminapi.NewHandler(s.Payments, s.Articles, s.Site, s.Components, svc.AI, log)
	admin.SiteDefaults = siteDefaults
	admin.FallbackKey = cfg.AI.FallbackKey
	admin.Debug = cfg.DebugDiagnostics
	admin.Stats = dashboardStats(s)

	return &routes.Handlers{
		Articles:    articlesapi.NewHandler(s.Articles),
		Blog:        blogapi.NewHandler(s.Blog),
		Businesses:  businessesapi.NewHandler(s.Businesses),
		Events:      eventsapi.NewHandler(s.Events),
		Community:   communityapi.NewHandler(s.Community),
		Newsletters: issues,
		Ads:         ads,
		Payments:    billingapi.NewHandler(s.Payments),
		Webhook:     stripewebhooks.NewHandler(svc.Payments, s.Ads, s.Payments, log),
		Menus:       menusapi.NewHandler(s.Menus),
		Site:        siteapi.NewHandler(s.Site, s.Components, siteDefaults),
		Auth:        auth,
		Users:       usersapi.NewHandler(s.Users),
		AI:          ai,
		Uploads:     uploadsapi.NewHandler(svc.Storage, s.Uploads, cfg.Server.MaxUploadBytes, log),
		Admin:       admin,
		Components:  s.Components,
		Accounts:    s.Users,
		JWTSecret:   []byte(cfg.Auth.JWTSecret),
		Log:         log,
	}
}

func dashboardStats(s *Stores) []adminapi.Stat {
	eq := func(field string, v any) store.Query { return store.Query{}.Where(field, store.Eq, v) }
	return []adminapi.Stat{
		{Name: "articles_published", Col: s.Articles, Query: eq("status", articles.StatusPublished)},
		{Name: "articles_draft", Col: s.Articles, Query: eq("status", articles.StatusDraft)},
		{Name: "blog_posts", Col: s.Blog},
		{Name: "businesses_pending", Col: s.Businesses, Query: eq("status", directory.StatusPending)},
		{Name: "events_pending", Col: s.Events, Query: eq("status", events.StatusPending)},
		{Name: "community_flagged", Col: s.Community, Query: eq("status", community.StatusFlagged)},
		{Name: "subscribers_active", Col: s.Subscribers, Query: eq("status", newsletters.SubscriberActive)},
		{Name: "ads", Col: s.Ads},
		{Name: "users", Col: s.Users},
		{Name: "admins", Col: s.Users, Query: eq("role", string(access.RoleAdmin))},
	}
}

// NewEngine builds the gin engine with logging, recovery, CORS and every route.
func NewEngine(cfg *config.Config, h *routes.Handlers, log zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(log), middleware.RequestLogger(log))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	routes.RegisterRoutes(r, h)
	return r
}
