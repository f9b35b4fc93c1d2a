package routes

import (
	"net/http"
	"time"

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
	"newsdesk/internal/app/http/middleware"
	"newsdesk/internal/domain/access"
	"newsdesk/internal/domain/site"
	"newsdesk/internal/settings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Handlers is everything RegisterRoutes mounts.
type Handlers struct {
	Articles    *articlesapi.Handler
	Blog        *blogapi.Handler
	Businesses  *businessesapi.Handler
	Events      *eventsapi.Handler
	Community   *communityapi.Handler
	Newsletters *newslettersapi.Handler
	Ads         *adsapi.Handler
	Payments    *billingapi.Handler
	Webhook     *stripewebhooks.Handler
	Menus       *menusapi.Handler
	Site        *siteapi.Handler
	Auth        *authapi.Handler
	Users       *usersapi.Handler
	AI          *aiapi.Handler
	Uploads     *uploadsapi.Handler
	Admin       *adminapi.Handler

	Components *settings.Store
	Accounts   middleware.Accounts
	JWTSecret  []byte
	Log        zerolog.Logger
}

func RegisterRoutes(r *gin.Engine, h *Handlers) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC().Format(time.RFC3339)})
	})
	r.POST("/api/webhooks/stripe", h.Webhook.Handle)

	api := r.Group("/api")
	// Reads are open; a valid token widens what they return (drafts, pending, hidden).
	public := api.Group("", middleware.OptionalAuth(h.JWTSecret, h.Accounts))
	authed := api.Group("", middleware.AuthMiddleware(h.JWTSecret, h.Accounts))
	feature := func(name string) gin.HandlerFunc {
		return middleware.RequireComponent(h.Components, name, h.Log)
	}
	can := middleware.RequireCapability

	// Auth
	public.GET("/auth/google", h.Auth.GoogleStart)
	public.GET("/auth/google/callback", h.Auth.GoogleCallback)
	public.POST("/auth/token", h.Auth.Token)
	authed.GET("/me", h.Users.Me)

	// Site
	public.GET("/site-config", h.Site.GetSiteConfig)
	public.GET("/components", h.Site.ListComponents)
	public.GET("/components/:feature", h.Site.GetComponent)
	authed.PUT("/site-config", can(access.ManageSettings), h.Site.UpdateSiteConfig)
	authed.PUT("/components/:feature", can(access.ManageSettings), h.Site.UpdateComponent)

	public.GET("/menus", h.Menus.List)
	public.GET("/menus/location/:location", h.Menus.ByLocation)
	public.GET("/menus/:id", h.Menus.Get)
	authed.POST("/menus", can(access.ManageMenus), h.Menus.Create)
	authed.PUT("/menus/:id", can(access.ManageMenus), h.Menus.Update)
	authed.DELETE("/menus/:id", can(access.ManageMenus), h.Menus.Delete)

	// Articles
	articles := public.Group("/articles", feature(site.FeatureArticles))
	articles.GET("", h.Articles.List)
	articles.GET("/slug/:slug", h.Articles.GetBySlug)
	articles.GET("/:id", h.Articles.Get)
	authed.POST("/articles", can(access.CreateArticles), h.Articles.Create)
	authed.POST("/articles/bulk-delete", h.Articles.BulkDelete)
	authed.PUT("/articles/:id", h.Articles.Update)
	authed.DELETE("/articles/:id", h.Articles.Delete)
	authed.POST("/articles/:id/publish", h.Articles.Publish)
	authed.POST("/articles/:id/unpublish", h.Articles.Unpublish)

	// Blog
	blog := public.Group("/blog", feature(site.FeatureBlog))
	blog.GET("", h.Blog.List)
	blog.GET("/slug/:slug", h.Blog.GetBySlug)
	blog.GET("/:id", h.Blog.Get)
	blog.POST("/:id/view", h.Blog.RecordView)
	authed.POST("/blog", can(access.ManageBlog), h.Blog.Create)
	authed.PUT("/blog/:id", h.Blog.Update)
	authed.DELETE("/blog/:id", h.Blog.Delete)

	// Business directory
	businesses := public.Group("/businesses", feature(site.FeatureDirectory))
	businesses.GET("", h.Businesses.List)
	businesses.GET("/slug/:slug", h.Businesses.GetBySlug)
	businesses.GET("/:id", h.Businesses.Get)
	authed.POST("/businesses", can(access.CreateBusinesses), middleware.SanitizeInput(), h.Businesses.Create)
	authed.PUT("/businesses/:id", middleware.SanitizeInput(), h.Businesses.Update)
	authed.POST("/businesses/:id/approve", h.Businesses.Approve)
	authed.POST("/businesses/:id/suspend", h.Businesses.Suspend)
	authed.DELETE("/businesses/:id", h.Businesses.Delete)

	// Events
	events := public.Group("/events", feature(site.FeatureEvents))
	events.GET("", h.Events.List)
	events.GET("/slug/:slug", h.Events.GetBySlug)
	events.GET("/:id", h.Events.Get)
	authed.POST("/events/submit", feature(site.FeatureEvents), middleware.SanitizeInput(), h.Events.Submit)
	authed.PUT("/events/:id", h.Events.Update)
	authed.POST("/events/:id/approve", h.Events.Approve)
	authed.POST("/events/:id/publish", h.Events.Publish)
	authed.POST("/events/:id/cancel", h.Events.Cancel)
	authed.DELETE("/events/:id", h.Events.Delete)

	// Community
	community := public.Group("/community", feature(site.FeatureCommunity))
	community.GET("", h.Community.List)
	community.GET("/:id", h.Community.Get)
	posting := authed.Group("/community", feature(site.FeatureCommunity))
	posting.POST("", can(access.PostCommunity), middleware.SanitizeInput(), h.Community.Create)
	posting.POST("/:id/like", h.Community.Like)
	posting.DELETE("/:id/like", h.Community.Unlike)
	posting.POST("/:id/flag", h.Community.Flag)
	posting.POST("/:id/hide", h.Community.Hide)
	posting.POST("/:id/restore", h.Community.Restore)
	posting.POST("/:id/pin", h.Community.Pin)
	posting.DELETE("/:id/pin", h.Community.Unpin)
	posting.DELETE("/:id", h.Community.Delete)

	// Newsletters
	subscribe := public.Group("/newsletters", feature(site.FeatureNewsletters), middleware.SanitizeInput())
	subscribe.POST("/subscribe", h.Newsletters.Subscribe)
	subscribe.POST("/unsubscribe", h.Newsletters.Unsubscribe)
	newsletters := authed.Group("/newsletters", can(access.ManageNewsletters))
	newsletters.GET("", h.Newsletters.List)
	newsletters.GET("/subscribers", h.Newsletters.ListSubscribers)
	newsletters.GET("/:id", h.Newsletters.Get)
	newsletters.POST("", h.Newsletters.Create)
	newsletters.PUT("/:id", h.Newsletters.Update)
	newsletters.DELETE("/:id", h.Newsletters.Delete)
	newsletters.POST("/:id/schedule", h.Newsletters.Schedule)
	newsletters.POST("/:id/send", h.Newsletters.Send)

	// Advertising
	ads := public.Group("/ads", feature(site.FeatureAdvertising))
	ads.GET("", h.Ads.List)
	ads.GET("/:id", h.Ads.Get)
	ads.POST("/:id/impression", h.Ads.Impression)
	ads.POST("/:id/click", h.Ads.Click)
	authed.POST("/ads/:id/checkout", h.Ads.Checkout)

	// Uploads
	uploads := authed.Group("/uploads", can(access.UploadMedia))
	uploads.POST("", h.Uploads.Upload)
	uploads.GET("", h.Uploads.List)
	uploads.DELETE("/:id", h.Uploads.Delete)

	// Admin
	admin := authed.Group("/admin")
	admin.GET("/stats", can(access.ViewDiagnostics), h.Admin.GetAdminStats)
	admin.GET("/roles", can(access.ManageUsers), h.Admin.RoleMatrix)
	admin.GET("/users", can(access.ManageUsers), h.Users.List)
	admin.PUT("/users/:id/role", can(access.ManageUsers), h.Users.SetRole)
	admin.PUT("/users/:id/disabled", can(access.ManageUsers), h.Users.SetDisabled)
	admin.GET("/payments", can(access.ManageAds), h.Payments.List)

	adminAds := admin.Group("/ads", can(access.ManageAds))
	adminAds.POST("", h.Ads.Create)
	adminAds.POST("/seed", h.Ads.Seed)
	adminAds.DELETE("/seed", h.Ads.Unseed)
	adminAds.PUT("/:id", h.Ads.Update)
	adminAds.DELETE("/:id", h.Ads.Delete)

	ai := admin.Group("/ai", can(access.UseAI))
	ai.POST("/chat", h.AI.Chat)
	ai.POST("/draft", h.AI.Draft)

	// Diagnostics can reveal credentials; they stay with the admin role whatever the table grants.
	debug := admin.Group("/debug", middleware.RequireRole(access.RoleAdmin))
	debug.GET("/categories", h.Admin.Categories)
	debug.GET("/settings-keys", h.Admin.SettingsKeys)
	debug.POST("/agent-schedule", h.Admin.SetAgentSchedule)
	debug.GET("/ai-key", h.Admin.AIKey)
	debug.GET("/articles", h.Admin.LatestArticles)
}
