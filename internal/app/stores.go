package app

import (
	"newsdesk/internal/domain/ads"
	"newsdesk/internal/domain/articles"
	"newsdesk/internal/domain/billing"
	"newsdesk/internal/domain/blog"
	"newsdesk/internal/domain/community"
	"newsdesk/internal/domain/directory"
	"newsdesk/internal/domain/events"
	"newsdesk/internal/domain/media"
	"newsdesk/internal/domain/menus"
	"newsdesk/internal/domain/newsletters"
	"newsdesk/internal/domain/users"
	"newsdesk/internal/settings"
	"newsdesk/internal/store"

	"gorm.io/gorm"
)

// Stores holds one collection per document type plus the two settings tables.
type Stores struct {
	Articles    store.Collection[articles.Article]
	Blog        store.Collection[blog.Post]
	Businesses  store.Collection[directory.Business]
	Events      store.Collection[events.Event]
	Community   store.Collection[community.Post]
	Newsletters store.Collection[newsletters.Newsletter]
	Subscribers store.Collection[newsletters.Subscriber]
	Ads         store.Collection[ads.Advertisement]
	Payments    store.Collection[billing.Payment]
	Menus       store.Collection[menus.Menu]
	Users       store.Collection[users.User]
	Uploads     store.Collection[media.Upload]

	Site       *settings.Store
	Components *settings.Store
}

// MemoryStores keeps everything in process; data is lost on exit.
func MemoryStores() *Stores {
	return &Stores{
		Articles:    store.NewMemory[articles.Article]("articles"),
		Blog:        store.NewMemory[blog.Post]("blog_posts"),
		Businesses:  store.NewMemory[directory.Business]("businesses"),
		Events:      store.NewMemory[events.Event]("events"),
		Community:   store.NewMemory[community.Post]("community_posts"),
		Newsletters: store.NewMemory[newsletters.Newsletter]("newsletters"),
		Subscribers: store.NewMemory[newsletters.Subscriber]("newsletter_subscribers"),
		Ads:         store.NewMemory[ads.Advertisement]("advertisements"),
		Payments:    store.NewMemory[billing.Payment]("payments"),
		Menus:       store.NewMemory[menus.Menu]("menus"),
		Users:       store.NewMemory[users.User]("users"),
		Uploads:     store.NewMemory[media.Upload]("media"),
		Site:        settings.NewStore(settings.NewMemoryKV()),
		Components:  settings.NewStore(settings.NewMemoryKV()),
	}
}

// SQLStores expects db to be migrated already.
func SQLStores(db *gorm.DB) *Stores {
	return &Stores{
		Articles:    store.MustSQL[articles.Article](db),
		Blog:        store.MustSQL[blog.Post](db),
		Businesses:  store.MustSQL[directory.Business](db),
		Events:      store.MustSQL[events.Event](db),
		Community:   store.MustSQL[community.Post](db),
		Newsletters: store.MustSQL[newsletters.Newsletter](db),
		Subscribers: store.MustSQL[newsletters.Subscriber](db),
		Ads:         store.MustSQL[ads.Advertisement](db),
		Payments:    store.MustSQL[billing.Payment](db),
		Menus:       store.MustSQL[menus.Menu](db),
		Users:       store.MustSQL[users.User](db),
		Uploads:     store.MustSQL[media.Upload](db),
		Site:        settings.NewStore(settings.NewSQLKV(db, settings.SiteTable)),
		Components:  settings.NewStore(settings.NewSQLKV(db, settings.ComponentTable)),
	}
}
