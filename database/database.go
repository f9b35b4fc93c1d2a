package database

import (
	"fmt"
	"time"

	"newsdesk/config"
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

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Models lists every collection table, in migration order.
func Models() []interface{} {
	return []interface{}{
		// core
		&users.User{},
		&billing.Payment{},
		&media.Upload{},

		// content
		&articles.Article{},
		&blog.Post{},
		&directory.Business{},
		&events.Event{},
		&community.Post{},
		&newsletters.Newsletter{},
		&newsletters.Subscriber{},
		&ads.Advertisement{},
		&menus.Menu{},
	}
}

// InitDB connects to postgres and migrates the collection and settings tables.
func InitDB(cfg config.DatabaseConfig, log zerolog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	log.Info().Int("tables", len(Models())+2).Msg("connected and migrated")
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	for _, table := range []string{settings.SiteTable, settings.ComponentTable} {
		if err := settings.NewSQLKV(db, table).Migrate(); err != nil {
			return fmt.Errorf("auto-migrate %s: %w", table, err)
		}
	}
	return nil
}
