package articles

import (
	"time"

	"newsdesk/internal/domain/content"
	"newsdesk/internal/store"
)

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

const (
	SourceManual = "manual"
	SourceAI     = "ai"
)

var Transitions = content.Transitions{
	StatusDraft:     {StatusPublished},
	StatusPublished: {StatusDraft},
}

type Article struct {
	store.Base
	Title         string     `gorm:"not null" json:"title"`
	Content       string     `json:"content"`
	Excerpt       string     `json:"excerpt"`
	Slug          string     `gorm:"index" json:"slug"`
	Category      string     `gorm:"index" json:"category"`
	Tags          []string   `gorm:"serializer:json;type:jsonb" json:"tags"`
	FeaturedImage string     `json:"featured_image"`
	AuthorID      string     `gorm:"index" json:"author_id"`
	AuthorName    string     `json:"author_name"`
	Status        string     `gorm:"index;not null" json:"status"`
	Source        string     `json:"source"`
	PublishedAt   *time.Time `gorm:"index" json:"published_at"`
}

func (Article) TableName() string { return "articles" }

func (a *Article) Published() bool { return a.Status == StatusPublished }
