package blog

import (
	"time"

	"newsdesk/internal/domain/content"
	"newsdesk/internal/store"
)

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

var Transitions = content.Transitions{
	StatusDraft:     {StatusPublished, StatusArchived},
	StatusPublished: {StatusDraft, StatusArchived},
	StatusArchived:  {StatusDraft},
}

type Post struct {
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
	AuthorBio     string     `json:"author_bio"`
	AuthorPhoto   string     `json:"author_photo"`
	Status        string     `gorm:"index;not null" json:"status"`
	PublishedAt   *time.Time `gorm:"index" json:"published_at"`
	ViewCount     int64      `gorm:"not null" json:"view_count"`
}

func (Post) TableName() string { return "blog_posts" }

func (p *Post) ResetCounters() { p.ViewCount = 0 }
