package newsletters

import (
	"time"

	"newsdesk/internal/domain/content"
	"newsdesk/internal/store"
)

const (
	StatusDraft     = "draft"
	StatusScheduled = "scheduled"
	StatusSent      = "sent"
	// StatusSending marks an issue claimed by a dispatch still in flight.
	StatusSending = "sending"
)

// Dispatched reports whether a send has claimed or finished the issue.
func Dispatched(status string) bool {
	return status == StatusSent || status == StatusSending
}

// Transitions excludes sent; only dispatch moves a newsletter there.
var Transitions = content.Transitions{
	StatusDraft:     {StatusScheduled},
	StatusScheduled: {StatusDraft},
}

const AudienceAll = "all"

type Stats struct {
	Recipients int `json:"recipients"`
	Delivered  int `json:"delivered"`
	Failed     int `json:"failed"`
	Opens      int `json:"opens"`
	Clicks     int `json:"clicks"`
}

type Newsletter struct {
	store.Base
	Title       string     `gorm:"not null" json:"title"`
	Subject     string     `gorm:"not null" json:"subject"`
	PreviewText string     `json:"preview_text"`
	Content     string     `json:"content"`
	Audience    string     `json:"audience"`
	Status      string     `gorm:"index;not null" json:"status"`
	ScheduledAt *time.Time `json:"scheduled_at"`
	SentAt      *time.Time `json:"sent_at"`
	Stats       Stats      `gorm:"serializer:json;type:jsonb" json:"stats"`
	CreatedBy   string     `json:"created_by"`
}

func (Newsletter) TableName() string { return "newsletters" }

func (n *Newsletter) ResetCounters() { n.Stats = Stats{} }
