package events

import (
	"time"

	"newsdesk/internal/domain/content"
	"newsdesk/internal/store"
)

const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusPublished = "published"
	StatusCancelled = "cancelled"
)

var Transitions = content.Transitions{
	StatusPending:   {StatusApproved, StatusCancelled},
	StatusApproved:  {StatusPublished, StatusCancelled},
	StatusPublished: {StatusCancelled},
}

type Event struct {
	store.Base
	Title          string     `gorm:"not null" json:"title"`
	Slug           string     `gorm:"index" json:"slug"`
	Description    string     `json:"description"`
	StartDate      time.Time  `gorm:"index;not null" json:"start_date"`
	EndDate        *time.Time `json:"end_date"`
	Location       string     `json:"location"`
	Address        string     `json:"address"`
	Organizer      string     `json:"organizer"`
	OrganizerEmail string     `json:"organizer_email"`
	TicketURL      string     `json:"ticket_url"`
	ImageURL       string     `json:"image_url"`
	Category       string     `gorm:"index" json:"category"`
	SubmittedBy    string     `gorm:"index" json:"submitted_by"`
	Status         string     `gorm:"index;not null" json:"status"`
	ReviewedBy     string     `json:"reviewed_by"`
	ReviewedAt     *time.Time `json:"reviewed_at"`
}

func (Event) TableName() string { return "events" }
