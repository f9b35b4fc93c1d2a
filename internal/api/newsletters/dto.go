package newsletters

import (
	"time"

	"newsdesk/internal/api/apiutil"
	"newsdesk/internal/domain/newsletters"
)

type CreateNewsletterRequest struct {
	Title       string `json:"title" binding:"required"`
	Subject     string `json:"subject"`
	PreviewText string `json:"preview_text"`
	Content     string `json:"content"`
	Audience    string `json:"audience"`
}

var updateFields = apiutil.Fields{
	"title":        apiutil.Text,
	"subject":      apiutil.Text,
	"preview_text": apiutil.Text,
	"content":      apiutil.HTML,
	"audience":     apiutil.Raw,
	"status":       apiutil.Raw,
}

type ScheduleRequest struct {
	ScheduledAt string `json:"scheduled_at" binding:"required"`
}

type SubscribeRequest struct {
	Email  string `json:"email"`
	Name   string `json:"name"`
	Source string `json:"source"`
}

type UnsubscribeRequest struct {
	Email string `json:"email" binding:"required"`
	Token string `json:"token" binding:"required"`
}

// SubscriberDTO is a subscriber without its token hash.
type SubscriberDTO struct {
	ID             string     `json:"id"`
	Email          string     `json:"email"`
	Name           string     `json:"name"`
	Status         string     `json:"status"`
	Source         string     `json:"source"`
	SubscribedAt   time.Time  `json:"subscribed_at"`
	UnsubscribedAt *time.Time `json:"unsubscribed_at"`
}

func toSubscriberDTO(s newsletters.Subscriber) SubscriberDTO {
	return SubscriberDTO{
		ID:             s.ID,
		Email:          s.Email,
		Name:           s.Name,
		Status:         s.Status,
		Source:         s.Source,
		SubscribedAt:   s.SubscribedAt,
		UnsubscribedAt: s.UnsubscribedAt,
	}
}
