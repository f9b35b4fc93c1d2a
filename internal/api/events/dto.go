package events

import "newsdesk/internal/api/apiutil"

type SubmitEventRequest struct {
	Title          string `json:"title" binding:"required"`
	Slug           string `json:"slug"`
	Description    string `json:"description"`
	StartDate      string `json:"start_date" binding:"required"`
	EndDate        string `json:"end_date"`
	Location       string `json:"location"`
	Address        string `json:"address"`
	Organizer      string `json:"organizer"`
	OrganizerEmail string `json:"organizer_email"`
	TicketURL      string `json:"ticket_url"`
	ImageURL       string `json:"image_url"`
	Category       string `json:"category"`
	// Status is honoured only for approvers.
	Status string `json:"status"`
}

var updateFields = apiutil.Fields{
	"title":           apiutil.Text,
	"slug":            apiutil.Raw,
	"description":     apiutil.HTML,
	"start_date":      apiutil.Time,
	"end_date":        apiutil.Time,
	"location":        apiutil.Text,
	"address":         apiutil.Text,
	"organizer":       apiutil.Text,
	"organizer_email": apiutil.Raw,
	"ticket_url":      apiutil.Raw,
	"image_url":       apiutil.Raw,
	"category":        apiutil.Raw,
}
