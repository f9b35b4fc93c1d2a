package directory

import (
	"newsdesk/internal/domain/content"
	"newsdesk/internal/store"
)

const (
	StatusPending   = "pending"
	StatusActive    = "active"
	StatusSuspended = "suspended"
)

var Transitions = content.Transitions{
	StatusPending:   {StatusActive, StatusSuspended},
	StatusActive:    {StatusSuspended},
	StatusSuspended: {StatusActive},
}

type Business struct {
	store.Base
	Name        string            `gorm:"not null" json:"name"`
	Slug        string            `gorm:"index" json:"slug"`
	Description string            `json:"description"`
	Category    string            `gorm:"index" json:"category"`
	Address     string            `json:"address"`
	City        string            `gorm:"index" json:"city"`
	Lat         float64           `json:"lat"`
	Lng         float64           `json:"lng"`
	Phone       string            `json:"phone"`
	Email       string            `json:"email"`
	Website     string            `json:"website"`
	Hours       map[string]string `gorm:"serializer:json;type:jsonb" json:"hours"`
	Images      []string          `gorm:"serializer:json;type:jsonb" json:"images"`
	OwnerID     string            `gorm:"index" json:"owner_id"`
	Status      string            `gorm:"index;not null" json:"status"`
	Featured    bool              `json:"featured"`
}

func (Business) TableName() string { return "businesses" }
