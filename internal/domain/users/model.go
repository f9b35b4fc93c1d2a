package users

import (
	"time"

	"newsdesk/internal/store"
)

// User ids are the identity provider's stable subject, so a Google account maps to one row.
type User struct {
	store.Base
	Email       string     `gorm:"not null;uniqueIndex:idx_users_email" json:"email"`
	DisplayName string     `json:"display_name"`
	PhotoURL    string     `json:"photo_url"`
	Role        string     `gorm:"not null;index" json:"role"`
	Provider    string     `gorm:"type:varchar(20);not null" json:"provider"`
	ProviderSub string     `gorm:"index" json:"provider_sub"`
	Disabled    bool       `json:"disabled"`
	LastLoginAt *time.Time `json:"last_login_at"`
}

func (User) TableName() string { return "users" }

const ProviderGoogle = "google"
