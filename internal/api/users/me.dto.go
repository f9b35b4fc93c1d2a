package users

import (
	"time"

	"newsdesk/internal/domain/access"
	"newsdesk/internal/domain/users"
)

type MeResponse struct {
	User   UserDTO   `json:"user"`
	Access AccessDTO `json:"access"`
}

/* ---------- USER ---------- */

type UserDTO struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	DisplayName string     `json:"display_name"`
	PhotoURL    string     `json:"photo_url"`
	Role        string     `json:"role"`
	Provider    string     `json:"provider"`
	Disabled    bool       `json:"disabled"`
	LastLoginAt *time.Time `json:"last_login_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

/* ---------- ACCESS ---------- */

type AccessDTO struct {
	Role         string   `json:"role"`
	Capabilities []string `json:"capabilities"`
}

type SetRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

type SetDisabledRequest struct {
	Disabled bool `json:"disabled"`
}

func buildUserDTO(u *users.User) UserDTO {
	return UserDTO{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		PhotoURL:    u.PhotoURL,
		Role:        u.Role,
		Provider:    u.Provider,
		Disabled:    u.Disabled,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

func buildAccessDTO(role string) AccessDTO {
	return AccessDTO{Role: role, Capabilities: access.CapabilitiesFor(access.Role(role))}
}
