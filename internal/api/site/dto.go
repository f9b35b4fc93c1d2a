package siteapi

import "newsdesk/internal/domain/site"

// ComponentDTO pairs a feature name with its effective settings.
type ComponentDTO struct {
	Feature string `json:"feature"`
	site.ComponentSettings
}

type GetComponentsResponse struct {
	Components []ComponentDTO `json:"components"`
}
