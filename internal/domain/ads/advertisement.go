package ads

import (
	"time"

	"newsdesk/internal/domain/content"
	"newsdesk/internal/store"
)

const (
	KindSlot     = "slot"
	KindCampaign = "campaign"
)

const (
	StatusActive         = "active"
	StatusScheduled      = "scheduled"
	StatusPaused         = "paused"
	StatusExpired        = "expired"
	StatusPendingPayment = "pending_payment"
)

var Transitions = content.Transitions{
	StatusPendingPayment: {StatusActive, StatusScheduled, StatusExpired},
	StatusScheduled:      {StatusActive, StatusPaused, StatusExpired},
	StatusActive:         {StatusPaused, StatusExpired},
	StatusPaused:         {StatusActive, StatusExpired},
}

type Advertisement struct {
	store.Base
	Kind            string     `gorm:"index;not null" json:"kind"`
	Name            string     `gorm:"not null" json:"name"`
	Advertiser      string     `json:"advertiser"`
	AdvertiserEmail string     `json:"advertiser_email"`
	Placement       string     `gorm:"index;not null" json:"placement"`
	ImageURL        string     `json:"image_url"`
	TargetURL       string     `json:"target_url"`
	AltText         string     `json:"alt_text"`
	Priority        int        `json:"priority"`
	Impressions     int64      `gorm:"not null" json:"impressions"`
	Clicks          int64      `gorm:"not null" json:"clicks"`
	StartDate       *time.Time `json:"start_date"`
	EndDate         *time.Time `json:"end_date"`
	Status          string     `gorm:"index;not null" json:"status"`
	PriceCents      int64      `json:"price_cents"`
	Currency        string     `json:"currency"`
	StripeSessionID string     `gorm:"index" json:"stripe_session_id"`
	PaidAt          *time.Time `json:"paid_at"`
	Seeded          bool       `gorm:"index" json:"seeded"`
}

func (Advertisement) TableName() string { return "advertisements" }

func (a *Advertisement) ResetCounters() {
	a.Impressions = 0
	a.Clicks = 0
}

// InWindow reports whether now falls between the start and end dates. Open ends count as unbounded.
func (a *Advertisement) InWindow(now time.Time) bool {
	if a.StartDate != nil && now.Before(*a.StartDate) {
		return false
	}
	if a.EndDate != nil && now.After(*a.EndDate) {
		return false
	}
	return true
}

// StatusAfterPayment is where a paid campaign goes: live now, or scheduled for a future start.
func StatusAfterPayment(start *time.Time, now time.Time) string {
	if start != nil && start.After(now) {
		return StatusScheduled
	}
	return StatusActive
}
