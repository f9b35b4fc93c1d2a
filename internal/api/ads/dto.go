package ads

import "newsdesk/internal/api/apiutil"

type CreateAdRequest struct {
	Kind            string `json:"kind"`
	Name            string `json:"name" binding:"required"`
	Advertiser      string `json:"advertiser"`
	AdvertiserEmail string `json:"advertiser_email"`
	Placement       string `json:"placement" binding:"required"`
	ImageURL        string `json:"image_url"`
	TargetURL       string `json:"target_url"`
	AltText         string `json:"alt_text"`
	Priority        int    `json:"priority"`
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date"`
	Status          string `json:"status"`
	PriceCents      int64  `json:"price_cents"`
	Currency        string `json:"currency"`
}

var updateFields = apiutil.Fields{
	"name":             apiutil.Text,
	"advertiser":       apiutil.Text,
	"advertiser_email": apiutil.Raw,
	"placement":        apiutil.Raw,
	"image_url":        apiutil.Raw,
	"target_url":       apiutil.Raw,
	"alt_text":         apiutil.Text,
	"priority":         apiutil.Int,
	"start_date":       apiutil.Time,
	"end_date":         apiutil.Time,
	"status":           apiutil.Raw,
	"price_cents":      apiutil.Int,
	"currency":         apiutil.Raw,
}

type CheckoutResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

type SeedRequest struct {
	PerPlacement int `json:"per_placement"`
}
