package ads

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var ErrUnknownLegacyShape = errors.New("record matches neither legacy advertising shape")

// legacySlot is the old placement-slot export (camelCase, "position").
type legacySlot struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Position    string      `json:"position"`
	ImageURL    string      `json:"imageUrl"`
	LinkURL     string      `json:"linkUrl"`
	AltText     string      `json:"altText"`
	Priority    int         `json:"priority"`
	Impressions int64       `json:"impressions"`
	Clicks      int64       `json:"clicks"`
	StartDate   *legacyTime `json:"startDate"`
	EndDate     *legacyTime `json:"endDate"`
	Status      string      `json:"status"`
}

// legacyCampaign is the old paid-campaign export with dollar budgets and nested stats.
type legacyCampaign struct {
	ID           string  `json:"id"`
	BusinessName string  `json:"businessName"`
	ContactEmail string  `json:"contactEmail"`
	Title        string  `json:"title"`
	Placement    string  `json:"placement"`
	CreativeURL  string  `json:"creativeUrl"`
	ImageURL     string  `json:"imageUrl"`
	TargetURL    string  `json:"targetUrl"`
	Budget       float64 `json:"budget"`
	Stats        struct {
		Impressions int64 `json:"impressions"`
		Clicks      int64 `json:"clicks"`
	} `json:"stats"`
	StartDate       *legacyTime `json:"startDate"`
	EndDate         *legacyTime `json:"endDate"`
	Status          string      `json:"status"`
	StripeSessionID string      `json:"stripeSessionId"`
}

// MigrateLegacy maps one exported record of either legacy shape onto Advertisement.
// Counters are carried over. Create zeroes them, so importers add them back with Increment.
func MigrateLegacy(raw json.RawMessage) (*Advertisement, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return nil, fmt.Errorf("decode legacy ad: %w", err)
	}
	_, hasPosition := keys["position"]
	_, hasPlacement := keys["placement"]
	_, hasBusiness := keys["businessName"]

	switch {
	case hasPosition:
		var s legacySlot
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("decode legacy slot: %w", err)
		}
		return &Advertisement{
			Kind:        KindSlot,
			Name:        s.Name,
			Placement:   legacyPlacement(s.Position),
			ImageURL:    s.ImageURL,
			TargetURL:   s.LinkURL,
			AltText:     s.AltText,
			Priority:    s.Priority,
			Impressions: s.Impressions,
			Clicks:      s.Clicks,
			StartDate:   s.StartDate.ptr(),
			EndDate:     s.EndDate.ptr(),
			Status:      legacyStatus(s.Status),
		}, nil
	case hasPlacement || hasBusiness:
		var c legacyCampaign
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("decode legacy campaign: %w", err)
		}
		name := c.Title
		if name == "" {
			name = c.BusinessName
		}
		image := c.CreativeURL
		if image == "" {
			image = c.ImageURL
		}
		return &Advertisement{
			Kind:            KindCampaign,
			Name:            name,
			Advertiser:      c.BusinessName,
			AdvertiserEmail: c.ContactEmail,
			Placement:       legacyPlacement(c.Placement),
			ImageURL:        image,
			TargetURL:       c.TargetURL,
			Impressions:     c.Stats.Impressions,
			Clicks:          c.Stats.Clicks,
			StartDate:       c.StartDate.ptr(),
			EndDate:         c.EndDate.ptr(),
			Status:          legacyStatus(c.Status),
			PriceCents:      int64(math.Round(c.Budget * 100)),
			Currency:        "usd",
			StripeSessionID: c.StripeSessionID,
		}, nil
	}
	return nil, ErrUnknownLegacyShape
}

func legacyPlacement(p string) string {
	switch strings.ToLower(strings.TrimSpace(p)) {
	case "top", "banner", "header", "leaderboard":
		return "header"
	case "side", "sidebar", "rail":
		return "sidebar"
	case "inline", "article", "in-article", "in_article":
		return "in_article"
	case "bottom", "footer":
		return "footer"
	}
	return strings.ToLower(strings.TrimSpace(p))
}

func legacyStatus(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "active", "running", "live":
		return StatusActive
	case "scheduled", "upcoming":
		return StatusScheduled
	case "pending", "pending_payment", "unpaid":
		return StatusPendingPayment
	case "expired", "ended", "completed":
		return StatusExpired
	}
	return StatusPaused
}

// legacyTime accepts RFC3339, plain dates and epoch milliseconds.
type legacyTime struct {
	time.Time
}

func (t *legacyTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		t.Time = time.UnixMilli(ms).UTC()
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("unrecognized date %q", s)
}

func (t *legacyTime) ptr() *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	v := t.Time
	return &v
}
