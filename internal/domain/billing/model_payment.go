package billing

import "newsdesk/internal/store"

const (
	PaymentPaid    = "paid"
	PaymentUnpaid  = "unpaid"
	PaymentExpired = "expired"
)

// Payment is one Stripe checkout for an advertising campaign.
type Payment struct {
	store.Base
	AdID            string `gorm:"index;not null" json:"ad_id"`
	PayerEmail      string `json:"payer_email"`
	StripeSessionID string `gorm:"uniqueIndex" json:"stripe_session_id"`
	PaymentIntentID string `json:"payment_intent_id"`
	AmountCents     int64  `json:"amount_cents"`
	Currency        string `json:"currency"`
	Status          string `gorm:"index" json:"status"`
}

func (Payment) TableName() string { return "payments" }
