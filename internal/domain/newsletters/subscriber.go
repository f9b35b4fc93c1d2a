package newsletters

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"newsdesk/internal/store"

	"golang.org/x/crypto/bcrypt"
)

const (
	SubscriberActive       = "active"
	SubscriberUnsubscribed = "unsubscribed"
)

type Subscriber struct {
	store.Base
	Email          string     `gorm:"uniqueIndex;not null" json:"email"`
	Name           string     `json:"name"`
	Status         string     `gorm:"index;not null" json:"status"`
	TokenHash      string     `json:"token_hash"`
	Source         string     `json:"source"`
	SubscribedAt   time.Time  `json:"subscribed_at"`
	UnsubscribedAt *time.Time `json:"unsubscribed_at"`
}

func (Subscriber) TableName() string { return "newsletter_subscribers" }

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NewUnsubscribeToken returns a random token and its bcrypt hash; only the hash is stored.
func NewUnsubscribeToken() (token, hash string, err error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}
	token = hex.EncodeToString(buf)
	h, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", "", err
	}
	return token, string(h), nil
}

func (s *Subscriber) TokenMatches(token string) bool {
	if s.TokenHash == "" || token == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(s.TokenHash), []byte(token)) == nil
}
