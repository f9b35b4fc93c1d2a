package stripe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"newsdesk/config"

	"github.com/stripe/stripe-go/v75"
	checkoutsession "github.com/stripe/stripe-go/v75/checkout/session"
	"github.com/stripe/stripe-go/v75/webhook"
)

var ErrNotConfigured = errors.New("stripe is not configured")

// AdCheckout describes the one-off payment for an advertising campaign.
type AdCheckout struct {
	AdID        string
	Name        string
	Email       string
	AmountCents int64
	Currency    string
}

type Session struct {
	ID  string
	URL string
}

// Payments is what the advertising handlers need from Stripe.
type Payments interface {
	CreateAdCheckout(ctx context.Context, in AdCheckout) (*Session, error)
	ParseWebhook(payload []byte, signature string) (stripe.Event, error)
}

type Client struct {
	cfg config.StripeConfig
}

func NewClient(cfg config.StripeConfig) *Client {
	return &Client{cfg: cfg}
}

func (c *Client) CreateAdCheckout(ctx context.Context, in AdCheckout) (*Session, error) {
	if c.cfg.SecretKey == "" {
		return nil, ErrNotConfigured
	}
	stripe.Key = c.cfg.SecretKey

	currency := strings.ToLower(in.Currency)
	if currency == "" {
		currency = c.cfg.Currency
	}
	appURL := strings.TrimRight(c.cfg.AppURL, "/")

	params := &stripe.CheckoutSessionParams{
		SuccessURL: stripe.String(appURL + "/advertise/success?ad=" + in.AdID),
		CancelURL:  stripe.String(appURL + "/advertise?canceled=1&ad=" + in.AdID),
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String("Advertising: " + in.Name),
					},
					UnitAmount: stripe.Int64(in.AmountCents),
				},
				Quantity: stripe.Int64(1),
			},
		},
		ClientReferenceID: stripe.String(in.AdID),
		Metadata: map[string]string{
			"ad_id": in.AdID,
		},
	}
	if in.Email != "" {
		params.CustomerEmail = stripe.String(in.Email)
	}
	params.Context = ctx

	s, err := checkoutsession.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	return &Session{ID: s.ID, URL: s.URL}, nil
}

func (c *Client) ParseWebhook(payload []byte, signature string) (stripe.Event, error) {
	if c.cfg.WebhookSecret == "" {
		return stripe.Event{}, ErrNotConfigured
	}
	return webhook.ConstructEventWithOptions(
		payload,
		signature,
		c.cfg.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
}
