package billing

import (
	"context"
	"errors"
	"time"
)

// maxPayloadBytes matches the size Stripe guarantees for webhook bodies.
const maxPayloadBytes = 65536

const (
	eventKeyPrefix = "stylescanner:stripe:event:"
	eventTTL       = 24 * time.Hour
)

var (
	errMissingSecret   = errors.New("webhook secret not configured")
	errMissingCustomer = errors.New("subscription has no customer")
)

// CustomerLookup resolves a Stripe customer id to the customer's email.
type CustomerLookup interface {
	Email(ctx context.Context, customerID string) (string, error)
}

// EventLedger remembers processed event ids. *redis.Client satisfies it.
type EventLedger interface {
	SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
}

// Outcome describes what a webhook delivery did.
type Outcome struct {
	EventID   string `json:"-"`
	EventType string `json:"-"`
	Duplicate bool   `json:"-"`
	UserID    string `json:"-"`
	Received  bool   `json:"received"`
}
