package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
	"github.com/stylescanner/server/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Options struct {
	DB            *gorm.DB
	Customers     CustomerLookup
	Ledger        EventLedger
	Analytics     *Analytics
	WebhookSecret string
	Logger        *zap.Logger
}

type Service struct {
	db        *gorm.DB
	customers CustomerLookup
	ledger    EventLedger
	analytics *Analytics
	secret    string
	logger    *zap.Logger
}

func NewService(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		db:        opts.DB,
		customers: opts.Customers,
		ledger:    opts.Ledger,
		analytics: opts.Analytics,
		secret:    opts.WebhookSecret,
		logger:    logger,
	}
}

// VerifyError marks a payload that failed signature verification or decoding.
type VerifyError struct{ Err error }

func (e *VerifyError) Error() string { return e.Err.Error() }
func (e *VerifyError) Unwrap() error { return e.Err }

// HandleWebhook verifies a Stripe delivery and applies subscription changes.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) (*Outcome, error) {
	if s.secret == "" {
		return nil, &VerifyError{Err: errMissingSecret}
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, s.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, &VerifyError{Err: err}
	}

	out := &Outcome{EventID: event.ID, EventType: string(event.Type), Received: true}
	if s.ledger != nil && event.ID != "" {
		fresh, err := s.ledger.SetNX(ctx, eventKeyPrefix+event.ID, string(event.Type), eventTTL)
		if err != nil {
			s.logger.Warn("stripe event dedupe unavailable", zap.Error(err))
		} else if !fresh {
			out.Duplicate = true
			s.logger.Info("stripe event already processed", zap.String("event_id", event.ID))
			return out, nil
		}
	}

	switch event.Type {
	case stripe.EventTypeCustomerSubscriptionCreated,
		stripe.EventTypeCustomerSubscriptionUpdated,
		stripe.EventTypeCustomerSubscriptionDeleted:
		userID, err := s.applySubscription(ctx, event)
		if err != nil {
			if s.ledger != nil && event.ID != "" {
				_ = s.ledger.Del(ctx, eventKeyPrefix+event.ID)
			}
			return nil, err
		}
		out.UserID = userID
	default:
		s.logger.Info("unhandled stripe event", zap.String("type", string(event.Type)), zap.String("event_id", event.ID))
	}
	return out, nil
}

func (s *Service) applySubscription(ctx context.Context, event stripe.Event) (string, error) {
	if event.Data == nil {
		return "", &VerifyError{Err: errors.New("event has no data")}
	}
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return "", &VerifyError{Err: fmt.Errorf("decode subscription: %w", err)}
	}
	if sub.Customer == nil || sub.Customer.ID == "" {
		return "", &VerifyError{Err: errMissingCustomer}
	}

	email := sub.Customer.Email
	if email == "" {
		var err error
		if email, err = s.customers.Email(ctx, sub.Customer.ID); err != nil {
			return "", fmt.Errorf("retrieve customer %s: %w", sub.Customer.ID, err)
		}
	}

	var u models.User
	err := s.db.WithContext(ctx).Select("id", "email").First(&u, "email = ?", models.NormalizeEmail(email)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Warn("no user for stripe customer", zap.String("email", email), zap.String("customer", sub.Customer.ID))
		return "", nil
	}
	if err != nil {
		return "", err
	}

	status := mapStatus(sub.Status)
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", u.ID).Updates(map[string]interface{}{
		"subscription_status": status,
		"subscription_id":     sub.ID,
	}).Error; err != nil {
		return "", err
	}
	s.logger.Info("subscription updated",
		zap.String("user_id", u.ID), zap.String("status", string(status)), zap.String("event", string(event.Type)))

	s.analytics.Purchase(ctx, u.ID, string(sub.Status), sub.ID, nil)
	return u.ID, nil
}

// mapStatus folds Stripe statuses the account model does not track into the closest one.
func mapStatus(st stripe.SubscriptionStatus) models.SubscriptionStatus {
	status := models.SubscriptionStatus(st)
	if status.Valid() {
		return status
	}
	switch st {
	case stripe.SubscriptionStatusUnpaid:
		return models.SubscriptionPastDue
	case stripe.SubscriptionStatusPaused:
		return models.SubscriptionCanceled
	default:
		return models.SubscriptionFree
	}
}
