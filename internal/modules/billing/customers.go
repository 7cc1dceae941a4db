package billing

import (
	"context"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/customer"
)

// StripeCustomers looks customers up through the Stripe API.
type StripeCustomers struct {
	client customer.Client
}

func NewStripeCustomers(secretKey string) *StripeCustomers {
	return &StripeCustomers{client: customer.Client{B: stripe.GetBackend(stripe.APIBackend), Key: secretKey}}
}

func (s *StripeCustomers) Email(ctx context.Context, customerID string) (string, error) {
	params := &stripe.CustomerParams{}
	params.Context = ctx
	c, err := s.client.Get(customerID, params)
	if err != nil {
		return "", err
	}
	return c.Email, nil
}
