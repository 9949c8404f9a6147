// Package billing resolves hosted checkout sessions at the payment provider.
package billing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"lifelessons-backend-go/internal/core"
	"lifelessons-backend-go/internal/models"
)

// centsPerUnit converts Stripe's smallest currency unit into the amount stored on payments.
const centsPerUnit = 100

// sessionGetter is the part of the Stripe checkout session client used here.
type sessionGetter interface {
	Get(id string, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// StripeGateway implements core.CheckoutSessionFetcher against the Stripe API.
type StripeGateway struct {
	sessions sessionGetter
}

// NewStripeGateway creates a gateway authenticated with secretKey.
func NewStripeGateway(secretKey string) (*StripeGateway, error) {
	if secretKey == "" {
		return nil, errors.New("stripe secret key is required")
	}
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return &StripeGateway{sessions: sc.CheckoutSessions}, nil
}

// FetchConfirmation retrieves the checkout session and maps it to a PaymentConfirmation.
func (g *StripeGateway) FetchConfirmation(ctx context.Context, sessionID string) (*models.PaymentConfirmation, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("line_items")

	session, err := g.sessions.Get(sessionID, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode == http.StatusNotFound {
			return nil, core.NotFoundError("Checkout session not found")
		}
		return nil, fmt.Errorf("failed to retrieve checkout session '%s': %w", sessionID, err)
	}
	return toConfirmation(session), nil
}

func toConfirmation(s *stripe.CheckoutSession) *models.PaymentConfirmation {
	c := &models.PaymentConfirmation{
		CallerEmail:     s.Metadata["userEmail"],
		AmountPaid:      float64(s.AmountTotal) / centsPerUnit,
		Currency:        strings.ToLower(string(s.Currency)),
		PaymentStatus:   string(s.PaymentStatus),
		TransactionType: s.Metadata["transactionType"],
		SessionID:       s.ID,
	}
	if c.CallerEmail == "" {
		c.CallerEmail = s.CustomerEmail
	}
	if c.CallerEmail == "" && s.CustomerDetails != nil {
		c.CallerEmail = s.CustomerDetails.Email
	}
	if s.PaymentIntent != nil {
		c.TransactionID = s.PaymentIntent.ID
	}
	if s.LineItems != nil && len(s.LineItems.Data) > 0 {
		c.LineItemDescription = s.LineItems.Data[0].Description
	}
	return c
}
