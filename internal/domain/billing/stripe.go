package billing

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/checkout/session"
	"github.com/stripe/stripe-go/v81/customer"
	"github.com/stripe/stripe-go/v81/product"
	"github.com/stripe/stripe-go/v81/webhook"
)

// StripeProvider implements PaymentProvider against the Stripe API.
type StripeProvider struct {
	webhookSecret string
}

func NewStripeProvider(secretKey, webhookSecret string) *StripeProvider {
	stripe.Key = secretKey
	return &StripeProvider{webhookSecret: webhookSecret}
}

func (p *StripeProvider) CreateCustomer(ctx context.Context, name, email string) (string, error) {
	params := &stripe.CustomerParams{
		Name:  stripe.String(name),
		Email: stripe.String(email),
	}
	params.Context = ctx

	c, err := customer.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe create customer: %w", err)
	}
	return c.ID, nil
}

// CreateProduct creates a product with a monthly recurring USD price and
// returns the price id.
func (p *StripeProvider) CreateProduct(ctx context.Context, name string, priceCents int64) (string, error) {
	params := &stripe.ProductParams{
		Name: stripe.String(name),
		DefaultPriceData: &stripe.ProductDefaultPriceDataParams{
			Currency:   stripe.String(string(stripe.CurrencyUSD)),
			UnitAmount: stripe.Int64(priceCents),
			Recurring: &stripe.ProductDefaultPriceDataRecurringParams{
				Interval: stripe.String("month"),
			},
		},
	}
	params.Context = ctx

	prod, err := product.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe create product: %w", err)
	}
	if prod.DefaultPrice == nil {
		return "", fmt.Errorf("stripe product %s has no default price", prod.ID)
	}
	return prod.DefaultPrice.ID, nil
}

func (p *StripeProvider) CreateCheckout(ctx context.Context, cp CheckoutParams) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(cp.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:    stripe.String(cp.SuccessURL + "?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:     stripe.String(cp.CancelURL + "?session_id={CHECKOUT_SESSION_ID}"),
		CustomerEmail: stripe.String(cp.CustomerEmail),
	}
	params.Context = ctx
	for k, v := range cp.Metadata {
		params.AddMetadata(k, v)
	}

	sess, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe create checkout session: %w", err)
	}
	return &CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

// ParseEvent verifies the payload signature and lifts the checkout session
// fields the service consumes out of the raw event.
func (p *StripeProvider) ParseEvent(payload []byte, signature string) (*WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, p.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("verify webhook signature: %w", err)
	}

	var checkout stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &checkout); err != nil {
		return nil, fmt.Errorf("decode event object: %w", err)
	}

	return &WebhookEvent{
		Type:      string(event.Type),
		SessionID: checkout.ID,
		Metadata:  checkout.Metadata,
	}, nil
}
