package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/jordanlanch/trainhub/pkg/models"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/customer"
	sub "github.com/stripe/stripe-go/v76/subscription"
	"github.com/stripe/stripe-go/v76/webhook"
)

// Provider abstracts the billing SaaS so the subscription service can
// be tested without network calls.
type Provider interface {
	EnsureCustomer(ctx context.Context, email, name string, existingID *string) (string, error)
	CreateSubscription(ctx context.Context, customerID, priceID string, metadata map[string]string) (*ProviderSubscription, error)
	CancelSubscription(ctx context.Context, providerSubID string) error
}

// ProviderSubscription is the provider-side view of a created subscription
type ProviderSubscription struct {
	ID      string
	Status  string
	PriceID string
}

// StatusApplier receives provider status changes decoded from webhooks.
// Implemented by the subscription service.
type StatusApplier interface {
	ApplyProviderStatus(ctx context.Context, providerSubID string, status models.SubscriptionStatus) error
}

// StripeConfig holds Stripe configuration
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
}

// Client implements Provider against Stripe
type Client struct {
	config *StripeConfig
}

// NewClient creates a new Stripe billing client
func NewClient(config *StripeConfig) *Client {
	stripe.Key = config.SecretKey
	return &Client{config: config}
}

// EnsureCustomer returns the existing Stripe customer ID or creates a
// new customer for the user.
func (c *Client) EnsureCustomer(ctx context.Context, email, name string, existingID *string) (string, error) {
	if existingID != nil && *existingID != "" {
		return *existingID, nil
	}

	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Name:  stripe.String(name),
	}
	params.Context = ctx

	cust, err := customer.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create customer: %w", err)
	}

	return cust.ID, nil
}

// CreateSubscription creates a provider subscription billed against priceID.
// payment_behavior=default_incomplete keeps it pending until the first
// payment confirms, which matches the local pending status.
func (c *Client) CreateSubscription(ctx context.Context, customerID, priceID string, metadata map[string]string) (*ProviderSubscription, error) {
	params := &stripe.SubscriptionParams{
		Customer: stripe.String(customerID),
		Items: []*stripe.SubscriptionItemsParams{
			{Price: stripe.String(priceID)},
		},
		PaymentBehavior: stripe.String("default_incomplete"),
		Metadata:        metadata,
	}
	params.Context = ctx

	s, err := sub.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}

	return &ProviderSubscription{
		ID:      s.ID,
		Status:  string(s.Status),
		PriceID: priceID,
	}, nil
}

// CancelSubscription cancels a provider subscription immediately
func (c *Client) CancelSubscription(ctx context.Context, providerSubID string) error {
	params := &stripe.SubscriptionCancelParams{}
	params.Context = ctx

	if _, err := sub.Cancel(providerSubID, params); err != nil {
		return fmt.Errorf("failed to cancel subscription: %w", err)
	}

	return nil
}

// WebhookHandler verifies Stripe webhook payloads and forwards status
// transitions to the applier.
type WebhookHandler struct {
	config  *StripeConfig
	applier StatusApplier
}

// NewWebhookHandler creates a webhook handler
func NewWebhookHandler(config *StripeConfig, applier StatusApplier) *WebhookHandler {
	return &WebhookHandler{config: config, applier: applier}
}

// ErrInvalidSignature marks a webhook payload that failed signature
// verification. Callers return 400 for these so Stripe stops retrying.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// IsSignatureError reports whether err is a signature verification failure
func IsSignatureError(err error) bool {
	return errors.Is(err, ErrInvalidSignature)
}

// HandleWebhook processes Stripe webhook events
func (h *WebhookHandler) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := webhook.ConstructEvent(payload, signature, h.config.WebhookSecret)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	log.Printf("📨 Stripe webhook received: %s", event.Type)

	switch event.Type {
	case "customer.subscription.updated":
		return h.handleSubscriptionUpdated(ctx, event)
	case "customer.subscription.deleted":
		return h.handleSubscriptionDeleted(ctx, event)
	case "invoice.paid":
		return h.handleInvoicePaid(ctx, event)
	case "invoice.payment_failed":
		return h.handleInvoicePaymentFailed(ctx, event)
	default:
		// Unhandled event types are acknowledged without action
		return nil
	}
}

func (h *WebhookHandler) handleSubscriptionUpdated(ctx context.Context, event stripe.Event) error {
	var s stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
		return fmt.Errorf("failed to unmarshal subscription: %w", err)
	}

	return h.applier.ApplyProviderStatus(ctx, s.ID, mapProviderStatus(s.Status))
}

func (h *WebhookHandler) handleSubscriptionDeleted(ctx context.Context, event stripe.Event) error {
	var s stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
		return fmt.Errorf("failed to unmarshal subscription: %w", err)
	}

	return h.applier.ApplyProviderStatus(ctx, s.ID, models.SubscriptionCanceled)
}

func (h *WebhookHandler) handleInvoicePaid(ctx context.Context, event stripe.Event) error {
	var invoice stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		return fmt.Errorf("failed to unmarshal invoice: %w", err)
	}

	if invoice.Subscription == nil {
		return nil
	}

	return h.applier.ApplyProviderStatus(ctx, invoice.Subscription.ID, models.SubscriptionActive)
}

func (h *WebhookHandler) handleInvoicePaymentFailed(ctx context.Context, event stripe.Event) error {
	var invoice stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		return fmt.Errorf("failed to unmarshal invoice: %w", err)
	}

	log.Printf("⚠️  Invoice payment failed: %s", invoice.ID)

	if invoice.Subscription == nil {
		return nil
	}

	return h.applier.ApplyProviderStatus(ctx, invoice.Subscription.ID, models.SubscriptionPastDue)
}

// mapProviderStatus maps a Stripe subscription status onto the local
// closed enumeration.
func mapProviderStatus(status stripe.SubscriptionStatus) models.SubscriptionStatus {
	switch status {
	case stripe.SubscriptionStatusActive, stripe.SubscriptionStatusTrialing:
		return models.SubscriptionActive
	case stripe.SubscriptionStatusPastDue, stripe.SubscriptionStatusUnpaid:
		return models.SubscriptionPastDue
	case stripe.SubscriptionStatusCanceled, stripe.SubscriptionStatusIncompleteExpired:
		return models.SubscriptionCanceled
	default:
		return models.SubscriptionPending
	}
}
