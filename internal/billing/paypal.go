package billing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// PayPalClient talks to the PayPal REST API for subscription management.
// Tokens from the client-credentials grant are cached until shortly before
// expiry.
type PayPalClient struct {
	http         *resty.Client
	clientID     string
	clientSecret string
	logger       *zap.Logger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewPayPalClient(baseURL, clientID, clientSecret string, logger *zap.Logger) *PayPalClient {
	return &PayPalClient{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(30 * time.Second),
		clientID:     clientID,
		clientSecret: clientSecret,
		logger:       logger,
	}
}

// Configured reports whether API credentials are present. Billing endpoints
// degrade to an explicit error when they are not.
func (c *PayPalClient) Configured() bool {
	return c.clientID != "" && c.clientSecret != ""
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

func (c *PayPalClient) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	var tok tokenResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBasicAuth(c.clientID, c.clientSecret).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetBody("grant_type=client_credentials").
		SetResult(&tok).
		Post("/v1/oauth2/token")
	if err != nil {
		return "", fmt.Errorf("paypal token request: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("paypal token request: status %d", resp.StatusCode())
	}

	c.accessToken = tok.AccessToken
	// Refresh a minute early so in-flight requests never carry a stale token.
	c.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn-60) * time.Second)
	return c.accessToken, nil
}

// CreateSubscriptionResult carries the IDs the frontend needs to send the
// user through PayPal approval.
type CreateSubscriptionResult struct {
	SubscriptionID string `json:"subscription_id"`
	ApprovalURL    string `json:"approval_url"`
}

type subscriptionResponse struct {
	ID    string `json:"id"`
	Links []struct {
		Href string `json:"href"`
		Rel  string `json:"rel"`
	} `json:"links"`
}

// CreateSubscription starts a PayPal subscription on the given billing plan
// and returns the approval redirect.
func (c *PayPalClient) CreateSubscription(ctx context.Context, planID, returnURL, cancelURL string) (*CreateSubscriptionResult, error) {
	tok, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	body := map[string]any{
		"plan_id": planID,
		"application_context": map[string]any{
			"return_url": returnURL,
			"cancel_url": cancelURL,
		},
	}
	var sub subscriptionResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(tok).
		SetBody(body).
		SetResult(&sub).
		Post("/v1/billing/subscriptions")
	if err != nil {
		return nil, fmt.Errorf("paypal create subscription: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("paypal create subscription: status %d: %s", resp.StatusCode(), resp.String())
	}

	out := &CreateSubscriptionResult{SubscriptionID: sub.ID}
	for _, link := range sub.Links {
		if link.Rel == "approve" {
			out.ApprovalURL = link.Href
			break
		}
	}
	return out, nil
}

// SubscriptionStatus fetches the current status of a PayPal subscription
// ("APPROVAL_PENDING", "ACTIVE", "CANCELLED", ...). Used to confirm a
// subscription right after the user returns from approval, without waiting
// for the webhook.
func (c *PayPalClient) SubscriptionStatus(ctx context.Context, subscriptionID string) (string, error) {
	tok, err := c.token(ctx)
	if err != nil {
		return "", err
	}
	var sub struct {
		Status string `json:"status"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(tok).
		SetResult(&sub).
		Get("/v1/billing/subscriptions/" + subscriptionID)
	if err != nil {
		return "", fmt.Errorf("paypal get subscription: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("paypal get subscription: status %d", resp.StatusCode())
	}
	return sub.Status, nil
}

// CancelSubscription cancels an active PayPal subscription.
func (c *PayPalClient) CancelSubscription(ctx context.Context, subscriptionID, reason string) error {
	tok, err := c.token(ctx)
	if err != nil {
		return err
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(tok).
		SetBody(map[string]string{"reason": reason}).
		Post("/v1/billing/subscriptions/" + subscriptionID + "/cancel")
	if err != nil {
		return fmt.Errorf("paypal cancel subscription: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("paypal cancel subscription: status %d", resp.StatusCode())
	}
	return nil
}

// WebhookEvent is the subset of a PayPal webhook payload the service acts on.
type WebhookEvent struct {
	EventType string `json:"event_type"`
	Resource  struct {
		ID                 string `json:"id"`
		BillingAgreementID string `json:"billing_agreement_id"`
	} `json:"resource"`
}

// SubscriptionID resolves the subscription an event refers to. Payment
// events carry it as the billing agreement.
func (e *WebhookEvent) SubscriptionID() string {
	if e.Resource.BillingAgreementID != "" {
		return e.Resource.BillingAgreementID
	}
	return e.Resource.ID
}

// ApplyWebhook updates the stored subscription for a webhook event. Events
// for unknown subscriptions and unhandled event types are ignored.
func ApplyWebhook(ctx context.Context, store SubscriptionStore, event *WebhookEvent, logger *zap.Logger) error {
	var status string
	switch event.EventType {
	case "BILLING.SUBSCRIPTION.ACTIVATED":
		status = "active"
	case "BILLING.SUBSCRIPTION.CANCELLED":
		status = "cancelled"
	case "BILLING.SUBSCRIPTION.SUSPENDED":
		status = "suspended"
	case "PAYMENT.SALE.COMPLETED":
		logger.Info("subscription payment completed",
			zap.String("subscription_id", event.SubscriptionID()))
		return nil
	default:
		logger.Debug("ignoring webhook event", zap.String("event_type", event.EventType))
		return nil
	}

	sub, err := store.FindBySubscriptionID(ctx, event.SubscriptionID())
	if err != nil {
		return err
	}
	if sub == nil {
		logger.Warn("webhook for unknown subscription",
			zap.String("subscription_id", event.SubscriptionID()),
			zap.String("event_type", event.EventType))
		return nil
	}

	sub.Status = status
	if status != "active" {
		sub.Plan = PlanFree
	}
	if err := store.Upsert(ctx, sub); err != nil {
		return err
	}
	logger.Info("subscription updated from webhook",
		zap.String("user_id", sub.UserID),
		zap.String("status", status))
	return nil
}
