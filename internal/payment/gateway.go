// Package payment wraps the hosted-checkout payment processor: session
// creation, refunds, and signed webhook event verification.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"classifieds-service/internal/models"
	"classifieds-service/internal/util"
)

// LineItem is one billable entry on a checkout session, amounts in cents.
type LineItem struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	UnitAmount  int64  `json:"unit_amount"`
	Quantity    int    `json:"quantity"`
}

// SessionParams are the inputs to CreateCheckoutSession. Metadata carries
// the persisted ad id and nothing else; the gateway caps metadata size, so
// ad content never travels through it.
type SessionParams struct {
	LineItems     []LineItem        `json:"line_items"`
	SuccessURL    string            `json:"success_url"`
	CancelURL     string            `json:"cancel_url"`
	CustomerEmail string            `json:"customer_email"`
	Metadata      map[string]string `json:"metadata"`
}

// CheckoutSession is the gateway's hosted checkout reference.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Refund is the gateway's acknowledgement of a refund request.
type Refund struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Webhook event kinds delivered by the gateway.
const (
	EventCheckoutCompleted = "checkout.completed"
	EventCheckoutExpired   = "checkout.expired"
)

// Event is an inbound signed webhook event.
type Event struct {
	ID   string       `json:"id"`
	Type string       `json:"type"`
	Data SessionEvent `json:"data"`
}

// SessionEvent is the checkout session payload carried by webhook events.
type SessionEvent struct {
	SessionID        string            `json:"session_id"`
	PaymentReference string            `json:"payment_reference"`
	CustomerEmail    string            `json:"customer_email"`
	AmountTotal      int64             `json:"amount_total"`
	Metadata         map[string]string `json:"metadata"`
}

// Gateway is the payment processor surface the lifecycle depends on.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, params SessionParams) (*CheckoutSession, error)
	Refund(ctx context.Context, paymentReference, reason string) (*Refund, error)
}

// BuildLineItems produces one line item per targeted county.
func BuildLineItems(category string, locs []models.Location, unitAmount int64) []LineItem {
	items := make([]LineItem, len(locs))
	for i, loc := range locs {
		items[i] = LineItem{
			Name:        fmt.Sprintf("Ad Posting - %s, %s", loc.County, loc.State),
			Description: fmt.Sprintf("%s ad in %s, %s", category, loc.County, loc.State),
			UnitAmount:  unitAmount,
			Quantity:    1,
		}
	}
	return items
}

// HTTPGateway talks to the processor's REST API.
type HTTPGateway struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPGateway creates a gateway client. Every call is bounded by the
// given timeout; a timed-out call fails that call only.
func NewHTTPGateway(baseURL, apiKey string, timeout time.Duration) *HTTPGateway {
	return &HTTPGateway{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// CreateCheckoutSession requests a hosted checkout session.
func (g *HTTPGateway) CreateCheckoutSession(ctx context.Context, params SessionParams) (*CheckoutSession, error) {
	start := time.Now()
	defer func() {
		util.PaymentGatewayLatency.WithLabelValues("create_session").Observe(time.Since(start).Seconds())
	}()

	var session CheckoutSession
	if err := g.post(ctx, "/v1/checkout/sessions", params, &session); err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}
	return &session, nil
}

// Refund issues a full refund against a payment reference.
func (g *HTTPGateway) Refund(ctx context.Context, paymentReference, reason string) (*Refund, error) {
	start := time.Now()
	defer func() {
		util.PaymentGatewayLatency.WithLabelValues("refund").Observe(time.Since(start).Seconds())
	}()

	body := map[string]string{
		"payment_reference": paymentReference,
		"reason":            reason,
	}

	var refund Refund
	if err := g.post(ctx, "/v1/refunds", body, &refund); err != nil {
		return nil, fmt.Errorf("failed to create refund: %w", err)
	}
	return &refund, nil
}

func (g *HTTPGateway) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("gateway returned %d: %s", resp.StatusCode, raw)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
