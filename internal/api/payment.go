package api

import (
	"context"
	"net/http"

	"github.com/digicoders-git/espejo-website-sub001/internal/auth"
	"github.com/digicoders-git/espejo-website-sub001/internal/domain"
)

type CreatePaymentOrderRequest struct {
	// Amount is in whole currency units; the orchestrator rounds the net
	// total before it gets here.
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Notes     string `json:"notes,omitempty"`
	OfferCode string `json:"offer_code,omitempty"`
}

// PaymentOrder is the provider-side order the checkout widget is opened with.
type PaymentOrder struct {
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	KeyID    string `json:"key_id"`
}

func (c *Client) CreatePaymentOrder(ctx context.Context, sess auth.Session, req CreatePaymentOrderRequest) (*PaymentOrder, error) {
	var order PaymentOrder
	if err := c.do(ctx, sess, http.MethodPost, "/payment/create-order", req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// VerifyPaymentRequest carries the provider's signed payment identifiers plus
// everything the backend needs to create the durable order record. The
// verification endpoint is the sole authority on payment validity.
type VerifyPaymentRequest struct {
	ProviderOrderID   string                  `json:"provider_order_id"`
	ProviderPaymentID string                  `json:"provider_payment_id"`
	ProviderSignature string                  `json:"provider_signature"`
	AddressID         string                  `json:"address_id"`
	Notes             string                  `json:"notes,omitempty"`
	OfferCode         string                  `json:"offer_code,omitempty"`
	Address           *domain.ShippingAddress `json:"address,omitempty"`

	// IdempotencyKey lets the backend dedupe a re-submitted verification for
	// the same provider order without double-creating the merchant order.
	IdempotencyKey string `json:"idempotency_key"`
}

func (c *Client) VerifyPayment(ctx context.Context, sess auth.Session, req VerifyPaymentRequest) (*domain.Order, error) {
	var order domain.Order
	if err := c.do(ctx, sess, http.MethodPost, "/payment/verify", req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// PaymentFailureRecord is the analytics/reconciliation record posted when an
// online payment attempt does not end in a verified order.
type PaymentFailureRecord struct {
	ProviderOrderID string `json:"provider_order_id,omitempty"`
	Reason          string `json:"reason"`
	Description     string `json:"description,omitempty"`
	Code            string `json:"code,omitempty"`
	Source          string `json:"source,omitempty"`
	Step            string `json:"step,omitempty"`
}

// LogPaymentFailure is best-effort: callers log and move on when it fails.
func (c *Client) LogPaymentFailure(ctx context.Context, sess auth.Session, rec PaymentFailureRecord) error {
	return c.do(ctx, sess, http.MethodPost, "/payment/failure", rec, nil)
}
