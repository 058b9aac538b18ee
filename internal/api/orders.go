package api

import (
	"context"
	"net/http"

	"github.com/digicoders-git/espejo-website-sub001/internal/auth"
	"github.com/digicoders-git/espejo-website-sub001/internal/domain"
)

type PlaceOrderRequest struct {
	AddressID     string               `json:"address_id"`
	PaymentMethod domain.PaymentMethod `json:"payment_method"`
	OfferCode     string               `json:"offer_code,omitempty"`
	Notes         string               `json:"notes,omitempty"`

	// IdempotencyKey guards against double submission on retry: the backend
	// returns the already-created order for a repeated key.
	IdempotencyKey string `json:"idempotency_key"`
}

// PlaceOrder submits a cash-on-delivery order. Pricing is re-derived
// server-side from the remote cart, which is why per-item cart sync before
// this call is allowed to be best-effort.
func (c *Client) PlaceOrder(ctx context.Context, sess auth.Session, req PlaceOrderRequest) (*domain.Order, error) {
	var order domain.Order
	if err := c.do(ctx, sess, http.MethodPost, "/user-orders/place", req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}
