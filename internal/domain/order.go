package domain

import "time"

type PaymentMethod string

const (
	PaymentOnline PaymentMethod = "ONLINE"
	PaymentCOD    PaymentMethod = "COD"
)

type OrderStatus string

const (
	OrderStatusConfirmed  OrderStatus = "CONFIRMED"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
)

type Order struct {
	ID            string        `json:"id"`
	UserID        string        `json:"user_id"`
	Items         []CartItem    `json:"items"`
	TotalAmount   float64       `json:"total_amount"`
	Currency      string        `json:"currency"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	OfferCode     string        `json:"offer_code,omitempty"`
	Status        OrderStatus   `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
}

// CheckoutSession is the ephemeral, in-memory state of one checkout attempt.
// It is created when checkout starts and discarded after a terminal outcome;
// the applied offer never survives a new session.
type CheckoutSession struct {
	Items             []CartItem
	SelectedAddressID string
	PaymentMethod     PaymentMethod
	AppliedOffer      *Offer
	Notes             string

	// BuyNow marks a single-item bypass checkout: the item never entered the
	// persistent cart, so a successful order must not clear it.
	BuyNow bool
}
