// Package offers computes discount eligibility and amounts for a single
// applied offer code. At most one offer is active per checkout session;
// applying a new one replaces the old one at the session layer.
package offers

import (
	"errors"
	"fmt"
	"math"

	"github.com/digicoders-git/espejo-website-sub001/internal/domain"
)

var (
	// ErrBelowMinimum rejects an offer whose minimum order amount exceeds the
	// current subtotal.
	ErrBelowMinimum = errors.New("order subtotal below offer minimum")

	// ErrUnknownDiscountType rejects discount types this storefront does not
	// understand.
	ErrUnknownDiscountType = errors.New("unknown discount type")
)

// BelowMinimumError carries the shortfall so handlers can tell the shopper
// how much more they need to add.
type BelowMinimumError struct {
	Subtotal  float64
	MinAmount float64
}

func (e *BelowMinimumError) Error() string {
	return fmt.Sprintf("order subtotal %.2f below offer minimum %.2f", e.Subtotal, e.MinAmount)
}

func (e *BelowMinimumError) Unwrap() error { return ErrBelowMinimum }

// Validate checks offer eligibility against subtotal and returns the discount
// amount, rounded to the nearest whole currency unit. The discount is never
// negative; a percentage discount is clamped at the offer's max discount
// amount when one is set.
func Validate(offer domain.Offer, subtotal float64) (float64, error) {
	if subtotal < offer.MinOrderAmount {
		return 0, &BelowMinimumError{Subtotal: subtotal, MinAmount: offer.MinOrderAmount}
	}

	var raw float64
	switch offer.DiscountType {
	case domain.DiscountPercentage:
		raw = subtotal * offer.DiscountValue / 100
		if offer.HasMaxDiscount() && raw > offer.MaxDiscountAmount {
			raw = offer.MaxDiscountAmount
		}
	case domain.DiscountFlat:
		raw = offer.DiscountValue
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownDiscountType, offer.DiscountType)
	}

	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		raw = 0
	}
	discount := math.Round(raw)
	if discount < 0 {
		discount = 0
	}
	return discount, nil
}

// NetTotal is the payable amount after discount. A broken discount must never
// crash checkout or produce a negative payable, so a non-finite result falls
// back to the undiscounted subtotal and the floor is 0.
func NetTotal(subtotal, discount float64) float64 {
	net := subtotal - discount
	if math.IsNaN(net) || math.IsInf(net, 0) {
		return subtotal
	}
	return math.Max(0, net)
}
