package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/digicoders-git/espejo-website-sub001/internal/auth"
	"github.com/digicoders-git/espejo-website-sub001/internal/domain"
	"github.com/digicoders-git/espejo-website-sub001/internal/pricing"
)

type wireOffer struct {
	Code              string  `json:"code"`
	Title             string  `json:"title"`
	DiscountType      string  `json:"discount_type"`
	DiscountValue     float64 `json:"discount_value"`
	MaxDiscountAmount any     `json:"max_discount_amount"`
	MinOrderAmount    any     `json:"min_order_amount"`
}

// GetOfferByCode looks up a discount code. A code the backend does not know
// comes back as a *RemoteError with the backend's message.
func (c *Client) GetOfferByCode(ctx context.Context, sess auth.Session, code string) (*domain.Offer, error) {
	var w wireOffer
	path := fmt.Sprintf("/offers/code/%s", url.PathEscape(code))
	if err := c.do(ctx, sess, http.MethodGet, path, nil, &w); err != nil {
		return nil, err
	}
	return &domain.Offer{
		Code:              w.Code,
		Title:             w.Title,
		DiscountType:      domain.DiscountType(w.DiscountType),
		DiscountValue:     w.DiscountValue,
		MaxDiscountAmount: pricing.ParseMoney(w.MaxDiscountAmount),
		MinOrderAmount:    pricing.ParseMoney(w.MinOrderAmount),
	}, nil
}
