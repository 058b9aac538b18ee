package domain

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFlat       DiscountType = "flat"
)

type Offer struct {
	Code              string       `json:"code"`
	Title             string       `json:"title"`
	DiscountType      DiscountType `json:"discount_type"`
	DiscountValue     float64      `json:"discount_value"`
	MaxDiscountAmount float64      `json:"max_discount_amount,omitempty"`
	MinOrderAmount    float64      `json:"min_order_amount"`
}

// HasMaxDiscount reports whether the percentage clamp applies. A zero cap
// means the backend sent no cap.
func (o Offer) HasMaxDiscount() bool {
	return o.MaxDiscountAmount > 0
}
