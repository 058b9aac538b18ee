package domain

type ShippingAddress struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2,omitempty"`
	City         string `json:"city"`
	State        string `json:"state"`
	Pincode      string `json:"pincode"`
	Country      string `json:"country"`
	AddressType  string `json:"address_type"`
	IsDefault    bool   `json:"is_default"`
}

// DefaultAddress picks the address flagged as default, falling back to the
// first entry when none is flagged. Returns nil for an empty book.
func DefaultAddress(addresses []ShippingAddress) *ShippingAddress {
	for i := range addresses {
		if addresses[i].IsDefault {
			return &addresses[i]
		}
	}
	if len(addresses) > 0 {
		return &addresses[0]
	}
	return nil
}
