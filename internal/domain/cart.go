package domain

import "time"

type Cart struct {
	UserID    string     `json:"user_id,omitempty"`
	Items     []CartItem `json:"items"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type CartItem struct {
	ProductID  string    `json:"product_id"`
	Title      string    `json:"title"`
	Image      string    `json:"image,omitempty"`
	UnitPrice  float64   `json:"unit_price"`
	Quantity   int       `json:"quantity"`
	Size       string    `json:"size,omitempty"`
	Color      string    `json:"color,omitempty"`
	AddOnName  string    `json:"addon_name,omitempty"`
	AddOnPrice float64   `json:"addon_price,omitempty"`
	AddedAt    time.Time `json:"added_at,omitempty"`
}

// Key identifies a cart line for merge and dedup purposes. Two items with the
// same product but different size or color are distinct lines.
func (i CartItem) Key() LineKey {
	return LineKey{ProductID: i.ProductID, Size: i.Size, Color: i.Color}
}

type LineKey struct {
	ProductID string
	Size      string
	Color     string
}

// FindItem returns the index of the line matching key, or -1.
func (c *Cart) FindItem(key LineKey) int {
	for i, item := range c.Items {
		if item.Key() == key {
			return i
		}
	}
	return -1
}

// MergeItem folds item into the cart: an existing line with the same key gets
// its quantity incremented, otherwise the item is appended as a new line.
func (c *Cart) MergeItem(item CartItem) {
	if idx := c.FindItem(item.Key()); idx >= 0 {
		c.Items[idx].Quantity += item.Quantity
		return
	}
	c.Items = append(c.Items, item)
}

// RemoveItem deletes the line matching key. Returns false if no line matched.
func (c *Cart) RemoveItem(key LineKey) bool {
	idx := c.FindItem(key)
	if idx < 0 {
		return false
	}
	c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	return true
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
