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

// wireCartItem is the backend's cart line shape. Prices arrive as either
// numbers or currency-prefixed strings, so they decode as any and go through
// the pricing parser.
type wireCartItem struct {
	ProductID  string `json:"product_id"`
	Title      string `json:"title"`
	Image      string `json:"image"`
	Price      any    `json:"price"`
	Quantity   int    `json:"quantity"`
	Size       string `json:"size"`
	Color      string `json:"color"`
	AddOnName  string `json:"addon_name"`
	AddOnPrice any    `json:"addon_price"`
}

func (w wireCartItem) toDomain() domain.CartItem {
	return domain.CartItem{
		ProductID:  w.ProductID,
		Title:      w.Title,
		Image:      w.Image,
		UnitPrice:  pricing.ParseMoney(w.Price),
		Quantity:   w.Quantity,
		Size:       w.Size,
		Color:      w.Color,
		AddOnName:  w.AddOnName,
		AddOnPrice: pricing.ParseMoney(w.AddOnPrice),
	}
}

// GetCart fetches the authoritative remote cart.
func (c *Client) GetCart(ctx context.Context, sess auth.Session) ([]domain.CartItem, error) {
	var data struct {
		Items []wireCartItem `json:"items"`
	}
	if err := c.do(ctx, sess, http.MethodGet, "/cart", nil, &data); err != nil {
		return nil, err
	}

	items := make([]domain.CartItem, 0, len(data.Items))
	for _, w := range data.Items {
		items = append(items, w.toDomain())
	}
	return items, nil
}

type AddCartItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
	AddOnName string `json:"addon_name,omitempty"`
}

func (c *Client) AddCartItem(ctx context.Context, sess auth.Session, req AddCartItemRequest) error {
	return c.do(ctx, sess, http.MethodPost, "/cart/add", req, nil)
}

type UpdateCartItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
}

func (c *Client) UpdateCartItem(ctx context.Context, sess auth.Session, req UpdateCartItemRequest) error {
	return c.do(ctx, sess, http.MethodPut, "/cart/update", req, nil)
}

// RemoveCartItem deletes one line. Variant options travel as query params
// because the line identity is (product, size, color).
func (c *Client) RemoveCartItem(ctx context.Context, sess auth.Session, key domain.LineKey) error {
	q := url.Values{}
	if key.Size != "" {
		q.Set("size", key.Size)
	}
	if key.Color != "" {
		q.Set("color", key.Color)
	}
	path := fmt.Sprintf("/cart/item/%s", url.PathEscape(key.ProductID))
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	return c.do(ctx, sess, http.MethodDelete, path, nil, nil)
}

func (c *Client) ClearCart(ctx context.Context, sess auth.Session) error {
	return c.do(ctx, sess, http.MethodDelete, "/cart/clear", nil, nil)
}
