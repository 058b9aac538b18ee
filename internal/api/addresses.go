package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/digicoders-git/espejo-website-sub001/internal/auth"
	"github.com/digicoders-git/espejo-website-sub001/internal/domain"
)

// ListAddresses returns the user's address book. The backend guarantees at
// most one entry is flagged default.
func (c *Client) ListAddresses(ctx context.Context, sess auth.Session) ([]domain.ShippingAddress, error) {
	var data struct {
		Addresses []domain.ShippingAddress `json:"addresses"`
	}
	if err := c.do(ctx, sess, http.MethodGet, "/users/addresses", nil, &data); err != nil {
		return nil, err
	}
	return data.Addresses, nil
}

func (c *Client) CreateAddress(ctx context.Context, sess auth.Session, addr domain.ShippingAddress) (*domain.ShippingAddress, error) {
	var created domain.ShippingAddress
	if err := c.do(ctx, sess, http.MethodPost, "/users/addresses", addr, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateAddress(ctx context.Context, sess auth.Session, addr domain.ShippingAddress) error {
	path := fmt.Sprintf("/users/addresses/%s", url.PathEscape(addr.ID))
	return c.do(ctx, sess, http.MethodPut, path, addr, nil)
}

func (c *Client) DeleteAddress(ctx context.Context, sess auth.Session, id string) error {
	path := fmt.Sprintf("/users/addresses/%s", url.PathEscape(id))
	return c.do(ctx, sess, http.MethodDelete, path, nil, nil)
}
