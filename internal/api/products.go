package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/digicoders-git/espejo-website-sub001/internal/auth"
	"github.com/digicoders-git/espejo-website-sub001/internal/pricing"
)

type Product struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
	Price       float64  `json:"price"`
	Sizes       []string `json:"sizes"`
	Colors      []string `json:"colors"`
	InStock     bool     `json:"in_stock"`
}

type wireProduct struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
	Price       any      `json:"price"`
	Sizes       []string `json:"sizes"`
	Colors      []string `json:"colors"`
	InStock     bool     `json:"in_stock"`
}

func (w wireProduct) toProduct() Product {
	return Product{
		ID:          w.ID,
		Title:       w.Title,
		Description: w.Description,
		Image:       w.Image,
		Price:       pricing.ParseMoney(w.Price),
		Sizes:       w.Sizes,
		Colors:      w.Colors,
		InStock:     w.InStock,
	}
}

// ListProducts fetches the public catalog. No credential required.
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var data struct {
		Products []wireProduct `json:"products"`
	}
	if err := c.do(ctx, auth.Session{}, http.MethodGet, "/products", nil, &data); err != nil {
		return nil, err
	}

	products := make([]Product, 0, len(data.Products))
	for _, w := range data.Products {
		products = append(products, w.toProduct())
	}
	return products, nil
}

// GetProduct fetches one product's detail. No credential required.
func (c *Client) GetProduct(ctx context.Context, id string) (*Product, error) {
	var w wireProduct
	path := fmt.Sprintf("/products/%s", url.PathEscape(id))
	if err := c.do(ctx, auth.Session{}, http.MethodGet, path, nil, &w); err != nil {
		return nil, err
	}
	p := w.toProduct()
	return &p, nil
}
