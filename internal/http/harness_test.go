package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/digicoders-git/espejo-website-sub001/internal/api"
	"github.com/digicoders-git/espejo-website-sub001/internal/cart"
	"github.com/digicoders-git/espejo-website-sub001/internal/checkout"
	"github.com/digicoders-git/espejo-website-sub001/internal/events"
	"github.com/digicoders-git/espejo-website-sub001/internal/localstore"
	"github.com/digicoders-git/espejo-website-sub001/internal/payment"
)

type backendEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type backendCartItem struct {
	ProductID string `json:"product_id"`
	Title     string `json:"title"`
	Image     string `json:"image"`
	Price     any    `json:"price"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	AddOnName string `json:"addon_name"`
}

type backendProduct struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Image   string   `json:"image"`
	Price   any      `json:"price"`
	Sizes   []string `json:"sizes"`
	Colors  []string `json:"colors"`
	InStock bool     `json:"in_stock"`
}

type backendOffer struct {
	Code              string  `json:"code"`
	Title             string  `json:"title"`
	DiscountType      string  `json:"discount_type"`
	DiscountValue     float64 `json:"discount_value"`
	MaxDiscountAmount any     `json:"max_discount_amount"`
	MinOrderAmount    any     `json:"min_order_amount"`
}

// fakeBackend is an in-process commerce backend speaking the envelope
// protocol, enough of it for the storefront surface under test.
type fakeBackend struct {
	router chi.Router

	mu           sync.Mutex
	cart         []backendCartItem
	products     map[string]backendProduct
	offers       map[string]backendOffer
	placed       []map[string]any
	verified     []map[string]any
	failureLogs  []map[string]any
	verifyFails  bool
	ordersIssued int
}

func newFakeBackend() *fakeBackend {
	b := &fakeBackend{
		products: map[string]backendProduct{
			"mir-round-24": {
				ID:      "mir-round-24",
				Title:   "Venetian Round Mirror",
				Image:   "/images/mir-round-24.jpg",
				Price:   "₹2,499.00",
				Sizes:   []string{"24in", "30in"},
				Colors:  []string{"gold", "silver"},
				InStock: true,
			},
			"mir-arch-36": {
				ID:      "mir-arch-36",
				Title:   "Arched Floor Mirror",
				Image:   "/images/mir-arch-36.jpg",
				Price:   8999,
				Sizes:   []string{"36in"},
				Colors:  []string{"black"},
				InStock: true,
			},
		},
		offers: map[string]backendOffer{
			"MIRROR10": {
				Code:              "MIRROR10",
				Title:             "10% off",
				DiscountType:      "percentage",
				DiscountValue:     10,
				MaxDiscountAmount: 300,
				MinOrderAmount:    1000,
			},
		},
	}

	r := chi.NewRouter()

	r.Get("/checkout.js", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("// checkout sdk"))
	})

	r.Get("/products", func(w http.ResponseWriter, _ *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		list := make([]backendProduct, 0, len(b.products))
		for _, p := range b.products {
			list = append(list, p)
		}
		writeOK(w, map[string]any{"products": list})
	})
	r.Get("/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		p, ok := b.products[chi.URLParam(r, "id")]
		if !ok {
			writeFail(w, http.StatusNotFound, "Product not found")
			return
		}
		writeOK(w, p)
	})

	r.Get("/cart", func(w http.ResponseWriter, _ *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		writeOK(w, map[string]any{"items": b.cart})
	})
	r.Post("/cart/add", func(w http.ResponseWriter, r *http.Request) {
		var req backendCartItem
		json.NewDecoder(r.Body).Decode(&req)

		b.mu.Lock()
		defer b.mu.Unlock()
		for i, item := range b.cart {
			if item.ProductID == req.ProductID && item.Size == req.Size && item.Color == req.Color {
				b.cart[i].Quantity += req.Quantity
				writeOK(w, nil)
				return
			}
		}
		if p, ok := b.products[req.ProductID]; ok {
			req.Title = p.Title
			req.Image = p.Image
			req.Price = p.Price
		}
		b.cart = append(b.cart, req)
		writeOK(w, nil)
	})
	r.Put("/cart/update", func(w http.ResponseWriter, r *http.Request) {
		var req backendCartItem
		json.NewDecoder(r.Body).Decode(&req)

		b.mu.Lock()
		defer b.mu.Unlock()
		for i, item := range b.cart {
			if item.ProductID == req.ProductID && item.Size == req.Size && item.Color == req.Color {
				b.cart[i].Quantity = req.Quantity
			}
		}
		writeOK(w, nil)
	})
	r.Delete("/cart/item/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		size := r.URL.Query().Get("size")
		color := r.URL.Query().Get("color")

		b.mu.Lock()
		defer b.mu.Unlock()
		kept := b.cart[:0]
		for _, item := range b.cart {
			if !(item.ProductID == id && item.Size == size && item.Color == color) {
				kept = append(kept, item)
			}
		}
		b.cart = kept
		writeOK(w, nil)
	})
	r.Delete("/cart/clear", func(w http.ResponseWriter, _ *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.cart = nil
		writeOK(w, nil)
	})

	r.Get("/users/addresses", func(w http.ResponseWriter, _ *http.Request) {
		writeOK(w, map[string]any{"addresses": []map[string]any{{
			"id":         "addr-1",
			"name":       "Asha Verma",
			"phone":      "9876543210",
			"city":       "Jaipur",
			"pincode":    "302001",
			"is_default": true,
		}}})
	})

	r.Get("/offers/code/{code}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		offer, ok := b.offers[chi.URLParam(r, "code")]
		if !ok {
			writeFail(w, http.StatusNotFound, "Invalid offer code")
			return
		}
		writeOK(w, offer)
	})

	r.Post("/user-orders/place", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		json.NewDecoder(r.Body).Decode(&req)

		b.mu.Lock()
		defer b.mu.Unlock()
		b.placed = append(b.placed, req)
		writeOK(w, map[string]any{
			"id":             "ord-cod-1",
			"status":         "CONFIRMED",
			"payment_method": req["payment_method"],
		})
	})

	r.Post("/payment/create-order", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Amount   int64  `json:"amount"`
			Currency string `json:"currency"`
		}
		json.NewDecoder(r.Body).Decode(&req)

		b.mu.Lock()
		b.ordersIssued++
		orderID := fmt.Sprintf("pay_order_%d", b.ordersIssued)
		b.mu.Unlock()
		writeOK(w, map[string]any{
			"order_id": orderID,
			"amount":   req.Amount,
			"currency": req.Currency,
			"key_id":   "key_test_espejo",
		})
	})
	r.Post("/payment/verify", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		json.NewDecoder(r.Body).Decode(&req)

		b.mu.Lock()
		defer b.mu.Unlock()
		b.verified = append(b.verified, req)
		if b.verifyFails {
			writeFail(w, http.StatusBadRequest, "signature mismatch")
			return
		}
		writeOK(w, map[string]any{
			"id":             "ord-online-1",
			"status":         "CONFIRMED",
			"payment_method": "ONLINE",
		})
	})
	r.Post("/payment/failure", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		json.NewDecoder(r.Body).Decode(&req)

		b.mu.Lock()
		defer b.mu.Unlock()
		b.failureLogs = append(b.failureLogs, req)
		writeOK(w, nil)
	})

	b.router = r
	return b
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.router.ServeHTTP(w, r)
}

func (b *fakeBackend) seedCart(items ...backendCartItem) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cart = append(b.cart, items...)
}

func (b *fakeBackend) cartSize() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.cart)
}

func writeOK(w http.ResponseWriter, data any) {
	raw, _ := json.Marshal(data)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(backendEnvelope{Success: true, Data: raw})
}

func writeFail(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(backendEnvelope{Success: false, Message: message})
}

// storefront is the full HTTP surface wired over a fakeBackend.
type storefront struct {
	backend *fakeBackend
	router  chi.Router
}

func newStorefront(t *testing.T) *storefront {
	t.Helper()

	backend := newFakeBackend()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	client := api.NewClient(srv.URL, srv.Client(), 5*time.Second)
	cartSvc := cart.NewService(client, localstore.NewMemoryStore())
	bridge := NewBridgeProvider()
	loader := payment.NewScriptLoader(srv.URL+"/checkout.js", srv.Client())
	checkoutSvc := checkout.NewService(
		client, cartSvc, checkout.SlogNotifier{}, events.NopPublisher{},
		client, loader, "INR",
	)

	router := NewRouter(
		NewCartHandler(cartSvc),
		NewProductHandler(client),
		NewAddressHandler(client),
		NewCheckoutHandler(checkoutSvc, cartSvc, client, bridge),
		30*time.Second,
	)

	return &storefront{backend: backend, router: router}
}

func (s *storefront) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *storefront) doAsGuest(t *testing.T, method, path, guestID string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("X-Guest-Id", guestID)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeResponse[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func userToken(t *testing.T, userID string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func expiredToken(t *testing.T) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}
