package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/digicoders-git/espejo-website-sub001/internal/auth"
	"github.com/digicoders-git/espejo-website-sub001/internal/cart"
	"github.com/digicoders-git/espejo-website-sub001/internal/domain"
	"github.com/digicoders-git/espejo-website-sub001/internal/pricing"
)

type CartHandler struct {
	cart *cart.Service
}

func NewCartHandler(cartService *cart.Service) *CartHandler {
	return &CartHandler{cart: cartService}
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
	AddOnName string `json:"addon_name,omitempty"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int    `json:"quantity"`
	Size     string `json:"size,omitempty"`
	Color    string `json:"color,omitempty"`
}

type CartResponseDTO struct {
	Items    []domain.CartItem `json:"items"`
	Subtotal float64           `json:"subtotal"`
}

func cartResponse(items []domain.CartItem) CartResponseDTO {
	if items == nil {
		items = []domain.CartItem{}
	}
	return CartResponseDTO{Items: items, Subtotal: pricing.Subtotal(items)}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())

	items, err := h.cart.Fetch(r.Context(), sess)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cartResponse(items))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}
	if req.Quantity <= 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	items, err := h.cart.Add(r.Context(), sess, domain.CartItem{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Size:      req.Size,
		Color:     req.Color,
		AddOnName: req.AddOnName,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, cartResponse(items))
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())

	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity < 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 0 and 99")
		return
	}

	key := domain.LineKey{ProductID: productID, Size: req.Size, Color: req.Color}
	items := h.cart.UpdateQuantity(r.Context(), sess, key, req.Quantity)
	respondJSON(w, http.StatusOK, cartResponse(items))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())

	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	key := domain.LineKey{
		ProductID: productID,
		Size:      r.URL.Query().Get("size"),
		Color:     r.URL.Query().Get("color"),
	}
	items := h.cart.Remove(r.Context(), sess, key)
	respondJSON(w, http.StatusOK, cartResponse(items))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	h.cart.Clear(r.Context(), sess)
	respondJSON(w, http.StatusOK, cartResponse(nil))
}

func requireAuth(w http.ResponseWriter, sess auth.Session) bool {
	if !sess.Authenticated() {
		respondError(w, http.StatusUnauthorized, "auth_required", "sign in to continue")
		return false
	}
	return true
}
