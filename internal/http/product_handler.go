package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/digicoders-git/espejo-website-sub001/internal/api"
)

type ProductHandler struct {
	client *api.Client
}

func NewProductHandler(client *api.Client) *ProductHandler {
	return &ProductHandler{client: client}
}

func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.client.ListProducts(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"products": products})
}

func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	product, err := h.client.GetProduct(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}
