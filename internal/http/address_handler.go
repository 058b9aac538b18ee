package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/digicoders-git/espejo-website-sub001/internal/api"
	"github.com/digicoders-git/espejo-website-sub001/internal/domain"
)

type AddressHandler struct {
	client *api.Client
}

func NewAddressHandler(client *api.Client) *AddressHandler {
	return &AddressHandler{client: client}
}

func (h *AddressHandler) ListAddresses(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	if !requireAuth(w, sess) {
		return
	}

	addresses, err := h.client.ListAddresses(r.Context(), sess)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := map[string]any{"addresses": addresses}
	if def := domain.DefaultAddress(addresses); def != nil {
		resp["default_address_id"] = def.ID
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *AddressHandler) CreateAddress(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	if !requireAuth(w, sess) {
		return
	}

	var addr domain.ShippingAddress
	if err := json.NewDecoder(r.Body).Decode(&addr); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	created, err := h.client.CreateAddress(r.Context(), sess, addr)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (h *AddressHandler) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	if !requireAuth(w, sess) {
		return
	}

	var addr domain.ShippingAddress
	if err := json.NewDecoder(r.Body).Decode(&addr); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	addr.ID = chi.URLParam(r, "id")

	if err := h.client.UpdateAddress(r.Context(), sess, addr); err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, addr)
}

func (h *AddressHandler) DeleteAddress(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	if !requireAuth(w, sess) {
		return
	}

	if err := h.client.DeleteAddress(r.Context(), sess, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
