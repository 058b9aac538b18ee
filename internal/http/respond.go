package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/digicoders-git/espejo-website-sub001/internal/api"
	"github.com/digicoders-git/espejo-website-sub001/internal/auth"
	"github.com/digicoders-git/espejo-website-sub001/internal/checkout"
	"github.com/digicoders-git/espejo-website-sub001/internal/offers"
	"github.com/digicoders-git/espejo-website-sub001/internal/payment"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// handleServiceError maps the storefront error taxonomy onto HTTP statuses.
// Remote messages travel verbatim; verification failures carry the
// contact-support instruction instead of a retry hint.
func handleServiceError(w http.ResponseWriter, err error) {
	var remote *api.RemoteError

	switch {
	case errors.Is(err, api.ErrAuthRequired), errors.Is(err, auth.ErrNoToken), errors.Is(err, auth.ErrTokenExpired):
		respondError(w, http.StatusUnauthorized, "auth_required", "sign in to continue")
	case errors.Is(err, payment.ErrVerificationFailed):
		respondError(w, http.StatusBadGateway, "verification_failed",
			"payment could not be verified, please contact support with your payment reference")
	case errors.Is(err, payment.ErrCancelled):
		respondError(w, http.StatusConflict, "payment_cancelled", "payment was cancelled")
	case errors.Is(err, offers.ErrBelowMinimum):
		respondError(w, http.StatusUnprocessableEntity, "below_minimum", err.Error())
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "empty_cart", err.Error())
	case errors.Is(err, checkout.ErrNoAddress):
		respondError(w, http.StatusBadRequest, "no_address", err.Error())
	case errors.As(err, &remote):
		status := remote.StatusCode
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		respondError(w, status, "remote_rejected", remote.Error())
	case errors.Is(err, api.ErrUnavailable):
		respondError(w, http.StatusServiceUnavailable, "service_unavailable", "store backend unreachable, try again")
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
