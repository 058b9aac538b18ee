package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/digicoders-git/espejo-website-sub001/internal/api"
	"github.com/digicoders-git/espejo-website-sub001/internal/auth"
	"github.com/digicoders-git/espejo-website-sub001/internal/cart"
	"github.com/digicoders-git/espejo-website-sub001/internal/checkout"
	"github.com/digicoders-git/espejo-website-sub001/internal/domain"
	"github.com/digicoders-git/espejo-website-sub001/internal/payment"
)

// storefrontAPI is the slice of the commerce backend the checkout surface
// needs beyond what the checkout service itself calls.
type storefrontAPI interface {
	GetProduct(ctx context.Context, id string) (*api.Product, error)
	ListAddresses(ctx context.Context, sess auth.Session) ([]domain.ShippingAddress, error)
}

type CheckoutHandler struct {
	checkout *checkout.Service
	cart     *cart.Service
	api      storefrontAPI
	bridge   *BridgeProvider
}

func NewCheckoutHandler(checkoutService *checkout.Service, cartService *cart.Service, backend storefrontAPI, bridge *BridgeProvider) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkoutService,
		cart:     cartService,
		api:      backend,
		bridge:   bridge,
	}
}

type BuyNowItemDTO struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
	AddOnName string `json:"addon_name,omitempty"`
}

type CheckoutRequestDTO struct {
	AddressID string         `json:"address_id,omitempty"`
	Notes     string         `json:"notes,omitempty"`
	OfferCode string         `json:"offer_code,omitempty"`
	BuyNow    *BuyNowItemDTO `json:"buy_now,omitempty"`
}

type QuoteResponseDTO struct {
	Items []domain.CartItem `json:"items"`
	checkout.Totals
	Offer *domain.Offer `json:"offer,omitempty"`
}

// PaymentSessionDTO is what the browser needs to open the provider widget.
type PaymentSessionDTO struct {
	OrderID       string `json:"order_id"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	KeyID         string `json:"key_id"`
	PrefillName   string `json:"prefill_name,omitempty"`
	PrefillPhone  string `json:"prefill_phone,omitempty"`
	ThemeColor    string `json:"theme_color"`
	MerchantLabel string `json:"merchant_label"`
}

type PaymentOutcomeDTO struct {
	Status string        `json:"status"`
	Order  *domain.Order `json:"order,omitempty"`
}

type CompletePaymentRequestDTO struct {
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
	Signature string `json:"signature"`
}

type FailPaymentRequestDTO struct {
	OrderID     string `json:"order_id"`
	Description string `json:"description,omitempty"`
	Code        string `json:"code,omitempty"`
	Source      string `json:"source,omitempty"`
	Step        string `json:"step,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

type CancelPaymentRequestDTO struct {
	OrderID string `json:"order_id"`
}

// Quote prices the checkout session without committing anything: cart or
// buy-now items, the offer applied if a code is given, and the resulting
// totals. Each request rebuilds the session, so an offer applied in one quote
// never leaks into the next.
func (h *CheckoutHandler) Quote(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())

	var req CheckoutRequestDTO
	if err := decodeBody(w, r, &req); err != nil {
		return
	}

	cs, err := h.buildSession(r.Context(), sess, &req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, QuoteResponseDTO{
		Items:  cs.Items,
		Totals: h.checkout.Totals(cs),
		Offer:  cs.AppliedOffer,
	})
}

// SubmitCOD places a cash-on-delivery order for the session.
func (h *CheckoutHandler) SubmitCOD(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	if !requireAuth(w, sess) {
		return
	}

	var req CheckoutRequestDTO
	if err := decodeBody(w, r, &req); err != nil {
		return
	}

	cs, err := h.buildSession(r.Context(), sess, &req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	order, err := h.checkout.SubmitCOD(r.Context(), sess, cs)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, order)
}

// InitiatePayment starts an online payment flow and returns the widget
// configuration. The browser opens the widget and reports the outcome through
// CompletePayment, FailPayment or CancelPayment.
func (h *CheckoutHandler) InitiatePayment(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	if !requireAuth(w, sess) {
		return
	}

	var req CheckoutRequestDTO
	if err := decodeBody(w, r, &req); err != nil {
		return
	}

	cs, err := h.buildSession(r.Context(), sess, &req)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	cs.PaymentMethod = domain.PaymentOnline

	address := h.resolveAddress(r.Context(), sess, req.AddressID)

	// The flow outlives this request: verification runs when the browser
	// reports back, long after this handler has returned.
	flowCtx := context.WithoutCancel(r.Context())

	done := make(chan payment.Result, 1)
	opener := h.bridge.opener(sess.UserID, done)
	_, err = h.checkout.StartOnlinePayment(flowCtx, sess, cs, address, opener, func(res payment.Result) {
		done <- res
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if opener.entry == nil {
		// Setup failed before the widget was reached; the flow already
		// delivered its terminal outcome.
		res := <-done
		handleServiceError(w, res.Err)
		return
	}

	cfg := opener.entry.config
	respondJSON(w, http.StatusCreated, PaymentSessionDTO{
		OrderID:       cfg.OrderID,
		Amount:        cfg.Amount,
		Currency:      cfg.Currency,
		KeyID:         cfg.KeyID,
		PrefillName:   cfg.PrefillName,
		PrefillPhone:  cfg.PrefillPhone,
		ThemeColor:    cfg.ThemeColor,
		MerchantLabel: cfg.MerchantLabel,
	})
}

// CompletePayment receives the provider's signed proof and runs verification.
// A verified payment responds with the placed order; a verification failure
// responds contact-support and is never retried here.
func (h *CheckoutHandler) CompletePayment(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	if !requireAuth(w, sess) {
		return
	}

	var req CompletePaymentRequestDTO
	if err := decodeBody(w, r, &req); err != nil {
		return
	}

	entry, err := h.bridge.take(req.OrderID, sess.UserID)
	if err != nil {
		respondError(w, http.StatusNotFound, "unknown_payment", err.Error())
		return
	}

	entry.cb.Completed(payment.CompletedPayload{
		ProviderOrderID:   req.OrderID,
		ProviderPaymentID: req.PaymentID,
		ProviderSignature: req.Signature,
	})

	res := <-entry.result
	if res.Err != nil {
		handleServiceError(w, res.Err)
		return
	}
	respondJSON(w, http.StatusOK, PaymentOutcomeDTO{Status: "SUCCEEDED", Order: res.Order})
}

// FailPayment records the provider's failure event. The report itself always
// succeeds; the flow ends failed and the cart stays intact.
func (h *CheckoutHandler) FailPayment(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	if !requireAuth(w, sess) {
		return
	}

	var req FailPaymentRequestDTO
	if err := decodeBody(w, r, &req); err != nil {
		return
	}

	entry, err := h.bridge.take(req.OrderID, sess.UserID)
	if err != nil {
		respondError(w, http.StatusNotFound, "unknown_payment", err.Error())
		return
	}

	entry.cb.Failed(&payment.ProviderError{
		Description: req.Description,
		Code:        req.Code,
		Source:      req.Source,
		Step:        req.Step,
		Reason:      req.Reason,
	})

	<-entry.result
	respondJSON(w, http.StatusOK, PaymentOutcomeDTO{Status: "FAILED"})
}

// CancelPayment records the shopper dismissing the widget.
func (h *CheckoutHandler) CancelPayment(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	if !requireAuth(w, sess) {
		return
	}

	var req CancelPaymentRequestDTO
	if err := decodeBody(w, r, &req); err != nil {
		return
	}

	entry, err := h.bridge.take(req.OrderID, sess.UserID)
	if err != nil {
		respondError(w, http.StatusNotFound, "unknown_payment", err.Error())
		return
	}

	entry.cb.Dismissed()

	<-entry.result
	respondJSON(w, http.StatusOK, PaymentOutcomeDTO{Status: "CANCELLED"})
}

// buildSession assembles the checkout session for one request: either the
// persistent cart's items, or a single buy-now item priced from the catalog
// that never touches the cart. An offer code is applied last, against the
// assembled items' subtotal.
func (h *CheckoutHandler) buildSession(ctx context.Context, sess auth.Session, req *CheckoutRequestDTO) (*domain.CheckoutSession, error) {
	cs := &domain.CheckoutSession{
		SelectedAddressID: req.AddressID,
		PaymentMethod:     domain.PaymentCOD,
		Notes:             req.Notes,
	}

	if req.BuyNow != nil {
		product, err := h.api.GetProduct(ctx, req.BuyNow.ProductID)
		if err != nil {
			return nil, err
		}
		quantity := req.BuyNow.Quantity
		if quantity <= 0 {
			quantity = 1
		}
		cs.BuyNow = true
		cs.Items = []domain.CartItem{{
			ProductID: product.ID,
			Title:     product.Title,
			Image:     product.Image,
			UnitPrice: product.Price,
			Quantity:  quantity,
			Size:      req.BuyNow.Size,
			Color:     req.BuyNow.Color,
			AddOnName: req.BuyNow.AddOnName,
		}}
	} else {
		items, err := h.cart.Fetch(ctx, sess)
		if err != nil {
			return nil, err
		}
		cs.Items = items
	}

	if req.OfferCode != "" {
		if _, err := h.checkout.ApplyOffer(ctx, sess, cs, req.OfferCode); err != nil {
			return nil, err
		}
	}
	return cs, nil
}

// resolveAddress looks up the full address for widget prefill. Best-effort:
// the backend re-validates the address id at order time, so a lookup failure
// only costs the prefill.
func (h *CheckoutHandler) resolveAddress(ctx context.Context, sess auth.Session, addressID string) *domain.ShippingAddress {
	if addressID == "" {
		return nil
	}
	addresses, err := h.api.ListAddresses(ctx, sess)
	if err != nil {
		slog.Warn("address lookup for prefill failed", "address_id", addressID, "error", err)
		return nil
	}
	for i := range addresses {
		if addresses[i].ID == addressID {
			return &addresses[i]
		}
	}
	return nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return err
	}
	return nil
}
