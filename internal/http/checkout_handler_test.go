package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digicoders-git/espejo-website-sub001/internal/domain"
)

func TestQuote_CartWithOffer(t *testing.T) {
	s := newStorefront(t)
	s.backend.seedCart(backendCartItem{
		ProductID: "mir-round-24", Title: "Venetian Round Mirror",
		Image: "/images/mir-round-24.jpg", Price: "₹2,499.00", Quantity: 2,
	})

	rec := s.do(t, http.MethodPost, "/api/v1/checkout/quote", userToken(t, "user-1"),
		CheckoutRequestDTO{OfferCode: "MIRROR10"})
	require.Equal(t, http.StatusOK, rec.Code)

	quote := decodeResponse[QuoteResponseDTO](t, rec)
	assert.Equal(t, 4998.0, quote.Subtotal)
	// 10% of 4998 is 499.8, capped at the offer ceiling of 300
	assert.Equal(t, 300.0, quote.Discount)
	assert.Equal(t, 4698.0, quote.NetTotal)
	require.NotNil(t, quote.Offer)
	assert.Equal(t, "MIRROR10", quote.Offer.Code)
	require.Len(t, quote.Items, 1)
	assert.Equal(t, 2499.0, quote.Items[0].UnitPrice)
}

func TestQuote_OfferBelowMinimum(t *testing.T) {
	s := newStorefront(t)
	s.backend.seedCart(backendCartItem{
		ProductID: "mir-round-24", Title: "Venetian Round Mirror",
		Image: "/images/mir-round-24.jpg", Price: 500, Quantity: 1,
	})

	rec := s.do(t, http.MethodPost, "/api/v1/checkout/quote", userToken(t, "user-1"),
		CheckoutRequestDTO{OfferCode: "MIRROR10"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	body := decodeResponse[ErrorResponse](t, rec)
	assert.Equal(t, "below_minimum", body.Code)
}

func TestQuote_UnknownOfferCodePassesMessageThrough(t *testing.T) {
	s := newStorefront(t)
	s.backend.seedCart(backendCartItem{
		ProductID: "mir-round-24", Title: "Venetian Round Mirror",
		Image: "/images/mir-round-24.jpg", Price: 2499, Quantity: 1,
	})

	rec := s.do(t, http.MethodPost, "/api/v1/checkout/quote", userToken(t, "user-1"),
		CheckoutRequestDTO{OfferCode: "NOPE"})
	require.Equal(t, http.StatusNotFound, rec.Code)

	body := decodeResponse[ErrorResponse](t, rec)
	assert.Equal(t, "Invalid offer code", body.Error)
}

func TestQuote_BuyNowPricesFromCatalog(t *testing.T) {
	s := newStorefront(t)

	rec := s.do(t, http.MethodPost, "/api/v1/checkout/quote", userToken(t, "user-1"),
		CheckoutRequestDTO{BuyNow: &BuyNowItemDTO{ProductID: "mir-arch-36", Quantity: 2}})
	require.Equal(t, http.StatusOK, rec.Code)

	quote := decodeResponse[QuoteResponseDTO](t, rec)
	assert.Equal(t, 17998.0, quote.Subtotal)
	require.Len(t, quote.Items, 1)
	assert.Equal(t, "Arched Floor Mirror", quote.Items[0].Title)
}

func TestSubmitCOD_PlacesOrderAndClearsCart(t *testing.T) {
	s := newStorefront(t)
	s.backend.seedCart(backendCartItem{
		ProductID: "mir-round-24", Title: "Venetian Round Mirror",
		Image: "/images/mir-round-24.jpg", Price: 2499, Quantity: 1,
	})

	rec := s.do(t, http.MethodPost, "/api/v1/checkout/cod", userToken(t, "user-1"),
		CheckoutRequestDTO{AddressID: "addr-1", Notes: "ring the bell"})
	require.Equal(t, http.StatusCreated, rec.Code)

	order := decodeResponse[domain.Order](t, rec)
	assert.Equal(t, "ord-cod-1", order.ID)

	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()
	require.Len(t, s.backend.placed, 1)
	placed := s.backend.placed[0]
	assert.Equal(t, "COD", placed["payment_method"])
	assert.Equal(t, "addr-1", placed["address_id"])
	assert.NotEmpty(t, placed["idempotency_key"])
	assert.Empty(t, s.backend.cart)
}

func TestSubmitCOD_RequiresAuth(t *testing.T) {
	s := newStorefront(t)

	rec := s.do(t, http.MethodPost, "/api/v1/checkout/cod", "",
		CheckoutRequestDTO{AddressID: "addr-1"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSubmitCOD_EmptyCart(t *testing.T) {
	s := newStorefront(t)

	rec := s.do(t, http.MethodPost, "/api/v1/checkout/cod", userToken(t, "user-1"),
		CheckoutRequestDTO{AddressID: "addr-1"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeResponse[ErrorResponse](t, rec)
	assert.Equal(t, "empty_cart", body.Code)
}

func TestSubmitCOD_NoAddress(t *testing.T) {
	s := newStorefront(t)
	s.backend.seedCart(backendCartItem{
		ProductID: "mir-round-24", Title: "Venetian Round Mirror",
		Image: "/images/mir-round-24.jpg", Price: 2499, Quantity: 1,
	})

	rec := s.do(t, http.MethodPost, "/api/v1/checkout/cod", userToken(t, "user-1"),
		CheckoutRequestDTO{})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeResponse[ErrorResponse](t, rec)
	assert.Equal(t, "no_address", body.Code)
}

func initiatePayment(t *testing.T, s *storefront, req CheckoutRequestDTO) PaymentSessionDTO {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/v1/checkout/payment/initiate", userToken(t, "user-1"), req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeResponse[PaymentSessionDTO](t, rec)
}

func TestPayment_InitiateAndComplete(t *testing.T) {
	s := newStorefront(t)
	s.backend.seedCart(backendCartItem{
		ProductID: "mir-round-24", Title: "Venetian Round Mirror",
		Image: "/images/mir-round-24.jpg", Price: "₹2,499.00", Quantity: 2,
	})

	session := initiatePayment(t, s, CheckoutRequestDTO{AddressID: "addr-1", OfferCode: "MIRROR10"})
	assert.Equal(t, "pay_order_1", session.OrderID)
	// 4998 subtotal minus the capped 300 discount
	assert.Equal(t, int64(4698), session.Amount)
	assert.Equal(t, "INR", session.Currency)
	assert.Equal(t, "key_test_espejo", session.KeyID)
	assert.Equal(t, "Asha Verma", session.PrefillName)

	rec := s.do(t, http.MethodPost, "/api/v1/checkout/payment/complete", userToken(t, "user-1"),
		CompletePaymentRequestDTO{OrderID: session.OrderID, PaymentID: "pay_123", Signature: "sig_abc"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	outcome := decodeResponse[PaymentOutcomeDTO](t, rec)
	assert.Equal(t, "SUCCEEDED", outcome.Status)
	require.NotNil(t, outcome.Order)
	assert.Equal(t, "ord-online-1", outcome.Order.ID)

	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()
	require.Len(t, s.backend.verified, 1)
	verify := s.backend.verified[0]
	assert.Equal(t, "pay_order_1", verify["provider_order_id"])
	assert.Equal(t, "pay_123", verify["provider_payment_id"])
	assert.Equal(t, "sig_abc", verify["provider_signature"])
	assert.Equal(t, "addr-1", verify["address_id"])
	assert.NotEmpty(t, verify["idempotency_key"])
	assert.Empty(t, s.backend.cart, "verified payment clears the cart")
}

func TestPayment_VerificationFailureIsTerminal(t *testing.T) {
	s := newStorefront(t)
	s.backend.seedCart(backendCartItem{
		ProductID: "mir-round-24", Title: "Venetian Round Mirror",
		Image: "/images/mir-round-24.jpg", Price: 2499, Quantity: 1,
	})

	session := initiatePayment(t, s, CheckoutRequestDTO{AddressID: "addr-1"})

	s.backend.mu.Lock()
	s.backend.verifyFails = true
	s.backend.mu.Unlock()

	rec := s.do(t, http.MethodPost, "/api/v1/checkout/payment/complete", userToken(t, "user-1"),
		CompletePaymentRequestDTO{OrderID: session.OrderID, PaymentID: "pay_123", Signature: "sig_bad"})
	require.Equal(t, http.StatusBadGateway, rec.Code)

	body := decodeResponse[ErrorResponse](t, rec)
	assert.Equal(t, "verification_failed", body.Code)

	// no automatic retry: the flow is gone
	rec = s.do(t, http.MethodPost, "/api/v1/checkout/payment/complete", userToken(t, "user-1"),
		CompletePaymentRequestDTO{OrderID: session.OrderID, PaymentID: "pay_123", Signature: "sig_bad"})
	require.Equal(t, http.StatusNotFound, rec.Code)

	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()
	assert.Len(t, s.backend.verified, 1)
	require.Len(t, s.backend.failureLogs, 1)
	assert.Equal(t, "VERIFICATION_FAILED", s.backend.failureLogs[0]["reason"])
	assert.Equal(t, "pay_order_1", s.backend.failureLogs[0]["provider_order_id"])
	assert.NotEmpty(t, s.backend.cart, "failed verification keeps the cart")
}

func TestPayment_CancelKeepsCart(t *testing.T) {
	s := newStorefront(t)
	s.backend.seedCart(backendCartItem{
		ProductID: "mir-round-24", Title: "Venetian Round Mirror",
		Image: "/images/mir-round-24.jpg", Price: 2499, Quantity: 1,
	})

	session := initiatePayment(t, s, CheckoutRequestDTO{AddressID: "addr-1"})

	rec := s.do(t, http.MethodPost, "/api/v1/checkout/payment/cancel", userToken(t, "user-1"),
		CancelPaymentRequestDTO{OrderID: session.OrderID})
	require.Equal(t, http.StatusOK, rec.Code)

	outcome := decodeResponse[PaymentOutcomeDTO](t, rec)
	assert.Equal(t, "CANCELLED", outcome.Status)

	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()
	require.Len(t, s.backend.failureLogs, 1)
	assert.Equal(t, "USER_CANCELLED", s.backend.failureLogs[0]["reason"])
	assert.Empty(t, s.backend.verified)
	assert.NotEmpty(t, s.backend.cart)
}

func TestPayment_ProviderFailureIsLogged(t *testing.T) {
	s := newStorefront(t)
	s.backend.seedCart(backendCartItem{
		ProductID: "mir-round-24", Title: "Venetian Round Mirror",
		Image: "/images/mir-round-24.jpg", Price: 2499, Quantity: 1,
	})

	session := initiatePayment(t, s, CheckoutRequestDTO{AddressID: "addr-1"})

	rec := s.do(t, http.MethodPost, "/api/v1/checkout/payment/fail", userToken(t, "user-1"),
		FailPaymentRequestDTO{
			OrderID:     session.OrderID,
			Description: "card declined",
			Code:        "BAD_REQUEST_ERROR",
			Step:        "payment_authorization",
		})
	require.Equal(t, http.StatusOK, rec.Code)

	outcome := decodeResponse[PaymentOutcomeDTO](t, rec)
	assert.Equal(t, "FAILED", outcome.Status)

	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()
	require.Len(t, s.backend.failureLogs, 1)
	log := s.backend.failureLogs[0]
	assert.Equal(t, "PROVIDER_FAILED", log["reason"])
	assert.Equal(t, "card declined", log["description"])
	assert.Equal(t, "BAD_REQUEST_ERROR", log["code"])
	assert.NotEmpty(t, s.backend.cart)
}

func TestPayment_BuyNowSuccessKeepsCart(t *testing.T) {
	s := newStorefront(t)
	s.backend.seedCart(backendCartItem{
		ProductID: "mir-round-24", Title: "Venetian Round Mirror",
		Image: "/images/mir-round-24.jpg", Price: 2499, Quantity: 1,
	})

	session := initiatePayment(t, s, CheckoutRequestDTO{
		AddressID: "addr-1",
		BuyNow:    &BuyNowItemDTO{ProductID: "mir-arch-36", Quantity: 1},
	})
	assert.Equal(t, int64(8999), session.Amount)

	rec := s.do(t, http.MethodPost, "/api/v1/checkout/payment/complete", userToken(t, "user-1"),
		CompletePaymentRequestDTO{OrderID: session.OrderID, PaymentID: "pay_456", Signature: "sig_def"})
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, 1, s.backend.cartSize(), "buy-now bypass never clears the cart")
}

func TestPayment_CompleteUnknownOrder(t *testing.T) {
	s := newStorefront(t)

	rec := s.do(t, http.MethodPost, "/api/v1/checkout/payment/complete", userToken(t, "user-1"),
		CompletePaymentRequestDTO{OrderID: "order_never_seen", PaymentID: "p", Signature: "s"})
	require.Equal(t, http.StatusNotFound, rec.Code)

	body := decodeResponse[ErrorResponse](t, rec)
	assert.Equal(t, "unknown_payment", body.Code)
}

func TestPayment_CallbackRequiresAuth(t *testing.T) {
	s := newStorefront(t)
	s.backend.seedCart(backendCartItem{
		ProductID: "mir-round-24", Title: "Venetian Round Mirror",
		Image: "/images/mir-round-24.jpg", Price: 2499, Quantity: 1,
	})

	session := initiatePayment(t, s, CheckoutRequestDTO{AddressID: "addr-1"})

	rec := s.do(t, http.MethodPost, "/api/v1/checkout/payment/cancel", "",
		CancelPaymentRequestDTO{OrderID: session.OrderID})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPayment_CallbackFromAnotherUserRejected(t *testing.T) {
	s := newStorefront(t)
	s.backend.seedCart(backendCartItem{
		ProductID: "mir-round-24", Title: "Venetian Round Mirror",
		Image: "/images/mir-round-24.jpg", Price: 2499, Quantity: 1,
	})

	session := initiatePayment(t, s, CheckoutRequestDTO{AddressID: "addr-1"})

	rec := s.do(t, http.MethodPost, "/api/v1/checkout/payment/cancel", userToken(t, "user-2"),
		CancelPaymentRequestDTO{OrderID: session.OrderID})
	require.Equal(t, http.StatusNotFound, rec.Code)

	// the intruder must not have consumed the owner's flow
	rec = s.do(t, http.MethodPost, "/api/v1/checkout/payment/cancel", userToken(t, "user-1"),
		CancelPaymentRequestDTO{OrderID: session.OrderID})
	require.Equal(t, http.StatusOK, rec.Code)

	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()
	require.Len(t, s.backend.failureLogs, 1)
	assert.Equal(t, "USER_CANCELLED", s.backend.failureLogs[0]["reason"])
}

func TestPayment_TwoParkedFlowsResolveIndependently(t *testing.T) {
	s := newStorefront(t)
	s.backend.seedCart(backendCartItem{
		ProductID: "mir-round-24", Title: "Venetian Round Mirror",
		Image: "/images/mir-round-24.jpg", Price: 2499, Quantity: 1,
	})

	first := initiatePayment(t, s, CheckoutRequestDTO{AddressID: "addr-1"})
	second := initiatePayment(t, s, CheckoutRequestDTO{AddressID: "addr-1"})
	require.NotEqual(t, first.OrderID, second.OrderID)

	rec := s.do(t, http.MethodPost, "/api/v1/checkout/payment/complete", userToken(t, "user-1"),
		CompletePaymentRequestDTO{OrderID: second.OrderID, PaymentID: "pay_b", Signature: "sig_b"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/checkout/payment/cancel", userToken(t, "user-1"),
		CancelPaymentRequestDTO{OrderID: first.OrderID})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestPayment_InitiateEmptyCart(t *testing.T) {
	s := newStorefront(t)

	rec := s.do(t, http.MethodPost, "/api/v1/checkout/payment/initiate", userToken(t, "user-1"),
		CheckoutRequestDTO{AddressID: "addr-1"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeResponse[ErrorResponse](t, rec)
	assert.Equal(t, "empty_cart", body.Code)
}
