// Package checkout owns the checkout session: totals, the single applied
// offer, and the two terminal paths (online payment, cash on delivery). Both
// paths clear the cart on success unless the session is a single-item buy-now
// bypass that never touched the persistent cart.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/digicoders-git/espejo-website-sub001/internal/api"
	"github.com/digicoders-git/espejo-website-sub001/internal/auth"
	"github.com/digicoders-git/espejo-website-sub001/internal/domain"
	"github.com/digicoders-git/espejo-website-sub001/internal/events"
	"github.com/digicoders-git/espejo-website-sub001/internal/offers"
	"github.com/digicoders-git/espejo-website-sub001/internal/payment"
	"github.com/digicoders-git/espejo-website-sub001/internal/pricing"
)

var (
	ErrEmptyCart = errors.New("cart is empty, nothing to checkout")
	ErrNoAddress = errors.New("no shipping address selected")
)

// OrderAPI is the slice of the commerce backend the checkout paths need.
type OrderAPI interface {
	AddCartItem(ctx context.Context, sess auth.Session, req api.AddCartItemRequest) error
	PlaceOrder(ctx context.Context, sess auth.Session, req api.PlaceOrderRequest) (*domain.Order, error)
	GetOfferByCode(ctx context.Context, sess auth.Session, code string) (*domain.Offer, error)
}

// CartClearer is what checkout needs from the cart layer after success.
type CartClearer interface {
	Clear(ctx context.Context, sess auth.Session)
}

type Service struct {
	api      OrderAPI
	cart     CartClearer
	notifier Notifier
	events   events.Publisher

	paymentAPI payment.PaymentAPI
	sdkLoader  payment.SDKLoader

	currency string
}

func NewService(
	orderAPI OrderAPI,
	cart CartClearer,
	notifier Notifier,
	publisher events.Publisher,
	paymentAPI payment.PaymentAPI,
	sdkLoader payment.SDKLoader,
	currency string,
) *Service {
	return &Service{
		api:        orderAPI,
		cart:       cart,
		notifier:   notifier,
		events:     publisher,
		paymentAPI: paymentAPI,
		sdkLoader:  sdkLoader,
		currency:   currency,
	}
}

// Totals is the session's money view: subtotal over the line items, discount
// from the applied offer, and the net payable.
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Discount float64 `json:"discount"`
	NetTotal float64 `json:"net_total"`
}

func (s *Service) Totals(cs *domain.CheckoutSession) Totals {
	subtotal := pricing.Subtotal(cs.Items)

	var discount float64
	if cs.AppliedOffer != nil {
		d, err := offers.Validate(*cs.AppliedOffer, subtotal)
		if err != nil {
			// The cart shrank below the offer minimum after application; the
			// offer no longer applies but stays attached so the UI can say why.
			slog.Info("applied offer no longer valid", "code", cs.AppliedOffer.Code, "error", err)
		} else {
			discount = d
		}
	}

	return Totals{
		Subtotal: subtotal,
		Discount: discount,
		NetTotal: offers.NetTotal(subtotal, discount),
	}
}

// ApplyOffer looks up the code, validates it against the current subtotal and
// attaches it to the session, replacing any previously applied offer.
func (s *Service) ApplyOffer(ctx context.Context, sess auth.Session, cs *domain.CheckoutSession, code string) (Totals, error) {
	offer, err := s.api.GetOfferByCode(ctx, sess, code)
	if err != nil {
		return s.Totals(cs), fmt.Errorf("offer lookup: %w", err)
	}

	subtotal := pricing.Subtotal(cs.Items)
	if _, err := offers.Validate(*offer, subtotal); err != nil {
		return s.Totals(cs), err
	}

	cs.AppliedOffer = offer
	return s.Totals(cs), nil
}

// RemoveOffer clears the discount and restores the undiscounted total.
func (s *Service) RemoveOffer(cs *domain.CheckoutSession) Totals {
	cs.AppliedOffer = nil
	return s.Totals(cs)
}

// SubmitCOD places a cash-on-delivery order. Line items are best-effort
// synced into the remote cart first; per-item failures are logged, not fatal,
// because the backend re-derives authoritative pricing from its own cart at
// placement time.
func (s *Service) SubmitCOD(ctx context.Context, sess auth.Session, cs *domain.CheckoutSession) (*domain.Order, error) {
	if len(cs.Items) == 0 {
		return nil, ErrEmptyCart
	}
	if cs.SelectedAddressID == "" {
		return nil, ErrNoAddress
	}

	for _, item := range cs.Items {
		err := s.api.AddCartItem(ctx, sess, api.AddCartItemRequest{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Size:      item.Size,
			Color:     item.Color,
			AddOnName: item.AddOnName,
		})
		if err != nil {
			slog.Warn("cart sync before order failed", "product_id", item.ProductID, "error", err)
		}
	}

	order, err := s.api.PlaceOrder(ctx, sess, api.PlaceOrderRequest{
		AddressID:      cs.SelectedAddressID,
		PaymentMethod:  domain.PaymentCOD,
		OfferCode:      s.offerCode(cs),
		Notes:          cs.Notes,
		IdempotencyKey: uuid.NewString(),
	})
	if err != nil {
		return nil, err
	}

	s.settle(ctx, sess, cs, order)
	return order, nil
}

// StartOnlinePayment kicks off the payment flow for the session. The
// provider is per-attempt: each caller supplies the port its widget outcome
// will arrive through. The flow's terminal outcome arrives through onDone
// after the provider reports; a success has already cleared the cart and
// published the order event by the time onDone runs.
func (s *Service) StartOnlinePayment(
	ctx context.Context,
	sess auth.Session,
	cs *domain.CheckoutSession,
	address *domain.ShippingAddress,
	provider payment.Provider,
	onDone func(payment.Result),
) (*payment.Flow, error) {
	if len(cs.Items) == 0 {
		return nil, ErrEmptyCart
	}
	if cs.SelectedAddressID == "" {
		return nil, ErrNoAddress
	}

	totals := s.Totals(cs)
	flow := payment.NewFlow(s.paymentAPI, s.sdkLoader, provider)
	flow.Start(ctx, sess, payment.Request{
		NetTotal:  totals.NetTotal,
		Currency:  s.currency,
		AddressID: cs.SelectedAddressID,
		Address:   address,
		Notes:     cs.Notes,
		OfferCode: s.offerCode(cs),
	}, func(res payment.Result) {
		if res.Err == nil {
			s.settle(ctx, sess, cs, res.Order)
		} else if errors.Is(res.Err, payment.ErrCancelled) {
			s.notifier.Notify(ctx, SeverityInfo, "Payment cancelled")
		} else {
			s.notifier.Notify(ctx, SeverityError, res.Err.Error())
		}
		onDone(res)
	})
	return flow, nil
}

// settle is the shared success path: clear the cart unless this was a buy-now
// bypass, notify the shopper, publish the order event.
func (s *Service) settle(ctx context.Context, sess auth.Session, cs *domain.CheckoutSession, order *domain.Order) {
	if !cs.BuyNow {
		s.cart.Clear(ctx, sess)
	}
	s.notifier.Notify(ctx, SeverityInfo, fmt.Sprintf("Order %s placed", order.ID))
	s.events.OrderPlaced(ctx, order)
}

func (s *Service) offerCode(cs *domain.CheckoutSession) string {
	if cs.AppliedOffer == nil {
		return ""
	}
	return cs.AppliedOffer.Code
}
