// Package payment drives the multi-step online payment protocol: load the
// provider's checkout SDK, create a provider-side payment order, open the
// payment widget, verify the completed payment and reconcile the outcome.
// The provider is decoupled behind a port so the flow is testable without the
// real widget.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/google/uuid"

	"github.com/digicoders-git/espejo-website-sub001/internal/api"
	"github.com/digicoders-git/espejo-website-sub001/internal/auth"
	"github.com/digicoders-git/espejo-website-sub001/internal/domain"
)

var (
	// ErrSDKLoad means the provider's checkout asset could not be fetched.
	ErrSDKLoad = errors.New("checkout sdk load failed")

	// ErrOrderCreate means the provider-side payment order was not created.
	ErrOrderCreate = errors.New("payment order creation failed")

	// ErrCancelled is the shopper dismissing the widget. Not a fault; logged
	// for analytics only.
	ErrCancelled = errors.New("payment cancelled by user")

	// ErrVerificationFailed is the critical failure mode: the provider may
	// have captured the payment while the merchant-side order record was not
	// created. Surfaced as contact-support, never retried automatically.
	ErrVerificationFailed = errors.New("payment verification failed, contact support")

	errIllegalTransition = errors.New("illegal payment status transition")
)

const (
	reasonUserCancelled      = "USER_CANCELLED"
	reasonVerificationFailed = "VERIFICATION_FAILED"
	reasonProviderFailed     = "PROVIDER_FAILED"
	reasonSetupFailed        = "SETUP_FAILED"
)

// SDKLoader readies the provider's checkout asset. Implementations cache, so
// a repeat load of an already present asset is a no-op.
type SDKLoader interface {
	Load(ctx context.Context) error
}

// CompletedPayload is the provider's signed proof of a finished payment.
type CompletedPayload struct {
	ProviderOrderID   string
	ProviderPaymentID string
	ProviderSignature string
}

// ProviderError is the provider's structured payment failure event.
type ProviderError struct {
	Description string
	Code        string
	Source      string
	Step        string
	Reason      string
}

func (e *ProviderError) Error() string {
	if e.Description != "" {
		return e.Description
	}
	return "payment failed"
}

// Callbacks receive exactly one of the three asynchronous widget outcomes.
type Callbacks struct {
	Completed func(CompletedPayload)
	Failed    func(*ProviderError)
	Dismissed func()
}

// CheckoutConfig is what the provider widget is opened with.
type CheckoutConfig struct {
	OrderID       string
	Amount        int64
	Currency      string
	KeyID         string
	PrefillName   string
	PrefillPhone  string
	ThemeColor    string
	MerchantLabel string
}

// Provider opens the payment widget. The call returns once the widget is up;
// the outcome arrives later through the callbacks.
type Provider interface {
	Open(config CheckoutConfig, cb Callbacks) error
}

// PaymentAPI is the slice of the commerce backend the flow needs.
type PaymentAPI interface {
	CreatePaymentOrder(ctx context.Context, sess auth.Session, req api.CreatePaymentOrderRequest) (*api.PaymentOrder, error)
	VerifyPayment(ctx context.Context, sess auth.Session, req api.VerifyPaymentRequest) (*domain.Order, error)
	LogPaymentFailure(ctx context.Context, sess auth.Session, rec api.PaymentFailureRecord) error
}

// Request is one online payment attempt.
type Request struct {
	// NetTotal is the payable amount after discount; it is rounded to a
	// whole currency unit before the provider order is created.
	NetTotal  float64
	Currency  string
	AddressID string
	Address   *domain.ShippingAddress
	Notes     string
	OfferCode string
}

// Result delivers the single terminal outcome of a flow.
type Result struct {
	// Order is set when Err is nil.
	Order *domain.Order
	Err   error
}

// Flow is a single payment attempt's state machine. One Flow, one Start, one
// terminal callback.
type Flow struct {
	api      PaymentAPI
	loader   SDKLoader
	provider Provider

	mu     sync.Mutex
	status Status
	done   bool
	onDone func(Result)
}

func NewFlow(paymentAPI PaymentAPI, loader SDKLoader, provider Provider) *Flow {
	return &Flow{
		api:      paymentAPI,
		loader:   loader,
		provider: provider,
		status:   StatusIdle,
	}
}

func (f *Flow) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

// Start runs the synchronous setup (SDK load, order creation, widget open)
// and returns once the widget is open; the outcome arrives through onDone.
// Whatever happens, onDone fires exactly once, success or failure, never
// both. Setup panics are converted into the failure outcome instead of
// escaping to the caller.
func (f *Flow) Start(ctx context.Context, sess auth.Session, req Request, onDone func(Result)) {
	f.mu.Lock()
	f.onDone = onDone
	f.mu.Unlock()

	var providerOrderID string
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("payment setup panic: %v", r)
			f.logFailure(ctx, sess, providerOrderID, api.PaymentFailureRecord{
				Reason: reasonSetupFailed, Description: err.Error(),
			})
			f.finish(StatusFailed, Result{Err: err})
		}
	}()

	if err := f.transition(StatusSdkLoading); err != nil {
		f.finish(StatusFailed, Result{Err: err})
		return
	}
	if err := f.loader.Load(ctx); err != nil {
		f.finish(StatusFailed, Result{Err: fmt.Errorf("%w: %v", ErrSDKLoad, err)})
		return
	}

	if err := f.transition(StatusOrderCreating); err != nil {
		f.finish(StatusFailed, Result{Err: err})
		return
	}
	amount := int64(math.Round(req.NetTotal))
	order, err := f.api.CreatePaymentOrder(ctx, sess, api.CreatePaymentOrderRequest{
		Amount:    amount,
		Currency:  req.Currency,
		Notes:     req.Notes,
		OfferCode: req.OfferCode,
	})
	if err != nil {
		f.finish(StatusFailed, Result{Err: fmt.Errorf("%w: %v", ErrOrderCreate, err)})
		return
	}
	providerOrderID = order.OrderID

	if err := f.transition(StatusAwaitingPayment); err != nil {
		f.finish(StatusFailed, Result{Err: err})
		return
	}

	config := CheckoutConfig{
		OrderID:       order.OrderID,
		Amount:        order.Amount,
		Currency:      order.Currency,
		KeyID:         order.KeyID,
		ThemeColor:    "#1f2933",
		MerchantLabel: "Espejo Mirrors",
	}
	if req.Address != nil {
		config.PrefillName = req.Address.Name
		config.PrefillPhone = req.Address.Phone
	}

	err = f.provider.Open(config, Callbacks{
		Completed: func(payload CompletedPayload) { f.handleCompleted(ctx, sess, req, payload) },
		Failed:    func(perr *ProviderError) { f.handleProviderFailure(ctx, sess, order.OrderID, perr) },
		Dismissed: func() { f.handleDismissed(ctx, sess, order.OrderID) },
	})
	if err != nil {
		f.logFailure(ctx, sess, order.OrderID, api.PaymentFailureRecord{
			Reason: reasonSetupFailed, Description: err.Error(), Step: "open_widget",
		})
		f.finish(StatusFailed, Result{Err: fmt.Errorf("%w: %v", ErrSDKLoad, err)})
	}
}

// handleCompleted verifies the provider's signed identifiers with the
// backend, which is the sole authority for confirming validity and creating
// the durable order.
func (f *Flow) handleCompleted(ctx context.Context, sess auth.Session, req Request, payload CompletedPayload) {
	if err := f.transition(StatusVerifying); err != nil {
		return
	}

	order, err := f.api.VerifyPayment(ctx, sess, api.VerifyPaymentRequest{
		ProviderOrderID:   payload.ProviderOrderID,
		ProviderPaymentID: payload.ProviderPaymentID,
		ProviderSignature: payload.ProviderSignature,
		AddressID:         req.AddressID,
		Address:           req.Address,
		Notes:             req.Notes,
		OfferCode:         req.OfferCode,
		IdempotencyKey:    uuid.NewString(),
	})
	if err != nil {
		f.logFailure(ctx, sess, payload.ProviderOrderID, api.PaymentFailureRecord{
			Reason:      reasonVerificationFailed,
			Description: err.Error(),
		})
		f.finish(StatusFailed, Result{Err: fmt.Errorf("%w: %v", ErrVerificationFailed, err)})
		return
	}

	f.finish(StatusSucceeded, Result{Order: order})
}

func (f *Flow) handleProviderFailure(ctx context.Context, sess auth.Session, orderID string, perr *ProviderError) {
	if f.isDone() {
		return
	}
	f.logFailure(ctx, sess, orderID, api.PaymentFailureRecord{
		Reason:      reasonProviderFailed,
		Description: perr.Description,
		Code:        perr.Code,
		Source:      perr.Source,
		Step:        perr.Step,
	})
	f.finish(StatusFailed, Result{Err: perr})
}

func (f *Flow) handleDismissed(ctx context.Context, sess auth.Session, orderID string) {
	if f.isDone() {
		return
	}
	f.logFailure(ctx, sess, orderID, api.PaymentFailureRecord{
		Reason: reasonUserCancelled,
	})
	f.finish(StatusCancelled, Result{Err: ErrCancelled})
}

func (f *Flow) isDone() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.done
}

// logFailure posts a failure record for analytics and support reconciliation.
// Best-effort: a failed log never changes the flow outcome.
func (f *Flow) logFailure(ctx context.Context, sess auth.Session, orderID string, rec api.PaymentFailureRecord) {
	rec.ProviderOrderID = orderID
	if err := f.api.LogPaymentFailure(ctx, sess, rec); err != nil {
		slog.Warn("payment failure log failed", "provider_order_id", orderID, "reason", rec.Reason, "error", err)
	}
}

func (f *Flow) transition(to Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.done {
		return errIllegalTransition
	}
	if !CanTransitionTo(f.status, to) {
		return fmt.Errorf("%w: %s -> %s", errIllegalTransition, f.status, to)
	}
	f.status = to
	return nil
}

// finish moves to the terminal status and fires the outcome callback. The
// done flag guarantees at most one terminal callback even if the provider
// misbehaves and emits two events.
func (f *Flow) finish(terminal Status, res Result) {
	f.mu.Lock()
	if f.done {
		f.mu.Unlock()
		return
	}
	f.done = true
	f.status = terminal
	onDone := f.onDone
	f.mu.Unlock()

	if onDone != nil {
		onDone(res)
	}
}
