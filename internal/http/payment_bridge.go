package http

import (
	"errors"
	"sync"
	"time"

	"github.com/digicoders-git/espejo-website-sub001/internal/payment"
)

var errUnknownPaymentFlow = errors.New("no active payment flow for that order id")

// A parked flow whose browser never reports back is swept after this long.
const flowTTL = 30 * time.Minute

// BridgeProvider parks in-flight payment flows for a widget that runs in the
// shopper's browser. Nothing is rendered server-side: the flow's callbacks
// wait under the provider order id, and the browser later reports the widget
// outcome through the payment callback endpoints, which fire exactly one of
// the parked callbacks.
type BridgeProvider struct {
	mu     sync.Mutex
	active map[string]*bridgeEntry
	now    func() time.Time
}

type bridgeEntry struct {
	config   payment.CheckoutConfig
	cb       payment.Callbacks
	userID   string
	parkedAt time.Time

	// result carries the flow's terminal outcome back to the callback
	// endpoint. Callbacks run the flow synchronously, so by the time one
	// returns the buffered channel already holds the result.
	result chan payment.Result
}

func NewBridgeProvider() *BridgeProvider {
	return &BridgeProvider{
		active: make(map[string]*bridgeEntry),
		now:    time.Now,
	}
}

// opener returns a single-initiation payment.Provider bound to the shopper's
// session. Each initiation gets its own opener, so concurrent flows never
// contend with each other.
func (b *BridgeProvider) opener(userID string, result chan payment.Result) *flowOpener {
	return &flowOpener{bridge: b, userID: userID, result: result}
}

type flowOpener struct {
	bridge *BridgeProvider
	userID string
	result chan payment.Result
	entry  *bridgeEntry
}

func (o *flowOpener) Open(config payment.CheckoutConfig, cb payment.Callbacks) error {
	o.entry = o.bridge.park(config, cb, o.userID, o.result)
	return nil
}

func (b *BridgeProvider) park(config payment.CheckoutConfig, cb payment.Callbacks, userID string, result chan payment.Result) *bridgeEntry {
	entry := &bridgeEntry{
		config:   config,
		cb:       cb,
		userID:   userID,
		parkedAt: b.now(),
		result:   result,
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.sweepLocked()
	b.active[config.OrderID] = entry
	return entry
}

// take removes and returns the parked flow, but only for the session that
// initiated it. Each provider order id admits one outcome; a second callback
// for the same id finds nothing.
func (b *BridgeProvider) take(orderID, userID string) (*bridgeEntry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sweepLocked()

	entry, ok := b.active[orderID]
	if !ok || entry.userID != userID {
		return nil, errUnknownPaymentFlow
	}
	delete(b.active, orderID)
	return entry, nil
}

func (b *BridgeProvider) sweepLocked() {
	cutoff := b.now().Add(-flowTTL)
	for orderID, entry := range b.active {
		if entry.parkedAt.Before(cutoff) {
			delete(b.active, orderID)
		}
	}
}
