// Package localstore persists the cart snapshot that keeps the storefront
// usable when the remote commerce API is unreachable. The snapshot is the
// fallback of record: every successful cart mutation writes through here so a
// reload never loses state.
package localstore

import (
	"context"

	"github.com/digicoders-git/espejo-website-sub001/internal/domain"
)

// SnapshotStore holds one durable cart snapshot per user, replaced wholesale
// on every write. Load never fails the caller: a missing or corrupt snapshot
// degrades to an empty cart.
type SnapshotStore interface {
	Load(ctx context.Context, userID string) []domain.CartItem
	Save(ctx context.Context, userID string, items []domain.CartItem) error
	Clear(ctx context.Context, userID string) error
}
