// Package cart reconciles the remote cart with the durable local snapshot.
// The remote store is the system of record when reachable, but every mutation
// lands on local state first so the storefront never blocks on network
// latency, and remote sync failures are never fatal.
package cart

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/digicoders-git/espejo-website-sub001/internal/api"
	"github.com/digicoders-git/espejo-website-sub001/internal/auth"
	"github.com/digicoders-git/espejo-website-sub001/internal/domain"
	"github.com/digicoders-git/espejo-website-sub001/internal/localstore"
)

const (
	placeholderTitle = "Product"
	placeholderImage = "/images/placeholder.png"
)

// CommerceAPI is the slice of the remote backend the cart service needs.
type CommerceAPI interface {
	GetCart(ctx context.Context, sess auth.Session) ([]domain.CartItem, error)
	AddCartItem(ctx context.Context, sess auth.Session, req api.AddCartItemRequest) error
	UpdateCartItem(ctx context.Context, sess auth.Session, req api.UpdateCartItemRequest) error
	RemoveCartItem(ctx context.Context, sess auth.Session, key domain.LineKey) error
	ClearCart(ctx context.Context, sess auth.Session) error
	GetProduct(ctx context.Context, id string) (*api.Product, error)
}

type Service struct {
	remote    CommerceAPI
	snapshots localstore.SnapshotStore
	sfg       singleflight.Group // collapses concurrent fetches per user
}

func NewService(remote CommerceAPI, snapshots localstore.SnapshotStore) *Service {
	return &Service{
		remote:    remote,
		snapshots: snapshots,
	}
}

// Fetch returns the best available cart view. Authenticated and reachable:
// the remote cart, backfilled and written through to the snapshot store.
// Unauthenticated or unreachable: the last local snapshot.
func (s *Service) Fetch(ctx context.Context, sess auth.Session) ([]domain.CartItem, error) {
	if !sess.Authenticated() {
		return s.snapshots.Load(ctx, sess.UserID), nil
	}

	v, err, _ := s.sfg.Do(sess.UserID, func() (interface{}, error) {
		items, err := s.remote.GetCart(ctx, sess)
		if err != nil {
			slog.Warn("remote cart fetch failed, using local snapshot", "user_id", sess.UserID, "error", err)
			return s.snapshots.Load(ctx, sess.UserID), nil
		}

		items = s.backfill(ctx, items)

		if saveErr := s.snapshots.Save(ctx, sess.UserID, items); saveErr != nil {
			slog.Warn("cart snapshot write-through failed", "user_id", sess.UserID, "error", saveErr)
		}
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.CartItem), nil
}

// backfill fills missing denormalized display fields via product lookups.
// A failed lookup must not fail the whole load, so missing data degrades to
// placeholders.
func (s *Service) backfill(ctx context.Context, items []domain.CartItem) []domain.CartItem {
	for i := range items {
		item := &items[i]
		if item.Title != "" && item.Image != "" && item.UnitPrice > 0 {
			continue
		}

		product, err := s.remote.GetProduct(ctx, item.ProductID)
		if err != nil {
			slog.Warn("product backfill failed", "product_id", item.ProductID, "error", err)
		} else {
			if item.Title == "" {
				item.Title = product.Title
			}
			if item.Image == "" {
				item.Image = product.Image
			}
			if item.UnitPrice <= 0 {
				item.UnitPrice = product.Price
			}
		}

		if item.Title == "" {
			item.Title = placeholderTitle
		}
		if item.Image == "" {
			item.Image = placeholderImage
		}
	}
	return items
}

// Add puts an item in the cart. With a credential the remote add is tried
// first and a success triggers a full resync, which supersedes any
// interleaved optimistic writes. A 401 propagates so the caller can evict the
// credential; any other remote failure falls back to a local-only merge.
func (s *Service) Add(ctx context.Context, sess auth.Session, item domain.CartItem) ([]domain.CartItem, error) {
	if !sess.Authenticated() {
		return s.mergeLocal(ctx, sess.UserID, item), nil
	}

	err := s.remote.AddCartItem(ctx, sess, api.AddCartItemRequest{
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
		Size:      item.Size,
		Color:     item.Color,
		AddOnName: item.AddOnName,
	})
	if err != nil {
		if errors.Is(err, api.ErrAuthRequired) {
			return nil, err
		}
		slog.Warn("remote add failed, merging locally", "product_id", item.ProductID, "error", err)
		return s.mergeLocal(ctx, sess.UserID, item), nil
	}

	return s.Fetch(ctx, sess)
}

func (s *Service) mergeLocal(ctx context.Context, userID string, item domain.CartItem) []domain.CartItem {
	c := domain.Cart{Items: s.snapshots.Load(ctx, userID)}
	c.MergeItem(item)
	if err := s.snapshots.Save(ctx, userID, c.Items); err != nil {
		slog.Warn("cart snapshot save failed", "user_id", userID, "error", err)
	}
	return c.Items
}

// Remove drops a line optimistically; the remote delete is best-effort and a
// failure is logged only. Local state is authoritative for responsiveness.
func (s *Service) Remove(ctx context.Context, sess auth.Session, key domain.LineKey) []domain.CartItem {
	c := domain.Cart{Items: s.snapshots.Load(ctx, sess.UserID)}
	c.RemoveItem(key)
	if err := s.snapshots.Save(ctx, sess.UserID, c.Items); err != nil {
		slog.Warn("cart snapshot save failed", "user_id", sess.UserID, "error", err)
	}

	if sess.Authenticated() {
		if err := s.remote.RemoveCartItem(ctx, sess, key); err != nil {
			slog.Warn("remote remove failed", "product_id", key.ProductID, "error", err)
		}
	}
	return c.Items
}

// UpdateQuantity sets a line's quantity optimistically, best-effort syncing
// remote. A quantity of zero or less is a removal.
func (s *Service) UpdateQuantity(ctx context.Context, sess auth.Session, key domain.LineKey, quantity int) []domain.CartItem {
	if quantity <= 0 {
		return s.Remove(ctx, sess, key)
	}

	c := domain.Cart{Items: s.snapshots.Load(ctx, sess.UserID)}
	if idx := c.FindItem(key); idx >= 0 {
		c.Items[idx].Quantity = quantity
	}
	if err := s.snapshots.Save(ctx, sess.UserID, c.Items); err != nil {
		slog.Warn("cart snapshot save failed", "user_id", sess.UserID, "error", err)
	}

	if sess.Authenticated() {
		err := s.remote.UpdateCartItem(ctx, sess, api.UpdateCartItemRequest{
			ProductID: key.ProductID,
			Quantity:  quantity,
			Size:      key.Size,
			Color:     key.Color,
		})
		if err != nil {
			slog.Warn("remote quantity update failed", "product_id", key.ProductID, "error", err)
		}
	}
	return c.Items
}

// Clear empties local state and evicts the durable snapshot, then best-effort
// clears the remote cart.
func (s *Service) Clear(ctx context.Context, sess auth.Session) {
	if err := s.snapshots.Clear(ctx, sess.UserID); err != nil {
		slog.Warn("cart snapshot clear failed", "user_id", sess.UserID, "error", err)
	}

	if sess.Authenticated() {
		if err := s.remote.ClearCart(ctx, sess); err != nil {
			slog.Warn("remote clear failed", "user_id", sess.UserID, "error", err)
		}
	}
}
