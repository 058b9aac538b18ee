package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/digicoders-git/espejo-website-sub001/internal/domain"
)

const defaultTTL = 30 * 24 * time.Hour

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    defaultTTL,
	}
}

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// Load returns the persisted snapshot. Missing key, transport error and
// corrupt payload all degrade to an empty cart; a corrupt payload is deleted
// so the next write starts clean.
func (r *RedisStore) Load(ctx context.Context, userID string) []domain.CartItem {
	data, err := r.client.Get(ctx, snapshotKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		slog.Warn("cart snapshot load failed", "user_id", userID, "error", err)
		return nil
	}

	var items []domain.CartItem
	if err := json.Unmarshal(data, &items); err != nil {
		slog.Warn("cart snapshot corrupt, discarding", "user_id", userID, "error", err)
		if delErr := r.client.Del(ctx, snapshotKey(userID)).Err(); delErr != nil {
			slog.Warn("cart snapshot delete failed", "user_id", userID, "error", delErr)
		}
		return nil
	}
	return items
}

func (r *RedisStore) Save(ctx context.Context, userID string, items []domain.CartItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal cart snapshot failed: %w", err)
	}
	if err := r.client.Set(ctx, snapshotKey(userID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisStore) Clear(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, snapshotKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func snapshotKey(userID string) string {
	return fmt.Sprintf("cart-snapshot:%s", userID)
}
