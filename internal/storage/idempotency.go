package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// pendingMarker holds a reserved key until the submission finishes.
const pendingMarker = "pending"

// BlockedMarker is stored in place of a message id when the submission was blocked.
const BlockedMarker = "blocked"

// IdempotencyStore dedupes message submissions carrying a client token.
type IdempotencyStore struct {
	Redis  *redis.Client
	Window time.Duration
}

func NewIdempotencyStore(rdb *redis.Client, window time.Duration) *IdempotencyStore {
	return &IdempotencyStore{Redis: rdb, Window: window}
}

// IdempotencyKey scopes a client token to one sender in one conversation.
func IdempotencyKey(conversationID, senderID, token string) string {
	return fmt.Sprintf("idem:send:%s:%s:%s", conversationID, senderID, token)
}

// Reserve claims key for a new submission. When the key is already taken it returns
// reserved=false and the stored value: a message id, BlockedMarker, or "" while
// the first submission is still in flight.
func (s *IdempotencyStore) Reserve(ctx context.Context, key string) (reserved bool, messageID string, err error) {
	ok, err := s.Redis.SetNX(ctx, key, pendingMarker, s.Window).Result()
	if err != nil {
		return false, "", err
	}
	if ok {
		return true, "", nil
	}

	val, err := s.Redis.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		// Expired between SETNX and GET; treat as in flight rather than racing again.
		return false, "", nil
	}
	if err != nil {
		return false, "", err
	}
	if val == pendingMarker {
		return false, "", nil
	}
	return false, val, nil
}

// Complete stores the created message id for the rest of the window.
func (s *IdempotencyStore) Complete(ctx context.Context, key, messageID string) error {
	return s.Redis.Set(ctx, key, messageID, s.Window).Err()
}

// Release frees a key after a failed submission so the client may retry.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return s.Redis.Del(ctx, key).Err()
}
