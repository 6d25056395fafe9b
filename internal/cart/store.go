package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/redis"
	"github.com/google/uuid"
)

const defaultSessionTTL = 72 * time.Hour

// Store persists carts by session id.
type Store interface {
	Load(ctx context.Context, sessionID string) (*Cart, error)
	Save(ctx context.Context, cart *Cart) error
	Delete(ctx context.Context, sessionID string) error
}

type kvStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Expire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	CartKey(sessionID string) string
}

// RedisStore keeps each cart as a JSON document under sf:cart:<session>.
// Every read and write pushes the expiry out by ttl.
type RedisStore struct {
	client kvStore
	ttl    time.Duration
}

func NewRedisStore(client kvStore, ttl time.Duration) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("redis client required for cart store")
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &RedisStore{client: client, ttl: ttl}, nil
}

// Load returns the stored cart, or an empty one when the session has none.
func (s *RedisStore) Load(ctx context.Context, sessionID string) (*Cart, error) {
	key := s.client.CartKey(sessionID)
	raw, err := s.client.Get(ctx, key)
	if errors.Is(err, redis.ErrNil) {
		return New(sessionID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get cart: %w", err)
	}

	cart := New(sessionID)
	if err := json.Unmarshal([]byte(raw), cart); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	if cart.Items == nil {
		cart.Items = map[uuid.UUID]LineItem{}
	}
	cart.SessionID = sessionID

	if _, err := s.client.Expire(ctx, key, s.ttl); err != nil {
		return nil, fmt.Errorf("redis refresh cart ttl: %w", err)
	}
	return cart, nil
}

func (s *RedisStore) Save(ctx context.Context, cart *Cart) error {
	if cart == nil || cart.SessionID == "" {
		return errors.New("cart session id required")
	}
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.client.Set(ctx, s.client.CartKey(cart.SessionID), string(data), s.ttl); err != nil {
		return fmt.Errorf("redis set cart: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.client.CartKey(sessionID)); err != nil {
		return fmt.Errorf("redis delete cart: %w", err)
	}
	return nil
}
