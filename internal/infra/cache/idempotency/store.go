package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrStore возвращается при недоступности Redis
var ErrStore = errors.New("idempotency: store error")

// DefaultTTL сколько хранится отметка об обработанном событии
const DefaultTTL = 24 * time.Hour

const keyPrefix = "webhook:"

type redisClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Store отмечает обработанные события вебхука в Redis
type Store struct {
	client redisClient
	ttl    time.Duration
}

// NewStore создает хранилище; ttl <= 0 заменяется на DefaultTTL
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return newStore(client, ttl)
}

func newStore(client redisClient, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{client: client, ttl: ttl}
}

// Claim атомарно занимает id события
// Возвращает false, если событие уже обрабатывалось
func (s *Store) Claim(ctx context.Context, eventID string) (bool, error) {
	ok, err := s.client.SetNX(ctx, keyPrefix+eventID, time.Now().Unix(), s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("%w: claim %s: %v", ErrStore, eventID, err)
	}
	return ok, nil
}

// Release снимает отметку, чтобы провайдер мог повторить доставку
func (s *Store) Release(ctx context.Context, eventID string) error {
	if err := s.client.Del(ctx, keyPrefix+eventID).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("%w: release %s: %v", ErrStore, eventID, err)
	}
	return nil
}
