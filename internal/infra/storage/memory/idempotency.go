package memory

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"roomfront/internal/app/middleware"
)

// IdempotencyStore keeps command results in memory until ttl passes.
type IdempotencyStore struct {
	items *cache.Cache
}

func NewIdempotencyStore(ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &IdempotencyStore{items: cache.New(ttl, ttl/2)}
}

func (s *IdempotencyStore) Get(_ context.Context, key string) (middleware.IdempotencyRecord, bool, error) {
	v, ok := s.items.Get(key)
	if !ok {
		return middleware.IdempotencyRecord{}, false, nil
	}
	return v.(middleware.IdempotencyRecord), true, nil
}

func (s *IdempotencyStore) Save(_ context.Context, rec middleware.IdempotencyRecord) error {
	s.items.SetDefault(rec.Key, rec)
	return nil
}

var _ middleware.IdempotencyStore = (*IdempotencyStore)(nil)
