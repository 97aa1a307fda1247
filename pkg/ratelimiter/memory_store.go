package ratelimiter

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrymomot/speakerdesk/pkg/cache"
)

type bucket struct {
	tokens     int
	lastRefill time.Time
}

// MemoryStore keeps buckets in a bounded LRU. Idle buckets expire after
// idle, which should exceed the time a bucket needs to refill.
type MemoryStore struct {
	mu      sync.Mutex
	buckets *cache.LRUCache[string, *bucket]
	now     func() time.Time
}

// MemoryStoreOption configures a MemoryStore.
type MemoryStoreOption func(*MemoryStore)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) MemoryStoreOption {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

func NewMemoryStore(size int, idle time.Duration, opts ...MemoryStoreOption) *MemoryStore {
	s := &MemoryStore{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.buckets = cache.NewLRUCache[string, *bucket](size, cache.WithTTL(idle), cache.WithClock(s.now))
	return s
}

func (s *MemoryStore) ConsumeTokens(_ context.Context, key string, tokens int, cfg Config) (int, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	b := s.buckets.GetOrCreate(key, func() *bucket {
		return &bucket{tokens: cfg.Capacity, lastRefill: now}
	})

	// Intervals are capped so huge idle gaps cannot overflow.
	maxIntervals := int64(cfg.Capacity/cfg.RefillRate + 1)
	intervals := int(min(int64(now.Sub(b.lastRefill)/cfg.RefillInterval), maxIntervals))
	if intervals > 0 {
		b.tokens = min(cfg.Capacity, b.tokens+intervals*cfg.RefillRate)
		b.lastRefill = b.lastRefill.Add(time.Duration(intervals) * cfg.RefillInterval)
		if b.tokens == cfg.Capacity {
			b.lastRefill = now
		}
	}

	resetAt := b.lastRefill.Add(cfg.RefillInterval)
	if b.tokens < tokens {
		return b.tokens - tokens, resetAt, nil
	}
	b.tokens -= tokens
	// Put refreshes the idle deadline.
	s.buckets.Put(key, b)
	return b.tokens, resetAt, nil
}

func (s *MemoryStore) Reset(_ context.Context, key string) error {
	s.buckets.Remove(key)
	return nil
}
