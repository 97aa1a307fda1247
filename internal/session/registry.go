package session

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrymomot/speakerdesk/pkg/cache"
)

// Registry maps portal session ids to Stores. Idle Stores are evicted; the
// next request rebuilds them with the token read back from storage.
type Registry struct {
	stores  *cache.LRUCache[string, *Store]
	storage TokenStorage
}

// NewRegistry creates a Registry holding at most size Stores, each evicted
// after idle of inactivity. A zero idle keeps Stores until evicted by size.
func NewRegistry(storage TokenStorage, size int, idle time.Duration) *Registry {
	return &Registry{
		stores:  cache.NewLRUCache[string, *Store](size, cache.WithTTL(idle)),
		storage: storage,
	}
}

// Get returns the Store for sid, restoring its token on a miss.
func (r *Registry) Get(ctx context.Context, sid string) (*Store, error) {
	if sid == "" {
		return nil, ErrInvalidKey
	}
	if s, ok := r.stores.Get(sid); ok {
		// Refresh the idle deadline.
		r.stores.Put(sid, s)
		return s, nil
	}

	token, err := r.storage.Load(ctx, sid)
	if err != nil && !errors.Is(err, ErrNoToken) {
		return nil, err
	}

	return r.stores.GetOrCreate(sid, func() *Store {
		s := NewStore(sid, r.storage)
		if token != "" {
			s.restore(token)
		}
		return s
	}), nil
}

// Forget drops the in-memory Store for sid. The persisted token is kept.
func (r *Registry) Forget(sid string) {
	r.stores.Remove(sid)
}

// Len returns the number of Stores held in memory.
func (r *Registry) Len() int {
	return r.stores.Len()
}
