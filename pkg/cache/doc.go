// Package cache provides a generic, thread-safe LRU cache with optional
// per-entry expiry.
//
// The portal keeps one session store per browser session and one cached
// profile per bearer token; both are bounded with this cache so an idle
// portal does not grow without limit.
//
//	c := cache.NewLRUCache[string, *Profile](1000, cache.WithTTL(time.Minute))
//	c.Put(token, profile)
//	p, ok := c.Get(token)
//
// GetOrCreate runs its constructor under the cache lock, which makes it safe
// to use as a registry:
//
//	store := c.GetOrCreate(sid, func() *Store { return NewStore(sid) })
package cache
