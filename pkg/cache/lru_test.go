package cache_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/speakerdesk/pkg/cache"
)

func TestLRUCache_Basic(t *testing.T) {
	t.Run("put and get", func(t *testing.T) {
		c := cache.NewLRUCache[string, int](3)

		c.Put("a", 1)
		c.Put("b", 2)

		val, ok := c.Get("a")
		assert.True(t, ok)
		assert.Equal(t, 1, val)
		assert.Equal(t, 2, c.Len())
	})

	t.Run("update existing", func(t *testing.T) {
		c := cache.NewLRUCache[string, int](3)

		c.Put("a", 1)
		old, existed := c.Put("a", 2)

		assert.True(t, existed)
		assert.Equal(t, 1, old)
		val, _ := c.Get("a")
		assert.Equal(t, 2, val)
	})

	t.Run("zero capacity panics", func(t *testing.T) {
		assert.Panics(t, func() { cache.NewLRUCache[string, int](0) })
	})
}

func TestLRUCache_Eviction(t *testing.T) {
	c := cache.NewLRUCache[string, int](2)
	var evicted []string
	c.SetEvictCallback(func(key string, _ int) { evicted = append(evicted, key) })

	c.Put("a", 1)
	c.Put("b", 2)
	c.Get("a")
	c.Put("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok)
	assert.Equal(t, []string{"b"}, evicted)

	removed, ok := c.Remove("a")
	assert.True(t, ok)
	assert.Equal(t, 1, removed)

	c.Clear()
	assert.Equal(t, 0, c.Len())
	assert.ElementsMatch(t, []string{"b", "a", "c"}, evicted)
}

func TestLRUCache_TTL(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	c := cache.NewLRUCache[string, int](10, cache.WithTTL(time.Minute), cache.WithClock(clock))

	c.Put("a", 1)

	now = now.Add(30 * time.Second)
	_, ok := c.Get("a")
	require.True(t, ok)

	now = now.Add(31 * time.Second)
	_, ok = c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestLRUCache_GetOrCreate(t *testing.T) {
	c := cache.NewLRUCache[string, *int](10)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		seen    = make(map[*int]struct{})
	)
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v := c.GetOrCreate("k", func() *int {
				mu.Lock()
				created++
				mu.Unlock()
				return new(int)
			})
			mu.Lock()
			seen[v] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Len(t, seen, 1)
}
