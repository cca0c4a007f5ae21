// Package querycache is the per-process cache of backend read queries.
// Entries are keyed by endpoint and parameters, stay fresh for a stale
// time, and are dropped by key prefix when a mutation touches them.
// Concurrent callers of the same key share one in-flight fetch.
package querycache

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"fraud-dashboard/internal/resilience"
)

// DefaultStaleTime is how long a fetched value is served without refetching.
const DefaultStaleTime = 30 * time.Second

type entry struct {
	value     any
	fetchedAt time.Time
}

// Cache holds query results. The zero value is not usable; call New.
type Cache struct {
	stale time.Duration
	retry resilience.Policy
	now   func() time.Time

	mu      sync.RWMutex
	entries map[string]entry
	epoch   uint64 // bumped on every invalidation

	group singleflight.Group
}

// Option configures a Cache.
type Option func(*Cache)

// WithStaleTime sets how long entries stay fresh. Zero disables caching of
// values while keeping in-flight deduplication.
func WithStaleTime(d time.Duration) Option {
	return func(c *Cache) { c.stale = d }
}

// WithRetry sets the retry policy applied to fetches.
func WithRetry(p resilience.Policy) Option {
	return func(c *Cache) { c.retry = p }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New creates an empty cache with a 30s stale time and the default retry policy.
func New(opts ...Option) *Cache {
	c := &Cache{
		stale:   DefaultStaleTime,
		retry:   resilience.DefaultPolicy(),
		now:     time.Now,
		entries: map[string]entry{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Fetch returns the cached value for key, or runs fn to produce it.
// Errors are returned to every waiting caller and never cached. A caller
// whose ctx ends stops waiting; the shared fetch keeps running for the rest.
func Fetch[T any](ctx context.Context, c *Cache, key string, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if v, ok := lookup[T](c, key); ok {
		return v, nil
	}

	c.mu.RLock()
	epoch := c.epoch
	c.mu.RUnlock()

	flightKey := key + "#" + strconv.FormatUint(epoch, 10)
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(flightKey, func() (any, error) {
		policy := c.retry
		if policy.OnRetry == nil && policy.Retries > 0 {
			policy.OnRetry = resilience.LogRetries(key)
		}
		v, err := resilience.Retry(shared, policy, fn)
		if err != nil {
			return nil, err
		}
		c.store(key, epoch, v)
		return v, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		v, ok := res.Val.(T)
		if !ok {
			return zero, nil
		}
		return v, nil
	}
}

func lookup[T any](c *Cache, key string) (T, bool) {
	var zero T
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || c.now().Sub(e.fetchedAt) >= c.stale {
		return zero, false
	}
	v, ok := e.value.(T)
	return v, ok
}

// store keeps v unless an invalidation happened since the fetch started.
func (c *Cache) store(key string, epoch uint64, v any) {
	if c.stale <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		return
	}
	c.entries[key] = entry{value: v, fetchedAt: c.now()}
}

// Invalidate drops every entry whose key starts with one of prefixes and
// returns how many were dropped. Fetches already in flight will not be
// stored.
func (c *Cache) Invalidate(prefixes ...string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	n := 0
	for k := range c.entries {
		for _, p := range prefixes {
			if strings.HasPrefix(k, p) {
				delete(c.entries, k)
				n++
				break
			}
		}
	}
	return n
}

// InvalidateAll empties the cache.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	c.entries = map[string]entry{}
}

// Len returns the number of entries, fresh or stale.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Key builds a cache key from a resource name and its parameters. Params
// are sorted so the same query always yields the same key; empty values
// are skipped.
func Key(resource string, params map[string]string) string {
	if len(params) == 0 {
		return resource
	}
	names := make([]string, 0, len(params))
	for k, v := range params {
		if v != "" {
			names = append(names, k)
		}
	}
	if len(names) == 0 {
		return resource
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(resource)
	for i, k := range names {
		if i == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
	}
	return b.String()
}
