package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"daily-checkin/internal/entry"

	"golang.org/x/sync/singleflight"
)

// QueryCache holds query results per (form type, user) for up to ttl.
// Invalidate drops every result for a pair at once, whatever its age, and a
// fetch that was in flight when Invalidate ran does not repopulate the cache.
type QueryCache struct {
	ttl   time.Duration
	now   func() time.Time
	group singleflight.Group

	mu      sync.Mutex
	buckets map[bucketKey]*bucket
}

type bucketKey struct {
	t   entry.FormType
	uid string
}

type bucket struct {
	gen   uint64
	items map[string]cached
}

type cached struct {
	value    any
	storedAt time.Time
}

func NewQueryCache(ttl time.Duration) *QueryCache {
	return &QueryCache{ttl: ttl, now: time.Now, buckets: map[bucketKey]*bucket{}}
}

// Do returns the cached value for (t, uid, sub) or runs fetch. Concurrent
// misses for the same key share one fetch, which runs detached from any single
// caller's cancellation. A caller whose ctx ends first gets ctx.Err() and the
// others still receive the result. Errors are not cached.
func (c *QueryCache) Do(ctx context.Context, t entry.FormType, uid, sub string, fetch func(ctx context.Context) (any, error)) (any, error) {
	key := bucketKey{t, uid}

	c.mu.Lock()
	b := c.bucketLocked(key)
	if it, ok := b.items[sub]; ok && c.now().Sub(it.storedAt) < c.ttl {
		c.mu.Unlock()
		return it.value, nil
	}
	gen := b.gen
	c.mu.Unlock()

	fetchCtx := context.WithoutCancel(ctx)
	flight := fmt.Sprintf("%s\x00%s\x00%s\x00%d", t, uid, sub, gen)
	ch := c.group.DoChan(flight, func() (any, error) {
		v, err := fetch(fetchCtx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if b := c.bucketLocked(key); b.gen == gen {
			b.items[sub] = cached{value: v, storedAt: c.now()}
		}
		c.mu.Unlock()
		return v, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val, res.Err
	}
}

// Invalidate forgets every cached query for (t, uid).
func (c *QueryCache) Invalidate(t entry.FormType, uid string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b := c.bucketLocked(bucketKey{t, uid})
	b.gen++
	b.items = map[string]cached{}
}

// Len counts live entries; used by tests and debug logging.
func (c *QueryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, b := range c.buckets {
		for _, it := range b.items {
			if c.now().Sub(it.storedAt) < c.ttl {
				n++
			}
		}
	}
	return n
}

func (c *QueryCache) bucketLocked(k bucketKey) *bucket {
	b, ok := c.buckets[k]
	if !ok {
		b = &bucket{items: map[string]cached{}}
		c.buckets[k] = b
	}
	return b
}
