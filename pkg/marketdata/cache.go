package marketdata

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rxtech-lab/argo-analytics/internal/types"
	"github.com/rxtech-lab/argo-analytics/pkg/marketdata/provider"
)

// DefaultCacheTTL matches the refresh cadence of the dashboard.
const DefaultCacheTTL = 5 * time.Minute

// CacheKeyFunc builds the cache key of one provider call. Quote calls pass an
// empty interval and zero times.
type CacheKeyFunc func(method, symbol string, interval provider.Timespan, start, end time.Time) string

// CachePolicy is the single caching policy applied to a provider.
type CachePolicy struct {
	TTL     time.Duration
	KeyedBy CacheKeyFunc
}

// DefaultCachePolicy caches for DefaultCacheTTL, keyed by DefaultCacheKey.
func DefaultCachePolicy() CachePolicy {
	return CachePolicy{TTL: DefaultCacheTTL, KeyedBy: DefaultCacheKey}
}

// DefaultCacheKey keys on method, symbol, interval and the range truncated to the minute,
// so repeated "last N days" requests within a minute share an entry.
func DefaultCacheKey(method, symbol string, interval provider.Timespan, start, end time.Time) string {
	return fmt.Sprintf("%s|%s|%s|%d|%d", method, symbol, interval,
		start.Truncate(time.Minute).Unix(), end.Truncate(time.Minute).Unix())
}

type cacheEntry struct {
	value   any
	expires time.Time
}

// CachedProvider wraps a provider with a TTL cache. Failed calls are not cached.
// It is safe for concurrent use.
type CachedProvider struct {
	next   provider.Provider
	policy CachePolicy
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
}

// NewCachedProvider wraps next with policy. A zero TTL or nil key function
// falls back to the defaults.
func NewCachedProvider(next provider.Provider, policy CachePolicy) *CachedProvider {
	if policy.TTL <= 0 {
		policy.TTL = DefaultCacheTTL
	}

	if policy.KeyedBy == nil {
		policy.KeyedBy = DefaultCacheKey
	}

	return &CachedProvider{
		next:    next,
		policy:  policy,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

func (c *CachedProvider) Candles(ctx context.Context, symbol string, interval provider.Timespan, start, end time.Time) (types.PriceSeries, error) {
	key := c.policy.KeyedBy("candles", symbol, interval, start, end)
	if v, ok := c.get(key); ok {
		return v.(types.PriceSeries), nil
	}

	prices, err := c.next.Candles(ctx, symbol, interval, start, end)
	if err != nil {
		return types.PriceSeries{}, err
	}

	c.put(key, prices)

	return prices, nil
}

func (c *CachedProvider) Quote(ctx context.Context, symbol string) (types.Quote, error) {
	key := c.policy.KeyedBy("quote", symbol, "", time.Time{}, time.Time{})
	if v, ok := c.get(key); ok {
		return v.(types.Quote), nil
	}

	quote, err := c.next.Quote(ctx, symbol)
	if err != nil {
		return types.Quote{}, err
	}

	c.put(key, quote)

	return quote, nil
}

// Len returns the number of live entries.
func (c *CachedProvider) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	n := 0

	for _, e := range c.entries {
		if now.Before(e.expires) {
			n++
		}
	}

	return n
}

// Invalidate drops every entry.
func (c *CachedProvider) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]cacheEntry)
}

func (c *CachedProvider) get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}

	if !c.now().Before(e.expires) {
		delete(c.entries, key)

		return nil, false
	}

	return e.value, true
}

func (c *CachedProvider) put(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{value: value, expires: c.now().Add(c.policy.TTL)}
}
