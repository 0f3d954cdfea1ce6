package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"btc_backend/internal/feature/marketdata/domain/entity"
)

// Cache lookup outcomes reported to CacheMetrics.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// CacheThrough wraps a CacheStore with the degrade-don't-fail policy:
// every store error is logged and treated as a miss.
// A nil *CacheThrough or nil Store disables caching.
type CacheThrough struct {
	Store   CacheStore
	Logger  *slog.Logger
	Metrics CacheMetrics
}

// NewCacheThrough builds a CacheThrough. logger and metrics may be nil.
func NewCacheThrough(store CacheStore, logger *slog.Logger, metrics CacheMetrics) *CacheThrough {
	if logger == nil {
		logger = slog.Default()
	}
	return &CacheThrough{Store: store, Logger: logger, Metrics: metrics}
}

func (c *CacheThrough) enabled() bool { return c != nil && c.Store != nil }

func (c *CacheThrough) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

func (c *CacheThrough) observe(result string) {
	if c.Metrics != nil {
		c.Metrics.ObserveCacheLookup(result)
	}
}

// Clear removes all entries. Failures are logged, never returned.
func (c *CacheThrough) Clear(ctx context.Context) {
	if !c.enabled() {
		return
	}
	if err := c.Store.Clear(ctx); err != nil {
		c.logger().Warn("error clearing cache", "error", err)
		return
	}
	c.logger().Info("cache cleared")
}

// FetchCached returns the fresh cached result for key, or calls fetch and stores its result.
// Only fetch errors are returned; cache failures degrade to calling fetch.
func FetchCached[T any](ctx context.Context, c *CacheThrough, key string, fetch func(context.Context) (*entity.FetchResult[T], error)) (*entity.FetchResult[T], error) {
	if !c.enabled() {
		return fetch(ctx)
	}

	if out, ok := lookup[T](ctx, c, key); ok {
		return out, nil
	}

	out, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	// best effort
	if b, err := json.Marshal(out); err != nil {
		c.logger().Warn("error encoding cache entry", "key", key, "error", err)
	} else if err := c.Store.Set(ctx, key, b); err != nil {
		c.logger().Warn("error writing cache", "key", key, "error", err)
	} else {
		c.logger().Debug("cached data", "key", key)
	}
	return out, nil
}

func lookup[T any](ctx context.Context, c *CacheThrough, key string) (*entity.FetchResult[T], bool) {
	raw, err := c.Store.Get(ctx, key)
	switch {
	case errors.Is(err, ErrCacheMiss):
		c.observe(CacheMiss)
		return nil, false
	case err != nil:
		c.observe(CacheError)
		c.logger().Warn("error reading cache", "key", key, "error", err)
		return nil, false
	}

	var out entity.FetchResult[T]
	if err := json.Unmarshal(raw, &out); err != nil {
		// the next successful fetch overwrites the corrupted entry
		c.observe(CacheError)
		c.logger().Warn("corrupted cache entry", "key", key, "error", err)
		return nil, false
	}
	c.observe(CacheHit)
	c.logger().Info("cache hit", "key", key)
	return &out, true
}
