package cache

import (
	"context"
	"fmt"

	"btc_backend/internal/feature/marketdata/domain/entity"
	"btc_backend/internal/feature/marketdata/usecase"
)

// CachingProvider decorates a Provider with cache-through reads.
// It implements the decorator pattern, transparently adding caching without
// modifying the underlying client. Cache failures never surface to callers.
type CachingProvider struct {
	inner usecase.Provider
	cache *usecase.CacheThrough
}

// WrapProvider decorates p. The returned value implements exactly the optional
// capabilities (HistoricalProvider, GlobalMetricsProvider) that p implements,
// so capability checks on the decorated provider stay accurate.
// If cache is nil (or has no store), calls go straight to p.
func WrapProvider(p usecase.Provider, cache *usecase.CacheThrough) usecase.Provider {
	base := &CachingProvider{inner: p, cache: cache}
	hp, isHist := p.(usecase.HistoricalProvider)
	gp, isGlobal := p.(usecase.GlobalMetricsProvider)

	switch {
	case isHist && isGlobal:
		return &cachingHistoricalGlobal{
			cachingHistorical: &cachingHistorical{CachingProvider: base, hist: hp},
			global:            gp,
		}
	case isHist:
		return &cachingHistorical{CachingProvider: base, hist: hp}
	case isGlobal:
		return &cachingGlobal{CachingProvider: base, global: gp}
	default:
		return base
	}
}

// Source returns the wrapped provider's source.
func (c *CachingProvider) Source() entity.Source { return c.inner.Source() }

func (c *CachingProvider) FetchCurrentPrice(ctx context.Context) (*entity.FetchResult[entity.PriceSnapshot], error) {
	return usecase.FetchCached(ctx, c.cache, c.key("current_price"), c.inner.FetchCurrentPrice)
}

func (c *CachingProvider) FetchMarketSnapshot(ctx context.Context) (*entity.FetchResult[entity.MarketSnapshot], error) {
	return usecase.FetchCached(ctx, c.cache, MarketDataKey(c.inner.Source()), c.inner.FetchMarketSnapshot)
}

func (c *CachingProvider) key(op string) string {
	return fmt.Sprintf("%s_%s", c.inner.Source(), op)
}

// MarketDataKey returns the cache key of the market snapshot for src.
// CoinMarketCap snapshots come from the info endpoint and are keyed accordingly.
func MarketDataKey(src entity.Source) string {
	if src == entity.SourceCoinMarketCap {
		return "coinmarketcap_info"
	}
	return fmt.Sprintf("%s_market_data", src)
}

type cachingHistorical struct {
	*CachingProvider
	hist usecase.HistoricalProvider
}

func (c *cachingHistorical) FetchHistoricalSeries(ctx context.Context, days int) (*entity.FetchResult[entity.HistoricalSeries], error) {
	days = usecase.ClampDays(days)
	return usecase.FetchCached(ctx, c.cache, fmt.Sprintf("%s_historical_%dd", c.Source(), days),
		func(ctx context.Context) (*entity.FetchResult[entity.HistoricalSeries], error) {
			return c.hist.FetchHistoricalSeries(ctx, days)
		})
}

func (c *cachingHistorical) FetchIntradaySeries(ctx context.Context, days int) (*entity.FetchResult[entity.HistoricalSeries], error) {
	days = usecase.ClampDays(days)
	return usecase.FetchCached(ctx, c.cache, fmt.Sprintf("%s_intraday_%dd", c.Source(), days),
		func(ctx context.Context) (*entity.FetchResult[entity.HistoricalSeries], error) {
			return c.hist.FetchIntradaySeries(ctx, days)
		})
}

type cachingGlobal struct {
	*CachingProvider
	global usecase.GlobalMetricsProvider
}

func (c *cachingGlobal) FetchGlobalMetrics(ctx context.Context) (*entity.FetchResult[entity.GlobalMetrics], error) {
	return fetchGlobal(ctx, c.CachingProvider, c.global)
}

type cachingHistoricalGlobal struct {
	*cachingHistorical
	global usecase.GlobalMetricsProvider
}

func (c *cachingHistoricalGlobal) FetchGlobalMetrics(ctx context.Context) (*entity.FetchResult[entity.GlobalMetrics], error) {
	return fetchGlobal(ctx, c.CachingProvider, c.global)
}

func fetchGlobal(ctx context.Context, c *CachingProvider, gp usecase.GlobalMetricsProvider) (*entity.FetchResult[entity.GlobalMetrics], error) {
	return usecase.FetchCached(ctx, c.cache, c.key("global_metrics"), gp.FetchGlobalMetrics)
}
