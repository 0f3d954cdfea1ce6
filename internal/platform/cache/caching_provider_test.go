package cache

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"btc_backend/internal/feature/marketdata/domain/entity"
	"btc_backend/internal/feature/marketdata/usecase"
)

var fetchedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// countingProvider は呼び出し回数を数えるProviderのモック実装です。
type countingProvider struct {
	src   entity.Source
	calls atomic.Int32
}

func (p *countingProvider) Source() entity.Source { return p.src }

func (p *countingProvider) FetchCurrentPrice(ctx context.Context) (*entity.FetchResult[entity.PriceSnapshot], error) {
	n := p.calls.Add(1)
	return entity.NewFetchResult(p.src, fetchedAt, entity.PriceSnapshot{
		Quotes: map[string]entity.Quote{"USD": {Price: 40000 + float64(n)}},
	}), nil
}

func (p *countingProvider) FetchMarketSnapshot(ctx context.Context) (*entity.FetchResult[entity.MarketSnapshot], error) {
	p.calls.Add(1)
	return entity.NewFetchResult(p.src, fetchedAt, entity.MarketSnapshot{ID: "bitcoin"}), nil
}

type countingHistorical struct {
	countingProvider
	days []int
}

func (p *countingHistorical) FetchHistoricalSeries(ctx context.Context, days int) (*entity.FetchResult[entity.HistoricalSeries], error) {
	p.calls.Add(1)
	p.days = append(p.days, days)
	return entity.NewFetchResult(p.src, fetchedAt, entity.HistoricalSeries{
		Days:   days,
		Prices: []entity.PricePoint{{TimestampMillis: 1_700_000_000_000, Value: 42000}},
	}), nil
}

func (p *countingHistorical) FetchIntradaySeries(ctx context.Context, days int) (*entity.FetchResult[entity.HistoricalSeries], error) {
	return p.FetchHistoricalSeries(ctx, days)
}

type countingGlobal struct {
	countingProvider
}

func (p *countingGlobal) FetchGlobalMetrics(ctx context.Context) (*entity.FetchResult[entity.GlobalMetrics], error) {
	p.calls.Add(1)
	return entity.NewFetchResult(p.src, fetchedAt, entity.GlobalMetrics{BTCDominance: 50}), nil
}

type countingHistoricalGlobal struct {
	countingHistorical
}

func (p *countingHistoricalGlobal) FetchGlobalMetrics(ctx context.Context) (*entity.FetchResult[entity.GlobalMetrics], error) {
	p.calls.Add(1)
	return entity.NewFetchResult(p.src, fetchedAt, entity.GlobalMetrics{}), nil
}

// TestWrapProvider_Capabilities はラップ後も元のProviderの能力だけを持つことを検証します。
func TestWrapProvider_Capabilities(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		inner      usecase.Provider
		historical bool
		global     bool
	}{
		{name: "basic", inner: &countingProvider{src: entity.SourceCoinGecko}},
		{name: "historical", inner: &countingHistorical{countingProvider: countingProvider{src: entity.SourceCoinGecko}}, historical: true},
		{name: "global", inner: &countingGlobal{countingProvider{src: entity.SourceCoinMarketCap}}, global: true},
		{name: "both", inner: &countingHistoricalGlobal{countingHistorical{countingProvider: countingProvider{src: entity.SourceCoinGecko}}}, historical: true, global: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := WrapProvider(tt.inner, nil)
			_, isHist := p.(usecase.HistoricalProvider)
			_, isGlobal := p.(usecase.GlobalMetricsProvider)
			assert.Equal(t, tt.historical, isHist)
			assert.Equal(t, tt.global, isGlobal)
			assert.Equal(t, tt.inner.Source(), p.Source())
		})
	}
}

// TestCachingProvider_CacheThrough は2回目の呼び出しがキャッシュから返されることを検証します。
func TestCachingProvider_CacheThrough(t *testing.T) {
	t.Parallel()

	store := NewFileStore(t.TempDir())
	inner := &countingProvider{src: entity.SourceCoinGecko}
	p := WrapProvider(inner, usecase.NewCacheThrough(store, nil, nil))
	ctx := context.Background()

	first, err := p.FetchCurrentPrice(ctx)
	require.NoError(t, err)
	second, err := p.FetchCurrentPrice(ctx)
	require.NoError(t, err)

	assert.Equal(t, int32(1), inner.calls.Load())
	assert.Equal(t, first.Body, second.Body)
	assert.True(t, first.Timestamp.Equal(second.Timestamp))

	_, err = store.Get(ctx, "coingecko_current_price")
	assert.NoError(t, err)
}

// TestCachingProvider_Keys は各操作のキャッシュキーを検証します。
func TestCachingProvider_Keys(t *testing.T) {
	t.Parallel()

	store := NewFileStore(t.TempDir())
	ct := usecase.NewCacheThrough(store, nil, nil)
	ctx := context.Background()

	gecko := &countingHistorical{countingProvider: countingProvider{src: entity.SourceCoinGecko}}
	hp := WrapProvider(gecko, ct).(usecase.HistoricalProvider)
	_, err := hp.FetchMarketSnapshot(ctx)
	require.NoError(t, err)
	_, err = hp.FetchHistoricalSeries(ctx, 30)
	require.NoError(t, err)
	_, err = hp.FetchHistoricalSeries(ctx, 0)
	require.NoError(t, err)
	_, err = hp.FetchIntradaySeries(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, []int{30, 1, 7}, gecko.days)

	cmc := &countingGlobal{countingProvider{src: entity.SourceCoinMarketCap}}
	gp := WrapProvider(cmc, ct)
	_, err = gp.FetchMarketSnapshot(ctx)
	require.NoError(t, err)
	_, err = gp.(usecase.GlobalMetricsProvider).FetchGlobalMetrics(ctx)
	require.NoError(t, err)

	for _, key := range []string{
		"coingecko_market_data",
		"coingecko_historical_30d",
		"coingecko_historical_1d",
		"coingecko_intraday_7d",
		"coinmarketcap_info",
		"coinmarketcap_global_metrics",
	} {
		_, err := store.Get(ctx, key)
		assert.NoError(t, err, key)
	}
}

// TestCachingProvider_UnwritableStore は書き込めないキャッシュでもファサードが上流の値を返すことを検証します。
func TestCachingProvider_UnwritableStore(t *testing.T) {
	t.Parallel()

	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	ct := usecase.NewCacheThrough(NewFileStore(filepath.Join(blocker, "cache")), nil, nil)

	gecko := &countingHistorical{countingProvider: countingProvider{src: entity.SourceCoinGecko}}
	u, err := usecase.NewMarketDataUsecase([]usecase.Provider{WrapProvider(gecko, ct)}, ct, nil, nil)
	require.NoError(t, err)
	ctx := context.Background()

	price, err := u.GetPrice(ctx, "coingecko")
	require.NoError(t, err)
	assert.Equal(t, 40001.0, price.Body.Quotes["USD"].Price)

	ohlcv, err := u.GetOHLCV(ctx, "1d")
	require.NoError(t, err)
	require.Len(t, ohlcv.Body.Candles, 1)
	assert.Equal(t, 42000.0, ohlcv.Body.Candles[0].Close)

	// 毎回上流へ問い合わせる
	_, err = u.GetPrice(ctx, "coingecko")
	require.NoError(t, err)
	assert.Equal(t, int32(3), gecko.calls.Load())
}
