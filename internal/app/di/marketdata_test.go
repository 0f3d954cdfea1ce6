package di

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"btc_backend/internal/feature/marketdata/usecase"
	"btc_backend/internal/platform/config"
)

func testConfig(t *testing.T, geckoURL string) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.Cache.Dir = filepath.Join(t.TempDir(), "cache")
	cfg.CoinGecko.BaseURL = geckoURL
	cfg.CoinGecko.RequestsPerMinute = 0
	cfg.CoinMarketCap.Enabled = false
	require.NoError(t, cfg.Validate())
	return cfg
}

// TestNewMarketData_FileBackend は設定から組み立てたファサードがキャッシュ経由で動作することを検証します。
func TestNewMarketData_FileBackend(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/simple/price", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"bitcoin":{"usd":42000,"eur":39000,"gbp":33000}}`))
	}))
	t.Cleanup(server.Close)

	md, err := NewMarketData(context.Background(), testConfig(t, server.URL), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = md.Close() })

	require.NotNil(t, md.Handler)
	require.NotNil(t, md.Metrics)
	assert.Empty(t, md.Cache.Checks)

	for range 2 {
		got, err := md.Usecase.GetPrice(context.Background(), "coingecko")
		require.NoError(t, err)
		assert.Equal(t, 42000.0, got.Body.Quotes["USD"].Price)
	}
	assert.Equal(t, int32(1), calls.Load(), "second call should be served from cache")

	// CoinMarketCapは無効化されている
	_, err = md.Usecase.GetPrice(context.Background(), "coinmarketcap")
	assert.ErrorIs(t, err, usecase.ErrNoData)
}

func TestNewMarketData_NoProviders(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, "http://127.0.0.1:1")
	cfg.CoinGecko.Enabled = false

	_, err := NewMarketData(context.Background(), cfg, nil)
	assert.ErrorContains(t, err, "no provider enabled")
}

func TestNewCacheBackend(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, "")

	cfg.Cache.Backend = config.BackendNone
	b, err := NewCacheBackend(context.Background(), cfg)
	require.NoError(t, err)
	assert.Nil(t, b.Store)
	assert.NoError(t, b.Close())

	cfg.Cache.Backend = config.BackendSQLite
	cfg.Database.DSN = filepath.Join(t.TempDir(), "cache.db")
	b, err = NewCacheBackend(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, b.Store)
	require.Len(t, b.Checks, 1)
	assert.Equal(t, "database", b.Checks[0].Name)
	assert.NoError(t, b.Checks[0].Probe(context.Background()))

	require.NoError(t, b.Store.Set(context.Background(), "k", []byte(`{"a":1}`)))
	got, err := b.Store.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(got))
	assert.NoError(t, b.Close())

	cfg.Cache.Backend = "memcached"
	_, err = NewCacheBackend(context.Background(), cfg)
	assert.Error(t, err)
}

func TestNewProviders(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	ps := NewProviders(cfg, nil, nil)
	require.Len(t, ps, 2)
	assert.Equal(t, "coingecko", ps[0].Source().String())
	assert.Equal(t, "coinmarketcap", ps[1].Source().String())

	_, ok := ps[0].(usecase.HistoricalProvider)
	assert.True(t, ok)
	_, ok = ps[1].(usecase.GlobalMetricsProvider)
	assert.True(t, ok)
}

// TestNewProviders_RateLimitFromConfig は requests_per_minute が組み立てたクライアントに反映されることを検証します。
func TestNewProviders_RateLimitFromConfig(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"bitcoin":{"usd":42000,"eur":39000,"gbp":33000}}`))
	}))
	t.Cleanup(server.Close)

	cfg := testConfig(t, server.URL)
	cfg.CoinGecko.RequestsPerMinute = 1
	ps := NewProviders(cfg, nil, nil)
	require.Len(t, ps, 1)

	_, err := ps[0].FetchCurrentPrice(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = ps[0].FetchCurrentPrice(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int32(1), calls.Load())
}
