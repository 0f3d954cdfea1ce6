// Package di provides dependency injection factories for creating application components.
package di

import (
	"context"
	"errors"
	"log/slog"

	"btc_backend/internal/feature/marketdata/adapters"
	"btc_backend/internal/feature/marketdata/adapters/coingecko"
	"btc_backend/internal/feature/marketdata/adapters/coinmarketcap"
	"btc_backend/internal/feature/marketdata/transport/handler"
	"btc_backend/internal/feature/marketdata/usecase"
	"btc_backend/internal/platform/cache"
	"btc_backend/internal/platform/config"
	"btc_backend/internal/platform/metrics"
)

// MarketData bundles the wired marketdata feature.
type MarketData struct {
	Usecase *usecase.MarketDataUsecase
	Handler *handler.MarketDataHandler
	Metrics *metrics.Recorder
	Cache   *CacheBackend
}

// Close releases the cache backend.
func (m *MarketData) Close() error {
	if m == nil || m.Cache == nil {
		return nil
	}
	return m.Cache.Close()
}

// NewMarketData wires providers, cache, aggregator and facade from cfg.
func NewMarketData(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*MarketData, error) {
	if logger == nil {
		logger = slog.Default()
	}
	recorder := metrics.NewRecorder()

	backend, err := NewCacheBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var through *usecase.CacheThrough
	if backend.Store != nil {
		through = usecase.NewCacheThrough(backend.Store, logger, recorder)
	}

	raw := NewProviders(cfg, recorder, logger)
	if len(raw) == 0 {
		_ = backend.Close()
		return nil, errors.New("no provider enabled")
	}
	providers := make([]usecase.Provider, 0, len(raw))
	for _, p := range raw {
		providers = append(providers, cache.WrapProvider(p, through))
	}

	mode, err := usecase.ParseVolumeMode(cfg.OHLCV.VolumeMode)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}
	uc, err := usecase.NewMarketDataUsecase(providers, through, usecase.NewAggregator(mode, logger), logger)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}

	return &MarketData{
		Usecase: uc,
		Handler: handler.NewMarketDataHandler(uc),
		Metrics: recorder,
		Cache:   backend,
	}, nil
}

// NewProviders builds the enabled upstream clients. Each client derives its HTTP timeout
// and its own rate limiter from the provider section of cfg.
func NewProviders(cfg *config.Config, recorder *metrics.Recorder, logger *slog.Logger) []usecase.Provider {
	if logger == nil {
		logger = slog.Default()
	}
	var out []usecase.Provider

	if p := cfg.CoinGecko; p.Enabled {
		gcfg := coingecko.Config{APIKey: p.APIKey, BaseURL: p.BaseURL, Timeout: p.Timeout, RequestsPerMinute: p.RequestsPerMinute}
		out = append(out, coingecko.NewClient(gcfg, nil, providerOptions(recorder, logger)...))
	}
	if p := cfg.CoinMarketCap; p.Enabled {
		if p.APIKey == "" {
			logger.Warn("COINMARKETCAP_API_KEY is not set; coinmarketcap requests will be rejected")
		}
		mcfg := coinmarketcap.Config{APIKey: p.APIKey, BaseURL: p.BaseURL, Timeout: p.Timeout, RequestsPerMinute: p.RequestsPerMinute}
		out = append(out, coinmarketcap.NewClient(mcfg, nil, providerOptions(recorder, logger)...))
	}
	return out
}

func providerOptions(recorder *metrics.Recorder, logger *slog.Logger) []adapters.Option {
	return []adapters.Option{
		adapters.WithMetrics(recorder),
		adapters.WithLogger(logger),
	}
}
