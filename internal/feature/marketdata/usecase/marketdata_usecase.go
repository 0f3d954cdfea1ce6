package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"btc_backend/internal/feature/marketdata/domain/entity"
	"btc_backend/internal/feature/marketdata/domain/timeframe"
)

const (
	// DefaultHistoricalDays は日数が指定されなかった場合の履歴取得日数です。
	DefaultHistoricalDays = 90
	// MaxHistoricalDays は履歴取得日数の上限です。
	MaxHistoricalDays = 365
)

// ohlcvPlan はタイムフレームごとの元データの取得方法を表します。
type ohlcvPlan struct {
	days     int  // 取得する日数
	intraday bool // trueなら提供元の自動粒度（5分 / 1時間）、falseなら日足
	bucket   bool // trueならAggregateSeriesでバケット化、falseなら1点1本
}

// ohlcvPlans に無いラベル（1m）は上流が提供できない粒度のため未対応です。
var ohlcvPlans = map[string]ohlcvPlan{
	"5m":  {days: 1, intraday: true, bucket: true},
	"15m": {days: 1, intraday: true, bucket: true},
	"30m": {days: 1, intraday: true, bucket: true},
	"1h":  {days: 7, intraday: true, bucket: true},
	"4h":  {days: 7, intraday: true, bucket: true},
	"1d":  {days: 1},
	"7d":  {days: 7},
	"30d": {days: 30},
}

// ClampDays は日数を1〜MaxHistoricalDaysの範囲に収めます。
func ClampDays(days int) int {
	if days < 1 {
		return 1
	}
	if days > MaxHistoricalDays {
		return MaxHistoricalDays
	}
	return days
}

// MarketDataUsecase は提供元の選択・OHLCV集約・キャッシュをまとめるファサードです。
//
// 失敗はすべてログに出力したうえで nil と種類付きのエラーとして返し、パニックは起こしません。
type MarketDataUsecase struct {
	providers   map[entity.Source]Provider
	historical  map[entity.Source]HistoricalProvider
	global      GlobalMetricsProvider
	globalSrc   entity.Source
	ohlcvSource entity.Source

	cache  *CacheThrough
	agg    *Aggregator
	logger *slog.Logger
	now    func() time.Time
}

// NewMarketDataUsecase は提供元の能力（履歴・全体指標）を構築時に判定してファサードを生成します。
// OHLCVは最初に見つかったHistoricalProviderから取得します。
func NewMarketDataUsecase(providers []Provider, cache *CacheThrough, agg *Aggregator, logger *slog.Logger) (*MarketDataUsecase, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if agg == nil {
		agg = NewAggregator(VolumeSum, logger)
	}
	u := &MarketDataUsecase{
		providers:  make(map[entity.Source]Provider, len(providers)),
		historical: make(map[entity.Source]HistoricalProvider),
		cache:      cache,
		agg:        agg,
		logger:     logger,
		now:        time.Now,
	}
	for _, p := range providers {
		if p == nil {
			return nil, fmt.Errorf("nil provider")
		}
		src := p.Source()
		if _, dup := u.providers[src]; dup {
			return nil, fmt.Errorf("duplicate provider for source %s", src)
		}
		u.providers[src] = p
		if hp, ok := p.(HistoricalProvider); ok {
			u.historical[src] = hp
			if u.ohlcvSource == "" {
				u.ohlcvSource = src
			}
		}
		if gp, ok := p.(GlobalMetricsProvider); ok && u.global == nil {
			u.global = gp
			u.globalSrc = src
		}
	}
	return u, nil
}

func (u *MarketDataUsecase) provider(name string) (Provider, error) {
	src, err := entity.ParseSource(name)
	if err != nil {
		u.logger.Error("unknown source", "source", name)
		return nil, err
	}
	p, ok := u.providers[src]
	if !ok {
		u.logger.Error("source not configured", "source", src)
		return nil, fmt.Errorf("%w: source %s is not configured", ErrNoData, src)
	}
	return p, nil
}

// GetPrice は指定された提供元からBTCの現在価格を取得します。
func (u *MarketDataUsecase) GetPrice(ctx context.Context, source string) (*entity.FetchResult[entity.PriceSnapshot], error) {
	p, err := u.provider(source)
	if err != nil {
		return nil, err
	}
	out, err := p.FetchCurrentPrice(ctx)
	if err != nil {
		u.logger.Error("failed to fetch current price", "source", p.Source(), "error", err)
		return nil, err
	}
	return out, nil
}

// GetMarketData は指定された提供元から詳細な市場データを取得します。
func (u *MarketDataUsecase) GetMarketData(ctx context.Context, source string) (*entity.FetchResult[entity.MarketSnapshot], error) {
	p, err := u.provider(source)
	if err != nil {
		return nil, err
	}
	out, err := p.FetchMarketSnapshot(ctx)
	if err != nil {
		u.logger.Error("failed to fetch market data", "source", p.Source(), "error", err)
		return nil, err
	}
	return out, nil
}

// GetHistoricalData は日足の履歴データを取得します。daysは1〜365に丸められます。
func (u *MarketDataUsecase) GetHistoricalData(ctx context.Context, days int, source string) (*entity.FetchResult[entity.HistoricalSeries], error) {
	p, err := u.provider(source)
	if err != nil {
		return nil, err
	}
	hp, ok := u.historical[p.Source()]
	if !ok {
		u.logger.Error("historical data not available for source", "source", p.Source())
		return nil, fmt.Errorf("%w: historical data from %s", ErrUnsupportedOperation, p.Source())
	}
	out, err := hp.FetchHistoricalSeries(ctx, ClampDays(days))
	if err != nil {
		u.logger.Error("failed to fetch historical data", "source", p.Source(), "days", days, "error", err)
		return nil, err
	}
	return out, nil
}

// GetOHLCV は指定タイムフレームのOHLCVデータを取得します。
//
// 1d/7d/30d は日足の各点をそのままローソク足にし、5m〜4h は提供元の細かい粒度の系列を
// 時刻順に並べ替えてからバケット集約します。1m は上流が提供できないため ErrUnsupportedTimeframe です。
func (u *MarketDataUsecase) GetOHLCV(ctx context.Context, label string) (*entity.FetchResult[entity.OHLCVSeries], error) {
	tf, err := timeframe.Resolve(label)
	if err != nil {
		u.logger.Error("invalid timeframe", "timeframe", label)
		return nil, err
	}
	plan, ok := ohlcvPlans[tf.Label]
	if !ok {
		u.logger.Warn("timeframe not supported with free APIs", "timeframe", tf.Label)
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedTimeframe, tf.Label)
	}
	hp, ok := u.historical[u.ohlcvSource]
	if !ok {
		u.logger.Error("no historical provider configured for ohlcv")
		return nil, fmt.Errorf("%w: no historical provider", ErrNoData)
	}

	out, err := FetchCached(ctx, u.cache, "ohlcv_"+tf.Label, func(ctx context.Context) (*entity.FetchResult[entity.OHLCVSeries], error) {
		fetch := hp.FetchHistoricalSeries
		if plan.intraday {
			fetch = hp.FetchIntradaySeries
		}
		series, err := fetch(ctx, plan.days)
		if err != nil {
			return nil, err
		}

		var candles []entity.Candle
		if plan.bucket {
			candles, err = u.agg.AggregateSeries(series.Body.SortedByTime(), tf.Label)
			if err != nil {
				return nil, err
			}
		} else {
			candles = u.agg.FromUniformSeries(series.Body.Prices, series.Body.Volumes)
		}
		return entity.NewFetchResult(series.Source, u.now(), entity.OHLCVSeries{
			Timeframe: tf.Label,
			Candles:   candles,
		}), nil
	})
	if err != nil {
		u.logger.Error("error processing ohlcv data", "timeframe", tf.Label, "error", err)
		return nil, err
	}
	return out, nil
}

// GetGlobalMetrics は暗号資産市場全体の指標を取得します。
func (u *MarketDataUsecase) GetGlobalMetrics(ctx context.Context) (*entity.FetchResult[entity.GlobalMetrics], error) {
	if u.global == nil {
		u.logger.Error("no global metrics provider configured")
		return nil, fmt.Errorf("%w: no global metrics provider", ErrNoData)
	}
	out, err := u.global.FetchGlobalMetrics(ctx)
	if err != nil {
		u.logger.Error("failed to fetch global metrics", "source", u.globalSrc, "error", err)
		return nil, err
	}
	return out, nil
}

// ClearCache はキャッシュをすべて削除します。失敗してもログに出すだけです。
func (u *MarketDataUsecase) ClearCache(ctx context.Context) {
	u.cache.Clear(ctx)
}

// ListSupportedTimeframes はタイムフレームのラベル一覧を返します。
func (u *MarketDataUsecase) ListSupportedTimeframes() []string {
	return timeframe.Labels()
}
