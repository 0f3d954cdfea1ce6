package usecase

import (
	"context"
	"encoding/json"

	"btc_backend/internal/feature/marketdata/domain/entity"
)

// Provider はすべての価格データ提供元が実装する基本インターフェースです。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type Provider interface {
	Source() entity.Source
	FetchCurrentPrice(ctx context.Context) (*entity.FetchResult[entity.PriceSnapshot], error)
	FetchMarketSnapshot(ctx context.Context) (*entity.FetchResult[entity.MarketSnapshot], error)
}

// HistoricalProvider は時系列データを提供できるProviderです。
type HistoricalProvider interface {
	Provider
	// FetchHistoricalSeries は日足の時系列を取得します。daysは1〜365。
	FetchHistoricalSeries(ctx context.Context, days int) (*entity.FetchResult[entity.HistoricalSeries], error)
	// FetchIntradaySeries は提供元が自動で決める粒度（1日なら約5分、2〜90日なら1時間）の時系列を取得します。
	FetchIntradaySeries(ctx context.Context, days int) (*entity.FetchResult[entity.HistoricalSeries], error)
}

// GlobalMetricsProvider は暗号資産市場全体の指標を提供できるProviderです。
type GlobalMetricsProvider interface {
	FetchGlobalMetrics(ctx context.Context) (*entity.FetchResult[entity.GlobalMetrics], error)
}

// CacheStore は有効期限付きのキー・バリューストアを抽象化します。
//
// Get は新鮮なエントリが無い場合 ErrCacheMiss を、ストレージ障害の場合 ErrCacheIO をラップしたエラーを返します。
type CacheStore interface {
	Get(ctx context.Context, key string) (json.RawMessage, error)
	Set(ctx context.Context, key string, payload json.RawMessage) error
	Clear(ctx context.Context) error
}

// CacheMetrics はキャッシュ参照結果（hit / miss / error）を記録します。
type CacheMetrics interface {
	ObserveCacheLookup(result string)
}
