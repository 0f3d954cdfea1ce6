package usecase

import (
	"context"

	"btc_backend/internal/feature/marketdata/domain/entity"
	"btc_backend/internal/feature/marketdata/domain/timeframe"
)

// WarmReport は WarmCache の実行結果の件数です。
type WarmReport struct {
	Succeeded int
	Failed    int
}

// WarmCache は設定済みの全提供元の価格・市場データ、全対応タイムフレームのOHLCV、
// 市場全体の指標を順に取得してキャッシュを埋めます。
// 1件失敗しても処理を止めずにログへ出力して次へ進みます（各呼び出しがエラーを記録します）。
// 上流へのリクエスト頻度は各アダプタのレートリミッタで制御されます。
func (u *MarketDataUsecase) WarmCache(ctx context.Context) WarmReport {
	var r WarmReport
	record := func(err error) {
		if err != nil {
			r.Failed++
			return
		}
		r.Succeeded++
	}

	for _, src := range entity.Sources() {
		if _, ok := u.providers[src]; !ok {
			continue
		}
		if ctx.Err() != nil {
			return r
		}
		_, err := u.GetPrice(ctx, src.String())
		record(err)
		_, err = u.GetMarketData(ctx, src.String())
		record(err)
		if _, ok := u.historical[src]; ok {
			_, err = u.GetHistoricalData(ctx, DefaultHistoricalDays, src.String())
			record(err)
		}
	}

	for _, label := range timeframe.Labels() {
		if _, ok := ohlcvPlans[label]; !ok {
			continue
		}
		if ctx.Err() != nil {
			return r
		}
		_, err := u.GetOHLCV(ctx, label)
		record(err)
	}

	if u.global != nil && ctx.Err() == nil {
		_, err := u.GetGlobalMetrics(ctx)
		record(err)
	}

	u.logger.Info("cache warm-up finished", "succeeded", r.Succeeded, "failed", r.Failed)
	return r
}
