package router

import (
	"log/slog"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"btc_backend/internal/feature/marketdata/transport/handler"
	platformhandler "btc_backend/internal/platform/http/handler"
	"btc_backend/internal/platform/http/middleware"
	"btc_backend/internal/platform/metrics"
)

// Options はルータ全体に関わる設定です。
type Options struct {
	Version string
	CORS    bool
	Logger  *slog.Logger
	Checks  []platformhandler.Check
}

func NewRouter(opts Options, md *handler.MarketDataHandler, recorder *metrics.Recorder) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(opts.Logger))
	// CORS のデフォルト設定を有効（ブラウザから直接叩く場合）
	if opts.CORS {
		r.Use(cors.Default())
	}

	// 導通確認用
	health := platformhandler.NewHealth(opts.Version, opts.Checks...)
	r.GET("/healthz", health)
	r.HEAD("/healthz", health)
	r.OPTIONS("/healthz", health)

	// Prometheusのスクレイプ用
	r.GET("/metrics", gin.WrapH(recorder.Handler()))

	v1 := r.Group("/v1")
	{
		v1.GET("/price", md.GetPrice)
		v1.GET("/market", md.GetMarketData)
		v1.GET("/historical", md.GetHistoricalData)
		v1.GET("/ohlcv/:timeframe", md.GetOHLCV)
		v1.GET("/global-metrics", md.GetGlobalMetrics)
		v1.GET("/timeframes", md.ListTimeframes)
		v1.DELETE("/cache", md.ClearCache)
	}

	return r
}
