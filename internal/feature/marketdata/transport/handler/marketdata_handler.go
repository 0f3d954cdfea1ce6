// Package handler はmarketdataフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"btc_backend/internal/feature/marketdata/domain/entity"
	"btc_backend/internal/feature/marketdata/transport/http/dto"
	"btc_backend/internal/feature/marketdata/usecase"
)

// MarketDataUsecase はBTCデータ取得のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type MarketDataUsecase interface {
	GetPrice(ctx context.Context, source string) (*entity.FetchResult[entity.PriceSnapshot], error)
	GetMarketData(ctx context.Context, source string) (*entity.FetchResult[entity.MarketSnapshot], error)
	GetHistoricalData(ctx context.Context, days int, source string) (*entity.FetchResult[entity.HistoricalSeries], error)
	GetOHLCV(ctx context.Context, timeframe string) (*entity.FetchResult[entity.OHLCVSeries], error)
	GetGlobalMetrics(ctx context.Context) (*entity.FetchResult[entity.GlobalMetrics], error)
	ClearCache(ctx context.Context)
	ListSupportedTimeframes() []string
}

// MarketDataHandler はBTCデータのHTTPリクエストを処理します。
type MarketDataHandler struct {
	uc MarketDataUsecase
}

// NewMarketDataHandler は指定されたusecaseでMarketDataHandlerの新しいインスタンスを生成します。
func NewMarketDataHandler(uc MarketDataUsecase) *MarketDataHandler {
	return &MarketDataHandler{uc: uc}
}

// GetPrice は現在価格を返します。
//
// エンドポイント例:
// GET /v1/price?source=coinmarketcap
func (h *MarketDataHandler) GetPrice(c *gin.Context) {
	out, err := h.uc.GetPrice(c.Request.Context(), c.Query("source"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GetMarketData は詳細な市場データを返します。
//
// エンドポイント例:
// GET /v1/market?source=coingecko
func (h *MarketDataHandler) GetMarketData(c *gin.Context) {
	out, err := h.uc.GetMarketData(c.Request.Context(), c.Query("source"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GetHistoricalData は日足の履歴データを返します。daysは1〜365に丸められます。
//
// エンドポイント例:
// GET /v1/historical?days=30&source=coingecko
func (h *MarketDataHandler) GetHistoricalData(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", strconv.Itoa(usecase.DefaultHistoricalDays)))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "days must be an integer", Kind: "invalid_argument"})
		return
	}
	out, err := h.uc.GetHistoricalData(c.Request.Context(), days, c.Query("source"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GetOHLCV は指定タイムフレームのOHLCVデータを返します。
//
// エンドポイント例:
// GET /v1/ohlcv/1h
func (h *MarketDataHandler) GetOHLCV(c *gin.Context) {
	out, err := h.uc.GetOHLCV(c.Request.Context(), c.Param("timeframe"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewOHLCVResponse(out))
}

// GetGlobalMetrics は市場全体の指標を返します。
func (h *MarketDataHandler) GetGlobalMetrics(c *gin.Context) {
	out, err := h.uc.GetGlobalMetrics(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// ListTimeframes は対応タイムフレームの一覧を返します。
func (h *MarketDataHandler) ListTimeframes(c *gin.Context) {
	c.JSON(http.StatusOK, dto.TimeframesResponse{Timeframes: h.uc.ListSupportedTimeframes()})
}

// ClearCache はキャッシュを全て削除します。失敗はログに出力されるだけで常に成功を返します。
func (h *MarketDataHandler) ClearCache(c *gin.Context) {
	h.uc.ClearCache(c.Request.Context())
	c.JSON(http.StatusOK, dto.StatusResponse{Status: "cleared"})
}

// writeError はエラーの種類に応じたHTTPステータスでエラーレスポンスを返します。
func writeError(c *gin.Context, err error) {
	status, kind := classify(err)
	c.JSON(status, dto.ErrorResponse{Error: err.Error(), Kind: kind})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, usecase.ErrInvalidTimeframe):
		return http.StatusBadRequest, "invalid_timeframe"
	case errors.Is(err, usecase.ErrUnknownSource):
		return http.StatusBadRequest, "unknown_source"
	case errors.Is(err, usecase.ErrUnsupportedTimeframe):
		return http.StatusNotImplemented, "unsupported_timeframe"
	case errors.Is(err, usecase.ErrUnsupportedOperation):
		return http.StatusNotImplemented, "unsupported_operation"
	case errors.Is(err, usecase.ErrNoData):
		return http.StatusBadGateway, "no_data"
	case errors.Is(err, usecase.ErrUpstreamRequest):
		return http.StatusBadGateway, "upstream_error"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
