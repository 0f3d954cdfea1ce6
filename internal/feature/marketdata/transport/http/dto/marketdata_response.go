// Package dto はmarketdataフィーチャーのHTTPレスポンスDTOを定義します。
package dto

import (
	"time"

	"btc_backend/internal/feature/marketdata/domain/entity"
)

// ErrorResponse はエラー時のレスポンスDTOです。
type ErrorResponse struct {
	Error string `json:"error"`          // エラーメッセージ
	Kind  string `json:"kind,omitempty"` // エラーの種類（invalid_timeframe など）
}

// CandleResponse はOHLCVの1本分のレスポンスDTOです。
type CandleResponse struct {
	Timestamp int64   `json:"timestamp"` // バケット開始時刻（Unix秒）
	Open      float64 `json:"open"`      // 始値
	High      float64 `json:"high"`      // 高値
	Low       float64 `json:"low"`       // 安値
	Close     float64 `json:"close"`     // 終値
	Volume    float64 `json:"volume"`    // 出来高
	Count     int     `json:"count"`     // バケット内のサンプル数
}

// OHLCVResponse はOHLCVのレスポンスDTOです。
type OHLCVResponse struct {
	Source    string           `json:"source"`
	Timeframe string           `json:"timeframe"`
	Timestamp time.Time        `json:"timestamp"`
	OHLCV     []CandleResponse `json:"ohlcv"`
}

// TimeframesResponse は対応タイムフレーム一覧のレスポンスDTOです。
type TimeframesResponse struct {
	Timeframes []string `json:"timeframes"`
}

// StatusResponse は処理結果のみを返すレスポンスDTOです。
type StatusResponse struct {
	Status string `json:"status"`
}

// NewOHLCVResponse はOHLCVの取得結果をレスポンスDTOに変換します。
func NewOHLCVResponse(r *entity.FetchResult[entity.OHLCVSeries]) OHLCVResponse {
	out := make([]CandleResponse, 0, len(r.Body.Candles))
	for _, c := range r.Body.Candles {
		out = append(out, CandleResponse{
			Timestamp: c.BucketStart.Unix(),
			Open:      c.Open,
			High:      c.High,
			Low:       c.Low,
			Close:     c.Close,
			Volume:    c.Volume,
			Count:     c.SampleCount,
		})
	}
	return OHLCVResponse{
		Source:    r.Source.String(),
		Timeframe: r.Body.Timeframe,
		Timestamp: r.Timestamp,
		OHLCV:     out,
	}
}
