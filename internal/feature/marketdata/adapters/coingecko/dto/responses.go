// Package dto defines data transfer objects for the CoinGecko API responses.
package dto

import "encoding/json"

// SimplePriceResponse represents the /simple/price response, keyed by coin id then by field
// (e.g. "usd", "usd_market_cap", "usd_24h_vol", "usd_24h_change").
type SimplePriceResponse map[string]map[string]float64

// CoinResponse represents the subset of /coins/{id} that is kept.
type CoinResponse struct {
	ID         string          `json:"id"`
	Symbol     string          `json:"symbol"`
	Name       string          `json:"name"`
	MarketData json.RawMessage `json:"market_data"`
}

// MarketChartResponse represents the /coins/{id}/market_chart response.
// Each pair is [timestamp in ms, value].
type MarketChartResponse struct {
	Prices       [][2]float64 `json:"prices"`
	MarketCaps   [][2]float64 `json:"market_caps"`
	TotalVolumes [][2]float64 `json:"total_volumes"`
}
