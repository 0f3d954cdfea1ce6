package entity

import "encoding/json"

// Quote is the price of one BTC in a single fiat currency.
type Quote struct {
	Price        float64 `json:"price"`
	MarketCap    float64 `json:"market_cap"`
	Volume24h    float64 `json:"volume_24h"`
	Change24hPct float64 `json:"change_24h_pct"`
}

// PriceSnapshot holds the latest quotes keyed by upper-case currency code (e.g. "USD").
type PriceSnapshot struct {
	Quotes map[string]Quote `json:"quotes"`
}

// MarketSnapshot describes the coin plus provider-specific market details.
type MarketSnapshot struct {
	ID      string          `json:"id"`
	Symbol  string          `json:"symbol"`
	Name    string          `json:"name"`
	Details json.RawMessage `json:"details,omitempty"`
}

// GlobalMetrics summarizes the whole cryptocurrency market (USD).
type GlobalMetrics struct {
	ActiveCryptocurrencies int             `json:"active_cryptocurrencies"`
	BTCDominance           float64         `json:"btc_dominance"`
	ETHDominance           float64         `json:"eth_dominance"`
	TotalMarketCap         float64         `json:"total_market_cap"`
	TotalVolume24h         float64         `json:"total_volume_24h"`
	Details                json.RawMessage `json:"details,omitempty"`
}
