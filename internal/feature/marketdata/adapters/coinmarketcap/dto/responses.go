// Package dto defines data transfer objects for the CoinMarketCap API responses.
package dto

import "encoding/json"

// Status is the status block present in every CoinMarketCap response.
type Status struct {
	ErrorCode    int    `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

// QuotesLatestResponse represents /cryptocurrency/quotes/latest keyed by symbol.
type QuotesLatestResponse struct {
	Status Status                    `json:"status"`
	Data   map[string]Cryptocurrency `json:"data"`
}

// Cryptocurrency is one entry of the quotes response.
type Cryptocurrency struct {
	ID     int                 `json:"id"`
	Name   string              `json:"name"`
	Symbol string              `json:"symbol"`
	Quote  map[string]QuoteDTO `json:"quote"`
}

// QuoteDTO is the quote in one convert currency.
type QuoteDTO struct {
	Price            float64 `json:"price"`
	Volume24h        float64 `json:"volume_24h"`
	PercentChange24h float64 `json:"percent_change_24h"`
	MarketCap        float64 `json:"market_cap"`
}

// InfoResponse represents /cryptocurrency/info keyed by symbol. Entries are kept raw.
type InfoResponse struct {
	Status Status                     `json:"status"`
	Data   map[string]json.RawMessage `json:"data"`
}

// InfoEntry is the subset of an info entry that is normalized.
type InfoEntry struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	Slug   string `json:"slug"`
}

// GlobalMetricsResponse represents /global-metrics/quotes/latest. Data is kept raw.
type GlobalMetricsResponse struct {
	Status Status          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

// GlobalMetricsData is the subset of the global metrics payload that is normalized.
type GlobalMetricsData struct {
	ActiveCryptocurrencies int     `json:"active_cryptocurrencies"`
	BTCDominance           float64 `json:"btc_dominance"`
	ETHDominance           float64 `json:"eth_dominance"`
	Quote                  map[string]struct {
		TotalMarketCap float64 `json:"total_market_cap"`
		TotalVolume24h float64 `json:"total_volume_24h"`
	} `json:"quote"`
}
