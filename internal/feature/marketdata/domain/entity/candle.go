package entity

import "time"

// Candle represents OHLCV (Open, High, Low, Close, Volume) data for one time bucket.
type Candle struct {
	BucketStart time.Time `json:"timestamp"` // start of the bucket, aligned to the bucket width
	Open        float64   `json:"open"`
	High        float64   `json:"high"`
	Low         float64   `json:"low"`
	Close       float64   `json:"close"`
	Volume      float64   `json:"volume"`
	SampleCount int       `json:"count"` // number of price samples folded into the bucket
}

// OHLCVSeries is the body of an OHLCV FetchResult.
type OHLCVSeries struct {
	Timeframe string   `json:"timeframe"`
	Candles   []Candle `json:"ohlcv"`
}
