package entity

import (
	"encoding/json"
	"fmt"
	"sort"
)

// PricePoint is a single sample of a time series.
// Producers may emit points in any order.
type PricePoint struct {
	TimestampMillis int64
	Value           float64
}

// MarshalJSON encodes the point as the upstream [timestampMillis, value] pair.
func (p PricePoint) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{float64(p.TimestampMillis), p.Value})
}

// UnmarshalJSON accepts a [timestampMillis, value] pair.
func (p *PricePoint) UnmarshalJSON(b []byte) error {
	var pair []float64
	if err := json.Unmarshal(b, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("price point: expected 2 elements, got %d", len(pair))
	}
	p.TimestampMillis = int64(pair[0])
	p.Value = pair[1]
	return nil
}

// HistoricalSeries holds parallel price, market cap and volume series.
type HistoricalSeries struct {
	Days       int          `json:"days"`
	Prices     []PricePoint `json:"prices"`
	MarketCaps []PricePoint `json:"market_caps"`
	Volumes    []PricePoint `json:"volumes"`
}

// SortedByTime returns a copy of the series with all three slices ordered by price timestamp.
// Volumes and market caps stay index-aligned with prices; a missing entry becomes a zero value.
func (s HistoricalSeries) SortedByTime() HistoricalSeries {
	idx := make([]int, len(s.Prices))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return s.Prices[idx[a]].TimestampMillis < s.Prices[idx[b]].TimestampMillis
	})

	return HistoricalSeries{
		Days:       s.Days,
		Prices:     reorder(s.Prices, s.Prices, idx),
		MarketCaps: reorder(s.MarketCaps, s.Prices, idx),
		Volumes:    reorder(s.Volumes, s.Prices, idx),
	}
}

func reorder(src, prices []PricePoint, idx []int) []PricePoint {
	if len(src) == 0 {
		return nil
	}
	out := make([]PricePoint, len(idx))
	for i, j := range idx {
		if j < len(src) {
			out[i] = src[j]
			continue
		}
		out[i] = PricePoint{TimestampMillis: prices[j].TimestampMillis}
	}
	return out
}
