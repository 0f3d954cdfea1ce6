package usecase

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"btc_backend/internal/feature/marketdata/domain/entity"
	"btc_backend/internal/feature/marketdata/domain/timeframe"
)

// VolumeMode controls how per-point volume is folded into a bucket.
type VolumeMode int

const (
	// VolumeSum adds up the volume of every point in the bucket.
	VolumeSum VolumeMode = iota
	// VolumeZero leaves bucket volume at 0, matching the legacy cache files.
	VolumeZero
)

// ParseVolumeMode accepts "sum" (or empty) and "zero".
func ParseVolumeMode(s string) (VolumeMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sum":
		return VolumeSum, nil
	case "zero":
		return VolumeZero, nil
	default:
		return 0, fmt.Errorf("unknown volume mode %q (use sum or zero)", s)
	}
}

func (m VolumeMode) String() string {
	if m == VolumeZero {
		return "zero"
	}
	return "sum"
}

// Aggregator converts price series into OHLCV candles.
type Aggregator struct {
	volumeMode VolumeMode
	logger     *slog.Logger
}

// NewAggregator creates an Aggregator. A nil logger uses slog.Default().
func NewAggregator(mode VolumeMode, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{volumeMode: mode, logger: logger}
}

// FromUniformSeries builds one degenerate candle per point (open = high = low = close = price).
// Volume for index i is volumes[i] when present, else 0.
func (a *Aggregator) FromUniformSeries(points, volumes []entity.PricePoint) []entity.Candle {
	out := make([]entity.Candle, 0, len(points))
	for i, p := range points {
		var vol float64
		if i < len(volumes) {
			vol = volumes[i].Value
		}
		out = append(out, entity.Candle{
			BucketStart: time.UnixMilli(p.TimestampMillis).UTC(),
			Open:        p.Value,
			High:        p.Value,
			Low:         p.Value,
			Close:       p.Value,
			Volume:      vol,
			SampleCount: 1,
		})
	}
	return out
}

// Aggregate buckets points into candles of the given timeframe.
//
// Points are folded in input order, so close is the last point processed for each
// bucket; callers must pass points chronologically for close to be meaningful.
// An unknown label yields an empty slice and an error wrapping ErrInvalidTimeframe.
func (a *Aggregator) Aggregate(points []entity.PricePoint, label string) ([]entity.Candle, error) {
	return a.aggregate(points, nil, label)
}

// AggregateSeries is Aggregate over series.Prices, with series.Volumes zipped by index.
func (a *Aggregator) AggregateSeries(series entity.HistoricalSeries, label string) ([]entity.Candle, error) {
	return a.aggregate(series.Prices, series.Volumes, label)
}

type bucket struct {
	candle entity.Candle
	start  int64
}

func (a *Aggregator) aggregate(points, volumes []entity.PricePoint, label string) ([]entity.Candle, error) {
	tf, err := timeframe.Resolve(label)
	if err != nil {
		a.logger.Error("invalid timeframe", "timeframe", label)
		return []entity.Candle{}, err
	}
	width := tf.Seconds()

	buckets := make(map[int64]*bucket)
	for i, p := range points {
		start := floorDiv(floorDiv(p.TimestampMillis, 1000), width) * width

		b, ok := buckets[start]
		if !ok {
			b = &bucket{start: start, candle: entity.Candle{
				BucketStart: time.Unix(start, 0).UTC(),
				Open:        p.Value,
				High:        p.Value,
				Low:         p.Value,
			}}
			buckets[start] = b
		}
		c := &b.candle
		c.High = max(c.High, p.Value)
		c.Low = min(c.Low, p.Value)
		c.Close = p.Value
		c.SampleCount++
		if a.volumeMode == VolumeSum && i < len(volumes) {
			c.Volume += volumes[i].Value
		}
	}

	ordered := make([]*bucket, 0, len(buckets))
	for _, b := range buckets {
		ordered = append(ordered, b)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].start < ordered[j].start })

	out := make([]entity.Candle, len(ordered))
	for i, b := range ordered {
		out[i] = b.candle
	}
	return out, nil
}

// floorDiv rounds toward negative infinity so pre-1970 timestamps land in the right bucket.
func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
