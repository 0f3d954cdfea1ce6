// Package timeframe holds the fixed table of supported candle widths.
package timeframe

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidTimeframe is returned for labels outside the supported set.
var ErrInvalidTimeframe = errors.New("invalid timeframe")

// Timeframe is a named bucket width.
type Timeframe struct {
	Label   string
	Minutes int
}

// Duration returns the bucket width as a time.Duration.
func (tf Timeframe) Duration() time.Duration {
	return time.Duration(tf.Minutes) * time.Minute
}

// Seconds returns the bucket width in seconds.
func (tf Timeframe) Seconds() int64 {
	return int64(tf.Minutes) * 60
}

// table is ordered by ascending width and never mutated.
var table = []Timeframe{
	{Label: "1m", Minutes: 1},
	{Label: "5m", Minutes: 5},
	{Label: "15m", Minutes: 15},
	{Label: "30m", Minutes: 30},
	{Label: "1h", Minutes: 60},
	{Label: "4h", Minutes: 240},
	{Label: "1d", Minutes: 1440},
	{Label: "7d", Minutes: 10080},
	{Label: "30d", Minutes: 43200},
}

var byLabel = func() map[string]Timeframe {
	m := make(map[string]Timeframe, len(table))
	for _, tf := range table {
		m[tf.Label] = tf
	}
	return m
}()

// Resolve looks up a label. Labels are case-sensitive ("1h", not "1H").
func Resolve(label string) (Timeframe, error) {
	tf, ok := byLabel[label]
	if !ok {
		return Timeframe{}, fmt.Errorf("%w: %q", ErrInvalidTimeframe, label)
	}
	return tf, nil
}

// Labels returns the supported labels ordered by width.
func Labels() []string {
	out := make([]string, len(table))
	for i, tf := range table {
		out[i] = tf.Label
	}
	return out
}
