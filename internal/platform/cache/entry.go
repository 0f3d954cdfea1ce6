// Package cache provides the expiring cache backends and the cache-through provider decorator.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"btc_backend/internal/feature/marketdata/usecase"
)

// DefaultExpiry is used when a store is built with a non-positive expiry.
const DefaultExpiry = 5 * time.Minute

// entry is the stored envelope: {"timestamp": <unix seconds>, "data": <payload>}.
type entry struct {
	Timestamp float64         `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

func newEntry(at time.Time, payload json.RawMessage) entry {
	return entry{
		Timestamp: float64(at.UnixMicro()) / 1e6,
		Data:      payload,
	}
}

// storedAtMicro recovers the write time in whole microseconds, the precision newEntry stores.
func (e entry) storedAtMicro() int64 {
	return int64(math.Round(e.Timestamp * 1e6))
}

func (e entry) storedAt() time.Time {
	return time.UnixMicro(e.storedAtMicro())
}

// fresh reports whether the entry is younger than expiry at now.
// Both sides are compared in microseconds so float rounding cannot move the boundary.
func (e entry) fresh(now time.Time, expiry time.Duration) bool {
	return now.UnixMicro()-e.storedAtMicro() < expiry.Microseconds()
}

func encodeEntry(at time.Time, payload json.RawMessage) ([]byte, error) {
	if !json.Valid(payload) {
		return nil, fmt.Errorf("%w: payload is not valid JSON", usecase.ErrCacheIO)
	}
	b, err := json.Marshal(newEntry(at, payload))
	if err != nil {
		return nil, fmt.Errorf("%w: encode entry: %v", usecase.ErrCacheIO, err)
	}
	return b, nil
}

// decodeEntry returns the payload of a fresh entry, ErrCacheMiss for a stale one.
func decodeEntry(b []byte, now time.Time, expiry time.Duration) (json.RawMessage, error) {
	var e entry
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, fmt.Errorf("%w: decode entry: %v", usecase.ErrCacheIO, err)
	}
	if !e.fresh(now, expiry) {
		return nil, usecase.ErrCacheMiss
	}
	return e.Data, nil
}

// storageID hashes a logical key into the identifier used by every backend.
func storageID(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// Option configures a store.
type Option func(*options)

type options struct {
	expiry time.Duration
	now    func() time.Time
}

// WithExpiry sets the entry lifetime. Non-positive values keep DefaultExpiry.
func WithExpiry(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.expiry = d
		}
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{expiry: DefaultExpiry, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
