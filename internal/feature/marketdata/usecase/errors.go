// Package usecase implements the business logic for the marketdata feature.
package usecase

import (
	"errors"
	"fmt"

	"btc_backend/internal/feature/marketdata/domain/entity"
	"btc_backend/internal/feature/marketdata/domain/timeframe"
)

var (
	// ErrCacheMiss is returned by a CacheStore when no fresh entry exists for a key.
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheIO wraps storage failures inside a CacheStore. It is never returned to facade callers.
	ErrCacheIO = errors.New("cache i/o error")

	// ErrUpstreamRequest is the kind of every network, timeout, HTTP status or decode failure of a provider call.
	ErrUpstreamRequest = errors.New("upstream request failed")

	// ErrUnsupportedTimeframe is returned for valid labels the upstream endpoints cannot serve (e.g. "1m").
	ErrUnsupportedTimeframe = errors.New("timeframe not supported by upstream data")

	// ErrUnsupportedOperation is returned when the selected source lacks the requested capability.
	ErrUnsupportedOperation = errors.New("operation not supported by source")

	// ErrNoData is returned when no provider is configured for a request or the upstream response holds no data.
	ErrNoData = errors.New("no data available")

	// ErrInvalidTimeframe aliases the domain error so callers only import usecase.
	ErrInvalidTimeframe = timeframe.ErrInvalidTimeframe

	// ErrUnknownSource aliases the domain error so callers only import usecase.
	ErrUnknownSource = entity.ErrUnknownSource
)

// UpstreamRequestError describes a failed provider call.
type UpstreamRequestError struct {
	Source     entity.Source
	Operation  string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *UpstreamRequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: http %d: %v", e.Source, e.Operation, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Source, e.Operation, e.Err)
}

// Unwrap exposes both ErrUpstreamRequest and the underlying cause to errors.Is/As.
func (e *UpstreamRequestError) Unwrap() []error {
	return []error{ErrUpstreamRequest, e.Err}
}
