package entity

import "time"

// FetchResult is the normalized envelope returned by every adapter operation.
// Body carries the operation-specific payload.
type FetchResult[T any] struct {
	Source    Source    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
	Body      T         `json:"data"`
}

// NewFetchResult stamps body with the given source and time (UTC).
func NewFetchResult[T any](source Source, at time.Time, body T) *FetchResult[T] {
	return &FetchResult[T]{Source: source, Timestamp: at.UTC(), Body: body}
}
