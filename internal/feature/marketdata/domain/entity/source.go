// Package entity defines the domain models for the marketdata feature.
package entity

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownSource is returned when a source selector does not name a supported provider.
var ErrUnknownSource = errors.New("unknown source")

// Source identifies an upstream price-data provider.
type Source string

const (
	SourceCoinGecko     Source = "coingecko"
	SourceCoinMarketCap Source = "coinmarketcap"
)

// Sources lists every supported provider in a stable order.
func Sources() []Source {
	return []Source{SourceCoinGecko, SourceCoinMarketCap}
}

// ParseSource maps a case-insensitive provider name to a Source.
// An empty name selects CoinGecko.
func ParseSource(name string) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", string(SourceCoinGecko):
		return SourceCoinGecko, nil
	case string(SourceCoinMarketCap):
		return SourceCoinMarketCap, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSource, name)
	}
}

func (s Source) String() string { return string(s) }
