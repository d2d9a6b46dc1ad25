package forecast

import (
	"context"
	"errors"
)

var (
	// ErrFetchFailed marks a transport or non-success response from a fetcher.
	ErrFetchFailed = errors.New("forecast fetch failed")

	// ErrEmptyResult marks a well-formed response that carried zero records.
	ErrEmptyResult = errors.New("forecast fetch returned no records")
)

// Fetcher abstracts a forecast source (e.g. OpenWeatherMap, WeatherAPI, Open-Meteo).
// Implementations return already-parsed records; order is not required.
type Fetcher interface {
	Name() string
	FetchSeries(ctx context.Context, loc Location) ([]Record, error)
}

// FetcherFunc adapts a plain function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, loc Location) ([]Record, error)

// Name implements Fetcher.
func (f FetcherFunc) Name() string { return "func" }

// FetchSeries implements Fetcher.
func (f FetcherFunc) FetchSeries(ctx context.Context, loc Location) ([]Record, error) {
	return f(ctx, loc)
}

// Store is the contract the in-memory series store must satisfy.
// Replace and Clear never fail; Current is safe to call concurrently with both.
type Store interface {
	Replace(location string, records []Record)
	Current() Series
	Clear()
}
