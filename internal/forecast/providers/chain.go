package providers

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/i474232898/forecast-aggregation/internal/forecast"
)

var errNoProviders = errors.New("no forecast providers configured")

// Chain tries providers in order and returns the first non-empty series.
type Chain struct {
	providers []forecast.Fetcher
	logger    zerolog.Logger
}

var _ forecast.Fetcher = (*Chain)(nil)

// NewChain creates a Chain over the given providers.
func NewChain(logger zerolog.Logger, providers ...forecast.Fetcher) *Chain {
	return &Chain{
		providers: providers,
		logger:    logger.With().Str("component", "provider-chain").Logger(),
	}
}

func (c *Chain) Name() string {
	return "chain"
}

// FetchSeries returns the first provider's non-empty result. If every
// provider fails or returns nothing, the errors are joined.
func (c *Chain) FetchSeries(ctx context.Context, loc forecast.Location) ([]forecast.Record, error) {
	if len(c.providers) == 0 {
		return nil, errNoProviders
	}

	var errs []error
	for _, p := range c.providers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		records, err := p.FetchSeries(ctx, loc)
		if err != nil {
			c.logger.Warn().
				Err(err).
				Str("provider", p.Name()).
				Str("location", loc.Query()).
				Msg("provider fetch failed")
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}
		if len(records) == 0 {
			c.logger.Warn().
				Str("provider", p.Name()).
				Str("location", loc.Query()).
				Msg("provider returned no records")
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), forecast.ErrEmptyResult))
			continue
		}

		c.logger.Debug().
			Str("provider", p.Name()).
			Int("records", len(records)).
			Msg("provider fetch succeeded")
		return records, nil
	}

	return nil, errors.Join(errs...)
}
