package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"
)

// Loader is the part of forecast.Service the scheduler drives.
type Loader interface {
	Load(ctx context.Context, query string) bool
	Location() string
}

// Scheduler periodically reloads the forecast for the current location.
type Scheduler struct {
	scheduler *gocron.Scheduler
	loader    Loader
	interval  time.Duration
	timeout   time.Duration
	logger    zerolog.Logger
}

// New creates a new Scheduler. A non-positive interval disables refreshing.
func New(loader Loader, interval time.Duration, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		loader:    loader,
		interval:  interval,
		timeout:   30 * time.Second,
		logger:    logger.With().Str("component", "scheduler").Logger(),
	}
}

// Start schedules the refresh job and starts the underlying scheduler.
// The first run happens one interval after Start.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		s.logger.Info().Msg("refresh interval not set; periodic refresh disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).WaitForSchedule().Do(s.Refresh)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info().Dur("interval", s.interval).Msg("periodic refresh scheduled")
	return nil
}

// Refresh reloads the current location once.
func (s *Scheduler) Refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	location := s.loader.Location()
	s.logger.Debug().Str("location", location).Msg("running forecast refresh")

	if !s.loader.Load(ctx, "") {
		s.logger.Warn().Str("location", location).Msg("forecast refresh failed")
		return
	}
	s.logger.Debug().Str("location", location).Msg("forecast refresh completed")
}

// Stop stops the scheduler and cancels any future runs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
