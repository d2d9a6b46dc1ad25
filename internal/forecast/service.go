package forecast

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// State is the loading state of the Service.
type State int

const (
	StateIdle State = iota
	StateLoading
)

func (s State) String() string {
	if s == StateLoading {
		return "loading"
	}
	return "idle"
}

// Load results reported to an Observer.
const (
	ResultSuccess     = "success"
	ResultFetchFailed = "fetch_failed"
	ResultEmpty       = "empty"
	ResultNoLocation  = "no_location"
)

var errNoLocation = errors.New("no location to load")

// Observer receives service events, typically to export metrics.
type Observer interface {
	LoadFinished(result string, elapsed time.Duration, records int)
	Notified(subscribers int)
	SubscribersChanged(count int)
}

type nopObserver struct{}

func (nopObserver) LoadFinished(string, time.Duration, int) {}
func (nopObserver) Notified(int)                            {}
func (nopObserver) SubscribersChanged(int)                  {}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = logger.With().Str("component", "forecast-service").Logger()
	}
}

// WithClock overrides the source of "now".
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithTimeZone sets the zone used for "today" and calendar-day bucketing.
func WithTimeZone(zone *time.Location) Option {
	return func(s *Service) {
		if zone != nil {
			s.zone = zone
		}
	}
}

// WithObserver registers an Observer for load and notification events.
func WithObserver(o Observer) Option {
	return func(s *Service) {
		if o != nil {
			s.observer = o
		}
	}
}

// Service orchestrates fetching a forecast series, storing it and notifying
// subscribers. The current location lives in the store and changes only
// through a successful Load.
type Service struct {
	store    Store
	fetcher  Fetcher
	logger   zerolog.Logger
	now      func() time.Time
	zone     *time.Location
	observer Observer

	inFlight atomic.Int32
	subs     registry
}

// NewService creates a new Service.
func NewService(store Store, fetcher Fetcher, opts ...Option) *Service {
	s := &Service{
		store:    store,
		fetcher:  fetcher,
		logger:   zerolog.Nop(),
		now:      time.Now,
		zone:     time.Local,
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load fetches the forecast for query and, on success, replaces the stored
// series and notifies subscribers. An empty or blank query reloads the
// currently stored location. Fetch failures and empty results leave the
// stored series untouched, raise no notification and return false.
//
// Concurrent loads are allowed and not coalesced; whichever completes last
// determines the stored series.
func (s *Service) Load(ctx context.Context, query string) bool {
	location := strings.TrimSpace(query)
	if location == "" {
		location = s.store.Current().Location
	}

	logger := s.logger.With().
		Str("load_id", uuid.NewString()).
		Str("location", location).
		Logger()

	start := time.Now()
	s.inFlight.Add(1)
	n, err := s.load(ctx, location)
	s.inFlight.Add(-1)
	elapsed := time.Since(start)

	if err != nil {
		result := ResultFetchFailed
		switch {
		case errors.Is(err, ErrEmptyResult):
			result = ResultEmpty
		case errors.Is(err, errNoLocation):
			result = ResultNoLocation
		}
		s.observer.LoadFinished(result, elapsed, 0)
		logger.Warn().Err(err).Dur("elapsed", elapsed).Msg("forecast load failed; keeping previous series")
		return false
	}

	s.observer.LoadFinished(ResultSuccess, elapsed, n)
	logger.Info().Int("records", n).Dur("elapsed", elapsed).Msg("forecast loaded")

	s.notify()
	return true
}

func (s *Service) load(ctx context.Context, location string) (n int, err error) {
	if location == "" {
		return 0, errNoLocation
	}

	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("%w: fetcher panic: %v", ErrFetchFailed, r)
		}
	}()

	records, err := s.fetcher.FetchSeries(ctx, ParseLocation(location))
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrFetchFailed, s.fetcher.Name(), err)
	}

	records = Normalize(records)
	if len(records) == 0 {
		return 0, ErrEmptyResult
	}

	s.store.Replace(location, records)
	return len(records), nil
}

// ClearData empties the stored series and always notifies subscribers, even
// if the series was already empty.
func (s *Service) ClearData() {
	s.store.Clear()
	s.logger.Info().Msg("forecast data cleared")
	s.notify()
}

// Subscribe registers h to be called after every data change. Handlers are
// invoked in registration order. A nil handler is ignored and yields an
// invalid Subscription.
func (s *Service) Subscribe(h Handler) Subscription {
	if h == nil {
		return Subscription{}
	}
	sub := s.subs.add(h)
	s.observer.SubscribersChanged(s.subs.len())
	return sub
}

// Unsubscribe removes a registration. It reports whether one was removed.
func (s *Service) Unsubscribe(sub Subscription) bool {
	removed := s.subs.remove(sub)
	if removed {
		s.observer.SubscribersChanged(s.subs.len())
	}
	return removed
}

// notify runs every handler with no lock held, so handlers may call back
// into the Service, including Load and ClearData.
func (s *Service) notify() {
	handlers := s.subs.snapshot()
	for _, reg := range handlers {
		s.invoke(reg)
	}
	s.observer.Notified(len(handlers))
}

func (s *Service) invoke(reg registration) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Str("subscription", reg.id.String()).
				Interface("panic", r).
				Msg("subscriber panicked")
		}
	}()
	reg.handler()
}

// State reports whether any load is in flight.
func (s *Service) State() State {
	if s.inFlight.Load() > 0 {
		return StateLoading
	}
	return StateIdle
}

// HasData reports whether the stored series is non-empty.
func (s *Service) HasData() bool {
	return !s.store.Current().Empty()
}

// Location returns the currently stored location.
func (s *Service) Location() string {
	return s.store.Current().Location
}

// Series returns a snapshot of the stored series.
func (s *Service) Series() Series {
	return s.store.Current()
}

// Now returns the current instant in the service's reference zone.
func (s *Service) Now() time.Time {
	return s.now().In(s.zone)
}

// Current selects the current reading from the stored series.
func (s *Service) Current() (Record, bool) {
	return SelectCurrent(s.store.Current().Records, s.Now())
}

// Hourly selects today's sample at the given hours (DefaultTargetHours if none).
func (s *Service) Hourly(hours ...int) []HourlyEntry {
	return SelectHourly(s.store.Current().Records, s.Now(), hours)
}

// Daily selects up to maxDays daily entries (DefaultDailyDays if <= 0).
func (s *Service) Daily(maxDays int) []DailyEntry {
	return SelectDaily(s.store.Current().Records, s.Now(), maxDays)
}
