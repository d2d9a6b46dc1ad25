package store

import (
	"sync"
	"time"

	"github.com/i474232898/forecast-aggregation/internal/forecast"
)

// MemoryStore is a concurrency-safe in-memory holder of exactly one forecast
// series. The stored series is never modified in place: Replace and Clear
// build a new value and swap it in under the write lock, so readers always
// observe either the old or the new series in full.
//
// Clear keeps the last location; only a successful Replace changes it.
type MemoryStore struct {
	mu     sync.RWMutex
	series *forecast.Series
}

var _ forecast.Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store for the given default location.
func NewMemoryStore(defaultLocation string) *MemoryStore {
	return &MemoryStore{
		series: &forecast.Series{Location: defaultLocation},
	}
}

// Replace swaps in a new series. The records are copied as given; ordering
// and de-duplication are the caller's responsibility.
func (s *MemoryStore) Replace(location string, records []forecast.Record) {
	next := &forecast.Series{
		Location: location,
		Records:  cloneRecords(records),
		LoadedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.series = next
	s.mu.Unlock()
}

// Current returns a snapshot of the stored series. The returned record slice
// is a private copy and may be modified by the caller.
func (s *MemoryStore) Current() forecast.Series {
	s.mu.RLock()
	cur := s.series
	s.mu.RUnlock()

	return forecast.Series{
		Location: cur.Location,
		Records:  cloneRecords(cur.Records),
		LoadedAt: cur.LoadedAt,
	}
}

// Clear empties the series and retains its location.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.series = &forecast.Series{Location: s.series.Location}
}

func cloneRecords(records []forecast.Record) []forecast.Record {
	if len(records) == 0 {
		return nil
	}
	out := make([]forecast.Record, len(records))
	copy(out, records)
	return out
}
