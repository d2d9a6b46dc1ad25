package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLoader struct {
	mu      sync.Mutex
	queries []string
	ok      bool
	hasDL   bool
}

func (l *fakeLoader) Load(ctx context.Context, query string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, l.hasDL = ctx.Deadline()
	l.queries = append(l.queries, query)
	return l.ok
}

func (l *fakeLoader) Location() string { return "Paris" }

func TestRefreshReloadsCurrentLocation(t *testing.T) {
	l := &fakeLoader{ok: true}
	s := New(l, time.Minute, zerolog.Nop())

	s.Refresh()
	l.ok = false
	s.Refresh()

	assert.Equal(t, []string{"", ""}, l.queries)
	assert.True(t, l.hasDL)
}

func TestStartDisabled(t *testing.T) {
	s := New(&fakeLoader{}, 0, zerolog.Nop())
	require.NoError(t, s.Start())
	assert.Equal(t, 0, s.scheduler.Len())
	s.Stop()
}

func TestStartSchedulesRefresh(t *testing.T) {
	l := &fakeLoader{ok: true}
	s := New(l, time.Hour, zerolog.Nop())
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Equal(t, 1, s.scheduler.Len())
	assert.True(t, s.scheduler.IsRunning())

	// The first run waits a full interval.
	l.mu.Lock()
	defer l.mu.Unlock()
	assert.Empty(t, l.queries)
}
