package store

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/forecast-aggregation/internal/forecast"
)

func series(n int, temp float64) []forecast.Record {
	base := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
	out := make([]forecast.Record, n)
	for i := range out {
		out[i] = forecast.Record{Timestamp: base.Add(time.Duration(i) * 3 * time.Hour), Temperature: temp}
	}
	return out
}

func TestMemoryStoreReplaceAndClear(t *testing.T) {
	s := NewMemoryStore("Paris")

	cur := s.Current()
	assert.Equal(t, "Paris", cur.Location)
	assert.True(t, cur.Empty())
	assert.True(t, cur.LoadedAt.IsZero())

	s.Replace("Oslo", series(4, 1))
	cur = s.Current()
	assert.Equal(t, "Oslo", cur.Location)
	assert.Len(t, cur.Records, 4)
	assert.False(t, cur.LoadedAt.IsZero())

	s.Clear()
	cur = s.Current()
	assert.Equal(t, "Oslo", cur.Location)
	assert.True(t, cur.Empty())
}

func TestMemoryStoreSnapshotsAreIsolated(t *testing.T) {
	s := NewMemoryStore("Paris")
	in := series(2, 1)
	s.Replace("Paris", in)

	in[0].Temperature = 99
	snap := s.Current()
	snap.Records[1].Temperature = 42

	again := s.Current()
	assert.Equal(t, 1.0, again.Records[0].Temperature)
	assert.Equal(t, 1.0, again.Records[1].Temperature)
}

func TestMemoryStoreReplaceIsAtomic(t *testing.T) {
	s := NewMemoryStore("A")
	s.Replace("A", series(8, 1))

	var (
		wg   sync.WaitGroup
		stop = make(chan struct{})
		bad  = make(chan string, 1)
	)

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				cur := s.Current()
				// Each writer stores a uniform series, so a reader must
				// never see two temperatures, or a location that does not
				// match its records.
				want := 1.0
				size := 8
				if cur.Location == "B" {
					want, size = 2, 5
				}
				ok := len(cur.Records) == size
				for _, r := range cur.Records {
					ok = ok && r.Temperature == want
				}
				if !ok {
					select {
					case bad <- cur.Location:
					default:
					}
					return
				}
			}
		}()
	}

	for i := 0; i < 500; i++ {
		if i%2 == 0 {
			s.Replace("B", series(5, 2))
		} else {
			s.Replace("A", series(8, 1))
		}
	}
	close(stop)
	wg.Wait()

	select {
	case loc := <-bad:
		require.Failf(t, "torn snapshot", "reader saw a mixed series for %s", loc)
	default:
	}
}
