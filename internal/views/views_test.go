package views

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/forecast-aggregation/internal/forecast"
	"github.com/i474232898/forecast-aggregation/internal/store"
)

var now = time.Date(2024, time.March, 10, 11, 0, 0, 0, time.UTC)

func fixture() []forecast.Record {
	rain := []forecast.ConditionTag{{Description: "light rain", IconCode: "10d"}}
	return []forecast.Record{
		{Timestamp: now.Add(-1 * time.Hour), Temperature: 9.6, Conditions: rain},
		{Timestamp: now.Add(2 * time.Hour), Temperature: 12.4, Humidity: 70, Conditions: rain},
		{Timestamp: now.Add(25 * time.Hour), Temperature: 8},
		{Timestamp: now.Add(49 * time.Hour), Temperature: 5, Conditions: []forecast.ConditionTag{{Description: "snow", IconCode: "13d"}}},
	}
}

func newSource(t *testing.T, records []forecast.Record) *forecast.Service {
	t.Helper()
	fetcher := forecast.FetcherFunc(func(context.Context, forecast.Location) ([]forecast.Record, error) {
		return records, nil
	})
	return forecast.NewService(
		store.NewMemoryStore("Paris"),
		fetcher,
		forecast.WithClock(func() time.Time { return now }),
		forecast.WithTimeZone(time.UTC),
	)
}

func TestCurrentPanelRendersOnLoad(t *testing.T) {
	svc := newSource(t, fixture())
	p := NewCurrentPanel(svc, 12, 18)
	defer p.Close()

	st := p.State()
	assert.Equal(t, "Paris", st.Location)
	assert.False(t, st.HasData)
	assert.Nil(t, st.Current)
	assert.Empty(t, st.Hourly)

	require.True(t, svc.Load(context.Background(), ""))

	st = p.State()
	require.True(t, st.HasData)
	require.NotNil(t, st.Current)
	assert.Equal(t, "10°C", st.Current.TemperatureLabel)
	assert.Equal(t, "Light rain", st.Current.Description)
	assert.Equal(t, "https://openweathermap.org/img/wn/10d@2x.png", st.Current.IconURL)

	require.Len(t, st.Hourly, 2)
	assert.Equal(t, "12:00", st.Hourly[0].Label)
	assert.Equal(t, "18:00", st.Hourly[1].Label)
	assert.Equal(t, "12°C", st.Hourly[0].TemperatureLabel)
}

func TestInactivePanelCatchesUpWhenActivated(t *testing.T) {
	svc := newSource(t, fixture())
	p := NewCurrentPanel(svc)
	defer p.Close()

	p.SetActive(false)
	assert.False(t, p.Active())

	require.True(t, svc.Load(context.Background(), ""))
	assert.False(t, p.State().HasData)

	p.SetActive(true)
	assert.True(t, p.State().HasData)

	svc.ClearData()
	assert.False(t, p.State().HasData)
}

func TestClosedPanelStopsFollowing(t *testing.T) {
	svc := newSource(t, fixture())
	p := NewDailyPanel(svc, 5)
	p.Close()

	require.True(t, svc.Load(context.Background(), ""))
	assert.False(t, p.State().HasData)
}

func TestDailyPanelSkipsDaysWithoutCondition(t *testing.T) {
	svc := newSource(t, fixture())
	p := NewDailyPanel(svc, 0)
	defer p.Close()

	require.True(t, svc.Load(context.Background(), ""))

	st := p.State()
	require.True(t, st.HasData)
	require.Len(t, st.Days, 2)
	assert.Equal(t, "Today", st.Days[0].Label)
	assert.Equal(t, "12 Mar", st.Days[1].Label)
	assert.Equal(t, "Snow", st.Days[1].Description)
}

func TestDayLabel(t *testing.T) {
	assert.Equal(t, "Today", DayLabel(now.Add(10*time.Hour), now))
	assert.Equal(t, "Tomorrow", DayLabel(now.Add(24*time.Hour), now))
	assert.Equal(t, "15 Mar", DayLabel(now.AddDate(0, 0, 5), now))
}

func TestIconURL(t *testing.T) {
	assert.Equal(t, "", IconURL(""))
	assert.Equal(t, "https://openweathermap.org/img/wn/01n@2x.png", IconURL("01n"))
}
