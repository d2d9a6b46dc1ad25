package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/forecast-aggregation/internal/forecast"
	"github.com/i474232898/forecast-aggregation/internal/store"
	"github.com/i474232898/forecast-aggregation/internal/views"
)

var testNow = time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC)

func newTestApp(t *testing.T, fetch forecast.FetcherFunc) (*fiber.App, *forecast.Service) {
	t.Helper()

	svc := forecast.NewService(
		store.NewMemoryStore("Paris"),
		fetch,
		forecast.WithClock(func() time.Time { return testNow }),
		forecast.WithTimeZone(time.UTC),
	)
	panels := Panels{
		Current: views.NewCurrentPanel(svc),
		Daily:   views.NewDailyPanel(svc, 5),
	}
	t.Cleanup(panels.Current.Close)
	t.Cleanup(panels.Daily.Close)

	app := fiber.New()
	RegisterRoutes(app, svc, panels)
	return app, svc
}

func okFetch(context.Context, forecast.Location) ([]forecast.Record, error) {
	tag := []forecast.ConditionTag{{Description: "few clouds", IconCode: "02d"}}
	return []forecast.Record{
		{Timestamp: testNow, Temperature: 8, Conditions: tag},
		{Timestamp: testNow.Add(3 * time.Hour), Temperature: 11, Conditions: tag},
		{Timestamp: testNow.Add(27 * time.Hour), Temperature: 10, Conditions: tag},
	}, nil
}

func failFetch(context.Context, forecast.Location) ([]forecast.Record, error) {
	return nil, errors.New("upstream unavailable")
}

func doRequest(t *testing.T, app *fiber.App, method, target, body string) *http.Response {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

// TestDaysValidation verifies that the days endpoint enforces the expected
// 1-7 range for the `days` query parameter.
func TestDaysValidation(t *testing.T) {
	app, _ := newTestApp(t, okFetch)

	for _, target := range []string{
		"/api/v1/forecast/days",
		"/api/v1/forecast/days?days=8",
		"/api/v1/forecast/days?days=0",
		"/api/v1/forecast/days?days=two",
	} {
		resp := doRequest(t, app, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, target)
	}

	resp := doRequest(t, app, http.MethodGet, "/api/v1/forecast/days?days=3", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHourlyValidation(t *testing.T) {
	app, _ := newTestApp(t, okFetch)

	for _, target := range []string{
		"/api/v1/forecast/hourly?hours=24",
		"/api/v1/forecast/hourly?hours=-1",
		"/api/v1/forecast/hourly?hours=6,noon",
	} {
		resp := doRequest(t, app, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, target)
	}
}

func TestLoadAndReadViews(t *testing.T) {
	app, _ := newTestApp(t, okFetch)

	resp := doRequest(t, app, http.MethodPost, "/api/v1/forecast/load", `{"location":"Berlin,DE"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var loaded struct {
		Location string `json:"location"`
		Records  int    `json:"records"`
	}
	decode(t, resp, &loaded)
	assert.Equal(t, "Berlin,DE", loaded.Location)
	assert.Equal(t, 3, loaded.Records)

	resp = doRequest(t, app, http.MethodGet, "/api/v1/forecast/hourly?hours=12", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var hourly struct {
		Location string                 `json:"location"`
		Entries  []forecast.HourlyEntry `json:"entries"`
	}
	decode(t, resp, &hourly)
	assert.Equal(t, "Berlin,DE", hourly.Location)
	require.Len(t, hourly.Entries, 1)
	assert.Equal(t, 11.0, hourly.Entries[0].Record.Temperature)

	resp = doRequest(t, app, http.MethodGet, "/api/v1/forecast/current", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var current views.CurrentState
	decode(t, resp, &current)
	assert.True(t, current.HasData)
	require.NotNil(t, current.Current)
	assert.Equal(t, "Few clouds", current.Current.Description)

	resp = doRequest(t, app, http.MethodGet, "/api/v1/forecast/daily", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var daily views.DailyState
	decode(t, resp, &daily)
	require.Len(t, daily.Days, 2)
	assert.Equal(t, "Today", daily.Days[0].Label)
	assert.Equal(t, "Tomorrow", daily.Days[1].Label)
}

func TestLoadWithoutBodyReloadsCurrentLocation(t *testing.T) {
	var got []forecast.Location
	app, _ := newTestApp(t, func(ctx context.Context, loc forecast.Location) ([]forecast.Record, error) {
		got = append(got, loc)
		return okFetch(ctx, loc)
	})

	resp := doRequest(t, app, http.MethodPost, "/api/v1/forecast/load", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, got, 1)
	assert.Equal(t, "Paris", got[0].City)
}

func TestLoadFailureReturnsBadGateway(t *testing.T) {
	app, svc := newTestApp(t, failFetch)

	resp := doRequest(t, app, http.MethodPost, "/api/v1/forecast/load", `{"location":"Berlin"}`)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "Paris", svc.Location())

	resp = doRequest(t, app, http.MethodPost, "/api/v1/forecast/load", `{"location":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSeriesStatusAndClear(t *testing.T) {
	app, svc := newTestApp(t, okFetch)

	resp := doRequest(t, app, http.MethodGet, "/api/v1/forecast/series", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var series forecast.Series
	decode(t, resp, &series)
	assert.NotNil(t, series.Records)
	assert.Empty(t, series.Records)

	require.True(t, svc.Load(context.Background(), "Rome"))

	resp = doRequest(t, app, http.MethodGet, "/api/v1/forecast/status", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var status struct {
		Location string `json:"location"`
		State    string `json:"state"`
		HasData  bool   `json:"hasData"`
	}
	decode(t, resp, &status)
	assert.Equal(t, "Rome", status.Location)
	assert.Equal(t, "idle", status.State)
	assert.True(t, status.HasData)

	resp = doRequest(t, app, http.MethodDelete, "/api/v1/forecast/", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.False(t, svc.HasData())
	assert.Equal(t, "Rome", svc.Location())
}
