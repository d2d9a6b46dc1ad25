package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/forecast-aggregation/internal/forecast"
)

const openMeteoForecastDays = 6

// OpenMeteoProvider fetches the Open-Meteo hourly forecast. Open-Meteo needs
// coordinates, so locations go through a Geocoder first.
type OpenMeteoProvider struct {
	name     string
	baseURL  string
	geocoder Geocoder
	httpCfg  HTTPClientConfig
	circuit  *gobreaker.CircuitBreaker
}

func NewOpenMeteoProvider(client *http.Client, geo Geocoder) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		name:     "openmeteo",
		baseURL:  "https://api.open-meteo.com/v1/forecast",
		geocoder: geo,
		httpCfg:  defaultHTTPConfig(client),
		circuit:  newCircuitBreaker("openmeteo"),
	}
}

// WithBaseURL points the provider at a different endpoint.
func (p *OpenMeteoProvider) WithBaseURL(u string) *OpenMeteoProvider {
	p.baseURL = u
	return p
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

func (p *OpenMeteoProvider) FetchSeries(ctx context.Context, loc forecast.Location) ([]forecast.Record, error) {
	if p.geocoder == nil {
		return nil, errors.New("openmeteo requires a geocoder")
	}

	coords, err := p.geocoder.Geocode(ctx, loc)
	if err != nil {
		return nil, err
	}

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", strconv.FormatFloat(coords.Lat, 'f', 4, 64))
		values.Set("longitude", strconv.FormatFloat(coords.Lon, 'f', 4, 64))
		values.Set("hourly", "temperature_2m,relative_humidity_2m,wind_speed_10m,wind_direction_10m,weather_code,is_day")
		values.Set("daily", "temperature_2m_min,temperature_2m_max")
		values.Set("wind_speed_unit", "ms")
		values.Set("timeformat", "unixtime")
		values.Set("timezone", "UTC")
		values.Set("forecast_days", strconv.Itoa(openMeteoForecastDays))

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload openMeteoForecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding openmeteo forecast: %w", err)
	}

	return payload.records(), nil
}

func mapOpenMeteoCondition(code int) forecast.Condition {
	// Mapping based on Open-Meteo weather codes (simplified).
	switch {
	case code == 0:
		return forecast.ConditionClear
	case code >= 1 && code <= 3:
		return forecast.ConditionCloudy
	case code == 45 || code == 48:
		return forecast.ConditionMist
	case (code >= 51 && code <= 67) || (code >= 80 && code <= 82):
		return forecast.ConditionRain
	case (code >= 71 && code <= 77) || code == 85 || code == 86:
		return forecast.ConditionSnow
	case code >= 95:
		return forecast.ConditionStorm
	default:
		return forecast.ConditionUnknown
	}
}

// openMeteoDescriptions are short English texts for WMO weather codes.
var openMeteoDescriptions = map[int]string{
	0:  "clear sky",
	1:  "mainly clear",
	2:  "partly cloudy",
	3:  "overcast",
	45: "fog",
	48: "depositing rime fog",
	51: "light drizzle",
	53: "moderate drizzle",
	55: "dense drizzle",
	61: "slight rain",
	63: "moderate rain",
	65: "heavy rain",
	71: "slight snow fall",
	73: "moderate snow fall",
	75: "heavy snow fall",
	80: "slight rain showers",
	81: "moderate rain showers",
	82: "violent rain showers",
	95: "thunderstorm",
}

// Open-Meteo response structures. Hourly and daily values are parallel arrays.

type openMeteoForecastResponse struct {
	Hourly struct {
		Time          []int64   `json:"time"`
		Temperature   []float64 `json:"temperature_2m"`
		Humidity      []int     `json:"relative_humidity_2m"`
		WindSpeed     []float64 `json:"wind_speed_10m"`
		WindDirection []float64 `json:"wind_direction_10m"`
		WeatherCode   []int     `json:"weather_code"`
		IsDay         []int     `json:"is_day"`
	} `json:"hourly"`
	Daily struct {
		Time []int64   `json:"time"`
		Min  []float64 `json:"temperature_2m_min"`
		Max  []float64 `json:"temperature_2m_max"`
	} `json:"daily"`
}

func (r openMeteoForecastResponse) records() []forecast.Record {
	type minMax struct{ min, max float64 }
	days := make(map[string]minMax, len(r.Daily.Time))
	for i, t := range r.Daily.Time {
		if i < len(r.Daily.Min) && i < len(r.Daily.Max) {
			days[time.Unix(t, 0).UTC().Format("2006-01-02")] = minMax{r.Daily.Min[i], r.Daily.Max[i]}
		}
	}

	h := r.Hourly
	records := make([]forecast.Record, 0, len(h.Time))
	for i, t := range h.Time {
		ts := time.Unix(t, 0).UTC()
		rec := forecast.Record{Timestamp: ts}

		if i < len(h.Temperature) {
			rec.Temperature = h.Temperature[i]
		}
		if i < len(h.Humidity) {
			rec.Humidity = h.Humidity[i]
		}
		if i < len(h.WindSpeed) {
			rec.WindSpeed = h.WindSpeed[i]
		}
		if i < len(h.WindDirection) {
			rec.WindDirection = int(math.Round(h.WindDirection[i]))
		}
		if mm, ok := days[ts.Format("2006-01-02")]; ok {
			rec.MinTemperature, rec.MaxTemperature = mm.min, mm.max
		}
		if i < len(h.WeatherCode) {
			code := h.WeatherCode[i]
			day := i >= len(h.IsDay) || h.IsDay[i] == 1
			rec.Conditions = []forecast.ConditionTag{{
				Description: openMeteoDescriptions[code],
				IconCode:    mapOpenMeteoCondition(code).IconCode(day),
			}}
		}

		records = append(records, rec)
	}
	return records
}
