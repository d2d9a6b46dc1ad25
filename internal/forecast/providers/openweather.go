package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/forecast-aggregation/internal/forecast"
)

const openWeatherTimeLayout = "2006-01-02 15:04:05"

// OpenWeatherProvider fetches the OpenWeatherMap 5-day / 3-hour forecast.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenWeatherProvider(client *http.Client, apiKey string) *OpenWeatherProvider {
	return &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org/data/2.5/forecast",
		httpCfg: defaultHTTPConfig(client),
		circuit: newCircuitBreaker("openweather"),
	}
}

// WithBaseURL points the provider at a different endpoint.
func (p *OpenWeatherProvider) WithBaseURL(u string) *OpenWeatherProvider {
	p.baseURL = u
	return p
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

func (p *OpenWeatherProvider) FetchSeries(ctx context.Context, loc forecast.Location) ([]forecast.Record, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("openweather: %w", errNoAPIKey)
	}

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		values := url.Values{}
		values.Set("q", loc.Query())
		values.Set("units", "metric")
		values.Set("appid", p.apiKey)

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload openWeatherForecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding openweather forecast: %w", err)
	}

	records := make([]forecast.Record, 0, len(payload.List))
	for _, item := range payload.List {
		ts, ok := item.timestamp()
		if !ok {
			continue
		}

		rec := forecast.Record{
			Timestamp:      ts,
			Temperature:    item.Main.Temp,
			MinTemperature: item.Main.TempMin,
			MaxTemperature: item.Main.TempMax,
			Humidity:       item.Main.Humidity,
			WindSpeed:      item.Wind.Speed,
			WindDirection:  item.Wind.Deg,
		}
		for _, w := range item.Weather {
			icon := w.Icon
			if icon == "" {
				icon = mapOpenWeatherCondition(w.Main).IconCode(item.Sys.Pod != "n")
			}
			rec.Conditions = append(rec.Conditions, forecast.ConditionTag{
				Description: w.Description,
				IconCode:    icon,
			})
		}
		records = append(records, rec)
	}

	return records, nil
}

// mapOpenWeatherCondition normalizes the "main" group of a weather entry.
func mapOpenWeatherCondition(main string) forecast.Condition {
	switch main {
	case "Clear":
		return forecast.ConditionClear
	case "Clouds":
		return forecast.ConditionCloudy
	case "Rain", "Drizzle":
		return forecast.ConditionRain
	case "Snow":
		return forecast.ConditionSnow
	case "Thunderstorm":
		return forecast.ConditionStorm
	case "Mist", "Fog", "Haze", "Smoke", "Dust", "Sand", "Ash":
		return forecast.ConditionMist
	default:
		return forecast.ConditionUnknown
	}
}

// OpenWeatherMap forecast response structures.

type openWeatherForecastResponse struct {
	List []openWeatherListItem `json:"list"`
}

type openWeatherListItem struct {
	Dt    int64  `json:"dt"`
	DtTxt string `json:"dt_txt"`
	Main  struct {
		Temp     float64 `json:"temp"`
		TempMin  float64 `json:"temp_min"`
		TempMax  float64 `json:"temp_max"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
		Deg   int     `json:"deg"`
	} `json:"wind"`
	Sys struct {
		Pod string `json:"pod"` // part of day: "d" or "n"
	} `json:"sys"`
}

// timestamp prefers the unix "dt" field and falls back to "dt_txt", which
// OpenWeatherMap always reports in UTC.
func (i openWeatherListItem) timestamp() (time.Time, bool) {
	if i.Dt > 0 {
		return time.Unix(i.Dt, 0).UTC(), true
	}
	ts, err := time.ParseInLocation(openWeatherTimeLayout, i.DtTxt, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}
