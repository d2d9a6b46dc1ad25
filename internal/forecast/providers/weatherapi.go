package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/forecast-aggregation/internal/common"
	"github.com/i474232898/forecast-aggregation/internal/forecast"
)

// weatherAPIForecastDays covers today plus the five-day daily sample.
const weatherAPIForecastDays = 6

// WeatherAPIProvider fetches the hourly forecast from WeatherAPI.com.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewWeatherAPIProvider(client *http.Client, apiKey string) *WeatherAPIProvider {
	return &WeatherAPIProvider{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: "https://api.weatherapi.com/v1/forecast.json",
		httpCfg: defaultHTTPConfig(client),
		circuit: newCircuitBreaker("weatherapi"),
	}
}

// WithBaseURL points the provider at a different endpoint.
func (p *WeatherAPIProvider) WithBaseURL(u string) *WeatherAPIProvider {
	p.baseURL = u
	return p
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

func (p *WeatherAPIProvider) FetchSeries(ctx context.Context, loc forecast.Location) ([]forecast.Record, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("weatherapi: %w", errNoAPIKey)
	}

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		values := url.Values{}
		values.Set("key", p.apiKey)
		// WeatherAPI uses "q" for location; it accepts "city,country" or "lat,lon".
		values.Set("q", loc.Query())
		values.Set("days", strconv.Itoa(weatherAPIForecastDays))
		values.Set("aqi", "no")
		values.Set("alerts", "no")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload weatherAPIForecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding weatherapi forecast: %w", err)
	}

	var records []forecast.Record
	for _, day := range payload.Forecast.ForecastDay {
		for _, h := range day.Hour {
			cond := mapWeatherAPICondition(h.Condition.Text)
			rec := forecast.Record{
				Timestamp:      time.Unix(h.TimeEpoch, 0).UTC(),
				Temperature:    h.TempC,
				MinTemperature: day.Day.MinTempC,
				MaxTemperature: day.Day.MaxTempC,
				Humidity:       h.Humidity,
				// Convert wind from kph to m/s.
				WindSpeed:     h.WindKph / 3.6,
				WindDirection: h.WindDegree,
			}
			if h.Condition.Text != "" {
				rec.Conditions = []forecast.ConditionTag{{
					Description: h.Condition.Text,
					IconCode:    cond.IconCode(h.IsDay == 1),
				}}
			}
			records = append(records, rec)
		}
	}

	return records, nil
}

func mapWeatherAPICondition(text string) forecast.Condition {
	switch {
	case text == "":
		return forecast.ConditionUnknown
	case common.HasAny(text, "thunder", "storm"):
		return forecast.ConditionStorm
	case common.HasAny(text, "snow", "sleet", "blizzard", "ice pellets"):
		return forecast.ConditionSnow
	case common.HasAny(text, "rain", "shower", "drizzle"):
		return forecast.ConditionRain
	case common.HasAny(text, "mist", "fog"):
		return forecast.ConditionMist
	case common.HasAny(text, "cloud", "overcast"):
		return forecast.ConditionCloudy
	case common.HasAny(text, "sunny", "clear"):
		return forecast.ConditionClear
	default:
		return forecast.ConditionUnknown
	}
}

// WeatherAPI forecast response structures.

type weatherAPIForecastResponse struct {
	Forecast struct {
		ForecastDay []struct {
			Day struct {
				MaxTempC float64 `json:"maxtemp_c"`
				MinTempC float64 `json:"mintemp_c"`
			} `json:"day"`
			Hour []struct {
				TimeEpoch  int64   `json:"time_epoch"`
				TempC      float64 `json:"temp_c"`
				Humidity   int     `json:"humidity"`
				WindKph    float64 `json:"wind_kph"`
				WindDegree int     `json:"wind_degree"`
				IsDay      int     `json:"is_day"`
				Condition  struct {
					Text string `json:"text"`
				} `json:"condition"`
			} `json:"hour"`
		} `json:"forecastday"`
	} `json:"forecast"`
}
