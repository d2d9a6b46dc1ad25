package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Provider names accepted in PROVIDERS.
const (
	ProviderOpenWeather = "openweather"
	ProviderWeatherAPI  = "weatherapi"
	ProviderOpenMeteo   = "openmeteo"
)

type AppConfig struct {
	Port     string
	LogLevel zerolog.Level

	OpenWeatherAPIKey string
	WeatherAPIKey     string
	GeocoderAPIKey    string

	// Providers in fallback order.
	Providers []string

	// DefaultLocation is loaded at startup and used until a load for
	// another location succeeds.
	DefaultLocation string

	// TimeZone decides "today" and calendar-day boundaries.
	TimeZone *time.Location

	// RefreshInterval controls periodic reloads (0 = disabled).
	RefreshInterval time.Duration

	HTTPTimeout time.Duration

	MQTTBrokerURL string
	MQTTTopic     string
	MQTTClientID  string
}

// Load reads configuration from the environment (and a .env file, if any)
// with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg := &AppConfig{
		Port:              getenvDefault("PORT", "8080"),
		OpenWeatherAPIKey: os.Getenv("OPENWEATHER_API_KEY"),
		WeatherAPIKey:     os.Getenv("WEATHERAPI_API_KEY"),
		GeocoderAPIKey:    os.Getenv("GEOCODER_API_KEY"),
		DefaultLocation:   strings.TrimSpace(getenvDefault("DEFAULT_LOCATION", "Moscow")),
		MQTTBrokerURL:     os.Getenv("MQTT_BROKER_URL"),
		MQTTTopic:         getenvDefault("MQTT_TOPIC", "forecast/state"),
		MQTTClientID:      os.Getenv("MQTT_CLIENT_ID"),
	}

	level, err := zerolog.ParseLevel(getenvDefault("LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	cfg.LogLevel = level

	providers, err := parseProviders(getenvDefault("PROVIDERS", "openweather,weatherapi,openmeteo"))
	if err != nil {
		return nil, err
	}
	cfg.Providers = providers

	zone, err := time.LoadLocation(getenvDefault("FORECAST_TIMEZONE", "Local"))
	if err != nil {
		return nil, fmt.Errorf("invalid FORECAST_TIMEZONE: %w", err)
	}
	cfg.TimeZone = zone

	// Refresh interval: default 30 minutes; "0" disables.
	cfg.RefreshInterval, err = time.ParseDuration(getenvDefault("REFRESH_INTERVAL", "30m"))
	if err != nil {
		return nil, fmt.Errorf("invalid REFRESH_INTERVAL: %w", err)
	}

	cfg.HTTPTimeout, err = time.ParseDuration(getenvDefault("HTTP_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}

	return cfg, nil
}

func parseProviders(list string) ([]string, error) {
	var out []string
	for _, name := range strings.Split(list, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		switch name {
		case ProviderOpenWeather, ProviderWeatherAPI, ProviderOpenMeteo:
			out = append(out, name)
		default:
			return nil, fmt.Errorf("invalid PROVIDERS: unknown provider %q", name)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("invalid PROVIDERS: at least one provider is required")
	}
	return out, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
