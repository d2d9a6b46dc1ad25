package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "LOG_LEVEL", "DEFAULT_LOCATION", "FORECAST_TIMEZONE", "REFRESH_INTERVAL",
		"HTTP_TIMEOUT", "PROVIDERS", "MQTT_BROKER_URL", "MQTT_TOPIC", "MQTT_CLIENT_ID",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, zerolog.InfoLevel, cfg.LogLevel)
	assert.Equal(t, "Moscow", cfg.DefaultLocation)
	assert.Equal(t, time.Local, cfg.TimeZone)
	assert.Equal(t, 30*time.Minute, cfg.RefreshInterval)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, []string{ProviderOpenWeather, ProviderWeatherAPI, ProviderOpenMeteo}, cfg.Providers)
	assert.Equal(t, "forecast/state", cfg.MQTTTopic)
	assert.Empty(t, cfg.MQTTBrokerURL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DEFAULT_LOCATION", " Paris,FR ")
	t.Setenv("FORECAST_TIMEZONE", "UTC")
	t.Setenv("REFRESH_INTERVAL", "0")
	t.Setenv("PROVIDERS", " OpenMeteo , weatherapi,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, zerolog.DebugLevel, cfg.LogLevel)
	assert.Equal(t, "Paris,FR", cfg.DefaultLocation)
	assert.Equal(t, time.UTC, cfg.TimeZone)
	assert.Zero(t, cfg.RefreshInterval)
	assert.Equal(t, []string{ProviderOpenMeteo, ProviderWeatherAPI}, cfg.Providers)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := map[string]string{
		"PROVIDERS":         "accuweather",
		"FORECAST_TIMEZONE": "Mars/Olympus",
		"REFRESH_INTERVAL":  "soon",
		"HTTP_TIMEOUT":      "10",
		"LOG_LEVEL":         "loud",
	}

	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestParseProvidersRequiresOne(t *testing.T) {
	_, err := parseProviders(" , ")
	assert.Error(t, err)
}
