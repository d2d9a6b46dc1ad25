package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	httpapi "github.com/i474232898/forecast-aggregation/internal/api/http"
	"github.com/i474232898/forecast-aggregation/internal/config"
	"github.com/i474232898/forecast-aggregation/internal/forecast"
	"github.com/i474232898/forecast-aggregation/internal/forecast/providers"
	"github.com/i474232898/forecast-aggregation/internal/metrics"
	"github.com/i474232898/forecast-aggregation/internal/publish"
	"github.com/i474232898/forecast-aggregation/internal/scheduler"
	"github.com/i474232898/forecast-aggregation/internal/store"
	"github.com/i474232898/forecast-aggregation/internal/views"
)

const serviceName = "forecast-aggregation"

func main() {
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger()

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	log = log.Level(cfg.LogLevel)

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	fetcher := providers.NewChain(log, buildProviders(cfg, httpClient, log)...)
	recorder := metrics.New()

	// Core service: one in-memory series, subscribers notified on change.
	service := forecast.NewService(
		store.NewMemoryStore(cfg.DefaultLocation),
		fetcher,
		forecast.WithLogger(log),
		forecast.WithTimeZone(cfg.TimeZone),
		forecast.WithObserver(recorder),
	)

	panels := httpapi.Panels{
		Current: views.NewCurrentPanel(service),
		Daily:   views.NewDailyPanel(service, forecast.DefaultDailyDays),
	}
	defer panels.Current.Close()
	defer panels.Daily.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.MQTTBrokerURL != "" {
		client, err := publish.Connect(cfg.MQTTBrokerURL, cfg.MQTTClientID, log)
		if err != nil {
			log.Error().Err(err).Msg("mqtt unavailable; state publishing disabled")
		} else {
			defer client.Disconnect(1000)
			bridge := publish.NewBridge(client, service, cfg.MQTTTopic, log)
			go func() {
				if err := bridge.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					log.Error().Err(err).Msg("mqtt bridge stopped")
				}
			}()
		}
	}

	// Initial load of the default location; failures are retried by the scheduler.
	go func() {
		loadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if !service.Load(loadCtx, cfg.DefaultLocation) {
			log.Warn().Str("location", cfg.DefaultLocation).Msg("initial forecast load failed")
		}
	}()

	sched := scheduler.New(service, cfg.RefreshInterval, log)
	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		// Loads wait on the provider chain, so allow more than one provider timeout.
		WriteTimeout: 2 * time.Minute,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": serviceName,
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(recorder.Handler()))

	// API routes.
	httpapi.RegisterRoutes(app, service, panels)

	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error().Err(err).Msg("fiber server stopped")
		}
	}()

	// Wait for termination signal
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
}

// buildProviders creates the configured providers in fallback order.
// Providers missing their credentials are skipped.
func buildProviders(cfg *config.AppConfig, client *http.Client, log zerolog.Logger) []forecast.Fetcher {
	var provs []forecast.Fetcher

	for _, name := range cfg.Providers {
		switch name {
		case config.ProviderOpenWeather:
			if cfg.OpenWeatherAPIKey == "" {
				log.Warn().Str("provider", name).Msg("OPENWEATHER_API_KEY not set; provider skipped")
				continue
			}
			provs = append(provs, providers.NewOpenWeatherProvider(client, cfg.OpenWeatherAPIKey))
		case config.ProviderWeatherAPI:
			if cfg.WeatherAPIKey == "" {
				log.Warn().Str("provider", name).Msg("WEATHERAPI_API_KEY not set; provider skipped")
				continue
			}
			provs = append(provs, providers.NewWeatherAPIProvider(client, cfg.WeatherAPIKey))
		case config.ProviderOpenMeteo:
			// Open-Meteo does not require an API key, but geocoding requires a Google API key.
			if cfg.GeocoderAPIKey == "" {
				log.Warn().Str("provider", name).Msg("GEOCODER_API_KEY not set; provider skipped")
				continue
			}
			provs = append(provs, providers.NewOpenMeteoProvider(client, providers.NewGoogleGeocoder(cfg.GeocoderAPIKey)))
		}
	}

	if len(provs) == 0 {
		log.Warn().Msg("no forecast providers available; every load will fail")
	}
	return provs
}
