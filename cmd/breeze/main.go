package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/breeze-weather/internal/api/http"
	"github.com/i474232898/breeze-weather/internal/config"
	"github.com/i474232898/breeze-weather/internal/logging"
	"github.com/i474232898/breeze-weather/internal/notify"
	"github.com/i474232898/breeze-weather/internal/observability"
	"github.com/i474232898/breeze-weather/internal/scheduler"
	"github.com/i474232898/breeze-weather/internal/store"
	"github.com/i474232898/breeze-weather/internal/weather"
	"github.com/i474232898/breeze-weather/internal/weather/providers"
)

const appName = "breeze-weather"

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	lg := logging.New(cfg, appName)
	slog.SetDefault(lg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	geo := selectGeocoder(cfg, httpClient)
	loc := selectLocator(cfg, httpClient)
	lg.Info("providers selected", "geocoder", geo.Name(), "locator", loc != nil)

	memStore := store.NewMemoryStore(cfg.DefaultUnits)
	resolver := weather.NewResolver(geo, loc, cfg.LocateTimeout)
	forecaster := providers.NewOpenMeteoProvider(httpClient, cfg.ForecastURL)

	// Core service orchestrating resolution, fetching and state.
	service := weather.NewService(memStore, resolver, forecaster, lg)

	// Scheduler that periodically refreshes the active place.
	sched := scheduler.New(cfg.RefreshInterval, service, lg)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	if cfg.MQTTBroker != "" {
		client := notify.NewClient(cfg, lg)
		defer client.Disconnect()

		go func() {
			if err := client.Connect(ctx); err != nil {
				lg.Warn("mqtt unavailable; views will not be published", "error", err)
				return
			}
			updates, unsubscribe := memStore.Subscribe()
			defer unsubscribe()
			notify.NewNotifier(client, cfg.MQTTTopic, lg).Run(ctx, updates)
		}()
	}

	if cfg.DefaultPlace != "" {
		go func() {
			startCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()
			if _, err := service.Search(startCtx, cfg.DefaultPlace); err != nil && !errors.Is(err, weather.ErrSuperseded) {
				lg.Warn("initial place search failed", "place", cfg.DefaultPlace, "error", err)
			}
		}()
	}

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               appName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
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
			"service": appName,
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(observability.Handler()))

	// API routes.
	httpapi.RegisterRoutes(app, service)

	go func() {
		lg.Info("http server listening", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			lg.Error("fiber server stopped", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for termination signal
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		lg.Error("error during shutdown", "error", err)
	}
}

// selectGeocoder prefers Google, then OpenWeather; Open-Meteo needs no key.
func selectGeocoder(cfg *config.AppConfig, client *http.Client) weather.Geocoder {
	switch {
	case cfg.GoogleGeocoderAPIKey != "":
		return providers.NewGoogleGeocoder(cfg.GoogleGeocoderAPIKey, cfg.HTTPTimeout)
	case cfg.OpenWeatherAPIKey != "":
		return providers.NewOpenWeatherGeocoder(client, cfg.OpenWeatherAPIKey)
	default:
		return providers.NewOpenMeteoGeocoder(client, cfg.GeocodingURL)
	}
}

// selectLocator returns nil when no location source is configured, which
// makes device location unsupported.
func selectLocator(cfg *config.AppConfig, client *http.Client) weather.Locator {
	switch {
	case cfg.HasDeviceCoordinates():
		return providers.StaticLocator{Coords: weather.Coordinates{
			Latitude:  *cfg.DeviceLatitude,
			Longitude: *cfg.DeviceLongitude,
		}}
	case cfg.WeatherAPIKey != "":
		return providers.NewWeatherAPILocator(client, cfg.WeatherAPIKey)
	default:
		return nil
	}
}
