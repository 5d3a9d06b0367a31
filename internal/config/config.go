package config

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/breeze-weather/internal/weather"
)

// MinLocateTimeout is the smallest accepted bound on a device-location request.
const MinLocateTimeout = 10 * time.Second

type AppConfig struct {
	AppEnv   string
	LogLevel slog.Level
	Port     string

	// HTTPTimeout bounds every outbound provider call.
	HTTPTimeout time.Duration

	ForecastURL  string
	GeocodingURL string

	// Geocoder selection: Google, then OpenWeather, then Open-Meteo.
	GoogleGeocoderAPIKey string
	OpenWeatherAPIKey    string

	// Device location: static coordinates win over IP lookup via WeatherAPI.
	WeatherAPIKey   string
	DeviceLatitude  *float64
	DeviceLongitude *float64
	LocateTimeout   time.Duration

	DefaultPlace string
	DefaultUnits weather.UnitSystem

	// RefreshInterval re-fetches the active place periodically (0 disables).
	RefreshInterval time.Duration

	// MQTT publishing of the rendered view; disabled when MQTTBroker is empty.
	MQTTBroker   string
	MQTTPort     int
	MQTTClientID string
	MQTTTopic    string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	return FromEnv()
}

// FromEnv builds the configuration from the process environment only.
func FromEnv() (*AppConfig, error) {
	cfg := &AppConfig{}

	cfg.AppEnv = getenvDefault("APP_ENV", "dev")
	switch cfg.AppEnv {
	case "dev", "prod":
	default:
		return nil, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", cfg.AppEnv)
	}

	level, err := parseLogLevel(getenvDefault("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level
	cfg.Port = getenvDefault("PORT", "8080")

	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	cfg.ForecastURL = os.Getenv("FORECAST_URL")
	cfg.GeocodingURL = os.Getenv("GEOCODING_URL")

	cfg.GoogleGeocoderAPIKey = os.Getenv("GOOGLE_GEOCODER_API_KEY")
	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.WeatherAPIKey = os.Getenv("WEATHERAPI_API_KEY")

	if cfg.DeviceLatitude, cfg.DeviceLongitude, err = loadDeviceCoordinates(); err != nil {
		return nil, err
	}

	if cfg.LocateTimeout, err = getenvDuration("LOCATE_TIMEOUT", "12s"); err != nil {
		return nil, err
	}
	if cfg.LocateTimeout < MinLocateTimeout {
		return nil, fmt.Errorf("LOCATE_TIMEOUT must be at least %s, got %s", MinLocateTimeout, cfg.LocateTimeout)
	}

	cfg.DefaultPlace = strings.TrimSpace(getenvDefault("DEFAULT_PLACE", "Bengaluru"))
	if cfg.DefaultUnits, err = weather.ParseUnitSystem(getenvDefault("DEFAULT_UNITS", "metric")); err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_UNITS: %w", err)
	}

	if cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", "15m"); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval < 0 {
		return nil, fmt.Errorf("REFRESH_INTERVAL must not be negative")
	}

	cfg.MQTTBroker = os.Getenv("MQTT_BROKER")
	cfg.MQTTPort = getenvInt("MQTT_PORT", 1883)
	cfg.MQTTClientID = getenvDefault("MQTT_CLIENT_ID", "breeze-weather")
	cfg.MQTTTopic = getenvDefault("MQTT_TOPIC", "breeze/view")

	return cfg, nil
}

// HasDeviceCoordinates reports whether a fixed device position is configured.
func (c *AppConfig) HasDeviceCoordinates() bool {
	return c.DeviceLatitude != nil && c.DeviceLongitude != nil
}

func loadDeviceCoordinates() (*float64, *float64, error) {
	latStr := strings.TrimSpace(os.Getenv("DEVICE_LATITUDE"))
	lonStr := strings.TrimSpace(os.Getenv("DEVICE_LONGITUDE"))
	if latStr == "" && lonStr == "" {
		return nil, nil, nil
	}
	if latStr == "" || lonStr == "" {
		return nil, nil, fmt.Errorf("DEVICE_LATITUDE and DEVICE_LONGITUDE must be set together")
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil || lat < -90 || lat > 90 {
		return nil, nil, fmt.Errorf("invalid DEVICE_LATITUDE %q", latStr)
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil || lon < -180 || lon > 180 {
		return nil, nil, fmt.Errorf("invalid DEVICE_LONGITUDE %q", lonStr)
	}
	return &lat, &lon, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}

func getenvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	v := getenvDefault(key, def)
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
