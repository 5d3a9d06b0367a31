package weather

import (
	"context"
	"time"
)

// GeoResult is a single geocoding match as returned by a Geocoder.
type GeoResult struct {
	Name        string
	Admin1      string
	CountryCode string
	Latitude    float64
	Longitude   float64
}

// Geocoder abstracts a place-name lookup (e.g. Open-Meteo geocoding, Google).
type Geocoder interface {
	Name() string
	Search(ctx context.Context, name string, limit int) ([]GeoResult, error)
}

// Forecaster abstracts the forecast data source.
type Forecaster interface {
	Name() string
	Forecast(ctx context.Context, place Place, units UnitSystem) (WeatherSnapshot, error)
}

// Coordinates is a WGS84 position.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// LocateOptions mirror what a platform geolocation service is asked for.
type LocateOptions struct {
	HighAccuracy bool
	Timeout      time.Duration
}

// Locator abstracts the device geolocation service.
type Locator interface {
	Locate(ctx context.Context, opts LocateOptions) (Coordinates, error)
}

// Store is the contract of the application-state container. Update applies fn
// atomically and returns the new state.
type Store interface {
	State() AppState
	Update(fn func(AppState) AppState) AppState
}
