package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker"

	"github.com/i474232898/breeze-weather/internal/weather"
)

const WeatherAPIIPLookupURL = "https://api.weatherapi.com/v1/ip.json"

// WeatherAPILocator implements weather.Locator with the WeatherAPI.com IP
// lookup. It is city-level at best, so HighAccuracy cannot be honoured.
type WeatherAPILocator struct {
	name    string
	apiKey  string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

func NewWeatherAPILocator(client *http.Client, apiKey string) *WeatherAPILocator {
	return &WeatherAPILocator{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: WeatherAPIIPLookupURL,
		client:  client,
		circuit: newCircuitBreaker("weatherapi"),
	}
}

func (l *WeatherAPILocator) Name() string {
	return l.name
}

func (l *WeatherAPILocator) Locate(ctx context.Context, _ weather.LocateOptions) (weather.Coordinates, error) {
	if l.apiKey == "" {
		return weather.Coordinates{}, &weather.LocationUnavailableError{Message: "weatherapi api key is not configured"}
	}

	values := url.Values{}
	values.Set("key", l.apiKey)
	values.Set("q", "auto:ip")

	body, err := doGet(ctx, l.client, l.circuit, l.name, fmt.Sprintf("%s?%s", l.baseURL, values.Encode()))
	if err != nil {
		if ctx.Err() != nil {
			return weather.Coordinates{}, ctx.Err()
		}
		return weather.Coordinates{}, &weather.LocationUnavailableError{Message: err.Error()}
	}

	var payload struct {
		Lat *float64 `json:"lat"`
		Lon *float64 `json:"lon"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return weather.Coordinates{}, &weather.LocationUnavailableError{Message: fmt.Sprintf("decode ip lookup response: %v", err)}
	}
	if payload.Lat == nil || payload.Lon == nil {
		return weather.Coordinates{}, &weather.LocationUnavailableError{Message: "ip lookup returned no coordinates"}
	}

	return weather.Coordinates{Latitude: *payload.Lat, Longitude: *payload.Lon}, nil
}

// StaticLocator reports fixed coordinates, e.g. a surveyed device position
// from configuration.
type StaticLocator struct {
	Coords weather.Coordinates
}

func (l StaticLocator) Locate(ctx context.Context, _ weather.LocateOptions) (weather.Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return weather.Coordinates{}, err
	}
	return l.Coords, nil
}
