package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sony/gobreaker"

	"github.com/i474232898/breeze-weather/internal/weather"
)

const OpenWeatherGeocodingURL = "https://api.openweathermap.org/geo/1.0/direct"

// OpenWeatherGeocoder implements weather.Geocoder using the OpenWeatherMap
// direct geocoding API.
type OpenWeatherGeocoder struct {
	name    string
	apiKey  string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

func NewOpenWeatherGeocoder(client *http.Client, apiKey string) *OpenWeatherGeocoder {
	return &OpenWeatherGeocoder{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: OpenWeatherGeocodingURL,
		client:  client,
		circuit: newCircuitBreaker("openweather"),
	}
}

func (g *OpenWeatherGeocoder) Name() string {
	return g.name
}

func (g *OpenWeatherGeocoder) Search(ctx context.Context, name string, limit int) ([]weather.GeoResult, error) {
	if g.apiKey == "" {
		return nil, &weather.NetworkError{Op: "geocoding", Err: fmt.Errorf("openweather api key is not configured")}
	}
	if limit <= 0 {
		limit = 1
	}

	values := url.Values{}
	values.Set("appid", g.apiKey)
	values.Set("q", name)
	values.Set("limit", strconv.Itoa(limit))

	body, err := doGet(ctx, g.client, g.circuit, g.name, fmt.Sprintf("%s?%s", g.baseURL, values.Encode()))
	if err != nil {
		return nil, &weather.NetworkError{Op: "geocoding", Err: err}
	}

	var payload []struct {
		Name    string  `json:"name"`
		State   string  `json:"state"`
		Country string  `json:"country"` // ISO 3166 alpha-2
		Lat     float64 `json:"lat"`
		Lon     float64 `json:"lon"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &weather.NetworkError{Op: "geocoding", Err: fmt.Errorf("decode geocoding response: %w", err)}
	}

	results := make([]weather.GeoResult, 0, len(payload))
	for _, r := range payload {
		results = append(results, weather.GeoResult{
			Name:        r.Name,
			Admin1:      r.State,
			CountryCode: r.Country,
			Latitude:    r.Lat,
			Longitude:   r.Lon,
		})
	}
	return results, nil
}
