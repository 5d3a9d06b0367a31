package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/breeze-weather/internal/weather"
)

const (
	OpenMeteoForecastURL  = "https://api.open-meteo.com/v1/forecast"
	OpenMeteoGeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"
)

var (
	forecastCurrentFields = []string{"temperature_2m", "apparent_temperature", "wind_speed_10m", "weather_code"}
	forecastHourlyFields  = []string{"temperature_2m", "precipitation_probability"}
	forecastDailyFields   = []string{"weather_code", "temperature_2m_max", "temperature_2m_min", "precipitation_probability_max"}
)

// OpenMeteoProvider implements the weather.Forecaster interface for Open-Meteo.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
	now     func() time.Time
}

// NewOpenMeteoProvider creates a forecast provider. An empty baseURL selects
// the public endpoint.
func NewOpenMeteoProvider(client *http.Client, baseURL string) *OpenMeteoProvider {
	if baseURL == "" {
		baseURL = OpenMeteoForecastURL
	}
	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: baseURL,
		client:  client,
		circuit: newCircuitBreaker("openmeteo"),
		now:     time.Now,
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

func (p *OpenMeteoProvider) Forecast(ctx context.Context, place weather.Place, units weather.UnitSystem) (weather.WeatherSnapshot, error) {
	values := url.Values{}
	values.Set("latitude", formatCoord(place.Latitude))
	values.Set("longitude", formatCoord(place.Longitude))
	values.Set("current", strings.Join(forecastCurrentFields, ","))
	values.Set("hourly", strings.Join(forecastHourlyFields, ","))
	values.Set("daily", strings.Join(forecastDailyFields, ","))
	values.Set("temperature_unit", units.TemperatureParam())
	values.Set("wind_speed_unit", units.WindSpeedParam())
	values.Set("timezone", "auto")

	body, err := doGet(ctx, p.client, p.circuit, p.name, fmt.Sprintf("%s?%s", p.baseURL, values.Encode()))
	if err != nil {
		return weather.WeatherSnapshot{}, &weather.NetworkError{Op: "forecast", Err: err}
	}

	var payload struct {
		Timezone string `json:"timezone"`
		Current  struct {
			Time                string               `json:"time"`
			Temperature         *float64             `json:"temperature_2m"`
			ApparentTemperature *float64             `json:"apparent_temperature"`
			WindSpeed           *float64             `json:"wind_speed_10m"`
			WeatherCode         *weather.WeatherCode `json:"weather_code"`
		} `json:"current"`
		Hourly struct {
			Time                     []string   `json:"time"`
			Temperature              []*float64 `json:"temperature_2m"`
			PrecipitationProbability []*float64 `json:"precipitation_probability"`
		} `json:"hourly"`
		Daily struct {
			Time                        []string               `json:"time"`
			WeatherCode                 []*weather.WeatherCode `json:"weather_code"`
			TemperatureMax              []*float64             `json:"temperature_2m_max"`
			TemperatureMin              []*float64             `json:"temperature_2m_min"`
			PrecipitationProbabilityMax []*float64             `json:"precipitation_probability_max"`
		} `json:"daily"`
	}

	if err := json.Unmarshal(body, &payload); err != nil {
		return weather.WeatherSnapshot{}, &weather.NetworkError{Op: "forecast", Err: fmt.Errorf("decode forecast response: %w", err)}
	}

	return weather.WeatherSnapshot{
		Place:     place,
		Units:     units,
		Timezone:  payload.Timezone,
		FetchedAt: p.now().UTC(),
		Current: weather.CurrentConditions{
			Time:                payload.Current.Time,
			Temperature:         payload.Current.Temperature,
			ApparentTemperature: payload.Current.ApparentTemperature,
			WindSpeed:           payload.Current.WindSpeed,
			WeatherCode:         payload.Current.WeatherCode,
		},
		Hourly: weather.HourlySeries{
			Timestamps:                 payload.Hourly.Time,
			Temperatures:               payload.Hourly.Temperature,
			PrecipitationProbabilities: payload.Hourly.PrecipitationProbability,
		},
		Daily: weather.DailySeries{
			Dates:                       payload.Daily.Time,
			WeatherCodes:                payload.Daily.WeatherCode,
			TempMax:                     payload.Daily.TemperatureMax,
			TempMin:                     payload.Daily.TemperatureMin,
			PrecipitationProbabilityMax: payload.Daily.PrecipitationProbabilityMax,
		},
	}, nil
}

// OpenMeteoGeocoder implements weather.Geocoder against the Open-Meteo
// geocoding API.
type OpenMeteoGeocoder struct {
	name    string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

func NewOpenMeteoGeocoder(client *http.Client, baseURL string) *OpenMeteoGeocoder {
	if baseURL == "" {
		baseURL = OpenMeteoGeocodingURL
	}
	return &OpenMeteoGeocoder{
		name:    "openmeteo-geocoding",
		baseURL: baseURL,
		client:  client,
		circuit: newCircuitBreaker("openmeteo-geocoding"),
	}
}

func (g *OpenMeteoGeocoder) Name() string {
	return g.name
}

func (g *OpenMeteoGeocoder) Search(ctx context.Context, name string, limit int) ([]weather.GeoResult, error) {
	if limit <= 0 {
		limit = 1
	}

	values := url.Values{}
	values.Set("name", name)
	values.Set("count", strconv.Itoa(limit))
	values.Set("language", "en")
	values.Set("format", "json")

	body, err := doGet(ctx, g.client, g.circuit, g.name, fmt.Sprintf("%s?%s", g.baseURL, values.Encode()))
	if err != nil {
		return nil, &weather.NetworkError{Op: "geocoding", Err: err}
	}

	var payload struct {
		Results []struct {
			Name        string  `json:"name"`
			Admin1      string  `json:"admin1"`
			CountryCode string  `json:"country_code"`
			Latitude    float64 `json:"latitude"`
			Longitude   float64 `json:"longitude"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &weather.NetworkError{Op: "geocoding", Err: fmt.Errorf("decode geocoding response: %w", err)}
	}

	results := make([]weather.GeoResult, 0, len(payload.Results))
	for _, r := range payload.Results {
		results = append(results, weather.GeoResult{
			Name:        r.Name,
			Admin1:      r.Admin1,
			CountryCode: r.CountryCode,
			Latitude:    r.Latitude,
			Longitude:   r.Longitude,
		})
	}
	return results, nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
