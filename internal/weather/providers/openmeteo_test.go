package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/i474232898/breeze-weather/internal/weather"
)

const forecastFixture = `{
  "timezone": "Asia/Kolkata",
  "current": {"time": "2026-10-17T14:00", "temperature_2m": 27.6, "apparent_temperature": 29.4, "wind_speed_10m": 11.2, "weather_code": 61},
  "hourly": {
    "time": ["2026-10-17T14:00", "2026-10-17T15:00", "2026-10-17T16:00"],
    "temperature_2m": [27.6, null, 26.1],
    "precipitation_probability": [40, 55, null]
  },
  "daily": {
    "time": ["2026-10-17", "2026-10-18"],
    "weather_code": [61, 3],
    "temperature_2m_max": [29.1, 28.4],
    "temperature_2m_min": [20.3, 19.8],
    "precipitation_probability_max": [80, 20]
  }
}`

func TestOpenMeteoForecastRequestAndDecode(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		got = map[string]string{}
		for k := range q {
			got[k] = q.Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(forecastFixture))
	}))
	defer srv.Close()

	p := NewOpenMeteoProvider(srv.Client(), srv.URL)
	place := weather.Place{Name: "Bengaluru, Karnataka", Latitude: 12.97194, Longitude: 77.59369}

	snap, err := p.Forecast(context.Background(), place, weather.UnitsImperial)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[string]string{
		"latitude":         "12.97194",
		"longitude":        "77.59369",
		"current":          "temperature_2m,apparent_temperature,wind_speed_10m,weather_code",
		"hourly":           "temperature_2m,precipitation_probability",
		"daily":            "weather_code,temperature_2m_max,temperature_2m_min,precipitation_probability_max",
		"temperature_unit": "fahrenheit",
		"wind_speed_unit":  "mph",
		"timezone":         "auto",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("query %s = %q, want %q", k, got[k], v)
		}
	}

	if snap.Units != weather.UnitsImperial || snap.Place.Name != place.Name {
		t.Fatalf("snapshot not tagged with request: %+v", snap)
	}
	if snap.Timezone != "Asia/Kolkata" {
		t.Errorf("timezone = %q", snap.Timezone)
	}
	if snap.Current.WeatherCode == nil || *snap.Current.WeatherCode != 61 {
		t.Errorf("current weather code = %v, want 61", snap.Current.WeatherCode)
	}
	if len(snap.Hourly.Timestamps) != 3 || snap.Hourly.Temperatures[1] != nil {
		t.Errorf("hourly series not decoded with nulls preserved: %+v", snap.Hourly)
	}
	if len(snap.Daily.Dates) != 2 || *snap.Daily.TempMin[1] != 19.8 {
		t.Errorf("daily series not decoded: %+v", snap.Daily)
	}
	if snap.FetchedAt.IsZero() {
		t.Errorf("expected FetchedAt to be set")
	}
}

func TestOpenMeteoForecastSurfacesReason(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":true,"reason":"Latitude must be in range of -90 to 90°. Given: 200.0."}`))
	}))
	defer srv.Close()

	p := NewOpenMeteoProvider(srv.Client(), srv.URL)
	_, err := p.Forecast(context.Background(), weather.Place{Latitude: 200}, weather.UnitsMetric)
	if !weather.IsNetwork(err) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
	if err.Error() != "Latitude must be in range of -90 to 90°. Given: 200.0." {
		t.Fatalf("expected provider reason verbatim, got %q", err.Error())
	}
}

func TestOpenMeteoForecastDecodeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>oops</html>`))
	}))
	defer srv.Close()

	p := NewOpenMeteoProvider(srv.Client(), srv.URL)
	_, err := p.Forecast(context.Background(), weather.Place{}, weather.UnitsMetric)
	if !weather.IsNetwork(err) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
}

func TestOpenMeteoForecastDoesNotRetry(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := NewOpenMeteoProvider(srv.Client(), srv.URL)
	if _, err := p.Forecast(context.Background(), weather.Place{}, weather.UnitsMetric); err == nil {
		t.Fatalf("expected error")
	}
	if calls != 1 {
		t.Fatalf("expected exactly one upstream call, got %d", calls)
	}
}

func TestOpenMeteoGeocoderSearch(t *testing.T) {
	var query map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		_, _ = w.Write([]byte(`{"results":[{"name":"Paris","admin1":"Île-de-France","country_code":"FR","latitude":48.85341,"longitude":2.3488}]}`))
	}))
	defer srv.Close()

	g := NewOpenMeteoGeocoder(srv.Client(), srv.URL)
	res, err := g.Search(context.Background(), "Paris & co", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if query["name"][0] != "Paris & co" || query["count"][0] != "1" ||
		query["language"][0] != "en" || query["format"][0] != "json" {
		t.Fatalf("unexpected query: %v", query)
	}
	if len(res) != 1 || res[0].CountryCode != "FR" || res[0].Admin1 != "Île-de-France" {
		t.Fatalf("unexpected results: %+v", res)
	}
}

func TestOpenMeteoGeocoderNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"generationtime_ms":0.5}`))
	}))
	defer srv.Close()

	g := NewOpenMeteoGeocoder(srv.Client(), srv.URL)
	res, err := g.Search(context.Background(), "Atlantis-Nowhere-XYZ", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res) != 0 {
		t.Fatalf("expected no results, got %+v", res)
	}
}

func TestOpenMeteoGeocoderTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	g := NewOpenMeteoGeocoder(&http.Client{}, srv.URL)
	_, err := g.Search(context.Background(), "Paris", 1)
	if !weather.IsNetwork(err) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
}
