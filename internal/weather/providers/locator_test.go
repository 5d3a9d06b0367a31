package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/breeze-weather/internal/weather"
)

func TestWeatherAPILocator(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") != "auto:ip" || r.URL.Query().Get("key") != "secret" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"ip":"203.0.113.7","city":"Tokyo","lat":35.69,"lon":139.69}`))
	}))
	defer srv.Close()

	l := NewWeatherAPILocator(srv.Client(), "secret")
	l.baseURL = srv.URL

	got, err := l.Locate(context.Background(), weather.LocateOptions{HighAccuracy: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Latitude != 35.69 || got.Longitude != 139.69 {
		t.Fatalf("unexpected coordinates: %+v", got)
	}
}

func TestWeatherAPILocatorFailureIsLocationUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":2008,"message":"API key has been disabled."}}`))
	}))
	defer srv.Close()

	l := NewWeatherAPILocator(srv.Client(), "secret")
	l.baseURL = srv.URL

	_, err := l.Locate(context.Background(), weather.LocateOptions{})
	if !weather.IsLocationUnavailable(err) {
		t.Fatalf("expected LocationUnavailableError, got %v", err)
	}
	if err.Error() != "API key has been disabled." {
		t.Fatalf("expected provider message, got %q", err.Error())
	}
}

func TestWeatherAPILocatorWithoutKey(t *testing.T) {
	l := NewWeatherAPILocator(http.DefaultClient, "")
	if _, err := l.Locate(context.Background(), weather.LocateOptions{}); !weather.IsLocationUnavailable(err) {
		t.Fatalf("expected LocationUnavailableError, got %v", err)
	}
}

func TestStaticLocator(t *testing.T) {
	l := StaticLocator{Coords: weather.Coordinates{Latitude: 1.5, Longitude: -2.5}}
	got, err := l.Locate(context.Background(), weather.LocateOptions{})
	if err != nil || got.Latitude != 1.5 || got.Longitude != -2.5 {
		t.Fatalf("unexpected result %+v, %v", got, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := l.Locate(ctx, weather.LocateOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestOpenWeatherGeocoder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") != "Tokyo" || r.URL.Query().Get("limit") != "1" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`[{"name":"Tokyo","state":"Tokyo","country":"JP","lat":35.68,"lon":139.76}]`))
	}))
	defer srv.Close()

	g := NewOpenWeatherGeocoder(srv.Client(), "k")
	g.baseURL = srv.URL

	res, err := g.Search(context.Background(), "Tokyo", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res) != 1 || res[0].CountryCode != "JP" || res[0].Admin1 != "Tokyo" {
		t.Fatalf("unexpected results: %+v", res)
	}
}

func TestGoogleGeocoder(t *testing.T) {
	g := NewGoogleGeocoder("k", time.Second)
	g.reverse = nil
	g.lookup = func(addr geocoder.Address) (geocoder.Location, error) {
		if addr.City != "Lisbon" {
			return geocoder.Location{}, errors.New("ZERO_RESULTS")
		}
		return geocoder.Location{Latitude: 38.72, Longitude: -9.14}, nil
	}

	res, err := g.Search(context.Background(), "Lisbon", 1)
	if err != nil || len(res) != 1 || res[0].Latitude != 38.72 {
		t.Fatalf("unexpected result %+v, %v", res, err)
	}

	res, err = g.Search(context.Background(), "Nowhere", 1)
	if err != nil || len(res) != 0 {
		t.Fatalf("expected empty result for zero results, got %+v, %v", res, err)
	}

	g.lookup = func(geocoder.Address) (geocoder.Location, error) {
		return geocoder.Location{}, errors.New("REQUEST_DENIED")
	}
	if _, err := g.Search(context.Background(), "Lisbon", 1); !weather.IsNetwork(err) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
}

func TestGoogleGeocoderFillsRegionFromReverseLookup(t *testing.T) {
	g := NewGoogleGeocoder("k", time.Second)
	g.lookup = func(geocoder.Address) (geocoder.Location, error) {
		return geocoder.Location{Latitude: 38.72, Longitude: -9.14}, nil
	}
	g.reverse = func(loc geocoder.Location) ([]geocoder.Address, error) {
		if loc.Latitude != 38.72 {
			return nil, errors.New("unexpected location")
		}
		return []geocoder.Address{{City: "Lisboa", State: "Lisbon District", Country: "Portugal"}}, nil
	}

	res, err := g.Search(context.Background(), "lisbon", 1)
	if err != nil || len(res) != 1 {
		t.Fatalf("unexpected result %+v, %v", res, err)
	}
	if res[0].Name != "Lisboa" || res[0].Admin1 != "Lisbon District" || res[0].CountryCode != "" {
		t.Fatalf("unexpected result %+v", res[0])
	}

	g.reverse = func(geocoder.Location) ([]geocoder.Address, error) {
		return nil, errors.New("OVER_QUERY_LIMIT")
	}
	res, err = g.Search(context.Background(), "lisbon", 1)
	if err != nil || len(res) != 1 || res[0].Name != "lisbon" {
		t.Fatalf("failed reverse lookup must keep the forward match, got %+v, %v", res, err)
	}
}

func TestGoogleGeocoderTimesOut(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	g := NewGoogleGeocoder("k", 20*time.Millisecond)
	g.lookup = func(geocoder.Address) (geocoder.Location, error) {
		<-release
		return geocoder.Location{}, nil
	}

	start := time.Now()
	_, err := g.Search(context.Background(), "Lisbon", 1)
	if !weather.IsNetwork(err) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline NetworkError, got %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Fatalf("lookup was not bounded by the timeout")
	}
}
