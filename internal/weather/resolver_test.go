package weather

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubGeocoder struct {
	results []GeoResult
	err     error
	calls   []string
	limits  []int
}

func (g *stubGeocoder) Name() string { return "stub" }

func (g *stubGeocoder) Search(_ context.Context, name string, limit int) ([]GeoResult, error) {
	g.calls = append(g.calls, name)
	g.limits = append(g.limits, limit)
	return g.results, g.err
}

type locatorFunc func(ctx context.Context, opts LocateOptions) (Coordinates, error)

func (f locatorFunc) Locate(ctx context.Context, opts LocateOptions) (Coordinates, error) {
	return f(ctx, opts)
}

func TestResolveByName(t *testing.T) {
	g := &stubGeocoder{results: []GeoResult{
		{Name: "Bengaluru", Admin1: "Karnataka", CountryCode: "IN", Latitude: 12.97, Longitude: 77.59},
		{Name: "Bangalore Town", CountryCode: "XX"},
	}}
	r := NewResolver(g, nil, 0)

	p, err := r.ResolveByName(context.Background(), "  Bengaluru \n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.calls[0] != "Bengaluru" || g.limits[0] != 1 {
		t.Fatalf("geocoder called with %q limit %d", g.calls[0], g.limits[0])
	}
	if p.Name != "Bengaluru, Karnataka" || p.CountryCode == nil || *p.CountryCode != "IN" {
		t.Fatalf("unexpected place: %+v", p)
	}
	if p.Latitude != 12.97 || p.Longitude != 77.59 {
		t.Fatalf("unexpected coordinates: %+v", p)
	}
}

func TestResolveByNameWithoutRegion(t *testing.T) {
	r := NewResolver(&stubGeocoder{results: []GeoResult{{Name: "Tokyo"}}}, nil, 0)
	p, err := r.ResolveByName(context.Background(), "Tokyo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "Tokyo" || p.CountryCode != nil {
		t.Fatalf("unexpected place: %+v", p)
	}
}

func TestResolveByNameErrors(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		geo   *stubGeocoder
		check func(error) bool
	}{
		{name: "empty", text: "   ", geo: &stubGeocoder{}, check: IsNotFound},
		{name: "zero results", text: "Atlantis-Nowhere-XYZ", geo: &stubGeocoder{}, check: IsNotFound},
		{name: "network", text: "Paris", geo: &stubGeocoder{err: &NetworkError{Op: "geocoding", Err: errors.New("dial tcp: refused")}}, check: IsNetwork},
		{name: "unclassified becomes network", text: "Paris", geo: &stubGeocoder{err: errors.New("boom")}, check: IsNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(tt.geo, nil, 0)
			_, err := r.ResolveByName(context.Background(), tt.text)
			if err == nil || !tt.check(err) {
				t.Fatalf("unexpected error: %v", err)
			}
			if err.Error() == "" {
				t.Fatalf("error message must not be empty")
			}
		})
	}
}

func TestResolveByNameEmptySkipsLookup(t *testing.T) {
	g := &stubGeocoder{}
	r := NewResolver(g, nil, 0)
	if _, err := r.ResolveByName(context.Background(), ""); !IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if len(g.calls) != 0 {
		t.Fatalf("geocoder must not be called for empty text, got %v", g.calls)
	}
}

func TestResolveByNameSurfacesMessageVerbatim(t *testing.T) {
	r := NewResolver(&stubGeocoder{err: &NetworkError{Op: "geocoding", Err: errors.New("Parameter count must be between 1 and 100.")}}, nil, 0)
	_, err := r.ResolveByName(context.Background(), "Paris")
	if err.Error() != "Parameter count must be between 1 and 100." {
		t.Fatalf("message not verbatim: %q", err.Error())
	}
}

func TestResolveByDeviceLocation(t *testing.T) {
	var gotOpts LocateOptions
	r := NewResolver(nil, locatorFunc(func(_ context.Context, opts LocateOptions) (Coordinates, error) {
		gotOpts = opts
		return Coordinates{Latitude: 52.52, Longitude: 13.405}, nil
	}), 15*time.Second)

	p, err := r.ResolveByDeviceLocation(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != DeviceLocationName || p.CountryCode != nil || p.Latitude != 52.52 || p.Longitude != 13.405 {
		t.Fatalf("unexpected place: %+v", p)
	}
	if !gotOpts.HighAccuracy || gotOpts.Timeout != 15*time.Second {
		t.Fatalf("unexpected locate options: %+v", gotOpts)
	}
}

func TestResolveByDeviceLocationUnsupported(t *testing.T) {
	r := NewResolver(nil, nil, 0)
	_, err := r.ResolveByDeviceLocation(context.Background())
	if !IsLocationUnavailable(err) {
		t.Fatalf("expected LocationUnavailableError, got %v", err)
	}
}

func TestResolveByDeviceLocationDenied(t *testing.T) {
	r := NewResolver(nil, locatorFunc(func(context.Context, LocateOptions) (Coordinates, error) {
		return Coordinates{}, errors.New("User denied Geolocation")
	}), 0)

	_, err := r.ResolveByDeviceLocation(context.Background())
	if !IsLocationUnavailable(err) || err.Error() != "User denied Geolocation" {
		t.Fatalf("expected platform message, got %v", err)
	}
}

func TestResolveByDeviceLocationTimeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	r := NewResolver(nil, locatorFunc(func(ctx context.Context, _ LocateOptions) (Coordinates, error) {
		// Ignores ctx like a misbehaving platform service would.
		<-release
		return Coordinates{}, nil
	}), 20*time.Millisecond)

	start := time.Now()
	_, err := r.ResolveByDeviceLocation(context.Background())
	if !IsLocationUnavailable(err) || err.Error() != "Timeout expired" {
		t.Fatalf("expected timeout LocationUnavailableError, got %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Fatalf("bounded wait not applied")
	}
}
