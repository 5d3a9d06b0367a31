package providers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/breeze-weather/internal/common"
	"github.com/i474232898/breeze-weather/internal/weather"
)

// DefaultGoogleTimeout bounds a Google lookup when no timeout is configured.
const DefaultGoogleTimeout = 10 * time.Second

// The geocoder package keeps its key in a package variable.
var googleKeyMu sync.Mutex

// GoogleGeocoder implements weather.Geocoder on top of the Google Geocoding
// API. It returns at most one match. Region names come from a best-effort
// reverse lookup; the API only reports long country names, so no country
// code is set.
type GoogleGeocoder struct {
	apiKey  string
	timeout time.Duration
	lookup  func(geocoder.Address) (geocoder.Location, error)
	reverse func(geocoder.Location) ([]geocoder.Address, error)
}

// NewGoogleGeocoder creates a Google geocoder. timeout <= 0 selects
// DefaultGoogleTimeout.
func NewGoogleGeocoder(apiKey string, timeout time.Duration) *GoogleGeocoder {
	if timeout <= 0 {
		timeout = DefaultGoogleTimeout
	}
	return &GoogleGeocoder{
		apiKey:  apiKey,
		timeout: timeout,
		lookup: func(addr geocoder.Address) (geocoder.Location, error) {
			googleKeyMu.Lock()
			defer googleKeyMu.Unlock()
			geocoder.ApiKey = apiKey
			return geocoder.Geocoding(addr)
		},
		reverse: func(loc geocoder.Location) ([]geocoder.Address, error) {
			googleKeyMu.Lock()
			defer googleKeyMu.Unlock()
			geocoder.ApiKey = apiKey
			return geocoder.GeocodingReverse(loc)
		},
	}
}

func (g *GoogleGeocoder) Name() string {
	return "google"
}

func (g *GoogleGeocoder) Search(ctx context.Context, name string, _ int) ([]weather.GeoResult, error) {
	if g.apiKey == "" {
		return nil, &weather.NetworkError{Op: "geocoding", Err: fmt.Errorf("google geocoder api key is not configured")}
	}

	// The library's HTTP client has no timeout of its own.
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	loc, err := await(ctx, func() (geocoder.Location, error) {
		return g.lookup(geocoder.Address{City: name})
	})
	if err != nil {
		if common.HasAny(err.Error(), "ZERO_RESULTS", "no results") {
			return nil, nil
		}
		return nil, &weather.NetworkError{Op: "geocoding", Err: err}
	}

	res := weather.GeoResult{
		Name:      name,
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
	}

	if g.reverse != nil {
		addrs, err := await(ctx, func() ([]geocoder.Address, error) {
			return g.reverse(loc)
		})
		if err == nil && len(addrs) > 0 {
			if addrs[0].City != "" {
				res.Name = addrs[0].City
			}
			if addrs[0].State != "" && addrs[0].State != res.Name {
				res.Admin1 = addrs[0].State
			}
		}
	}

	return []weather.GeoResult{res}, nil
}

// await runs fn in its own goroutine and stops waiting when ctx is done.
func await[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn()
		done <- result{v: v, err: err}
	}()

	select {
	case res := <-done:
		return res.v, res.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
