package weather

import (
	"context"
	"errors"
	"strings"
	"time"
)

const (
	// DeviceLocationName is the display name of places produced from device coordinates.
	DeviceLocationName = "My location"

	// DefaultLocateTimeout bounds how long a device location request may take.
	DefaultLocateTimeout = 12 * time.Second
)

// Resolver turns free text or device coordinates into a Place.
type Resolver struct {
	geocoder      Geocoder
	locator       Locator
	locateTimeout time.Duration
}

// NewResolver creates a Resolver. locator may be nil when the host offers no
// geolocation; locateTimeout <= 0 selects DefaultLocateTimeout.
func NewResolver(geocoder Geocoder, locator Locator, locateTimeout time.Duration) *Resolver {
	if locateTimeout <= 0 {
		locateTimeout = DefaultLocateTimeout
	}
	return &Resolver{
		geocoder:      geocoder,
		locator:       locator,
		locateTimeout: locateTimeout,
	}
}

// ResolveByName looks up text and returns the first match.
func (r *Resolver) ResolveByName(ctx context.Context, text string) (Place, error) {
	q := strings.TrimSpace(text)
	if q == "" {
		return Place{}, &NotFoundError{}
	}

	results, err := r.geocoder.Search(ctx, q, 1)
	if err != nil {
		if IsNetwork(err) || IsNotFound(err) {
			return Place{}, err
		}
		return Place{}, &NetworkError{Op: "geocoding", Err: err}
	}
	if len(results) == 0 {
		return Place{}, &NotFoundError{Query: q}
	}

	return placeFromResult(results[0]), nil
}

func placeFromResult(res GeoResult) Place {
	name := res.Name
	if res.Admin1 != "" {
		name += ", " + res.Admin1
	}

	p := Place{
		Name:      name,
		Latitude:  res.Latitude,
		Longitude: res.Longitude,
	}
	if res.CountryCode != "" {
		cc := res.CountryCode
		p.CountryCode = &cc
	}
	return p
}

// ResolveByDeviceLocation asks the locator for high-accuracy coordinates,
// waiting at most the configured locate timeout.
func (r *Resolver) ResolveByDeviceLocation(ctx context.Context) (Place, error) {
	if r.locator == nil {
		return Place{}, &LocationUnavailableError{Message: "geolocation is not supported on this host"}
	}

	ctx, cancel := context.WithTimeout(ctx, r.locateTimeout)
	defer cancel()

	type result struct {
		coords Coordinates
		err    error
	}
	done := make(chan result, 1)
	go func() {
		c, err := r.locator.Locate(ctx, LocateOptions{HighAccuracy: true, Timeout: r.locateTimeout})
		done <- result{coords: c, err: err}
	}()

	var res result
	select {
	case res = <-done:
	case <-ctx.Done():
		res.err = ctx.Err()
	}

	if res.err != nil {
		if errors.Is(res.err, context.DeadlineExceeded) {
			return Place{}, &LocationUnavailableError{Message: "Timeout expired"}
		}
		var le *LocationUnavailableError
		if errors.As(res.err, &le) {
			return Place{}, le
		}
		return Place{}, &LocationUnavailableError{Message: res.err.Error()}
	}

	return Place{
		Name:      DeviceLocationName,
		Latitude:  res.coords.Latitude,
		Longitude: res.coords.Longitude,
	}, nil
}
