package weather

import (
	"errors"
	"fmt"
)

var (
	// ErrSuperseded is returned when a newer request of the same kind was
	// issued before this one completed. Its result was discarded.
	ErrSuperseded = errors.New("request superseded by a newer one")

	// ErrNoPlace is returned when weather is requested before any place is active.
	ErrNoPlace = errors.New("no place selected")
)

// NotFoundError means the place lookup returned nothing.
type NotFoundError struct {
	Query string
}

func (e *NotFoundError) Error() string {
	if e.Query == "" {
		return "place name is required"
	}
	return fmt.Sprintf("no results found for %q", e.Query)
}

// NetworkError is a transport or parse failure talking to an upstream API.
// Error returns the collaborator's message unchanged.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	if e.Err == nil {
		return e.Op + " failed"
	}
	return e.Err.Error()
}

func (e *NetworkError) Unwrap() error { return e.Err }

// LocationUnavailableError means device location was denied, timed out or
// is not supported on this host.
type LocationUnavailableError struct {
	Message string
}

func (e *LocationUnavailableError) Error() string {
	return e.Message
}

// IsNotFound reports whether err is, or wraps, a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsNetwork reports whether err is, or wraps, a NetworkError.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// IsLocationUnavailable reports whether err is, or wraps, a LocationUnavailableError.
func IsLocationUnavailable(err error) bool {
	var le *LocationUnavailableError
	return errors.As(err, &le)
}
