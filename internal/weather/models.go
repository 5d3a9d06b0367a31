package weather

import (
	"fmt"
	"strings"
	"time"
)

// UnitSystem selects the measurement convention for requested and displayed values.
type UnitSystem string

const (
	UnitsMetric   UnitSystem = "metric"
	UnitsImperial UnitSystem = "imperial"
)

// ParseUnitSystem accepts "metric" or "imperial" (case-insensitive).
func ParseUnitSystem(s string) (UnitSystem, error) {
	switch UnitSystem(strings.ToLower(strings.TrimSpace(s))) {
	case UnitsMetric:
		return UnitsMetric, nil
	case UnitsImperial:
		return UnitsImperial, nil
	default:
		return "", fmt.Errorf("invalid unit system %q (allowed: metric, imperial)", s)
	}
}

// Toggle returns the other unit system.
func (u UnitSystem) Toggle() UnitSystem {
	if u == UnitsImperial {
		return UnitsMetric
	}
	return UnitsImperial
}

// TemperatureParam is the forecast API temperature_unit value.
func (u UnitSystem) TemperatureParam() string {
	if u == UnitsImperial {
		return "fahrenheit"
	}
	return "celsius"
}

// WindSpeedParam is the forecast API wind_speed_unit value.
func (u UnitSystem) WindSpeedParam() string {
	if u == UnitsImperial {
		return "mph"
	}
	return "kmh"
}

func (u UnitSystem) TemperatureLabel() string {
	if u == UnitsImperial {
		return "°F"
	}
	return "°C"
}

func (u UnitSystem) WindSpeedLabel() string {
	if u == UnitsImperial {
		return "mph"
	}
	return "km/h"
}

// Place is a resolved geographic point. CountryCode is nil for device locations.
type Place struct {
	Name        string  `json:"name"`
	CountryCode *string `json:"countryCode,omitempty"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

// WeatherCode is a WMO condition code as used by Open-Meteo.
type WeatherCode int

// CurrentConditions holds the scalar "current" block. Any field may be missing.
type CurrentConditions struct {
	Time                string       `json:"time,omitempty"`
	Temperature         *float64     `json:"temperature"`
	ApparentTemperature *float64     `json:"apparentTemperature"`
	WindSpeed           *float64     `json:"windSpeed"`
	WeatherCode         *WeatherCode `json:"weatherCode"`
}

// HourlySeries holds parallel arrays, one index per hour.
type HourlySeries struct {
	Timestamps                 []string   `json:"timestamps"`
	Temperatures               []*float64 `json:"temperatures"`
	PrecipitationProbabilities []*float64 `json:"precipitationProbabilities"`
}

// DailySeries holds parallel arrays, one index per day.
type DailySeries struct {
	Dates                       []string       `json:"dates"`
	WeatherCodes                []*WeatherCode `json:"weatherCodes"`
	TempMax                     []*float64     `json:"tempMax"`
	TempMin                     []*float64     `json:"tempMin"`
	PrecipitationProbabilityMax []*float64     `json:"precipitationProbabilityMax"`
}

// WeatherSnapshot is the bundle of current, hourly and daily data for one
// place and unit system.
type WeatherSnapshot struct {
	Place     Place      `json:"place"`
	Units     UnitSystem `json:"units"`
	Timezone  string     `json:"timezone,omitempty"`
	FetchedAt time.Time  `json:"fetchedAt"` // always UTC

	Current CurrentConditions `json:"current"`
	Hourly  HourlySeries      `json:"hourly"`
	Daily   DailySeries       `json:"daily"`
}

// RequestState is transient progress information. An empty Error means none.
type RequestState struct {
	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`
}

// AppState is the whole observable application state. Values are replaced,
// never edited in place; use the Set* transitions.
type AppState struct {
	Version  uint64           `json:"version"`
	Place    *Place           `json:"place,omitempty"`
	Units    UnitSystem       `json:"units"`
	Snapshot *WeatherSnapshot `json:"snapshot,omitempty"`
	Request  RequestState     `json:"request"`
}

// SetPlace makes p the active place and drops the snapshot of the previous one.
func (s AppState) SetPlace(p Place) AppState {
	s.Place = &p
	s.Snapshot = nil
	return s
}

// SetUnits switches the unit system. The active snapshot no longer matches
// and is dropped.
func (s AppState) SetUnits(u UnitSystem) AppState {
	if s.Units != u {
		s.Snapshot = nil
	}
	s.Units = u
	return s
}

func (s AppState) SetSnapshot(snap WeatherSnapshot) AppState {
	s.Snapshot = &snap
	return s
}

func (s AppState) SetRequestState(r RequestState) AppState {
	s.Request = r
	return s
}
