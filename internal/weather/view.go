package weather

import (
	"math"
	"strconv"
	"time"

	"github.com/i474232898/breeze-weather/internal/common"
)

const (
	// Placeholder is rendered for any missing value.
	Placeholder = "—"

	HourlyWindow = 18
	DailyWindow  = 7
)

// View is the display-ready rendition of an AppState.
type View struct {
	Place      *PlaceView   `json:"place,omitempty"`
	Units      UnitSystem   `json:"units"`
	TempUnit   string       `json:"tempUnit"`
	WindUnit   string       `json:"windUnit"`
	Loading    bool         `json:"loading"`
	Error      string       `json:"error,omitempty"`
	Mood       Mood         `json:"mood"`
	Background string       `json:"background"`
	Current    *CurrentView `json:"current,omitempty"`
	Hourly     []HourView   `json:"hourly"`
	Daily      []DayView    `json:"daily"`
	Trend      []TrendPoint `json:"trend"`
}

type PlaceView struct {
	Name        string  `json:"name"`
	CountryCode string  `json:"countryCode,omitempty"`
	Flag        string  `json:"flag,omitempty"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

type CurrentView struct {
	Temperature          string       `json:"temperature"`
	FeelsLike            string       `json:"feelsLike"`
	WindSpeed            string       `json:"windSpeed"`
	Description          string       `json:"description"`
	Icon                 IconCategory `json:"icon"`
	PrecipProbabilityMax string       `json:"precipProbabilityMax"`
}

type HourView struct {
	Time              string `json:"time"`
	Temperature       string `json:"temperature"`
	PrecipProbability string `json:"precipProbability"`
}

type DayView struct {
	Label             string       `json:"label"`
	Description       string       `json:"description"`
	Icon              IconCategory `json:"icon"`
	Min               string       `json:"min"`
	Max               string       `json:"max"`
	PrecipProbability string       `json:"precipProbability"`
}

// TrendPoint carries raw daily extremes for charting.
type TrendPoint struct {
	Label string   `json:"label"`
	Min   *float64 `json:"min"`
	Max   *float64 `json:"max"`
}

// BuildView renders state for display. It never mutates its input.
func BuildView(state AppState) View {
	units := state.Units
	if units == "" {
		units = UnitsMetric
	}

	v := View{
		Units:    units,
		TempUnit: units.TemperatureLabel(),
		WindUnit: units.WindSpeedLabel(),
		Loading:  state.Request.Loading,
		Error:    state.Request.Error,
		Mood:     MoodSky,
		Hourly:   []HourView{},
		Daily:    []DayView{},
		Trend:    []TrendPoint{},
	}

	if p := state.Place; p != nil {
		pv := &PlaceView{Name: p.Name, Latitude: p.Latitude, Longitude: p.Longitude}
		if p.CountryCode != nil {
			pv.CountryCode = *p.CountryCode
			pv.Flag = common.FlagEmoji(*p.CountryCode)
		}
		v.Place = pv
	}

	snap := state.Snapshot
	if snap == nil || snap.Units != units {
		v.Background = Background(v.Mood)
		return v
	}

	v.Mood = ClassifyMood(snap.Current.WeatherCode)
	v.Background = Background(v.Mood)

	cond := Classify(snap.Current.WeatherCode)
	v.Current = &CurrentView{
		Temperature:          FormatTemperature(snap.Current.Temperature, units),
		FeelsLike:            FormatTemperature(snap.Current.ApparentTemperature, units),
		WindSpeed:            FormatWindSpeed(snap.Current.WindSpeed, units),
		Description:          cond.Description,
		Icon:                 cond.Icon,
		PrecipProbabilityMax: FormatPercent(at(snap.Daily.PrecipitationProbabilityMax, 0)),
	}

	v.Hourly = hourlyView(snap.Hourly, units)
	v.Daily, v.Trend = dailyView(snap.Daily, units)
	return v
}

func hourlyView(h HourlySeries, units UnitSystem) []HourView {
	n := min(len(h.Timestamps), HourlyWindow)
	out := make([]HourView, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, HourView{
			Time:              HourLabel(h.Timestamps[i]),
			Temperature:       FormatTemperature(at(h.Temperatures, i), units),
			PrecipProbability: FormatPercent(at(h.PrecipitationProbabilities, i)),
		})
	}
	return out
}

func dailyView(d DailySeries, units UnitSystem) ([]DayView, []TrendPoint) {
	n := min(len(d.Dates), DailyWindow)
	days := make([]DayView, 0, n)
	trend := make([]TrendPoint, 0, n)
	for i := 0; i < n; i++ {
		label := DayLabel(d.Dates[i])
		cond := Classify(at(d.WeatherCodes, i))
		lo, hi := at(d.TempMin, i), at(d.TempMax, i)
		days = append(days, DayView{
			Label:             label,
			Description:       cond.Description,
			Icon:              cond.Icon,
			Min:               FormatTemperature(lo, units),
			Max:               FormatTemperature(hi, units),
			PrecipProbability: FormatPercent(at(d.PrecipitationProbabilityMax, i)),
		})
		trend = append(trend, TrendPoint{Label: label, Min: lo, Max: hi})
	}
	return days, trend
}

// at returns s[i] or nil when i is out of range; parallel arrays from the
// provider are not guaranteed to be the same length.
func at[T any](s []*T, i int) *T {
	if i < 0 || i >= len(s) {
		return nil
	}
	return s[i]
}

// Round rounds to the nearest integer, halves away from zero. NaN and
// infinities are reported as not ok.
func Round(v float64) (int, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return int(math.Round(v)), true
}

func formatRounded(v *float64, suffix string) string {
	if v == nil {
		return Placeholder
	}
	n, ok := Round(*v)
	if !ok {
		return Placeholder
	}
	return strconv.Itoa(n) + suffix
}

// FormatTemperature renders "21°C" style labels.
func FormatTemperature(v *float64, units UnitSystem) string {
	return formatRounded(v, units.TemperatureLabel())
}

// FormatWindSpeed renders "12 km/h" style labels.
func FormatWindSpeed(v *float64, units UnitSystem) string {
	return formatRounded(v, " "+units.WindSpeedLabel())
}

func FormatPercent(v *float64) string {
	return formatRounded(v, "%")
}

// DayLabel formats a provider date (2006-01-02) as "Mon 2".
func DayLabel(date string) string {
	t, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return Placeholder
	}
	return t.Format("Mon 2")
}

// HourLabel formats a provider local time (2006-01-02T15:04) as "15:04".
func HourLabel(ts string) string {
	t, err := time.Parse("2006-01-02T15:04", ts)
	if err != nil {
		return Placeholder
	}
	return t.Format("15:04")
}
