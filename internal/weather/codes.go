package weather

// IconCategory selects the icon drawn for a weather code.
type IconCategory string

const (
	IconUnknown IconCategory = "unknown"
	IconClear   IconCategory = "clear"
	IconCloudy  IconCategory = "cloudy"
	IconFog     IconCategory = "fog"
	IconRain    IconCategory = "rain"
	IconSnow    IconCategory = "snow"
	IconStorm   IconCategory = "storm"
)

// Mood is a coarse weather category used only to pick a background theme.
type Mood string

const (
	MoodSky    Mood = "sky"
	MoodClouds Mood = "clouds"
	MoodRain   Mood = "rain"
	MoodSnow   Mood = "snow"
	MoodFog    Mood = "fog"
	MoodStorm  Mood = "storm"
)

// Moods lists every mood in a stable order.
var Moods = []Mood{MoodSky, MoodClouds, MoodRain, MoodSnow, MoodFog, MoodStorm}

// Condition is the display classification of a weather code.
type Condition struct {
	Description string       `json:"description"`
	Icon        IconCategory `json:"icon"`
}

var conditions = map[WeatherCode]Condition{
	0:  {"Clear sky", IconClear},
	1:  {"Mainly clear", IconClear},
	2:  {"Partly cloudy", IconCloudy},
	3:  {"Overcast", IconCloudy},
	45: {"Fog", IconFog},
	48: {"Depositing rime fog", IconFog},
	51: {"Light drizzle", IconRain},
	53: {"Moderate drizzle", IconRain},
	55: {"Dense drizzle", IconRain},
	56: {"Freezing drizzle", IconRain},
	57: {"Freezing drizzle", IconRain},
	61: {"Slight rain", IconRain},
	63: {"Moderate rain", IconRain},
	65: {"Heavy rain", IconRain},
	66: {"Freezing rain", IconRain},
	67: {"Freezing rain", IconRain},
	71: {"Slight snow", IconSnow},
	73: {"Moderate snow", IconSnow},
	75: {"Heavy snow", IconSnow},
	77: {"Snow grains", IconSnow},
	80: {"Rain showers", IconRain},
	81: {"Rain showers", IconRain},
	82: {"Violent rain showers", IconRain},
	85: {"Snow showers", IconSnow},
	86: {"Snow showers", IconSnow},
	95: {"Thunderstorm", IconStorm},
	96: {"Thunderstorm w/ hail", IconStorm},
	99: {"Thunderstorm w/ hail", IconStorm},
}

// Families are disjoint: every code appears at most once.
var moods = map[WeatherCode]Mood{
	0: MoodSky, 1: MoodSky,
	2: MoodClouds, 3: MoodClouds,
	45: MoodFog, 48: MoodFog,
	51: MoodRain, 53: MoodRain, 55: MoodRain, 56: MoodRain, 57: MoodRain,
	61: MoodRain, 63: MoodRain, 65: MoodRain, 66: MoodRain, 67: MoodRain,
	80: MoodRain, 81: MoodRain, 82: MoodRain,
	71: MoodSnow, 73: MoodSnow, 75: MoodSnow, 77: MoodSnow, 85: MoodSnow, 86: MoodSnow,
	95: MoodStorm, 96: MoodStorm, 99: MoodStorm,
}

var backgrounds = map[Mood]string{
	MoodSky:    "https://images.unsplash.com/photo-1502082553048-f009c37129b9?q=80&w=2000&auto=format&fit=crop",
	MoodClouds: "https://images.unsplash.com/photo-1520880867055-1e30d1cb001c?q=80&w=2000&auto=format&fit=crop",
	MoodRain:   "https://images.unsplash.com/photo-1503435824048-a799a3a84bf7?q=80&w=2000&auto=format&fit=crop",
	MoodSnow:   "https://images.unsplash.com/photo-1519085360753-af0119f7cbe7?q=80&w=2000&auto=format&fit=crop",
	MoodFog:    "https://images.unsplash.com/photo-1501139083538-0139583c060f?q=80&w=2000&auto=format&fit=crop",
	MoodStorm:  "https://images.unsplash.com/photo-1605721571516-95bbf0a43e2b?q=80&w=2000&auto=format&fit=crop",
}

// KnownCodes returns every code present in the condition table.
func KnownCodes() []WeatherCode {
	codes := make([]WeatherCode, 0, len(conditions))
	for c := range conditions {
		codes = append(codes, c)
	}
	return codes
}

// Classify maps a code to its description and icon. A nil or unknown code
// yields an empty description and IconUnknown.
func Classify(code *WeatherCode) Condition {
	if code == nil {
		return Condition{Icon: IconUnknown}
	}
	if c, ok := conditions[*code]; ok {
		return c
	}
	return Condition{Icon: IconUnknown}
}

// ClassifyMood maps the current weather code to a mood. Absent and unknown
// codes default to MoodSky.
func ClassifyMood(code *WeatherCode) Mood {
	if code == nil {
		return MoodSky
	}
	if m, ok := moods[*code]; ok {
		return m
	}
	return MoodSky
}

// Background returns the themed background image for a mood.
func Background(m Mood) string {
	if u, ok := backgrounds[m]; ok {
		return u
	}
	return backgrounds[MoodSky]
}
