package forecast

import "time"

// WeatherReading is the first forecast period returned by the weather service.
type WeatherReading struct {
	TemperatureF int `json:"temperature_f"`
	// PrecipitationChance is nil when the service reports null.
	PrecipitationChance *int   `json:"precipitation_pct,omitempty"`
	WindSpeed           string `json:"wind_speed"`
	WindDirection       string `json:"wind_direction"`
}

// Precipitation returns the chance of precipitation with null treated as 0.
func (w WeatherReading) Precipitation() int {
	if w.PrecipitationChance == nil {
		return 0
	}
	return *w.PrecipitationChance
}

// TimeReading is the local hour of day and ISO date reported by the time service.
type TimeReading struct {
	Hour int    `json:"hour"`
	Date string `json:"date"`
}

// CycleContext aggregates everything fetched during one motion-triggered cycle.
// A new one is built for every motion event and dropped when the cycle ends.
type CycleContext struct {
	ID        string
	StartedAt time.Time

	Time       *TimeReading
	Weather    *WeatherReading
	Clip       *Clip
	AQI        *int
	AirQuality *AirQuality
}

func NewCycleContext(id string, startedAt time.Time) *CycleContext {
	return &CycleContext{ID: id, StartedAt: startedAt}
}
