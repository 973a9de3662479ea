package forecast

import "fmt"

const (
	// ColdBelowF is the temperature under which the forecast counts as cold.
	ColdBelowF = 50
	// RainyFromPct is the precipitation chance at which the forecast counts as rainy.
	RainyFromPct = 20
)

// Clip selects one of the four pre-recorded forecast announcements.
type Clip int

const (
	ColdDry Clip = iota
	ColdRainy
	WarmDry
	WarmRainy
)

var clipNames = [...]string{
	ColdDry:   "cold and dry",
	ColdRainy: "cold and rainy",
	WarmDry:   "warm and dry",
	WarmRainy: "warm and rainy",
}

// Clips lists every clip; an installation needs one audio asset per entry.
func Clips() []Clip {
	return []Clip{ColdDry, ColdRainy, WarmDry, WarmRainy}
}

// Name is the audio asset base name for the clip.
func (c Clip) Name() string {
	if c < ColdDry || c > WarmRainy {
		return fmt.Sprintf("clip(%d)", int(c))
	}
	return clipNames[c]
}

func (c Clip) String() string {
	return c.Name()
}

// Classify maps a temperature and an optional precipitation chance to a clip.
// A nil precipitation chance counts as 0.
func Classify(temperatureF int, precipitationChance *int) Clip {
	precip := 0
	if precipitationChance != nil {
		precip = *precipitationChance
	}

	cold := temperatureF < ColdBelowF
	rainy := precip >= RainyFromPct

	switch {
	case cold && !rainy:
		return ColdDry
	case cold && rainy:
		return ColdRainy
	case !rainy:
		return WarmDry
	default:
		return WarmRainy
	}
}

// AirQuality is the three-level bucket of a raw AQI value.
type AirQuality int

const (
	Good AirQuality = iota
	Moderate
	Bad
)

func (a AirQuality) String() string {
	switch a {
	case Good:
		return "good"
	case Moderate:
		return "moderate"
	case Bad:
		return "bad"
	default:
		return fmt.Sprintf("airquality(%d)", int(a))
	}
}

// CategorizeAQI buckets an AQI: up to 50 is good, up to 100 moderate, anything above bad.
func CategorizeAQI(aqi int) AirQuality {
	switch {
	case aqi <= 50:
		return Good
	case aqi <= 100:
		return Moderate
	default:
		return Bad
	}
}
