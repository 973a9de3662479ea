package types

import "time"

type Outcome string

const (
	OutcomeCompleted  Outcome = "completed"
	OutcomeSuppressed Outcome = "suppressed"
	OutcomeAborted    Outcome = "aborted"
)

// CycleReport summarises one motion-triggered cycle. Fields the cycle never
// reached are omitted.
type CycleReport struct {
	CycleID          string    `json:"cycle_id"`
	KioskID          string    `json:"kiosk_id"`
	StartedAt        time.Time `json:"started_at"`
	FinishedAt       time.Time `json:"finished_at"`
	Outcome          Outcome   `json:"outcome"`
	Hour             *int      `json:"hour,omitempty"`
	Date             string    `json:"date,omitempty"`
	Clip             string    `json:"clip,omitempty"`
	TemperatureF     *int      `json:"temperature_f,omitempty"`
	PrecipitationPct *int      `json:"precipitation_pct,omitempty"`
	WindSpeed        string    `json:"wind_speed,omitempty"`
	WindDirection    string    `json:"wind_direction,omitempty"`
	AQI              *int      `json:"aqi,omitempty"`
	AQICategory      string    `json:"aqi_category,omitempty"`
	ErrorKind        string    `json:"error_kind,omitempty"`
	Error            string    `json:"error,omitempty"`
}

// KioskHealth is the retained last-known state of a kiosk.
type KioskHealth struct {
	KioskID     string    `json:"kiosk_id"`
	LastSeen    time.Time `json:"last_seen"`
	LastOutcome Outcome   `json:"last_outcome"`
	Healthy     bool      `json:"healthy"`
}

// LoopStatus is a point-in-time view of the control loop.
type LoopStatus struct {
	State     string       `json:"state"`
	Since     time.Time    `json:"since"`
	Cycles    int          `json:"cycles"`
	LastCycle *CycleReport `json:"last_cycle,omitempty"`
}
