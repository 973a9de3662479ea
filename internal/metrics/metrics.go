package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the kiosk's collectors. Build one per registry.
type Metrics struct {
	cycles          *prometheus.CounterVec
	cycleErrors     *prometheus.CounterVec
	clips           *prometheus.CounterVec
	fetchDuration   *prometheus.HistogramVec
	lastTemperature prometheus.Gauge
	lastAQI         prometheus.Gauge
	lastCycle       prometheus.Gauge
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		cycles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kiosk_cycles_total",
				Help: "Motion-triggered cycles by outcome",
			},
			[]string{"outcome"},
		),
		cycleErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kiosk_cycle_errors_total",
				Help: "Aborted cycles by error kind (network, parse, hardware)",
			},
			[]string{"kind"},
		),
		clips: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kiosk_forecast_clips_total",
				Help: "Forecast clips selected",
			},
			[]string{"clip"},
		),
		fetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "kiosk_fetch_duration_seconds",
				Help:    "Latency of upstream data fetches",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"source"},
		),
		lastTemperature: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kiosk_last_temperature_fahrenheit",
			Help: "Temperature from the most recent forecast",
		}),
		lastAQI: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kiosk_last_aqi",
			Help: "AQI from the most recent air quality forecast",
		}),
		lastCycle: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kiosk_last_cycle_timestamp_seconds",
			Help: "Unix time the most recent cycle finished",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Collectors()...)
	}
	return m
}

func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.cycles,
		m.cycleErrors,
		m.clips,
		m.fetchDuration,
		m.lastTemperature,
		m.lastAQI,
		m.lastCycle,
	}
}

func (m *Metrics) CycleFinished(outcome string, at time.Time) {
	m.cycles.WithLabelValues(outcome).Inc()
	m.lastCycle.Set(float64(at.Unix()))
}

func (m *Metrics) CycleError(kind string) {
	m.cycleErrors.WithLabelValues(kind).Inc()
}

func (m *Metrics) ClipSelected(clip string) {
	m.clips.WithLabelValues(clip).Inc()
}

func (m *Metrics) ObserveFetch(source string, d time.Duration) {
	m.fetchDuration.WithLabelValues(source).Observe(d.Seconds())
}

func (m *Metrics) SetTemperature(f int) {
	m.lastTemperature.Set(float64(f))
}

func (m *Metrics) SetAQI(aqi int) {
	m.lastAQI.Set(float64(aqi))
}
