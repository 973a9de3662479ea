package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_CycleCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	at := time.Unix(1709300000, 0)
	m.CycleFinished("completed", at)
	m.CycleFinished("completed", at)
	m.CycleFinished("aborted", at)
	m.CycleError("parse")
	m.ClipSelected("cold and rainy")

	if got := testutil.ToFloat64(m.cycles.WithLabelValues("completed")); got != 2 {
		t.Errorf("completed cycles = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.cycleErrors.WithLabelValues("parse")); got != 1 {
		t.Errorf("parse errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.lastCycle); got != 1709300000 {
		t.Errorf("last cycle = %v", got)
	}

	want := `
# HELP kiosk_forecast_clips_total Forecast clips selected
# TYPE kiosk_forecast_clips_total counter
kiosk_forecast_clips_total{clip="cold and rainy"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(want), "kiosk_forecast_clips_total"); err != nil {
		t.Error(err)
	}
}

func TestMetrics_Gauges(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.SetTemperature(45)
	m.SetAQI(75)
	m.ObserveFetch("weather", 300*time.Millisecond)

	if got := testutil.ToFloat64(m.lastTemperature); got != 45 {
		t.Errorf("temperature = %v, want 45", got)
	}
	if got := testutil.ToFloat64(m.lastAQI); got != 75 {
		t.Errorf("aqi = %v, want 75", got)
	}
	if got := testutil.CollectAndCount(m.fetchDuration); got != 1 {
		t.Errorf("fetch series = %d, want 1", got)
	}
}

func TestNew_NilRegistererSkipsRegistration(t *testing.T) {
	m := New(nil)
	m.CycleFinished("suppressed", time.Now())
	if got := len(m.Collectors()); got != 7 {
		t.Errorf("collectors = %d, want 7", got)
	}
}
