// Package kiosk runs the motion-triggered forecast cycle.
package kiosk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"cloudpico-kiosk/internal/forecast"
	"cloudpico-kiosk/internal/hw"
	"cloudpico-kiosk/internal/metrics"
	"cloudpico-kiosk/internal/types"
	"cloudpico-kiosk/internal/utils"
)

const (
	StateIdle     = "idle"
	StateActive   = "active"
	StateSleeping = "sleeping"
)

type TimeFetcher interface {
	FetchCurrentTime(ctx context.Context) (forecast.TimeReading, error)
}

type WeatherFetcher interface {
	FetchForecast(ctx context.Context) (forecast.WeatherReading, error)
}

type AirQualityFetcher interface {
	FetchAQI(ctx context.Context, date string) (int, forecast.AirQuality, error)
}

type Renderer interface {
	RenderCycle(ctx context.Context, w forecast.WeatherReading, aq forecast.AirQuality) error
}

// Reporter receives every finished cycle. Implementations must not block for long.
type Reporter interface {
	Report(ctx context.Context, report types.CycleReport)
}

// SessionCloser drops pooled network connections at the end of a cycle.
type SessionCloser interface {
	CloseIdleConnections()
}

type Config struct {
	KioskID       string
	PollInterval  time.Duration
	Linger        time.Duration
	SleepDuration time.Duration
	// AbortCooldown is slept after an aborted cycle. The sensor must then
	// read quiet once before the next cycle can start.
	AbortCooldown time.Duration
	NightEndHour  int
}

// Deps are the loop's collaborators. Reporter, Metrics, Session and Logger are optional.
type Deps struct {
	Devices    *hw.DeviceContext
	Time       TimeFetcher
	Weather    WeatherFetcher
	AirQuality AirQualityFetcher
	Renderer   Renderer
	Reporter   Reporter
	Metrics    *metrics.Metrics
	Session    SessionCloser
	Logger     *slog.Logger
}

type Loop struct {
	cfg      Config
	devices  *hw.DeviceContext
	time     TimeFetcher
	weather  WeatherFetcher
	air      AirQualityFetcher
	renderer Renderer
	reporter Reporter
	metrics  *metrics.Metrics
	session  SessionCloser
	logger   *slog.Logger

	sleep utils.SleepFunc
	now   func() time.Time
	newID func() string

	// motionFailures counts consecutive failed sensor reads.
	motionFailures int

	mu     sync.Mutex
	status types.LoopStatus
}

func New(cfg Config, deps Deps) (*Loop, error) {
	if deps.Devices == nil {
		return nil, errors.New("kiosk: devices required")
	}
	if err := deps.Devices.Validate(); err != nil {
		return nil, err
	}
	if deps.Time == nil || deps.Weather == nil || deps.AirQuality == nil || deps.Renderer == nil {
		return nil, errors.New("kiosk: time, weather, air quality and renderer are required")
	}
	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("kiosk: poll interval must be positive, got %v", cfg.PollInterval)
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		cfg:      cfg,
		devices:  deps.Devices,
		time:     deps.Time,
		weather:  deps.Weather,
		air:      deps.AirQuality,
		renderer: deps.Renderer,
		reporter: deps.Reporter,
		metrics:  deps.Metrics,
		session:  deps.Session,
		logger:   logger,
		sleep:    utils.Sleep,
		now:      time.Now,
		newID:    uuid.NewString,
	}, nil
}

// Run polls the motion sensor and runs a cycle on every detection. It only
// returns once ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	l.teardown(l.logger)
	l.setState(StateIdle)
	l.logger.Info("waiting for motion", "poll_interval", l.cfg.PollInterval)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if !l.readMotion() {
			if err := l.sleep(ctx, l.cfg.PollInterval); err != nil {
				return err
			}
			continue
		}

		l.logger.Info("motion detected")
		report := l.RunCycle(ctx)
		if err := ctx.Err(); err != nil {
			return err
		}
		if report.Outcome == types.OutcomeAborted {
			l.setState(StateIdle)
			if err := l.rearm(ctx); err != nil {
				return err
			}
			continue
		}
		l.setState(StateSleeping)
		l.logger.Info("sleeping", "duration", l.cfg.SleepDuration)
		if err := l.sleep(ctx, l.cfg.SleepDuration); err != nil {
			return err
		}
		l.setState(StateIdle)
	}
}

// rearm waits out the abort cooldown and then for the sensor to read quiet,
// so a lasting failure or a sensor that stays high does not retrigger at once.
func (l *Loop) rearm(ctx context.Context) error {
	if l.cfg.AbortCooldown > 0 {
		l.logger.Info("cooling down after abort", "duration", l.cfg.AbortCooldown)
		if err := l.sleep(ctx, l.cfg.AbortCooldown); err != nil {
			return err
		}
	}
	for l.readMotion() {
		if err := l.sleep(ctx, l.cfg.PollInterval); err != nil {
			return err
		}
	}
	return nil
}

// readMotion reads the sensor. A failed read counts as no motion; only the
// first failure of a run and the recovery are logged above debug.
func (l *Loop) readMotion() bool {
	motion, err := l.devices.Motion.MotionDetected()
	if err != nil {
		l.motionFailures++
		if l.motionFailures == 1 {
			l.logger.Warn("motion read failed", "error", err)
		} else {
			l.logger.Debug("motion read failed", "error", err, "consecutive", l.motionFailures)
		}
		return false
	}
	if l.motionFailures > 0 {
		l.logger.Info("motion sensor recovered", "failed_reads", l.motionFailures)
		l.motionFailures = 0
	}
	return motion
}

// RunCycle handles a single motion event from indicator-on to teardown.
// Failures abort the cycle and are reflected in the returned report.
func (l *Loop) RunCycle(ctx context.Context) types.CycleReport {
	cycle := forecast.NewCycleContext(l.newID(), l.now())
	log := l.logger.With("cycle_id", cycle.ID)
	l.setState(StateActive)

	outcome, err := l.runActive(ctx, cycle, log)
	if l.session != nil {
		l.session.CloseIdleConnections()
	}

	var kind string
	if err != nil {
		outcome = types.OutcomeAborted
		kind = ErrorKind(err)
		if ctx.Err() == nil {
			log.Error("cycle aborted", "kind", kind, "error", err)
		}
		l.teardown(log)
	} else {
		l.setState(StateSleeping)
		// Leave the last screen up briefly. Shutdown cuts the linger short.
		_ = l.sleep(ctx, l.cfg.Linger)
		l.teardown(log)
	}

	report := buildReport(l.cfg.KioskID, cycle, outcome, l.now())
	if err != nil {
		report.ErrorKind = kind
		report.Error = err.Error()
	}
	l.record(ctx, report, kind)
	return report
}

func (l *Loop) runActive(ctx context.Context, cycle *forecast.CycleContext, log *slog.Logger) (types.Outcome, error) {
	if err := l.devices.LED.Set(true); err != nil {
		return "", fmt.Errorf("indicator on: %w", err)
	}
	if err := l.devices.Display.SetBacklight(true); err != nil {
		return "", fmt.Errorf("backlight on: %w", err)
	}

	start := l.now()
	tr, err := l.time.FetchCurrentTime(ctx)
	l.observe("time", start)
	if err != nil {
		return "", fmt.Errorf("fetch time: %w", err)
	}
	cycle.Time = &tr

	if tr.Hour < l.cfg.NightEndHour {
		log.Info("night hours, staying quiet", "hour", tr.Hour)
		return types.OutcomeSuppressed, nil
	}

	start = l.now()
	w, err := l.weather.FetchForecast(ctx)
	l.observe("weather", start)
	if err != nil {
		return "", fmt.Errorf("fetch weather: %w", err)
	}
	cycle.Weather = &w

	clip := forecast.Classify(w.TemperatureF, w.PrecipitationChance)
	cycle.Clip = &clip
	if l.metrics != nil {
		l.metrics.SetTemperature(w.TemperatureF)
		l.metrics.ClipSelected(clip.Name())
	}
	log.Info("forecast",
		"hour", tr.Hour,
		"temperature_f", w.TemperatureF,
		"precipitation_pct", w.Precipitation(),
		"clip", clip.Name(),
	)

	if err := l.devices.Speaker.PlayAndWait(ctx, clip.Name()); err != nil {
		return "", fmt.Errorf("play %q: %w", clip.Name(), err)
	}

	start = l.now()
	aqi, aq, err := l.air.FetchAQI(ctx, tr.Date)
	l.observe("airnow", start)
	if err != nil {
		return "", fmt.Errorf("fetch air quality: %w", err)
	}
	cycle.AQI = &aqi
	cycle.AirQuality = &aq
	if l.metrics != nil {
		l.metrics.SetAQI(aqi)
	}
	log.Info("air quality", "aqi", aqi, "category", aq.String())

	if err := l.renderer.RenderCycle(ctx, w, aq); err != nil {
		return "", fmt.Errorf("render: %w", err)
	}
	return types.OutcomeCompleted, nil
}

// teardown clears the display and switches the backlight and indicator off.
// Failures are logged; the next cycle tries again.
func (l *Loop) teardown(log *slog.Logger) {
	if err := l.devices.Display.Clear(); err != nil {
		log.Warn("display clear failed", "error", err)
	}
	if err := l.devices.Display.SetBacklight(false); err != nil {
		log.Warn("backlight off failed", "error", err)
	}
	if err := l.devices.LED.Set(false); err != nil {
		log.Warn("indicator off failed", "error", err)
	}
}

func (l *Loop) observe(source string, start time.Time) {
	if l.metrics != nil {
		l.metrics.ObserveFetch(source, l.now().Sub(start))
	}
}

func (l *Loop) record(ctx context.Context, report types.CycleReport, kind string) {
	if l.metrics != nil {
		l.metrics.CycleFinished(string(report.Outcome), report.FinishedAt)
		if kind != "" {
			l.metrics.CycleError(kind)
		}
	}

	l.mu.Lock()
	l.status.Cycles++
	r := report
	l.status.LastCycle = &r
	l.mu.Unlock()

	if l.reporter != nil {
		l.reporter.Report(context.WithoutCancel(ctx), report)
	}
}

func (l *Loop) setState(state string) {
	l.mu.Lock()
	l.status.State = state
	l.status.Since = l.now()
	l.mu.Unlock()
}

// Status is safe to call from any goroutine.
func (l *Loop) Status() types.LoopStatus {
	l.mu.Lock()
	defer l.mu.Unlock()
	st := l.status
	if st.LastCycle != nil {
		r := *st.LastCycle
		st.LastCycle = &r
	}
	return st
}
