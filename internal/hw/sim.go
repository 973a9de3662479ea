package hw

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// SimMotion reports motion once every Interval. A zero Interval reports motion on every read.
type SimMotion struct {
	Interval time.Duration

	now  func() time.Time
	last time.Time
}

func (s *SimMotion) MotionDetected() (bool, error) {
	now := time.Now
	if s.now != nil {
		now = s.now
	}
	t := now()
	if s.Interval > 0 && !s.last.IsZero() && t.Sub(s.last) < s.Interval {
		return false, nil
	}
	s.last = t
	return true, nil
}

type SimLED struct {
	Logger *slog.Logger

	mu sync.Mutex
	on bool
}

func (l *SimLED) Set(on bool) error {
	l.mu.Lock()
	l.on = on
	l.mu.Unlock()
	logOrDefault(l.Logger).Debug("sim led", "on", on)
	return nil
}

func (l *SimLED) On() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.on
}

// SimDisplay keeps the text it was last asked to show.
type SimDisplay struct {
	Logger *slog.Logger

	mu        sync.Mutex
	text      string
	backlight bool
}

func (d *SimDisplay) Clear() error {
	d.mu.Lock()
	d.text = ""
	d.mu.Unlock()
	return nil
}

func (d *SimDisplay) Print(text string) error {
	d.mu.Lock()
	d.text = text
	d.mu.Unlock()
	logOrDefault(d.Logger).Info("sim display", "text", text)
	return nil
}

func (d *SimDisplay) SetBacklight(on bool) error {
	d.mu.Lock()
	d.backlight = on
	d.mu.Unlock()
	logOrDefault(d.Logger).Debug("sim backlight", "on", on)
	return nil
}

func (d *SimDisplay) Text() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.text
}

func (d *SimDisplay) Backlight() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.backlight
}

// SimSpeaker logs the clip and waits Duration to stand in for playback.
type SimSpeaker struct {
	Logger   *slog.Logger
	Duration time.Duration
}

func (s *SimSpeaker) PlayAndWait(ctx context.Context, clip string) error {
	logOrDefault(s.Logger).Info("sim speaker", "clip", clip)
	if s.Duration <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.Duration)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func logOrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
