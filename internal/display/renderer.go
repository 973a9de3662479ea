// Package display turns a cycle's weather and air quality into timed screens.
package display

import (
	"context"
	"fmt"
	"time"

	"cloudpico-kiosk/internal/forecast"
	"cloudpico-kiosk/internal/utils"
)

const (
	DefaultRepeats   = 6
	DefaultDwell     = 6 * time.Second
	ScreensPerRepeat = 3
)

// Screen is the part of a character display the renderer needs.
type Screen interface {
	Clear() error
	Print(text string) error
}

type Renderer struct {
	Screen  Screen
	Repeats int
	Dwell   time.Duration

	// Sleep defaults to utils.Sleep.
	Sleep utils.SleepFunc
}

func New(screen Screen, repeats int, dwell time.Duration) *Renderer {
	return &Renderer{Screen: screen, Repeats: repeats, Dwell: dwell}
}

// Screens returns the three facts shown per repeat, in display order.
func Screens(w forecast.WeatherReading, aq forecast.AirQuality) []string {
	return []string{
		fmt.Sprintf("Temp: %dF", w.TemperatureF),
		fmt.Sprintf("Wind:%s %s", w.WindSpeed, w.WindDirection),
		fmt.Sprintf("Rain:%d%%\nAQI:%s", w.Precipitation(), aq),
	}
}

// RenderCycle shows every screen Repeats times, holding each for Dwell and
// clearing it afterwards. Only ctx cancellation stops it early.
func (r *Renderer) RenderCycle(ctx context.Context, w forecast.WeatherReading, aq forecast.AirQuality) error {
	sleep := r.Sleep
	if sleep == nil {
		sleep = utils.Sleep
	}
	screens := Screens(w, aq)
	for rep := 0; rep < r.Repeats; rep++ {
		for i, text := range screens {
			if err := r.Screen.Print(text); err != nil {
				return fmt.Errorf("show screen %d: %w", i, err)
			}
			if err := sleep(ctx, r.Dwell); err != nil {
				return err
			}
			if err := r.Screen.Clear(); err != nil {
				return fmt.Errorf("clear screen %d: %w", i, err)
			}
		}
	}
	return nil
}
