// Package hw holds the kiosk's hardware handles: motion sensor, status LED,
// character display and speaker.
package hw

import (
	"context"
	"errors"
	"fmt"
)

type MotionSensor interface {
	MotionDetected() (bool, error)
}

type Indicator interface {
	Set(on bool) error
}

// Display is a character grid with a switchable backlight. Print starts at the
// top-left corner; a newline moves to the next row.
type Display interface {
	Clear() error
	Print(text string) error
	SetBacklight(on bool) error
}

// Speaker plays a named clip and returns once playback has finished.
type Speaker interface {
	PlayAndWait(ctx context.Context, clip string) error
}

// DeviceContext is built once at startup and handed to the control loop.
// Handles are used from a single goroutine.
type DeviceContext struct {
	Motion  MotionSensor
	LED     Indicator
	Display Display
	Speaker Speaker

	closers []func() error
}

// OnClose registers a release function run by Close in reverse order.
func (d *DeviceContext) OnClose(fn func() error) {
	d.closers = append(d.closers, fn)
}

func (d *DeviceContext) Validate() error {
	var missing []string
	if d.Motion == nil {
		missing = append(missing, "motion sensor")
	}
	if d.LED == nil {
		missing = append(missing, "led")
	}
	if d.Display == nil {
		missing = append(missing, "display")
	}
	if d.Speaker == nil {
		missing = append(missing, "speaker")
	}
	if len(missing) > 0 {
		return fmt.Errorf("device context incomplete: missing %v", missing)
	}
	return nil
}

func (d *DeviceContext) Close() error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	d.closers = nil
	return errors.Join(errs...)
}
