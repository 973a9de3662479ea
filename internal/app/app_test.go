package app

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"cloudpico-kiosk/internal/config"
	"cloudpico-kiosk/internal/hw"
)

func TestOpenDevices_Sim(t *testing.T) {
	cfg := config.Config{Hardware: config.HardwareSim, MotionSource: config.MotionSourceGPIO}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	devices, err := openDevices(context.Background(), cfg, logger)
	if err != nil {
		t.Fatalf("openDevices() error = %v", err)
	}
	defer devices.Close()

	if _, ok := devices.Motion.(*hw.SimMotion); !ok {
		t.Errorf("motion = %T, want *hw.SimMotion", devices.Motion)
	}
	if _, ok := devices.Display.(*hw.SimDisplay); !ok {
		t.Errorf("display = %T, want *hw.SimDisplay", devices.Display)
	}
	if err := devices.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestStaleAfter(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
		want time.Duration
	}{
		{
			name: "long sleep dominates",
			cfg: config.Config{
				DisplayRepeats: 6, DisplayDwell: 6 * time.Second,
				CycleLinger: 5 * time.Second, HTTPTimeout: 10 * time.Second,
				SleepDuration: 20 * time.Minute,
			},
			want: 21 * time.Minute,
		},
		{
			name: "cycle dominates",
			cfg: config.Config{
				DisplayRepeats: 6, DisplayDwell: 6 * time.Second,
				CycleLinger: 5 * time.Second, HTTPTimeout: 10 * time.Second,
				SleepDuration: time.Second,
			},
			// 108s of screens + 5s linger + 30s fetches + 2m audio + 1m.
			want: 108*time.Second + 5*time.Second + 30*time.Second + 3*time.Minute,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := staleAfter(tt.cfg); got != tt.want {
				t.Errorf("staleAfter() = %v, want %v", got, tt.want)
			}
		})
	}
}
