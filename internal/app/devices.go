package app

import (
	"context"
	"fmt"
	"log/slog"

	"cloudpico-kiosk/internal/audio"
	"cloudpico-kiosk/internal/ble"
	"cloudpico-kiosk/internal/config"
	"cloudpico-kiosk/internal/hw"
)

// openDevices builds the device context for cfg.Hardware. Background work
// (the BLE scanner) stops with ctx. The caller owns Close.
func openDevices(ctx context.Context, cfg config.Config, logger *slog.Logger) (*hw.DeviceContext, error) {
	var (
		devices *hw.DeviceContext
		err     error
	)
	switch cfg.Hardware {
	case config.HardwareSim:
		devices = simDevices(logger)
	default:
		devices, err = periphDevices(cfg)
		if err != nil {
			return nil, err
		}
	}

	if cfg.MotionSource == config.MotionSourceBLE {
		sensor := ble.NewMotionSensor(cfg.BLEMotionWindow, logger)
		sensor.Start(ctx, ble.NewListener(ble.Options{
			Adapter: cfg.BLEAdapter,
			Prefix:  ble.MotionPrefix,
			Logger:  logger,
		}))
		devices.Motion = sensor
		logger.Info("motion source: ble", "adapter", cfg.BLEAdapter, "window", cfg.BLEMotionWindow)
	}

	if err := devices.Validate(); err != nil {
		_ = devices.Close()
		return nil, err
	}
	return devices, nil
}

func simDevices(logger *slog.Logger) *hw.DeviceContext {
	logger.Warn("using simulated hardware")
	return &hw.DeviceContext{
		Motion:  &hw.SimMotion{},
		LED:     &hw.SimLED{Logger: logger},
		Display: &hw.SimDisplay{Logger: logger},
		Speaker: &hw.SimSpeaker{Logger: logger},
	}
}

func periphDevices(cfg config.Config) (_ *hw.DeviceContext, err error) {
	if err := hw.InitHost(); err != nil {
		return nil, err
	}

	devices := &hw.DeviceContext{}
	defer func() {
		if err != nil {
			_ = devices.Close()
		}
	}()

	if cfg.MotionSource == config.MotionSourceGPIO {
		pir, err := hw.OpenPIR(cfg.PIRPin)
		if err != nil {
			return nil, err
		}
		devices.Motion = pir
	}

	led, err := hw.OpenLED(cfg.LEDPin)
	if err != nil {
		return nil, err
	}
	devices.LED = led
	devices.OnClose(led.Halt)

	bus, err := hw.OpenI2C(cfg.LCDI2CBus)
	if err != nil {
		return nil, err
	}
	devices.OnClose(bus.Close)
	lcd, err := hw.NewLCD(bus, hw.LCDOptions{
		Address: cfg.LCDAddress,
		Cols:    cfg.LCDCols,
		Rows:    cfg.LCDRows,
	})
	if err != nil {
		return nil, fmt.Errorf("lcd at %#x: %w", cfg.LCDAddress, err)
	}
	devices.Display = lcd
	devices.OnClose(func() error { return lcd.SetBacklight(false) })

	player, err := audio.NewPlayer(cfg.AudioDir, cfg.AudioSampleRate)
	if err != nil {
		return nil, err
	}
	devices.Speaker = player

	return devices, nil
}
