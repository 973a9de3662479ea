package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"cloudpico-kiosk/internal/config"
	"cloudpico-kiosk/internal/display"
	"cloudpico-kiosk/internal/httpapi"
	"cloudpico-kiosk/internal/kiosk"
	"cloudpico-kiosk/internal/metrics"
	"cloudpico-kiosk/internal/mqtt"
	"cloudpico-kiosk/internal/netclient"
	"cloudpico-kiosk/internal/sources"
	"cloudpico-kiosk/internal/wifi"
)

const (
	// audioAllowance bounds how long a single clip may play.
	audioAllowance  = 2 * time.Minute
	mqttStartupWait = 10 * time.Second
)

func Run(ctx context.Context, cfg config.Config) error {
	logger := slog.Default()
	logger.Info("initializing kiosk",
		"kiosk_id", cfg.KioskID,
		"hardware", cfg.Hardware,
		"motion_source", cfg.MotionSource,
		"http_addr", cfg.HTTPAddr,
		"mqtt_broker", cfg.MQTTBroker,
	)

	provisioner := &wifi.Provisioner{
		Link:         wifi.NMCLI{},
		SSID:         cfg.WiFiSSID,
		Password:     cfg.WiFiPassword,
		RestartDelay: cfg.WiFiRestartDelay,
		Logger:       logger,
	}
	if err := provisioner.Provision(ctx); err != nil {
		return err
	}

	devices, err := openDevices(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := devices.Close(); err != nil {
			logger.Warn("device close failed", "error", err)
		}
	}()

	client := netclient.New(netclient.Options{
		Timeout:   cfg.HTTPTimeout,
		UserAgent: cfg.UserAgent,
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	renderer := display.New(devices.Display, cfg.DisplayRepeats, cfg.DisplayDwell)

	deps := kiosk.Deps{
		Devices:    devices,
		Time:       sources.NewTimeSource(client, cfg.TimeURL),
		Weather:    sources.NewWeatherSource(client, cfg.WeatherURL),
		AirQuality: sources.NewAirQualitySource(client, cfg.AirNowURL, cfg.ZipCode, cfg.AirNowAPIKey),
		Renderer:   renderer,
		Metrics:    m,
		Session:    client,
		Logger:     logger,
	}

	if cfg.MQTTEnabled() {
		mqttClient, err := mqtt.NewClient(cfg, logger)
		if err != nil {
			return err
		}
		connected := make(chan struct{})
		go func() {
			defer close(connected)
			if err := mqttClient.Connect(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("mqtt connect failed", "error", err)
			}
		}()
		defer mqttClient.Disconnect()

		// Give the first cycle a chance to be reported; the broker may still be booting.
		select {
		case <-connected:
		case <-time.After(mqttStartupWait):
			logger.Warn("mqtt still connecting, starting without it", "waited", mqttStartupWait)
		case <-ctx.Done():
			return ctx.Err()
		}
		deps.Reporter = mqttClient
	} else {
		logger.Info("mqtt disabled, cycle reports stay local")
	}

	loop, err := kiosk.New(kiosk.Config{
		KioskID:       cfg.KioskID,
		PollInterval:  cfg.SensorPollInterval,
		Linger:        cfg.CycleLinger,
		SleepDuration: cfg.SleepDuration,
		AbortCooldown: cfg.AbortCooldown,
		NightEndHour:  cfg.NightEndHour,
	}, deps)
	if err != nil {
		return err
	}

	srv := httpapi.NewServer(cfg.HTTPAddr, httpapi.NewMux(httpapi.Options{
		Status:     loop,
		Gatherer:   reg,
		StaleAfter: staleAfter(cfg),
	}))

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listening", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	loopCtx, stopLoop := context.WithCancel(ctx)
	defer stopLoop()
	loopDone := make(chan error, 1)
	go func() {
		loopDone <- loop.Run(loopCtx)
	}()

	var runErr error
	serverDone := false
	select {
	case <-ctx.Done():
	case err := <-errCh:
		serverDone = true
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			runErr = err
		}
	}

	stopLoop()
	if err := <-loopDone; err != nil && !errors.Is(err, context.Canceled) && runErr == nil {
		runErr = err
	}

	if !serverDone {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		slog.Info("http shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil && runErr == nil {
			runErr = err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) && runErr == nil {
			runErr = err
		}
	}

	if runErr != nil {
		return runErr
	}
	return ctx.Err()
}

// staleAfter is how long the loop may sit in one non-idle state before
// /healthz reports it stuck: a long sleep or one full cycle, whichever is longer.
func staleAfter(cfg config.Config) time.Duration {
	cycle := time.Duration(cfg.DisplayRepeats*display.ScreensPerRepeat) * cfg.DisplayDwell
	cycle += cfg.CycleLinger + 3*cfg.HTTPTimeout + audioAllowance
	return max(cfg.SleepDuration, cycle) + time.Minute
}
