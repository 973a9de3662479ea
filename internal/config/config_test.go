package config

import (
	"log/slog"
	"strings"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("ZIP_CODE", "20001")
	t.Setenv("AIRNOW_API_KEY", "test-key")
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v", err)
	}

	if cfg.AppEnv != "dev" || cfg.LogLevel != slog.LevelInfo {
		t.Errorf("env/level = %q/%v", cfg.AppEnv, cfg.LogLevel)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.LCDAddress != 0x27 || cfg.LCDCols != 16 || cfg.LCDRows != 2 {
		t.Errorf("lcd = 0x%02x %dx%d", cfg.LCDAddress, cfg.LCDCols, cfg.LCDRows)
	}
	if cfg.PIRPin != "GPIO18" || cfg.LEDPin != "GPIO15" {
		t.Errorf("pins = %q %q", cfg.PIRPin, cfg.LEDPin)
	}
	if cfg.DisplayRepeats != 6 || cfg.DisplayDwell != 6*time.Second {
		t.Errorf("display = %d x %v", cfg.DisplayRepeats, cfg.DisplayDwell)
	}
	if cfg.SleepDuration != 20*time.Minute || cfg.CycleLinger != 5*time.Second {
		t.Errorf("sleep/linger = %v/%v", cfg.SleepDuration, cfg.CycleLinger)
	}
	if cfg.SensorPollInterval != 100*time.Millisecond {
		t.Errorf("SensorPollInterval = %v", cfg.SensorPollInterval)
	}
	if cfg.NightEndHour != 5 {
		t.Errorf("NightEndHour = %d", cfg.NightEndHour)
	}
	if cfg.AbortCooldown != 30*time.Second {
		t.Errorf("AbortCooldown = %v", cfg.AbortCooldown)
	}
	if cfg.HTTPTimeout != 10*time.Second || cfg.WiFiRestartDelay != 10*time.Second {
		t.Errorf("timeouts = %v/%v", cfg.HTTPTimeout, cfg.WiFiRestartDelay)
	}
	if cfg.AudioDir != "/audio_clips" {
		t.Errorf("AudioDir = %q", cfg.AudioDir)
	}
	if cfg.Hardware != HardwarePeriph || cfg.MotionSource != MotionSourceGPIO {
		t.Errorf("hardware/motion = %q/%q", cfg.Hardware, cfg.MotionSource)
	}
	if cfg.MQTTEnabled() {
		t.Error("MQTT should be disabled without MQTT_BROKER")
	}
	if cfg.MQTTClientID != "cloudpico-kiosk-lobby" {
		t.Errorf("MQTTClientID = %q", cfg.MQTTClientID)
	}
	if !strings.Contains(cfg.WeatherURL, "api.weather.gov") {
		t.Errorf("WeatherURL = %q", cfg.WeatherURL)
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_ENV", " prod ")
	t.Setenv("LOG_LEVEL", "WARNING")
	t.Setenv("LCD_ADDRESS", "0x3F")
	t.Setenv("LCD_ROWS", "4")
	t.Setenv("SLEEP_DURATION", "90s")
	t.Setenv("HARDWARE", "sim")
	t.Setenv("MOTION_SOURCE", "ble")
	t.Setenv("MQTT_BROKER", "broker.local")
	t.Setenv("MQTT_PORT", "8883")
	t.Setenv("KIOSK_ID", "hall")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v", err)
	}
	if cfg.AppEnv != "prod" || cfg.LogLevel != slog.LevelWarn {
		t.Errorf("env/level = %q/%v", cfg.AppEnv, cfg.LogLevel)
	}
	if cfg.LCDAddress != 0x3F || cfg.LCDRows != 4 {
		t.Errorf("lcd = 0x%02x rows %d", cfg.LCDAddress, cfg.LCDRows)
	}
	if cfg.SleepDuration != 90*time.Second {
		t.Errorf("SleepDuration = %v", cfg.SleepDuration)
	}
	if cfg.Hardware != HardwareSim || cfg.MotionSource != MotionSourceBLE {
		t.Errorf("hardware/motion = %q/%q", cfg.Hardware, cfg.MotionSource)
	}
	if !cfg.MQTTEnabled() || cfg.MQTTPort != 8883 || cfg.MQTTClientID != "cloudpico-kiosk-hall" {
		t.Errorf("mqtt = %q:%d %q", cfg.MQTTBroker, cfg.MQTTPort, cfg.MQTTClientID)
	}
}

func TestLoadFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{name: "app env", key: "APP_ENV", value: "staging", wantErr: "APP_ENV"},
		{name: "log level", key: "LOG_LEVEL", value: "loud", wantErr: "LOG_LEVEL"},
		{name: "lcd address", key: "LCD_ADDRESS", value: "twenty", wantErr: "LCD_ADDRESS"},
		{name: "poll interval zero", key: "SENSOR_POLL_INTERVAL", value: "0s", wantErr: "SENSOR_POLL_INTERVAL"},
		{name: "dwell negative", key: "DISPLAY_DWELL", value: "-1s", wantErr: "DISPLAY_DWELL"},
		{name: "repeats zero", key: "DISPLAY_REPEATS", value: "0", wantErr: "DISPLAY_REPEATS"},
		{name: "night hour", key: "NIGHT_END_HOUR", value: "24", wantErr: "NIGHT_END_HOUR"},
		{name: "hardware", key: "HARDWARE", value: "arduino", wantErr: "HARDWARE"},
		{name: "motion source", key: "MOTION_SOURCE", value: "camera", wantErr: "MOTION_SOURCE"},
		{name: "mqtt port", key: "MQTT_PORT", value: "abc", wantErr: "MQTT_PORT"},
		{name: "kiosk id wildcard", key: "KIOSK_ID", value: "a/b", wantErr: "KIOSK_ID"},
		{name: "zip missing", key: "ZIP_CODE", value: " ", wantErr: "ZIP_CODE"},
		{name: "api key missing", key: "AIRNOW_API_KEY", value: "", wantErr: "AIRNOW_API_KEY"},
		{name: "airnow url unparsable", key: "AIRNOW_URL", value: "http://[::1:bad/", wantErr: "AIRNOW_URL"},
		{name: "weather url relative", key: "WEATHER_URL", value: "gridpoints/LWX/96,73", wantErr: "WEATHER_URL"},
		{name: "time url scheme", key: "TIME_URL", value: "ftp://time.example/now", wantErr: "TIME_URL"},
		{name: "abort cooldown negative", key: "ABORT_COOLDOWN", value: "-5s", wantErr: "ABORT_COOLDOWN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.key, tt.value)

			_, err := LoadFromEnv()
			if err == nil {
				t.Fatalf("LoadFromEnv() with %s=%q succeeded, want error", tt.key, tt.value)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}
