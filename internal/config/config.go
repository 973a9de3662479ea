package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	HardwarePeriph = "periph"
	HardwareSim    = "sim"

	MotionSourceGPIO = "gpio"
	MotionSourceBLE  = "ble"
)

type Config struct {
	AppEnv   string
	LogLevel slog.Level
	KioskID  string
	HTTPAddr string

	WiFiSSID         string
	WiFiPassword     string
	WiFiRestartDelay time.Duration

	TimeURL      string
	WeatherURL   string
	AirNowURL    string
	ZipCode      string
	AirNowAPIKey string
	HTTPTimeout  time.Duration
	UserAgent    string

	Hardware        string
	MotionSource    string
	PIRPin          string
	LEDPin          string
	LCDI2CBus       string
	LCDAddress      uint16
	LCDCols         int
	LCDRows         int
	AudioDir        string
	AudioSampleRate int
	BLEAdapter      string
	BLEMotionWindow time.Duration

	SensorPollInterval time.Duration
	DisplayRepeats     int
	DisplayDwell       time.Duration
	CycleLinger        time.Duration
	SleepDuration      time.Duration
	// AbortCooldown is the pause after an aborted cycle before motion is
	// watched again.
	AbortCooldown time.Duration
	NightEndHour  int

	// MQTTBroker empty disables cycle reporting.
	MQTTBroker   string
	MQTTPort     int
	MQTTClientID string
}

func LoadFromEnv() (Config, error) {
	appEnv := envOr("APP_ENV", "dev")
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	level, err := parseLogLevel(envOr("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, err
	}

	kioskID := envOr("KIOSK_ID", "lobby")
	if strings.ContainsAny(kioskID, "/+#") {
		return Config{}, fmt.Errorf("invalid KIOSK_ID %q: must not contain / + #", kioskID)
	}

	wifiRestartDelay, err := durationEnv("WIFI_RESTART_DELAY", "10s")
	if err != nil {
		return Config{}, err
	}
	httpTimeout, err := positiveDurationEnv("HTTP_TIMEOUT", "10s")
	if err != nil {
		return Config{}, err
	}

	zipCode := strings.TrimSpace(os.Getenv("ZIP_CODE"))
	if zipCode == "" {
		return Config{}, fmt.Errorf("ZIP_CODE is required")
	}
	apiKey := strings.TrimSpace(os.Getenv("AIRNOW_API_KEY"))
	if apiKey == "" {
		return Config{}, fmt.Errorf("AIRNOW_API_KEY is required")
	}

	hardware := envOr("HARDWARE", HardwarePeriph)
	switch hardware {
	case HardwarePeriph, HardwareSim:
	default:
		return Config{}, fmt.Errorf("invalid HARDWARE %q (allowed: periph, sim)", hardware)
	}
	motionSource := envOr("MOTION_SOURCE", MotionSourceGPIO)
	switch motionSource {
	case MotionSourceGPIO, MotionSourceBLE:
	default:
		return Config{}, fmt.Errorf("invalid MOTION_SOURCE %q (allowed: gpio, ble)", motionSource)
	}

	lcdAddressStr := envOr("LCD_ADDRESS", "0x27")
	lcdAddress, err := strconv.ParseUint(lcdAddressStr, 0, 16)
	if err != nil {
		return Config{}, fmt.Errorf("invalid LCD_ADDRESS %q: %w", lcdAddressStr, err)
	}
	lcdCols, err := positiveIntEnv("LCD_COLS", "16")
	if err != nil {
		return Config{}, err
	}
	lcdRows, err := positiveIntEnv("LCD_ROWS", "2")
	if err != nil {
		return Config{}, err
	}
	audioSampleRate, err := positiveIntEnv("AUDIO_SAMPLE_RATE", "44100")
	if err != nil {
		return Config{}, err
	}
	bleMotionWindow, err := positiveDurationEnv("BLE_MOTION_WINDOW", "3s")
	if err != nil {
		return Config{}, err
	}

	sensorPollInterval, err := positiveDurationEnv("SENSOR_POLL_INTERVAL", "100ms")
	if err != nil {
		return Config{}, err
	}
	displayRepeats, err := positiveIntEnv("DISPLAY_REPEATS", "6")
	if err != nil {
		return Config{}, err
	}
	displayDwell, err := durationEnv("DISPLAY_DWELL", "6s")
	if err != nil {
		return Config{}, err
	}
	cycleLinger, err := durationEnv("CYCLE_LINGER", "5s")
	if err != nil {
		return Config{}, err
	}
	sleepDuration, err := durationEnv("SLEEP_DURATION", "20m")
	if err != nil {
		return Config{}, err
	}

	nightEndHourStr := envOr("NIGHT_END_HOUR", "5")
	nightEndHour, err := strconv.Atoi(nightEndHourStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid NIGHT_END_HOUR %q: %w", nightEndHourStr, err)
	}
	if nightEndHour < 0 || nightEndHour > 23 {
		return Config{}, fmt.Errorf("NIGHT_END_HOUR must be within 0..23, got %d", nightEndHour)
	}

	abortCooldown, err := durationEnv("ABORT_COOLDOWN", "30s")
	if err != nil {
		return Config{}, err
	}

	timeURL, err := urlEnv("TIME_URL", "https://worldtimeapi.org/api/timezone/America/New_York")
	if err != nil {
		return Config{}, err
	}
	weatherURL, err := urlEnv("WEATHER_URL", "https://api.weather.gov/gridpoints/LWX/96,73/forecast")
	if err != nil {
		return Config{}, err
	}
	airNowURL, err := urlEnv("AIRNOW_URL", "https://www.airnowapi.org/aq/forecast/zipCode/")
	if err != nil {
		return Config{}, err
	}

	mqttPortStr := envOr("MQTT_PORT", "1883")
	mqttPort, err := strconv.Atoi(mqttPortStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid MQTT_PORT %q: %w", mqttPortStr, err)
	}

	return Config{
		AppEnv:   appEnv,
		LogLevel: level,
		KioskID:  kioskID,
		HTTPAddr: envOr("HTTP_ADDR", ":8080"),

		WiFiSSID:         strings.TrimSpace(os.Getenv("WIFI_SSID")),
		WiFiPassword:     os.Getenv("WIFI_PASSWORD"),
		WiFiRestartDelay: wifiRestartDelay,

		TimeURL:      timeURL,
		WeatherURL:   weatherURL,
		AirNowURL:    airNowURL,
		ZipCode:      zipCode,
		AirNowAPIKey: apiKey,
		HTTPTimeout:  httpTimeout,
		UserAgent:    envOr("USER_AGENT", "cloudpico-kiosk (kiosk@example.com)"),

		Hardware:        hardware,
		MotionSource:    motionSource,
		PIRPin:          envOr("PIR_PIN", "GPIO18"),
		LEDPin:          envOr("LED_PIN", "GPIO15"),
		LCDI2CBus:       strings.TrimSpace(os.Getenv("LCD_I2C_BUS")),
		LCDAddress:      uint16(lcdAddress),
		LCDCols:         lcdCols,
		LCDRows:         lcdRows,
		AudioDir:        envOr("AUDIO_DIR", "/audio_clips"),
		AudioSampleRate: audioSampleRate,
		BLEAdapter:      envOr("BLE_ADAPTER", "hci0"),
		BLEMotionWindow: bleMotionWindow,

		SensorPollInterval: sensorPollInterval,
		DisplayRepeats:     displayRepeats,
		DisplayDwell:       displayDwell,
		CycleLinger:        cycleLinger,
		SleepDuration:      sleepDuration,
		AbortCooldown:      abortCooldown,
		NightEndHour:       nightEndHour,

		MQTTBroker:   strings.TrimSpace(os.Getenv("MQTT_BROKER")),
		MQTTPort:     mqttPort,
		MQTTClientID: envOr("MQTT_CLIENT_ID", "cloudpico-kiosk-"+kioskID),
	}, nil
}

// MQTTEnabled reports whether a broker is configured.
func (c Config) MQTTEnabled() bool {
	return c.MQTTBroker != ""
}

// urlEnv requires an absolute http or https URL.
func urlEnv(key, def string) (string, error) {
	s := envOr(key, def)
	u, err := url.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("invalid %s %q: want an http(s) URL with a host", key, s)
	}
	return s, nil
}

func envOr(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func durationEnv(key, def string) (time.Duration, error) {
	s := envOr(key, def)
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative, got %v", key, d)
	}
	return d, nil
}

func positiveDurationEnv(key, def string) (time.Duration, error) {
	d, err := durationEnv(key, def)
	if err != nil {
		return 0, err
	}
	if d == 0 {
		return 0, fmt.Errorf("%s must be positive, got %v", key, d)
	}
	return d, nil
}

func positiveIntEnv(key, def string) (int, error) {
	s := envOr(key, def)
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %d", key, n)
	}
	return n, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
