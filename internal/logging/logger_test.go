package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"cloudpico-kiosk/internal/config"
)

func TestNewWithWriter_ProdJSON(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Config{AppEnv: "prod", LogLevel: slog.LevelInfo, KioskID: "lobby"}

	logger := NewWithWriter(&buf, cfg, "1.2.3", "cloudpico-kiosk")
	logger.Info("sleeping", "duration", 20*time.Minute)
	logger.Debug("hidden")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := map[string]any{
		"msg":      "sleeping",
		"app":      "cloudpico-kiosk",
		"version":  "1.2.3",
		"env":      "prod",
		"kiosk_id": "lobby",
		"duration": "20m0s",
	}
	for k, v := range want {
		if rec[k] != v {
			t.Errorf("%s = %v, want %v", k, rec[k], v)
		}
	}
}

func TestNewWithWriter_DevText(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Config{AppEnv: "dev", LogLevel: slog.LevelDebug, KioskID: "lobby"}

	NewWithWriter(&buf, cfg, "dev", "cloudpico-kiosk").Debug("motion detected")

	out := buf.String()
	if !strings.Contains(out, "motion detected") || !strings.Contains(out, "kiosk_id") {
		t.Errorf("output = %q", out)
	}
	if json.Valid(bytes.TrimSpace(buf.Bytes())) {
		t.Error("dev output should not be JSON")
	}
}
