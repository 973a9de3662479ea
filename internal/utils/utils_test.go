package utils

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestBytesToHex(t *testing.T) {
	tests := []struct {
		in   []byte
		want string
	}{
		{in: nil, want: ""},
		{in: []byte{0x01, 0xD1}, want: "01D1"},
		{in: []byte{0x00, 0xff, 0x7a}, want: "00FF7A"},
	}
	for _, tt := range tests {
		if got := BytesToHex(tt.in); got != tt.want {
			t.Errorf("BytesToHex(% X) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSleep(t *testing.T) {
	t.Run("waits for the duration", func(t *testing.T) {
		start := time.Now()
		if err := Sleep(context.Background(), 20*time.Millisecond); err != nil {
			t.Fatalf("Sleep() error = %v", err)
		}
		if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
			t.Errorf("Sleep returned after %v", elapsed)
		}
	})

	t.Run("returns early on cancel", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := Sleep(ctx, time.Hour)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Sleep() error = %v, want context.Canceled", err)
		}
	})

	t.Run("zero duration", func(t *testing.T) {
		if err := Sleep(context.Background(), 0); err != nil {
			t.Errorf("Sleep(0) error = %v", err)
		}
	})
}
