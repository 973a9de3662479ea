// Package ble receives motion events advertised by a remote PIR beacon.
package ble

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"tinygo.org/x/bluetooth"
)

// Advertisement is one manufacturer-data record that passed the scan filter.
type Advertisement struct {
	Address   string
	RSSI      int16
	CompanyID uint16
	Data      []byte
	SeenAt    time.Time
}

type Options struct {
	Adapter string // "hci0" by default
	// Prefix selects manufacturer data records; empty accepts every record.
	Prefix []byte
	Logger *slog.Logger
}

// Listener scans a BlueZ adapter until its context ends.
type Listener struct {
	adapter *bluetooth.Adapter
	opts    Options
	logger  *slog.Logger
}

func NewListener(opts Options) *Listener {
	if opts.Adapter == "" {
		opts.Adapter = "hci0"
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Listener{
		adapter: bluetooth.NewAdapter(opts.Adapter),
		opts:    opts,
		logger:  logger,
	}
}

// Run blocks scanning and calls onAdv for each matching record. A cancelled
// ctx is a clean stop and returns nil.
func (l *Listener) Run(ctx context.Context, onAdv func(Advertisement)) error {
	if err := l.adapter.Enable(); err != nil {
		return fmt.Errorf("ble enable (%s): %w", l.opts.Adapter, err)
	}

	go func() {
		<-ctx.Done()
		_ = l.adapter.StopScan()
	}()

	l.logger.Info("ble: scanning for motion beacons",
		"adapter", l.opts.Adapter,
		"prefix", fmt.Sprintf("% X", l.opts.Prefix),
	)

	err := l.adapter.Scan(func(_ *bluetooth.Adapter, r bluetooth.ScanResult) {
		for _, md := range r.ManufacturerData() {
			if !bytes.HasPrefix(md.Data, l.opts.Prefix) {
				continue
			}
			if onAdv != nil {
				onAdv(Advertisement{
					Address:   r.Address.String(),
					RSSI:      r.RSSI,
					CompanyID: md.CompanyID,
					Data:      append([]byte(nil), md.Data...),
					SeenAt:    time.Now(),
				})
			}
			return
		}
	})

	if ctx.Err() != nil {
		l.logger.Info("ble: scanning stopped")
		return nil
	}
	if err != nil {
		return fmt.Errorf("ble scan: %w", err)
	}
	return nil
}
