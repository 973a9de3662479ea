package ble

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"cloudpico-kiosk/internal/utils"
)

const (
	dedupMaxIDsPerDevice = 500

	// restartGap is the silence after which an event ID at or below the last
	// one seen means the beacon rebooted and restarted its counter. Beacons
	// repeat each event for well under a second.
	restartGap = 2 * time.Second
)

type lastEvent struct {
	id uint32
	at time.Time
}

// MotionSensor latches motion events received over BLE. It satisfies
// hw.MotionSensor; the loop consumes one latch per MotionDetected call.
type MotionSensor struct {
	window time.Duration
	logger *slog.Logger
	now    func() time.Time

	mu      sync.Mutex
	seen    map[string]map[uint32]struct{}
	last    map[string]lastEvent
	latched time.Time
}

func NewMotionSensor(window time.Duration, logger *slog.Logger) *MotionSensor {
	if logger == nil {
		logger = slog.Default()
	}
	return &MotionSensor{
		window: window,
		logger: logger,
		now:    time.Now,
		seen:   make(map[string]map[uint32]struct{}),
		last:   make(map[string]lastEvent),
	}
}

// HandleAdvertisement records a beacon advertisement. Repeated event IDs from
// the same address are ignored.
func (m *MotionSensor) HandleAdvertisement(adv Advertisement) {
	ev, err := ParseMotionPayload(adv.Data)
	if err != nil {
		m.logger.Debug("ble: ignore non-motion payload", "addr", adv.Address, "error", err)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	prev, known := m.last[adv.Address]
	m.last[adv.Address] = lastEvent{id: max(prev.id, ev.EventID), at: now}
	if known && ev.EventID <= prev.id && now.Sub(prev.at) > restartGap {
		m.logger.Info("ble: beacon restarted, forgetting event ids",
			"addr", adv.Address, "event_id", ev.EventID, "last_event_id", prev.id)
		delete(m.seen, adv.Address)
		m.last[adv.Address] = lastEvent{id: ev.EventID, at: now}
	}

	ids := m.seen[adv.Address]
	if ids == nil {
		ids = make(map[uint32]struct{})
		m.seen[adv.Address] = ids
	}
	if _, ok := ids[ev.EventID]; ok {
		return
	}
	if len(ids) >= dedupMaxIDsPerDevice {
		ids = make(map[uint32]struct{})
		m.seen[adv.Address] = ids
	}
	ids[ev.EventID] = struct{}{}

	if !ev.Motion {
		return
	}
	m.latched = now
	m.logger.Info("ble: motion event",
		"addr", adv.Address,
		"device_id", ev.DeviceID,
		"event_id", ev.EventID,
		"rssi", adv.RSSI,
		"data", utils.BytesToHex(adv.Data),
	)
}

// MotionDetected reports and clears a latch younger than the window.
func (m *MotionSensor) MotionDetected() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.latched.IsZero() {
		return false, nil
	}
	fresh := m.now().Sub(m.latched) <= m.window
	m.latched = time.Time{}
	return fresh, nil
}

// Start runs the listener in the background. A listener that cannot start is
// logged; the sensor then never reports motion.
func (m *MotionSensor) Start(ctx context.Context, l *Listener) {
	go func() {
		if err := l.Run(ctx, m.HandleAdvertisement); err != nil {
			m.logger.Error("ble listener stopped", "error", err)
		}
	}()
}
