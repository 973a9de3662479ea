// BLE advertising for the Pico W motion beacon.
// Manufacturer data format: [0:2] magic 0x01 0xD1, [2:6] device_id uint32 LE,
// [6:10] event_id uint32 LE, [10] flags (bit 0 = motion). 11 bytes total.
package main

import (
	"encoding/binary"
	"time"

	"tinygo.org/x/bluetooth"
)

const (
	payloadMagic0 = 0x01
	payloadMagic1 = 0xD1
	payloadLen    = 11
	flagMotion    = 0x01
)

type BeaconOptions struct {
	Interval time.Duration
	// Burst is how long each event is advertised before the radio goes quiet.
	Burst time.Duration
	// FirstEventID should differ across boots so receivers can tell a
	// restarted counter from repeats.
	FirstEventID uint32
}

type Beacon struct {
	deviceID      uint32
	nextEventID   uint32
	payload       [payloadLen]byte
	options       bluetooth.AdvertisementOptions
	advertisement *bluetooth.Advertisement
	burst         time.Duration
}

func NewBeacon(deviceID uint32, opts BeaconOptions) (*Beacon, error) {
	adapter := bluetooth.DefaultAdapter
	if err := adapter.Enable(); err != nil {
		return nil, err
	}

	b := &Beacon{
		deviceID:      deviceID,
		nextEventID:   opts.FirstEventID,
		advertisement: adapter.DefaultAdvertisement(),
		burst:         opts.Burst,
	}
	b.options = bluetooth.AdvertisementOptions{
		AdvertisementType: bluetooth.AdvertisingTypeNonConnInd,
		LocalName:         "kiosk-pir",
		Interval:          bluetooth.NewDuration(opts.Interval),
		ManufacturerData: []bluetooth.ManufacturerDataElement{
			{CompanyID: 0xFFFF, Data: b.payload[:]},
		},
	}
	return b, nil
}

// encode fills the reusable payload buffer; no allocations on the hot path.
func (b *Beacon) encode(eventID uint32, motion bool) {
	b.payload[0] = payloadMagic0
	b.payload[1] = payloadMagic1
	binary.LittleEndian.PutUint32(b.payload[2:6], b.deviceID)
	binary.LittleEndian.PutUint32(b.payload[6:10], eventID)
	b.payload[10] = 0
	if motion {
		b.payload[10] = flagMotion
	}
}

// SendMotion advertises one motion event for the burst duration and returns its ID.
func (b *Beacon) SendMotion() (uint32, error) {
	id := b.nextEventID
	b.nextEventID++

	b.encode(id, true)

	if err := b.advertisement.Configure(b.options); err != nil {
		return 0, err
	}
	if err := b.advertisement.Start(); err != nil {
		b.advertisement.Stop()
		return 0, err
	}

	time.Sleep(b.burst)
	b.advertisement.Stop()
	return id, nil
}
