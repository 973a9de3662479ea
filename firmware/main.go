// Firmware for the Pico W motion beacon: watches a PIR sensor on GP18 and
// advertises each rising edge over BLE for a kiosk running MOTION_SOURCE=ble.
package main

import (
	"fmt"
	"hash/crc32"
	"machine"
	"time"
)

const (
	pollInterval = 100 * time.Millisecond
	// holdOff keeps one person walking past from producing a stream of events.
	holdOff = 3 * time.Second
)

func main() {
	machine.Serial.Configure(machine.UARTConfig{})

	// Give the host time to enumerate the USB serial device.
	time.Sleep(1500 * time.Millisecond)
	fmt.Println("boot: kiosk pir beacon")

	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})

	pir := NewPIR(machine.GP18)
	deviceID := crc32.ChecksumIEEE(machine.DeviceID())

	firstEventID, err := machine.GetRNG()
	if err != nil {
		fmt.Println("WARN: no hardware rng, event ids start at 0:", err)
	}

	beacon, err := NewBeacon(deviceID, BeaconOptions{
		Interval:     100 * time.Millisecond,
		Burst:        600 * time.Millisecond,
		FirstEventID: firstEventID,
	})
	if err != nil {
		fmt.Println("FATAL: ble enable failed:", err)
		for {
			time.Sleep(1 * time.Second)
		}
	}
	fmt.Printf("ble: ready device_id=%08X\n", deviceID)

	var prev bool
	for {
		motion := pir.MotionDetected()
		if motion && !prev {
			led.High()
			id, err := beacon.SendMotion()
			if err != nil {
				fmt.Println("ERROR: advertise failed:", err)
			} else {
				fmt.Printf("motion: event_id=%d\n", id)
			}
			led.Low()
			time.Sleep(holdOff)
		}
		prev = motion
		time.Sleep(pollInterval)
	}
}
