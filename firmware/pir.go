package main

import "machine"

// PIR is a passive infrared sensor on a pulled-down input pin.
type PIR struct {
	pin machine.Pin
}

func NewPIR(pin machine.Pin) PIR {
	pin.Configure(machine.PinConfig{Mode: machine.PinInputPulldown})
	return PIR{pin: pin}
}

func (p PIR) MotionDetected() bool {
	return p.pin.Get()
}
