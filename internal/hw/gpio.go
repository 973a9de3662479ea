package hw

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// InitHost loads the periph.io host drivers. Call once before opening pins or buses.
func InitHost() error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("host.Init: %w", err)
	}
	return nil
}

// PIR reads a passive infrared sensor wired to a digital input.
// The sensor drives the line high while it sees movement.
type PIR struct {
	pin gpio.PinIn
}

func OpenPIR(name string) (*PIR, error) {
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("gpio pin %q not found", name)
	}
	return NewPIR(pin)
}

func NewPIR(pin gpio.PinIn) (*PIR, error) {
	if err := pin.In(gpio.PullDown, gpio.NoEdge); err != nil {
		return nil, Fault("pir", "configure "+pin.Name(), err)
	}
	return &PIR{pin: pin}, nil
}

func (p *PIR) MotionDetected() (bool, error) {
	return p.pin.Read() == gpio.High, nil
}

// LED drives the status indicator. It starts off.
type LED struct {
	pin gpio.PinOut
}

func OpenLED(name string) (*LED, error) {
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("gpio pin %q not found", name)
	}
	return NewLED(pin)
}

func NewLED(pin gpio.PinOut) (*LED, error) {
	if err := pin.Out(gpio.Low); err != nil {
		return nil, Fault("led", "configure "+pin.Name(), err)
	}
	return &LED{pin: pin}, nil
}

func (l *LED) Set(on bool) error {
	return Fault("led", "write", l.pin.Out(gpio.Level(on)))
}

// Halt releases the pin and leaves the indicator off.
func (l *LED) Halt() error {
	if err := l.pin.Out(gpio.Low); err != nil {
		return Fault("led", "halt", err)
	}
	return nil
}
