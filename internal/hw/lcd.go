package hw

import (
	"fmt"
	"strings"
	"time"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
)

// PCF8574 backpack wiring: P0=RS P1=RW P2=EN P3=backlight P4..P7=D4..D7.
const (
	lcdRS        = 0x01
	lcdEnable    = 0x04
	lcdBacklight = 0x08

	lcdCmdClear       = 0x01
	lcdCmdEntryMode   = 0x06 // increment, no shift
	lcdCmdDisplayOn   = 0x0C // display on, cursor off, blink off
	lcdCmdFunctionSet = 0x28 // 4-bit bus, 2 lines, 5x8 font
	lcdCmdSetDDRAM    = 0x80
)

var lcdRowOffsets = [4]byte{0x00, 0x40, 0x14, 0x54}

// OpenI2C opens an I2C bus by name; "" picks the first available bus.
func OpenI2C(name string) (i2c.BusCloser, error) {
	bus, err := i2creg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("i2creg.Open(%q): %w", name, err)
	}
	return bus, nil
}

type LCDOptions struct {
	Address uint16
	Cols    int
	Rows    int
}

// LCD drives an HD44780 character display through a PCF8574 I2C backpack.
type LCD struct {
	dev       *i2c.Dev
	cols      int
	rows      int
	backlight byte

	delay func(time.Duration)
}

// NewLCD runs the HD44780 4-bit initialisation sequence and leaves the display
// cleared with the backlight off.
func NewLCD(bus i2c.Bus, opts LCDOptions) (*LCD, error) {
	return newLCD(bus, opts, time.Sleep)
}

func newLCD(bus i2c.Bus, opts LCDOptions, delay func(time.Duration)) (*LCD, error) {
	if opts.Cols <= 0 || opts.Rows <= 0 || opts.Rows > len(lcdRowOffsets) {
		return nil, fmt.Errorf("lcd geometry %dx%d not supported", opts.Cols, opts.Rows)
	}
	l := &LCD{
		dev:   &i2c.Dev{Bus: bus, Addr: opts.Address},
		cols:  opts.Cols,
		rows:  opts.Rows,
		delay: delay,
	}
	if err := l.init(); err != nil {
		return nil, Fault("lcd", "init", err)
	}
	return l, nil
}

func (l *LCD) init() error {
	l.delay(50 * time.Millisecond)
	if err := l.expanderWrite(0); err != nil {
		return err
	}

	// Three 8-bit "function set" nibbles, then switch to 4-bit mode.
	for _, wait := range []time.Duration{4500 * time.Microsecond, 4500 * time.Microsecond, 150 * time.Microsecond} {
		if err := l.write4(0x30); err != nil {
			return err
		}
		l.delay(wait)
	}
	if err := l.write4(0x20); err != nil {
		return err
	}

	for _, cmd := range []byte{lcdCmdFunctionSet, lcdCmdDisplayOn} {
		if err := l.command(cmd); err != nil {
			return err
		}
	}
	if err := l.clear(); err != nil {
		return err
	}
	return l.command(lcdCmdEntryMode)
}

func (l *LCD) Clear() error {
	return Fault("lcd", "clear", l.clear())
}

// Print writes text from the top-left corner. Each line is truncated to the
// display width; lines beyond the last row are dropped.
func (l *LCD) Print(text string) error {
	for row, line := range strings.Split(text, "\n") {
		if row >= l.rows {
			break
		}
		if err := l.command(lcdCmdSetDDRAM | lcdRowOffsets[row]); err != nil {
			return Fault("lcd", "print", err)
		}
		for i, b := range lcdBytes(line) {
			if i >= l.cols {
				break
			}
			if err := l.send(b, lcdRS); err != nil {
				return Fault("lcd", "print", err)
			}
		}
	}
	return nil
}

func (l *LCD) SetBacklight(on bool) error {
	if on {
		l.backlight = lcdBacklight
	} else {
		l.backlight = 0
	}
	return Fault("lcd", "backlight", l.expanderWrite(0))
}

func (l *LCD) clear() error {
	if err := l.command(lcdCmdClear); err != nil {
		return err
	}
	l.delay(2 * time.Millisecond)
	return nil
}

func (l *LCD) command(cmd byte) error {
	return l.send(cmd, 0)
}

func (l *LCD) send(value, mode byte) error {
	if err := l.write4(value&0xF0 | mode); err != nil {
		return err
	}
	return l.write4(value<<4&0xF0 | mode)
}

// write4 latches the upper nibble of v by pulsing EN in a single bus write.
func (l *LCD) write4(v byte) error {
	v |= l.backlight
	_, err := l.dev.Write([]byte{v | lcdEnable, v &^ lcdEnable})
	return err
}

func (l *LCD) expanderWrite(v byte) error {
	_, err := l.dev.Write([]byte{v | l.backlight})
	return err
}

// lcdBytes maps text onto the HD44780 A00 character ROM, which covers printable ASCII.
func lcdBytes(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		switch {
		case r == '°':
			out = append(out, 0xDF)
		case r >= 0x20 && r < 0x7F:
			out = append(out, byte(r))
		default:
			out = append(out, '?')
		}
	}
	return out
}
