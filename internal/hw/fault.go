package hw

import "fmt"

// FaultError reports an I/O failure on a hardware device.
type FaultError struct {
	Device string
	Op     string
	Err    error
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("hardware %s: %s: %v", e.Device, e.Op, e.Err)
}

func (e *FaultError) Unwrap() error { return e.Err }

// Fault wraps err as a *FaultError, or returns nil when err is nil.
func Fault(device, op string, err error) error {
	if err == nil {
		return nil
	}
	return &FaultError{Device: device, Op: op, Err: err}
}
