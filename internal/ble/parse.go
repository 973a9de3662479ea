package ble

import (
	"encoding/binary"
	"fmt"
)

// Motion payload (little-endian): magic 0x01 0xD1, device_id uint32,
// event_id uint32, flags uint8 (11 bytes). Flag bit 0 means motion.
const (
	motionMagic0     = 0x01
	motionMagic1     = 0xD1
	motionPayloadLen = 11

	flagMotion = 0x01
)

// MotionPrefix selects beacon records in a scan.
var MotionPrefix = []byte{motionMagic0, motionMagic1}

type MotionEvent struct {
	DeviceID uint32
	EventID  uint32
	Motion   bool
}

func ParseMotionPayload(data []byte) (MotionEvent, error) {
	if len(data) < motionPayloadLen {
		return MotionEvent{}, fmt.Errorf("payload too short: %d", len(data))
	}
	if data[0] != motionMagic0 || data[1] != motionMagic1 {
		return MotionEvent{}, fmt.Errorf("invalid magic: %02X %02X", data[0], data[1])
	}
	return MotionEvent{
		DeviceID: binary.LittleEndian.Uint32(data[2:6]),
		EventID:  binary.LittleEndian.Uint32(data[6:10]),
		Motion:   data[10]&flagMotion != 0,
	}, nil
}

// EncodeMotionPayload is the inverse of ParseMotionPayload.
func EncodeMotionPayload(ev MotionEvent) []byte {
	b := make([]byte, motionPayloadLen)
	b[0], b[1] = motionMagic0, motionMagic1
	binary.LittleEndian.PutUint32(b[2:6], ev.DeviceID)
	binary.LittleEndian.PutUint32(b[6:10], ev.EventID)
	if ev.Motion {
		b[10] = flagMotion
	}
	return b
}
