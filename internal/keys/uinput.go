package keys

import (
	"bytes"
	"encoding/binary"
	"time"
)

// Linux input event constants (input-event-codes.h).
const (
	evSyn        = 0x00
	evKey        = 0x01
	synReport    = 0
	valueRelease = 0
	valuePress   = 1
)

// inputEvent mirrors struct input_event on 64-bit Linux:
// struct input_event { struct timeval time; __u16 type; __u16 code; __s32 value; };
type inputEvent struct {
	Sec   int64
	Usec  int64
	Type  uint16
	Code  uint16
	Value int32
}

// encodeKey returns the bytes for one key transition followed by a SYN_REPORT.
func encodeKey(code uint16, value int32, now time.Time) []byte {
	sec := now.Unix()
	usec := int64(now.Nanosecond() / 1000)

	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, inputEvent{Sec: sec, Usec: usec, Type: evKey, Code: code, Value: value})
	binary.Write(&buf, binary.LittleEndian, inputEvent{Sec: sec, Usec: usec, Type: evSyn, Code: synReport, Value: 0})
	return buf.Bytes()
}
