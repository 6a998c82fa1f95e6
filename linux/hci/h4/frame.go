package h4

import (
	"fmt"
	"time"
)

// H4 packet indicators.
const (
	commandPacket = 0x01
	aclPacket     = 0x02
	scoPacket     = 0x03
	eventPacket   = 0x04
)

const (
	eventHeaderLength = 3 // indicator, code, length
	aclHeaderLength   = 5 // indicator, handle(2), length(2)
	scoHeaderLength   = 4 // indicator, handle(2), length

	frameTimeout = 500 * time.Millisecond
)

// frame reassembles H4 packets from an unframed byte stream.
type frame struct {
	b       []byte
	timeout time.Time
	out     chan []byte
	pktType byte
	now     func() time.Time
}

func newFrame(c chan []byte) *frame {
	return &frame{
		b:   make([]byte, 0, 256),
		out: c,
		now: time.Now,
	}
}

// Assemble appends b and emits every complete packet on the out channel.
func (f *frame) Assemble(b []byte) {
	if len(b) == 0 {
		return
	}
	if !f.timeout.IsZero() && f.now().After(f.timeout) {
		f.reset()
	}

	if len(f.b) == 0 {
		if err := f.waitStart(b); err != nil {
			return
		}
	} else {
		f.b = append(f.b, b...)
	}

	for {
		rf, err := f.frame()
		if err != nil {
			return
		}
		out := make([]byte, len(rf))
		copy(out, rf)
		f.out <- out

		rem := f.b[len(rf):]
		f.reset()
		if len(rem) == 0 {
			return
		}
		if err := f.waitStart(rem); err != nil {
			return
		}
	}
}

func (f *frame) reset() {
	f.b = make([]byte, 0, 256)
	f.timeout = time.Time{}
	f.pktType = 0
}

// waitStart drops bytes up to the first packet indicator.
func (f *frame) waitStart(b []byte) error {
	for i, v := range b {
		switch v {
		case eventPacket, aclPacket, scoPacket:
		default:
			continue
		}

		f.pktType = v
		f.timeout = f.now().Add(frameTimeout)
		f.b = append(f.b, b[i:]...)
		return nil
	}
	return fmt.Errorf("couldnt find start byte")
}

func (f *frame) length() (int, error) {
	switch f.pktType {
	case aclPacket:
		if len(f.b) < aclHeaderLength {
			return 0, fmt.Errorf("not enough bytes")
		}
		return (int(f.b[3]) | int(f.b[4])<<8) + aclHeaderLength, nil
	case eventPacket:
		if len(f.b) < eventHeaderLength {
			return 0, fmt.Errorf("not enough bytes")
		}
		return int(f.b[2]) + eventHeaderLength, nil
	case scoPacket:
		if len(f.b) < scoHeaderLength {
			return 0, fmt.Errorf("not enough bytes")
		}
		return int(f.b[3]) + scoHeaderLength, nil
	default:
		return 0, fmt.Errorf("invalid packet type %v", f.pktType)
	}
}

func (f *frame) frame() ([]byte, error) {
	tl, err := f.length()
	if err != nil {
		return nil, err
	}
	if len(f.b) < tl {
		return nil, fmt.Errorf("not enough bytes")
	}
	return f.b[:tl], nil
}
