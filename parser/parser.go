// Package parser walks L2CAP configuration option blocks
// [Vol 3, Part A, 5]. Each option is type(1) | length(1) | data.
package parser

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrTruncated is returned when an option runs past the end of the block.
var ErrTruncated = errors.New("truncated option")

// HintBit marks an option the receiver may skip when it does not know it.
const HintBit = 0x80

// OptionOverhead is the type and length header of one option.
const OptionOverhead = 2

// Option types.
var Types = struct {
	MTU          byte
	FlushTimeout byte
	QoS          byte
	FCR          byte
	FCS          byte
	ExtFlowSpec  byte
	ExtWindow    byte
}{
	MTU:          0x01,
	FlushTimeout: 0x02,
	QoS:          0x03,
	FCR:          0x04,
	FCS:          0x05,
	ExtFlowSpec:  0x06,
	ExtWindow:    0x07,
}

type optRecord struct {
	size int
	name string
}

var optDecodeMap = map[byte]optRecord{
	Types.MTU: {
		2,
		"mtu",
	},
	Types.FlushTimeout: {
		2,
		"flush timeout",
	},
	Types.QoS: {
		22,
		"qos",
	},
	Types.FCR: {
		9,
		"fcr",
	},
	Types.FCS: {
		1,
		"fcs",
	},
	Types.ExtFlowSpec: {
		16,
		"extended flow spec",
	},
	Types.ExtWindow: {
		2,
		"extended window size",
	},
}

// Record is one option of a block.
type Record struct {
	Type byte // without the hint bit
	Hint bool
	Data []byte
}

// Known reports whether the option type is understood.
func (r Record) Known() bool {
	_, ok := optDecodeMap[r.Type]
	return ok
}

// Bytes returns the wire encoding of the option.
func (r Record) Bytes() []byte {
	t := r.Type
	if r.Hint {
		t |= HintBit
	}
	b := make([]byte, 0, OptionOverhead+len(r.Data))
	b = append(b, t, byte(len(r.Data)))
	return append(b, r.Data...)
}

func (r Record) String() string {
	if d, ok := optDecodeMap[r.Type]; ok {
		return fmt.Sprintf("%s % X", d.name, r.Data)
	}
	return fmt.Sprintf("option 0x%02X % X", r.Type, r.Data)
}

// Size returns the fixed data length of a known option type.
func Size(typ byte) (int, bool) {
	d, ok := optDecodeMap[typ&^HintBit]
	return d.size, ok
}

// Parse splits an option block into records. Parsing stops at the first
// option whose length runs past the block, or whose length does not match
// its known type; the records decoded so far are returned with the error.
func Parse(b []byte) ([]Record, error) {
	var out []Record
	for i := 0; i < len(b); {
		//type @ offset 0
		//length @ offset 1
		//data @ 2 - (2+length)
		if i+OptionOverhead > len(b) {
			return out, errors.Wrapf(ErrTruncated, "header at idx %v", i)
		}
		typ := b[i]
		length := int(b[i+1])

		start := i + OptionOverhead
		end := start + length
		if end > len(b) {
			return out, errors.Wrapf(ErrTruncated, "want %v, have %v, idx %v", end, len(b), i)
		}

		r := Record{
			Type: typ &^ HintBit,
			Hint: typ&HintBit != 0,
			Data: append([]byte(nil), b[start:end]...),
		}
		if dec, ok := optDecodeMap[r.Type]; ok && dec.size != length {
			return out, fmt.Errorf("option %v: length %v, want %v, idx %v", dec.name, length, dec.size, i)
		}
		out = append(out, r)

		i = end
	}
	return out, nil
}

// Unknown returns the options a receiver must reject: unknown types with
// the hint bit clear.
func Unknown(recs []Record) []Record {
	var out []Record
	for _, r := range recs {
		if !r.Known() && !r.Hint {
			out = append(out, r)
		}
	}
	return out
}

// Append encodes records after b.
func Append(b []byte, recs ...Record) []byte {
	for _, r := range recs {
		b = append(b, r.Bytes()...)
	}
	return b
}
