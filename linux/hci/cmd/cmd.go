// Package cmd holds HCI command and return parameter encodings
// [Vol 2, Part E, 7].
package cmd

import (
	"bytes"
	"encoding/binary"
	"io"
)

// Command group fields.
const (
	OGFLinkControl   = 0x01
	OGFLinkPolicy    = 0x02
	OGFController    = 0x03
	OGFInformational = 0x04
	OGFLE            = 0x08
	OGFVendor        = 0x3F
)

// OpCode packs a group and command field.
func OpCode(ogf, ocf int) int { return ogf<<10 | ocf }

// OGF extracts the group field of an opcode.
func OGF(op int) int { return (op >> 10) & 0x3F }

// OCF extracts the command field of an opcode.
func OCF(op int) int { return op & 0x03FF }

type sized interface {
	Len() int
}

func marshal(c sized, b []byte) error {
	buf := bytes.NewBuffer(b)
	buf.Reset()
	if buf.Cap() < c.Len() {
		return io.ErrShortBuffer
	}
	return binary.Write(buf, binary.LittleEndian, c)
}

func unmarshal(c interface{}, b []byte) error {
	return binary.Read(bytes.NewBuffer(b), binary.LittleEndian, c)
}
