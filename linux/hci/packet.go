package hci

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"
)

// aclPacket implements HCI ACL Data Packet [Vol 2, Part E, 5.4.2], without
// the H4 packet type byte.
// Packet boundary flags , bit[5:6] of handle field's MSB
// Broadcast flags. bit[7:8] of handle field's MSB
type aclPacket []byte

func (a aclPacket) handle() uint16 { return uint16(a[0]) | (uint16(a[1]&0x0f) << 8) }
func (a aclPacket) pbf() int       { return (int(a[1]) >> 4) & 0x3 }
func (a aclPacket) dlen() int      { return int(a[2]) | (int(a[3]) << 8) }
func (a aclPacket) data() []byte   { return a[4:] }

type pdu []byte

func (p pdu) dlen() int   { return int(binary.LittleEndian.Uint16(p[0:2])) }
func (p pdu) cid() uint16 { return binary.LittleEndian.Uint16(p[2:4]) }

// Fragments returns the number of ACL packets needed to carry an L2CAP
// PDU of n bytes through controller buffers of bufSize bytes.
func Fragments(n, bufSize int) int {
	if bufSize <= 0 {
		bufSize = defaultACLBufSize
	}
	if n <= 0 {
		return 1
	}
	return (n-1)/bufSize + 1
}

// buildACL splits an L2CAP PDU into H4 framed ACL data packets.
func buildACL(handle uint16, startFlag int, p []byte, bufSize int) ([][]byte, error) {
	if bufSize <= 0 {
		bufSize = defaultACLBufSize
	}
	if handle > 0x0EFF {
		return nil, fmt.Errorf("invalid connection handle 0x%04X", handle)
	}

	out := make([][]byte, 0, Fragments(len(p), bufSize))
	flags := uint16(startFlag << 4)
	for {
		fragmentLen := len(p)
		if fragmentLen > bufSize {
			fragmentLen = bufSize
		}

		pkt := bytes.NewBuffer(make([]byte, 0, 1+aclHeaderLen+fragmentLen))
		if err := buildPacket(p, pkt, handle, flags, fragmentLen); err != nil {
			return nil, err
		}
		out = append(out, pkt.Bytes())

		flags = PbfContinuing << 4
		p = p[fragmentLen:]
		if len(p) == 0 {
			return out, nil
		}
	}
}

func buildPacket(p []byte, pkt *bytes.Buffer, handle uint16, flags uint16, fragmentLen int) error {
	// HCI Header: pkt Type
	if err := binary.Write(pkt, binary.LittleEndian, PktTypeACLData); err != nil {
		return errors.Wrap(err, "buildPacket")
	}
	// ACL Header: handle and flags
	if err := binary.Write(pkt, binary.LittleEndian, handle|(flags<<8)); err != nil {
		return errors.Wrap(err, "buildPacket")
	}
	// ACL Header: data len
	if err := binary.Write(pkt, binary.LittleEndian, uint16(fragmentLen)); err != nil {
		return errors.Wrap(err, "buildPacket")
	}
	pkt.Write(p[:fragmentLen])
	return nil
}

// reassembler recombines ACL fragments into L2CAP PDUs, one partial PDU
// per connection handle [Vol 3, Part A, 7.2.2].
type reassembler struct {
	pending map[uint16][]byte
	maxLen  int
}

func newReassembler(maxLen int) *reassembler {
	return &reassembler{pending: map[uint16][]byte{}, maxLen: maxLen}
}

// push consumes one ACL packet and returns the completed PDU, if any.
func (r *reassembler) push(a aclPacket) (uint16, []byte, error) {
	if len(a) < aclHeaderLen {
		return 0, nil, fmt.Errorf("short acl packet: % X", []byte(a))
	}
	h := a.handle()
	if a.dlen() != len(a.data()) {
		return h, nil, fmt.Errorf("acl length mismatch: header %d, have %d", a.dlen(), len(a.data()))
	}

	if a.pbf() == PbfContinuing {
		p, ok := r.pending[h]
		if !ok {
			return h, nil, fmt.Errorf("continuation without start on handle 0x%04X", h)
		}
		p = append(p, a.data()...)
		want := l2capHdrLen + pdu(p).dlen()
		switch {
		case len(p) > want:
			delete(r.pending, h)
			return h, nil, fmt.Errorf("pdu overrun on handle 0x%04X: want %d, have %d", h, want, len(p))
		case len(p) == want:
			delete(r.pending, h)
			return h, p, nil
		}
		r.pending[h] = p
		return h, nil, nil
	}

	// Any start flag discards an unfinished PDU.
	var err error
	if _, ok := r.pending[h]; ok {
		delete(r.pending, h)
		err = fmt.Errorf("incomplete pdu dropped on handle 0x%04X", h)
	}

	p := pdu(a.data())
	if len(p) < l2capHdrLen {
		return h, nil, fmt.Errorf("start fragment without l2cap header on handle 0x%04X", h)
	}
	want := l2capHdrLen + p.dlen()
	if r.maxLen > 0 && want > r.maxLen {
		return h, nil, fmt.Errorf("pdu length %d exceeds %d", want, r.maxLen)
	}
	if len(p) >= want {
		return h, append([]byte(nil), p[:want]...), err
	}

	buf := make([]byte, 0, want)
	r.pending[h] = append(buf, p...)
	return h, nil, err
}

// drop forgets any partial PDU of a handle.
func (r *reassembler) drop(h uint16) {
	delete(r.pending, h)
}
