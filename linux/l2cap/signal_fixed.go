package l2cap

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Codes of the fixed-length signalling commands.
const (
	SignalConnectionRequest                 = 0x02
	SignalConnectionResponse                = 0x03
	SignalDisconnectRequest                 = 0x06
	SignalDisconnectResponse                = 0x07
	SignalInformationRequest                = 0x0A
	SignalConnectionParameterUpdateRequest  = 0x12
	SignalConnectionParameterUpdateResponse = 0x13
	SignalLECreditBasedConnectionRequest    = 0x14
	SignalLECreditBasedConnectionResponse   = 0x15
	SignalLEFlowControlCredit               = 0x16
)

// putFixed encodes v, a struct of fixed-size fields, little endian in
// field order.
func putFixed(v interface{}) []byte {
	buf := bytes.NewBuffer(make([]byte, 0, binary.Size(v)))
	binary.Write(buf, binary.LittleEndian, v)
	return buf.Bytes()
}

// getFixed decodes b into v. Bytes past the end of v are ignored.
func getFixed(name string, b []byte, v interface{}) error {
	if n := binary.Size(v); len(b) < n {
		return fmt.Errorf("%s: %d bytes, want %d", name, len(b), n)
	}
	return binary.Read(bytes.NewReader(b), binary.LittleEndian, v)
}

// ConnectionRequest implements Connection Request (0x02) [Vol 3, Part A, 4.2].
type ConnectionRequest struct {
	PSM       uint16
	SourceCID uint16
}

func (s ConnectionRequest) Code() int        { return SignalConnectionRequest }
func (s *ConnectionRequest) Marshal() []byte { return putFixed(s) }
func (s *ConnectionRequest) Unmarshal(b []byte) error {
	return getFixed("connection request", b, s)
}

// ConnectionResponse implements Connection Response (0x03) [Vol 3, Part A, 4.3].
type ConnectionResponse struct {
	DestinationCID uint16
	SourceCID      uint16
	Result         uint16
	Status         uint16
}

func (s ConnectionResponse) Code() int        { return SignalConnectionResponse }
func (s *ConnectionResponse) Marshal() []byte { return putFixed(s) }
func (s *ConnectionResponse) Unmarshal(b []byte) error {
	return getFixed("connection response", b, s)
}

// DisconnectRequest implements Disconnection Request (0x06) [Vol 3, Part A, 4.6].
type DisconnectRequest struct {
	DestinationCID uint16
	SourceCID      uint16
}

func (s DisconnectRequest) Code() int        { return SignalDisconnectRequest }
func (s *DisconnectRequest) Marshal() []byte { return putFixed(s) }
func (s *DisconnectRequest) Unmarshal(b []byte) error {
	return getFixed("disconnection request", b, s)
}

// DisconnectResponse implements Disconnection Response (0x07) [Vol 3, Part A, 4.7].
type DisconnectResponse struct {
	DestinationCID uint16
	SourceCID      uint16
}

func (s DisconnectResponse) Code() int        { return SignalDisconnectResponse }
func (s *DisconnectResponse) Marshal() []byte { return putFixed(s) }
func (s *DisconnectResponse) Unmarshal(b []byte) error {
	return getFixed("disconnection response", b, s)
}

// InformationRequest implements Information Request (0x0A) [Vol 3, Part A, 4.10].
type InformationRequest struct {
	InfoType uint16
}

func (s InformationRequest) Code() int        { return SignalInformationRequest }
func (s *InformationRequest) Marshal() []byte { return putFixed(s) }
func (s *InformationRequest) Unmarshal(b []byte) error {
	return getFixed("information request", b, s)
}

// ConnectionParameterUpdateRequest implements Connection Parameter Update
// Request (0x12) [Vol 3, Part A, 4.20].
type ConnectionParameterUpdateRequest struct {
	IntervalMin       uint16
	IntervalMax       uint16
	SlaveLatency      uint16
	TimeoutMultiplier uint16
}

func (s ConnectionParameterUpdateRequest) Code() int {
	return SignalConnectionParameterUpdateRequest
}
func (s *ConnectionParameterUpdateRequest) Marshal() []byte { return putFixed(s) }
func (s *ConnectionParameterUpdateRequest) Unmarshal(b []byte) error {
	return getFixed("connection parameter update request", b, s)
}

// ConnectionParameterUpdateResponse implements Connection Parameter Update
// Response (0x13) [Vol 3, Part A, 4.21].
type ConnectionParameterUpdateResponse struct {
	Result uint16
}

func (s ConnectionParameterUpdateResponse) Code() int {
	return SignalConnectionParameterUpdateResponse
}
func (s *ConnectionParameterUpdateResponse) Marshal() []byte { return putFixed(s) }
func (s *ConnectionParameterUpdateResponse) Unmarshal(b []byte) error {
	return getFixed("connection parameter update response", b, s)
}

// LECreditBasedConnectionRequest implements LE Credit Based Connection
// Request (0x14) [Vol 3, Part A, 4.22].
type LECreditBasedConnectionRequest struct {
	LEPSM          uint16
	SourceCID      uint16
	MTU            uint16
	MPS            uint16
	InitialCredits uint16
}

func (s LECreditBasedConnectionRequest) Code() int        { return SignalLECreditBasedConnectionRequest }
func (s *LECreditBasedConnectionRequest) Marshal() []byte { return putFixed(s) }
func (s *LECreditBasedConnectionRequest) Unmarshal(b []byte) error {
	return getFixed("le credit based connection request", b, s)
}

// LECreditBasedConnectionResponse implements LE Credit Based Connection
// Response (0x15) [Vol 3, Part A, 4.23].
type LECreditBasedConnectionResponse struct {
	DestinationCID uint16
	MTU            uint16
	MPS            uint16
	InitialCredits uint16
	Result         uint16
}

func (s LECreditBasedConnectionResponse) Code() int        { return SignalLECreditBasedConnectionResponse }
func (s *LECreditBasedConnectionResponse) Marshal() []byte { return putFixed(s) }
func (s *LECreditBasedConnectionResponse) Unmarshal(b []byte) error {
	return getFixed("le credit based connection response", b, s)
}

// LEFlowControlCredit implements LE Flow Control Credit (0x16) [Vol 3, Part A, 4.24].
type LEFlowControlCredit struct {
	CID     uint16
	Credits uint16
}

func (s LEFlowControlCredit) Code() int        { return SignalLEFlowControlCredit }
func (s *LEFlowControlCredit) Marshal() []byte { return putFixed(s) }
func (s *LEFlowControlCredit) Unmarshal(b []byte) error {
	return getFixed("le flow control credit", b, s)
}
