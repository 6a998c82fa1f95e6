package l2cap

import (
	"encoding/binary"
	"fmt"
)

// Signal is a signalling command.
type Signal interface {
	Code() int
	Marshal() []byte
}

// CommandReject implements Command Reject (0x01) [Vol 3, Part A, 4.1].
type CommandReject struct {
	Reason uint16
	Data   []byte
}

// Code returns the code of the command.
func (s CommandReject) Code() int { return SignalCommandReject }

// Marshal serializes the command parameters into binary form.
func (s *CommandReject) Marshal() []byte {
	b := make([]byte, 2, 2+len(s.Data))
	binary.LittleEndian.PutUint16(b, s.Reason)
	return append(b, s.Data...)
}

// Unmarshal de-serializes the binary data and stores the result in the receiver.
func (s *CommandReject) Unmarshal(b []byte) error {
	if len(b) < 2 {
		return fmt.Errorf("command reject: short payload % X", b)
	}
	s.Reason = binary.LittleEndian.Uint16(b)
	s.Data = append([]byte(nil), b[2:]...)
	return nil
}

// ConfigurationRequest implements Configuration Request (0x04) [Vol 3, Part A, 4.4].
type ConfigurationRequest struct {
	DestinationCID uint16
	Flags          uint16
	Options        []byte
}

// Code returns the code of the command.
func (s ConfigurationRequest) Code() int { return SignalConfigurationRequest }

// Marshal serializes the command parameters into binary form.
func (s *ConfigurationRequest) Marshal() []byte {
	b := make([]byte, 4, 4+len(s.Options))
	binary.LittleEndian.PutUint16(b, s.DestinationCID)
	binary.LittleEndian.PutUint16(b[2:], s.Flags)
	return append(b, s.Options...)
}

// Unmarshal de-serializes the binary data and stores the result in the receiver.
func (s *ConfigurationRequest) Unmarshal(b []byte) error {
	if len(b) < 4 {
		return fmt.Errorf("config request: short payload % X", b)
	}
	s.DestinationCID = binary.LittleEndian.Uint16(b)
	s.Flags = binary.LittleEndian.Uint16(b[2:])
	s.Options = append([]byte(nil), b[4:]...)
	return nil
}

// ConfigurationResponse implements Configuration Response (0x05) [Vol 3, Part A, 4.5].
type ConfigurationResponse struct {
	SourceCID uint16
	Flags     uint16
	Result    uint16
	Options   []byte
}

// Code returns the code of the command.
func (s ConfigurationResponse) Code() int { return SignalConfigurationResponse }

// Marshal serializes the command parameters into binary form.
func (s *ConfigurationResponse) Marshal() []byte {
	b := make([]byte, 6, 6+len(s.Options))
	binary.LittleEndian.PutUint16(b, s.SourceCID)
	binary.LittleEndian.PutUint16(b[2:], s.Flags)
	binary.LittleEndian.PutUint16(b[4:], s.Result)
	return append(b, s.Options...)
}

// Unmarshal de-serializes the binary data and stores the result in the receiver.
func (s *ConfigurationResponse) Unmarshal(b []byte) error {
	if len(b) < 6 {
		return fmt.Errorf("config response: short payload % X", b)
	}
	s.SourceCID = binary.LittleEndian.Uint16(b)
	s.Flags = binary.LittleEndian.Uint16(b[2:])
	s.Result = binary.LittleEndian.Uint16(b[4:])
	s.Options = append([]byte(nil), b[6:]...)
	return nil
}

// EchoRequest implements Echo Request (0x08) [Vol 3, Part A, 4.8].
type EchoRequest struct {
	Data []byte
}

// Code returns the code of the command.
func (s EchoRequest) Code() int { return SignalEchoRequest }

// Marshal serializes the command parameters into binary form.
func (s *EchoRequest) Marshal() []byte { return append([]byte(nil), s.Data...) }

// EchoResponse implements Echo Response (0x09) [Vol 3, Part A, 4.9].
type EchoResponse struct {
	Data []byte
}

// Code returns the code of the command.
func (s EchoResponse) Code() int { return SignalEchoResponse }

// Marshal serializes the command parameters into binary form.
func (s *EchoResponse) Marshal() []byte { return append([]byte(nil), s.Data...) }

// InformationResponse implements Information Response (0x0B) [Vol 3, Part A, 4.11].
type InformationResponse struct {
	InfoType uint16
	Result   uint16
	Data     []byte
}

// Code returns the code of the command.
func (s InformationResponse) Code() int { return SignalInformationResponse }

// Marshal serializes the command parameters into binary form.
func (s *InformationResponse) Marshal() []byte {
	b := make([]byte, 4, 4+len(s.Data))
	binary.LittleEndian.PutUint16(b, s.InfoType)
	binary.LittleEndian.PutUint16(b[2:], s.Result)
	return append(b, s.Data...)
}

// Unmarshal de-serializes the binary data and stores the result in the receiver.
func (s *InformationResponse) Unmarshal(b []byte) error {
	if len(b) < 4 {
		return fmt.Errorf("info response: short payload % X", b)
	}
	s.InfoType = binary.LittleEndian.Uint16(b)
	s.Result = binary.LittleEndian.Uint16(b[2:])
	s.Data = append([]byte(nil), b[4:]...)
	return nil
}

// sigCmd is one signalling command: code, identifier, length, data.
type sigCmd []byte

func (c sigCmd) code() uint8  { return c[0] }
func (c sigCmd) id() uint8    { return c[1] }
func (c sigCmd) dlen() int    { return int(binary.LittleEndian.Uint16(c[2:4])) }
func (c sigCmd) data() []byte { return c[cmdHdrLen : cmdHdrLen+c.dlen()] }

// splitCommands cuts a signalling PDU payload into commands, left to
// right. A command whose declared length runs past the payload ends the
// walk; the commands before it are returned with an error.
func splitCommands(b []byte) ([]sigCmd, error) {
	var out []sigCmd
	for len(b) > 0 {
		if len(b) < cmdHdrLen {
			return out, fmt.Errorf("truncated command header: % X", b)
		}
		c := sigCmd(b)
		n := cmdHdrLen + c.dlen()
		if n > len(b) {
			return out, fmt.Errorf("command 0x%02X id %d: length %d exceeds remaining %d", c.code(), c.id(), c.dlen(), len(b)-cmdHdrLen)
		}
		out = append(out, c[:n])
		b = b[n:]
	}
	return out, nil
}

// buildPDU prefixes payload with the basic L2CAP header.
func buildPDU(cid uint16, payload []byte) []byte {
	b := make([]byte, hdrLen, hdrLen+len(payload))
	binary.LittleEndian.PutUint16(b, uint16(len(payload)))
	binary.LittleEndian.PutUint16(b[2:], cid)
	return append(b, payload...)
}

// buildSignal encodes one command in a signalling PDU for cid.
func buildSignal(cid uint16, id uint8, s Signal) []byte {
	d := s.Marshal()
	b := make([]byte, cmdHdrLen, cmdHdrLen+len(d))
	b[0] = byte(s.Code())
	b[1] = id
	binary.LittleEndian.PutUint16(b[2:], uint16(len(d)))
	return buildPDU(cid, append(b, d...))
}
