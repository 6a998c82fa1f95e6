package cmd

// CreateConnection implements CreateConnection (0x01|0x0005) [Vol 2, Part E, 7.1.5]
type CreateConnection struct {
	BDADDR                 [6]byte
	PacketType             uint16
	PageScanRepetitionMode uint8
	Reserved               uint8
	ClockOffset            uint16
	AllowRoleSwitch        uint8
}

func (c *CreateConnection) String() string {
	return "CreateConnection (0x01|0x0005)"
}

// OpCode returns the opcode of the command.
func (c *CreateConnection) OpCode() int { return OpCode(OGFLinkControl, 0x0005) }

// Len returns the length of the command.
func (c *CreateConnection) Len() int { return 13 }

// Marshal serializes the command parameters into binary form.
func (c *CreateConnection) Marshal(b []byte) error {
	return marshal(c, b)
}

// Disconnect implements Disconnect (0x01|0x0006) [Vol 2, Part E, 7.1.6]
type Disconnect struct {
	ConnectionHandle uint16
	Reason           uint8
}

func (c *Disconnect) String() string {
	return "Disconnect (0x01|0x0006)"
}

// OpCode returns the opcode of the command.
func (c *Disconnect) OpCode() int { return OpCode(OGFLinkControl, 0x0006) }

// Len returns the length of the command.
func (c *Disconnect) Len() int { return 3 }

// Marshal serializes the command parameters into binary form.
func (c *Disconnect) Marshal(b []byte) error {
	return marshal(c, b)
}

// CreateConnectionCancel implements CreateConnectionCancel (0x01|0x0008) [Vol 2, Part E, 7.1.7]
type CreateConnectionCancel struct {
	BDADDR [6]byte
}

func (c *CreateConnectionCancel) String() string {
	return "CreateConnectionCancel (0x01|0x0008)"
}

// OpCode returns the opcode of the command.
func (c *CreateConnectionCancel) OpCode() int { return OpCode(OGFLinkControl, 0x0008) }

// Len returns the length of the command.
func (c *CreateConnectionCancel) Len() int { return 6 }

// Marshal serializes the command parameters into binary form.
func (c *CreateConnectionCancel) Marshal(b []byte) error {
	return marshal(c, b)
}

// CreateConnectionCancelRP returns the return parameter of CreateConnectionCancel
type CreateConnectionCancelRP struct {
	Status uint8
	BDADDR [6]byte
}

// Unmarshal de-serializes the binary data and stores the result in the receiver.
func (c *CreateConnectionCancelRP) Unmarshal(b []byte) error {
	return unmarshal(c, b)
}

// AcceptConnectionRequest implements AcceptConnectionRequest (0x01|0x0009) [Vol 2, Part E, 7.1.8]
type AcceptConnectionRequest struct {
	BDADDR [6]byte
	Role   uint8
}

func (c *AcceptConnectionRequest) String() string {
	return "AcceptConnectionRequest (0x01|0x0009)"
}

// OpCode returns the opcode of the command.
func (c *AcceptConnectionRequest) OpCode() int { return OpCode(OGFLinkControl, 0x0009) }

// Len returns the length of the command.
func (c *AcceptConnectionRequest) Len() int { return 7 }

// Marshal serializes the command parameters into binary form.
func (c *AcceptConnectionRequest) Marshal(b []byte) error {
	return marshal(c, b)
}

// RejectConnectionRequest implements RejectConnectionRequest (0x01|0x000A) [Vol 2, Part E, 7.1.9]
type RejectConnectionRequest struct {
	BDADDR [6]byte
	Reason uint8
}

func (c *RejectConnectionRequest) String() string {
	return "RejectConnectionRequest (0x01|0x000A)"
}

// OpCode returns the opcode of the command.
func (c *RejectConnectionRequest) OpCode() int { return OpCode(OGFLinkControl, 0x000A) }

// Len returns the length of the command.
func (c *RejectConnectionRequest) Len() int { return 7 }

// Marshal serializes the command parameters into binary form.
func (c *RejectConnectionRequest) Marshal(b []byte) error {
	return marshal(c, b)
}

// SetConnectionEncryption implements SetConnectionEncryption (0x01|0x0013) [Vol 2, Part E, 7.1.16]
type SetConnectionEncryption struct {
	ConnectionHandle uint16
	EncryptionEnable uint8
}

func (c *SetConnectionEncryption) String() string {
	return "SetConnectionEncryption (0x01|0x0013)"
}

// OpCode returns the opcode of the command.
func (c *SetConnectionEncryption) OpCode() int { return OpCode(OGFLinkControl, 0x0013) }

// Len returns the length of the command.
func (c *SetConnectionEncryption) Len() int { return 3 }

// Marshal serializes the command parameters into binary form.
func (c *SetConnectionEncryption) Marshal(b []byte) error {
	return marshal(c, b)
}

// ReadRemoteSupportedFeatures implements ReadRemoteSupportedFeatures (0x01|0x001B) [Vol 2, Part E, 7.1.21]
type ReadRemoteSupportedFeatures struct {
	ConnectionHandle uint16
}

func (c *ReadRemoteSupportedFeatures) String() string {
	return "ReadRemoteSupportedFeatures (0x01|0x001B)"
}

// OpCode returns the opcode of the command.
func (c *ReadRemoteSupportedFeatures) OpCode() int { return OpCode(OGFLinkControl, 0x001B) }

// Len returns the length of the command.
func (c *ReadRemoteSupportedFeatures) Len() int { return 2 }

// Marshal serializes the command parameters into binary form.
func (c *ReadRemoteSupportedFeatures) Marshal(b []byte) error {
	return marshal(c, b)
}

// ReadRemoteExtendedFeatures implements ReadRemoteExtendedFeatures (0x01|0x001C) [Vol 2, Part E, 7.1.22]
type ReadRemoteExtendedFeatures struct {
	ConnectionHandle uint16
	PageNumber       uint8
}

func (c *ReadRemoteExtendedFeatures) String() string {
	return "ReadRemoteExtendedFeatures (0x01|0x001C)"
}

// OpCode returns the opcode of the command.
func (c *ReadRemoteExtendedFeatures) OpCode() int { return OpCode(OGFLinkControl, 0x001C) }

// Len returns the length of the command.
func (c *ReadRemoteExtendedFeatures) Len() int { return 3 }

// Marshal serializes the command parameters into binary form.
func (c *ReadRemoteExtendedFeatures) Marshal(b []byte) error {
	return marshal(c, b)
}

// ReadRemoteVersionInformation implements ReadRemoteVersionInformation (0x01|0x001D) [Vol 2, Part E, 7.1.23]
type ReadRemoteVersionInformation struct {
	ConnectionHandle uint16
}

func (c *ReadRemoteVersionInformation) String() string {
	return "ReadRemoteVersionInformation (0x01|0x001D)"
}

// OpCode returns the opcode of the command.
func (c *ReadRemoteVersionInformation) OpCode() int { return OpCode(OGFLinkControl, 0x001D) }

// Len returns the length of the command.
func (c *ReadRemoteVersionInformation) Len() int { return 2 }

// Marshal serializes the command parameters into binary form.
func (c *ReadRemoteVersionInformation) Marshal(b []byte) error {
	return marshal(c, b)
}

// ExitSniffMode implements ExitSniffMode (0x02|0x0004) [Vol 2, Part E, 7.2.3]
type ExitSniffMode struct {
	ConnectionHandle uint16
}

func (c *ExitSniffMode) String() string {
	return "ExitSniffMode (0x02|0x0004)"
}

// OpCode returns the opcode of the command.
func (c *ExitSniffMode) OpCode() int { return OpCode(OGFLinkPolicy, 0x0004) }

// Len returns the length of the command.
func (c *ExitSniffMode) Len() int { return 2 }

// Marshal serializes the command parameters into binary form.
func (c *ExitSniffMode) Marshal(b []byte) error {
	return marshal(c, b)
}

// SwitchRole implements SwitchRole (0x02|0x000B) [Vol 2, Part E, 7.2.8]
type SwitchRole struct {
	BDADDR [6]byte
	Role   uint8
}

func (c *SwitchRole) String() string {
	return "SwitchRole (0x02|0x000B)"
}

// OpCode returns the opcode of the command.
func (c *SwitchRole) OpCode() int { return OpCode(OGFLinkPolicy, 0x000B) }

// Len returns the length of the command.
func (c *SwitchRole) Len() int { return 7 }

// Marshal serializes the command parameters into binary form.
func (c *SwitchRole) Marshal(b []byte) error {
	return marshal(c, b)
}

// WriteLinkPolicySettings implements WriteLinkPolicySettings (0x02|0x000D) [Vol 2, Part E, 7.2.10]
type WriteLinkPolicySettings struct {
	ConnectionHandle   uint16
	LinkPolicySettings uint16
}

func (c *WriteLinkPolicySettings) String() string {
	return "WriteLinkPolicySettings (0x02|0x000D)"
}

// OpCode returns the opcode of the command.
func (c *WriteLinkPolicySettings) OpCode() int { return OpCode(OGFLinkPolicy, 0x000D) }

// Len returns the length of the command.
func (c *WriteLinkPolicySettings) Len() int { return 4 }

// Marshal serializes the command parameters into binary form.
func (c *WriteLinkPolicySettings) Marshal(b []byte) error {
	return marshal(c, b)
}

// WriteLinkPolicySettingsRP returns the return parameter of WriteLinkPolicySettings
type WriteLinkPolicySettingsRP struct {
	Status           uint8
	ConnectionHandle uint16
}

// Unmarshal de-serializes the binary data and stores the result in the receiver.
func (c *WriteLinkPolicySettingsRP) Unmarshal(b []byte) error {
	return unmarshal(c, b)
}

// SetEventMask implements SetEventMask (0x03|0x0001) [Vol 2, Part E, 7.3.1]
type SetEventMask struct {
	EventMask uint64
}

func (c *SetEventMask) String() string {
	return "SetEventMask (0x03|0x0001)"
}

// OpCode returns the opcode of the command.
func (c *SetEventMask) OpCode() int { return OpCode(OGFController, 0x0001) }

// Len returns the length of the command.
func (c *SetEventMask) Len() int { return 8 }

// Marshal serializes the command parameters into binary form.
func (c *SetEventMask) Marshal(b []byte) error {
	return marshal(c, b)
}

// SetEventMaskRP returns the return parameter of SetEventMask
type SetEventMaskRP struct {
	Status uint8
}

// Unmarshal de-serializes the binary data and stores the result in the receiver.
func (c *SetEventMaskRP) Unmarshal(b []byte) error {
	return unmarshal(c, b)
}

// Reset implements Reset (0x03|0x0003) [Vol 2, Part E, 7.3.2]
type Reset struct{}

func (c *Reset) String() string {
	return "Reset (0x03|0x0003)"
}

// OpCode returns the opcode of the command.
func (c *Reset) OpCode() int { return OpCode(OGFController, 0x0003) }

// Len returns the length of the command.
func (c *Reset) Len() int { return 0 }

// Marshal serializes the command parameters into binary form.
func (c *Reset) Marshal(b []byte) error { return nil }

// ResetRP returns the return parameter of Reset
type ResetRP struct {
	Status uint8
}

// Unmarshal de-serializes the binary data and stores the result in the receiver.
func (c *ResetRP) Unmarshal(b []byte) error {
	return unmarshal(c, b)
}

// WriteLinkSupervisionTimeout implements WriteLinkSupervisionTimeout (0x03|0x0037) [Vol 2, Part E, 7.3.42]
type WriteLinkSupervisionTimeout struct {
	ConnectionHandle       uint16
	LinkSupervisionTimeout uint16
}

func (c *WriteLinkSupervisionTimeout) String() string {
	return "WriteLinkSupervisionTimeout (0x03|0x0037)"
}

// OpCode returns the opcode of the command.
func (c *WriteLinkSupervisionTimeout) OpCode() int { return OpCode(OGFController, 0x0037) }

// Len returns the length of the command.
func (c *WriteLinkSupervisionTimeout) Len() int { return 4 }

// Marshal serializes the command parameters into binary form.
func (c *WriteLinkSupervisionTimeout) Marshal(b []byte) error {
	return marshal(c, b)
}

// WriteLinkSupervisionTimeoutRP returns the return parameter of WriteLinkSupervisionTimeout
type WriteLinkSupervisionTimeoutRP struct {
	Status           uint8
	ConnectionHandle uint16
}

// Unmarshal de-serializes the binary data and stores the result in the receiver.
func (c *WriteLinkSupervisionTimeoutRP) Unmarshal(b []byte) error {
	return unmarshal(c, b)
}

// WriteLEHostSupport implements WriteLEHostSupport (0x03|0x006D) [Vol 2, Part E, 7.3.79]
type WriteLEHostSupport struct {
	LESupportedHost    uint8
	SimultaneousLEHost uint8
}

func (c *WriteLEHostSupport) String() string {
	return "WriteLEHostSupport (0x03|0x006D)"
}

// OpCode returns the opcode of the command.
func (c *WriteLEHostSupport) OpCode() int { return OpCode(OGFController, 0x006D) }

// Len returns the length of the command.
func (c *WriteLEHostSupport) Len() int { return 2 }

// Marshal serializes the command parameters into binary form.
func (c *WriteLEHostSupport) Marshal(b []byte) error {
	return marshal(c, b)
}

// WriteLEHostSupportRP returns the return parameter of WriteLEHostSupport
type WriteLEHostSupportRP struct {
	Status uint8
}

// Unmarshal de-serializes the binary data and stores the result in the receiver.
func (c *WriteLEHostSupportRP) Unmarshal(b []byte) error {
	return unmarshal(c, b)
}

// ReadLocalSupportedFeatures implements ReadLocalSupportedFeatures (0x04|0x0003) [Vol 2, Part E, 7.4.3]
type ReadLocalSupportedFeatures struct{}

func (c *ReadLocalSupportedFeatures) String() string {
	return "ReadLocalSupportedFeatures (0x04|0x0003)"
}

// OpCode returns the opcode of the command.
func (c *ReadLocalSupportedFeatures) OpCode() int { return OpCode(OGFInformational, 0x0003) }

// Len returns the length of the command.
func (c *ReadLocalSupportedFeatures) Len() int { return 0 }

// Marshal serializes the command parameters into binary form.
func (c *ReadLocalSupportedFeatures) Marshal(b []byte) error { return nil }

// ReadLocalSupportedFeaturesRP returns the return parameter of ReadLocalSupportedFeatures
type ReadLocalSupportedFeaturesRP struct {
	Status      uint8
	LMPFeatures [8]byte
}

// Unmarshal de-serializes the binary data and stores the result in the receiver.
func (c *ReadLocalSupportedFeaturesRP) Unmarshal(b []byte) error {
	return unmarshal(c, b)
}

// ReadLocalExtendedFeatures implements ReadLocalExtendedFeatures (0x04|0x0004) [Vol 2, Part E, 7.4.4]
type ReadLocalExtendedFeatures struct {
	PageNumber uint8
}

func (c *ReadLocalExtendedFeatures) String() string {
	return "ReadLocalExtendedFeatures (0x04|0x0004)"
}

// OpCode returns the opcode of the command.
func (c *ReadLocalExtendedFeatures) OpCode() int { return OpCode(OGFInformational, 0x0004) }

// Len returns the length of the command.
func (c *ReadLocalExtendedFeatures) Len() int { return 1 }

// Marshal serializes the command parameters into binary form.
func (c *ReadLocalExtendedFeatures) Marshal(b []byte) error {
	return marshal(c, b)
}

// ReadLocalExtendedFeaturesRP returns the return parameter of ReadLocalExtendedFeatures
type ReadLocalExtendedFeaturesRP struct {
	Status              uint8
	PageNumber          uint8
	MaximumPageNumber   uint8
	ExtendedLMPFeatures [8]byte
}

// Unmarshal de-serializes the binary data and stores the result in the receiver.
func (c *ReadLocalExtendedFeaturesRP) Unmarshal(b []byte) error {
	return unmarshal(c, b)
}

// ReadBufferSize implements ReadBufferSize (0x04|0x0005) [Vol 2, Part E, 7.4.5]
type ReadBufferSize struct{}

func (c *ReadBufferSize) String() string {
	return "ReadBufferSize (0x04|0x0005)"
}

// OpCode returns the opcode of the command.
func (c *ReadBufferSize) OpCode() int { return OpCode(OGFInformational, 0x0005) }

// Len returns the length of the command.
func (c *ReadBufferSize) Len() int { return 0 }

// Marshal serializes the command parameters into binary form.
func (c *ReadBufferSize) Marshal(b []byte) error { return nil }

// ReadBufferSizeRP returns the return parameter of ReadBufferSize
type ReadBufferSizeRP struct {
	Status                           uint8
	HCACLDataPacketLength            uint16
	HCSynchronousDataPacketLength    uint8
	HCTotalNumACLDataPackets         uint16
	HCTotalNumSynchronousDataPackets uint16
}

// Unmarshal de-serializes the binary data and stores the result in the receiver.
func (c *ReadBufferSizeRP) Unmarshal(b []byte) error {
	return unmarshal(c, b)
}

// ReadBDADDR implements ReadBDADDR (0x04|0x0009) [Vol 2, Part E, 7.4.6]
type ReadBDADDR struct{}

func (c *ReadBDADDR) String() string {
	return "ReadBDADDR (0x04|0x0009)"
}

// OpCode returns the opcode of the command.
func (c *ReadBDADDR) OpCode() int { return OpCode(OGFInformational, 0x0009) }

// Len returns the length of the command.
func (c *ReadBDADDR) Len() int { return 0 }

// Marshal serializes the command parameters into binary form.
func (c *ReadBDADDR) Marshal(b []byte) error { return nil }

// ReadBDADDRRP returns the return parameter of ReadBDADDR
type ReadBDADDRRP struct {
	Status uint8
	BDADDR [6]byte
}

// Unmarshal de-serializes the binary data and stores the result in the receiver.
func (c *ReadBDADDRRP) Unmarshal(b []byte) error {
	return unmarshal(c, b)
}

// LESetEventMask implements LESetEventMask (0x08|0x0001) [Vol 2, Part E, 7.8.1]
type LESetEventMask struct {
	LEEventMask uint64
}

func (c *LESetEventMask) String() string {
	return "LESetEventMask (0x08|0x0001)"
}

// OpCode returns the opcode of the command.
func (c *LESetEventMask) OpCode() int { return OpCode(OGFLE, 0x0001) }

// Len returns the length of the command.
func (c *LESetEventMask) Len() int { return 8 }

// Marshal serializes the command parameters into binary form.
func (c *LESetEventMask) Marshal(b []byte) error {
	return marshal(c, b)
}

// LESetEventMaskRP returns the return parameter of LESetEventMask
type LESetEventMaskRP struct {
	Status uint8
}

// Unmarshal de-serializes the binary data and stores the result in the receiver.
func (c *LESetEventMaskRP) Unmarshal(b []byte) error {
	return unmarshal(c, b)
}

// LEReadBufferSize implements LEReadBufferSize (0x08|0x0002) [Vol 2, Part E, 7.8.2]
type LEReadBufferSize struct{}

func (c *LEReadBufferSize) String() string {
	return "LEReadBufferSize (0x08|0x0002)"
}

// OpCode returns the opcode of the command.
func (c *LEReadBufferSize) OpCode() int { return OpCode(OGFLE, 0x0002) }

// Len returns the length of the command.
func (c *LEReadBufferSize) Len() int { return 0 }

// Marshal serializes the command parameters into binary form.
func (c *LEReadBufferSize) Marshal(b []byte) error { return nil }

// LEReadBufferSizeRP returns the return parameter of LEReadBufferSize
type LEReadBufferSizeRP struct {
	Status                  uint8
	HCLEDataPacketLength    uint16
	HCTotalNumLEDataPackets uint8
}

// Unmarshal de-serializes the binary data and stores the result in the receiver.
func (c *LEReadBufferSizeRP) Unmarshal(b []byte) error {
	return unmarshal(c, b)
}

// LECreateConnection implements LECreateConnection (0x08|0x000D) [Vol 2, Part E, 7.8.12]
type LECreateConnection struct {
	LEScanInterval        uint16
	LEScanWindow          uint16
	InitiatorFilterPolicy uint8
	PeerAddressType       uint8
	PeerAddress           [6]byte
	OwnAddressType        uint8
	ConnIntervalMin       uint16
	ConnIntervalMax       uint16
	ConnLatency           uint16
	SupervisionTimeout    uint16
	MinimumCELength       uint16
	MaximumCELength       uint16
}

func (c *LECreateConnection) String() string {
	return "LECreateConnection (0x08|0x000D)"
}

// OpCode returns the opcode of the command.
func (c *LECreateConnection) OpCode() int { return OpCode(OGFLE, 0x000D) }

// Len returns the length of the command.
func (c *LECreateConnection) Len() int { return 25 }

// Marshal serializes the command parameters into binary form.
func (c *LECreateConnection) Marshal(b []byte) error {
	return marshal(c, b)
}

// LECreateConnectionCancel implements LECreateConnectionCancel (0x08|0x000E) [Vol 2, Part E, 7.8.13]
type LECreateConnectionCancel struct{}

func (c *LECreateConnectionCancel) String() string {
	return "LECreateConnectionCancel (0x08|0x000E)"
}

// OpCode returns the opcode of the command.
func (c *LECreateConnectionCancel) OpCode() int { return OpCode(OGFLE, 0x000E) }

// Len returns the length of the command.
func (c *LECreateConnectionCancel) Len() int { return 0 }

// Marshal serializes the command parameters into binary form.
func (c *LECreateConnectionCancel) Marshal(b []byte) error { return nil }

// LECreateConnectionCancelRP returns the return parameter of LECreateConnectionCancel
type LECreateConnectionCancelRP struct {
	Status uint8
}

// Unmarshal de-serializes the binary data and stores the result in the receiver.
func (c *LECreateConnectionCancelRP) Unmarshal(b []byte) error {
	return unmarshal(c, b)
}

// LEConnectionUpdate implements LEConnectionUpdate (0x08|0x0013) [Vol 2, Part E, 7.8.18]
type LEConnectionUpdate struct {
	ConnectionHandle   uint16
	ConnIntervalMin    uint16
	ConnIntervalMax    uint16
	ConnLatency        uint16
	SupervisionTimeout uint16
	MinimumCELength    uint16
	MaximumCELength    uint16
}

func (c *LEConnectionUpdate) String() string {
	return "LEConnectionUpdate (0x08|0x0013)"
}

// OpCode returns the opcode of the command.
func (c *LEConnectionUpdate) OpCode() int { return OpCode(OGFLE, 0x0013) }

// Len returns the length of the command.
func (c *LEConnectionUpdate) Len() int { return 14 }

// Marshal serializes the command parameters into binary form.
func (c *LEConnectionUpdate) Marshal(b []byte) error {
	return marshal(c, b)
}

// LERemoteConnectionParameterRequestReply implements LERemoteConnectionParameterRequestReply (0x08|0x0020) [Vol 2, Part E, 7.8.31]
type LERemoteConnectionParameterRequestReply struct {
	ConnectionHandle uint16
	IntervalMin      uint16
	IntervalMax      uint16
	Latency          uint16
	Timeout          uint16
	MinimumCELength  uint16
	MaximumCELength  uint16
}

func (c *LERemoteConnectionParameterRequestReply) String() string {
	return "LERemoteConnectionParameterRequestReply (0x08|0x0020)"
}

// OpCode returns the opcode of the command.
func (c *LERemoteConnectionParameterRequestReply) OpCode() int { return OpCode(OGFLE, 0x0020) }

// Len returns the length of the command.
func (c *LERemoteConnectionParameterRequestReply) Len() int { return 14 }

// Marshal serializes the command parameters into binary form.
func (c *LERemoteConnectionParameterRequestReply) Marshal(b []byte) error {
	return marshal(c, b)
}

// LERemoteConnectionParameterRequestReplyRP returns the return parameter of LERemoteConnectionParameterRequestReply
type LERemoteConnectionParameterRequestReplyRP struct {
	Status           uint8
	ConnectionHandle uint16
}

// Unmarshal de-serializes the binary data and stores the result in the receiver.
func (c *LERemoteConnectionParameterRequestReplyRP) Unmarshal(b []byte) error {
	return unmarshal(c, b)
}

// LERemoteConnectionParameterRequestNegativeReply implements LERemoteConnectionParameterRequestNegativeReply (0x08|0x0021) [Vol 2, Part E, 7.8.32]
type LERemoteConnectionParameterRequestNegativeReply struct {
	ConnectionHandle uint16
	Reason           uint8
}

func (c *LERemoteConnectionParameterRequestNegativeReply) String() string {
	return "LERemoteConnectionParameterRequestNegativeReply (0x08|0x0021)"
}

// OpCode returns the opcode of the command.
func (c *LERemoteConnectionParameterRequestNegativeReply) OpCode() int { return OpCode(OGFLE, 0x0021) }

// Len returns the length of the command.
func (c *LERemoteConnectionParameterRequestNegativeReply) Len() int { return 3 }

// Marshal serializes the command parameters into binary form.
func (c *LERemoteConnectionParameterRequestNegativeReply) Marshal(b []byte) error {
	return marshal(c, b)
}

// LERemoteConnectionParameterRequestNegativeReplyRP returns the return parameter of LERemoteConnectionParameterRequestNegativeReply
type LERemoteConnectionParameterRequestNegativeReplyRP struct {
	Status           uint8
	ConnectionHandle uint16
}

// Unmarshal de-serializes the binary data and stores the result in the receiver.
func (c *LERemoteConnectionParameterRequestNegativeReplyRP) Unmarshal(b []byte) error {
	return unmarshal(c, b)
}
