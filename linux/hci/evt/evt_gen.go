package evt

// Event codes [Vol 2, Part E, 7.7].
const (
	ConnectionCompleteCode                   = 0x03
	ConnectionRequestCode                    = 0x04
	DisconnectionCompleteCode                = 0x05
	EncryptionChangeCode                     = 0x08
	ReadRemoteSupportedFeaturesCompleteCode  = 0x0B
	ReadRemoteVersionInformationCompleteCode = 0x0C
	CommandCompleteCode                      = 0x0E
	CommandStatusCode                        = 0x0F
	HardwareErrorCode                        = 0x10
	RoleChangeCode                           = 0x12
	NumberOfCompletedPacketsCode             = 0x13
	ModeChangeCode                           = 0x14
	DataBufferOverflowCode                   = 0x1A
	ReadRemoteExtendedFeaturesCompleteCode   = 0x23
	LEMetaCode                               = 0x3E
	VendorCode                               = 0xFF
)

// LE meta sub-event codes [Vol 2, Part E, 7.7.65].
const (
	LEConnectionCompleteSubCode               = 0x01
	LEConnectionUpdateCompleteSubCode         = 0x03
	LERemoteConnectionParameterRequestSubCode = 0x06
	LEEnhancedConnectionCompleteSubCode       = 0x0A
)

// ConnectionComplete implements ConnectionComplete [Vol 2, Part E, 7.7.3].
type ConnectionComplete []byte

// ConnectionRequest implements ConnectionRequest [Vol 2, Part E, 7.7.4].
type ConnectionRequest []byte

// DisconnectionComplete implements DisconnectionComplete [Vol 2, Part E, 7.7.5].
type DisconnectionComplete []byte

// EncryptionChange implements EncryptionChange [Vol 2, Part E, 7.7.8].
type EncryptionChange []byte

// ReadRemoteSupportedFeaturesComplete implements ReadRemoteSupportedFeaturesComplete [Vol 2, Part E, 7.7.11].
type ReadRemoteSupportedFeaturesComplete []byte

// ReadRemoteVersionInformationComplete implements ReadRemoteVersionInformationComplete [Vol 2, Part E, 7.7.12].
type ReadRemoteVersionInformationComplete []byte

// CommandComplete implements CommandComplete [Vol 2, Part E, 7.7.14].
type CommandComplete []byte

// CommandStatus implements CommandStatus [Vol 2, Part E, 7.7.15].
type CommandStatus []byte

// HardwareError implements HardwareError [Vol 2, Part E, 7.7.16].
type HardwareError []byte

// RoleChange implements RoleChange [Vol 2, Part E, 7.7.18].
type RoleChange []byte

// NumberOfCompletedPackets implements NumberOfCompletedPackets [Vol 2, Part E, 7.7.19].
type NumberOfCompletedPackets []byte

// ModeChange implements ModeChange [Vol 2, Part E, 7.7.20].
type ModeChange []byte

// DataBufferOverflow implements DataBufferOverflow [Vol 2, Part E, 7.7.26].
type DataBufferOverflow []byte

// ReadRemoteExtendedFeaturesComplete implements ReadRemoteExtendedFeaturesComplete [Vol 2, Part E, 7.7.34].
type ReadRemoteExtendedFeaturesComplete []byte

// LEConnectionComplete implements LEConnectionComplete [Vol 2, Part E, 7.7.65.1].
type LEConnectionComplete []byte

// LEConnectionUpdateComplete implements LEConnectionUpdateComplete [Vol 2, Part E, 7.7.65.3].
type LEConnectionUpdateComplete []byte

// LERemoteConnectionParameterRequest implements LERemoteConnectionParameterRequest [Vol 2, Part E, 7.7.65.6].
type LERemoteConnectionParameterRequest []byte

// LEEnhancedConnectionComplete implements LEEnhancedConnectionComplete [Vol 2, Part E, 7.7.65.10].
type LEEnhancedConnectionComplete []byte
