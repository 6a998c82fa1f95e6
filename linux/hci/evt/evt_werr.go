package evt

import (
	"encoding/binary"
	"fmt"
)

func (e ConnectionComplete) StatusWErr() (uint8, error) {
	return getByte(e, 0, 0)
}

func (e ConnectionComplete) ConnectionHandleWErr() (uint16, error) {
	return getUint16LE(e, 1, 0)
}

func (e ConnectionComplete) BDADDRWErr() ([6]byte, error) {
	return getArray6(e, 3)
}

func (e ConnectionComplete) LinkTypeWErr() (uint8, error) {
	return getByte(e, 9, 0)
}

func (e ConnectionComplete) EncryptionEnabledWErr() (uint8, error) {
	return getByte(e, 10, 0)
}

func (e ConnectionRequest) BDADDRWErr() ([6]byte, error) {
	return getArray6(e, 0)
}

func (e ConnectionRequest) LinkTypeWErr() (uint8, error) {
	return getByte(e, 9, 0)
}

func (e DisconnectionComplete) StatusWErr() (uint8, error) {
	return getByte(e, 0, 0)
}

func (e DisconnectionComplete) ConnectionHandleWErr() (uint16, error) {
	return getUint16LE(e, 1, 0)
}

func (e DisconnectionComplete) ReasonWErr() (uint8, error) {
	return getByte(e, 3, 0)
}

func (e EncryptionChange) StatusWErr() (uint8, error) {
	return getByte(e, 0, 0)
}

func (e EncryptionChange) ConnectionHandleWErr() (uint16, error) {
	return getUint16LE(e, 1, 0)
}

func (e EncryptionChange) EncryptionEnabledWErr() (uint8, error) {
	return getByte(e, 3, 0)
}

func (e ReadRemoteSupportedFeaturesComplete) StatusWErr() (uint8, error) {
	return getByte(e, 0, 0)
}

func (e ReadRemoteSupportedFeaturesComplete) ConnectionHandleWErr() (uint16, error) {
	return getUint16LE(e, 1, 0)
}

func (e ReadRemoteSupportedFeaturesComplete) LMPFeaturesWErr() ([8]byte, error) {
	return getArray8(e, 3)
}

func (e ReadRemoteVersionInformationComplete) StatusWErr() (uint8, error) {
	return getByte(e, 0, 0)
}

func (e ReadRemoteVersionInformationComplete) ConnectionHandleWErr() (uint16, error) {
	return getUint16LE(e, 1, 0)
}

func (e ReadRemoteVersionInformationComplete) VersionWErr() (uint8, error) {
	return getByte(e, 3, 0)
}

func (e ReadRemoteVersionInformationComplete) ManufacturerNameWErr() (uint16, error) {
	return getUint16LE(e, 4, 0)
}

func (e ReadRemoteVersionInformationComplete) SubversionWErr() (uint16, error) {
	return getUint16LE(e, 6, 0)
}

func (e CommandComplete) NumHCICommandPacketsWErr() (uint8, error) {
	return getByte(e, 0, 0)
}

func (e CommandComplete) CommandOpcodeWErr() (uint16, error) {
	return getUint16LE(e, 1, 0)
}

func (e CommandComplete) ReturnParametersWErr() ([]byte, error) {
	return getBytes(e, 3, -1)
}

func (e CommandStatus) StatusWErr() (uint8, error) {
	return getByte(e, 0, 0)
}

func (e CommandStatus) NumHCICommandPacketsWErr() (uint8, error) {
	return getByte(e, 1, 0)
}

func (e CommandStatus) CommandOpcodeWErr() (uint16, error) {
	return getUint16LE(e, 2, 0)
}

func (e HardwareError) HardwareCodeWErr() (uint8, error) {
	return getByte(e, 0, 0)
}

func (e RoleChange) StatusWErr() (uint8, error) {
	return getByte(e, 0, 0)
}

func (e RoleChange) BDADDRWErr() ([6]byte, error) {
	return getArray6(e, 1)
}

func (e RoleChange) NewRoleWErr() (uint8, error) {
	return getByte(e, 7, 0)
}

func (e ModeChange) StatusWErr() (uint8, error) {
	return getByte(e, 0, 0)
}

func (e ModeChange) ConnectionHandleWErr() (uint16, error) {
	return getUint16LE(e, 1, 0)
}

func (e ModeChange) CurrentModeWErr() (uint8, error) {
	return getByte(e, 3, 0)
}

func (e ModeChange) IntervalWErr() (uint16, error) {
	return getUint16LE(e, 4, 0)
}

func (e DataBufferOverflow) LinkTypeWErr() (uint8, error) {
	return getByte(e, 0, 0)
}

func (e ReadRemoteExtendedFeaturesComplete) StatusWErr() (uint8, error) {
	return getByte(e, 0, 0)
}

func (e ReadRemoteExtendedFeaturesComplete) ConnectionHandleWErr() (uint16, error) {
	return getUint16LE(e, 1, 0)
}

func (e ReadRemoteExtendedFeaturesComplete) PageNumberWErr() (uint8, error) {
	return getByte(e, 3, 0)
}

func (e ReadRemoteExtendedFeaturesComplete) MaximumPageNumberWErr() (uint8, error) {
	return getByte(e, 4, 0)
}

func (e ReadRemoteExtendedFeaturesComplete) ExtendedLMPFeaturesWErr() ([8]byte, error) {
	return getArray8(e, 5)
}

func (e LEConnectionComplete) SubeventCodeWErr() (uint8, error) {
	return getByte(e, 0, 0)
}

func (e LEConnectionComplete) StatusWErr() (uint8, error) {
	return getByte(e, 1, 0)
}

func (e LEConnectionComplete) ConnectionHandleWErr() (uint16, error) {
	return getUint16LE(e, 2, 0)
}

func (e LEConnectionComplete) RoleWErr() (uint8, error) {
	return getByte(e, 4, 0)
}

func (e LEConnectionComplete) PeerAddressTypeWErr() (uint8, error) {
	return getByte(e, 5, 0)
}

func (e LEConnectionComplete) PeerAddressWErr() ([6]byte, error) {
	return getArray6(e, 6)
}

func (e LEConnectionComplete) ConnIntervalWErr() (uint16, error) {
	return getUint16LE(e, 12, 0)
}

func (e LEConnectionComplete) ConnLatencyWErr() (uint16, error) {
	return getUint16LE(e, 14, 0)
}

func (e LEConnectionComplete) SupervisionTimeoutWErr() (uint16, error) {
	return getUint16LE(e, 16, 0)
}

func (e LEConnectionComplete) MasterClockAccuracyWErr() (uint8, error) {
	return getByte(e, 18, 0)
}

func (e LEConnectionUpdateComplete) SubeventCodeWErr() (uint8, error) {
	return getByte(e, 0, 0)
}

func (e LEConnectionUpdateComplete) StatusWErr() (uint8, error) {
	return getByte(e, 1, 0)
}

func (e LEConnectionUpdateComplete) ConnectionHandleWErr() (uint16, error) {
	return getUint16LE(e, 2, 0)
}

func (e LEConnectionUpdateComplete) ConnIntervalWErr() (uint16, error) {
	return getUint16LE(e, 4, 0)
}

func (e LEConnectionUpdateComplete) ConnLatencyWErr() (uint16, error) {
	return getUint16LE(e, 6, 0)
}

func (e LEConnectionUpdateComplete) SupervisionTimeoutWErr() (uint16, error) {
	return getUint16LE(e, 8, 0)
}

func (e LERemoteConnectionParameterRequest) SubeventCodeWErr() (uint8, error) {
	return getByte(e, 0, 0)
}

func (e LERemoteConnectionParameterRequest) ConnectionHandleWErr() (uint16, error) {
	return getUint16LE(e, 1, 0)
}

func (e LERemoteConnectionParameterRequest) IntervalMinWErr() (uint16, error) {
	return getUint16LE(e, 3, 0)
}

func (e LERemoteConnectionParameterRequest) IntervalMaxWErr() (uint16, error) {
	return getUint16LE(e, 5, 0)
}

func (e LERemoteConnectionParameterRequest) LatencyWErr() (uint16, error) {
	return getUint16LE(e, 7, 0)
}

func (e LERemoteConnectionParameterRequest) TimeoutWErr() (uint16, error) {
	return getUint16LE(e, 9, 0)
}

func (e LEEnhancedConnectionComplete) SubeventCodeWErr() (uint8, error) {
	return getByte(e, 0, 0)
}

func (e LEEnhancedConnectionComplete) StatusWErr() (uint8, error) {
	return getByte(e, 1, 0)
}

func (e LEEnhancedConnectionComplete) ConnectionHandleWErr() (uint16, error) {
	return getUint16LE(e, 2, 0)
}

func (e LEEnhancedConnectionComplete) RoleWErr() (uint8, error) {
	return getByte(e, 4, 0)
}

func (e LEEnhancedConnectionComplete) PeerAddressTypeWErr() (uint8, error) {
	return getByte(e, 5, 0)
}

func (e LEEnhancedConnectionComplete) PeerAddressWErr() ([6]byte, error) {
	return getArray6(e, 6)
}

func (e LEEnhancedConnectionComplete) LocalResolvablePrivateAddressWErr() ([6]byte, error) {
	return getArray6(e, 12)
}

func (e LEEnhancedConnectionComplete) PeerResolvablePrivateAddressWErr() ([6]byte, error) {
	return getArray6(e, 18)
}

func (e LEEnhancedConnectionComplete) ConnIntervalWErr() (uint16, error) {
	return getUint16LE(e, 24, 0)
}

func (e LEEnhancedConnectionComplete) ConnLatencyWErr() (uint16, error) {
	return getUint16LE(e, 26, 0)
}

func (e LEEnhancedConnectionComplete) SupervisionTimeoutWErr() (uint16, error) {
	return getUint16LE(e, 28, 0)
}

func (e LEEnhancedConnectionComplete) MasterClockAccuracyWErr() (uint8, error) {
	return getByte(e, 30, 0)
}

// Per-spec [Vol 2, Part E, 7.7.19], the packet structure should be:
//
//     NumOfHandle, HandleA, HandleB, CompPktNumA, CompPktNumB
//
// Controllers seen in the field interleave them instead, which is what is
// decoded here:
//
//     NumOfHandle, HandleA, CompPktNumA, HandleB, CompPktNumB
//              02,   40 00,       01 00,   41 00,       01 00

func (e NumberOfCompletedPackets) NumberOfHandlesWErr() (uint8, error) {
	return getByte(e, 0, 0)
}

func (e NumberOfCompletedPackets) ConnectionHandleWErr(i int) (uint16, error) {
	si := 1 + (i * 4)
	return getUint16LE(e, si, 0xffff)
}

func (e NumberOfCompletedPackets) HCNumOfCompletedPacketsWErr(i int) (uint16, error) {
	si := 1 + (i * 4) + 2
	return getUint16LE(e, si, 0)
}

// Valid reports whether every advertised handle entry is present.
func (e NumberOfCompletedPackets) Valid() bool {
	n, err := e.NumberOfHandlesWErr()
	return err == nil && len(e) >= 1+int(n)*4
}

// Valid reports whether the event carries all its fixed fields.
func (e CommandStatus) Valid() bool {
	return len(e) == 4
}

// Valid reports whether the event carries all its fixed fields.
func (e CommandComplete) Valid() bool {
	return len(e) >= 3
}

func getByte(b []byte, i int, def byte) (byte, error) {
	bb, err := getBytes(b, i, 1)
	if err != nil {
		return def, err
	}
	return bb[0], nil
}

//get or default
func getUint16LE(b []byte, i int, def uint16) (uint16, error) {
	bb, err := getBytes(b, i, 2)
	if err != nil {
		return def, err
	}
	return binary.LittleEndian.Uint16(bb), nil
}

func getArray6(b []byte, i int) ([6]byte, error) {
	var out [6]byte
	bb, err := getBytes(b, i, len(out))
	if err != nil {
		return out, err
	}
	copy(out[:], bb)
	return out, nil
}

func getArray8(b []byte, i int) ([8]byte, error) {
	var out [8]byte
	bb, err := getBytes(b, i, len(out))
	if err != nil {
		return out, err
	}
	copy(out[:], bb)
	return out, nil
}

func getBytes(bytes []byte, start int, count int) ([]byte, error) {
	if bytes == nil || start > len(bytes) || (start == len(bytes) && count != -1) {
		return nil, fmt.Errorf("index error")
	}

	if count < 0 {
		return bytes[start:], nil
	}

	end := start + count
	//end is non-inclusive
	if end > len(bytes) {
		return nil, fmt.Errorf("index error")
	}

	return bytes[start:end], nil
}
