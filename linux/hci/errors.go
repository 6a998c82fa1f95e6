package hci

import "fmt"

// ErrCommand is an HCI status code returned by the controller
// [Vol 2, Part D, 1.3].
type ErrCommand byte

const (
	ErrUnknownCommand        ErrCommand = 0x01
	ErrConnID                ErrCommand = 0x02
	ErrHardware              ErrCommand = 0x03
	ErrPageTimeout           ErrCommand = 0x04
	ErrAuth                  ErrCommand = 0x05
	ErrPINMissing            ErrCommand = 0x06
	ErrMemoryCapacity        ErrCommand = 0x07
	ErrConnTimeout           ErrCommand = 0x08
	ErrConnLimit             ErrCommand = 0x09
	ErrSCOConnLimit          ErrCommand = 0x0A
	ErrACLConnExists         ErrCommand = 0x0B
	ErrDisallowed            ErrCommand = 0x0C
	ErrLimitedResource       ErrCommand = 0x0D
	ErrSecurity              ErrCommand = 0x0E
	ErrBDADDR                ErrCommand = 0x0F
	ErrHostTimeout           ErrCommand = 0x10
	ErrUnsupportedParams     ErrCommand = 0x11
	ErrInvalidParams         ErrCommand = 0x12
	ErrRemoteUser            ErrCommand = 0x13
	ErrRemoteLowResources    ErrCommand = 0x14
	ErrRemotePowerOff        ErrCommand = 0x15
	ErrLocalHost             ErrCommand = 0x16
	ErrRepeatedAttempts      ErrCommand = 0x17
	ErrPairingNotAllowed     ErrCommand = 0x18
	ErrUnknownLMP            ErrCommand = 0x19
	ErrUnsupportedRemote     ErrCommand = 0x1A
	ErrInvalidLLParams       ErrCommand = 0x1E
	ErrUnspecified           ErrCommand = 0x1F
	ErrUnsupportedLLParams   ErrCommand = 0x20
	ErrRoleChangeNotAllowed  ErrCommand = 0x21
	ErrLLResponseTimeout     ErrCommand = 0x22
	ErrLMPTransCollision     ErrCommand = 0x23
	ErrEncModeNotAcceptable  ErrCommand = 0x25
	ErrInstantPassed         ErrCommand = 0x28
	ErrRoleSwitchPending     ErrCommand = 0x32
	ErrRoleSwitchFailed      ErrCommand = 0x35
	ErrHostBusyPairing       ErrCommand = 0x38
	ErrControllerBusy        ErrCommand = 0x3A
	ErrUnacceptableParams    ErrCommand = 0x3B
	ErrAdvTimeout            ErrCommand = 0x3C
	ErrMICFailure            ErrCommand = 0x3D
	ErrConnFailedToEstablish ErrCommand = 0x3E
)

var errCommandNames = map[ErrCommand]string{
	ErrUnknownCommand:        "unknown HCI command",
	ErrConnID:                "unknown connection identifier",
	ErrHardware:              "hardware failure",
	ErrPageTimeout:           "page timeout",
	ErrAuth:                  "authentication failure",
	ErrPINMissing:            "PIN or key missing",
	ErrMemoryCapacity:        "memory capacity exceeded",
	ErrConnTimeout:           "connection timeout",
	ErrConnLimit:             "connection limit exceeded",
	ErrSCOConnLimit:          "synchronous connection limit to a device exceeded",
	ErrACLConnExists:         "ACL connection already exists",
	ErrDisallowed:            "command disallowed",
	ErrLimitedResource:       "connection rejected due to limited resources",
	ErrSecurity:              "connection rejected due to security reasons",
	ErrBDADDR:                "connection rejected due to unacceptable BD_ADDR",
	ErrHostTimeout:           "connection accept timeout exceeded",
	ErrUnsupportedParams:     "unsupported feature or parameter value",
	ErrInvalidParams:         "invalid HCI command parameters",
	ErrRemoteUser:            "remote user terminated connection",
	ErrRemoteLowResources:    "remote device terminated connection due to low resources",
	ErrRemotePowerOff:        "remote device terminated connection due to power off",
	ErrLocalHost:             "connection terminated by local host",
	ErrRepeatedAttempts:      "repeated attempts",
	ErrPairingNotAllowed:     "pairing not allowed",
	ErrUnknownLMP:            "unknown LMP PDU",
	ErrUnsupportedRemote:     "unsupported remote feature",
	ErrInvalidLLParams:       "invalid LMP or LL parameters",
	ErrUnspecified:           "unspecified error",
	ErrUnsupportedLLParams:   "unsupported LMP or LL parameter value",
	ErrRoleChangeNotAllowed:  "role change not allowed",
	ErrLLResponseTimeout:     "LMP or LL response timeout",
	ErrLMPTransCollision:     "LMP error transaction collision",
	ErrEncModeNotAcceptable:  "encryption mode not acceptable",
	ErrInstantPassed:         "instant passed",
	ErrRoleSwitchPending:     "role switch pending",
	ErrRoleSwitchFailed:      "role switch failed",
	ErrHostBusyPairing:       "host busy - pairing",
	ErrControllerBusy:        "controller busy",
	ErrUnacceptableParams:    "unacceptable connection parameters",
	ErrAdvTimeout:            "advertising timeout",
	ErrMICFailure:            "connection terminated due to MIC failure",
	ErrConnFailedToEstablish: "connection failed to be established",
}

func (e ErrCommand) Error() string {
	if s, ok := errCommandNames[e]; ok {
		return s
	}
	return fmt.Sprintf("hci status 0x%02X", byte(e))
}
