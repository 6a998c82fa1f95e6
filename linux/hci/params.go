package hci

import (
	"fmt"

	"github.com/rigado/bthost"
	"github.com/rigado/bthost/linux/hci/cmd"
)

const (
	AddressTypePublic           = 0
	AddressTypeRandom           = 1
	FilterPolicyAcceptAll       = 0
	FilterPolicyAcceptWhitelist = 1

	LEScanIntervalMin = 0x0004
	LEScanIntervalMax = 0x4000
	LEScanWindowMin   = 0x0004
	LEScanWindowMax   = 0x4000

	ConnIntervalMin = 0x0006
	ConnIntervalMax = 0x0c80
	ConnLatencyMin  = 0x0000
	ConnLatencyMax  = 0x01f3

	SupervisionTimeoutMin = 0x000a
	SupervisionTimeoutMax = 0x0c80
)

// DefaultLECreateConnection returns the parameters used to open LE links.
func DefaultLECreateConnection() cmd.LECreateConnection {
	return cmd.LECreateConnection{
		LEScanInterval:        0x0060,    // 0x0004 - 0x4000; N * 0.625 msec
		LEScanWindow:          0x0030,    // 0x0004 - 0x4000; N * 0.625 msec
		InitiatorFilterPolicy: 0x00,      // White list is not used
		PeerAddressType:       0x00,      // Public Device Address
		PeerAddress:           [6]byte{}, //
		OwnAddressType:        0x00,      // Public Device Address
		ConnIntervalMin:       0x0018,    // 0x0006 - 0x0C80; N * 1.25 msec
		ConnIntervalMax:       0x0028,    // 0x0006 - 0x0C80; N * 1.25 msec
		ConnLatency:           0x0000,    // 0x0000 - 0x01F3; N * 1.25 msec
		SupervisionTimeout:    0x01f4,    // 0x000A - 0x0C80; N * 10 msec
		MinimumCELength:       0x0000,    // 0x0000 - 0xFFFF; N * 0.625 msec
		MaximumCELength:       0x0000,    // 0x0000 - 0xFFFF; N * 0.625 msec
	}
}

// SupervisionTimeoutValid reports whether the supervision timeout (10 ms
// units) exceeds (1 + latency) * interval max * 2, with the interval in
// 1.25 ms units. Integer form: timeout*10 >= (1+latency) * ((max*5)>>1).
func SupervisionTimeoutValid(intervalMax, latency, timeout uint16) bool {
	return uint32(timeout)*10 >= (1+uint32(latency))*((uint32(intervalMax)*5)>>1)
}

// ValidateConnParams checks LE connection parameters against the ranges of
// [Vol 6, Part B, 4.5.1] and the supervision timeout relation.
func ValidateConnParams(p bthost.ConnParams) error {
	switch {
	case p.IntervalMax < ConnIntervalMin || p.IntervalMax > ConnIntervalMax:
		return fmt.Errorf("invalid ConnIntervalMax %v", p.IntervalMax)

	case p.IntervalMin < ConnIntervalMin || p.IntervalMin > ConnIntervalMax:
		return fmt.Errorf("invalid ConnIntervalMin %v", p.IntervalMin)

	case p.IntervalMin > p.IntervalMax:
		return fmt.Errorf("ConnIntervalMin %v > ConnIntervalMax %v", p.IntervalMin, p.IntervalMax)

	case p.Latency > ConnLatencyMax:
		return fmt.Errorf("invalid ConnLatency %v", p.Latency)

	case p.SupervisionTimeout < SupervisionTimeoutMin || p.SupervisionTimeout > SupervisionTimeoutMax:
		return fmt.Errorf("invalid SupervisionTimeout %v", p.SupervisionTimeout)

	case !SupervisionTimeoutValid(p.IntervalMax, p.Latency, p.SupervisionTimeout):
		return fmt.Errorf("invalid SupervisionTimeout %v (too small)", p.SupervisionTimeout)
	}

	return nil
}

// ValidateCreateConnection checks the scan and connection parameters of an
// LE Create Connection command.
func ValidateCreateConnection(p cmd.LECreateConnection) error {
	switch {
	case p.LEScanInterval < LEScanIntervalMin || p.LEScanInterval > LEScanIntervalMax:
		return fmt.Errorf("invalid LEScanInterval %v", p.LEScanInterval)

	case p.LEScanWindow < LEScanWindowMin || p.LEScanWindow > LEScanWindowMax:
		return fmt.Errorf("invalid LEScanWindow %v", p.LEScanWindow)

	case p.LEScanWindow > p.LEScanInterval:
		return fmt.Errorf("LEScanWindow %v > LEScanInterval %v", p.LEScanWindow, p.LEScanInterval)

	case p.InitiatorFilterPolicy != FilterPolicyAcceptAll && p.InitiatorFilterPolicy != FilterPolicyAcceptWhitelist:
		return fmt.Errorf("invalid InitiatorFilterPolicy %v", p.InitiatorFilterPolicy)

	case p.OwnAddressType != AddressTypePublic && p.OwnAddressType != AddressTypeRandom:
		return fmt.Errorf("invalid OwnAddressType %v", p.OwnAddressType)

	case p.PeerAddressType != AddressTypePublic && p.PeerAddressType != AddressTypeRandom:
		return fmt.Errorf("invalid PeerAddressType %v", p.PeerAddressType)

	case p.MinimumCELength > p.MaximumCELength:
		return fmt.Errorf("MinimumCELength %v > MaximumCELength %v", p.MinimumCELength, p.MaximumCELength)
	}

	return ValidateConnParams(bthost.ConnParams{
		IntervalMin:        p.ConnIntervalMin,
		IntervalMax:        p.ConnIntervalMax,
		Latency:            p.ConnLatency,
		SupervisionTimeout: p.SupervisionTimeout,
	})
}
