package bthost

import "fmt"

// Transport identifies the physical transport of a link.
type Transport uint8

const (
	TransportBREDR Transport = iota
	TransportLE
)

func (t Transport) String() string {
	switch t {
	case TransportBREDR:
		return "br/edr"
	case TransportLE:
		return "le"
	default:
		return fmt.Sprintf("transport(%d)", uint8(t))
	}
}

// Role is the link layer role of the local device on a link.
type Role uint8

const (
	RoleMaster  Role = 0x00
	RoleSlave   Role = 0x01
	RoleUnknown Role = 0xFF
)

func (r Role) String() string {
	switch r {
	case RoleMaster:
		return "master"
	case RoleSlave:
		return "slave"
	default:
		return "unknown"
	}
}

// ConnParams are LE connection parameters in controller units
// (interval in 1.25 ms, timeout in 10 ms).
type ConnParams struct {
	IntervalMin        uint16
	IntervalMax        uint16
	Latency            uint16
	SupervisionTimeout uint16
}

// IdleTimeout values are in seconds; these two are special.
const (
	IdleTimeoutImmediate uint16 = 0x0000
	IdleTimeoutInfinite  uint16 = 0xFFFF
)

// LinkInfo describes an ACL link that came up.
type LinkInfo struct {
	Addr      BDAddr
	Handle    uint16
	Transport Transport
	Role      Role

	// LE links only.
	Params ConnParams
}
