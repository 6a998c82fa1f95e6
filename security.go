package bthost

// SecurityStatus is the answer of the security manager to an access request.
type SecurityStatus int

const (
	SecurityGranted SecurityStatus = iota
	SecurityPending
	SecurityDenied
)

// SecurityManager gates channel establishment. A Pending answer must be
// followed by a call to the stack's SecurityComplete.
type SecurityManager interface {
	AccessRequest(addr BDAddr, psm uint16, transport Transport, originator bool, lcid uint16) SecurityStatus
	LinkDown(addr BDAddr, transport Transport)
}

// SCOManager owns synchronous links. Removed reports whether the handle
// belonged to a SCO link.
type SCOManager interface {
	Connected(addr BDAddr, handle uint16, status uint8)
	Removed(handle uint16, reason uint8) bool
}

// OpenSecurity grants every request.
type OpenSecurity struct{}

func (OpenSecurity) AccessRequest(BDAddr, uint16, Transport, bool, uint16) SecurityStatus {
	return SecurityGranted
}

func (OpenSecurity) LinkDown(BDAddr, Transport) {}

// Bonder is optionally implemented by a SecurityManager. Links of a device
// being bonded are not disconnected when they become idle.
type Bonder interface {
	Bonding(addr BDAddr) bool
}
