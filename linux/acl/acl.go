// Package acl keeps one record per ACL link and drives the link level
// procedures L2CAP relies on: connection setup, remote feature reads and
// role switches.
package acl

import (
	"time"

	"github.com/pkg/errors"
	"github.com/rigado/bthost"
	"github.com/rigado/bthost/linux/hci"
	"github.com/rigado/bthost/linux/hci/cmd"
)

// State is the connection state of a record.
type State int

const (
	StateNone State = iota
	StateConnecting
	StateConnected
	StateRoleSwitching
	StateDisconnecting
)

func (s State) String() string {
	switch s {
	case StateNone:
		return "none"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateRoleSwitching:
		return "role-switching"
	case StateDisconnecting:
		return "disconnecting"
	default:
		return "unknown"
	}
}

// Controller is the command path to the controller.
type Controller interface {
	SendCommand(c hci.Command, done hci.CompleteFunc) error
}

// Links is the L2CAP side of link events.
type Links interface {
	// ConnectRequest reports whether an incoming BR/EDR link from addr
	// can be taken.
	ConnectRequest(addr bthost.BDAddr) bool
	LinkUp(info bthost.LinkInfo)
	LinkFailed(addr bthost.BDAddr, t bthost.Transport, status uint8)
	LinkDown(handle uint16, reason uint8) bool
	RoleSwitching(addr bthost.BDAddr)
	RoleChanged(addr bthost.BDAddr, role bthost.Role, status uint8)
	RemoteFeatures(addr bthost.BDAddr, t bthost.Transport, f bthost.FeaturePages)
}

// RemoteVersion is the result of Read Remote Version Information.
type RemoteVersion struct {
	Version      uint8
	Manufacturer uint16
	Subversion   uint16
}

// Record is the host view of one ACL link.
type Record struct {
	idx   int
	inUse bool

	Addr      bthost.BDAddr
	Transport bthost.Transport
	Handle    uint16
	Role      bthost.Role
	LinkType  uint8
	State     State

	Features     bthost.FeaturePages
	FeaturesDone bool
	Version      RemoteVersion
	Encrypted    bool
	Mode         uint8
	PacketTypes  uint16
	LinkPolicy   uint16

	maxPage int

	sw       switchState
	swRole   bthost.Role
	swStatus uint8
	swEncOff bool
	swTimer  bthost.Timer
}

// Options tunes the manager.
type Options struct {
	Records int

	// SupervisionTimeout is written on BR/EDR links where we are master,
	// in 0.625 ms slots. Zero leaves the controller default.
	SupervisionTimeout uint16

	PacketTypes uint16

	// LE connection creation parameters.
	LEScanInterval uint16
	LEScanWindow   uint16
	LEParams       bthost.ConnParams
}

// DefaultOptions returns the stack defaults.
func DefaultOptions() Options {
	return Options{
		Records:            8,
		SupervisionTimeout: 0x7D00,
		PacketTypes:        0xCC18,
		LEScanInterval:     0x0060,
		LEScanWindow:       0x0030,
		LEParams: bthost.ConnParams{
			IntervalMin:        0x0018,
			IntervalMax:        0x0028,
			Latency:            0,
			SupervisionTimeout: 0x01F4,
		},
	}
}

// Manager owns the ACL records. All methods run on the stack's serial
// context.
type Manager struct {
	log   bthost.Logger
	opts  Options
	ctrl  Controller
	sched bthost.Scheduler
	links Links
	sec   bthost.SecurityManager
	sco   bthost.SCOManager
	cache bthost.FeatureCache

	recs []*Record
	free []int

	localExtFeatures bool
	roleListener     func(addr bthost.BDAddr, role bthost.Role, status uint8)
}

// New returns a manager with opts.Records free records. SetLinks must be
// called before the first event.
func New(ctrl Controller, sched bthost.Scheduler, opts Options) *Manager {
	m := &Manager{
		log:   bthost.ModuleLogger("acl"),
		opts:  opts,
		ctrl:  ctrl,
		sched: sched,
		sec:   bthost.OpenSecurity{},
	}
	for i := 0; i < opts.Records; i++ {
		m.recs = append(m.recs, &Record{idx: i})
		m.free = append(m.free, i)
	}
	return m
}

// SetLinks sets the receiver of link events.
func (m *Manager) SetLinks(l Links) { m.links = l }

// SetSecurityManager sets the manager told about links going down.
func (m *Manager) SetSecurityManager(s bthost.SecurityManager) {
	if s == nil {
		s = bthost.OpenSecurity{}
	}
	m.sec = s
}

// SetSCOManager sets the owner of synchronous links.
func (m *Manager) SetSCOManager(s bthost.SCOManager) { m.sco = s }

// SetFeatureCache sets the store remote feature pages are written to.
func (m *Manager) SetFeatureCache(c bthost.FeatureCache) { m.cache = c }

// SetRoleSwitchListener sets a function told about every role switch
// outcome.
func (m *Manager) SetRoleSwitchListener(f func(addr bthost.BDAddr, role bthost.Role, status uint8)) {
	m.roleListener = f
}

// SetLocalFeatures records page 0 of the local LMP features.
func (m *Manager) SetLocalFeatures(page0 [8]byte) {
	m.localExtFeatures = page0[7]&0x80 != 0
}

func (m *Manager) alloc(addr bthost.BDAddr, t bthost.Transport) *Record {
	if len(m.free) == 0 {
		return nil
	}
	idx := m.free[0]
	m.free = m.free[1:]
	r := m.recs[idx]
	*r = Record{
		idx:       idx,
		inUse:     true,
		Addr:      addr,
		Transport: t,
		Handle:    0xFFFF,
		Role:      bthost.RoleUnknown,
		LinkType:  hci.LinkTypeACL,
	}
	if m.cache != nil && t == bthost.TransportBREDR {
		if f, err := m.cache.Load(addr); err == nil {
			r.Features = f
		}
	}
	return r
}

func (m *Manager) release(r *Record) {
	if !r.inUse {
		return
	}
	if r.swTimer != nil {
		r.swTimer.Stop()
		r.swTimer = nil
	}
	r.inUse = false
	r.State = StateNone
	m.free = append(m.free, r.idx)
}

// Find returns the in-use record of addr on t.
func (m *Manager) Find(addr bthost.BDAddr, t bthost.Transport) *Record {
	for _, r := range m.recs {
		if r.inUse && r.Addr == addr && r.Transport == t {
			return r
		}
	}
	return nil
}

// FindByHandle returns the connected record with handle h.
func (m *Manager) FindByHandle(h uint16) *Record {
	for _, r := range m.recs {
		if r.inUse && r.Handle == h && r.State != StateConnecting {
			return r
		}
	}
	return nil
}

// Count returns the number of records in use.
func (m *Manager) Count() int {
	return len(m.recs) - len(m.free)
}

// Connect creates an ACL connection to addr. A record that already exists
// is left alone; its completion is reported as usual.
func (m *Manager) Connect(addr bthost.BDAddr, t bthost.Transport) error {
	if r := m.Find(addr, t); r != nil {
		return nil
	}
	r := m.alloc(addr, t)
	if r == nil {
		return errors.Wrap(bthost.ErrNoResources, "acl record")
	}
	r.State = StateConnecting
	r.Role = bthost.RoleMaster

	var c hci.Command
	if t == bthost.TransportLE {
		c = &cmd.LECreateConnection{
			LEScanInterval:     m.opts.LEScanInterval,
			LEScanWindow:       m.opts.LEScanWindow,
			PeerAddress:        addr.LE(),
			ConnIntervalMin:    m.opts.LEParams.IntervalMin,
			ConnIntervalMax:    m.opts.LEParams.IntervalMax,
			ConnLatency:        m.opts.LEParams.Latency,
			SupervisionTimeout: m.opts.LEParams.SupervisionTimeout,
		}
	} else {
		c = &cmd.CreateConnection{
			BDADDR:                 addr.LE(),
			PacketType:             m.opts.PacketTypes,
			PageScanRepetitionMode: 0x01,
			AllowRoleSwitch:        0x01,
		}
	}
	m.log.Debugf("connecting to %v over %v", addr, t)
	err := m.ctrl.SendCommand(c, func(rsp hci.Response) {
		if rsp.Err() != nil {
			m.connectFailed(r, addr, t, statusOf(rsp))
		}
	})
	if err != nil {
		m.release(r)
		return errors.Wrapf(err, "connect %v", addr)
	}
	return nil
}

func (m *Manager) connectFailed(r *Record, addr bthost.BDAddr, t bthost.Transport, status uint8) {
	if r.inUse && r.Addr == addr && r.State == StateConnecting {
		m.release(r)
	}
	m.log.Infof("connection to %v failed, status 0x%02X", addr, status)
	m.links.LinkFailed(addr, t, status)
}

// statusOf returns the HCI status of a response, mapping local failures to
// unspecified error.
func statusOf(r hci.Response) uint8 {
	if s := r.Status(); s != 0 {
		return s
	}
	if r.Err() != nil {
		return uint8(hci.ErrUnspecified)
	}
	return 0
}

// Removed releases the record of addr on t. Releasing twice does nothing.
func (m *Manager) Removed(addr bthost.BDAddr, t bthost.Transport) {
	if r := m.Find(addr, t); r != nil {
		m.log.Debugf("record of %v removed", addr)
		m.release(r)
	}
}

// ConnectionComplete handles the outcome of a BR/EDR connection. SCO and
// eSCO links go to the SCO manager.
func (m *Manager) ConnectionComplete(addr bthost.BDAddr, handle uint16, linkType, status, encMode uint8) {
	if linkType == hci.LinkTypeSCO || linkType == hci.LinkTypeESCO {
		if m.sco != nil {
			m.sco.Connected(addr, handle, status)
		}
		return
	}
	if status != 0 {
		if r := m.Find(addr, bthost.TransportBREDR); r != nil {
			m.connectFailed(r, addr, bthost.TransportBREDR, status)
			return
		}
		m.links.LinkFailed(addr, bthost.TransportBREDR, status)
		return
	}

	role := bthost.RoleSlave
	r := m.Find(addr, bthost.TransportBREDR)
	if r != nil && r.State == StateConnecting {
		role = bthost.RoleMaster
	}
	m.linkCreated(r, bthost.LinkInfo{Addr: addr, Handle: handle, Transport: bthost.TransportBREDR, Role: role}, encMode != 0)
}

// LEConnectionComplete handles the outcome of an LE connection.
func (m *Manager) LEConnectionComplete(addr bthost.BDAddr, handle uint16, status uint8, role bthost.Role, p bthost.ConnParams) {
	if status != 0 {
		if ErrCanceled(status) {
			m.log.Debugf("le connection to %v canceled", addr)
		}
		if r := m.Find(addr, bthost.TransportLE); r != nil {
			m.connectFailed(r, addr, bthost.TransportLE, status)
			return
		}
		m.links.LinkFailed(addr, bthost.TransportLE, status)
		return
	}
	r := m.Find(addr, bthost.TransportLE)
	m.linkCreated(r, bthost.LinkInfo{Addr: addr, Handle: handle, Transport: bthost.TransportLE, Role: role, Params: p}, false)
}

// ErrCanceled reports whether status is the result of a canceled create
// connection.
func ErrCanceled(status uint8) bool {
	return hci.ErrCommand(status) == hci.ErrConnID
}

func (m *Manager) linkCreated(r *Record, info bthost.LinkInfo, encrypted bool) {
	if r != nil && r.State != StateConnecting {
		// Duplicate event for a link we already know.
		r.Handle = info.Handle
		r.Role = info.Role
		r.Encrypted = encrypted
		m.log.Debugf("duplicate connection complete for %v, handle 0x%04X", info.Addr, info.Handle)
		return
	}
	if r == nil {
		if r = m.alloc(info.Addr, info.Transport); r == nil {
			m.log.Errorf("no acl record for %v, disconnecting 0x%04X", info.Addr, info.Handle)
			m.send(&cmd.Disconnect{ConnectionHandle: info.Handle, Reason: uint8(hci.ErrLimitedResource)}, nil)
			return
		}
	}
	r.Handle = info.Handle
	r.Role = info.Role
	r.Encrypted = encrypted
	r.State = StateConnected
	r.Mode = hci.ModeActive
	m.log.Infof("%v link to %v up, handle 0x%04X, role %v", info.Transport, info.Addr, info.Handle, info.Role)

	m.send(&cmd.ReadRemoteVersionInformation{ConnectionHandle: r.Handle}, nil)
	if info.Transport == bthost.TransportBREDR {
		if info.Role == bthost.RoleMaster && m.opts.SupervisionTimeout != 0 {
			m.send(&cmd.WriteLinkSupervisionTimeout{
				ConnectionHandle:       r.Handle,
				LinkSupervisionTimeout: m.opts.SupervisionTimeout,
			}, nil)
		}
		m.readFeatures(r)
	}
	m.links.LinkUp(info)
}

// ConnectionRequest answers an incoming ACL connection. It is accepted as
// slave when both an ACL record and a link are free, and rejected with
// limited resources otherwise.
func (m *Manager) ConnectionRequest(addr bthost.BDAddr, linkType uint8) {
	if linkType != hci.LinkTypeACL {
		return
	}
	noRecord := m.Find(addr, bthost.TransportBREDR) == nil && len(m.free) == 0
	if noRecord || !m.links.ConnectRequest(addr) {
		m.log.Warnf("rejecting connection from %v: no resources", addr)
		m.send(&cmd.RejectConnectionRequest{BDADDR: addr.LE(), Reason: uint8(hci.ErrLimitedResource)}, nil)
		return
	}
	m.send(&cmd.AcceptConnectionRequest{BDADDR: addr.LE(), Role: uint8(bthost.RoleSlave)}, nil)
}

// DisconnectionComplete tears down the link of handle.
func (m *Manager) DisconnectionComplete(handle uint16, status, reason uint8) {
	if status != 0 {
		m.log.Warnf("disconnection of 0x%04X failed, status 0x%02X", handle, status)
		return
	}
	r := m.FindByHandle(handle)
	var addr bthost.BDAddr
	var t bthost.Transport
	if r != nil {
		addr, t = r.Addr, r.Transport
	}

	if !m.links.LinkDown(handle, reason) && m.sco != nil && m.sco.Removed(handle, reason) {
		return
	}
	if r == nil {
		m.log.Debugf("disconnection of unknown handle 0x%04X", handle)
		return
	}
	m.log.Infof("link 0x%04X to %v down, reason 0x%02X", handle, addr, reason)
	m.sec.LinkDown(addr, t)
	m.release(r)
}

// RemoteVersion records the remote version of handle.
func (m *Manager) RemoteVersion(handle uint16, status uint8, v RemoteVersion) {
	r := m.FindByHandle(handle)
	if r == nil || status != 0 {
		return
	}
	r.Version = v
}

// DeviceDown releases every record.
func (m *Manager) DeviceDown() {
	for _, r := range m.recs {
		m.release(r)
	}
}

func (m *Manager) send(c hci.Command, done hci.CompleteFunc) bool {
	if err := m.ctrl.SendCommand(c, done); err != nil {
		m.log.Warnf("send 0x%04X: %v", c.OpCode(), err)
		return false
	}
	return true
}

func (m *Manager) startTimer(t *bthost.Timer, d time.Duration, f func()) {
	if *t != nil {
		(*t).Stop()
	}
	*t = m.sched.AfterFunc(d, f)
}
