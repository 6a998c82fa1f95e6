// Package l2cap implements the L2CAP link and channel layer: link and
// channel control block pools, the signalling processor for BR/EDR and LE,
// configuration negotiation, LE credit based channels, fixed channels and
// the transmit resource allocator.
//
// An L2CAP is not safe for concurrent use. Every method, and every
// callback it makes, runs on the stack's serial context.
package l2cap

import (
	"time"

	"github.com/pkg/errors"
	"github.com/rigado/bthost"
	"github.com/rigado/bthost/linux/hci"
)

// Controller is the part of the HCI dispatcher used by L2CAP.
type Controller interface {
	SendCommand(c hci.Command, done hci.CompleteFunc) error
	FragmentACL(handle uint16, t bthost.Transport, p []byte) ([][]byte, error)
	WritePacket(b []byte) error
	BufferSize(t bthost.Transport) (size, count int)
	SharedLEBuffers() bool
	DropACL(handle uint16)
}

// LinkManager is the ACL connection manager as seen from L2CAP.
type LinkManager interface {
	Connect(addr bthost.BDAddr, t bthost.Transport) error
	Removed(addr bthost.BDAddr, t bthost.Transport)
}

// Options sizes the pools and sets the protocol defaults.
type Options struct {
	Links    int
	Channels int

	IdleTimeoutBREDR uint16 // seconds
	IdleTimeoutLE    uint16 // seconds

	LocalMTU uint16

	LEMTU     uint16
	LEMPS     uint16
	LECredits uint16

	HighPriorityQuota int

	HeldLimit    int
	HeldRetries  int
	HeldInterval time.Duration
}

// DefaultOptions returns the stack defaults.
func DefaultOptions() Options {
	return Options{
		Links:             8,
		Channels:          32,
		IdleTimeoutBREDR:  4,
		IdleTimeoutLE:     1,
		LocalMTU:          DefaultMTU,
		LEMTU:             512,
		LEMPS:             246,
		LECredits:         10,
		HighPriorityQuota: maxHighPriorityQuota,
		HeldLimit:         defaultHeldPacketsLimit,
		HeldRetries:       defaultHoldRetries,
		HeldInterval:      defaultHoldInterval,
	}
}

// Callbacks are the channel events of a registered PSM. Nil members are
// skipped; a nil ConnectInd accepts incoming channels.
type Callbacks struct {
	ConnectInd    func(addr bthost.BDAddr, lcid, psm uint16, id uint8)
	ConnectCfm    func(lcid, result uint16)
	ConfigInd     func(lcid uint16, cfg *ConfigInfo)
	ConfigCfm     func(lcid uint16, cfg *ConfigInfo)
	DisconnectInd func(lcid uint16, ackNeeded bool)
	DisconnectCfm func(lcid, result uint16)
	DataInd       func(lcid uint16, p []byte)
	Congestion    func(lcid uint16, congested bool)
}

// Registration binds a PSM to a profile.
type Registration struct {
	Callbacks

	// Config is sent as our configuration request once a channel reaches
	// the configuration state. An absent MTU is filled with the local MTU.
	Config ConfigInfo

	// ManualConfigRsp leaves answering accepted peer configuration
	// requests to the profile through ConfigRsp.
	ManualConfigRsp bool

	// AckDisconnect makes peer disconnections wait for DisconnectRsp.
	AckDisconnect bool

	psm uint16
	le  bool
}

// FixedCallbacks are the events of a fixed channel.
type FixedCallbacks struct {
	Connected  func(cid uint16, addr bthost.BDAddr, connected bool, reason uint8, t bthost.Transport)
	DataInd    func(cid uint16, addr bthost.BDAddr, p []byte)
	Congestion func(addr bthost.BDAddr, congested bool)

	// IdleTimeout, in seconds, keeps a link up while the channel is
	// connected.
	IdleTimeout uint16
}

// ConnUpdateFunc reports the outcome of a connection parameter update.
type ConnUpdateFunc func(addr bthost.BDAddr, status uint8, p bthost.ConnParams)

// EchoFunc receives the result of a Ping.
type EchoFunc func(result uint8, data []byte)

// L2CAP is one L2CAP layer instance.
type L2CAP struct {
	log   bthost.Logger
	opts  Options
	ctrl  Controller
	links LinkManager
	sched bthost.Scheduler
	sec   bthost.SecurityManager

	lcbs    []*lcb
	ccbs    []*ccb
	freeCCB []int

	regs   map[uint16]*Registration
	leRegs map[uint16]*Registration
	fixed  map[uint16]*FixedCallbacks

	pools     [2]bufPool
	held      heldQueue
	holdTimer bthost.Timer

	idleTimeout [2]uint16

	connUpdate ConnUpdateFunc

	// set while a congestion callback runs, sending is deferred.
	inCongestionCallback bool
}

// New returns an L2CAP layer with empty pools. SetBuffers must be called
// once the controller buffer sizes are known.
func New(ctrl Controller, links LinkManager, sched bthost.Scheduler, opts Options) *L2CAP {
	l := &L2CAP{
		log:    bthost.ModuleLogger("l2cap"),
		opts:   opts,
		ctrl:   ctrl,
		links:  links,
		sched:  sched,
		sec:    bthost.OpenSecurity{},
		regs:   map[uint16]*Registration{},
		leRegs: map[uint16]*Registration{},
		fixed:  map[uint16]*FixedCallbacks{},
	}
	l.idleTimeout[bthost.TransportBREDR] = opts.IdleTimeoutBREDR
	l.idleTimeout[bthost.TransportLE] = opts.IdleTimeoutLE

	l.lcbs = make([]*lcb, opts.Links)
	for i := range l.lcbs {
		l.lcbs[i] = &lcb{idx: i}
	}
	l.ccbs = make([]*ccb, opts.Channels)
	l.freeCCB = make([]int, 0, opts.Channels)
	for i := range l.ccbs {
		l.ccbs[i] = &ccb{idx: i}
		l.freeCCB = append(l.freeCCB, i)
	}
	l.held = newHeldQueue(opts.HeldLimit)
	return l
}

// SetSecurityManager sets the manager consulted on channel setup.
func (l *L2CAP) SetSecurityManager(m bthost.SecurityManager) {
	if m == nil {
		m = bthost.OpenSecurity{}
	}
	l.sec = m
}

// SetConnUpdateHandler sets the receiver of connection parameter update
// outcomes.
func (l *L2CAP) SetConnUpdateHandler(f ConnUpdateFunc) {
	l.connUpdate = f
}

// SetBuffers reads the controller buffer counts into the transmit pools.
func (l *L2CAP) SetBuffers() {
	_, n := l.ctrl.BufferSize(bthost.TransportBREDR)
	l.pools[bthost.TransportBREDR] = bufPool{bufs: n, window: n}
	if !l.ctrl.SharedLEBuffers() {
		_, n = l.ctrl.BufferSize(bthost.TransportLE)
		l.pools[bthost.TransportLE] = bufPool{bufs: n, window: n}
	}
	l.log.Debugf("controller buffers: acl %v, le %v", l.pools[0].bufs, l.pools[1].bufs)
}

// Register binds psm to reg for BR/EDR channels.
func (l *L2CAP) Register(psm uint16, reg Registration) error {
	if psm&0x0001 == 0 || psm&0x0100 != 0 {
		return bthost.ErrInvalidParams
	}
	if reg.Config.mode() != ModeBasic {
		return errors.Wrapf(bthost.ErrInvalidParams, "psm 0x%04X: mode %d", psm, reg.Config.mode())
	}
	r := reg
	r.psm = psm
	l.regs[psm] = &r
	return nil
}

// Deregister removes a BR/EDR registration. Channels already open keep
// their callbacks until they close.
func (l *L2CAP) Deregister(psm uint16) {
	delete(l.regs, psm)
}

// RegisterLE binds an LE_PSM to reg for credit based channels.
func (l *L2CAP) RegisterLE(psm uint16, reg Registration) error {
	if psm == 0 || psm > 0x00FF {
		return bthost.ErrInvalidParams
	}
	r := reg
	r.psm = psm
	r.le = true
	l.leRegs[psm] = &r
	return nil
}

// DeregisterLE removes an LE_PSM registration.
func (l *L2CAP) DeregisterLE(psm uint16) {
	delete(l.leRegs, psm)
}

// RegisterFixed sets the callbacks of a fixed channel.
func (l *L2CAP) RegisterFixed(cid uint16, cb FixedCallbacks) error {
	if cid < firstFixedCID || cid > lastFixedCID || cid == CIDLESignalling {
		return bthost.ErrInvalidParams
	}
	c := cb
	l.fixed[cid] = &c
	return nil
}

// DeregisterFixed removes the callbacks of a fixed channel.
func (l *L2CAP) DeregisterFixed(cid uint16) {
	delete(l.fixed, cid)
}

func (l *L2CAP) startTimer(t *bthost.Timer, d time.Duration, f func()) {
	stopTimer(t)
	*t = l.sched.AfterFunc(d, f)
}

func stopTimer(t *bthost.Timer) {
	if *t != nil {
		(*t).Stop()
		*t = nil
	}
}
