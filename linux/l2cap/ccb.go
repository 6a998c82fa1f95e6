package l2cap

import (
	"github.com/rigado/bthost"
	"github.com/rigado/bthost/linux/hci"
)

// ChannelState is the state of a channel control block.
type ChannelState int

const (
	ChanClosed ChannelState = iota
	ChanOrigW4SecComp
	ChanTermW4SecComp
	ChanW4L2CAPConnectRsp
	ChanW4L2CAConnectRsp
	ChanConfig
	ChanOpen
	ChanW4L2CAPDisconnectRsp
	ChanW4L2CADisconnectRsp
)

var chanStateNames = [...]string{
	"closed",
	"orig-w4-sec-comp",
	"term-w4-sec-comp",
	"w4-l2cap-connect-rsp",
	"w4-l2ca-connect-rsp",
	"config",
	"open",
	"w4-l2cap-disconnect-rsp",
	"w4-l2ca-disconnect-rsp",
}

func (s ChannelState) String() string {
	if int(s) < len(chanStateNames) {
		return chanStateNames[s]
	}
	return "unknown"
}

// ccb is a channel control block.
type ccb struct {
	idx   int
	inUse bool
	lk    *lcb
	reg   *Registration
	fixed bool

	localCID  uint16
	remoteCID uint16
	psm       uint16

	state    ChannelState
	localID  uint8
	remoteID uint8
	timer    bthost.Timer

	priority  Priority
	txRate    DataRate
	rxRate    DataRate
	buffQuota int
	congested bool
	txq       [][]byte

	// BR/EDR configuration
	ourCfg          ConfigInfo
	peerCfg         ConfigInfo
	pendingCfg      ConfigInfo
	cfgOpts         []byte
	ourCfgDone      bool
	peerCfgDone     bool
	ourCfgSent      bool
	ourCfgRetried   bool
	peerCfgRejected bool

	idleTimeout    uint16
	apiDisc        bool
	originator     bool
	pendingConnect bool

	// LE credit based channel
	le           bool
	localMTU     uint16
	localMPS     uint16
	localCredits uint16
	initCredits  uint16
	peerMTU      uint16
	peerMPS      uint16
	peerCredits  uint16
	sdu          []byte
	sduLen       int
}

// allocateCCB takes a channel slot. A zero hint takes the first free
// dynamic slot, a hint of FirstDynamicCID or above asks for that CID and a
// fixed channel CID reserves a fixed channel block on lk.
func (l *L2CAP) allocateCCB(lk *lcb, hint uint16) *ccb {
	if len(l.freeCCB) == 0 {
		return nil
	}
	pos := 0
	if hint >= FirstDynamicCID {
		pos = -1
		want := int(hint - FirstDynamicCID)
		for i, idx := range l.freeCCB {
			if idx == want {
				pos = i
				break
			}
		}
		if pos < 0 {
			return nil
		}
	}
	idx := l.freeCCB[pos]
	l.freeCCB = append(l.freeCCB[:pos], l.freeCCB[pos+1:]...)

	c := l.ccbs[idx]
	*c = ccb{
		idx:       idx,
		inUse:     true,
		lk:        lk,
		localCID:  FirstDynamicCID + uint16(idx),
		state:     ChanClosed,
		priority:  PriorityLow,
		txRate:    DataRateLow,
		rxRate:    DataRateLow,
		buffQuota: defaultBuffQuota,
	}
	c.ourCfg = ConfigInfo{
		MTUPresent:          true,
		MTU:                 l.opts.LocalMTU,
		FlushTimeoutPresent: true,
		FlushTimeout:        defaultFlushTimeout,
		QoS:                 DefaultQoS,
		FCR:                 FCROptions{Mode: ModeBasic},
	}
	c.peerCfg = ConfigInfo{MTU: DefaultMTU, FlushTimeout: defaultFlushTimeout, QoS: DefaultQoS}

	if hint != 0 && hint < FirstDynamicCID {
		c.fixed = true
		c.localCID = hint
		c.remoteCID = hint
		c.state = ChanOpen
		c.priority = PriorityHigh
		lk.fixed[hint] = c
		return c
	}

	lk.enqueue(c)
	l.adjustChannelAllocation(lk)
	return c
}

// releaseCCB frees c. Releasing a free block does nothing.
func (l *L2CAP) releaseCCB(c *ccb) {
	if !c.inUse {
		return
	}
	stopTimer(&c.timer)
	c.txq = nil
	c.sdu = nil
	c.inUse = false
	c.state = ChanClosed

	lk := c.lk
	if c.fixed {
		if lk.fixed[c.localCID] == c {
			lk.fixed[c.localCID] = nil
		}
	} else {
		lk.dequeue(c)
	}
	l.freeCCB = append(l.freeCCB, c.idx)

	if c.fixed || lk.releasing {
		return
	}
	if lk.state == LinkConnected && !lk.hasDynamic() {
		l.noDynamicCCBs(lk)
	} else {
		l.adjustChannelAllocation(lk)
	}
}

// noDynamicCCBs applies the idle policy to a link whose last dynamic
// channel closed.
func (l *L2CAP) noDynamicCCBs(lk *lcb) {
	timeout := lk.idleTimeout
	for cid, fc := range lk.fixed {
		if fc == nil {
			continue
		}
		if cb := l.fixed[uint16(cid)]; cb != nil && cb.IdleTimeout > timeout {
			timeout = cb.IdleTimeout
		}
		if fc.idleTimeout > timeout {
			timeout = fc.idleTimeout
		}
	}

	if b, ok := l.sec.(bthost.Bonder); ok && b.Bonding(lk.addr) {
		lk.log.Debug("idle: bonding in progress, keeping link")
		return
	}

	lk.log.Debugf("idle: timeout %d s", timeout)
	switch timeout {
	case bthost.IdleTimeoutInfinite:
		stopTimer(&lk.timer)
	case bthost.IdleTimeoutImmediate:
		if l.disconnectLink(lk, hciReasonRemoteUser) {
			l.processFixedDisc(lk, hciReasonRemoteUser)
			lk.state = LinkDisconnecting
			l.startTimer(&lk.timer, linkDisconnectTimeout, func() { l.linkTimeout(lk) })
		} else {
			l.startTimer(&lk.timer, idleRetryTimeout, func() { l.linkTimeout(lk) })
		}
	default:
		l.startTimer(&lk.timer, secs(timeout), func() { l.linkTimeout(lk) })
	}
}

// disconnectLink issues HCI Disconnect and reports whether it was sent.
func (l *L2CAP) disconnectLink(lk *lcb, reason uint8) bool {
	err := l.ctrl.SendCommand(disconnectCmd(lk.handle, reason), func(r hci.Response) {
		if err := r.Err(); err != nil {
			lk.log.Warnf("disconnect: %v", err)
		}
	})
	if err != nil {
		lk.log.Warnf("disconnect not sent: %v", err)
		return false
	}
	return true
}

func (c *ccb) cb() *Callbacks {
	if c.reg == nil {
		return &Callbacks{}
	}
	return &c.reg.Callbacks
}

func (l *L2CAP) findCCB(lcid uint16) *ccb {
	if lcid < FirstDynamicCID {
		return nil
	}
	idx := int(lcid - FirstDynamicCID)
	if idx >= len(l.ccbs) {
		return nil
	}
	c := l.ccbs[idx]
	if !c.inUse || c.fixed {
		return nil
	}
	return c
}
