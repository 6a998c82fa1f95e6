package l2cap

import (
	"github.com/google/uuid"
	"github.com/rigado/bthost"
)

// LinkState is the state of a link control block.
type LinkState int

const (
	LinkIdle LinkState = iota
	LinkConnecting
	LinkConnected
	LinkDisconnecting
)

func (s LinkState) String() string {
	switch s {
	case LinkIdle:
		return "idle"
	case LinkConnecting:
		return "connecting"
	case LinkConnected:
		return "connected"
	case LinkDisconnecting:
		return "disconnecting"
	default:
		return "unknown"
	}
}

// rrServ is the round robin record of one priority band.
type rrServ struct {
	numCCB int
	first  *ccb
	serve  *ccb
	quota  int
}

// lcb is a link control block.
type lcb struct {
	idx   int
	inUse bool
	trace string
	log   bthost.Logger

	addr          bthost.BDAddr
	transport     bthost.Transport
	handle        uint16
	state         LinkState
	role          bthost.Role
	roleSwitching bool
	highPriority  bool
	releasing     bool

	nextID       uint8
	idleTimeout  uint16
	flushTimeout uint16
	timer        bthost.Timer

	// information exchange
	w4Info            bool
	infoID            uint8
	infoTimer         bthost.Timer
	peerExtFeatures   uint32
	peerFixedChannels uint64

	// echo
	lastEchoID uint8
	echoID     uint8
	echoCB     EchoFunc
	echoTimer  bthost.Timer

	// LE connection parameters
	params        bthost.ConnParams
	waiting       bthost.ConnParams
	updatePending bool
	updateID      uint8
	updateTimer   bthost.Timer

	// dynamic channels in service order
	ccbs  []*ccb
	rr    [numPriorities]rrServ
	rrPri Priority
	fixed [lastFixedCID + 1]*ccb

	linkQ        [][]byte
	partial      [][]byte
	quota        int
	sentNotAcked int
}

func (lk *lcb) newID() uint8 {
	lk.nextID++
	if lk.nextID == 0 {
		lk.nextID = 1
	}
	return lk.nextID
}

func (lk *lcb) sigCID() uint16 {
	if lk.transport == bthost.TransportLE {
		return CIDLESignalling
	}
	return CIDSignalling
}

// allocateLCB takes the first free link slot, or returns nil.
func (l *L2CAP) allocateLCB(addr bthost.BDAddr, t bthost.Transport) *lcb {
	for _, lk := range l.lcbs {
		if lk.inUse {
			continue
		}
		idx := lk.idx
		*lk = lcb{
			idx:          idx,
			inUse:        true,
			trace:        uuid.New().String(),
			addr:         addr,
			transport:    t,
			handle:       0xFFFF,
			state:        LinkIdle,
			role:         bthost.RoleUnknown,
			nextID:       0,
			idleTimeout:  l.idleTimeout[t],
			flushTimeout: defaultFlushTimeout,
		}
		lk.log = l.log.ChildLogger(map[string]interface{}{"link": lk.trace, "addr": addr.String()})
		for i := range lk.rr {
			lk.rr[i].quota = priorityQuota(Priority(i))
		}
		lk.log.Debugf("allocated lcb %d for %v", idx, t)

		l.adjustAllocation(l.poolFor(t))
		return lk
	}
	return nil
}

// releaseLCB tears down a link control block and everything it owns.
func (l *L2CAP) releaseLCB(lk *lcb) {
	if !lk.inUse {
		return
	}
	lk.releasing = true
	lk.log.Debugf("releasing lcb, handle 0x%04X, state %v", lk.handle, lk.state)

	stopTimer(&lk.timer)
	stopTimer(&lk.infoTimer)
	stopTimer(&lk.updateTimer)
	stopTimer(&lk.echoTimer)

	if cb := lk.echoCB; cb != nil {
		lk.echoCB = nil
		cb(EchoNoLink, nil)
	}

	for len(lk.ccbs) > 0 {
		l.releaseCCB(lk.ccbs[0])
	}
	l.processFixedDisc(lk, 0)

	p := l.poolFor(lk.transport)
	if lk.quota == 0 {
		p.rrUnacked -= lk.sentNotAcked
		if p.rrUnacked < 0 {
			p.rrUnacked = 0
		}
	}
	p.window += lk.sentNotAcked
	if p.window > p.bufs {
		p.window = p.bufs
	}
	lk.sentNotAcked = 0
	lk.linkQ = nil
	lk.partial = nil

	if lk.handle != 0xFFFF {
		l.ctrl.DropACL(lk.handle)
	}

	addr, t := lk.addr, lk.transport
	lk.inUse = false
	lk.state = LinkIdle
	lk.releasing = false

	l.links.Removed(addr, t)
	l.adjustAllocation(p)
	l.checkSendPackets(nil)
}

func (l *L2CAP) findLCBByAddr(addr bthost.BDAddr, t bthost.Transport) *lcb {
	for _, lk := range l.lcbs {
		if lk.inUse && lk.addr == addr && lk.transport == t {
			return lk
		}
	}
	return nil
}

func (l *L2CAP) findLCBByHandle(h uint16) *lcb {
	for _, lk := range l.lcbs {
		if lk.inUse && lk.handle == h && lk.state != LinkConnecting && lk.state != LinkIdle {
			return lk
		}
	}
	return nil
}

func (lk *lcb) findCCBByLocalCID(cid uint16) *ccb {
	if cid < FirstDynamicCID {
		if int(cid) < len(lk.fixed) {
			return lk.fixed[cid]
		}
		return nil
	}
	for _, c := range lk.ccbs {
		if c.localCID == cid {
			return c
		}
	}
	return nil
}

func (lk *lcb) findCCBByRemoteCID(cid uint16) *ccb {
	for _, c := range lk.ccbs {
		if c.remoteCID == cid {
			return c
		}
	}
	return nil
}

func (lk *lcb) findCCBByLocalID(id uint8) *ccb {
	for _, c := range lk.ccbs {
		if c.localID == id {
			return c
		}
	}
	return nil
}

// enqueue inserts c before the first channel of a strictly lower priority.
func (lk *lcb) enqueue(c *ccb) {
	i := 0
	for i < len(lk.ccbs) && lk.ccbs[i].priority <= c.priority {
		i++
	}
	lk.ccbs = append(lk.ccbs, nil)
	copy(lk.ccbs[i+1:], lk.ccbs[i:])
	lk.ccbs[i] = c

	b := &lk.rr[c.priority]
	if b.numCCB == 0 {
		b.first = c
		b.serve = c
		b.quota = priorityQuota(c.priority)
	}
	b.numCCB++
}

// dequeue removes c from the service order and fixes its band record.
func (lk *lcb) dequeue(c *ccb) {
	i := lk.indexOf(c)
	if i < 0 {
		return
	}
	var next *ccb
	if i+1 < len(lk.ccbs) && lk.ccbs[i+1].priority == c.priority {
		next = lk.ccbs[i+1]
	}
	lk.ccbs = append(lk.ccbs[:i], lk.ccbs[i+1:]...)

	b := &lk.rr[c.priority]
	b.numCCB--
	if b.numCCB == 0 {
		b.first, b.serve = nil, nil
		return
	}
	if b.first == c {
		b.first = next
	}
	if b.serve == c {
		b.serve = b.first
	}
}

func (lk *lcb) indexOf(c *ccb) int {
	for i, x := range lk.ccbs {
		if x == c {
			return i
		}
	}
	return -1
}

// nextInBand returns the channel after c in its band, wrapping to the
// band's first channel.
func (lk *lcb) nextInBand(c *ccb) *ccb {
	i := lk.indexOf(c)
	if i >= 0 && i+1 < len(lk.ccbs) && lk.ccbs[i+1].priority == c.priority {
		return lk.ccbs[i+1]
	}
	return lk.rr[c.priority].first
}

func priorityQuota(p Priority) int {
	if p == PriorityHigh {
		return rrQuotaHigh
	}
	return rrQuotaOther
}

func (lk *lcb) hasDynamic() bool {
	return len(lk.ccbs) > 0
}

// sendSignal queues one signalling command on the link.
func (l *L2CAP) sendSignal(lk *lcb, id uint8, s Signal) {
	l.sendLinkPDU(lk, buildSignal(lk.sigCID(), id, s))
}

func (l *L2CAP) sendReject(lk *lcb, id uint8, reason uint16, data []byte) {
	l.sendSignal(lk, id, &CommandReject{Reason: reason, Data: data})
}
