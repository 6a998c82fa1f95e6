package l2cap

import (
	"github.com/rigado/bthost"
)

// bufPool tracks the controller ACL buffers of one transport.
type bufPool struct {
	bufs   int
	window int

	// Links with a zero quota share rrQuota buffers, served one packet at
	// a time.
	rrQuota   int
	rrUnacked int
	checkRR   bool
}

func (l *L2CAP) poolFor(t bthost.Transport) *bufPool {
	if t == bthost.TransportLE && !l.ctrl.SharedLEBuffers() {
		return &l.pools[bthost.TransportLE]
	}
	return &l.pools[bthost.TransportBREDR]
}

// adjustAllocation splits the buffers of p between its links. High
// priority links get a fixed quota, low priority links share the rest and
// fall back to round robin when they outnumber it.
func (l *L2CAP) adjustAllocation(p *bufPool) {
	var hi, lo int
	for _, lk := range l.lcbs {
		if !lk.inUse || l.poolFor(lk.transport) != p {
			continue
		}
		if lk.highPriority {
			hi++
		} else {
			lo++
		}
	}
	if hi+lo == 0 {
		p.rrQuota, p.rrUnacked = 0, 0
		p.window = p.bufs
		return
	}

	lowMin := 0
	if lo > 0 {
		lowMin = 1
	}
	hiQuota := l.opts.HighPriorityQuota
	for hiQuota > 0 && hi*hiQuota+lowMin > p.bufs {
		hiQuota--
	}
	lowQuota := 1
	if hi*hiQuota < p.bufs {
		lowQuota = p.bufs - hi*hiQuota
	}

	qq, rem := 0, 0
	if lo > lowQuota {
		p.rrQuota = lowQuota
	} else if lo > 0 {
		p.rrQuota, p.rrUnacked = 0, 0
		qq, rem = lowQuota/lo, lowQuota%lo
	}

	for _, lk := range l.lcbs {
		if !lk.inUse || l.poolFor(lk.transport) != p {
			continue
		}
		prev := lk.quota
		switch {
		case lk.highPriority:
			lk.quota = hiQuota
		case rem > 0:
			lk.quota = qq + 1
			rem--
		default:
			lk.quota = qq
		}
		if prev > 0 && lk.quota == 0 {
			p.rrUnacked += lk.sentNotAcked
		}
		lk.log.Debugf("quota %d (hi %d, lo %d, bufs %d, rr %d)", lk.quota, hi, lo, p.bufs, p.rrQuota)

		// Another link may have used the window; kick this one later.
		if lk.state == LinkConnected && len(lk.linkQ) > 0 && lk.sentNotAcked < lk.quota && lk.hasDynamic() {
			l.startTimer(&lk.timer, linkFlowControlTimeout, func() { l.linkTimeout(lk) })
		}
	}
}

// adjustChannelAllocation sets the buffer quota of every channel of lk
// from its data rates and re-checks congestion.
func (l *L2CAP) adjustChannelAllocation(lk *lcb) {
	for _, c := range lk.ccbs {
		c.buffQuota = chnlQuotaPerRate * int(c.txRate+c.rxRate)
		l.checkCongestion(c)
	}
	for _, c := range lk.fixed {
		if c != nil {
			c.buffQuota = chnlQuotaPerRate * int(c.txRate+c.rxRate)
			l.checkCongestion(c)
		}
	}
}

// checkCongestion reports edges of the congestion state of c: on when its
// queue exceeds the quota, off once it drains to half.
func (l *L2CAP) checkCongestion(c *ccb) {
	q := len(c.txq)
	switch {
	case !c.congested && q > c.buffQuota:
		c.congested = true
	case c.congested && q <= c.buffQuota/2:
		c.congested = false
	default:
		return
	}
	c.lk.log.Debugf("cid 0x%04X congested %v (q %d, quota %d)", c.localCID, c.congested, q, c.buffQuota)

	l.inCongestionCallback = true
	defer func() { l.inCongestionCallback = false }()
	if c.fixed {
		if cb := l.fixed[c.localCID]; cb != nil && cb.Congestion != nil {
			cb.Congestion(c.lk.addr, c.congested)
		}
		return
	}
	if f := c.cb().Congestion; f != nil {
		f(c.localCID, c.congested)
	}
}

// nextChannelInRR picks the next dynamic channel to serve. Bands are
// visited from lk.rrPri; within a band the serve pointer rotates and
// the band quota limits consecutive picks.
func (lk *lcb) nextChannelInRR() *ccb {
	var found *ccb
	for i := 0; i < numPriorities && found == nil; i++ {
		b := &lk.rr[lk.rrPri]
		for j := 0; j < b.numCCB && found == nil; j++ {
			c := b.serve
			if c == nil {
				return nil
			}
			b.serve = lk.nextInBand(c)
			if !c.ready() {
				continue
			}
			found = c
			b.quota--
		}
		if b.quota <= 0 || found == nil {
			lk.rrPri = (lk.rrPri + 1) % numPriorities
			lk.rr[lk.rrPri].quota = priorityQuota(lk.rrPri)
		}
	}
	return found
}

func (c *ccb) ready() bool {
	if c.state != ChanOpen || len(c.txq) == 0 {
		return false
	}
	return !c.le || c.peerCredits > 0
}

// nextBufferToSend dequeues the next PDU of lk: fixed channels first,
// then the dynamic channels in round robin.
func (l *L2CAP) nextBufferToSend(lk *lcb) []byte {
	for _, c := range lk.fixed {
		if c == nil || len(c.txq) == 0 {
			continue
		}
		b := c.pop()
		l.checkCongestion(c)
		return b
	}
	c := lk.nextChannelInRR()
	if c == nil {
		return nil
	}
	b := c.pop()
	if c.le {
		c.peerCredits--
	}
	l.checkCongestion(c)
	return b
}

func (c *ccb) pop() []byte {
	b := c.txq[0]
	c.txq[0] = nil
	c.txq = c.txq[1:]
	return b
}

// sendLinkPDU queues a PDU on the link queue, ahead of channel data.
func (l *L2CAP) sendLinkPDU(lk *lcb, pdu []byte) {
	lk.linkQ = append(lk.linkQ, pdu)
	if lk.quota == 0 {
		l.poolFor(lk.transport).checkRR = true
	}
	l.checkSendPackets(lk)
}

// checkSendPackets moves queued data to the controller as far as the
// window and quotas allow. A nil lk, or a link on round robin, serves
// every round robin link once.
func (l *L2CAP) checkSendPackets(lk *lcb) {
	if l.inCongestionCallback {
		return
	}
	if lk == nil || lk.quota == 0 {
		l.serveRoundRobin()
		return
	}
	if lk.state != LinkConnected {
		return
	}

	p := l.poolFor(lk.transport)
	l.sendPartial(lk)
	for len(lk.partial) == 0 && p.window > 0 && lk.sentNotAcked < lk.quota && len(lk.linkQ) > 0 {
		b := lk.linkQ[0]
		lk.linkQ = lk.linkQ[1:]
		if !l.sendToLower(lk, b) {
			break
		}
	}
	for len(lk.partial) == 0 && p.window > 0 && lk.sentNotAcked < lk.quota && lk.state == LinkConnected {
		b := l.nextBufferToSend(lk)
		if b == nil {
			break
		}
		if !l.sendToLower(lk, b) {
			break
		}
	}

	if len(lk.linkQ) > 0 && lk.sentNotAcked < lk.quota && lk.hasDynamic() {
		l.startTimer(&lk.timer, linkFlowControlTimeout, func() { l.linkTimeout(lk) })
	}
}

func (l *L2CAP) serveRoundRobin() {
	for _, lk := range l.lcbs {
		if !lk.inUse || lk.quota != 0 || lk.state != LinkConnected {
			continue
		}
		p := l.poolFor(lk.transport)
		if p.window == 0 || p.rrUnacked >= p.rrQuota {
			continue
		}
		if len(lk.partial) > 0 {
			l.sendPartial(lk)
			continue
		}
		var b []byte
		if len(lk.linkQ) > 0 {
			b = lk.linkQ[0]
			lk.linkQ = lk.linkQ[1:]
		} else {
			b = l.nextBufferToSend(lk)
		}
		if b != nil {
			l.sendToLower(lk, b)
		}
	}
	for i := range l.pools {
		p := &l.pools[i]
		if p.window > 0 && p.rrUnacked < p.rrQuota {
			p.checkRR = false
		}
	}
}

// sendToLower fragments pdu and writes as many fragments as the window
// and quota allow. Left over fragments wait in lk.partial.
func (l *L2CAP) sendToLower(lk *lcb, pdu []byte) bool {
	frags, err := l.ctrl.FragmentACL(lk.handle, lk.transport, pdu)
	if err != nil {
		lk.log.Errorf("fragment: %v", err)
		return false
	}
	lk.partial = frags
	return l.sendPartial(lk)
}

func (l *L2CAP) sendPartial(lk *lcb) bool {
	if len(lk.partial) == 0 {
		return true
	}
	p := l.poolFor(lk.transport)
	n := len(lk.partial)
	if lk.quota == 0 {
		n = 1
	} else if room := lk.quota - lk.sentNotAcked; n > room {
		n = room
	}
	if n > p.window {
		n = p.window
	}
	for i := 0; i < n; i++ {
		if err := l.ctrl.WritePacket(lk.partial[0]); err != nil {
			lk.log.Errorf("write acl: %v", err)
			lk.partial = nil
			return false
		}
		lk.partial = lk.partial[1:]
		p.window--
		lk.sentNotAcked++
		if lk.quota == 0 {
			p.rrUnacked++
		}
	}
	if len(lk.partial) == 0 {
		lk.partial = nil
	}
	return true
}

// NumCompletedPackets returns controller credit for handle and resumes
// sending.
func (l *L2CAP) NumCompletedPackets(handle uint16, n int) {
	lk := l.findLCBByHandle(handle)
	if lk == nil {
		return
	}
	p := l.poolFor(lk.transport)
	p.window += n
	if p.window > p.bufs {
		p.window = p.bufs
	}
	if lk.quota == 0 {
		p.rrUnacked -= n
		if p.rrUnacked < 0 {
			p.rrUnacked = 0
		}
	}
	lk.sentNotAcked -= n
	if lk.sentNotAcked < 0 {
		lk.sentNotAcked = 0
	}

	l.checkSendPackets(lk)
	if lk.highPriority && p.checkRR && p.rrUnacked < p.rrQuota {
		l.checkSendPackets(nil)
	}
}
