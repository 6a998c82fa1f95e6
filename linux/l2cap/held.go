package l2cap

// heldPkt is an ACL PDU received before its link was known.
type heldPkt struct {
	handle uint16
	p      []byte
	tries  int
}

// heldQueue is a bounded FIFO; the oldest packet is dropped when full.
type heldQueue struct {
	limit int
	pkts  []heldPkt
}

func newHeldQueue(limit int) heldQueue {
	return heldQueue{limit: limit}
}

func (q *heldQueue) push(handle uint16, p []byte) (dropped bool) {
	if q.limit <= 0 {
		return true
	}
	if len(q.pkts) >= q.limit {
		q.pkts = q.pkts[1:]
		dropped = true
	}
	q.pkts = append(q.pkts, heldPkt{handle: handle, p: append([]byte(nil), p...)})
	return dropped
}

// take removes and returns the packets of handle, oldest first.
func (q *heldQueue) take(handle uint16) [][]byte {
	var out [][]byte
	keep := q.pkts[:0]
	for _, h := range q.pkts {
		if h.handle == handle {
			out = append(out, h.p)
			continue
		}
		keep = append(keep, h)
	}
	q.pkts = keep
	return out
}

func (q *heldQueue) drop(handle uint16) {
	q.take(handle)
}

func (q *heldQueue) len() int { return len(q.pkts) }

func (l *L2CAP) holdPacket(handle uint16, p []byte) {
	if l.held.push(handle, p) {
		l.log.Warnf("held queue full, dropped oldest packet")
	}
	l.log.Debugf("holding %d bytes for unknown handle 0x%04X", len(p), handle)
	if l.holdTimer == nil {
		l.holdTimer = l.sched.AfterFunc(l.opts.HeldInterval, l.retryHeld)
	}
}

// retryHeld delivers held packets whose link came up and ages the rest.
func (l *L2CAP) retryHeld() {
	l.holdTimer = nil
	pending := l.held.pkts
	l.held.pkts = nil
	for _, h := range pending {
		if lk := l.findLCBByHandle(h.handle); lk != nil {
			l.deliver(lk, h.p)
			continue
		}
		h.tries++
		if h.tries >= l.opts.HeldRetries {
			l.log.Warnf("dropping held packet for handle 0x%04X after %d tries", h.handle, h.tries)
			continue
		}
		l.held.pkts = append(l.held.pkts, h)
	}
	if l.held.len() > 0 {
		l.holdTimer = l.sched.AfterFunc(l.opts.HeldInterval, l.retryHeld)
	}
}

func (l *L2CAP) drainHeld(lk *lcb) {
	for _, p := range l.held.take(lk.handle) {
		if !lk.inUse {
			return
		}
		l.deliver(lk, p)
	}
	if l.held.len() == 0 && l.holdTimer != nil {
		l.holdTimer.Stop()
		l.holdTimer = nil
	}
}
