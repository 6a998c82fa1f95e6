package l2cap

import (
	"github.com/rigado/bthost"
)

// fixedTransport is the transport a fixed channel lives on.
func fixedTransport(cid uint16) bthost.Transport {
	if cid == CIDATT || cid == CIDSMP {
		return bthost.TransportLE
	}
	return bthost.TransportBREDR
}

// connectFixed opens the registered fixed channels among cids on lk and
// reports them connected.
func (l *L2CAP) connectFixed(lk *lcb, cids ...uint16) {
	for _, cid := range cids {
		cb := l.fixed[cid]
		if cb == nil || lk.fixed[cid] != nil {
			continue
		}
		if l.allocateCCB(lk, cid) == nil {
			lk.log.Warnf("no ccb for fixed channel 0x%04X", cid)
			continue
		}
		lk.log.Debugf("fixed channel 0x%04X connected", cid)
		if cb.Connected != nil {
			cb.Connected(cid, lk.addr, true, 0, lk.transport)
		}
	}
}

// processFixedChnlResp connects the BR/EDR fixed channels the peer
// announced once the information exchange ended.
func (l *L2CAP) processFixedChnlResp(lk *lcb) {
	if lk.transport != bthost.TransportBREDR {
		return
	}
	var cids []uint16
	for cid := uint16(firstFixedCID); cid <= lastFixedCID; cid++ {
		if fixedTransport(cid) != bthost.TransportBREDR {
			continue
		}
		if lk.peerFixedChannels&(1<<cid) != 0 {
			cids = append(cids, cid)
		}
	}
	l.connectFixed(lk, cids...)
}

// processFixedDisc drops the fixed channels of lk and reports them
// disconnected with reason.
func (l *L2CAP) processFixedDisc(lk *lcb, reason uint8) {
	for cid, c := range lk.fixed {
		if c == nil {
			continue
		}
		l.releaseCCB(c)
		if cb := l.fixed[uint16(cid)]; cb != nil && cb.Connected != nil {
			cb.Connected(uint16(cid), lk.addr, false, reason, lk.transport)
		}
	}
}

func (l *L2CAP) fixedDataInd(lk *lcb, cid uint16, p []byte) {
	c := lk.fixed[cid]
	cb := l.fixed[cid]
	if c == nil || cb == nil || cb.DataInd == nil {
		lk.log.Debugf("dropping %d bytes on closed fixed channel 0x%04X", len(p), cid)
		return
	}
	cb.DataInd(cid, lk.addr, p)
}

// localFixedChannels is the fixed channel mask we announce on t.
func (l *L2CAP) localFixedChannels(t bthost.Transport) uint64 {
	var m uint64
	if t == bthost.TransportBREDR {
		m |= 1 << CIDSignalling
	} else {
		m |= 1 << CIDLESignalling
	}
	for cid := range l.fixed {
		if fixedTransport(cid) == t {
			m |= 1 << cid
		}
	}
	return m
}

// FixedDataWrite queues p on fixed channel cid of the link to addr.
func (l *L2CAP) FixedDataWrite(cid uint16, addr bthost.BDAddr, p []byte) WriteResult {
	if l.fixed[cid] == nil {
		l.log.Warnf("write on unregistered fixed channel 0x%04X", cid)
		return WriteFailed
	}
	lk := l.findLCBByAddr(addr, fixedTransport(cid))
	if lk == nil || lk.state != LinkConnected {
		l.log.Debugf("fixed channel 0x%04X: no link to %v", cid, addr)
		return WriteFailed
	}
	c := lk.fixed[cid]
	if c == nil {
		l.connectFixed(lk, cid)
		if c = lk.fixed[cid]; c == nil {
			return WriteFailed
		}
	}
	if c.congested {
		return WriteFailed
	}
	c.txq = append(c.txq, buildPDU(cid, p))
	l.checkCongestion(c)
	l.checkSendPackets(lk)
	if c.inUse && c.congested {
		return WriteCongested
	}
	return WriteSuccess
}

// SetFixedIdleTimeout sets the idle timeout, in seconds, a connected
// fixed channel imposes on its link.
func (l *L2CAP) SetFixedIdleTimeout(cid uint16, addr bthost.BDAddr, timeout uint16) bool {
	lk := l.findLCBByAddr(addr, fixedTransport(cid))
	if lk == nil || int(cid) >= len(lk.fixed) || lk.fixed[cid] == nil {
		return false
	}
	lk.fixed[cid].idleTimeout = timeout
	if lk.state == LinkConnected && !lk.hasDynamic() {
		l.noDynamicCCBs(lk)
	}
	return true
}

// RemoveFixed closes fixed channel cid on the link to addr. The link idle
// policy applies once nothing else holds it.
func (l *L2CAP) RemoveFixed(cid uint16, addr bthost.BDAddr) bool {
	lk := l.findLCBByAddr(addr, fixedTransport(cid))
	if lk == nil || int(cid) >= len(lk.fixed) || lk.fixed[cid] == nil {
		return false
	}
	l.releaseCCB(lk.fixed[cid])
	if lk.state == LinkConnected && !lk.hasDynamic() {
		l.noDynamicCCBs(lk)
	}
	return true
}
