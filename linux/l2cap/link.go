package l2cap

import (
	"encoding/binary"
	"time"

	"github.com/rigado/bthost"
	"github.com/rigado/bthost/linux/hci/cmd"
)

func secs(s uint16) time.Duration { return time.Duration(s) * time.Second }

func disconnectCmd(handle uint16, reason uint8) *cmd.Disconnect {
	return &cmd.Disconnect{ConnectionHandle: handle, Reason: reason}
}

// ConnectRequest is called on an incoming BR/EDR connection request and
// reports whether it should be accepted.
func (l *L2CAP) ConnectRequest(addr bthost.BDAddr) bool {
	lk := l.findLCBByAddr(addr, bthost.TransportBREDR)
	if lk == nil {
		lk = l.allocateLCB(addr, bthost.TransportBREDR)
		if lk == nil {
			l.log.Warnf("no lcb for incoming connection from %v", addr)
			return false
		}
	} else if lk.state != LinkIdle && lk.state != LinkConnecting {
		lk.log.Warnf("connection request in state %v", lk.state)
		return false
	}
	lk.state = LinkConnecting
	l.startTimer(&lk.timer, linkConnectTimeout, func() { l.linkTimeout(lk) })
	return true
}

// LinkUp is called when an ACL link completed.
func (l *L2CAP) LinkUp(info bthost.LinkInfo) {
	lk := l.findLCBByAddr(info.Addr, info.Transport)
	if lk == nil {
		lk = l.allocateLCB(info.Addr, info.Transport)
		if lk == nil {
			l.log.Errorf("no lcb for link 0x%04X to %v", info.Handle, info.Addr)
			l.ctrl.SendCommand(disconnectCmd(info.Handle, hciNoResources), nil)
			return
		}
	}

	lk.handle = info.Handle
	lk.role = info.Role
	lk.params = info.Params
	lk.state = LinkConnected
	lk.log = lk.log.ChildLogger(map[string]interface{}{"handle": info.Handle})
	stopTimer(&lk.timer)
	lk.log.Infof("link up, %v, role %v", info.Transport, info.Role)

	if lk.transport == bthost.TransportLE {
		l.connectFixed(lk, CIDATT, CIDSMP)
		l.resumePending(lk)
	} else {
		lk.w4Info = true
		lk.infoID = lk.newID()
		l.sendSignal(lk, lk.infoID, &InformationRequest{InfoType: InfoExtendedFeatures})
		l.startTimer(&lk.infoTimer, infoTimeout, func() { l.infoTimeout(lk) })
	}

	if !lk.hasDynamic() && !lk.hasPending() {
		l.startTimer(&lk.timer, linkStartupTimeout, func() { l.linkTimeout(lk) })
	}
	l.drainHeld(lk)
}

// LinkFailed is called when an outgoing ACL connection could not be made.
func (l *L2CAP) LinkFailed(addr bthost.BDAddr, t bthost.Transport, status uint8) {
	lk := l.findLCBByAddr(addr, t)
	if lk == nil {
		return
	}
	lk.log.Infof("link failed, status 0x%02X", status)
	for _, c := range append([]*ccb(nil), lk.ccbs...) {
		l.failChannel(c, ConnNoLink)
	}
	l.processFixedDisc(lk, status)
	l.releaseLCB(lk)
}

// LinkDown is called on a disconnection complete and reports whether the
// handle belonged to an L2CAP link.
func (l *L2CAP) LinkDown(handle uint16, reason uint8) bool {
	lk := l.findLCBByHandle(handle)
	if lk == nil {
		return false
	}
	lk.log.Infof("link down, reason 0x%02X", reason)
	l.held.drop(handle)
	l.closeLink(lk, reason)
	return true
}

// DeviceDown releases every link after the controller failed. Open
// channels see a disconnect indication and held packets are dropped.
func (l *L2CAP) DeviceDown(reason uint8) {
	for _, lk := range l.lcbs {
		if lk.inUse {
			l.closeLink(lk, reason)
		}
	}
	stopTimer(&l.holdTimer)
	l.held = newHeldQueue(l.opts.HeldLimit)
}

// closeLink tears down a link whose ACL is already gone. The link is
// marked as releasing first so closing its last channel neither applies
// the idle policy nor sends an HCI Disconnect.
func (l *L2CAP) closeLink(lk *lcb, reason uint8) {
	lk.state = LinkDisconnecting
	lk.releasing = true
	stopTimer(&lk.timer)
	for _, c := range append([]*ccb(nil), lk.ccbs...) {
		l.lpDisconnectInd(c)
	}
	l.processFixedDisc(lk, reason)
	l.releaseLCB(lk)
}

// RoleSwitching marks a link whose role switch is in progress. Channel
// setup waits for RoleChanged.
func (l *L2CAP) RoleSwitching(addr bthost.BDAddr) {
	if lk := l.findLCBByAddr(addr, bthost.TransportBREDR); lk != nil {
		lk.roleSwitching = true
	}
}

// RoleChanged is called when a role switch completed or failed.
func (l *L2CAP) RoleChanged(addr bthost.BDAddr, role bthost.Role, status uint8) {
	lk := l.findLCBByAddr(addr, bthost.TransportBREDR)
	if lk == nil {
		return
	}
	if status == 0 {
		lk.role = role
	}
	lk.roleSwitching = false
	lk.log.Debugf("role %v, status 0x%02X", lk.role, status)
	if lk.state == LinkConnected && !lk.w4Info {
		l.resumePending(lk)
	}
}

// RemoteFeatures is called once the remote feature pages of a link were
// read. Channels held by a pending security check are re-submitted.
func (l *L2CAP) RemoteFeatures(addr bthost.BDAddr, t bthost.Transport, f bthost.FeaturePages) {
	lk := l.findLCBByAddr(addr, t)
	if lk == nil {
		return
	}
	lk.log.Debugf("remote features, %d pages", f.Valid)
	for _, c := range append([]*ccb(nil), lk.ccbs...) {
		if c.state == ChanOrigW4SecComp || c.state == ChanTermW4SecComp {
			l.checkSecurity(c)
		}
	}
}

func (l *L2CAP) linkTimeout(lk *lcb) {
	lk.timer = nil
	lk.log.Debugf("link timeout in state %v", lk.state)

	switch lk.state {
	case LinkConnecting, LinkDisconnecting:
		result := uint16(ConnNoLink)
		if lk.state == LinkConnecting {
			result = ConnTimeout
		}
		for _, c := range append([]*ccb(nil), lk.ccbs...) {
			if lk.state == LinkConnecting {
				l.failChannel(c, result)
			} else {
				l.lpDisconnectInd(c)
			}
		}
		l.releaseLCB(lk)

	case LinkConnected:
		if lk.hasDynamic() {
			l.checkSendPackets(lk)
			return
		}
		if b, ok := l.sec.(bthost.Bonder); ok && b.Bonding(lk.addr) {
			return
		}
		if l.disconnectLink(lk, hciReasonRemoteUser) {
			l.processFixedDisc(lk, hciReasonRemoteUser)
			lk.state = LinkDisconnecting
			l.startTimer(&lk.timer, linkDisconnectTimeout, func() { l.linkTimeout(lk) })
		} else {
			l.startTimer(&lk.timer, idleRetryTimeout, func() { l.linkTimeout(lk) })
		}
	}
}

func (l *L2CAP) infoTimeout(lk *lcb) {
	lk.infoTimer = nil
	if !lk.w4Info {
		return
	}
	lk.log.Debug("info request timed out, assuming no extended features")
	l.infoDone(lk)
}

// infoDone ends the information exchange of a BR/EDR link.
func (l *L2CAP) infoDone(lk *lcb) {
	lk.w4Info = false
	stopTimer(&lk.infoTimer)
	l.processFixedChnlResp(lk)
	l.resumePending(lk)
}

func (lk *lcb) hasPending() bool {
	for _, c := range lk.ccbs {
		if c.pendingConnect {
			return true
		}
	}
	return false
}

// resumePending starts the channels that waited for the link.
func (l *L2CAP) resumePending(lk *lcb) {
	if lk.roleSwitching {
		return
	}
	for _, c := range append([]*ccb(nil), lk.ccbs...) {
		if !c.inUse || !c.pendingConnect {
			continue
		}
		c.pendingConnect = false
		if c.le {
			l.sendLEConnReq(c)
		} else {
			c.state = ChanOrigW4SecComp
			l.checkSecurity(c)
		}
	}
}

// HandleACL receives one recombined L2CAP PDU.
func (l *L2CAP) HandleACL(handle uint16, p []byte) {
	lk := l.findLCBByHandle(handle)
	if lk == nil {
		l.holdPacket(handle, p)
		return
	}
	l.deliver(lk, p)
}

func (l *L2CAP) deliver(lk *lcb, p []byte) {
	if len(p) < hdrLen {
		lk.log.Warnf("short pdu % X", p)
		return
	}
	n := int(binary.LittleEndian.Uint16(p))
	cid := binary.LittleEndian.Uint16(p[2:])
	if n != len(p)-hdrLen {
		lk.log.Warnf("pdu length %d, have %d, cid 0x%04X", n, len(p)-hdrLen, cid)
		return
	}
	payload := p[hdrLen:]

	switch {
	case cid == CIDSignalling && lk.transport == bthost.TransportBREDR:
		l.processSig(lk, payload)
	case cid == CIDLESignalling && lk.transport == bthost.TransportLE:
		l.processLESig(lk, payload)
	case cid >= firstFixedCID && cid <= lastFixedCID:
		l.fixedDataInd(lk, cid, payload)
	case cid >= FirstDynamicCID:
		c := lk.findCCBByLocalCID(cid)
		if c == nil {
			lk.log.Debugf("data for unknown cid 0x%04X", cid)
			return
		}
		if c.le {
			l.cocReceive(c, payload)
			return
		}
		if c.state != ChanOpen {
			lk.log.Debugf("data on cid 0x%04X in state %v", cid, c.state)
			return
		}
		if len(payload) > int(c.ourCfg.MTU) {
			lk.log.Warnf("cid 0x%04X: %d bytes exceeds mtu %d", cid, len(payload), c.ourCfg.MTU)
			return
		}
		if f := c.cb().DataInd; f != nil {
			f(c.localCID, payload)
		}
	default:
		lk.log.Debugf("dropping pdu for cid 0x%04X", cid)
	}
}
