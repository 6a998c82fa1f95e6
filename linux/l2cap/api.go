package l2cap

import (
	"github.com/pkg/errors"
	"github.com/rigado/bthost"
	"github.com/rigado/bthost/linux/hci"
)

// linkFor returns the link to addr, creating it and asking the ACL manager
// to connect when there is none.
func (l *L2CAP) linkFor(addr bthost.BDAddr, t bthost.Transport) (*lcb, error) {
	if lk := l.findLCBByAddr(addr, t); lk != nil {
		if lk.state == LinkDisconnecting {
			return nil, errors.Wrapf(bthost.ErrBadState, "link to %v is disconnecting", addr)
		}
		return lk, nil
	}
	lk := l.allocateLCB(addr, t)
	if lk == nil {
		return nil, errors.Wrap(bthost.ErrNoResources, "lcb")
	}
	if err := l.links.Connect(addr, t); err != nil {
		l.releaseLCB(lk)
		return nil, errors.Wrapf(err, "connect %v", addr)
	}
	lk.state = LinkConnecting
	d := linkConnectTimeout
	if t == bthost.TransportLE {
		d = leLinkConnectTimeout
	}
	l.startTimer(&lk.timer, d, func() { l.linkTimeout(lk) })
	return lk, nil
}

// ConnectReq opens a BR/EDR channel to addr on psm. The outcome is
// reported through the registration's ConnectCfm.
func (l *L2CAP) ConnectReq(psm uint16, addr bthost.BDAddr) (uint16, error) {
	reg := l.regs[psm]
	if reg == nil {
		return 0, errors.Wrapf(bthost.ErrPSMNotRegistered, "psm 0x%04X", psm)
	}
	lk, err := l.linkFor(addr, bthost.TransportBREDR)
	if err != nil {
		return 0, err
	}
	c := l.allocateCCB(lk, 0)
	if c == nil {
		return 0, errors.Wrap(bthost.ErrNoResources, "ccb")
	}
	c.reg = reg
	c.psm = psm
	c.originator = true
	lk.log.Debugf("cid 0x%04X: connect to psm 0x%04X", c.localCID, psm)

	if lk.state == LinkConnected && !lk.w4Info && !lk.roleSwitching {
		stopTimer(&lk.timer)
		l.checkSecurity(c)
	} else {
		c.pendingConnect = true
	}
	return c.localCID, nil
}

// ConnectRsp answers a ConnectInd. id and addr must match the indication.
func (l *L2CAP) ConnectRsp(addr bthost.BDAddr, id uint8, lcid, result, status uint16) error {
	c := l.findCCB(lcid)
	if c == nil {
		return errors.Wrapf(bthost.ErrUnknownChannel, "cid 0x%04X", lcid)
	}
	if c.lk.addr != addr || c.remoteID != id {
		return errors.Wrapf(bthost.ErrInvalidParams, "cid 0x%04X: addr %v id %d", lcid, addr, id)
	}
	if c.le || c.state != ChanW4L2CAConnectRsp {
		return errors.Wrapf(bthost.ErrBadState, "cid 0x%04X in state %v", lcid, c.state)
	}
	lk := c.lk
	l.sendSignal(lk, id, &ConnectionResponse{
		DestinationCID: c.localCID,
		SourceCID:      c.remoteCID,
		Result:         result,
		Status:         status,
	})
	switch result {
	case ConnOK:
		c.state = ChanConfig
		stopTimer(&c.timer)
		l.autoConfig(c)
	case ConnPending:
		l.startTimer(&c.timer, connectTimeout, func() { l.connectTimeout(c) })
	default:
		l.releaseCCB(c)
	}
	return nil
}

// ConfigReq sends cfg as our configuration. On an open channel it starts
// a reconfiguration.
func (l *L2CAP) ConfigReq(lcid uint16, cfg *ConfigInfo) error {
	c := l.findCCB(lcid)
	if c == nil || c.le {
		return errors.Wrapf(bthost.ErrUnknownChannel, "cid 0x%04X", lcid)
	}
	if cfg.MTUPresent && cfg.MTU < MinMTU {
		return errors.Wrapf(bthost.ErrInvalidParams, "mtu %d", cfg.MTU)
	}
	if cfg.mode() != ModeBasic {
		return errors.Wrapf(bthost.ErrInvalidParams, "mode %d", cfg.mode())
	}
	switch c.state {
	case ChanOpen:
		c.state = ChanConfig
		c.peerCfgDone = true
	case ChanConfig:
	default:
		return errors.Wrapf(bthost.ErrBadState, "cid 0x%04X in state %v", lcid, c.state)
	}
	c.ourCfgRetried = false
	l.sendConfigReq(c, cfg)
	return nil
}

// ConfigRsp answers a ConfigInd of a registration with ManualConfigRsp.
func (l *L2CAP) ConfigRsp(lcid uint16, cfg *ConfigInfo) error {
	c := l.findCCB(lcid)
	if c == nil || c.le {
		return errors.Wrapf(bthost.ErrUnknownChannel, "cid 0x%04X", lcid)
	}
	if c.state != ChanConfig {
		return errors.Wrapf(bthost.ErrBadState, "cid 0x%04X in state %v", lcid, c.state)
	}
	var opts []byte
	if cfg.Result != CfgOK {
		opts = BuildConfigOptions(cfg)
	}
	l.sendConfigRsp(c, cfg.Result, cfg.Flags, opts)
	if cfg.Result == CfgOK {
		l.configDone(c)
	} else {
		c.peerCfgDone = false
	}
	return nil
}

// GetConfig returns the local and peer configuration of lcid.
func (l *L2CAP) GetConfig(lcid uint16) (local, peer ConfigInfo, err error) {
	c := l.findCCB(lcid)
	if c == nil {
		return local, peer, errors.Wrapf(bthost.ErrUnknownChannel, "cid 0x%04X", lcid)
	}
	if c.le {
		local = ConfigInfo{MTUPresent: true, MTU: c.localMTU}
		peer = ConfigInfo{MTUPresent: true, MTU: c.peerMTU}
		return local, peer, nil
	}
	return c.ourCfg, c.peerCfg, nil
}

// DisconnectReq closes lcid. Open channels are confirmed through
// DisconnectCfm; channels still being set up are dropped silently.
func (l *L2CAP) DisconnectReq(lcid uint16) error {
	c := l.findCCB(lcid)
	if c == nil {
		return errors.Wrapf(bthost.ErrUnknownChannel, "cid 0x%04X", lcid)
	}
	switch c.state {
	case ChanConfig, ChanOpen:
		l.disconnectChannel(c, true)
	case ChanW4L2CAPDisconnectRsp, ChanW4L2CADisconnectRsp:
		return errors.Wrapf(bthost.ErrBadState, "cid 0x%04X already disconnecting", lcid)
	default:
		c.lk.log.Debugf("cid 0x%04X: dropped in state %v", lcid, c.state)
		l.releaseCCB(c)
	}
	return nil
}

// DisconnectRsp acknowledges a DisconnectInd that asked for it.
func (l *L2CAP) DisconnectRsp(lcid uint16) error {
	c := l.findCCB(lcid)
	if c == nil {
		return errors.Wrapf(bthost.ErrUnknownChannel, "cid 0x%04X", lcid)
	}
	if c.state != ChanW4L2CADisconnectRsp {
		return errors.Wrapf(bthost.ErrBadState, "cid 0x%04X in state %v", lcid, c.state)
	}
	l.sendSignal(c.lk, c.remoteID, &DisconnectResponse{DestinationCID: c.localCID, SourceCID: c.remoteCID})
	l.releaseCCB(c)
	return nil
}

// DataWrite queues one SDU on lcid.
func (l *L2CAP) DataWrite(lcid uint16, p []byte) WriteResult {
	c := l.findCCB(lcid)
	if c == nil || c.state != ChanOpen {
		l.log.Debugf("write on closed cid 0x%04X", lcid)
		return WriteFailed
	}
	if c.congested {
		return WriteFailed
	}
	if c.le {
		if r := l.cocWrite(c, p); r != WriteSuccess {
			return r
		}
	} else {
		if len(p) > int(c.peerCfg.MTU) {
			c.lk.log.Warnf("cid 0x%04X: %d bytes exceeds peer mtu %d", lcid, len(p), c.peerCfg.MTU)
			return WriteFailed
		}
		c.txq = append(c.txq, buildPDU(c.remoteCID, p))
	}
	lk := c.lk
	l.checkCongestion(c)
	l.checkSendPackets(lk)
	if c.inUse && c.congested {
		return WriteCongested
	}
	return WriteSuccess
}

// SetChannelPriority moves lcid to another service band.
func (l *L2CAP) SetChannelPriority(lcid uint16, p Priority) error {
	c := l.findCCB(lcid)
	if c == nil {
		return errors.Wrapf(bthost.ErrUnknownChannel, "cid 0x%04X", lcid)
	}
	if p >= numPriorities {
		return errors.Wrapf(bthost.ErrInvalidParams, "priority %d", p)
	}
	if c.priority == p {
		return nil
	}
	lk := c.lk
	lk.dequeue(c)
	c.priority = p
	lk.enqueue(c)
	l.adjustChannelAllocation(lk)
	return nil
}

// SetChannelDataRate sets the traffic weights of lcid.
func (l *L2CAP) SetChannelDataRate(lcid uint16, tx, rx DataRate) error {
	c := l.findCCB(lcid)
	if c == nil {
		return errors.Wrapf(bthost.ErrUnknownChannel, "cid 0x%04X", lcid)
	}
	if tx > DataRateHigh || rx > DataRateHigh {
		return errors.Wrapf(bthost.ErrInvalidParams, "rates %d/%d", tx, rx)
	}
	c.txRate, c.rxRate = tx, rx
	l.adjustChannelAllocation(c.lk)
	return nil
}

// SetLinkPriority marks the BR/EDR link to addr as high priority.
func (l *L2CAP) SetLinkPriority(addr bthost.BDAddr, high bool) error {
	lk := l.findLCBByAddr(addr, bthost.TransportBREDR)
	if lk == nil {
		return errors.Wrapf(bthost.ErrNotConnected, "%v", addr)
	}
	if lk.highPriority == high {
		return nil
	}
	lk.highPriority = high
	lk.log.Debugf("link priority high %v", high)
	l.adjustAllocation(l.poolFor(lk.transport))
	return nil
}

// SetIdleTimeout sets the idle timeout, in seconds, of the link under
// lcid.
func (l *L2CAP) SetIdleTimeout(lcid uint16, timeout uint16) error {
	c := l.findCCB(lcid)
	if c == nil {
		return errors.Wrapf(bthost.ErrUnknownChannel, "cid 0x%04X", lcid)
	}
	c.lk.idleTimeout = timeout
	return nil
}

// SetIdleTimeoutByAddr sets the idle timeout of the link to addr. The
// zero address sets the default for new links of t.
func (l *L2CAP) SetIdleTimeoutByAddr(addr bthost.BDAddr, timeout uint16, t bthost.Transport) error {
	if addr == (bthost.BDAddr{}) {
		l.idleTimeout[t] = timeout
		return nil
	}
	lk := l.findLCBByAddr(addr, t)
	if lk == nil {
		return errors.Wrapf(bthost.ErrNotConnected, "%v", addr)
	}
	lk.idleTimeout = timeout
	if lk.state == LinkConnected && !lk.hasDynamic() {
		l.noDynamicCCBs(lk)
	}
	return nil
}

// UpdateConnParams asks for new LE connection parameters: as master
// straight from the controller, as slave through the peer.
func (l *L2CAP) UpdateConnParams(addr bthost.BDAddr, p bthost.ConnParams) error {
	lk := l.findLCBByAddr(addr, bthost.TransportLE)
	if lk == nil || lk.state != LinkConnected {
		return errors.Wrapf(bthost.ErrNotConnected, "%v", addr)
	}
	if err := hci.ValidateConnParams(p); err != nil {
		return errors.Wrap(bthost.ErrInvalidParams, err.Error())
	}
	if lk.updatePending {
		return errors.Wrap(bthost.ErrBadState, "update in progress")
	}
	if lk.role == bthost.RoleMaster {
		return l.hciConnUpdate(lk, p)
	}
	lk.waiting = p
	lk.updatePending = true
	lk.updateID = lk.newID()
	l.startTimer(&lk.updateTimer, connParamUpdateTimeout, func() { l.connUpdateTimeout(lk) })
	l.sendSignal(lk, lk.updateID, &ConnectionParameterUpdateRequest{
		IntervalMin:       p.IntervalMin,
		IntervalMax:       p.IntervalMax,
		SlaveLatency:      p.Latency,
		TimeoutMultiplier: p.SupervisionTimeout,
	})
	return nil
}

// Ping sends an echo request on the BR/EDR link to addr. cb receives the
// response payload or the failure.
func (l *L2CAP) Ping(addr bthost.BDAddr, data []byte, cb EchoFunc) error {
	lk := l.findLCBByAddr(addr, bthost.TransportBREDR)
	if lk == nil || lk.state != LinkConnected {
		return errors.Wrapf(bthost.ErrNotConnected, "%v", addr)
	}
	if lk.echoCB != nil {
		return errors.Wrap(bthost.ErrBadState, "echo in progress")
	}
	lk.echoID = lk.newID()
	lk.echoCB = cb
	l.startTimer(&lk.echoTimer, echoTimeout, func() {
		lk.echoTimer = nil
		if f := lk.echoCB; f != nil {
			lk.echoCB = nil
			f(EchoTimeout, nil)
		}
	})
	l.sendSignal(lk, lk.echoID, &EchoRequest{Data: data})
	return nil
}

// SecurityComplete delivers the answer of a pending access request.
func (l *L2CAP) SecurityComplete(addr bthost.BDAddr, lcid uint16, ok bool) error {
	c := l.findCCB(lcid)
	if c == nil || c.lk.addr != addr {
		return errors.Wrapf(bthost.ErrUnknownChannel, "cid 0x%04X", lcid)
	}
	if c.state != ChanOrigW4SecComp && c.state != ChanTermW4SecComp {
		return errors.Wrapf(bthost.ErrBadState, "cid 0x%04X in state %v", lcid, c.state)
	}
	if ok {
		l.securityGranted(c)
	} else {
		l.securityDenied(c)
	}
	return nil
}
