package l2cap

import (
	"github.com/rigado/bthost"
)

// checkSecurity asks the security manager about c. Channels in the
// originator or terminator security states wait there on a pending answer.
func (l *L2CAP) checkSecurity(c *ccb) {
	lk := c.lk
	if c.originator {
		c.state = ChanOrigW4SecComp
	} else {
		c.state = ChanTermW4SecComp
	}
	switch l.sec.AccessRequest(lk.addr, c.psm, lk.transport, c.originator, c.localCID) {
	case bthost.SecurityGranted:
		l.securityGranted(c)
	case bthost.SecurityDenied:
		l.securityDenied(c)
	default:
		lk.log.Debugf("cid 0x%04X: security pending", c.localCID)
		if !c.originator && !c.le {
			l.sendSignal(lk, c.remoteID, &ConnectionResponse{
				DestinationCID: c.localCID,
				SourceCID:      c.remoteCID,
				Result:         ConnPending,
				Status:         ConnStatusAuthorizationPending,
			})
		}
	}
}

func (l *L2CAP) securityGranted(c *ccb) {
	lk := c.lk
	if c.le {
		l.leSecurityGranted(c)
		return
	}
	if c.originator {
		c.state = ChanW4L2CAPConnectRsp
		c.localID = lk.newID()
		l.startTimer(&c.timer, connectTimeout, func() { l.connectTimeout(c) })
		l.sendSignal(lk, c.localID, &ConnectionRequest{PSM: c.psm, SourceCID: c.localCID})
		return
	}

	c.state = ChanW4L2CAConnectRsp
	l.startTimer(&c.timer, connectTimeout, func() { l.connectTimeout(c) })
	if f := c.cb().ConnectInd; f != nil {
		f(lk.addr, c.localCID, c.psm, c.remoteID)
		return
	}
	l.ConnectRsp(lk.addr, c.remoteID, c.localCID, ConnOK, ConnStatusNone)
}

func (l *L2CAP) securityDenied(c *ccb) {
	lk := c.lk
	lk.log.Infof("cid 0x%04X: security denied for psm 0x%04X", c.localCID, c.psm)
	if c.le {
		l.leSecurityDenied(c)
		return
	}
	if c.originator {
		l.failChannel(c, ConnSecurityBlock)
		return
	}
	l.sendSignal(lk, c.remoteID, &ConnectionResponse{
		DestinationCID: c.localCID,
		SourceCID:      c.remoteCID,
		Result:         ConnSecurityBlock,
	})
	l.releaseCCB(c)
}

// failChannel reports a failed open to the profile and frees c.
func (l *L2CAP) failChannel(c *ccb, result uint16) {
	if !c.inUse {
		return
	}
	if f := c.cb().ConnectCfm; f != nil && c.originator {
		f(c.localCID, result)
	}
	l.releaseCCB(c)
}

// lpDisconnectInd tells the profile the link under c went away.
func (l *L2CAP) lpDisconnectInd(c *ccb) {
	switch c.state {
	case ChanClosed, ChanOrigW4SecComp, ChanW4L2CAPConnectRsp:
		l.failChannel(c, ConnNoLink)
		return
	case ChanTermW4SecComp:
	case ChanW4L2CAPDisconnectRsp:
		if f := c.cb().DisconnectCfm; f != nil && c.apiDisc {
			f(c.localCID, DisconnectOK)
		}
	default:
		if f := c.cb().DisconnectInd; f != nil {
			f(c.localCID, false)
		}
	}
	l.releaseCCB(c)
}

func (l *L2CAP) connectTimeout(c *ccb) {
	c.timer = nil
	c.lk.log.Infof("cid 0x%04X: connect timeout in state %v", c.localCID, c.state)
	switch c.state {
	case ChanW4L2CAPConnectRsp:
		l.failChannel(c, ConnTimeout)
	case ChanW4L2CAConnectRsp:
		if !c.le {
			l.sendSignal(c.lk, c.remoteID, &ConnectionResponse{
				DestinationCID: c.localCID,
				SourceCID:      c.remoteCID,
				Result:         ConnNoResources,
			})
		}
		l.releaseCCB(c)
	}
}

func (l *L2CAP) configTimeout(c *ccb) {
	c.timer = nil
	c.lk.log.Infof("cid 0x%04X: configuration timeout", c.localCID)
	if f := c.cb().DisconnectInd; f != nil {
		f(c.localCID, false)
	}
	l.disconnectChannel(c, false)
}

func (l *L2CAP) disconnectTimeout(c *ccb) {
	c.timer = nil
	switch c.state {
	case ChanW4L2CAPDisconnectRsp:
		if f := c.cb().DisconnectCfm; f != nil && c.apiDisc {
			f(c.localCID, DisconnectTimeout)
		}
	case ChanW4L2CADisconnectRsp:
		l.sendSignal(c.lk, c.remoteID, &DisconnectResponse{DestinationCID: c.localCID, SourceCID: c.remoteCID})
	}
	l.releaseCCB(c)
}

// disconnectChannel sends a disconnection request for c. api marks a
// profile initiated disconnect, confirmed through DisconnectCfm.
func (l *L2CAP) disconnectChannel(c *ccb, api bool) {
	lk := c.lk
	if c.remoteCID == 0 || lk.state != LinkConnected {
		l.releaseCCB(c)
		return
	}
	c.apiDisc = api
	c.state = ChanW4L2CAPDisconnectRsp
	c.localID = lk.newID()
	c.txq = nil
	l.startTimer(&c.timer, disconnectTimeout, func() { l.disconnectTimeout(c) })
	l.sendSignal(lk, c.localID, &DisconnectRequest{DestinationCID: c.remoteCID, SourceCID: c.localCID})
}

// sendConfigReq sends cfg as our configuration request and records it.
func (l *L2CAP) sendConfigReq(c *ccb, cfg *ConfigInfo) {
	lk := c.lk
	c.ourCfg.merge(cfg)
	c.pendingCfg = *cfg
	c.ourCfgSent = true
	c.ourCfgDone = false
	c.localID = lk.newID()
	l.startTimer(&c.timer, configTimeout, func() { l.configTimeout(c) })
	l.sendSignal(lk, c.localID, &ConfigurationRequest{
		DestinationCID: c.remoteCID,
		Options:        BuildConfigOptions(cfg),
	})
}

// autoConfig sends the registration's configuration once the channel is
// connected.
func (l *L2CAP) autoConfig(c *ccb) {
	cfg := ConfigInfo{}
	if c.reg != nil {
		cfg = c.reg.Config
	}
	if !cfg.MTUPresent {
		cfg.MTUPresent, cfg.MTU = true, l.opts.LocalMTU
	}
	l.sendConfigReq(c, &cfg)
}

// configDone opens c once both directions are configured.
func (l *L2CAP) configDone(c *ccb) {
	if c.state != ChanConfig || !c.ourCfgDone || !c.peerCfgDone {
		return
	}
	if c.ourCfg.mode() != c.peerCfg.mode() {
		c.lk.log.Warnf("cid 0x%04X: mode mismatch, ours %d peer %d", c.localCID, c.ourCfg.mode(), c.peerCfg.mode())
		if f := c.cb().DisconnectInd; f != nil {
			f(c.localCID, false)
		}
		l.disconnectChannel(c, false)
		return
	}
	stopTimer(&c.timer)
	c.state = ChanOpen
	c.lk.log.Infof("cid 0x%04X open, psm 0x%04X, peer mtu %d", c.localCID, c.psm, c.peerCfg.MTU)
	l.adjustChannelAllocation(c.lk)
	l.checkSendPackets(c.lk)
}
