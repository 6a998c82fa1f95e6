package l2cap

import (
	"encoding/binary"
)

// processSig walks the commands of a BR/EDR signalling PDU, left to right.
func (l *L2CAP) processSig(lk *lcb, b []byte) {
	cmds, err := splitCommands(b)
	if err != nil {
		lk.log.Warnf("signalling: %v", err)
	}
	for _, c := range cmds {
		if !lk.inUse {
			return
		}
		if c.id() == 0 {
			lk.log.Debugf("signalling: dropping code 0x%02X with id 0", c.code())
			continue
		}
		l.handleSig(lk, c)
	}
}

func (l *L2CAP) handleSig(lk *lcb, c sigCmd) {
	id, d := c.id(), c.data()
	lk.log.Debugf("sig rx code 0x%02X id %d [% X]", c.code(), id, d)

	switch c.code() {
	case SignalCommandReject:
		var s CommandReject
		if s.Unmarshal(d) == nil {
			l.handleReject(lk, id, &s)
		}
	case SignalConnectionRequest:
		var s ConnectionRequest
		if s.Unmarshal(d) == nil {
			l.handleConnReq(lk, id, &s)
		}
	case SignalConnectionResponse:
		var s ConnectionResponse
		if s.Unmarshal(d) == nil {
			l.handleConnRsp(lk, id, &s)
		}
	case SignalConfigurationRequest:
		var s ConfigurationRequest
		if s.Unmarshal(d) == nil {
			l.handleConfigReq(lk, id, &s)
		}
	case SignalConfigurationResponse:
		var s ConfigurationResponse
		if s.Unmarshal(d) == nil {
			l.handleConfigRsp(lk, id, &s)
		}
	case SignalDisconnectRequest:
		var s DisconnectRequest
		if s.Unmarshal(d) == nil {
			l.handleDiscReq(lk, id, &s)
		}
	case SignalDisconnectResponse:
		var s DisconnectResponse
		if s.Unmarshal(d) == nil {
			l.handleDiscRsp(lk, id, &s)
		}
	case SignalEchoRequest:
		l.handleEchoReq(lk, id, d)
	case SignalEchoResponse:
		l.handleEchoRsp(lk, id, d)
	case SignalInformationRequest:
		var s InformationRequest
		if s.Unmarshal(d) == nil {
			l.handleInfoReq(lk, id, &s)
		}
	case SignalInformationResponse:
		var s InformationResponse
		if s.Unmarshal(d) == nil {
			l.handleInfoRsp(lk, id, &s)
		}
	default:
		lk.log.Debugf("signalling: rejecting code 0x%02X", c.code())
		l.sendReject(lk, id, RejectNotUnderstood, nil)
	}
}

func (l *L2CAP) handleReject(lk *lcb, id uint8, s *CommandReject) {
	lk.log.Debugf("command reject id %d, reason 0x%04X", id, s.Reason)
	if lk.w4Info && id == lk.infoID {
		l.infoDone(lk)
		return
	}
	if lk.echoCB != nil && id == lk.echoID {
		cb := lk.echoCB
		lk.echoCB = nil
		stopTimer(&lk.echoTimer)
		cb(EchoRejected, nil)
		return
	}
	if lk.updatePending && id == lk.updateID {
		l.connUpdateDone(lk, hciUnsupportedRemoteFeature)
		return
	}
	c := lk.findCCBByLocalID(id)
	if c == nil {
		return
	}
	switch c.state {
	case ChanW4L2CAPConnectRsp:
		l.failChannel(c, ConnRejected)
	case ChanConfig:
		cfg := c.pendingCfg
		cfg.Result = CfgRejected
		if f := c.cb().ConfigCfm; f != nil {
			f(c.localCID, &cfg)
		}
		l.disconnectChannel(c, false)
	case ChanW4L2CAPDisconnectRsp:
		l.lpDisconnectInd(c)
	}
}

func (l *L2CAP) handleConnReq(lk *lcb, id uint8, s *ConnectionRequest) {
	reject := func(result uint16) {
		l.sendSignal(lk, id, &ConnectionResponse{SourceCID: s.SourceCID, Result: result})
	}
	reg := l.regs[s.PSM]
	if reg == nil {
		lk.log.Infof("connect request for unregistered psm 0x%04X", s.PSM)
		reject(ConnNoPSM)
		return
	}
	c := l.allocateCCB(lk, 0)
	if c == nil {
		lk.log.Warn("connect request: no free ccb")
		reject(ConnNoResources)
		return
	}
	c.reg = reg
	c.psm = s.PSM
	c.remoteCID = s.SourceCID
	c.remoteID = id
	stopTimer(&lk.timer)
	l.checkSecurity(c)
}

func (l *L2CAP) handleConnRsp(lk *lcb, id uint8, s *ConnectionResponse) {
	c := lk.findCCBByLocalCID(s.SourceCID)
	if c == nil || c.fixed || c.localID != id || c.state != ChanW4L2CAPConnectRsp {
		lk.log.Debugf("unexpected connect response id %d scid 0x%04X", id, s.SourceCID)
		return
	}
	switch s.Result {
	case ConnOK:
		c.remoteCID = s.DestinationCID
		c.state = ChanConfig
		stopTimer(&c.timer)
		if f := c.cb().ConnectCfm; f != nil {
			f(c.localCID, ConnOK)
		}
		if c.inUse && c.state == ChanConfig {
			l.autoConfig(c)
		}
	case ConnPending:
		lk.log.Debugf("cid 0x%04X: connect pending, status %d", c.localCID, s.Status)
		l.startTimer(&c.timer, connectTimeout, func() { l.connectTimeout(c) })
	default:
		l.failChannel(c, s.Result)
	}
}

func (l *L2CAP) handleDiscReq(lk *lcb, id uint8, s *DisconnectRequest) {
	c := lk.findCCBByLocalCID(s.DestinationCID)
	if c == nil || c.fixed || c.remoteCID != s.SourceCID {
		lk.log.Debugf("disconnect request for unknown cid 0x%04X", s.DestinationCID)
		l.sendSignal(lk, id, &DisconnectResponse{DestinationCID: s.DestinationCID, SourceCID: s.SourceCID})
		return
	}
	c.remoteID = id
	if c.reg != nil && c.reg.AckDisconnect {
		c.state = ChanW4L2CADisconnectRsp
		l.startTimer(&c.timer, disconnectTimeout, func() { l.disconnectTimeout(c) })
		if f := c.cb().DisconnectInd; f != nil {
			f(c.localCID, true)
		}
		return
	}
	l.sendSignal(lk, id, &DisconnectResponse{DestinationCID: c.localCID, SourceCID: c.remoteCID})
	if f := c.cb().DisconnectInd; f != nil {
		f(c.localCID, false)
	}
	l.releaseCCB(c)
}

func (l *L2CAP) handleDiscRsp(lk *lcb, id uint8, s *DisconnectResponse) {
	c := lk.findCCBByLocalCID(s.SourceCID)
	if c == nil || c.fixed || c.localID != id || c.state != ChanW4L2CAPDisconnectRsp {
		lk.log.Debugf("unexpected disconnect response id %d scid 0x%04X", id, s.SourceCID)
		return
	}
	if f := c.cb().DisconnectCfm; f != nil && c.apiDisc {
		f(c.localCID, DisconnectOK)
	}
	l.releaseCCB(c)
}

func (l *L2CAP) handleEchoReq(lk *lcb, id uint8, d []byte) {
	if id == lk.lastEchoID {
		lk.log.Debugf("dropping duplicate echo request id %d", id)
		return
	}
	lk.lastEchoID = id
	if hdrLen+cmdHdrLen+len(d) > sigMTU {
		d = nil
	}
	l.sendSignal(lk, id, &EchoResponse{Data: d})
}

func (l *L2CAP) handleEchoRsp(lk *lcb, id uint8, d []byte) {
	if lk.echoCB == nil || id != lk.echoID {
		return
	}
	cb := lk.echoCB
	lk.echoCB = nil
	stopTimer(&lk.echoTimer)
	cb(EchoOK, append([]byte(nil), d...))
}

func (l *L2CAP) handleInfoReq(lk *lcb, id uint8, s *InformationRequest) {
	rsp := &InformationResponse{InfoType: s.InfoType, Result: InfoSuccess}
	switch s.InfoType {
	case InfoExtendedFeatures:
		rsp.Data = make([]byte, 4)
		binary.LittleEndian.PutUint32(rsp.Data, localExtFeatures)
	case InfoFixedChannels:
		rsp.Data = make([]byte, 8)
		binary.LittleEndian.PutUint64(rsp.Data, l.localFixedChannels(lk.transport))
	default:
		rsp.Result = InfoNotSupported
	}
	l.sendSignal(lk, id, rsp)
}

func (l *L2CAP) handleInfoRsp(lk *lcb, id uint8, s *InformationResponse) {
	if !lk.w4Info || id != lk.infoID {
		lk.log.Debugf("unexpected info response id %d", id)
		return
	}
	switch {
	case s.InfoType == InfoExtendedFeatures && s.Result == InfoSuccess && len(s.Data) >= 4:
		lk.peerExtFeatures = binary.LittleEndian.Uint32(s.Data)
		if lk.peerExtFeatures&ExtFeatFixedChannel != 0 {
			lk.infoID = lk.newID()
			l.sendSignal(lk, lk.infoID, &InformationRequest{InfoType: InfoFixedChannels})
			l.startTimer(&lk.infoTimer, infoTimeout, func() { l.infoTimeout(lk) })
			return
		}
	case s.InfoType == InfoFixedChannels && s.Result == InfoSuccess && len(s.Data) >= 8:
		lk.peerFixedChannels = binary.LittleEndian.Uint64(s.Data)
	}
	l.infoDone(lk)
}
