package l2cap

import (
	"github.com/rigado/bthost/parser"
)

func (l *L2CAP) handleConfigReq(lk *lcb, id uint8, s *ConfigurationRequest) {
	c := lk.findCCBByLocalCID(s.DestinationCID)
	if c == nil || c.fixed || c.le {
		lk.log.Debugf("config request for unknown cid 0x%04X", s.DestinationCID)
		l.sendReject(lk, id, RejectInvalidCID, cidPair(s.DestinationCID, 0))
		return
	}
	if c.state != ChanConfig && c.state != ChanOpen {
		lk.log.Debugf("cid 0x%04X: config request in state %v", c.localCID, c.state)
		return
	}
	c.remoteID = id

	c.cfgOpts = append(c.cfgOpts, s.Options...)
	if s.Flags&cfgContinuation != 0 {
		l.sendConfigRsp(c, CfgOK, cfgContinuation, nil)
		return
	}
	opts := c.cfgOpts
	c.cfgOpts = nil

	if c.state == ChanOpen {
		// reconfiguration
		c.state = ChanConfig
		c.peerCfgDone = false
		c.ourCfgDone = true
		l.startTimer(&c.timer, configTimeout, func() { l.configTimeout(c) })
	}

	var in ConfigInfo
	unknown, err := ParseConfigOptions(opts, &in)
	if err != nil {
		lk.log.Warnf("cid 0x%04X: config options: %v", c.localCID, err)
	}
	if len(unknown) > 0 {
		lk.log.Infof("cid 0x%04X: %d unknown config options", c.localCID, len(unknown))
		l.sendConfigRsp(c, CfgUnknownOptions, 0, parser.Append(nil, unknown...))
		return
	}

	off, disconnect := l.processPeerCfg(c, &in)
	if disconnect {
		if f := c.cb().DisconnectInd; f != nil {
			f(c.localCID, false)
		}
		l.disconnectChannel(c, false)
		return
	}
	if off != nil {
		l.sendConfigRsp(c, CfgUnacceptable, 0, BuildConfigOptions(off))
		return
	}

	c.peerCfg.merge(&in)
	if in.MTUPresent && c.peerCfg.mode() == ModeBasic && c.peerCfg.MTU > l.opts.LocalMTU {
		c.peerCfg.MTU = l.opts.LocalMTU
	}
	c.peerCfgDone = true
	in.Result = CfgOK
	if f := c.cb().ConfigInd; f != nil {
		f(c.localCID, &in)
	}
	if !c.inUse || c.state != ChanConfig {
		return
	}
	if c.reg == nil || !c.reg.ManualConfigRsp {
		l.sendConfigRsp(c, CfgOK, 0, nil)
	}
	l.configDone(c)
}

// processPeerCfg checks the options of a peer request. It returns the
// offending options, with the values we would accept, or asks for the
// channel to be disconnected.
func (l *L2CAP) processPeerCfg(c *ccb, in *ConfigInfo) (off *ConfigInfo, disconnect bool) {
	var bad ConfigInfo
	n := 0
	if in.MTUPresent && in.MTU < MinMTU {
		bad.MTUPresent, bad.MTU = true, MinMTU
		n++
	}
	if in.FlushTimeoutPresent && in.FlushTimeout == 0 {
		bad.FlushTimeoutPresent, bad.FlushTimeout = true, defaultFlushTimeout
		n++
	}
	if in.QoSPresent && in.QoS.ServiceType > ServiceGuaranteed {
		bad.QoSPresent, bad.QoS = true, in.QoS
		bad.QoS.ServiceType = ServiceBestEffort
		n++
	}

	// Only basic mode is offered. A peer asking for another mode is told
	// so once; asking again tears the channel down.
	if peer := in.mode(); peer != ModeBasic {
		if c.peerCfgRejected {
			c.lk.log.Infof("cid 0x%04X: mode negotiation failed, peer wants mode %d", c.localCID, peer)
			return nil, true
		}
		c.peerCfgRejected = true
		bad.FCRPresent, bad.FCR = true, FCROptions{Mode: ModeBasic}
		n++
	}

	if n == 0 {
		return nil, false
	}
	return &bad, false
}

func (l *L2CAP) sendConfigRsp(c *ccb, result, flags uint16, opts []byte) {
	l.sendSignal(c.lk, c.remoteID, &ConfigurationResponse{
		SourceCID: c.remoteCID,
		Flags:     flags,
		Result:    result,
		Options:   opts,
	})
}

func (l *L2CAP) handleConfigRsp(lk *lcb, id uint8, s *ConfigurationResponse) {
	c := lk.findCCBByLocalCID(s.SourceCID)
	if c == nil || c.fixed || c.le || c.localID != id || c.state != ChanConfig {
		lk.log.Debugf("unexpected config response id %d scid 0x%04X", id, s.SourceCID)
		return
	}

	var in ConfigInfo
	if _, err := ParseConfigOptions(s.Options, &in); err != nil {
		lk.log.Warnf("cid 0x%04X: config response options: %v", c.localCID, err)
	}
	in.Result = s.Result
	in.Flags = s.Flags

	switch s.Result {
	case CfgOK:
		if s.Flags&cfgContinuation != 0 {
			return
		}
		c.ourCfg.merge(&in)
		c.ourCfgDone = true
		if f := c.cb().ConfigCfm; f != nil {
			f(c.localCID, &in)
		}
		if c.inUse {
			l.configDone(c)
		}

	case CfgPending:
		l.startTimer(&c.timer, configTimeout, func() { l.configTimeout(c) })

	case CfgUnacceptable:
		if !c.ourCfgRetried && in.mode() == ModeBasic {
			c.ourCfgRetried = true
			next := c.pendingCfg
			next.merge(&in)
			lk.log.Debugf("cid 0x%04X: retrying config with peer values", c.localCID)
			l.sendConfigReq(c, &next)
			return
		}
		fallthrough

	default:
		lk.log.Infof("cid 0x%04X: config failed, result 0x%04X", c.localCID, s.Result)
		if f := c.cb().ConfigCfm; f != nil {
			f(c.localCID, &in)
		}
		if c.inUse {
			l.disconnectChannel(c, false)
		}
	}
}

func cidPair(local, remote uint16) []byte {
	return []byte{byte(local), byte(local >> 8), byte(remote), byte(remote >> 8)}
}
