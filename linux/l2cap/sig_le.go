package l2cap

import (
	"github.com/rigado/bthost"
	"github.com/rigado/bthost/linux/hci"
	"github.com/rigado/bthost/linux/hci/cmd"
)

// processLESig handles the LE signalling channel.
func (l *L2CAP) processLESig(lk *lcb, b []byte) {
	cmds, err := splitCommands(b)
	if err != nil {
		lk.log.Warnf("le signalling: %v", err)
	}
	for _, c := range cmds {
		if !lk.inUse {
			return
		}
		if c.id() == 0 {
			lk.log.Debugf("le signalling: dropping code 0x%02X with id 0", c.code())
			continue
		}
		l.handleLESig(lk, c)
	}
}

func (l *L2CAP) handleLESig(lk *lcb, c sigCmd) {
	id, d := c.id(), c.data()
	lk.log.Debugf("le sig rx code 0x%02X id %d [% X]", c.code(), id, d)

	switch c.code() {
	case SignalCommandReject:
		var s CommandReject
		if s.Unmarshal(d) == nil {
			l.handleReject(lk, id, &s)
		}
	case SignalConnectionParameterUpdateRequest:
		var s ConnectionParameterUpdateRequest
		if s.Unmarshal(d) == nil {
			l.handleUpdateReq(lk, id, &s)
		}
	case SignalConnectionParameterUpdateResponse:
		var s ConnectionParameterUpdateResponse
		if s.Unmarshal(d) == nil {
			l.handleUpdateRsp(lk, id, &s)
		}
	case SignalLECreditBasedConnectionRequest:
		var s LECreditBasedConnectionRequest
		if s.Unmarshal(d) == nil {
			l.handleLEConnReq(lk, id, &s)
		}
	case SignalLECreditBasedConnectionResponse:
		var s LECreditBasedConnectionResponse
		if s.Unmarshal(d) == nil {
			l.handleLEConnRsp(lk, id, &s)
		}
	case SignalLEFlowControlCredit:
		var s LEFlowControlCredit
		if s.Unmarshal(d) == nil {
			l.handleCredit(lk, &s)
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
	default:
		lk.log.Debugf("le signalling: rejecting code 0x%02X", c.code())
		l.sendReject(lk, id, RejectNotUnderstood, nil)
	}
}

func (l *L2CAP) handleUpdateReq(lk *lcb, id uint8, s *ConnectionParameterUpdateRequest) {
	if lk.role != bthost.RoleMaster {
		l.sendReject(lk, id, RejectNotUnderstood, nil)
		return
	}
	p := bthost.ConnParams{
		IntervalMin:        s.IntervalMin,
		IntervalMax:        s.IntervalMax,
		Latency:            s.SlaveLatency,
		SupervisionTimeout: s.TimeoutMultiplier,
	}
	if err := hci.ValidateConnParams(p); err != nil {
		lk.log.Infof("rejecting connection parameters: %v", err)
		l.sendSignal(lk, id, &ConnectionParameterUpdateResponse{Result: ConnParamsRejected})
		return
	}
	l.sendSignal(lk, id, &ConnectionParameterUpdateResponse{Result: ConnParamsAccepted})
	l.hciConnUpdate(lk, p)
}

func (l *L2CAP) handleUpdateRsp(lk *lcb, id uint8, s *ConnectionParameterUpdateResponse) {
	if !lk.updatePending || id != lk.updateID {
		return
	}
	stopTimer(&lk.updateTimer)
	if s.Result != ConnParamsAccepted {
		l.connUpdateDone(lk, hciUnacceptParams)
	}
}

// hciConnUpdate asks the controller for new parameters; the outcome comes
// with the connection update complete event.
func (l *L2CAP) hciConnUpdate(lk *lcb, p bthost.ConnParams) error {
	lk.waiting = p
	lk.updatePending = true
	c := &cmd.LEConnectionUpdate{
		ConnectionHandle:   lk.handle,
		ConnIntervalMin:    p.IntervalMin,
		ConnIntervalMax:    p.IntervalMax,
		ConnLatency:        p.Latency,
		SupervisionTimeout: p.SupervisionTimeout,
	}
	err := l.ctrl.SendCommand(c, func(r hci.Response) {
		if st := r.Status(); st != 0 || r.Err() != nil {
			lk.log.Warnf("le connection update: %v", r.Err())
			if lk.inUse && lk.updatePending {
				if st == 0 {
					st = hciUnacceptParams
				}
				l.connUpdateDone(lk, st)
			}
		}
	})
	if err != nil {
		lk.updatePending = false
		return err
	}
	return nil
}

func (l *L2CAP) connUpdateTimeout(lk *lcb) {
	lk.updateTimer = nil
	if lk.updatePending {
		lk.log.Info("connection parameter update request timed out")
		l.connUpdateDone(lk, hciHostTimeout)
	}
}

func (l *L2CAP) connUpdateDone(lk *lcb, status uint8) {
	lk.updatePending = false
	stopTimer(&lk.updateTimer)
	if l.connUpdate != nil {
		l.connUpdate(lk.addr, status, lk.params)
	}
}

// ConnUpdateComplete handles the LE connection update complete event.
func (l *L2CAP) ConnUpdateComplete(handle uint16, status uint8, p bthost.ConnParams) {
	lk := l.findLCBByHandle(handle)
	if lk == nil {
		return
	}
	if status == 0 {
		lk.params.IntervalMin = p.IntervalMin
		lk.params.IntervalMax = p.IntervalMax
		lk.params.Latency = p.Latency
		lk.params.SupervisionTimeout = p.SupervisionTimeout
	}
	lk.log.Debugf("connection update complete, status 0x%02X, %+v", status, lk.params)
	l.connUpdateDone(lk, status)
}

// RemoteConnParamRequest answers a remote connection parameter request
// event with a reply or, when the parameters are not legal, a negative
// reply.
func (l *L2CAP) RemoteConnParamRequest(handle uint16, p bthost.ConnParams) {
	if err := hci.ValidateConnParams(p); err != nil {
		l.log.Infof("handle 0x%04X: rejecting remote parameters: %v", handle, err)
		l.ctrl.SendCommand(&cmd.LERemoteConnectionParameterRequestNegativeReply{
			ConnectionHandle: handle,
			Reason:           hciUnacceptParams,
		}, nil)
		return
	}
	if lk := l.findLCBByHandle(handle); lk != nil {
		lk.waiting = p
	}
	l.ctrl.SendCommand(&cmd.LERemoteConnectionParameterRequestReply{
		ConnectionHandle: handle,
		IntervalMin:      p.IntervalMin,
		IntervalMax:      p.IntervalMax,
		Latency:          p.Latency,
		Timeout:          p.SupervisionTimeout,
	}, nil)
}
