package l2cap

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"
	"github.com/rigado/bthost"
)

// LEConnectReq opens a credit based channel to addr on psm, bringing up
// the LE link when needed. The channel reports through the LE_PSM
// registration callbacks.
func (l *L2CAP) LEConnectReq(psm uint16, addr bthost.BDAddr) (uint16, error) {
	reg := l.leRegs[psm]
	if reg == nil {
		return 0, errors.Wrapf(bthost.ErrPSMNotRegistered, "le_psm 0x%04X", psm)
	}
	lk, err := l.linkFor(addr, bthost.TransportLE)
	if err != nil {
		return 0, err
	}
	c := l.allocateCCB(lk, 0)
	if c == nil {
		return 0, errors.Wrap(bthost.ErrNoResources, "ccb")
	}
	l.initLE(c, reg, psm)
	c.originator = true
	lk.log.Debugf("cid 0x%04X: le connect to psm 0x%04X", c.localCID, psm)

	if lk.state == LinkConnected {
		stopTimer(&lk.timer)
		l.sendLEConnReq(c)
	} else {
		c.pendingConnect = true
	}
	return c.localCID, nil
}

func (l *L2CAP) initLE(c *ccb, reg *Registration, psm uint16) {
	c.le = true
	c.reg = reg
	c.psm = psm
	c.localMTU = l.opts.LEMTU
	c.localMPS = l.opts.LEMPS
	c.localCredits = l.opts.LECredits
	c.initCredits = l.opts.LECredits
}

// sendLEConnReq runs the security check ahead of an outgoing LE request.
func (l *L2CAP) sendLEConnReq(c *ccb) {
	l.checkSecurity(c)
}

func (l *L2CAP) leSecurityGranted(c *ccb) {
	lk := c.lk
	if c.originator {
		c.state = ChanW4L2CAPConnectRsp
		c.localID = lk.newID()
		l.startTimer(&c.timer, connectTimeout, func() { l.connectTimeout(c) })
		l.sendSignal(lk, c.localID, &LECreditBasedConnectionRequest{
			LEPSM:          c.psm,
			SourceCID:      c.localCID,
			MTU:            c.localMTU,
			MPS:            c.localMPS,
			InitialCredits: c.localCredits,
		})
		return
	}

	l.sendSignal(lk, c.remoteID, &LECreditBasedConnectionResponse{
		DestinationCID: c.localCID,
		MTU:            c.localMTU,
		MPS:            c.localMPS,
		InitialCredits: c.localCredits,
		Result:         LEConnOK,
	})
	c.state = ChanOpen
	lk.log.Infof("cid 0x%04X open, le_psm 0x%04X, peer mtu %d mps %d credits %d",
		c.localCID, c.psm, c.peerMTU, c.peerMPS, c.peerCredits)
	if f := c.cb().ConnectInd; f != nil {
		f(lk.addr, c.localCID, c.psm, c.remoteID)
	}
	if c.inUse {
		l.adjustChannelAllocation(lk)
	}
}

func (l *L2CAP) leSecurityDenied(c *ccb) {
	if c.originator {
		l.failChannel(c, LEConnInsufficientAuth)
		return
	}
	l.sendSignal(c.lk, c.remoteID, &LECreditBasedConnectionResponse{Result: LEConnInsufficientAuth})
	l.releaseCCB(c)
}

func (l *L2CAP) handleLEConnReq(lk *lcb, id uint8, s *LECreditBasedConnectionRequest) {
	refuse := func(result uint16) {
		lk.log.Infof("le connect request psm 0x%04X scid 0x%04X refused, result 0x%04X", s.LEPSM, s.SourceCID, result)
		l.sendSignal(lk, id, &LECreditBasedConnectionResponse{Result: result})
	}
	reg := l.leRegs[s.LEPSM]
	switch {
	case reg == nil:
		refuse(LEConnNoPSM)
		return
	case s.MTU < minLECOCMTU || s.MPS < minLECOCMPS || s.MPS > maxLECOCMPS:
		refuse(LEConnUnacceptableParams)
		return
	case s.SourceCID < minLECOCCID || s.SourceCID > maxLECOCCID:
		refuse(LEConnInvalidSourceCID)
		return
	case lk.findCCBByRemoteCID(s.SourceCID) != nil:
		refuse(LEConnSourceCIDAllocated)
		return
	}
	c := l.allocateCCB(lk, 0)
	if c == nil {
		refuse(LEConnNoResources)
		return
	}
	l.initLE(c, reg, s.LEPSM)
	c.remoteCID = s.SourceCID
	c.remoteID = id
	c.peerMTU = s.MTU
	c.peerMPS = s.MPS
	c.peerCredits = s.InitialCredits
	stopTimer(&lk.timer)
	l.checkSecurity(c)
}

func (l *L2CAP) handleLEConnRsp(lk *lcb, id uint8, s *LECreditBasedConnectionResponse) {
	c := lk.findCCBByLocalID(id)
	if c == nil || !c.le || c.state != ChanW4L2CAPConnectRsp {
		lk.log.Debugf("unexpected le connect response id %d", id)
		return
	}
	if s.Result != LEConnOK {
		l.failChannel(c, s.Result)
		return
	}
	if s.MTU < minLECOCMTU || s.MPS < minLECOCMPS || s.DestinationCID < minLECOCCID {
		lk.log.Warnf("cid 0x%04X: bad le connect response %+v", c.localCID, *s)
		l.failChannel(c, LEConnUnacceptableParams)
		return
	}
	c.remoteCID = s.DestinationCID
	c.peerMTU = s.MTU
	c.peerMPS = s.MPS
	c.peerCredits = s.InitialCredits
	c.state = ChanOpen
	stopTimer(&c.timer)
	lk.log.Infof("cid 0x%04X open, le_psm 0x%04X, peer mtu %d mps %d credits %d",
		c.localCID, c.psm, c.peerMTU, c.peerMPS, c.peerCredits)
	if f := c.cb().ConnectCfm; f != nil {
		f(c.localCID, ConnOK)
	}
	if c.inUse {
		l.adjustChannelAllocation(lk)
		l.checkSendPackets(lk)
	}
}

func (l *L2CAP) handleCredit(lk *lcb, s *LEFlowControlCredit) {
	c := lk.findCCBByRemoteCID(s.CID)
	if c == nil || !c.le {
		lk.log.Debugf("credits for unknown cid 0x%04X", s.CID)
		return
	}
	// overflow check
	if nv := uint32(c.peerCredits) + uint32(s.Credits); nv > 0xFFFF {
		lk.log.Warnf("cid 0x%04X: credit overflow, have %d, got %d", c.localCID, c.peerCredits, s.Credits)
		l.cocAbort(c)
		return
	}
	c.peerCredits += s.Credits
	lk.log.Debugf("cid 0x%04X: +%d credits, now %d", c.localCID, s.Credits, c.peerCredits)
	l.checkSendPackets(lk)
}

// cocAbort disconnects a channel whose peer broke the credit rules.
func (l *L2CAP) cocAbort(c *ccb) {
	if f := c.cb().DisconnectInd; f != nil {
		f(c.localCID, false)
	}
	if c.inUse {
		l.disconnectChannel(c, false)
	}
}

// cocReceive reassembles SDUs from K-frames and hands back credits once
// the peer runs below half of its initial grant.
func (l *L2CAP) cocReceive(c *ccb, payload []byte) {
	lk := c.lk
	if c.state != ChanOpen {
		lk.log.Debugf("cid 0x%04X: k-frame in state %v", c.localCID, c.state)
		return
	}
	if c.localCredits == 0 {
		lk.log.Warnf("cid 0x%04X: k-frame without credit", c.localCID)
		l.cocAbort(c)
		return
	}
	c.localCredits--
	if len(payload) > int(c.localMPS) {
		lk.log.Warnf("cid 0x%04X: k-frame of %d bytes exceeds mps %d", c.localCID, len(payload), c.localMPS)
		l.cocAbort(c)
		return
	}

	in := payload
	if c.sdu == nil {
		if len(payload) < leSDULengthSize {
			lk.log.Warnf("cid 0x%04X: first k-frame without sdu length", c.localCID)
			l.cocAbort(c)
			return
		}
		c.sduLen = int(binary.LittleEndian.Uint16(payload))
		if c.sduLen > int(c.localMTU) {
			lk.log.Warnf("cid 0x%04X: sdu of %d bytes exceeds mtu %d", c.localCID, c.sduLen, c.localMTU)
			l.cocAbort(c)
			return
		}
		c.sdu = make([]byte, 0, c.sduLen)
		in = payload[leSDULengthSize:]
	}
	if len(c.sdu)+len(in) > c.sduLen {
		lk.log.Warnf("cid 0x%04X: sdu overrun, want %d bytes", c.localCID, c.sduLen)
		l.cocAbort(c)
		return
	}
	c.sdu = append(c.sdu, in...)
	lk.log.Debugf("cid 0x%04X: rx %d/%d bytes", c.localCID, len(c.sdu), c.sduLen)

	if len(c.sdu) == c.sduLen {
		sdu := c.sdu
		c.sdu = nil
		if f := c.cb().DataInd; f != nil {
			f(c.localCID, sdu)
		}
		if !c.inUse {
			return
		}
	}

	if c.localCredits < c.initCredits/leCreditReplenishThreshold {
		n := c.initCredits - c.localCredits
		c.localCredits = c.initCredits
		l.sendSignal(lk, lk.newID(), &LEFlowControlCredit{CID: c.localCID, Credits: n})
	}
}

// cocWrite segments sdu into K-frames on the channel queue. The first
// K-frame carries the SDU length.
func (l *L2CAP) cocWrite(c *ccb, sdu []byte) WriteResult {
	if len(sdu) > int(c.peerMTU) {
		c.lk.log.Warnf("cid 0x%04X: mtu exceeded, have %d bytes, want <= %d", c.localCID, len(sdu), c.peerMTU)
		return WriteFailed
	}

	first := true
	br := bytes.NewReader(sdu)
	for first || br.Len() > 0 {
		sz := int(c.peerMPS)
		if first {
			sz -= leSDULengthSize
		}
		bb := make([]byte, sz)
		n, _ := br.Read(bb)

		buf := bytes.NewBuffer(make([]byte, 0, hdrLen+leSDULengthSize+n))
		plen := n
		if first {
			plen += leSDULengthSize
		}
		binary.Write(buf, binary.LittleEndian, uint16(plen))
		binary.Write(buf, binary.LittleEndian, c.remoteCID)
		if first {
			binary.Write(buf, binary.LittleEndian, uint16(len(sdu)))
			first = false
		}
		buf.Write(bb[:n])
		c.txq = append(c.txq, buf.Bytes())
	}
	return WriteSuccess
}

// SendCredits grants the peer n more credits on lcid.
func (l *L2CAP) SendCredits(lcid, n uint16) error {
	c := l.findCCB(lcid)
	if c == nil || !c.le {
		return errors.Wrapf(bthost.ErrUnknownChannel, "cid 0x%04X", lcid)
	}
	if c.state != ChanOpen {
		return errors.Wrapf(bthost.ErrBadState, "cid 0x%04X in state %v", lcid, c.state)
	}
	if nv := uint32(c.localCredits) + uint32(n); nv > 0xFFFF {
		return errors.Wrapf(bthost.ErrInvalidParams, "cid 0x%04X would overflow adding %d credits", lcid, n)
	}
	c.localCredits += n
	l.sendSignal(c.lk, c.lk.newID(), &LEFlowControlCredit{CID: c.localCID, Credits: n})
	return nil
}
