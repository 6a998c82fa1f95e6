package linux

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/rigado/bthost"
	"github.com/rigado/bthost/linux/hci/evt"
)

// bind routes the events and ACL data not owned by the ACL manager.
func (s *Stack) bind() {
	s.acl.Bind(s.hci)
	s.hci.HandleACL(s.l2c.HandleACL)
	s.hci.Handle(evt.NumberOfCompletedPacketsCode, s.handleNumberOfCompletedPackets)
	s.hci.Handle(evt.HardwareErrorCode, s.handleHardwareError)
	s.hci.Handle(evt.DataBufferOverflowCode, s.handleDataBufferOverflow)
	s.hci.HandleLEMeta(evt.LEConnectionUpdateCompleteSubCode, s.handleLEConnectionUpdateComplete)
	s.hci.HandleLEMeta(evt.LERemoteConnectionParameterRequestSubCode, s.handleLERemoteConnParamRequest)
}

func (s *Stack) handleNumberOfCompletedPackets(b []byte) error {
	e := evt.NumberOfCompletedPackets(b)
	if !e.Valid() {
		return errors.Errorf("invalid number of completed packets: % X", b)
	}
	for i := 0; i < int(e.NumberOfHandles()); i++ {
		s.l2c.NumCompletedPackets(e.ConnectionHandle(i)&0x0FFF, int(e.HCNumOfCompletedPackets(i)))
	}
	return nil
}

func (s *Stack) handleHardwareError(b []byte) error {
	code, err := evt.HardwareError(b).HardwareCodeWErr()
	if err != nil {
		return errors.Wrap(err, "hardware error")
	}
	s.deviceDown(fmt.Sprintf("hardware error 0x%02X", code), true)
	return nil
}

func (s *Stack) handleDataBufferOverflow(b []byte) error {
	s.log.Warnf("controller data buffer overflow, link type %d", evt.DataBufferOverflow(b).LinkType())
	return nil
}

func (s *Stack) handleLEConnectionUpdateComplete(b []byte) error {
	e := evt.LEConnectionUpdateComplete(b)
	if _, err := e.SupervisionTimeoutWErr(); err != nil {
		return errors.Wrap(err, "le connection update complete")
	}
	s.l2c.ConnUpdateComplete(e.ConnectionHandle()&0x0FFF, e.Status(), bthost.ConnParams{
		IntervalMin:        e.ConnInterval(),
		IntervalMax:        e.ConnInterval(),
		Latency:            e.ConnLatency(),
		SupervisionTimeout: e.SupervisionTimeout(),
	})
	return nil
}

func (s *Stack) handleLERemoteConnParamRequest(b []byte) error {
	e := evt.LERemoteConnectionParameterRequest(b)
	if _, err := e.TimeoutWErr(); err != nil {
		return errors.Wrap(err, "le remote connection parameter request")
	}
	s.l2c.RemoteConnParamRequest(e.ConnectionHandle()&0x0FFF, bthost.ConnParams{
		IntervalMin:        e.IntervalMin(),
		IntervalMax:        e.IntervalMax(),
		Latency:            e.Latency(),
		SupervisionTimeout: e.Timeout(),
	})
	return nil
}
