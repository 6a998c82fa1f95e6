package linux

import (
	"time"

	"github.com/pkg/errors"
	"github.com/rigado/bthost"
)

// Options are applied before Start; setters return an error once the
// stack is running.

func (s *Stack) started() error {
	if s.hci != nil {
		return errors.Wrap(bthost.ErrBadState, "stack already started")
	}
	return nil
}

// SetTransportHCISocket sets HCI device for hci socket
func (s *Stack) SetTransportHCISocket(id int) error {
	if err := s.started(); err != nil {
		return err
	}
	return s.transport.SetTransportHCISocket(id)
}

// SetTransportH4Socket sets h4 socket server
func (s *Stack) SetTransportH4Socket(addr string, timeout time.Duration) error {
	if err := s.started(); err != nil {
		return err
	}
	return s.transport.SetTransportH4Socket(addr, timeout)
}

// SetTransportH4Uart sets h4 uart path
func (s *Stack) SetTransportH4Uart(path string) error {
	if err := s.started(); err != nil {
		return err
	}
	return s.transport.SetTransportH4Uart(path)
}

// SetErrorHandler ...
func (s *Stack) SetErrorHandler(handler func(error)) error {
	s.errorHandler = handler
	return nil
}

// SetDeviceStatusHandler sets the function told when the controller goes
// up or down. It runs on the stack loop.
func (s *Stack) SetDeviceStatusHandler(handler func(up bool)) error {
	s.statusHandler = handler
	return nil
}

func (s *Stack) SetPoolSizes(links, channels, records int) error {
	if err := s.started(); err != nil {
		return err
	}
	if links <= 0 || channels <= 0 || records <= 0 {
		return errors.Wrapf(bthost.ErrInvalidParams, "pool sizes %d/%d/%d", links, channels, records)
	}
	s.l2cOpts.Links = links
	s.l2cOpts.Channels = channels
	s.aclOpts.Records = records
	return nil
}

func (s *Stack) SetIdleTimeout(t bthost.Transport, seconds uint16) error {
	if err := s.started(); err != nil {
		return err
	}
	switch t {
	case bthost.TransportBREDR:
		s.l2cOpts.IdleTimeoutBREDR = seconds
	case bthost.TransportLE:
		s.l2cOpts.IdleTimeoutLE = seconds
	default:
		return errors.Wrapf(bthost.ErrInvalidParams, "transport %v", t)
	}
	return nil
}

func (s *Stack) SetHeldPackets(limit, retries int, interval time.Duration) error {
	if err := s.started(); err != nil {
		return err
	}
	if limit <= 0 || retries <= 0 || interval <= 0 {
		return errors.Wrap(bthost.ErrInvalidParams, "held packets")
	}
	s.l2cOpts.HeldLimit = limit
	s.l2cOpts.HeldRetries = retries
	s.l2cOpts.HeldInterval = interval
	return nil
}

func (s *Stack) SetLocalMTU(mtu uint16) error {
	if err := s.started(); err != nil {
		return err
	}
	if mtu < 48 {
		return errors.Wrapf(bthost.ErrInvalidParams, "mtu %d below 48", mtu)
	}
	s.l2cOpts.LocalMTU = mtu
	return nil
}

func (s *Stack) SetLECredits(mtu, mps, credits uint16) error {
	if err := s.started(); err != nil {
		return err
	}
	switch {
	case mtu < 23:
		return errors.Wrapf(bthost.ErrInvalidParams, "le mtu %d below 23", mtu)
	case mps < 23 || mps > 65533:
		return errors.Wrapf(bthost.ErrInvalidParams, "le mps %d", mps)
	case credits == 0:
		return errors.Wrap(bthost.ErrInvalidParams, "no initial le credits")
	}
	s.l2cOpts.LEMTU = mtu
	s.l2cOpts.LEMPS = mps
	s.l2cOpts.LECredits = credits
	return nil
}

func (s *Stack) SetHighPriorityQuota(quota int) error {
	if err := s.started(); err != nil {
		return err
	}
	if quota <= 0 {
		return errors.Wrapf(bthost.ErrInvalidParams, "quota %d", quota)
	}
	s.l2cOpts.HighPriorityQuota = quota
	return nil
}

func (s *Stack) SetFeatureCache(c bthost.FeatureCache) error {
	if err := s.started(); err != nil {
		return err
	}
	s.cache = c
	return nil
}

func (s *Stack) SetSecurityManager(m bthost.SecurityManager) error {
	if err := s.started(); err != nil {
		return err
	}
	s.sec = m
	return nil
}

func (s *Stack) SetSCOManager(m bthost.SCOManager) error {
	if err := s.started(); err != nil {
		return err
	}
	s.sco = m
	return nil
}
