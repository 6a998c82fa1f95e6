package linux

import (
	"context"

	"github.com/rigado/bthost"
	"github.com/rigado/bthost/linux/l2cap"
)

// The methods below run the L2CAP operation of the same name on the loop
// and wait for it. Callbacks of the registrations run on the loop.

func (s *Stack) Register(ctx context.Context, psm uint16, reg l2cap.Registration) error {
	return s.call(ctx, func() error { return s.l2c.Register(psm, reg) })
}

func (s *Stack) Deregister(ctx context.Context, psm uint16) error {
	return s.call(ctx, func() error {
		s.l2c.Deregister(psm)
		return nil
	})
}

func (s *Stack) RegisterLE(ctx context.Context, psm uint16, reg l2cap.Registration) error {
	return s.call(ctx, func() error { return s.l2c.RegisterLE(psm, reg) })
}

func (s *Stack) RegisterFixed(ctx context.Context, cid uint16, cb l2cap.FixedCallbacks) error {
	return s.call(ctx, func() error { return s.l2c.RegisterFixed(cid, cb) })
}

// ConnectReq opens a BR/EDR channel to psm on addr and returns its local
// CID. The outcome is reported through ConnectCfm.
func (s *Stack) ConnectReq(ctx context.Context, psm uint16, addr bthost.BDAddr) (uint16, error) {
	var lcid uint16
	err := s.call(ctx, func() (err error) {
		lcid, err = s.l2c.ConnectReq(psm, addr)
		return err
	})
	return lcid, err
}

// LEConnectReq opens an LE credit based channel.
func (s *Stack) LEConnectReq(ctx context.Context, psm uint16, addr bthost.BDAddr) (uint16, error) {
	var lcid uint16
	err := s.call(ctx, func() (err error) {
		lcid, err = s.l2c.LEConnectReq(psm, addr)
		return err
	})
	return lcid, err
}

func (s *Stack) ConnectRsp(ctx context.Context, addr bthost.BDAddr, id uint8, lcid, result, status uint16) error {
	return s.call(ctx, func() error { return s.l2c.ConnectRsp(addr, id, lcid, result, status) })
}

func (s *Stack) ConfigReq(ctx context.Context, lcid uint16, cfg l2cap.ConfigInfo) error {
	return s.call(ctx, func() error { return s.l2c.ConfigReq(lcid, &cfg) })
}

func (s *Stack) ConfigRsp(ctx context.Context, lcid uint16, cfg l2cap.ConfigInfo) error {
	return s.call(ctx, func() error { return s.l2c.ConfigRsp(lcid, &cfg) })
}

func (s *Stack) GetConfig(ctx context.Context, lcid uint16) (local, peer l2cap.ConfigInfo, err error) {
	err = s.call(ctx, func() (err error) {
		local, peer, err = s.l2c.GetConfig(lcid)
		return err
	})
	return local, peer, err
}

func (s *Stack) DisconnectReq(ctx context.Context, lcid uint16) error {
	return s.call(ctx, func() error { return s.l2c.DisconnectReq(lcid) })
}

func (s *Stack) DisconnectRsp(ctx context.Context, lcid uint16) error {
	return s.call(ctx, func() error { return s.l2c.DisconnectRsp(lcid) })
}

// DataWrite queues p on lcid. A closed stack reports WriteFailed.
func (s *Stack) DataWrite(ctx context.Context, lcid uint16, p []byte) l2cap.WriteResult {
	res := l2cap.WriteFailed
	s.call(ctx, func() error {
		res = s.l2c.DataWrite(lcid, p)
		return nil
	})
	return res
}

func (s *Stack) FixedDataWrite(ctx context.Context, cid uint16, addr bthost.BDAddr, p []byte) l2cap.WriteResult {
	res := l2cap.WriteFailed
	s.call(ctx, func() error {
		res = s.l2c.FixedDataWrite(cid, addr, p)
		return nil
	})
	return res
}

func (s *Stack) SendCredits(ctx context.Context, lcid, n uint16) error {
	return s.call(ctx, func() error { return s.l2c.SendCredits(lcid, n) })
}

func (s *Stack) SetChannelPriority(ctx context.Context, lcid uint16, p l2cap.Priority) error {
	return s.call(ctx, func() error { return s.l2c.SetChannelPriority(lcid, p) })
}

func (s *Stack) SetChannelDataRate(ctx context.Context, lcid uint16, tx, rx l2cap.DataRate) error {
	return s.call(ctx, func() error { return s.l2c.SetChannelDataRate(lcid, tx, rx) })
}

func (s *Stack) SetLinkPriority(ctx context.Context, addr bthost.BDAddr, high bool) error {
	return s.call(ctx, func() error { return s.l2c.SetLinkPriority(addr, high) })
}

func (s *Stack) SetChannelIdleTimeout(ctx context.Context, lcid, timeout uint16) error {
	return s.call(ctx, func() error { return s.l2c.SetIdleTimeout(lcid, timeout) })
}

func (s *Stack) SetLinkIdleTimeout(ctx context.Context, addr bthost.BDAddr, timeout uint16, t bthost.Transport) error {
	return s.call(ctx, func() error { return s.l2c.SetIdleTimeoutByAddr(addr, timeout, t) })
}

func (s *Stack) UpdateConnParams(ctx context.Context, addr bthost.BDAddr, p bthost.ConnParams) error {
	return s.call(ctx, func() error { return s.l2c.UpdateConnParams(addr, p) })
}

// Ping sends an echo request to addr, creating the link if needed, and
// waits for the answer.
func (s *Stack) Ping(ctx context.Context, addr bthost.BDAddr, data []byte) (result uint8, rsp []byte, err error) {
	type echo struct {
		result uint8
		data   []byte
	}
	ch := make(chan echo, 1)
	err = s.call(ctx, func() error {
		return s.l2c.Ping(addr, data, func(result uint8, data []byte) {
			ch <- echo{result, append([]byte(nil), data...)}
		})
	})
	if err != nil {
		return 0, nil, err
	}
	select {
	case e := <-ch:
		return e.result, e.data, nil
	case <-ctx.Done():
		return 0, nil, ctx.Err()
	case <-s.done:
		return 0, nil, bthost.ErrClosed
	}
}

func (s *Stack) SecurityComplete(ctx context.Context, addr bthost.BDAddr, lcid uint16, ok bool) error {
	return s.call(ctx, func() error { return s.l2c.SecurityComplete(addr, lcid, ok) })
}

// SwitchRole asks for role on the BR/EDR link to addr.
func (s *Stack) SwitchRole(ctx context.Context, addr bthost.BDAddr, role bthost.Role) error {
	return s.call(ctx, func() error { return s.acl.SwitchRole(addr, role) })
}

func (s *Stack) SetLinkPolicy(ctx context.Context, addr bthost.BDAddr, policy uint16) error {
	return s.call(ctx, func() error { return s.acl.SetLinkPolicy(addr, policy) })
}

// SetConnUpdateHandler sets the receiver of LE connection parameter
// update outcomes.
func (s *Stack) SetConnUpdateHandler(ctx context.Context, f l2cap.ConnUpdateFunc) error {
	return s.call(ctx, func() error {
		s.l2c.SetConnUpdateHandler(f)
		return nil
	})
}

// SetRoleSwitchListener sets a function told about role switch outcomes.
func (s *Stack) SetRoleSwitchListener(ctx context.Context, f func(addr bthost.BDAddr, role bthost.Role, status uint8)) error {
	return s.call(ctx, func() error {
		s.acl.SetRoleSwitchListener(f)
		return nil
	})
}
