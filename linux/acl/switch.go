package acl

import (
	"time"

	"github.com/pkg/errors"
	"github.com/rigado/bthost"
	"github.com/rigado/bthost/linux/hci"
	"github.com/rigado/bthost/linux/hci/cmd"
)

// switchState is the progress of a local role switch.
type switchState int

const (
	switchIdle switchState = iota
	switchModeChange
	switchEncOff
	switchInProgress
	switchEncOn
)

const roleSwitchTimeout = 10 * time.Second

// SwitchRole asks the controller to make us role on the BR/EDR link to
// addr. Sniff mode is left and encryption paused first when needed. The
// outcome is reported through Links.RoleChanged.
func (m *Manager) SwitchRole(addr bthost.BDAddr, role bthost.Role) error {
	r := m.Find(addr, bthost.TransportBREDR)
	if r == nil || (r.State != StateConnected && r.State != StateRoleSwitching) {
		return errors.Wrapf(bthost.ErrNotConnected, "%v", addr)
	}
	if r.sw != switchIdle {
		return errors.Wrap(bthost.ErrBadState, "role switch in progress")
	}
	if r.Role == role {
		return nil
	}
	if r.Mode == hci.ModeHold || r.Mode == hci.ModePark {
		return errors.Wrapf(bthost.ErrBadState, "link in mode %d", r.Mode)
	}

	r.swRole = role
	r.swStatus = 0
	r.swEncOff = false
	r.State = StateRoleSwitching
	m.startTimer(&r.swTimer, roleSwitchTimeout, func() {
		r.swTimer = nil
		m.log.Warnf("role switch with %v timed out", r.Addr)
		m.switchDone(r, uint8(hci.ErrHostTimeout))
	})
	m.links.RoleSwitching(addr)

	switch {
	case r.Mode == hci.ModeSniff:
		r.sw = switchModeChange
		m.switchStep(r, &cmd.ExitSniffMode{ConnectionHandle: r.Handle})
	case r.Encrypted:
		m.pauseEncryption(r)
	default:
		m.startSwitch(r)
	}
	return nil
}

func (m *Manager) pauseEncryption(r *Record) {
	r.sw = switchEncOff
	r.swEncOff = true
	m.switchStep(r, &cmd.SetConnectionEncryption{ConnectionHandle: r.Handle, EncryptionEnable: 0})
}

func (m *Manager) startSwitch(r *Record) {
	r.sw = switchInProgress
	m.switchStep(r, &cmd.SwitchRole{BDADDR: r.Addr.LE(), Role: uint8(r.swRole)})
}

// switchStep sends one command of the sequence; a refused command ends the
// switch with its status.
func (m *Manager) switchStep(r *Record, c hci.Command) {
	want := r.sw
	err := m.ctrl.SendCommand(c, func(rsp hci.Response) {
		if rsp.Err() != nil && r.inUse && r.sw == want {
			m.switchDone(r, statusOf(rsp))
		}
	})
	if err != nil {
		m.log.Warnf("role switch step %d: %v", want, err)
		m.switchDone(r, uint8(hci.ErrUnspecified))
	}
}

// switchDone resets the switch and reports the role in force. Encryption
// paused for the switch is turned back on.
func (m *Manager) switchDone(r *Record, status uint8) {
	if r.sw == switchIdle {
		return
	}
	if r.swTimer != nil {
		r.swTimer.Stop()
		r.swTimer = nil
	}
	if status != 0 && r.swEncOff && r.sw == switchInProgress {
		m.send(&cmd.SetConnectionEncryption{ConnectionHandle: r.Handle, EncryptionEnable: 1}, nil)
	}
	r.sw = switchIdle
	r.swEncOff = false
	if r.State == StateRoleSwitching {
		r.State = StateConnected
	}
	m.log.Debugf("role switch with %v done, role %v, status 0x%02X", r.Addr, r.Role, status)
	m.reportRole(r, status)
}

func (m *Manager) reportRole(r *Record, status uint8) {
	m.links.RoleChanged(r.Addr, r.Role, status)
	if m.roleListener != nil {
		m.roleListener(r.Addr, r.Role, status)
	}
}

// ModeChange records the power mode of handle and continues a role switch
// that waited for the link to become active.
func (m *Manager) ModeChange(handle uint16, status, mode uint8) {
	r := m.FindByHandle(handle)
	if r == nil {
		return
	}
	if status == 0 {
		r.Mode = mode
	}
	if r.sw != switchModeChange {
		return
	}
	switch {
	case status != 0:
		m.switchDone(r, status)
	case mode != hci.ModeActive:
		return
	case r.Encrypted:
		m.pauseEncryption(r)
	default:
		m.startSwitch(r)
	}
}

// EncryptionChange records the encryption state of handle and drives the
// encryption steps of a role switch.
func (m *Manager) EncryptionChange(handle uint16, status, enabled uint8) {
	r := m.FindByHandle(handle)
	if r == nil {
		return
	}
	if status == 0 {
		r.Encrypted = enabled != 0
	}
	switch r.sw {
	case switchEncOff:
		if status != 0 {
			m.switchDone(r, status)
			return
		}
		m.startSwitch(r)
	case switchEncOn:
		m.switchDone(r, r.swStatus)
	}
}

// RoleChange records the new role of the link to addr. A switch we did
// not ask for is reported as is.
func (m *Manager) RoleChange(addr bthost.BDAddr, status uint8, role bthost.Role) {
	r := m.Find(addr, bthost.TransportBREDR)
	if r == nil {
		return
	}
	if status == 0 {
		r.Role = role
	}
	if r.sw != switchInProgress {
		m.reportRole(r, status)
		return
	}
	r.swStatus = status
	if r.swEncOff {
		r.sw = switchEncOn
		m.switchStep(r, &cmd.SetConnectionEncryption{ConnectionHandle: r.Handle, EncryptionEnable: 1})
		return
	}
	m.switchDone(r, status)
}

// SetLinkPolicy writes the link policy settings of the BR/EDR link to
// addr.
func (m *Manager) SetLinkPolicy(addr bthost.BDAddr, policy uint16) error {
	r := m.Find(addr, bthost.TransportBREDR)
	if r == nil || r.State == StateConnecting {
		return errors.Wrapf(bthost.ErrNotConnected, "%v", addr)
	}
	c := &cmd.WriteLinkPolicySettings{ConnectionHandle: r.Handle, LinkPolicySettings: policy}
	err := m.ctrl.SendCommand(c, func(rsp hci.Response) {
		if err := rsp.Err(); err != nil {
			m.log.Warnf("link policy of %v: %v", addr, err)
			return
		}
		if r.inUse && r.Addr == addr {
			r.LinkPolicy = policy
		}
	})
	return errors.Wrap(err, "write link policy")
}
