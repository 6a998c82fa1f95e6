package acl

import (
	"github.com/pkg/errors"
	"github.com/rigado/bthost"
	"github.com/rigado/bthost/linux/hci"
	"github.com/rigado/bthost/linux/hci/evt"
)

// Dispatcher is the event registration side of the HCI dispatcher.
type Dispatcher interface {
	Handle(code int, fn hci.HandlerFn)
	HandleLEMeta(subcode int, fn hci.HandlerFn)
}

// Bind registers the manager's event handlers with d.
func (m *Manager) Bind(d Dispatcher) {
	d.Handle(evt.ConnectionCompleteCode, m.handleConnectionComplete)
	d.Handle(evt.ConnectionRequestCode, m.handleConnectionRequest)
	d.Handle(evt.DisconnectionCompleteCode, m.handleDisconnectionComplete)
	d.Handle(evt.EncryptionChangeCode, m.handleEncryptionChange)
	d.Handle(evt.ReadRemoteSupportedFeaturesCompleteCode, m.handleRemoteFeatures)
	d.Handle(evt.ReadRemoteExtendedFeaturesCompleteCode, m.handleRemoteExtFeatures)
	d.Handle(evt.ReadRemoteVersionInformationCompleteCode, m.handleRemoteVersion)
	d.Handle(evt.RoleChangeCode, m.handleRoleChange)
	d.Handle(evt.ModeChangeCode, m.handleModeChange)
	d.HandleLEMeta(evt.LEConnectionCompleteSubCode, m.handleLEConnectionComplete)
	d.HandleLEMeta(evt.LEEnhancedConnectionCompleteSubCode, m.handleLEEnhancedConnectionComplete)
}

func (m *Manager) handleConnectionComplete(b []byte) error {
	e := evt.ConnectionComplete(b)
	enc, err := e.EncryptionEnabledWErr()
	if err != nil {
		return errors.Wrap(err, "connection complete")
	}
	m.ConnectionComplete(bthost.BDAddrFromLE(addrBytes(e.BDADDR())), e.ConnectionHandle()&0x0FFF, e.LinkType(), e.Status(), enc)
	return nil
}

func (m *Manager) handleConnectionRequest(b []byte) error {
	e := evt.ConnectionRequest(b)
	lt, err := e.LinkTypeWErr()
	if err != nil {
		return errors.Wrap(err, "connection request")
	}
	m.ConnectionRequest(bthost.BDAddrFromLE(addrBytes(e.BDADDR())), lt)
	return nil
}

func (m *Manager) handleDisconnectionComplete(b []byte) error {
	e := evt.DisconnectionComplete(b)
	reason, err := e.ReasonWErr()
	if err != nil {
		return errors.Wrap(err, "disconnection complete")
	}
	m.DisconnectionComplete(e.ConnectionHandle()&0x0FFF, e.Status(), reason)
	return nil
}

func (m *Manager) handleEncryptionChange(b []byte) error {
	e := evt.EncryptionChange(b)
	on, err := e.EncryptionEnabledWErr()
	if err != nil {
		return errors.Wrap(err, "encryption change")
	}
	m.EncryptionChange(e.ConnectionHandle()&0x0FFF, e.Status(), on)
	return nil
}

func (m *Manager) handleRemoteFeatures(b []byte) error {
	e := evt.ReadRemoteSupportedFeaturesComplete(b)
	f, err := e.LMPFeaturesWErr()
	if err != nil {
		return errors.Wrap(err, "remote features")
	}
	m.RemoteFeaturesComplete(e.ConnectionHandle()&0x0FFF, e.Status(), f)
	return nil
}

func (m *Manager) handleRemoteExtFeatures(b []byte) error {
	e := evt.ReadRemoteExtendedFeaturesComplete(b)
	f, err := e.ExtendedLMPFeaturesWErr()
	if err != nil {
		return errors.Wrap(err, "remote extended features")
	}
	m.RemoteExtFeaturesComplete(e.ConnectionHandle()&0x0FFF, e.Status(), e.PageNumber(), e.MaximumPageNumber(), f)
	return nil
}

func (m *Manager) handleRemoteVersion(b []byte) error {
	e := evt.ReadRemoteVersionInformationComplete(b)
	sub, err := e.SubversionWErr()
	if err != nil {
		return errors.Wrap(err, "remote version")
	}
	m.RemoteVersion(e.ConnectionHandle()&0x0FFF, e.Status(), RemoteVersion{
		Version:      e.Version(),
		Manufacturer: e.ManufacturerName(),
		Subversion:   sub,
	})
	return nil
}

func (m *Manager) handleRoleChange(b []byte) error {
	e := evt.RoleChange(b)
	role, err := e.NewRoleWErr()
	if err != nil {
		return errors.Wrap(err, "role change")
	}
	m.RoleChange(bthost.BDAddrFromLE(addrBytes(e.BDADDR())), e.Status(), bthost.Role(role))
	return nil
}

func (m *Manager) handleModeChange(b []byte) error {
	e := evt.ModeChange(b)
	if _, err := e.IntervalWErr(); err != nil {
		return errors.Wrap(err, "mode change")
	}
	m.ModeChange(e.ConnectionHandle()&0x0FFF, e.Status(), e.CurrentMode())
	return nil
}

func (m *Manager) handleLEConnectionComplete(b []byte) error {
	e := evt.LEConnectionComplete(b)
	if _, err := e.MasterClockAccuracyWErr(); err != nil {
		return errors.Wrap(err, "le connection complete")
	}
	m.LEConnectionComplete(bthost.BDAddrFromLE(addrBytes(e.PeerAddress())), e.ConnectionHandle()&0x0FFF, e.Status(), bthost.Role(e.Role()), bthost.ConnParams{
		IntervalMin:        e.ConnInterval(),
		IntervalMax:        e.ConnInterval(),
		Latency:            e.ConnLatency(),
		SupervisionTimeout: e.SupervisionTimeout(),
	})
	return nil
}

func (m *Manager) handleLEEnhancedConnectionComplete(b []byte) error {
	e := evt.LEEnhancedConnectionComplete(b)
	if _, err := e.MasterClockAccuracyWErr(); err != nil {
		return errors.Wrap(err, "le enhanced connection complete")
	}
	m.LEConnectionComplete(bthost.BDAddrFromLE(addrBytes(e.PeerAddress())), e.ConnectionHandle()&0x0FFF, e.Status(), bthost.Role(e.Role()), bthost.ConnParams{
		IntervalMin:        e.ConnInterval(),
		IntervalMax:        e.ConnInterval(),
		Latency:            e.ConnLatency(),
		SupervisionTimeout: e.SupervisionTimeout(),
	})
	return nil
}

func addrBytes(a [6]byte) []byte { return a[:] }
