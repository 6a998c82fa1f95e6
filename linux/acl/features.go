package acl

import (
	"github.com/rigado/bthost"
	"github.com/rigado/bthost/linux/hci"
	"github.com/rigado/bthost/linux/hci/cmd"
)

// Remote pages read beyond page 0.
const maxExtPage = bthost.MaxFeaturePages - 1

func (m *Manager) readFeatures(r *Record) {
	h := r.Handle
	ok := m.send(&cmd.ReadRemoteSupportedFeatures{ConnectionHandle: h}, func(rsp hci.Response) {
		if rsp.Err() != nil {
			if r := m.FindByHandle(h); r != nil {
				m.featuresDone(r)
			}
		}
	})
	if !ok {
		m.featuresDone(r)
	}
}

func (m *Manager) readExtPage(r *Record, page uint8) {
	h := r.Handle
	ok := m.send(&cmd.ReadRemoteExtendedFeatures{ConnectionHandle: h, PageNumber: page}, func(rsp hci.Response) {
		if rsp.Err() != nil {
			if r := m.FindByHandle(h); r != nil {
				m.featuresDone(r)
			}
		}
	})
	if !ok {
		m.featuresDone(r)
	}
}

// RemoteFeaturesComplete stores page 0 of handle and reads the extended
// pages when both sides support them.
func (m *Manager) RemoteFeaturesComplete(handle uint16, status uint8, page0 [8]byte) {
	r := m.FindByHandle(handle)
	if r == nil || r.FeaturesDone {
		return
	}
	if status != 0 {
		m.log.Debugf("remote features of %v: status 0x%02X", r.Addr, status)
		m.featuresDone(r)
		return
	}
	r.Features.Pages[0] = page0
	r.Features.Valid = 1
	if page0[7]&0x80 != 0 && m.localExtFeatures {
		m.readExtPage(r, 1)
		return
	}
	m.featuresDone(r)
}

// RemoteExtFeaturesComplete stores an extended page and reads the next
// one up to the remote maximum.
func (m *Manager) RemoteExtFeaturesComplete(handle uint16, status, page, maxPage uint8, f [8]byte) {
	r := m.FindByHandle(handle)
	if r == nil || r.FeaturesDone {
		return
	}
	if status != 0 || page == 0 || int(page) > maxExtPage {
		m.log.Debugf("remote ext features of %v: status 0x%02X, page %d", r.Addr, status, page)
		m.featuresDone(r)
		return
	}
	r.Features.Pages[page] = f
	r.Features.Valid = int(page) + 1
	r.maxPage = int(maxPage)
	if r.maxPage > maxExtPage {
		r.maxPage = maxExtPage
	}
	if int(page) < r.maxPage {
		m.readExtPage(r, page+1)
		return
	}
	m.featuresDone(r)
}

// featuresDone ends the feature sequence with the pages read so far.
func (m *Manager) featuresDone(r *Record) {
	if r.FeaturesDone {
		return
	}
	r.FeaturesDone = true
	m.log.Debugf("remote features of %v: %d pages", r.Addr, r.Features.Valid)
	if m.cache != nil && r.Features.Valid > 0 {
		if err := m.cache.Store(r.Addr, r.Features); err != nil {
			m.log.Warnf("feature cache: %v", err)
		}
	}
	m.links.RemoteFeatures(r.Addr, r.Transport, r.Features)
}
