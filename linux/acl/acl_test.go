package acl

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/rigado/bthost"
	"github.com/rigado/bthost/cache"
	"github.com/rigado/bthost/internal/faketime"
	"github.com/rigado/bthost/linux/hci"
	"github.com/rigado/bthost/linux/hci/cmd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	peer   = bthost.MustParseBDAddr("AA:BB:CC:DD:EE:FF")
	peer2  = bthost.MustParseBDAddr("11:22:33:44:55:66")
	peer3  = bthost.MustParseBDAddr("22:33:44:55:66:77")
	handle = uint16(0x0040)
)

type fakeCtrl struct {
	cmds  []hci.Command
	dones []hci.CompleteFunc
	err   error
}

func (f *fakeCtrl) SendCommand(c hci.Command, done hci.CompleteFunc) error {
	if f.err != nil {
		return f.err
	}
	f.cmds = append(f.cmds, c)
	f.dones = append(f.dones, done)
	return nil
}

func (f *fakeCtrl) ops() []int {
	var out []int
	for _, c := range f.cmds {
		out = append(out, c.OpCode())
	}
	return out
}

func (f *fakeCtrl) last() hci.Command {
	return f.cmds[len(f.cmds)-1]
}

// complete answers the last command with a one byte status.
func (f *fakeCtrl) complete(status uint8) {
	if done := f.dones[len(f.dones)-1]; done != nil {
		done(hci.Response{OpCode: f.last().OpCode(), Params: []byte{status}})
	}
}

func op(c hci.Command) int { return c.OpCode() }

type linkFailure struct {
	addr   bthost.BDAddr
	t      bthost.Transport
	status uint8
}

type roleEvent struct {
	role   bthost.Role
	status uint8
}

type fakeLinks struct {
	requests  []bthost.BDAddr
	refuse    bool
	up        []bthost.LinkInfo
	failed    []linkFailure
	down      []uint16
	known     bool
	switching []bthost.BDAddr
	roles     []roleEvent
	features  []bthost.FeaturePages
}

func (f *fakeLinks) ConnectRequest(addr bthost.BDAddr) bool {
	f.requests = append(f.requests, addr)
	return !f.refuse
}

func (f *fakeLinks) LinkUp(info bthost.LinkInfo) { f.up = append(f.up, info) }

func (f *fakeLinks) LinkFailed(addr bthost.BDAddr, t bthost.Transport, status uint8) {
	f.failed = append(f.failed, linkFailure{addr, t, status})
}

func (f *fakeLinks) LinkDown(handle uint16, reason uint8) bool {
	f.down = append(f.down, handle)
	return f.known
}

func (f *fakeLinks) RoleSwitching(addr bthost.BDAddr) { f.switching = append(f.switching, addr) }

func (f *fakeLinks) RoleChanged(addr bthost.BDAddr, role bthost.Role, status uint8) {
	f.roles = append(f.roles, roleEvent{role, status})
}

func (f *fakeLinks) RemoteFeatures(addr bthost.BDAddr, t bthost.Transport, p bthost.FeaturePages) {
	f.features = append(f.features, p)
}

type fakeSec struct {
	bthost.OpenSecurity
	down []bthost.BDAddr
}

func (s *fakeSec) LinkDown(addr bthost.BDAddr, t bthost.Transport) { s.down = append(s.down, addr) }

type fakeSCO struct {
	connected []uint16
	owned     bool
}

func (s *fakeSCO) Connected(addr bthost.BDAddr, handle uint16, status uint8) {
	s.connected = append(s.connected, handle)
}

func (s *fakeSCO) Removed(handle uint16, reason uint8) bool { return s.owned }

type env struct {
	m     *Manager
	ctrl  *fakeCtrl
	links *fakeLinks
	sec   *fakeSec
	sco   *fakeSCO
	clock *faketime.Scheduler
	cache bthost.FeatureCache
}

func newEnv(t *testing.T) *env {
	e := &env{
		ctrl:  &fakeCtrl{},
		links: &fakeLinks{known: true},
		sec:   &fakeSec{},
		sco:   &fakeSCO{},
		clock: faketime.New(),
		cache: cache.NewMemory(),
	}
	opts := DefaultOptions()
	opts.Records = 2
	e.m = New(e.ctrl, e.clock, opts)
	e.m.SetLinks(e.links)
	e.m.SetSecurityManager(e.sec)
	e.m.SetSCOManager(e.sco)
	e.m.SetFeatureCache(e.cache)
	return e
}

// up brings up an incoming BR/EDR link and clears the recorded commands.
func (e *env) up(t *testing.T, addr bthost.BDAddr, h uint16) *Record {
	e.m.ConnectionComplete(addr, h, hci.LinkTypeACL, 0, 0)
	r := e.m.FindByHandle(h)
	require.NotNil(t, r)
	e.ctrl.cmds, e.ctrl.dones = nil, nil
	return r
}

func TestConnectBREDR(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.m.Connect(peer, bthost.TransportBREDR))
	require.Len(t, e.ctrl.cmds, 1)
	c, ok := e.ctrl.last().(*cmd.CreateConnection)
	require.True(t, ok)
	assert.Equal(t, peer.LE(), c.BDADDR)
	assert.Equal(t, uint8(1), c.AllowRoleSwitch)

	r := e.m.Find(peer, bthost.TransportBREDR)
	require.NotNil(t, r)
	assert.Equal(t, StateConnecting, r.State)
	assert.Nil(t, e.m.FindByHandle(r.Handle))

	require.NoError(t, e.m.Connect(peer, bthost.TransportBREDR))
	assert.Len(t, e.ctrl.cmds, 1, "already connecting")

	e.ctrl.complete(0)
	e.m.ConnectionComplete(peer, handle, hci.LinkTypeACL, 0, 1)
	assert.Equal(t, StateConnected, r.State)
	assert.Equal(t, bthost.RoleMaster, r.Role)
	assert.True(t, r.Encrypted)
	assert.Equal(t, []bthost.LinkInfo{{Addr: peer, Handle: handle, Transport: bthost.TransportBREDR, Role: bthost.RoleMaster}}, e.links.up)
	assert.Equal(t, []int{
		op(&cmd.CreateConnection{}),
		op(&cmd.ReadRemoteVersionInformation{}),
		op(&cmd.WriteLinkSupervisionTimeout{}),
		op(&cmd.ReadRemoteSupportedFeatures{}),
	}, e.ctrl.ops())
}

func TestConnectLE(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.m.Connect(peer, bthost.TransportLE))
	c, ok := e.ctrl.last().(*cmd.LECreateConnection)
	require.True(t, ok)
	assert.Equal(t, peer.LE(), c.PeerAddress)
	assert.Equal(t, DefaultOptions().LEParams.SupervisionTimeout, c.SupervisionTimeout)

	p := bthost.ConnParams{IntervalMin: 0x18, IntervalMax: 0x18, SupervisionTimeout: 0x48}
	e.m.LEConnectionComplete(peer, handle, 0, bthost.RoleMaster, p)
	require.Len(t, e.links.up, 1)
	assert.Equal(t, p, e.links.up[0].Params)
	assert.Equal(t, []int{op(&cmd.LECreateConnection{}), op(&cmd.ReadRemoteVersionInformation{})}, e.ctrl.ops())
}

func TestConnectRefused(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.m.Connect(peer, bthost.TransportBREDR))
	e.ctrl.complete(uint8(hci.ErrDisallowed))
	assert.Equal(t, []linkFailure{{peer, bthost.TransportBREDR, 0x0C}}, e.links.failed)
	assert.Zero(t, e.m.Count())
}

func TestConnectNotSent(t *testing.T) {
	e := newEnv(t)
	e.ctrl.err = errors.New("closed")
	assert.Error(t, e.m.Connect(peer, bthost.TransportBREDR))
	assert.Zero(t, e.m.Count())
}

func TestConnectionCompleteFailure(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.m.Connect(peer, bthost.TransportBREDR))
	e.m.ConnectionComplete(peer, 0, hci.LinkTypeACL, uint8(hci.ErrPageTimeout), 0)
	assert.Equal(t, []linkFailure{{peer, bthost.TransportBREDR, 0x04}}, e.links.failed)
	assert.Zero(t, e.m.Count())
	assert.Empty(t, e.links.up)
}

func TestIncomingConnection(t *testing.T) {
	e := newEnv(t)
	e.m.ConnectionRequest(peer, hci.LinkTypeSCO)
	assert.Empty(t, e.ctrl.cmds)

	e.m.ConnectionRequest(peer, hci.LinkTypeACL)
	c, ok := e.ctrl.last().(*cmd.AcceptConnectionRequest)
	require.True(t, ok)
	assert.Equal(t, uint8(bthost.RoleSlave), c.Role)
	assert.Equal(t, []bthost.BDAddr{peer}, e.links.requests)

	e.m.ConnectionComplete(peer, handle, hci.LinkTypeACL, 0, 0)
	require.Len(t, e.links.up, 1)
	assert.Equal(t, bthost.RoleSlave, e.links.up[0].Role)
	assert.NotContains(t, e.ctrl.ops(), op(&cmd.WriteLinkSupervisionTimeout{}), "slave leaves supervision timeout alone")
}

func TestIncomingConnectionRejected(t *testing.T) {
	t.Run("no link", func(t *testing.T) {
		e := newEnv(t)
		e.links.refuse = true
		e.m.ConnectionRequest(peer, hci.LinkTypeACL)
		c, ok := e.ctrl.last().(*cmd.RejectConnectionRequest)
		require.True(t, ok)
		assert.Equal(t, peer.LE(), c.BDADDR)
		assert.Equal(t, uint8(hci.ErrLimitedResource), c.Reason)
	})

	t.Run("no record", func(t *testing.T) {
		e := newEnv(t)
		e.up(t, peer, handle)
		e.up(t, peer2, handle+1)
		e.m.ConnectionRequest(peer3, hci.LinkTypeACL)
		_, ok := e.ctrl.last().(*cmd.RejectConnectionRequest)
		assert.True(t, ok)
		assert.Empty(t, e.links.requests, "links are not asked")
	})
}

func TestDuplicateConnectionComplete(t *testing.T) {
	e := newEnv(t)
	r := e.up(t, peer, handle)
	e.m.ConnectionComplete(peer, handle, hci.LinkTypeACL, 0, 1)
	assert.Len(t, e.links.up, 1)
	assert.True(t, r.Encrypted)
	assert.Empty(t, e.ctrl.cmds)
	assert.Equal(t, 1, e.m.Count())
}

func TestNoFreeRecord(t *testing.T) {
	e := newEnv(t)
	e.up(t, peer, 0x0040)
	e.up(t, peer2, 0x0041)
	e.m.ConnectionComplete(bthost.MustParseBDAddr("01:02:03:04:05:06"), 0x0042, hci.LinkTypeACL, 0, 0)
	d, ok := e.ctrl.last().(*cmd.Disconnect)
	require.True(t, ok)
	assert.Equal(t, uint16(0x0042), d.ConnectionHandle)
	assert.Len(t, e.links.up, 2)
}

func TestSCOConnection(t *testing.T) {
	e := newEnv(t)
	e.m.ConnectionComplete(peer, 0x0080, hci.LinkTypeESCO, 0, 0)
	assert.Equal(t, []uint16{0x0080}, e.sco.connected)
	assert.Empty(t, e.links.up)
	assert.Zero(t, e.m.Count())
}

func TestDisconnectionComplete(t *testing.T) {
	e := newEnv(t)
	e.up(t, peer, handle)

	e.m.DisconnectionComplete(handle, uint8(hci.ErrDisallowed), 0)
	assert.Empty(t, e.links.down, "failed disconnection changes nothing")

	e.m.DisconnectionComplete(handle, 0, 0x13)
	assert.Equal(t, []uint16{handle}, e.links.down)
	assert.Equal(t, []bthost.BDAddr{peer}, e.sec.down)
	assert.Zero(t, e.m.Count())
}

func TestDisconnectionCompleteSCO(t *testing.T) {
	e := newEnv(t)
	e.links.known = false
	e.sco.owned = true
	e.m.DisconnectionComplete(0x0080, 0, 0x13)
	assert.Equal(t, []uint16{0x0080}, e.links.down, "l2cap asked first")
	assert.Empty(t, e.sec.down)
}

func TestRemoved(t *testing.T) {
	e := newEnv(t)
	e.up(t, peer, handle)
	e.m.Removed(peer, bthost.TransportBREDR)
	e.m.Removed(peer, bthost.TransportBREDR)
	assert.Zero(t, e.m.Count())
	assert.Len(t, e.m.free, 2, "release is idempotent")
}

func TestDeviceDown(t *testing.T) {
	e := newEnv(t)
	e.up(t, peer, 0x0040)
	require.NoError(t, e.m.Connect(peer2, bthost.TransportLE))
	e.m.DeviceDown()
	assert.Zero(t, e.m.Count())
}

func TestRemoteVersion(t *testing.T) {
	e := newEnv(t)
	r := e.up(t, peer, handle)
	v := RemoteVersion{Version: 0x0B, Manufacturer: 0x000F, Subversion: 0x1234}
	e.m.RemoteVersion(handle, 0, v)
	assert.Equal(t, v, r.Version)
}

var extBit = [8]byte{7: 0x80}

func TestFeaturePages(t *testing.T) {
	e := newEnv(t)
	e.m.SetLocalFeatures(extBit)
	r := e.up(t, peer, handle)

	e.m.RemoteFeaturesComplete(handle, 0, extBit)
	c, ok := e.ctrl.last().(*cmd.ReadRemoteExtendedFeatures)
	require.True(t, ok)
	assert.Equal(t, uint8(1), c.PageNumber)

	e.m.RemoteExtFeaturesComplete(handle, 0, 1, 3, [8]byte{0: 0x01})
	c = e.ctrl.last().(*cmd.ReadRemoteExtendedFeatures)
	assert.Equal(t, uint8(2), c.PageNumber)
	assert.Equal(t, 2, r.maxPage, "capped")

	e.m.RemoteExtFeaturesComplete(handle, 0, 2, 3, [8]byte{0: 0x02})
	assert.Len(t, e.ctrl.cmds, 2)
	require.Len(t, e.links.features, 1)
	want := bthost.FeaturePages{Pages: [3][8]byte{extBit, {0: 0x01}, {0: 0x02}}, Valid: 3}
	assert.Equal(t, want, e.links.features[0])
	assert.True(t, r.FeaturesDone)

	cached, err := e.cache.Load(peer)
	require.NoError(t, err)
	assert.Equal(t, want, cached)
}

func TestFeaturePageFailureKeepsPages(t *testing.T) {
	e := newEnv(t)
	e.m.SetLocalFeatures(extBit)
	e.up(t, peer, handle)

	e.m.RemoteFeaturesComplete(handle, 0, extBit)
	e.m.RemoteExtFeaturesComplete(handle, uint8(hci.ErrUnsupportedRemote), 1, 0, [8]byte{})
	require.Len(t, e.links.features, 1)
	assert.Equal(t, 1, e.links.features[0].Valid)

	e.m.RemoteExtFeaturesComplete(handle, 0, 1, 1, [8]byte{})
	assert.Len(t, e.links.features, 1, "sequence already done")
}

func TestFeaturePageCommandRefused(t *testing.T) {
	e := newEnv(t)
	e.m.SetLocalFeatures(extBit)
	e.m.ConnectionComplete(peer, handle, hci.LinkTypeACL, 0, 0)
	e.ctrl.complete(uint8(hci.ErrConnID))
	require.Len(t, e.links.features, 1)
	assert.Zero(t, e.links.features[0].Valid)
}

func TestFeaturesWithoutLocalExtSupport(t *testing.T) {
	e := newEnv(t)
	e.up(t, peer, handle)
	e.m.RemoteFeaturesComplete(handle, 0, extBit)
	assert.Empty(t, e.ctrl.cmds)
	require.Len(t, e.links.features, 1)
	assert.Equal(t, 1, e.links.features[0].Valid)
}

func TestCachedFeaturesPreloaded(t *testing.T) {
	e := newEnv(t)
	f := bthost.FeaturePages{Pages: [3][8]byte{{0: 0xFF}}, Valid: 1}
	require.NoError(t, e.cache.Store(peer, f))
	r := e.up(t, peer, handle)
	assert.Equal(t, f, r.Features)
	assert.False(t, r.FeaturesDone)
}

func TestRoleSwitch(t *testing.T) {
	e := newEnv(t)
	var heard []roleEvent
	e.m.SetRoleSwitchListener(func(addr bthost.BDAddr, role bthost.Role, status uint8) {
		heard = append(heard, roleEvent{role, status})
	})
	r := e.up(t, peer, handle)
	require.Equal(t, bthost.RoleSlave, r.Role)

	require.NoError(t, e.m.SwitchRole(peer, bthost.RoleSlave), "already slave")
	assert.Empty(t, e.ctrl.cmds)

	require.NoError(t, e.m.SwitchRole(peer, bthost.RoleMaster))
	assert.Equal(t, []bthost.BDAddr{peer}, e.links.switching)
	assert.Equal(t, StateRoleSwitching, r.State)
	c, ok := e.ctrl.last().(*cmd.SwitchRole)
	require.True(t, ok)
	assert.Equal(t, uint8(bthost.RoleMaster), c.Role)
	assert.Error(t, e.m.SwitchRole(peer, bthost.RoleMaster), "one at a time")

	e.ctrl.complete(0)
	e.m.RoleChange(peer, 0, bthost.RoleMaster)
	assert.Equal(t, []roleEvent{{bthost.RoleMaster, 0}}, e.links.roles)
	assert.Equal(t, e.links.roles, heard)
	assert.Equal(t, StateConnected, r.State)
	assert.Empty(t, e.clock.Pending())
}

func TestRoleSwitchFromSniffEncrypted(t *testing.T) {
	e := newEnv(t)
	r := e.up(t, peer, handle)
	e.m.EncryptionChange(handle, 0, 1)
	e.m.ModeChange(handle, 0, hci.ModeSniff)
	require.True(t, r.Encrypted)

	require.NoError(t, e.m.SwitchRole(peer, bthost.RoleMaster))
	_, ok := e.ctrl.last().(*cmd.ExitSniffMode)
	require.True(t, ok)

	e.m.ModeChange(handle, 0, hci.ModeActive)
	enc, ok := e.ctrl.last().(*cmd.SetConnectionEncryption)
	require.True(t, ok)
	assert.Zero(t, enc.EncryptionEnable)

	e.m.EncryptionChange(handle, 0, 0)
	_, ok = e.ctrl.last().(*cmd.SwitchRole)
	require.True(t, ok)

	e.m.RoleChange(peer, 0, bthost.RoleMaster)
	enc, ok = e.ctrl.last().(*cmd.SetConnectionEncryption)
	require.True(t, ok)
	assert.Equal(t, uint8(1), enc.EncryptionEnable)
	assert.Empty(t, e.links.roles, "reported once encryption is back")

	e.m.EncryptionChange(handle, 0, 1)
	assert.Equal(t, []roleEvent{{bthost.RoleMaster, 0}}, e.links.roles)
	assert.True(t, r.Encrypted)
	assert.Len(t, e.ctrl.cmds, 4)
}

func TestRoleSwitchRefused(t *testing.T) {
	e := newEnv(t)
	e.up(t, peer, handle)
	require.NoError(t, e.m.SwitchRole(peer, bthost.RoleMaster))
	e.ctrl.complete(uint8(hci.ErrRoleChangeNotAllowed))
	assert.Equal(t, []roleEvent{{bthost.RoleSlave, 0x21}}, e.links.roles)

	require.NoError(t, e.m.SwitchRole(peer, bthost.RoleMaster), "idle again")
}

func TestRoleSwitchFailureRestoresEncryption(t *testing.T) {
	e := newEnv(t)
	e.up(t, peer, handle)
	e.m.EncryptionChange(handle, 0, 1)

	require.NoError(t, e.m.SwitchRole(peer, bthost.RoleMaster))
	e.m.EncryptionChange(handle, 0, 0)
	e.ctrl.complete(uint8(hci.ErrRoleSwitchFailed))

	enc, ok := e.ctrl.last().(*cmd.SetConnectionEncryption)
	require.True(t, ok)
	assert.Equal(t, uint8(1), enc.EncryptionEnable)
	assert.Equal(t, []roleEvent{{bthost.RoleSlave, 0x35}}, e.links.roles)
}

func TestRoleSwitchTimeout(t *testing.T) {
	e := newEnv(t)
	r := e.up(t, peer, handle)
	require.NoError(t, e.m.SwitchRole(peer, bthost.RoleMaster))

	e.clock.Advance(roleSwitchTimeout - time.Millisecond)
	assert.Empty(t, e.links.roles)
	e.clock.Advance(time.Millisecond)
	assert.Equal(t, []roleEvent{{bthost.RoleSlave, uint8(hci.ErrHostTimeout)}}, e.links.roles)
	assert.Equal(t, StateConnected, r.State)

	e.m.RoleChange(peer, 0, bthost.RoleMaster)
	assert.Len(t, e.links.roles, 2, "late change reported as unsolicited")
}

func TestRoleSwitchNotConnected(t *testing.T) {
	e := newEnv(t)
	assert.True(t, errors.Cause(e.m.SwitchRole(peer, bthost.RoleMaster)) == bthost.ErrNotConnected)

	e.up(t, peer, handle)
	e.m.ModeChange(handle, 0, hci.ModeHold)
	assert.True(t, errors.Cause(e.m.SwitchRole(peer, bthost.RoleMaster)) == bthost.ErrBadState)
}

func TestUnsolicitedRoleChange(t *testing.T) {
	e := newEnv(t)
	r := e.up(t, peer, handle)
	e.m.RoleChange(peer, 0, bthost.RoleMaster)
	assert.Equal(t, bthost.RoleMaster, r.Role)
	assert.Equal(t, []roleEvent{{bthost.RoleMaster, 0}}, e.links.roles)
}

func TestSetLinkPolicy(t *testing.T) {
	e := newEnv(t)
	r := e.up(t, peer, handle)
	require.NoError(t, e.m.SetLinkPolicy(peer, 0x0005))
	c, ok := e.ctrl.last().(*cmd.WriteLinkPolicySettings)
	require.True(t, ok)
	assert.Equal(t, handle, c.ConnectionHandle)
	assert.Zero(t, r.LinkPolicy)
	e.ctrl.complete(0)
	assert.Equal(t, uint16(0x0005), r.LinkPolicy)

	assert.Error(t, e.m.SetLinkPolicy(peer2, 0x0005))
}
