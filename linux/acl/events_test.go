package acl

import (
	"testing"

	"github.com/rigado/bthost"
	"github.com/rigado/bthost/linux/hci"
	"github.com/rigado/bthost/linux/hci/evt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dispatcher struct {
	events map[int]hci.HandlerFn
	meta   map[int]hci.HandlerFn
}

func (d *dispatcher) Handle(code int, fn hci.HandlerFn) { d.events[code] = fn }
func (d *dispatcher) HandleLEMeta(subcode int, fn hci.HandlerFn) { d.meta[subcode] = fn }

func bind(e *env) *dispatcher {
	d := &dispatcher{events: map[int]hci.HandlerFn{}, meta: map[int]hci.HandlerFn{}}
	e.m.Bind(d)
	return d
}

var peerLE = []byte{0xFF, 0xEE, 0xDD, 0xCC, 0xBB, 0xAA}

func TestBindConnectionEvents(t *testing.T) {
	e := newEnv(t)
	d := bind(e)

	b := append([]byte{0x00, 0x40, 0x20}, peerLE...)
	b = append(b, hci.LinkTypeACL, 0x01)
	require.NoError(t, d.events[evt.ConnectionCompleteCode](b))
	require.Len(t, e.links.up, 1)
	assert.Equal(t, peer, e.links.up[0].Addr)
	assert.Equal(t, handle, e.links.up[0].Handle, "flag bits masked")
	r := e.m.FindByHandle(handle)
	require.NotNil(t, r)
	assert.True(t, r.Encrypted)

	require.NoError(t, d.events[evt.ModeChangeCode]([]byte{0x00, 0x40, 0x00, hci.ModeSniff, 0x20, 0x00}))
	assert.Equal(t, uint8(hci.ModeSniff), r.Mode)

	require.NoError(t, d.events[evt.RoleChangeCode](append(append([]byte{0x00}, peerLE...), 0x00)))
	assert.Equal(t, bthost.RoleMaster, r.Role)

	require.NoError(t, d.events[evt.DisconnectionCompleteCode]([]byte{0x00, 0x40, 0x00, 0x13}))
	assert.Equal(t, []uint16{handle}, e.links.down)
	assert.Zero(t, e.m.Count())
}

func TestBindShortEvent(t *testing.T) {
	e := newEnv(t)
	d := bind(e)
	assert.Error(t, d.events[evt.ConnectionCompleteCode]([]byte{0x00, 0x40}))
	assert.Error(t, d.events[evt.DisconnectionCompleteCode]([]byte{0x00}))
	assert.Empty(t, e.links.up)
	assert.Empty(t, e.links.down)
}

func TestBindConnectionRequest(t *testing.T) {
	e := newEnv(t)
	d := bind(e)
	b := append(append([]byte{}, peerLE...), 0x0C, 0x01, 0x5A, hci.LinkTypeACL)
	require.NoError(t, d.events[evt.ConnectionRequestCode](b))
	require.Len(t, e.ctrl.cmds, 1)
}

func TestBindLEConnectionComplete(t *testing.T) {
	e := newEnv(t)
	d := bind(e)
	b := []byte{evt.LEConnectionCompleteSubCode, 0x00, 0x41, 0x00, 0x01, 0x00}
	b = append(b, peerLE...)
	b = append(b, 0x18, 0x00, 0x00, 0x00, 0x48, 0x00, 0x00)
	require.NoError(t, d.meta[evt.LEConnectionCompleteSubCode](b))
	require.Len(t, e.links.up, 1)
	info := e.links.up[0]
	assert.Equal(t, bthost.TransportLE, info.Transport)
	assert.Equal(t, bthost.RoleSlave, info.Role)
	assert.Equal(t, uint16(0x0041), info.Handle)
	assert.Equal(t, bthost.ConnParams{IntervalMin: 0x18, IntervalMax: 0x18, SupervisionTimeout: 0x48}, info.Params)
}

func TestBindRemoteFeatures(t *testing.T) {
	e := newEnv(t)
	d := bind(e)
	e.up(t, peer, handle)
	b := append([]byte{0x00, 0x40, 0x00}, 0xFF, 0, 0, 0, 0, 0, 0, 0)
	require.NoError(t, d.events[evt.ReadRemoteSupportedFeaturesCompleteCode](b))
	require.Len(t, e.links.features, 1)
	assert.Equal(t, [8]byte{0: 0xFF}, e.links.features[0].Pages[0])
}
