package l2cap

import (
	"encoding/binary"
	"testing"

	"github.com/rigado/bthost"
	"github.com/rigado/bthost/internal/faketime"
	"github.com/rigado/bthost/linux/hci"
	"github.com/rigado/bthost/linux/hci/cmd"
	"github.com/stretchr/testify/require"
)

var (
	peer   = bthost.MustParseBDAddr("AA:BB:CC:DD:EE:FF")
	peer2  = bthost.MustParseBDAddr("11:22:33:44:55:66")
	handle = uint16(0x0040)
)

// fakeCtrl records what L2CAP hands to the controller. Fragmentation is
// the identity so every written packet is one L2CAP PDU.
type fakeCtrl struct {
	cmds    []hci.Command
	dones   []hci.CompleteFunc
	pkts    [][]byte
	dropped []uint16

	bufs   int
	leBufs int
	shared bool
	cmdErr error
}

func (f *fakeCtrl) SendCommand(c hci.Command, done hci.CompleteFunc) error {
	if f.cmdErr != nil {
		return f.cmdErr
	}
	f.cmds = append(f.cmds, c)
	f.dones = append(f.dones, done)
	return nil
}

func (f *fakeCtrl) FragmentACL(handle uint16, t bthost.Transport, p []byte) ([][]byte, error) {
	return [][]byte{p}, nil
}

func (f *fakeCtrl) WritePacket(b []byte) error {
	f.pkts = append(f.pkts, append([]byte(nil), b...))
	return nil
}

func (f *fakeCtrl) BufferSize(t bthost.Transport) (int, int) {
	if t == bthost.TransportLE && !f.shared {
		return 251, f.leBufs
	}
	return 1021, f.bufs
}

func (f *fakeCtrl) SharedLEBuffers() bool { return f.shared }

func (f *fakeCtrl) DropACL(handle uint16) { f.dropped = append(f.dropped, handle) }

// disconnects returns the HCI Disconnect commands sent so far.
func (f *fakeCtrl) disconnects() []*cmd.Disconnect {
	var out []*cmd.Disconnect
	for _, c := range f.cmds {
		if d, ok := c.(*cmd.Disconnect); ok {
			out = append(out, d)
		}
	}
	return out
}

// pdu is a written packet split into its header fields.
type pdu struct {
	cid     uint16
	payload []byte
}

func (f *fakeCtrl) pdusSince(n int) []pdu {
	var out []pdu
	for _, p := range f.pkts[n:] {
		out = append(out, pdu{cid: binary.LittleEndian.Uint16(p[2:]), payload: p[hdrLen:]})
	}
	return out
}

// sigsSince returns the signalling commands written from packet n on.
func (f *fakeCtrl) sigsSince(t *testing.T, n int) []sigCmd {
	var out []sigCmd
	for _, p := range f.pdusSince(n) {
		if p.cid != CIDSignalling && p.cid != CIDLESignalling {
			continue
		}
		cmds, err := splitCommands(p.payload)
		require.NoError(t, err)
		out = append(out, cmds...)
	}
	return out
}

type fakeLinks struct {
	connects []bthost.BDAddr
	removed  []bthost.BDAddr
	err      error
}

func (f *fakeLinks) Connect(addr bthost.BDAddr, t bthost.Transport) error {
	if f.err != nil {
		return f.err
	}
	f.connects = append(f.connects, addr)
	return nil
}

func (f *fakeLinks) Removed(addr bthost.BDAddr, t bthost.Transport) {
	f.removed = append(f.removed, addr)
}

type env struct {
	l     *L2CAP
	ctrl  *fakeCtrl
	links *fakeLinks
	clock *faketime.Scheduler
}

func newEnv(t *testing.T, mod ...func(*Options)) *env {
	opts := DefaultOptions()
	for _, m := range mod {
		m(&opts)
	}
	e := &env{
		ctrl:  &fakeCtrl{bufs: 64, leBufs: 64},
		links: &fakeLinks{},
		clock: faketime.New(),
	}
	e.l = New(e.ctrl, e.links, e.clock, opts)
	e.l.SetBuffers()
	return e
}

// mark returns the number of packets written so far.
func (e *env) mark() int { return len(e.ctrl.pkts) }

// linkUp brings up a link and, for BR/EDR, ends the information exchange
// with a command reject.
func (e *env) linkUp(t *testing.T, addr bthost.BDAddr, h uint16, tr bthost.Transport, role bthost.Role) *lcb {
	e.l.LinkUp(bthost.LinkInfo{Addr: addr, Handle: h, Transport: tr, Role: role})
	lk := e.l.findLCBByHandle(h)
	require.NotNil(t, lk)
	if tr == bthost.TransportBREDR {
		e.recv(h, CIDSignalling, lk.infoID, &CommandReject{Reason: RejectNotUnderstood})
		require.False(t, lk.w4Info)
	}
	return lk
}

// recv delivers one signalling command from the peer.
func (e *env) recv(h uint16, cid uint16, id uint8, s Signal) {
	e.l.HandleACL(h, buildSignal(cid, id, s))
}

// recvRaw delivers a PDU carrying payload on cid.
func (e *env) recvRaw(h uint16, cid uint16, payload []byte) {
	e.l.HandleACL(h, buildPDU(cid, payload))
}

// recorder collects channel callbacks.
type recorder struct {
	connectInd    []uint16
	connectCfm    []uint16
	configInd     []ConfigInfo
	configCfm     []ConfigInfo
	disconnectInd []uint16
	disconnectCfm []uint16
	data          [][]byte
	congestion    []bool
	ids           []uint8
}

func (r *recorder) callbacks() Callbacks {
	return Callbacks{
		ConnectInd: func(addr bthost.BDAddr, lcid, psm uint16, id uint8) {
			r.connectInd = append(r.connectInd, lcid)
			r.ids = append(r.ids, id)
		},
		ConnectCfm: func(lcid, result uint16) {
			r.connectCfm = append(r.connectCfm, result)
		},
		ConfigInd: func(lcid uint16, cfg *ConfigInfo) {
			r.configInd = append(r.configInd, *cfg)
		},
		ConfigCfm: func(lcid uint16, cfg *ConfigInfo) {
			r.configCfm = append(r.configCfm, *cfg)
		},
		DisconnectInd: func(lcid uint16, ack bool) {
			r.disconnectInd = append(r.disconnectInd, lcid)
		},
		DisconnectCfm: func(lcid, result uint16) {
			r.disconnectCfm = append(r.disconnectCfm, result)
		},
		DataInd: func(lcid uint16, p []byte) {
			r.data = append(r.data, append([]byte(nil), p...))
		},
		Congestion: func(lcid uint16, congested bool) {
			r.congestion = append(r.congestion, congested)
		},
	}
}

// openChannel runs an incoming BR/EDR channel to Open on psm 0x0001 with
// the peer using scid as its CID.
func (e *env) openChannel(t *testing.T, lk *lcb, scid uint16, rec *recorder) *ccb {
	if e.l.regs[0x0001] == nil {
		require.NoError(t, e.l.Register(0x0001, Registration{Callbacks: rec.callbacks()}))
	}
	e.recv(lk.handle, CIDSignalling, 0x20, &ConnectionRequest{PSM: 0x0001, SourceCID: scid})
	c := lk.findCCBByRemoteCID(scid)
	require.NotNil(t, c)
	require.NoError(t, e.l.ConnectRsp(lk.addr, 0x20, c.localCID, ConnOK, ConnStatusNone))
	require.Equal(t, ChanConfig, c.state)

	e.recv(lk.handle, CIDSignalling, 0x21, &ConfigurationRequest{DestinationCID: c.localCID})
	e.recv(lk.handle, CIDSignalling, c.localID, &ConfigurationResponse{SourceCID: c.localCID, Result: CfgOK})
	require.Equal(t, ChanOpen, c.state)
	return c
}
