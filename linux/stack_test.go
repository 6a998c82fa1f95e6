package linux

import (
	"context"
	"encoding/binary"
	"net"
	"testing"
	"time"

	"github.com/rigado/bthost"
	"github.com/rigado/bthost/linux/hci/cmd"
	"github.com/rigado/bthost/linux/l2cap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	localAddr = bthost.MustParseBDAddr("00:1A:7D:DA:71:13")
	peer      = bthost.MustParseBDAddr("AA:BB:CC:DD:EE:FF")
	peerLE    = []byte{0xFF, 0xEE, 0xDD, 0xCC, 0xBB, 0xAA}
)

const wait = 2 * time.Second

func opOf(c interface{ OpCode() int }) int { return c.OpCode() }

// statusOnly are the commands a controller answers with Command Status.
var statusOnly = map[int]bool{
	opOf(&cmd.CreateConnection{}):             true,
	opOf(&cmd.Disconnect{}):                   true,
	opOf(&cmd.ReadRemoteSupportedFeatures{}):  true,
	opOf(&cmd.ReadRemoteExtendedFeatures{}):   true,
	opOf(&cmd.ReadRemoteVersionInformation{}): true,
	opOf(&cmd.LECreateConnection{}):           true,
	opOf(&cmd.LEConnectionUpdate{}):           true,
}

// controller answers every command successfully over the far end of a
// pipe and records the ACL packets the host writes.
type controller struct {
	conn net.Conn
	cmds chan int
	acl  chan []byte
}

func newController() (*controller, net.Conn) {
	host, far := net.Pipe()
	c := &controller{
		conn: far,
		cmds: make(chan int, 256),
		acl:  make(chan []byte, 64),
	}
	go c.run()
	return c, host
}

func (c *controller) run() {
	b := make([]byte, 4096)
	for {
		n, err := c.conn.Read(b)
		if err != nil {
			return
		}
		p := append([]byte(nil), b[:n]...)
		switch p[0] {
		case 0x01:
			op := int(binary.LittleEndian.Uint16(p[1:]))
			c.cmds <- op
			c.answer(op)
		case 0x02:
			c.acl <- p
		}
	}
}

func (c *controller) answer(op int) {
	if statusOnly[op] {
		c.event(0x0F, 0x00, 0x01, byte(op), byte(op>>8))
		return
	}
	rp := []byte{0x00}
	switch op {
	case opOf(&cmd.ReadBDADDR{}):
		a := localAddr.LE()
		rp = append(rp, a[:]...)
	case opOf(&cmd.ReadLocalSupportedFeatures{}):
		rp = append(rp, 0xFF, 0xFF, 0x8F, 0xFE, 0xDB, 0xFF, 0x5B, 0x87)
	case opOf(&cmd.ReadBufferSize{}):
		rp = append(rp, 0xFD, 0x03, 0x40, 0x08, 0x00, 0x00, 0x00)
	case opOf(&cmd.LEReadBufferSize{}):
		rp = append(rp, 0xFB, 0x00, 0x04)
	}
	c.event(0x0E, append([]byte{0x01, byte(op), byte(op >> 8)}, rp...)...)
}

func (c *controller) event(code byte, params ...byte) {
	c.conn.Write(append([]byte{0x04, code, byte(len(params))}, params...))
}

func (c *controller) leConnected(handle uint16) {
	b := []byte{0x01, 0x00, byte(handle), byte(handle >> 8), 0x01, 0x00}
	b = append(b, peerLE...)
	b = append(b, 0x18, 0x00, 0x00, 0x00, 0x48, 0x00, 0x00)
	c.event(0x3E, b...)
}

// ops drains the opcodes received so far.
func (c *controller) ops() []int {
	var out []int
	for {
		select {
		case op := <-c.cmds:
			out = append(out, op)
		default:
			return out
		}
	}
}

type fixedEvent struct {
	connected bool
	reason    uint8
}

func startStack(t *testing.T, opts ...bthost.Option) (*Stack, *controller, chan bool) {
	status := make(chan bool, 8)
	opts = append(opts, bthost.OptDeviceStatusHandler(func(up bool) { status <- up }))
	s, err := NewStack(opts...)
	require.NoError(t, err)

	c, host := newController()
	ctx, cancel := context.WithTimeout(context.Background(), wait)
	defer cancel()
	require.NoError(t, s.start(ctx, host))
	t.Cleanup(func() { s.Close() })
	return s, c, status
}

func recvBool(t *testing.T, ch chan bool) bool {
	select {
	case v := <-ch:
		return v
	case <-time.After(wait):
		t.Fatal("timed out")
		return false
	}
}

func TestStackStart(t *testing.T) {
	s, c, status := startStack(t)
	assert.True(t, recvBool(t, status))

	info, err := s.Info(context.Background())
	require.NoError(t, err)
	assert.Equal(t, localAddr, info.Addr)
	assert.Equal(t, localAddr, s.Addr())
	assert.Equal(t, 1021, info.ACLBufferSize)
	assert.Equal(t, 8, info.ACLBuffers)
	assert.Equal(t, 251, info.LEBufferSize)
	assert.Equal(t, 4, info.LEBuffers)

	ops := c.ops()
	require.NotEmpty(t, ops)
	assert.Equal(t, opOf(&cmd.Reset{}), ops[0])
	assert.Equal(t, opOf(&cmd.WriteLEHostSupport{}), ops[len(ops)-1])

	require.NoError(t, s.Close())
	assert.False(t, recvBool(t, status))
	assert.Equal(t, bthost.ErrClosed, s.Register(context.Background(), 0x0001, l2cap.Registration{}))
}

func TestStackOptionsAfterStart(t *testing.T) {
	s, _, _ := startStack(t)
	assert.Error(t, s.SetPoolSizes(1, 1, 1))
	assert.Error(t, s.SetTransportH4Uart("/dev/ttyS0"))
}

func TestStackLEFixedChannel(t *testing.T) {
	s, c, _ := startStack(t)
	ctx := context.Background()

	conn := make(chan fixedEvent, 4)
	data := make(chan []byte, 4)
	require.NoError(t, s.RegisterFixed(ctx, l2cap.CIDATT, l2cap.FixedCallbacks{
		Connected: func(cid uint16, addr bthost.BDAddr, connected bool, reason uint8, tr bthost.Transport) {
			conn <- fixedEvent{connected, reason}
		},
		DataInd: func(cid uint16, addr bthost.BDAddr, p []byte) {
			data <- p
		},
	}))

	c.leConnected(0x0041)
	select {
	case e := <-conn:
		assert.True(t, e.connected)
	case <-time.After(wait):
		t.Fatal("no connected event")
	}

	c.conn.Write([]byte{0x02, 0x41, 0x20, 0x07, 0x00, 0x03, 0x00, 0x04, 0x00, 0x0A, 0x01, 0x00})
	select {
	case p := <-data:
		assert.Equal(t, []byte{0x0A, 0x01, 0x00}, p)
	case <-time.After(wait):
		t.Fatal("no data")
	}

	assert.Equal(t, l2cap.WriteSuccess, s.FixedDataWrite(ctx, l2cap.CIDATT, peer, []byte{0x0B, 0x42}))
	select {
	case p := <-c.acl:
		assert.Equal(t, []byte{0x02, 0x41, 0x00, 0x06, 0x00, 0x02, 0x00, 0x04, 0x00, 0x0B, 0x42}, p)
	case <-time.After(wait):
		t.Fatal("nothing written")
	}
	c.event(0x13, 0x01, 0x41, 0x00, 0x01, 0x00)

	c.event(0x05, 0x00, 0x41, 0x00, 0x13)
	select {
	case e := <-conn:
		assert.Equal(t, fixedEvent{false, 0x13}, e)
	case <-time.After(wait):
		t.Fatal("no disconnected event")
	}
	assert.Equal(t, l2cap.WriteFailed, s.FixedDataWrite(ctx, l2cap.CIDATT, peer, []byte{0x0B}))
}

func TestStackHardwareError(t *testing.T) {
	s, c, status := startStack(t)
	require.True(t, recvBool(t, status))
	ctx := context.Background()

	conn := make(chan fixedEvent, 4)
	require.NoError(t, s.RegisterFixed(ctx, l2cap.CIDATT, l2cap.FixedCallbacks{
		Connected: func(cid uint16, addr bthost.BDAddr, connected bool, reason uint8, tr bthost.Transport) {
			conn <- fixedEvent{connected, reason}
		},
	}))
	c.leConnected(0x0041)
	select {
	case <-conn:
	case <-time.After(wait):
		t.Fatal("no connected event")
	}
	c.ops()

	c.event(0x10, 0x01)
	assert.False(t, recvBool(t, status))
	select {
	case e := <-conn:
		assert.Equal(t, fixedEvent{false, 0x03}, e)
	case <-time.After(wait):
		t.Fatal("no disconnected event")
	}
	assert.True(t, recvBool(t, status), "reinitialised")
	ops := c.ops()
	require.NotEmpty(t, ops)
	assert.Equal(t, opOf(&cmd.Reset{}), ops[0])
}

func TestStackTransportClosed(t *testing.T) {
	errs := make(chan error, 1)
	_, c, status := startStack(t, bthost.OptErrorHandler(func(err error) { errs <- err }))
	require.True(t, recvBool(t, status))

	c.conn.Close()
	assert.False(t, recvBool(t, status))
	select {
	case err := <-errs:
		assert.Error(t, err)
	case <-time.After(wait):
		t.Fatal("no error reported")
	}
}
