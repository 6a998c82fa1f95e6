package hci

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/rigado/bthost"
	"github.com/rigado/bthost/linux/hci/cmd"
	"github.com/rigado/bthost/linux/hci/evt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capture struct {
	pkts [][]byte
	err  error
}

func (c *capture) Write(b []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	c.pkts = append(c.pkts, append([]byte(nil), b...))
	return len(b), nil
}

func commandComplete(credits byte, op int, rp ...byte) []byte {
	p := append([]byte{credits, byte(op), byte(op >> 8)}, rp...)
	return append([]byte{PktTypeEvent, evt.CommandCompleteCode, byte(len(p))}, p...)
}

func commandStatus(status, credits byte, op int) []byte {
	return []byte{PktTypeEvent, evt.CommandStatusCode, 4, status, credits, byte(op), byte(op >> 8)}
}

func TestCommandCompletionsAreFIFOPerOpcode(t *testing.T) {
	w := &capture{}
	h := New(w, nil)
	h.setAllowedCommands(4)

	var order []int
	d := &cmd.Disconnect{ConnectionHandle: 0x40, Reason: 0x13}
	require.NoError(t, h.SendCommand(d, func(r Response) {
		require.NoError(t, r.Err())
		order = append(order, 1)
	}))
	d2 := &cmd.Disconnect{ConnectionHandle: 0x41, Reason: 0x13}
	require.NoError(t, h.SendCommand(d2, func(r Response) {
		assert.Equal(t, ErrCommand(0x02), r.Err())
		order = append(order, 2)
	}))
	require.Len(t, w.pkts, 2)
	assert.Equal(t, 2, h.Pending())

	op := d.OpCode()
	require.NoError(t, h.HandlePacket(commandStatus(0x00, 1, op)))
	require.NoError(t, h.HandlePacket(commandStatus(0x02, 1, op)))
	assert.Equal(t, []int{1, 2}, order)
	assert.Equal(t, 0, h.Pending())
}

func TestUnknownCompletionIsDropped(t *testing.T) {
	h := New(&capture{}, nil)
	called := false
	require.NoError(t, h.SendCommand(&cmd.Reset{}, func(Response) { called = true }))

	// Disconnect was never sent
	require.NoError(t, h.HandlePacket(commandStatus(0, 1, (&cmd.Disconnect{}).OpCode())))
	assert.False(t, called)
	assert.Equal(t, 1, h.Pending())
	assert.Equal(t, 1, h.allowed)

	require.NoError(t, h.HandlePacket(commandComplete(1, (&cmd.Reset{}).OpCode(), 0x00)))
	assert.True(t, called)
}

func TestCommandsWaitForCredit(t *testing.T) {
	w := &capture{}
	h := New(w, nil)

	var got []int
	for i := 0; i < 3; i++ {
		i := i
		require.NoError(t, h.SendCommand(&cmd.Reset{}, func(Response) { got = append(got, i) }))
	}
	require.Len(t, w.pkts, 1, "one credit, one packet on the wire")
	assert.Equal(t, 3, h.Pending())

	op := (&cmd.Reset{}).OpCode()
	require.NoError(t, h.HandlePacket(commandComplete(1, op, 0)))
	assert.Len(t, w.pkts, 2)
	require.NoError(t, h.HandlePacket(commandComplete(1, op, 0)))
	require.NoError(t, h.HandlePacket(commandComplete(1, op, 0)))
	assert.Equal(t, []int{0, 1, 2}, got)
	assert.Len(t, w.pkts, 3)
}

func TestNopCompleteRestoresCredit(t *testing.T) {
	w := &capture{}
	h := New(w, nil)
	h.setAllowedCommands(0)
	require.NoError(t, h.SendCommand(&cmd.Reset{}, nil))
	assert.Empty(t, w.pkts)

	require.NoError(t, h.HandlePacket(commandComplete(1, 0x0000)))
	assert.Len(t, w.pkts, 1)
}

func TestQueueLimit(t *testing.T) {
	h := New(&capture{}, nil)
	h.setAllowedCommands(0)
	for i := 0; i < maxQueuedCommands; i++ {
		require.NoError(t, h.SendCommand(&cmd.Reset{}, nil))
	}
	err := h.SendCommand(&cmd.Reset{}, nil)
	assert.Equal(t, bthost.ErrNoResources, errors.Cause(err))
}

func TestWriteFailureUnsends(t *testing.T) {
	w := &capture{err: errors.New("broken pipe")}
	h := New(w, nil)
	var got error
	h.SetErrorHandler(func(err error) { got = err })

	err := h.SendCommand(&cmd.Reset{}, nil)
	require.Error(t, err)
	assert.Error(t, got)
	assert.Equal(t, 0, h.Pending())
	assert.Equal(t, 1, h.allowed)
}

func TestMalformedEventsAreDropped(t *testing.T) {
	h := New(&capture{}, nil)
	called := 0
	h.Handle(evt.HardwareErrorCode, func(b []byte) error { called++; return nil })

	h.ProcessEvent([]byte{evt.HardwareErrorCode})
	h.ProcessEvent([]byte{evt.HardwareErrorCode, 2, 0x01})
	h.ProcessEvent([]byte{0x77, 1, 0x00})
	assert.Equal(t, 0, called)

	h.ProcessEvent([]byte{evt.HardwareErrorCode, 1, 0x01})
	assert.Equal(t, 1, called)
}

func TestLEMetaDispatch(t *testing.T) {
	h := New(&capture{}, nil)
	var got []byte
	h.HandleLEMeta(evt.LEConnectionUpdateCompleteSubCode, func(b []byte) error { got = b; return nil })

	p := []byte{evt.LEConnectionUpdateCompleteSubCode, 0, 0x40, 0x00, 0x18, 0, 0, 0, 0x48, 0}
	require.NoError(t, h.HandlePacket(append([]byte{PktTypeEvent, evt.LEMetaCode, byte(len(p))}, p...)))
	assert.Equal(t, p, got)
}

func TestVendorCommand(t *testing.T) {
	w := &capture{}
	h := New(w, nil)

	var vop int
	var vrp []byte
	done := false
	require.NoError(t, h.SendVendorCommand(0x0001, 2, []byte{0xAA, 0xBB},
		func(op int, params []byte) { vop, vrp = op, params },
		func(r Response) { done = r.Complete }))

	require.Len(t, w.pkts, 1)
	assert.Equal(t, []byte{PktTypeCommand, 0x01, 0xFC, 2, 0xAA, 0xBB}, w.pkts[0])

	require.NoError(t, h.HandlePacket(commandComplete(1, 0xFC01, 0x00, 0x42)))
	assert.Equal(t, 0xFC01, vop)
	assert.Equal(t, []byte{0x00, 0x42}, vrp)
	assert.True(t, done)
}

func TestFlushFailsOutstanding(t *testing.T) {
	h := New(&capture{}, nil)
	var errs []error
	for i := 0; i < 2; i++ {
		require.NoError(t, h.SendCommand(&cmd.Reset{}, func(r Response) { errs = append(errs, r.Err()) }))
	}
	h.Close()
	require.Len(t, errs, 2)
	for _, err := range errs {
		assert.Equal(t, bthost.ErrClosed, err)
	}
	assert.Equal(t, bthost.ErrClosed, h.SendCommand(&cmd.Reset{}, nil))
}

func TestSendBlocks(t *testing.T) {
	w := &capture{}
	posted := make(chan func(), 1)
	h := New(w, func(f func()) bool { posted <- f; return true })

	rp := &cmd.ReadBDADDRRP{}
	errc := make(chan error, 1)
	go func() {
		errc <- h.Send(context.Background(), &cmd.ReadBDADDR{}, rp)
	}()

	// run the posted function as the serial context would
	(<-posted)()
	require.Len(t, w.pkts, 1)
	require.NoError(t, h.HandlePacket(commandComplete(1, (&cmd.ReadBDADDR{}).OpCode(), 0, 1, 2, 3, 4, 5, 6)))
	require.NoError(t, <-errc)
	assert.Equal(t, [6]byte{1, 2, 3, 4, 5, 6}, rp.BDADDR)
}

func TestSendHonoursContext(t *testing.T) {
	h := New(&capture{}, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := h.Send(ctx, &cmd.Reset{}, nil)
	assert.Equal(t, context.DeadlineExceeded, errors.Cause(err))
}

func TestWriteACLFragments(t *testing.T) {
	w := &capture{}
	h := New(w, nil)
	h.SetBufferSizes(4, 8, 0, 0)

	p := []byte{0x04, 0x00, 0x04, 0x00, 0xA, 0xB, 0xC, 0xD}
	n, err := h.WriteACL(0x0040, bthost.TransportBREDR, p)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, w.pkts, 2)
	assert.Equal(t, []byte{PktTypeACLData, 0x40, 0x20, 4, 0, 0x04, 0x00, 0x04, 0x00}, w.pkts[0])
	assert.Equal(t, []byte{PktTypeACLData, 0x40, 0x10, 4, 0, 0xA, 0xB, 0xC, 0xD}, w.pkts[1])

	// LE start flag
	w.pkts = nil
	_, err = h.WriteACL(0x0041, bthost.TransportLE, p[:4])
	require.NoError(t, err)
	assert.Equal(t, byte(0x00), w.pkts[0][2]&0x30)
}

func TestACLReassembly(t *testing.T) {
	h := New(&capture{}, nil)
	var got [][]byte
	h.HandleACL(func(handle uint16, p []byte) {
		assert.Equal(t, uint16(0x0040), handle)
		got = append(got, p)
	})

	require.NoError(t, h.HandlePacket([]byte{PktTypeACLData, 0x40, 0x20, 6, 0, 0x04, 0x00, 0x04, 0x00, 0xA, 0xB}))
	assert.Empty(t, got)
	require.NoError(t, h.HandlePacket([]byte{PktTypeACLData, 0x40, 0x10, 2, 0, 0xC, 0xD}))
	require.Len(t, got, 1)
	assert.Equal(t, []byte{0x04, 0x00, 0x04, 0x00, 0xA, 0xB, 0xC, 0xD}, got[0])

	// continuation without a start
	assert.Error(t, h.HandlePacket([]byte{PktTypeACLData, 0x40, 0x10, 1, 0, 0xE}))
}

func TestACLStartDiscardsPartial(t *testing.T) {
	h := New(&capture{}, nil)
	var got [][]byte
	h.HandleACL(func(handle uint16, p []byte) { got = append(got, p) })

	require.NoError(t, h.HandlePacket([]byte{PktTypeACLData, 0x40, 0x20, 5, 0, 0x04, 0x00, 0x04, 0x00, 0xA}))
	err := h.HandlePacket([]byte{PktTypeACLData, 0x40, 0x20, 5, 0, 0x01, 0x00, 0x04, 0x00, 0xF})
	assert.Error(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []byte{0x01, 0x00, 0x04, 0x00, 0xF}, got[0])
}

func TestFragments(t *testing.T) {
	assert.Equal(t, 1, Fragments(0, 27))
	assert.Equal(t, 1, Fragments(27, 27))
	assert.Equal(t, 2, Fragments(28, 27))
	assert.Equal(t, 4, Fragments(100, 0))
}

func TestReadLoop(t *testing.T) {
	r := bytes.NewReader([]byte{0x04, 0x0E})
	var got [][]byte
	err := ReadLoop(r, nil, func(b []byte) { got = append(got, b) })
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, [][]byte{{0x04, 0x0E}}, got)
}

func TestVendorCommandRejects(t *testing.T) {
	w := &capture{}
	h := New(w, nil)
	assert.Error(t, h.SendVendorCommand(0x0400, 0, nil, nil, nil))
	assert.Error(t, h.SendVendorCommand(0x0001, 3, []byte{0xAA}, nil, nil))
	assert.Empty(t, w.pkts)
}
