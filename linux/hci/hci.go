package hci

import (
	"context"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/rigado/bthost"
	"github.com/rigado/bthost/linux/hci/cmd"
	"github.com/rigado/bthost/linux/hci/evt"
)

// Command ...
type Command interface {
	OpCode() int
	Len() int
	Marshal([]byte) error
}

// CommandRP ...
type CommandRP interface {
	Unmarshal(b []byte) error
}

// HandlerFn handles the parameters of one event.
type HandlerFn func(b []byte) error

// ACLHandler receives recombined L2CAP PDUs.
type ACLHandler func(handle uint16, p []byte)

// Response is the outcome of a command: the return parameters of a
// Command Complete, or the status byte of a Command Status.
type Response struct {
	OpCode   int
	Complete bool
	Params   []byte

	err error
}

// Status returns the HCI status of the response.
func (r Response) Status() uint8 {
	if len(r.Params) == 0 {
		return 0
	}
	return r.Params[0]
}

// Err returns the local failure or the controller status as an error.
func (r Response) Err() error {
	if r.err != nil {
		return r.err
	}
	if s := r.Status(); s != 0 {
		return ErrCommand(s)
	}
	return nil
}

// Unmarshal decodes the return parameters of a Command Complete.
func (r Response) Unmarshal(rp CommandRP) error {
	if rp == nil || !r.Complete {
		return nil
	}
	return rp.Unmarshal(r.Params)
}

// CompleteFunc is called once per command, on the serial context.
type CompleteFunc func(r Response)

// VendorFunc receives the raw return parameters of a vendor command.
type VendorFunc func(opcode int, params []byte)

type pkt struct {
	cmd    Command
	b      []byte
	done   CompleteFunc
	vendor VendorFunc
}

// HCI pairs commands with their completions and demultiplexes events.
// Every method except Send must be called on the stack's serial context.
type HCI struct {
	log  bthost.Logger
	skt  io.Writer
	post func(func()) bool

	// Host to Controller command flow control [Vol 2, Part E, 4.4]
	allowed int
	queued  []*pkt
	sent    map[int][]*pkt

	// evtHub
	evth map[int]HandlerFn
	subh map[int]HandlerFn
	vndh map[int]HandlerFn

	// aclHandler
	aclHandler ACLHandler
	rx         *reassembler
	bufSize    int
	bufCnt     int
	leBufSize  int
	leBufCnt   int

	sendHook     func(op int)
	errorHandler func(error)
	closed       bool
}

// New returns a dispatcher writing H4 packets to w. post runs a function on
// the serial context and reports whether it was accepted.
func New(w io.Writer, post func(func()) bool) *HCI {
	h := &HCI{
		log:     bthost.ModuleLogger("hci"),
		skt:     w,
		post:    post,
		allowed: 1,
		sent:    make(map[int][]*pkt),
		evth:    map[int]HandlerFn{},
		subh:    map[int]HandlerFn{},
		vndh:    map[int]HandlerFn{},
		rx:      newReassembler(0),
		bufSize: defaultACLBufSize,
		bufCnt:  1,
	}
	if h.post == nil {
		h.post = func(f func()) bool { f(); return true }
	}

	h.evth[evt.LEMetaCode] = h.handleLEMeta
	h.evth[evt.VendorCode] = h.handleVendor
	h.evth[evt.CommandCompleteCode] = h.handleCommandComplete
	h.evth[evt.CommandStatusCode] = h.handleCommandStatus
	return h
}

// Handle registers the handler of an event code.
func (h *HCI) Handle(code int, fn HandlerFn) {
	h.evth[code] = fn
}

// HandleLEMeta registers the handler of an LE meta sub-event. The handler
// receives the parameters including the sub-event code.
func (h *HCI) HandleLEMeta(subcode int, fn HandlerFn) {
	h.subh[subcode] = fn
}

// HandleVendor registers the handler of a vendor event, keyed by its first
// parameter byte.
func (h *HCI) HandleVendor(subcode int, fn HandlerFn) {
	h.vndh[subcode] = fn
}

// HandleACL sets the receiver of recombined L2CAP PDUs.
func (h *HCI) HandleACL(fn ACLHandler) {
	h.aclHandler = fn
}

// SetSendHook sets a function called with the opcode of every command
// handed to the controller.
func (h *HCI) SetSendHook(fn func(op int)) {
	h.sendHook = fn
}

// SetErrorHandler ...
func (h *HCI) SetErrorHandler(handler func(error)) {
	h.errorHandler = handler
}

// SetBufferSizes records the controller ACL buffers. LE values of zero mean
// LE shares the BR/EDR buffers.
func (h *HCI) SetBufferSizes(aclLen, aclCnt, leLen, leCnt int) {
	if aclLen > 0 {
		h.bufSize, h.bufCnt = aclLen, aclCnt
	}
	h.leBufSize, h.leBufCnt = leLen, leCnt
}

// BufferSize returns the ACL buffer length and count used for a transport.
func (h *HCI) BufferSize(t bthost.Transport) (size, count int) {
	if t == bthost.TransportLE && h.leBufCnt > 0 {
		return h.leBufSize, h.leBufCnt
	}
	return h.bufSize, h.bufCnt
}

// SharedLEBuffers reports whether LE links draw from the BR/EDR buffers.
func (h *HCI) SharedLEBuffers() bool {
	return h.leBufCnt == 0
}

// HandlePacket processes one H4 framed packet from the transport.
func (h *HCI) HandlePacket(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	// Strip the 1-byte HCI header and pass down the rest of the packet.
	t, b := b[0], b[1:]
	switch t {
	case PktTypeACLData:
		return h.handleACL(b)
	case PktTypeEvent:
		h.ProcessEvent(b)
		return nil

		//unhandled stuff
	case PktTypeCommand:
		return fmt.Errorf("unmanaged cmd: % X", b)
	case PktTypeSCOData:
		return fmt.Errorf("unsupported sco packet: % X", b)
	case PktTypeVendor:
		return fmt.Errorf("unsupported vendor packet: % X", b)
	default:
		return fmt.Errorf("invalid packet: 0x%02X % X", t, b)
	}
}

func (h *HCI) handleACL(b []byte) error {
	handle, p, err := h.rx.push(aclPacket(b))
	if p != nil && h.aclHandler != nil {
		h.aclHandler(handle, p)
	}
	return err
}

// ProcessEvent decodes an event (code, length, parameters) and routes it.
// Truncated and unknown events are dropped.
func (h *HCI) ProcessEvent(b []byte) {
	if len(b) < 2 {
		h.log.Debugf("short event dropped: % X", b)
		return
	}
	code, plen := int(b[0]), int(b[1])
	if plen > len(b[2:]) {
		h.log.Debugf("truncated event 0x%02X dropped: want %d, have %d", code, plen, len(b[2:]))
		return
	}

	f := h.evth[code]
	if f == nil {
		h.log.Debugf("unhandled event 0x%02X: % X", code, b[2:2+plen])
		return
	}
	if err := f(b[2 : 2+plen]); err != nil {
		h.log.Warnf("event 0x%02X: %v", code, err)
	}
}

func (h *HCI) handleLEMeta(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	subcode := int(b[0])
	if f := h.subh[subcode]; f != nil {
		return f(b)
	}
	h.log.Debugf("unhandled LE event: % X", b)
	return nil
}

func (h *HCI) handleVendor(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	if f := h.vndh[int(b[0])]; f != nil {
		return f(b)
	}
	return nil
}

// SendCommand registers done for the completion of c and hands c to the
// controller, or queues it until the controller grants a command credit.
func (h *HCI) SendCommand(c Command, done CompleteFunc) error {
	return h.sendCommand(c, done, nil)
}

func (h *HCI) sendCommand(c Command, done CompleteFunc, vendor VendorFunc) error {
	if h.closed {
		return bthost.ErrClosed
	}
	if c.Len() > maxHciPayload {
		return fmt.Errorf("invalid length %v; max hci payload length is %v", c.Len(), maxHciPayload)
	}

	b := make([]byte, 4+c.Len())
	//HCI header
	b[0] = PktTypeCommand
	b[1] = byte(c.OpCode())
	b[2] = byte(c.OpCode() >> 8)
	b[3] = byte(c.Len())
	if err := c.Marshal(b[4:]); err != nil {
		return errors.Wrapf(err, "marshal cmd 0x%04X", c.OpCode())
	}

	p := &pkt{cmd: c, b: b, done: done, vendor: vendor}
	if h.allowed > 0 && len(h.queued) == 0 {
		return h.transmit(p)
	}
	if len(h.queued) >= maxQueuedCommands {
		return errors.Wrapf(bthost.ErrNoResources, "command queue full, dropping 0x%04X", c.OpCode())
	}
	h.queued = append(h.queued, p)
	return nil
}

func (h *HCI) transmit(p *pkt) error {
	op := p.cmd.OpCode()
	h.sent[op] = append(h.sent[op], p)
	h.allowed--

	if n, err := h.skt.Write(p.b); err != nil || n != len(p.b) {
		h.unsend(op, p)
		h.allowed++
		if err == nil {
			err = io.ErrShortWrite
		}
		err = errors.Wrapf(err, "hci: failed to send cmd 0x%04X", op)
		h.dispatchError(err)
		return err
	}

	if h.sendHook != nil {
		h.sendHook(op)
	}
	return nil
}

func (h *HCI) unsend(op int, p *pkt) {
	q := h.sent[op]
	for i := range q {
		if q[i] == p {
			q = append(q[:i], q[i+1:]...)
			break
		}
	}
	if len(q) == 0 {
		delete(h.sent, op)
		return
	}
	h.sent[op] = q
}

// pop removes the oldest in-flight command with the opcode.
func (h *HCI) pop(op int) *pkt {
	q := h.sent[op]
	if len(q) == 0 {
		return nil
	}
	p := q[0]
	if len(q) == 1 {
		delete(h.sent, op)
	} else {
		h.sent[op] = q[1:]
	}
	return p
}

func (h *HCI) flushQueue() {
	for h.allowed > 0 && len(h.queued) > 0 && !h.closed {
		p := h.queued[0]
		h.queued = h.queued[1:]
		if err := h.transmit(p); err != nil && p.done != nil {
			p.done(Response{OpCode: p.cmd.OpCode(), err: err})
		}
	}
}

func (h *HCI) setAllowedCommands(n int) {
	if n > maxQueuedCommands {
		n = maxQueuedCommands
	}
	h.allowed = n
}

func (h *HCI) handleCommandComplete(b []byte) error {
	e := evt.CommandComplete(b)
	if !e.Valid() {
		h.log.Debugf("invalid command complete: % X", b)
		return nil
	}
	h.setAllowedCommands(int(e.NumHCICommandPackets()))

	// NOP command, used for flow control purpose [Vol 2, Part E, 4.4]
	// no handling other than setAllowedCommands needed
	op := int(e.CommandOpcode())
	var p *pkt
	if op != 0x0000 {
		if p = h.pop(op); p == nil {
			h.log.Warnf("can't find the cmd for CommandComplete: % X", b)
		}
	}
	h.flushQueue()

	if p == nil {
		return nil
	}
	rp := append([]byte(nil), e.ReturnParameters()...)
	if p.vendor != nil {
		p.vendor(op, rp)
	}
	if p.done != nil {
		p.done(Response{OpCode: op, Complete: true, Params: rp})
	}
	return nil
}

func (h *HCI) handleCommandStatus(b []byte) error {
	e := evt.CommandStatus(b)
	if !e.Valid() {
		h.log.Debugf("invalid command status: % X", b)
		return nil
	}
	h.setAllowedCommands(int(e.NumHCICommandPackets()))

	op := int(e.CommandOpcode())
	var p *pkt
	if op != 0x0000 {
		if p = h.pop(op); p == nil {
			h.log.Warnf("can't find the cmd for CommandStatus: % X", b)
		}
	}
	h.flushQueue()

	if p != nil && p.done != nil {
		p.done(Response{OpCode: op, Params: []byte{e.Status()}})
	}
	return nil
}

// Pending returns the number of commands awaiting completion or credit.
func (h *HCI) Pending() int {
	n := len(h.queued)
	for _, q := range h.sent {
		n += len(q)
	}
	return n
}

// Flush fails every in-flight and queued command with err and restores a
// single command credit, as after a controller reset.
func (h *HCI) Flush(err error) {
	var failed []*pkt
	for op, q := range h.sent {
		failed = append(failed, q...)
		delete(h.sent, op)
	}
	failed = append(failed, h.queued...)
	h.queued = nil
	h.allowed = 1
	h.rx = newReassembler(h.rx.maxLen)

	for _, p := range failed {
		if p.done != nil {
			p.done(Response{OpCode: p.cmd.OpCode(), err: err})
		}
	}
}

// Close fails outstanding commands and rejects new ones.
func (h *HCI) Close() {
	if h.closed {
		return
	}
	h.Flush(bthost.ErrClosed)
	h.closed = true
}

// FragmentACL frames an L2CAP PDU into H4 ACL packets sized to the
// controller buffers of the transport.
func (h *HCI) FragmentACL(handle uint16, t bthost.Transport, p []byte) ([][]byte, error) {
	size, _ := h.BufferSize(t)
	start := PbfControllerToHostStart
	if t == bthost.TransportLE {
		start = PbfHostToControllerStart
	}
	return buildACL(handle, start, p, size)
}

// WritePacket writes one framed packet to the controller.
func (h *HCI) WritePacket(b []byte) error {
	if h.closed {
		return bthost.ErrClosed
	}
	if _, err := h.skt.Write(b); err != nil {
		err = errors.Wrap(err, "hci: failed to send packet")
		h.dispatchError(err)
		return err
	}
	return nil
}

// WriteACL fragments an L2CAP PDU to the controller buffer size of the
// transport and writes it. It returns the number of ACL packets written.
func (h *HCI) WriteACL(handle uint16, t bthost.Transport, p []byte) (int, error) {
	if h.closed {
		return 0, bthost.ErrClosed
	}
	pkts, err := h.FragmentACL(handle, t, p)
	if err != nil {
		return 0, err
	}
	for i, b := range pkts {
		if err := h.WritePacket(b); err != nil {
			return i, errors.Wrapf(err, "handle 0x%04X", handle)
		}
	}
	return len(pkts), nil
}

// DropACL discards partially received PDUs of a handle.
func (h *HCI) DropACL(handle uint16) {
	h.rx.drop(handle)
}

// Send posts c on the serial context and blocks until it completes. It must
// not be called from the serial context.
func (h *HCI) Send(ctx context.Context, c Command, rp CommandRP) error {
	ch := make(chan Response, 1)
	posted := h.post(func() {
		err := h.SendCommand(c, func(r Response) { ch <- r })
		if err != nil {
			ch <- Response{OpCode: c.OpCode(), err: err}
		}
	})
	if !posted {
		return bthost.ErrClosed
	}

	select {
	case <-ctx.Done():
		return errors.Wrapf(ctx.Err(), "cmd 0x%04X", c.OpCode())
	case r := <-ch:
		if err := r.Err(); err != nil {
			return err
		}
		return r.Unmarshal(rp)
	}
}

func (h *HCI) dispatchError(e error) {
	switch {
	case h.errorHandler == nil:
		h.log.Error(e)
	case h.closed:
		h.log.Debug("hci closing:", e)
	default:
		h.errorHandler(e)
	}
}

// Disconnect is a convenience wrapper for the Disconnect command.
func (h *HCI) Disconnect(handle uint16, reason uint8, done CompleteFunc) error {
	return h.SendCommand(&cmd.Disconnect{ConnectionHandle: handle, Reason: reason}, done)
}
