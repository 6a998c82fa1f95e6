package h4

import (
	"io"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rigado/bthost"
)

const (
	rxQueueSize = 64
	readTimeout = time.Second
)

// h4 frames an unframed H4 byte stream (UART or TCP) so that every Read
// returns exactly one HCI packet.
type h4 struct {
	rwc io.ReadWriteCloser
	log bthost.Logger
	wmu sync.Mutex

	frame   *frame
	rxQueue chan []byte

	done chan struct{}
	cmu  sync.Mutex
}

func newH4(rwc io.ReadWriteCloser, name string) *h4 {
	h := &h4{
		rwc:     rwc,
		log:     bthost.ModuleLogger("h4").ChildLogger(map[string]interface{}{"port": name}),
		rxQueue: make(chan []byte, rxQueueSize),
		done:    make(chan struct{}),
	}
	h.frame = newFrame(h.rxQueue)
	go h.rxLoop()
	return h
}

// Read returns one packet, or (0, nil) when none arrived within the read
// timeout.
func (h *h4) Read(p []byte) (int, error) {
	select {
	case <-h.done:
		return 0, io.EOF
	case t := <-h.rxQueue:
		if len(p) < len(t) {
			return 0, errors.Errorf("buffer too small: want %d, have %d", len(t), len(p))
		}
		return copy(p, t), nil
	case <-time.After(readTimeout):
		return 0, nil
	}
}

func (h *h4) Write(p []byte) (int, error) {
	if !h.isOpen() {
		return 0, io.EOF
	}

	h.wmu.Lock()
	defer h.wmu.Unlock()
	n, err := h.rwc.Write(p)
	return n, errors.Wrap(err, "can't write h4")
}

func (h *h4) Close() error {
	h.cmu.Lock()
	defer h.cmu.Unlock()

	select {
	case <-h.done:
		return nil
	default:
		close(h.done)
		h.log.Debug("closing h4")
		return errors.Wrap(h.rwc.Close(), "can't close h4")
	}
}

func (h *h4) isOpen() bool {
	select {
	case <-h.done:
		return false
	default:
		return true
	}
}

func (h *h4) rxLoop() {
	tmp := make([]byte, 2048)
	for {
		n, err := h.rwc.Read(tmp)
		if !h.isOpen() {
			return
		}
		switch {
		case err == io.EOF:
			h.log.Warn("h4 stream closed")
			h.Close()
			return
		case err != nil && !isTimeout(err):
			h.log.Warnf("h4 read: %v", err)
			continue
		case n == 0:
			continue
		}

		h.frame.Assemble(tmp[:n])
	}
}

func isTimeout(err error) bool {
	te, ok := errors.Cause(err).(interface{ Timeout() bool })
	return ok && te.Timeout()
}
