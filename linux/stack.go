// Package linux runs the host stack on a Linux HCI transport: the HCI
// dispatcher, the ACL connection manager and L2CAP, all driven by one
// goroutine.
package linux

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rigado/bthost"
	"github.com/rigado/bthost/linux/acl"
	"github.com/rigado/bthost/linux/hci"
	"github.com/rigado/bthost/linux/l2cap"
)

const inboxSize = 64

// Stack owns the controller connection and every control block. All
// state is mutated by the loop goroutine only; the exported methods post
// closures to it.
//
// L2CAP callbacks run on the loop. They must not wait on a Stack method,
// which would deadlock; use the *l2cap.L2CAP handed to Do instead, or
// call from another goroutine.
type Stack struct {
	log bthost.Logger

	inbox     chan func()
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup

	transport hci.Transport
	skt       io.ReadWriteCloser
	sched     scheduler

	hci *hci.HCI
	acl *acl.Manager
	l2c *l2cap.L2CAP

	aclOpts acl.Options
	l2cOpts l2cap.Options

	cache bthost.FeatureCache
	sec   bthost.SecurityManager
	sco   bthost.SCOManager

	errorHandler  func(error)
	statusHandler func(up bool)

	addr bthost.BDAddr
	up   bool
	info ControllerInfo
}

// ControllerInfo is what the init sequence learned about the controller.
type ControllerInfo struct {
	Addr          bthost.BDAddr
	Features      [8]byte
	ACLBufferSize int
	ACLBuffers    int
	LEBufferSize  int
	LEBuffers     int
}

// NewStack returns a stack configured by opts. Start connects it to the
// controller.
func NewStack(opts ...bthost.Option) (*Stack, error) {
	s := &Stack{
		log:     bthost.ModuleLogger("stack").ChildLogger(map[string]interface{}{"stack": uuid.New().String()}),
		inbox:   make(chan func(), inboxSize),
		done:    make(chan struct{}),
		aclOpts: acl.DefaultOptions(),
		l2cOpts: l2cap.DefaultOptions(),
	}
	s.transport.SetTransportHCISocket(0)
	s.sched = scheduler{post: s.post}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, errors.Wrap(err, "stack option")
		}
	}
	return s, nil
}

// Start opens the transport and runs the controller init sequence.
func (s *Stack) Start(ctx context.Context) error {
	rw, err := s.transport.Open()
	if err != nil {
		return errors.Wrapf(err, "open %v", s.transport)
	}
	return s.start(ctx, rw)
}

func (s *Stack) start(ctx context.Context, rw io.ReadWriteCloser) error {
	s.skt = rw
	s.hci = hci.New(rw, s.post)
	s.hci.SetErrorHandler(s.dispatchError)

	s.acl = acl.New(s.hci, s.sched, s.aclOpts)
	s.l2c = l2cap.New(s.hci, s.acl, s.sched, s.l2cOpts)
	s.acl.SetLinks(s.l2c)
	s.acl.SetFeatureCache(s.cache)
	s.acl.SetSecurityManager(s.sec)
	s.acl.SetSCOManager(s.sco)
	s.l2c.SetSecurityManager(s.sec)
	s.bind()

	s.wg.Add(2)
	go s.loop()
	go s.readLoop()

	if err := s.init(ctx); err != nil {
		s.Close()
		return err
	}
	return nil
}

func (s *Stack) loop() {
	defer s.wg.Done()
	for {
		select {
		case f := <-s.inbox:
			f()
		case <-s.done:
			return
		}
	}
}

func (s *Stack) readLoop() {
	defer s.wg.Done()
	err := hci.ReadLoop(s.skt, s.done, func(b []byte) {
		s.post(func() {
			if err := s.hci.HandlePacket(b); err != nil {
				s.log.Warnf("%v", err)
			}
		})
	})
	select {
	case <-s.done:
		return
	default:
	}
	if err != nil {
		s.dispatchError(errors.Wrap(err, "transport"))
	}
	s.post(func() { s.deviceDown("transport closed", false) })
}

// post queues f on the loop. It reports false once the stack is closed.
func (s *Stack) post(f func()) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.inbox <- f:
		return true
	case <-s.done:
		return false
	}
}

// call runs f on the loop and waits for its result.
func (s *Stack) call(ctx context.Context, f func() error) error {
	ch := make(chan error, 1)
	if !s.post(func() { ch <- f() }) {
		return bthost.ErrClosed
	}
	select {
	case err := <-ch:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-s.done:
		return bthost.ErrClosed
	}
}

// Do runs f with the L2CAP layer on the loop and waits for it to return.
func (s *Stack) Do(ctx context.Context, f func(l *l2cap.L2CAP)) error {
	return s.call(ctx, func() error {
		f(s.l2c)
		return nil
	})
}

func (s *Stack) dispatchError(err error) {
	if s.errorHandler != nil {
		s.errorHandler(err)
		return
	}
	s.log.Error(err)
}

// init resets the controller and reads what the layers need. It must not
// run on the loop.
func (s *Stack) init(ctx context.Context) error {
	info, err := initController(ctx, s.hci)
	if err != nil {
		return err
	}
	return s.call(ctx, func() error {
		s.info = info
		s.addr = info.Addr
		s.hci.SetBufferSizes(info.ACLBufferSize, info.ACLBuffers, info.LEBufferSize, info.LEBuffers)
		s.l2c.SetBuffers()
		s.acl.SetLocalFeatures(info.Features)
		s.log.Infof("controller %v up", info.Addr)
		s.setUp(true)
		return nil
	})
}

func (s *Stack) setUp(up bool) {
	if s.up == up {
		return
	}
	s.up = up
	if s.statusHandler != nil {
		s.statusHandler(up)
	}
}

// deviceDown releases every link and ACL record. With reset set and the
// device up, the controller is reset and initialised again.
func (s *Stack) deviceDown(why string, reset bool) {
	wasUp := s.up
	s.log.Warnf("device down: %v", why)
	s.l2c.DeviceDown(uint8(hci.ErrHardware))
	s.acl.DeviceDown()
	s.hci.Flush(errors.New(why))
	s.setUp(false)
	if !reset || !wasUp {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.init(ctx); err != nil {
			s.dispatchError(errors.Wrap(err, "reinit after "+why))
		}
	}()
}

// Addr returns the controller address read at start.
func (s *Stack) Addr() bthost.BDAddr {
	var a bthost.BDAddr
	s.call(context.Background(), func() error {
		a = s.addr
		return nil
	})
	return a
}

// Info returns what the init sequence read from the controller.
func (s *Stack) Info(ctx context.Context) (ControllerInfo, error) {
	var info ControllerInfo
	err := s.call(ctx, func() error {
		info = s.info
		return nil
	})
	return info, err
}

// Close fails pending commands, stops the goroutines and closes the
// transport.
func (s *Stack) Close() error {
	var err error
	s.closeOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		s.call(ctx, func() error {
			s.hci.Close()
			s.setUp(false)
			return nil
		})
		cancel()
		close(s.done)
		if s.skt != nil {
			err = s.skt.Close()
		}
		s.wg.Wait()
	})
	return errors.Wrap(err, "close transport")
}
