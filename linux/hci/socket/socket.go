//go:build linux
// +build linux

package socket

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
	"unsafe"

	"github.com/pkg/errors"
	"github.com/rigado/bthost"
	"golang.org/x/sys/unix"
)

const (
	typHCI        = 72 // 'H'
	ioctlSize     = 4
	hciMaxDevices = 16

	pollTimeout  = 1000 // ms
	drainTimeout = 20   // ms
	openRetry    = 60 * time.Second

	pollErrors = int16(unix.POLLHUP | unix.POLLNVAL | unix.POLLERR)
	pollIn     = int16(unix.POLLIN)
)

var (
	hciDownDevice    = iow(typHCI, 202, ioctlSize) // HCIDEVDOWN
	hciGetDeviceList = ior(typHCI, 210, ioctlSize) // HCIGETDEVLIST
)

func ior(t, nr, size uintptr) uintptr { return (2 << 30) | (t << 8) | nr | (size << 16) }
func iow(t, nr, size uintptr) uintptr { return (1 << 30) | (t << 8) | nr | (size << 16) }

func ioctl(fd int, op, arg uintptr) error {
	if _, _, ep := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), op, arg); ep != 0 {
		return ep
	}
	return nil
}

type devListRequest struct {
	devNum     uint16
	devRequest [hciMaxDevices]struct {
		id  uint16
		opt uint32
	}
}

// Socket is an HCI User Channel. Every Read returns one HCI packet, H4
// indicator included, or (0, nil) when nothing arrived within a second.
type Socket struct {
	fd  int
	id  int
	log bthost.Logger

	rmu sync.Mutex
	wmu sync.Mutex

	closed    chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// NewSocket binds the user channel of hci<id>. With id -1 the first
// device that can be bound is used.
func NewSocket(id int) (*Socket, error) {
	if id == -1 {
		return firstDevice()
	}

	// bluetoothd may hold the device for a while after it was released
	var err error
	for deadline := time.Now().Add(openRetry); time.Now().Before(deadline); time.Sleep(time.Second) {
		var s *Socket
		if s, err = openDevice(id); err == nil {
			return s, nil
		}
	}
	return nil, errors.Wrapf(err, "hci%d", id)
}

func firstDevice() (*Socket, error) {
	fd, err := rawSocket()
	if err != nil {
		return nil, err
	}
	req := devListRequest{devNum: hciMaxDevices}
	err = ioctl(fd, hciGetDeviceList, uintptr(unsafe.Pointer(&req)))
	unix.Close(fd)
	if err != nil {
		return nil, errors.Wrap(err, "can't get device list")
	}

	var failed []string
	for i := 0; i < int(req.devNum); i++ {
		id := int(req.devRequest[i].id)
		s, err := openDevice(id)
		if err == nil {
			return s, nil
		}
		failed = append(failed, fmt.Sprintf("hci%d: %v", id, err))
	}
	return nil, errors.Errorf("no devices available: %s", strings.Join(failed, "; "))
}

func rawSocket() (int, error) {
	fd, err := unix.Socket(unix.AF_BLUETOOTH, unix.SOCK_RAW, unix.BTPROTO_HCI)
	return fd, errors.Wrap(err, "can't create socket")
}

func openDevice(id int) (*Socket, error) {
	fd, err := rawSocket()
	if err != nil {
		return nil, err
	}

	// the user channel needs exclusive access, so the device must be down
	if err := ioctl(fd, hciDownDevice, uintptr(id)); err != nil {
		unix.Close(fd)
		return nil, errors.Wrap(err, "can't down device")
	}
	sa := unix.SockaddrHCI{Dev: uint16(id), Channel: unix.HCI_CHANNEL_USER}
	if err := unix.Bind(fd, &sa); err != nil {
		unix.Close(fd)
		return nil, errors.Wrap(err, "can't bind socket to hci user channel")
	}

	// discard whatever the kernel queued before the bind
	switch ev := poll(fd, drainTimeout); {
	case ev&pollErrors != 0:
		unix.Close(fd)
		return nil, io.EOF
	case ev&pollIn != 0:
		unix.Read(fd, make([]byte, 2048))
	}

	return &Socket{
		fd:     fd,
		id:     id,
		log:    bthost.ModuleLogger("socket").ChildLogger(map[string]interface{}{"dev": fmt.Sprintf("hci%d", id)}),
		closed: make(chan struct{}),
	}, nil
}

func poll(fd int, ms int) int16 {
	pfds := []unix.PollFd{{Fd: int32(fd), Events: pollIn}}
	unix.Poll(pfds, ms)
	return pfds[0].Revents
}

// ID returns the index of the bound controller.
func (s *Socket) ID() int {
	return s.id
}

func (s *Socket) Read(p []byte) (int, error) {
	s.rmu.Lock()
	defer s.rmu.Unlock()
	if !s.isOpen() {
		return 0, io.EOF
	}

	ev := poll(s.fd, pollTimeout)
	switch {
	case ev&pollErrors != 0:
		s.log.Warnf("hci socket error: poll events 0x%04x", ev)
		return 0, io.EOF
	case ev&pollIn == 0:
		return 0, nil
	}

	n, err := unix.Read(s.fd, p)
	if !s.isOpen() {
		return 0, io.EOF
	}
	return n, errors.Wrap(err, "can't read hci socket")
}

func (s *Socket) Write(p []byte) (int, error) {
	if !s.isOpen() {
		return 0, io.EOF
	}
	s.wmu.Lock()
	defer s.wmu.Unlock()
	n, err := unix.Write(s.fd, p)
	return n, errors.Wrap(err, "can't write hci socket")
}

// Close releases the channel. A Read in progress returns io.EOF.
func (s *Socket) Close() error {
	s.closeOnce.Do(func() {
		close(s.closed)
		s.log.Debug("closing hci socket")
		s.rmu.Lock()
		s.closeErr = errors.Wrap(unix.Close(s.fd), "can't close hci socket")
		s.rmu.Unlock()
	})
	return s.closeErr
}

func (s *Socket) isOpen() bool {
	select {
	case <-s.closed:
		return false
	default:
		return true
	}
}
