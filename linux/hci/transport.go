package hci

import (
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/rigado/bthost/linux/hci/h4"
	"github.com/rigado/bthost/linux/hci/socket"
)

type transportHci struct {
	id int
}

type transportH4Socket struct {
	addr    string
	timeout time.Duration
}

type transportH4Uart struct {
	path string
}

// Transport selects how the controller is reached. Exactly one of the
// variants is set.
type Transport struct {
	hci      *transportHci
	h4uart   *transportH4Uart
	h4socket *transportH4Socket
}

// SetTransportHCISocket sets HCI device for hci socket
func (t *Transport) SetTransportHCISocket(id int) error {
	*t = Transport{hci: &transportHci{id}}
	return nil
}

// SetTransportH4Socket sets h4 socket server
func (t *Transport) SetTransportH4Socket(addr string, timeout time.Duration) error {
	if addr == "" {
		return fmt.Errorf("empty h4 socket address")
	}
	*t = Transport{h4socket: &transportH4Socket{addr, timeout}}
	return nil
}

// SetTransportH4Uart sets h4 uart path
func (t *Transport) SetTransportH4Uart(path string) error {
	if path == "" {
		return fmt.Errorf("empty h4 uart path")
	}
	*t = Transport{h4uart: &transportH4Uart{path}}
	return nil
}

func (t Transport) String() string {
	switch {
	case t.hci != nil:
		return fmt.Sprintf("hci%d", t.hci.id)
	case t.h4socket != nil:
		return "h4 tcp " + t.h4socket.addr
	case t.h4uart != nil:
		return "h4 uart " + t.h4uart.path
	default:
		return "none"
	}
}

// Open connects to the controller.
func (t Transport) Open() (io.ReadWriteCloser, error) {
	switch {
	case t.hci != nil:
		return socket.NewSocket(t.hci.id)

	case t.h4socket != nil:
		return h4.NewSocket(t.h4socket.addr, t.h4socket.timeout)

	case t.h4uart != nil:
		so := h4.DefaultSerialOptions()
		so.PortName = t.h4uart.path
		return h4.NewSerial(so)

	default:
		return nil, errors.New("no valid transport found")
	}
}

// ReadLoop reads whole packets from r and hands copies to deliver until r
// fails or done is closed. It returns the read error; io.EOF is not wrapped.
func ReadLoop(r io.Reader, done <-chan struct{}, deliver func([]byte)) error {
	b := make([]byte, 4096)

	for {
		n, err := r.Read(b)

		switch {
		case n == 0 && err == nil:
			// read timeout
			select {
			case <-done:
				return nil
			default:
				continue
			}

		//callers depend on detecting io.EOF, don't wrap it.
		case err == io.EOF:
			return err

		case err != nil:
			return errors.Wrap(err, "skt read error")

		default:
			p := make([]byte, n)
			copy(p, b)
			deliver(p)
		}
	}
}
