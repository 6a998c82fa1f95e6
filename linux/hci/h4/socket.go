package h4

import (
	"io"
	"net"
	"time"

	"github.com/pkg/errors"
)

// NewSocket connects to an H4 bridge over TCP. timeout bounds the dial
// and every read and write; zero uses the read timeout.
func NewSocket(addr string, timeout time.Duration) (io.ReadWriteCloser, error) {
	if timeout <= 0 {
		timeout = readTimeout
	}
	c, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, errors.Wrapf(err, "can't dial %v", addr)
	}
	return newH4(deadlineConn{Conn: c, timeout: timeout}, addr), nil
}

// deadlineConn arms a fresh deadline before each read and write, so a
// silent bridge surfaces as a timeout the rx loop skips.
type deadlineConn struct {
	net.Conn
	timeout time.Duration
}

func (d deadlineConn) Read(b []byte) (int, error) {
	d.SetReadDeadline(time.Now().Add(d.timeout))
	return d.Conn.Read(b)
}

func (d deadlineConn) Write(b []byte) (int, error) {
	d.SetWriteDeadline(time.Now().Add(d.timeout))
	return d.Conn.Write(b)
}
