//go:build !linux
// +build !linux

package socket

import (
	"io"

	"github.com/pkg/errors"
)

// Socket is unavailable outside linux.
type Socket struct {
	io.ReadWriteCloser
}

// NewSocket always fails on this platform.
func NewSocket(id int) (*Socket, error) {
	return nil, errors.New("hci user channel is only available on linux")
}
