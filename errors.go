package bthost

import "github.com/pkg/errors"

var (
	ErrNoResources      = errors.New("no resources")
	ErrNotConnected     = errors.New("not connected")
	ErrUnknownChannel   = errors.New("unknown channel")
	ErrClosed           = errors.New("stack closed")
	ErrBadState         = errors.New("operation not allowed in current state")
	ErrPSMNotRegistered = errors.New("psm not registered")
	ErrInvalidParams    = errors.New("invalid parameters")
)
