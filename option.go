package bthost

import (
	"time"
)

// StackOption is implemented by the stack to accept configuration options.
type StackOption interface {
	SetTransportHCISocket(id int) error
	SetTransportH4Socket(addr string, timeout time.Duration) error
	SetTransportH4Uart(path string) error
	SetErrorHandler(handler func(error)) error
	SetDeviceStatusHandler(handler func(up bool)) error

	SetPoolSizes(links, channels, records int) error
	SetIdleTimeout(t Transport, seconds uint16) error
	SetHeldPackets(limit, retries int, interval time.Duration) error
	SetLocalMTU(mtu uint16) error
	SetLECredits(mtu, mps, credits uint16) error
	SetHighPriorityQuota(quota int) error

	SetFeatureCache(c FeatureCache) error
	SetSecurityManager(m SecurityManager) error
	SetSCOManager(m SCOManager) error
}

// An Option is a configuration function, which configures the stack.
type Option func(StackOption) error

// OptTransportHCISocket set hci socket transport
func OptTransportHCISocket(id int) Option {
	return func(opt StackOption) error {
		return opt.SetTransportHCISocket(id)
	}
}

// OptTransportH4Socket set h4 socket transport
func OptTransportH4Socket(addr string, timeout time.Duration) Option {
	return func(opt StackOption) error {
		return opt.SetTransportH4Socket(addr, timeout)
	}
}

// OptTransportH4Uart set h4 uart transport
func OptTransportH4Uart(path string) Option {
	return func(opt StackOption) error {
		return opt.SetTransportH4Uart(path)
	}
}

// OptErrorHandler sets error handler
func OptErrorHandler(handler func(error)) Option {
	return func(opt StackOption) error {
		return opt.SetErrorHandler(handler)
	}
}

// OptDeviceStatusHandler is called when the controller goes up or down.
func OptDeviceStatusHandler(handler func(up bool)) Option {
	return func(opt StackOption) error {
		return opt.SetDeviceStatusHandler(handler)
	}
}

// OptPoolSizes sets the number of link, channel and ACL record slots.
func OptPoolSizes(links, channels, records int) Option {
	return func(opt StackOption) error {
		return opt.SetPoolSizes(links, channels, records)
	}
}

// OptIdleTimeout sets the default idle timeout, in seconds, of links on
// the given transport.
func OptIdleTimeout(t Transport, seconds uint16) Option {
	return func(opt StackOption) error {
		return opt.SetIdleTimeout(t, seconds)
	}
}

// OptHeldPackets bounds the queue of ACL packets received before their
// connection complete event.
func OptHeldPackets(limit, retries int, interval time.Duration) Option {
	return func(opt StackOption) error {
		return opt.SetHeldPackets(limit, retries, interval)
	}
}

// OptLocalMTU sets the MTU offered on BR/EDR channels.
func OptLocalMTU(mtu uint16) Option {
	return func(opt StackOption) error {
		return opt.SetLocalMTU(mtu)
	}
}

// OptLECredits sets MTU, MPS and initial credits for LE credit based channels.
func OptLECredits(mtu, mps, credits uint16) Option {
	return func(opt StackOption) error {
		return opt.SetLECredits(mtu, mps, credits)
	}
}

// OptHighPriorityQuota sets the controller buffer quota of high priority links.
func OptHighPriorityQuota(quota int) Option {
	return func(opt StackOption) error {
		return opt.SetHighPriorityQuota(quota)
	}
}

// OptFeatureCache sets the store for remote feature pages.
func OptFeatureCache(c FeatureCache) Option {
	return func(opt StackOption) error {
		return opt.SetFeatureCache(c)
	}
}

// OptSecurityManager sets the security manager consulted on channel setup.
func OptSecurityManager(m SecurityManager) Option {
	return func(opt StackOption) error {
		return opt.SetSecurityManager(m)
	}
}

// OptSCOManager sets the owner of synchronous links.
func OptSCOManager(m SCOManager) Option {
	return func(opt StackOption) error {
		return opt.SetSCOManager(m)
	}
}
