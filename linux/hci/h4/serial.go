package h4

import (
	"io"
	"time"

	"github.com/jacobsa/go-serial/serial"
	"github.com/pkg/errors"
)

// DefaultSerialOptions returns the UART settings of common H4 controllers.
func DefaultSerialOptions() serial.OpenOptions {
	return serial.OpenOptions{
		BaudRate:              1000000,
		DataBits:              8,
		StopBits:              1,
		ParityMode:            serial.PARITY_NONE,
		RTSCTSFlowControl:     true,
		MinimumReadSize:       0,
		InterCharacterTimeout: 100,
	}
}

// NewSerial opens an H4 UART.
func NewSerial(opts serial.OpenOptions) (io.ReadWriteCloser, error) {
	// reads must time out so the rx loop can observe Close
	opts.MinimumReadSize = 0
	if opts.InterCharacterTimeout == 0 {
		opts.InterCharacterTimeout = 100
	}

	sp, err := serial.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "can't open %v", opts.PortName)
	}

	// drain whatever the controller sent before we attached
	b := make([]byte, 2048)
	<-time.After(50 * time.Millisecond)
	if _, err := sp.Read(b); err != nil && err != io.EOF {
		sp.Close()
		return nil, errors.Wrap(err, "can't flush uart")
	}

	return newH4(sp, opts.PortName), nil
}
