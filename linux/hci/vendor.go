package hci

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"
)

// vendorCommand is a command of the vendor specific group (OGF 0x3F)
// whose payload is any value binary.Write can encode.
type vendorCommand struct {
	ocf     uint16
	length  int
	payload interface{}
}

func (c *vendorCommand) OpCode() int { return ogfVendorSpecificDebug<<ogfBitShift | int(c.ocf) }
func (c *vendorCommand) Len() int    { return c.length }

func (c *vendorCommand) Marshal(b []byte) error {
	if c.payload == nil {
		return nil
	}
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, c.payload); err != nil {
		return err
	}
	if buf.Len() != c.length {
		return errors.Errorf("vendor payload is %d bytes, declared %d", buf.Len(), c.length)
	}
	copy(b, buf.Bytes())
	return nil
}

func (c *vendorCommand) String() string {
	return fmt.Sprintf("Vendor Command (ocf 0x%04x, %d bytes)", c.ocf, c.length)
}

// SendVendorCommand sends a vendor specific command. The raw return
// parameters are delivered to vcb; done, if set, sees the response as for
// any other command.
func (h *HCI) SendVendorCommand(ocf uint16, length uint8, v interface{}, vcb VendorFunc, done CompleteFunc) error {
	if ocf > 0x3FF {
		return errors.Errorf("invalid vendor ocf 0x%04X", ocf)
	}
	return h.sendCommand(&vendorCommand{ocf: ocf, length: int(length), payload: v}, done, vcb)
}
