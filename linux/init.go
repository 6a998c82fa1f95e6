package linux

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rigado/bthost"
	"github.com/rigado/bthost/linux/hci"
	"github.com/rigado/bthost/linux/hci/cmd"
)

const (
	eventMask   = 0x3DBFF807FFFBFFFF
	leEventMask = 0x000000000000023F // connection, update, remote parameters, enhanced connection
)

// lmpLESupported is the "LE supported (controller)" bit of page 0.
func lmpLESupported(f [8]byte) bool { return f[4]&0x40 != 0 }

// initController resets the controller and reads its address, features
// and buffer sizes.
func initController(ctx context.Context, h *hci.HCI) (ControllerInfo, error) {
	var info ControllerInfo

	if err := h.Send(ctx, &cmd.Reset{}, nil); err != nil {
		return info, errors.Wrap(err, "reset")
	}

	var bd cmd.ReadBDADDRRP
	if err := h.Send(ctx, &cmd.ReadBDADDR{}, &bd); err != nil {
		return info, errors.Wrap(err, "read bdaddr")
	}
	info.Addr = bthost.BDAddrFromLE(bd.BDADDR[:])

	var feat cmd.ReadLocalSupportedFeaturesRP
	if err := h.Send(ctx, &cmd.ReadLocalSupportedFeatures{}, &feat); err != nil {
		return info, errors.Wrap(err, "read local features")
	}
	info.Features = feat.LMPFeatures

	var buf cmd.ReadBufferSizeRP
	if err := h.Send(ctx, &cmd.ReadBufferSize{}, &buf); err != nil {
		return info, errors.Wrap(err, "read buffer size")
	}
	info.ACLBufferSize = int(buf.HCACLDataPacketLength)
	info.ACLBuffers = int(buf.HCTotalNumACLDataPackets)

	if err := h.Send(ctx, &cmd.SetEventMask{EventMask: eventMask}, nil); err != nil {
		return info, errors.Wrap(err, "set event mask")
	}

	if !lmpLESupported(info.Features) {
		return info, nil
	}

	// Zero LE buffers means LE shares the ACL buffers.
	var le cmd.LEReadBufferSizeRP
	if err := h.Send(ctx, &cmd.LEReadBufferSize{}, &le); err != nil {
		return info, errors.Wrap(err, "le read buffer size")
	}
	info.LEBufferSize = int(le.HCLEDataPacketLength)
	info.LEBuffers = int(le.HCTotalNumLEDataPackets)

	if err := h.Send(ctx, &cmd.LESetEventMask{LEEventMask: leEventMask}, nil); err != nil {
		return info, errors.Wrap(err, "le set event mask")
	}
	if err := h.Send(ctx, &cmd.WriteLEHostSupport{LESupportedHost: 1, SimultaneousLEHost: 0}, nil); err != nil {
		return info, errors.Wrap(err, "write le host support")
	}
	return info, nil
}
