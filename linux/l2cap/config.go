package l2cap

import (
	"bytes"
	"encoding/binary"

	"github.com/rigado/bthost/parser"
)

// FlowSpec is the QoS option [Vol 3, Part A, 5.3].
type FlowSpec struct {
	Flags           uint8
	ServiceType     uint8
	TokenRate       uint32
	TokenBucketSize uint32
	PeakBandwidth   uint32
	Latency         uint32
	DelayVariation  uint32
}

// FCROptions is the retransmission and flow control option [Vol 3, Part A, 5.4].
type FCROptions struct {
	Mode           uint8
	TxWindow       uint8
	MaxTransmit    uint8
	RetransTimeout uint16
	MonitorTimeout uint16
	MPS            uint16
}

// ExtFlowSpec is the extended flow specification option [Vol 3, Part A, 5.6].
type ExtFlowSpec struct {
	ID            uint8
	ServiceType   uint8
	MaxSDUSize    uint16
	SDUInterTime  uint32
	AccessLatency uint32
	FlushTimeout  uint32
}

// ConfigInfo is the set of configuration options of one direction of a
// channel. Fields are only meaningful when their Present flag is set.
type ConfigInfo struct {
	Result uint16
	Flags  uint16

	MTUPresent bool
	MTU        uint16

	FlushTimeoutPresent bool
	FlushTimeout        uint16

	QoSPresent bool
	QoS        FlowSpec

	FCRPresent bool
	FCR        FCROptions

	FCSPresent bool
	FCS        uint8

	ExtFlowSpecPresent bool
	ExtFlowSpec        ExtFlowSpec

	ExtWindowPresent bool
	ExtWindow        uint16
}

// DefaultQoS is the best effort flow spec assumed when none is configured.
var DefaultQoS = FlowSpec{
	ServiceType:     ServiceBestEffort,
	TokenBucketSize: 0,
	TokenRate:       0,
	PeakBandwidth:   0,
	Latency:         0xFFFFFFFF,
	DelayVariation:  0xFFFFFFFF,
}

func option(typ byte, v interface{}) parser.Record {
	buf := &bytes.Buffer{}
	binary.Write(buf, binary.LittleEndian, v)
	return parser.Record{Type: typ, Data: buf.Bytes()}
}

// BuildConfigOptions encodes the present options of c.
func BuildConfigOptions(c *ConfigInfo) []byte {
	var recs []parser.Record
	if c.MTUPresent {
		recs = append(recs, option(parser.Types.MTU, c.MTU))
	}
	if c.FlushTimeoutPresent {
		recs = append(recs, option(parser.Types.FlushTimeout, c.FlushTimeout))
	}
	if c.QoSPresent {
		recs = append(recs, option(parser.Types.QoS, c.QoS))
	}
	if c.FCRPresent {
		recs = append(recs, option(parser.Types.FCR, c.FCR))
	}
	if c.FCSPresent {
		recs = append(recs, option(parser.Types.FCS, c.FCS))
	}
	if c.ExtFlowSpecPresent {
		recs = append(recs, option(parser.Types.ExtFlowSpec, c.ExtFlowSpec))
	}
	if c.ExtWindowPresent {
		recs = append(recs, option(parser.Types.ExtWindow, c.ExtWindow))
	}
	return parser.Append(nil, recs...)
}

// ParseConfigOptions decodes an option block into c. Unknown options that
// must be rejected are returned. Decoding stops at a malformed option; the
// options before it are kept in c and err is set.
func ParseConfigOptions(b []byte, c *ConfigInfo) (unknown []parser.Record, err error) {
	recs, err := parser.Parse(b)
	for _, r := range recs {
		decodeOption(r, c)
	}
	return parser.Unknown(recs), err
}

func decodeOption(r parser.Record, c *ConfigInfo) {
	rd := bytes.NewReader(r.Data)
	le := binary.LittleEndian
	switch r.Type {
	case parser.Types.MTU:
		c.MTUPresent = binary.Read(rd, le, &c.MTU) == nil
	case parser.Types.FlushTimeout:
		c.FlushTimeoutPresent = binary.Read(rd, le, &c.FlushTimeout) == nil
	case parser.Types.QoS:
		c.QoSPresent = binary.Read(rd, le, &c.QoS) == nil
	case parser.Types.FCR:
		c.FCRPresent = binary.Read(rd, le, &c.FCR) == nil
	case parser.Types.FCS:
		c.FCSPresent = binary.Read(rd, le, &c.FCS) == nil
	case parser.Types.ExtFlowSpec:
		c.ExtFlowSpecPresent = binary.Read(rd, le, &c.ExtFlowSpec) == nil
	case parser.Types.ExtWindow:
		c.ExtWindowPresent = binary.Read(rd, le, &c.ExtWindow) == nil
	}
}

// merge copies the present options of src into c.
func (c *ConfigInfo) merge(src *ConfigInfo) {
	if src.MTUPresent {
		c.MTUPresent, c.MTU = true, src.MTU
	}
	if src.FlushTimeoutPresent {
		c.FlushTimeoutPresent, c.FlushTimeout = true, src.FlushTimeout
	}
	if src.QoSPresent {
		c.QoSPresent, c.QoS = true, src.QoS
	}
	if src.FCRPresent {
		c.FCRPresent, c.FCR = true, src.FCR
	}
	if src.FCSPresent {
		c.FCSPresent, c.FCS = true, src.FCS
	}
	if src.ExtFlowSpecPresent {
		c.ExtFlowSpecPresent, c.ExtFlowSpec = true, src.ExtFlowSpec
	}
	if src.ExtWindowPresent {
		c.ExtWindowPresent, c.ExtWindow = true, src.ExtWindow
	}
}

func (c *ConfigInfo) mode() uint8 {
	if c.FCRPresent {
		return c.FCR.Mode
	}
	return ModeBasic
}
