package l2cap

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigOptionsRoundTrip(t *testing.T) {
	qos := FlowSpec{ServiceType: ServiceGuaranteed, TokenRate: 1000, TokenBucketSize: 512, PeakBandwidth: 2000, Latency: 10000, DelayVariation: 0xFFFFFFFF}
	for name, in := range map[string]ConfigInfo{
		"mtu and flush": {MTUPresent: true, MTU: 672, FlushTimeoutPresent: true, FlushTimeout: 0xFFFF},
		"qos":           {QoSPresent: true, QoS: qos},
		"ertm": {
			MTUPresent: true,
			MTU:        1024,
			FCRPresent: true,
			FCR:        FCROptions{Mode: ModeERTM, TxWindow: 10, MaxTransmit: 3, RetransTimeout: 2000, MonitorTimeout: 12000, MPS: 1010},
			FCSPresent: true,
		},
		"streaming": {
			FCRPresent:       true,
			FCR:              FCROptions{Mode: ModeStreaming, MPS: 672},
			ExtWindowPresent: true,
			ExtWindow:        0x3FFF,
		},
		"ext flow spec": {
			QoSPresent:         true,
			QoS:                DefaultQoS,
			ExtFlowSpecPresent: true,
			ExtFlowSpec:        ExtFlowSpec{ID: 1, ServiceType: ServiceBestEffort, MaxSDUSize: 0xFFFF, SDUInterTime: 0xFFFFFFFF},
		},
	} {
		t.Run(name, func(t *testing.T) {
			var out ConfigInfo
			unknown, err := ParseConfigOptions(BuildConfigOptions(&in), &out)
			require.NoError(t, err)
			assert.Empty(t, unknown)
			if diff := cmp.Diff(in, out); diff != "" {
				t.Errorf("options mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConfigOptionLengths(t *testing.T) {
	cfg := ConfigInfo{QoSPresent: true, FCRPresent: true, FCR: FCROptions{Mode: ModeERTM}}
	b := BuildConfigOptions(&cfg)
	require.Len(t, b, 2+22+2+9)
	assert.Equal(t, []byte{0x03, 22}, b[:2])
	assert.Equal(t, []byte{0x04, 9, ModeERTM}, b[24:27])
}

func TestConfigMerge(t *testing.T) {
	c := ConfigInfo{MTUPresent: true, MTU: 672, FCRPresent: true, FCR: FCROptions{Mode: ModeBasic}}
	c.merge(&ConfigInfo{QoSPresent: true, QoS: DefaultQoS})
	assert.Equal(t, uint16(672), c.MTU, "absent options are kept")
	assert.True(t, c.QoSPresent)
	assert.Equal(t, uint8(ModeBasic), c.mode())

	assert.Equal(t, uint8(ModeBasic), (&ConfigInfo{}).mode())
	assert.Equal(t, uint8(ModeStreaming), (&ConfigInfo{FCRPresent: true, FCR: FCROptions{Mode: ModeStreaming}}).mode())
}
