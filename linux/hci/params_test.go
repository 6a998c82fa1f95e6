package hci

import (
	"testing"

	"github.com/rigado/bthost"
	"github.com/stretchr/testify/assert"
)

func TestValidateConnParams(t *testing.T) {
	ok := bthost.ConnParams{IntervalMin: 0x18, IntervalMax: 0x28, Latency: 0, SupervisionTimeout: 0x1f4}
	assert.NoError(t, ValidateConnParams(ok))

	cases := map[string]bthost.ConnParams{
		"interval too small": {IntervalMin: 0x05, IntervalMax: 0x28, SupervisionTimeout: 0x1f4},
		"interval too large": {IntervalMin: 0x18, IntervalMax: 0x0c81, SupervisionTimeout: 0x0c80},
		"min above max":      {IntervalMin: 0x30, IntervalMax: 0x28, SupervisionTimeout: 0x1f4},
		"latency":            {IntervalMin: 0x18, IntervalMax: 0x28, Latency: 0x01f4, SupervisionTimeout: 0x0c80},
		"timeout too small":  {IntervalMin: 0x18, IntervalMax: 0x28, SupervisionTimeout: 0x0009},
		"timeout too large":  {IntervalMin: 0x18, IntervalMax: 0x28, SupervisionTimeout: 0x0c81},
		// (1+4) * 0x28*2.5 = 500ms > 0x0a*10
		"timeout relation": {IntervalMin: 0x18, IntervalMax: 0x28, Latency: 4, SupervisionTimeout: 0x0a},
	}
	for name, p := range cases {
		assert.Error(t, ValidateConnParams(p), name)
	}
}

func TestSupervisionTimeoutBoundary(t *testing.T) {
	// interval max 0x28 (50ms), latency 1: 2 * 50 * 2 = 200ms
	assert.True(t, SupervisionTimeoutValid(0x28, 1, 20))
	assert.False(t, SupervisionTimeoutValid(0x28, 1, 19))
}

func TestValidateCreateConnection(t *testing.T) {
	assert.NoError(t, ValidateCreateConnection(DefaultLECreateConnection()))

	p := DefaultLECreateConnection()
	p.LEScanWindow = p.LEScanInterval + 1
	assert.Error(t, ValidateCreateConnection(p))

	p = DefaultLECreateConnection()
	p.PeerAddressType = 3
	assert.Error(t, ValidateCreateConnection(p))
}
