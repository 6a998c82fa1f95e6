package cmd

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpCode(t *testing.T) {
	c := &Disconnect{}
	assert.Equal(t, 0x0406, c.OpCode())
	assert.Equal(t, OGFLinkControl, OGF(c.OpCode()))
	assert.Equal(t, 0x0006, OCF(c.OpCode()))

	assert.Equal(t, 0x0C03, (&Reset{}).OpCode())
	assert.Equal(t, 0x2013, (&LEConnectionUpdate{}).OpCode())
	assert.Equal(t, 0x080B, (&SwitchRole{}).OpCode())
}

func TestMarshal(t *testing.T) {
	c := &Disconnect{ConnectionHandle: 0x0040, Reason: 0x13}
	b := make([]byte, c.Len())
	require.NoError(t, c.Marshal(b))
	assert.Equal(t, []byte{0x40, 0x00, 0x13}, b)

	u := &LEConnectionUpdate{
		ConnectionHandle:   0x0041,
		ConnIntervalMin:    0x0018,
		ConnIntervalMax:    0x0028,
		ConnLatency:        0x0000,
		SupervisionTimeout: 0x01F4,
	}
	b = make([]byte, u.Len())
	require.NoError(t, u.Marshal(b))
	assert.Equal(t, []byte{0x41, 0x00, 0x18, 0x00, 0x28, 0x00, 0x00, 0x00, 0xF4, 0x01, 0, 0, 0, 0}, b)

	assert.Equal(t, io.ErrShortBuffer, c.Marshal(make([]byte, 1)))
}

func TestUnmarshal(t *testing.T) {
	var rp ReadBufferSizeRP
	require.NoError(t, rp.Unmarshal([]byte{0x00, 0xFD, 0x03, 0x40, 0x08, 0x00, 0x01, 0x00}))
	assert.Equal(t, uint16(0x03FD), rp.HCACLDataPacketLength)
	assert.Equal(t, uint16(8), rp.HCTotalNumACLDataPackets)

	var le LEReadBufferSizeRP
	assert.Error(t, le.Unmarshal([]byte{0x00, 0xFB}))
}
