package h4

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(c chan []byte) [][]byte {
	var out [][]byte
	for {
		select {
		case b := <-c:
			out = append(out, b)
		default:
			return out
		}
	}
}

func TestFrameSplitAndJoin(t *testing.T) {
	c := make(chan []byte, 8)
	f := newFrame(c)

	// command complete for Reset, split over two reads, followed by an ACL
	// packet in the same read as the tail of the event
	f.Assemble([]byte{0x04, 0x0e, 0x04, 0x01})
	assert.Empty(t, drain(c))
	f.Assemble([]byte{0x03, 0x0c, 0x00, 0x02, 0x40, 0x20, 0x02, 0x00, 0xaa, 0xbb})

	out := drain(c)
	require.Len(t, out, 2)
	assert.Equal(t, []byte{0x04, 0x0e, 0x04, 0x01, 0x03, 0x0c, 0x00}, out[0])
	assert.Equal(t, []byte{0x02, 0x40, 0x20, 0x02, 0x00, 0xaa, 0xbb}, out[1])
}

func TestFrameSkipsGarbage(t *testing.T) {
	c := make(chan []byte, 8)
	f := newFrame(c)

	f.Assemble([]byte{0x00, 0xff, 0x04, 0x10, 0x01, 0x05})
	out := drain(c)
	require.Len(t, out, 1)
	assert.Equal(t, []byte{0x04, 0x10, 0x01, 0x05}, out[0])
}

func TestFrameTimeout(t *testing.T) {
	c := make(chan []byte, 8)
	f := newFrame(c)
	now := time.Unix(0, 0)
	f.now = func() time.Time { return now }

	f.Assemble([]byte{0x04, 0x0e, 0x04, 0x01})
	now = now.Add(time.Second)

	// the stale partial frame is discarded
	f.Assemble([]byte{0x04, 0x10, 0x01, 0x05})
	out := drain(c)
	require.Len(t, out, 1)
	assert.Equal(t, []byte{0x04, 0x10, 0x01, 0x05}, out[0])
}
