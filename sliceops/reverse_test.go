package sliceops

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReversed(t *testing.T) {
	in := []byte{1, 2, 3, 4, 5, 6}
	assert.Equal(t, []byte{6, 5, 4, 3, 2, 1}, Reversed(in))
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6}, in, "input untouched")
	assert.Empty(t, Reversed(nil))
}
