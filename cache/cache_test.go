package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/rigado/bthost"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPages() bthost.FeaturePages {
	f := bthost.FeaturePages{Valid: 2}
	f.Pages[0] = [8]byte{0xff, 0xfe, 0x8f, 0xfe, 0xd8, 0x3f, 0x5b, 0x87}
	f.Pages[1] = [8]byte{0x07}
	return f
}

func TestFeatureCache_Store(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "features.cache")
	addr := bthost.MustParseBDAddr("AA:BB:CC:DD:EE:FF")

	c := New(fn)
	require.NoError(t, c.Store(addr, testPages()))

	loaded, err := c.Load(addr)
	require.NoError(t, err)
	assert.Equal(t, testPages(), loaded)

	// a second instance reads the same file
	loaded, err = New(fn).Load(addr)
	require.NoError(t, err)
	assert.Equal(t, testPages(), loaded)
}

func TestFeatureCache_Missing(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "features.cache")
	c := New(fn)

	_, err := c.Load(bthost.MustParseBDAddr("01:02:03:04:05:06"))
	assert.Equal(t, ErrNotFound, errors.Cause(err))

	require.NoError(t, c.Clear())
}

func TestFeatureCache_Clear(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "features.cache")
	addr := bthost.MustParseBDAddr("AA:BB:CC:DD:EE:FF")

	c := New(fn)
	require.NoError(t, c.Store(addr, testPages()))
	require.NoError(t, c.Clear())

	_, err := os.Stat(fn)
	assert.True(t, os.IsNotExist(err))
}

func TestFeatureCache_Corrupt(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "features.cache")
	require.NoError(t, os.WriteFile(fn, []byte("{not json"), 0644))

	_, err := New(fn).Load(bthost.MustParseBDAddr("AA:BB:CC:DD:EE:FF"))
	assert.Error(t, err)
}

func TestMemoryCache(t *testing.T) {
	addr := bthost.MustParseBDAddr("AA:BB:CC:DD:EE:FF")
	c := NewMemory()

	_, err := c.Load(addr)
	assert.Equal(t, ErrNotFound, errors.Cause(err))

	require.NoError(t, c.Store(addr, testPages()))
	f, err := c.Load(addr)
	require.NoError(t, err)
	assert.True(t, f.Has(0, 7, 0x80))
	assert.False(t, f.Has(2, 0, 0x01))

	require.NoError(t, c.Clear())
	_, err = c.Load(addr)
	assert.Error(t, err)
}
