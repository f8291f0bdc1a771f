// SPDX-License-Identifier: EPL-2.0

package compress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressors_RoundTrip(t *testing.T) {
	t.Parallel()

	// silence with a short burst compresses well under every algorithm
	src := make([]byte, 64<<10)
	copy(src[1000:], bytes.Repeat([]byte{0x12, 0x34}, 200))

	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			c, err := Lookup(name)
			require.NoError(t, err)
			assert.Equal(t, name, c.Name())

			packed, err := c.Compress(src)
			require.NoError(t, err)
			if name != None {
				assert.Less(t, len(packed), len(src))
			}

			out, err := c.Decompress(packed)
			require.NoError(t, err)
			assert.Equal(t, src, out)
		})
	}
}

func TestLookup(t *testing.T) {
	t.Parallel()

	c, err := Lookup("")
	require.NoError(t, err)
	assert.Equal(t, None, c.Name())

	c, err = Lookup("XZ")
	require.NoError(t, err)
	assert.Equal(t, XZ, c.Name())

	_, err = Lookup("zstd")
	assert.ErrorIs(t, err, ErrUnknownCompressor)
}

func TestNames(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{Brotli, Bzip2, None, XZ}, Names())
}

func TestDecompress_Corrupt(t *testing.T) {
	t.Parallel()

	for _, name := range []string{Brotli, XZ, Bzip2} {
		c, err := Lookup(name)
		require.NoError(t, err)

		_, err = c.Decompress([]byte("definitely not compressed"))
		assert.Error(t, err, name)
	}
}
