// SPDX-License-Identifier: EPL-2.0

package config

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseByteSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want ByteSize
	}{
		{"1MiB", 1 << 20},
		{"4 MiB", 4 << 20},
		{"64MB", 64_000_000},
		{"512", 512},
		{"1.5KiB", 1536},
	}

	for _, tt := range tests {
		got, err := ParseByteSize(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseByteSize("lots")
	assert.Error(t, err)
}

func TestByteSize_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	var b ByteSize
	require.NoError(t, json.Unmarshal([]byte(`"2MiB"`), &b))
	assert.Equal(t, ByteSize(2<<20), b)

	require.NoError(t, json.Unmarshal([]byte(`4096`), &b))
	assert.Equal(t, ByteSize(4096), b)

	assert.Error(t, json.Unmarshal([]byte(`true`), &b))
}

func TestByteSize_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "1.0 MiB", ByteSize(1<<20).String())

	text, err := ByteSize(4 << 20).MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "4.0 MiB", string(text))
	assert.Equal(t, int64(4<<20), ByteSize(4<<20).Bytes())
}
