// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"encoding/binary"
	"fmt"
)

// Format tags found in the WAVE fmt chunk.
const (
	TagPCM        uint16 = 0x0001
	TagExtensible uint16 = 0xFFFE
)

// Format describes interleaved PCM sample data. It is immutable once parsed.
type Format struct {
	Tag           uint16
	Channels      int
	SampleRate    int
	ByteRate      int
	BlockAlign    int
	BitsPerSample int
	// DataLength is the byte length of the sample region.
	DataLength int64
	// ByteOrder of every sample in the payload. Nil means little-endian.
	ByteOrder binary.ByteOrder
}

// Validate checks the fields against each other rather than trusting the file.
func (f Format) Validate() error {
	if f.Channels <= 0 {
		return ErrInvalidChannels
	}
	if f.SampleRate <= 0 {
		return ErrInvalidSampleRate
	}
	switch f.BitsPerSample {
	case 8, 16, 24, 32:
	default:
		return fmt.Errorf("%w: got %d", ErrUnsupportedBitDepth, f.BitsPerSample)
	}
	if f.BlockAlign != f.Channels*f.BitsPerSample/8 {
		return fmt.Errorf("%w: block align %d, channels %d, bits %d",
			ErrInconsistentBlockAlign, f.BlockAlign, f.Channels, f.BitsPerSample)
	}
	return nil
}

// FrameSize is the number of bytes in one sample frame (all channels).
func (f Format) FrameSize() int {
	return f.BitsPerSample / 8 * f.Channels
}

// Frames returns how many whole frames fit in n bytes.
func (f Format) Frames(n int64) int64 {
	fs := int64(f.FrameSize())
	if fs == 0 {
		return 0
	}
	return n / fs
}

// Remainder is the count of trailing bytes in n that do not make a whole frame.
func (f Format) Remainder(n int64) int64 {
	fs := int64(f.FrameSize())
	if fs == 0 {
		return n
	}
	return n % fs
}

// Order returns the payload byte order, defaulting to little-endian.
func (f Format) Order() binary.ByteOrder {
	if f.ByteOrder == nil {
		return binary.LittleEndian
	}
	return f.ByteOrder
}

// Payload is the location of the raw sample region inside the source file.
type Payload struct {
	Offset int64
	Length int64
}

// End is the offset of the first byte after the payload.
func (p Payload) End() int64 { return p.Offset + p.Length }
