// SPDX-License-Identifier: EPL-2.0

package audio

import (
	goaudio "github.com/go-audio/audio"

	"github.com/ik5/aafembed/utils"
)

// Buffer owns raw interleaved sample bytes read from a payload.
type Buffer struct {
	Format Format
	Data   []byte
}

// Frames is the number of whole frames held by the buffer.
func (b *Buffer) Frames() int64 {
	return b.Format.Frames(int64(len(b.Data)))
}

// Whole returns the data truncated to the last complete frame.
func (b *Buffer) Whole() []byte {
	return b.Data[:b.Frames()*int64(b.Format.FrameSize())]
}

// IntBuffer converts the whole frames into a go-audio buffer. Values keep the
// on-disk representation so FromIntBuffer restores identical bytes.
func (b *Buffer) IntBuffer() *goaudio.IntBuffer {
	data := b.Whole()
	ints := make([]int, len(data)/(b.Format.BitsPerSample/8))
	utils.Unpack(ints, data, b.Format.BitsPerSample, b.Format.Order())

	return &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: b.Format.Channels,
			SampleRate:  b.Format.SampleRate,
		},
		Data:           ints,
		SourceBitDepth: b.Format.BitsPerSample,
	}
}

// FromIntBuffer packs a go-audio buffer into raw bytes described by f.
func FromIntBuffer(f Format, ib *goaudio.IntBuffer) *Buffer {
	data := make([]byte, len(ib.Data)*(f.BitsPerSample/8))
	n := utils.Pack(data, ib.Data, f.BitsPerSample, f.Order())
	f.DataLength = int64(n)

	return &Buffer{Format: f, Data: data[:n]}
}
