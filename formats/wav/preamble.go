// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"encoding/binary"

	"github.com/go-audio/riff"

	"github.com/ik5/aafembed/audio"
)

// Preamble builds the canonical 44-byte header of a PCM WAVE file holding
// dataLen bytes of samples in format f.
func Preamble(f audio.Format, dataLen uint32) []byte {
	fmtChunk := make([]byte, minFmtSize)
	le := binary.LittleEndian
	le.PutUint16(fmtChunk[0:2], audio.TagPCM)
	le.PutUint16(fmtChunk[2:4], uint16(f.Channels))
	le.PutUint32(fmtChunk[4:8], uint32(f.SampleRate))
	le.PutUint32(fmtChunk[8:12], uint32(f.SampleRate*f.FrameSize()))
	le.PutUint16(fmtChunk[12:14], uint16(f.FrameSize()))
	le.PutUint16(fmtChunk[14:16], uint16(f.BitsPerSample))

	return summary(fmtChunk, int64(dataLen))
}

// summary lays out RIFF header, fmt chunk and data chunk header the way a
// minimal file with this format and payload length would begin.
func summary(fmtChunk []byte, dataLen int64) []byte {
	fmtPad := len(fmtChunk) % 2
	size := riffHeaderSize + chunkHeaderSize + len(fmtChunk) + fmtPad + chunkHeaderSize
	b := make([]byte, size)
	le := binary.LittleEndian

	riffSize := uint32(size-chunkHeaderSize) + uint32(dataLen) + uint32(dataLen%2)
	copy(b[0:4], riff.RiffID[:])
	le.PutUint32(b[4:8], riffSize)
	copy(b[8:12], riff.WavFormatID[:])

	copy(b[12:16], riff.FmtID[:])
	le.PutUint32(b[16:20], uint32(len(fmtChunk)))
	copy(b[20:], fmtChunk)

	off := 20 + len(fmtChunk) + fmtPad
	copy(b[off:off+4], riff.DataFormatID[:])
	le.PutUint32(b[off+4:off+8], uint32(dataLen))

	return b
}
