// SPDX-License-Identifier: EPL-2.0

package utils

import "encoding/binary"

// Sample decodes one PCM sample of bitDepth bits from b.
//
// 8-bit samples are unsigned in little-endian (WAVE) data and signed in
// big-endian (AIFF) data; the returned value keeps that representation so
// PutSample can write the exact same bytes back.
func Sample(b []byte, bitDepth int, order binary.ByteOrder) int {
	switch bitDepth {
	case 8:
		if order == binary.BigEndian {
			return int(int8(b[0]))
		}
		return int(b[0])
	case 16:
		return int(int16(order.Uint16(b)))
	case 24:
		var v int32
		if order == binary.BigEndian {
			v = int32(b[0])<<16 | int32(b[1])<<8 | int32(b[2])
		} else {
			v = int32(b[2])<<16 | int32(b[1])<<8 | int32(b[0])
		}
		// sign extend from 24 bits
		return int(v<<8) >> 8
	case 32:
		return int(int32(order.Uint32(b)))
	}
	return 0
}

// PutSample encodes v into b as a bitDepth-bit sample.
func PutSample(b []byte, v int, bitDepth int, order binary.ByteOrder) {
	switch bitDepth {
	case 8:
		b[0] = byte(v)
	case 16:
		order.PutUint16(b, uint16(int16(v)))
	case 24:
		u := uint32(int32(v))
		if order == binary.BigEndian {
			b[0], b[1], b[2] = byte(u>>16), byte(u>>8), byte(u)
		} else {
			b[0], b[1], b[2] = byte(u), byte(u>>8), byte(u>>16)
		}
	case 32:
		order.PutUint32(b, uint32(int32(v)))
	}
}

// Unpack decodes every whole sample in src into dst and returns the count.
func Unpack(dst []int, src []byte, bitDepth int, order binary.ByteOrder) int {
	width := bitDepth / 8
	if width == 0 {
		return 0
	}
	n := min(len(dst), len(src)/width)
	for i := range n {
		dst[i] = Sample(src[i*width:], bitDepth, order)
	}
	return n
}

// Pack encodes src into dst and returns the number of bytes written.
func Pack(dst []byte, src []int, bitDepth int, order binary.ByteOrder) int {
	width := bitDepth / 8
	if width == 0 {
		return 0
	}
	n := min(len(src), len(dst)/width)
	for i := range n {
		PutSample(dst[i*width:], src[i], bitDepth, order)
	}
	return n * width
}
