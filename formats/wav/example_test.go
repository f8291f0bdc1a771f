// SPDX-License-Identifier: EPL-2.0

package wav_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ik5/aafembed/audio"
	"github.com/ik5/aafembed/formats/wav"
)

// Example_parse demonstrates locating the payload of a WAV stream.
func Example_parse() {
	f := audio.Format{Channels: 2, SampleRate: 48000, BitsPerSample: 16, BlockAlign: 4}
	file := append(wav.Preamble(f, 100), make([]byte, 100)...)

	hdr, err := wav.Parse(bytes.NewReader(file), int64(len(file)))
	if err != nil {
		fmt.Printf("Parse error: %v\n", err)
		return
	}

	fmt.Printf("Sample rate: %d Hz\n", hdr.Format.SampleRate)
	fmt.Printf("Channels: %d\n", hdr.Format.Channels)
	fmt.Printf("Payload: %d bytes at offset %d\n", hdr.Payload.Length, hdr.Payload.Offset)
	fmt.Printf("Frames: %d\n", hdr.Format.Frames(hdr.Payload.Length))
	fmt.Printf("Summary: %d bytes\n", len(hdr.Summary))
	// Output:
	// Sample rate: 48000 Hz
	// Channels: 2
	// Payload: 100 bytes at offset 44
	// Frames: 25
	// Summary: 44 bytes
}

// Example_errorNotWAV shows handling of invalid WAV files.
func Example_errorNotWAV() {
	file := []byte("JUNK\x04\x00\x00\x00WAVE")

	_, err := wav.Parse(bytes.NewReader(file), int64(len(file)))
	if errors.Is(err, wav.ErrNotWavFile) {
		fmt.Println("Not a WAV file")
	}
	// Output:
	// Not a WAV file
}

// Example_preamble shows the canonical header layout.
func Example_preamble() {
	f := audio.Format{Channels: 1, SampleRate: 8000, BitsPerSample: 16, BlockAlign: 2}
	p := wav.Preamble(f, 2000)

	fmt.Printf("%s %s %s %s\n", p[0:4], p[8:12], p[12:16], p[36:40])
	fmt.Printf("RIFF size: %d\n", binary.LittleEndian.Uint32(p[4:8]))
	// Output:
	// RIFF WAVE fmt  data
	// RIFF size: 2036
}
