// SPDX-License-Identifier: EPL-2.0

package audio_test

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/aafembed/audio"
)

func stereo16() audio.Format {
	return audio.Format{
		Tag:           audio.TagPCM,
		Channels:      2,
		SampleRate:    48000,
		ByteRate:      192000,
		BlockAlign:    4,
		BitsPerSample: 16,
	}
}

// Example_frames shows how a payload length maps to whole frames.
func Example_frames() {
	f := stereo16()

	fmt.Println("frame size:", f.FrameSize())
	fmt.Println("frames in 103 bytes:", f.Frames(103))
	fmt.Println("dropped bytes:", f.Remainder(103))
	// Output:
	// frame size: 4
	// frames in 103 bytes: 25
	// dropped bytes: 3
}

// Example_validate shows a format whose fields disagree.
func Example_validate() {
	f := stereo16()
	f.BlockAlign = 6

	err := f.Validate()
	fmt.Println(errors.Is(err, audio.ErrInconsistentBlockAlign))
	// Output:
	// true
}

// Example_frameSource reads a buffer back in chunks of whole frames.
func Example_frameSource() {
	buf := &audio.Buffer{Format: stereo16(), Data: make([]byte, 4*10+1)}
	src := audio.NewBufferSource(buf)
	defer src.Close()

	dst := make([]byte, audio.ChunkBytes(15, src.Format()))
	for {
		n, err := src.ReadFrames(dst)
		if errors.Is(err, io.EOF) {
			break
		}
		fmt.Println("read", n, "bytes")
	}
	// Output:
	// read 12 bytes
	// read 12 bytes
	// read 12 bytes
	// read 4 bytes
}

// Example_registry picks a parser by file extension.
func Example_registry() {
	r := audio.NewRegistry()
	r.Register(".WAV", nil)

	_, ok := r.Get("wav")
	fmt.Println("wav registered:", ok)

	_, err := r.Lookup("clip.mxf")
	fmt.Println(errors.Is(err, audio.ErrUnknownFormat))
	// Output:
	// wav registered: true
	// true
}
