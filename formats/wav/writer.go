// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/wav"

	"github.com/ik5/aafembed/audio"
)

// Write encodes the whole frames of buf as a PCM WAVE stream. The writer must
// be seekable so the RIFF sizes can be patched once the data is written.
func Write(ws io.WriteSeeker, buf *audio.Buffer) error {
	f := buf.Format
	if err := f.Validate(); err != nil {
		return fmt.Errorf("wav write: %w", err)
	}

	enc := wav.NewEncoder(ws, f.SampleRate, f.BitsPerSample, f.Channels, int(audio.TagPCM))
	if err := enc.Write(toLittleEndian(buf).IntBuffer()); err != nil {
		return fmt.Errorf("wav write: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("wav write: %w", err)
	}
	return nil
}

// WriteFile creates path and writes buf to it with Write.
func WriteFile(path string, buf *audio.Buffer) (err error) {
	out, err := os.Create(path)
	if err != nil {
		return &audio.IOError{Op: "create", Path: path, Err: err}
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = &audio.IOError{Op: "close", Path: path, Err: cerr}
		}
	}()

	return Write(out, buf)
}

// toLittleEndian re-packs big-endian sample data so the integer values handed
// to the encoder follow WAVE conventions, including unsigned 8-bit samples.
func toLittleEndian(buf *audio.Buffer) *audio.Buffer {
	if buf.Format.Order() != binary.BigEndian {
		return buf
	}

	ib := buf.IntBuffer()
	if buf.Format.BitsPerSample == 8 {
		for i, v := range ib.Data {
			ib.Data[i] = v + 128
		}
	}

	f := buf.Format
	f.ByteOrder = binary.LittleEndian
	return audio.FromIntBuffer(f, ib)
}
