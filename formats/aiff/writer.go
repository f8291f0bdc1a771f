// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/aiff"

	"github.com/ik5/aafembed/audio"
)

// Write encodes the whole frames of buf as an AIFF stream.
func Write(ws io.WriteSeeker, buf *audio.Buffer) error {
	f := buf.Format
	if err := f.Validate(); err != nil {
		return fmt.Errorf("aiff write: %w", err)
	}

	ib := buf.IntBuffer()
	if f.BitsPerSample == 8 && f.Order() == binary.LittleEndian {
		// AIFF stores 8-bit samples signed
		for i, v := range ib.Data {
			ib.Data[i] = v - 128
		}
	}

	enc := aiff.NewEncoder(ws, f.SampleRate, f.BitsPerSample, f.Channels)
	if err := enc.Write(ib); err != nil {
		return fmt.Errorf("aiff write: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("aiff write: %w", err)
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
