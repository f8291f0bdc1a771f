// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	goaudio "github.com/go-audio/audio"

	"github.com/ik5/aafembed/audio"
)

const (
	formHeaderSize  = 12
	chunkHeaderSize = 8
	commSize        = 18
	ssndHeaderSize  = 8
)

var (
	formID = [4]byte{'F', 'O', 'R', 'M'}
	aiffID = [4]byte{'A', 'I', 'F', 'F'}
	aifcID = [4]byte{'A', 'I', 'F', 'C'}
	commID = [4]byte{'C', 'O', 'M', 'M'}
	ssndID = [4]byte{'S', 'S', 'N', 'D'}
)

// AIFF-C compression types that carry plain big-endian PCM.
var uncompressed = map[string]bool{"NONE": true, "twos": true}

// sowt is byte-swapped (little-endian) PCM written by macOS tools.
const sowt = "sowt"

// Parser reads AIFF and AIFF-C headers. The zero value is ready to use.
type Parser struct{}

func (Parser) ParseFile(path string) (*audio.Header, error) {
	return ParseFile(path)
}

// ParseFile walks the chunks of path to locate the format and the sound
// data. No sample data is read.
func ParseFile(path string) (*audio.Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &audio.IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, &audio.IOError{Op: "stat", Path: path, Err: err}
	}

	hdr, err := Parse(f, st.Size())
	if err != nil {
		return nil, withPath(err, path)
	}
	hdr.Path = path

	return hdr, nil
}

// Parse reads the header of an AIFF stream of the given total size. A file
// with an empty SSND chunk is valid and has a zero-length payload.
func Parse(r io.ReadSeeker, size int64) (*audio.Header, error) {
	l, err := walk(r, size)
	if err != nil {
		return nil, err
	}
	hdr := l.header

	hdr.Format.SampleRate = goaudio.IEEEFloatToInt([10]byte(l.comm[8:18]))
	hdr.Format.ByteRate = hdr.Format.SampleRate * hdr.Format.BlockAlign

	if err := hdr.Format.Validate(); err != nil {
		return nil, &audio.FormatError{Err: err}
	}
	hdr.Summary = summary(l.form, l.comm, hdr.Payload.Length)

	return hdr, nil
}

type layout struct {
	header *audio.Header
	form   [4]byte
	comm   []byte
}

// walk finds the COMM chunk and the sample region of the SSND chunk.
func walk(r io.ReadSeeker, size int64) (layout, error) {
	var pre [formHeaderSize]byte
	if _, err := io.ReadFull(r, pre[:]); err != nil {
		return layout{}, &audio.FormatError{Err: ErrNotAiffFile}
	}
	form := [4]byte(pre[8:12])
	if [4]byte(pre[0:4]) != formID || (form != aiffID && form != aifcID) {
		return layout{}, &audio.FormatError{Err: ErrNotAiffFile}
	}

	hdr := &audio.Header{Kind: audio.KindAIFF}
	var comm []byte
	pos := int64(formHeaderSize)

	for {
		var ch [chunkHeaderSize]byte
		if _, err := io.ReadFull(r, ch[:]); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return layout{}, &audio.FormatError{Err: ErrMissingSoundChunk}
			}
			return layout{}, &audio.IOError{Op: "read", Err: err}
		}
		id := [4]byte(ch[0:4])
		n := int64(binary.BigEndian.Uint32(ch[4:8]))
		pos += chunkHeaderSize

		if pos+n > size {
			return layout{}, &audio.FormatError{Err: fmt.Errorf("%w: %q at offset %d declares %d bytes, %d remain",
				ErrChunkOverrun, id[:], pos-chunkHeaderSize, n, size-pos)}
		}

		switch id {
		case commID:
			body := make([]byte, n)
			if _, err := io.ReadFull(r, body); err != nil {
				return layout{}, &audio.IOError{Op: "read", Err: err}
			}
			f, err := decodeCommon(body, form == aifcID)
			if err != nil {
				return layout{}, &audio.FormatError{Err: err}
			}
			hdr.Format = f
			comm = body

		case ssndID:
			if comm == nil {
				return layout{}, &audio.FormatError{Err: ErrMissingCommonChunk}
			}
			var sh [ssndHeaderSize]byte
			if n < ssndHeaderSize {
				return layout{}, &audio.FormatError{Err: fmt.Errorf("%w: SSND chunk of %d bytes", ErrChunkOverrun, n)}
			}
			if _, err := io.ReadFull(r, sh[:]); err != nil {
				return layout{}, &audio.IOError{Op: "read", Err: err}
			}
			skip := int64(binary.BigEndian.Uint32(sh[0:4]))
			if ssndHeaderSize+skip > n {
				return layout{}, &audio.FormatError{Err: fmt.Errorf("%w: SSND offset %d in %d byte chunk", ErrChunkOverrun, skip, n)}
			}
			hdr.Payload = audio.Payload{Offset: pos + ssndHeaderSize + skip, Length: n - ssndHeaderSize - skip}
			hdr.Format.DataLength = hdr.Payload.Length
			return layout{header: hdr, form: form, comm: comm}, nil
		}

		pos += n + n%2
		if _, err := r.Seek(pos, io.SeekStart); err != nil {
			return layout{}, &audio.IOError{Op: "seek", Err: err}
		}
	}
}

func decodeCommon(b []byte, aifc bool) (audio.Format, error) {
	if len(b) < commSize {
		return audio.Format{}, fmt.Errorf("%w: %d bytes", ErrMalformedCommonChunk, len(b))
	}
	if aifc {
		if len(b) < commSize+4 {
			return audio.Format{}, fmt.Errorf("%w: AIFF-C COMM chunk of %d bytes", ErrMalformedCommonChunk, len(b))
		}
		switch ct := string(b[18:22]); {
		case ct == sowt:
			return audio.Format{}, fmt.Errorf("%w: little-endian compression type %q", ErrUnsupportedFormat, ct)
		case !uncompressed[ct]:
			return audio.Format{}, fmt.Errorf("%w: compression type %q", ErrUnsupportedFormat, ct)
		}
	}

	be := binary.BigEndian
	channels := int(be.Uint16(b[0:2]))
	bits := int(be.Uint16(b[6:8]))

	return audio.Format{
		Tag:           audio.TagPCM,
		Channels:      channels,
		BitsPerSample: bits,
		BlockAlign:    channels * bits / 8,
		ByteOrder:     binary.BigEndian,
	}, nil
}

// summary lays out the FORM header, the COMM chunk as found and the SSND
// chunk header with a zero offset.
func summary(form [4]byte, comm []byte, dataLen int64) []byte {
	var b bytes.Buffer
	be := binary.BigEndian

	commPad := len(comm) % 2
	ssndLen := ssndHeaderSize + dataLen
	formLen := 4 + chunkHeaderSize + len(comm) + commPad + chunkHeaderSize + int(ssndLen+ssndLen%2)

	b.Write(formID[:])
	_ = binary.Write(&b, be, uint32(formLen))
	b.Write(form[:])

	b.Write(commID[:])
	_ = binary.Write(&b, be, uint32(len(comm)))
	b.Write(comm)
	if commPad == 1 {
		b.WriteByte(0)
	}

	b.Write(ssndID[:])
	_ = binary.Write(&b, be, uint32(ssndLen))
	b.Write(make([]byte, ssndHeaderSize))

	return b.Bytes()
}

func withPath(err error, path string) error {
	var ioErr *audio.IOError
	if errors.As(err, &ioErr) {
		if ioErr.Path == "" {
			ioErr.Path = path
		}
		return ioErr
	}
	return audio.NewFormatError(path, err)
}
