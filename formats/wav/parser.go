// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/riff"

	"github.com/ik5/aafembed/audio"
)

const (
	riffHeaderSize  = 12
	chunkHeaderSize = 8
	minFmtSize      = 16
	extensibleSize  = 40
	// metadata chunks larger than this are skipped rather than decoded
	maxMetadataChunk = 1 << 20
)

var (
	bextID = [4]byte{'b', 'e', 'x', 't'}
	listID = [4]byte{'L', 'I', 'S', 'T'}
)

// Parser reads RIFF/WAVE headers. The zero value is ready to use.
type Parser struct{}

func (Parser) ParseFile(path string) (*audio.Header, error) {
	return ParseFile(path)
}

// ParseFile opens path, walks its chunks up to the data chunk and closes it
// again. No sample data is read.
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

// Parse walks the chunks of a WAVE stream of the given total size. Chunks
// other than fmt, bext, LIST and data are skipped in any order; the walk
// stops at the data chunk.
func Parse(r io.ReadSeeker, size int64) (*audio.Header, error) {
	var pre [riffHeaderSize]byte
	if _, err := io.ReadFull(r, pre[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, &audio.FormatError{Err: ErrNotWavFile}
		}
		return nil, &audio.IOError{Op: "read", Err: err}
	}
	if !bytes.Equal(pre[0:4], riff.RiffID[:]) || !bytes.Equal(pre[8:12], riff.WavFormatID[:]) {
		return nil, &audio.FormatError{Err: fmt.Errorf("%w: leading tags %q %q", ErrNotWavFile, pre[0:4], pre[8:12])}
	}

	hdr := &audio.Header{Kind: audio.KindWAVE}
	var fmtChunk []byte
	pos := int64(riffHeaderSize)

	for {
		var ch [chunkHeaderSize]byte
		if _, err := io.ReadFull(r, ch[:]); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, &audio.FormatError{Err: ErrMissingDataChunk}
			}
			return nil, &audio.IOError{Op: "read", Err: err}
		}
		id := [4]byte(ch[0:4])
		n := int64(binary.LittleEndian.Uint32(ch[4:8]))
		pos += chunkHeaderSize

		if pos+n > size {
			return nil, &audio.FormatError{Err: fmt.Errorf("%w: %q at offset %d declares %d bytes, %d remain",
				ErrChunkOverrun, id[:], pos-chunkHeaderSize, n, size-pos)}
		}

		switch id {
		case riff.FmtID:
			body, err := readChunk(r, n)
			if err != nil {
				return nil, err
			}
			f, err := decodeFormat(body)
			if err != nil {
				return nil, &audio.FormatError{Err: err}
			}
			hdr.Format = f
			fmtChunk = body

		case riff.DataFormatID:
			if fmtChunk == nil {
				return nil, &audio.FormatError{Err: ErrMissingFormatChunk}
			}
			hdr.Format.DataLength = n
			hdr.Payload = audio.Payload{Offset: pos, Length: n}
			hdr.Summary = summary(fmtChunk, n)
			return hdr, nil

		case bextID, listID:
			if n > maxMetadataChunk {
				break
			}
			body, err := readChunk(r, n)
			if err != nil {
				return nil, err
			}
			if id == bextID {
				hdr.Metadata.Broadcast = decodeBroadcast(body)
			} else {
				decodeList(body, &hdr.Metadata)
			}
		}

		// chunks are word aligned
		pos += n + n%2
		if _, err := r.Seek(pos, io.SeekStart); err != nil {
			return nil, &audio.IOError{Op: "seek", Err: err}
		}
	}
}

func readChunk(r io.Reader, n int64) ([]byte, error) {
	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, &audio.IOError{Op: "read", Err: err}
	}
	return body, nil
}

func decodeFormat(b []byte) (audio.Format, error) {
	if len(b) < minFmtSize {
		return audio.Format{}, fmt.Errorf("%w: %d bytes", ErrMalformedFormatChunk, len(b))
	}

	le := binary.LittleEndian
	f := audio.Format{
		Tag:           le.Uint16(b[0:2]),
		Channels:      int(le.Uint16(b[2:4])),
		SampleRate:    int(le.Uint32(b[4:8])),
		ByteRate:      int(le.Uint32(b[8:12])),
		BlockAlign:    int(le.Uint16(b[12:14])),
		BitsPerSample: int(le.Uint16(b[14:16])),
		ByteOrder:     binary.LittleEndian,
	}

	switch f.Tag {
	case audio.TagPCM:
	case audio.TagExtensible:
		if len(b) < extensibleSize {
			return audio.Format{}, fmt.Errorf("%w: extensible fmt chunk of %d bytes", ErrMalformedFormatChunk, len(b))
		}
		// the first two bytes of the subformat GUID carry the real tag
		if sub := le.Uint16(b[24:26]); sub != audio.TagPCM {
			return audio.Format{}, fmt.Errorf("%w: extensible subformat 0x%04x", ErrUnsupportedFormat, sub)
		}
	default:
		return audio.Format{}, fmt.Errorf("%w: format tag 0x%04x", ErrUnsupportedFormat, f.Tag)
	}

	if err := f.Validate(); err != nil {
		return audio.Format{}, err
	}
	return f, nil
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
