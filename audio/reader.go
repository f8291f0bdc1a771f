// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"

	"github.com/shirou/gopsutil/v4/mem"
)

// ReadPayload opens path a second time, independent of the parser, and reads
// exactly p.Length bytes starting at p.Offset.
func ReadPayload(path string, p Payload, f Format) (*Buffer, error) {
	file, err := openChecked(path, p)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	if _, err := file.Seek(p.Offset, io.SeekStart); err != nil {
		return nil, &IOError{Op: "seek", Path: path, Err: err}
	}

	data := make([]byte, p.Length)
	if _, err := io.ReadFull(file, data); err != nil {
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}

	f.DataLength = p.Length
	return &Buffer{Format: f, Data: data}, nil
}

// PayloadReader streams whole frames of a payload in bounded chunks.
type PayloadReader struct {
	path   string
	file   *os.File
	format Format
	sec    *io.SectionReader
}

// OpenPayload opens the payload of path for chunked reading. A trailing
// partial frame is never returned.
func OpenPayload(path string, p Payload, f Format) (*PayloadReader, error) {
	file, err := openChecked(path, p)
	if err != nil {
		return nil, err
	}

	f.DataLength = p.Length
	whole := f.Frames(p.Length) * int64(f.FrameSize())

	return &PayloadReader{
		path:   path,
		file:   file,
		format: f,
		sec:    io.NewSectionReader(file, p.Offset, whole),
	}, nil
}

func (r *PayloadReader) Format() Format { return r.format }
func (r *PayloadReader) Close() error  { return r.file.Close() }

func (r *PayloadReader) ReadFrames(dst []byte) (int, error) {
	n, err := readWhole(r.sec, dst, r.format.FrameSize())
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, ErrInvalidDstSize) {
		return n, &IOError{Op: "read", Path: r.path, Err: err}
	}
	return n, err
}

type bufferSource struct {
	format Format
	r      *bytes.Reader
}

// NewBufferSource exposes the whole frames of b as a FrameSource.
func NewBufferSource(b *Buffer) FrameSource {
	return &bufferSource{format: b.Format, r: bytes.NewReader(b.Whole())}
}

func (s *bufferSource) Format() Format { return s.format }
func (s *bufferSource) Close() error  { return nil }

func (s *bufferSource) ReadFrames(dst []byte) (int, error) {
	return readWhole(s.r, dst, s.format.FrameSize())
}

func readWhole(r io.Reader, dst []byte, frameSize int) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	usable := len(dst) - len(dst)%frameSize
	if usable == 0 {
		return 0, ErrInvalidDstSize
	}

	n, err := io.ReadFull(r, dst[:usable])
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		n -= n % frameSize
		if n == 0 {
			return 0, io.EOF
		}
		return n, nil
	}
	return n, err
}

func openChecked(path string, p Payload) (*os.File, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Op: "open", Path: path, Err: err}
	}

	st, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, &IOError{Op: "stat", Path: path, Err: err}
	}

	if p.Offset < 0 || p.Length < 0 || p.End() > st.Size() {
		file.Close()
		return nil, &FormatError{Path: path, Err: ErrPayloadTruncated}
	}

	return file, nil
}

// Limits bound how much sample data is held in memory at once.
type Limits struct {
	// MaxInMemory is the largest payload read in a single pass.
	MaxInMemory int64
	// ChunkSize is the read size used when streaming.
	ChunkSize int64
	// MemoryFraction caps an in-memory read to this share of the
	// currently available system memory. Zero disables the check.
	MemoryFraction float64
}

// Strategy is the outcome of Plan.
type Strategy struct {
	InMemory  bool
	ChunkSize int64
}

// Plan decides whether a payload of length bytes is read whole or streamed.
func Plan(ctx context.Context, length int64, l Limits) Strategy {
	s := Strategy{InMemory: length <= l.MaxInMemory, ChunkSize: l.ChunkSize}

	if s.InMemory && l.MemoryFraction > 0 {
		if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
			if float64(length) > float64(vm.Available)*l.MemoryFraction {
				s.InMemory = false
			}
		}
	}

	if s.ChunkSize <= 0 {
		s.ChunkSize = length
	}
	return s
}

// ChunkBytes rounds size down to a whole number of frames, never below one frame.
func ChunkBytes(size int64, f Format) int {
	fs := int64(f.FrameSize())
	if fs == 0 {
		return 0
	}
	size -= size % fs
	if size < fs {
		size = fs
	}
	return int(size)
}
