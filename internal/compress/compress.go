// SPDX-License-Identifier: EPL-2.0

// Package compress provides the segment compressors a container can be
// configured with.
package compress

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/dsnet/compress/bzip2"
	"github.com/ulikunitz/xz"
)

// Names of the built-in compressors.
const (
	None   = "none"
	Brotli = "brotli"
	XZ     = "xz"
	Bzip2  = "bzip2"
)

var ErrUnknownCompressor = errors.New("unknown compressor")

// Compressor transforms a whole segment at once.
type Compressor interface {
	Name() string
	Compress(src []byte) ([]byte, error)
	Decompress(src []byte) ([]byte, error)
}

var compressors = map[string]Compressor{
	None:   noop{},
	Brotli: brotliCompressor{level: brotli.DefaultCompression},
	XZ:     xzCompressor{},
	Bzip2:  bzip2Compressor{},
}

// Lookup returns the compressor registered under name. An empty name means
// None.
func Lookup(name string) (Compressor, error) {
	if name == "" {
		name = None
	}
	c, ok := compressors[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %s)", ErrUnknownCompressor, name, strings.Join(Names(), ", "))
	}
	return c, nil
}

// Names lists the registered compressors in sorted order.
func Names() []string {
	names := make([]string, 0, len(compressors))
	for n := range compressors {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

type noop struct{}

func (noop) Name() string                          { return None }
func (noop) Compress(src []byte) ([]byte, error)   { return src, nil }
func (noop) Decompress(src []byte) ([]byte, error) { return src, nil }

type brotliCompressor struct {
	level int
}

func (brotliCompressor) Name() string { return Brotli }

func (c brotliCompressor) Compress(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := brotli.NewWriterLevel(&buf, c.level)
	return finish(&buf, w, src, Brotli)
}

func (brotliCompressor) Decompress(src []byte) ([]byte, error) {
	return drain(brotli.NewReader(bytes.NewReader(src)), Brotli)
}

type xzCompressor struct{}

func (xzCompressor) Name() string { return XZ }

func (xzCompressor) Compress(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		return nil, fmt.Errorf("creating xz writer: %w", err)
	}
	return finish(&buf, w, src, XZ)
}

func (xzCompressor) Decompress(src []byte) ([]byte, error) {
	r, err := xz.NewReader(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("creating xz reader: %w", err)
	}
	return drain(r, XZ)
}

type bzip2Compressor struct{}

func (bzip2Compressor) Name() string { return Bzip2 }

func (bzip2Compressor) Compress(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := bzip2.NewWriter(&buf, nil)
	if err != nil {
		return nil, fmt.Errorf("creating bzip2 writer: %w", err)
	}
	return finish(&buf, w, src, Bzip2)
}

func (bzip2Compressor) Decompress(src []byte) ([]byte, error) {
	r, err := bzip2.NewReader(bytes.NewReader(src), nil)
	if err != nil {
		return nil, fmt.Errorf("creating bzip2 reader: %w", err)
	}
	defer r.Close()
	return drain(r, Bzip2)
}

func finish(buf *bytes.Buffer, w io.WriteCloser, src []byte, name string) ([]byte, error) {
	if _, err := w.Write(src); err != nil {
		return nil, fmt.Errorf("%s compress: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("%s compress: %w", name, err)
	}
	return buf.Bytes(), nil
}

func drain(r io.Reader, name string) ([]byte, error) {
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%s decompress: %w", name, err)
	}
	return out, nil
}
