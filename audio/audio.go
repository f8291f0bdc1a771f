// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
)

// Kind names the chunked file family a header was parsed from.
type Kind string

const (
	KindWAVE Kind = "WAVE"
	KindAIFF Kind = "AIFF"
)

// Header is everything a format parser recovers from a chunked audio file
// before any sample data is read.
type Header struct {
	Path    string
	Kind    Kind
	Format  Format
	Payload Payload
	// Summary is the fixed-size format preamble stored on the essence
	// descriptor. It never contains sample data.
	Summary  []byte
	Metadata Metadata
}

type FrameSource interface {
	// Format of the frames produced by ReadFrames.
	Format() Format
	// ReadFrames fills dst with whole interleaved frames and returns the
	// number of bytes written, always a multiple of the frame size. When
	// n == 0 with err == io.EOF, the stream is finished.
	ReadFrames(dst []byte) (n int, err error)

	// Close releases any resources.
	Close() error
}

// Parser locates the format description and sample payload of a file.
type Parser interface {
	ParseFile(path string) (*Header, error)
}

// Registry for parsers by file extension (e.g., "wav", "aiff").
type Registry struct {
	parsers map[string]Parser

	mtx *sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{
		parsers: make(map[string]Parser),
		mtx:     &sync.Mutex{},
	}
}

func (r *Registry) Register(ext string, p Parser) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.parsers[normalizeExt(ext)] = p
}

func (r *Registry) Get(ext string) (Parser, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	p, ok := r.parsers[normalizeExt(ext)]
	return p, ok
}

// Lookup picks the parser registered for the extension of path.
func (r *Registry) Lookup(path string) (Parser, error) {
	ext := filepath.Ext(path)
	p, ok := r.Get(ext)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}
	return p, nil
}

// Extensions lists the registered extensions.
func (r *Registry) Extensions() []string {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	exts := make([]string, 0, len(r.parsers))
	for ext := range r.parsers {
		exts = append(exts, ext)
	}
	return exts
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
