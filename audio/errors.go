// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDstSize         = errors.New("dst size must be a multiple of the frame size")
	ErrInvalidChannels        = errors.New("channel count must be positive")
	ErrInvalidSampleRate      = errors.New("sample rate must be positive")
	ErrUnsupportedBitDepth    = errors.New("bits per sample must be 8, 16, 24 or 32")
	ErrInconsistentBlockAlign = errors.New("block align does not match channels * bits per sample / 8")
	ErrPayloadTruncated       = errors.New("sample payload extends past end of file")
	ErrPartialFrame           = errors.New("sample payload ends with a partial frame")
	ErrUnknownFormat          = errors.New("no parser registered for format")
)

// FormatError reports a malformed or unrecognized audio file structure.
type FormatError struct {
	Path string
	Err  error
}

func (e *FormatError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("audio format: %v", e.Err)
	}
	return fmt.Sprintf("audio format: %s: %v", e.Path, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// IOError reports a failure to open, seek or read an audio file.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("audio io: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// NewFormatError wraps err as a *FormatError unless it already is one.
func NewFormatError(path string, err error) error {
	var fe *FormatError
	if errors.As(err, &fe) {
		if fe.Path == "" {
			fe.Path = path
		}
		return fe
	}
	return &FormatError{Path: path, Err: err}
}
