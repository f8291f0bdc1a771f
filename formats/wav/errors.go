// SPDX-License-Identifier: EPL-2.0

package wav

import "errors"

var (
	ErrNotWavFile           = errors.New("not a WAV file")
	ErrUnsupportedFormat    = errors.New("unsupported WAV format, only integer PCM is supported")
	ErrMalformedFormatChunk = errors.New("malformed fmt chunk")
	ErrMissingFormatChunk   = errors.New("data chunk appears before fmt chunk")
	ErrMissingDataChunk     = errors.New("no data chunk found")
	ErrChunkOverrun         = errors.New("chunk extends past end of file")
)
