// SPDX-License-Identifier: EPL-2.0

package aiff

import "errors"

var (
	// ErrNotAiffFile indicates the file is not a valid AIFF or AIFF-C file
	ErrNotAiffFile = errors.New("not an AIFF file")

	// ErrUnsupportedFormat indicates compressed AIFF-C sample data
	ErrUnsupportedFormat = errors.New("unsupported AIFF compression, only uncompressed PCM is supported")

	// ErrMalformedCommonChunk indicates a COMM chunk too short to describe the samples
	ErrMalformedCommonChunk = errors.New("malformed COMM chunk")

	ErrMissingCommonChunk = errors.New("SSND chunk appears before COMM chunk")
	ErrMissingSoundChunk  = errors.New("no SSND chunk found")
	ErrChunkOverrun       = errors.New("chunk extends past end of file")
)
