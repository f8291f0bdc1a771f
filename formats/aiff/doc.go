// SPDX-License-Identifier: EPL-2.0

// Package aiff parses AIFF and AIFF-C headers and writes AIFF files.
//
// A big-endian chunk walk validates the FORM structure and locates the COMM
// chunk and the byte range of the samples inside SSND, which the go-audio
// decoder does not expose. The sample rate, stored as an 80-bit extended
// float, is converted with github.com/go-audio/audio. Writing goes through
// the github.com/go-audio/aiff encoder.
//
// # Supported Formats
//
//   - AIFF
//   - AIFF-C with compression type NONE or twos
//   - empty sound data (zero frames)
//
// Little-endian AIFF-C (sowt) is rejected with ErrUnsupportedFormat.
//   - 8, 16, 24 or 32 bits per sample, any channel count
//
// # Parsing AIFF Files
//
//	hdr, err := aiff.ParseFile("take1.aif")
//	if err != nil {
//	    // *audio.FormatError or *audio.IOError
//	}
//
// Header.Format.ByteOrder is binary.BigEndian. 8-bit samples are signed,
// unlike WAVE where they are unsigned.
//
// # Summary
//
// Header.Summary holds the FORM header, the COMM chunk as found and an SSND
// chunk header whose offset and block size are zero.
//
// # Error Handling
//
// Structural problems are *audio.FormatError values wrapping one of:
//   - ErrNotAiffFile: not a FORM/AIFF or FORM/AIFC file
//   - ErrUnsupportedFormat: compressed or sowt AIFF-C data
//   - ErrMalformedCommonChunk: COMM chunk too short or inconsistent
//   - ErrMissingCommonChunk: SSND appears before COMM
//   - ErrMissingSoundChunk: no SSND chunk
//   - ErrChunkOverrun: a chunk claims more bytes than the file holds
//
// # AIFF vs. WAV
//
// AIFF is similar to WAV but:
//   - Uses big-endian byte order (WAV uses little-endian)
//   - Originated on Apple platforms (WAV on Windows)
//   - Stores sample rate as 80-bit float (WAV uses 32-bit int)
package aiff
