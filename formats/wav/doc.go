// SPDX-License-Identifier: EPL-2.0

// Package wav parses RIFF/WAVE headers and writes PCM WAVE files.
//
// The parser locates the format description and the sample payload without
// reading any sample data. The github.com/go-audio/riff chunk identifiers are
// used to recognize chunks and github.com/go-audio/wav encodes output.
//
// # Supported Formats
//
// Integer PCM only:
//   - format tag 1, or 0xFFFE with a PCM subformat
//   - 8, 16, 24 or 32 bits per sample
//   - any channel count and sample rate
//
// # Parsing WAV Files
//
//	hdr, err := wav.ParseFile("take1.wav")
//	if err != nil {
//	    // *audio.FormatError or *audio.IOError
//	}
//	fmt.Println(hdr.Format.Channels, hdr.Payload.Offset)
//
// Chunks are walked in file order. fmt must come before data; anything else
// (JUNK, fact, cue and so on) may appear anywhere and is skipped. The walk
// stops at the data chunk, so trailing chunks are never read. Every chunk is
// checked against the file size before it is used.
//
// Broadcast extension (bext) and LIST/INFO chunks found on the way are
// decoded into Header.Metadata. Text that is not valid UTF-8 is read as
// Windows-1252.
//
// # Summary
//
// Header.Summary holds the RIFF header, the fmt chunk exactly as found and
// the data chunk header. For a file with a 16-byte fmt chunk that is the
// familiar 44-byte preamble. Preamble builds the same bytes from a Format.
//
// # Writing WAV Files
//
//	err := wav.WriteFile("out.wav", buf)
//
// Big-endian buffers, such as those read from AIFF files, are converted on
// the way out.
//
// # Error Handling
//
// Structural problems are *audio.FormatError values wrapping one of:
//   - ErrNotWavFile: the leading tags are not RIFF/WAVE
//   - ErrUnsupportedFormat: compressed or floating point samples
//   - ErrMalformedFormatChunk: fmt chunk too short
//   - ErrMissingFormatChunk: data appears before fmt
//   - ErrMissingDataChunk: end of file reached without a data chunk
//   - ErrChunkOverrun: a chunk claims more bytes than the file holds
//
//	if errors.Is(err, wav.ErrNotWavFile) {
//	    fmt.Println("Not a WAV file")
//	}
package wav
