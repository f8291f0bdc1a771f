// SPDX-License-Identifier: EPL-2.0

// Package audio provides the format model shared by every input parser and
// the readers that move raw sample bytes out of a source file.
//
// This package contains the building blocks of the embedding pipeline:
//   - Format, the immutable description of interleaved PCM data
//   - Payload, the byte range of the sample region inside a file
//   - Header, what a Parser recovers before any sample is read
//   - Buffer and FrameSource, the two ways sample data is handed on
//   - Registry, parser lookup by file extension
//
// # Parsing and Reading
//
// Parsing and reading are separate passes that open the file independently:
//
//	hdr, _ := wav.ParseFile("take1.wav")
//	buf, _ := audio.ReadPayload(hdr.Path, hdr.Payload, hdr.Format)
//
// Large payloads are streamed in bounded chunks instead:
//
//	r, _ := audio.OpenPayload(hdr.Path, hdr.Payload, hdr.Format)
//	defer r.Close()
//	dst := make([]byte, audio.ChunkBytes(4<<20, hdr.Format))
//	n, err := r.ReadFrames(dst)
//
// Plan picks between the two from configured limits and the memory currently
// available on the host.
//
// # Frames
//
// A frame is one sample for every channel. Frame counts always truncate: a
// payload whose length is not a multiple of the frame size has its trailing
// partial frame dropped by Buffer.Whole and by every FrameSource.
//
// # Error Handling
//
// Malformed structure is reported as *FormatError and file access problems as
// *IOError; both unwrap to the underlying cause:
//
//	var fe *audio.FormatError
//	if errors.As(err, &fe) {
//	    // bad input file
//	}
package audio
