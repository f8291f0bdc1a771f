// SPDX-License-Identifier: EPL-2.0

// Package aafembed builds AAF-class container files that carry PCM audio
// essence together with its descriptive metadata.
//
// The pipeline has four parts, each in its own package:
//   - formats/wav and formats/aiff parse a chunked audio header and locate
//     the raw sample payload
//   - audio reads that payload, whole or in bounded chunks
//   - embed drives the container construction protocol for one asset
//   - container owns the runtime, the files and their object graph
//
// # Quick Start
//
//	rt, _ := container.Load(container.Options{Compressor: "brotli"})
//	defer rt.Unload()
//
//	report, err := aafembed.Run(ctx, rt, aafembed.Job{Audio: "take1.wav"}, aafembed.Options{})
//	// report.Output == "take1.aaf"
//
// # Embedding Into an Open File
//
// EmbedAudioFile adds one more audio file to a container that is already
// open, which is how several assets end up in a single file:
//
//	f, _ := rt.CreateFile(ctx, "reel.aaf", container.ExistenceNew, container.AccessModify)
//	em := embed.New(embed.Config{})
//	for _, p := range paths {
//	    if _, err := aafembed.EmbedAudioFile(ctx, f, em, p, aafembed.Options{}); err != nil {
//	        f.Close()
//	        return err
//	    }
//	}
//	f.Save(ctx)
//	f.Close()
//
// # Failure
//
// Nothing is written to the output path unless the whole job succeeds.
// Input problems surface as *audio.FormatError or *audio.IOError and
// container protocol problems as *embed.EmbedError.
package aafembed
