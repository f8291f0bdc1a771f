// SPDX-License-Identifier: EPL-2.0

// Package embed turns a parsed audio file into a mob, an essence descriptor
// and an essence stream inside an open container file.
//
// # Protocol
//
// Embed runs the container construction steps in a fixed order: fetch the
// header, create and name the mob, create the format specific descriptor and
// its generic view, attach the view, register the mob, open the essence
// session and write frames. Handles are released in reverse order on every
// path.
//
//	em := embed.New(embed.Config{MobName: "AudioMob"})
//	res, err := em.Embed(ctx, file, embed.WAVEAudio{Header: hdr})
//
// # Assets
//
// Asset is a closed set: WAVEAudio, AIFCAudio and DNxVideo. Video embedding
// only logs the request and returns ErrVideoNotImplemented.
//
// # Errors
//
// Container failures come back as *EmbedError naming the Stage that failed.
// A payload ending in a partial frame is rejected with audio.ErrPartialFrame
// when Config.StrictFrames is set, before the container is touched.
package embed
