// SPDX-License-Identifier: EPL-2.0

// Package container implements the object model of an interchange container
// file: a root header owning media objects (mobs), each described by one
// essence descriptor and carrying one or more essence streams.
//
// # Lifecycle
//
// Every operation runs under a Runtime created by Load and torn down by
// Unload at the outermost boundary of the program:
//
//	rt, _ := container.Load(container.Options{Compressor: "brotli"})
//	defer rt.Unload()
//
//	f, _ := rt.CreateFile(ctx, "out.aaf", container.ExistenceNew, container.AccessModify)
//	defer f.Close()
//	// ... build the object graph ...
//	err := f.Save(ctx)
//
// A modifiable file is built in a hidden scratch file next to the target.
// Save renames it over the target; Close without Save deletes it, so a
// failed run leaves nothing behind at the target path.
//
// # Handles
//
// Header, Mob, PCMDescriptor, EssenceDescriptor, EssenceAccess and
// EssenceReader are handles. Each is released exactly once; a second
// Release returns ErrReleased and using a released handle fails the same
// way. The runtime counts live handles, and Unload reports
// ErrHandlesOutstanding when any are left.
//
// # Construction Order
//
// The object graph enforces the order in which a mob is built:
//
//  1. Header.CreateMob, Mob.SetName
//  2. File.CreateWAVEDescriptor (or AIFC) and its setters
//  3. PCMDescriptor.EssenceDescriptor, Mob.AppendEssenceDescriptor
//  4. Header.AddMob; the mob and its descriptor are frozen from here on
//  5. File.CreateEssence, EssenceAccess.WriteSamples, Release
//
// Out of order calls fail with ErrNoDescriptor, ErrMobNotRegistered,
// ErrMobRegistered and friends.
//
// # Storage
//
// The file is a single SQLite database. Essence bytes are stored in
// segments of Options.SegmentSize bytes; with CompressionEnable each
// segment is compressed with the runtime's compressor and kept compressed
// only when that is smaller.
package container
