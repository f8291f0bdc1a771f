// SPDX-License-Identifier: EPL-2.0

package container

import (
	"context"
	"time"
)

// Handle is any object obtained from an open file. Each must be released
// exactly once; a second Release returns ErrReleased.
type Handle interface {
	Release() error
}

// File is an open container file.
type File interface {
	// Path is the target path the file is saved to.
	Path() string
	Access() Access

	Header() (Header, error)
	CreateWAVEDescriptor() (PCMDescriptor, error)
	CreateAIFCDescriptor() (PCMDescriptor, error)

	// CreateEssence opens a write session for the essence in slot of a
	// registered mob. desc must be the view attached to that mob.
	CreateEssence(ctx context.Context, mob Mob, slot SlotID, codec Codec, def ContainerDef,
		desc EssenceDescriptor, comp Compression) (EssenceAccess, error)
	OpenEssence(ctx context.Context, mob MobID, slot SlotID) (EssenceReader, error)

	Identifications(ctx context.Context) ([]Identification, error)

	// Save commits the object graph to Path. Nothing reaches Path before.
	Save(ctx context.Context) error
	// Close releases the file. Unsaved changes are discarded.
	Close() error
}

// Header is the root object of a file's object graph.
type Header interface {
	Handle
	CreateMob() (Mob, error)
	// AddMob registers a mob whose descriptor is attached and populated.
	AddMob(ctx context.Context, mob Mob) error
	Mobs(ctx context.Context) ([]MobInfo, error)
	LookupMob(ctx context.Context, id MobID) (*MobInfo, error)
}

// Mob is a named media object under construction.
type Mob interface {
	Handle
	ID() MobID
	Name() string
	SetName(name string) error
	AppendComment(name, value string) error
	AppendEssenceDescriptor(desc EssenceDescriptor) error
}

// PCMDescriptor is a format specific essence descriptor for PCM audio.
type PCMDescriptor interface {
	Handle
	Kind() DescriptorKind
	SetSummary(summary []byte) error
	SetSampleRate(rate int) error
	SetBitsPerSample(bits int) error
	SetChannels(channels int) error
	// SetLength records the essence length in sample frames.
	SetLength(frames int64) error
	AppendLocator(url string) error
	// EssenceDescriptor returns the generic view that mobs and essence
	// sessions accept. The view is a separate handle.
	EssenceDescriptor() (EssenceDescriptor, error)
}

// EssenceDescriptor is the generic view of a format specific descriptor.
type EssenceDescriptor interface {
	Handle
	Kind() DescriptorKind
	SampleRate() int
	Channels() int
	BitsPerSample() int
	Length() int64
}

// EssenceAccess is a write session for one essence stream.
type EssenceAccess interface {
	Handle
	// WriteSamples writes n frames from buf and returns the number of
	// frames written.
	WriteSamples(n int, buf []byte) (int, error)
	SamplesWritten() int64
}

// EssenceReader reads an embedded essence stream back.
type EssenceReader interface {
	Handle
	Info() EssenceInfo
	// ReadSamples fills buf with whole frames and returns how many were
	// read. It returns io.EOF once the stream is exhausted.
	ReadSamples(buf []byte) (int, error)
}

type Comment struct {
	Name  string
	Value string
}

type DescriptorInfo struct {
	Kind          DescriptorKind
	SampleRate    int
	Channels      int
	BitsPerSample int
	Length        int64
	Summary       []byte
	Locators      []string
}

type EssenceInfo struct {
	Mob           MobID
	Slot          SlotID
	Codec         Codec
	Container     ContainerDef
	Compressor    string
	SampleRate    int
	Channels      int
	BitsPerSample int
	Frames        int64
	Length        int64
	Segments      int
}

// FrameSize is the byte size of one frame of the essence.
func (e EssenceInfo) FrameSize() int {
	return e.BitsPerSample / 8 * e.Channels
}

// MobInfo is a read-only snapshot of a registered mob.
type MobInfo struct {
	ID          MobID
	Name        string
	Created     time.Time
	Comments    []Comment
	Descriptors []DescriptorInfo
	Essences    []EssenceInfo
}

// Identification describes the application that saved a file.
type Identification struct {
	Generation     string
	CompanyName    string
	ProductName    string
	ProductVersion string
	Platform       string
	Date           time.Time
}
