// SPDX-License-Identifier: EPL-2.0

package container

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Existence controls what CreateFile expects at the target path.
type Existence int

const (
	// ExistenceNew requires that nothing exists at the path.
	ExistenceNew Existence = iota
	// ExistenceExisting requires an existing container file.
	ExistenceExisting
	// ExistenceAny opens an existing file or creates a new one.
	ExistenceAny
)

func (e Existence) String() string {
	switch e {
	case ExistenceNew:
		return "new"
	case ExistenceExisting:
		return "existing"
	case ExistenceAny:
		return "any"
	}
	return fmt.Sprintf("Existence(%d)", int(e))
}

type Access int

const (
	AccessModify Access = iota
	AccessRead
)

func (a Access) String() string {
	if a == AccessRead {
		return "read"
	}
	return "modify"
}

// Compression is negotiated per essence stream. Enable lets the file store
// segments compressed when its compressor makes them smaller.
type Compression int

const (
	CompressionEnable Compression = iota
	CompressionDisable
)

func (c Compression) String() string {
	if c == CompressionDisable {
		return "disable"
	}
	return "enable"
}

// ParseCompression accepts "enable"/"disable" and the boolean spellings.
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "enable", "enabled", "on", "true":
		return CompressionEnable, nil
	case "disable", "disabled", "off", "false":
		return CompressionDisable, nil
	}
	return CompressionEnable, fmt.Errorf("invalid compression setting %q", s)
}

// Codec identifies how essence bytes are laid out.
type Codec string

const (
	CodecWAVE Codec = "WAVE"
	CodecAIFC Codec = "AIFC"
)

// ContainerDef names where essence lives relative to the file.
type ContainerDef string

const (
	ContainerAAF      ContainerDef = "AAF"
	ContainerExternal ContainerDef = "External"
)

// DescriptorKind tells format specific descriptors apart.
type DescriptorKind string

const (
	KindWAVE DescriptorKind = "WAVE"
	KindAIFC DescriptorKind = "AIFC"
)

// Codec returns the codec that carries essence described by k.
func (k DescriptorKind) Codec() Codec {
	return Codec(k)
}

// SlotID numbers the essence streams of a mob starting at 1.
type SlotID uint32

// umidLabel is the SMPTE UMID universal label, length and instance number
// used for every generated MobID.
var umidLabel = [16]byte{
	0x06, 0x0a, 0x2b, 0x34, 0x01, 0x01, 0x01, 0x05,
	0x01, 0x01, 0x0f, 0x20, 0x13, 0x00, 0x00, 0x00,
}

const umidPrefix = "urn:smpte:umid:"

// MobID is a 32-byte SMPTE UMID.
type MobID [32]byte

// NewMobID returns a MobID whose material number is a random UUID.
func NewMobID() MobID {
	var id MobID
	copy(id[:16], umidLabel[:])
	material := uuid.New()
	copy(id[16:], material[:])
	return id
}

// String formats the id as urn:smpte:umid: followed by eight dot separated
// groups of four bytes.
func (id MobID) String() string {
	groups := make([]string, 8)
	for i := range groups {
		groups[i] = hex.EncodeToString(id[i*4 : i*4+4])
	}
	return umidPrefix + strings.Join(groups, ".")
}

func (id MobID) IsZero() bool { return id == MobID{} }

// ParseMobID reverses String.
func ParseMobID(s string) (MobID, error) {
	var id MobID

	raw := strings.ReplaceAll(strings.TrimPrefix(s, umidPrefix), ".", "")
	b, err := hex.DecodeString(raw)
	if err != nil {
		return id, fmt.Errorf("invalid mob id %q: %w", s, err)
	}
	if len(b) != len(id) {
		return id, fmt.Errorf("invalid mob id %q: %d bytes", s, len(b))
	}
	copy(id[:], b)
	return id, nil
}
