// SPDX-License-Identifier: EPL-2.0

package store

import "time"

// Identification records one save of the container.
type Identification struct {
	ID             uint   `gorm:"primaryKey"`
	Generation     string `gorm:"size:26;not null;uniqueIndex"`
	CompanyName    string
	ProductName    string
	ProductVersion string
	Platform       string
	CreatedAt      time.Time
}

// Mob is a registered source mob with its descriptor chain.
type Mob struct {
	ID          string `gorm:"primaryKey;size:64"`
	Name        string
	Kind        string
	CreatedAt   time.Time
	Comments    []Comment    `gorm:"foreignKey:MobID;constraint:OnDelete:CASCADE"`
	Descriptors []Descriptor `gorm:"foreignKey:MobID;constraint:OnDelete:CASCADE"`
}

type Comment struct {
	ID       uint   `gorm:"primaryKey"`
	MobID    string `gorm:"index;size:64;not null"`
	Position int
	Name     string
	Value    string
}

// Descriptor is a persisted essence descriptor. Kind distinguishes the
// WAVE and AIFC variants.
type Descriptor struct {
	ID            uint   `gorm:"primaryKey"`
	MobID         string `gorm:"index;size:64;not null"`
	Position      int
	Kind          string `gorm:"size:16;not null"`
	SampleRate    int
	Channels      int
	BitsPerSample int
	Length        int64
	Summary       []byte
	Locators      []Locator `gorm:"foreignKey:DescriptorID;constraint:OnDelete:CASCADE"`
}

type Locator struct {
	ID           uint `gorm:"primaryKey"`
	DescriptorID uint `gorm:"index;not null"`
	Position     int
	URL          string
}

// Essence is the header row of an embedded sample stream. Its bytes live in
// Segment rows.
type Essence struct {
	ID            uint   `gorm:"primaryKey"`
	MobID         string `gorm:"size:64;not null;uniqueIndex:idx_essence_slot"`
	SlotID        uint32 `gorm:"not null;uniqueIndex:idx_essence_slot"`
	Codec         string
	Container     string
	Compressor    string
	SampleRate    int
	Channels      int
	BitsPerSample int
	Length        int64
	Frames        int64
	Segments      int
	Complete      bool
	CreatedAt     time.Time
}

// Segment holds one bounded piece of essence data, compressed only when that
// made it smaller.
type Segment struct {
	ID         uint `gorm:"primaryKey"`
	EssenceID  uint `gorm:"not null;uniqueIndex:idx_segment_seq"`
	Seq        int  `gorm:"not null;uniqueIndex:idx_segment_seq"`
	Compressed bool
	RawSize    int
	Data       []byte
}

func allModels() []any {
	return []any{
		&Identification{},
		&Mob{},
		&Comment{},
		&Descriptor{},
		&Locator{},
		&Essence{},
		&Segment{},
	}
}
