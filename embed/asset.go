// SPDX-License-Identifier: EPL-2.0

package embed

import (
	"github.com/ik5/aafembed/audio"
	"github.com/ik5/aafembed/container"
)

// Asset is one of WAVEAudio, AIFCAudio or DNxVideo.
type Asset interface {
	// Path of the source file.
	Path() string
	essence() (*stream, error)
}

// stream is what the embedder needs from an audio asset.
type stream struct {
	header  *audio.Header
	source  audio.FrameSource
	kind    container.DescriptorKind
	mobName string
}

// WAVEAudio is PCM audio parsed from a RIFF/WAVE file.
type WAVEAudio struct {
	Header *audio.Header
	// Source delivers the payload frames. Nil streams the payload from
	// Header.Path. The embedder closes it.
	Source audio.FrameSource
	// MobName overrides the configured mob name.
	MobName string
}

func (a WAVEAudio) Path() string {
	if a.Header == nil {
		return ""
	}
	return a.Header.Path
}

func (a WAVEAudio) essence() (*stream, error) {
	if a.Header == nil {
		return nil, ErrNoSource
	}
	return &stream{header: a.Header, source: a.Source, kind: container.KindWAVE, mobName: a.MobName}, nil
}

// AIFCAudio is PCM audio parsed from an AIFF or AIFF-C file.
type AIFCAudio struct {
	Header  *audio.Header
	Source  audio.FrameSource
	MobName string
}

func (a AIFCAudio) Path() string {
	if a.Header == nil {
		return ""
	}
	return a.Header.Path
}

func (a AIFCAudio) essence() (*stream, error) {
	if a.Header == nil {
		return nil, ErrNoSource
	}
	return &stream{header: a.Header, source: a.Source, kind: container.KindAIFC, mobName: a.MobName}, nil
}

// DNxVideo is a video essence file. Embedding it is not implemented.
type DNxVideo struct {
	File string
}

func (v DNxVideo) Path() string { return v.File }

func (DNxVideo) essence() (*stream, error) {
	return nil, ErrVideoNotImplemented
}

// AssetFor wraps a parsed header in the variant matching its kind.
func AssetFor(hdr *audio.Header, src audio.FrameSource) Asset {
	if hdr.Kind == audio.KindAIFF {
		return AIFCAudio{Header: hdr, Source: src}
	}
	return WAVEAudio{Header: hdr, Source: src}
}
