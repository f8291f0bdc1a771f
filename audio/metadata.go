// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"sort"
	"strconv"
)

// Broadcast holds the descriptive fields of a broadcast wave extension chunk.
type Broadcast struct {
	Description         string
	Originator          string
	OriginatorReference string
	OriginationDate     string
	OriginationTime     string
	TimeReference       uint64
	Version             uint16
}

// Metadata collected from descriptive chunks while scanning for the payload.
type Metadata struct {
	Broadcast *Broadcast
	// Info maps RIFF INFO ids (e.g. "INAM") to their text.
	Info map[string]string
}

// Comment is a name/value pair attached to a mob.
type Comment struct {
	Name  string
	Value string
}

var infoLabels = map[string]string{
	"IART": "Artist",
	"ICMT": "Comment",
	"ICOP": "Copyright",
	"ICRD": "Creation Date",
	"IENG": "Engineer",
	"IGNR": "Genre",
	"IKEY": "Keywords",
	"INAM": "Title",
	"IPRD": "Product",
	"ISBJ": "Subject",
	"ISFT": "Software",
	"ISRC": "Source",
}

// IsZero reports whether no descriptive chunk was found.
func (m Metadata) IsZero() bool {
	return m.Broadcast == nil && len(m.Info) == 0
}

// Comments flattens the metadata into a stable, ordered comment list.
func (m Metadata) Comments() []Comment {
	var out []Comment

	if b := m.Broadcast; b != nil {
		add := func(name, value string) {
			if value != "" {
				out = append(out, Comment{Name: name, Value: value})
			}
		}
		add("Description", b.Description)
		add("Originator", b.Originator)
		add("Originator Reference", b.OriginatorReference)
		add("Origination Date", b.OriginationDate)
		add("Origination Time", b.OriginationTime)
		if b.TimeReference != 0 {
			add("Time Reference", strconv.FormatUint(b.TimeReference, 10))
		}
	}

	ids := make([]string, 0, len(m.Info))
	for id := range m.Info {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		label, ok := infoLabels[id]
		if !ok {
			label = id
		}
		out = append(out, Comment{Name: label, Value: m.Info[id]})
	}

	return out
}
