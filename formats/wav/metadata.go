// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"encoding/binary"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/ik5/aafembed/audio"
)

// Field layout of the EBU Tech 3285 broadcast extension chunk.
const (
	bextDescription   = 256
	bextOriginator    = 32
	bextOriginatorRef = 32
	bextDate          = 10
	bextTime          = 8
	bextFixedSize     = bextDescription + bextOriginator + bextOriginatorRef + bextDate + bextTime + 8 + 2
)

var infoID = [4]byte{'I', 'N', 'F', 'O'}

func decodeBroadcast(b []byte) *audio.Broadcast {
	if len(b) < bextFixedSize {
		return nil
	}

	off := 0
	field := func(n int) string {
		s := text(b[off : off+n])
		off += n
		return s
	}

	bc := &audio.Broadcast{
		Description:         field(bextDescription),
		Originator:          field(bextOriginator),
		OriginatorReference: field(bextOriginatorRef),
		OriginationDate:     field(bextDate),
		OriginationTime:     field(bextTime),
	}
	bc.TimeReference = binary.LittleEndian.Uint64(b[off : off+8])
	bc.Version = binary.LittleEndian.Uint16(b[off+8 : off+10])

	return bc
}

// decodeList collects the sub-chunks of a LIST/INFO chunk. Other list types
// are ignored.
func decodeList(b []byte, m *audio.Metadata) {
	if len(b) < 4 || !bytes.Equal(b[0:4], infoID[:]) {
		return
	}

	for p := 4; p+chunkHeaderSize <= len(b); {
		id := string(b[p : p+4])
		n := int(binary.LittleEndian.Uint32(b[p+4 : p+8]))
		p += chunkHeaderSize
		if n > len(b)-p {
			return
		}

		if v := text(b[p : p+n]); v != "" {
			if m.Info == nil {
				m.Info = make(map[string]string)
			}
			m.Info[id] = v
		}
		p += n + n%2
	}
}

// text decodes a NUL padded string field. Bytes that are not valid UTF-8 are
// read as Windows-1252, which is what most broadcast tools write.
func text(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}

	s := string(b)
	if !utf8.Valid(b) {
		if dec, err := charmap.Windows1252.NewDecoder().String(s); err == nil {
			s = dec
		}
	}
	return strings.Join(strings.Fields(s), " ")
}
