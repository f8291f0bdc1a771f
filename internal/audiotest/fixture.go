// SPDX-License-Identifier: EPL-2.0

// Package audiotest builds chunked audio files in memory for tests.
package audiotest

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
)

// Chunk encodes a RIFF style chunk with a little-endian size and the pad
// byte required after an odd length body.
func Chunk(id string, body []byte) []byte {
	return chunk(binary.LittleEndian, id, body)
}

// BigChunk is Chunk with a big-endian size, as used by AIFF.
func BigChunk(id string, body []byte) []byte {
	return chunk(binary.BigEndian, id, body)
}

func chunk(order binary.ByteOrder, id string, body []byte) []byte {
	b := make([]byte, 8, 8+len(body)+1)
	copy(b[0:4], id)
	order.PutUint32(b[4:8], uint32(len(body)))
	b = append(b, body...)
	if len(body)%2 == 1 {
		b = append(b, 0)
	}
	return b
}

// WAV describes a WAVE file to build. Zero fields take the defaults of a
// 48 kHz stereo 16-bit PCM file.
type WAV struct {
	Channels      int
	SampleRate    int
	BitsPerSample int
	Tag           uint16
	Data          []byte

	// Leading replaces the 4-byte RIFF tag when set.
	Leading string
	// BeforeFmt and BeforeData are raw chunks placed ahead of fmt and data.
	BeforeFmt  [][]byte
	BeforeData [][]byte
	NoFmt      bool
	NoData     bool
	// DataSize overrides the declared data chunk length when non-zero.
	DataSize uint32
}

func (w WAV) defaults() WAV {
	if w.Channels == 0 {
		w.Channels = 2
	}
	if w.SampleRate == 0 {
		w.SampleRate = 48000
	}
	if w.BitsPerSample == 0 {
		w.BitsPerSample = 16
	}
	if w.Tag == 0 {
		w.Tag = 1
	}
	if w.Leading == "" {
		w.Leading = "RIFF"
	}
	return w
}

// FmtChunk is the 16-byte fmt chunk body of w.
func (w WAV) FmtChunk() []byte {
	w = w.defaults()
	block := w.Channels * w.BitsPerSample / 8

	b := make([]byte, 16)
	le := binary.LittleEndian
	le.PutUint16(b[0:2], w.Tag)
	le.PutUint16(b[2:4], uint16(w.Channels))
	le.PutUint32(b[4:8], uint32(w.SampleRate))
	le.PutUint32(b[8:12], uint32(w.SampleRate*block))
	le.PutUint16(b[12:14], uint16(block))
	le.PutUint16(b[14:16], uint16(w.BitsPerSample))
	return b
}

// Bytes renders the whole file.
func (w WAV) Bytes() []byte {
	w = w.defaults()

	var body []byte
	body = append(body, "WAVE"...)
	for _, c := range w.BeforeFmt {
		body = append(body, c...)
	}
	if !w.NoFmt {
		body = append(body, Chunk("fmt ", w.FmtChunk())...)
	}
	for _, c := range w.BeforeData {
		body = append(body, c...)
	}
	if !w.NoData {
		data := Chunk("data", w.Data)
		if w.DataSize != 0 {
			binary.LittleEndian.PutUint32(data[4:8], w.DataSize)
		}
		body = append(body, data...)
	}

	b := make([]byte, 8, 8+len(body))
	copy(b[0:4], w.Leading)
	binary.LittleEndian.PutUint32(b[4:8], uint32(len(body)))
	return append(b, body...)
}

// AIFF describes an AIFF file to build with the same defaults as WAV.
type AIFF struct {
	Channels      int
	SampleRate    int
	BitsPerSample int
	Data          []byte
	// SSNDOffset is the count of padding bytes ahead of the samples.
	SSNDOffset int
	Extra      [][]byte
	NoSSND     bool
	// Compression makes an AIFF-C file with this 4-byte compression type.
	Compression string
}

func (a AIFF) defaults() AIFF {
	if a.Channels == 0 {
		a.Channels = 2
	}
	if a.SampleRate == 0 {
		a.SampleRate = 48000
	}
	if a.BitsPerSample == 0 {
		a.BitsPerSample = 16
	}
	return a
}

// CommChunk is the 18-byte COMM chunk body of a.
func (a AIFF) CommChunk() []byte {
	a = a.defaults()
	frames := 0
	if fs := a.Channels * a.BitsPerSample / 8; fs > 0 {
		frames = len(a.Data) / fs
	}

	b := make([]byte, 18)
	be := binary.BigEndian
	be.PutUint16(b[0:2], uint16(a.Channels))
	be.PutUint32(b[2:6], uint32(frames))
	be.PutUint16(b[6:8], uint16(a.BitsPerSample))
	rate := goaudio.IntToIEEEFloat(a.SampleRate)
	copy(b[8:18], rate[:])

	if a.Compression != "" {
		// compression type, then an empty pascal string padded to even
		b = append(b, a.Compression...)
		b = append(b, 0, 0)
	}
	return b
}

// Bytes renders the whole file.
func (a AIFF) Bytes() []byte {
	a = a.defaults()

	var body []byte
	if a.Compression != "" {
		body = append(body, "AIFC"...)
		body = append(body, BigChunk("FVER", []byte{0xA2, 0x80, 0x51, 0x40})...)
	} else {
		body = append(body, "AIFF"...)
	}
	body = append(body, BigChunk("COMM", a.CommChunk())...)
	for _, c := range a.Extra {
		body = append(body, c...)
	}
	if !a.NoSSND {
		ssnd := make([]byte, 8+a.SSNDOffset, 8+a.SSNDOffset+len(a.Data))
		binary.BigEndian.PutUint32(ssnd[0:4], uint32(a.SSNDOffset))
		ssnd = append(ssnd, a.Data...)
		body = append(body, BigChunk("SSND", ssnd)...)
	}

	b := make([]byte, 8, 8+len(body))
	copy(b[0:4], "FORM")
	binary.BigEndian.PutUint32(b[4:8], uint32(len(body)))
	return append(b, body...)
}

// Sequence returns n bytes counting up from zero and wrapping at 256.
func Sequence(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i)
	}
	return b
}

// Sine renders frames of a 16-bit little-endian sine tone on every channel.
func Sine(frames, channels, sampleRate int, frequency float64) []byte {
	b := make([]byte, 0, frames*channels*2)
	for i := range frames {
		t := float64(i) / float64(sampleRate)
		v := int16(math.Sin(2*math.Pi*frequency*t) * 0.5 * math.MaxInt16)
		for range channels {
			b = binary.LittleEndian.AppendUint16(b, uint16(v))
		}
	}
	return b
}

// WriteFile stores data under name in a fresh temporary directory.
func WriteFile(t testing.TB, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write fixture %s: %v", name, err)
	}
	return path
}
