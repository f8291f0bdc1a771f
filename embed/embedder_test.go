// SPDX-License-Identifier: EPL-2.0

package embed

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/aafembed/audio"
	"github.com/ik5/aafembed/container"
	"github.com/ik5/aafembed/formats/aiff"
	"github.com/ik5/aafembed/formats/wav"
	"github.com/ik5/aafembed/internal/audiotest"
)

type fixture struct {
	rt   *container.Runtime
	f    container.File
	path string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	rt, err := container.Load(container.Options{Compressor: "brotli"})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.aaf")
	f, err := rt.CreateFile(context.Background(), path, container.ExistenceNew, container.AccessModify)
	require.NoError(t, err)

	return &fixture{rt: rt, f: f, path: path}
}

func parseWAV(t *testing.T, w audiotest.WAV) *audio.Header {
	t.Helper()

	hdr, err := wav.ParseFile(audiotest.WriteFile(t, "in.wav", w.Bytes()))
	require.NoError(t, err)
	return hdr
}

// readBack saves and closes fx.f, reopens the output and returns its mobs
// together with the essence bytes of every mob's first slot.
func readBack(t *testing.T, fx *fixture) ([]container.MobInfo, [][]byte) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, fx.f.Save(ctx))
	require.NoError(t, fx.f.Close())

	f, err := fx.rt.OpenFile(ctx, fx.path)
	require.NoError(t, err)
	defer f.Close()

	hdr, err := f.Header()
	require.NoError(t, err)
	defer hdr.Release()

	mobs, err := hdr.Mobs(ctx)
	require.NoError(t, err)

	var data [][]byte
	for _, m := range mobs {
		require.Len(t, m.Essences, 1)
		r, err := f.OpenEssence(ctx, m.ID, m.Essences[0].Slot)
		require.NoError(t, err)

		var got []byte
		buf := make([]byte, 4096)
		fs := r.Info().FrameSize()
		for {
			n, err := r.ReadSamples(buf)
			got = append(got, buf[:n*fs]...)
			if errors.Is(err, io.EOF) {
				break
			}
			require.NoError(t, err)
		}
		require.NoError(t, r.Release())
		data = append(data, got)
	}
	return mobs, data
}

func TestEmbed_EndToEnd(t *testing.T) {
	t.Parallel()

	data := audiotest.Sequence(100)
	hdr := parseWAV(t, audiotest.WAV{Data: data})

	fx := newFixture(t)
	em := New(Config{Locator: true})

	res, err := em.Embed(context.Background(), fx.f, WAVEAudio{Header: hdr})
	require.NoError(t, err)

	assert.Equal(t, int64(25), res.SamplesWritten)
	assert.Equal(t, container.SlotID(1), res.Slot)
	assert.Equal(t, DefaultMobName, res.MobName)
	assert.Zero(t, res.DroppedBytes)
	assert.Empty(t, fx.rt.LiveHandles())

	mobs, essence := readBack(t, fx)
	require.Len(t, mobs, 1)

	m := mobs[0]
	assert.Equal(t, res.MobID, m.ID)
	assert.Equal(t, "AudioMob", m.Name)
	require.Len(t, m.Descriptors, 1)

	d := m.Descriptors[0]
	assert.Equal(t, container.KindWAVE, d.Kind)
	assert.Equal(t, 48000, d.SampleRate)
	assert.Equal(t, 16, d.BitsPerSample)
	assert.Equal(t, 2, d.Channels)
	assert.Equal(t, int64(25), d.Length)
	assert.Equal(t, hdr.Summary, d.Summary)
	require.Len(t, d.Locators, 1)
	assert.True(t, strings.HasPrefix(d.Locators[0], "file:///"))
	assert.True(t, strings.HasSuffix(d.Locators[0], "/in.wav"))

	assert.Equal(t, container.CodecWAVE, m.Essences[0].Codec)
	assert.Equal(t, int64(25), m.Essences[0].Frames)
	assert.Equal(t, data, essence[0])

	require.NoError(t, fx.rt.Unload())
}

func TestEmbed_PartialFrameDropped(t *testing.T) {
	t.Parallel()

	const k = 10
	data := audiotest.Sequence(4*k + 3)
	hdr := parseWAV(t, audiotest.WAV{Data: data})

	fx := newFixture(t)
	res, err := New(Config{}).Embed(context.Background(), fx.f, WAVEAudio{Header: hdr})
	require.NoError(t, err)

	assert.Equal(t, int64(k), res.SamplesWritten)
	assert.Equal(t, int64(3), res.DroppedBytes)

	mobs, essence := readBack(t, fx)
	require.Len(t, mobs, 1)
	assert.Equal(t, int64(k), mobs[0].Descriptors[0].Length)
	assert.Equal(t, data[:4*k], essence[0])
}

func TestEmbed_StrictFramesRejectsBeforeMutation(t *testing.T) {
	t.Parallel()

	hdr := parseWAV(t, audiotest.WAV{Data: audiotest.Sequence(4*10 + 3)})

	fx := newFixture(t)
	defer fx.f.Close()

	_, err := New(Config{StrictFrames: true}).Embed(context.Background(), fx.f, WAVEAudio{Header: hdr})

	var fe *audio.FormatError
	require.ErrorAs(t, err, &fe)
	assert.ErrorIs(t, err, audio.ErrPartialFrame)
	_, isEmbed := StageOf(err)
	assert.False(t, isEmbed)
	assert.Empty(t, fx.rt.LiveHandles())
}

func TestEmbed_TwiceCreatesDistinctMobs(t *testing.T) {
	t.Parallel()

	data := audiotest.Sequence(64)
	hdr := parseWAV(t, audiotest.WAV{Data: data})

	fx := newFixture(t)
	em := New(Config{})

	first, err := em.Embed(context.Background(), fx.f, WAVEAudio{Header: hdr})
	require.NoError(t, err)
	second, err := em.Embed(context.Background(), fx.f, WAVEAudio{Header: hdr})
	require.NoError(t, err)

	assert.NotEqual(t, first.MobID, second.MobID)
	assert.Equal(t, container.SlotID(1), first.Slot)
	assert.Equal(t, container.SlotID(2), second.Slot)

	mobs, essence := readBack(t, fx)
	require.Len(t, mobs, 2)
	assert.Equal(t, data, essence[0])
	assert.Equal(t, data, essence[1])
}

// essenceFault fails every CreateEssence call.
type essenceFault struct {
	container.File
}

var errInjected = errors.New("injected essence failure")

func (essenceFault) CreateEssence(context.Context, container.Mob, container.SlotID, container.Codec,
	container.ContainerDef, container.EssenceDescriptor, container.Compression) (container.EssenceAccess, error) {
	return nil, errInjected
}

func TestEmbed_EssenceOpenFailureReleasesEverything(t *testing.T) {
	t.Parallel()

	hdr := parseWAV(t, audiotest.WAV{Data: audiotest.Sequence(100)})
	fx := newFixture(t)

	_, err := New(Config{}).Embed(context.Background(), essenceFault{fx.f}, WAVEAudio{Header: hdr})
	require.Error(t, err)

	var ee *EmbedError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, StageEssenceOpen, ee.Stage)
	assert.Equal(t, "AudioMob", ee.Mob)
	assert.ErrorIs(t, err, errInjected)

	assert.Empty(t, fx.rt.LiveHandles())

	require.NoError(t, fx.f.Close())
	_, statErr := os.Stat(fx.path)
	assert.ErrorIs(t, statErr, os.ErrNotExist)

	entries, err := os.ReadDir(filepath.Dir(fx.path))
	require.NoError(t, err)
	assert.Empty(t, entries)

	require.NoError(t, fx.rt.Unload())
}

func TestEmbed_NextSlotUnchangedAfterFailure(t *testing.T) {
	t.Parallel()

	hdr := parseWAV(t, audiotest.WAV{Data: audiotest.Sequence(16)})
	fx := newFixture(t)
	defer fx.f.Close()

	em := New(Config{})
	_, err := em.Embed(context.Background(), essenceFault{fx.f}, WAVEAudio{Header: hdr})
	require.Error(t, err)

	res, err := em.Embed(context.Background(), fx.f, WAVEAudio{Header: hdr})
	require.NoError(t, err)
	assert.Equal(t, container.SlotID(1), res.Slot)
}

func TestEmbed_ReadOnlyFileFailsAtMobCreate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	hdr := parseWAV(t, audiotest.WAV{Data: audiotest.Sequence(16)})
	fx := newFixture(t)
	require.NoError(t, fx.f.Save(ctx))
	require.NoError(t, fx.f.Close())

	f, err := fx.rt.OpenFile(ctx, fx.path)
	require.NoError(t, err)
	defer f.Close()

	_, err = New(Config{}).Embed(ctx, f, WAVEAudio{Header: hdr})
	stage, ok := StageOf(err)
	require.True(t, ok)
	assert.Equal(t, StageMobCreate, stage)
	assert.ErrorIs(t, err, container.ErrReadOnly)
	assert.Empty(t, fx.rt.LiveHandles())
}

// cancelOnRead cancels its context on the first read.
type cancelOnRead struct {
	audio.FrameSource
	cancel context.CancelFunc
}

func (c cancelOnRead) ReadFrames(dst []byte) (int, error) {
	c.cancel()
	return c.FrameSource.ReadFrames(dst)
}

func TestEmbed_CancelledDuringWrite(t *testing.T) {
	t.Parallel()

	hdr := parseWAV(t, audiotest.WAV{Data: audiotest.Sequence(400)})
	buf, err := audio.ReadPayload(hdr.Path, hdr.Payload, hdr.Format)
	require.NoError(t, err)

	fx := newFixture(t)
	defer fx.f.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	src := cancelOnRead{FrameSource: audio.NewBufferSource(buf), cancel: cancel}

	_, err = New(Config{}).Embed(ctx, fx.f, WAVEAudio{Header: hdr, Source: src})
	stage, ok := StageOf(err)
	require.True(t, ok)
	assert.Equal(t, StageWrite, stage)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, fx.rt.LiveHandles())
}

func TestEmbed_BufferSourceSmallChunks(t *testing.T) {
	t.Parallel()

	data := audiotest.Sine(300, 2, 48000, 440)
	hdr := parseWAV(t, audiotest.WAV{Data: data})

	buf, err := audio.ReadPayload(hdr.Path, hdr.Payload, hdr.Format)
	require.NoError(t, err)

	fx := newFixture(t)
	res, err := New(Config{ChunkSize: 7, Compression: container.CompressionDisable}).
		Embed(context.Background(), fx.f, WAVEAudio{Header: hdr, Source: audio.NewBufferSource(buf)})
	require.NoError(t, err)
	assert.Equal(t, int64(300), res.SamplesWritten)

	_, essence := readBack(t, fx)
	assert.Equal(t, data, essence[0])
}

func TestEmbed_MetadataComments(t *testing.T) {
	t.Parallel()

	info := append([]byte("INFO"), audiotest.Chunk("INAM", []byte("Door Slam\x00"))...)
	hdr := parseWAV(t, audiotest.WAV{
		Data:       audiotest.Sequence(16),
		BeforeData: [][]byte{audiotest.Chunk("LIST", info)},
	})

	fx := newFixture(t)
	_, err := New(Config{Metadata: true, MobName: "Foley"}).Embed(context.Background(), fx.f, WAVEAudio{Header: hdr})
	require.NoError(t, err)

	mobs, _ := readBack(t, fx)
	require.Len(t, mobs, 1)
	assert.Equal(t, "Foley", mobs[0].Name)
	assert.Equal(t, []container.Comment{{Name: "Title", Value: "Door Slam"}}, mobs[0].Comments)
}

func TestEmbed_AIFC(t *testing.T) {
	t.Parallel()

	data := audiotest.Sequence(4 * 12)
	path := audiotest.WriteFile(t, "in.aiff", audiotest.AIFF{SampleRate: 44100, Data: data}.Bytes())
	hdr, err := aiff.ParseFile(path)
	require.NoError(t, err)

	fx := newFixture(t)
	asset := AssetFor(hdr, nil)
	require.IsType(t, AIFCAudio{}, asset)

	res, err := New(Config{MobName: "Take"}).Embed(context.Background(), fx.f, asset)
	require.NoError(t, err)
	assert.Equal(t, int64(12), res.SamplesWritten)

	mobs, essence := readBack(t, fx)
	require.Len(t, mobs, 1)
	assert.Equal(t, container.KindAIFC, mobs[0].Descriptors[0].Kind)
	assert.Equal(t, 44100, mobs[0].Descriptors[0].SampleRate)
	assert.Equal(t, container.CodecAIFC, mobs[0].Essences[0].Codec)
	assert.Equal(t, data, essence[0])
}

func TestEmbed_VideoNotImplemented(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	defer fx.f.Close()

	_, err := New(Config{}).Embed(context.Background(), fx.f, DNxVideo{File: "clip.mxf"})
	assert.ErrorIs(t, err, ErrVideoNotImplemented)
	assert.Empty(t, fx.rt.LiveHandles())
}

func TestEmbed_MissingHeader(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	defer fx.f.Close()

	_, err := New(Config{}).Embed(context.Background(), fx.f, WAVEAudio{})
	assert.ErrorIs(t, err, ErrNoSource)
}

func TestEmbedError_Message(t *testing.T) {
	t.Parallel()

	err := &EmbedError{Stage: StageMobRegister, Mob: "AudioMob", Err: container.ErrIncompleteDescriptor}
	assert.Equal(t, `embed mob-register (mob "AudioMob"): `+container.ErrIncompleteDescriptor.Error(), err.Error())

	err = &EmbedError{Stage: StageHeaderFetch, Err: container.ErrFileClosed}
	assert.Equal(t, "embed header-fetch: "+container.ErrFileClosed.Error(), err.Error())
}

func TestLocator(t *testing.T) {
	t.Parallel()

	loc, err := Locator("/media/takes/door slam.wav")
	require.NoError(t, err)
	assert.Equal(t, "file:///media/takes/door%20slam.wav", loc)
}
