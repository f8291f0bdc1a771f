// SPDX-License-Identifier: EPL-2.0

package container

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMob_ConstructionOrder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	rt := loadRuntime(t, Options{})
	f, _ := createFile(t, rt)
	defer f.Close()

	hdr, err := f.Header()
	require.NoError(t, err)
	defer hdr.Release()

	mob, err := hdr.CreateMob()
	require.NoError(t, err)
	defer mob.Release()

	// no descriptor yet
	assert.ErrorIs(t, hdr.AddMob(ctx, mob), ErrNoDescriptor)

	desc, err := f.CreateWAVEDescriptor()
	require.NoError(t, err)
	defer desc.Release()
	view, err := desc.EssenceDescriptor()
	require.NoError(t, err)
	defer view.Release()

	require.NoError(t, mob.AppendEssenceDescriptor(view))
	assert.ErrorIs(t, mob.AppendEssenceDescriptor(view), ErrDescriptorAttached)

	// attached but not populated
	assert.ErrorIs(t, hdr.AddMob(ctx, mob), ErrIncompleteDescriptor)

	// essence needs a registered mob
	_, err = f.CreateEssence(ctx, mob, 1, CodecWAVE, ContainerAAF, view, CompressionEnable)
	assert.ErrorIs(t, err, ErrMobNotRegistered)

	require.NoError(t, desc.SetSummary([]byte{1}))
	require.NoError(t, desc.SetSampleRate(44100))
	require.NoError(t, desc.SetBitsPerSample(24))
	require.NoError(t, desc.SetChannels(1))
	require.NoError(t, hdr.AddMob(ctx, mob))

	// frozen after registration
	assert.ErrorIs(t, hdr.AddMob(ctx, mob), ErrMobRegistered)
	assert.ErrorIs(t, mob.SetName("late"), ErrMobRegistered)
	assert.ErrorIs(t, mob.AppendComment("k", "v"), ErrMobRegistered)
	assert.ErrorIs(t, desc.SetSampleRate(1), ErrMobRegistered)

	assert.Equal(t, 44100, view.SampleRate())
	assert.Equal(t, 24, view.BitsPerSample())
	assert.Equal(t, 1, view.Channels())
	assert.Equal(t, KindWAVE, view.Kind())
}

func TestCreateEssence_Validation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	rt := loadRuntime(t, Options{})
	f, _ := createFile(t, rt)
	defer f.Close()

	b := buildMob(t, f, "AudioMob")
	defer b.release(t)

	_, err := f.CreateEssence(ctx, b.mob, 0, CodecWAVE, ContainerAAF, b.view, CompressionEnable)
	assert.ErrorIs(t, err, ErrInvalidSlot)

	_, err = f.CreateEssence(ctx, b.mob, 1, CodecAIFC, ContainerAAF, b.view, CompressionEnable)
	assert.ErrorIs(t, err, ErrCodecMismatch)

	_, err = f.CreateEssence(ctx, b.mob, 1, CodecWAVE, ContainerExternal, b.view, CompressionEnable)
	assert.ErrorIs(t, err, ErrUnsupportedContainer)

	other := buildMob(t, f, "other")
	defer other.release(t)
	_, err = f.CreateEssence(ctx, b.mob, 1, CodecWAVE, ContainerAAF, other.view, CompressionEnable)
	assert.ErrorIs(t, err, ErrDescriptorMismatch)

	writeEssence(t, f, b, sequence(8), CompressionEnable)
	_, err = f.CreateEssence(ctx, b.mob, 1, CodecWAVE, ContainerAAF, b.view, CompressionEnable)
	assert.ErrorIs(t, err, ErrSlotInUse)

	acc, err := f.CreateEssence(ctx, b.mob, 2, CodecWAVE, ContainerAAF, b.view, CompressionEnable)
	require.NoError(t, err)
	_, err = acc.WriteSamples(3, make([]byte, 11))
	assert.ErrorIs(t, err, ErrShortBuffer)
	require.NoError(t, acc.Release())
}

func TestForeignObjects(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	rt := loadRuntime(t, Options{})
	f1, _ := createFile(t, rt)
	defer f1.Close()
	f2, _ := createFile(t, rt)
	defer f2.Close()

	b := buildMob(t, f1, "AudioMob")
	defer b.release(t)

	hdr2, err := f2.Header()
	require.NoError(t, err)
	defer hdr2.Release()

	assert.ErrorIs(t, hdr2.AddMob(ctx, b.mob), ErrForeignObject)
	_, err = f2.CreateEssence(ctx, b.mob, 1, CodecWAVE, ContainerAAF, b.view, CompressionEnable)
	assert.ErrorIs(t, err, ErrForeignObject)
}

func TestHandles_ReleaseOnce(t *testing.T) {
	t.Parallel()

	rt := loadRuntime(t, Options{})
	f, _ := createFile(t, rt)

	b := buildMob(t, f, "AudioMob")
	assert.Equal(t, map[string]int{"header": 1, "mob": 1, "descriptor": 1, "essence-descriptor": 1}, rt.LiveHandles())

	b.release(t)
	assert.Empty(t, rt.LiveHandles())

	assert.ErrorIs(t, b.mob.Release(), ErrReleased)
	assert.ErrorIs(t, b.mob.SetName("x"), ErrReleased)
	_, err := b.hdr.CreateMob()
	assert.ErrorIs(t, err, ErrReleased)

	require.NoError(t, f.Close())
	require.NoError(t, rt.Unload())
}

func TestHeader_LookupMob(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	rt := loadRuntime(t, Options{})
	f, _ := createFile(t, rt)
	defer f.Close()

	b := buildMob(t, f, "AudioMob")
	defer b.release(t)

	info, err := b.hdr.LookupMob(ctx, b.mob.ID())
	require.NoError(t, err)
	assert.Equal(t, "AudioMob", info.Name)

	_, err = b.hdr.LookupMob(ctx, NewMobID())
	assert.ErrorIs(t, err, ErrMobNotFound)
}

func TestMob_Comments(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	rt := loadRuntime(t, Options{})
	f, _ := createFile(t, rt)
	defer f.Close()

	hdr, err := f.Header()
	require.NoError(t, err)
	defer hdr.Release()
	mob, err := hdr.CreateMob()
	require.NoError(t, err)
	defer mob.Release()

	require.NoError(t, mob.AppendComment("Title", "Door Slam"))
	require.NoError(t, mob.AppendComment("Artist", "Foley Team"))

	desc, err := f.CreateAIFCDescriptor()
	require.NoError(t, err)
	defer desc.Release()
	require.NoError(t, desc.SetSummary([]byte("FORM")))
	require.NoError(t, desc.SetSampleRate(44100))
	require.NoError(t, desc.SetBitsPerSample(16))
	require.NoError(t, desc.SetChannels(2))
	require.NoError(t, desc.AppendLocator("file:///tmp/door.aif"))
	view, err := desc.EssenceDescriptor()
	require.NoError(t, err)
	defer view.Release()

	require.NoError(t, mob.AppendEssenceDescriptor(view))
	require.NoError(t, hdr.AddMob(ctx, mob))

	info, err := hdr.LookupMob(ctx, mob.ID())
	require.NoError(t, err)
	assert.Equal(t, []Comment{{"Title", "Door Slam"}, {"Artist", "Foley Team"}}, info.Comments)
	require.Len(t, info.Descriptors, 1)
	assert.Equal(t, KindAIFC, info.Descriptors[0].Kind)
	assert.Equal(t, []string{"file:///tmp/door.aif"}, info.Descriptors[0].Locators)
}
