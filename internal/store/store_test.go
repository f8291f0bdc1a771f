// SPDX-License-Identifier: EPL-2.0

package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) (*Store, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.aaf")
	s, err := Open(context.Background(), path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s, path
}

func testMob(id string) *Mob {
	return &Mob{
		ID:   id,
		Name: "AudioMob",
		Kind: "source",
		Comments: []Comment{
			{Position: 1, Name: "Title", Value: "Door Slam"},
			{Position: 0, Name: "Description", Value: "door slam, heavy"},
		},
		Descriptors: []Descriptor{{
			Kind:          "WAVE",
			SampleRate:    48000,
			Channels:      2,
			BitsPerSample: 16,
			Length:        25,
			Summary:       []byte("RIFF"),
			Locators:      []Locator{{URL: "file:///tmp/door.wav"}},
		}},
	}
}

func TestStore_InsertAndLoadMob(t *testing.T) {
	t.Parallel()

	s, _ := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.InsertMob(ctx, testMob("mob-1")))

	got, err := s.Mob(ctx, "mob-1")
	require.NoError(t, err)
	assert.Equal(t, "AudioMob", got.Name)
	require.Len(t, got.Comments, 2)
	assert.Equal(t, "Description", got.Comments[0].Name)
	require.Len(t, got.Descriptors, 1)
	assert.Equal(t, int64(25), got.Descriptors[0].Length)
	assert.Equal(t, []byte("RIFF"), got.Descriptors[0].Summary)
	require.Len(t, got.Descriptors[0].Locators, 1)
	assert.Equal(t, "file:///tmp/door.wav", got.Descriptors[0].Locators[0].URL)

	ok, err := s.MobExists(ctx, "mob-1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStore_MobNotFound(t *testing.T) {
	t.Parallel()

	s, _ := setupTestStore(t)

	_, err := s.Mob(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	ok, err := s.MobExists(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_DuplicateMobRejected(t *testing.T) {
	t.Parallel()

	s, _ := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.InsertMob(ctx, testMob("dup")))
	assert.Error(t, s.InsertMob(ctx, testMob("dup")))
}

func TestStore_EssenceLifecycle(t *testing.T) {
	t.Parallel()

	s, _ := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.InsertMob(ctx, testMob("mob-1")))

	e := &Essence{MobID: "mob-1", SlotID: 1, Codec: "WAVE", Compressor: "none"}
	require.NoError(t, s.CreateEssence(ctx, e))
	require.NotZero(t, e.ID)

	// incomplete essences are invisible
	_, err := s.EssenceFor(ctx, "mob-1", 1)
	assert.ErrorIs(t, err, ErrNotFound)

	for seq, data := range [][]byte{{1, 2, 3, 4}, {5, 6}} {
		require.NoError(t, s.AppendSegment(ctx, &Segment{EssenceID: e.ID, Seq: seq, RawSize: len(data), Data: data}))
	}
	e.Length, e.Frames, e.Segments = 6, 3, 2
	require.NoError(t, s.CompleteEssence(ctx, e))

	got, err := s.EssenceFor(ctx, "mob-1", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(6), got.Length)
	assert.Equal(t, 2, got.Segments)
	assert.True(t, got.Complete)

	seg, err := s.Segment(ctx, e.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte{5, 6}, seg.Data)

	_, err = s.Segment(ctx, e.ID, 2)
	assert.ErrorIs(t, err, ErrNotFound)

	all, err := s.Essences(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestStore_DiscardEssence(t *testing.T) {
	t.Parallel()

	s, _ := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.InsertMob(ctx, testMob("mob-1")))

	e := &Essence{MobID: "mob-1", SlotID: 1}
	require.NoError(t, s.CreateEssence(ctx, e))
	require.NoError(t, s.AppendSegment(ctx, &Segment{EssenceID: e.ID, Data: []byte{1}}))

	require.NoError(t, s.DiscardEssence(ctx, e.ID))

	_, err := s.Segment(ctx, e.ID, 0)
	assert.ErrorIs(t, err, ErrNotFound)

	// the slot is free again
	require.NoError(t, s.CreateEssence(ctx, &Essence{MobID: "mob-1", SlotID: 1}))
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "reopen.aaf")
	ctx := context.Background()

	s, err := Open(ctx, path, nil)
	require.NoError(t, err)
	require.NoError(t, s.InsertMob(ctx, testMob("mob-1")))
	require.NoError(t, s.AddIdentification(ctx, &Identification{Generation: "01J0000000000000000000000A", ProductName: "aafembed"}))
	require.NoError(t, s.Close())

	s, err = Open(ctx, path, nil)
	require.NoError(t, err)
	defer s.Close()

	mobs, err := s.Mobs(ctx)
	require.NoError(t, err)
	require.Len(t, mobs, 1)
	assert.Equal(t, "mob-1", mobs[0].ID)

	ids, err := s.Identifications(ctx)
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.Equal(t, "aafembed", ids[0].ProductName)
	assert.Equal(t, path, s.Path())
}
