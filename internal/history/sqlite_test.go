package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStoreRecordsSuccessAndFailure(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "state", "history.db"))
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, store.Record(ctx, Entry{
		BuildID: "b1", StartedAt: base, FinishedAt: base.Add(150 * time.Millisecond),
		Outcome: OutcomeSuccess, Clean: true, Actions: 3, Commands: 7, Digest: "abc",
	}))
	require.NoError(t, store.Record(ctx, Entry{
		BuildID: "b2", StartedAt: base.Add(time.Second), FinishedAt: base.Add(2 * time.Second),
		Outcome: OutcomeFailed, Action: "posts", Error: "boom",
	}))

	recent, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "b2", recent[0].BuildID)
	assert.Equal(t, OutcomeFailed, recent[0].Outcome)
	assert.Equal(t, "posts", recent[0].Action)
	assert.Equal(t, "boom", recent[0].Error)
	assert.Equal(t, OutcomeSuccess, recent[1].Outcome)
	assert.True(t, recent[1].Clean)
	assert.Equal(t, 150*time.Millisecond, recent[1].Duration())

	limited, err := store.Recent(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	got, ok, err := store.Get(ctx, "b1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "abc", got.Digest)
	assert.Equal(t, 7, got.Commands)

	_, ok, err = store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteStoreInMemory(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Record(context.Background(), Entry{BuildID: "x", Outcome: OutcomeSuccess}))
	all, err := store.Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestNoopStore(t *testing.T) {
	var s Store = Noop{}
	require.NoError(t, s.Record(context.Background(), Entry{}))
	entries, err := s.Recent(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.NoError(t, s.Close())
}
