package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"labadmin/internal/crud"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return s
}

func TestStore_RecordAndRecent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, crud.Event{Entity: "contact", Action: crud.ActionCreate, Outcome: crud.OutcomeSaved, RequestID: "r1"}))
	require.NoError(t, s.Record(ctx, crud.Event{Entity: "achievement", Action: crud.ActionUpdate, TargetID: "3", Outcome: crud.OutcomeSaveFailed, RequestID: "r2", Detail: "status 500"}))
	require.NoError(t, s.Record(ctx, crud.Event{Entity: "contact", Action: crud.ActionDelete, TargetID: "7", Outcome: crud.OutcomeDeleted, RequestID: "r3"}))

	entries, err := s.Recent(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "r3", entries[0].RequestID, "newest first")
	assert.Equal(t, crud.Identifier("7"), entries[0].TargetID)
	assert.Equal(t, crud.ActionDelete, entries[0].Action)
	assert.False(t, entries[0].Failed())

	assert.Equal(t, "status 500", entries[1].Detail)
	assert.True(t, entries[1].Failed())
	assert.True(t, entries[1].Timestamp.Before(entries[0].Timestamp))
	assert.NotEmpty(t, entries[2].ID)
}

func TestStore_RecentFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, ev := range []crud.Event{
		{Entity: "contact", Action: crud.ActionCreate, Outcome: crud.OutcomeSaved},
		{Entity: "contact", Action: crud.ActionCreate, Outcome: crud.OutcomeInvalid},
		{Entity: "achievement", Action: crud.ActionDelete, Outcome: crud.OutcomeDeleteFailed},
		{Entity: "achievement", Action: crud.ActionDelete, Outcome: crud.OutcomeDeleted},
	} {
		require.NoError(t, s.Record(ctx, ev))
	}

	contacts, err := s.Recent(ctx, Filter{Entity: "contact"})
	require.NoError(t, err)
	assert.Len(t, contacts, 2)

	failed, err := s.Recent(ctx, Filter{FailedOnly: true})
	require.NoError(t, err)
	require.Len(t, failed, 2)
	for _, e := range failed {
		assert.True(t, e.Failed())
	}

	limited, err := s.Recent(ctx, Filter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, crud.OutcomeDeleted, limited[0].Outcome)
}

func TestStore_Prune(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, crud.Event{Entity: "contact", Action: crud.ActionCreate, Outcome: crud.OutcomeSaved}))
	cutoff := s.now()
	require.NoError(t, s.Record(ctx, crud.Event{Entity: "contact", Action: crud.ActionCreate, Outcome: crud.OutcomeSaved}))

	removed, err := s.Prune(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "journal.db")
	ctx := context.Background()

	s, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Record(ctx, crud.Event{Entity: "research person", Action: crud.ActionCreate, Outcome: crud.OutcomeSaved}))
	require.NoError(t, s.Close())

	reopened, err := NewStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	entries, err := reopened.Recent(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "research person", entries[0].Entity)
	assert.Equal(t, path, reopened.Path())
}
