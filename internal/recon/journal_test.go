package recon

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j := NewJournal(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, j.Open())
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestJournalRecordAndLast(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	last, err := j.Last(ctx)
	require.NoError(t, err)
	assert.Nil(t, last)

	started := time.Now().Add(-time.Second)
	id, err := j.Record(ctx, &Waypoint{
		StartedAt:  started,
		FinishedAt: time.Now(),
		Creates:    3,
		Updates:    1,
		Deletes:    2,
		Renames:    1,
		Summary: WaypointSummary{
			Renames: []Rename{{FromPath: "Crate~1", ToPath: "Crate"}},
		},
	})
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))

	last, err = j.Last(ctx)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, id, last.ID)
	assert.Equal(t, 3, last.Creates)
	assert.Equal(t, 1, last.Updates)
	assert.Equal(t, 2, last.Deletes)
	assert.Equal(t, 1, last.Renames)
	require.Len(t, last.Summary.Renames, 1)
	assert.Equal(t, "Crate", last.Summary.Renames[0].ToPath)
	assert.WithinDuration(t, started, last.StartedAt, time.Millisecond)
}

func TestJournalCount(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	n, err := j.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	for i := 0; i < 3; i++ {
		_, err := j.Record(ctx, &Waypoint{StartedAt: time.Now(), FinishedAt: time.Now()})
		require.NoError(t, err)
	}

	n, err = j.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
