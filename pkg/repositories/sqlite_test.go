package repositories

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/cbodonnell/cardbridge/pkg/repositories/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEntries(sessionID string, base time.Time) []models.JournalEntry {
	return []models.JournalEntry{
		{
			SessionID:    sessionID,
			SubmissionID: 1,
			Kind:         "play_card",
			Accepted:     true,
			Message:      "played Strike on Jaw Worm for 6",
			ExecutedAt:   base,
			Action:       json.RawMessage(`{"kind":"play_card"}`),
			State:        []byte{0x28, 0xb5, 0x2f, 0xfd},
		},
		{
			SessionID:    sessionID,
			SubmissionID: 2,
			Kind:         "play_card",
			Accepted:     false,
			Message:      "card is not in hand",
			ExecutedAt:   base.Add(time.Millisecond),
			Action:       json.RawMessage(`{"kind":"play_card"}`),
		},
		{
			SessionID:    sessionID,
			SubmissionID: 3,
			Kind:         "end_turn",
			Accepted:     false,
			ErrorKind:    "execution_failed",
			Message:      "boom",
			ExecutedAt:   base.Add(2 * time.Millisecond),
			Action:       json.RawMessage(`{"kind":"end_turn"}`),
		},
	}
}

// testRepository exercises any Repository implementation.
func testRepository(t *testing.T, repo Repository) {
	ctx := context.Background()
	sessionID := uuid.NewString()
	base := time.Now().UTC().Truncate(time.Millisecond)
	entries := testEntries(sessionID, base)

	require.NoError(t, repo.SaveOutcomes(ctx, entries))
	// saving again replaces rather than duplicates
	require.NoError(t, repo.SaveOutcomes(ctx, entries[:1]))

	got, err := repo.ListOutcomes(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, uint64(3), got[0].SubmissionID)
	assert.Equal(t, uint64(2), got[1].SubmissionID)
	assert.Equal(t, "execution_failed", got[0].ErrorKind)

	entry, err := repo.GetOutcome(ctx, sessionID, 1)
	require.NoError(t, err)
	assert.True(t, entry.Accepted)
	assert.Equal(t, entries[0].State, entry.State)
	assert.True(t, base.Equal(entry.ExecutedAt))
	assert.JSONEq(t, string(entries[0].Action), string(entry.Action))

	entry, err = repo.GetOutcome(ctx, sessionID, 2)
	require.NoError(t, err)
	assert.Empty(t, entry.State)

	_, err = repo.GetOutcome(ctx, sessionID, 99)
	assert.True(t, IsNotFound(err))
}

func TestSQLiteRepository(t *testing.T) {
	ctx := context.Background()
	repo, err := Open(ctx, "sqlite://"+filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close(ctx) })

	testRepository(t, repo)
}

func TestSQLiteRepository_reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "journal.db")

	repo, err := NewSQLiteRepository(ctx, path)
	require.NoError(t, err)
	require.NoError(t, repo.SaveOutcomes(ctx, testEntries("s", time.Now())))
	require.NoError(t, repo.Close(ctx))

	repo, err = NewSQLiteRepository(ctx, path)
	require.NoError(t, err)
	defer repo.Close(ctx)
	got, err := repo.ListOutcomes(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestOpen_unsupported(t *testing.T) {
	_, err := Open(context.Background(), "mysql://localhost/db")
	assert.Error(t, err)
}
