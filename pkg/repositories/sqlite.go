package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cbodonnell/cardbridge/pkg/repositories/models"
	_ "github.com/mattn/go-sqlite3"
)

type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens the database file at path, creating it if
// needed, and applies the migrations.
func NewSQLiteRepository(ctx context.Context, path string) (Repository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	scripts, err := readMigrations("sqlite")
	if err != nil {
		db.Close()
		return nil, err
	}
	for i, migration := range scripts {
		if _, err := db.ExecContext(ctx, migration); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute migration %d: %v", i+1, err)
		}
	}

	return &SQLiteRepository{
		db: db,
	}, nil
}

func (r *SQLiteRepository) Close(ctx context.Context) error {
	return r.db.Close()
}

func (r *SQLiteRepository) SaveOutcomes(ctx context.Context, entries []models.JournalEntry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	q := `
	INSERT OR REPLACE INTO journal (session_id, submission_id, kind, accepted, message, error_kind, executed_at, action, state)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);
	`
	for _, e := range entries {
		_, err = tx.ExecContext(ctx, q,
			e.SessionID, int64(e.SubmissionID), e.Kind, e.Accepted, e.Message, e.ErrorKind,
			e.ExecutedAt.UnixMilli(), string(e.Action), e.State,
		)
		if err != nil {
			return fmt.Errorf("failed to insert journal entry %d: %v", e.SubmissionID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}

	return nil
}

func (r *SQLiteRepository) ListOutcomes(ctx context.Context, limit int) ([]models.JournalEntry, error) {
	q := `
	SELECT session_id, submission_id, kind, accepted, message, error_kind, executed_at, action, state
	FROM journal ORDER BY executed_at DESC, submission_id DESC LIMIT ?;
	`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal: %v", err)
	}
	defer rows.Close()

	entries := []models.JournalEntry{}
	for rows.Next() {
		entry, err := scanSQLiteEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read journal: %v", err)
	}

	return entries, nil
}

func (r *SQLiteRepository) GetOutcome(ctx context.Context, sessionID string, submissionID uint64) (*models.JournalEntry, error) {
	q := `
	SELECT session_id, submission_id, kind, accepted, message, error_kind, executed_at, action, state
	FROM journal WHERE session_id = ? AND submission_id = ?;
	`
	entry, err := scanSQLiteEntry(r.db.QueryRowContext(ctx, q, sessionID, int64(submissionID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &ErrNotFound{SessionID: sessionID, SubmissionID: submissionID}
		}
		return nil, err
	}

	return entry, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSQLiteEntry(row scanner) (*models.JournalEntry, error) {
	var (
		entry        models.JournalEntry
		submissionID int64
		executedAt   int64
		action       string
	)
	err := row.Scan(
		&entry.SessionID, &submissionID, &entry.Kind, &entry.Accepted, &entry.Message, &entry.ErrorKind,
		&executedAt, &action, &entry.State,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan journal entry: %w", err)
	}
	entry.SubmissionID = uint64(submissionID)
	entry.ExecutedAt = time.UnixMilli(executedAt).UTC()
	entry.Action = []byte(action)

	return &entry, nil
}
