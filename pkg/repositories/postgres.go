package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cbodonnell/cardbridge/pkg/log"
	"github.com/cbodonnell/cardbridge/pkg/repositories/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository connects to the database and applies the
// migrations. The caller is responsible for calling Close() on the
// repository.
func NewPostgresRepository(ctx context.Context, connStr string) (Repository, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %v", err)
	}

	var username string
	var database string
	err = pool.QueryRow(ctx, "SELECT current_user, current_database()").Scan(&username, &database)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to query database: %v", err)
	}
	log.Info("Connected to %s as %s", database, username)

	scripts, err := readMigrations("postgres")
	if err != nil {
		pool.Close()
		return nil, err
	}
	for i, migration := range scripts {
		if _, err := pool.Exec(ctx, migration); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to execute migration %d: %v", i+1, err)
		}
	}

	return &PostgresRepository{
		pool: pool,
	}, nil
}

func (r *PostgresRepository) Close(ctx context.Context) error {
	r.pool.Close()
	return nil
}

func (r *PostgresRepository) SaveOutcomes(ctx context.Context, entries []models.JournalEntry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	q := `
	INSERT INTO journal (session_id, submission_id, kind, accepted, message, error_kind, executed_at, action, state)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (session_id, submission_id) DO UPDATE SET
		kind = $3, accepted = $4, message = $5, error_kind = $6, executed_at = $7, action = $8, state = $9;
	`
	for _, e := range entries {
		_, err = tx.Exec(ctx, q,
			e.SessionID, int64(e.SubmissionID), e.Kind, e.Accepted, e.Message, e.ErrorKind,
			e.ExecutedAt.UnixMilli(), string(e.Action), e.State,
		)
		if err != nil {
			return fmt.Errorf("failed to insert journal entry %d: %v", e.SubmissionID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}

	return nil
}

func (r *PostgresRepository) ListOutcomes(ctx context.Context, limit int) ([]models.JournalEntry, error) {
	q := `
	SELECT session_id, submission_id, kind, accepted, message, error_kind, executed_at, action::text, state
	FROM journal ORDER BY executed_at DESC, submission_id DESC LIMIT $1;
	`
	rows, err := r.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal: %v", err)
	}
	defer rows.Close()

	entries := []models.JournalEntry{}
	for rows.Next() {
		entry, err := scanPostgresEntry(rows)
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

func (r *PostgresRepository) GetOutcome(ctx context.Context, sessionID string, submissionID uint64) (*models.JournalEntry, error) {
	q := `
	SELECT session_id, submission_id, kind, accepted, message, error_kind, executed_at, action::text, state
	FROM journal WHERE session_id = $1 AND submission_id = $2;
	`
	entry, err := scanPostgresEntry(r.pool.QueryRow(ctx, q, sessionID, int64(submissionID)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &ErrNotFound{SessionID: sessionID, SubmissionID: submissionID}
		}
		return nil, err
	}

	return entry, nil
}

func scanPostgresEntry(row pgx.Row) (*models.JournalEntry, error) {
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
