package repositories

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/cbodonnell/cardbridge/pkg/repositories/models"
)

//go:embed migrations
var migrations embed.FS

// Repository is the outcome journal. It is an audit trail only; nothing
// is replayed from it.
type Repository interface {
	Close(ctx context.Context) error
	SaveOutcomes(ctx context.Context, entries []models.JournalEntry) error
	// ListOutcomes returns up to limit entries, newest first.
	ListOutcomes(ctx context.Context, limit int) ([]models.JournalEntry, error)
	// GetOutcome returns ErrNotFound when no entry matches.
	GetOutcome(ctx context.Context, sessionID string, submissionID uint64) (*models.JournalEntry, error)
}

// Open selects the repository implementation from the URL scheme:
// sqlite://path/to/file.db or postgres(ql)://user:pass@host/db.
func Open(ctx context.Context, databaseURL string) (Repository, error) {
	switch {
	case strings.HasPrefix(databaseURL, "sqlite://"):
		return NewSQLiteRepository(ctx, strings.TrimPrefix(databaseURL, "sqlite://"))
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return NewPostgresRepository(ctx, databaseURL)
	default:
		return nil, fmt.Errorf("unsupported database url %q", databaseURL)
	}
}

// readMigrations returns the migration scripts for a dialect in file name
// order.
func readMigrations(dialect string) ([]string, error) {
	dir := "migrations/" + dialect
	entries, err := fs.ReadDir(migrations, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %v", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	scripts := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		b, err := fs.ReadFile(migrations, dir+"/"+entry.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %s: %v", entry.Name(), err)
		}
		scripts = append(scripts, string(b))
	}
	return scripts, nil
}
