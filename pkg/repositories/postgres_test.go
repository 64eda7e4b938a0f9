package repositories

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// Set CARDBRIDGE_TEST_DATABASE_URL to a disposable postgres database to run.
func TestPostgresRepository(t *testing.T) {
	url := os.Getenv("CARDBRIDGE_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("CARDBRIDGE_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	repo, err := Open(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close(ctx) })

	testRepository(t, repo)
}
