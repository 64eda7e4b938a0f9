package repositories

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when no journal entry matches a lookup.
type ErrNotFound struct {
	SessionID    string
	SubmissionID uint64
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("journal entry %s/%d not found", e.SessionID, e.SubmissionID)
}

func IsNotFound(err error) bool {
	var notFound *ErrNotFound
	return errors.As(err, &notFound)
}
