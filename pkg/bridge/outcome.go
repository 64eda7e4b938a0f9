package bridge

import (
	"context"
	"time"

	"github.com/cbodonnell/cardbridge/pkg/actions"
	"github.com/cbodonnell/cardbridge/pkg/commands"
)

// ActionOutcome is produced by the simulation after running a submission.
type ActionOutcome struct {
	SubmissionID uint64             `json:"submissionId"`
	Kind         actions.Kind       `json:"kind"`
	Accepted     bool               `json:"accepted"`
	Message      string             `json:"message,omitempty"`
	ErrorKind    commands.ErrorKind `json:"errorKind,omitempty"`
	ExecutedAt   time.Time          `json:"executedAt"`
}

// OutcomeStatus describes where a submission is in its lifecycle.
type OutcomeStatus string

const (
	// OutcomeStatusPending means the action is queued or running.
	OutcomeStatusPending OutcomeStatus = "pending"
	// OutcomeStatusCompleted means the outcome is available.
	OutcomeStatusCompleted OutcomeStatus = "completed"
	// OutcomeStatusExpired means the action ran but its outcome has left
	// the retention window.
	OutcomeStatusExpired OutcomeStatus = "expired"
	// OutcomeStatusUnknown means the id was never issued.
	OutcomeStatusUnknown OutcomeStatus = "unknown"
)

// OutcomeResult answers a correlation query.
type OutcomeResult struct {
	SubmissionID uint64         `json:"submissionId"`
	Status       OutcomeStatus  `json:"status"`
	Outcome      *ActionOutcome `json:"outcome,omitempty"`
}

// OutcomeStore retains outcomes for a bounded window.
// Implementations must be safe for concurrent use.
type OutcomeStore interface {
	Put(ctx context.Context, outcome ActionOutcome) error
	Get(ctx context.Context, submissionID uint64) (ActionOutcome, bool, error)
}
