package models

import (
	"encoding/json"
	"time"
)

// JournalEntry records one executed submission.
type JournalEntry struct {
	// SessionID identifies the server process; submission ids restart
	// with every process.
	SessionID    string          `json:"sessionId"`
	SubmissionID uint64          `json:"submissionId"`
	Kind         string          `json:"kind"`
	Accepted     bool            `json:"accepted"`
	Message      string          `json:"message,omitempty"`
	ErrorKind    string          `json:"errorKind,omitempty"`
	ExecutedAt   time.Time       `json:"executedAt"`
	Action       json.RawMessage `json:"action"`
	// State is the zstd-compressed JSON snapshot taken after the action.
	// Empty when no snapshot was available.
	State []byte `json:"-"`
}
