package workers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cbodonnell/cardbridge/pkg/log"
	"github.com/cbodonnell/cardbridge/pkg/messages"
	"github.com/cbodonnell/cardbridge/pkg/repositories"
	"github.com/cbodonnell/cardbridge/pkg/repositories/models"
)

const journalShutdownTimeout = 5 * time.Second

type JournalWorker struct {
	repository  repositories.Repository
	outcomeChan <-chan OutcomeEvent
	sessionID   string
	interval    time.Duration
	batchSize   int

	pending []models.JournalEntry
}

type NewJournalWorkerOptions struct {
	Repository  repositories.Repository
	OutcomeChan <-chan OutcomeEvent
	// SessionID tags every entry written by this process.
	SessionID string
	Interval  time.Duration
	BatchSize int
}

// NewJournalWorker creates a new JournalWorker.
// The worker collects outcomes from the game loop and writes them to the
// repository in batches, every interval or when a batch is full.
func NewJournalWorker(opts NewJournalWorkerOptions) *JournalWorker {
	w := &JournalWorker{
		repository:  opts.Repository,
		outcomeChan: opts.OutcomeChan,
		sessionID:   opts.SessionID,
		interval:    opts.Interval,
		batchSize:   opts.BatchSize,
	}
	if w.interval <= 0 {
		w.interval = 2 * time.Second
	}
	if w.batchSize <= 0 {
		w.batchSize = 64
	}
	return w
}

func (w *JournalWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), journalShutdownTimeout)
			w.flush(flushCtx)
			cancel()
			return
		case event := <-w.outcomeChan:
			w.pending = append(w.pending, w.entryFromEvent(event))
			if len(w.pending) >= w.batchSize {
				w.flush(ctx)
			}
		case <-ticker.C:
			w.flush(ctx)
		}
	}
}

// flush writes the pending batch. A batch that fails to save is dropped.
func (w *JournalWorker) flush(ctx context.Context) {
	if len(w.pending) == 0 {
		return
	}
	if err := w.repository.SaveOutcomes(ctx, w.pending); err != nil {
		log.Error("Failed to save %d journal entries: %v", len(w.pending), err)
	} else {
		log.Trace("Saved %d journal entries", len(w.pending))
	}
	w.pending = nil
}

func (w *JournalWorker) entryFromEvent(event OutcomeEvent) models.JournalEntry {
	entry := models.JournalEntry{
		SessionID:    w.sessionID,
		SubmissionID: event.Outcome.SubmissionID,
		Kind:         string(event.Outcome.Kind),
		Accepted:     event.Outcome.Accepted,
		Message:      event.Outcome.Message,
		ErrorKind:    string(event.Outcome.ErrorKind),
		ExecutedAt:   event.Outcome.ExecutedAt,
	}

	action, err := json.Marshal(event.Action)
	if err != nil {
		log.Error("Failed to marshal action for submission %d: %v", entry.SubmissionID, err)
		action = []byte("{}")
	}
	entry.Action = action

	if event.State != nil {
		state, err := messages.CompressJSON(event.State)
		if err != nil {
			log.Error("Failed to compress state for submission %d: %v", entry.SubmissionID, err)
		} else {
			entry.State = state
		}
	}
	return entry
}
