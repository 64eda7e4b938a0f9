package bridge

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cbodonnell/cardbridge/pkg/actions"
	"github.com/cbodonnell/cardbridge/pkg/log"
	"github.com/cbodonnell/cardbridge/pkg/queue"
)

// Submission is a queued action tagged with its correlation id.
type Submission struct {
	ID          uint64
	Action      actions.Action
	SubmittedAt time.Time
}

// SubmissionHandle is returned to the caller of Submit. Status is always
// "queued": it acknowledges acceptance into the queue, not completion.
type SubmissionHandle struct {
	ID          uint64    `json:"submissionId"`
	Status      string    `json:"status"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// Bridge hands actions from any number of goroutines to the simulation
// goroutine. Submit is the only write side; DrainNext is the only read side
// and must be called from the simulation loop alone.
type Bridge struct {
	queue          queue.Queue
	outcomes       OutcomeStore
	maxOutcomeWait time.Duration
	now            func() time.Time

	// submitLock serializes id assignment with enqueue so id order equals
	// queue order.
	submitLock sync.Mutex
	lastIssued uint64

	outcomeLock  sync.Mutex
	lastRecorded uint64
	waiters      map[uint64][]chan ActionOutcome
}

// NewBridgeOptions contains options for creating a new Bridge.
type NewBridgeOptions struct {
	// Queue backs the bridge. Defaults to an unbounded InMemoryQueue.
	Queue queue.Queue
	// Outcomes retains executed outcomes. Defaults to a MemoryOutcomeStore
	// with DefaultOutcomeCapacity and DefaultOutcomeTTL.
	Outcomes OutcomeStore
	// MaxOutcomeWait caps WaitOutcome timeouts. Defaults to DefaultMaxOutcomeWait.
	MaxOutcomeWait time.Duration
	Now            func() time.Time
}

const DefaultMaxOutcomeWait = 10 * time.Second

func NewBridge(opts NewBridgeOptions) *Bridge {
	b := &Bridge{
		queue:          opts.Queue,
		outcomes:       opts.Outcomes,
		maxOutcomeWait: opts.MaxOutcomeWait,
		now:            opts.Now,
		waiters:        make(map[uint64][]chan ActionOutcome),
	}
	if b.now == nil {
		b.now = time.Now
	}
	if b.queue == nil {
		b.queue = queue.NewInMemoryQueue(0)
	}
	if b.outcomes == nil {
		b.outcomes = NewMemoryOutcomeStore(NewMemoryOutcomeStoreOptions{Now: b.now})
	}
	if b.maxOutcomeWait <= 0 {
		b.maxOutcomeWait = DefaultMaxOutcomeWait
	}
	return b
}

// Submit validates and enqueues an action and returns immediately. It never
// waits on the simulation. When the backing queue refuses the entry the
// error wraps queue.ErrQueueFull and nothing is enqueued.
func (b *Bridge) Submit(action actions.Action) (SubmissionHandle, error) {
	if err := action.Validate(); err != nil {
		return SubmissionHandle{}, err
	}

	b.submitLock.Lock()
	defer b.submitLock.Unlock()

	submission := &Submission{
		ID:          b.lastIssued + 1,
		Action:      action,
		SubmittedAt: b.now(),
	}
	if err := b.queue.Enqueue(submission); err != nil {
		return SubmissionHandle{}, fmt.Errorf("failed to enqueue %s: %w", action, err)
	}
	b.lastIssued = submission.ID

	log.Trace("Queued submission %d: %s", submission.ID, action)
	return SubmissionHandle{
		ID:          submission.ID,
		Status:      "queued",
		SubmittedAt: submission.SubmittedAt,
	}, nil
}

// DrainNext returns the oldest queued submission. It must only be called
// from the simulation loop.
func (b *Bridge) DrainNext() (Submission, bool) {
	for {
		item, ok := b.queue.Dequeue()
		if !ok {
			return Submission{}, false
		}
		submission, ok := item.(*Submission)
		if !ok {
			log.Error("Dropping unexpected queue item of type %T", item)
			continue
		}
		return *submission, true
	}
}

// Pending returns the number of queued submissions.
func (b *Bridge) Pending() int {
	return b.queue.Size()
}

// LastIssued returns the most recent submission id handed out.
func (b *Bridge) LastIssued() uint64 {
	b.submitLock.Lock()
	defer b.submitLock.Unlock()
	return b.lastIssued
}

// RecordOutcome stores the outcome of an executed submission and wakes any
// caller waiting on it. Called by the simulation loop after each action.
func (b *Bridge) RecordOutcome(ctx context.Context, outcome ActionOutcome) error {
	if outcome.ExecutedAt.IsZero() {
		outcome.ExecutedAt = b.now()
	}
	err := b.outcomes.Put(ctx, outcome)

	b.outcomeLock.Lock()
	if outcome.SubmissionID > b.lastRecorded {
		b.lastRecorded = outcome.SubmissionID
	}
	waiters := b.waiters[outcome.SubmissionID]
	delete(b.waiters, outcome.SubmissionID)
	b.outcomeLock.Unlock()

	for _, ch := range waiters {
		ch <- outcome
	}

	if err != nil {
		return fmt.Errorf("failed to store outcome %d: %w", outcome.SubmissionID, err)
	}
	return nil
}

// Outcome looks up a submission without waiting.
func (b *Bridge) Outcome(ctx context.Context, submissionID uint64) (OutcomeResult, error) {
	// Read before the store: Put happens before lastRecorded advances, so a
	// miss at or below this mark really was evicted.
	b.outcomeLock.Lock()
	lastRecorded := b.lastRecorded
	b.outcomeLock.Unlock()

	outcome, found, err := b.outcomes.Get(ctx, submissionID)
	if err != nil {
		return OutcomeResult{}, fmt.Errorf("failed to get outcome %d: %w", submissionID, err)
	}
	if found {
		return completed(outcome), nil
	}
	return OutcomeResult{SubmissionID: submissionID, Status: b.classifyMissing(submissionID, lastRecorded)}, nil
}

// WaitOutcome waits up to timeout for a submission's outcome. On expiry it
// returns a pending result rather than an error. The timeout is clamped to
// the bridge's maximum wait; a negative timeout does not wait.
func (b *Bridge) WaitOutcome(ctx context.Context, submissionID uint64, timeout time.Duration) (OutcomeResult, error) {
	if timeout > b.maxOutcomeWait {
		timeout = b.maxOutcomeWait
	}
	if timeout < 0 {
		timeout = 0
	}

	ch := make(chan ActionOutcome, 1)
	b.outcomeLock.Lock()
	b.waiters[submissionID] = append(b.waiters[submissionID], ch)
	b.outcomeLock.Unlock()
	defer b.removeWaiter(submissionID, ch)

	// Registered before the lookup so an outcome recorded in between is
	// still delivered on ch.
	result, err := b.Outcome(ctx, submissionID)
	if err != nil || result.Status != OutcomeStatusPending || timeout <= 0 {
		return result, err
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case outcome := <-ch:
		return completed(outcome), nil
	case <-timer.C:
		return OutcomeResult{SubmissionID: submissionID, Status: OutcomeStatusPending}, nil
	case <-ctx.Done():
		return OutcomeResult{}, ctx.Err()
	}
}

func (b *Bridge) removeWaiter(submissionID uint64, ch chan ActionOutcome) {
	b.outcomeLock.Lock()
	defer b.outcomeLock.Unlock()

	waiters := b.waiters[submissionID]
	for i, w := range waiters {
		if w == ch {
			waiters = append(waiters[:i], waiters[i+1:]...)
			break
		}
	}
	if len(waiters) == 0 {
		delete(b.waiters, submissionID)
	} else {
		b.waiters[submissionID] = waiters
	}
}

// classifyMissing decides why an outcome is absent. Submissions run in id
// order, so anything at or below the last recorded id has already run.
func (b *Bridge) classifyMissing(submissionID uint64, lastRecorded uint64) OutcomeStatus {
	switch {
	case submissionID == 0 || submissionID > b.LastIssued():
		return OutcomeStatusUnknown
	case submissionID <= lastRecorded:
		return OutcomeStatusExpired
	default:
		return OutcomeStatusPending
	}
}

func completed(outcome ActionOutcome) OutcomeResult {
	return OutcomeResult{
		SubmissionID: outcome.SubmissionID,
		Status:       OutcomeStatusCompleted,
		Outcome:      &outcome,
	}
}
