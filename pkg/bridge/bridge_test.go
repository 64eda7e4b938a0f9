package bridge

import (
	"context"
	"sync"
	"testing"
	"time"

	mocks "github.com/cbodonnell/cardbridge/mocks/github.com/cbodonnell/cardbridge/pkg/queue"
	"github.com/cbodonnell/cardbridge/pkg/actions"
	"github.com/cbodonnell/cardbridge/pkg/commands"
	"github.com/cbodonnell/cardbridge/pkg/queue"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestBridge_Submit_FIFOAcrossProducers(t *testing.T) {
	const producers = 8
	const perProducer = 250

	b := NewBridge(NewBridgeOptions{})

	type origin struct{ producer, seq int }
	var originsLock sync.Mutex
	origins := make(map[uuid.UUID]origin, producers*perProducer)

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				cardID := uuid.New()
				originsLock.Lock()
				origins[cardID] = origin{producer: p, seq: i}
				originsLock.Unlock()

				handle, err := b.Submit(actions.NewPlayCard(cardID, ""))
				assert.NoError(t, err)
				assert.Equal(t, "queued", handle.Status)
			}
		}(p)
	}
	wg.Wait()

	lastSeq := make([]int, producers)
	for i := range lastSeq {
		lastSeq[i] = -1
	}
	var expectedID uint64 = 1
	for {
		submission, ok := b.DrainNext()
		if !ok {
			break
		}
		require.Equal(t, expectedID, submission.ID, "submission ids must drain in order without gaps")
		expectedID++

		o := origins[submission.Action.PlayCard.CardID]
		assert.Equal(t, lastSeq[o.producer]+1, o.seq, "producer %d drained out of order", o.producer)
		lastSeq[o.producer] = o.seq
	}
	assert.Equal(t, uint64(producers*perProducer+1), expectedID)
	assert.Equal(t, 0, b.Pending())
}

func TestBridge_Submit_queueFull(t *testing.T) {
	mockQueue := mocks.NewQueue(t)
	b := NewBridge(NewBridgeOptions{Queue: mockQueue})

	mockQueue.EXPECT().Enqueue(mock.Anything).Return(queue.ErrQueueFull).Once()
	_, err := b.Submit(actions.NewEndTurn())
	require.Error(t, err)
	assert.Equal(t, commands.ErrorKindQueueFull, commands.KindOf(err))
	assert.Equal(t, uint64(0), b.LastIssued())

	mockQueue.EXPECT().Enqueue(mock.Anything).Return(nil).Once()
	handle, err := b.Submit(actions.NewEndTurn())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), handle.ID, "a refused submission must not consume an id")
}

func TestBridge_Submit_boundedQueue(t *testing.T) {
	b := NewBridge(NewBridgeOptions{Queue: queue.NewInMemoryQueue(2)})

	_, err := b.Submit(actions.NewEndTurn())
	require.NoError(t, err)
	_, err = b.Submit(actions.NewEndTurn())
	require.NoError(t, err)
	_, err = b.Submit(actions.NewEndTurn())
	assert.True(t, queue.IsQueueFull(err))
	assert.Equal(t, 2, b.Pending())
}

func TestBridge_Submit_rejectsInvalidAction(t *testing.T) {
	mockQueue := mocks.NewQueue(t)
	b := NewBridge(NewBridgeOptions{Queue: mockQueue})

	_, err := b.Submit(actions.Action{Kind: actions.KindPlayCard})
	assert.Equal(t, commands.ErrorKindValidation, commands.KindOf(err))
	mockQueue.AssertNotCalled(t, "Enqueue", mock.Anything)
}

func TestBridge_DrainNext(t *testing.T) {
	q := queue.NewInMemoryQueue(0)
	b := NewBridge(NewBridgeOptions{Queue: q})

	_, ok := b.DrainNext()
	assert.False(t, ok)

	require.NoError(t, q.Enqueue("not a submission"))
	_, err := b.Submit(actions.NewEndTurn())
	require.NoError(t, err)

	submission, ok := b.DrainNext()
	require.True(t, ok)
	assert.Equal(t, uint64(1), submission.ID)
	assert.Equal(t, actions.KindEndTurn, submission.Action.Kind)

	_, ok = b.DrainNext()
	assert.False(t, ok)
}

func TestBridge_Outcome(t *testing.T) {
	ctx := context.Background()
	b := NewBridge(NewBridgeOptions{
		Outcomes: NewMemoryOutcomeStore(NewMemoryOutcomeStoreOptions{Capacity: 1}),
	})

	for i := 0; i < 3; i++ {
		_, err := b.Submit(actions.NewEndTurn())
		require.NoError(t, err)
	}

	tests := []struct {
		name   string
		setup  func()
		id     uint64
		status OutcomeStatus
	}{
		{name: "zero id", id: 0, status: OutcomeStatusUnknown},
		{name: "never issued", id: 9, status: OutcomeStatusUnknown},
		{name: "queued", id: 1, status: OutcomeStatusPending},
		{
			name: "completed",
			setup: func() {
				require.NoError(t, b.RecordOutcome(ctx, ActionOutcome{SubmissionID: 1, Kind: actions.KindEndTurn, Accepted: true}))
			},
			id:     1,
			status: OutcomeStatusCompleted,
		},
		{
			name: "evicted",
			setup: func() {
				require.NoError(t, b.RecordOutcome(ctx, ActionOutcome{SubmissionID: 2, Kind: actions.KindEndTurn, Accepted: true}))
			},
			id:     1,
			status: OutcomeStatusExpired,
		},
		{name: "still queued", id: 3, status: OutcomeStatusPending},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setup != nil {
				tt.setup()
			}
			result, err := b.Outcome(ctx, tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.status, result.Status)
			if tt.status == OutcomeStatusCompleted {
				require.NotNil(t, result.Outcome)
				assert.True(t, result.Outcome.Accepted)
				assert.False(t, result.Outcome.ExecutedAt.IsZero())
			} else {
				assert.Nil(t, result.Outcome)
			}
		})
	}
}

func TestBridge_WaitOutcome_pendingOnTimeout(t *testing.T) {
	b := NewBridge(NewBridgeOptions{})
	handle, err := b.Submit(actions.NewEndTurn())
	require.NoError(t, err)

	start := time.Now()
	result, err := b.WaitOutcome(context.Background(), handle.ID, 20*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, OutcomeStatusPending, result.Status)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestBridge_WaitOutcome_clampsTimeout(t *testing.T) {
	b := NewBridge(NewBridgeOptions{MaxOutcomeWait: 20 * time.Millisecond})
	handle, err := b.Submit(actions.NewEndTurn())
	require.NoError(t, err)

	done := make(chan OutcomeResult, 1)
	go func() {
		result, _ := b.WaitOutcome(context.Background(), handle.ID, time.Hour)
		done <- result
	}()

	select {
	case result := <-done:
		assert.Equal(t, OutcomeStatusPending, result.Status)
	case <-time.After(2 * time.Second):
		t.Fatal("WaitOutcome ignored the maximum wait")
	}
}

func TestBridge_WaitOutcome_negativeTimeoutDoesNotWait(t *testing.T) {
	b := NewBridge(NewBridgeOptions{MaxOutcomeWait: time.Second})
	handle, err := b.Submit(actions.NewEndTurn())
	require.NoError(t, err)

	start := time.Now()
	result, err := b.WaitOutcome(context.Background(), handle.ID, -time.Hour)
	require.NoError(t, err)
	assert.Equal(t, OutcomeStatusPending, result.Status)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestBridge_WaitOutcome_wakesOnRecord(t *testing.T) {
	ctx := context.Background()
	b := NewBridge(NewBridgeOptions{})
	handle, err := b.Submit(actions.NewEndTurn())
	require.NoError(t, err)

	go func() {
		time.Sleep(10 * time.Millisecond)
		submission, ok := b.DrainNext()
		if !ok {
			return
		}
		_ = b.RecordOutcome(ctx, ActionOutcome{SubmissionID: submission.ID, Kind: submission.Action.Kind, Accepted: true})
	}()

	result, err := b.WaitOutcome(ctx, handle.ID, 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, OutcomeStatusCompleted, result.Status)
	require.NotNil(t, result.Outcome)
	assert.Equal(t, handle.ID, result.Outcome.SubmissionID)
}

func TestBridge_WaitOutcome_alreadyCompleted(t *testing.T) {
	ctx := context.Background()
	b := NewBridge(NewBridgeOptions{})
	handle, err := b.Submit(actions.NewEndTurn())
	require.NoError(t, err)
	require.NoError(t, b.RecordOutcome(ctx, ActionOutcome{SubmissionID: handle.ID, Accepted: false, Message: "not your turn"}))

	result, err := b.WaitOutcome(ctx, handle.ID, time.Second)
	require.NoError(t, err)
	assert.Equal(t, OutcomeStatusCompleted, result.Status)
	assert.Equal(t, "not your turn", result.Outcome.Message)
}

func TestBridge_WaitOutcome_contextCancelled(t *testing.T) {
	b := NewBridge(NewBridgeOptions{})
	handle, err := b.Submit(actions.NewEndTurn())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = b.WaitOutcome(ctx, handle.ID, time.Second)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBridge_WaitOutcome_unknown(t *testing.T) {
	b := NewBridge(NewBridgeOptions{})

	result, err := b.WaitOutcome(context.Background(), 42, time.Second)
	require.NoError(t, err)
	assert.Equal(t, OutcomeStatusUnknown, result.Status)
}
