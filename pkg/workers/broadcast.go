package workers

import (
	"context"

	"github.com/cbodonnell/cardbridge/pkg/bridge"
	"github.com/cbodonnell/cardbridge/pkg/log"
	"github.com/cbodonnell/cardbridge/pkg/messages"
	"github.com/cbodonnell/cardbridge/pkg/snapshot"
)

// Broadcaster delivers a message to every connected subscriber.
type Broadcaster interface {
	Broadcast(msg *messages.Message)
}

type OutcomeBroadcastWorker struct {
	broadcaster Broadcaster
	outcomeChan <-chan OutcomeEvent
}

// OutcomeNotification is the payload of an outcome message.
type OutcomeNotification struct {
	Outcome bridge.ActionOutcome    `json:"outcome"`
	State   *snapshot.StateSnapshot `json:"state,omitempty"`
}

type NewOutcomeBroadcastWorkerOptions struct {
	Broadcaster Broadcaster
	OutcomeChan <-chan OutcomeEvent
}

// NewOutcomeBroadcastWorker creates a new OutcomeBroadcastWorker.
// The worker pushes every executed outcome to the websocket subscribers.
func NewOutcomeBroadcastWorker(opts NewOutcomeBroadcastWorkerOptions) *OutcomeBroadcastWorker {
	return &OutcomeBroadcastWorker{
		broadcaster: opts.Broadcaster,
		outcomeChan: opts.OutcomeChan,
	}
}

func (w *OutcomeBroadcastWorker) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-w.outcomeChan:
			msg, err := messages.NewMessage(messages.MessageTypeOutcome, "", OutcomeNotification{
				Outcome: event.Outcome,
				State:   event.State,
			})
			if err != nil {
				log.Error("Failed to build outcome message for submission %d: %v", event.Outcome.SubmissionID, err)
				continue
			}
			w.broadcaster.Broadcast(msg)
		}
	}
}
