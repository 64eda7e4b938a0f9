package workers

import (
	"github.com/cbodonnell/cardbridge/pkg/actions"
	"github.com/cbodonnell/cardbridge/pkg/bridge"
	"github.com/cbodonnell/cardbridge/pkg/snapshot"
)

// OutcomeEvent is published by the simulation loop after each executed
// submission.
type OutcomeEvent struct {
	Outcome bridge.ActionOutcome
	Action  actions.Action
	// State is the snapshot taken right after the action ran. It is nil
	// when the run ended as a result of the action.
	State *snapshot.StateSnapshot
}
