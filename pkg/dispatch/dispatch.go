package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/cbodonnell/cardbridge/pkg/actions"
	"github.com/cbodonnell/cardbridge/pkg/bridge"
	"github.com/cbodonnell/cardbridge/pkg/commands"
	"github.com/cbodonnell/cardbridge/pkg/log"
	"github.com/cbodonnell/cardbridge/pkg/snapshot"
)

// StateReader produces snapshots of the simulation.
type StateReader interface {
	Snapshot() (snapshot.StateSnapshot, error)
}

// ActionSubmitter accepts actions for the simulation and answers
// correlation queries.
type ActionSubmitter interface {
	Submit(action actions.Action) (bridge.SubmissionHandle, error)
	WaitOutcome(ctx context.Context, submissionID uint64, timeout time.Duration) (bridge.OutcomeResult, error)
}

// Dispatcher routes commands to the read path or the write path. It is
// safe for concurrent use by any number of request goroutines.
type Dispatcher struct {
	state   StateReader
	actions ActionSubmitter
}

type NewDispatcherOptions struct {
	State   StateReader
	Actions ActionSubmitter
}

func NewDispatcher(opts NewDispatcherOptions) *Dispatcher {
	return &Dispatcher{
		state:   opts.State,
		actions: opts.Actions,
	}
}

// readers maps each read command to the part of the snapshot it returns.
var readers = map[string]func(snapshot.StateSnapshot) interface{}{
	commands.CommandGetState:       func(s snapshot.StateSnapshot) interface{} { return s },
	commands.CommandGetMonsters:    func(s snapshot.StateSnapshot) interface{} { return s.MonstersView() },
	commands.CommandGetPlayer:      func(s snapshot.StateSnapshot) interface{} { return s.Player() },
	commands.CommandGetHand:        func(s snapshot.StateSnapshot) interface{} { return s.HandView() },
	commands.CommandGetDrawPile:    func(s snapshot.StateSnapshot) interface{} { return s.DrawPileView() },
	commands.CommandGetDiscardPile: func(s snapshot.StateSnapshot) interface{} { return s.DiscardPileView() },
	commands.CommandGetDeck:        func(s snapshot.StateSnapshot) interface{} { return s.DeckView() },
	commands.CommandGetRelics:      func(s snapshot.StateSnapshot) interface{} { return s.RelicsView() },
	commands.CommandGetPotions:     func(s snapshot.StateSnapshot) interface{} { return s.PotionsView() },
}

// IsReadCommand reports whether name is answered from a snapshot.
func IsReadCommand(name string) bool {
	_, ok := readers[name]
	return ok
}

// Dispatch handles one command. Every failure is returned inside the
// Response; Dispatch never panics.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd commands.Command) (resp commands.Response) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			log.Error("Recovered from panic dispatching %s: %v", cmd.Name, r)
			resp = commands.Failed(fmt.Errorf("internal error handling %s", cmd.Name))
		}
		if resp.IsError() {
			log.Debug("Dispatched %s in %s: %v", cmd.Name, time.Since(start), resp.Err)
		} else {
			log.Debug("Dispatched %s in %s", cmd.Name, time.Since(start))
		}
	}()

	switch {
	case cmd.Name == "":
		return commands.Failed(&commands.ValidationError{Field: commands.FieldCmd, Reason: "missing cmd field"})
	case cmd.Name == commands.CommandPing:
		return commands.OK(commands.StatusBody{Status: "ok"})
	case cmd.Name == commands.CommandGetOutcome:
		return d.outcome(ctx, cmd)
	case actions.IsWriteCommand(cmd.Name):
		return d.write(cmd)
	case IsReadCommand(cmd.Name):
		return d.read(cmd)
	default:
		return commands.Failed(&commands.UnknownCommandError{Name: cmd.Name})
	}
}

func (d *Dispatcher) read(cmd commands.Command) commands.Response {
	snap, err := d.state.Snapshot()
	if err != nil {
		return commands.Failed(err)
	}
	return commands.OK(readers[cmd.Name](snap))
}

// write translates and enqueues. It returns as soon as the action is
// queued; it never waits for the simulation.
func (d *Dispatcher) write(cmd commands.Command) commands.Response {
	action, err := actions.Translate(cmd)
	if err != nil {
		return commands.Failed(err)
	}
	handle, err := d.actions.Submit(action)
	if err != nil {
		return commands.Failed(err)
	}
	return commands.Queued(handle.ID)
}

// outcome answers a correlation query, waiting up to waitMs for a pending
// submission.
func (d *Dispatcher) outcome(ctx context.Context, cmd commands.Command) commands.Response {
	id, err := cmd.Int(commands.FieldSubmissionID)
	if err != nil {
		return commands.Failed(err)
	}
	if id <= 0 {
		return commands.Failed(&commands.ValidationError{Field: commands.FieldSubmissionID, Reason: "submissionId must be positive"})
	}
	waitMs, _, err := cmd.OptionalInt(commands.FieldWaitMs)
	if err != nil {
		return commands.Failed(err)
	}
	if waitMs < 0 {
		return commands.Failed(&commands.ValidationError{Field: commands.FieldWaitMs, Reason: "waitMs must not be negative"})
	}

	result, err := d.actions.WaitOutcome(ctx, uint64(id), time.Duration(waitMs)*time.Millisecond)
	if err != nil {
		return commands.Failed(err)
	}
	return commands.OK(result)
}
