package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/cbodonnell/cardbridge/pkg/actions"
	"github.com/cbodonnell/cardbridge/pkg/bridge"
	"github.com/cbodonnell/cardbridge/pkg/commands"
	"github.com/cbodonnell/cardbridge/pkg/game/constants"
	"github.com/cbodonnell/cardbridge/pkg/game/types"
	"github.com/cbodonnell/cardbridge/pkg/log"
	"github.com/cbodonnell/cardbridge/pkg/snapshot"
	"github.com/cbodonnell/cardbridge/pkg/workers"
)

// GameManager owns the simulation. Only the goroutine running Start (or
// gameTick in tests) mutates the state; request goroutines go through the
// bridge for writes and Read for reads.
type GameManager struct {
	bridge           *bridge.Bridge
	outcomeChans     []chan<- workers.OutcomeEvent
	gameLoopInterval time.Duration
	actionsPerTick   int
	seed             uint64
	autoStart        bool
	autoRestart      bool
	restartDelay     time.Duration

	stateLock sync.RWMutex
	gameState *types.GameState
	rng       *rand.Rand
	runs      uint64
	restartAt time.Time

	// executeAction applies one action to the state while the write lock
	// is held.
	executeAction func(action actions.Action) (string, error)
}

// NewGameManagerOptions contains options for creating a new GameManager.
type NewGameManagerOptions struct {
	Bridge *bridge.Bridge
	// GameState defaults to an empty state with no run in progress.
	GameState *types.GameState
	// OutcomeChans receive an event per executed submission. Sends never
	// block; a full channel drops the event.
	OutcomeChans     []chan<- workers.OutcomeEvent
	GameLoopInterval time.Duration
	// ActionsPerTick caps how many submissions run per tick. 0 drains all.
	ActionsPerTick int
	// Seed makes runs reproducible. 0 seeds from the clock.
	Seed         uint64
	AutoStart    bool
	AutoRestart  bool
	RestartDelay time.Duration
}

func NewGameManager(opts NewGameManagerOptions) *GameManager {
	gm := &GameManager{
		bridge:           opts.Bridge,
		outcomeChans:     opts.OutcomeChans,
		gameLoopInterval: opts.GameLoopInterval,
		actionsPerTick:   opts.ActionsPerTick,
		seed:             opts.Seed,
		autoStart:        opts.AutoStart,
		autoRestart:      opts.AutoRestart,
		restartDelay:     opts.RestartDelay,
		gameState:        opts.GameState,
		rng:              newRNG(opts.Seed),
	}
	if gm.gameState == nil {
		gm.gameState = types.NewGameState()
	}
	gm.executeAction = gm.execute
	return gm
}

// Start runs the simulation loop until ctx is cancelled.
func (gm *GameManager) Start(ctx context.Context) error {
	if gm.gameLoopInterval <= 0 {
		return fmt.Errorf("game loop interval must be positive, got %s", gm.gameLoopInterval)
	}
	if gm.autoStart {
		gm.StartRun(gm.seed)
	}

	ticker := time.NewTicker(gm.gameLoopInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case t := <-ticker.C:
			err := gm.gameTick(ctx, t)
			if err != nil {
				log.Error("Failed to run game tick: %v", err)
			}
		}
	}
}

// StartRun abandons any run in progress and starts a new one.
func (gm *GameManager) StartRun(seed uint64) {
	gm.stateLock.Lock()
	defer gm.stateLock.Unlock()
	gm.startRunLocked(seed)
}

// Read implements snapshot.Source. fn runs under the read lock and sees a
// state between two actions, never one mid-execution.
func (gm *GameManager) Read(fn func(snapshot.View)) {
	gm.stateLock.RLock()
	defer gm.stateLock.RUnlock()
	fn(gm.gameState)
}

// gameTick runs one iteration of the game loop.
func (gm *GameManager) gameTick(ctx context.Context, t time.Time) error {
	gm.restartIfDue(t)

	for n := 0; gm.actionsPerTick <= 0 || n < gm.actionsPerTick; n++ {
		submission, ok := gm.bridge.DrainNext()
		if !ok {
			break
		}
		gm.processSubmission(ctx, submission, t)
	}
	return nil
}

// processSubmission executes one submission, records its outcome on the
// bridge and notifies the workers.
func (gm *GameManager) processSubmission(ctx context.Context, submission bridge.Submission, t time.Time) {
	gm.stateLock.Lock()
	gm.gameState.Timestamp = t.UnixMilli()
	outcome := gm.runAction(submission)
	gm.settleLocked(t)
	var state *snapshot.StateSnapshot
	if len(gm.outcomeChans) > 0 {
		state = gm.snapshotLocked()
	}
	gm.stateLock.Unlock()

	log.Debug("Submission %d (%s) accepted=%t: %s", outcome.SubmissionID, outcome.Kind, outcome.Accepted, outcome.Message)
	if err := gm.bridge.RecordOutcome(ctx, outcome); err != nil {
		log.Error("Failed to record outcome: %v", err)
	}

	gm.publish(workers.OutcomeEvent{
		Outcome: outcome,
		Action:  submission.Action,
		State:   state,
	})
}

// runAction executes an action, turning rejections, errors and panics into
// an outcome. It never panics.
func (gm *GameManager) runAction(submission bridge.Submission) (outcome bridge.ActionOutcome) {
	outcome = bridge.ActionOutcome{
		SubmissionID: submission.ID,
		Kind:         submission.Action.Kind,
	}
	defer func() {
		if r := recover(); r != nil {
			log.Error("Recovered from panic in submission %d (%s): %v", submission.ID, submission.Action, r)
			outcome.Accepted = false
			failed(&outcome, &commands.ExecutionError{Message: fmt.Sprintf("%v", r)})
		}
	}()

	message, err := gm.executeAction(submission.Action)
	switch {
	case err == nil:
		outcome.Accepted = true
		outcome.Message = message
	case IsRejected(err):
		outcome.Message = err.Error()
	case errors.Is(err, commands.ErrSimulationNotReady):
		outcome.Message = err.Error()
		outcome.ErrorKind = commands.ErrorKindSimulationNotReady
	default:
		failed(&outcome, &commands.ExecutionError{Message: err.Error()})
	}
	return outcome
}

func failed(outcome *bridge.ActionOutcome, err *commands.ExecutionError) {
	outcome.Message = err.Message
	outcome.ErrorKind = commands.KindOf(err)
}

// settleLocked ends the run when the player has died and moves on to the
// next encounter when every enemy is gone.
func (gm *GameManager) settleLocked(t time.Time) {
	state := gm.gameState
	player := state.Player
	if player == nil {
		return
	}
	if player.IsDead() {
		gm.endRunLocked(t, "player defeated")
		return
	}
	if len(state.LiveEnemies()) > 0 {
		return
	}

	if player.HasRelic(types.BurningBlood.ID) {
		player.Heal(constants.BurningBloodHeal)
	}
	player.Gold += 10 + gm.rng.IntN(11)
	log.Info("Floor %d cleared", state.Floor)
	gm.startEncounterLocked()
}

func (gm *GameManager) startRunLocked(seed uint64) {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	gm.runs++
	gm.rng = newRNG(seed)
	gm.restartAt = time.Time{}

	player := types.NewPlayerState(types.StarterDeck())
	relic := types.BurningBlood
	player.Relics = append(player.Relics, &relic)
	player.AddPotion(types.FirePotion)
	player.AddPotion(types.BlockPotion)

	state := gm.gameState
	state.Seed = seed
	state.Floor = 0
	state.Player = player
	state.Enemies = nil

	log.Info("Started run %d with seed %d", gm.runs, seed)
	gm.startEncounterLocked()
}

func (gm *GameManager) startEncounterLocked() {
	state := gm.gameState
	state.Floor++
	state.Enemies = spawnEncounter(state.Floor, gm.rng)
	state.Player.GatherDeck(gm.rng)
	state.Player.Turn = 0
	gm.startTurnLocked()
	log.Debug("Floor %d: %d enemies", state.Floor, len(state.Enemies))
}

func (gm *GameManager) startTurnLocked() {
	player := gm.gameState.Player
	player.Turn++
	player.Block = 0
	player.Energy = player.MaxEnergy
	player.Draw(constants.HandSize, gm.rng)
}

func (gm *GameManager) endRunLocked(t time.Time, reason string) {
	log.Info("Run %d ended on floor %d: %s", gm.runs, gm.gameState.Floor, reason)
	gm.gameState.Player = nil
	gm.gameState.Enemies = nil
	if gm.autoRestart {
		gm.restartAt = t.Add(gm.restartDelay)
	}
}

func (gm *GameManager) restartIfDue(t time.Time) {
	gm.stateLock.Lock()
	defer gm.stateLock.Unlock()

	if gm.gameState.Player != nil || gm.restartAt.IsZero() || t.Before(gm.restartAt) {
		return
	}
	seed := uint64(0)
	if gm.seed != 0 {
		seed = gm.seed + gm.runs
	}
	gm.startRunLocked(seed)
}

// snapshotLocked takes a snapshot while the caller already holds the lock.
func (gm *GameManager) snapshotLocked() *snapshot.StateSnapshot {
	snap, err := snapshot.NewSnapshotter(lockedSource{view: gm.gameState}).Snapshot()
	if err != nil {
		return nil
	}
	return &snap
}

// publish hands the event to every worker channel without blocking.
func (gm *GameManager) publish(event workers.OutcomeEvent) {
	for _, ch := range gm.outcomeChans {
		select {
		case ch <- event:
		default:
			log.Warn("Outcome channel full, dropping event for submission %d", event.Outcome.SubmissionID)
		}
	}
}

type lockedSource struct {
	view snapshot.View
}

func (s lockedSource) Read(fn func(snapshot.View)) {
	fn(s.view)
}

func newRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
