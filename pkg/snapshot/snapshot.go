package snapshot

import (
	"fmt"

	"github.com/cbodonnell/cardbridge/pkg/commands"
	"github.com/cbodonnell/cardbridge/pkg/log"
)

// Source gives read access to the simulation. Read runs fn while holding
// the simulation's read guard, so everything fn observes belongs to one
// consistent state. The View must not be retained after fn returns.
type Source interface {
	Read(fn func(View))
}

// View is the read-only face of the simulation.
type View interface {
	// CurrentPlayer reports false when no run is in progress.
	CurrentPlayer() (PlayerHandle, bool)
	CurrentEnemies() []EnemyHandle
}

type PlayerHandle interface {
	Stats() (PlayerView, error)
	Hand() []CardHandle
	DrawPile() []CardHandle
	DiscardPile() []CardHandle
	Relics() []RelicHandle
	Potions() []PotionHandle
}

type CardHandle interface {
	CardView() (CardView, error)
}

type RelicHandle interface {
	RelicView() (RelicView, error)
}

type PotionHandle interface {
	PotionView() (PotionView, error)
}

type EnemyHandle interface {
	MonsterView() (MonsterView, error)
}

// Snapshotter builds StateSnapshots from a Source.
type Snapshotter struct {
	source Source
}

func NewSnapshotter(source Source) *Snapshotter {
	return &Snapshotter{source: source}
}

// Snapshot copies the current state. It never mutates the simulation and
// fails only with commands.ErrSimulationNotReady. Entities that cannot be
// read are left out.
func (s *Snapshotter) Snapshot() (StateSnapshot, error) {
	var snap StateSnapshot
	ready := false
	s.source.Read(func(v View) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("Recovered while reading simulation state: %v", r)
				ready = false
			}
		}()

		player, ok := v.CurrentPlayer()
		if !ok || player == nil {
			return
		}
		snap = build(player, v.CurrentEnemies())
		ready = true
	})
	if !ready {
		return StateSnapshot{}, commands.ErrSimulationNotReady
	}
	return snap, nil
}

func build(player PlayerHandle, enemies []EnemyHandle) StateSnapshot {
	stats, err := read("player", 0, player.Stats)
	if err != nil {
		stats = PlayerView{Energy: EnergyUnavailable}
	}

	hand := player.Hand()
	drawPile := player.DrawPile()
	discardPile := player.DiscardPile()

	return StateSnapshot{
		PlayerView:       stats,
		Hand:             cards("hand", hand),
		HandCount:        len(hand),
		DrawPile:         cards("draw pile", drawPile),
		DrawPileCount:    len(drawPile),
		DiscardPile:      cards("discard pile", discardPile),
		DiscardPileCount: len(discardPile),
		Relics:           collect("relic", player.Relics(), RelicHandle.RelicView),
		Potions:          collect("potion", player.Potions(), PotionHandle.PotionView),
		Monsters:         collect("monster", enemies, EnemyHandle.MonsterView),
	}
}

func cards(pile string, handles []CardHandle) []CardView {
	return collect(pile+" card", handles, CardHandle.CardView)
}

// collect serializes each handle, skipping any that fail or panic.
func collect[H any, V any](what string, handles []H, view func(H) (V, error)) []V {
	out := make([]V, 0, len(handles))
	for i, h := range handles {
		v, err := read(what, i, func() (V, error) { return view(h) })
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

func read[V any](what string, index int, fn func() (V, error)) (v V, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		if err != nil {
			log.Debug("Skipping unreadable %s %d: %v", what, index, err)
		}
	}()
	return fn()
}
