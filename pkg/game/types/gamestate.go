package types

import (
	"github.com/cbodonnell/cardbridge/pkg/snapshot"
)

type GameState struct {
	// Timestamp is the time of the last tick that changed the state
	Timestamp int64
	// Seed is the seed the current run was started with
	Seed uint64
	// Floor counts encounters in the current run, starting at 1
	Floor int
	// Player is nil when no run is in progress
	Player *PlayerState
	// Enemies in the current encounter, including dead ones
	Enemies []*EnemyState
}

func NewGameState() *GameState {
	return &GameState{}
}

// LiveEnemies returns the enemies that can still be targeted.
func (g *GameState) LiveEnemies() []*EnemyState {
	live := make([]*EnemyState, 0, len(g.Enemies))
	for _, e := range g.Enemies {
		if e.IsAlive() {
			live = append(live, e)
		}
	}
	return live
}

// FindLiveEnemy returns the live enemy with the given instance id.
func (g *GameState) FindLiveEnemy(instanceID string) (*EnemyState, bool) {
	if instanceID == "" {
		return nil, false
	}
	for _, e := range g.Enemies {
		if e.InstanceID == instanceID && e.IsAlive() {
			return e, true
		}
	}
	return nil, false
}

// CurrentPlayer implements snapshot.View.
func (g *GameState) CurrentPlayer() (snapshot.PlayerHandle, bool) {
	if g.Player == nil {
		return nil, false
	}
	return playerHandle{g.Player}, true
}

// CurrentEnemies implements snapshot.View.
func (g *GameState) CurrentEnemies() []snapshot.EnemyHandle {
	handles := make([]snapshot.EnemyHandle, len(g.Enemies))
	for i, e := range g.Enemies {
		handles[i] = e
	}
	return handles
}

// playerHandle exposes a PlayerState as a snapshot.PlayerHandle.
type playerHandle struct {
	p *PlayerState
}

func (h playerHandle) Stats() (snapshot.PlayerView, error) {
	return snapshot.PlayerView{
		HP:             h.p.HP,
		MaxHP:          h.p.MaxHP,
		Energy:         h.p.Energy,
		Gold:           h.p.Gold,
		CurrentBlock:   h.p.Block,
		AscensionLevel: h.p.AscensionLevel,
		Character:      h.p.Character,
		Turn:           h.p.Turn,
	}, nil
}

func (h playerHandle) Hand() []snapshot.CardHandle {
	return cardHandles(h.p.Hand)
}

func (h playerHandle) DrawPile() []snapshot.CardHandle {
	return cardHandles(h.p.DrawPile)
}

func (h playerHandle) DiscardPile() []snapshot.CardHandle {
	return cardHandles(h.p.DiscardPile)
}

func (h playerHandle) Relics() []snapshot.RelicHandle {
	handles := make([]snapshot.RelicHandle, len(h.p.Relics))
	for i, r := range h.p.Relics {
		handles[i] = r
	}
	return handles
}

// Potions returns the filled slots only.
func (h playerHandle) Potions() []snapshot.PotionHandle {
	handles := make([]snapshot.PotionHandle, 0, len(h.p.Potions))
	for i, potion := range h.p.Potions {
		if potion == nil {
			continue
		}
		handles = append(handles, potionSlot{potion: potion, slot: i})
	}
	return handles
}
