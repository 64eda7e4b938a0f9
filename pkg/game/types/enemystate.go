package types

import (
	"math/rand/v2"

	"github.com/cbodonnell/cardbridge/pkg/snapshot"
	"github.com/google/uuid"
)

type IntentType string

const (
	IntentAttack       IntentType = "ATTACK"
	IntentDefend       IntentType = "DEFEND"
	IntentAttackDefend IntentType = "ATTACK_DEFEND"
	IntentNone         IntentType = "NONE"
)

// Intent is what an enemy will do at the end of the player's turn.
type Intent struct {
	Type   IntentType
	Damage int
	Block  int
}

type MonsterDefinition struct {
	ID    string
	Name  string
	MinHP int
	MaxHP int
	Moves []Intent
}

var (
	JawWorm = MonsterDefinition{
		ID: "JawWorm", Name: "Jaw Worm", MinHP: 40, MaxHP: 44,
		Moves: []Intent{
			{Type: IntentAttack, Damage: 11},
			{Type: IntentAttackDefend, Damage: 7, Block: 5},
			{Type: IntentDefend, Block: 6},
		},
	}
	Cultist = MonsterDefinition{
		ID: "Cultist", Name: "Cultist", MinHP: 48, MaxHP: 54,
		Moves: []Intent{{Type: IntentAttack, Damage: 6}},
	}
	RedLouse = MonsterDefinition{
		ID: "FuzzyLouseNormal", Name: "Red Louse", MinHP: 10, MaxHP: 15,
		Moves: []Intent{
			{Type: IntentAttack, Damage: 6},
			{Type: IntentDefend, Block: 3},
		},
	}
	AcidSlime = MonsterDefinition{
		ID: "AcidSlime_M", Name: "Acid Slime (M)", MinHP: 28, MaxHP: 32,
		Moves: []Intent{
			{Type: IntentAttack, Damage: 10},
			{Type: IntentAttack, Damage: 7},
		},
	}
)

type EnemyState struct {
	InstanceID string
	MonsterDefinition
	HP      int
	MaxHP   int
	Block   int
	Intent  Intent
	X       float64
	Y       float64
	Escaped bool
}

func NewEnemyState(def MonsterDefinition, rng *rand.Rand, x float64, y float64) *EnemyState {
	hp := def.MinHP
	if def.MaxHP > def.MinHP {
		hp += rng.IntN(def.MaxHP - def.MinHP + 1)
	}
	e := &EnemyState{
		InstanceID:        uuid.NewString(),
		MonsterDefinition: def,
		HP:                hp,
		MaxHP:             hp,
		X:                 x,
		Y:                 y,
	}
	e.RollIntent(rng)
	return e
}

func (e *EnemyState) IsDead() bool {
	return e.HP <= 0
}

// IsAlive reports whether the enemy can still be targeted.
func (e *EnemyState) IsAlive() bool {
	return !e.IsDead() && !e.Escaped
}

// TakeDamage applies damage after block and returns the HP lost.
func (e *EnemyState) TakeDamage(damage int) int {
	lost, block := absorb(damage, e.Block)
	e.Block = block
	e.HP -= lost
	if e.HP < 0 {
		e.HP = 0
	}
	if e.IsDead() {
		e.Intent = Intent{Type: IntentNone}
	}
	return lost
}

func (e *EnemyState) RollIntent(rng *rand.Rand) {
	if len(e.Moves) == 0 || e.IsDead() {
		e.Intent = Intent{Type: IntentNone}
		return
	}
	e.Intent = e.Moves[rng.IntN(len(e.Moves))]
}

func (e *EnemyState) MonsterView() (snapshot.MonsterView, error) {
	return snapshot.MonsterView{
		ID:           e.InstanceID,
		MonsterID:    e.MonsterDefinition.ID,
		Name:         e.Name,
		CurrentHP:    e.HP,
		MaxHP:        e.MaxHP,
		CurrentBlock: e.Block,
		IsDead:       e.IsDead(),
		IsEscaped:    e.Escaped,
		Intent:       string(e.Intent.Type),
		X:            e.X,
		Y:            e.Y,
	}, nil
}

// absorb splits damage between block and hitpoints.
func absorb(damage int, block int) (lost int, remainingBlock int) {
	if damage <= 0 {
		return 0, block
	}
	if block >= damage {
		return 0, block - damage
	}
	return damage - block, 0
}
