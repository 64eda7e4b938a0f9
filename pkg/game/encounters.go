package game

import (
	"math/rand/v2"

	"github.com/cbodonnell/cardbridge/pkg/game/constants"
	"github.com/cbodonnell/cardbridge/pkg/game/types"
)

var encounters = [][]types.MonsterDefinition{
	{types.JawWorm},
	{types.Cultist},
	{types.RedLouse, types.RedLouse},
	{types.AcidSlime, types.RedLouse},
}

// spawnEncounter creates the enemies for the next encounter. The first
// floor is always a single Jaw Worm.
func spawnEncounter(floor int, rng *rand.Rand) []*types.EnemyState {
	encounter := encounters[0]
	if floor > 1 {
		encounter = encounters[rng.IntN(len(encounters))]
	}
	if len(encounter) > constants.MaxEnemiesPerEncounter {
		encounter = encounter[:constants.MaxEnemiesPerEncounter]
	}

	enemies := make([]*types.EnemyState, 0, len(encounter))
	for i, def := range encounter {
		x := constants.EnemyStartingX - float64(len(encounter)-1-i)*constants.EnemySpacing
		enemies = append(enemies, types.NewEnemyState(def, rng, x, constants.EnemyStartingY))
	}
	return enemies
}
