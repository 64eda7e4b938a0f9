package types

import (
	"math/rand/v2"
	"testing"

	"github.com/cbodonnell/cardbridge/pkg/game/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAbsorb(t *testing.T) {
	tests := []struct {
		name      string
		damage    int
		block     int
		wantLost  int
		wantBlock int
	}{
		{name: "no block", damage: 6, block: 0, wantLost: 6, wantBlock: 0},
		{name: "partial block", damage: 6, block: 4, wantLost: 2, wantBlock: 0},
		{name: "full block", damage: 6, block: 10, wantLost: 0, wantBlock: 4},
		{name: "no damage", damage: 0, block: 3, wantLost: 0, wantBlock: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lost, block := absorb(tt.damage, tt.block)
			assert.Equal(t, tt.wantLost, lost)
			assert.Equal(t, tt.wantBlock, block)
		})
	}
}

func TestPlayerState_Draw(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	p := NewPlayerState([]CardDefinition{Strike, Strike, Defend})
	p.DiscardPile = []*Card{NewCard(Bash), NewCard(ShrugItOff)}

	p.Draw(4, rng)

	assert.Len(t, p.Hand, 4)
	assert.Len(t, p.DrawPile, 1, "the discard pile is shuffled in when the draw pile runs out")
	assert.Empty(t, p.DiscardPile)

	p.Draw(10, rng)
	assert.Len(t, p.Hand, 5, "drawing stops when both piles are empty")
}

func TestPlayerState_Draw_fullHand(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	deck := make([]CardDefinition, constants.MaxHandSize+2)
	for i := range deck {
		deck[i] = Defend
	}
	p := NewPlayerState(deck)

	p.Draw(len(deck), rng)
	assert.Len(t, p.Hand, constants.MaxHandSize)
	assert.Len(t, p.DiscardPile, 2)
}

func TestPlayerState_potions(t *testing.T) {
	p := NewPlayerState(nil)
	require.True(t, p.AddPotion(FirePotion))
	require.True(t, p.AddPotion(BlockPotion))
	require.True(t, p.AddPotion(FirePotion))
	assert.False(t, p.AddPotion(BloodPotion), "every slot is full")

	assert.Equal(t, 0, p.FindPotion(FirePotion.ID))
	assert.Equal(t, -1, p.FindPotion(BloodPotion.ID))

	p.Potions[1] = nil
	g := &GameState{Player: p}
	handle, ok := g.CurrentPlayer()
	require.True(t, ok)
	potions := handle.Potions()
	require.Len(t, potions, 2)
	view, err := potions[1].PotionView()
	require.NoError(t, err)
	assert.Equal(t, 2, view.Slot)
}

func TestEnemyState(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	e := NewEnemyState(JawWorm, rng, 10, 20)

	assert.GreaterOrEqual(t, e.HP, JawWorm.MinHP)
	assert.LessOrEqual(t, e.HP, JawWorm.MaxHP)
	assert.NotEqual(t, IntentNone, e.Intent.Type)
	assert.True(t, e.IsAlive())

	e.Block = 5
	assert.Equal(t, 1, e.TakeDamage(6))
	e.TakeDamage(100)
	assert.True(t, e.IsDead())
	assert.Equal(t, 0, e.HP)
	assert.Equal(t, IntentNone, e.Intent.Type)

	view, err := e.MonsterView()
	require.NoError(t, err)
	assert.Equal(t, "JawWorm", view.MonsterID)
	assert.Equal(t, e.InstanceID, view.ID)
	assert.True(t, view.IsDead)
	assert.Equal(t, "NONE", view.Intent)
}

func TestGameState_FindLiveEnemy(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	alive := NewEnemyState(Cultist, rng, 0, 0)
	dead := NewEnemyState(Cultist, rng, 0, 0)
	dead.HP = 0
	g := &GameState{Enemies: []*EnemyState{dead, alive}}

	_, ok := g.FindLiveEnemy(dead.InstanceID)
	assert.False(t, ok)
	found, ok := g.FindLiveEnemy(alive.InstanceID)
	assert.True(t, ok)
	assert.Same(t, alive, found)
	_, ok = g.FindLiveEnemy("")
	assert.False(t, ok)
	assert.Len(t, g.LiveEnemies(), 1)

	_, ok = (&GameState{}).CurrentPlayer()
	assert.False(t, ok)
}
