package snapshot

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/cbodonnell/cardbridge/pkg/commands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	view View
}

func (s *fakeSource) Read(fn func(View)) {
	fn(s.view)
}

type fakeView struct {
	player  PlayerHandle
	enemies []EnemyHandle
}

func (v *fakeView) CurrentPlayer() (PlayerHandle, bool) {
	return v.player, v.player != nil
}

func (v *fakeView) CurrentEnemies() []EnemyHandle {
	return v.enemies
}

type fakePlayer struct {
	stats    PlayerView
	statsErr error
	hand     []CardHandle
	draw     []CardHandle
	discard  []CardHandle
	relics   []RelicHandle
	potions  []PotionHandle
}

func (p *fakePlayer) Stats() (PlayerView, error) { return p.stats, p.statsErr }
func (p *fakePlayer) Hand() []CardHandle { return p.hand }
func (p *fakePlayer) DrawPile() []CardHandle { return p.draw }
func (p *fakePlayer) DiscardPile() []CardHandle { return p.discard }
func (p *fakePlayer) Relics() []RelicHandle { return p.relics }
func (p *fakePlayer) Potions() []PotionHandle { return p.potions }

type fakeCard struct {
	view  CardView
	err   error
	panic bool
}

func (c *fakeCard) CardView() (CardView, error) {
	if c.panic {
		panic("card state corrupted")
	}
	return c.view, c.err
}

type fakeRelic RelicView

func (r fakeRelic) RelicView() (RelicView, error) { return RelicView(r), nil }

type fakePotion PotionView

func (p fakePotion) PotionView() (PotionView, error) { return PotionView(p), nil }

type fakeEnemy struct {
	view  MonsterView
	panic bool
}

func (e *fakeEnemy) MonsterView() (MonsterView, error) {
	if e.panic {
		panic("nil intent")
	}
	return e.view, nil
}

func newFakePlayer() *fakePlayer {
	return &fakePlayer{
		stats: PlayerView{HP: 70, MaxHP: 80, Energy: 3, Gold: 99, Character: "IRONCLAD", Turn: 1},
		hand: []CardHandle{
			&fakeCard{view: CardView{UUID: "a", ID: "Strike_R", Name: "Strike", Cost: 1, Type: "ATTACK", Rarity: "BASIC"}},
			&fakeCard{view: CardView{UUID: "b", ID: "Defend_R", Name: "Defend", Cost: 1, Type: "SKILL", Rarity: "BASIC"}},
		},
		draw:    []CardHandle{&fakeCard{view: CardView{UUID: "c", ID: "Bash", Name: "Bash", Cost: 2}}},
		relics:  []RelicHandle{fakeRelic{ID: "Burning Blood", Name: "Burning Blood", Tier: "STARTER"}},
		potions: []PotionHandle{fakePotion{ID: "Fire Potion", Name: "Fire Potion", Slot: 0}},
	}
}

func TestSnapshotter_Snapshot_notReady(t *testing.T) {
	s := NewSnapshotter(&fakeSource{view: &fakeView{}})

	_, err := s.Snapshot()
	assert.ErrorIs(t, err, commands.ErrSimulationNotReady)
	assert.Equal(t, commands.ErrorKindSimulationNotReady, commands.KindOf(err))
}

func TestSnapshotter_Snapshot(t *testing.T) {
	player := newFakePlayer()
	view := &fakeView{
		player: player,
		enemies: []EnemyHandle{
			&fakeEnemy{view: MonsterView{ID: "m1", MonsterID: "JawWorm", Name: "Jaw Worm", CurrentHP: 40, MaxHP: 44}},
		},
	}
	s := NewSnapshotter(&fakeSource{view: view})

	snap, err := s.Snapshot()
	require.NoError(t, err)

	assert.Equal(t, 70, snap.HP)
	assert.Equal(t, 3, snap.Energy)
	assert.Len(t, snap.Hand, 2)
	assert.Equal(t, 2, snap.HandCount)
	assert.Equal(t, 1, snap.DrawPileCount)
	assert.Empty(t, snap.DiscardPile)
	assert.NotNil(t, snap.DiscardPile)
	assert.Equal(t, "Burning Blood", snap.Relics[0].ID)
	assert.Equal(t, "Jaw Worm", snap.Monsters[0].Name)
}

func TestSnapshotter_Snapshot_skipsUnreadableEntities(t *testing.T) {
	player := newFakePlayer()
	player.hand = append(player.hand,
		&fakeCard{err: errors.New("card has no owner")},
		&fakeCard{panic: true},
		nil,
	)
	view := &fakeView{
		player: player,
		enemies: []EnemyHandle{
			&fakeEnemy{view: MonsterView{ID: "m1", Name: "Cultist"}},
			&fakeEnemy{panic: true},
			&fakeEnemy{view: MonsterView{ID: "m3", Name: "Louse"}},
		},
	}
	s := NewSnapshotter(&fakeSource{view: view})

	snap, err := s.Snapshot()
	require.NoError(t, err)

	require.Len(t, snap.Hand, 2)
	assert.Equal(t, 5, snap.HandCount)
	require.Len(t, snap.Monsters, 2)
	assert.Equal(t, "m1", snap.Monsters[0].ID)
	assert.Equal(t, "m3", snap.Monsters[1].ID)
}

func TestSnapshotter_Snapshot_unreadableStats(t *testing.T) {
	player := newFakePlayer()
	player.statsErr = errors.New("energy panel missing")
	s := NewSnapshotter(&fakeSource{view: &fakeView{player: player}})

	snap, err := s.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, EnergyUnavailable, snap.Energy)
	assert.Len(t, snap.Hand, 2)
}

func TestSnapshotter_Snapshot_idempotent(t *testing.T) {
	s := NewSnapshotter(&fakeSource{view: &fakeView{player: newFakePlayer()}})

	first, err := s.Snapshot()
	require.NoError(t, err)
	second, err := s.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestStateSnapshot_JSON(t *testing.T) {
	s := NewSnapshotter(&fakeSource{view: &fakeView{player: newFakePlayer()}})
	snap, err := s.Snapshot()
	require.NoError(t, err)

	b, err := json.Marshal(snap)
	require.NoError(t, err)

	body := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(b, &body))
	for _, key := range []string{
		"hp", "maxHp", "energy", "gold", "currentBlock", "ascensionLevel", "character", "turn",
		"hand", "drawPile", "drawPileCount", "discardPile", "discardPileCount", "relics", "potions", "monsters",
	} {
		assert.Contains(t, body, key)
	}
	assert.Equal(t, []interface{}{}, body["monsters"])
}

func TestStateSnapshot_subViews(t *testing.T) {
	s := NewSnapshotter(&fakeSource{view: &fakeView{player: newFakePlayer()}})
	snap, err := s.Snapshot()
	require.NoError(t, err)

	assert.Equal(t, 2, snap.HandView().Count)
	assert.Equal(t, 1, snap.DrawPileView().Count)
	assert.Equal(t, 0, snap.DiscardPileView().Count)

	deck := snap.DeckView()
	assert.Equal(t, 3, deck.TotalCount)
	require.Len(t, deck.AllCards, 3)
	assert.Equal(t, "a", deck.AllCards[0].UUID)
	assert.Equal(t, "c", deck.AllCards[2].UUID)

	assert.Equal(t, 1, snap.RelicsView().Count)
	assert.Equal(t, 1, snap.PotionsView().Count)
	assert.Equal(t, 0, snap.MonstersView().Count)
	assert.Equal(t, "IRONCLAD", snap.Player().Character)
}
