package types

import (
	"math/rand/v2"

	"github.com/cbodonnell/cardbridge/pkg/game/constants"
	"github.com/google/uuid"
)

type PlayerState struct {
	Character      string
	HP             int
	MaxHP          int
	Energy         int
	MaxEnergy      int
	Gold           int
	Block          int
	AscensionLevel int
	Turn           int

	Hand        []*Card
	DrawPile    []*Card
	DiscardPile []*Card
	Relics      []*Relic
	// Potions has one entry per slot; nil means empty.
	Potions []*Potion
}

func NewPlayerState(deck []CardDefinition) *PlayerState {
	p := &PlayerState{
		Character: constants.Character,
		HP:        constants.PlayerStartingHP,
		MaxHP:     constants.PlayerStartingHP,
		MaxEnergy: constants.PlayerMaxEnergy,
		Gold:      constants.PlayerStartingGold,
		Potions:   make([]*Potion, constants.PotionSlots),
	}
	for _, def := range deck {
		p.DrawPile = append(p.DrawPile, NewCard(def))
	}
	return p
}

func (p *PlayerState) IsDead() bool {
	return p.HP <= 0
}

// TakeDamage applies damage after block and returns the HP lost.
func (p *PlayerState) TakeDamage(damage int) int {
	lost, block := absorb(damage, p.Block)
	p.Block = block
	p.HP -= lost
	if p.HP < 0 {
		p.HP = 0
	}
	return lost
}

func (p *PlayerState) Heal(amount int) {
	p.HP += amount
	if p.HP > p.MaxHP {
		p.HP = p.MaxHP
	}
}

// HasRelic reports whether the player owns the relic with the given id.
func (p *PlayerState) HasRelic(id string) bool {
	for _, r := range p.Relics {
		if r.ID == id {
			return true
		}
	}
	return false
}

// FindCardInHand returns the index of the card with the given uuid, or -1.
func (p *PlayerState) FindCardInHand(id uuid.UUID) int {
	for i, c := range p.Hand {
		if c.UUID == id {
			return i
		}
	}
	return -1
}

// RemoveFromHand removes and returns the card at index i.
func (p *PlayerState) RemoveFromHand(i int) *Card {
	c := p.Hand[i]
	p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
	return c
}

// AddPotion puts a potion in the first empty slot. It reports false when
// every slot is full.
func (p *PlayerState) AddPotion(potion Potion) bool {
	for i, slot := range p.Potions {
		if slot == nil {
			p.Potions[i] = &potion
			return true
		}
	}
	return false
}

// FindPotion returns the slot of the first potion with the given id, or -1.
func (p *PlayerState) FindPotion(id string) int {
	for i, potion := range p.Potions {
		if potion != nil && potion.ID == id {
			return i
		}
	}
	return -1
}

// Draw moves up to n cards from the draw pile to the hand, shuffling the
// discard pile into the draw pile when it runs out. Cards drawn past
// MaxHandSize go to the discard pile.
func (p *PlayerState) Draw(n int, rng *rand.Rand) {
	for i := 0; i < n; i++ {
		if len(p.DrawPile) == 0 {
			if len(p.DiscardPile) == 0 {
				return
			}
			p.DrawPile, p.DiscardPile = p.DiscardPile, nil
			Shuffle(p.DrawPile, rng)
		}
		c := p.DrawPile[0]
		p.DrawPile = p.DrawPile[1:]
		if len(p.Hand) >= constants.MaxHandSize {
			p.DiscardPile = append(p.DiscardPile, c)
			continue
		}
		p.Hand = append(p.Hand, c)
	}
}

// DiscardHand moves the whole hand to the discard pile.
func (p *PlayerState) DiscardHand() {
	p.DiscardPile = append(p.DiscardPile, p.Hand...)
	p.Hand = nil
}

// GatherDeck returns every card to the draw pile and shuffles it.
func (p *PlayerState) GatherDeck(rng *rand.Rand) {
	p.DrawPile = append(p.DrawPile, p.Hand...)
	p.DrawPile = append(p.DrawPile, p.DiscardPile...)
	p.Hand = nil
	p.DiscardPile = nil
	Shuffle(p.DrawPile, rng)
}

func Shuffle(cards []*Card, rng *rand.Rand) {
	rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
}
