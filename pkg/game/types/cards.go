package types

import (
	"github.com/cbodonnell/cardbridge/pkg/snapshot"
	"github.com/google/uuid"
)

type CardType string

const (
	CardTypeAttack CardType = "ATTACK"
	CardTypeSkill  CardType = "SKILL"
	CardTypePower  CardType = "POWER"
)

// CardDefinition is the static description shared by every copy of a card.
type CardDefinition struct {
	ID     string
	Name   string
	Cost   int
	Type   CardType
	Rarity string
	Damage int
	Block  int
	Draw   int
}

var (
	Strike     = CardDefinition{ID: "Strike_R", Name: "Strike", Cost: 1, Type: CardTypeAttack, Rarity: "BASIC", Damage: 6}
	Defend     = CardDefinition{ID: "Defend_R", Name: "Defend", Cost: 1, Type: CardTypeSkill, Rarity: "BASIC", Block: 5}
	Bash       = CardDefinition{ID: "Bash", Name: "Bash", Cost: 2, Type: CardTypeAttack, Rarity: "BASIC", Damage: 8}
	ShrugItOff = CardDefinition{ID: "Shrug It Off", Name: "Shrug It Off", Cost: 1, Type: CardTypeSkill, Rarity: "COMMON", Block: 8, Draw: 1}
)

// StarterDeck returns the definitions a new run starts with.
func StarterDeck() []CardDefinition {
	deck := make([]CardDefinition, 0, 10)
	for i := 0; i < 5; i++ {
		deck = append(deck, Strike)
	}
	for i := 0; i < 4; i++ {
		deck = append(deck, Defend)
	}
	return append(deck, Bash)
}

// Card is one copy of a card in the player's piles.
type Card struct {
	UUID uuid.UUID
	CardDefinition
	Upgraded bool
}

func NewCard(def CardDefinition) *Card {
	return &Card{
		UUID:           uuid.New(),
		CardDefinition: def,
	}
}

func (c *Card) CardView() (snapshot.CardView, error) {
	return snapshot.CardView{
		UUID:     c.UUID.String(),
		ID:       c.ID,
		Name:     c.Name,
		Cost:     c.Cost,
		Type:     string(c.Type),
		Rarity:   c.Rarity,
		Upgraded: c.Upgraded,
	}, nil
}

func cardHandles(cards []*Card) []snapshot.CardHandle {
	handles := make([]snapshot.CardHandle, len(cards))
	for i, c := range cards {
		handles[i] = c
	}
	return handles
}
