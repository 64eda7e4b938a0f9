package types

import (
	"fmt"

	"github.com/cbodonnell/cardbridge/pkg/snapshot"
)

type Relic struct {
	ID          string
	Name        string
	Description string
	Tier        string
}

var BurningBlood = Relic{
	ID:          "Burning Blood",
	Name:        "Burning Blood",
	Description: "At the end of combat, heal 6 HP.",
	Tier:        "STARTER",
}

func (r *Relic) RelicView() (snapshot.RelicView, error) {
	return snapshot.RelicView{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Tier:        r.Tier,
	}, nil
}

// Potion is a single-use item. Exactly one of Damage, Block and Heal is
// usually set; damage hits one enemy.
type Potion struct {
	ID          string
	Name        string
	Description string
	Damage      int
	Block       int
	Heal        int
}

var (
	FirePotion  = Potion{ID: "Fire Potion", Name: "Fire Potion", Description: "Deal 20 damage.", Damage: 20}
	BlockPotion = Potion{ID: "Block Potion", Name: "Block Potion", Description: "Gain 12 Block.", Block: 12}
	BloodPotion = Potion{ID: "BloodPotion", Name: "Blood Potion", Description: "Heal for 16 HP.", Heal: 16}
)

// potionSlot pairs a potion with the slot it sits in so the view can
// report the slot index.
type potionSlot struct {
	potion *Potion
	slot   int
}

func (p potionSlot) PotionView() (snapshot.PotionView, error) {
	if p.potion == nil {
		return snapshot.PotionView{}, fmt.Errorf("potion slot %d is empty", p.slot)
	}
	return snapshot.PotionView{
		ID:          p.potion.ID,
		Name:        p.potion.Name,
		Description: p.potion.Description,
		Slot:        p.slot,
	}, nil
}
