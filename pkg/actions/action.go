package actions

import (
	"fmt"

	"github.com/cbodonnell/cardbridge/pkg/commands"
	"github.com/google/uuid"
)

// Kind tags an Action variant. The set is closed.
type Kind string

const (
	KindPlayCard  Kind = "play_card"
	KindUsePotion Kind = "use_potion"
	KindEndTurn   Kind = "end_turn"
)

// PlayCard plays the card with CardID from the hand. The card is looked up
// when the action runs, not when it is submitted.
type PlayCard struct {
	CardID   uuid.UUID `json:"cardId"`
	TargetID string    `json:"targetId,omitempty"`
}

// UsePotion uses a potion by id or by slot. PotionID takes precedence.
type UsePotion struct {
	PotionID string `json:"potionId,omitempty"`
	Slot     *int   `json:"slot,omitempty"`
	TargetID string `json:"targetId,omitempty"`
}

// Action is a validated instruction that has not been resolved against
// simulation state yet. Exactly one payload matches Kind; EndTurn has none.
type Action struct {
	Kind      Kind       `json:"kind"`
	PlayCard  *PlayCard  `json:"playCard,omitempty"`
	UsePotion *UsePotion `json:"usePotion,omitempty"`
}

func NewPlayCard(cardID uuid.UUID, targetID string) Action {
	return Action{
		Kind:     KindPlayCard,
		PlayCard: &PlayCard{CardID: cardID, TargetID: targetID},
	}
}

func NewUsePotionByID(potionID string, targetID string) Action {
	return Action{
		Kind:      KindUsePotion,
		UsePotion: &UsePotion{PotionID: potionID, TargetID: targetID},
	}
}

func NewUsePotionBySlot(slot int, targetID string) Action {
	return Action{
		Kind:      KindUsePotion,
		UsePotion: &UsePotion{Slot: &slot, TargetID: targetID},
	}
}

func NewEndTurn() Action {
	return Action{Kind: KindEndTurn}
}

// Validate checks that the payload matches the tag.
func (a Action) Validate() error {
	switch a.Kind {
	case KindPlayCard:
		if a.PlayCard == nil || a.UsePotion != nil {
			return &commands.ValidationError{Field: commands.FieldUUID, Reason: "play_card requires a card reference"}
		}
		if a.PlayCard.CardID == uuid.Nil {
			return &commands.ValidationError{Field: commands.FieldUUID, Reason: "play_card requires a non-nil uuid"}
		}
	case KindUsePotion:
		if a.UsePotion == nil || a.PlayCard != nil {
			return &commands.ValidationError{Field: commands.FieldPotionID, Reason: "use_potion requires a potion reference"}
		}
		if a.UsePotion.PotionID == "" && a.UsePotion.Slot == nil {
			return &commands.ValidationError{Field: commands.FieldPotionID, Reason: "use_potion requires potionId or slotIndex"}
		}
		if a.UsePotion.PotionID == "" && *a.UsePotion.Slot < 0 {
			return &commands.ValidationError{Field: commands.FieldSlotIndex, Reason: "slotIndex must not be negative"}
		}
	case KindEndTurn:
		if a.PlayCard != nil || a.UsePotion != nil {
			return &commands.ValidationError{Field: commands.FieldCmd, Reason: "end_turn takes no parameters"}
		}
	default:
		return &commands.UnknownCommandError{Name: string(a.Kind)}
	}
	return nil
}

func (a Action) String() string {
	switch a.Kind {
	case KindPlayCard:
		if a.PlayCard != nil {
			return fmt.Sprintf("play_card(%s -> %q)", a.PlayCard.CardID, a.PlayCard.TargetID)
		}
	case KindUsePotion:
		if a.UsePotion != nil {
			if a.UsePotion.PotionID != "" {
				return fmt.Sprintf("use_potion(id=%s -> %q)", a.UsePotion.PotionID, a.UsePotion.TargetID)
			}
			if a.UsePotion.Slot != nil {
				return fmt.Sprintf("use_potion(slot=%d -> %q)", *a.UsePotion.Slot, a.UsePotion.TargetID)
			}
		}
	case KindEndTurn:
		return "end_turn"
	}
	return fmt.Sprintf("invalid(%s)", a.Kind)
}
