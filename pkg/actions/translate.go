package actions

import (
	"github.com/cbodonnell/cardbridge/pkg/commands"
	"github.com/google/uuid"
)

// IsWriteCommand reports whether name is translated into an Action.
func IsWriteCommand(name string) bool {
	switch name {
	case commands.CommandPlayCard, commands.CommandUsePotion, commands.CommandEndTurn, commands.CommandExecuteAction:
		return true
	default:
		return false
	}
}

// Translate validates the shape of a write command and builds the matching
// Action. References (card uuid, potion, target) are carried opaquely and
// resolved by the simulation when the action runs.
func Translate(cmd commands.Command) (Action, error) {
	name := cmd.Name
	if name == commands.CommandExecuteAction {
		inner, err := cmd.String(commands.FieldAction)
		if err != nil {
			return Action{}, err
		}
		if inner == commands.CommandExecuteAction {
			return Action{}, &commands.UnknownCommandError{Name: inner}
		}
		name = inner
	}

	switch Kind(name) {
	case KindPlayCard:
		return translatePlayCard(cmd)
	case KindUsePotion:
		return translateUsePotion(cmd)
	case KindEndTurn:
		return NewEndTurn(), nil
	default:
		return Action{}, &commands.UnknownCommandError{Name: name}
	}
}

func translatePlayCard(cmd commands.Command) (Action, error) {
	raw, err := cmd.String(commands.FieldUUID)
	if err != nil {
		return Action{}, err
	}
	cardID, err := uuid.Parse(raw)
	if err != nil || cardID == uuid.Nil {
		return Action{}, &commands.ValidationError{Field: commands.FieldUUID, Reason: "uuid must be a valid card uuid"}
	}
	targetID, err := cmd.OptionalString(commands.FieldTargetID)
	if err != nil {
		return Action{}, err
	}
	return NewPlayCard(cardID, targetID), nil
}

func translateUsePotion(cmd commands.Command) (Action, error) {
	targetID, err := cmd.OptionalString(commands.FieldTargetID)
	if err != nil {
		return Action{}, err
	}

	potionID, err := cmd.OptionalString(commands.FieldPotionID)
	if err != nil {
		return Action{}, err
	}
	if potionID != "" {
		return NewUsePotionByID(potionID, targetID), nil
	}

	slot, present, err := cmd.OptionalInt(commands.FieldSlotIndex)
	if err != nil {
		return Action{}, err
	}
	if !present {
		return Action{}, &commands.ValidationError{Field: commands.FieldPotionID, Reason: "missing potionId or slotIndex"}
	}
	if slot < 0 {
		return Action{}, &commands.ValidationError{Field: commands.FieldSlotIndex, Reason: "slotIndex must not be negative"}
	}
	return NewUsePotionBySlot(slot, targetID), nil
}
