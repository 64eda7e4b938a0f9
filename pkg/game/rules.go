package game

import (
	"fmt"

	"github.com/cbodonnell/cardbridge/pkg/actions"
	"github.com/cbodonnell/cardbridge/pkg/commands"
	"github.com/cbodonnell/cardbridge/pkg/game/types"
	"github.com/cbodonnell/cardbridge/pkg/log"
)

// execute resolves the action's references against the current state and
// applies it. Must be called with the write lock held.
func (gm *GameManager) execute(action actions.Action) (string, error) {
	if gm.gameState.Player == nil {
		return "", commands.ErrSimulationNotReady
	}

	switch action.Kind {
	case actions.KindPlayCard:
		return gm.playCard(*action.PlayCard)
	case actions.KindUsePotion:
		return gm.usePotion(*action.UsePotion)
	case actions.KindEndTurn:
		return gm.endTurn()
	default:
		return "", fmt.Errorf("unhandled action kind: %s", action.Kind)
	}
}

func (gm *GameManager) playCard(a actions.PlayCard) (string, error) {
	player := gm.gameState.Player

	i := player.FindCardInHand(a.CardID)
	if i < 0 {
		return "", reject("card %s is not in hand", a.CardID)
	}
	card := player.Hand[i]
	if card.Cost > player.Energy {
		return "", reject("not enough energy to play %s: costs %d, have %d", card.Name, card.Cost, player.Energy)
	}

	player.Energy -= card.Cost
	player.RemoveFromHand(i)
	message := fmt.Sprintf("played %s", card.Name)

	if card.Damage > 0 {
		if target := gm.resolveTarget(a.TargetID); target != nil {
			lost := target.TakeDamage(card.Damage)
			message += fmt.Sprintf(" on %s for %d", target.Name, lost)
		}
	}
	if card.Block > 0 {
		player.Block += card.Block
	}
	player.DiscardPile = append(player.DiscardPile, card)
	if card.Draw > 0 {
		player.Draw(card.Draw, gm.rng)
	}
	return message, nil
}

func (gm *GameManager) usePotion(a actions.UsePotion) (string, error) {
	player := gm.gameState.Player

	slot := -1
	switch {
	case a.PotionID != "":
		slot = player.FindPotion(a.PotionID)
	case a.Slot != nil && *a.Slot >= 0 && *a.Slot < len(player.Potions) && player.Potions[*a.Slot] != nil:
		slot = *a.Slot
	}
	if slot < 0 {
		return "", reject("potion not found")
	}

	potion := player.Potions[slot]
	player.Potions[slot] = nil
	message := fmt.Sprintf("used %s", potion.Name)

	if potion.Damage > 0 {
		if target := gm.resolveTarget(a.TargetID); target != nil {
			lost := target.TakeDamage(potion.Damage)
			message += fmt.Sprintf(" on %s for %d", target.Name, lost)
		}
	}
	if potion.Block > 0 {
		player.Block += potion.Block
	}
	if potion.Heal > 0 {
		player.Heal(potion.Heal)
	}
	return message, nil
}

// endTurn discards the hand, lets every live enemy act on its intent and
// starts the next turn.
func (gm *GameManager) endTurn() (string, error) {
	player := gm.gameState.Player
	player.DiscardHand()

	taken := 0
	for _, enemy := range gm.gameState.LiveEnemies() {
		enemy.Block = 0
		switch enemy.Intent.Type {
		case types.IntentAttack:
			taken += player.TakeDamage(enemy.Intent.Damage)
		case types.IntentDefend:
			enemy.Block += enemy.Intent.Block
		case types.IntentAttackDefend:
			taken += player.TakeDamage(enemy.Intent.Damage)
			enemy.Block += enemy.Intent.Block
		}
		if player.IsDead() {
			return fmt.Sprintf("took %d damage and died", taken), nil
		}
	}

	for _, enemy := range gm.gameState.LiveEnemies() {
		enemy.RollIntent(gm.rng)
	}
	gm.startTurnLocked()
	return fmt.Sprintf("took %d damage, turn %d started", taken, player.Turn), nil
}

// resolveTarget returns the live enemy with the given id. A missing, dead
// or unknown id falls back to a random live enemy; nil means no enemy is
// left to target.
func (gm *GameManager) resolveTarget(targetID string) *types.EnemyState {
	if enemy, ok := gm.gameState.FindLiveEnemy(targetID); ok {
		return enemy
	}
	live := gm.gameState.LiveEnemies()
	if len(live) == 0 {
		return nil
	}
	if targetID != "" {
		log.Debug("Target %s not found, falling back to a random enemy", targetID)
	}
	return live[gm.rng.IntN(len(live))]
}
