package constants

const (
	// Character is the only playable character
	Character string = "IRONCLAD"
	// PlayerStartingHP is the hitpoints a run starts with
	PlayerStartingHP int = 80
	// PlayerStartingGold is the gold a run starts with
	PlayerStartingGold int = 99
	// PlayerMaxEnergy is the energy refilled at the start of each turn
	PlayerMaxEnergy int = 3
	// HandSize is the number of cards drawn at the start of each turn
	HandSize int = 5
	// MaxHandSize caps the hand; extra draws are discarded
	MaxHandSize int = 10
	// PotionSlots is the number of potion slots
	PotionSlots int = 3

	// BurningBloodHeal is healed after each won combat
	BurningBloodHeal int = 6

	// MaxEnemiesPerEncounter caps the enemies spawned for one encounter
	MaxEnemiesPerEncounter int = 3
	// EnemySpacing is the horizontal distance between enemies
	EnemySpacing float64 = 220.0
	// EnemyStartingX is the x position of the first enemy
	EnemyStartingX float64 = 1050.0
	// EnemyStartingY is the y position of every enemy
	EnemyStartingY float64 = 300.0
)
