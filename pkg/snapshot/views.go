package snapshot

// EnergyUnavailable is reported when the player's stats could not be read.
const EnergyUnavailable = -1

type PlayerView struct {
	HP             int    `json:"hp"`
	MaxHP          int    `json:"maxHp"`
	Energy         int    `json:"energy"`
	Gold           int    `json:"gold"`
	CurrentBlock   int    `json:"currentBlock"`
	AscensionLevel int    `json:"ascensionLevel"`
	Character      string `json:"character"`
	Turn           int    `json:"turn"`
}

type CardView struct {
	UUID     string `json:"uuid"`
	ID       string `json:"id"`
	Name     string `json:"name"`
	Cost     int    `json:"cost"`
	Type     string `json:"type"`
	Rarity   string `json:"rarity"`
	Upgraded bool   `json:"upgraded"`
}

type RelicView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Tier        string `json:"tier"`
}

type PotionView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Slot        int    `json:"slot"`
}

// MonsterView describes one enemy. ID is the instance id accepted as a
// targetId; MonsterID names the kind of monster.
type MonsterView struct {
	ID           string  `json:"id"`
	MonsterID    string  `json:"monsterId"`
	Name         string  `json:"name"`
	CurrentHP    int     `json:"currentHp"`
	MaxHP        int     `json:"maxHp"`
	CurrentBlock int     `json:"currentBlock"`
	IsDead       bool    `json:"isDead"`
	IsEscaped    bool    `json:"isEscaped"`
	Intent       string  `json:"intent"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
}

// StateSnapshot is a read-only copy of the simulation at one instant.
// Pile counts are the true pile sizes and can exceed the number of
// serialized cards when an entry was unreadable.
type StateSnapshot struct {
	PlayerView
	Hand             []CardView    `json:"hand"`
	HandCount        int           `json:"handCount"`
	DrawPile         []CardView    `json:"drawPile"`
	DrawPileCount    int           `json:"drawPileCount"`
	DiscardPile      []CardView    `json:"discardPile"`
	DiscardPileCount int           `json:"discardPileCount"`
	Relics           []RelicView   `json:"relics"`
	Potions          []PotionView  `json:"potions"`
	Monsters         []MonsterView `json:"monsters"`
}

type CardsView struct {
	Cards []CardView `json:"cards"`
	Count int        `json:"count"`
}

type DeckView struct {
	AllCards    []CardView `json:"allCards"`
	Hand        []CardView `json:"hand"`
	DrawPile    []CardView `json:"drawPile"`
	DiscardPile []CardView `json:"discardPile"`
	TotalCount  int        `json:"totalCount"`
}

type RelicsView struct {
	Relics []RelicView `json:"relics"`
	Count  int         `json:"count"`
}

type PotionsView struct {
	Potions []PotionView `json:"potions"`
	Count   int          `json:"count"`
}

type MonstersView struct {
	Monsters []MonsterView `json:"monsters"`
	Count    int           `json:"count"`
}

func (s StateSnapshot) Player() PlayerView {
	return s.PlayerView
}

func (s StateSnapshot) HandView() CardsView {
	return CardsView{Cards: s.Hand, Count: s.HandCount}
}

func (s StateSnapshot) DrawPileView() CardsView {
	return CardsView{Cards: s.DrawPile, Count: s.DrawPileCount}
}

func (s StateSnapshot) DiscardPileView() CardsView {
	return CardsView{Cards: s.DiscardPile, Count: s.DiscardPileCount}
}

// DeckView lists every card the player owns in this combat, hand first.
func (s StateSnapshot) DeckView() DeckView {
	all := make([]CardView, 0, len(s.Hand)+len(s.DrawPile)+len(s.DiscardPile))
	all = append(all, s.Hand...)
	all = append(all, s.DrawPile...)
	all = append(all, s.DiscardPile...)
	return DeckView{
		AllCards:    all,
		Hand:        s.Hand,
		DrawPile:    s.DrawPile,
		DiscardPile: s.DiscardPile,
		TotalCount:  s.HandCount + s.DrawPileCount + s.DiscardPileCount,
	}
}

func (s StateSnapshot) RelicsView() RelicsView {
	return RelicsView{Relics: s.Relics, Count: len(s.Relics)}
}

func (s StateSnapshot) PotionsView() PotionsView {
	return PotionsView{Potions: s.Potions, Count: len(s.Potions)}
}

func (s StateSnapshot) MonstersView() MonstersView {
	return MonstersView{Monsters: s.Monsters, Count: len(s.Monsters)}
}
