package shared

// Battle is one comparison of the two active cards.
type Battle struct {
	CardA  Card
	CardB  Card
	Winner Side // NoSide when the ranks tie and a war starts
}

// NewBattle compares a against b by rank; suits never matter in War.
func NewBattle(a, b Card) Battle {
	bt := Battle{CardA: a, CardB: b}
	switch {
	case a.Rank > b.Rank:
		bt.Winner = SideA
	case a.Rank < b.Rank:
		bt.Winner = SideB
	}
	return bt
}

// IsWar reports whether the ranks tied.
func (b Battle) IsWar() bool {
	return b.Winner == NoSide
}
