package shared

// Player represents one side of a War game: the face-down hand it draws from
// and the discard pile of cards it has on the table this round.
type Player struct {
	Side    Side
	Hand    *Pile
	Discard *Pile
}

// NewPlayer creates a player with an empty hand and discard pile on d.
func NewPlayer(side Side, d *Deck) *Player {
	return &Player{
		Side:    side,
		Hand:    NewPile(d),
		Discard: NewPile(d),
	}
}

// AddCard puts a dealt card under the hand.
func (p *Player) AddCard(id CardID) {
	p.Hand.PushBottom(id)
}

// Commit moves the top of the hand onto the discard pile, where it becomes
// the active compare card. It returns false when the hand is empty.
func (p *Player) Commit() bool {
	id, ok := p.Hand.PopTop()
	if !ok {
		return false
	}
	p.Discard.PushTop(id)
	return true
}

// Active is the face-up card on top of the discard pile.
func (p *Player) Active() (Card, bool) {
	return p.Discard.TopCard()
}

// Collect returns both discard piles to the bottom of this player's hand,
// first then second.
func (p *Player) Collect(first, second *Pile) {
	p.Hand.TakeAll(first)
	p.Hand.TakeAll(second)
}

// CardsHeld counts hand and discard together.
func (p *Player) CardsHeld() int {
	return p.Hand.Len() + p.Discard.Len()
}

// Out reports whether the player has nothing left to play.
func (p *Player) Out() bool {
	return p.Hand.Empty() && p.Discard.Empty()
}
