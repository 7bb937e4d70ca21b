package shared

import "fmt"

// Suit represents the suit of a card. Spade is the highest for games that care.
type Suit int

const (
	Club Suit = iota
	Diamond
	Heart
	Spade
	Joker
)

var suitNames = [...]string{"Clubs", "Diamonds", "Hearts", "Spades", "Joker"}

func (s Suit) String() string {
	if s < Club || s > Joker {
		return fmt.Sprintf("Suit(%d)", int(s))
	}
	return suitNames[s]
}

// Rank is ace-high. Low and WildHigh are the two values a joker may take.
type Rank int

const (
	Low Rank = iota
	unused
	Two
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
	WildHigh
)

var rankNames = [...]string{
	"LowCard", "Unused", "Two", "Three", "Four", "Five", "Six", "Seven",
	"Eight", "Nine", "Ten", "Jack", "Queen", "King", "Ace", "WildCard",
}

func (r Rank) String() string {
	if r < Low || r > WildHigh {
		return fmt.Sprintf("Rank(%d)", int(r))
	}
	return rankNames[r]
}

// CardID addresses a card slot in the Deck that created it.
type CardID int

// None marks a missing neighbour or an empty pile.
const None CardID = -1

// Card is one slot of the deck arena. Suit, Rank and ID are fixed at creation;
// only the links change as the card moves between piles.
type Card struct {
	ID   CardID
	Suit Suit
	Rank Rank

	prev CardID
	next CardID
}

func (c Card) String() string {
	return fmt.Sprintf("%s of %s", c.Rank, c.Suit)
}

// CardView is the JSON form of a card.
type CardView struct {
	ID   int    `json:"id"`
	Rank string `json:"rank"`
	Suit string `json:"suit"`
}

func (c Card) View() CardView {
	return CardView{ID: int(c.ID), Rank: c.Rank.String(), Suit: c.Suit.String()}
}
