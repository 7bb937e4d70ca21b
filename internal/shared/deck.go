package shared

import (
	"errors"
	"fmt"
)

// JokerPolicy decides whether the two jokers of each pack stay in the deck.
type JokerPolicy int

const (
	NoJokers JokerPolicy = iota
	KeepJokers
)

func (p JokerPolicy) String() string {
	if p == KeepJokers {
		return "keep"
	}
	return "discard"
}

// ParseJokerPolicy accepts "keep" or "discard".
func ParseJokerPolicy(s string) (JokerPolicy, error) {
	switch s {
	case "keep":
		return KeepJokers, nil
	case "discard", "":
		return NoJokers, nil
	}
	return NoJokers, fmt.Errorf("unknown joker policy %q", s)
}

// ParseJokerRank maps "high" to WildCard and "low" to LowCard.
func ParseJokerRank(s string) (Rank, error) {
	switch s {
	case "high", "":
		return WildHigh, nil
	case "low":
		return Low, nil
	}
	return WildHigh, fmt.Errorf("%w: %q", ErrInvalidJokerRank, s)
}

const (
	standardPackSize = 52
	jokersPerPack    = 2

	// relinksPerCard is how many random splices one shuffle pass performs
	// for every card in the deck.
	relinksPerCard = 100
)

var (
	ErrInvalidDeckCount = errors.New("number of decks must be positive")
	ErrInvalidJokerRank = errors.New("joker rank must be LowCard..WildCard")
)

// Deck owns every Card it creates. Hands and discard piles only borrow
// CardIDs, and none of them may be used once the Deck is dropped.
type Deck struct {
	cards   []Card
	present []bool // card is linked into the deck pile
	top     CardID
	packs   int
	jokers  JokerPolicy
}

// NewDeck creates numberOfDecks packs: for each pack Clubs, Diamonds, Hearts
// and Spades from Two to Ace, then two jokers of jokerRank when jokers are
// kept. The cards are linked in creation order with the first one on top.
func NewDeck(numberOfDecks int, jokers JokerPolicy, jokerRank Rank) (*Deck, error) {
	if numberOfDecks < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDeckCount, numberOfDecks)
	}
	packSize := standardPackSize
	if jokers == KeepJokers {
		if jokerRank < Low || jokerRank > WildHigh || jokerRank == unused {
			return nil, fmt.Errorf("%w: %d", ErrInvalidJokerRank, int(jokerRank))
		}
		packSize += jokersPerPack
	}

	size := numberOfDecks * packSize
	d := &Deck{
		cards:   make([]Card, 0, size),
		present: make([]bool, size),
		packs:   numberOfDecks,
		jokers:  jokers,
	}
	for pack := 0; pack < numberOfDecks; pack++ {
		for suit := Club; suit <= Spade; suit++ {
			for rank := Two; rank <= Ace; rank++ {
				d.newCard(suit, rank)
			}
		}
		if jokers == KeepJokers {
			for i := 0; i < jokersPerPack; i++ {
				d.newCard(Joker, jokerRank)
			}
		}
	}

	d.Gather()
	return d, nil
}

func (d *Deck) newCard(suit Suit, rank Rank) {
	id := CardID(len(d.cards))
	d.cards = append(d.cards, Card{ID: id, Suit: suit, Rank: rank, prev: None, next: None})
}

// Size is the number of cards the deck owns, dealt or not.
func (d *Deck) Size() int { return len(d.cards) }

// Packs is the number of standard packs the deck was built from.
func (d *Deck) Packs() int { return d.packs }

// Jokers reports the joker policy the deck was built with.
func (d *Deck) Jokers() JokerPolicy { return d.jokers }

// Card returns the card stored under id. The zero Card is returned for an
// unknown id.
func (d *Deck) Card(id CardID) Card {
	if !d.valid(id) {
		return Card{ID: None}
	}
	return d.cards[id]
}

// Top is the next card Deal will hand out, or None.
func (d *Deck) Top() CardID { return d.top }

// InDeck reports whether id is still in the deck pile.
func (d *Deck) InDeck(id CardID) bool {
	return d.valid(id) && d.present[id]
}

// Remaining counts the undealt cards.
func (d *Deck) Remaining() int {
	if d.top == None {
		return 0
	}
	return d.Count(d.top)
}

// Deal removes the top card and returns it. The second result is false once
// the deck is exhausted.
func (d *Deck) Deal() (CardID, bool) {
	if d.top == None {
		return None, false
	}
	id := d.top
	d.top = d.cards[id].next
	d.Remove(id)
	d.present[id] = false
	return id, true
}

// Gather relinks every card the deck owns back into creation order. Any Pile
// built on this deck is stale afterwards.
func (d *Deck) Gather() {
	if len(d.cards) == 0 {
		d.top = None
		return
	}
	d.Remove(0)
	d.present[0] = true
	for i := 1; i < len(d.cards); i++ {
		d.InsertAfter(CardID(i-1), CardID(i))
		d.present[i] = true
	}
	d.top = 0
}

// Shuffle performs passes rounds of random splices over the undealt cards,
// 100 per card per pass, each moving a random card directly in front of
// another random card. The result is well mixed but not a provably uniform
// permutation; ShuffleUniform gives one.
func (d *Deck) Shuffle(src Source, passes int) {
	ids := d.undealt()
	n := len(ids)
	if n < 2 {
		return
	}
	if passes < 1 {
		passes = 1
	}

	last := d.top
	for pass := 0; pass < passes; pass++ {
		for i := 0; i < relinksPerCard*n; i++ {
			a := ids[src.IntN(n)]
			b := ids[src.IntN(n)]
			d.InsertBefore(b, a)
			last = a
		}
	}
	d.top = d.First(last)
}

// ShuffleUniform applies a Fisher-Yates permutation to the undealt cards.
func (d *Deck) ShuffleUniform(src Source) {
	ids := d.undealt()
	n := len(ids)
	if n < 2 {
		return
	}
	for i := n - 1; i > 0; i-- {
		j := src.IntN(i + 1)
		ids[i], ids[j] = ids[j], ids[i]
	}

	for _, id := range ids {
		d.Remove(id)
	}
	for i := 1; i < n; i++ {
		d.InsertAfter(ids[i-1], ids[i])
	}
	d.top = ids[0]
}

// undealt lists the deck pile from top to bottom.
func (d *Deck) undealt() []CardID {
	ids := make([]CardID, 0, len(d.cards))
	for cur := d.top; cur != None; cur = d.cards[cur].next {
		ids = append(ids, cur)
	}
	return ids
}

// ShowCards renders the deck pile, or "Deck is Empty".
func (d *Deck) ShowCards() []string {
	if d.top == None {
		return []string{"Deck is Empty"}
	}
	return d.ListCards(d.top)
}
