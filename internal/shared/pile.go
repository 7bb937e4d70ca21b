package shared

import (
	"fmt"
	"iter"
)

// Pile is a borrowed view over one list of the deck arena: the head, a cached
// tail and a count. Hands and discard piles are Piles. Cards must only move
// between piles through Pile methods, otherwise the cached ends go stale.
type Pile struct {
	deck *Deck
	head CardID
	tail CardID
	n    int
}

// NewPile returns an empty pile on d.
func NewPile(d *Deck) *Pile {
	return &Pile{deck: d, head: None, tail: None}
}

// PileFrom builds a view over the list that already contains id.
func PileFrom(d *Deck, id CardID) *Pile {
	p := NewPile(d)
	if !d.valid(id) {
		return p
	}
	p.head = d.First(id)
	p.tail = d.Last(id)
	p.n = d.Count(id)
	return p
}

// Top is the first card of the pile, or None.
func (p *Pile) Top() CardID { return p.head }

// Bottom is the last card of the pile, or None.
func (p *Pile) Bottom() CardID { return p.tail }

// Len is the number of cards in the pile.
func (p *Pile) Len() int { return p.n }

// Empty reports whether the pile holds no card.
func (p *Pile) Empty() bool { return p.head == None }

// TopCard returns the card on top. ok is false for an empty pile.
func (p *Pile) TopCard() (c Card, ok bool) {
	if p.head == None {
		return Card{ID: None}, false
	}
	return p.deck.cards[p.head], true
}

// PopTop detaches the top card.
func (p *Pile) PopTop() (CardID, bool) {
	if p.head == None {
		return None, false
	}
	id := p.head
	p.head = p.deck.Next(id)
	p.deck.Remove(id)
	p.n--
	if p.head == None {
		p.tail = None
	}
	return id, true
}

// PushTop moves id, which must not already be in p, on top of the pile.
func (p *Pile) PushTop(id CardID) {
	if !p.deck.valid(id) {
		return
	}
	if p.head == None {
		p.deck.Remove(id)
		p.head, p.tail = id, id
	} else {
		p.head = p.deck.InsertBefore(p.head, id)
	}
	p.n++
}

// PushBottom moves id, which must not already be in p, under the pile.
func (p *Pile) PushBottom(id CardID) {
	if !p.deck.valid(id) {
		return
	}
	if p.tail == None {
		p.deck.Remove(id)
		p.head, p.tail = id, id
	} else {
		p.tail = p.deck.InsertAfter(p.tail, id)
	}
	p.n++
}

// TakeAll drains src from top to bottom onto the bottom of p, leaving src
// empty.
func (p *Pile) TakeAll(src *Pile) {
	if src == p {
		return
	}
	for id := src.head; id != None; {
		card := id
		if p.tail == None {
			id = p.deck.Next(card)
			p.deck.Remove(card)
			p.head = card
		} else {
			id = p.deck.Add(p.tail, card)
		}
		p.tail = card
		p.n++
	}
	src.head, src.tail, src.n = None, None, 0
}

// Cards yields the pile from top to bottom.
func (p *Pile) Cards() iter.Seq[Card] {
	return func(yield func(Card) bool) {
		for cur := p.head; cur != None; cur = p.deck.cards[cur].next {
			if !yield(p.deck.cards[cur]) {
				return
			}
		}
	}
}

// IDs lists the pile from top to bottom.
func (p *Pile) IDs() []CardID {
	ids := make([]CardID, 0, p.n)
	for c := range p.Cards() {
		ids = append(ids, c.ID)
	}
	return ids
}

// Views returns the JSON form of the pile.
func (p *Pile) Views() []CardView {
	views := make([]CardView, 0, p.n)
	for c := range p.Cards() {
		views = append(views, c.View())
	}
	return views
}

// ShowCards renders the pile, or "Pile is Empty".
func (p *Pile) ShowCards() []string {
	if p.head == None {
		return []string{"Pile is Empty"}
	}
	return p.deck.ListCards(p.head)
}

// Check verifies that the links of the pile are doubly consistent, acyclic
// and agree with the cached head, tail and count.
func (p *Pile) Check() error {
	if p.head == None {
		if p.tail != None || p.n != 0 {
			return fmt.Errorf("empty pile has tail %d and count %d", p.tail, p.n)
		}
		return nil
	}
	d := p.deck
	if d.cards[p.head].prev != None {
		return fmt.Errorf("head %d has a previous card %d", p.head, d.cards[p.head].prev)
	}

	seen := 0
	prev := None
	for cur := p.head; cur != None; cur = d.cards[cur].next {
		if !d.valid(cur) {
			return fmt.Errorf("link to unknown card %d", cur)
		}
		if d.cards[cur].prev != prev {
			return fmt.Errorf("card %d points back to %d, want %d", cur, d.cards[cur].prev, prev)
		}
		seen++
		if seen > len(d.cards) {
			return fmt.Errorf("cycle detected after card %d", cur)
		}
		prev = cur
	}
	if prev != p.tail {
		return fmt.Errorf("list ends at %d but cached tail is %d", prev, p.tail)
	}
	if seen != p.n {
		return fmt.Errorf("pile holds %d cards but count is %d", seen, p.n)
	}
	return nil
}
