package shared

import (
	"fmt"
	"iter"
)

// The methods in this file treat each arena slot as a node of a doubly
// linked list. A list is identified by any of its members; missing links are
// None and every operation tolerates them.

func (d *Deck) valid(id CardID) bool {
	return id >= 0 && int(id) < len(d.cards)
}

// Next returns the card after id, or None.
func (d *Deck) Next(id CardID) CardID {
	if !d.valid(id) {
		return None
	}
	return d.cards[id].next
}

// Prev returns the card before id, or None.
func (d *Deck) Prev(id CardID) CardID {
	if !d.valid(id) {
		return None
	}
	return d.cards[id].prev
}

// Remove detaches id from its list, joining its neighbours, and returns id.
func (d *Deck) Remove(id CardID) CardID {
	if !d.valid(id) {
		return None
	}
	c := &d.cards[id]
	if c.prev != None {
		d.cards[c.prev].next = c.next
	}
	if c.next != None {
		d.cards[c.next].prev = c.prev
	}
	c.prev, c.next = None, None
	return id
}

// Add moves card to the end of the list containing dst and returns the card
// that followed card in its old list, so a caller can keep draining the source
// list one card at a time. Adding a card to itself changes nothing.
func (d *Deck) Add(dst, card CardID) CardID {
	if !d.valid(dst) || !d.valid(card) {
		return None
	}
	next := d.cards[card].next
	if dst == card {
		return next
	}

	d.Remove(card)
	last := d.Last(dst)
	d.cards[last].next = card
	d.cards[card].prev = last
	return next
}

// InsertAfter moves card so it directly follows at. Returns card.
func (d *Deck) InsertAfter(at, card CardID) CardID {
	if !d.valid(at) || !d.valid(card) {
		return card
	}
	if at == card {
		return card
	}

	d.Remove(card)
	c := &d.cards[card]
	c.prev = at
	c.next = d.cards[at].next
	d.cards[at].next = card
	if c.next != None {
		d.cards[c.next].prev = card
	}
	return card
}

// InsertBefore moves card so it directly precedes at. Returns card.
func (d *Deck) InsertBefore(at, card CardID) CardID {
	if !d.valid(at) || !d.valid(card) {
		return card
	}
	if at == card {
		return card
	}

	d.Remove(card)
	c := &d.cards[card]
	c.next = at
	c.prev = d.cards[at].prev
	d.cards[at].prev = card
	if c.prev != None {
		d.cards[c.prev].next = card
	}
	return card
}

// First walks back to the head of the list containing id.
func (d *Deck) First(id CardID) CardID {
	if !d.valid(id) {
		return None
	}
	for d.cards[id].prev != None {
		id = d.cards[id].prev
	}
	return id
}

// Last walks forward to the tail of the list containing id.
func (d *Deck) Last(id CardID) CardID {
	if !d.valid(id) {
		return None
	}
	for d.cards[id].next != None {
		id = d.cards[id].next
	}
	return id
}

// Count returns the number of cards in the list containing id.
func (d *Deck) Count(id CardID) int {
	n := 0
	for cur := d.First(id); cur != None; cur = d.cards[cur].next {
		n++
	}
	return n
}

// Cards yields the list containing id from head to tail. Each call starts
// again from the head.
func (d *Deck) Cards(id CardID) iter.Seq[Card] {
	return func(yield func(Card) bool) {
		for cur := d.First(id); cur != None; cur = d.cards[cur].next {
			if !yield(d.cards[cur]) {
				return
			}
		}
	}
}

// ListCards renders the list containing id, one numbered line per card.
func (d *Deck) ListCards(id CardID) []string {
	var lines []string
	i := 1
	for c := range d.Cards(id) {
		lines = append(lines, fmt.Sprintf("CARD %3d: %8s of %8s", i, c.Rank, c.Suit))
		i++
	}
	return lines
}
