package shared

import (
	"errors"
	"testing"
)

// seqSource replays a fixed sequence of values, reduced modulo n.
type seqSource struct {
	vals []int
	i    int
}

func (s *seqSource) IntN(n int) int {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v % n
}

func mustDeck(t *testing.T, decks int, jokers JokerPolicy) *Deck {
	t.Helper()
	d, err := NewDeck(decks, jokers, WildHigh)
	if err != nil {
		t.Fatalf("NewDeck(%d, %v): %v", decks, jokers, err)
	}
	return d
}

func TestNewDeck_Size(t *testing.T) {
	tests := []struct {
		decks  int
		jokers JokerPolicy
		want   int
	}{
		{1, NoJokers, 52},
		{1, KeepJokers, 54},
		{2, NoJokers, 104},
		{3, KeepJokers, 162},
	}
	for _, tt := range tests {
		d := mustDeck(t, tt.decks, tt.jokers)
		if d.Size() != tt.want {
			t.Errorf("decks=%d jokers=%v: Size() = %d, want %d", tt.decks, tt.jokers, d.Size(), tt.want)
		}
		if d.Remaining() != tt.want {
			t.Errorf("decks=%d jokers=%v: Remaining() = %d, want %d", tt.decks, tt.jokers, d.Remaining(), tt.want)
		}
	}
}

func TestNewDeck_CreationOrder(t *testing.T) {
	d := mustDeck(t, 2, KeepJokers)

	first := d.Card(0)
	if first.Suit != Club || first.Rank != Two {
		t.Fatalf("first card = %v, want Two of Clubs", first)
	}
	if c := d.Card(12); c.Suit != Club || c.Rank != Ace {
		t.Fatalf("card 12 = %v, want Ace of Clubs", c)
	}
	if c := d.Card(51); c.Suit != Spade || c.Rank != Ace {
		t.Fatalf("card 51 = %v, want Ace of Spades", c)
	}
	for _, id := range []CardID{52, 53, 106, 107} {
		if c := d.Card(id); c.Suit != Joker || c.Rank != WildHigh {
			t.Fatalf("card %d = %v, want a WildCard joker", id, c)
		}
	}
	if c := d.Card(54); c.Suit != Club || c.Rank != Two {
		t.Fatalf("second pack starts with %v, want Two of Clubs", c)
	}

	want := CardID(0)
	for c := range d.Cards(d.Top()) {
		if c.ID != want {
			t.Fatalf("card at position %d has id %d", want, c.ID)
		}
		want++
	}
	if int(want) != d.Size() {
		t.Fatalf("walked %d cards, want %d", want, d.Size())
	}
}

func TestNewDeck_InvalidArguments(t *testing.T) {
	if _, err := NewDeck(0, NoJokers, WildHigh); !errors.Is(err, ErrInvalidDeckCount) {
		t.Errorf("NewDeck(0) error = %v, want ErrInvalidDeckCount", err)
	}
	if _, err := NewDeck(1, KeepJokers, Rank(99)); !errors.Is(err, ErrInvalidJokerRank) {
		t.Errorf("NewDeck with rank 99 error = %v, want ErrInvalidJokerRank", err)
	}
	if _, err := NewDeck(1, NoJokers, Rank(99)); err != nil {
		t.Errorf("joker rank should be ignored without jokers, got %v", err)
	}
}

func TestDeck_DealUntilEmpty(t *testing.T) {
	d := mustDeck(t, 1, NoJokers)

	for i := 0; i < d.Size(); i++ {
		id, ok := d.Deal()
		if !ok {
			t.Fatalf("deal %d returned no card", i)
		}
		if id != CardID(i) {
			t.Fatalf("deal %d returned card %d", i, id)
		}
		if d.InDeck(id) {
			t.Fatalf("card %d still marked in deck", id)
		}
		if d.Next(id) != None || d.Prev(id) != None {
			t.Fatalf("dealt card %d still linked", id)
		}
	}

	id, ok := d.Deal()
	if ok || id != None {
		t.Fatalf("Deal() on empty deck = (%d, %v), want (None, false)", id, ok)
	}
	if got := d.ShowCards(); len(got) != 1 || got[0] != "Deck is Empty" {
		t.Fatalf("ShowCards() on empty deck = %v", got)
	}
}

func checkPermutation(t *testing.T, d *Deck) {
	t.Helper()
	p := PileFrom(d, d.Top())
	if err := p.Check(); err != nil {
		t.Fatalf("deck pile inconsistent: %v", err)
	}
	if d.First(d.Top()) != d.Top() {
		t.Fatalf("top %d is not the head of its list", d.Top())
	}
	seen := make(map[CardID]bool, d.Size())
	for _, id := range p.IDs() {
		if seen[id] {
			t.Fatalf("card %d appears twice", id)
		}
		seen[id] = true
	}
	if len(seen) != d.Size() {
		t.Fatalf("deck holds %d distinct cards, want %d", len(seen), d.Size())
	}
}

func TestDeck_ShufflePreservesCards(t *testing.T) {
	d := mustDeck(t, 1, KeepJokers)
	d.Shuffle(NewSource(42), 2)
	checkPermutation(t, d)

	inOrder := true
	for i, id := range PileFrom(d, d.Top()).IDs() {
		if id != CardID(i) {
			inOrder = false
			break
		}
	}
	if inOrder {
		t.Fatal("shuffle left the deck in creation order")
	}
}

func TestDeck_ShuffleUniformPreservesCards(t *testing.T) {
	d := mustDeck(t, 2, NoJokers)
	d.ShuffleUniform(NewSource(7))
	checkPermutation(t, d)
}

func TestDeck_ShuffleIsReproducible(t *testing.T) {
	a := mustDeck(t, 1, NoJokers)
	b := mustDeck(t, 1, NoJokers)
	a.Shuffle(NewSource(99), 1)
	b.Shuffle(NewSource(99), 1)

	ia, ib := PileFrom(a, a.Top()).IDs(), PileFrom(b, b.Top()).IDs()
	for i := range ia {
		if ia[i] != ib[i] {
			t.Fatalf("same seed diverged at position %d: %d vs %d", i, ia[i], ib[i])
		}
	}
}

func TestDeck_ShuffleOnlyTouchesUndealtCards(t *testing.T) {
	d := mustDeck(t, 1, NoJokers)
	hand := NewPile(d)
	for i := 0; i < 10; i++ {
		id, _ := d.Deal()
		hand.PushBottom(id)
	}

	d.Shuffle(NewSource(3), 1)
	if d.Remaining() != 42 {
		t.Fatalf("Remaining() = %d after shuffle, want 42", d.Remaining())
	}
	if err := hand.Check(); err != nil {
		t.Fatalf("hand damaged by shuffle: %v", err)
	}
	if hand.Len() != 10 {
		t.Fatalf("hand has %d cards, want 10", hand.Len())
	}
}

func TestDeck_ShuffleWithScriptedSource(t *testing.T) {
	d := mustDeck(t, 1, NoJokers)
	// Every splice moves card 5 in front of card 0.
	d.Shuffle(&seqSource{vals: []int{5, 0}}, 1)
	if d.Top() != 5 {
		t.Fatalf("Top() = %d, want 5", d.Top())
	}
	if d.Next(5) != 0 {
		t.Fatalf("card after 5 is %d, want 0", d.Next(5))
	}
	checkPermutation(t, d)
}

func TestDeck_Gather(t *testing.T) {
	d := mustDeck(t, 1, KeepJokers)
	d.Shuffle(NewSource(11), 1)
	a, b := NewPile(d), NewPile(d)
	for i := 0; ; i++ {
		id, ok := d.Deal()
		if !ok {
			break
		}
		if i%2 == 0 {
			a.PushBottom(id)
		} else {
			b.PushTop(id)
		}
	}

	d.Gather()
	if d.Top() != 0 {
		t.Fatalf("Top() = %d after Gather, want 0", d.Top())
	}
	for i, id := range PileFrom(d, 0).IDs() {
		if id != CardID(i) {
			t.Fatalf("position %d holds card %d after Gather", i, id)
		}
		if !d.InDeck(id) {
			t.Fatalf("card %d not marked in deck after Gather", id)
		}
	}
	checkPermutation(t, d)
}

func TestParseJokerOptions(t *testing.T) {
	if p, err := ParseJokerPolicy("keep"); err != nil || p != KeepJokers {
		t.Errorf("ParseJokerPolicy(keep) = %v, %v", p, err)
	}
	if p, err := ParseJokerPolicy("discard"); err != nil || p != NoJokers {
		t.Errorf("ParseJokerPolicy(discard) = %v, %v", p, err)
	}
	if _, err := ParseJokerPolicy("maybe"); err == nil {
		t.Error("ParseJokerPolicy(maybe) should fail")
	}
	if r, err := ParseJokerRank("low"); err != nil || r != Low {
		t.Errorf("ParseJokerRank(low) = %v, %v", r, err)
	}
	if _, err := ParseJokerRank("middle"); !errors.Is(err, ErrInvalidJokerRank) {
		t.Errorf("ParseJokerRank(middle) error = %v", err)
	}
}
