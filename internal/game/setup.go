package game

import (
	"errors"
	"fmt"
	"time"

	"war-game/internal/shared"
)

// ShuffleMode selects how the deck is mixed before dealing.
type ShuffleMode string

const (
	ShuffleRelink  ShuffleMode = "relink"  // random splices, Deck.Shuffle
	ShuffleUniform ShuffleMode = "uniform" // Fisher-Yates, Deck.ShuffleUniform
)

// ParseShuffleMode accepts "relink" or "uniform".
func ParseShuffleMode(s string) (ShuffleMode, error) {
	switch ShuffleMode(s) {
	case ShuffleRelink, "":
		return ShuffleRelink, nil
	case ShuffleUniform:
		return ShuffleUniform, nil
	}
	return ShuffleRelink, fmt.Errorf("unknown shuffle mode %q", s)
}

// Limits on a Setup. A deck of MaxDecks packs holds 5400 cards.
const (
	MaxDecks         = 100
	MaxShufflePasses = 100
)

// Setup describes how to build and shuffle the deck of a new game.
type Setup struct {
	Decks         int
	Jokers        shared.JokerPolicy
	JokerRank     shared.Rank
	Seed          uint64 // zero picks a wall-clock seed
	ShufflePasses int
	Shuffle       ShuffleMode
	MaxCycles     int // zero means no limit
}

// DefaultSetup is one pack without jokers, one relink pass and a cap of a
// million comparisons.
func DefaultSetup() Setup {
	return Setup{
		Decks:         1,
		Jokers:        shared.NoJokers,
		JokerRank:     shared.WildHigh,
		ShufflePasses: 1,
		Shuffle:       ShuffleRelink,
		MaxCycles:     1_000_000,
	}
}

// Validate reports every setting Build would reject.
func (s Setup) Validate() error {
	var errs []error
	if s.Decks < 1 || s.Decks > MaxDecks {
		errs = append(errs, fmt.Errorf("%w: %d (1 to %d)", shared.ErrInvalidDeckCount, s.Decks, MaxDecks))
	}
	if s.ShufflePasses < 0 || s.ShufflePasses > MaxShufflePasses {
		errs = append(errs, fmt.Errorf("shuffle passes must be between 0 and %d: %d", MaxShufflePasses, s.ShufflePasses))
	}
	if _, err := ParseShuffleMode(string(s.Shuffle)); err != nil {
		errs = append(errs, err)
	}
	if s.MaxCycles < 0 {
		errs = append(errs, fmt.Errorf("max cycles must not be negative: %d", s.MaxCycles))
	}
	return errors.Join(errs...)
}

// Deck returns the unshuffled deck described by s.
func (s Setup) Deck() (*shared.Deck, error) {
	return shared.NewDeck(s.Decks, s.Jokers, s.JokerRank)
}

// ShuffleDeck mixes d with src according to the shuffle mode. Zero passes
// leave the deck in creation order.
func (s Setup) ShuffleDeck(d *shared.Deck, src shared.Source) {
	if s.Shuffle == ShuffleUniform {
		d.ShuffleUniform(src)
		return
	}
	if s.ShufflePasses > 0 {
		d.Shuffle(src, s.ShufflePasses)
	}
}

// WithSeed returns s with a wall-clock seed if none was set, so that the
// seed of every game is known and the game can be replayed.
func (s Setup) WithSeed() Setup {
	if s.Seed == 0 {
		s.Seed = uint64(time.Now().UnixNano())
	}
	return s
}

// Build creates, shuffles and deals a new game. The same seed always yields
// the same game.
func (s Setup) Build(opts ...Option) (*Game, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	s = s.WithSeed()
	d, err := s.Deck()
	if err != nil {
		return nil, err
	}
	src := shared.NewSource(s.Seed)
	s.ShuffleDeck(d, src)

	opts = append([]Option{WithMaxCycles(s.MaxCycles)}, opts...)
	g := NewGame(d, src, opts...)
	g.Seed = s.Seed
	return g, nil
}
