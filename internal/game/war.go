package game

import (
	"fmt"

	"war-game/internal/shared"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GameState represents the current state of the War state machine.
type GameState string

const (
	Dealing      GameState = "Dealing"      // hands dealt, first cards not yet turned
	RoundCompare GameState = "RoundCompare" // both active cards are face up
	War          GameState = "War"          // ranks tied, each side adds a card
	ResolvePile  GameState = "ResolvePile"  // winner collects both discard piles
	Terminal     GameState = "Terminal"     // game over
)

// PileName selects one of the piles of a game for listing.
type PileName string

const (
	PileDeck     PileName = "deck"
	PileHandA    PileName = "hand_a"
	PileHandB    PileName = "hand_b"
	PileDiscardA PileName = "discard_a"
	PileDiscardB PileName = "discard_b"
)

// Option configures a Game.
type Option func(*Game)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(g *Game) { g.logger = l }
}

// WithObserver registers a callback receiving every Event.
func WithObserver(fn func(Event)) Option {
	return func(g *Game) { g.observer = fn }
}

// WithMaxCycles ends the game after n comparisons. Zero means no limit.
func WithMaxCycles(n int) Option {
	return func(g *Game) { g.maxCycles = n }
}

// WithID overrides the generated game ID.
func WithID(id string) Option {
	return func(g *Game) { g.ID = id }
}

// Game is a two-player War game played with the cards of one Deck. It is not
// safe for concurrent use.
type Game struct {
	ID      string
	Seed    uint64 // set by Setup.Build; zero when the caller supplied the source
	Deck    *shared.Deck
	Players [2]*shared.Player
	State   GameState
	Cycles  int
	Wars    int

	depth     int
	maxDepth  int
	pending   shared.Side
	winner    shared.Side
	capped    bool
	stalemate bool
	maxCycles int

	rng      shared.Source
	logger   *zap.Logger
	observer func(Event)
}

// NewGame deals every card left in deck alternately to sides A and B,
// starting with A. src orders each pot as it returns to the winner's hand.
func NewGame(deck *shared.Deck, src shared.Source, opts ...Option) *Game {
	g := &Game{
		ID:   uuid.NewString(),
		Deck: deck,
		Players: [2]*shared.Player{
			shared.NewPlayer(shared.SideA, deck),
			shared.NewPlayer(shared.SideB, deck),
		},
		State:  Dealing,
		rng:    src,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}

	for i := 0; ; i++ {
		id, ok := deck.Deal()
		if !ok {
			break
		}
		g.Players[i%2].AddCard(id)
	}

	g.logger.Info("game dealt",
		zap.String("game_id", g.ID),
		zap.Int("deck_size", deck.Size()),
		zap.Int("hand_a", g.Players[0].Hand.Len()),
		zap.Int("hand_b", g.Players[1].Hand.Len()))
	return g
}

// Player returns the player for side, or nil for NoSide.
func (g *Game) Player(side shared.Side) *shared.Player {
	switch side {
	case shared.SideA:
		return g.Players[0]
	case shared.SideB:
		return g.Players[1]
	}
	return nil
}

// Done reports whether the game reached Terminal.
func (g *Game) Done() bool { return g.State == Terminal }

// Run steps the game until it is over and returns the result.
func (g *Game) Run() Result {
	for g.Step() {
	}
	return g.Result()
}

// Step performs one transition of the state machine. It returns false once
// the game is over.
func (g *Game) Step() bool {
	switch g.State {
	case Dealing:
		g.turnCards()
	case RoundCompare:
		g.compare()
	case War:
		g.escalate()
	case ResolvePile:
		g.resolve()
	case Terminal:
		return false
	}
	return true
}

// turnCards moves the top of each hand onto its discard pile, or ends the
// game when a side has nothing left.
func (g *Game) turnCards() {
	a, b := g.Players[0], g.Players[1]
	if g.checkOut() {
		return
	}
	a.Commit()
	b.Commit()
	g.State = RoundCompare
}

func (g *Game) compare() {
	if g.maxCycles > 0 && g.Cycles >= g.maxCycles {
		g.capped = true
		g.logger.Warn("cycle limit reached",
			zap.String("game_id", g.ID),
			zap.Int("max_cycles", g.maxCycles))
		g.finish(g.leader())
		return
	}
	g.Cycles++

	ca, _ := g.Players[0].Active()
	cb, _ := g.Players[1].Active()
	battle := shared.NewBattle(ca, cb)

	ev := g.snapshot(EventRoundWon)
	ev.Winner = battle.Winner
	ev.CardA, ev.CardB = ca.View(), cb.View()

	if battle.IsWar() {
		g.Wars++
		g.depth++
		if g.depth > g.maxDepth {
			g.maxDepth = g.depth
		}
		ev.Kind = EventWar
		ev.Depth = g.depth
		g.State = War
	} else {
		ev.Depth = g.depth
		g.pending = battle.Winner
		g.State = ResolvePile
	}

	g.logger.Debug("compare",
		zap.String("game_id", g.ID),
		zap.Int("cycle", g.Cycles),
		zap.String("card_a", ca.String()),
		zap.String("card_b", cb.String()),
		zap.String("kind", string(ev.Kind)),
		zap.Int("depth", ev.Depth))
	g.emit(ev)
}

// escalate adds one more card from each hand that still has one. The new
// top of each discard pile becomes the active card.
func (g *Game) escalate() {
	a, b := g.Players[0], g.Players[1]
	addedA := a.Commit()
	addedB := b.Commit()
	if addedA || addedB {
		g.State = RoundCompare
		return
	}

	// Neither side can escalate: the bigger stake takes the table.
	na, nb := a.Discard.Len(), b.Discard.Len()
	g.logger.Info("war cannot continue",
		zap.String("game_id", g.ID),
		zap.Int("discard_a", na),
		zap.Int("discard_b", nb))
	switch {
	case na > nb:
		g.pending = shared.SideA
		g.State = ResolvePile
	case nb > na:
		g.pending = shared.SideB
		g.State = ResolvePile
	default:
		g.stalemate = true
		g.finish(shared.NoSide)
	}
}

// resolve returns both discard piles to the bottom of the winner's hand in a
// random order. A fixed order lets the hands settle into repeating cycles.
func (g *Game) resolve() {
	winner := g.Player(g.pending)
	first, second := g.Players[0].Discard, g.Players[1].Discard
	if g.rng.IntN(2) == 1 {
		first, second = second, first
	}
	winner.Collect(first, second)
	g.pending = shared.NoSide
	g.depth = 0

	if g.checkOut() {
		return
	}
	g.Players[0].Commit()
	g.Players[1].Commit()
	g.State = RoundCompare
}

// checkOut ends the game if a side holds no card at all.
func (g *Game) checkOut() bool {
	outA, outB := g.Players[0].Out(), g.Players[1].Out()
	switch {
	case outA && outB:
		g.finish(shared.NoSide)
	case outA:
		g.finish(shared.SideB)
	case outB:
		g.finish(shared.SideA)
	default:
		return false
	}
	return true
}

// leader is the side holding more cards, NoSide on a tie.
func (g *Game) leader() shared.Side {
	na, nb := g.Players[0].CardsHeld(), g.Players[1].CardsHeld()
	switch {
	case na > nb:
		return shared.SideA
	case nb > na:
		return shared.SideB
	}
	return shared.NoSide
}

func (g *Game) finish(winner shared.Side) {
	g.winner = winner
	g.State = Terminal

	ev := g.snapshot(EventGameOver)
	ev.Winner = winner
	g.logger.Info("game over",
		zap.String("game_id", g.ID),
		zap.Stringer("winner", winner),
		zap.Int("draws", g.Cycles),
		zap.Int("wars", g.Wars),
		zap.Bool("capped", g.capped),
		zap.Bool("stalemate", g.stalemate))
	g.emit(ev)
}

func (g *Game) snapshot(kind EventKind) Event {
	a, b := g.Players[0], g.Players[1]
	return Event{
		GameID:   g.ID,
		Kind:     kind,
		Cycle:    g.Cycles,
		CountA:   a.Hand.Len(),
		CountB:   b.Hand.Len(),
		DiscardA: a.Discard.Len(),
		DiscardB: b.Discard.Len(),
	}
}

func (g *Game) emit(ev Event) {
	if g.observer != nil {
		g.observer(ev)
	}
}

// Winner is the surviving side once the game is over.
func (g *Game) Winner() shared.Side { return g.winner }

// Depth is the number of stacked wars in the current round.
func (g *Game) Depth() int { return g.depth }

// Result summarises the game. It is meaningful once Done returns true.
func (g *Game) Result() Result {
	return Result{
		GameID:      g.ID,
		Seed:        g.Seed,
		Winner:      g.winner,
		Draws:       g.Cycles,
		Wars:        g.Wars,
		MaxWarDepth: g.maxDepth,
		Capped:      g.capped,
		Stalemate:   g.stalemate,
		CardsA:      g.Players[0].CardsHeld(),
		CardsB:      g.Players[1].CardsHeld(),
	}
}

// Pile returns the named pile. The deck pile is a fresh view each call.
func (g *Game) Pile(name PileName) (*shared.Pile, error) {
	switch name {
	case PileDeck:
		return shared.PileFrom(g.Deck, g.Deck.Top()), nil
	case PileHandA:
		return g.Players[0].Hand, nil
	case PileHandB:
		return g.Players[1].Hand, nil
	case PileDiscardA:
		return g.Players[0].Discard, nil
	case PileDiscardB:
		return g.Players[1].Discard, nil
	}
	return nil, fmt.Errorf("unknown pile %q", name)
}

// Validate checks that every card of the deck sits in exactly one pile and
// that every pile is consistently linked.
func (g *Game) Validate() error {
	owner := make(map[shared.CardID]PileName, g.Deck.Size())
	for _, name := range []PileName{PileDeck, PileHandA, PileHandB, PileDiscardA, PileDiscardB} {
		p, _ := g.Pile(name)
		if err := p.Check(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		for _, id := range p.IDs() {
			if prev, dup := owner[id]; dup {
				return fmt.Errorf("card %d is in both %s and %s", id, prev, name)
			}
			if (name == PileDeck) != g.Deck.InDeck(id) {
				return fmt.Errorf("card %d in %s has deck flag %v", id, name, g.Deck.InDeck(id))
			}
			owner[id] = name
		}
	}
	if len(owner) != g.Deck.Size() {
		return fmt.Errorf("piles hold %d cards, deck owns %d", len(owner), g.Deck.Size())
	}
	return nil
}
