package game

import (
	"fmt"

	"war-game/internal/shared"
)

// EventKind names what a cycle produced.
type EventKind string

const (
	EventRoundWon EventKind = "round_won"
	EventWar      EventKind = "war"
	EventGameOver EventKind = "game_over"
)

// Event describes one comparison, taken before the pot moves, or the end of
// the game.
type Event struct {
	GameID   string          `json:"game_id"`
	Kind     EventKind       `json:"kind"`
	Cycle    int             `json:"cycle"`
	Winner   shared.Side     `json:"winner"`
	Depth    int             `json:"depth"`
	CountA   int             `json:"count_a"`
	CountB   int             `json:"count_b"`
	DiscardA int             `json:"discard_a"`
	DiscardB int             `json:"discard_b"`
	CardA    shared.CardView `json:"card_a"`
	CardB    shared.CardView `json:"card_b"`
}

// Total is every card in play at the time of the event.
func (e Event) Total() int {
	return e.CountA + e.CountB + e.DiscardA + e.DiscardB
}

func (e Event) String() string {
	var banner string
	switch {
	case e.Kind == EventWar:
		banner = "--------WAR--------"
	case e.Kind == EventGameOver:
		banner = "-----GAME OVER-----"
	default:
		banner = fmt.Sprintf("------%s WINS-------", e.Winner)
	}
	return fmt.Sprintf("%4d %4d %2d %2d = %4d %s Cycle %6d",
		e.CountA, e.CountB, e.DiscardA, e.DiscardB, e.Total(), banner, e.Cycle)
}

// Result is the outcome of a finished game.
type Result struct {
	GameID      string      `json:"game_id"`
	Seed        uint64      `json:"seed,omitempty"`
	Winner      shared.Side `json:"winner"`
	Draws       int         `json:"draws"`
	Wars        int         `json:"wars"`
	MaxWarDepth int         `json:"max_war_depth"`
	Capped      bool        `json:"capped"`
	Stalemate   bool        `json:"stalemate"` // war blocked with equal stakes, no winner
	CardsA      int         `json:"cards_a"`
	CardsB      int         `json:"cards_b"`
}

func (r Result) String() string {
	if r.Winner == shared.NoSide {
		return fmt.Sprintf("No winner after %d draws!", r.Draws)
	}
	return fmt.Sprintf("%s Wins in %d draws!", r.Winner, r.Draws)
}
