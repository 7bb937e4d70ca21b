package database

import (
	"strconv"
	"time"

	"war-game/internal/game"
)

// GameResult is one row of war_results.
type GameResult struct {
	ID          string `json:"id"`
	CreatedAt   string `json:"created_at"`
	Winner      string `json:"winner"` // "A", "B" or "none"
	Draws       int    `json:"draws"`
	Wars        int    `json:"wars"`
	MaxWarDepth int    `json:"max_war_depth"`
	Decks       int    `json:"decks"`
	Jokers      string `json:"jokers"`
	Seed        string `json:"seed"` // decimal uint64, too wide for a signed column
	Capped      bool   `json:"capped"`
}

// NewGameResult builds the row for a finished game played with setup.
func NewGameResult(res game.Result, setup game.Setup) GameResult {
	return GameResult{
		ID:          res.GameID,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339Nano),
		Winner:      res.Winner.String(),
		Draws:       res.Draws,
		Wars:        res.Wars,
		MaxWarDepth: res.MaxWarDepth,
		Decks:       setup.Decks,
		Jokers:      setup.Jokers.String(),
		Seed:        strconv.FormatUint(res.Seed, 10),
		Capped:      res.Capped,
	}
}

// Stats aggregates every stored game.
type Stats struct {
	Games       int     `json:"games"`
	WinsA       int     `json:"wins_a"`
	WinsB       int     `json:"wins_b"`
	NoWinner    int     `json:"no_winner"`
	Capped      int     `json:"capped"`
	AvgDraws    float64 `json:"avg_draws"`
	MaxDraws    int     `json:"max_draws"`
	MaxWarDepth int     `json:"max_war_depth"`
}
