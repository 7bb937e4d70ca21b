package protocol

import (
	"encoding/json"

	"war-game/internal/game"
	"war-game/internal/shared"
)

// Message types exchanged over the websocket and published on the broker.
const (
	TypeStartGame   = "start_game"
	TypeDraw        = "draw"
	TypeShowPile    = "show_pile"
	TypePing        = "ping"
	TypeGameStarted = "game_started"
	TypeRound       = "round"
	TypePile        = "pile"
	TypeGameOver    = "game_over"
	TypeError       = "error"
	TypePong        = "pong"
)

// Message represents a generic WebSocket message structure.
type Message struct {
	Type    string          `json:"type"`              // e.g. "start_game", "round"
	Payload json.RawMessage `json:"payload,omitempty"` // decoded according to Type
}

// --- Client -> Server Payload Structs ---

// StartGamePayload overrides the server's default setup. Zero values keep
// the default.
type StartGamePayload struct {
	Decks     int    `json:"decks,omitempty"`
	Jokers    string `json:"jokers,omitempty"`     // "keep" or "discard"
	JokerRank string `json:"joker_rank,omitempty"` // "high" or "low"
	Seed      uint64 `json:"seed,omitempty"`
	Passes    int    `json:"shuffle_passes,omitempty"`
	Manual    bool   `json:"manual,omitempty"` // advance only on "draw"
}

// Apply returns s with the non-zero fields of p.
func (p StartGamePayload) Apply(s game.Setup) (game.Setup, error) {
	if p.Decks != 0 {
		s.Decks = p.Decks
	}
	if p.Jokers != "" {
		j, err := shared.ParseJokerPolicy(p.Jokers)
		if err != nil {
			return s, err
		}
		s.Jokers = j
	}
	if p.JokerRank != "" {
		r, err := shared.ParseJokerRank(p.JokerRank)
		if err != nil {
			return s, err
		}
		s.JokerRank = r
	}
	if p.Seed != 0 {
		s.Seed = p.Seed
	}
	if p.Passes != 0 {
		s.ShufflePasses = p.Passes
	}
	return s, s.Validate()
}

type ShowPilePayload struct {
	Pile game.PileName `json:"pile"`
}

// --- Server -> Client Payload Structs ---

type GameStartedPayload struct {
	GameID string `json:"game_id"`
	Seed   uint64 `json:"seed"`
	Decks  int    `json:"decks"`
	Jokers string `json:"jokers"`
	Cards  int    `json:"cards"`
	HandA  int    `json:"hand_a"`
	HandB  int    `json:"hand_b"`
	Manual bool   `json:"manual"`
}

type PilePayload struct {
	Pile  game.PileName     `json:"pile"`
	Count int               `json:"count"`
	Cards []shared.CardView `json:"cards"`
	Lines []string          `json:"lines"`
}

type GameOverPayload struct {
	Result   game.Result `json:"result"`
	ResultID string      `json:"result_id,omitempty"` // stored record, empty if storing failed
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// NewMessage marshals payload into a Message of msgType.
func NewMessage(msgType string, payload any) ([]byte, error) {
	if payload == nil {
		return json.Marshal(Message{Type: msgType})
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Message{
		Type:    msgType,
		Payload: payloadBytes,
	})
}

// Decode unmarshals the payload of m into v.
func (m Message) Decode(v any) error {
	if len(m.Payload) == 0 {
		return nil
	}
	return json.Unmarshal(m.Payload, v)
}
