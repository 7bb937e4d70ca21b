package server

import (
	"sync"

	"war-game/internal/game"
	"war-game/internal/protocol"
)

// session is the game a websocket client is playing. The hub loop and the
// auto-play goroutine share it, so every access to game holds mu.
type session struct {
	mu       sync.Mutex
	game     *game.Game
	setup    game.Setup
	manual   bool
	pending  []game.Event
	finished bool
	stop     chan struct{}
	stopOnce sync.Once
	sendMu   sync.Mutex // held while a message of this game is queued
}

func newSession(setup game.Setup, manual bool, opts ...game.Option) (*session, error) {
	s := &session{setup: setup, manual: manual, stop: make(chan struct{})}
	opts = append(opts, game.WithObserver(func(ev game.Event) {
		s.pending = append(s.pending, ev)
	}))
	g, err := setup.Build(opts...)
	if err != nil {
		return nil, err
	}
	s.game = g
	return s, nil
}

// close stops the game. Once it returns, send queues nothing more for it.
func (s *session) close() {
	s.stopOnce.Do(func() { close(s.stop) })
	s.sendMu.Lock()
	s.sendMu.Unlock()
}

// send queues message for c unless the session is closed. It waits while
// the client's buffer is full.
func (s *session) send(c *Client, message []byte) bool {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if s.stopped() {
		return false
	}
	select {
	case c.send <- message:
		return true
	case <-c.done:
		return false
	case <-s.stop:
		return false
	}
}

func (s *session) stopped() bool {
	select {
	case <-s.stop:
		return true
	default:
		return false
	}
}

// advance steps the game until the next comparison or the end. It returns
// the round events produced and whether the game just ended; done is true
// exactly once per session.
func (s *session) advance() (rounds []game.Event, done bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished {
		return nil, false
	}

	s.pending = s.pending[:0]
	for len(s.pending) == 0 && s.game.Step() {
	}
	for _, ev := range s.pending {
		if ev.Kind != game.EventGameOver {
			rounds = append(rounds, ev)
		}
	}
	if s.game.Done() {
		s.finished = true
		return rounds, true
	}
	return rounds, false
}

func (s *session) result() game.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.Result()
}

func (s *session) started() protocol.GameStartedPayload {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.game
	return protocol.GameStartedPayload{
		GameID: g.ID,
		Seed:   g.Seed,
		Decks:  g.Deck.Packs(),
		Jokers: g.Deck.Jokers().String(),
		Cards:  g.Deck.Size(),
		HandA:  g.Players[0].Hand.Len(),
		HandB:  g.Players[1].Hand.Len(),
		Manual: s.manual,
	}
}

func (s *session) pile(name game.PileName) (protocol.PilePayload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.game.Pile(name)
	if err != nil {
		return protocol.PilePayload{}, err
	}
	return protocol.PilePayload{
		Pile:  name,
		Count: p.Len(),
		Cards: p.Views(),
		Lines: p.ShowCards(),
	}, nil
}
