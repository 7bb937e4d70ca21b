package server

import (
	"context"
	"sync"

	"war-game/internal/game"
	"war-game/internal/protocol"

	"go.uber.org/zap"
)

// clientMessage is a helper struct to pass messages along with the client reference.
type clientMessage struct {
	client  *Client
	message protocol.Message
}

// Hub manages active WebSocket connections and the game each one plays.
type Hub struct {
	clients        map[*Client]bool
	sessions       map[*Client]*session
	processMessage chan clientMessage
	register       chan *Client
	unregister     chan *Client
	quit           chan struct{}
	clientMu       sync.RWMutex
	gameMu         sync.RWMutex

	setup    game.Setup
	recorder *Recorder
	logger   *zap.Logger
}

// NewHub creates a hub whose games start from setup and end up in recorder.
func NewHub(setup game.Setup, recorder *Recorder, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	if recorder == nil {
		recorder = NewRecorder(nil, nil, logger)
	}
	return &Hub{
		clients:        make(map[*Client]bool),
		sessions:       make(map[*Client]*session),
		processMessage: make(chan clientMessage),
		register:       make(chan *Client),
		unregister:     make(chan *Client),
		quit:           make(chan struct{}),
		setup:          setup,
		recorder:       recorder,
		logger:         logger,
	}
}

// Run processes registrations and messages until ctx is done, then drops
// every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.quit)
			h.clientMu.Lock()
			clients := make([]*Client, 0, len(h.clients))
			for c := range h.clients {
				clients = append(clients, c)
			}
			h.clientMu.Unlock()
			for _, c := range clients {
				h.removeClient(c)
			}
			h.logger.Info("hub stopped", zap.Int("clients", len(clients)))
			return

		case client := <-h.register:
			h.clientMu.Lock()
			h.clients[client] = true
			h.clientMu.Unlock()
			h.logger.Info("client connected",
				zap.String("client_id", client.ID),
				zap.String("remote", client.conn.RemoteAddr().String()))

		case client := <-h.unregister:
			h.removeClient(client)

		case clientMsg := <-h.processMessage:
			h.handleMessage(clientMsg.client, clientMsg.message)
		}
	}
}

// drop asks the hub to unregister c. It never blocks once the hub stopped.
func (h *Hub) drop(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.quit:
	case <-c.done:
	}
}

func (h *Hub) removeClient(client *Client) {
	h.clientMu.Lock()
	_, exists := h.clients[client]
	delete(h.clients, client)
	h.clientMu.Unlock()
	if !exists {
		return
	}
	client.close()

	h.gameMu.Lock()
	if s, ok := h.sessions[client]; ok {
		s.close()
		delete(h.sessions, client)
	}
	h.gameMu.Unlock()
	h.logger.Info("client disconnected", zap.String("client_id", client.ID))
}

// ClientCount is the number of connected clients.
func (h *Hub) ClientCount() int {
	h.clientMu.RLock()
	defer h.clientMu.RUnlock()
	return len(h.clients)
}

// SessionCount is the number of games currently attached to a client.
func (h *Hub) SessionCount() int {
	h.gameMu.RLock()
	defer h.gameMu.RUnlock()
	return len(h.sessions)
}

// handleMessage processes a message received from a client.
func (h *Hub) handleMessage(client *Client, msg protocol.Message) {
	switch msg.Type {
	case protocol.TypeStartGame:
		h.handleStartGame(client, msg)
	case protocol.TypeDraw:
		h.handleDraw(client)
	case protocol.TypeShowPile:
		h.handleShowPile(client, msg)
	case protocol.TypePing:
		pongMsg, _ := protocol.NewMessage(protocol.TypePong, nil)
		h.sendMessageToClient(client.ID, pongMsg)
	default:
		h.logger.Warn("unknown message type", zap.String("client_id", client.ID), zap.String("type", msg.Type))
		h.sendErrorToClient(client, "Unknown message type.")
	}
}

// handleStartGame replaces any game the client is playing with a new one.
func (h *Hub) handleStartGame(client *Client, msg protocol.Message) {
	var payload protocol.StartGamePayload
	if err := msg.Decode(&payload); err != nil {
		h.sendErrorToClient(client, "Invalid start_game message format.")
		return
	}
	setup, err := payload.Apply(h.setup)
	if err != nil {
		h.sendErrorToClient(client, err.Error())
		return
	}
	s, err := newSession(setup, payload.Manual, game.WithLogger(h.logger))
	if err != nil {
		h.sendErrorToClient(client, err.Error())
		return
	}

	h.gameMu.Lock()
	if old, ok := h.sessions[client]; ok {
		old.close()
	}
	h.sessions[client] = s
	h.gameMu.Unlock()

	started := s.started()
	h.logger.Info("game started",
		zap.String("client_id", client.ID),
		zap.String("game_id", started.GameID),
		zap.Uint64("seed", started.Seed),
		zap.Bool("manual", payload.Manual))
	startedMsg, _ := protocol.NewMessage(protocol.TypeGameStarted, started)
	if payload.Manual {
		h.sendMessageToClient(client.ID, startedMsg)
		return
	}
	go h.play(client, s, startedMsg)
}

// play streams a whole game to the client, game_started first. It blocks on
// the client's send buffer rather than dropping rounds, and sends nothing
// more once the session is replaced.
func (h *Hub) play(client *Client, s *session, startedMsg []byte) {
	if !s.send(client, startedMsg) {
		return
	}
	for {
		rounds, done := s.advance()
		for _, ev := range rounds {
			roundMsg, _ := protocol.NewMessage(protocol.TypeRound, ev)
			if !s.send(client, roundMsg) {
				return
			}
		}
		if done {
			if !s.stopped() {
				s.send(client, h.gameOver(client, s))
			}
			return
		}
	}
}

func (h *Hub) handleDraw(client *Client) {
	s := h.session(client)
	if s == nil {
		h.sendErrorToClient(client, "No game in progress.")
		return
	}
	if !s.manual {
		h.sendErrorToClient(client, "Game is playing automatically.")
		return
	}
	rounds, done := s.advance()
	if len(rounds) == 0 && !done {
		h.sendErrorToClient(client, "Game is over.")
		return
	}
	for _, ev := range rounds {
		roundMsg, _ := protocol.NewMessage(protocol.TypeRound, ev)
		h.sendMessageToClient(client.ID, roundMsg)
	}
	if done {
		h.sendMessageToClient(client.ID, h.gameOver(client, s))
	}
}

func (h *Hub) handleShowPile(client *Client, msg protocol.Message) {
	s := h.session(client)
	if s == nil {
		h.sendErrorToClient(client, "No game in progress.")
		return
	}
	var payload protocol.ShowPilePayload
	if err := msg.Decode(&payload); err != nil {
		h.sendErrorToClient(client, "Invalid show_pile message format.")
		return
	}
	pile, err := s.pile(payload.Pile)
	if err != nil {
		h.sendErrorToClient(client, err.Error())
		return
	}
	pileMsg, _ := protocol.NewMessage(protocol.TypePile, pile)
	h.sendMessageToClient(client.ID, pileMsg)
}

func (h *Hub) session(client *Client) *session {
	h.gameMu.RLock()
	defer h.gameMu.RUnlock()
	return h.sessions[client]
}

// gameOver records the finished game and builds the game_over message.
func (h *Hub) gameOver(client *Client, s *session) []byte {
	res := s.result()
	payload := protocol.GameOverPayload{Result: res}
	if row, err := h.recorder.Record(res, s.setup); err == nil {
		payload.ResultID = row.ID
	}
	h.logger.Info("game over",
		zap.String("client_id", client.ID),
		zap.String("game_id", res.GameID),
		zap.Stringer("winner", res.Winner),
		zap.Int("draws", res.Draws))
	msg, _ := protocol.NewMessage(protocol.TypeGameOver, payload)
	return msg
}

// sendMessageToClient queues message without blocking the hub. When the
// buffer is full, typically behind a streaming game, the message is handed
// to a goroutine and may arrive out of order.
func (h *Hub) sendMessageToClient(clientID string, message []byte) {
	h.clientMu.RLock()
	var targetClient *Client
	for client := range h.clients {
		if client.ID == clientID {
			targetClient = client
			break
		}
	}
	h.clientMu.RUnlock()

	if targetClient == nil {
		h.logger.Debug("client gone before send", zap.String("client_id", clientID))
		return
	}
	select {
	case targetClient.send <- message:
	case <-targetClient.done:
	default:
		h.logger.Debug("send buffer full, delivering later", zap.String("client_id", clientID))
		go targetClient.deliver(message)
	}
}

// sendErrorToClient sends an error message to a specific client.
func (h *Hub) sendErrorToClient(client *Client, errorMsg string) {
	msgBytes, err := protocol.NewMessage(protocol.TypeError, protocol.ErrorPayload{Message: errorMsg})
	if err != nil {
		h.logger.Error("building error message", zap.Error(err))
		return
	}
	h.sendMessageToClient(client.ID, msgBytes)
}
