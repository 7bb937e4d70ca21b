package server

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"war-game/internal/game"
	"war-game/internal/protocol"

	"github.com/gorilla/websocket"
)

func dialHub(t *testing.T, e *testEnv) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	go e.hub.Run(ctx)

	srv := httptest.NewServer(e.router)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		cancel()
		srv.Close()
		t.Fatal(err)
	}
	t.Cleanup(func() {
		conn.Close()
		cancel()
		srv.Close()
	})
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msgType string, payload any) {
	t.Helper()
	b, err := protocol.NewMessage(msgType, payload)
	if err != nil {
		t.Fatal(err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		t.Fatal(err)
	}
}

func receive(t *testing.T, conn *websocket.Conn) protocol.Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	var msg protocol.Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatal(err)
	}
	return msg
}

func expect(t *testing.T, conn *websocket.Conn, msgType string, v any) {
	t.Helper()
	msg := receive(t, conn)
	if msg.Type != msgType {
		t.Fatalf("got %s %s, want %s", msg.Type, msg.Payload, msgType)
	}
	if v != nil {
		if err := msg.Decode(v); err != nil {
			t.Fatal(err)
		}
	}
}

func TestHub_AutoGameStreamsEveryRound(t *testing.T) {
	e := newTestEnv(t)
	conn := dialHub(t, e)

	send(t, conn, protocol.TypeStartGame, protocol.StartGamePayload{Seed: 11})
	var started protocol.GameStartedPayload
	expect(t, conn, protocol.TypeGameStarted, &started)
	if started.Seed != 11 || started.HandA != 26 || started.HandB != 26 || started.Manual {
		t.Fatalf("game_started = %+v", started)
	}

	rounds := 0
	for {
		msg := receive(t, conn)
		if msg.Type == protocol.TypeRound {
			var ev game.Event
			if err := msg.Decode(&ev); err != nil {
				t.Fatal(err)
			}
			rounds++
			if ev.Cycle != rounds || ev.GameID != started.GameID {
				t.Fatalf("round %d: %+v", rounds, ev)
			}
			continue
		}
		if msg.Type != protocol.TypeGameOver {
			t.Fatalf("unexpected %s %s", msg.Type, msg.Payload)
		}
		var over protocol.GameOverPayload
		if err := msg.Decode(&over); err != nil {
			t.Fatal(err)
		}
		if over.Result.Draws != rounds {
			t.Fatalf("result draws %d, streamed %d rounds", over.Result.Draws, rounds)
		}
		if over.ResultID != started.GameID {
			t.Fatalf("result id %q, game id %q", over.ResultID, started.GameID)
		}
		break
	}

	if _, err := e.db.GetByID(started.GameID); err != nil {
		t.Fatalf("game not stored: %v", err)
	}
	if e.pub.count() != 1 {
		t.Fatalf("published %d results", e.pub.count())
	}
}

func TestHub_RestartDropsOldGame(t *testing.T) {
	e := newTestEnv(t)
	conn := dialHub(t, e)

	send(t, conn, protocol.TypeStartGame, protocol.StartGamePayload{Seed: 21, Decks: 4})
	var first protocol.GameStartedPayload
	expect(t, conn, protocol.TypeGameStarted, &first)
	send(t, conn, protocol.TypeStartGame, protocol.StartGamePayload{Seed: 22})

	var second protocol.GameStartedPayload
	for second.GameID == "" {
		msg := receive(t, conn)
		if msg.Type == protocol.TypeGameStarted {
			if err := msg.Decode(&second); err != nil {
				t.Fatal(err)
			}
		}
	}
	if second.GameID == first.GameID {
		t.Fatal("second game reuses the first game's id")
	}

	for {
		msg := receive(t, conn)
		switch msg.Type {
		case protocol.TypeRound:
			var ev game.Event
			if err := msg.Decode(&ev); err != nil {
				t.Fatal(err)
			}
			if ev.GameID != second.GameID {
				t.Fatalf("round of game %s after game %s started", ev.GameID, second.GameID)
			}
		case protocol.TypeGameOver:
			var over protocol.GameOverPayload
			if err := msg.Decode(&over); err != nil {
				t.Fatal(err)
			}
			if over.Result.GameID != second.GameID {
				t.Fatalf("game_over of game %s after game %s started", over.Result.GameID, second.GameID)
			}
			return
		default:
			t.Fatalf("unexpected %s %s", msg.Type, msg.Payload)
		}
	}
}

func TestHub_ManualGame(t *testing.T) {
	e := newTestEnv(t)
	conn := dialHub(t, e)

	send(t, conn, protocol.TypeDraw, nil)
	expect(t, conn, protocol.TypeError, nil)

	send(t, conn, protocol.TypeStartGame, protocol.StartGamePayload{Seed: 4, Manual: true})
	var started protocol.GameStartedPayload
	expect(t, conn, protocol.TypeGameStarted, &started)
	if !started.Manual {
		t.Fatal("game should be manual")
	}

	send(t, conn, protocol.TypeDraw, nil)
	var ev game.Event
	expect(t, conn, protocol.TypeRound, &ev)
	if ev.Cycle != 1 || ev.Total() != 52 {
		t.Fatalf("first round = %+v", ev)
	}

	send(t, conn, protocol.TypeShowPile, protocol.ShowPilePayload{Pile: game.PileDiscardA})
	var pile protocol.PilePayload
	expect(t, conn, protocol.TypePile, &pile)
	if pile.Count != ev.DiscardA || len(pile.Cards) != pile.Count || len(pile.Lines) != pile.Count {
		t.Fatalf("pile = %+v after %+v", pile, ev)
	}

	send(t, conn, protocol.TypeShowPile, protocol.ShowPilePayload{Pile: "table"})
	expect(t, conn, protocol.TypeError, nil)

	send(t, conn, protocol.TypePing, nil)
	expect(t, conn, protocol.TypePong, nil)

	send(t, conn, "shuffle_again", nil)
	expect(t, conn, protocol.TypeError, nil)

	if e.hub.SessionCount() != 1 || e.hub.ClientCount() != 1 {
		t.Fatalf("sessions %d clients %d", e.hub.SessionCount(), e.hub.ClientCount())
	}
}

func TestHub_InvalidStart(t *testing.T) {
	e := newTestEnv(t)
	conn := dialHub(t, e)

	send(t, conn, protocol.TypeStartGame, protocol.StartGamePayload{Decks: -3})
	var msg protocol.ErrorPayload
	expect(t, conn, protocol.TypeError, &msg)
	if msg.Message == "" {
		t.Fatal("empty error message")
	}
}
