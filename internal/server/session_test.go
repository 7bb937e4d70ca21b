package server

import (
	"testing"
	"time"

	"war-game/internal/game"
)

func newTestSession(t *testing.T, manual bool) *session {
	t.Helper()
	s := game.DefaultSetup()
	s.Seed = 5
	sess, err := newSession(s, manual)
	if err != nil {
		t.Fatal(err)
	}
	return sess
}

func TestSession_SendStopsAfterClose(t *testing.T) {
	s := newTestSession(t, false)
	c := &Client{send: make(chan []byte, 1), done: make(chan struct{})}

	if !s.send(c, []byte("first")) {
		t.Fatal("send on an open session failed")
	}
	s.close()
	if s.send(c, []byte("second")) {
		t.Fatal("send after close should fail")
	}
	if got := <-c.send; string(got) != "first" {
		t.Fatalf("queued %q", got)
	}
	select {
	case msg := <-c.send:
		t.Fatalf("closed session queued %q", msg)
	default:
	}
}

func TestSession_CloseUnblocksSend(t *testing.T) {
	s := newTestSession(t, false)
	c := &Client{send: make(chan []byte), done: make(chan struct{})}

	result := make(chan bool)
	go func() { result <- s.send(c, []byte("round")) }()

	time.Sleep(10 * time.Millisecond)
	s.close()
	select {
	case ok := <-result:
		if ok {
			t.Fatal("blocked send should give up when the session closes")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("send still blocked after close")
	}
}

func TestSession_AdvanceReportsDoneOnce(t *testing.T) {
	s := newTestSession(t, true)
	draws, ends := 0, 0
	for i := 0; i < 1_000_000; i++ {
		rounds, done := s.advance()
		draws += len(rounds)
		if done {
			ends++
		}
		if len(rounds) == 0 && !done {
			break
		}
	}
	if ends != 1 {
		t.Fatalf("game ended %d times", ends)
	}
	if res := s.result(); res.Draws != draws {
		t.Fatalf("result draws %d, advanced %d rounds", res.Draws, draws)
	}
}
