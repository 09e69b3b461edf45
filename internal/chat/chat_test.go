package chat

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/bububa/genchat"
)

type chunks struct {
	list []string
	err  error
}

func (c *chunks) Next() (string, error) {
	if len(c.list) == 0 {
		if c.err != nil {
			return "", c.err
		}
		return "", io.EOF
	}
	s := c.list[0]
	c.list = c.list[1:]
	return s, nil
}

func (c *chunks) Close() error { return nil }

type fakeSender struct {
	reply   string
	err     error
	stream  []string
	seen    [][]genchat.EngineTurn
	midFail error
}

func (f *fakeSender) Send(_ context.Context, history []genchat.EngineTurn, _ genchat.EngineTurn) (string, error) {
	f.seen = append(f.seen, history)
	return f.reply, f.err
}

func (f *fakeSender) SendStream(_ context.Context, history []genchat.EngineTurn, _ genchat.EngineTurn) (genchat.Stream, error) {
	f.seen = append(f.seen, history)
	if f.err != nil {
		return nil, f.err
	}
	return &chunks{list: f.stream, err: f.midFail}, nil
}

func userTurn(text string) genchat.EngineTurn {
	return genchat.EngineTurn{
		Role:  genchat.EngineRoleUser,
		Parts: []genchat.EnginePart{{Kind: genchat.KindText, Text: text}},
	}
}

func TestSendCommitsOnSuccess(t *testing.T) {
	sender := &fakeSender{reply: "pong"}
	c := New(sender, []genchat.EngineTurn{userTurn("earlier"), ModelTurn("ok")})
	reply, err := c.Send(context.Background(), userTurn("ping"))
	if err != nil || reply != "pong" {
		t.Fatalf("Send = %q, %v", reply, err)
	}
	h := c.History()
	if len(h) != 4 || h[3].Parts[0].Text != "pong" || h[3].Role != genchat.EngineRoleModel {
		t.Errorf("history = %+v", h)
	}
	if len(sender.seen[0]) != 2 {
		t.Errorf("sender saw %d turns, want 2", len(sender.seen[0]))
	}
}

func TestSendErrorLeavesHistory(t *testing.T) {
	c := New(&fakeSender{err: errors.New("down")}, nil)
	if _, err := c.Send(context.Background(), userTurn("ping")); err == nil {
		t.Fatal("expected error")
	}
	if len(c.History()) != 0 {
		t.Error("failed send was committed")
	}
}

func TestSendStreamCommitsAtEOF(t *testing.T) {
	c := New(&fakeSender{stream: []string{"a", "b"}}, nil)
	s, err := c.SendStream(context.Background(), userTurn("go"))
	if err != nil {
		t.Fatal(err)
	}
	for {
		_, err := s.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		if len(c.History()) != 0 {
			t.Fatal("committed before the stream ended")
		}
	}
	h := c.History()
	if len(h) != 2 || h[1].Parts[0].Text != "ab" {
		t.Errorf("history = %+v", h)
	}
	// a second EOF must not commit twice
	if _, err := s.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("err = %v", err)
	}
	if len(c.History()) != 2 {
		t.Error("committed twice")
	}
}

func TestSendStreamFailureLeavesHistory(t *testing.T) {
	c := New(&fakeSender{stream: []string{"a"}, midFail: errors.New("reset")}, nil)
	s, err := c.SendStream(context.Background(), userTurn("go"))
	if err != nil {
		t.Fatal(err)
	}
	for {
		if _, err := s.Next(); err != nil {
			break
		}
	}
	if len(c.History()) != 0 {
		t.Error("failed stream was committed")
	}
}

func TestHistoryIsACopy(t *testing.T) {
	seed := []genchat.EngineTurn{userTurn("a")}
	c := New(&fakeSender{}, seed)
	seed[0] = userTurn("changed")
	h := c.History()
	h[0] = userTurn("mutated")
	if got := c.History()[0].Parts[0].Text; got != "a" {
		t.Errorf("history leaked: %q", got)
	}
}
