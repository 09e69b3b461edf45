// Package chat keeps conversation history on the client for engines whose
// APIs are stateless.
package chat

import (
	"context"
	"errors"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/bububa/genchat"
)

// Sender performs a single stateless exchange against the provider.
type Sender interface {
	Send(ctx context.Context, history []genchat.EngineTurn, turn genchat.EngineTurn) (string, error)
	SendStream(ctx context.Context, history []genchat.EngineTurn, turn genchat.EngineTurn) (genchat.Stream, error)
}

// Chat is a genchat.ChatHandle that replays its history on every send. The
// user turn and the reply are committed together, and only on success.
type Chat struct {
	sender  Sender
	mu      sync.Mutex
	history []genchat.EngineTurn
}

var _ genchat.ChatHandle = (*Chat)(nil)

func New(sender Sender, history []genchat.EngineTurn) *Chat {
	return &Chat{
		sender:  sender,
		history: slices.Clone(history),
	}
}

func (c *Chat) Send(ctx context.Context, turn genchat.EngineTurn) (string, error) {
	reply, err := c.sender.Send(ctx, c.History(), turn)
	if err != nil {
		return "", err
	}
	c.commit(turn, reply)
	return reply, nil
}

func (c *Chat) SendStream(ctx context.Context, turn genchat.EngineTurn) (genchat.Stream, error) {
	stream, err := c.sender.SendStream(ctx, c.History(), turn)
	if err != nil {
		return nil, err
	}
	return &recorder{Stream: stream, chat: c, turn: turn}, nil
}

// History returns a copy of the committed turns.
func (c *Chat) History() []genchat.EngineTurn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.history)
}

func (c *Chat) commit(turn genchat.EngineTurn, reply string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = append(c.history, turn, ModelTurn(reply))
}

// ModelTurn wraps a text reply as a model turn.
func ModelTurn(text string) genchat.EngineTurn {
	return genchat.EngineTurn{
		Role:  genchat.EngineRoleModel,
		Parts: []genchat.EnginePart{{Kind: genchat.KindText, Text: text}},
	}
}

// recorder commits the exchange once the wrapped stream reaches io.EOF.
type recorder struct {
	genchat.Stream
	chat *Chat
	turn genchat.EngineTurn
	buf  strings.Builder
	done bool
}

func (r *recorder) Next() (string, error) {
	chunk, err := r.Stream.Next()
	if err != nil {
		if errors.Is(err, io.EOF) && !r.done {
			r.done = true
			r.chat.commit(r.turn, r.buf.String())
		}
		return chunk, err
	}
	r.buf.WriteString(chunk)
	return chunk, nil
}
