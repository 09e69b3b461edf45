// Package mock provides a scripted engine for tests and offline use.
package mock

import (
	"context"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/bububa/genchat"
	"github.com/bububa/genchat/internal/chat"
)

// Reply scripts one engine call. Chunks are streamed in order, then Err is
// returned if set. OpenErr fails the call before any chunk. Block keeps a
// stream open after its chunks until the call's context ends.
type Reply struct {
	Chunks  []string
	Err     error
	OpenErr error
	Block   bool
}

// Text is a single chunk reply.
func Text(s string) Reply {
	return Reply{Chunks: []string{s}}
}

// Calls counts engine invocations.
type Calls struct {
	Configure      int
	Generate       int
	GenerateStream int
	CountTokens    int
	StartChat      int
	Send           int
	SendStream     int
	Close          int
}

// Total is the number of calls that reached the engine.
func (c Calls) Total() int {
	return c.Configure + c.Generate + c.GenerateStream + c.CountTokens + c.StartChat + c.Send + c.SendStream
}

// Engine replays scripted replies in order. Once the script is exhausted it
// echoes the text of the user turn.
type Engine struct {
	genchat.Options
	// ConfigureErr and StartChatErr fail the matching call.
	ConfigureErr error
	StartChatErr error
	// Tokens overrides the default whitespace token count.
	Tokens func(turns []genchat.EngineTurn) (int, error)

	mu      sync.Mutex
	replies []Reply
	calls   Calls
	counted [][]genchat.EngineTurn
}

var _ genchat.Engine = (*Engine)(nil)

func New(opts ...genchat.Option) *Engine {
	return &Engine{Options: genchat.NewOptions(opts...)}
}

// Script appends replies.
func (e *Engine) Script(replies ...Reply) *Engine {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.replies = append(e.replies, replies...)
	return e
}

func (e *Engine) Calls() Calls {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

// Counted returns the turns handed to every CountTokens call.
func (e *Engine) Counted() [][]genchat.EngineTurn {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.counted
}

func (e *Engine) Provider() genchat.Provider {
	return genchat.ProviderMock
}

func (e *Engine) Configure(_ context.Context, cfg genchat.ModelConfig) (genchat.Model, error) {
	e.record(func(c *Calls) { c.Configure++ })
	if e.ConfigureErr != nil {
		return nil, e.ConfigureErr
	}
	if e.Verbose() {
		e.Logger().Debug("mock model", zap.String("model", cfg.ModelName))
	}
	return &Model{engine: e, config: cfg}, nil
}

func (e *Engine) record(fn func(c *Calls)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(&e.calls)
}

func (e *Engine) next(turn genchat.EngineTurn) Reply {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.replies) == 0 {
		return Text(echo(turn))
	}
	r := e.replies[0]
	e.replies = e.replies[1:]
	return r
}

func echo(turn genchat.EngineTurn) string {
	var sb strings.Builder
	for _, p := range turn.Parts {
		if p.Kind == genchat.KindText {
			sb.WriteString(p.Text)
		}
	}
	return sb.String()
}

// Model is a configured mock model.
type Model struct {
	engine *Engine
	config genchat.ModelConfig
}

var _ genchat.Model = (*Model)(nil)

func (m *Model) Config() genchat.ModelConfig {
	return m.config
}

func (m *Model) Generate(ctx context.Context, turn genchat.EngineTurn) (string, error) {
	m.engine.record(func(c *Calls) { c.Generate++ })
	return m.reply(ctx, turn)
}

func (m *Model) GenerateStream(ctx context.Context, turn genchat.EngineTurn) (genchat.Stream, error) {
	m.engine.record(func(c *Calls) { c.GenerateStream++ })
	return m.stream(ctx, turn)
}

func (m *Model) CountTokens(_ context.Context, turns []genchat.EngineTurn) (int, error) {
	m.engine.mu.Lock()
	m.engine.calls.CountTokens++
	m.engine.counted = append(m.engine.counted, turns)
	tokens := m.engine.Tokens
	m.engine.mu.Unlock()
	if tokens != nil {
		return tokens(turns)
	}
	var n int
	for _, t := range turns {
		for _, p := range t.Parts {
			if p.Kind == genchat.KindText {
				n += len(strings.Fields(p.Text))
				continue
			}
			n++
		}
	}
	return n, nil
}

func (m *Model) StartChat(_ context.Context, history []genchat.EngineTurn) (genchat.ChatHandle, error) {
	m.engine.record(func(c *Calls) { c.StartChat++ })
	if err := m.engine.StartChatErr; err != nil {
		return nil, err
	}
	return chat.New(sender{m}, history), nil
}

func (m *Model) reply(ctx context.Context, turn genchat.EngineTurn) (string, error) {
	r := m.engine.next(turn)
	if r.OpenErr != nil {
		return "", r.OpenErr
	}
	if r.Err != nil {
		return "", r.Err
	}
	if r.Block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return strings.Join(r.Chunks, ""), nil
}

func (m *Model) stream(ctx context.Context, turn genchat.EngineTurn) (genchat.Stream, error) {
	r := m.engine.next(turn)
	if r.OpenErr != nil {
		return nil, r.OpenErr
	}
	return &Stream{ctx: ctx, reply: r, engine: m.engine}, nil
}

// sender routes chat sends through the script.
type sender struct {
	*Model
}

func (s sender) Send(ctx context.Context, _ []genchat.EngineTurn, turn genchat.EngineTurn) (string, error) {
	s.engine.record(func(c *Calls) { c.Send++ })
	return s.reply(ctx, turn)
}

func (s sender) SendStream(ctx context.Context, _ []genchat.EngineTurn, turn genchat.EngineTurn) (genchat.Stream, error) {
	s.engine.record(func(c *Calls) { c.SendStream++ })
	return s.stream(ctx, turn)
}

// Stream replays a scripted reply.
type Stream struct {
	ctx    context.Context
	reply  Reply
	engine *Engine
	closed bool
}

func (s *Stream) Next() (string, error) {
	if err := s.ctx.Err(); err != nil {
		return "", err
	}
	if len(s.reply.Chunks) > 0 {
		chunk := s.reply.Chunks[0]
		s.reply.Chunks = s.reply.Chunks[1:]
		return chunk, nil
	}
	if s.reply.Err != nil {
		return "", s.reply.Err
	}
	if s.reply.Block {
		<-s.ctx.Done()
		return "", s.ctx.Err()
	}
	return "", io.EOF
}

func (s *Stream) Close() error {
	if !s.closed {
		s.closed = true
		s.engine.record(func(c *Calls) { c.Close++ })
	}
	return nil
}
