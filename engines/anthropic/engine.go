// Package anthropic runs sessions against the Anthropic messages API.
package anthropic

import (
	"context"

	anthropic "github.com/liushuangls/go-anthropic/v2"

	"github.com/bububa/genchat"
	"github.com/bububa/genchat/internal"
	"github.com/bububa/genchat/internal/chat"
)

// DefaultMaxTokens is sent when the configuration leaves maxOutputTokens
// unset; the messages API requires it.
const DefaultMaxTokens = 1024

type Engine struct {
	*anthropic.Client
	genchat.Options
}

var _ genchat.Engine = (*Engine)(nil)

func New(client *anthropic.Client, opts ...genchat.Option) *Engine {
	return &Engine{
		Client:  client,
		Options: genchat.NewOptions(opts...),
	}
}

func (e *Engine) Provider() genchat.Provider {
	return genchat.ProviderAnthropic
}

// Configure binds the request template. Safety settings and candidate
// count have no Anthropic equivalent and are dropped.
func (e *Engine) Configure(_ context.Context, cfg genchat.ModelConfig) (genchat.Model, error) {
	g := cfg.Generation
	req := anthropic.MessagesRequest{
		Model:         anthropic.Model(cfg.ModelName),
		MaxTokens:     DefaultMaxTokens,
		Temperature:   g.Temperature,
		TopP:          g.TopP,
		TopK:          internal.ConvertPtr[int32, int](g.TopK),
		StopSequences: g.StopSequences,
	}
	if g.MaxOutputTokens != nil {
		req.MaxTokens = int(*g.MaxOutputTokens)
	}
	return &Model{engine: e, request: req}, nil
}

type Model struct {
	engine  *Engine
	request anthropic.MessagesRequest
}

var _ genchat.Model = (*Model)(nil)

func (m *Model) Generate(ctx context.Context, turn genchat.EngineTurn) (string, error) {
	return m.Send(ctx, nil, turn)
}

func (m *Model) GenerateStream(ctx context.Context, turn genchat.EngineTurn) (genchat.Stream, error) {
	return m.SendStream(ctx, nil, turn)
}

func (m *Model) CountTokens(context.Context, []genchat.EngineTurn) (int, error) {
	return 0, genchat.ErrTokenCountUnsupported
}

func (m *Model) StartChat(_ context.Context, history []genchat.EngineTurn) (genchat.ChatHandle, error) {
	return chat.New(m, history), nil
}

func (m *Model) Send(ctx context.Context, history []genchat.EngineTurn, turn genchat.EngineTurn) (string, error) {
	req, err := m.build(history, turn)
	if err != nil {
		return "", err
	}
	resp, err := m.engine.CreateMessages(ctx, req)
	if err != nil {
		return "", err
	}
	return responseText(resp.Content), nil
}

func (m *Model) SendStream(ctx context.Context, history []genchat.EngineTurn, turn genchat.EngineTurn) (genchat.Stream, error) {
	req, err := m.build(history, turn)
	if err != nil {
		return nil, err
	}
	req.Stream = true
	return newStream(ctx, func(ctx context.Context, emit func(string)) error {
		_, err := m.engine.CreateMessagesStream(ctx, anthropic.MessagesStreamRequest{
			MessagesRequest: req,
			OnContentBlockDelta: func(data anthropic.MessagesEventContentBlockDeltaData) {
				if text := data.Delta.Text; text != nil {
					emit(*text)
				}
			},
		})
		return err
	}), nil
}

func (m *Model) build(history []genchat.EngineTurn, turn genchat.EngineTurn) (anthropic.MessagesRequest, error) {
	req := m.request
	req.Messages = make([]anthropic.Message, 0, len(history)+1)
	for _, t := range append(history, turn) {
		msg, err := ConvertMessageFrom(t)
		if err != nil {
			return req, err
		}
		req.Messages = append(req.Messages, msg)
	}
	return req, nil
}

func responseText(list []anthropic.MessageContent) string {
	var ret string
	for _, c := range list {
		if c.Type == anthropic.MessagesContentTypeText && c.Text != nil {
			ret += *c.Text
		}
	}
	return ret
}
