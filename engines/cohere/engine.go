// Package cohere runs sessions against the Cohere chat API. Cohere chat is
// text only.
package cohere

import (
	"context"
	"strings"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereClient "github.com/cohere-ai/cohere-go/v2/client"

	"github.com/bububa/genchat"
	"github.com/bububa/genchat/internal"
	"github.com/bububa/genchat/internal/chat"
)

type Engine struct {
	*cohereClient.Client
	genchat.Options
}

var _ genchat.Engine = (*Engine)(nil)

func New(client *cohereClient.Client, opts ...genchat.Option) *Engine {
	return &Engine{
		Client:  client,
		Options: genchat.NewOptions(opts...),
	}
}

func (e *Engine) Provider() genchat.Provider {
	return genchat.ProviderCohere
}

func (e *Engine) Configure(_ context.Context, cfg genchat.ModelConfig) (genchat.Model, error) {
	g := cfg.Generation
	return &Model{
		engine:        e,
		model:         cfg.ModelName,
		temperature:   internal.ConvertPtr[float32, float64](g.Temperature),
		p:             internal.ConvertPtr[float32, float64](g.TopP),
		k:             internal.ConvertPtr[int32, int](g.TopK),
		maxTokens:     internal.ConvertPtr[int32, int](g.MaxOutputTokens),
		stopSequences: g.StopSequences,
	}, nil
}

type Model struct {
	engine        *Engine
	model         string
	temperature   *float64
	p             *float64
	k             *int
	maxTokens     *int
	stopSequences []string
}

var _ genchat.Model = (*Model)(nil)

func (m *Model) Generate(ctx context.Context, turn genchat.EngineTurn) (string, error) {
	return m.Send(ctx, nil, turn)
}

func (m *Model) GenerateStream(ctx context.Context, turn genchat.EngineTurn) (genchat.Stream, error) {
	return m.SendStream(ctx, nil, turn)
}

// CountTokens tokenizes the text of every turn.
func (m *Model) CountTokens(ctx context.Context, turns []genchat.EngineTurn) (int, error) {
	texts := make([]string, 0, len(turns))
	for _, t := range turns {
		text, err := turnText(t)
		if err != nil {
			return 0, err
		}
		texts = append(texts, text)
	}
	resp, err := m.engine.Tokenize(ctx, &cohere.TokenizeRequest{
		Text:  strings.Join(texts, "\n"),
		Model: m.model,
	})
	if err != nil {
		return 0, err
	}
	return len(resp.Tokens), nil
}

func (m *Model) StartChat(_ context.Context, history []genchat.EngineTurn) (genchat.ChatHandle, error) {
	return chat.New(m, history), nil
}

func (m *Model) Send(ctx context.Context, history []genchat.EngineTurn, turn genchat.EngineTurn) (string, error) {
	message, chatHistory, err := convert(history, turn)
	if err != nil {
		return "", err
	}
	resp, err := m.engine.Chat(ctx, &cohere.ChatRequest{
		Message:       message,
		Model:         internal.ToPtr(m.model),
		ChatHistory:   chatHistory,
		Temperature:   m.temperature,
		P:             m.p,
		K:             m.k,
		MaxTokens:     m.maxTokens,
		StopSequences: m.stopSequences,
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

func (m *Model) SendStream(ctx context.Context, history []genchat.EngineTurn, turn genchat.EngineTurn) (genchat.Stream, error) {
	message, chatHistory, err := convert(history, turn)
	if err != nil {
		return nil, err
	}
	stream, err := m.engine.ChatStream(ctx, &cohere.ChatStreamRequest{
		Message:       message,
		Model:         internal.ToPtr(m.model),
		ChatHistory:   chatHistory,
		Temperature:   m.temperature,
		P:             m.p,
		K:             m.k,
		MaxTokens:     m.maxTokens,
		StopSequences: m.stopSequences,
	})
	if err != nil {
		return nil, err
	}
	recv := func() (*cohere.StreamedChatResponse, error) {
		message, err := stream.Recv()
		return &message, err
	}
	return &Stream{recv: recv, close: func() { stream.Close() }}, nil
}
