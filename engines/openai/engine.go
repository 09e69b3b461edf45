// Package openai runs sessions against OpenAI chat completions.
package openai

import (
	"context"

	openai "github.com/sashabaranov/go-openai"

	"github.com/bububa/genchat"
	"github.com/bububa/genchat/internal/chat"
)

type Engine struct {
	*openai.Client
	genchat.Options
}

var _ genchat.Engine = (*Engine)(nil)

func New(client *openai.Client, opts ...genchat.Option) *Engine {
	return &Engine{
		Client:  client,
		Options: genchat.NewOptions(opts...),
	}
}

func (e *Engine) Provider() genchat.Provider {
	return genchat.ProviderOpenAI
}

// Configure binds the request template. TopK and safety settings have no
// OpenAI equivalent and are dropped.
func (e *Engine) Configure(_ context.Context, cfg genchat.ModelConfig) (genchat.Model, error) {
	req := openai.ChatCompletionRequest{
		Model: cfg.ModelName,
		Stop:  cfg.Generation.StopSequences,
	}
	g := cfg.Generation
	if g.Temperature != nil {
		req.Temperature = *g.Temperature
	}
	if g.TopP != nil {
		req.TopP = *g.TopP
	}
	if g.MaxOutputTokens != nil {
		req.MaxTokens = int(*g.MaxOutputTokens)
	}
	if g.CandidateCount != nil {
		req.N = int(*g.CandidateCount)
	}
	return &Model{engine: e, request: req}, nil
}

// Model is a configured chat completion request template.
type Model struct {
	engine  *Engine
	request openai.ChatCompletionRequest
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
	resp, err := m.engine.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func (m *Model) SendStream(ctx context.Context, history []genchat.EngineTurn, turn genchat.EngineTurn) (genchat.Stream, error) {
	req, err := m.build(history, turn)
	if err != nil {
		return nil, err
	}
	req.Stream = true
	stream, err := m.engine.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return nil, err
	}
	return &Stream{stream: stream}, nil
}

func (m *Model) build(history []genchat.EngineTurn, turn genchat.EngineTurn) (openai.ChatCompletionRequest, error) {
	req := m.request
	req.Messages = make([]openai.ChatCompletionMessage, 0, len(history)+1)
	for _, t := range append(history, turn) {
		msg, err := ConvertMessageFrom(t)
		if err != nil {
			return req, err
		}
		req.Messages = append(req.Messages, msg)
	}
	return req, nil
}

// Stream reads content deltas of the first choice.
type Stream struct {
	stream *openai.ChatCompletionStream
}

func (s *Stream) Next() (string, error) {
	resp, err := s.stream.Recv()
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Delta.Content, nil
}

func (s *Stream) Close() error {
	return s.stream.Close()
}
