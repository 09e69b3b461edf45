package gemini

import (
	"context"

	gemini "github.com/google/generative-ai-go/genai"

	"github.com/bububa/genchat"
)

// Chat wraps a ChatSession. The session itself records the exchange, for
// streams once the iterator is drained.
type Chat struct {
	*gemini.ChatSession
}

var _ genchat.ChatHandle = (*Chat)(nil)

func (c *Chat) Send(ctx context.Context, turn genchat.EngineTurn) (string, error) {
	parts, err := ConvertPartsFrom(turn.Parts)
	if err != nil {
		return "", err
	}
	resp, err := c.SendMessage(ctx, parts...)
	if err != nil {
		return "", err
	}
	return responseText(resp), nil
}

func (c *Chat) SendStream(ctx context.Context, turn genchat.EngineTurn) (genchat.Stream, error) {
	parts, err := ConvertPartsFrom(turn.Parts)
	if err != nil {
		return nil, err
	}
	return &Stream{iter: c.SendMessageStream(ctx, parts...)}, nil
}

func (c *Chat) History() []genchat.EngineTurn {
	list := make([]genchat.EngineTurn, 0, len(c.ChatSession.History))
	for _, content := range c.ChatSession.History {
		if content == nil {
			continue
		}
		list = append(list, ConvertMessageTo(content))
	}
	return list
}
