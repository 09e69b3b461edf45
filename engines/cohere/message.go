package cohere

import (
	"fmt"
	"strings"

	cohere "github.com/cohere-ai/cohere-go/v2"

	"github.com/bububa/genchat"
)

// convert splits a conversation into the chat history and the message being
// sent.
func convert(history []genchat.EngineTurn, turn genchat.EngineTurn) (string, []*cohere.Message, error) {
	message, err := turnText(turn)
	if err != nil {
		return "", nil, err
	}
	list := make([]*cohere.Message, 0, len(history))
	for _, t := range history {
		msg, err := ConvertMessageFrom(t)
		if err != nil {
			return "", nil, err
		}
		list = append(list, msg)
	}
	return message, list, nil
}

func ConvertMessageFrom(src genchat.EngineTurn) (*cohere.Message, error) {
	text, err := turnText(src)
	if err != nil {
		return nil, err
	}
	switch src.Role {
	case genchat.EngineRoleUser:
		return &cohere.Message{Role: "USER", User: &cohere.ChatMessage{Message: text}}, nil
	case genchat.EngineRoleModel:
		return &cohere.Message{Role: "CHATBOT", Chatbot: &cohere.ChatMessage{Message: text}}, nil
	}
	return nil, fmt.Errorf("%w: %q", genchat.ErrUnknownRole, src.Role)
}

func turnText(t genchat.EngineTurn) (string, error) {
	var sb strings.Builder
	for _, p := range t.Parts {
		if p.Kind != genchat.KindText {
			return "", fmt.Errorf("%w: %s", genchat.ErrUnsupportedPart, p.Kind)
		}
		sb.WriteString(p.Text)
	}
	return sb.String(), nil
}
