package gemini

import (
	"context"
	"errors"
	"io"
	"strings"

	gemini "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"

	"github.com/bububa/genchat"
)

// Model is a configured Gemini model.
type Model struct {
	*gemini.GenerativeModel
	genchat.Options
}

var _ genchat.Model = (*Model)(nil)

func (m *Model) Generate(ctx context.Context, turn genchat.EngineTurn) (string, error) {
	parts, err := ConvertPartsFrom(turn.Parts)
	if err != nil {
		return "", err
	}
	resp, err := m.GenerateContent(ctx, parts...)
	if err != nil {
		return "", err
	}
	return responseText(resp), nil
}

func (m *Model) GenerateStream(ctx context.Context, turn genchat.EngineTurn) (genchat.Stream, error) {
	parts, err := ConvertPartsFrom(turn.Parts)
	if err != nil {
		return nil, err
	}
	return &Stream{iter: m.GenerateContentStream(ctx, parts...)}, nil
}

// CountTokens counts the parts of every turn as one flat request.
func (m *Model) CountTokens(ctx context.Context, turns []genchat.EngineTurn) (int, error) {
	parts, err := flattenParts(turns)
	if err != nil {
		return 0, err
	}
	resp, err := m.GenerativeModel.CountTokens(ctx, parts...)
	if err != nil {
		return 0, err
	}
	return int(resp.TotalTokens), nil
}

// flattenParts joins the parts of turns in order. genai only counts parts,
// so turn roles are not part of the request and their overhead is not
// included in the total.
func flattenParts(turns []genchat.EngineTurn) ([]gemini.Part, error) {
	var parts []gemini.Part
	for _, t := range turns {
		list, err := ConvertPartsFrom(t.Parts)
		if err != nil {
			return nil, err
		}
		parts = append(parts, list...)
	}
	return parts, nil
}

func (m *Model) StartChat(_ context.Context, history []genchat.EngineTurn) (genchat.ChatHandle, error) {
	cs := m.GenerativeModel.StartChat()
	for _, t := range history {
		content, err := ConvertMessageFrom(t)
		if err != nil {
			return nil, err
		}
		cs.History = append(cs.History, content)
	}
	return &Chat{ChatSession: cs}, nil
}

// responseText joins the text parts of the first candidate.
func responseText(resp *gemini.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	cand := resp.Candidates[0]
	if cand.Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range cand.Content.Parts {
		if text, ok := part.(gemini.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String()
}

// Stream adapts a response iterator to genchat.Stream.
type Stream struct {
	iter *gemini.GenerateContentResponseIterator
}

func (s *Stream) Next() (string, error) {
	resp, err := s.iter.Next()
	if errors.Is(err, iterator.Done) {
		return "", io.EOF
	}
	if err != nil {
		return "", err
	}
	return responseText(resp), nil
}

func (s *Stream) Close() error {
	return nil
}
