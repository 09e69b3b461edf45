package openai

import (
	"context"
	"errors"
	"image"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/bububa/genchat"
)

func TestConvertUserMessage(t *testing.T) {
	msg, err := ConvertMessageFrom(genchat.EngineTurn{
		Role: genchat.EngineRoleUser,
		Parts: []genchat.EnginePart{
			{Kind: genchat.KindImage, Image: image.NewRGBA(image.Rect(0, 0, 1, 1))},
			{Kind: genchat.KindBlob, Data: []byte("gif"), MIMEType: "image/gif"},
			{Kind: genchat.KindText, Text: "compare"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if msg.Role != openai.ChatMessageRoleUser || len(msg.MultiContent) != 3 {
		t.Fatalf("message = %+v", msg)
	}
	if url := msg.MultiContent[0].ImageURL.URL; !strings.HasPrefix(url, "data:image/png;base64,") {
		t.Errorf("image url = %q", url)
	}
	if url := msg.MultiContent[1].ImageURL.URL; !strings.HasPrefix(url, "data:image/gif;base64,") {
		t.Errorf("blob url = %q", url)
	}
	if msg.MultiContent[2].Type != openai.ChatMessagePartTypeText || msg.MultiContent[2].Text != "compare" {
		t.Errorf("text part = %+v", msg.MultiContent[2])
	}
}

func TestConvertAssistantMessage(t *testing.T) {
	msg, err := ConvertMessageFrom(genchat.EngineTurn{
		Role:  genchat.EngineRoleModel,
		Parts: []genchat.EnginePart{{Kind: genchat.KindText, Text: "a"}, {Kind: genchat.KindText, Text: "b"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if msg.Role != openai.ChatMessageRoleAssistant || msg.Content != "ab" {
		t.Errorf("message = %+v", msg)
	}
}

func TestConvertUnsupported(t *testing.T) {
	_, err := ConvertMessageFrom(genchat.EngineTurn{
		Role:  genchat.EngineRoleUser,
		Parts: []genchat.EnginePart{{Kind: genchat.KindBlob, Data: []byte("%PDF"), MIMEType: "application/pdf"}},
	})
	if !errors.Is(err, genchat.ErrUnsupportedPart) {
		t.Errorf("err = %v", err)
	}
}

func TestConfigure(t *testing.T) {
	temp := float32(0.3)
	n := int32(2)
	model, err := New(nil).Configure(context.Background(), genchat.ModelConfig{
		ModelName:  openai.GPT4o,
		Generation: genchat.GenerationConfig{Temperature: &temp, CandidateCount: &n, StopSequences: []string{"END"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	req := model.(*Model).request
	if req.Model != openai.GPT4o || req.Temperature != 0.3 || req.N != 2 || req.Stop[0] != "END" {
		t.Errorf("request = %+v", req)
	}
	if _, err := model.CountTokens(context.Background(), nil); !errors.Is(err, genchat.ErrTokenCountUnsupported) {
		t.Errorf("err = %v", err)
	}
}
