package gemini

import (
	"errors"
	"image"
	"testing"

	gemini "github.com/google/generative-ai-go/genai"

	"github.com/bububa/genchat"
)

func TestConvertPartsFrom(t *testing.T) {
	parts, err := ConvertPartsFrom([]genchat.EnginePart{
		{Kind: genchat.KindImage, Image: image.NewRGBA(image.Rect(0, 0, 2, 2))},
		{Kind: genchat.KindBlob, Data: []byte("x"), MIMEType: "text/plain"},
		{Kind: genchat.KindText, Text: "hi"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if blob, ok := parts[0].(gemini.Blob); !ok || blob.MIMEType != "image/jpeg" {
		t.Errorf("image part = %#v, want jpeg blob", parts[0])
	}
	if blob, ok := parts[1].(gemini.Blob); !ok || blob.MIMEType != "text/plain" {
		t.Errorf("blob part = %#v", parts[1])
	}
	if text, ok := parts[2].(gemini.Text); !ok || text != "hi" {
		t.Errorf("text part = %#v", parts[2])
	}
}

func TestConvertMessageToUnknownPart(t *testing.T) {
	content := &gemini.Content{
		Role: "model",
		Parts: []gemini.Part{
			gemini.Text("calling"),
			gemini.FunctionCall{Name: "lookup"},
		},
	}
	turn := ConvertMessageTo(content)
	if turn.Parts[1].Kind != "function_call" {
		t.Errorf("kind = %q", turn.Parts[1].Kind)
	}
	_, err := genchat.FromEngine([]genchat.EngineTurn{turn})
	if !errors.Is(err, genchat.ErrUnknownPartKind) {
		t.Errorf("err = %v, want ErrUnknownPartKind", err)
	}
}

func TestConvertMessageRoundTrip(t *testing.T) {
	src := genchat.EngineTurn{
		Role:  genchat.EngineRoleUser,
		Parts: []genchat.EnginePart{{Kind: genchat.KindText, Text: "hello"}, {Kind: genchat.KindBlob, Data: []byte{1, 2}, MIMEType: "application/octet-stream"}},
	}
	content, err := ConvertMessageFrom(src)
	if err != nil {
		t.Fatal(err)
	}
	back := ConvertMessageTo(content)
	if back.Role != src.Role || len(back.Parts) != 2 || back.Parts[0].Text != "hello" || back.Parts[1].MIMEType != "application/octet-stream" {
		t.Errorf("round trip = %+v", back)
	}
	if _, err := ConvertMessageFrom(genchat.EngineTurn{Role: "system"}); !errors.Is(err, genchat.ErrUnknownRole) {
		t.Errorf("err = %v", err)
	}
}

func TestSafetySettings(t *testing.T) {
	settings := safetySettings([]genchat.SafetySetting{
		{Category: genchat.HarmCategoryHarassment, Threshold: genchat.BlockNone},
		{Category: genchat.HarmCategoryDangerousContent, Threshold: genchat.BlockLowAndAbove},
	})
	if len(settings) != 2 {
		t.Fatalf("got %d settings", len(settings))
	}
	if settings[0].Category != gemini.HarmCategoryHarassment || settings[0].Threshold != gemini.HarmBlockNone {
		t.Errorf("setting 0 = %+v", settings[0])
	}
	if settings[1].Category != gemini.HarmCategoryDangerousContent || settings[1].Threshold != gemini.HarmBlockLowAndAbove {
		t.Errorf("setting 1 = %+v", settings[1])
	}
	if safetySettings(nil) != nil {
		t.Error("empty safety should leave engine defaults")
	}
}

func TestToSnake(t *testing.T) {
	for in, want := range map[string]string{
		"FunctionCall":        "function_call",
		"ExecutableCode":      "executable_code",
		"CodeExecutionResult": "code_execution_result",
	} {
		if got := toSnake(in); got != want {
			t.Errorf("toSnake(%q) = %q", in, got)
		}
	}
}

func TestFlattenParts(t *testing.T) {
	parts, err := flattenParts([]genchat.EngineTurn{
		{Role: genchat.EngineRoleUser, Parts: []genchat.EnginePart{
			{Kind: genchat.KindBlob, Data: []byte("x"), MIMEType: "text/plain"},
			{Kind: genchat.KindText, Text: "question"},
		}},
		{Role: genchat.EngineRoleModel, Parts: []genchat.EnginePart{{Kind: genchat.KindText, Text: "answer"}}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(parts) != 3 {
		t.Fatalf("got %d parts", len(parts))
	}
	if text, ok := parts[1].(gemini.Text); !ok || text != "question" {
		t.Errorf("part 1 = %#v", parts[1])
	}
	if text, ok := parts[2].(gemini.Text); !ok || text != "answer" {
		t.Errorf("part 2 = %#v", parts[2])
	}
	if _, err := flattenParts([]genchat.EngineTurn{{Parts: []genchat.EnginePart{{Kind: "video"}}}}); err == nil {
		t.Error("unknown part kind accepted")
	}
}
