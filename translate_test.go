package genchat

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
)

func fakeHistory(f *gofakeit.Faker, turns int) History {
	list := make([]Turn, 0, turns)
	for i := 0; i < turns; i++ {
		role := RoleUser
		if i%2 == 1 {
			role = RoleModel
		}
		var parts []Part
		for j := f.IntRange(1, 4); j > 0; j-- {
			switch f.IntRange(0, 3) {
			case 0:
				parts = append(parts, NewText(f.Question()))
			case 1:
				parts = append(parts, NewImage(f.Image(f.IntRange(1, 8), f.IntRange(1, 8)), ""))
			case 2:
				parts = append(parts, NewImage(f.Image(4, 4), "image/png"))
			default:
				parts = append(parts, Blob{Data: []byte(f.Word()), MIMEType: f.FileMimeType()})
			}
		}
		list = append(list, NewTurn(role, parts...))
	}
	return NewHistory(list...)
}

func TestTranslatorRoundTrip(t *testing.T) {
	f := gofakeit.New(42)
	for i := 0; i < 20; i++ {
		h := fakeHistory(f, f.IntRange(0, 6))
		turns, err := ToEngine(h, nil)
		if err != nil {
			t.Fatal(err)
		}
		back, err := FromEngine(turns)
		if err != nil {
			t.Fatal(err)
		}
		if !back.Equal(h) {
			t.Fatalf("round trip %d changed the history", i)
		}
	}
}

func TestTranslatorImageWithMIMETypeUsesBlob(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 3))
	turn, err := TurnToEngine(NewTurn(RoleUser, NewImage(img, "image/png")), nil)
	if err != nil {
		t.Fatal(err)
	}
	p := turn.Parts[0]
	if p.Kind != KindBlob || p.MIMEType != "image/png" {
		t.Fatalf("part = %+v, want png blob", p)
	}
	decoded, err := png.Decode(bytes.NewReader(p.Data))
	if err != nil {
		t.Fatal(err)
	}
	if decoded.Bounds() != img.Bounds() {
		t.Errorf("bounds = %v, want %v", decoded.Bounds(), img.Bounds())
	}
}

func TestTranslatorImageEncoderOverride(t *testing.T) {
	var called string
	enc := func(img image.Image, mimeType string) ([]byte, error) {
		called = mimeType
		return []byte("custom"), nil
	}
	turn, err := TurnToEngine(NewTurn(RoleUser, NewImage(image.NewGray(image.Rect(0, 0, 1, 1)), "image/webp")), enc)
	if err != nil {
		t.Fatal(err)
	}
	if called != "image/webp" || string(turn.Parts[0].Data) != "custom" {
		t.Errorf("encoder not used: %q %q", called, turn.Parts[0].Data)
	}
}

func TestTranslatorUnknownPartKind(t *testing.T) {
	turns := []EngineTurn{
		{Role: EngineRoleUser, Parts: []EnginePart{{Kind: KindText, Text: "call it"}}},
		{Role: EngineRoleModel, Parts: []EnginePart{{Kind: KindText, Text: "ok"}, {Kind: "function_call"}}},
	}
	_, err := FromEngine(turns)
	if !errors.Is(err, ErrUnknownPartKind) {
		t.Fatalf("err = %v, want ErrUnknownPartKind", err)
	}
	var kindErr *UnknownPartKindError
	if !errors.As(err, &kindErr) {
		t.Fatal("error is not an *UnknownPartKindError")
	}
	if kindErr.Kind != "function_call" || kindErr.Turn != 1 {
		t.Errorf("got kind %q turn %d", kindErr.Kind, kindErr.Turn)
	}
}

func TestTranslatorUnknownRole(t *testing.T) {
	if _, err := FromEngine([]EngineTurn{{Role: "system"}}); !errors.Is(err, ErrUnknownRole) {
		t.Errorf("err = %v, want ErrUnknownRole", err)
	}
	if _, err := TurnToEngine(Turn{Role: "system"}, nil); !errors.Is(err, ErrUnknownRole) {
		t.Errorf("err = %v, want ErrUnknownRole", err)
	}
}
