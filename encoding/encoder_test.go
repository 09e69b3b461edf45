package encoding

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/bububa/genchat"
)

func sampleHistory() genchat.History {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	img.Set(1, 1, color.NRGBA{B: 255, A: 128})
	return genchat.NewHistory(
		genchat.NewTurn(genchat.RoleUser,
			genchat.NewImage(img, "image/jpeg"),
			genchat.Blob{Data: []byte("%PDF-1.4"), MIMEType: "application/pdf"},
			genchat.NewText("what is in these?"),
		),
		genchat.NewTurn(genchat.RoleModel, genchat.NewText("a picture and a document")),
	)
}

func samePixels(a, b image.Image) bool {
	if a.Bounds() != b.Bounds() {
		return false
	}
	r := a.Bounds()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			r1, g1, b1, a1 := a.At(x, y).RGBA()
			r2, g2, b2, a2 := b.At(x, y).RGBA()
			if r1 != r2 || g1 != g2 || b1 != b2 || a1 != a2 {
				return false
			}
		}
	}
	return true
}

func sameHistory(t *testing.T, got, want genchat.History) {
	t.Helper()
	if got.Len() != want.Len() {
		t.Fatalf("len = %d, want %d", got.Len(), want.Len())
	}
	for i, w := range want.Turns() {
		g := got.At(i)
		if g.Role != w.Role || len(g.Parts) != len(w.Parts) {
			t.Fatalf("turn %d = %+v, want %+v", i, g, w)
		}
		for j, wp := range w.Parts {
			switch wv := wp.(type) {
			case genchat.Image:
				gv, ok := g.Parts[j].(genchat.Image)
				if !ok || gv.MIMEType != wv.MIMEType || !samePixels(gv.Pixels, wv.Pixels) {
					t.Errorf("turn %d part %d image differs", i, j)
				}
			case genchat.Blob:
				gv, ok := g.Parts[j].(genchat.Blob)
				if !ok || gv.MIMEType != wv.MIMEType || !bytes.Equal(gv.Data, wv.Data) {
					t.Errorf("turn %d part %d blob differs", i, j)
				}
			case genchat.Text:
				if gv, ok := g.Parts[j].(genchat.Text); !ok || gv != wv {
					t.Errorf("turn %d part %d text differs", i, j)
				}
			}
		}
	}
}

func TestRoundTrip(t *testing.T) {
	for _, format := range []string{"json", "yaml", "toml"} {
		t.Run(format, func(t *testing.T) {
			enc, err := ForFormat(format)
			if err != nil {
				t.Fatal(err)
			}
			if enc.Format() != format {
				t.Errorf("format = %q", enc.Format())
			}
			want := sampleHistory()
			data, err := enc.Marshal(want)
			if err != nil {
				t.Fatal(err)
			}
			got, err := enc.Unmarshal(data)
			if err != nil {
				t.Fatalf("%v\n%s", err, data)
			}
			sameHistory(t, got, want)
		})
	}
}

func TestForFile(t *testing.T) {
	for name, want := range map[string]string{
		"chat.json": "json",
		"chat.yml":  "yaml",
		"chat.YAML": "yaml",
		"chat.toml": "toml",
	} {
		enc, err := ForFile(name)
		if err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}
		if enc.Format() != want {
			t.Errorf("%s: format %q, want %q", name, enc.Format(), want)
		}
	}
	if _, err := ForFile("chat.txt"); err == nil {
		t.Error("expected an error for .txt")
	}
}

func TestExample(t *testing.T) {
	enc, _ := ForFormat("yaml")
	data, err := Example(enc, gofakeit.New(7), 2)
	if err != nil {
		t.Fatal(err)
	}
	h, err := enc.Unmarshal(data)
	if err != nil {
		t.Fatal(err)
	}
	if h.Len() != 4 {
		t.Errorf("len = %d, want 4", h.Len())
	}
}

func TestUnmarshalRejectsInvalidDocument(t *testing.T) {
	enc, _ := ForFormat("json")
	for _, doc := range []string{
		`{"turns":[{"isUser":true,"parts":[{"type":"video","content":""}]}]}`,
		`{"turns":[{"isUser":true,"parts":[{"type":"blob","content":"AA=="}]}]}`,
		`{"turns":[{"isUser":true,"parts":[]}]}`,
	} {
		if _, err := enc.Unmarshal([]byte(doc)); err == nil {
			t.Errorf("accepted %s", doc)
		}
	}
}
