package imageenc

import (
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEncodeDecode(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.RGBA{G: 200, A: 255})
	for _, mimeType := range []string{MIMEPNG, MIMEJPEG, MIMEGIF} {
		t.Run(mimeType, func(t *testing.T) {
			data, err := Encode(img, mimeType)
			if err != nil {
				t.Fatal(err)
			}
			decoded, detected, err := Decode(data)
			if err != nil {
				t.Fatal(err)
			}
			if detected != mimeType {
				t.Errorf("detected %q", detected)
			}
			if decoded.Bounds() != img.Bounds() {
				t.Errorf("bounds = %v", decoded.Bounds())
			}
		})
	}
}

func TestEncodeUnsupported(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	if _, err := Encode(img, "image/webp"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("err = %v", err)
	}
}

func TestReadFile(t *testing.T) {
	data, err := Encode(image.NewGray(image.Rect(0, 0, 2, 2)), MIMEPNG)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "dot.png")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	if _, mimeType, err := ReadFile(path); err != nil || mimeType != MIMEPNG {
		t.Errorf("ReadFile = %q, %v", mimeType, err)
	}
}

func TestDataURL(t *testing.T) {
	if got := DataURL([]byte("hi"), MIMEPNG); !strings.HasPrefix(got, "data:image/png;base64,aGk") {
		t.Errorf("got %q", got)
	}
	if !IsImage("image/jpeg") || IsImage("application/pdf") {
		t.Error("IsImage misclassifies")
	}
}
