package main

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/bububa/genchat"
)

func writePNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestMediaFlagsKeepCommandLineOrder(t *testing.T) {
	dir := t.TempDir()
	notes := filepath.Join(dir, "notes.txt")
	photo := filepath.Join(dir, "photo.png")
	more := filepath.Join(dir, "more.txt")
	for _, path := range []string{notes, more} {
		if err := os.WriteFile(path, []byte("plain text attachment"), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	writePNG(t, photo)

	var media mediaFlags
	cmd := &cobra.Command{Use: "send"}
	media.register(cmd)
	if err := cmd.ParseFlags([]string{"--file", notes, "--image", photo, "--file", more}); err != nil {
		t.Fatal(err)
	}
	parts, err := media.parts()
	if err != nil {
		t.Fatal(err)
	}
	want := []genchat.Kind{genchat.KindBlob, genchat.KindImage, genchat.KindBlob}
	if len(parts) != len(want) {
		t.Fatalf("got %d parts", len(parts))
	}
	for i, kind := range want {
		if got := genchat.PartKind(parts[i]); got != kind {
			t.Errorf("part %d = %s, want %s", i, got, kind)
		}
	}
	if got := cmd.Flags().Lookup("file").Value.String(); got != notes+","+more {
		t.Errorf("--file = %q", got)
	}
}

func TestMediaFlagsMissingFile(t *testing.T) {
	var media mediaFlags
	cmd := &cobra.Command{Use: "send"}
	media.register(cmd)
	if err := cmd.ParseFlags([]string{"--image", filepath.Join(t.TempDir(), "absent.png")}); err != nil {
		t.Fatal(err)
	}
	if _, err := media.parts(); err == nil {
		t.Error("missing file accepted")
	}
}
