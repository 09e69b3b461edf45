// Package encoding selects history codecs by name or file extension.
package encoding

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/bububa/genchat"
	jsonenc "github.com/bububa/genchat/encoding/json"
	tomlenc "github.com/bububa/genchat/encoding/toml"
	yamlenc "github.com/bububa/genchat/encoding/yaml"
)

// ForFormat returns the codec named format: json, yaml or toml.
func ForFormat(format string) (genchat.HistoryEncoder, error) {
	switch strings.ToLower(format) {
	case jsonenc.Format:
		return jsonenc.NewEncoder(), nil
	case yamlenc.Format, "yml":
		return yamlenc.NewEncoder(), nil
	case tomlenc.Format:
		return tomlenc.NewEncoder(), nil
	}
	return nil, fmt.Errorf("no history encoder for format %q", format)
}

// ForFile picks the codec from the file extension.
func ForFile(filename string) (genchat.HistoryEncoder, error) {
	return ForFormat(strings.TrimPrefix(filepath.Ext(filename), "."))
}

// Example renders a fake conversation of turns text exchanges with enc.
func Example(enc genchat.HistoryEncoder, f *gofakeit.Faker, turns int) ([]byte, error) {
	list := make([]genchat.Turn, 0, turns*2)
	for i := 0; i < turns; i++ {
		list = append(list,
			genchat.NewTurn(genchat.RoleUser, genchat.NewText(f.Question())),
			genchat.NewTurn(genchat.RoleModel, genchat.NewText(f.Phrase())),
		)
	}
	return enc.Marshal(genchat.NewHistory(list...))
}
