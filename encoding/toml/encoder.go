package toml

import (
	"bytes"

	"github.com/BurntSushi/toml"

	"github.com/bububa/genchat"
)

const Format = "toml"

var (
	IGNORE_PREFIX = []byte("```toml")
	IGNORE_SUFFIX = []byte("```")
)

type Encoder struct{}

var _ genchat.HistoryEncoder = (*Encoder)(nil)

func NewEncoder() *Encoder {
	return &Encoder{}
}

func (e *Encoder) Format() string {
	return Format
}

func (e *Encoder) Marshal(h genchat.History) ([]byte, error) {
	doc, err := genchat.NewDocument(h)
	if err != nil {
		return nil, err
	}
	return toml.Marshal(doc)
}

func (e *Encoder) Unmarshal(bs []byte) (genchat.History, error) {
	var doc genchat.Document
	if err := toml.Unmarshal(cleanup(bs), &doc); err != nil {
		return genchat.History{}, err
	}
	return doc.History()
}

// cleanup the TOML by trimming prefixes and postfixes
func cleanup(bs []byte) []byte {
	trimmed := bytes.TrimSpace(bs)
	trimmed = bytes.TrimPrefix(trimmed, IGNORE_PREFIX)
	trimmed = bytes.TrimSuffix(trimmed, IGNORE_SUFFIX)
	return bytes.TrimSpace(trimmed)
}
