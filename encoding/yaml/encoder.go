package yaml

import (
	"bytes"

	"gopkg.in/yaml.v3"

	"github.com/bububa/genchat"
)

const Format = "yaml"

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
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *Encoder) Unmarshal(bs []byte) (genchat.History, error) {
	var doc genchat.Document
	if err := yaml.Unmarshal(cleanup(bs), &doc); err != nil {
		return genchat.History{}, err
	}
	return doc.History()
}

var (
	ignorePrefix = []byte("```yaml")
	ignoreSuffix = []byte("```")
)

// cleanup trims surrounding space and markdown fences
func cleanup(bs []byte) []byte {
	data := bytes.TrimSpace(bs)
	data = bytes.TrimPrefix(data, ignorePrefix)
	data = bytes.TrimSuffix(data, ignoreSuffix)
	return bytes.TrimSpace(data)
}
