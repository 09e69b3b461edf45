package json

import (
	"bytes"
	"encoding/json"

	"github.com/bububa/ljson"

	"github.com/bububa/genchat"
)

const Format = "json"

type Encoder struct {
	indent string
}

var _ genchat.HistoryEncoder = (*Encoder)(nil)

func NewEncoder() *Encoder {
	return &Encoder{indent: "  "}
}

// WithIndent sets the indentation; an empty string writes compact JSON.
func (e *Encoder) WithIndent(indent string) *Encoder {
	e.indent = indent
	return e
}

func (e *Encoder) Format() string {
	return Format
}

func (e *Encoder) Marshal(h genchat.History) ([]byte, error) {
	doc, err := genchat.NewDocument(h)
	if err != nil {
		return nil, err
	}
	if e.indent == "" {
		return json.Marshal(doc)
	}
	return json.MarshalIndent(doc, "", e.indent)
}

// Unmarshal tolerates text around the document and the relaxed syntax ljson
// accepts.
func (e *Encoder) Unmarshal(bs []byte) (genchat.History, error) {
	var doc genchat.Document
	if err := ljson.Unmarshal(cleanup(bs), &doc); err != nil {
		return genchat.History{}, err
	}
	return doc.History()
}

// cleanup the JSON by trimming prefixes and postfixes
func cleanup(bs []byte) []byte {
	trimmedPrefix := trimPrefixBeforeJSON(bs)
	return trimPostfixAfterJSON(trimmedPrefix)
}

// Removes any prefixes before the JSON object
func trimPrefixBeforeJSON(bs []byte) []byte {
	start := bytes.IndexByte(bs, '{')
	if start == -1 {
		return bs
	}
	return bs[start:]
}

// Removes any postfixes after the JSON object
func trimPostfixAfterJSON(bs []byte) []byte {
	end := bytes.LastIndexByte(bs, '}')
	if end == -1 {
		return bs
	}
	return bs[:end+1]
}
