package genchat

import (
	"encoding/base64"
	"fmt"

	"github.com/bububa/genchat/internal/imageenc"
)

// HistoryEncoder persists a History in some text format.
type HistoryEncoder interface {
	Format() string
	Marshal(h History) ([]byte, error)
	Unmarshal(data []byte) (History, error)
}

// Document is the serialized form of a History. Binary payloads are base64;
// image pixels are stored as PNG whatever MIME type the part requests.
type Document struct {
	Turns []DocumentTurn `json:"turns" yaml:"turns" toml:"turns" validate:"dive"`
}

type DocumentTurn struct {
	IsUser bool           `json:"isUser" yaml:"isUser" toml:"isUser"`
	Parts  []DocumentPart `json:"parts" yaml:"parts" toml:"parts" validate:"min=1,dive"`
}

type DocumentPart struct {
	Type     Kind   `json:"type" yaml:"type" toml:"type" validate:"required,oneof=text image blob" jsonschema:"enum=text,enum=image,enum=blob"`
	Content  string `json:"content" yaml:"content" toml:"content"`
	MIMEType string `json:"mimeType,omitempty" yaml:"mimeType,omitempty" toml:"mimeType,omitempty" validate:"required_if=Type blob"`
}

// NewDocument serializes h.
func NewDocument(h History) (Document, error) {
	doc := Document{Turns: make([]DocumentTurn, 0, h.Len())}
	for _, t := range h.turns {
		turn := DocumentTurn{
			IsUser: t.Role == RoleUser,
			Parts:  make([]DocumentPart, 0, len(t.Parts)),
		}
		for _, p := range t.Parts {
			switch v := p.(type) {
			case Text:
				turn.Parts = append(turn.Parts, DocumentPart{Type: KindText, Content: v.Value})
			case Image:
				data, err := imageenc.Encode(v.Pixels, imageenc.MIMEPNG)
				if err != nil {
					return doc, err
				}
				turn.Parts = append(turn.Parts, DocumentPart{
					Type:     KindImage,
					Content:  base64.StdEncoding.EncodeToString(data),
					MIMEType: v.MIMEType,
				})
			case Blob:
				turn.Parts = append(turn.Parts, DocumentPart{
					Type:     KindBlob,
					Content:  base64.StdEncoding.EncodeToString(v.Data),
					MIMEType: v.MIMEType,
				})
			}
		}
		doc.Turns = append(doc.Turns, turn)
	}
	return doc, nil
}

// Validate checks part types and required MIME types.
func (d Document) Validate() error {
	return validate.Struct(d)
}

// History decodes the document.
func (d Document) History() (History, error) {
	if err := d.Validate(); err != nil {
		return History{}, err
	}
	turns := make([]Turn, 0, len(d.Turns))
	for i, src := range d.Turns {
		t := Turn{Role: RoleModel, Parts: make([]Part, 0, len(src.Parts))}
		if src.IsUser {
			t.Role = RoleUser
		}
		for _, p := range src.Parts {
			switch p.Type {
			case KindText:
				t.Parts = append(t.Parts, Text{Value: p.Content})
			case KindImage:
				data, err := base64.StdEncoding.DecodeString(p.Content)
				if err != nil {
					return History{}, fmt.Errorf("turn %d: %w", i, err)
				}
				img, _, err := imageenc.Decode(data)
				if err != nil {
					return History{}, fmt.Errorf("turn %d: %w", i, err)
				}
				t.Parts = append(t.Parts, Image{Pixels: img, MIMEType: p.MIMEType})
			case KindBlob:
				data, err := base64.StdEncoding.DecodeString(p.Content)
				if err != nil {
					return History{}, fmt.Errorf("turn %d: %w", i, err)
				}
				t.Parts = append(t.Parts, Blob{Data: data, MIMEType: p.MIMEType})
			}
		}
		turns = append(turns, t)
	}
	return History{turns: turns}, nil
}
