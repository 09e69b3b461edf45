package genchat

import (
	"fmt"
	"image"

	"github.com/bububa/genchat/internal/imageenc"
)

// ImageEncoder encodes an image as mimeType. It is used when an Image part
// carries an explicit MIME type.
type ImageEncoder func(img image.Image, mimeType string) ([]byte, error)

// DefaultImageEncoder supports image/png, image/jpeg and image/gif.
var DefaultImageEncoder ImageEncoder = imageenc.Encode

// ToEngine converts a History into the engine's conversation form.
func ToEngine(h History, enc ImageEncoder) ([]EngineTurn, error) {
	list := make([]EngineTurn, 0, h.Len())
	for _, t := range h.turns {
		turn, err := TurnToEngine(t, enc)
		if err != nil {
			return nil, err
		}
		list = append(list, turn)
	}
	return list, nil
}

// TurnToEngine converts a single Turn.
func TurnToEngine(t Turn, enc ImageEncoder) (EngineTurn, error) {
	if enc == nil {
		enc = DefaultImageEncoder
	}
	var dist EngineTurn
	switch t.Role {
	case RoleUser:
		dist.Role = EngineRoleUser
	case RoleModel:
		dist.Role = EngineRoleModel
	default:
		return dist, fmt.Errorf("%w: %q", ErrUnknownRole, t.Role)
	}
	dist.Parts = make([]EnginePart, 0, len(t.Parts))
	for _, p := range t.Parts {
		switch v := p.(type) {
		case Text:
			dist.Parts = append(dist.Parts, EnginePart{Kind: KindText, Text: v.Value})
		case Image:
			if v.MIMEType == "" {
				dist.Parts = append(dist.Parts, EnginePart{Kind: KindImage, Image: v.Pixels})
				continue
			}
			data, err := enc(v.Pixels, v.MIMEType)
			if err != nil {
				return dist, fmt.Errorf("encode image as %s: %w", v.MIMEType, err)
			}
			dist.Parts = append(dist.Parts, EnginePart{Kind: KindBlob, Data: data, MIMEType: v.MIMEType, Image: v.Pixels})
		case Blob:
			dist.Parts = append(dist.Parts, EnginePart{Kind: KindBlob, Data: v.Data, MIMEType: v.MIMEType})
		}
	}
	return dist, nil
}

// FromEngine converts an engine conversation back into a History. A part kind
// outside text, image and blob aborts the whole conversion.
func FromEngine(turns []EngineTurn) (History, error) {
	list := make([]Turn, 0, len(turns))
	for i, src := range turns {
		var t Turn
		switch src.Role {
		case EngineRoleUser:
			t.Role = RoleUser
		case EngineRoleModel:
			t.Role = RoleModel
		default:
			return History{}, fmt.Errorf("%w: %q (turn %d)", ErrUnknownRole, src.Role, i)
		}
		t.Parts = make([]Part, 0, len(src.Parts))
		for _, p := range src.Parts {
			switch p.Kind {
			case KindText:
				t.Parts = append(t.Parts, Text{Value: p.Text})
			case KindImage:
				t.Parts = append(t.Parts, Image{Pixels: p.Image})
			case KindBlob:
				if p.Image != nil {
					t.Parts = append(t.Parts, Image{Pixels: p.Image, MIMEType: p.MIMEType})
					continue
				}
				t.Parts = append(t.Parts, Blob{Data: p.Data, MIMEType: p.MIMEType})
			default:
				return History{}, &UnknownPartKindError{Kind: p.Kind, Turn: i}
			}
		}
		list = append(list, t)
	}
	return History{turns: list}, nil
}
