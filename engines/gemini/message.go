package gemini

import (
	"fmt"
	"strings"

	gemini "github.com/google/generative-ai-go/genai"

	"github.com/bububa/genchat"
	"github.com/bububa/genchat/internal/imageenc"
)

// ConvertMessageFrom converts an engine turn into Gemini content.
func ConvertMessageFrom(src genchat.EngineTurn) (*gemini.Content, error) {
	parts, err := ConvertPartsFrom(src.Parts)
	if err != nil {
		return nil, err
	}
	dist := &gemini.Content{Parts: parts}
	switch src.Role {
	case genchat.EngineRoleUser:
		dist.Role = "user"
	case genchat.EngineRoleModel:
		dist.Role = "model"
	default:
		return nil, fmt.Errorf("%w: %q", genchat.ErrUnknownRole, src.Role)
	}
	return dist, nil
}

// ConvertPartsFrom converts engine parts. Images without an explicit MIME
// type are sent as JPEG.
func ConvertPartsFrom(src []genchat.EnginePart) ([]gemini.Part, error) {
	list := make([]gemini.Part, 0, len(src))
	for _, p := range src {
		switch p.Kind {
		case genchat.KindText:
			list = append(list, gemini.Text(p.Text))
		case genchat.KindImage:
			data, err := imageenc.Encode(p.Image, imageenc.MIMEJPEG)
			if err != nil {
				return nil, err
			}
			list = append(list, gemini.ImageData("jpeg", data))
		case genchat.KindBlob:
			list = append(list, gemini.Blob{MIMEType: p.MIMEType, Data: p.Data})
		default:
			return nil, fmt.Errorf("%w: %s", genchat.ErrUnsupportedPart, p.Kind)
		}
	}
	return list, nil
}

// ConvertMessageTo converts Gemini content into an engine turn. Part types
// other than text and blob keep a descriptive kind so callers can reject
// them.
func ConvertMessageTo(src *gemini.Content) genchat.EngineTurn {
	dist := genchat.EngineTurn{
		Role:  src.Role,
		Parts: make([]genchat.EnginePart, 0, len(src.Parts)),
	}
	for _, part := range src.Parts {
		switch v := part.(type) {
		case gemini.Text:
			dist.Parts = append(dist.Parts, genchat.EnginePart{Kind: genchat.KindText, Text: string(v)})
		case gemini.Blob:
			dist.Parts = append(dist.Parts, genchat.EnginePart{Kind: genchat.KindBlob, Data: v.Data, MIMEType: v.MIMEType})
		default:
			dist.Parts = append(dist.Parts, genchat.EnginePart{Kind: partKind(part)})
		}
	}
	return dist
}

func partKind(part gemini.Part) genchat.Kind {
	name := fmt.Sprintf("%T", part)
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return genchat.Kind(toSnake(name))
}

func toSnake(s string) string {
	var sb strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				sb.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
