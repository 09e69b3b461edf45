package openai

import (
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/bububa/genchat"
	"github.com/bububa/genchat/internal/imageenc"
)

// ConvertMessageFrom converts an engine turn into a chat message. User turns
// use multi content so images travel as data URLs; model turns are plain
// text.
func ConvertMessageFrom(src genchat.EngineTurn) (openai.ChatCompletionMessage, error) {
	var dist openai.ChatCompletionMessage
	switch src.Role {
	case genchat.EngineRoleModel:
		dist.Role = openai.ChatMessageRoleAssistant
		var sb strings.Builder
		for _, p := range src.Parts {
			if p.Kind != genchat.KindText {
				return dist, fmt.Errorf("%w: %s in assistant message", genchat.ErrUnsupportedPart, p.Kind)
			}
			sb.WriteString(p.Text)
		}
		dist.Content = sb.String()
		return dist, nil
	case genchat.EngineRoleUser:
		dist.Role = openai.ChatMessageRoleUser
	default:
		return dist, fmt.Errorf("%w: %q", genchat.ErrUnknownRole, src.Role)
	}
	dist.MultiContent = make([]openai.ChatMessagePart, 0, len(src.Parts))
	for _, p := range src.Parts {
		switch p.Kind {
		case genchat.KindText:
			dist.MultiContent = append(dist.MultiContent, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeText,
				Text: p.Text,
			})
		case genchat.KindImage:
			data, err := imageenc.Encode(p.Image, imageenc.MIMEPNG)
			if err != nil {
				return dist, err
			}
			dist.MultiContent = append(dist.MultiContent, imagePart(data, imageenc.MIMEPNG))
		case genchat.KindBlob:
			if !imageenc.IsImage(p.MIMEType) {
				return dist, fmt.Errorf("%w: %s", genchat.ErrUnsupportedPart, p.MIMEType)
			}
			dist.MultiContent = append(dist.MultiContent, imagePart(p.Data, p.MIMEType))
		default:
			return dist, fmt.Errorf("%w: %s", genchat.ErrUnsupportedPart, p.Kind)
		}
	}
	return dist, nil
}

func imagePart(data []byte, mimeType string) openai.ChatMessagePart {
	return openai.ChatMessagePart{
		Type: openai.ChatMessagePartTypeImageURL,
		ImageURL: &openai.ChatMessageImageURL{
			URL:    imageenc.DataURL(data, mimeType),
			Detail: openai.ImageURLDetailAuto,
		},
	}
}
