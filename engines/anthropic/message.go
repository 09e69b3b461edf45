package anthropic

import (
	"encoding/base64"
	"fmt"

	anthropic "github.com/liushuangls/go-anthropic/v2"

	"github.com/bububa/genchat"
	"github.com/bububa/genchat/internal/imageenc"
)

const mimePDF = "application/pdf"

// ConvertMessageFrom converts an engine turn into a message. Images travel
// as base64 sources; PDF blobs become documents.
func ConvertMessageFrom(src genchat.EngineTurn) (anthropic.Message, error) {
	var dist anthropic.Message
	switch src.Role {
	case genchat.EngineRoleUser:
		dist.Role = anthropic.RoleUser
	case genchat.EngineRoleModel:
		dist.Role = anthropic.RoleAssistant
	default:
		return dist, fmt.Errorf("%w: %q", genchat.ErrUnknownRole, src.Role)
	}
	dist.Content = make([]anthropic.MessageContent, 0, len(src.Parts))
	for _, p := range src.Parts {
		switch p.Kind {
		case genchat.KindText:
			dist.Content = append(dist.Content, anthropic.NewTextMessageContent(p.Text))
		case genchat.KindImage:
			data, err := imageenc.Encode(p.Image, imageenc.MIMEPNG)
			if err != nil {
				return dist, err
			}
			dist.Content = append(dist.Content, anthropic.NewImageMessageContent(source(data, imageenc.MIMEPNG)))
		case genchat.KindBlob:
			switch {
			case imageenc.IsImage(p.MIMEType):
				dist.Content = append(dist.Content, anthropic.NewImageMessageContent(source(p.Data, p.MIMEType)))
			case p.MIMEType == mimePDF:
				dist.Content = append(dist.Content, anthropic.NewDocumentMessageContent(source(p.Data, p.MIMEType), "", "", false))
			default:
				return dist, fmt.Errorf("%w: %s", genchat.ErrUnsupportedPart, p.MIMEType)
			}
		default:
			return dist, fmt.Errorf("%w: %s", genchat.ErrUnsupportedPart, p.Kind)
		}
	}
	return dist, nil
}

func source(data []byte, mimeType string) anthropic.MessageContentSource {
	return anthropic.NewMessageContentSource(
		anthropic.MessagesContentSourceTypeBase64,
		mimeType,
		base64.StdEncoding.EncodeToString(data),
	)
}
