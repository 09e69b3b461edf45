package genchat

// BuildTurn assembles a user Turn. Media parts keep the order given and the
// text part, if any, always comes last: vision models read trailing text as
// the instruction for the media before it.
func BuildTurn(text string, media ...Part) (Turn, error) {
	parts := make([]Part, 0, len(media)+1)
	for _, m := range media {
		switch v := m.(type) {
		case Image:
			parts = append(parts, v)
		case Blob:
			if v.MIMEType == "" {
				return Turn{}, ErrMissingMIMEType
			}
			parts = append(parts, v)
		default:
			return Turn{}, ErrInvalidMedia
		}
	}
	if text != "" {
		parts = append(parts, Text{Value: text})
	}
	if len(parts) == 0 {
		return Turn{}, ErrEmptyTurn
	}
	return Turn{Role: RoleUser, Parts: parts}, nil
}
