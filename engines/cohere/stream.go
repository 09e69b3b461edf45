package cohere

import (
	"io"

	cohere "github.com/cohere-ai/cohere-go/v2"
)

// Stream yields text-generation events until stream-end.
type Stream struct {
	recv  func() (*cohere.StreamedChatResponse, error)
	close func()
	ended bool
}

func (s *Stream) Next() (string, error) {
	for !s.ended {
		message, err := s.recv()
		if err != nil {
			return "", err
		}
		switch message.EventType {
		case "text-generation":
			if message.TextGeneration != nil {
				return message.TextGeneration.Text, nil
			}
		case "stream-end":
			s.ended = true
		}
	}
	return "", io.EOF
}

func (s *Stream) Close() error {
	s.close()
	return nil
}
