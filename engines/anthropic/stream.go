package anthropic

import (
	"context"
	"io"
)

// Stream turns the callback driven messages stream into a pull stream.
type Stream struct {
	ch     chan string
	done   chan struct{}
	cancel context.CancelFunc
	err    error
}

func newStream(ctx context.Context, run func(ctx context.Context, emit func(string)) error) *Stream {
	ctx, cancel := context.WithCancel(ctx)
	s := &Stream{
		ch:     make(chan string),
		done:   make(chan struct{}),
		cancel: cancel,
	}
	go func() {
		defer close(s.done)
		s.err = run(ctx, func(text string) {
			select {
			case s.ch <- text:
			case <-ctx.Done():
			}
		})
	}()
	return s
}

func (s *Stream) Next() (string, error) {
	select {
	case text := <-s.ch:
		return text, nil
	case <-s.done:
		if s.err != nil {
			return "", s.err
		}
		return "", io.EOF
	}
}

func (s *Stream) Close() error {
	s.cancel()
	<-s.done
	return nil
}
