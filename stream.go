package genchat

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
)

type EventType int

const (
	// EventPartial carries one non-empty chunk.
	EventPartial EventType = iota
	// EventFinal carries the full accumulated text. It is sent at most once
	// and only when the accumulated text is non-empty.
	EventFinal
	// EventError carries an engine failure, or the context error when the
	// caller's context ended first. No EventFinal follows it.
	EventError
)

func (t EventType) String() string {
	switch t {
	case EventPartial:
		return "partial"
	case EventFinal:
		return "final"
	case EventError:
		return "error"
	}
	return "unknown"
}

type Event struct {
	Type EventType
	Text string
	Err  error
}

// Handler receives Response events. Nil callbacks are skipped.
type Handler struct {
	OnPartial func(chunk string)
	OnFinal   func(text string)
	OnError   func(err error)
}

// Response is the asynchronous result of a generation. Events arrive on
// Events() in order and the channel is closed once the response settles.
// Events are buffered, so the generation never waits for the reader.
type Response struct {
	ctx    context.Context
	cancel context.CancelFunc
	events chan Event
	wake   chan struct{}
	once   sync.Once

	mu        sync.Mutex
	pending   []Event
	settled   bool
	cancelled bool
	// err is set before events is closed when the response stopped because
	// its context ended.
	err error
}

func newResponse(ctx context.Context) *Response {
	ctx, cancel := context.WithCancel(ctx)
	r := &Response{
		ctx:    ctx,
		cancel: cancel,
		events: make(chan Event),
		wake:   make(chan struct{}, 1),
	}
	go r.deliver()
	return r
}

func (r *Response) Events() <-chan Event {
	return r.events
}

// Cancel stops the response. Once Cancel returns no further event is
// delivered, including the final one, and the engine stream is closed.
func (r *Response) Cancel() {
	r.mu.Lock()
	r.cancelled = true
	r.pending = nil
	r.mu.Unlock()
	r.signal()
	r.cancel()
	for range r.events {
	}
}

// Listen dispatches every event to h on the calling goroutine and returns
// when the response settles.
func (r *Response) Listen(h Handler) {
	for ev := range r.events {
		switch ev.Type {
		case EventPartial:
			if h.OnPartial != nil {
				h.OnPartial(ev.Text)
			}
		case EventFinal:
			if h.OnFinal != nil {
				h.OnFinal(ev.Text)
			}
		case EventError:
			if h.OnError != nil {
				h.OnError(ev.Err)
			}
		}
	}
}

// Wait blocks until the response settles and returns the final text. An
// empty reply yields "" with a nil error.
func (r *Response) Wait() (string, error) {
	var (
		final string
		err   error
	)
	for ev := range r.events {
		switch ev.Type {
		case EventFinal:
			final = ev.Text
		case EventError:
			err = ev.Err
		}
	}
	if err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if final == "" && r.err != nil {
		return "", r.err
	}
	return final, nil
}

// deliver forwards pending events to the events channel and closes it once
// the response has settled and nothing is left to send.
func (r *Response) deliver() {
	defer close(r.events)
	for {
		r.mu.Lock()
		if r.cancelled {
			r.pending = nil
		}
		if len(r.pending) == 0 {
			settled := r.settled
			r.mu.Unlock()
			if settled {
				return
			}
			<-r.wake
			continue
		}
		ev := r.pending[0]
		r.pending = r.pending[1:]
		r.mu.Unlock()
		r.events <- ev
	}
}

func (r *Response) signal() {
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

func (r *Response) push(ev Event) {
	r.mu.Lock()
	if !r.cancelled && !r.settled {
		r.pending = append(r.pending, ev)
	}
	r.mu.Unlock()
	r.signal()
}

// interrupted reports that the context ended before the response
// completed. It is silent after Cancel.
func (r *Response) interrupted() {
	r.push(Event{Type: EventError, Err: r.ctx.Err()})
}

func (r *Response) finish() {
	r.once.Do(func() {
		r.mu.Lock()
		if err := r.ctx.Err(); err != nil {
			r.err = err
		}
		r.settled = true
		r.mu.Unlock()
		r.signal()
		r.cancel()
	})
}

// abort settles a response that never reached the engine.
func (r *Response) abort() {
	defer r.finish()
	r.interrupted()
}

// run opens the stream and accumulates it. The response settles when run
// returns, which does not depend on the events being read.
func (r *Response) run(open func(ctx context.Context) (Stream, error), partials bool) {
	if r.ctx.Err() != nil {
		r.abort()
		return
	}
	defer r.finish()
	stream, err := open(r.ctx)
	if err != nil {
		if r.ctx.Err() != nil {
			r.interrupted()
		} else {
			r.push(Event{Type: EventError, Err: engineError(err)})
		}
		return
	}
	r.accumulate(stream, partials)
}

// accumulate reads stream to its end. Empty chunks are ignored.
func (r *Response) accumulate(stream Stream, partials bool) {
	defer stream.Close()
	var buf strings.Builder
	for {
		chunk, err := stream.Next()
		if r.ctx.Err() != nil {
			r.interrupted()
			return
		}
		if errors.Is(err, io.EOF) {
			if buf.Len() > 0 {
				r.push(Event{Type: EventFinal, Text: buf.String()})
			}
			return
		}
		if err != nil {
			r.push(Event{Type: EventError, Err: engineError(err)})
			return
		}
		if chunk == "" {
			continue
		}
		buf.WriteString(chunk)
		if partials {
			r.push(Event{Type: EventPartial, Text: chunk})
		}
	}
}

// singleChunk adapts a non-streaming reply to a one-chunk Stream.
type singleChunk struct {
	text string
	read bool
}

func newSingleChunk(text string) *singleChunk {
	return &singleChunk{text: text}
}

func (s *singleChunk) Next() (string, error) {
	if s.read {
		return "", io.EOF
	}
	s.read = true
	return s.text, nil
}

func (s *singleChunk) Close() error {
	return nil
}

// Future is a single asynchronous value.
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

func (f *Future[T]) resolve(v T, err error) {
	f.value, f.err = v, err
	close(f.done)
}

// Done is closed once the value is available.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Get waits for the value or for ctx to end.
func (f *Future[T]) Get(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Then invokes onValue or onError on a new goroutine once the value is ready.
func (f *Future[T]) Then(onValue func(T), onError func(error)) {
	go func() {
		<-f.done
		if f.err != nil {
			if onError != nil {
				onError(f.err)
			}
			return
		}
		if onValue != nil {
			onValue(f.value)
		}
	}()
}

// queue serializes jobs in submission order. Each job waits for the previous
// one to release.
type queue struct {
	mu   sync.Mutex
	tail chan struct{}
}

func newQueue() *queue {
	tail := make(chan struct{})
	close(tail)
	return &queue{tail: tail}
}

func (q *queue) enqueue() (<-chan struct{}, func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	prev := q.tail
	mine := make(chan struct{})
	q.tail = mine
	return prev, func() { close(mine) }
}
