package genchat

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured is returned synchronously when an operation needs a
	// model configuration and Initialize has not succeeded yet.
	ErrNotConfigured = errors.New("model not initialized")
	// ErrNoActiveChat is returned synchronously by chat operations when no
	// chat has been started.
	ErrNoActiveChat = errors.New("chat not initialized")
	// ErrEmptyTurn is returned when a turn would carry neither text nor media.
	ErrEmptyTurn = errors.New("turn has no text and no media")
	// ErrUnknownPartKind matches every *UnknownPartKindError.
	ErrUnknownPartKind = errors.New("unknown part kind")
	// ErrEngine matches every *EngineError.
	ErrEngine = errors.New("engine error")

	ErrInvalidMedia          = errors.New("media must be an image or a blob")
	ErrMissingMIMEType       = errors.New("blob requires a mime type")
	ErrUnknownRole           = errors.New("unknown role")
	ErrInvalidOption         = errors.New("invalid option value")
	ErrUnsupportedPart       = errors.New("part kind not supported by engine")
	ErrTokenCountUnsupported = errors.New("token counting not supported by engine")
)

// UnknownPartKindError reports a part kind outside {text, image, blob} read
// from the engine. It aborts the whole translation.
type UnknownPartKindError struct {
	Kind Kind
	Turn int
}

func (e *UnknownPartKindError) Error() string {
	return fmt.Sprintf("unknown history part type: %s (turn %d)", e.Kind, e.Turn)
}

func (e *UnknownPartKindError) Is(target error) bool {
	return target == ErrUnknownPartKind
}

// EngineError carries a failure surfaced by the engine. Its message is the
// engine's message verbatim.
type EngineError struct {
	Err error
}

func (e *EngineError) Error() string {
	return e.Err.Error()
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

func (e *EngineError) Is(target error) bool {
	return target == ErrEngine
}

func engineError(err error) error {
	if err == nil {
		return nil
	}
	var ee *EngineError
	if errors.As(err, &ee) {
		return err
	}
	return &EngineError{Err: err}
}
