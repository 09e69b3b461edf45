package genchat

import (
	"context"
	"image"
)

// Kind is the part kind token exchanged with an engine.
type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
	KindBlob  Kind = "blob"
)

// Role tokens exchanged with an engine.
const (
	EngineRoleUser  = "user"
	EngineRoleModel = "model"
)

// EnginePart is the engine-native form of a part. Kind selects which payload
// fields are meaningful. Image may accompany a blob that was produced by
// encoding an image, so the reverse mapping can restore it.
type EnginePart struct {
	Kind     Kind
	Text     string
	Image    image.Image
	Data     []byte
	MIMEType string
}

// EngineTurn is the engine-native form of a Turn.
type EngineTurn struct {
	Role  string
	Parts []EnginePart
}

// Engine performs the remote model calls. Configure binds a model name,
// generation options and safety thresholds into a Model.
type Engine interface {
	Provider() Provider
	Configure(ctx context.Context, cfg ModelConfig) (Model, error)
}

// Model is a configured engine model.
type Model interface {
	Generate(ctx context.Context, turn EngineTurn) (string, error)
	GenerateStream(ctx context.Context, turn EngineTurn) (Stream, error)
	CountTokens(ctx context.Context, turns []EngineTurn) (int, error)
	StartChat(ctx context.Context, history []EngineTurn) (ChatHandle, error)
}

// ChatHandle is an engine chat. The engine owns the authoritative history.
type ChatHandle interface {
	Send(ctx context.Context, turn EngineTurn) (string, error)
	SendStream(ctx context.Context, turn EngineTurn) (Stream, error)
	History() []EngineTurn
}

// Stream is a finite, single-pass sequence of text chunks. Next returns
// io.EOF once the stream completed successfully.
type Stream interface {
	Next() (string, error)
	Close() error
}
