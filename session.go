package genchat

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Session binds an Engine to a model configuration and at most one chat.
//
// Precondition failures are returned synchronously. Operations that reach
// the engine return a *Response or a *Future and never block the caller.
// Chat operations run one at a time in submission order.
type Session struct {
	Options
	id     string
	engine Engine

	mu     sync.RWMutex
	config *ModelConfig
	model  Model
	chat   *chatState
}

type chatState struct {
	*queue
	// handle and err are written by the start job before it releases its
	// queue slot.
	handle ChatHandle
	err    error
}

func New(engine Engine, opts ...Option) *Session {
	s := &Session{
		Options: NewOptions(opts...),
		engine:  engine,
	}
	if id, err := uuid.NewV7(); err == nil {
		s.id = id.String()
	} else {
		s.id = uuid.NewString()
	}
	s.logger = s.logger.With(zap.String("session", s.id), zap.String("provider", engine.Provider()))
	return s
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Engine() Engine {
	return s.engine
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch {
	case s.chat != nil:
		return StateChatActive
	case s.model != nil:
		return StateConfigured
	}
	return StateUninitialized
}

// Config returns the configuration of the last successful Initialize.
func (s *Session) Config() (ModelConfig, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.config == nil {
		return ModelConfig{}, false
	}
	return *s.config, true
}

// Initialize configures the model. It replaces any previous configuration
// and discards the active chat.
func (s *Session) Initialize(ctx context.Context, cfg ModelConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	model, err := s.engine.Configure(ctx, cfg)
	if err != nil {
		s.logger.Error("configure model", zap.String("model", cfg.ModelName), zap.Error(err))
		return engineError(err)
	}
	s.mu.Lock()
	s.config = &cfg
	s.model = model
	s.chat = nil
	s.mu.Unlock()
	s.logger.Info("model configured", zap.String("model", cfg.ModelName))
	return nil
}

// StartChat opens a chat seeded with history, replacing any active chat.
// The session enters StateChatActive immediately; chat operations submitted
// afterwards run once the engine chat exists and fail with its error if it
// could not be created.
func (s *Session) StartChat(ctx context.Context, history History) (*Future[struct{}], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.model == nil {
		return nil, ErrNotConfigured
	}
	turns, err := ToEngine(history, s.imageEncoder)
	if err != nil {
		return nil, err
	}
	chat := &chatState{queue: newQueue()}
	s.chat = chat
	model := s.model
	future := newFuture[struct{}]()
	wait, release := chat.enqueue()
	go func() {
		defer release()
		<-wait
		handle, err := model.StartChat(ctx, turns)
		chat.handle, chat.err = handle, engineError(err)
		if err != nil {
			s.logger.Error("start chat", zap.Error(err))
		} else if s.verbose {
			s.logger.Debug("chat started", zap.Int("history", len(turns)))
		}
		future.resolve(struct{}{}, chat.err)
	}()
	return future, nil
}

// Send generates a one-shot reply outside any chat. The Response carries a
// single final event.
func (s *Session) Send(ctx context.Context, text string, media ...Part) (*Response, error) {
	return s.generate(ctx, text, media, false)
}

// SendStream generates a one-shot reply outside any chat, emitting a partial
// event per chunk.
func (s *Session) SendStream(ctx context.Context, text string, media ...Part) (*Response, error) {
	return s.generate(ctx, text, media, true)
}

func (s *Session) generate(ctx context.Context, text string, media []Part, stream bool) (*Response, error) {
	model, err := s.currentModel()
	if err != nil {
		return nil, err
	}
	turn, err := s.buildEngineTurn(text, media)
	if err != nil {
		return nil, err
	}
	s.debug("generate", turn, stream)
	resp := newResponse(ctx)
	go resp.run(func(ctx context.Context) (Stream, error) {
		if stream {
			return model.GenerateStream(ctx, turn)
		}
		reply, err := model.Generate(ctx, turn)
		if err != nil {
			return nil, err
		}
		return newSingleChunk(reply), nil
	}, stream)
	return resp, nil
}

// CountTokens counts the tokens of a single user turn.
func (s *Session) CountTokens(ctx context.Context, text string, media ...Part) (*Future[int], error) {
	model, err := s.currentModel()
	if err != nil {
		return nil, err
	}
	turn, err := s.buildEngineTurn(text, media)
	if err != nil {
		return nil, err
	}
	future := newFuture[int]()
	go func() {
		n, err := model.CountTokens(ctx, []EngineTurn{turn})
		future.resolve(n, engineError(err))
	}()
	return future, nil
}

// SendChat sends a turn in the active chat. On success the engine history
// gains the user turn and the reply.
func (s *Session) SendChat(ctx context.Context, text string, media ...Part) (*Response, error) {
	return s.chatSend(ctx, text, media, false)
}

// SendChatStream is SendChat with a partial event per chunk. The engine
// history is updated once the stream completes.
func (s *Session) SendChatStream(ctx context.Context, text string, media ...Part) (*Response, error) {
	return s.chatSend(ctx, text, media, true)
}

func (s *Session) chatSend(ctx context.Context, text string, media []Part, stream bool) (*Response, error) {
	chat, _, err := s.activeChat()
	if err != nil {
		return nil, err
	}
	turn, err := s.buildEngineTurn(text, media)
	if err != nil {
		return nil, err
	}
	s.debug("chat send", turn, stream)
	resp := newResponse(ctx)
	wait, release := chat.enqueue()
	go func() {
		defer release()
		select {
		case <-wait:
		case <-resp.ctx.Done():
			resp.abort()
			<-wait
			return
		}
		resp.run(func(ctx context.Context) (Stream, error) {
			if chat.err != nil {
				return nil, chat.err
			}
			if stream {
				return chat.handle.SendStream(ctx, turn)
			}
			reply, err := chat.handle.Send(ctx, turn)
			if err != nil {
				return nil, err
			}
			return newSingleChunk(reply), nil
		}, stream)
	}()
	return resp, nil
}

// CountChatTokens counts the chat history plus a prospective user turn
// without sending it. The history is never modified. With no text and no
// media only the history is counted.
func (s *Session) CountChatTokens(ctx context.Context, text string, media ...Part) (*Future[int], error) {
	chat, model, err := s.activeChat()
	if err != nil {
		return nil, err
	}
	var extra *EngineTurn
	if text != "" || len(media) > 0 {
		turn, err := s.buildEngineTurn(text, media)
		if err != nil {
			return nil, err
		}
		extra = &turn
	}
	future := newFuture[int]()
	wait, release := chat.enqueue()
	go func() {
		defer release()
		<-wait
		if chat.err != nil {
			future.resolve(0, chat.err)
			return
		}
		turns := slices.Clone(chat.handle.History())
		if extra != nil {
			turns = append(turns, *extra)
		}
		if len(turns) == 0 {
			future.resolve(0, nil)
			return
		}
		n, err := model.CountTokens(ctx, turns)
		future.resolve(n, engineError(err))
	}()
	return future, nil
}

// ChatHistory snapshots the engine history once every chat operation
// submitted before it has finished.
func (s *Session) ChatHistory(ctx context.Context) (*Future[History], error) {
	chat, _, err := s.activeChat()
	if err != nil {
		return nil, err
	}
	future := newFuture[History]()
	wait, release := chat.enqueue()
	go func() {
		defer release()
		<-wait
		if chat.err != nil {
			future.resolve(History{}, chat.err)
			return
		}
		if err := ctx.Err(); err != nil {
			future.resolve(History{}, err)
			return
		}
		h, err := FromEngine(chat.handle.History())
		if err != nil {
			s.logger.Warn("read chat history", zap.Error(err))
		}
		future.resolve(h, err)
	}()
	return future, nil
}

func (s *Session) currentModel() (Model, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.model == nil {
		return nil, ErrNotConfigured
	}
	return s.model, nil
}

func (s *Session) activeChat() (*chatState, Model, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.model == nil {
		return nil, nil, ErrNotConfigured
	}
	if s.chat == nil {
		return nil, nil, ErrNoActiveChat
	}
	return s.chat, s.model, nil
}

func (s *Session) buildEngineTurn(text string, media []Part) (EngineTurn, error) {
	turn, err := BuildTurn(text, media...)
	if err != nil {
		return EngineTurn{}, err
	}
	return TurnToEngine(turn, s.imageEncoder)
}

func (s *Session) debug(op string, turn EngineTurn, stream bool) {
	if !s.verbose {
		return
	}
	s.logger.Debug(op, zap.Int("parts", len(turn.Parts)), zap.Bool("stream", stream))
}
