package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v6"
	cohereClient "github.com/cohere-ai/cohere-go/v2/client"
	cohereOption "github.com/cohere-ai/cohere-go/v2/option"
	anthropicSDK "github.com/liushuangls/go-anthropic/v2"
	openaiSDK "github.com/sashabaranov/go-openai"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/bububa/genchat"
	"github.com/bububa/genchat/engines"
	"github.com/bububa/genchat/engines/gemini"
)

type credentials struct {
	Gemini        string `env:"GEMINI_API_KEY"`
	OpenAI        string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`
	Anthropic     string `env:"ANTHROPIC_API_KEY"`
	Cohere        string `env:"COHERE_API_KEY"`
}

// newSession builds and initializes a session for the configured engine.
// The returned func releases the engine client.
func newSession(ctx context.Context) (*genchat.Session, func(), error) {
	logger := newLogger()
	opts := []genchat.Option{genchat.WithLogger(logger)}
	if viper.GetBool("verbose") {
		opts = append(opts, genchat.WithVerbose())
	}
	var creds credentials
	if err := env.Parse(&creds); err != nil {
		return nil, nil, err
	}
	release := func() { _ = logger.Sync() }
	var engine genchat.Engine
	switch name := strings.ToLower(viper.GetString("engine")); name {
	case genchat.ProviderGemini:
		e, err := gemini.Dial(ctx, creds.Gemini, opts...)
		if err != nil {
			return nil, nil, err
		}
		release = func() {
			_ = e.Close()
			_ = logger.Sync()
		}
		engine = e
	case genchat.ProviderOpenAI:
		cfg := openaiSDK.DefaultConfig(creds.OpenAI)
		if creds.OpenAIBaseURL != "" {
			cfg.BaseURL = creds.OpenAIBaseURL
		}
		engine = engines.FromOpenAI(openaiSDK.NewClientWithConfig(cfg), opts...)
	case genchat.ProviderAnthropic:
		engine = engines.FromAnthropic(anthropicSDK.NewClient(creds.Anthropic), opts...)
	case genchat.ProviderCohere:
		engine = engines.FromCohere(cohereClient.NewClient(cohereOption.WithToken(creds.Cohere)), opts...)
	case genchat.ProviderMock:
		engine = engines.Mock(opts...)
	default:
		return nil, nil, fmt.Errorf("unknown engine %q", name)
	}

	cfg, err := modelConfig()
	if err != nil {
		release()
		return nil, nil, err
	}
	session := genchat.New(engine, opts...)
	if err := session.Initialize(ctx, cfg); err != nil {
		release()
		return nil, nil, err
	}
	logger.Debug("session ready", zap.String("session", session.ID()), zap.String("model", cfg.ModelName))
	return session, release, nil
}

func modelConfig() (genchat.ModelConfig, error) {
	if filename := viper.GetString("config"); filename != "" {
		return genchat.LoadModelConfig(filename)
	}
	return genchat.NewModelConfig(viper.GetString("model"), nil, nil)
}
