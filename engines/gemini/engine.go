// Package gemini runs sessions against the Google Gemini API.
package gemini

import (
	"context"

	gemini "github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/bububa/genchat"
)

type Engine struct {
	*gemini.Client
	genchat.Options
}

var _ genchat.Engine = (*Engine)(nil)

func New(client *gemini.Client, opts ...genchat.Option) *Engine {
	return &Engine{
		Client:  client,
		Options: genchat.NewOptions(opts...),
	}
}

// Dial creates a client authenticated with apiKey.
func Dial(ctx context.Context, apiKey string, opts ...genchat.Option) (*Engine, error) {
	client, err := gemini.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return New(client, opts...), nil
}

func (e *Engine) Provider() genchat.Provider {
	return genchat.ProviderGemini
}

func (e *Engine) Configure(_ context.Context, cfg genchat.ModelConfig) (genchat.Model, error) {
	model := e.GenerativeModel(cfg.ModelName)
	applyGeneration(model, cfg.Generation)
	model.SafetySettings = safetySettings(cfg.Safety)
	if e.Verbose() {
		e.Logger().Debug("gemini model", zap.String("model", cfg.ModelName), zap.Int("safety", len(model.SafetySettings)))
	}
	return &Model{GenerativeModel: model, Options: e.Options}, nil
}

func applyGeneration(model *gemini.GenerativeModel, g genchat.GenerationConfig) {
	model.Temperature = g.Temperature
	model.TopK = g.TopK
	model.TopP = g.TopP
	model.MaxOutputTokens = g.MaxOutputTokens
	model.CandidateCount = g.CandidateCount
	model.StopSequences = g.StopSequences
}

func safetySettings(list []genchat.SafetySetting) []*gemini.SafetySetting {
	if len(list) == 0 {
		return nil
	}
	ret := make([]*gemini.SafetySetting, 0, len(list))
	for _, v := range list {
		ret = append(ret, &gemini.SafetySetting{
			Category:  harmCategory(v.Category),
			Threshold: blockThreshold(v.Threshold),
		})
	}
	return ret
}

func harmCategory(c genchat.HarmCategory) gemini.HarmCategory {
	switch c {
	case genchat.HarmCategoryHarassment:
		return gemini.HarmCategoryHarassment
	case genchat.HarmCategoryHateSpeech:
		return gemini.HarmCategoryHateSpeech
	case genchat.HarmCategorySexuallyExplicit:
		return gemini.HarmCategorySexuallyExplicit
	case genchat.HarmCategoryDangerousContent:
		return gemini.HarmCategoryDangerousContent
	}
	return gemini.HarmCategoryUnspecified
}

func blockThreshold(t genchat.BlockThreshold) gemini.HarmBlockThreshold {
	switch t {
	case genchat.BlockLowAndAbove:
		return gemini.HarmBlockLowAndAbove
	case genchat.BlockMediumAndAbove:
		return gemini.HarmBlockMediumAndAbove
	case genchat.BlockOnlyHigh:
		return gemini.HarmBlockOnlyHigh
	case genchat.BlockNone:
		return gemini.HarmBlockNone
	}
	return gemini.HarmBlockUnspecified
}
