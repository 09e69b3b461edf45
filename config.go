package genchat

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bububa/ljson"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// HarmCategory is a safety category understood by the engine.
type HarmCategory string

const (
	HarmCategoryUnspecified      HarmCategory = "UNSPECIFIED"
	HarmCategoryHarassment       HarmCategory = "HARASSMENT"
	HarmCategoryHateSpeech       HarmCategory = "HATE_SPEECH"
	HarmCategorySexuallyExplicit HarmCategory = "SEXUALLY_EXPLICIT"
	HarmCategoryDangerousContent HarmCategory = "DANGEROUS_CONTENT"
)

// BlockThreshold is the level at which content of a category is blocked.
type BlockThreshold string

const (
	BlockUnspecified    BlockThreshold = "UNSPECIFIED"
	BlockLowAndAbove    BlockThreshold = "LOW_AND_ABOVE"
	BlockMediumAndAbove BlockThreshold = "MEDIUM_AND_ABOVE"
	BlockOnlyHigh       BlockThreshold = "ONLY_HIGH"
	BlockNone           BlockThreshold = "NONE"
)

var harmCategories = []HarmCategory{
	HarmCategoryHarassment,
	HarmCategoryHateSpeech,
	HarmCategorySexuallyExplicit,
	HarmCategoryDangerousContent,
	HarmCategoryUnspecified,
}

// ParseBlockThreshold maps a threshold name to a BlockThreshold. Unknown
// names map to BlockUnspecified.
func ParseBlockThreshold(s string) BlockThreshold {
	switch t := BlockThreshold(s); t {
	case BlockNone, BlockOnlyHigh, BlockMediumAndAbove, BlockLowAndAbove:
		return t
	}
	return BlockUnspecified
}

type SafetySetting struct {
	Category  HarmCategory   `json:"category"`
	Threshold BlockThreshold `json:"threshold"`
}

// GenerationConfig holds the fixed set of generation options. Nil fields are
// left to the engine's defaults.
type GenerationConfig struct {
	Temperature     *float32 `json:"temperature,omitempty" validate:"omitempty,gte=0,lte=2"`
	TopK            *int32   `json:"topK,omitempty" validate:"omitempty,gte=1"`
	TopP            *float32 `json:"topP,omitempty" validate:"omitempty,gte=0,lte=1"`
	MaxOutputTokens *int32   `json:"maxOutputTokens,omitempty" validate:"omitempty,gte=1"`
	CandidateCount  *int32   `json:"candidateCount,omitempty" validate:"omitempty,gte=1"`
	StopSequences   []string `json:"stopSequences,omitempty" validate:"omitempty,max=5,dive,required"`
}

// ModelConfig is what Session.Initialize hands to the engine.
type ModelConfig struct {
	ModelName  string           `json:"model" validate:"required"`
	Generation GenerationConfig `json:"generation"`
	Safety     []SafetySetting  `json:"safety,omitempty"`
}

// Validate checks option ranges.
func (c ModelConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOption, err)
	}
	return nil
}

// NewModelConfig builds a ModelConfig from loosely typed maps as a host
// bridge would hand them over. Unknown option names and unknown safety
// categories are ignored. A value that cannot be coerced to the option's
// type is an ErrInvalidOption.
func NewModelConfig(modelName string, options map[string]any, safety map[string]string) (ModelConfig, error) {
	cfg := ModelConfig{ModelName: modelName}
	for key, value := range options {
		if err := cfg.Generation.set(key, value); err != nil {
			return cfg, fmt.Errorf("%w: %s: %w", ErrInvalidOption, key, err)
		}
	}
	for _, category := range harmCategories {
		if level, ok := safety[string(category)]; ok {
			cfg.Safety = append(cfg.Safety, SafetySetting{
				Category:  category,
				Threshold: ParseBlockThreshold(level),
			})
		}
	}
	return cfg, cfg.Validate()
}

func (g *GenerationConfig) set(key string, value any) error {
	switch key {
	case "temperature":
		v, err := cast.ToFloat32E(value)
		if err != nil {
			return err
		}
		g.Temperature = &v
	case "topK":
		v, err := cast.ToInt32E(value)
		if err != nil {
			return err
		}
		g.TopK = &v
	case "topP":
		v, err := cast.ToFloat32E(value)
		if err != nil {
			return err
		}
		g.TopP = &v
	case "maxOutputTokens":
		v, err := cast.ToInt32E(value)
		if err != nil {
			return err
		}
		g.MaxOutputTokens = &v
	case "candidateCount":
		v, err := cast.ToInt32E(value)
		if err != nil {
			return err
		}
		g.CandidateCount = &v
	case "stopSequences":
		v, err := cast.ToStringSliceE(value)
		if err != nil {
			return err
		}
		g.StopSequences = v
	}
	return nil
}

type configFile struct {
	Model      string            `json:"model" yaml:"model" toml:"model"`
	Generation map[string]any    `json:"generation" yaml:"generation" toml:"generation"`
	Safety     map[string]string `json:"safety" yaml:"safety" toml:"safety"`
}

// LoadModelConfig reads a model configuration file. The format follows the
// extension: .yaml/.yml, .toml or .json.
func LoadModelConfig(filename string) (ModelConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return ModelConfig{}, fmt.Errorf("failed to read config file: %w", err)
	}
	var f configFile
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &f)
	case ".toml":
		err = toml.Unmarshal(data, &f)
	case ".json":
		err = ljson.Unmarshal(data, &f)
	default:
		return ModelConfig{}, fmt.Errorf("unsupported config format %q", ext)
	}
	if err != nil {
		return ModelConfig{}, fmt.Errorf("failed to parse config file: %w", err)
	}
	return NewModelConfig(f.Model, f.Generation, f.Safety)
}

// SafetyThreshold returns the threshold configured for category.
func (c ModelConfig) SafetyThreshold(category HarmCategory) (BlockThreshold, bool) {
	i := slices.IndexFunc(c.Safety, func(s SafetySetting) bool {
		return s.Category == category
	})
	if i < 0 {
		return "", false
	}
	return c.Safety[i].Threshold, true
}
