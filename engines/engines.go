// Package engines collects the engine constructors.
package engines

import (
	"github.com/bububa/genchat/engines/anthropic"
	"github.com/bububa/genchat/engines/cohere"
	"github.com/bububa/genchat/engines/gemini"
	"github.com/bububa/genchat/engines/mock"
	"github.com/bububa/genchat/engines/openai"
)

var (
	FromGemini    = gemini.New
	FromOpenAI    = openai.New
	FromAnthropic = anthropic.New
	FromCohere    = cohere.New
	Mock          = mock.New
)
