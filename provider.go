package genchat

type Provider = string

const (
	ProviderGemini    Provider = "Gemini"
	ProviderOpenAI    Provider = "OpenAI"
	ProviderAnthropic Provider = "Anthropic"
	ProviderCohere    Provider = "Cohere"
	ProviderMock      Provider = "Mock"
)
