package ai

import (
	"errors"
	"strings"
)

// Model is a provider-specific model key accepted by the generation endpoints.
type Model string

const (
	ModelGPT4oMini           Model = "gpt-4o-mini"
	ModelGeminiFlash         Model = "gemini-2.0-flash-001"
	ModelGeminiFlashThinking Model = "gemini-2.0-flash-thinking-exp-01-21"
	ModelClaudeHaiku         Model = "claude-3-5-haiku-latest"
)

// Vendor identifies the provider family serving a model.
type Vendor string

const (
	VendorOpenAI    Vendor = "openai"
	VendorGemini    Vendor = "gemini"
	VendorAnthropic Vendor = "anthropic"
)

var (
	ErrUnsupportedModel      = errors.New("Invalid model specified")
	ErrProviderNotConfigured = errors.New("provider not configured")
	ErrEmptyResponse         = errors.New("No response from model, please try again later")
	ErrUnparseableResponse   = errors.New("Failed to parse AI response as JSON, please try again")
)

var modelVendors = map[Model]Vendor{
	ModelGPT4oMini:           VendorOpenAI,
	ModelGeminiFlash:         VendorGemini,
	ModelGeminiFlashThinking: VendorGemini,
	ModelClaudeHaiku:         VendorAnthropic,
}

// ParseModel maps a request key onto the closed set of supported models.
func ParseModel(raw string) (Model, error) {
	m := Model(strings.TrimSpace(raw))
	if _, ok := modelVendors[m]; !ok {
		return "", ErrUnsupportedModel
	}
	return m, nil
}

// Vendor reports which provider family serves m.
func (m Model) Vendor() Vendor { return modelVendors[m] }

func (m Model) String() string { return string(m) }

// Models lists every supported key.
func Models() []Model {
	return []Model{ModelGPT4oMini, ModelGeminiFlash, ModelGeminiFlashThinking, ModelClaudeHaiku}
}
