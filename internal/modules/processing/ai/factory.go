package ai

import (
	"context"
	"fmt"

	"github.com/stylescanner/server/internal/config"
	"go.uber.org/zap"
)

// NewFromConfig builds a dispatcher with one client per provider that has an API key.
func NewFromConfig(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) (*Dispatcher, error) {
	timeout := cfg.AITimeout()
	providers := map[Vendor]Provider{}

	if cfg.AI.OpenAIAPIKey != "" {
		providers[VendorOpenAI] = NewOpenAIProvider(cfg.AI.OpenAIAPIKey, cfg.AI.OpenAIBaseURL, timeout)
	}
	if cfg.AI.GeminiAPIKey != "" {
		gemini, err := NewGeminiProvider(ctx, cfg.AI.GeminiAPIKey, "", timeout)
		if err != nil {
			return nil, fmt.Errorf("gemini client: %w", err)
		}
		providers[VendorGemini] = gemini
	}
	if cfg.AI.AnthropicAPIKey != "" {
		providers[VendorAnthropic] = NewAnthropicProvider(cfg.AI.AnthropicAPIKey, "", timeout)
	}

	for _, m := range Models() {
		if _, ok := providers[m.Vendor()]; !ok {
			logger.Warn("model unavailable, provider key missing", zap.String("model", m.String()))
		}
	}
	return NewDispatcher(logger, providers), nil
}
