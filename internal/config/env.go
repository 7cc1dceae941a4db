package config

import (
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// loadDotEnv populates the process environment from ./.env when present.
// Variables already set in the environment win.
func loadDotEnv() {
	_ = godotenv.Load()
}

// applyEnv overrides secrets and deployment settings from the environment.
func applyEnv(cfg *AppConfig, lookup func(string) (string, bool)) {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	if v, ok := lookup("PORT"); ok {
		if port, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			cfg.Port = port
		}
	}
	if v, ok := lookup("NODE_ENV"); ok && strings.TrimSpace(v) != "" {
		cfg.Env = normalizeEnv(v)
	}
	if v, ok := lookup("APP_ENV"); ok && strings.TrimSpace(v) != "" {
		cfg.Env = normalizeEnv(v)
	}
	if v, ok := lookup("DATABASE_DRIVER"); ok && strings.TrimSpace(v) != "" {
		cfg.Database.Driver = normalizeDriver(v)
	}
	str("DATABASE_DSN", &cfg.Database.DSN)
	str("REDIS_URL", &cfg.RedisURL)
	str("JWT_SECRET", &cfg.JWTSecret)
	str("SITE_URL", &cfg.SiteURL)
	str("TZ", &cfg.Timezone)

	str("OPENAI_KEY", &cfg.AI.OpenAIAPIKey)
	str("OPENAI_API_KEY", &cfg.AI.OpenAIAPIKey)
	str("OPENAI_BASE_URL", &cfg.AI.OpenAIBaseURL)
	str("GEMINI_API_KEY", &cfg.AI.GeminiAPIKey)
	str("ANTHROPIC_API_KEY", &cfg.AI.AnthropicAPIKey)
	str("UNSPLASH_API_KEY", &cfg.Images.UnsplashAccessKey)

	str("STRIPE_KEY", &cfg.Stripe.SecretKey)
	str("STRIPE_WH_SECRET", &cfg.Stripe.WebhookSecret)
	str("GA_MEASUREMENT_ID", &cfg.Analytics.MeasurementID)
	str("GA_API_SECRET", &cfg.Analytics.APISecret)

	str("S3_BUCKET", &cfg.S3.Bucket)
	str("S3_REGION", &cfg.S3.Region)
	str("S3_ENDPOINT", &cfg.S3.Endpoint)
	str("S3_ACCESS_KEY_ID", &cfg.S3.AccessKeyID)
	str("S3_SECRET_ACCESS_KEY", &cfg.S3.SecretAccessKey)

	str("MONGODB_URI", &cfg.Mongo.URI)
}
