package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML config at configPath, then applies .env and process
// environment overrides. A missing default config file yields the defaults.
func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	if path == "" {
		path = DefaultConfigPath
	}

	cfg := defaultAppConfig()

	content, err := os.ReadFile(path)
	switch {
	case err == nil:
		decoder := yaml.NewDecoder(bytes.NewReader(content))
		decoder.KnownFields(true)
		raw := rawAppConfig{}
		if err := decoder.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse config file %q: %w", path, err)
		}
		applyRawAppConfig(&cfg, raw)
	case errors.Is(err, fs.ErrNotExist) && path == DefaultConfigPath:
		// defaults + environment only
	default:
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}

	loadDotEnv()
	applyEnv(&cfg, os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %q: %w", path, err)
	}
	return &cfg, nil
}

// Validate reports the first invalid setting.
func (c *AppConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d, expected 1-65535", c.Port)
	}
	switch c.Database.Driver {
	case DriverMySQL, DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported database.driver %q", c.Database.Driver)
	}
	if c.Database.Driver != DriverSQLite && (c.Database.Port < 1 || c.Database.Port > 65535) {
		return fmt.Errorf("invalid database.port %d, expected 1-65535", c.Database.Port)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	if c.Limits.InsightDaily < 1 || c.Limits.PresentationDaily < 1 {
		return fmt.Errorf("limits.insight_daily and limits.presentation_daily must be positive")
	}
	if c.Limits.APIWindowMinutes < 1 || c.Limits.APIMaxRequests < 1 {
		return fmt.Errorf("limits.api_window_minutes and limits.api_max_requests must be positive")
	}
	if c.Limits.BodyLimitMB < 1 {
		return fmt.Errorf("limits.body_limit_mb must be positive")
	}
	if c.Images.RequestsPerSecond <= 0 {
		return fmt.Errorf("images.requests_per_second must be positive")
	}
	return nil
}

func defaultAppConfig() AppConfig {
	cfg := AppConfig{
		Port:     defaultPort,
		Env:      defaultEnv,
		Timezone: defaultTimezone,
		SiteURL:  defaultSiteURL,
		RedisURL: defaultRedisURL,
		Database: DatabaseRuntimeConfig{
			Driver:    defaultDBDriver,
			Host:      defaultDBHost,
			Port:      defaultDBPort,
			User:      defaultDBUser,
			Password:  defaultDBPassword,
			Name:      defaultDBName,
			Charset:   defaultDBCharset,
			ParseTime: true,
			Loc:       defaultDBLoc,
		},
		AI: AIConfig{
			DefaultModel:   defaultAIModel,
			TimeoutSeconds: defaultAITimeoutSeconds,
		},
		Images: ImageSearchConfig{
			UnsplashEndpoint:  defaultUnsplashEndpoint,
			ScrapeEnabled:     true,
			RequestsPerSecond: defaultImageRPS,
		},
		Limits: LimitsConfig{
			InsightDaily:      defaultInsightDaily,
			PresentationDaily: defaultPresentationDaily,
			APIWindowMinutes:  defaultAPIWindowMinutes,
			APIMaxRequests:    defaultAPIMaxRequests,
			BodyLimitMB:       defaultBodyLimitMB,
		},
		Mongo: MongoConfig{Database: defaultMongoDatabase},
	}
	return cfg
}

func applyRawAppConfig(cfg *AppConfig, raw rawAppConfig) {
	if raw.Port != 0 {
		cfg.Port = raw.Port
	}
	if v := strings.TrimSpace(raw.Env); v != "" {
		cfg.Env = normalizeEnv(v)
	}
	if v := strings.TrimSpace(raw.NodeEnv); v != "" {
		cfg.Env = normalizeEnv(v)
	}
	if v := strings.TrimSpace(raw.Timezone); v != "" {
		cfg.Timezone = v
	}
	if v := strings.TrimSpace(raw.TZ); v != "" {
		cfg.Timezone = v
	}
	if v := strings.TrimSpace(raw.SiteURL); v != "" {
		cfg.SiteURL = strings.TrimRight(v, "/")
	}
	if raw.AllowedOrigins != nil {
		cfg.AllowedOrigins = normalizeOrigins(raw.AllowedOrigins)
	}
	if v := strings.TrimSpace(raw.JWTSecret); v != "" {
		cfg.JWTSecret = v
	}
	if v := strings.TrimSpace(raw.RedisURL); v != "" {
		cfg.RedisURL = v
	}
	cfg.Database = applyRawDatabaseConfig(cfg.Database, raw.Database)
	cfg.Paths = mergePaths(cfg.Paths, raw.Paths)
	cfg.AI = mergeAI(cfg.AI, raw.AI)
	cfg.Images = mergeImages(cfg.Images, raw.Images)
	cfg.Limits = mergeLimits(cfg.Limits, raw.Limits)

	if v := strings.TrimSpace(raw.Stripe.SecretKey); v != "" {
		cfg.Stripe.SecretKey = v
	}
	if v := strings.TrimSpace(raw.Stripe.WebhookSecret); v != "" {
		cfg.Stripe.WebhookSecret = v
	}
	if v := strings.TrimSpace(raw.Analytics.MeasurementID); v != "" {
		cfg.Analytics.MeasurementID = v
	}
	if v := strings.TrimSpace(raw.Analytics.APISecret); v != "" {
		cfg.Analytics.APISecret = v
	}
	cfg.S3 = normalizeS3(raw.S3)
	if v := strings.TrimSpace(raw.Mongo.URI); v != "" {
		cfg.Mongo.URI = v
	}
	if v := strings.TrimSpace(raw.Mongo.Database); v != "" {
		cfg.Mongo.Database = v
	}
}

func applyRawDatabaseConfig(current DatabaseRuntimeConfig, raw rawDatabaseConfig) DatabaseRuntimeConfig {
	out := current
	if v := strings.TrimSpace(raw.Driver); v != "" {
		out.Driver = normalizeDriver(v)
		if out.Driver == DriverPostgres && raw.Port == 0 {
			out.Port = 5432
		}
	}
	if v := strings.TrimSpace(raw.DSN); v != "" {
		out.DSN = v
	}
	if v := strings.TrimSpace(raw.URL); v != "" && out.DSN == "" {
		out.DSN = v
	}
	if v := strings.TrimSpace(raw.Host); v != "" {
		out.Host = v
	}
	if raw.Port != 0 {
		out.Port = raw.Port
	}
	if v := strings.TrimSpace(raw.User); v != "" {
		out.User = v
	}
	if raw.Password != "" {
		out.Password = raw.Password
	}
	if v := strings.TrimSpace(raw.Name); v != "" {
		out.Name = v
	}
	if v := strings.TrimSpace(raw.Charset); v != "" {
		out.Charset = v
	}
	if raw.ParseTime != nil {
		out.ParseTime = *raw.ParseTime
	}
	if v := strings.TrimSpace(raw.Loc); v != "" {
		out.Loc = v
	}
	if raw.Params != nil {
		out.Params = copyStringMap(raw.Params)
	}
	return out
}

func mergePaths(current, raw RuntimePathsConfig) RuntimePathsConfig {
	raw = normalizeRuntimePaths(raw)
	if raw.Logs != "" {
		current.Logs = raw.Logs
	}
	if raw.Static != "" {
		current.Static = raw.Static
	}
	if raw.Docs != "" {
		current.Docs = raw.Docs
	}
	if raw.Schemas != "" {
		current.Schemas = raw.Schemas
	}
	return current
}

func mergeAI(current, raw AIConfig) AIConfig {
	if v := strings.TrimSpace(raw.OpenAIAPIKey); v != "" {
		current.OpenAIAPIKey = v
	}
	if v := strings.TrimSpace(raw.OpenAIBaseURL); v != "" {
		current.OpenAIBaseURL = v
	}
	if v := strings.TrimSpace(raw.GeminiAPIKey); v != "" {
		current.GeminiAPIKey = v
	}
	if v := strings.TrimSpace(raw.AnthropicAPIKey); v != "" {
		current.AnthropicAPIKey = v
	}
	if v := strings.TrimSpace(raw.DefaultModel); v != "" {
		current.DefaultModel = v
	}
	if raw.TimeoutSeconds > 0 {
		current.TimeoutSeconds = raw.TimeoutSeconds
	}
	return current
}

func mergeImages(current ImageSearchConfig, raw rawImageConfig) ImageSearchConfig {
	if v := strings.TrimSpace(raw.UnsplashAccessKey); v != "" {
		current.UnsplashAccessKey = v
	}
	if v := strings.TrimSpace(raw.UnsplashEndpoint); v != "" {
		current.UnsplashEndpoint = strings.TrimRight(v, "/")
	}
	if raw.ScrapeEnabled != nil {
		current.ScrapeEnabled = *raw.ScrapeEnabled
	}
	if raw.RequestsPerSecond != 0 {
		current.RequestsPerSecond = raw.RequestsPerSecond
	}
	return current
}

func mergeLimits(current, raw LimitsConfig) LimitsConfig {
	if raw.InsightDaily != 0 {
		current.InsightDaily = raw.InsightDaily
	}
	if raw.PresentationDaily != 0 {
		current.PresentationDaily = raw.PresentationDaily
	}
	if raw.APIWindowMinutes != 0 {
		current.APIWindowMinutes = raw.APIWindowMinutes
	}
	if raw.APIMaxRequests != 0 {
		current.APIMaxRequests = raw.APIMaxRequests
	}
	if raw.BodyLimitMB != 0 {
		current.BodyLimitMB = raw.BodyLimitMB
	}
	return current
}

func (c *AppConfig) IsDev() bool {
	return strings.EqualFold(c.Env, defaultEnv)
}

func (c *AppConfig) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Location resolves the timezone used for calendar-day quota accounting.
func (c *AppConfig) Location() (*time.Location, error) {
	return parseTimezoneLocation(c.Timezone)
}

func (c *AppConfig) AITimeout() time.Duration {
	if c.AI.TimeoutSeconds <= 0 {
		return defaultAITimeoutSeconds * time.Second
	}
	return time.Duration(c.AI.TimeoutSeconds) * time.Second
}

func (c *AppConfig) LogDir() string {
	return resolveRuntimePath(RuntimeBase(), c.Paths.Logs, "logs")
}

func (c *AppConfig) StaticDir() string {
	return resolveRuntimePath(RuntimeBase(), c.Paths.Static, "dist")
}

func (c *AppConfig) DocsDir() string {
	return resolveRuntimePath(RuntimeBase(), c.Paths.Docs, "docs")
}

// SchemaDir returns the configured schema override directory, or "" for the embedded schemas.
func (c *AppConfig) SchemaDir() string {
	if c.Paths.Schemas == "" {
		return ""
	}
	return resolveRuntimePath(RuntimeBase(), c.Paths.Schemas, "")
}

func (c *AppConfig) S3Enabled() bool {
	return c.S3.Bucket != "" && c.S3.Region != "" && c.S3.AccessKeyID != "" && c.S3.SecretAccessKey != ""
}
