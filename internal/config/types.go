package config

// AppConfig holds runtime startup configuration loaded from YAML and the environment.
type AppConfig struct {
	Port           int                   `yaml:"port"`
	Env            string                `yaml:"env"` // "development" | "production"
	Timezone       string                `yaml:"timezone"`
	SiteURL        string                `yaml:"site_url"`
	AllowedOrigins []string              `yaml:"allowed_origins"`
	JWTSecret      string                `yaml:"jwt_secret"`
	RedisURL       string                `yaml:"redis_url"`
	Database       DatabaseRuntimeConfig `yaml:"database"`
	Paths          RuntimePathsConfig    `yaml:"paths"`
	AI             AIConfig              `yaml:"ai"`
	Images         ImageSearchConfig     `yaml:"images"`
	Limits         LimitsConfig          `yaml:"limits"`
	Stripe         StripeConfig          `yaml:"stripe"`
	Analytics      AnalyticsConfig       `yaml:"analytics"`
	S3             S3Options             `yaml:"s3"`
	Mongo          MongoConfig           `yaml:"mongo"`
}

type DatabaseRuntimeConfig struct {
	Driver    string            `yaml:"driver"` // mysql | postgres | sqlite
	DSN       string            `yaml:"dsn"`
	Host      string            `yaml:"host"`
	Port      int               `yaml:"port"`
	User      string            `yaml:"user"`
	Password  string            `yaml:"password"`
	Name      string            `yaml:"name"`
	Charset   string            `yaml:"charset"`
	ParseTime bool              `yaml:"parse_time"`
	Loc       string            `yaml:"loc"`
	Params    map[string]string `yaml:"params"`
}

type RuntimePathsConfig struct {
	Logs    string `yaml:"logs"`
	Static  string `yaml:"static"`
	Docs    string `yaml:"docs"`
	Schemas string `yaml:"schemas"`
}

// AIConfig carries provider credentials. A provider with an empty key is disabled.
type AIConfig struct {
	OpenAIAPIKey    string `yaml:"openai_api_key"`
	OpenAIBaseURL   string `yaml:"openai_base_url"`
	GeminiAPIKey    string `yaml:"gemini_api_key"`
	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	DefaultModel    string `yaml:"default_model"`
	TimeoutSeconds  int    `yaml:"timeout_seconds"`
}

type ImageSearchConfig struct {
	UnsplashAccessKey string  `yaml:"unsplash_access_key"`
	UnsplashEndpoint  string  `yaml:"unsplash_endpoint"`
	ScrapeEnabled     bool    `yaml:"scrape_enabled"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

type LimitsConfig struct {
	InsightDaily      int `yaml:"insight_daily"`
	PresentationDaily int `yaml:"presentation_daily"`
	APIWindowMinutes  int `yaml:"api_window_minutes"`
	APIMaxRequests    int `yaml:"api_max_requests"`
	BodyLimitMB       int `yaml:"body_limit_mb"`
}

type StripeConfig struct {
	SecretKey     string `yaml:"secret_key"`
	WebhookSecret string `yaml:"webhook_secret"`
}

type AnalyticsConfig struct {
	MeasurementID string `yaml:"measurement_id"`
	APISecret     string `yaml:"api_secret"`
}

type S3Options struct {
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	Bucket          string `yaml:"bucket"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	CustomDomain    string `yaml:"custom_domain"`
	PathStyleAccess bool   `yaml:"path_style"`
	Prefix          string `yaml:"prefix"`
}

type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

type rawAppConfig struct {
	Port           int                `yaml:"port"`
	Env            string             `yaml:"env"`
	NodeEnv        string             `yaml:"node_env"`
	Timezone       string             `yaml:"timezone"`
	TZ             string             `yaml:"tz"`
	SiteURL        string             `yaml:"site_url"`
	AllowedOrigins []string           `yaml:"allowed_origins"`
	JWTSecret      string             `yaml:"jwt_secret"`
	RedisURL       string             `yaml:"redis_url"`
	Database       rawDatabaseConfig  `yaml:"database"`
	Paths          RuntimePathsConfig `yaml:"paths"`
	AI             AIConfig           `yaml:"ai"`
	Images         rawImageConfig     `yaml:"images"`
	Limits         LimitsConfig       `yaml:"limits"`
	Stripe         StripeConfig       `yaml:"stripe"`
	Analytics      AnalyticsConfig    `yaml:"analytics"`
	S3             S3Options          `yaml:"s3"`
	Mongo          MongoConfig        `yaml:"mongo"`
}

type rawDatabaseConfig struct {
	Driver    string            `yaml:"driver"`
	DSN       string            `yaml:"dsn"`
	URL       string            `yaml:"url"`
	Host      string            `yaml:"host"`
	Port      int               `yaml:"port"`
	User      string            `yaml:"user"`
	Password  string            `yaml:"password"`
	Name      string            `yaml:"name"`
	Charset   string            `yaml:"charset"`
	ParseTime *bool             `yaml:"parse_time"`
	Loc       string            `yaml:"loc"`
	Params    map[string]string `yaml:"params"`
}

type rawImageConfig struct {
	UnsplashAccessKey string  `yaml:"unsplash_access_key"`
	UnsplashEndpoint  string  `yaml:"unsplash_endpoint"`
	ScrapeEnabled     *bool   `yaml:"scrape_enabled"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}
