package config

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"
	defaultPort       = 3000
	defaultEnv        = "development"
	defaultTimezone   = "UTC"
	defaultSiteURL    = "https://stylescanner.vip"

	defaultDBDriver   = DriverMySQL
	defaultDBHost     = "127.0.0.1"
	defaultDBPort     = 3306
	defaultDBUser     = "root"
	defaultDBPassword = "password"
	defaultDBName     = "stylescanner"
	defaultDBCharset  = "utf8mb4"
	defaultDBLoc      = "Local"
	defaultRedisURL   = "redis://localhost:6379/0"

	defaultAIModel          = "gpt-4o-mini"
	defaultAITimeoutSeconds = 120

	defaultUnsplashEndpoint = "https://api.unsplash.com"
	defaultImageRPS         = 2.0

	defaultInsightDaily      = 13
	defaultPresentationDaily = 3
	defaultAPIWindowMinutes  = 15
	defaultAPIMaxRequests    = 130
	defaultBodyLimitMB       = 15

	defaultMongoDatabase = "stylescanner"
)

// Supported database drivers.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)
