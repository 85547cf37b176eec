package formwave

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Session backends
const (
	SessionBackendFile   = "file"
	SessionBackendRedis  = "redis"
	SessionBackendMemory = "memory"
)

// Analytics backends
const (
	AnalyticsBackendMemory   = "memory"
	AnalyticsBackendDuckDB   = "duckdb"
	AnalyticsBackendPostgres = "postgres"
)

// Config consolidates the settings of the store, its remote clients and the
// supporting backends.
type Config struct {
	API       APIConfig       `json:"api"`
	Session   SessionConfig   `json:"session"`
	Analytics AnalyticsConfig `json:"analytics"`
	Export    ExportConfig    `json:"export"`
	Logging   LoggingConfig   `json:"logging"`
}

// APIConfig contains the REST backend settings
type APIConfig struct {
	BaseURL            string        `json:"baseUrl"`
	Timeout            time.Duration `json:"timeout"`
	BreakerThreshold   int           `json:"breakerThreshold"`
	BreakerWindow      time.Duration `json:"breakerWindow"`
	BreakerOpenTimeout time.Duration `json:"breakerOpenTimeout"`
}

// SessionConfig controls where the session token is kept
type SessionConfig struct {
	Backend       string        `json:"backend"`
	FilePath      string        `json:"filePath"`
	RedisAddr     string        `json:"redisAddr"`
	RedisPassword string        `json:"redisPassword"`
	RedisDB       int           `json:"redisDb"`
	Profile       string        `json:"profile"`
	TTL           time.Duration `json:"ttl"`
}

// AnalyticsConfig selects and configures the analytics backend
type AnalyticsConfig struct {
	Backend       string         `json:"backend"`
	DuckDBPath    string         `json:"duckdbPath"`
	Database      DatabaseConfig `json:"database"`
	HistoryWindow time.Duration  `json:"historyWindow"`
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	Database        string        `json:"database"`
	Username        string        `json:"username"`
	Password        string        `json:"password"`
	SSLMode         string        `json:"sslMode"`
	MaxConnections  int           `json:"maxConnections"`
	MaxIdleConns    int           `json:"maxIdleConns"`
	ConnMaxLifetime time.Duration `json:"connMaxLifetime"`
	ConnMaxIdleTime time.Duration `json:"connMaxIdleTime"`
	Timeout         time.Duration `json:"timeout"`
	TableName       string        `json:"tableName"`
	// UseIAM replaces Password with an Aurora DSQL auth token.
	UseIAM bool   `json:"useIam"`
	Region string `json:"region"`
}

// ExportConfig contains S3 archive settings
type ExportConfig struct {
	Bucket          string `json:"bucket"`
	Prefix          string `json:"prefix"`
	Region          string `json:"region"`
	Endpoint        string `json:"endpoint"`
	UsePathStyle    bool   `json:"usePathStyle"`
	AccessKeyID     string `json:"accessKeyId"`
	SecretAccessKey string `json:"secretAccessKey"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		API: APIConfig{
			BaseURL:            "http://localhost:5000/api",
			Timeout:            15 * time.Second,
			BreakerThreshold:   5,
			BreakerWindow:      30 * time.Second,
			BreakerOpenTimeout: 10 * time.Second,
		},
		Session: SessionConfig{
			Backend:   SessionBackendFile,
			FilePath:  home + "/.formwave/session.json",
			RedisAddr: "localhost:6379",
			Profile:   "default",
			TTL:       7 * 24 * time.Hour,
		},
		Analytics: AnalyticsConfig{
			Backend:    AnalyticsBackendMemory,
			DuckDBPath: home + "/.formwave/analytics.duckdb",
			Database: DatabaseConfig{
				Host:            "localhost",
				Port:            5432,
				Database:        "formwave",
				Username:        "postgres",
				SSLMode:         "disable",
				MaxConnections:  10,
				MaxIdleConns:    2,
				ConnMaxLifetime: 1 * time.Hour,
				ConnMaxIdleTime: 5 * time.Minute,
				Timeout:         10 * time.Second,
				TableName:       "form_analytics",
			},
			HistoryWindow: 30 * 24 * time.Hour,
		},
		Export: ExportConfig{
			Prefix: "formwave",
			Region: "us-east-1",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return &ConfigError{Field: "api.baseUrl", Message: "must not be empty"}
	}
	if c.API.Timeout <= 0 {
		return &ConfigError{Field: "api.timeout", Message: "must be greater than 0"}
	}
	if c.API.BreakerThreshold < 0 {
		return &ConfigError{Field: "api.breakerThreshold", Message: "must not be negative"}
	}

	switch c.Session.Backend {
	case SessionBackendFile:
		if c.Session.FilePath == "" {
			return &ConfigError{Field: "session.filePath", Message: "required for the file backend"}
		}
	case SessionBackendRedis:
		if c.Session.RedisAddr == "" {
			return &ConfigError{Field: "session.redisAddr", Message: "required for the redis backend"}
		}
	case SessionBackendMemory:
	default:
		return &ConfigError{Field: "session.backend", Message: "must be one of file, redis, memory"}
	}
	if c.Session.TTL <= 0 {
		return &ConfigError{Field: "session.ttl", Message: "must be greater than 0"}
	}

	switch c.Analytics.Backend {
	case AnalyticsBackendMemory:
	case AnalyticsBackendDuckDB:
		if c.Analytics.DuckDBPath == "" {
			return &ConfigError{Field: "analytics.duckdbPath", Message: "required for the duckdb backend"}
		}
	case AnalyticsBackendPostgres:
		if c.Analytics.Database.MaxConnections <= 0 {
			return &ConfigError{Field: "analytics.database.maxConnections", Message: "must be greater than 0"}
		}
		if c.Analytics.Database.TableName == "" {
			return &ConfigError{Field: "analytics.database.tableName", Message: "must not be empty"}
		}
		if c.Analytics.Database.UseIAM && c.Analytics.Database.Region == "" {
			return &ConfigError{Field: "analytics.database.region", Message: "required when useIam is set"}
		}
	default:
		return &ConfigError{Field: "analytics.backend", Message: "must be one of memory, duckdb, postgres"}
	}
	if c.Analytics.HistoryWindow <= 0 {
		return &ConfigError{Field: "analytics.historyWindow", Message: "must be greater than 0"}
	}

	return nil
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ConfigError) Error() string {
	return "config validation error for field '" + e.Field + "': " + e.Message
}

// LoadConfigFromEnv starts from DefaultConfig and overlays FORMWAVE_*
// variables. A .env file in the working directory is loaded first when present.
func LoadConfigFromEnv() (*Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()
	cfg.API.BaseURL = getEnv("FORMWAVE_API_URL", cfg.API.BaseURL)
	cfg.API.Timeout = getEnvDuration("FORMWAVE_API_TIMEOUT", cfg.API.Timeout)
	cfg.API.BreakerThreshold = getEnvInt("FORMWAVE_API_BREAKER_THRESHOLD", cfg.API.BreakerThreshold)

	cfg.Session.Backend = getEnv("FORMWAVE_SESSION_BACKEND", cfg.Session.Backend)
	cfg.Session.FilePath = getEnv("FORMWAVE_SESSION_FILE", cfg.Session.FilePath)
	cfg.Session.RedisAddr = getEnv("FORMWAVE_REDIS_ADDR", cfg.Session.RedisAddr)
	cfg.Session.RedisPassword = getEnv("FORMWAVE_REDIS_PASSWORD", cfg.Session.RedisPassword)
	cfg.Session.RedisDB = getEnvInt("FORMWAVE_REDIS_DB", cfg.Session.RedisDB)
	cfg.Session.Profile = getEnv("FORMWAVE_PROFILE", cfg.Session.Profile)

	cfg.Analytics.Backend = getEnv("FORMWAVE_ANALYTICS_BACKEND", cfg.Analytics.Backend)
	cfg.Analytics.DuckDBPath = getEnv("FORMWAVE_DUCKDB_PATH", cfg.Analytics.DuckDBPath)
	db := &cfg.Analytics.Database
	db.Host = getEnv("FORMWAVE_DB_HOST", db.Host)
	db.Port = getEnvInt("FORMWAVE_DB_PORT", db.Port)
	db.Database = getEnv("FORMWAVE_DB_NAME", db.Database)
	db.Username = getEnv("FORMWAVE_DB_USER", db.Username)
	db.Password = getEnv("FORMWAVE_DB_PASSWORD", db.Password)
	db.SSLMode = getEnv("FORMWAVE_DB_SSL_MODE", db.SSLMode)
	db.MaxConnections = getEnvInt("FORMWAVE_DB_MAX_CONNECTIONS", db.MaxConnections)
	db.TableName = getEnv("FORMWAVE_DB_TABLE", db.TableName)
	db.UseIAM = getEnvBool("FORMWAVE_DB_USE_IAM", db.UseIAM)
	db.Region = getEnv("FORMWAVE_DB_REGION", db.Region)

	cfg.Export.Bucket = getEnv("FORMWAVE_EXPORT_BUCKET", cfg.Export.Bucket)
	cfg.Export.Prefix = getEnv("FORMWAVE_EXPORT_PREFIX", cfg.Export.Prefix)
	cfg.Export.Region = getEnv("FORMWAVE_EXPORT_REGION", cfg.Export.Region)
	cfg.Export.Endpoint = getEnv("FORMWAVE_EXPORT_ENDPOINT", cfg.Export.Endpoint)
	cfg.Export.UsePathStyle = getEnvBool("FORMWAVE_EXPORT_PATH_STYLE", cfg.Export.UsePathStyle)
	cfg.Export.AccessKeyID = getEnv("FORMWAVE_EXPORT_ACCESS_KEY_ID", cfg.Export.AccessKeyID)
	cfg.Export.SecretAccessKey = getEnv("FORMWAVE_EXPORT_SECRET_ACCESS_KEY", cfg.Export.SecretAccessKey)

	cfg.Logging.Level = getEnv("FORMWAVE_LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = getEnv("FORMWAVE_LOG_FORMAT", cfg.Logging.Format)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
