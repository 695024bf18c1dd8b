package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	ServerPort      string        `mapstructure:"port"`
	DatabaseType    string        `mapstructure:"db_type"`
	DatabasePath    string        `mapstructure:"db_path"`
	DatabaseURL     string        `mapstructure:"database_url"`
	SessionDuration time.Duration `mapstructure:"session_duration"`
	SessionSecret   string        `mapstructure:"session_secret"`
	StaticFilesPath string        `mapstructure:"static_path"`
	AppBaseURL      string        `mapstructure:"app_base_url"`

	StagingBackend string `mapstructure:"staging_backend"`
	RedisAddr      string `mapstructure:"redis_addr"`
	RedisPassword  string `mapstructure:"redis_password"`
	RedisDB        int    `mapstructure:"redis_db"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	AWSRegion    string `mapstructure:"aws_region"`
	SESFromEmail string `mapstructure:"ses_from_email"`
	SESFromName  string `mapstructure:"ses_from_name"`

	ShareTokenTTL     time.Duration `mapstructure:"share_token_ttl"`
	RateLimitRequests int           `mapstructure:"rate_limit_requests"`
	RateLimitWindow   time.Duration `mapstructure:"rate_limit_window"`
	MetricsEnabled    bool          `mapstructure:"metrics_enabled"`
}

// Staging backends
const (
	StagingDatabase = "database"
	StagingRedis    = "redis"
	StagingMemory   = "memory"
)

// Load reads configuration from an optional .env file and environment
// variables, falling back to sensible defaults
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("db_type", "sqlite")
	v.SetDefault("db_path", "./todolists.db")
	v.SetDefault("database_url", "")
	v.SetDefault("session_duration", "24h")
	v.SetDefault("session_secret", "")
	v.SetDefault("static_path", "./static")
	v.SetDefault("app_base_url", "http://localhost:8080")

	v.SetDefault("staging_backend", StagingDatabase)
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")

	v.SetDefault("aws_region", "us-east-1")
	v.SetDefault("ses_from_email", "")
	v.SetDefault("ses_from_name", "To-Do Lists")

	v.SetDefault("share_token_ttl", "72h")
	v.SetDefault("rate_limit_requests", 10)
	v.SetDefault("rate_limit_window", "1m")
	v.SetDefault("metrics_enabled", true)
}

func bindEnvVars(v *viper.Viper) {
	for key, env := range map[string]string{
		"port":                "PORT",
		"db_type":             "DB_TYPE",
		"db_path":             "DB_PATH",
		"database_url":        "DATABASE_URL",
		"session_duration":    "SESSION_DURATION",
		"session_secret":      "SESSION_SECRET",
		"static_path":         "STATIC_PATH",
		"app_base_url":        "APP_BASE_URL",
		"staging_backend":     "STAGING_BACKEND",
		"redis_addr":          "REDIS_ADDR",
		"redis_password":      "REDIS_PASSWORD",
		"redis_db":            "REDIS_DB",
		"log_level":           "LOG_LEVEL",
		"log_format":          "LOG_FORMAT",
		"aws_region":          "AWS_REGION",
		"ses_from_email":      "SES_FROM_EMAIL",
		"ses_from_name":       "SES_FROM_NAME",
		"share_token_ttl":     "SHARE_TOKEN_TTL",
		"rate_limit_requests": "RATE_LIMIT_REQUESTS",
		"rate_limit_window":   "RATE_LIMIT_WINDOW",
		"metrics_enabled":     "METRICS_ENABLED",
	} {
		_ = v.BindEnv(key, env)
	}
}

// Validate checks option values that would otherwise fail late at startup
func (c *Config) Validate() error {
	switch strings.ToLower(c.DatabaseType) {
	case "sqlite", "sqlite3", "":
		if c.DatabasePath == "" {
			return fmt.Errorf("DB_PATH is required for sqlite")
		}
	case "postgres", "postgresql", "mysql":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for %s", c.DatabaseType)
		}
	default:
		return fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}

	switch c.StagingBackend {
	case StagingDatabase, StagingRedis, StagingMemory:
	default:
		return fmt.Errorf("unsupported staging backend: %s", c.StagingBackend)
	}

	if c.SessionDuration <= 0 {
		return fmt.Errorf("session duration must be positive")
	}

	return nil
}
