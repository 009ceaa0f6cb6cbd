package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Search    SearchConfig    `yaml:"search"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Media     MediaConfig     `yaml:"media"`
	Logging   LoggingConfig   `yaml:"logging"`
	Timezone  string          `yaml:"timezone"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port         string   `yaml:"port"`
	AllowOrigins []string `yaml:"allow_origins"`
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Type     string         `yaml:"type"` // mysql, postgres or sqlite
	LogLevel string         `yaml:"log_level"`
	MySQL    MySQLConfig    `yaml:"mysql"`
	Postgres PostgresConfig `yaml:"postgres"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
}

// MySQLConfig contains MySQL connection settings
type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// PostgresConfig contains PostgreSQL connection settings
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
}

// SQLiteConfig contains the SQLite database file location
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// SearchConfig contains search engine settings
type SearchConfig struct {
	Meilisearch MeilisearchConfig `yaml:"meilisearch"`
}

// MeilisearchConfig contains Meilisearch connection settings
type MeilisearchConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	APIKey  string `yaml:"api_key"`
	Index   string `yaml:"index"`
}

// AuthConfig contains session token settings
type AuthConfig struct {
	JWTSecret       string `yaml:"jwt_secret"`
	SessionTTLHours int    `yaml:"session_ttl_hours"`
	CookieName      string `yaml:"cookie_name"`
	CookieSecure    bool   `yaml:"cookie_secure"`
}

// RateLimitConfig limits anonymous form submissions per client
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute"`
	RequestsPerHour   int  `yaml:"requests_per_hour"`
}

// SchedulerConfig contains nightly maintenance settings
type SchedulerConfig struct {
	DailyRunEnabled  bool   `yaml:"daily_run_enabled"`
	DailyRunTime     string `yaml:"daily_run_time"`
	RetentionDays    int    `yaml:"retention_days"`
	MaxDeletionCount int    `yaml:"max_deletion_count"`
}

// MediaConfig contains object storage settings for property images
type MediaConfig struct {
	MongoURI string `yaml:"mongo_uri"`
	Database string `yaml:"database"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level       string `yaml:"level"`
	LogRequests bool   `yaml:"log_requests"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         "8084",
			AllowOrigins: []string{"http://localhost:3000"},
		},
		Database: DatabaseConfig{
			Type:     "postgres",
			LogLevel: "warn",
			SQLite:   SQLiteConfig{Path: "realestate.db"},
		},
		Search: SearchConfig{
			Meilisearch: MeilisearchConfig{
				Enabled: false,
				Index:   "properties",
			},
		},
		Auth: AuthConfig{
			SessionTTLHours: 24 * 7,
			CookieName:      "session",
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerMinute: 5,
			RequestsPerHour:   30,
		},
		Scheduler: SchedulerConfig{
			DailyRunEnabled:  false,
			DailyRunTime:     "03:00",
			RetentionDays:    90,
			MaxDeletionCount: 10000,
		},
		Media: MediaConfig{
			Database: "realestate_media",
		},
		Logging: LoggingConfig{
			Level:       "info",
			LogRequests: true,
		},
		Timezone: "America/Mexico_City",
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(filepath string) (*Config, error) {
	config := DefaultConfig()

	// If file doesn't exist, return default config
	if _, err := os.Stat(filepath); os.IsNotExist(err) {
		return config, nil
	}

	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// ApplyEnv fills connection settings and secrets from the environment.
// Credentials already present in the file win, as in getEnvOrConfig.
// DB_TYPE, SQLITE_PATH and PORT override the file.
func (c *Config) ApplyEnv() {
	c.Database.Type = getEnv("DB_TYPE", c.Database.Type)

	my := &c.Database.MySQL
	my.Host = getEnvOrConfig(my.Host, "DB_HOST", "mysql")
	my.Port = getEnvIntOrConfig(my.Port, "DB_PORT", 3306)
	my.User = getEnvOrConfig(my.User, "DB_USER", "realestate_user")
	my.Password = getEnvOrConfig(my.Password, "DB_PASSWORD", "realestate_pass")
	my.Database = getEnvOrConfig(my.Database, "DB_NAME", "realestate_db")

	pg := &c.Database.Postgres
	pg.Host = getEnvOrConfig(pg.Host, "DB_HOST", "db")
	pg.Port = getEnvIntOrConfig(pg.Port, "DB_PORT", 5432)
	pg.User = getEnvOrConfig(pg.User, "DB_USER", "realestate_user")
	pg.Password = getEnvOrConfig(pg.Password, "DB_PASSWORD", "realestate_pass")
	pg.Database = getEnvOrConfig(pg.Database, "DB_NAME", "realestate_db")
	pg.SSLMode = getEnvOrConfig(pg.SSLMode, "DB_SSLMODE", "disable")

	c.Database.SQLite.Path = getEnv("SQLITE_PATH", c.Database.SQLite.Path)

	ms := &c.Search.Meilisearch
	ms.Host = getEnvOrConfig(ms.Host, "MEILISEARCH_HOST", "http://meilisearch:7700")
	ms.APIKey = getEnvOrConfig(ms.APIKey, "MEILISEARCH_KEY", "")

	c.Auth.JWTSecret = getEnvOrConfig(c.Auth.JWTSecret, "JWT_SECRET", "")
	c.Media.MongoURI = getEnvOrConfig(c.Media.MongoURI, "MONGO_URI", "")
	c.Server.Port = getEnv("PORT", c.Server.Port)
}

// Validate reports settings the server cannot start without
func (c *Config) Validate() error {
	switch c.Database.Type {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database type %q", c.Database.Type)
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("auth.jwt_secret must be at least 16 characters")
	}
	return nil
}

// GetSessionTTL returns the session lifetime as a duration
func (c *AuthConfig) GetSessionTTL() time.Duration {
	if c.SessionTTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.SessionTTLHours) * time.Hour
}

// Location returns the configured time zone, falling back to UTC
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrConfig returns config value if set, otherwise falls back to environment variable, then default
func getEnvOrConfig(configValue, envKey, defaultValue string) string {
	if configValue != "" {
		return configValue
	}
	return getEnv(envKey, defaultValue)
}

func getEnvIntOrConfig(configValue int, envKey string, defaultValue int) int {
	if configValue > 0 {
		return configValue
	}
	var n int
	if _, err := fmt.Sscanf(os.Getenv(envKey), "%d", &n); err == nil && n > 0 {
		return n
	}
	return defaultValue
}
