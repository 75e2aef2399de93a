package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"casetracker/core"

	"github.com/spf13/viper"
)

// Supported database drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DataPaths holds all data directory and file path configuration
// These paths can be overridden via environment variables
type DataPaths struct {
	// DataDir is the base data directory (CASETRACKER_DATA_DIR, default: ./data)
	DataDir string `mapstructure:"data_dir" yaml:"data_dir" json:"data_dir"`
	// SQLitePath is the SQLite database file path (CASETRACKER_SQLITE_PATH, default: ${DataDir}/casetracker.db)
	SQLitePath string `mapstructure:"sqlite_path" yaml:"sqlite_path" json:"sqlite_path"`
}

// DatabaseConfig selects and tunes the relational store
type DatabaseConfig struct {
	// Driver is either "sqlite" or "postgres"
	Driver string `mapstructure:"driver" yaml:"driver" json:"driver"`
	// DSN is the Postgres connection string (CASETRACKER_DATABASE_DSN)
	DSN             string        `mapstructure:"dsn" yaml:"dsn" json:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" yaml:"max_open_conns" json:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" yaml:"max_idle_conns" json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" yaml:"conn_max_lifetime" json:"conn_max_lifetime"`
}

// RedisConfig configures the shared rate limit backend
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	Addr     string `mapstructure:"addr" yaml:"addr" json:"addr"`
	Password string `mapstructure:"password" yaml:"password" json:"password"`
	DB       int    `mapstructure:"db" yaml:"db" json:"db"`
	PoolSize int    `mapstructure:"pool_size" yaml:"pool_size" json:"pool_size"`
}

// RateLimitConfig configures per-client request limits
type RateLimitConfig struct {
	Enabled           bool          `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second" yaml:"requests_per_second" json:"requests_per_second"`
	Burst             int           `mapstructure:"burst" yaml:"burst" json:"burst"`
	Window            time.Duration `mapstructure:"window" yaml:"window" json:"window"`
	Redis             RedisConfig   `mapstructure:"redis" yaml:"redis" json:"redis"`
}

// PaginationConfig bounds list requests
type PaginationConfig struct {
	DefaultSize int `mapstructure:"default_size" yaml:"default_size" json:"default_size"`
	MaxSize     int `mapstructure:"max_size" yaml:"max_size" json:"max_size"`
}

// APIConfig configures the HTTP server
type APIConfig struct {
	Port                 int              `mapstructure:"port" yaml:"port" json:"port"`
	TLS                  bool             `mapstructure:"tls" yaml:"tls" json:"tls"`
	CertFile             string           `mapstructure:"cert_file" yaml:"cert_file" json:"cert_file"`
	KeyFile              string           `mapstructure:"key_file" yaml:"key_file" json:"key_file"`
	AllowedOrigins       []string         `mapstructure:"allowed_origins" yaml:"allowed_origins" json:"allowed_origins"`
	TrustProxy           bool             `mapstructure:"trust_proxy" yaml:"trust_proxy" json:"trust_proxy"`
	TrustedProxyNetworks []string         `mapstructure:"trusted_proxy_networks" yaml:"trusted_proxy_networks" json:"trusted_proxy_networks"`
	ApplicationName      string           `mapstructure:"application_name" yaml:"application_name" json:"application_name"`
	RateLimit            RateLimitConfig  `mapstructure:"rate_limit" yaml:"rate_limit" json:"rate_limit"`
	Pagination           PaginationConfig `mapstructure:"pagination" yaml:"pagination" json:"pagination"`
}

// SecurityConfig holds request hardening limits
type SecurityConfig struct {
	JSONBodyLimit int `mapstructure:"json_body_limit" yaml:"json_body_limit" json:"json_body_limit"`
}

// LoggingConfig selects the zap logger
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" json:"level"`
	Format string `mapstructure:"format" yaml:"format" json:"format"`
}

// MetricsConfig toggles Prometheus collection
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	// Interval between connection pool samples
	Interval time.Duration `mapstructure:"interval" yaml:"interval" json:"interval"`
}

// SwaggerConfig toggles the Swagger UI
type SwaggerConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
}

// Config holds all configuration for the casetracker service
type Config struct {
	DataPaths DataPaths      `mapstructure:"data_paths" yaml:"data_paths" json:"data_paths"`
	Database  DatabaseConfig `mapstructure:"database" yaml:"database" json:"database"`
	API       APIConfig      `mapstructure:"api" yaml:"api" json:"api"`
	Security  SecurityConfig `mapstructure:"security" yaml:"security" json:"security"`
	Logging   LoggingConfig  `mapstructure:"logging" yaml:"logging" json:"logging"`
	Metrics   MetricsConfig  `mapstructure:"metrics" yaml:"metrics" json:"metrics"`
	Swagger   SwaggerConfig  `mapstructure:"swagger" yaml:"swagger" json:"swagger"`
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("data_paths.data_dir", "./data")
	viper.SetDefault("data_paths.sqlite_path", "") // Empty = derive from data_dir

	viper.SetDefault("database.driver", DriverSQLite)
	viper.SetDefault("database.dsn", "")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", 30*time.Minute)

	viper.SetDefault("api.port", 8080)
	viper.SetDefault("api.tls", false)
	viper.SetDefault("api.cert_file", "server.crt")
	viper.SetDefault("api.key_file", "server.key")
	viper.SetDefault("api.allowed_origins", []string{"http://localhost:9000", "http://localhost:4200"})
	viper.SetDefault("api.trust_proxy", false)
	viper.SetDefault("api.trusted_proxy_networks", []string{})
	viper.SetDefault("api.application_name", "casetrackerApp")
	viper.SetDefault("api.rate_limit.enabled", true)
	viper.SetDefault("api.rate_limit.requests_per_second", 100)
	viper.SetDefault("api.rate_limit.burst", 100)
	viper.SetDefault("api.rate_limit.window", 1*time.Second)
	viper.SetDefault("api.rate_limit.redis.enabled", false)
	viper.SetDefault("api.rate_limit.redis.addr", "localhost:6379")
	viper.SetDefault("api.rate_limit.redis.password", "")
	viper.SetDefault("api.rate_limit.redis.db", 0)
	viper.SetDefault("api.rate_limit.redis.pool_size", 10)
	viper.SetDefault("api.pagination.default_size", 20)
	viper.SetDefault("api.pagination.max_size", 1000)

	viper.SetDefault("security.json_body_limit", 1024*1024) // 1MB

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")

	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.interval", 15*time.Second)

	viper.SetDefault("swagger.enabled", true)
}

// loadFromEnv sets up environment variable loading
func loadFromEnv() {
	viper.SetEnvPrefix("CASETRACKER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Explicit bindings for shorter variable names
	_ = viper.BindEnv("data_paths.data_dir", "CASETRACKER_DATA_DIR")
	_ = viper.BindEnv("data_paths.sqlite_path", "CASETRACKER_SQLITE_PATH")
	_ = viper.BindEnv("database.dsn", "CASETRACKER_DATABASE_DSN")
}

// LoadConfig loads configuration from file and environment variables.
// An empty configFile searches for config.yaml in . and ./config; otherwise
// the given file must exist.
func LoadConfig(configFile string) (*Config, error) {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}

	setDefaults()
	loadFromEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, will use defaults and env vars
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	config.ResolveDataPaths()

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// ResolveDataPaths derives the SQLite path from DataDir when not explicitly set
func (c *Config) ResolveDataPaths() {
	dataDir := c.DataPaths.DataDir
	if dataDir == "" {
		dataDir = "./data"
	}

	if c.DataPaths.SQLitePath == "" {
		c.DataPaths.SQLitePath = filepath.Join(dataDir, "casetracker.db")
	} else if c.DataPaths.SQLitePath != ":memory:" && !filepath.IsAbs(c.DataPaths.SQLitePath) {
		c.DataPaths.SQLitePath = filepath.Clean(c.DataPaths.SQLitePath)
	}

	c.DataPaths.DataDir = dataDir
}

// GetDataDir returns the resolved base data directory
func (c *Config) GetDataDir() string {
	if c.DataPaths.DataDir == "" {
		return "./data"
	}
	return c.DataPaths.DataDir
}

// GetSQLitePath returns the resolved SQLite database path
func (c *Config) GetSQLitePath() string {
	if c.DataPaths.SQLitePath == "" {
		return filepath.Join(c.GetDataDir(), "casetracker.db")
	}
	return c.DataPaths.SQLitePath
}

// Redacted returns a copy safe to print, with secrets masked
func (c *Config) Redacted() Config {
	out := *c
	out.API.AllowedOrigins = append([]string(nil), c.API.AllowedOrigins...)
	out.API.TrustedProxyNetworks = append([]string(nil), c.API.TrustedProxyNetworks...)
	if out.API.RateLimit.Redis.Password != "" {
		out.API.RateLimit.Redis.Password = "[REDACTED]"
	}
	if out.Database.DSN != "" {
		out.Database.DSN = redactDSN(out.Database.DSN)
	}
	return out
}

func redactDSN(dsn string) string {
	parsed, err := url.Parse(dsn)
	if err != nil || parsed.User == nil {
		return dsn
	}
	if _, hasPassword := parsed.User.Password(); hasPassword {
		parsed.User = url.UserPassword(parsed.User.Username(), "REDACTED")
	}
	return parsed.String()
}

// validateConfig validates the configuration for security and correctness
func validateConfig(config *Config) error {
	switch config.Database.Driver {
	case DriverSQLite:
		if config.GetSQLitePath() == "" {
			return fmt.Errorf("data_paths.sqlite_path cannot be empty")
		}
	case DriverPostgres:
		if config.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required when driver is postgres")
		}
		parsed, err := url.Parse(config.Database.DSN)
		if err != nil {
			return fmt.Errorf("invalid database DSN: %w", err)
		}
		if parsed.Scheme != "postgres" && parsed.Scheme != "postgresql" {
			return fmt.Errorf("invalid database DSN: must start with postgres:// or postgresql://")
		}
	default:
		return fmt.Errorf("unsupported database driver: %q (must be %s or %s)", config.Database.Driver, DriverSQLite, DriverPostgres)
	}

	if config.Database.MaxOpenConns < 1 {
		return fmt.Errorf("database.max_open_conns must be positive, got %d", config.Database.MaxOpenConns)
	}
	if config.Database.MaxIdleConns < 0 || config.Database.MaxIdleConns > config.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns must be between 0 and max_open_conns, got %d", config.Database.MaxIdleConns)
	}

	// Validate API port
	if config.API.Port < 1 || config.API.Port > 65535 {
		return fmt.Errorf("invalid API port: %d (must be 1-65535)", config.API.Port)
	}
	if config.API.TLS && (config.API.CertFile == "" || config.API.KeyFile == "") {
		return fmt.Errorf("api.cert_file and api.key_file are required when TLS is enabled")
	}
	if strings.TrimSpace(config.API.ApplicationName) == "" {
		return fmt.Errorf("api.application_name cannot be empty")
	}
	for _, network := range config.API.TrustedProxyNetworks {
		if !isValidIPOrCIDR(strings.TrimSpace(network)) {
			return fmt.Errorf("invalid trusted proxy network: %s (must be IP or CIDR)", network)
		}
	}

	if config.API.RateLimit.Enabled {
		if config.API.RateLimit.RequestsPerSecond <= 0 {
			return fmt.Errorf("api.rate_limit.requests_per_second must be positive")
		}
		if config.API.RateLimit.Burst < 1 {
			return fmt.Errorf("api.rate_limit.burst must be at least 1, got %d", config.API.RateLimit.Burst)
		}
		if config.API.RateLimit.Redis.Enabled {
			if config.API.RateLimit.Redis.Addr == "" {
				return fmt.Errorf("api.rate_limit.redis.addr cannot be empty when redis is enabled")
			}
			if config.API.RateLimit.Window < time.Millisecond {
				return fmt.Errorf("api.rate_limit.window must be at least 1ms, got %v", config.API.RateLimit.Window)
			}
		}
	}

	if config.API.Pagination.DefaultSize < 1 {
		return fmt.Errorf("api.pagination.default_size must be positive, got %d", config.API.Pagination.DefaultSize)
	}
	if config.API.Pagination.MaxSize < config.API.Pagination.DefaultSize {
		return fmt.Errorf("api.pagination.max_size (%d) must not be below default_size (%d)",
			config.API.Pagination.MaxSize, config.API.Pagination.DefaultSize)
	}
	if config.API.Pagination.MaxSize > core.MaxPageSize {
		return fmt.Errorf("api.pagination.max_size must be at most %d, got %d", core.MaxPageSize, config.API.Pagination.MaxSize)
	}

	if config.Security.JSONBodyLimit < 1024 || config.Security.JSONBodyLimit > 100*1024*1024 {
		return fmt.Errorf("security.json_body_limit must be between 1KB and 100MB, got %d", config.Security.JSONBodyLimit)
	}

	switch strings.ToLower(config.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging.level: %q", config.Logging.Level)
	}
	switch config.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid logging.format: %q (must be json or console)", config.Logging.Format)
	}

	if config.Metrics.Enabled && config.Metrics.Interval < time.Second {
		return fmt.Errorf("metrics.interval must be at least 1s, got %v", config.Metrics.Interval)
	}

	// SECURITY: Enforce HTTPS in production mode
	if os.Getenv("CASETRACKER_ENV") == "production" && !config.API.TLS {
		return fmt.Errorf("TLS must be enabled for API in production (CASETRACKER_ENV=production, api.tls=false)")
	}

	return nil
}

// isValidIPOrCIDR checks if a string is a valid IP address or CIDR notation
func isValidIPOrCIDR(ipStr string) bool {
	if net.ParseIP(ipStr) != nil {
		return true
	}
	_, _, err := net.ParseCIDR(ipStr)
	return err == nil
}
