package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"casetracker/core"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestConfig returns a valid Config for testing
func newTestConfig() Config {
	return Config{
		DataPaths: DataPaths{
			DataDir:    "./data",
			SQLitePath: "data/casetracker.db",
		},
		Database: DatabaseConfig{
			Driver:          DriverSQLite,
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
		},
		API: APIConfig{
			Port:            8080,
			AllowedOrigins:  []string{"http://localhost:9000"},
			ApplicationName: "casetrackerApp",
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerSecond: 100,
				Burst:             100,
				Window:            time.Second,
				Redis:             RedisConfig{Addr: "localhost:6379", PoolSize: 10},
			},
			Pagination: PaginationConfig{DefaultSize: 20, MaxSize: 1000},
		},
		Security: SecurityConfig{JSONBodyLimit: 1024 * 1024},
		Logging:  LoggingConfig{Level: "info", Format: "json"},
		Metrics:  MetricsConfig{Enabled: true, Interval: 15 * time.Second},
		Swagger:  SwaggerConfig{Enabled: true},
	}
}

// withCleanViper isolates a test from global viper state and the working directory
func withCleanViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Chdir(t.TempDir())
}

func TestLoadConfig(t *testing.T) {
	withCleanViper(t)

	config, err := LoadConfig("")
	require.NoError(t, err)
	require.NotNil(t, config)

	// Check defaults
	assert.Equal(t, DriverSQLite, config.Database.Driver)
	assert.Equal(t, filepath.Join("data", "casetracker.db"), config.GetSQLitePath())
	assert.Equal(t, 8080, config.API.Port)
	assert.Equal(t, "casetrackerApp", config.API.ApplicationName)
	assert.Equal(t, 20, config.API.Pagination.DefaultSize)
	assert.Equal(t, 1000, config.API.Pagination.MaxSize)
	assert.Equal(t, 1024*1024, config.Security.JSONBodyLimit)
	assert.Equal(t, 15*time.Second, config.Metrics.Interval)
	assert.True(t, config.Swagger.Enabled)
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	withCleanViper(t)
	t.Setenv("CASETRACKER_API_PORT", "9090")
	t.Setenv("CASETRACKER_DATA_DIR", "/var/lib/casetracker")
	t.Setenv("CASETRACKER_LOGGING_LEVEL", "debug")

	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 9090, config.API.Port)
	assert.Equal(t, "debug", config.Logging.Level)
	assert.Equal(t, filepath.Join("/var/lib/casetracker", "casetracker.db"), config.GetSQLitePath())
}

func TestLoadConfig_File(t *testing.T) {
	withCleanViper(t)
	yaml := []byte("api:\n  port: 7070\n  application_name: clinicApp\ndatabase:\n  driver: sqlite\n")
	require.NoError(t, os.WriteFile("config.yaml", yaml, 0o600))

	config, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 7070, config.API.Port)
	assert.Equal(t, "clinicApp", config.API.ApplicationName)
}

func TestLoadConfig_ExplicitFile(t *testing.T) {
	withCleanViper(t)
	require.NoError(t, os.WriteFile("config.yaml", []byte("api:\n  port: 6060\n"), 0o600))
	custom := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(custom, []byte("api:\n  port: 7070\n"), 0o600))

	config, err := LoadConfig(custom)
	require.NoError(t, err)
	assert.Equal(t, 7070, config.API.Port)
	assert.Equal(t, custom, viper.ConfigFileUsed())
}

func TestLoadConfig_ExplicitFileMissing(t *testing.T) {
	withCleanViper(t)

	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_InvalidFileRejected(t *testing.T) {
	withCleanViper(t)
	require.NoError(t, os.WriteFile("config.yaml", []byte("api:\n  port: 0\n"), 0o600))

	_, err := LoadConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid API port")
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid config", mutate: func(c *Config) {}},
		{name: "unknown driver", mutate: func(c *Config) { c.Database.Driver = "mysql" }, wantErr: true},
		{name: "postgres without dsn", mutate: func(c *Config) { c.Database.Driver = DriverPostgres }, wantErr: true},
		{
			name: "postgres with bad scheme",
			mutate: func(c *Config) {
				c.Database.Driver = DriverPostgres
				c.Database.DSN = "mysql://localhost/db"
			},
			wantErr: true,
		},
		{
			name: "postgres with dsn",
			mutate: func(c *Config) {
				c.Database.Driver = DriverPostgres
				c.Database.DSN = "postgres://user:pw@localhost:5432/casetracker?sslmode=disable"
			},
		},
		{name: "idle above open", mutate: func(c *Config) { c.Database.MaxIdleConns = 30 }, wantErr: true},
		{name: "invalid API port", mutate: func(c *Config) { c.API.Port = 0 }, wantErr: true},
		{name: "TLS without cert", mutate: func(c *Config) { c.API.TLS = true }, wantErr: true},
		{name: "empty application name", mutate: func(c *Config) { c.API.ApplicationName = " " }, wantErr: true},
		{name: "bad proxy network", mutate: func(c *Config) { c.API.TrustedProxyNetworks = []string{"not-a-cidr"} }, wantErr: true},
		{name: "cidr proxy network", mutate: func(c *Config) { c.API.TrustedProxyNetworks = []string{"10.0.0.0/8"} }},
		{name: "zero rate", mutate: func(c *Config) { c.API.RateLimit.RequestsPerSecond = 0 }, wantErr: true},
		{
			name:   "zero rate with limiter disabled",
			mutate: func(c *Config) { c.API.RateLimit.Enabled = false; c.API.RateLimit.RequestsPerSecond = 0 },
		},
		{
			name: "redis without addr",
			mutate: func(c *Config) {
				c.API.RateLimit.Redis.Enabled = true
				c.API.RateLimit.Redis.Addr = ""
			},
			wantErr: true,
		},
		{name: "max page below default", mutate: func(c *Config) { c.API.Pagination.MaxSize = 10 }, wantErr: true},
		{name: "max page at limit", mutate: func(c *Config) { c.API.Pagination.MaxSize = core.MaxPageSize }},
		{name: "max page above limit", mutate: func(c *Config) { c.API.Pagination.MaxSize = core.MaxPageSize + 1 }, wantErr: true},
		{name: "tiny body limit", mutate: func(c *Config) { c.Security.JSONBodyLimit = 10 }, wantErr: true},
		{name: "bad log level", mutate: func(c *Config) { c.Logging.Level = "verbose" }, wantErr: true},
		{name: "bad log format", mutate: func(c *Config) { c.Logging.Format = "xml" }, wantErr: true},
		{name: "metrics interval too short", mutate: func(c *Config) { c.Metrics.Interval = time.Millisecond }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestConfig()
			tt.mutate(&c)
			err := validateConfig(&c)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateConfig_ProductionRequiresTLS(t *testing.T) {
	t.Setenv("CASETRACKER_ENV", "production")
	c := newTestConfig()
	assert.Error(t, validateConfig(&c))

	c.API.TLS = true
	c.API.CertFile = "server.crt"
	c.API.KeyFile = "server.key"
	assert.NoError(t, validateConfig(&c))
}

func TestResolveDataPaths(t *testing.T) {
	c := Config{}
	c.ResolveDataPaths()
	assert.Equal(t, "./data", c.DataPaths.DataDir)
	assert.Equal(t, filepath.Join("./data", "casetracker.db"), c.DataPaths.SQLitePath)

	mem := Config{DataPaths: DataPaths{SQLitePath: ":memory:"}}
	mem.ResolveDataPaths()
	assert.Equal(t, ":memory:", mem.GetSQLitePath())
}

func TestRedacted(t *testing.T) {
	c := newTestConfig()
	c.Database.DSN = "postgres://app:s3cret@db:5432/casetracker"
	c.API.RateLimit.Redis.Password = "hunter2"

	out := c.Redacted()
	assert.NotContains(t, out.Database.DSN, "s3cret")
	assert.Contains(t, out.Database.DSN, "app")
	assert.Equal(t, "[REDACTED]", out.API.RateLimit.Redis.Password)

	// original untouched
	assert.Equal(t, "hunter2", c.API.RateLimit.Redis.Password)
	out.API.AllowedOrigins[0] = "changed"
	assert.Equal(t, "http://localhost:9000", c.API.AllowedOrigins[0])
}
