package bootstrap

import (
	"fmt"
	"os"

	"casetracker/config"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// InitLogger builds the zap logger. format "json" selects the JSON encoder,
// anything else the colored console encoder.
func InitLogger(level, format string) (*zap.Logger, *zap.SugaredLogger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var encoder zapcore.Encoder
	if format == "json" {
		encoderConfig := zap.NewProductionEncoderConfig()
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoderConfig := zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder // Colored levels
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder        // Readable timestamps
		encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder      // Short file paths
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), lvl)

	logger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	return logger, logger.Sugar(), nil
}

// InitConfig loads the application configuration. An empty configFile uses
// the default search paths.
func InitConfig(configFile string) (*config.Config, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load config: %v\n", err)
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// logConfigSummary reports where configuration came from and the paths in use.
func logConfigSummary(cfg *config.Config, sugar *zap.SugaredLogger) {
	if viper.ConfigFileUsed() == "" {
		sugar.Info("No config file found, using defaults and env vars")
	} else {
		sugar.Infow("Config file loaded", "path", viper.ConfigFileUsed())
	}

	sugar.Infow("Config loaded",
		"database_driver", cfg.Database.Driver,
		"sqlite_path", cfg.GetSQLitePath(),
		"api_port", cfg.API.Port,
		"tls", cfg.API.TLS,
		"rate_limit", cfg.API.RateLimit.Enabled,
		"rate_limit_redis", cfg.API.RateLimit.Redis.Enabled)
}
