package bootstrap

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"casetracker/api"
	"casetracker/config"
	"casetracker/storage"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// StorageComponents holds all storage-related components.
type StorageComponents struct {
	Database        *storage.Database
	CaseDefinitions *storage.CaseDefinitionStore
	Examines        *storage.ExamineStore
}

// postgresRetryDelays are the waits between Postgres connection attempts.
var postgresRetryDelays = []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second}

// InitDatabase opens the configured database driver and ensures the schema.
func InitDatabase(ctx context.Context, cfg *config.Config, sugar *zap.SugaredLogger) (*storage.Database, error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		return initPostgres(ctx, cfg, sugar)
	default:
		return initSQLite(cfg.GetSQLitePath(), sugar)
	}
}

func initSQLite(path string, sugar *zap.SugaredLogger) (*storage.Database, error) {
	db, err := storage.NewSQLite(path, sugar)
	if err != nil {
		printFatal("SQLite Initialization Failed", ClassifySQLiteError(err, path))
		return nil, fmt.Errorf("failed to initialize SQLite: %w", err)
	}

	sugar.Info("SQLite initialized successfully")
	return db, nil
}

// initPostgres connects with retry so the service tolerates a database that
// is still starting.
func initPostgres(ctx context.Context, cfg *config.Config, sugar *zap.SugaredLogger) (*storage.Database, error) {
	opts := storage.PostgresOptions{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}
	addr := postgresHost(cfg.Database.DSN)

	var db *storage.Database
	var lastErr error

	for attempt := 0; attempt <= len(postgresRetryDelays); attempt++ {
		if attempt > 0 {
			delay := postgresRetryDelays[attempt-1]
			sugar.Infow("Retrying Postgres connection",
				"attempt", attempt,
				"max_retries", len(postgresRetryDelays),
				"delay", delay)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		db, lastErr = storage.NewPostgres(ctx, cfg.Database.DSN, opts, sugar)
		if lastErr == nil {
			break
		}

		sugar.Warnw("Postgres connection attempt failed",
			"attempt", attempt+1,
			"error", lastErr)
	}

	if lastErr != nil {
		printFatal("Postgres Connection Failed", ClassifyConnectionError(lastErr, "Postgres", addr))
		return nil, fmt.Errorf("failed to connect to Postgres after %d attempts: %w", len(postgresRetryDelays)+1, lastErr)
	}

	sugar.Infow("Connected to Postgres successfully", "host", addr)
	return db, nil
}

// postgresHost extracts host:port from a DSN for log and error output.
func postgresHost(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.Host == "" {
		return "postgres"
	}
	return u.Host
}

// InitStores creates the entity stores over db.
func InitStores(db *storage.Database, sugar *zap.SugaredLogger) *StorageComponents {
	return &StorageComponents{
		Database:        db,
		CaseDefinitions: storage.NewCaseDefinitionStore(db, sugar.Named("case_definitions")),
		Examines:        storage.NewExamineStore(db, sugar.Named("examines")),
	}
}

// InitRateLimiter builds the request limiter. With the Redis backend enabled
// it returns a Redis limiter with an in-process fallback; if Redis cannot be
// reached at startup the in-process limiter is used alone. The returned
// client is nil unless Redis is in use and must be closed by the caller.
func InitRateLimiter(ctx context.Context, cfg *config.Config, sugar *zap.SugaredLogger) (api.RateLimiter, *redis.Client) {
	rl := cfg.API.RateLimit
	if !rl.Enabled {
		sugar.Info("Rate limiting disabled by configuration")
		return nil, nil
	}

	local := api.NewLocalRateLimiter(rl.RequestsPerSecond, rl.Burst, time.Hour)
	if !rl.Redis.Enabled {
		sugar.Infow("Rate limiting enabled", "backend", api.RateLimitBackendMemory, "rps", rl.RequestsPerSecond, "burst", rl.Burst)
		return local, nil
	}

	client := api.NewRedisClient(rl.Redis)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		sugar.Warnw("Redis unavailable, using in-process rate limiter",
			"addr", rl.Redis.Addr,
			"error", err,
			"detail", ClassifyConnectionError(err, "Redis", rl.Redis.Addr))
		_ = client.Close()
		return local, nil
	}

	limit := int(rl.RequestsPerSecond * rl.Window.Seconds())
	if limit < 1 {
		limit = 1
	}
	sugar.Infow("Rate limiting enabled", "backend", api.RateLimitBackendRedis, "addr", rl.Redis.Addr, "limit", limit, "window", rl.Window)
	return api.NewRedisRateLimiter(client, limit, rl.Window, local, sugar.Named("ratelimit")), client
}
