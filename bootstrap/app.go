package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"casetracker/api"
	"casetracker/config"
	"casetracker/service"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

// tracerName identifies spans started by the service layer.
const tracerName = "casetracker/service"

// App represents the casetracker application with all its components.
type App struct {
	// Configuration
	Config *config.Config
	Logger *zap.Logger
	Sugar  *zap.SugaredLogger

	// Storage
	Storage *StorageComponents
	Redis   *redis.Client

	// Services
	CaseDefinitions *service.CaseDefinitionServiceImpl
	Examines        *service.ExamineServiceImpl
	APIServer       *api.API

	// Lifecycle
	serviceWg    *sync.WaitGroup
	stopMetrics  context.CancelFunc
	serverErrCh  chan error
	shutdownOnce sync.Once
}

// NewApp loads configuration from configFile (or the default search paths when
// empty) and initializes every component up to, but not including, the
// listening HTTP server.
func NewApp(ctx context.Context, configFile string) (*App, error) {
	cfg, err := InitConfig(configFile)
	if err != nil {
		return nil, err
	}
	return NewAppWithConfig(ctx, cfg)
}

// NewAppWithConfig initializes the application from an already loaded configuration.
func NewAppWithConfig(ctx context.Context, cfg *config.Config) (*App, error) {
	logger, sugar, err := InitLogger(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	app := &App{
		Config:      cfg,
		Logger:      logger,
		Sugar:       sugar,
		serviceWg:   &sync.WaitGroup{},
		serverErrCh: make(chan error, 1),
	}

	sugar.Info("casetracker starting...")
	logConfigSummary(cfg, sugar)

	// Pre-flight checks
	if err := EnsureDataDirectories(cfg, sugar); err != nil {
		return nil, fmt.Errorf("pre-flight check failed: %w", err)
	}

	db, err := InitDatabase(ctx, cfg, sugar)
	if err != nil {
		return nil, err
	}
	app.Storage = InitStores(db, sugar)

	tracer := otel.Tracer(tracerName)
	app.CaseDefinitions = service.NewCaseDefinitionService(app.Storage.CaseDefinitions, sugar.Named("case_definition_service"), service.WithTracer(tracer))
	app.Examines = service.NewExamineService(app.Storage.Examines, sugar.Named("examine_service"), service.WithTracer(tracer))

	limiter, redisClient := InitRateLimiter(ctx, cfg, sugar)
	app.Redis = redisClient

	app.APIServer = api.NewAPI(app.CaseDefinitions, app.Examines, db, limiter, cfg, sugar.Named("api"))

	return app, nil
}

// Start begins pool metrics collection and serves the API in the background.
func (a *App) Start(ctx context.Context) error {
	if a.APIServer == nil {
		return errors.New("application not initialized")
	}

	if a.Config.Metrics.Enabled {
		metricsCtx, cancel := context.WithCancel(ctx)
		a.stopMetrics = cancel
		a.Storage.Database.StartMetricsCollection(metricsCtx, a.Config.Metrics.Interval)
	}

	a.startAPIServer()
	return nil
}

// WaitForShutdown blocks until a shutdown signal is received or the API
// server exits on its own.
func (a *App) WaitForShutdown() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(c)

	select {
	case sig := <-c:
		a.Sugar.Infow("Shutdown signal received", "signal", sig.String())
	case err := <-a.serverErrCh:
		a.Sugar.Errorw("API server stopped unexpectedly", "error", err)
	}
}

// Shutdown gracefully shuts down all components. It is safe to call more than once.
func (a *App) Shutdown() {
	a.shutdownOnce.Do(a.shutdown)
}

func (a *App) shutdown() {
	a.Sugar.Info("Shutting down...")

	// Phase 1 - Stop accepting requests and drain in-flight ones
	a.Sugar.Info("Phase 1: Stopping API server...")
	if a.APIServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.APIServer.Stop(ctx); err != nil {
			a.Sugar.Errorw("Failed to stop API server", "error", err)
		}
		cancel()
	}

	// Phase 2 - Wait for service goroutines
	a.Sugar.Info("Phase 2: Waiting for service goroutines to complete...")
	done := make(chan struct{})
	go func() {
		a.serviceWg.Wait()
		close(done)
	}()
	select {
	case <-done:
		a.Sugar.Info("All service goroutines stopped successfully")
	case <-time.After(10 * time.Second):
		a.Sugar.Warn("Service goroutine shutdown timed out")
	}

	// Phase 3 - Stop background collectors
	a.Sugar.Info("Phase 3: Stopping metrics collection...")
	if a.stopMetrics != nil {
		a.stopMetrics()
	}

	// Phase 4 - Close connections
	a.Sugar.Info("Phase 4: Closing connections...")
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Sugar.Errorw("Failed to close Redis client", "error", err)
		}
	}
	if a.Storage != nil && a.Storage.Database != nil {
		if err := a.Storage.Database.Close(); err != nil {
			a.Sugar.Errorw("Failed to close database", "error", err)
		}
	}

	a.Sugar.Info("Shutdown complete")
	_ = a.Logger.Sync()
}

// startAPIServer serves the API in a tracked goroutine.
func (a *App) startAPIServer() {
	a.serviceWg.Add(1)
	go func() {
		defer a.serviceWg.Done()
		addr := fmt.Sprintf(":%d", a.Config.API.Port)
		a.Sugar.Infow("API server started", "addr", addr, "tls", a.Config.API.TLS)

		var err error
		if a.Config.API.TLS {
			err = a.APIServer.StartTLS(addr, a.Config.API.CertFile, a.Config.API.KeyFile)
		} else {
			err = a.APIServer.Start(addr)
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Sugar.Errorw("API server error", "error", err)
			a.serverErrCh <- err
		}
	}()
}
