// Package api Casetracker API
//
//	@title			Casetracker API
//	@version		1.0
//	@description	API for managing case definitions and examines
//	@termsOfService	http://swagger.io/terms/
//
// @license.name	MIT
// @license.url	https://opensource.org/licenses/MIT
//
// @host		localhost:8080
// @BasePath	/
package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"casetracker/config"
	"casetracker/core"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// CaseDefinitionService is the controller surface for case definitions
type CaseDefinitionService interface {
	Create(ctx context.Context, c *core.CaseDefinition) (*core.CaseDefinition, error)
	Replace(ctx context.Context, pathID int64, c *core.CaseDefinition) (*core.CaseDefinition, error)
	PartialUpdate(ctx context.Context, pathID int64, patch *core.CaseDefinitionPatch) (*core.CaseDefinition, error)
	Get(ctx context.Context, id int64) (*core.CaseDefinition, error)
	List(ctx context.Context, req core.PageRequest) (*core.Page[*core.CaseDefinition], error)
	Delete(ctx context.Context, id int64) error
}

// ExamineService is the controller surface for examines
type ExamineService interface {
	Create(ctx context.Context, e *core.Examine) (*core.Examine, error)
	Replace(ctx context.Context, pathID int64, e *core.Examine) (*core.Examine, error)
	PartialUpdate(ctx context.Context, pathID int64, patch *core.ExaminePatch) (*core.Examine, error)
	Get(ctx context.Context, id int64) (*core.Examine, error)
	List(ctx context.Context, req core.PageRequest) (*core.Page[*core.Examine], error)
	Delete(ctx context.Context, id int64) error
}

// HealthChecker reports database reachability
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// API holds the API server
type API struct {
	router          *mux.Router
	handler         http.Handler
	server          *http.Server
	caseDefinitions CaseDefinitionService
	examines        ExamineService
	health          HealthChecker
	limiter         RateLimiter
	validate        *validator.Validate
	config          *config.Config
	logger          *zap.SugaredLogger
	stopCh          chan struct{}
	stopOnce        sync.Once
	serverMu        sync.Mutex
}

// NewAPI creates a new API server. When limiter is nil and rate limiting is
// enabled, an in-process limiter is used.
func NewAPI(caseDefinitions CaseDefinitionService, examines ExamineService, health HealthChecker, limiter RateLimiter, cfg *config.Config, logger *zap.SugaredLogger) *API {
	if caseDefinitions == nil || examines == nil {
		panic("api: services are required")
	}
	if cfg == nil {
		panic("api: config is required")
	}
	if logger == nil {
		panic("api: logger is required")
	}

	a := &API{
		router:          mux.NewRouter(),
		caseDefinitions: caseDefinitions,
		examines:        examines,
		health:          health,
		limiter:         limiter,
		validate:        newValidator(),
		config:          cfg,
		logger:          logger,
		stopCh:          make(chan struct{}),
	}

	if a.limiter == nil && cfg.API.RateLimit.Enabled {
		a.limiter = NewLocalRateLimiter(cfg.API.RateLimit.RequestsPerSecond, cfg.API.RateLimit.Burst, time.Hour)
	}

	a.setupRoutes()
	return a
}

// setupRoutes sets up the API routes
func (a *API) setupRoutes() {
	a.router.Use(a.metricsMiddleware)

	r := a.router.PathPrefix("/api").Subrouter()
	r.HandleFunc("/"+core.ResourceCaseDefinitions, a.createCaseDefinition).Methods("POST")
	r.HandleFunc("/"+core.ResourceCaseDefinitions, a.getAllCaseDefinitions).Methods("GET")
	r.HandleFunc("/"+core.ResourceCaseDefinitions+"/{id}", a.getCaseDefinition).Methods("GET")
	r.HandleFunc("/"+core.ResourceCaseDefinitions+"/{id}", a.updateCaseDefinition).Methods("PUT")
	r.HandleFunc("/"+core.ResourceCaseDefinitions+"/{id}", a.partialUpdateCaseDefinition).Methods("PATCH")
	r.HandleFunc("/"+core.ResourceCaseDefinitions+"/{id}", a.deleteCaseDefinition).Methods("DELETE")

	r.HandleFunc("/"+core.ResourceExamines, a.createExamine).Methods("POST")
	r.HandleFunc("/"+core.ResourceExamines, a.getAllExamines).Methods("GET")
	r.HandleFunc("/"+core.ResourceExamines+"/{id}", a.getExamine).Methods("GET")
	r.HandleFunc("/"+core.ResourceExamines+"/{id}", a.updateExamine).Methods("PUT")
	r.HandleFunc("/"+core.ResourceExamines+"/{id}", a.partialUpdateExamine).Methods("PATCH")
	r.HandleFunc("/"+core.ResourceExamines+"/{id}", a.deleteExamine).Methods("DELETE")

	a.router.HandleFunc("/health", a.healthCheck).Methods("GET")
	if a.config.Metrics.Enabled {
		a.router.Handle("/metrics", promhttp.Handler())
	}

	// Swagger UI
	if a.config.Swagger.Enabled {
		a.router.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)
	}

	// Outer middleware wraps the router so it also runs for unmatched routes
	// and CORS preflight requests.
	var h http.Handler = a.router
	if a.limiter != nil {
		h = a.rateLimitMiddleware(h)
	}
	h = a.corsMiddleware(h)
	a.handler = a.requestIDMiddleware(h)
}

// Handler returns the fully wrapped HTTP handler
func (a *API) Handler() http.Handler {
	return a.handler
}

func (a *API) newServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// prepareServer creates the server unless Stop already ran
func (a *API) prepareServer(addr string) (*http.Server, error) {
	a.serverMu.Lock()
	defer a.serverMu.Unlock()
	select {
	case <-a.stopCh:
		return nil, http.ErrServerClosed
	default:
	}
	a.server = a.newServer(addr)
	return a.server, nil
}

// Start starts the API server
func (a *API) Start(addr string) error {
	srv, err := a.prepareServer(addr)
	if err != nil {
		return err
	}
	return srv.ListenAndServe()
}

// StartTLS starts the API server with TLS
func (a *API) StartTLS(addr, certFile, keyFile string) error {
	srv, err := a.prepareServer(addr)
	if err != nil {
		return err
	}
	return srv.ListenAndServeTLS(certFile, keyFile)
}

// Stop stops the API server
func (a *API) Stop(ctx context.Context) error {
	a.serverMu.Lock()
	a.stopOnce.Do(func() {
		close(a.stopCh)
		if closer, ok := a.limiter.(interface{ Close() }); ok {
			closer.Close()
		}
	})
	srv := a.server
	a.serverMu.Unlock()

	if srv != nil {
		return srv.Shutdown(ctx)
	}
	return nil
}

// healthCheck godoc
//
//	@Summary		Health check
//	@Description	Reports whether the database is reachable
//	@Tags			system
//	@Produce		json
//	@Success		200	{object}	map[string]string
//	@Failure		503	{object}	map[string]string
//	@Router			/health [get]
func (a *API) healthCheck(w http.ResponseWriter, r *http.Request) {
	if a.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := a.health.HealthCheck(ctx); err != nil {
			a.logger.Errorw("Health check failed", "error", err)
			a.respondJSON(w, map[string]string{"status": "unhealthy"}, http.StatusServiceUnavailable)
			return
		}
	}
	a.respondJSON(w, map[string]string{"status": "healthy"}, http.StatusOK)
}
