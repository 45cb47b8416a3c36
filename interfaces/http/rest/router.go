package rest

import (
	"net/http"

	querybus "casegraph/application/queries/bus"
	"casegraph/interfaces/http/rest/handlers"
	"casegraph/interfaces/http/rest/middleware"
	"casegraph/pkg/auth"
	pkgerrors "casegraph/pkg/errors"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Options carries the optional parts of the router
type Options struct {
	CORSOrigins []string
	// Validator enables bearer authentication on /api when set
	Validator *auth.JWTValidator
	// RateLimiter throttles /api per client IP when set
	RateLimiter auth.RateLimiter
	// Metrics records every request and serves /metrics when set
	Metrics MetricsExporter
	Debug   bool
}

// MetricsExporter records HTTP requests and exposes the registry
type MetricsExporter interface {
	middleware.HTTPMetrics
	Handler() http.Handler
}

// Router creates and configures the HTTP router
type Router struct {
	queryBus *querybus.QueryBus
	store    handlers.Pinger
	opts     Options
	logger   *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	queryBus *querybus.QueryBus,
	store handlers.Pinger,
	opts Options,
	logger *zap.Logger,
) *Router {
	return &Router{
		queryBus: queryBus,
		store:    store,
		opts:     opts,
		logger:   logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()
	errorHandler := pkgerrors.NewErrorHandler(rt.logger, rt.opts.Debug)

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(errorHandler.Middleware)
	router.Use(middleware.Logger(rt.logger))
	if rt.opts.Metrics != nil {
		router.Use(middleware.Metrics(rt.opts.Metrics))
	}

	origins := rt.opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	health := handlers.NewHealthHandler(rt.store, rt.logger)
	router.Get("/health", health.Health)
	router.Get("/ready", health.Ready)
	if rt.opts.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", rt.opts.Metrics.Handler())
	}

	router.Route("/api", func(r chi.Router) {
		if rt.opts.RateLimiter != nil {
			r.Use(middleware.RateLimit(rt.opts.RateLimiter, rt.logger))
		}
		if rt.opts.Validator != nil {
			r.Use(middleware.Authenticate(rt.opts.Validator, rt.logger))
		}

		graphHandler := handlers.NewGraphHandler(rt.queryBus, errorHandler, rt.logger)

		r.Route("/graph", func(r chi.Router) {
			r.Get("/case/{caseId}", graphHandler.GetCaseNetwork)
			r.Get("/case/{caseId}/view", graphHandler.ViewCaseNetwork)
			r.Get("/case/{caseId}/svg", graphHandler.GetCaseNetworkSVG)
			r.Get("/employee/{employeeId}", graphHandler.GetEmployeeNetwork)
		})

		r.Get("/cases/{caseId}/related", graphHandler.GetRelatedTransactions)
	})

	return router
}
