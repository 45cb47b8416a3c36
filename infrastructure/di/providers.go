package di

import (
	"context"
	"fmt"
	"time"

	"casegraph/application/ports"
	"casegraph/application/queries"
	querybus "casegraph/application/queries/bus"
	queries_handlers "casegraph/application/queries/handlers"
	"casegraph/application/services"
	"casegraph/infrastructure/cache"
	"casegraph/infrastructure/config"
	"casegraph/infrastructure/messaging"
	"casegraph/infrastructure/observability"
	"casegraph/infrastructure/persistence/memory"
	casegraphneo4j "casegraph/infrastructure/persistence/neo4j"
	"casegraph/infrastructure/persistence/resilient"
	"casegraph/pkg/auth"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	metricsNamespace     = "casegraph"
	cachePrefix          = "casegraph:"
	cacheCleanupInterval = time.Minute
	shutdownGrace        = 5 * time.Second
)

// GraphStore is the undecorated graph store selected by configuration
type GraphStore ports.CaseNetworkRepository

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}

// ProvideMetrics creates the prometheus collector. It is always built; the
// router only exposes it when metrics are enabled.
func ProvideMetrics() *observability.Collector {
	return observability.NewCollector(metricsNamespace)
}

// ProvideTracing installs the OTLP tracer provider when tracing is enabled.
// The returned provider is nil otherwise.
func ProvideTracing(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*observability.TracerProvider, func(), error) {
	if !cfg.Observability.EnableTracing {
		return nil, func() {}, nil
	}

	tp, err := observability.InitTracing(ctx, observability.TracingConfig{
		ServiceName: cfg.Observability.ServiceName,
		Environment: cfg.Server.Environment,
		Endpoint:    cfg.Observability.OTLPEndpoint,
		Insecure:    cfg.Observability.OTLPInsecure,
		SampleRate:  cfg.Observability.SampleRate,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	cleanup := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Tracer provider shutdown failed", zap.Error(err))
		}
	}
	return tp, cleanup, nil
}

// ProvideRedisClient connects to redis when the cache or the rate limiter
// needs it. The returned client is nil otherwise.
func ProvideRedisClient(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*redis.Client, func(), error) {
	rateLimited := cfg.Auth.RateLimitPerMinute > 0 && cfg.Auth.RateLimitDriver == "redis"
	if cfg.Cache.Driver != "redis" && !rateLimited {
		return nil, func() {}, nil
	}

	client, err := cache.NewRedisClient(ctx, cache.RedisOptions{URL: cfg.Cache.RedisURL})
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		if err := client.Close(); err != nil {
			logger.Warn("Redis client close failed", zap.Error(err))
		}
	}
	return client, cleanup, nil
}

// ProvideGraphStore opens the configured graph store: a neo4j driver or the
// fixture-backed memory store, optionally reloaded when its file changes.
func ProvideGraphStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (GraphStore, func(), error) {
	switch cfg.Store.Driver {
	case "neo4j":
		neoCfg := casegraphneo4j.Config{
			URI:          cfg.Store.URI,
			Username:     cfg.Store.Username,
			Password:     cfg.Store.Password,
			Database:     cfg.Store.Database,
			QueryTimeout: cfg.Store.QueryTimeout,
		}
		driver, err := casegraphneo4j.NewDriver(ctx, neoCfg)
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
			defer cancel()
			if err := driver.Close(closeCtx); err != nil {
				logger.Warn("Neo4j driver close failed", zap.Error(err))
			}
		}
		logger.Info("Connected to neo4j", zap.String("uri", cfg.Store.URI))
		return casegraphneo4j.NewCaseNetworkRepository(driver, neoCfg, logger), cleanup, nil

	case "memory":
		repo, err := memory.NewFileRepository(cfg.Store.FixturePath, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load fixture: %w", err)
		}
		if !cfg.Store.WatchFixture {
			return repo, func() {}, nil
		}

		watcher, err := config.NewWatcher(repo.Path(), repo.Reload, logger)
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			if err := watcher.Close(); err != nil {
				logger.Warn("Fixture watcher close failed", zap.Error(err))
			}
		}
		return repo, cleanup, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

// ProvideCache creates the raw record cache. It is nil when caching is off.
func ProvideCache(cfg *config.Config, client *redis.Client, logger *zap.Logger) (ports.Cache, func()) {
	switch cfg.Cache.Driver {
	case "memory":
		c := cache.NewInMemoryCache(cacheCleanupInterval)
		return c, func() { c.Close() }
	case "redis":
		return cache.NewRedisCache(client, cachePrefix, logger), func() {}
	}
	return nil, func() {}
}

// ProvideCaseNetworkRepository decorates the store with the circuit breaker
// and, when configured, the raw record cache in front of it.
func ProvideCaseNetworkRepository(
	store GraphStore,
	recordCache ports.Cache,
	cfg *config.Config,
	metrics *observability.Collector,
	logger *zap.Logger,
) ports.CaseNetworkRepository {
	var repo ports.CaseNetworkRepository = store

	if cfg.Breaker.Enabled {
		repo = resilient.NewRepository(repo, resilient.BreakerConfig{
			Name:             "graph-store",
			MaxRequests:      cfg.Breaker.MaxRequests,
			Interval:         cfg.Breaker.Interval,
			Timeout:          cfg.Breaker.Timeout,
			MinRequests:      cfg.Breaker.MinRequests,
			FailureThreshold: cfg.Breaker.FailureThreshold,
		}, metrics, logger)
	}

	if recordCache != nil {
		repo = resilient.NewCachedRepository(repo, recordCache, cfg.Cache.TTL, metrics, logger)
	}
	return repo
}

// ProvideEventPublisher creates the audit event publisher
func ProvideEventPublisher(ctx context.Context, cfg *config.Config, logger *zap.Logger) (ports.EventPublisher, func(), error) {
	var publisher ports.EventPublisher

	switch cfg.Events.Driver {
	case "nats":
		p, err := messaging.NewNATSPublisher(cfg.Events.NATSURL, cfg.Events.NATSSubjectPrefix, logger)
		if err != nil {
			return nil, nil, err
		}
		publisher = p
	case "eventbridge":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Events.AWSRegion))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		publisher = messaging.NewEventBridgePublisher(awseventbridge.NewFromConfig(awsCfg), cfg.Events.EventBusName, logger)
	default:
		publisher = messaging.NoopPublisher{}
	}

	cleanup := func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("Event publisher close failed", zap.Error(err))
		}
	}
	return publisher, cleanup, nil
}

// ProvideSimilarityScorer creates the related transaction scorer
func ProvideSimilarityScorer(repo ports.CaseNetworkRepository, cfg *config.Config, logger *zap.Logger) *services.SimilarityScorer {
	return services.NewSimilarityScorer(repo, cfg.DomainRules(), logger)
}

// ProvideJWTValidator creates the token validator. It is nil when
// authentication is disabled.
func ProvideJWTValidator(cfg *config.Config) (*auth.JWTValidator, error) {
	if !cfg.Auth.Enabled {
		return nil, nil
	}
	return auth.NewJWTValidator(auth.JWTConfig{
		SecretKey: cfg.Auth.JWTSecret,
		Issuer:    cfg.Auth.JWTIssuer,
	})
}

// ProvideRateLimiter creates the per-client rate limiter. It is nil when no
// limit is configured.
func ProvideRateLimiter(cfg *config.Config, client *redis.Client) auth.RateLimiter {
	limit := cfg.Auth.RateLimitPerMinute
	if limit <= 0 {
		return nil
	}
	if cfg.Auth.RateLimitDriver == "redis" {
		return auth.NewRedisRateLimiter(client, limit, time.Minute)
	}
	return auth.NewIPRateLimiter(auth.NewSlidingWindowLimiter(limit, time.Minute))
}

// QueryHandlerAdapter adapts specific query handlers to the generic interface
type QueryHandlerAdapter struct {
	handler func(context.Context, querybus.Query) (interface{}, error)
}

func (a *QueryHandlerAdapter) Handle(ctx context.Context, query querybus.Query) (interface{}, error) {
	return a.handler(ctx, query)
}

// ProvideQueryBus creates a query bus with registered handlers
func ProvideQueryBus(
	repo ports.CaseNetworkRepository,
	scorer *services.SimilarityScorer,
	publisher ports.EventPublisher,
	metrics *observability.Collector,
	cfg *config.Config,
	logger *zap.Logger,
) (*querybus.QueryBus, error) {
	middleware := []querybus.Middleware{querybus.NewMetricsMiddleware(metrics)}
	if cfg.Observability.EnableTracing {
		middleware = append([]querybus.Middleware{querybus.NewTracingMiddleware()}, middleware...)
	}
	queryBus := querybus.NewQueryBus(middleware...)

	// Register GetCaseNetworkQuery handler
	caseNetworkHandler := queries_handlers.NewGetCaseNetworkHandler(repo, scorer, publisher, metrics, logger)
	if err := queryBus.Register(queries.GetCaseNetworkQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			q, ok := query.(queries.GetCaseNetworkQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type %T", query)
			}
			return caseNetworkHandler.Handle(ctx, q)
		},
	}); err != nil {
		return nil, err
	}

	// Register GetRelatedTransactionsQuery handler
	relatedHandler := queries_handlers.NewGetRelatedTransactionsHandler(repo, scorer, publisher, logger)
	if err := queryBus.Register(queries.GetRelatedTransactionsQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			q, ok := query.(queries.GetRelatedTransactionsQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type %T", query)
			}
			return relatedHandler.Handle(ctx, q)
		},
	}); err != nil {
		return nil, err
	}

	// Register GetEmployeeNetworkQuery handler
	employeeHandler := queries_handlers.NewGetEmployeeNetworkHandler(repo, cfg.DomainRules(), publisher, metrics, logger)
	if err := queryBus.Register(queries.GetEmployeeNetworkQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			q, ok := query.(queries.GetEmployeeNetworkQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type %T", query)
			}
			return employeeHandler.Handle(ctx, q)
		},
	}); err != nil {
		return nil, err
	}

	return queryBus, nil
}
