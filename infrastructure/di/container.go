package di

import (
	"context"
	"net/http"
	"sync"

	"casegraph/application/ports"
	querybus "casegraph/application/queries/bus"
	"casegraph/infrastructure/config"
	"casegraph/infrastructure/observability"
	"casegraph/interfaces/http/rest"
	"casegraph/pkg/auth"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	Store       GraphStore
	Repository  ports.CaseNetworkRepository
	Publisher   ports.EventPublisher
	QueryBus    *querybus.QueryBus
	Metrics     *observability.Collector
	Tracer      *observability.TracerProvider
	Redis       *redis.Client
	Validator   *auth.JWTValidator
	RateLimiter auth.RateLimiter

	cleanup   func()
	closeOnce sync.Once
}

// InitializeContainer creates a fully wired container. The store connection
// is verified before it returns.
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	c, cleanup, err := initializeContainer(ctx, cfg)
	if err != nil {
		return nil, err
	}
	c.cleanup = cleanup
	return c, nil
}

// Handler builds the HTTP router over the container's query bus
func (c *Container) Handler() http.Handler {
	opts := rest.Options{
		CORSOrigins: c.Config.Server.CORSOrigins,
		Validator:   c.Validator,
		RateLimiter: c.RateLimiter,
		Debug:       c.Config.LogLevel == "debug",
	}
	if c.Config.Observability.EnableMetrics {
		opts.Metrics = c.Metrics
	}
	return rest.NewRouter(c.QueryBus, c.Repository, opts, c.Logger).Setup()
}

// Close releases everything the container opened. It is safe to call more
// than once.
func (c *Container) Close() {
	c.closeOnce.Do(func() {
		if c.cleanup != nil {
			c.cleanup()
		}
		_ = c.Logger.Sync()
	})
}
