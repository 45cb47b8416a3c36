//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"casegraph/infrastructure/config"

	"github.com/google/wire"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideMetrics,
	ProvideTracing,
	ProvideRedisClient,
	ProvideGraphStore,
	ProvideCache,
	ProvideCaseNetworkRepository,
	ProvideEventPublisher,
	ProvideSimilarityScorer,
	ProvideJWTValidator,
	ProvideRateLimiter,
	ProvideQueryBus,
	wire.Struct(new(Container),
		"Config", "Logger", "Store", "Repository", "Publisher", "QueryBus",
		"Metrics", "Tracer", "Redis", "Validator", "RateLimiter"),
)

// initializeContainer creates a fully wired container and the function that
// releases everything it opened
func initializeContainer(ctx context.Context, cfg *config.Config) (*Container, func(), error) {
	wire.Build(SuperSet)
	return nil, nil, nil // Wire will replace this
}
