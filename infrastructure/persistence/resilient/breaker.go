// Package resilient decorates a CaseNetworkRepository with a circuit breaker,
// tracing, store metrics, and an optional raw record cache.
package resilient

import (
	"context"
	"errors"
	"time"

	"casegraph/application/ports"
	pkgerrors "casegraph/pkg/errors"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// BreakerConfig configures the circuit breaker around the store
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32        // probes allowed while half-open
	Interval         time.Duration // closed-state counter reset period
	Timeout          time.Duration // open duration before probing
	MinRequests      uint32
	FailureThreshold float64 // failure ratio that trips the breaker
}

// DefaultBreakerConfig returns the breaker settings used in production
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:             "graph-store",
		MaxRequests:      3,
		Interval:         60 * time.Second,
		Timeout:          30 * time.Second,
		MinRequests:      5,
		FailureThreshold: 0.6,
	}
}

// BreakerStateRecorder receives breaker state changes as 0 closed, 1 half-open, 2 open
type BreakerStateRecorder interface {
	SetBreakerState(name string, state int)
}

// Repository guards a store with a circuit breaker
type Repository struct {
	inner   ports.CaseNetworkRepository
	breaker *gobreaker.CircuitBreaker
	name    string
	metrics ports.Metrics
	tracer  trace.Tracer
	logger  *zap.Logger
}

var _ ports.CaseNetworkRepository = (*Repository)(nil)

// NewRepository wraps inner. metrics may be nil; when it also implements
// BreakerStateRecorder it is told about every state change.
func NewRepository(inner ports.CaseNetworkRepository, cfg BreakerConfig, metrics ports.Metrics, logger *zap.Logger) *Repository {
	if cfg.Name == "" {
		cfg.Name = DefaultBreakerConfig().Name
	}
	r := &Repository{
		inner:   inner,
		name:    cfg.Name,
		metrics: metrics,
		tracer:  otel.Tracer("casegraph/store"),
		logger:  logger,
	}

	recorder, _ := metrics.(BreakerStateRecorder)
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureThreshold
		},
		// A missing case is an answer, not a store failure
		IsSuccessful: func(err error) bool {
			return err == nil || pkgerrors.IsNotFound(err) || pkgerrors.IsValidation(err) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			if recorder != nil {
				recorder.SetBreakerState(name, int(to))
			}
		},
	}
	r.breaker = gobreaker.NewCircuitBreaker(settings)
	if recorder != nil {
		recorder.SetBreakerState(cfg.Name, int(gobreaker.StateClosed))
	}
	return r
}

// State returns the current breaker state
func (r *Repository) State() gobreaker.State {
	return r.breaker.State()
}

func (r *Repository) execute(ctx context.Context, operation string, attrs []attribute.KeyValue, fn func(ctx context.Context) (any, error)) (any, error) {
	ctx, span := r.tracer.Start(ctx, "store."+operation, trace.WithAttributes(attrs...))
	defer span.End()

	start := time.Now()
	result, err := r.breaker.Execute(func() (any, error) {
		return fn(ctx)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		r.logger.Warn("Graph store call rejected by circuit breaker",
			zap.String("operation", operation),
			zap.String("state", r.breaker.State().String()),
		)
		err = pkgerrors.NewUnavailableError(r.name).WithCause(err)
	}

	if r.metrics != nil {
		observed := err
		if pkgerrors.IsNotFound(err) {
			observed = nil
		}
		r.metrics.ObserveStoreOperation(operation, time.Since(start), observed)
	}
	if err != nil && !pkgerrors.IsNotFound(err) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return result, err
}

// FetchCaseNetwork implements ports.CaseNetworkRepository
func (r *Repository) FetchCaseNetwork(ctx context.Context, caseID string) (*ports.RawCaseNetwork, error) {
	result, err := r.execute(ctx, "FetchCaseNetwork",
		[]attribute.KeyValue{attribute.String("case.id", caseID)},
		func(ctx context.Context) (any, error) {
			return r.inner.FetchCaseNetwork(ctx, caseID)
		})
	if err != nil {
		return nil, err
	}
	return result.(*ports.RawCaseNetwork), nil
}

// FindEmployeeTransactions implements ports.CaseNetworkRepository
func (r *Repository) FindEmployeeTransactions(ctx context.Context, employeeID, excludeTransactionID string, from, to time.Time) ([]ports.RelatedCandidate, error) {
	result, err := r.execute(ctx, "FindEmployeeTransactions",
		[]attribute.KeyValue{attribute.String("employee.id", employeeID)},
		func(ctx context.Context) (any, error) {
			return r.inner.FindEmployeeTransactions(ctx, employeeID, excludeTransactionID, from, to)
		})
	if err != nil {
		return nil, err
	}
	return result.([]ports.RelatedCandidate), nil
}

// FetchEmployeeNetwork implements ports.CaseNetworkRepository
func (r *Repository) FetchEmployeeNetwork(ctx context.Context, employeeID string, limit int) (*ports.RawEmployeeNetwork, error) {
	result, err := r.execute(ctx, "FetchEmployeeNetwork",
		[]attribute.KeyValue{attribute.String("employee.id", employeeID), attribute.Int("limit", limit)},
		func(ctx context.Context) (any, error) {
			return r.inner.FetchEmployeeNetwork(ctx, employeeID, limit)
		})
	if err != nil {
		return nil, err
	}
	return result.(*ports.RawEmployeeNetwork), nil
}

// Ping bypasses the breaker so readiness reflects the store itself
func (r *Repository) Ping(ctx context.Context) error {
	return r.inner.Ping(ctx)
}
