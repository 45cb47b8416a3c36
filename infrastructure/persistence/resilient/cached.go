package resilient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"casegraph/application/ports"

	"go.uber.org/zap"
)

// CachedRepository caches raw store records. Graphs are never cached; they
// are rebuilt from the raw record on every request.
type CachedRepository struct {
	inner   ports.CaseNetworkRepository
	cache   ports.Cache
	ttl     time.Duration
	metrics ports.Metrics
	logger  *zap.Logger
}

var _ ports.CaseNetworkRepository = (*CachedRepository)(nil)

// NewCachedRepository wraps inner with cache. metrics may be nil.
func NewCachedRepository(inner ports.CaseNetworkRepository, cache ports.Cache, ttl time.Duration, metrics ports.Metrics, logger *zap.Logger) *CachedRepository {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachedRepository{
		inner:   inner,
		cache:   cache,
		ttl:     ttl,
		metrics: metrics,
		logger:  logger,
	}
}

func caseKey(caseID string) string {
	return "casenet:case:" + caseID
}

func candidatesKey(employeeID, excludeID string, from, to time.Time) string {
	return fmt.Sprintf("casenet:related:%s:%s:%d:%d", employeeID, excludeID, from.Unix(), to.Unix())
}

func employeeKey(employeeID string, limit int) string {
	return fmt.Sprintf("casenet:employee:%s:%d", employeeID, limit)
}

// lookup decodes a cached value into out and reports whether it hit
func (r *CachedRepository) lookup(ctx context.Context, key string, out any) bool {
	data, ok := r.cache.Get(ctx, key)
	if ok {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(out); err != nil {
			r.logger.Warn("Dropping undecodable cache entry", zap.String("key", key), zap.Error(err))
			_ = r.cache.Delete(ctx, key)
			ok = false
		}
	}
	if r.metrics != nil {
		r.metrics.ObserveCache(ok)
	}
	return ok
}

func (r *CachedRepository) store(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		r.logger.Warn("Failed to encode cache entry", zap.String("key", key), zap.Error(err))
		return
	}
	if err := r.cache.Set(ctx, key, data, r.ttl); err != nil {
		r.logger.Warn("Failed to write cache entry", zap.String("key", key), zap.Error(err))
	}
}

// FetchCaseNetwork implements ports.CaseNetworkRepository. Misses, including
// NotFound, are not cached.
func (r *CachedRepository) FetchCaseNetwork(ctx context.Context, caseID string) (*ports.RawCaseNetwork, error) {
	key := caseKey(caseID)
	var cached ports.RawCaseNetwork
	if r.lookup(ctx, key, &cached) {
		return &cached, nil
	}

	network, err := r.inner.FetchCaseNetwork(ctx, caseID)
	if err != nil {
		return nil, err
	}
	r.store(ctx, key, network)
	return network, nil
}

// FindEmployeeTransactions implements ports.CaseNetworkRepository
func (r *CachedRepository) FindEmployeeTransactions(ctx context.Context, employeeID, excludeTransactionID string, from, to time.Time) ([]ports.RelatedCandidate, error) {
	key := candidatesKey(employeeID, excludeTransactionID, from, to)
	var cached []ports.RelatedCandidate
	if r.lookup(ctx, key, &cached) {
		return cached, nil
	}

	candidates, err := r.inner.FindEmployeeTransactions(ctx, employeeID, excludeTransactionID, from, to)
	if err != nil {
		return nil, err
	}
	r.store(ctx, key, candidates)
	return candidates, nil
}

// FetchEmployeeNetwork implements ports.CaseNetworkRepository
func (r *CachedRepository) FetchEmployeeNetwork(ctx context.Context, employeeID string, limit int) (*ports.RawEmployeeNetwork, error) {
	key := employeeKey(employeeID, limit)
	var cached ports.RawEmployeeNetwork
	if r.lookup(ctx, key, &cached) {
		return &cached, nil
	}

	network, err := r.inner.FetchEmployeeNetwork(ctx, employeeID, limit)
	if err != nil {
		return nil, err
	}
	r.store(ctx, key, network)
	return network, nil
}

// Ping implements ports.CaseNetworkRepository
func (r *CachedRepository) Ping(ctx context.Context) error {
	return r.inner.Ping(ctx)
}
