package ports

import (
	"context"
	"time"

	"casegraph/domain/events"
)

// CaseNetworkRepository is the read contract with the graph store.
// This is a port in hexagonal architecture - the domain doesn't know about the implementation
type CaseNetworkRepository interface {
	// FetchCaseNetwork walks from a case to its transaction, employee,
	// merchant, and category code. It returns a NotFound error when no case
	// matches.
	FetchCaseNetwork(ctx context.Context, caseID string) (*RawCaseNetwork, error)

	// FindEmployeeTransactions returns the employee's transactions with a
	// timestamp inside [from, to], excluding excludeTransactionID, each with
	// its merchant. Ordering is unspecified.
	FindEmployeeTransactions(ctx context.Context, employeeID, excludeTransactionID string, from, to time.Time) ([]RelatedCandidate, error)

	// FetchEmployeeNetwork returns an employee with up to limit of their most
	// recent transactions. It returns a NotFound error when no employee matches.
	FetchEmployeeNetwork(ctx context.Context, employeeID string, limit int) (*RawEmployeeNetwork, error)

	// Ping verifies store connectivity
	Ping(ctx context.Context) error
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// Close releases the underlying connection
	Close() error
}

// Cache defines the interface for caching serialized values
type Cache interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores a value in cache with a TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error
}

// Metrics records application-level measurements
type Metrics interface {
	ObserveQuery(query string, duration time.Duration, err error)
	ObserveStoreOperation(operation string, duration time.Duration, err error)
	ObserveCache(hit bool)
	ObserveGraph(nodeCount, linkCount int)
}
