// Package portstest provides testify mocks for the application ports and
// builders for raw store records.
package portstest

import (
	"context"
	"time"

	"casegraph/application/ports"
	"casegraph/domain/events"

	"github.com/stretchr/testify/mock"
)

// MockCaseNetworkRepository is a mock ports.CaseNetworkRepository
type MockCaseNetworkRepository struct {
	mock.Mock
}

func (m *MockCaseNetworkRepository) FetchCaseNetwork(ctx context.Context, caseID string) (*ports.RawCaseNetwork, error) {
	args := m.Called(ctx, caseID)
	if args.Get(0) != nil {
		return args.Get(0).(*ports.RawCaseNetwork), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCaseNetworkRepository) FindEmployeeTransactions(ctx context.Context, employeeID, excludeTransactionID string, from, to time.Time) ([]ports.RelatedCandidate, error) {
	args := m.Called(ctx, employeeID, excludeTransactionID, from, to)
	if args.Get(0) != nil {
		return args.Get(0).([]ports.RelatedCandidate), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCaseNetworkRepository) FetchEmployeeNetwork(ctx context.Context, employeeID string, limit int) (*ports.RawEmployeeNetwork, error) {
	args := m.Called(ctx, employeeID, limit)
	if args.Get(0) != nil {
		return args.Get(0).(*ports.RawEmployeeNetwork), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCaseNetworkRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockEventPublisher is a mock ports.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockCache is a mock ports.Cache
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, bool) {
	args := m.Called(ctx, key)
	if args.Get(0) != nil {
		return args.Get(0).([]byte), args.Bool(1)
	}
	return nil, args.Bool(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// MockMetrics is a mock ports.Metrics
type MockMetrics struct {
	mock.Mock
}

func (m *MockMetrics) ObserveQuery(query string, duration time.Duration, err error) {
	m.Called(query, duration, err)
}

func (m *MockMetrics) ObserveStoreOperation(operation string, duration time.Duration, err error) {
	m.Called(operation, duration, err)
}

func (m *MockMetrics) ObserveCache(hit bool) {
	m.Called(hit)
}

func (m *MockMetrics) ObserveGraph(nodeCount, linkCount int) {
	m.Called(nodeCount, linkCount)
}
