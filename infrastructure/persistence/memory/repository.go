// Package memory serves the case network query contract from a fixture file
// held in memory. It backs local demos and the end-to-end tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"casegraph/application/ports"
	pkgerrors "casegraph/pkg/errors"
	"casegraph/pkg/utils"

	"go.uber.org/zap"
)

// Repository is a fixture-backed CaseNetworkRepository
type Repository struct {
	mu     sync.RWMutex
	data   *snapshot
	path   string
	logger *zap.Logger
}

var _ ports.CaseNetworkRepository = (*Repository)(nil)

// NewRepository indexes an already decoded fixture
func NewRepository(f *Fixture, logger *zap.Logger) (*Repository, error) {
	data, err := newSnapshot(f)
	if err != nil {
		return nil, err
	}
	return &Repository{data: data, logger: logger}, nil
}

// NewFileRepository loads the fixture at path. Reload re-reads the same file.
func NewFileRepository(path string, logger *zap.Logger) (*Repository, error) {
	r := &Repository{path: path, logger: logger}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Path returns the fixture file backing the repository, if any
func (r *Repository) Path() string {
	return r.path
}

// Reload re-reads the fixture file. On failure the previous data stays in place.
func (r *Repository) Reload() error {
	if r.path == "" {
		return fmt.Errorf("repository has no fixture file")
	}
	f, err := LoadFixture(r.path)
	if err != nil {
		return err
	}
	data, err := newSnapshot(f)
	if err != nil {
		return fmt.Errorf("invalid fixture %s: %w", r.path, err)
	}

	r.mu.Lock()
	r.data = data
	r.mu.Unlock()

	r.logger.Info("Fixture loaded",
		zap.String("path", r.path),
		zap.Int("cases", len(data.cases)),
		zap.Int("transactions", len(data.transactions)),
	)
	return nil
}

func (r *Repository) snapshot() *snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.data
}

// FetchCaseNetwork walks from a case to its neighbours
func (r *Repository) FetchCaseNetwork(ctx context.Context, caseID string) (*ports.RawCaseNetwork, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.snapshot()

	c, ok := s.cases[caseID]
	if !ok {
		return nil, pkgerrors.NewNotFoundError(fmt.Sprintf("case %s", caseID))
	}

	network := &ports.RawCaseNetwork{Case: clone(c)}
	txID := s.caseTx[caseID]
	tx := s.transaction(txID)
	if tx == nil {
		return network, nil
	}
	network.Transaction = clone(tx)
	network.Employee = clone(s.employeeOf(txID))
	if m := s.merchantOf(txID); m != nil {
		network.Merchant = clone(m)
		network.MCC = clone(s.mccOf(s.txMerchant[txID]))
	}
	return network, nil
}

// FindEmployeeTransactions returns the employee's other transactions inside [from, to]
func (r *Repository) FindEmployeeTransactions(ctx context.Context, employeeID, excludeTransactionID string, from, to time.Time) ([]ports.RelatedCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.snapshot()

	var out []ports.RelatedCandidate
	for _, id := range s.employeeTxs[employeeID] {
		if id == excludeTransactionID {
			continue
		}
		tx := s.transactions[id]
		ts, ok := utils.ParseTimestamp(tx.Prop(ports.PropTransactedAt))
		if !ok || ts.Before(from) || ts.After(to) {
			continue
		}
		out = append(out, ports.RelatedCandidate{
			Transaction: clone(tx),
			Merchant:    clone(s.merchantOf(id)),
		})
	}
	return out, nil
}

// FetchEmployeeNetwork returns an employee with their most recent transactions
func (r *Repository) FetchEmployeeNetwork(ctx context.Context, employeeID string, limit int) (*ports.RawEmployeeNetwork, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.snapshot()

	employee, ok := s.employees[employeeID]
	if !ok {
		return nil, pkgerrors.NewNotFoundError(fmt.Sprintf("employee %s", employeeID))
	}

	ids := append([]string(nil), s.employeeTxs[employeeID]...)
	sort.SliceStable(ids, func(i, j int) bool {
		ti, _ := utils.ParseTimestamp(s.transactions[ids[i]].Prop(ports.PropTransactedAt))
		tj, _ := utils.ParseTimestamp(s.transactions[ids[j]].Prop(ports.PropTransactedAt))
		return ti.After(tj)
	})
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}

	network := &ports.RawEmployeeNetwork{Employee: clone(employee)}
	for _, id := range ids {
		et := ports.EmployeeTransaction{
			Transaction: clone(s.transactions[id]),
			Merchant:    clone(s.merchantOf(id)),
			MCC:         clone(s.mccOf(s.txMerchant[id])),
		}
		for _, caseID := range s.txCases[id] {
			et.Cases = append(et.Cases, clone(s.cases[caseID]))
		}
		network.Transactions = append(network.Transactions, et)
	}
	return network, nil
}

// Ping always succeeds once a fixture is loaded
func (r *Repository) Ping(ctx context.Context) error {
	if r.snapshot() == nil {
		return pkgerrors.NewUnavailableError("fixture store")
	}
	return ctx.Err()
}

func clone(e *ports.Entity) *ports.Entity {
	if e == nil {
		return nil
	}
	props := make(map[string]any, len(e.Properties))
	for k, v := range e.Properties {
		props[k] = v
	}
	return &ports.Entity{
		ElementID:  e.ElementID,
		Labels:     append([]string(nil), e.Labels...),
		Properties: props,
	}
}
