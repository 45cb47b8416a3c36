// Package neo4j implements the case network query contract against a Neo4j
// graph store.
package neo4j

import (
	"context"
	"errors"
	"fmt"
	"time"

	"casegraph/application/ports"
	pkgerrors "casegraph/pkg/errors"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// Config holds connection settings for the graph store
type Config struct {
	URI          string
	Username     string
	Password     string
	Database     string
	QueryTimeout time.Duration
}

// NewDriver opens a driver and verifies connectivity. The caller owns the
// driver and must close it at shutdown.
func NewDriver(ctx context.Context, cfg Config) (neo4j.DriverWithContext, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("failed to connect to neo4j at %s: %w", cfg.URI, err)
	}
	return driver, nil
}

// reader runs one read query and collects its rows
type reader interface {
	read(ctx context.Context, cypher string, params map[string]any) ([]*neo4j.Record, error)
}

type driverReader struct {
	driver   neo4j.DriverWithContext
	database string
}

func (d *driverReader) read(ctx context.Context, cypher string, params map[string]any) ([]*neo4j.Record, error) {
	session := d.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: d.database,
	})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, err
	}
	records, _ := result.([]*neo4j.Record)
	return records, nil
}

// CaseNetworkRepository reads case networks from Neo4j
type CaseNetworkRepository struct {
	reader  reader
	timeout time.Duration
	logger  *zap.Logger
}

var _ ports.CaseNetworkRepository = (*CaseNetworkRepository)(nil)

// NewCaseNetworkRepository creates a repository over an open driver
func NewCaseNetworkRepository(driver neo4j.DriverWithContext, cfg Config, logger *zap.Logger) *CaseNetworkRepository {
	return newRepository(&driverReader{driver: driver, database: cfg.Database}, cfg.QueryTimeout, logger)
}

func newRepository(r reader, timeout time.Duration, logger *zap.Logger) *CaseNetworkRepository {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &CaseNetworkRepository{
		reader:  r,
		timeout: timeout,
		logger:  logger,
	}
}

func (r *CaseNetworkRepository) query(ctx context.Context, operation, cypher string, params map[string]any) ([]*neo4j.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	records, err := r.reader.read(ctx, cypher, params)
	if err != nil {
		r.logger.Error("Graph store query failed",
			zap.String("operation", operation),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, pkgerrors.NewTimeoutError(operation).WithCause(err)
		}
		return nil, pkgerrors.NewDatabaseError(operation, err)
	}

	r.logger.Debug("Graph store query completed",
		zap.String("operation", operation),
		zap.Int("rows", len(records)),
		zap.Duration("duration", time.Since(start)),
	)
	return records, nil
}

// FetchCaseNetwork walks from a case to its neighbours
func (r *CaseNetworkRepository) FetchCaseNetwork(ctx context.Context, caseID string) (*ports.RawCaseNetwork, error) {
	records, err := r.query(ctx, "FetchCaseNetwork", caseNetworkQuery, map[string]any{
		"caseId": caseID,
	})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, pkgerrors.NewNotFoundError(fmt.Sprintf("case %s", caseID))
	}

	network := toCaseNetwork(records[0])
	if network.Case == nil {
		return nil, pkgerrors.NewNotFoundError(fmt.Sprintf("case %s", caseID))
	}
	return network, nil
}

// FindEmployeeTransactions returns the employee's other transactions inside [from, to]
func (r *CaseNetworkRepository) FindEmployeeTransactions(ctx context.Context, employeeID, excludeTransactionID string, from, to time.Time) ([]ports.RelatedCandidate, error) {
	records, err := r.query(ctx, "FindEmployeeTransactions", relatedCandidatesQuery, map[string]any{
		"employeeId": employeeID,
		"excludeId":  excludeTransactionID,
		"from":       from.UTC().Format(time.RFC3339),
		"to":         to.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, err
	}
	return toCandidates(records), nil
}

// FetchEmployeeNetwork returns an employee with their most recent transactions
func (r *CaseNetworkRepository) FetchEmployeeNetwork(ctx context.Context, employeeID string, limit int) (*ports.RawEmployeeNetwork, error) {
	records, err := r.query(ctx, "FetchEmployeeNetwork", employeeNetworkQuery, map[string]any{
		"employeeId": employeeID,
		"limit":      int64(limit),
	})
	if err != nil {
		return nil, err
	}

	network, err := toEmployeeNetwork(records)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("FetchEmployeeNetwork", err)
	}
	if network == nil {
		return nil, pkgerrors.NewNotFoundError(fmt.Sprintf("employee %s", employeeID))
	}
	return network, nil
}

// Ping runs a trivial read to check the store is reachable
func (r *CaseNetworkRepository) Ping(ctx context.Context) error {
	_, err := r.query(ctx, "Ping", pingQuery, nil)
	return err
}
