package handlers

import (
	"context"
	"time"

	"casegraph/application/ports"
	"casegraph/application/queries"
	"casegraph/application/services"
	"casegraph/domain/casenet"
	"casegraph/domain/config"
	"casegraph/domain/events"
	pkgerrors "casegraph/pkg/errors"

	"go.uber.org/zap"
)

// GetEmployeeNetworkHandler assembles the network graph around an employee
type GetEmployeeNetworkHandler struct {
	repo      ports.CaseNetworkRepository
	config    *config.DomainConfig
	publisher ports.EventPublisher
	metrics   ports.Metrics
	logger    *zap.Logger
}

// NewGetEmployeeNetworkHandler creates a new employee network handler
func NewGetEmployeeNetworkHandler(
	repo ports.CaseNetworkRepository,
	cfg *config.DomainConfig,
	publisher ports.EventPublisher,
	metrics ports.Metrics,
	logger *zap.Logger,
) *GetEmployeeNetworkHandler {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &GetEmployeeNetworkHandler{
		repo:      repo,
		config:    cfg,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
	}
}

// Handle executes the employee network query
func (h *GetEmployeeNetworkHandler) Handle(ctx context.Context, query queries.GetEmployeeNetworkQuery) (*casenet.GraphData, error) {
	limit := query.Limit
	if limit <= 0 || limit > h.config.MaxEmployeeTransactions {
		limit = h.config.MaxEmployeeTransactions
	}

	raw, err := h.repo.FetchEmployeeNetwork(ctx, query.EmployeeID, limit)
	if err != nil {
		if !pkgerrors.IsNotFound(err) {
			h.logger.Error("Failed to fetch employee network",
				zap.String("employeeID", query.EmployeeID),
				zap.Error(err),
			)
		}
		return nil, err
	}

	graph, report := services.TransformEmployeeNetworkWithReport(raw)
	for _, skipped := range report.Skipped {
		h.logger.Debug("Skipped malformed record",
			zap.String("employeeID", query.EmployeeID),
			zap.String("record", skipped),
		)
	}

	if h.metrics != nil {
		h.metrics.ObserveGraph(graph.Stats.NodeCount, graph.Stats.LinkCount)
	}

	publishEvent(ctx, h.publisher, h.logger, events.NewEmployeeNetworkViewed(
		query.EmployeeID,
		query.ViewerID,
		graph.Stats.NodeCount,
		time.Now(),
	))

	return &graph, nil
}
