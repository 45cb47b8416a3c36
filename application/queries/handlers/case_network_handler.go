package handlers

import (
	"context"
	"time"

	"casegraph/application/ports"
	"casegraph/application/queries"
	"casegraph/application/services"
	"casegraph/domain/casenet"
	"casegraph/domain/events"
	pkgerrors "casegraph/pkg/errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const eventPublishTimeout = 2 * time.Second

var tracer = otel.Tracer("casegraph/queries/handlers")

// GetCaseNetworkHandler assembles the network graph around a fraud case
type GetCaseNetworkHandler struct {
	repo      ports.CaseNetworkRepository
	scorer    *services.SimilarityScorer
	publisher ports.EventPublisher
	metrics   ports.Metrics
	logger    *zap.Logger
}

// NewGetCaseNetworkHandler creates a new case network handler. publisher and
// metrics may be nil.
func NewGetCaseNetworkHandler(
	repo ports.CaseNetworkRepository,
	scorer *services.SimilarityScorer,
	publisher ports.EventPublisher,
	metrics ports.Metrics,
	logger *zap.Logger,
) *GetCaseNetworkHandler {
	return &GetCaseNetworkHandler{
		repo:      repo,
		scorer:    scorer,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
	}
}

// Handle executes the case network query
func (h *GetCaseNetworkHandler) Handle(ctx context.Context, query queries.GetCaseNetworkQuery) (*casenet.GraphData, error) {
	caseID, err := query.ValidCaseID()
	if err != nil {
		return nil, err
	}
	raw, err := loadCaseNetwork(ctx, h.repo, h.scorer, h.logger, caseID.String())
	if err != nil {
		return nil, err
	}

	_, span := tracer.Start(ctx, "transform.case_network")
	graph, report := services.TransformCaseNetworkWithReport(raw)
	span.SetAttributes(
		attribute.Int("graph.nodes", len(graph.Nodes)),
		attribute.Int("graph.links", len(graph.Links)),
	)
	span.End()

	for _, skipped := range report.Skipped {
		h.logger.Debug("Skipped malformed record",
			zap.String("caseID", caseID.String()),
			zap.String("record", skipped),
		)
	}

	if h.metrics != nil {
		h.metrics.ObserveGraph(graph.Stats.NodeCount, graph.Stats.LinkCount)
	}

	publishEvent(ctx, h.publisher, h.logger, events.NewCaseNetworkViewed(
		caseID.String(),
		query.ViewerID,
		graph.Stats.NodeCount,
		graph.Stats.LinkCount,
		graph.Stats.RiskDistribution.Critical,
		time.Now(),
	))

	return &graph, nil
}

// publishEvent sends an audit event. Failures are logged and never fail the
// query.
func publishEvent(ctx context.Context, publisher ports.EventPublisher, logger *zap.Logger, event events.DomainEvent) {
	if publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), eventPublishTimeout)
	defer cancel()

	if err := publisher.Publish(ctx, event); err != nil {
		logger.Warn("Failed to publish event",
			zap.String("eventType", event.GetEventType()),
			zap.String("aggregateID", event.GetAggregateID()),
			zap.Error(err),
		)
	}
}

// loadCaseNetwork fetches the case traversal and attaches its related
// transactions. Store failures are logged with the case id and returned.
func loadCaseNetwork(
	ctx context.Context,
	repo ports.CaseNetworkRepository,
	scorer *services.SimilarityScorer,
	logger *zap.Logger,
	caseID string,
) (*ports.RawCaseNetwork, error) {
	raw, err := repo.FetchCaseNetwork(ctx, caseID)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil, err
		}
		logger.Error("Failed to fetch case network",
			zap.String("caseID", caseID),
			zap.Error(err),
		)
		return nil, err
	}

	ref, ok := services.ReferenceFromNetwork(raw)
	if !ok {
		logger.Debug("Case has no usable reference transaction",
			zap.String("caseID", caseID),
		)
		return raw, nil
	}

	related, err := scorer.FindRelated(ctx, ref)
	if err != nil {
		logger.Error("Failed to find related transactions",
			zap.String("caseID", caseID),
			zap.String("employeeID", ref.EmployeeID),
			zap.Error(err),
		)
		return nil, err
	}
	out := *raw
	out.Related = related
	return &out, nil
}
