package handlers

import (
	"context"
	"time"

	"casegraph/application/ports"
	"casegraph/application/queries"
	"casegraph/application/services"
	"casegraph/domain/core/valueobjects"
	"casegraph/domain/events"
	"casegraph/pkg/utils"

	"go.uber.org/zap"
)

// GetRelatedTransactionsHandler lists the similarity-ranked transactions of a case
type GetRelatedTransactionsHandler struct {
	repo      ports.CaseNetworkRepository
	scorer    *services.SimilarityScorer
	publisher ports.EventPublisher
	logger    *zap.Logger
}

// NewGetRelatedTransactionsHandler creates a new related transactions handler
func NewGetRelatedTransactionsHandler(
	repo ports.CaseNetworkRepository,
	scorer *services.SimilarityScorer,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *GetRelatedTransactionsHandler {
	return &GetRelatedTransactionsHandler{
		repo:      repo,
		scorer:    scorer,
		publisher: publisher,
		logger:    logger,
	}
}

// Handle executes the related transactions query
func (h *GetRelatedTransactionsHandler) Handle(ctx context.Context, query queries.GetRelatedTransactionsQuery) (*queries.GetRelatedTransactionsResult, error) {
	caseID, err := query.ValidCaseID()
	if err != nil {
		return nil, err
	}
	raw, err := loadCaseNetwork(ctx, h.repo, h.scorer, h.logger, caseID.String())
	if err != nil {
		return nil, err
	}

	result := &queries.GetRelatedTransactionsResult{
		CaseID:  caseID.String(),
		Related: make([]queries.RelatedTransactionView, 0, len(raw.Related)),
	}
	if raw.Transaction != nil {
		result.TransactionID = raw.Transaction.StringProp(ports.PropID)
	}
	for _, rel := range raw.Related {
		result.Related = append(result.Related, toRelatedView(rel))
	}

	publishEvent(ctx, h.publisher, h.logger, events.NewRelatedTransactionsRequested(
		caseID.String(),
		query.ViewerID,
		len(result.Related),
		time.Now(),
	))

	return result, nil
}

func toRelatedView(rel ports.RelatedTransaction) queries.RelatedTransactionView {
	view := queries.RelatedTransactionView{
		Transaction: queries.TransactionSummary{
			ID:       rel.Transaction.StringProp(ports.PropID),
			Amount:   valueobjects.ToFloatOrZero(rel.Transaction.Prop(ports.PropAmount)),
			Category: rel.Transaction.StringProp(ports.PropCategory),
		},
		HoursDiff:     rel.HoursDiff,
		AmountDiffPct: rel.AmountDiffPct,
		Score:         rel.Score,
	}
	if ts, ok := utils.ParseTimestamp(rel.Transaction.Prop(ports.PropTransactedAt)); ok {
		view.Transaction.TransactedAt = ts.UTC().Format(time.RFC3339)
	}
	if rel.Merchant != nil {
		view.Merchant = &queries.MerchantSummary{
			Name: rel.Merchant.StringProp(ports.PropName),
			City: rel.Merchant.StringProp(ports.PropCity),
		}
	}
	return view
}
