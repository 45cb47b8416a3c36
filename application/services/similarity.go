package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"casegraph/application/ports"
	"casegraph/domain/config"
	"casegraph/domain/core/valueobjects"
	"casegraph/pkg/utils"

	"go.uber.org/zap"
)

// Reference is the transaction that related candidates are compared against
type Reference struct {
	EmployeeID    string
	TransactionID string
	Amount        float64
	Timestamp     time.Time
}

// ReferenceFromNetwork extracts the comparison reference from a case traversal.
// It reports false when the employee, the transaction id, or a usable amount
// or timestamp is missing; such a case gets no related transactions.
func ReferenceFromNetwork(raw *ports.RawCaseNetwork) (Reference, bool) {
	if raw == nil || raw.Employee == nil || raw.Transaction == nil {
		return Reference{}, false
	}

	ref := Reference{
		EmployeeID:    raw.Employee.StringProp(ports.PropID),
		TransactionID: raw.Transaction.StringProp(ports.PropID),
	}
	if ref.EmployeeID == "" || ref.TransactionID == "" {
		return Reference{}, false
	}

	amount, ok := valueobjects.ToFloat(raw.Transaction.Prop(ports.PropAmount))
	if !ok {
		return Reference{}, false
	}
	ts, ok := utils.ParseTimestamp(raw.Transaction.Prop(ports.PropTransactedAt))
	if !ok {
		return Reference{}, false
	}
	ref.Amount = amount
	ref.Timestamp = ts
	return ref, true
}

// SimilarityScorer finds other transactions by the same employee that look
// like the reference transaction.
type SimilarityScorer struct {
	repo   ports.CaseNetworkRepository
	config *config.DomainConfig
	logger *zap.Logger
}

// NewSimilarityScorer creates a new similarity scorer
func NewSimilarityScorer(repo ports.CaseNetworkRepository, cfg *config.DomainConfig, logger *zap.Logger) *SimilarityScorer {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &SimilarityScorer{
		repo:   repo,
		config: cfg,
		logger: logger,
	}
}

// FindRelated loads the employee's transactions inside the similarity window
// and returns the ranked subset that passes the amount filter.
func (s *SimilarityScorer) FindRelated(ctx context.Context, ref Reference) ([]ports.RelatedTransaction, error) {
	window := s.config.SimilarityWindow
	candidates, err := s.repo.FindEmployeeTransactions(
		ctx,
		ref.EmployeeID,
		ref.TransactionID,
		ref.Timestamp.Add(-window),
		ref.Timestamp.Add(window),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidate transactions: %w", err)
	}

	related := RankRelated(ref, candidates, s.config)

	s.logger.Debug("Scored related transactions",
		zap.String("employeeID", ref.EmployeeID),
		zap.String("referenceTxID", ref.TransactionID),
		zap.Int("candidates", len(candidates)),
		zap.Int("related", len(related)),
	)

	return related, nil
}

type scoredCandidate struct {
	related   ports.RelatedTransaction
	id        string
	absDelta  time.Duration
	amountPct float64
}

// RankRelated filters, scores, and orders candidates against ref.
//
// A candidate qualifies when its timestamp is within the window and its
// amount is within the absolute tolerance or within the percentage tolerance
// of the reference amount. The percentage test only applies to a non-zero
// reference amount. Results are ordered by closeness in time, then by amount
// difference, then by transaction id, and truncated to the configured limit.
func RankRelated(ref Reference, candidates []ports.RelatedCandidate, cfg *config.DomainConfig) []ports.RelatedTransaction {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	scored := make([]scoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Transaction == nil {
			continue
		}
		id := c.Transaction.StringProp(ports.PropID)
		if id == "" || id == ref.TransactionID {
			continue
		}

		ts, ok := utils.ParseTimestamp(c.Transaction.Prop(ports.PropTransactedAt))
		if !ok {
			continue
		}
		delta := ts.Sub(ref.Timestamp)
		absDelta := delta.Abs()
		if absDelta > cfg.SimilarityWindow {
			continue
		}

		amount, ok := valueobjects.ToFloat(c.Transaction.Prop(ports.PropAmount))
		if !ok {
			continue
		}
		absDiff := math.Abs(amount - ref.Amount)
		pct, pctApplies := amountDiffPercent(ref.Amount, amount)
		if absDiff > cfg.SimilarityAbsTolerance && !(pctApplies && pct <= cfg.SimilarityPctTolerance) {
			continue
		}

		hours := int(math.Round(delta.Hours()))
		pctRounded := int(math.Round(pct))
		scored = append(scored, scoredCandidate{
			related: ports.RelatedTransaction{
				Transaction:   c.Transaction,
				Merchant:      c.Merchant,
				HoursDiff:     hours,
				AmountDiffPct: pctRounded,
				Score:         similarityScore(hours, pctRounded),
			},
			id:        id,
			absDelta:  absDelta,
			amountPct: pct,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.absDelta != b.absDelta {
			return a.absDelta < b.absDelta
		}
		if a.amountPct != b.amountPct {
			return a.amountPct < b.amountPct
		}
		return a.id < b.id
	})

	if len(scored) > cfg.MaxRelatedTransactions {
		scored = scored[:cfg.MaxRelatedTransactions]
	}

	out := make([]ports.RelatedTransaction, len(scored))
	for i, c := range scored {
		out[i] = c.related
	}
	return out
}

// amountDiffPercent returns |candidate-reference| as a percentage of the
// reference. For a zero reference the percentage is reported as 0 when the
// candidate is also zero and 100 otherwise, and the second result is false so
// that the percentage tolerance is not applied.
func amountDiffPercent(reference, candidate float64) (float64, bool) {
	if reference == 0 {
		if candidate == 0 {
			return 0, false
		}
		return 100, false
	}
	return math.Abs(candidate-reference) / math.Abs(reference) * 100, true
}

func similarityScore(hoursDiff, amountDiffPct int) int {
	if hoursDiff < 0 {
		hoursDiff = -hoursDiff
	}
	score := 100 - hoursDiff - amountDiffPct
	if score < 0 {
		return 0
	}
	return score
}
