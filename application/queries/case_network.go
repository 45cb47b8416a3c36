package queries

import (
	"casegraph/domain/config"
	"casegraph/domain/core/valueobjects"
	"casegraph/pkg/utils"
)

// GetCaseNetworkQuery asks for the network graph around one fraud case
type GetCaseNetworkQuery struct {
	CaseID string `json:"caseId"`
	// ViewerID is the authenticated subject, if any; it only feeds the audit event
	ViewerID string `json:"viewerId,omitempty"`
}

// Validate validates the query
func (q GetCaseNetworkQuery) Validate() error {
	_, err := q.ValidCaseID()
	return err
}

// ValidCaseID returns the case id trimmed and checked
func (q GetCaseNetworkQuery) ValidCaseID() (valueobjects.CaseID, error) {
	return valueobjects.NewCaseIDWithConfig(q.CaseID, config.DefaultDomainConfig())
}

// GetRelatedTransactionsQuery asks for the similarity-ranked transactions
// related to a case's transaction
type GetRelatedTransactionsQuery struct {
	CaseID   string `json:"caseId"`
	ViewerID string `json:"viewerId,omitempty"`
}

// Validate validates the query
func (q GetRelatedTransactionsQuery) Validate() error {
	_, err := q.ValidCaseID()
	return err
}

// ValidCaseID returns the case id trimmed and checked
func (q GetRelatedTransactionsQuery) ValidCaseID() (valueobjects.CaseID, error) {
	return valueobjects.NewCaseIDWithConfig(q.CaseID, config.DefaultDomainConfig())
}

// GetEmployeeNetworkQuery asks for the network graph around one employee
type GetEmployeeNetworkQuery struct {
	EmployeeID string `json:"employeeId" validate:"required,max=128,excludesall=/"`
	Limit      int    `json:"limit,omitempty" validate:"omitempty,min=1,max=500"`
	ViewerID   string `json:"viewerId,omitempty" validate:"-"`
}

// Validate validates the query
func (q GetEmployeeNetworkQuery) Validate() error {
	return utils.ValidateStruct(q)
}

// RelatedTransactionView is the display shape of one related transaction
type RelatedTransactionView struct {
	Transaction   TransactionSummary `json:"transaction"`
	Merchant      *MerchantSummary   `json:"merchant,omitempty"`
	HoursDiff     int                `json:"hoursDiff"`
	AmountDiffPct int                `json:"amountDiffPct"`
	Score         int                `json:"score"`
}

// TransactionSummary is a flattened transaction record
type TransactionSummary struct {
	ID           string  `json:"id"`
	Amount       float64 `json:"amount"`
	TransactedAt string  `json:"transactedAt,omitempty"`
	Category     string  `json:"category,omitempty"`
}

// MerchantSummary is a flattened merchant record
type MerchantSummary struct {
	Name string `json:"name"`
	City string `json:"city,omitempty"`
}

// GetRelatedTransactionsResult lists the related transactions of a case
type GetRelatedTransactionsResult struct {
	CaseID        string                   `json:"caseId"`
	TransactionID string                   `json:"transactionId,omitempty"`
	Related       []RelatedTransactionView `json:"related"`
}
