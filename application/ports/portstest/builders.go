package portstest

import (
	"time"

	"casegraph/application/ports"
)

// Reference instant used by fixtures
var BaseTime = time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

// Case builds a case entity
func Case(id, severity string) *ports.Entity {
	return ports.NewEntity(map[string]any{
		ports.PropCaseID:      id,
		ports.PropCaseType:    "EXPENSE_ANOMALY",
		ports.PropSeverity:    severity,
		ports.PropStatus:      "OPEN",
		ports.PropDescription: "Split purchase below approval limit",
	}, "Case")
}

// Transaction builds a transaction entity
func Transaction(id string, amount float64, at time.Time) *ports.Entity {
	return ports.NewEntity(map[string]any{
		ports.PropID:           id,
		ports.PropAmount:       amount,
		ports.PropTransactedAt: at,
		ports.PropCategory:     "ENTERTAINMENT",
	}, "Transaction")
}

// Employee builds an employee entity
func Employee(id, name string) *ports.Entity {
	return ports.NewEntity(map[string]any{
		ports.PropID:         id,
		ports.PropName:       name,
		ports.PropDepartment: "Sales",
		ports.PropEmail:      id + "@example.com",
		ports.PropJobTitle:   "Account Manager",
	}, "Employee")
}

// Merchant builds a merchant entity
func Merchant(name string) *ports.Entity {
	return ports.NewEntity(map[string]any{
		ports.PropName:    name,
		ports.PropAddress: "12 Teheran-ro",
		ports.PropCity:    "Seoul",
		ports.PropCountry: "KR",
	}, "Merchant")
}

// MCC builds a merchant category code entity
func MCC(code, riskGroup string) *ports.Entity {
	return ports.NewEntity(map[string]any{
		ports.PropCode:        code,
		ports.PropDescription: "Drinking places",
		ports.PropRiskGroup:   riskGroup,
	}, "MCC")
}

// NetworkBuilder assembles a RawCaseNetwork
type NetworkBuilder struct {
	raw ports.RawCaseNetwork
}

// NewNetwork starts a network around a case
func NewNetwork(caseID, severity string) *NetworkBuilder {
	return &NetworkBuilder{raw: ports.RawCaseNetwork{Case: Case(caseID, severity)}}
}

func (b *NetworkBuilder) WithTransaction(id string, amount float64, at time.Time) *NetworkBuilder {
	b.raw.Transaction = Transaction(id, amount, at)
	return b
}

func (b *NetworkBuilder) WithEmployee(id, name string) *NetworkBuilder {
	b.raw.Employee = Employee(id, name)
	return b
}

func (b *NetworkBuilder) WithMerchant(name string) *NetworkBuilder {
	b.raw.Merchant = Merchant(name)
	b.raw.MCC = MCC("5813", "HIGH")
	return b
}

// WithRelated appends a related transaction at the given merchant. An empty
// merchant name leaves the merchant absent.
func (b *NetworkBuilder) WithRelated(id string, amount float64, at time.Time, merchant string, hoursDiff, pct, score int) *NetworkBuilder {
	rel := ports.RelatedTransaction{
		Transaction:   Transaction(id, amount, at),
		HoursDiff:     hoursDiff,
		AmountDiffPct: pct,
		Score:         score,
	}
	if merchant != "" {
		rel.Merchant = Merchant(merchant)
	}
	b.raw.Related = append(b.raw.Related, rel)
	return b
}

// Build returns the assembled record
func (b *NetworkBuilder) Build() *ports.RawCaseNetwork {
	raw := b.raw
	return &raw
}

// Candidate pairs a transaction with a merchant for similarity tests
func Candidate(id string, amount float64, at time.Time, merchant string) ports.RelatedCandidate {
	c := ports.RelatedCandidate{Transaction: Transaction(id, amount, at)}
	if merchant != "" {
		c.Merchant = Merchant(merchant)
	}
	return c
}
