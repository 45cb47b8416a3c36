package ports

import (
	"fmt"
	"strings"
)

// Entity is one store vertex as read from the graph store: its labels and its
// raw property bag. Property values keep the store's own representation;
// callers coerce them where they need numbers or times.
type Entity struct {
	ElementID  string         `json:"element_id,omitempty"`
	Labels     []string       `json:"labels,omitempty"`
	Properties map[string]any `json:"properties"`
}

// NewEntity creates an entity from a property bag
func NewEntity(props map[string]any, labels ...string) *Entity {
	if props == nil {
		props = map[string]any{}
	}
	return &Entity{Labels: labels, Properties: props}
}

// Prop returns a raw property value, or nil when e or the key is absent
func (e *Entity) Prop(key string) any {
	if e == nil || e.Properties == nil {
		return nil
	}
	return e.Properties[key]
}

// StringProp returns a property rendered as a trimmed string. Absent and null
// properties yield "".
func (e *Entity) StringProp(key string) string {
	v := e.Prop(key)
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case fmt.Stringer:
		return strings.TrimSpace(t.String())
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// Property names used by the fraud graph schema
const (
	PropCaseID             = "case_id"
	PropCaseType           = "case_type"
	PropSeverity           = "severity"
	PropStatus             = "status"
	PropDescription        = "description"
	PropDetectionReasoning = "detection_reasoning"

	PropID           = "id"
	PropAmount       = "amount"
	PropTransactedAt = "transacted_at"
	PropCategory     = "category"

	PropName       = "name"
	PropDepartment = "department"
	PropEmail      = "email"
	PropJobTitle   = "job_title"

	PropAddress = "address"
	PropCity    = "city"
	PropCountry = "country"

	PropCode      = "code"
	PropRiskGroup = "risk_group"
)

// RelatedCandidate is a transaction by the reference employee that may be
// related to the reference transaction, paired with its merchant if any.
type RelatedCandidate struct {
	Transaction *Entity `json:"transaction,omitempty"`
	Merchant    *Entity `json:"merchant,omitempty"`
}

// RelatedTransaction is a candidate that passed the similarity filter
type RelatedTransaction struct {
	Transaction   *Entity `json:"transaction,omitempty"`
	Merchant      *Entity `json:"merchant,omitempty"`
	HoursDiff     int     `json:"hours_diff"`
	AmountDiffPct int     `json:"amount_diff_pct"`
	Score         int     `json:"score"`
}

// RawCaseNetwork is the flat traversal record for one case. Absent hops are
// nil; Related is filled by the similarity scorer, not by the store.
type RawCaseNetwork struct {
	Case        *Entity              `json:"case,omitempty"`
	Transaction *Entity              `json:"transaction,omitempty"`
	Employee    *Entity              `json:"employee,omitempty"`
	Merchant    *Entity              `json:"merchant,omitempty"`
	MCC         *Entity              `json:"mcc,omitempty"`
	Related     []RelatedTransaction `json:"related,omitempty"`
}

// IsEmpty reports whether the record carries no entity at all
func (r *RawCaseNetwork) IsEmpty() bool {
	return r == nil ||
		(r.Case == nil && r.Transaction == nil && r.Employee == nil &&
			r.Merchant == nil && r.MCC == nil && len(r.Related) == 0)
}

// EmployeeTransaction is one transaction of an employee network with its
// merchant, category code, and the cases that cite it.
type EmployeeTransaction struct {
	Transaction *Entity   `json:"transaction,omitempty"`
	Merchant    *Entity   `json:"merchant,omitempty"`
	MCC         *Entity   `json:"mcc,omitempty"`
	Cases       []*Entity `json:"cases,omitempty"`
}

// RawEmployeeNetwork is the traversal record for one employee
type RawEmployeeNetwork struct {
	Employee     *Entity               `json:"employee,omitempty"`
	Transactions []EmployeeTransaction `json:"transactions,omitempty"`
}
