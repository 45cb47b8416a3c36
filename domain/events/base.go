package events

import (
	"time"

	"github.com/google/uuid"
)

// SourceCaseGraph identifies this service as the origin of published events
const SourceCaseGraph = "casegraph.api"

// Event types
const (
	TypeCaseNetworkViewed            = "case.network.viewed"
	TypeEmployeeNetworkViewed        = "employee.network.viewed"
	TypeRelatedTransactionsRequested = "case.related.requested"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetEventID() string
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	EventID     string    `json:"event_id"`
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetEventID() string      { return e.EventID }
func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

func newBaseEvent(aggregateID, eventType string, timestamp time.Time) BaseEvent {
	return BaseEvent{
		EventID:     uuid.New().String(),
		AggregateID: aggregateID,
		EventType:   eventType,
		Timestamp:   timestamp,
		Version:     1,
	}
}

// Review audit events

// CaseNetworkViewed is raised after a case network was assembled for a reviewer
type CaseNetworkViewed struct {
	BaseEvent
	CaseID        string `json:"case_id"`
	ViewerID      string `json:"viewer_id,omitempty"`
	NodeCount     int    `json:"node_count"`
	LinkCount     int    `json:"link_count"`
	CriticalCount int    `json:"critical_count"`
}

// NewCaseNetworkViewed creates a CaseNetworkViewed event
func NewCaseNetworkViewed(caseID, viewerID string, nodeCount, linkCount, criticalCount int, timestamp time.Time) CaseNetworkViewed {
	return CaseNetworkViewed{
		BaseEvent:     newBaseEvent(caseID, TypeCaseNetworkViewed, timestamp),
		CaseID:        caseID,
		ViewerID:      viewerID,
		NodeCount:     nodeCount,
		LinkCount:     linkCount,
		CriticalCount: criticalCount,
	}
}

// EmployeeNetworkViewed is raised after an employee network was assembled
type EmployeeNetworkViewed struct {
	BaseEvent
	EmployeeID string `json:"employee_id"`
	ViewerID   string `json:"viewer_id,omitempty"`
	NodeCount  int    `json:"node_count"`
}

// NewEmployeeNetworkViewed creates an EmployeeNetworkViewed event
func NewEmployeeNetworkViewed(employeeID, viewerID string, nodeCount int, timestamp time.Time) EmployeeNetworkViewed {
	return EmployeeNetworkViewed{
		BaseEvent:  newBaseEvent(employeeID, TypeEmployeeNetworkViewed, timestamp),
		EmployeeID: employeeID,
		ViewerID:   viewerID,
		NodeCount:  nodeCount,
	}
}

// RelatedTransactionsRequested is raised when the related-transaction ranking is read
type RelatedTransactionsRequested struct {
	BaseEvent
	CaseID   string `json:"case_id"`
	ViewerID string `json:"viewer_id,omitempty"`
	Count    int    `json:"count"`
}

// NewRelatedTransactionsRequested creates a RelatedTransactionsRequested event
func NewRelatedTransactionsRequested(caseID, viewerID string, count int, timestamp time.Time) RelatedTransactionsRequested {
	return RelatedTransactionsRequested{
		BaseEvent: newBaseEvent(caseID, TypeRelatedTransactionsRequested, timestamp),
		CaseID:    caseID,
		ViewerID:  viewerID,
		Count:     count,
	}
}
