package casenet

import (
	"encoding/json"
	"strings"
)

// GraphNode is a visual and semantic vertex
type GraphNode struct {
	ID         string
	Label      string
	Type       NodeType
	Amount     *float64
	Department string
	// Severity is the case severity that case risk derives from
	Severity string
	Color    string
	Size     float64
	Metadata Metadata
}

// Risk derives the risk level from the vertex's underlying severity or amount.
// Employees and merchants carry no risk.
func (n GraphNode) Risk() (RiskLevel, bool) {
	switch n.Type {
	case NodeCase:
		return RiskFromSeverity(n.Severity), true
	case NodeTransaction:
		var amount float64
		if n.Amount != nil {
			amount = *n.Amount
		}
		return RiskFromAmount(amount), true
	default:
		return "", false
	}
}

type graphNodeJSON struct {
	ID         string    `json:"id"`
	Label      string    `json:"label"`
	Type       NodeType  `json:"type"`
	Risk       RiskLevel `json:"risk,omitempty"`
	Amount     *float64  `json:"amount,omitempty"`
	Department string    `json:"department,omitempty"`
	Color      string    `json:"color,omitempty"`
	Size       float64   `json:"size,omitempty"`
	Metadata   Metadata  `json:"metadata,omitempty"`
}

// MarshalJSON emits the wire shape with the derived risk
func (n GraphNode) MarshalJSON() ([]byte, error) {
	out := graphNodeJSON{
		ID:         n.ID,
		Label:      n.Label,
		Type:       n.Type,
		Amount:     n.Amount,
		Department: n.Department,
		Color:      n.Color,
		Size:       n.Size,
		Metadata:   n.Metadata,
	}
	if risk, ok := n.Risk(); ok {
		out.Risk = risk
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the wire shape. A case vertex's severity is restored
// from its serialized risk so that Risk keeps answering the same level.
func (n *GraphNode) UnmarshalJSON(data []byte) error {
	var in graphNodeJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*n = GraphNode{
		ID:         in.ID,
		Label:      in.Label,
		Type:       in.Type,
		Amount:     in.Amount,
		Department: in.Department,
		Color:      in.Color,
		Size:       in.Size,
		Metadata:   in.Metadata,
	}
	if n.Type == NodeCase && in.Risk != "" {
		n.Severity = strings.ToUpper(string(in.Risk))
	}
	return nil
}
