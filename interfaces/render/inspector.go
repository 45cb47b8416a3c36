package render

import (
	"fmt"
	"io"
	"strings"

	"casegraph/domain/casenet"
)

// InspectorPrompt is shown while nothing is selected
const InspectorPrompt = "Click on a node to see details"

// MetadataEntry is one displayed metadata line
type MetadataEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Panel is the read-only projection of the selected node
type Panel struct {
	Empty      bool            `json:"empty"`
	Prompt     string          `json:"prompt,omitempty"`
	NodeID     string          `json:"nodeId,omitempty"`
	Type       string          `json:"type,omitempty"`
	Label      string          `json:"label,omitempty"`
	Risk       string          `json:"risk,omitempty"`
	Critical   bool            `json:"critical,omitempty"`
	Amount     string          `json:"amount,omitempty"`
	Department string          `json:"department,omitempty"`
	Metadata   []MetadataEntry `json:"metadata,omitempty"`
}

// Inspect builds the panel for a selection. A nil node yields the prompt.
// Metadata entries with a falsy value are left off the panel; the node itself
// is not touched.
func Inspect(node *casenet.GraphNode) Panel {
	if node == nil {
		return Panel{Empty: true, Prompt: InspectorPrompt}
	}

	p := Panel{
		NodeID:     node.ID,
		Type:       string(node.Type),
		Label:      node.Label,
		Department: node.Department,
	}
	if risk, ok := node.Risk(); ok {
		p.Risk = string(risk)
		p.Critical = risk.IsCritical()
	}
	if node.Amount != nil {
		p.Amount = casenet.FormatAmount(*node.Amount)
	}
	for _, key := range node.Metadata.Keys() {
		v := node.Metadata[key]
		if !v.Truthy() {
			continue
		}
		p.Metadata = append(p.Metadata, MetadataEntry{Key: key, Value: v.Display()})
	}
	return p
}

// Title is the panel heading
func (p Panel) Title() string {
	if p.Empty {
		return "Inspector"
	}
	return "Node Details"
}

// WriteText prints the panel as aligned plain text
func (p Panel) WriteText(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", p.Title())
	if p.Empty {
		fmt.Fprintf(&b, "  %s\n", p.Prompt)
		_, err := io.WriteString(w, b.String())
		return err
	}

	row := func(name, value string) {
		fmt.Fprintf(&b, "  %-11s %s\n", name+":", value)
	}
	row("Type", p.Type)
	row("Label", p.Label)
	if p.Risk != "" {
		risk := p.Risk
		if p.Critical {
			risk = strings.ToUpper(risk) + " !"
		}
		row("Risk", risk)
	}
	if p.Amount != "" {
		row("Amount", p.Amount)
	}
	if p.Department != "" {
		row("Department", p.Department)
	}
	if len(p.Metadata) > 0 {
		b.WriteString("  Additional Info\n")
		for _, m := range p.Metadata {
			fmt.Fprintf(&b, "    %s: %s\n", m.Key, m.Value)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
