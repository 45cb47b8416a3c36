package casenet

import "math"

var nodePalette = map[NodeType]map[RiskLevel]string{
	NodeEmployee: {
		RiskLow:      "#64748b",
		RiskMedium:   "#71717a",
		RiskHigh:     "#525252",
		RiskCritical: "#ef4444",
	},
	NodeTransaction: {
		RiskLow:      "#3b82f6",
		RiskMedium:   "#2563eb",
		RiskHigh:     "#1d4ed8",
		RiskCritical: "#ef4444",
	},
	NodeMerchant: {
		RiskLow:      "#10b981",
		RiskMedium:   "#059669",
		RiskHigh:     "#047857",
		RiskCritical: "#ef4444",
	},
}

// CaseColor is the fixed fill for case vertices
const CaseColor = "#8b5cf6"

// DefaultLinkColor is used for relationship kinds without a palette entry
const DefaultLinkColor = "#94a3b8"

var linkPalette = map[LinkType]string{
	LinkMadeTransaction:     "#94a3b8",
	LinkAtMerchant:          "#a1a1aa",
	LinkInvolvesTransaction: "#9ca3af",
	LinkSimilarPattern:      "#f59e0b",
	LinkSameDepartment:      "#06b6d4",
}

// Base vertex sizes
const (
	CaseNodeSize            = 20.0
	EmployeeNodeSize        = 15.0
	TransactionNodeSize     = 10.0
	MerchantNodeSize        = 12.0
	RelatedMerchantNodeSize = 10.0

	MinTransactionNodeSize = 5.0
	MaxTransactionNodeSize = 25.0
)

// Relationship widths
const (
	PrimaryLinkWidth = 2.0
	RelatedLinkWidth = 1.0
)

// NodeColor returns the palette entry for a vertex kind at a risk tier
func NodeColor(t NodeType, r RiskLevel) string {
	if t == NodeCase {
		return CaseColor
	}
	shades, ok := nodePalette[t]
	if !ok {
		return DefaultLinkColor
	}
	if c, ok := shades[r]; ok {
		return c
	}
	return shades[RiskLow]
}

// LinkColor returns the palette entry for a relationship kind
func LinkColor(t LinkType) string {
	if c, ok := linkPalette[t]; ok {
		return c
	}
	return DefaultLinkColor
}

// LinkWidth returns the stroke width for a relationship at an emphasis
func LinkWidth(e Emphasis) float64 {
	if e == EmphasisRelated {
		return RelatedLinkWidth
	}
	return PrimaryLinkWidth
}

// TransactionSize scales the base transaction size by log10(amount/10000+1),
// clamped to [MinTransactionNodeSize, MaxTransactionNodeSize]. Non-positive
// amounts keep the base size.
func TransactionSize(amount float64) float64 {
	if amount <= 0 {
		return TransactionNodeSize
	}
	size := TransactionNodeSize * math.Log10(amount/10000+1)
	return math.Max(MinTransactionNodeSize, math.Min(MaxTransactionNodeSize, size))
}
