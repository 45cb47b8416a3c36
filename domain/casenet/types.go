package casenet

// NodeType is the closed set of vertex kinds
type NodeType string

const (
	NodeEmployee    NodeType = "employee"
	NodeTransaction NodeType = "transaction"
	NodeMerchant    NodeType = "merchant"
	NodeCase        NodeType = "case"
)

// IsValid reports whether t is a known vertex kind
func (t NodeType) IsValid() bool {
	switch t {
	case NodeEmployee, NodeTransaction, NodeMerchant, NodeCase:
		return true
	}
	return false
}

// LinkType is the closed set of relationship kinds
type LinkType string

const (
	LinkMadeTransaction     LinkType = "MADE_TRANSACTION"
	LinkAtMerchant          LinkType = "AT_MERCHANT"
	LinkInvolvesTransaction LinkType = "INVOLVES_TRANSACTION"
	LinkSimilarPattern      LinkType = "SIMILAR_PATTERN"
	LinkSameDepartment      LinkType = "SAME_DEPARTMENT"
)

// IsValid reports whether t is a known relationship kind
func (t LinkType) IsValid() bool {
	switch t {
	case LinkMadeTransaction, LinkAtMerchant, LinkInvolvesTransaction, LinkSimilarPattern, LinkSameDepartment:
		return true
	}
	return false
}

// Emphasis distinguishes entities on the primary case path from entities
// introduced by related-transaction expansion.
type Emphasis int

const (
	EmphasisPrimary Emphasis = iota
	EmphasisRelated
)
