package casenet

// GraphEdge is a directed relationship instance
type GraphEdge struct {
	Source   string   `json:"source"`
	Target   string   `json:"target"`
	Type     LinkType `json:"type"`
	Color    string   `json:"color,omitempty"`
	Width    float64  `json:"width,omitempty"`
	Metadata Metadata `json:"metadata"`
}

// EdgeKey is the highlight key for a source/target pair
func EdgeKey(source, target string) string {
	return source + "-" + target
}

// Key returns the highlight key of e
func (e GraphEdge) Key() string {
	return EdgeKey(e.Source, e.Target)
}

// Touches reports whether nodeID is either endpoint of e
func (e GraphEdge) Touches(nodeID string) bool {
	return e.Source == nodeID || e.Target == nodeID
}
