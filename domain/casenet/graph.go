package casenet

// RiskDistribution counts vertices per risk tier
type RiskDistribution struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
}

// Total is the number of vertices that carry a risk
func (d RiskDistribution) Total() int {
	return d.Critical + d.High + d.Medium + d.Low
}

// Count returns the counter for a tier
func (d RiskDistribution) Count(level RiskLevel) int {
	switch level {
	case RiskCritical:
		return d.Critical
	case RiskHigh:
		return d.High
	case RiskMedium:
		return d.Medium
	case RiskLow:
		return d.Low
	}
	return 0
}

func (d *RiskDistribution) add(level RiskLevel) {
	switch level {
	case RiskCritical:
		d.Critical++
	case RiskHigh:
		d.High++
	case RiskMedium:
		d.Medium++
	case RiskLow:
		d.Low++
	}
}

// PlaceholderClusterCount is reported until community detection exists
const PlaceholderClusterCount = 1

// Stats summarises a GraphData
type Stats struct {
	NodeCount        int              `json:"nodeCount"`
	LinkCount        int              `json:"linkCount"`
	ClusterCount     int              `json:"clusterCount"`
	RiskDistribution RiskDistribution `json:"riskDistribution"`
}

// GraphData is the root value handed to a renderer
type GraphData struct {
	Nodes []GraphNode `json:"nodes"`
	Links []GraphEdge `json:"links"`
	Stats Stats       `json:"stats"`
}

// EmptyGraph returns a graph with no vertices and zeroed stats
func EmptyGraph() GraphData {
	return GraphData{
		Nodes: []GraphNode{},
		Links: []GraphEdge{},
		Stats: ComputeStats(nil, nil),
	}
}

// ComputeStats counts vertices, relationships, and risk tiers. Vertices
// without a risk are left out of the distribution.
func ComputeStats(nodes []GraphNode, links []GraphEdge) Stats {
	stats := Stats{
		NodeCount:    len(nodes),
		LinkCount:    len(links),
		ClusterCount: PlaceholderClusterCount,
	}
	for _, n := range nodes {
		if risk, ok := n.Risk(); ok {
			stats.RiskDistribution.add(risk)
		}
	}
	return stats
}

// IsEmpty reports whether g has no vertices
func (g GraphData) IsEmpty() bool {
	return len(g.Nodes) == 0
}

// Node looks a vertex up by id
func (g GraphData) Node(id string) (GraphNode, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return GraphNode{}, false
}

// NodesOfType returns the vertices of kind t in order
func (g GraphData) NodesOfType(t NodeType) []GraphNode {
	var out []GraphNode
	for _, n := range g.Nodes {
		if n.Type == t {
			out = append(out, n)
		}
	}
	return out
}

// LinksOfType returns the relationships of kind t in order
func (g GraphData) LinksOfType(t LinkType) []GraphEdge {
	var out []GraphEdge
	for _, l := range g.Links {
		if l.Type == t {
			out = append(out, l)
		}
	}
	return out
}
