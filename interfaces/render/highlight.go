// Package render turns a case network into pictures. It owns the interaction
// state of a single graph view (hover, selection, drag, pan, zoom), derives a
// pure visual Frame from that state, and hands frames to swappable painters.
// Nothing here mutates the GraphData it is given.
package render

import (
	"sort"

	"casegraph/domain/casenet"
)

// Highlight is the emphasised part of the graph while a node is hovered.
// The zero value highlights nothing, which paints everything at full opacity.
type Highlight struct {
	Nodes map[string]struct{}
	Edges map[string]struct{}
}

// NeighborClosure returns the hovered node, every node sharing an edge with it
// in either direction, and the keys of those edges.
func NeighborClosure(links []casenet.GraphEdge, nodeID string) Highlight {
	h := Highlight{
		Nodes: map[string]struct{}{nodeID: {}},
		Edges: make(map[string]struct{}),
	}
	for _, l := range links {
		switch nodeID {
		case l.Source:
			h.Nodes[l.Target] = struct{}{}
		case l.Target:
			h.Nodes[l.Source] = struct{}{}
		default:
			continue
		}
		h.Edges[l.Key()] = struct{}{}
	}
	return h
}

// IsEmpty reports whether nothing is highlighted
func (h Highlight) IsEmpty() bool {
	return len(h.Nodes) == 0
}

// NodeLit reports whether a node paints at full opacity
func (h Highlight) NodeLit(id string) bool {
	if len(h.Nodes) == 0 {
		return true
	}
	_, ok := h.Nodes[id]
	return ok
}

// EdgeLit reports whether an edge paints at full opacity
func (h Highlight) EdgeLit(key string) bool {
	if len(h.Edges) == 0 && len(h.Nodes) == 0 {
		return true
	}
	_, ok := h.Edges[key]
	return ok
}

// NodeIDs returns the highlighted node ids in sorted order
func (h Highlight) NodeIDs() []string {
	return sortedKeys(h.Nodes)
}

// EdgeKeys returns the highlighted edge keys in sorted order
func (h Highlight) EdgeKeys() []string {
	return sortedKeys(h.Edges)
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
