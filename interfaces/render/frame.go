package render

import (
	"unicode/utf8"

	"casegraph/domain/casenet"
)

// Paint rules
const (
	DimmedNodeOpacity = 0.3
	DimmedEdgeOpacity = 0.1

	// Node labels appear above this zoom, edge labels above the stricter one
	NodeLabelMinScale = 0.8
	EdgeLabelMinScale = 1.2

	DefaultNodeSize  = 5.0
	DefaultNodeColor = "#999"
	DefaultEdgeColor = "#999"
	LabelColor       = "#000"

	NodeFontSize      = 12.0
	EdgeFontSize      = 10.0
	LabelPlatePadding = 2.0
	LabelPlateOpacity = 0.8
	LabelPlateColor   = "#fff"
	HoverStrokeWidth  = 2.0
	HoverStrokeColor  = "#000"

	ParticlesPerLink = 2
	ParticleWidth    = 2.0
	ParticleSpeed    = 0.005

	// glyphWidthRatio approximates a sans-serif glyph advance per font size
	glyphWidthRatio = 0.6
)

// NodeVisual is everything a painter needs for one node. Sizes are in layout
// units and already account for the zoom where the stroke or text must stay
// a constant number of pixels on screen.
type NodeVisual struct {
	ID          string  `json:"id"`
	Label       string  `json:"label"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Radius      float64 `json:"r"`
	Color       string  `json:"color"`
	Opacity     float64 `json:"opacity"`
	Hovered     bool    `json:"hovered,omitempty"`
	Selected    bool    `json:"selected,omitempty"`
	StrokeWidth float64 `json:"strokeWidth,omitempty"`
	ShowLabel   bool    `json:"showLabel,omitempty"`
	LabelY      float64 `json:"labelY,omitempty"`
	FontSize    float64 `json:"fontSize"`
}

// Plate is the background box drawn behind an edge label
type Plate struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Opacity float64 `json:"opacity"`
}

// EdgeVisual is everything a painter needs for one edge
type EdgeVisual struct {
	Key       string  `json:"key"`
	Source    string  `json:"source"`
	Target    string  `json:"target"`
	X1        float64 `json:"x1"`
	Y1        float64 `json:"y1"`
	X2        float64 `json:"x2"`
	Y2        float64 `json:"y2"`
	Color     string  `json:"color"`
	Width     float64 `json:"width"`
	Opacity   float64 `json:"opacity"`
	Particles int     `json:"particles"`
	ShowLabel bool    `json:"showLabel,omitempty"`
	Label     string  `json:"label,omitempty"`
	FontSize  float64 `json:"fontSize,omitempty"`
	Plate     *Plate  `json:"plate,omitempty"`
}

// Frame is the complete visual state of one paint pass
type Frame struct {
	Width     float64      `json:"width"`
	Height    float64      `json:"height"`
	Transform Transform    `json:"transform"`
	Edges     []EdgeVisual `json:"edges"`
	Nodes     []NodeVisual `json:"nodes"`
}

// FrameInput is the model state a frame is derived from
type FrameInput struct {
	Graph      casenet.GraphData
	Positions  map[string]Point
	Highlight  Highlight
	HoveredID  string
	SelectedID string
	Transform  Transform
	Width      float64
	Height     float64
}

// ComputeFrame derives the visual state from model state. It has no side
// effects; painters only ever see its result. Edges whose endpoints have no
// position are left out of the frame.
func ComputeFrame(in FrameInput) Frame {
	k := in.Transform.K
	if k <= 0 {
		k = 1
	}

	f := Frame{
		Width:     in.Width,
		Height:    in.Height,
		Transform: in.Transform,
		Edges:     make([]EdgeVisual, 0, len(in.Graph.Links)),
		Nodes:     make([]NodeVisual, 0, len(in.Graph.Nodes)),
	}

	for _, e := range in.Graph.Links {
		s, okS := in.Positions[e.Source]
		t, okT := in.Positions[e.Target]
		if !okS || !okT {
			continue
		}
		f.Edges = append(f.Edges, edgeVisual(e, s, t, in.Highlight, k))
	}

	for _, n := range in.Graph.Nodes {
		p, ok := in.Positions[n.ID]
		if !ok {
			continue
		}
		f.Nodes = append(f.Nodes, nodeVisual(n, p, in, k))
	}

	return f
}

func nodeVisual(n casenet.GraphNode, p Point, in FrameInput, k float64) NodeVisual {
	lit := in.Highlight.NodeLit(n.ID)

	v := NodeVisual{
		ID:       n.ID,
		Label:    n.Label,
		X:        p.X,
		Y:        p.Y,
		Radius:   n.Size,
		Color:    n.Color,
		Opacity:  1,
		Hovered:  n.ID != "" && n.ID == in.HoveredID,
		Selected: n.ID != "" && n.ID == in.SelectedID,
		FontSize: NodeFontSize / k,
	}
	if v.Radius <= 0 {
		v.Radius = DefaultNodeSize
	}
	if v.Color == "" {
		v.Color = DefaultNodeColor
	}
	if !lit {
		v.Opacity = DimmedNodeOpacity
	}
	if v.Hovered {
		v.StrokeWidth = HoverStrokeWidth / k
	}
	if lit && k > NodeLabelMinScale && n.Label != "" {
		v.ShowLabel = true
		v.LabelY = p.Y + v.Radius + v.FontSize
	}
	return v
}

func edgeVisual(e casenet.GraphEdge, s, t Point, h Highlight, k float64) EdgeVisual {
	key := e.Key()
	lit := h.EdgeLit(key)

	v := EdgeVisual{
		Key:       key,
		Source:    e.Source,
		Target:    e.Target,
		X1:        s.X,
		Y1:        s.Y,
		X2:        t.X,
		Y2:        t.Y,
		Color:     e.Color,
		Width:     e.Width,
		Opacity:   1,
		Particles: ParticlesPerLink,
	}
	if v.Color == "" {
		v.Color = DefaultEdgeColor
	}
	if v.Width <= 0 {
		v.Width = 1
	}
	v.Width /= k
	if !lit {
		v.Opacity = DimmedEdgeOpacity
	}

	if lit && k > EdgeLabelMinScale && e.Type != "" {
		v.ShowLabel = true
		v.Label = casenet.HumanizeLinkType(e.Type)
		v.FontSize = EdgeFontSize / k

		pad := LabelPlatePadding / k
		textWidth := float64(utf8.RuneCountInString(v.Label)) * v.FontSize * glyphWidthRatio
		mx, my := (s.X+t.X)/2, (s.Y+t.Y)/2
		v.Plate = &Plate{
			X:       mx - textWidth/2 - pad,
			Y:       my - v.FontSize/2 - pad,
			Width:   textWidth + pad*2,
			Height:  v.FontSize + pad*2,
			Opacity: LabelPlateOpacity,
		}
	}
	return v
}

// Midpoint returns where an edge label is centered
func (e EdgeVisual) Midpoint() Point {
	return Point{X: (e.X1 + e.X2) / 2, Y: (e.Y1 + e.Y2) / 2}
}

// Node finds a node visual by id
func (f Frame) Node(id string) (NodeVisual, bool) {
	for _, n := range f.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return NodeVisual{}, false
}

// Edge finds an edge visual by key
func (f Frame) Edge(key string) (EdgeVisual, bool) {
	for _, e := range f.Edges {
		if e.Key == key {
			return e, true
		}
	}
	return EdgeVisual{}, false
}
