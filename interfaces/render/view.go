package render

import (
	"math"
	"time"

	"casegraph/domain/casenet"
)

// Mode is the hover state of a view
type Mode int

const (
	ModeIdle Mode = iota
	ModeHovering
)

func (m Mode) String() string {
	if m == ModeHovering {
		return "hovering"
	}
	return "idle"
}

// ViewOption configures a View
type ViewOption func(*View)

// WithNodeClick registers the click callback
func WithNodeClick(fn func(casenet.GraphNode)) ViewOption {
	return func(v *View) { v.onClick = fn }
}

// WithNodeHover registers the hover callback; it receives nil on leave
func WithNodeHover(fn func(*casenet.GraphNode)) ViewOption {
	return func(v *View) { v.onHover = fn }
}

// WithLayoutConfig overrides the force simulation settings
func WithLayoutConfig(cfg LayoutConfig) ViewOption {
	return func(v *View) { v.layoutCfg = cfg }
}

// WithClock replaces the clock that drives viewport animation
func WithClock(now func() time.Time) ViewOption {
	return func(v *View) { v.now = now }
}

// View is one interactive graph instance. It is driven from a single event
// loop and is not safe for concurrent use.
type View struct {
	graph     casenet.GraphData
	layout    *Layout
	viewport  *Viewport
	layoutCfg LayoutConfig

	highlight Highlight
	hoveredID string
	selected  *casenet.GraphNode
	dragging  string

	onClick func(casenet.GraphNode)
	onHover func(*casenet.GraphNode)
	now     func() time.Time
}

// NewView creates an empty view with a fixed viewport size in pixels
func NewView(width, height float64, opts ...ViewOption) *View {
	v := &View{
		viewport:  NewViewport(width, height),
		layoutCfg: DefaultLayoutConfig(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	v.layout = NewLayout(v.graph, v.layoutCfg)
	return v
}

// SetData replaces the graph. Interaction state is cleared, the layout starts
// over, and one viewport fit is armed.
func (v *View) SetData(g casenet.GraphData) {
	v.graph = g
	v.layout = NewLayout(g, v.layoutCfg)
	v.highlight = Highlight{}
	v.hoveredID = ""
	v.selected = nil
	v.dragging = ""
	v.viewport.RequestFit()
}

// Data returns the graph being shown
func (v *View) Data() casenet.GraphData {
	return v.graph
}

// Mode reports whether a node is hovered
func (v *View) Mode() Mode {
	if v.hoveredID != "" {
		return ModeHovering
	}
	return ModeIdle
}

// Highlight returns the current highlight sets
func (v *View) Highlight() Highlight {
	return v.highlight
}

// HoveredID returns the hovered node id, or "" when idle
func (v *View) HoveredID() string {
	return v.hoveredID
}

// Selected returns the last clicked node
func (v *View) Selected() (casenet.GraphNode, bool) {
	if v.selected == nil {
		return casenet.GraphNode{}, false
	}
	return *v.selected, true
}

// Inspector projects the selection into the inspector panel
func (v *View) Inspector() Panel {
	return Inspect(v.selected)
}

// HoverNode enters a node. Unknown ids are ignored.
func (v *View) HoverNode(id string) bool {
	node, ok := v.graph.Node(id)
	if !ok {
		return false
	}
	if id == v.hoveredID {
		return true
	}
	v.hoveredID = id
	v.highlight = NeighborClosure(v.graph.Links, id)
	if v.onHover != nil {
		v.onHover(&node)
	}
	return true
}

// LeaveNode returns to idle and clears the highlight
func (v *View) LeaveNode() {
	if v.hoveredID == "" {
		return
	}
	v.hoveredID = ""
	v.highlight = Highlight{}
	if v.onHover != nil {
		v.onHover(nil)
	}
}

// ClickNode selects a node. The selection stays until another node is clicked.
func (v *View) ClickNode(id string) bool {
	node, ok := v.graph.Node(id)
	if !ok {
		return false
	}
	v.selected = &node
	if v.onClick != nil {
		v.onClick(node)
	}
	return true
}

// NodeAt hit-tests a screen point against the node circles, topmost first
func (v *View) NodeAt(sx, sy float64) (string, bool) {
	p := v.viewport.Transform().Invert(Point{X: sx, Y: sy})
	for i := len(v.graph.Nodes) - 1; i >= 0; i-- {
		n := v.graph.Nodes[i]
		pos, ok := v.layout.Position(n.ID)
		if !ok {
			continue
		}
		r := n.Size
		if r <= 0 {
			r = DefaultNodeSize
		}
		if math.Hypot(p.X-pos.X, p.Y-pos.Y) <= r {
			return n.ID, true
		}
	}
	return "", false
}

// PointerMove dispatches hover enter and leave for a pointer position
func (v *View) PointerMove(sx, sy float64) {
	if v.dragging != "" {
		v.DragNode(v.dragging, sx, sy)
		return
	}
	id, ok := v.NodeAt(sx, sy)
	if !ok {
		v.LeaveNode()
		return
	}
	if id != v.hoveredID {
		v.LeaveNode()
		v.HoverNode(id)
	}
}

// PointerClick selects the node under the pointer. Clicking the background
// keeps the current selection.
func (v *View) PointerClick(sx, sy float64) bool {
	id, ok := v.NodeAt(sx, sy)
	if !ok {
		return false
	}
	return v.ClickNode(id)
}

// DragNode pins a node under the pointer
func (v *View) DragNode(id string, sx, sy float64) bool {
	if !v.layout.Pin(id, v.viewport.Transform().Invert(Point{X: sx, Y: sy})) {
		return false
	}
	v.dragging = id
	return true
}

// EndDrag lets the dragged node go
func (v *View) EndDrag() {
	if v.dragging == "" {
		return
	}
	v.layout.Release(v.dragging)
	v.dragging = ""
}

// Pan moves the viewport by a screen delta
func (v *View) Pan(dx, dy float64) {
	v.viewport.Pan(dx, dy)
}

// Zoom scales the viewport around a screen point
func (v *View) Zoom(factor, sx, sy float64) {
	v.viewport.ZoomAt(factor, sx, sy)
}

// Tick advances the layout one step; false once it has settled
func (v *View) Tick() bool {
	return v.layout.Tick()
}

// Settle runs the layout to completion
func (v *View) Settle() int {
	return v.layout.Run()
}

// Layout exposes the simulation
func (v *View) Layout() *Layout {
	return v.layout
}

// Viewport exposes the pan and zoom state
func (v *View) Viewport() *Viewport {
	return v.viewport
}

// Frame applies an armed fit once and derives the current frame
func (v *View) Frame() Frame {
	b, ok := v.layout.Bounds()
	t := v.viewport.Update(v.now(), b, ok)
	return v.frame(t)
}

// Snapshot settles the layout, fits it, and returns the frame at the end of
// the fit animation.
func (v *View) Snapshot() Frame {
	v.Settle()
	v.Frame()
	return v.frame(v.viewport.Finish())
}

func (v *View) frame(t Transform) Frame {
	w, h := v.viewport.Size()
	var selectedID string
	if v.selected != nil {
		selectedID = v.selected.ID
	}
	return ComputeFrame(FrameInput{
		Graph:      v.graph,
		Positions:  v.layout.Positions(),
		Highlight:  v.highlight,
		HoveredID:  v.hoveredID,
		SelectedID: selectedID,
		Transform:  t,
		Width:      w,
		Height:     h,
	})
}
