package render

import (
	"bytes"
	"context"
	"encoding/xml"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"casegraph/domain/casenet"
	pkgerrors "casegraph/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func amount(v float64) *float64 { return &v }

func chainGraph() casenet.GraphData {
	nodes := []casenet.GraphNode{
		{ID: "A", Label: "Alpha", Type: casenet.NodeEmployee, Size: 15},
		{ID: "B", Label: "Bravo", Type: casenet.NodeTransaction, Amount: amount(1_200_000), Size: 10},
		{ID: "C", Label: "Charlie", Type: casenet.NodeMerchant, Size: 12},
	}
	links := []casenet.GraphEdge{
		{Source: "A", Target: "B", Type: casenet.LinkMadeTransaction, Width: 2},
		{Source: "B", Target: "C", Type: casenet.LinkAtMerchant, Width: 2},
	}
	return casenet.GraphData{Nodes: nodes, Links: links, Stats: casenet.ComputeStats(nodes, links)}
}

func fixedClock() (func() time.Time, *time.Time) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time { return now }, &now
}

func TestNeighborClosure_HoverHighlight(t *testing.T) {
	g := chainGraph()

	tests := []struct {
		name      string
		hover     string
		wantNodes []string
		wantEdges []string
	}{
		{name: "middle node reaches both ends", hover: "B", wantNodes: []string{"A", "B", "C"}, wantEdges: []string{"A-B", "B-C"}},
		{name: "end node excludes non-neighbors", hover: "A", wantNodes: []string{"A", "B"}, wantEdges: []string{"A-B"}},
		{name: "incoming edge counts", hover: "C", wantNodes: []string{"B", "C"}, wantEdges: []string{"B-C"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NeighborClosure(g.Links, tt.hover)

			assert.Equal(t, tt.wantNodes, h.NodeIDs())
			assert.Equal(t, tt.wantEdges, h.EdgeKeys())
		})
	}
}

func TestView_HoverStateMachine(t *testing.T) {
	// Arrange
	var hovered []string
	v := NewView(800, 600, WithNodeHover(func(n *casenet.GraphNode) {
		if n == nil {
			hovered = append(hovered, "<nil>")
			return
		}
		hovered = append(hovered, n.ID)
	}))
	v.SetData(chainGraph())
	require.Equal(t, ModeIdle, v.Mode())

	// Act
	require.True(t, v.HoverNode("A"))

	// Assert
	assert.Equal(t, ModeHovering, v.Mode())
	assert.Equal(t, []string{"A", "B"}, v.Highlight().NodeIDs())

	v.LeaveNode()
	assert.Equal(t, ModeIdle, v.Mode())
	assert.True(t, v.Highlight().IsEmpty())
	assert.Equal(t, []string{"A", "<nil>"}, hovered)

	assert.False(t, v.HoverNode("missing"))
	assert.Equal(t, ModeIdle, v.Mode())
}

func TestView_SelectionPersistsUntilAnotherClick(t *testing.T) {
	var clicked []string
	v := NewView(800, 600, WithNodeClick(func(n casenet.GraphNode) { clicked = append(clicked, n.ID) }))
	v.SetData(chainGraph())
	v.Snapshot()

	require.True(t, v.ClickNode("B"))
	v.HoverNode("A")
	v.LeaveNode()

	// Background click keeps the selection
	assert.False(t, v.PointerClick(-10_000, -10_000))

	sel, ok := v.Selected()
	require.True(t, ok)
	assert.Equal(t, "B", sel.ID)

	require.True(t, v.ClickNode("C"))
	sel, _ = v.Selected()
	assert.Equal(t, "C", sel.ID)
	assert.Equal(t, []string{"B", "C"}, clicked)
}

func TestView_SetDataResetsInteraction(t *testing.T) {
	v := NewView(800, 600)
	v.SetData(chainGraph())
	v.HoverNode("B")
	v.ClickNode("B")

	v.SetData(chainGraph())

	assert.Equal(t, ModeIdle, v.Mode())
	assert.True(t, v.Highlight().IsEmpty())
	_, ok := v.Selected()
	assert.False(t, ok)
	assert.True(t, v.Inspector().Empty)
}

func TestView_PointerHitTesting(t *testing.T) {
	v := NewView(800, 600)
	v.SetData(chainGraph())
	frame := v.Snapshot()

	b, ok := frame.Node("B")
	require.True(t, ok)
	screen := frame.Transform.Apply(Point{X: b.X, Y: b.Y})

	v.PointerMove(screen.X, screen.Y)
	assert.Equal(t, "B", v.HoveredID())

	v.PointerMove(-10_000, -10_000)
	assert.Equal(t, ModeIdle, v.Mode())

	assert.True(t, v.PointerClick(screen.X, screen.Y))
	sel, _ := v.Selected()
	assert.Equal(t, "B", sel.ID)
}

func TestComputeFrame_Opacity(t *testing.T) {
	g := chainGraph()
	positions := map[string]Point{"A": {0, 0}, "B": {50, 0}, "C": {100, 0}}

	t.Run("idle paints everything at full opacity", func(t *testing.T) {
		f := ComputeFrame(FrameInput{Graph: g, Positions: positions, Transform: Transform{K: 1}})

		for _, n := range f.Nodes {
			assert.Equal(t, 1.0, n.Opacity, n.ID)
		}
		for _, e := range f.Edges {
			assert.Equal(t, 1.0, e.Opacity, e.Key)
		}
	})

	t.Run("hover dims everything outside the closure", func(t *testing.T) {
		f := ComputeFrame(FrameInput{
			Graph:     g,
			Positions: positions,
			Highlight: NeighborClosure(g.Links, "A"),
			HoveredID: "A",
			Transform: Transform{K: 1},
		})

		a, _ := f.Node("A")
		c, _ := f.Node("C")
		ab, _ := f.Edge("A-B")
		bc, _ := f.Edge("B-C")
		assert.Equal(t, 1.0, a.Opacity)
		assert.True(t, a.Hovered)
		assert.Equal(t, HoverStrokeWidth, a.StrokeWidth)
		assert.Equal(t, DimmedNodeOpacity, c.Opacity)
		assert.Equal(t, 1.0, ab.Opacity)
		assert.Equal(t, DimmedEdgeOpacity, bc.Opacity)
	})

	t.Run("dangling edges are invisible", func(t *testing.T) {
		dangling := g
		dangling.Links = append(append([]casenet.GraphEdge{}, g.Links...),
			casenet.GraphEdge{Source: "A", Target: "ghost", Type: casenet.LinkSimilarPattern})

		f := ComputeFrame(FrameInput{Graph: dangling, Positions: positions, Transform: Transform{K: 1}})

		assert.Len(t, f.Edges, 2)
		_, ok := f.Edge("A-ghost")
		assert.False(t, ok)
	})
}

func TestComputeFrame_LabelThresholds(t *testing.T) {
	g := chainGraph()
	positions := map[string]Point{"A": {0, 0}, "B": {50, 0}, "C": {100, 0}}
	hover := NeighborClosure(g.Links, "A")

	tests := []struct {
		name           string
		scale          float64
		wantNodeLabel  bool
		wantEdgeLabel  bool
		wantOtherLabel bool
	}{
		{name: "zoomed out hides all labels", scale: 0.5},
		{name: "at node threshold still hidden", scale: NodeLabelMinScale},
		{name: "between thresholds shows node labels", scale: 1.0, wantNodeLabel: true},
		{name: "above edge threshold shows edge labels", scale: 2.0, wantNodeLabel: true, wantEdgeLabel: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := ComputeFrame(FrameInput{
				Graph:     g,
				Positions: positions,
				Highlight: hover,
				Transform: Transform{K: tt.scale},
			})

			a, _ := f.Node("A")
			c, _ := f.Node("C")
			ab, _ := f.Edge("A-B")
			bc, _ := f.Edge("B-C")
			assert.Equal(t, tt.wantNodeLabel, a.ShowLabel)
			assert.False(t, c.ShowLabel, "dimmed nodes never get a label")
			assert.Equal(t, tt.wantEdgeLabel, ab.ShowLabel)
			assert.False(t, bc.ShowLabel, "dimmed edges never get a label")
		})
	}
}

func TestComputeFrame_EdgeLabelPlate(t *testing.T) {
	g := chainGraph()
	positions := map[string]Point{"A": {0, 0}, "B": {40, 20}, "C": {100, 0}}

	f := ComputeFrame(FrameInput{Graph: g, Positions: positions, Transform: Transform{K: 2}})

	ab, ok := f.Edge("A-B")
	require.True(t, ok)
	assert.Equal(t, "Made Transaction", ab.Label)
	assert.Equal(t, EdgeFontSize/2, ab.FontSize)
	require.NotNil(t, ab.Plate)
	assert.Equal(t, LabelPlateOpacity, ab.Plate.Opacity)

	mid := ab.Midpoint()
	assert.InDelta(t, mid.X, ab.Plate.X+ab.Plate.Width/2, 1e-9)
	assert.InDelta(t, mid.Y, ab.Plate.Y+ab.Plate.Height/2, 1e-9)
	assert.Equal(t, 1.0, ab.Width, "stroke width is divided by zoom")
}

func TestLayout_FiniteAndDeterministic(t *testing.T) {
	g := chainGraph()

	first := NewLayout(g, DefaultLayoutConfig())
	ticks := first.Run()

	assert.Equal(t, DefaultLayoutConfig().CooldownTicks, ticks)
	assert.True(t, first.Settled())
	assert.False(t, first.Tick(), "a settled layout does not move again")

	second := NewLayout(g, DefaultLayoutConfig())
	second.Run()
	assert.Equal(t, first.Positions(), second.Positions())

	for id, p := range first.Positions() {
		assert.False(t, math.IsNaN(p.X) || math.IsNaN(p.Y), id)
	}

	ab := math.Hypot(first.Positions()["A"].X-first.Positions()["B"].X, first.Positions()["A"].Y-first.Positions()["B"].Y)
	ac := math.Hypot(first.Positions()["A"].X-first.Positions()["C"].X, first.Positions()["A"].Y-first.Positions()["C"].Y)
	assert.Less(t, ab, ac, "linked nodes settle closer than unlinked ones")
}

func TestLayout_PinAndRelease(t *testing.T) {
	l := NewLayout(chainGraph(), DefaultLayoutConfig())

	require.True(t, l.Pin("A", Point{X: 500, Y: 500}))
	l.Run()

	p, _ := l.Position("A")
	assert.Equal(t, Point{X: 500, Y: 500}, p)

	l.Release("A")
	p, _ = l.Position("A")
	assert.Equal(t, Point{X: 500, Y: 500}, p)
	assert.False(t, l.Pin("missing", Point{}))
}

func TestLayout_EmptyGraph(t *testing.T) {
	l := NewLayout(casenet.EmptyGraph(), DefaultLayoutConfig())

	l.Run()

	_, ok := l.Bounds()
	assert.False(t, ok)
	assert.Empty(t, l.Positions())
}

func TestViewport_FitsOncePerDataChange(t *testing.T) {
	// Arrange
	clock, now := fixedClock()
	v := NewView(800, 600, WithClock(clock))
	v.SetData(chainGraph())
	v.Settle()

	// Act
	v.Frame()
	*now = now.Add(FitDuration / 2)
	mid := v.Frame()
	*now = now.Add(FitDuration)
	end := v.Frame()

	// Assert
	assert.Equal(t, 1, v.Viewport().Fits())
	assert.False(t, v.Viewport().Animating())
	assert.NotEqual(t, mid.Transform, end.Transform, "the fit animates")

	b, _ := v.Layout().Bounds()
	assert.Equal(t, FitTransform(b, 800, 600, FitPadding), end.Transform)

	for i := 0; i < 5; i++ {
		v.Frame()
	}
	assert.Equal(t, 1, v.Viewport().Fits(), "repainting never refits")

	v.SetData(chainGraph())
	v.Frame()
	assert.Equal(t, 2, v.Viewport().Fits())
}

func TestViewport_UserPanSurvivesRepaint(t *testing.T) {
	clock, now := fixedClock()
	v := NewView(800, 600, WithClock(clock))
	v.SetData(chainGraph())
	fitted := v.Snapshot().Transform

	v.Pan(25, -10)
	v.Zoom(2, 400, 300)
	*now = now.Add(time.Second)
	after := v.Frame().Transform

	assert.InDelta(t, fitted.K*2, after.K, 1e-9)
	assert.Equal(t, 1, v.Viewport().Fits())
	assert.Equal(t, chainGraph(), v.Data(), "view-only interactions leave the data alone")
}

func TestFitTransform_PaddingAndCentering(t *testing.T) {
	b := Bounds{MinX: -100, MinY: -50, MaxX: 100, MaxY: 50}

	tr := FitTransform(b, 800, 600, 50)

	assert.InDelta(t, 3.5, tr.K, 1e-9)
	center := tr.Apply(b.Center())
	assert.InDelta(t, 400, center.X, 1e-9)
	assert.InDelta(t, 300, center.Y, 1e-9)

	single := FitTransform(Bounds{MinX: 5, MinY: 5, MaxX: 5, MaxY: 5}, 800, 600, 50)
	assert.Equal(t, MaxZoom, single.K)
}

func TestViewport_EmptyGraphDisarmsFit(t *testing.T) {
	v := NewView(800, 600)
	v.SetData(casenet.EmptyGraph())

	v.Frame()

	assert.Equal(t, 0, v.Viewport().Fits())
	assert.False(t, v.Viewport().FitPending())
}

func TestInspect(t *testing.T) {
	t.Run("nothing selected shows the prompt", func(t *testing.T) {
		p := Inspect(nil)

		assert.True(t, p.Empty)
		assert.Equal(t, InspectorPrompt, p.Prompt)
	})

	t.Run("critical transaction", func(t *testing.T) {
		n := casenet.GraphNode{
			ID:     "transaction:T-1",
			Label:  "Gangnam Lounge",
			Type:   casenet.NodeTransaction,
			Amount: amount(1_200_000),
			Metadata: casenet.Metadata{
				"merchant":   casenet.StringValue("Gangnam Lounge"),
				"memo":       casenet.StringValue(""),
				"count":      casenet.NumberValue(0),
				"flagged":    casenet.BoolValue(false),
				"reviewer":   casenet.NullValue(),
				"hours_diff": casenet.NumberValue(5),
			},
		}

		p := Inspect(&n)

		assert.Equal(t, "critical", p.Risk)
		assert.True(t, p.Critical)
		assert.Equal(t, "₩1,200,000", p.Amount)
		assert.Equal(t, []MetadataEntry{
			{Key: "hours_diff", Value: "5"},
			{Key: "merchant", Value: "Gangnam Lounge"},
		}, p.Metadata)
		assert.Len(t, n.Metadata, 6, "falsy entries stay on the node")
	})

	t.Run("zero amount is still shown", func(t *testing.T) {
		n := casenet.GraphNode{ID: "transaction:T-0", Type: casenet.NodeTransaction, Amount: amount(0)}

		p := Inspect(&n)

		assert.Equal(t, "₩0", p.Amount)
		assert.Equal(t, "low", p.Risk)
		assert.False(t, p.Critical)
	})

	t.Run("employee has department and no risk", func(t *testing.T) {
		n := casenet.GraphNode{ID: "employee:E-1", Label: "Kim", Type: casenet.NodeEmployee, Department: "Sales"}

		p := Inspect(&n)

		assert.Empty(t, p.Risk)
		assert.Empty(t, p.Amount)
		assert.Equal(t, "Sales", p.Department)
	})
}

func TestPanel_WriteText(t *testing.T) {
	n := casenet.GraphNode{
		ID:       "transaction:T-1",
		Label:    "T-1",
		Type:     casenet.NodeTransaction,
		Amount:   amount(1_200_000),
		Metadata: casenet.Metadata{"merchant": casenet.StringValue("Gangnam Lounge"), "memo": casenet.StringValue("")},
	}
	var buf bytes.Buffer

	require.NoError(t, Inspect(&n).WriteText(&buf))

	out := buf.String()
	assert.Contains(t, out, "Node Details")
	assert.Contains(t, out, "CRITICAL !")
	assert.Contains(t, out, "₩1,200,000")
	assert.Contains(t, out, "merchant: Gangnam Lounge")
	assert.NotContains(t, out, "memo")

	buf.Reset()
	require.NoError(t, Inspect(nil).WriteText(&buf))
	assert.Contains(t, buf.String(), InspectorPrompt)
}

type gatedLoader struct {
	mu    sync.Mutex
	gates map[string]chan struct{}
	data  map[string]casenet.GraphData
	errs  map[string]error
}

func newGatedLoader() *gatedLoader {
	return &gatedLoader{
		gates: make(map[string]chan struct{}),
		data:  make(map[string]casenet.GraphData),
		errs:  make(map[string]error),
	}
}

func (l *gatedLoader) gate(caseID string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.gates[caseID]
	if !ok {
		ch = make(chan struct{})
		l.gates[caseID] = ch
	}
	return ch
}

func (l *gatedLoader) CaseNetwork(ctx context.Context, caseID string) (casenet.GraphData, error) {
	select {
	case <-l.gate(caseID):
	case <-ctx.Done():
		return casenet.GraphData{}, ctx.Err()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.data[caseID], l.errs[caseID]
}

func TestSession_SuppressesStaleResponses(t *testing.T) {
	// Arrange
	loader := newGatedLoader()
	slow := chainGraph()
	fast := casenet.GraphData{Nodes: []casenet.GraphNode{{ID: "case:C-2", Type: casenet.NodeCase}}}
	fast.Stats = casenet.ComputeStats(fast.Nodes, nil)
	loader.data["C-1"] = slow
	loader.data["C-2"] = fast
	session := NewSession(loader, NewView(800, 600), zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	staleErr := make(chan error, 1)
	go func() { staleErr <- session.Load(ctx, "C-1") }()
	require.Eventually(t, func() bool { return session.CaseID() == "C-1" }, time.Second, time.Millisecond)

	// Act
	newer := make(chan error, 1)
	go func() { newer <- session.Load(ctx, "C-2") }()
	require.Eventually(t, func() bool { return session.CaseID() == "C-2" }, time.Second, time.Millisecond)
	close(loader.gate("C-2"))
	require.NoError(t, <-newer)
	close(loader.gate("C-1"))

	// Assert
	assert.ErrorIs(t, <-staleErr, ErrStaleResponse)
	assert.Equal(t, StatusReady, session.Status())
	assert.Equal(t, fast, session.View().Data())
	assert.NotEmpty(t, session.ID())
}

func TestSession_ErrorMessages(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		data       casenet.GraphData
		wantStatus Status
		wantMsg    string
	}{
		{name: "not found", err: pkgerrors.NewNotFoundError("case C-9"), wantStatus: StatusNotFound, wantMsg: MessageNoCase},
		{name: "upstream failure", err: pkgerrors.NewUnavailableError("graph store"), wantStatus: StatusFailed, wantMsg: MessageNoData},
		{name: "empty graph", data: casenet.EmptyGraph(), wantStatus: StatusReady, wantMsg: MessageNoData},
		{name: "graph to paint", data: chainGraph(), wantStatus: StatusReady, wantMsg: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := newGatedLoader()
			loader.data["C-9"] = tt.data
			loader.errs["C-9"] = tt.err
			close(loader.gate("C-9"))
			session := NewSession(loader, NewView(800, 600), zap.NewNop())

			err := session.Load(context.Background(), "C-9")

			if tt.err != nil {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantStatus, session.Status())
			assert.Equal(t, tt.wantMsg, session.Message())
			assert.NotContains(t, session.Message(), "graph store")
		})
	}
}

func TestSVGPainter(t *testing.T) {
	g := chainGraph()
	g.Nodes[0].Label = `Kim <script>`
	var buf bytes.Buffer

	err := RenderCase(&buf, NewSVGPainter(), "C-100 & friends", g, 800, 600, "B")

	require.NoError(t, err)
	out := buf.String()
	assert.Equal(t, 3, strings.Count(out, "<circle"))
	assert.Equal(t, 2, strings.Count(out, "<line"))
	assert.Contains(t, out, "C-100 &amp; friends")
	assert.NotContains(t, out, "<script>")

	var doc struct{ XMLName xml.Name }
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &doc), "output is well-formed XML")
	assert.Equal(t, "svg", doc.XMLName.Local)
}

func TestHTMLPainter(t *testing.T) {
	g := chainGraph()
	var buf bytes.Buffer

	err := RenderCase(&buf, NewHTMLPainter(), "C-100", g, 800, 600, "B")

	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "<title>C-100</title>")
	assert.Contains(t, out, "d3.v7.min.js")
	assert.Contains(t, out, `"id":"B"`)
	assert.Contains(t, out, `"fitDurationMs":400`)
	assert.Contains(t, out, `const initialSelection = "B"`)
}

func TestPainterFor(t *testing.T) {
	svg, err := PainterFor("SVG")
	require.NoError(t, err)
	assert.Equal(t, "image/svg+xml", svg.ContentType())

	html, err := PainterFor("html")
	require.NoError(t, err)
	assert.Contains(t, html.ContentType(), "text/html")

	_, err = PainterFor("png")
	assert.Error(t, err)
}
