package render

import (
	"fmt"
	"io"
	"strings"

	"casegraph/domain/casenet"
)

// Scene is what a painter receives: the graph, the frame derived from it, and
// the inspector state at the time of painting.
type Scene struct {
	Title     string
	Graph     casenet.GraphData
	Frame     Frame
	Inspector Panel
}

// Painter writes a scene in one output format
type Painter interface {
	ContentType() string
	Paint(w io.Writer, scene Scene) error
}

// Output formats
const (
	FormatSVG  = "svg"
	FormatHTML = "html"
)

// PainterFor returns the painter for a format name
func PainterFor(format string) (Painter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatSVG:
		return NewSVGPainter(), nil
	case FormatHTML:
		return NewHTMLPainter(), nil
	default:
		return nil, fmt.Errorf("unsupported render format %q", format)
	}
}

// RenderCase settles a fresh view over g and paints the snapshot. When
// selectedID names a node it is selected so the inspector shows it.
func RenderCase(w io.Writer, p Painter, title string, g casenet.GraphData, width, height float64, selectedID string) error {
	v := NewView(width, height)
	v.SetData(g)
	if selectedID != "" {
		v.ClickNode(selectedID)
	}
	frame := v.Snapshot()
	return p.Paint(w, Scene{
		Title:     title,
		Graph:     g,
		Frame:     frame,
		Inspector: v.Inspector(),
	})
}
