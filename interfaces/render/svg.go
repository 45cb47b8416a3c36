package render

import (
	"html"
	"io"
	"strconv"
	"text/template"
)

// SVGPainter writes a static SVG of a frame
type SVGPainter struct {
	tmpl *template.Template
}

// NewSVGPainter parses the SVG template
func NewSVGPainter() *SVGPainter {
	return &SVGPainter{tmpl: template.Must(template.New("svg").Funcs(svgFuncs).Parse(svgTemplate))}
}

// ContentType implements Painter
func (p *SVGPainter) ContentType() string {
	return "image/svg+xml"
}

// Paint implements Painter
func (p *SVGPainter) Paint(w io.Writer, scene Scene) error {
	return p.tmpl.Execute(w, scene)
}

var svgFuncs = template.FuncMap{
	"esc": html.EscapeString,
	"num": func(f float64) string {
		return strconv.FormatFloat(f, 'f', -1, 64)
	},
	"fix": func(f float64) string {
		return strconv.FormatFloat(f, 'f', 2, 64)
	},
}

const svgTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="{{num .Frame.Width}}" height="{{num .Frame.Height}}" viewBox="0 0 {{num .Frame.Width}} {{num .Frame.Height}}" font-family="Sans-Serif">
<title>{{esc .Title}}</title>
<rect width="100%" height="100%" fill="#fff"/>
<g transform="translate({{fix .Frame.Transform.X}},{{fix .Frame.Transform.Y}}) scale({{num .Frame.Transform.K}})">
<g class="links">
{{- range .Frame.Edges}}
<line data-key="{{esc .Key}}" x1="{{fix .X1}}" y1="{{fix .Y1}}" x2="{{fix .X2}}" y2="{{fix .Y2}}" stroke="{{esc .Color}}" stroke-width="{{num .Width}}" opacity="{{num .Opacity}}"/>
{{- if .ShowLabel}}{{with .Plate}}
<rect x="{{fix .X}}" y="{{fix .Y}}" width="{{fix .Width}}" height="{{fix .Height}}" fill="#fff" opacity="{{num .Opacity}}"/>
{{- end}}
<text x="{{fix .Midpoint.X}}" y="{{fix .Midpoint.Y}}" font-size="{{num .FontSize}}" text-anchor="middle" dominant-baseline="central" fill="{{esc .Color}}">{{esc .Label}}</text>
{{- end}}
{{- end}}
</g>
<g class="nodes">
{{- range .Frame.Nodes}}
<circle data-id="{{esc .ID}}" cx="{{fix .X}}" cy="{{fix .Y}}" r="{{num .Radius}}" fill="{{esc .Color}}" opacity="{{num .Opacity}}"{{if .Hovered}} stroke="#000" stroke-width="{{num .StrokeWidth}}"{{end}}/>
{{- if .ShowLabel}}
<text x="{{fix .X}}" y="{{fix .LabelY}}" font-size="{{num .FontSize}}" text-anchor="middle" dominant-baseline="central" fill="#000">{{esc .Label}}</text>
{{- end}}
{{- end}}
</g>
</g>
</svg>
`
