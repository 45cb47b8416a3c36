package render

import (
	"bytes"
	"encoding/json"
	"html/template"
	"io"
)

// HTMLPainter writes a self-contained interactive page. The browser runs the
// same hover, label, and inspector rules as ComputeFrame, starting from the
// settled positions in the scene's frame.
type HTMLPainter struct {
	tmpl *template.Template
}

// NewHTMLPainter parses the page template
func NewHTMLPainter() *HTMLPainter {
	return &HTMLPainter{tmpl: template.Must(template.New("graph").Parse(htmlTemplate))}
}

// ContentType implements Painter
func (p *HTMLPainter) ContentType() string {
	return "text/html; charset=utf-8"
}

type pageSettings struct {
	Width             float64 `json:"width"`
	Height            float64 `json:"height"`
	DimmedNodeOpacity float64 `json:"dimmedNodeOpacity"`
	DimmedEdgeOpacity float64 `json:"dimmedEdgeOpacity"`
	NodeLabelMinScale float64 `json:"nodeLabelMinScale"`
	EdgeLabelMinScale float64 `json:"edgeLabelMinScale"`
	FitPadding        float64 `json:"fitPadding"`
	FitDurationMs     int64   `json:"fitDurationMs"`
	CooldownTicks     int     `json:"cooldownTicks"`
	AlphaDecay        float64 `json:"alphaDecay"`
	VelocityDecay     float64 `json:"velocityDecay"`
	MinZoom           float64 `json:"minZoom"`
	MaxZoom           float64 `json:"maxZoom"`
	Prompt            string  `json:"prompt"`
	NoData            string  `json:"noData"`
}

// Paint implements Painter
func (p *HTMLPainter) Paint(w io.Writer, scene Scene) error {
	title := scene.Title
	if title == "" {
		title = "Case Network"
	}

	graphJSON, err := json.Marshal(scene.Graph)
	if err != nil {
		return err
	}

	positions := make(map[string]Point, len(scene.Frame.Nodes))
	for _, n := range scene.Frame.Nodes {
		positions[n.ID] = Point{X: n.X, Y: n.Y}
	}
	positionsJSON, err := json.Marshal(positions)
	if err != nil {
		return err
	}

	layout := DefaultLayoutConfig()
	settingsJSON, err := json.Marshal(pageSettings{
		Width:             scene.Frame.Width,
		Height:            scene.Frame.Height,
		DimmedNodeOpacity: DimmedNodeOpacity,
		DimmedEdgeOpacity: DimmedEdgeOpacity,
		NodeLabelMinScale: NodeLabelMinScale,
		EdgeLabelMinScale: EdgeLabelMinScale,
		FitPadding:        FitPadding,
		FitDurationMs:     FitDuration.Milliseconds(),
		CooldownTicks:     layout.CooldownTicks,
		AlphaDecay:        layout.AlphaDecay,
		VelocityDecay:     layout.VelocityDecay,
		MinZoom:           MinZoom,
		MaxZoom:           MaxZoom,
		Prompt:            InspectorPrompt,
		NoData:            MessageNoData,
	})
	if err != nil {
		return err
	}

	selected := ""
	if !scene.Inspector.Empty {
		selected = scene.Inspector.NodeID
	}

	data := struct {
		Title         string
		NodeCount     int
		LinkCount     int
		GraphJSON     template.JS
		PositionsJSON template.JS
		SettingsJSON  template.JS
		Selected      string
	}{
		Title:         title,
		NodeCount:     scene.Graph.Stats.NodeCount,
		LinkCount:     scene.Graph.Stats.LinkCount,
		GraphJSON:     template.JS(graphJSON),
		PositionsJSON: template.JS(positionsJSON),
		SettingsJSON:  template.JS(settingsJSON),
		Selected:      selected,
	}

	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, data); err != nil {
		return err
	}
	_, err = w.Write(buf.Bytes())
	return err
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <script src="https://d3js.org/d3.v7.min.js"></script>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body {
            font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
            background: #f5f5f5;
            display: grid;
            grid-template-columns: 1fr 320px;
            gap: 16px;
            padding: 16px;
        }
        .card {
            background: white;
            border: 1px solid #e5e7eb;
            border-radius: 8px;
            padding: 12px;
        }
        .card h2 { font-size: 14px; font-weight: 600; margin-bottom: 8px; }
        .badges { float: right; font-size: 11px; color: #666; }
        .badge { border: 1px solid #ddd; border-radius: 4px; padding: 1px 6px; margin-left: 4px; }
        svg { display: block; background: #fafafa; border-radius: 6px; }
        .node { cursor: pointer; }
        .node-label { pointer-events: none; text-anchor: middle; dominant-baseline: central; fill: #000; }
        .link-label { pointer-events: none; text-anchor: middle; dominant-baseline: central; }
        .muted { color: #6b7280; font-size: 12px; }
        .row { margin-bottom: 10px; }
        .value { font-size: 14px; font-weight: 500; }
        .risk { display: inline-block; border: 1px solid #ddd; border-radius: 4px; padding: 0 6px; font-size: 12px; }
        .risk.critical { background: #ef4444; border-color: #ef4444; color: white; }
        .meta { font-size: 12px; margin-top: 4px; }
        .empty { text-align: center; padding: 32px 0; }
    </style>
</head>
<body>
    <div class="card">
        <h2>Relationship Network
            <span class="badges"><span class="badge">{{.NodeCount}} Nodes</span><span class="badge">{{.LinkCount}} Links</span></span>
        </h2>
        <svg id="graph"></svg>
    </div>
    <div class="card">
        <h2 id="inspector-title">Inspector</h2>
        <div id="inspector"></div>
    </div>

    <script>
    const graphData = {{.GraphJSON}};
    const positions = {{.PositionsJSON}};
    const settings = {{.SettingsJSON}};
    const initialSelection = {{.Selected}};

    const width = settings.width;
    const height = settings.height;
    const edgeKey = l => sourceId(l) + "-" + targetId(l);
    const sourceId = l => typeof l.source === "object" ? l.source.id : l.source;
    const targetId = l => typeof l.target === "object" ? l.target.id : l.target;

    const svg = d3.select("#graph").attr("width", width).attr("height", height);
    const g = svg.append("g");

    if (graphData.nodes.length === 0) {
        svg.append("text").attr("x", width / 2).attr("y", height / 2)
            .attr("text-anchor", "middle").attr("class", "muted").text(settings.noData);
    }

    const nodeIds = new Set(graphData.nodes.map(n => n.id));
    graphData.nodes.forEach(n => {
        const p = positions[n.id];
        if (p) { n.x = p.x; n.y = p.y; }
    });
    const links = graphData.links.filter(l => nodeIds.has(l.source) && nodeIds.has(l.target));

    let highlightNodes = new Set();
    let highlightLinks = new Set();
    let hoverId = null;
    let selected = null;
    let scale = 1;

    function humanize(type) {
        return type.replace(/_/g, " ").toLowerCase().split(" ")
            .map(w => w.charAt(0).toUpperCase() + w.slice(1)).join(" ");
    }

    function formatAmount(v) {
        return "₩" + Number(v).toLocaleString("en-US", { maximumFractionDigits: 2 });
    }

    const link = g.append("g").selectAll("line").data(links).join("line")
        .attr("stroke", d => d.color || "#999");
    const plate = g.append("g").selectAll("rect").data(links).join("rect")
        .attr("fill", "#fff").attr("opacity", 0.8);
    const linkLabel = g.append("g").selectAll("text").data(links).join("text")
        .attr("class", "link-label")
        .attr("fill", d => d.color || "#666")
        .text(d => d.type ? humanize(d.type) : "");

    const node = g.append("g").selectAll("circle").data(graphData.nodes).join("circle")
        .attr("class", "node")
        .attr("r", d => d.size || 5)
        .attr("fill", d => d.color || "#999")
        .on("mouseenter", (event, d) => hover(d))
        .on("mouseleave", () => hover(null))
        .on("click", (event, d) => select(d));
    const nodeLabel = g.append("g").selectAll("text").data(graphData.nodes).join("text")
        .attr("class", "node-label")
        .text(d => d.label);

    function hover(d) {
        highlightNodes = new Set();
        highlightLinks = new Set();
        if (d) {
            highlightNodes.add(d.id);
            links.forEach(l => {
                if (sourceId(l) === d.id) { highlightNodes.add(targetId(l)); highlightLinks.add(edgeKey(l)); }
                if (targetId(l) === d.id) { highlightNodes.add(sourceId(l)); highlightLinks.add(edgeKey(l)); }
            });
        }
        hoverId = d ? d.id : null;
        paint();
    }

    const nodeLit = d => highlightNodes.size === 0 || highlightNodes.has(d.id);
    const linkLit = l => highlightNodes.size === 0 || highlightLinks.has(edgeKey(l));

    function paint() {
        node.attr("cx", d => d.x).attr("cy", d => d.y)
            .attr("opacity", d => nodeLit(d) ? 1 : settings.dimmedNodeOpacity)
            .attr("stroke", d => d.id === hoverId ? "#000" : null)
            .attr("stroke-width", 2 / scale);

        const fontSize = 12 / scale;
        nodeLabel.attr("x", d => d.x).attr("y", d => d.y + (d.size || 5) + fontSize)
            .attr("font-size", fontSize)
            .attr("display", d => nodeLit(d) && scale > settings.nodeLabelMinScale ? null : "none");

        link.attr("x1", d => d.source.x).attr("y1", d => d.source.y)
            .attr("x2", d => d.target.x).attr("y2", d => d.target.y)
            .attr("stroke-width", d => (d.width || 1) / scale)
            .attr("opacity", d => linkLit(d) ? 1 : settings.dimmedEdgeOpacity);

        const edgeFont = 10 / scale;
        const pad = 2 / scale;
        const showEdgeLabel = d => linkLit(d) && scale > settings.edgeLabelMinScale && d.type;
        linkLabel.attr("x", d => (d.source.x + d.target.x) / 2)
            .attr("y", d => (d.source.y + d.target.y) / 2)
            .attr("font-size", edgeFont)
            .attr("display", d => showEdgeLabel(d) ? null : "none");
        plate.attr("display", d => showEdgeLabel(d) ? null : "none")
            .each(function(d, i) {
                if (!showEdgeLabel(d)) return;
                const w = linkLabel.nodes()[i].getComputedTextLength();
                d3.select(this)
                    .attr("x", (d.source.x + d.target.x) / 2 - w / 2 - pad)
                    .attr("y", (d.source.y + d.target.y) / 2 - edgeFont / 2 - pad)
                    .attr("width", w + pad * 2)
                    .attr("height", edgeFont + pad * 2);
            });
    }

    function select(d) {
        selected = d;
        const panel = document.getElementById("inspector");
        const title = document.getElementById("inspector-title");
        panel.replaceChildren();
        if (!d) {
            title.textContent = "Inspector";
            const p = document.createElement("div");
            p.className = "muted empty";
            p.textContent = settings.prompt;
            panel.appendChild(p);
            return;
        }
        title.textContent = "Node Details";
        const row = (label, value, cls) => {
            const r = document.createElement("div");
            r.className = "row";
            const l = document.createElement("div");
            l.className = "muted";
            l.textContent = label;
            const v = document.createElement("div");
            v.className = cls || "value";
            v.textContent = value;
            r.append(l, v);
            panel.appendChild(r);
        };
        row("Type", d.type);
        row("Label", d.label);
        if (d.risk) row("Risk", d.risk, d.risk === "critical" ? "risk critical" : "risk");
        if (d.amount !== undefined && d.amount !== null) row("Amount", formatAmount(d.amount));
        if (d.department) row("Department", d.department);
        const entries = Object.keys(d.metadata || {}).sort().filter(k => d.metadata[k]);
        if (entries.length > 0) {
            const r = document.createElement("div");
            r.className = "row";
            const l = document.createElement("div");
            l.className = "muted";
            l.textContent = "Additional Info";
            r.appendChild(l);
            entries.forEach(k => {
                const m = document.createElement("div");
                m.className = "meta";
                m.textContent = k + ": " + String(d.metadata[k]);
                r.appendChild(m);
            });
            panel.appendChild(r);
        }
    }

    const zoom = d3.zoom()
        .scaleExtent([settings.minZoom, settings.maxZoom])
        .on("zoom", (event) => {
            scale = event.transform.k;
            g.attr("transform", event.transform);
            paint();
        });
    svg.call(zoom);

    let fitted = false;
    function zoomToFit() {
        if (fitted || graphData.nodes.length === 0) return;
        fitted = true;
        const xs = graphData.nodes.map(n => n.x), ys = graphData.nodes.map(n => n.y);
        const x0 = Math.min(...xs), x1 = Math.max(...xs), y0 = Math.min(...ys), y1 = Math.max(...ys);
        let k = settings.maxZoom;
        if (x1 > x0) k = Math.min(k, (width - settings.fitPadding * 2) / (x1 - x0));
        if (y1 > y0) k = Math.min(k, (height - settings.fitPadding * 2) / (y1 - y0));
        k = Math.max(settings.minZoom, k);
        const t = d3.zoomIdentity.translate(width / 2 - (x0 + x1) / 2 * k, height / 2 - (y0 + y1) / 2 * k).scale(k);
        svg.transition().duration(settings.fitDurationMs).call(zoom.transform, t);
    }

    const simulation = d3.forceSimulation(graphData.nodes)
        .alphaDecay(settings.alphaDecay)
        .velocityDecay(settings.velocityDecay)
        .force("link", d3.forceLink(links).id(d => d.id))
        .force("charge", d3.forceManyBody())
        .force("center", d3.forceCenter(0, 0))
        .stop();

    node.call(d3.drag()
        .on("start", (event) => { event.subject.fx = event.subject.x; event.subject.fy = event.subject.y; })
        .on("drag", (event) => { event.subject.fx = event.x; event.subject.fy = event.y; event.subject.x = event.x; event.subject.y = event.y; paint(); })
        .on("end", (event) => { event.subject.fx = null; event.subject.fy = null; }));

    let ticks = Object.keys(positions).length > 0 ? settings.cooldownTicks : 0;
    function step() {
        if (ticks < settings.cooldownTicks) {
            simulation.tick();
            ticks++;
            paint();
            requestAnimationFrame(step);
        }
    }

    paint();
    zoomToFit();
    step();
    select(initialSelection ? graphData.nodes.find(n => n.id === initialSelection) || null : null);
    </script>
</body>
</html>
`
