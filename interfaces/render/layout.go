package render

import (
	"math"
	"math/rand/v2"

	"casegraph/domain/casenet"
)

// LayoutConfig tunes the force simulation
type LayoutConfig struct {
	// CooldownTicks caps the number of ticks run per data load
	CooldownTicks int
	AlphaDecay    float64
	VelocityDecay float64
	// AlphaMin stops the simulation early once it has cooled below it
	AlphaMin       float64
	ChargeStrength float64
	LinkDistance   float64
	Seed           uint64
}

// DefaultLayoutConfig settles quickly without much early jitter
func DefaultLayoutConfig() LayoutConfig {
	return LayoutConfig{
		CooldownTicks:  100,
		AlphaDecay:     0.02,
		VelocityDecay:  0.3,
		AlphaMin:       0.001,
		ChargeStrength: -30,
		LinkDistance:   30,
		Seed:           1,
	}
}

// Point is a position in layout space
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Bounds is an axis-aligned box in layout space
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

// Center returns the middle of the box
func (b Bounds) Center() Point {
	return Point{X: (b.MinX + b.MaxX) / 2, Y: (b.MinY + b.MaxY) / 2}
}

type body struct {
	id     string
	x, y   float64
	vx, vy float64
	fixed  bool
}

type spring struct {
	source, target int
	bias, strength float64
}

// Layout is a finite force-directed simulation over one GraphData.
// Positions live here and never on the graph itself.
type Layout struct {
	cfg     LayoutConfig
	bodies  []body
	index   map[string]int
	springs []spring
	alpha   float64
	ticks   int
	rng     *rand.Rand
}

const (
	initialRadius = 10.0
	distanceMin2  = 1.0
)

var initialAngle = math.Pi * (3 - math.Sqrt(5))

// NewLayout places every node on a phyllotaxis spiral and prepares springs
// for every edge whose endpoints both exist.
func NewLayout(g casenet.GraphData, cfg LayoutConfig) *Layout {
	if cfg.CooldownTicks <= 0 {
		cfg = DefaultLayoutConfig()
	}

	l := &Layout{
		cfg:    cfg,
		bodies: make([]body, 0, len(g.Nodes)),
		index:  make(map[string]int, len(g.Nodes)),
		alpha:  1,
		rng:    rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
	}

	for _, n := range g.Nodes {
		if _, dup := l.index[n.ID]; dup {
			continue
		}
		i := len(l.bodies)
		r := initialRadius * math.Sqrt(0.5+float64(i))
		a := float64(i) * initialAngle
		l.index[n.ID] = i
		l.bodies = append(l.bodies, body{id: n.ID, x: r * math.Cos(a), y: r * math.Sin(a)})
	}

	degree := make([]int, len(l.bodies))
	for _, e := range g.Links {
		s, okS := l.index[e.Source]
		t, okT := l.index[e.Target]
		if !okS || !okT {
			continue
		}
		degree[s]++
		degree[t]++
		l.springs = append(l.springs, spring{source: s, target: t})
	}
	for i := range l.springs {
		sp := &l.springs[i]
		ds, dt := float64(degree[sp.source]), float64(degree[sp.target])
		sp.bias = ds / (ds + dt)
		sp.strength = 1 / math.Min(ds, dt)
	}

	return l
}

// Settled reports whether the simulation has stopped
func (l *Layout) Settled() bool {
	return l.ticks >= l.cfg.CooldownTicks || l.alpha < l.cfg.AlphaMin
}

// Ticks returns the number of ticks run so far
func (l *Layout) Ticks() int {
	return l.ticks
}

// Alpha returns the current temperature
func (l *Layout) Alpha() float64 {
	return l.alpha
}

// Tick advances the simulation once. It returns false without moving anything
// once the layout has settled.
func (l *Layout) Tick() bool {
	if l.Settled() {
		return false
	}
	l.ticks++
	l.alpha += (0 - l.alpha) * l.cfg.AlphaDecay

	l.applySprings()
	l.applyCharge()

	keep := 1 - l.cfg.VelocityDecay
	for i := range l.bodies {
		b := &l.bodies[i]
		if b.fixed {
			b.vx, b.vy = 0, 0
			continue
		}
		b.vx *= keep
		b.vy *= keep
		b.x += b.vx
		b.y += b.vy
	}

	l.recenter()
	return true
}

// Run ticks until the layout settles and returns the number of ticks taken
func (l *Layout) Run() int {
	n := 0
	for l.Tick() {
		n++
	}
	return n
}

func (l *Layout) applySprings() {
	for _, sp := range l.springs {
		s, t := &l.bodies[sp.source], &l.bodies[sp.target]
		x := t.x + t.vx - s.x - s.vx
		y := t.y + t.vy - s.y - s.vy
		if x == 0 {
			x = l.jiggle()
		}
		if y == 0 {
			y = l.jiggle()
		}
		d := math.Sqrt(x*x + y*y)
		k := (d - l.cfg.LinkDistance) / d * l.alpha * sp.strength
		x *= k
		y *= k
		t.vx -= x * sp.bias
		t.vy -= y * sp.bias
		s.vx += x * (1 - sp.bias)
		s.vy += y * (1 - sp.bias)
	}
}

func (l *Layout) applyCharge() {
	for i := range l.bodies {
		a := &l.bodies[i]
		for j := range l.bodies {
			if i == j {
				continue
			}
			b := &l.bodies[j]
			x := b.x - a.x
			y := b.y - a.y
			if x == 0 {
				x = l.jiggle()
			}
			if y == 0 {
				y = l.jiggle()
			}
			d2 := x*x + y*y
			if d2 < distanceMin2 {
				d2 = math.Sqrt(distanceMin2 * d2)
			}
			w := l.cfg.ChargeStrength * l.alpha / d2
			a.vx += x * w
			a.vy += y * w
		}
	}
}

// recenter shifts free bodies so the mean position stays at the origin
func (l *Layout) recenter() {
	if len(l.bodies) == 0 {
		return
	}
	var sx, sy float64
	for _, b := range l.bodies {
		sx += b.x
		sy += b.y
	}
	sx /= float64(len(l.bodies))
	sy /= float64(len(l.bodies))
	for i := range l.bodies {
		if l.bodies[i].fixed {
			continue
		}
		l.bodies[i].x -= sx
		l.bodies[i].y -= sy
	}
}

func (l *Layout) jiggle() float64 {
	return (l.rng.Float64() - 0.5) * 1e-6
}

// Position returns where a node currently sits
func (l *Layout) Position(id string) (Point, bool) {
	i, ok := l.index[id]
	if !ok {
		return Point{}, false
	}
	return Point{X: l.bodies[i].x, Y: l.bodies[i].y}, true
}

// Positions returns a copy of every node position
func (l *Layout) Positions() map[string]Point {
	out := make(map[string]Point, len(l.bodies))
	for _, b := range l.bodies {
		out[b.id] = Point{X: b.x, Y: b.y}
	}
	return out
}

// Pin moves a node and holds it there until Release
func (l *Layout) Pin(id string, p Point) bool {
	i, ok := l.index[id]
	if !ok {
		return false
	}
	b := &l.bodies[i]
	b.x, b.y = p.X, p.Y
	b.vx, b.vy = 0, 0
	b.fixed = true
	return true
}

// Release lets a pinned node move again; it keeps its current position
func (l *Layout) Release(id string) {
	if i, ok := l.index[id]; ok {
		l.bodies[i].fixed = false
	}
}

// Bounds returns the box around every node center. The second result is false
// for an empty layout.
func (l *Layout) Bounds() (Bounds, bool) {
	if len(l.bodies) == 0 {
		return Bounds{}, false
	}
	b := Bounds{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
	for _, n := range l.bodies {
		b.MinX = math.Min(b.MinX, n.x)
		b.MinY = math.Min(b.MinY, n.y)
		b.MaxX = math.Max(b.MaxX, n.x)
		b.MaxY = math.Max(b.MaxY, n.y)
	}
	return b, true
}
