package render

import (
	"math"
	"time"
)

// Viewport defaults
const (
	FitPadding  = 50.0
	FitDuration = 400 * time.Millisecond
	MinZoom     = 0.01
	MaxZoom     = 1000.0
)

// Transform maps layout space to screen space: screen = layout*K + (X, Y)
type Transform struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	K float64 `json:"k"`
}

// Apply maps a layout point to the screen
func (t Transform) Apply(p Point) Point {
	return Point{X: p.X*t.K + t.X, Y: p.Y*t.K + t.Y}
}

// Invert maps a screen point back to layout space
func (t Transform) Invert(p Point) Point {
	return Point{X: (p.X - t.X) / t.K, Y: (p.Y - t.Y) / t.K}
}

// FitTransform returns the transform that centers b in a width x height
// viewport with padding on every side.
func FitTransform(b Bounds, width, height, padding float64) Transform {
	w := b.MaxX - b.MinX
	h := b.MaxY - b.MinY
	k := MaxZoom
	if w > 0 {
		k = math.Min(k, (width-padding*2)/w)
	}
	if h > 0 {
		k = math.Min(k, (height-padding*2)/h)
	}
	k = clampZoom(k)

	c := b.Center()
	return Transform{X: width/2 - c.X*k, Y: height/2 - c.Y*k, K: k}
}

func clampZoom(k float64) float64 {
	if math.IsNaN(k) || k <= 0 {
		return MinZoom
	}
	return math.Max(MinZoom, math.Min(MaxZoom, k))
}

type transition struct {
	from, to Transform
	start    time.Time
	duration time.Duration
}

func (tr transition) at(now time.Time) (Transform, bool) {
	elapsed := now.Sub(tr.start)
	if elapsed >= tr.duration || tr.duration <= 0 {
		return tr.to, true
	}
	p := easeCubicInOut(float64(elapsed) / float64(tr.duration))
	return Transform{
		X: tr.from.X + (tr.to.X-tr.from.X)*p,
		Y: tr.from.Y + (tr.to.Y-tr.from.Y)*p,
		K: tr.from.K + (tr.to.K-tr.from.K)*p,
	}, false
}

func easeCubicInOut(t float64) float64 {
	t *= 2
	if t <= 1 {
		return t * t * t / 2
	}
	t -= 2
	return (t*t*t + 2) / 2
}

// Viewport holds the transient pan and zoom of one view. A fit requested on a
// data change is applied on the next Update only, so later user pan and zoom
// are never overridden by it.
type Viewport struct {
	width, height float64
	current       Transform
	anim          *transition
	fitPending    bool
	fits          int
}

// NewViewport centers the layout origin at zoom 1
func NewViewport(width, height float64) *Viewport {
	return &Viewport{
		width:   width,
		height:  height,
		current: Transform{X: width / 2, Y: height / 2, K: 1},
	}
}

// Size returns the viewport dimensions in pixels
func (v *Viewport) Size() (float64, float64) {
	return v.width, v.height
}

// RequestFit arms a single fit for the next Update
func (v *Viewport) RequestFit() {
	v.fitPending = true
}

// FitPending reports whether a fit is armed
func (v *Viewport) FitPending() bool {
	return v.fitPending
}

// Fits counts the fits that have started
func (v *Viewport) Fits() int {
	return v.fits
}

// Update starts an armed fit against bounds and advances any running
// animation. An empty layout disarms the fit without moving.
func (v *Viewport) Update(now time.Time, b Bounds, ok bool) Transform {
	if v.fitPending {
		v.fitPending = false
		if ok {
			v.fits++
			v.anim = &transition{
				from:     v.current,
				to:       FitTransform(b, v.width, v.height, FitPadding),
				start:    now,
				duration: FitDuration,
			}
		}
	}
	if v.anim != nil {
		t, done := v.anim.at(now)
		v.current = t
		if done {
			v.anim = nil
		}
	}
	return v.current
}

// Animating reports whether a fit transition is still running
func (v *Viewport) Animating() bool {
	return v.anim != nil
}

// Finish jumps any running animation to its end
func (v *Viewport) Finish() Transform {
	if v.anim != nil {
		v.current = v.anim.to
		v.anim = nil
	}
	return v.current
}

// Transform returns the current transform
func (v *Viewport) Transform() Transform {
	return v.current
}

// Pan moves the view by a screen delta and cancels a running fit
func (v *Viewport) Pan(dx, dy float64) {
	v.Finish()
	v.current.X += dx
	v.current.Y += dy
}

// ZoomAt scales the view by factor around a screen point, keeping that point
// fixed, and cancels a running fit.
func (v *Viewport) ZoomAt(factor, sx, sy float64) {
	v.Finish()
	anchor := v.current.Invert(Point{X: sx, Y: sy})
	k := clampZoom(v.current.K * factor)
	v.current = Transform{X: sx - anchor.X*k, Y: sy - anchor.Y*k, K: k}
}
