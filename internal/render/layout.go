package render

import (
	"math"

	"github.com/MJE43/wheel-of-fortune-go/internal/spin"
	"github.com/MJE43/wheel-of-fortune-go/internal/wheel"
)

// knobReach is how far the pointer extends either side of the rim, as a fraction of KnobSize.
const knobReach = 0.6

// layout is a frame resolved to canvas coordinates.
type layout struct {
	style    wheel.Style
	segments []wheel.Segment
	angle    float64
	width    int
	height   int
	center   wheel.Point
	rotation float64
	tilt     float64
}

func newLayout(segs []wheel.Segment, style wheel.Style, angle float64) layout {
	style = style.WithDefaults()
	n := len(segs)
	margin := math.Ceil(style.KnobSize + style.BorderWidth)
	side := int(math.Ceil(style.Width + 2*margin))
	l := layout{
		style:    style,
		segments: segs,
		angle:    angle,
		width:    side,
		height:   side,
		center:   wheel.Point{X: float64(side) / 2, Y: float64(side) / 2},
	}
	if n > 0 {
		l.rotation = angle - spin.AngleOffset(n)
		l.tilt = wheel.KnobTilt(angle, n)
	}
	return l
}

// place moves a wheel-space point into the canvas after the wheel rotation.
func (l layout) place(p wheel.Point) wheel.Point {
	r := p.Rotate(l.rotation)
	return wheel.Point{X: r.X + l.center.X, Y: r.Y + l.center.Y}
}

// labelLines returns each label line's canvas position.
func (l layout) labelLines(seg wheel.Segment) (wheel.Label, []wheel.Point) {
	label := wheel.LayoutLabel(seg, len(l.segments))
	pts := label.LinePositions()
	for i, p := range pts {
		rel := wheel.Point{X: p.X - label.Anchor.X, Y: p.Y - label.Anchor.Y}.Rotate(label.Rotation)
		pts[i] = l.place(wheel.Point{X: rel.X + label.Anchor.X, Y: rel.Y + label.Anchor.Y})
	}
	return label, pts
}

// knobPivot is the top centre of the pointer, which it tilts about.
func (l layout) knobPivot() wheel.Point {
	rim := l.center.Y - l.style.OuterRadius()
	return wheel.Point{X: l.center.X, Y: rim - l.style.KnobSize*knobReach}
}

// knobImageBox is the untilted rectangle a knob image fills, hanging from the pivot.
func (l layout) knobImageBox() (x, y, w, h float64) {
	w, h = l.style.KnobImageSize()
	pivot := l.knobPivot()
	return pivot.X - w/2, pivot.Y, w, h
}

// knob returns the pointer triangle, tip down into the wheel, tilted about its top.
func (l layout) knob() []wheel.Point {
	size := l.style.KnobSize
	pivot := l.knobPivot()
	local := []wheel.Point{
		{X: -size / 2, Y: 0},
		{X: size / 2, Y: 0},
		{X: 0, Y: 2 * size * knobReach},
	}
	out := make([]wheel.Point, len(local))
	for i, p := range local {
		r := p.Rotate(l.tilt)
		out[i] = wheel.Point{X: r.X + pivot.X, Y: r.Y + pivot.Y}
	}
	return out
}

// Size reports the canvas dimensions for a style.
func Size(style wheel.Style) (width, height int) {
	l := newLayout(nil, style, 0)
	return l.width, l.height
}
