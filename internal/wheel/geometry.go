package wheel

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// PadAngle is the gap between adjacent segments, in radians.
const PadAngle = 0.01

const (
	tau     = 2 * math.Pi
	halfPi  = math.Pi / 2
	epsilon = 1e-12
)

// ErrNoRewards is returned when a wheel is built without rewards.
var ErrNoRewards = errors.New("wheel: at least one reward is required")

// Point is a position relative to the wheel center, y pointing down.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Segment is one pie slice of the wheel. Angles are radians measured
// clockwise from 12 o'clock.
type Segment struct {
	Index       int     `json:"index"`
	Value       string  `json:"value"`
	ColorIndex  int     `json:"color_index"`
	Color       string  `json:"color"`
	StartAngle  float64 `json:"start_angle"`
	EndAngle    float64 `json:"end_angle"`
	PadAngle    float64 `json:"pad_angle"`
	InnerRadius float64 `json:"inner_radius"`
	OuterRadius float64 `json:"outer_radius"`
	Path        string  `json:"path"`
	Centroid    Point   `json:"centroid"`
}

// Build splits a full turn into len(rewards) equal slices between the two radii.
// Colors cycle through palette, or DefaultPalette when palette is empty.
func Build(rewards []string, innerRadius, outerRadius float64, palette []string) ([]Segment, error) {
	n := len(rewards)
	if n == 0 {
		return nil, ErrNoRewards
	}
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	if outerRadius < innerRadius {
		innerRadius, outerRadius = outerRadius, innerRadius
	}

	step := tau / float64(n)
	pad := math.Min(PadAngle, step)

	segments := make([]Segment, n)
	for i, value := range rewards {
		seg := Segment{
			Index:       i,
			Value:       value,
			ColorIndex:  i % len(palette),
			Color:       palette[i%len(palette)],
			StartAngle:  float64(i) * step,
			EndAngle:    float64(i+1) * step,
			PadAngle:    pad,
			InnerRadius: innerRadius,
			OuterRadius: outerRadius,
		}
		seg.Centroid = seg.centroid()
		seg.Path = seg.svgPath()
		segments[i] = seg
	}
	return segments, nil
}

// Angle is the angular width of the segment in radians.
func (s Segment) Angle() float64 {
	return s.EndAngle - s.StartAngle
}

func (s Segment) centroid() Point {
	r := (s.InnerRadius + s.OuterRadius) / 2
	a := (s.StartAngle+s.EndAngle)/2 - halfPi
	return Point{X: math.Cos(a) * r, Y: math.Sin(a) * r}
}

// edges holds the padded start/end of the outer and inner arcs, already shifted
// so that 0 points right (screen angle).
type edges struct {
	outerStart, outerEnd float64
	innerStart, innerEnd float64
	outerSpan, innerSpan float64
	fullTurn             bool
}

func (s Segment) padded() edges {
	a0 := s.StartAngle - halfPi
	a1 := s.EndAngle - halfPi
	da := math.Abs(a1 - a0)

	e := edges{
		outerStart: a0, outerEnd: a1,
		innerStart: a0, innerEnd: a1,
		outerSpan: da, innerSpan: da,
	}
	if da > tau-epsilon {
		e.fullTurn = true
		return e
	}

	ap := s.PadAngle / 2
	if ap <= epsilon {
		return e
	}
	r0, r1 := s.InnerRadius, s.OuterRadius
	rp := math.Sqrt(r0*r0 + r1*r1)
	mid := (a0 + a1) / 2

	if p0, ok := padInset(rp, r0, ap); ok && da-2*p0 > epsilon {
		e.innerStart += p0
		e.innerEnd -= p0
		e.innerSpan = da - 2*p0
	} else {
		e.innerStart, e.innerEnd, e.innerSpan = mid, mid, 0
	}
	if p1, ok := padInset(rp, r1, ap); ok && da-2*p1 > epsilon {
		e.outerStart += p1
		e.outerEnd -= p1
		e.outerSpan = da - 2*p1
	} else {
		e.outerStart, e.outerEnd, e.outerSpan = mid, mid, 0
	}
	return e
}

// padInset converts the linear pad at radius rp into an angular inset at radius r.
func padInset(rp, r, ap float64) (float64, bool) {
	if r <= epsilon {
		return 0, false
	}
	v := rp / r * math.Sin(ap)
	if v > 1 {
		return 0, false
	}
	return math.Asin(v), true
}

func polar(r, a float64) Point {
	return Point{X: r * math.Cos(a), Y: r * math.Sin(a)}
}

func (s Segment) svgPath() string {
	r0, r1 := s.InnerRadius, s.OuterRadius
	if r1 <= epsilon {
		return "M0,0Z"
	}
	e := s.padded()
	var b strings.Builder

	if e.fullTurn {
		top := polar(r1, e.outerStart)
		bottom := polar(r1, e.outerStart+math.Pi)
		b.WriteString("M" + pt(top))
		b.WriteString(arcCmd(r1, false, true, bottom))
		b.WriteString(arcCmd(r1, false, true, top))
		if r0 > epsilon {
			top = polar(r0, e.innerEnd)
			bottom = polar(r0, e.innerEnd+math.Pi)
			b.WriteString("M" + pt(top))
			b.WriteString(arcCmd(r0, false, false, bottom))
			b.WriteString(arcCmd(r0, false, false, top))
		}
		b.WriteString("Z")
		return b.String()
	}

	b.WriteString("M" + pt(polar(r1, e.outerStart)))
	if e.outerSpan > epsilon {
		b.WriteString(arcCmd(r1, e.outerSpan > math.Pi, true, polar(r1, e.outerEnd)))
	}
	if r0 > epsilon {
		b.WriteString("L" + pt(polar(r0, e.innerEnd)))
		if e.innerSpan > epsilon {
			b.WriteString(arcCmd(r0, e.innerSpan > math.Pi, false, polar(r0, e.innerStart)))
		}
	} else {
		b.WriteString("L0,0")
	}
	b.WriteString("Z")
	return b.String()
}

func arcCmd(r float64, large, sweep bool, to Point) string {
	return "A" + num(r) + "," + num(r) + ",0," + flag(large) + "," + flag(sweep) + "," + pt(to)
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func pt(p Point) string {
	return num(p.X) + "," + num(p.Y)
}

// num formats with at most three decimals and no negative zero.
func num(v float64) string {
	v = math.Round(v*1000) / 1000
	if v == 0 {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Outline samples the padded slice as closed contours in screen coordinates.
// step is the maximum angular distance between samples; zero means 2 degrees.
// A single-slice wheel yields an outer ring and an inner hole wound the other way.
func (s Segment) Outline(step float64) [][]Point {
	if step <= 0 {
		step = math.Pi / 90
	}
	e := s.padded()
	r0, r1 := s.InnerRadius, s.OuterRadius

	if e.fullTurn {
		outer := sampleArc(r1, e.outerStart, e.outerStart+tau, step)
		if r0 <= epsilon {
			return [][]Point{outer}
		}
		inner := sampleArc(r0, e.innerStart+tau, e.innerStart, step)
		return [][]Point{outer, inner}
	}

	contour := sampleArc(r1, e.outerStart, e.outerEnd, step)
	if r0 > epsilon && e.innerSpan > 0 {
		contour = append(contour, sampleArc(r0, e.innerEnd, e.innerStart, step)...)
	} else if r0 > epsilon {
		contour = append(contour, polar(r0, e.innerStart))
	} else {
		contour = append(contour, Point{})
	}
	return [][]Point{contour}
}

func sampleArc(r, from, to, step float64) []Point {
	span := math.Abs(to - from)
	n := int(math.Ceil(span / step))
	if n < 1 {
		return []Point{polar(r, from)}
	}
	pts := make([]Point, 0, n+1)
	for i := 0; i <= n; i++ {
		pts = append(pts, polar(r, from+(to-from)*float64(i)/float64(n)))
	}
	return pts
}

// Rotate turns p clockwise about the origin by deg degrees (screen coordinates).
func (p Point) Rotate(deg float64) Point {
	rad := deg * math.Pi / 180
	sin, cos := math.Sincos(rad)
	return Point{X: p.X*cos - p.Y*sin, Y: p.X*sin + p.Y*cos}
}
