package render

import (
	"fmt"
	"image"
	"io"
	"math"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/f64"

	"github.com/MJE43/wheel-of-fortune-go/internal/wheel"
)

var (
	fontOnce   sync.Once
	fontSource *text.FontSource
	fontErr    error
)

func labelFont() (*text.FontSource, error) {
	fontOnce.Do(func() {
		fontSource, fontErr = text.NewFontSource(goregular.TTF)
	})
	return fontSource, fontErr
}

// Image rasterizes one frame of the wheel at angle degrees.
func Image(segs []wheel.Segment, style wheel.Style, angle float64) (*image.RGBA, error) {
	dc, err := draw(segs, style, angle)
	if err != nil {
		return nil, err
	}
	defer dc.Close()
	return dc.Image().(*image.RGBA), nil
}

// PNG writes one frame as a PNG image.
func PNG(w io.Writer, segs []wheel.Segment, style wheel.Style, angle float64) error {
	dc, err := draw(segs, style, angle)
	if err != nil {
		return err
	}
	defer dc.Close()
	return dc.EncodePNG(w)
}

func draw(segs []wheel.Segment, style wheel.Style, angle float64) (*gg.Context, error) {
	if len(segs) == 0 {
		return nil, wheel.ErrNoRewards
	}
	l := newLayout(segs, style, angle)
	dc := gg.NewContext(l.width, l.height)

	steps := []func(*gg.Context, layout) error{drawDisc, drawSegments, drawLabels, drawKnob}
	for _, step := range steps {
		if err := step(dc, l); err != nil {
			dc.Close()
			return nil, err
		}
	}
	if err := dc.FlushGPU(); err != nil {
		dc.Close()
		return nil, fmt.Errorf("render: flush: %w", err)
	}
	return dc, nil
}

func drawDisc(dc *gg.Context, l layout) error {
	r := l.style.OuterRadius() + l.style.BorderWidth/2
	dc.DrawCircle(l.center.X, l.center.Y, r)
	dc.SetHexColor(l.style.BackgroundColor)
	if err := dc.Fill(); err != nil {
		return fmt.Errorf("render: background: %w", err)
	}
	if l.style.BorderWidth <= 0 {
		return nil
	}
	dc.DrawCircle(l.center.X, l.center.Y, r)
	dc.SetHexColor(l.style.BorderColor)
	dc.SetLineWidth(l.style.BorderWidth)
	if err := dc.Stroke(); err != nil {
		return fmt.Errorf("render: border: %w", err)
	}
	return nil
}

func drawSegments(dc *gg.Context, l layout) error {
	for _, seg := range l.segments {
		if err := drawSegment(dc, l, seg); err != nil {
			return err
		}
	}
	return nil
}

func drawSegment(dc *gg.Context, l layout, seg wheel.Segment) error {
	for _, contour := range seg.Outline(0) {
		for i, p := range contour {
			c := l.place(p)
			if i == 0 {
				dc.MoveTo(c.X, c.Y)
				continue
			}
			dc.LineTo(c.X, c.Y)
		}
		dc.ClosePath()
	}
	dc.SetHexColor(seg.Color)
	if err := dc.Fill(); err != nil {
		return fmt.Errorf("render: segment %d: %w", seg.Index, err)
	}
	return nil
}

// drawLabels places each line at its rotated position. Glyphs stay upright
// because gg text does not follow the transform matrix.
func drawLabels(dc *gg.Context, l layout) error {
	src, err := labelFont()
	if err != nil {
		return fmt.Errorf("render: font: %w", err)
	}
	dc.SetFont(src.Face(wheel.FontSize))
	dc.SetHexColor(l.style.TextColor)
	for _, seg := range l.segments {
		label, pts := l.labelLines(seg)
		for i, line := range label.Lines {
			dc.DrawStringAnchored(line, pts[i].X, pts[i].Y, 0.5, 0.5)
		}
	}
	return nil
}

func drawKnob(dc *gg.Context, l layout) error {
	if l.style.KnobSize <= 0 {
		return nil
	}
	if l.style.KnobImage != "" {
		return drawKnobImage(dc, l)
	}
	pts := l.knob()
	dc.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		dc.LineTo(p.X, p.Y)
	}
	dc.ClosePath()
	dc.SetHexColor(l.style.KnobColor)
	if err := dc.Fill(); err != nil {
		return fmt.Errorf("render: knob: %w", err)
	}
	return nil
}

// drawKnobImage resamples the knob image into a canvas-sized overlay so the
// tilt survives; gg only maps an image's corners through the matrix.
func drawKnobImage(dc *gg.Context, l layout) error {
	buf, err := gg.LoadImage(l.style.KnobImage)
	if err != nil {
		return fmt.Errorf("render: knob image: %w", err)
	}
	src := buf.ToStdImage()
	sb := src.Bounds()
	if sb.Empty() {
		return fmt.Errorf("render: knob image %s is empty", l.style.KnobImage)
	}
	if err := dc.FlushGPU(); err != nil {
		return fmt.Errorf("render: flush: %w", err)
	}

	x, y, w, h := l.knobImageBox()
	pivot := l.knobPivot()
	kx, ky := w/float64(sb.Dx()), h/float64(sb.Dy())
	sin, cos := math.Sincos(l.tilt * math.Pi / 180)
	ox, oy := x-pivot.X, y-pivot.Y
	s2d := f64.Aff3{
		cos * kx, -sin * ky, pivot.X + cos*ox - sin*oy - (cos*kx*float64(sb.Min.X) - sin*ky*float64(sb.Min.Y)),
		sin * kx, cos * ky, pivot.Y + sin*ox + cos*oy - (sin*kx*float64(sb.Min.X) + cos*ky*float64(sb.Min.Y)),
	}
	overlay := image.NewNRGBA(image.Rect(0, 0, l.width, l.height))
	xdraw.BiLinear.Transform(overlay, s2d, src, sb, xdraw.Over, nil)
	dc.DrawImage(gg.ImageBufFromImage(overlay), 0, 0)
	return nil
}
