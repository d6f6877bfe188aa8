package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"

	"github.com/MJE43/wheel-of-fortune-go/internal/wheel"
)

// SVG writes one frame as a standalone SVG document. Segments reuse their
// precomputed path data under a single group transform.
func SVG(w io.Writer, segs []wheel.Segment, style wheel.Style, angle float64) error {
	if len(segs) == 0 {
		return wheel.ErrNoRewards
	}
	l := newLayout(segs, style, angle)
	var b bytes.Buffer

	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		l.width, l.height, l.width, l.height)
	fmt.Fprintf(&b, `<circle cx="%s" cy="%s" r="%s" fill="%s" stroke="%s" stroke-width="%s"/>`+"\n",
		f(l.center.X), f(l.center.Y), f(l.style.OuterRadius()+l.style.BorderWidth/2),
		attr(l.style.BackgroundColor), attr(l.style.BorderColor), f(l.style.BorderWidth))

	fmt.Fprintf(&b, `<g transform="translate(%s %s) rotate(%s)">`+"\n", f(l.center.X), f(l.center.Y), f(l.rotation))
	for _, seg := range segs {
		fmt.Fprintf(&b, `<path d="%s" fill="%s" fill-rule="evenodd" data-index="%d"/>`+"\n", seg.Path, attr(seg.Color), seg.Index)
	}
	for _, seg := range segs {
		label := wheel.LayoutLabel(seg, len(segs))
		fmt.Fprintf(&b, `<text transform="rotate(%s %s %s)" fill="%s" font-size="%s" text-anchor="middle" dominant-baseline="middle">`,
			f(label.Rotation), f(label.Anchor.X), f(label.Anchor.Y), attr(l.style.TextColor), f(label.FontSize))
		for i, p := range label.LinePositions() {
			fmt.Fprintf(&b, `<tspan x="%s" y="%s">`, f(p.X), f(p.Y))
			if err := xml.EscapeText(&b, []byte(label.Lines[i])); err != nil {
				return err
			}
			b.WriteString("</tspan>")
		}
		b.WriteString("</text>\n")
	}
	b.WriteString("</g>\n")

	if l.style.KnobImage != "" {
		x, y, kw, kh := l.knobImageBox()
		pivot := l.knobPivot()
		fmt.Fprintf(&b, `<image href="%s" x="%s" y="%s" width="%s" height="%s" preserveAspectRatio="none" transform="rotate(%s %s %s)"/>`+"\n",
			attr(l.style.KnobImage), f(x), f(y), f(kw), f(kh), f(l.tilt), f(pivot.X), f(pivot.Y))
	} else {
		knob := l.knob()
		fmt.Fprintf(&b, `<polygon points="%s,%s %s,%s %s,%s" fill="%s"/>`+"\n",
			f(knob[0].X), f(knob[0].Y), f(knob[1].X), f(knob[1].Y), f(knob[2].X), f(knob[2].Y), attr(l.style.KnobColor))
	}
	b.WriteString("</svg>\n")

	_, err := w.Write(b.Bytes())
	return err
}

func f(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func attr(s string) string {
	var b bytes.Buffer
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
