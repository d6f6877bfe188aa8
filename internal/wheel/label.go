package wheel

import (
	"strings"
	"unicode/utf8"
)

const (
	// MaxCharsPerLine is the wrap threshold for segment labels.
	MaxCharsPerLine = 8
	// FontSize is the label font size in wheel units.
	FontSize = 18.0

	lineHeightFactor = 1.2
	centerFactor     = 0.6
)

// WrapLabel breaks text on spaces so that no line is longer than maxChars,
// except a single word that is already longer.
func WrapLabel(text string, maxChars int) []string {
	var lines []string
	current := ""
	for _, word := range strings.Split(text, " ") {
		candidate := strings.TrimSpace(current + " " + word)
		if utf8.RuneCountInString(candidate) > maxChars && strings.TrimSpace(current) != "" {
			lines = append(lines, strings.TrimSpace(current))
			current = word
			continue
		}
		current += " " + word
	}
	if last := strings.TrimSpace(current); last != "" || len(lines) == 0 {
		lines = append(lines, last)
	}
	return lines
}

// Label is the placement of one segment's text, before the wheel-wide rotation.
type Label struct {
	Lines      []string `json:"lines"`
	Anchor     Point    `json:"anchor"`
	FirstLineY float64  `json:"first_line_y"`
	LineHeight float64  `json:"line_height"`
	Rotation   float64  `json:"rotation"`
	FontSize   float64  `json:"font_size"`
}

// LayoutLabel wraps the segment's value and centers the block vertically on its centroid.
// Rotation is in degrees about the anchor.
func LayoutLabel(seg Segment, n int) Label {
	lines := WrapLabel(seg.Value, MaxCharsPerLine)
	bySegment := 360 / float64(n)
	return Label{
		Lines:      lines,
		Anchor:     seg.Centroid,
		FirstLineY: seg.Centroid.Y - float64(len(lines)-1)*FontSize*centerFactor,
		LineHeight: FontSize * lineHeightFactor,
		Rotation:   float64(seg.Index)*bySegment + bySegment/2,
		FontSize:   FontSize,
	}
}

// LinePositions returns the unrotated baseline position of each line.
func (l Label) LinePositions() []Point {
	pts := make([]Point, len(l.Lines))
	for i := range l.Lines {
		pts[i] = Point{X: l.Anchor.X, Y: l.FirstLineY + float64(i)*l.LineHeight}
	}
	return pts
}
