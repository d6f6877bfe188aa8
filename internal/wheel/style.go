package wheel

// DefaultPalette is the color cycle used when a wheel has no colors of its own.
var DefaultPalette = []string{
	"#87B0F7",
	"#F79A8A",
	"#89CD3E",
	"#F7DE91",
	"#22AFD3",
	"#5858D0",
	"#7B48C8",
	"#D843B9",
	"#E23B80",
	"#D82B2B",
}

const (
	DefaultWidth           = 400.0
	DefaultInnerRadius     = 100.0
	DefaultTextColor       = "#fff"
	DefaultBackgroundColor = "#fff"
	DefaultBorderWidth     = 2.0
	DefaultBorderColor     = "#fff"
	DefaultKnobSize        = 20.0
	DefaultKnobColor       = "#D82B2B"
)

// Style carries the visual parameters of a wheel. Zero values fall back to the defaults above.
type Style struct {
	Width           float64 `json:"width" yaml:"width"`
	InnerRadius     float64 `json:"inner_radius" yaml:"inner_radius"`
	TextColor       string  `json:"text_color" yaml:"text_color"`
	BackgroundColor string  `json:"background_color" yaml:"background_color"`
	BorderWidth     float64 `json:"border_width" yaml:"border_width"`
	BorderColor     string  `json:"border_color" yaml:"border_color"`
	KnobSize        float64 `json:"knob_size" yaml:"knob_size"`
	KnobColor       string  `json:"knob_color" yaml:"knob_color"`
	// KnobImage replaces the drawn pointer with a PNG or JPEG. Renderers size
	// it to KnobSize wide by KnobSize*100/57 tall.
	KnobImage string   `json:"knob_image,omitempty" yaml:"knob_image"`
	Colors    []string `json:"colors,omitempty" yaml:"colors"`
}

// WithDefaults returns a copy of s with every unset field filled in.
func (s Style) WithDefaults() Style {
	if s.Width <= 0 {
		s.Width = DefaultWidth
	}
	if s.InnerRadius <= 0 {
		s.InnerRadius = DefaultInnerRadius
	}
	if s.TextColor == "" {
		s.TextColor = DefaultTextColor
	}
	if s.BackgroundColor == "" {
		s.BackgroundColor = DefaultBackgroundColor
	}
	if s.BorderWidth <= 0 {
		s.BorderWidth = DefaultBorderWidth
	}
	if s.BorderColor == "" {
		s.BorderColor = DefaultBorderColor
	}
	if s.KnobSize <= 0 {
		s.KnobSize = DefaultKnobSize
	}
	if s.KnobColor == "" {
		s.KnobColor = DefaultKnobColor
	}
	if len(s.Colors) == 0 {
		s.Colors = append([]string(nil), DefaultPalette...)
	}
	return s
}

// KnobImageSize is the box a knob image is scaled into.
func (s Style) KnobImageSize() (width, height float64) {
	size := s.KnobSize
	if size <= 0 {
		size = DefaultKnobSize
	}
	return size, size * 100 / 57
}

// OuterRadius is half the configured width.
func (s Style) OuterRadius() float64 {
	return OuterRadiusForWidth(s.Width)
}

// OuterRadiusForWidth derives the outer radius from the available width.
func OuterRadiusForWidth(width float64) float64 {
	if width <= 0 {
		width = DefaultWidth
	}
	return width / 2
}

// BuildStyled is Build with radii and palette taken from a style.
func BuildStyled(rewards []string, style Style) ([]Segment, error) {
	style = style.WithDefaults()
	return Build(rewards, style.InnerRadius, style.OuterRadius(), style.Colors)
}
