package spin

import "fmt"

// Easing maps normalized elapsed time to normalized rotation.
type Easing string

const (
	EaseLinear     Easing = "linear"
	EaseOutQuad    Easing = "easeOutQuad"
	EaseOutCubic   Easing = "easeOutCubic"
	EaseInOutCubic Easing = "easeInOutCubic"
)

// DefaultEasing decelerates into the stop.
const DefaultEasing = EaseOutQuad

// ParseEasing validates a configured easing name. Empty means DefaultEasing.
func ParseEasing(s string) (Easing, error) {
	switch e := Easing(s); e {
	case "":
		return DefaultEasing, nil
	case EaseLinear, EaseOutQuad, EaseOutCubic, EaseInOutCubic:
		return e, nil
	}
	return "", fmt.Errorf("spin: unknown easing %q", s)
}

// Apply evaluates the curve at t, clamped to [0, 1]. Every curve is monotonic
// with Apply(0) == 0 and Apply(1) == 1.
func (e Easing) Apply(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	switch e {
	case EaseLinear:
		return t
	case EaseOutCubic:
		u := 1 - t
		return 1 - u*u*u
	case EaseInOutCubic:
		if t < 0.5 {
			return 4 * t * t * t
		}
		u := -2*t + 2
		return 1 - u*u*u/2
	default:
		// f(t) = 1 - (1 - t)^2
		return 1 - (1-t)*(1-t)
	}
}
