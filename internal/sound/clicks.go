package sound

import (
	"math"
	"time"

	"github.com/MJE43/wheel-of-fortune-go/internal/spin"
)

// searchSteps bounds the bisection on the easing curve; 2^-48 of a spin is well under a sample.
const searchSteps = 48

// Clicks returns the offsets into the spin at which a segment boundary passes
// the pointer. The knob kicks at exactly these moments.
func Clicks(plan spin.Plan) []time.Duration {
	n := plan.Segments
	if n <= 0 || plan.Duration <= 0 || plan.Target == 0 {
		return nil
	}
	s := spin.AngleBySegment(n)
	total := math.Abs(plan.Target)

	var out []time.Duration
	for b := s / 2; b <= total; b += s {
		out = append(out, crossing(plan, b/total))
	}
	return out
}

// crossing finds the time at which the eased progress reaches frac.
func crossing(plan spin.Plan, frac float64) time.Duration {
	lo, hi := 0.0, 1.0
	for i := 0; i < searchSteps; i++ {
		mid := (lo + hi) / 2
		if plan.Easing.Apply(mid) < frac {
			lo = mid
		} else {
			hi = mid
		}
	}
	return time.Duration(hi * float64(plan.Duration))
}
