package wheel

import "math"

var (
	knobInput  = []float64{-1, -0.5, -0.0001, 0.0001, 0.5, 1}
	knobOutput = []float64{0, 0, 35, -35, 0, 0}
)

// KnobTilt returns the pointer's rotation in degrees for a wheel angle.
// The pointer kicks back as each segment boundary passes and relaxes by mid-segment.
func KnobTilt(angle float64, n int) float64 {
	if n <= 0 {
		return 0
	}
	bySegment := 360 / float64(n)
	phase := mod(mod(angle-bySegment/2, 360)/bySegment, 1)
	return interpolate(phase, knobInput, knobOutput)
}

// mod is the always non-negative remainder.
func mod(a, m float64) float64 {
	return math.Mod(math.Mod(a, m)+m, m)
}

func interpolate(x float64, in, out []float64) float64 {
	if x <= in[0] {
		return out[0]
	}
	for i := 1; i < len(in); i++ {
		if x <= in[i] {
			t := (x - in[i-1]) / (in[i] - in[i-1])
			return out[i-1] + t*(out[i]-out[i-1])
		}
	}
	return out[len(out)-1]
}
