package spin

import "time"

// Plan is a fully determined spin: where it ends, how long it takes and how it eases.
// Server-side spins hand a Plan to clients, which animate it and must land on Winner.
type Plan struct {
	Winner    int           `json:"winner"`
	Segments  int           `json:"segments"`
	Target    float64       `json:"target_angle"`
	Duration  time.Duration `json:"-"`
	Easing    Easing        `json:"easing"`
	Direction Direction     `json:"direction"`
}

// NewPlan computes the target angle for winner on an n-segment wheel.
func NewPlan(winner, n int, d time.Duration, dir Direction, easing Easing) Plan {
	if d <= 0 {
		d = DefaultDuration
	}
	if dir == "" {
		dir = Clockwise
	}
	if easing == "" {
		easing = DefaultEasing
	}
	return Plan{
		Winner:    winner,
		Segments:  n,
		Target:    TargetAngle(winner, n, d, dir),
		Duration:  d,
		Easing:    easing,
		Direction: dir,
	}
}

// AngleAt returns the wheel angle elapsed into the spin. It starts at 0 and
// reaches Target exactly at Duration.
func (p Plan) AngleAt(elapsed time.Duration) float64 {
	if elapsed >= p.Duration {
		return p.Target
	}
	if elapsed <= 0 {
		return 0
	}
	return p.Target * p.Easing.Apply(float64(elapsed)/float64(p.Duration))
}

// Landed resolves the segment under the pointer once the plan has run to completion.
func (p Plan) Landed() int {
	return ResolveWinner(p.Target, p.Segments)
}

// DurationMs is the duration in milliseconds, for wire formats.
func (p Plan) DurationMs() int64 {
	return p.Duration.Milliseconds()
}
