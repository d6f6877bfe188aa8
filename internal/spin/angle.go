package spin

import (
	"fmt"
	"math"
	"time"
)

// OneTurn is a full rotation in degrees.
const OneTurn = 360.0

// baseNudge pushes the target slightly past the winner's boundary so the
// settled angle never sits exactly on a segment edge.
const baseNudge = 5.0

// Direction is the sense in which the wheel turns.
type Direction string

const (
	Clockwise        Direction = "clockwise"
	CounterClockwise Direction = "counterclockwise"
)

// ParseDirection accepts "", "clockwise"/"cw" and "counterclockwise"/"ccw".
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "", "clockwise", "cw":
		return Clockwise, nil
	case "counterclockwise", "ccw":
		return CounterClockwise, nil
	}
	return "", fmt.Errorf("spin: unknown direction %q", s)
}

// AngleBySegment is the angular width of one segment in degrees.
func AngleBySegment(n int) float64 {
	return OneTurn / float64(n)
}

// AngleOffset is half a segment; the wheel is drawn rotated back by it so the
// pointer sits in the middle of segment 0 at rest.
func AngleOffset(n int) float64 {
	return AngleBySegment(n) / 2
}

// nudge is baseNudge while it plus the resolver's half-degree rounding still
// fits inside one segment. Narrower segments aim for their middle instead.
func nudge(n int) float64 {
	s := AngleBySegment(n)
	if s > baseNudge+0.5 {
		return baseNudge
	}
	return s / 2
}

// ExtraTurns is the number of whole turns added for a spin of duration d.
func ExtraTurns(d time.Duration) float64 {
	return math.Floor(d.Seconds())
}

// TargetAngle returns the final rotation that lands winner under the pointer.
// Clockwise spins end at 360 + nudge - winner*s + 360*turns, which is the classic
// 365 - winner*s + 360*seconds for wheels of up to 65 segments. Counter-clockwise
// spins end at -(360 + winner*s + nudge + 360*turns).
func TargetAngle(winner, n int, d time.Duration, dir Direction) float64 {
	s := AngleBySegment(n)
	turns := OneTurn * ExtraTurns(d)
	if dir == CounterClockwise {
		return -(OneTurn + float64(winner)*s + nudge(n) + turns)
	}
	return OneTurn + nudge(n) - float64(winner)*s + turns
}

// ResolveWinner maps a settled angle back to the segment under the pointer.
func ResolveWinner(angle float64, n int) int {
	if n <= 0 {
		return 0
	}
	s := AngleBySegment(n)
	deg := math.Abs(jsRound(math.Mod(angle, OneTurn)))
	k := int(math.Floor(deg / s))
	if angle < 0 {
		return k % n
	}
	return ((n-k)%n + n) % n
}

// jsRound rounds half-way cases toward positive infinity.
func jsRound(v float64) float64 {
	return math.Floor(v + 0.5)
}
