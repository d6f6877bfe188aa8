package spin

import (
	"fmt"
	"math"
	"testing"
	"time"
)

func TestTargetAngleRoundTrip(t *testing.T) {
	sizes := []int{1, 2, 3, 4, 10, 12, 36, 37, 100, 180, 359}
	durations := []time.Duration{
		1000 * time.Millisecond,
		1500 * time.Millisecond,
		5000 * time.Millisecond,
		10000 * time.Millisecond,
		60000 * time.Millisecond,
	}
	dirs := []Direction{Clockwise, CounterClockwise}

	for _, n := range sizes {
		for _, d := range durations {
			for _, dir := range dirs {
				t.Run(fmt.Sprintf("n=%d/d=%s/%s", n, d, dir), func(t *testing.T) {
					for w := 0; w < n; w++ {
						got := ResolveWinner(TargetAngle(w, n, d, dir), n)
						if got != w {
							t.Fatalf("winner %d resolved to %d (target %.4f)", w, got, TargetAngle(w, n, d, dir))
						}
					}
				})
			}
		}
	}
}

func TestTargetAngleRoundTripEverySize(t *testing.T) {
	for n := 1; n <= MaxSegments; n++ {
		for _, dir := range []Direction{Clockwise, CounterClockwise} {
			for _, d := range []time.Duration{time.Second, 7 * time.Second} {
				for w := 0; w < n; w++ {
					if got := ResolveWinner(TargetAngle(w, n, d, dir), n); got != w {
						t.Fatalf("n=%d %s d=%s: winner %d resolved to %d", n, dir, d, w, got)
					}
				}
			}
		}
	}
}

func TestTargetAngleClassicValues(t *testing.T) {
	tests := []struct {
		winner, n int
		d         time.Duration
		dir       Direction
		want      float64
	}{
		{0, 4, 5 * time.Second, Clockwise, 365 + 1800},
		{1, 4, 5 * time.Second, Clockwise, 365 - 90 + 1800},
		{2, 3, 10 * time.Second, Clockwise, 365 - 240 + 3600},
		{1, 3, 1500 * time.Millisecond, Clockwise, 365 - 120 + 360},
		{1, 4, 5 * time.Second, CounterClockwise, -(360 + 90 + 5 + 1800)},
		// 2 segments of 180 degrees still nudge by 5.
		{1, 2, time.Second, Clockwise, 365 - 180 + 360},
		// Segments down to 5.5 degrees keep the full 5 degree nudge.
		{3, 37, time.Second, Clockwise, 365 - 3*360.0/37 + 360},
		{64, 65, 2 * time.Second, Clockwise, 365 - 64*360.0/65 + 720},
		{10, 65, time.Second, CounterClockwise, -(360 + 10*360.0/65 + 5 + 360)},
		// Narrower segments nudge by half a segment.
		{0, 66, time.Second, Clockwise, 360 + 180.0/66 + 360},
		{0, 100, time.Second, Clockwise, 360 + 1.8 + 360},
	}

	for _, tt := range tests {
		got := TargetAngle(tt.winner, tt.n, tt.d, tt.dir)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("TargetAngle(%d, %d, %s, %s) = %v, want %v", tt.winner, tt.n, tt.d, tt.dir, got, tt.want)
		}
	}
}

func TestTargetAngleSign(t *testing.T) {
	for w := 0; w < 8; w++ {
		if a := TargetAngle(w, 8, 2*time.Second, Clockwise); a <= OneTurn {
			t.Errorf("clockwise target %v should exceed one turn", a)
		}
		if a := TargetAngle(w, 8, 2*time.Second, CounterClockwise); a >= -OneTurn {
			t.Errorf("counter-clockwise target %v should be below minus one turn", a)
		}
	}
}

func TestResolveWinner(t *testing.T) {
	tests := []struct {
		angle float64
		n     int
		want  int
	}{
		{0, 4, 0},
		{5, 4, 0},
		{275, 4, 1},
		{185, 4, 2},
		{95, 4, 3},
		{2075, 4, 1},
		{-95, 4, 1},
		{-5, 4, 0},
		// Rounds before flooring.
		{89.6, 4, 3},
		{42, 1, 0},
		{10, 0, 0},
	}

	for _, tt := range tests {
		if got := ResolveWinner(tt.angle, tt.n); got != tt.want {
			t.Errorf("ResolveWinner(%v, %d) = %d, want %d", tt.angle, tt.n, got, tt.want)
		}
	}
}

func TestJSRound(t *testing.T) {
	tests := map[float64]float64{
		0.5:  1,
		-0.5: 0,
		1.4:  1,
		-1.6: -2,
		2.5:  3,
	}
	for in, want := range tests {
		if got := jsRound(in); got != want {
			t.Errorf("jsRound(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestParseDirection(t *testing.T) {
	for in, want := range map[string]Direction{
		"":                 Clockwise,
		"cw":               Clockwise,
		"clockwise":        Clockwise,
		"ccw":              CounterClockwise,
		"counterclockwise": CounterClockwise,
	} {
		got, err := ParseDirection(in)
		if err != nil || got != want {
			t.Errorf("ParseDirection(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseDirection("sideways"); err == nil {
		t.Error("expected error for unknown direction")
	}
}
