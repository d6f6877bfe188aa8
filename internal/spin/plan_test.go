package spin

import (
	"math"
	"testing"
	"time"
)

func TestEasingEndpointsAndMonotonic(t *testing.T) {
	for _, e := range []Easing{EaseLinear, EaseOutQuad, EaseOutCubic, EaseInOutCubic} {
		if got := e.Apply(0); got != 0 {
			t.Errorf("%s(0) = %v", e, got)
		}
		if got := e.Apply(1); got != 1 {
			t.Errorf("%s(1) = %v", e, got)
		}
		prev := 0.0
		for i := 1; i <= 1000; i++ {
			v := e.Apply(float64(i) / 1000)
			if v < prev {
				t.Fatalf("%s not monotonic at %d: %v < %v", e, i, v, prev)
			}
			prev = v
		}
	}
}

func TestEaseOutQuadDecelerates(t *testing.T) {
	first := EaseOutQuad.Apply(0.1)
	last := EaseOutQuad.Apply(1) - EaseOutQuad.Apply(0.9)
	if first <= last {
		t.Errorf("first tenth %v should cover more than last tenth %v", first, last)
	}
}

func TestParseEasing(t *testing.T) {
	if e, err := ParseEasing(""); err != nil || e != DefaultEasing {
		t.Errorf("ParseEasing(\"\") = %q, %v", e, err)
	}
	if e, err := ParseEasing("easeInOutCubic"); err != nil || e != EaseInOutCubic {
		t.Errorf("ParseEasing(easeInOutCubic) = %q, %v", e, err)
	}
	if _, err := ParseEasing("bounce"); err == nil {
		t.Error("expected error for unknown easing")
	}
}

func TestPlanAngleAt(t *testing.T) {
	p := NewPlan(1, 4, 4*time.Second, "", "")
	if p.Direction != Clockwise || p.Easing != DefaultEasing {
		t.Fatalf("defaults not applied: %+v", p)
	}
	if got := p.AngleAt(0); got != 0 {
		t.Errorf("AngleAt(0) = %v", got)
	}
	if got := p.AngleAt(-time.Second); got != 0 {
		t.Errorf("AngleAt(-1s) = %v", got)
	}
	if got := p.AngleAt(p.Duration); got != p.Target {
		t.Errorf("AngleAt(d) = %v, want %v", got, p.Target)
	}
	if got := p.AngleAt(time.Hour); got != p.Target {
		t.Errorf("AngleAt past end = %v, want %v", got, p.Target)
	}
	mid := p.AngleAt(2 * time.Second)
	if want := p.Target * 0.75; math.Abs(mid-want) > 1e-9 {
		t.Errorf("AngleAt(half) = %v, want %v", mid, want)
	}
	if p.Landed() != 1 {
		t.Errorf("Landed() = %d, want 1", p.Landed())
	}
	if p.DurationMs() != 4000 {
		t.Errorf("DurationMs() = %d", p.DurationMs())
	}
}

func TestPlanDefaultsDuration(t *testing.T) {
	p := NewPlan(0, 3, 0, CounterClockwise, EaseLinear)
	if p.Duration != DefaultDuration {
		t.Errorf("Duration = %s, want %s", p.Duration, DefaultDuration)
	}
	if p.Target >= 0 {
		t.Errorf("counter-clockwise target should be negative, got %v", p.Target)
	}
}
