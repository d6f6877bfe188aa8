package spin

import (
	"errors"
	"testing"
	"time"
)

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time          { return f.now }
func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

type fixedSource []int

func (f *fixedSource) Pick(n int) int {
	v := (*f)[0]
	*f = (*f)[1:]
	return v % n
}

type notification struct {
	value string
	index int
}

func newTestController(t *testing.T, opts Options) (*Controller, *fakeClock, *[]notification) {
	t.Helper()
	clock := newFakeClock()
	var got []notification
	opts.Clock = clock.Now
	opts.OnWinner = func(value string, index int) {
		got = append(got, notification{value, index})
	}
	c, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c, clock, &got
}

func intPtr(v int) *int { return &v }

func TestWinnerNotifiedOnlyAfterSettle(t *testing.T) {
	c, clock, got := newTestController(t, Options{
		Rewards:  []string{"A", "B", "C"},
		Winner:   intPtr(1),
		Duration: 2 * time.Second,
	})

	if !c.Trigger() {
		t.Fatal("Trigger() = false on idle wheel")
	}
	if snap := c.Snapshot(); snap.State != Spinning || !snap.Spinning {
		t.Fatalf("state after trigger = %+v", snap)
	}

	clock.Advance(time.Second)
	c.Advance()
	if len(*got) != 0 {
		t.Fatalf("notified mid-spin: %v", *got)
	}
	snap := c.Snapshot()
	if snap.Winner != nil {
		t.Errorf("winner exposed mid-spin: %d", *snap.Winner)
	}
	if snap.Angle <= 0 || snap.Angle >= snap.Target {
		t.Errorf("mid-spin angle %v not between 0 and %v", snap.Angle, snap.Target)
	}

	clock.Advance(time.Second)
	c.Advance()
	if len(*got) != 1 || (*got)[0] != (notification{"B", 1}) {
		t.Fatalf("notifications = %v, want [{B 1}]", *got)
	}
	snap = c.Snapshot()
	if snap.State != Settled || snap.Winner == nil || *snap.Winner != 1 || snap.WinnerValue != "B" {
		t.Errorf("settled snapshot = %+v", snap)
	}
	if snap.Angle != snap.Target {
		t.Errorf("settled angle %v != target %v", snap.Angle, snap.Target)
	}

	clock.Advance(time.Minute)
	c.Advance()
	if len(*got) != 1 {
		t.Errorf("notified again after settle: %v", *got)
	}
}

func TestDoubleTriggerNotifiesOnce(t *testing.T) {
	c, clock, got := newTestController(t, Options{
		Rewards:  []string{"A", "B", "C", "D"},
		Duration: time.Second,
	})

	if !c.Trigger() {
		t.Fatal("first Trigger() = false")
	}
	clock.Advance(100 * time.Millisecond)
	if c.Trigger() {
		t.Fatal("second Trigger() accepted while spinning")
	}
	clock.Advance(time.Second)
	c.Advance()
	if len(*got) != 1 {
		t.Fatalf("notifications = %v, want exactly one", *got)
	}
	if c.Snapshot().Spins != 1 {
		t.Errorf("Spins = %d, want 1", c.Snapshot().Spins)
	}
}

func TestTriggerBlockedDuringCooldown(t *testing.T) {
	c, clock, got := newTestController(t, Options{
		Rewards:  []string{"A", "B"},
		Duration: time.Second,
		Cooldown: 300 * time.Millisecond,
	})

	c.Trigger()
	clock.Advance(time.Second + 100*time.Millisecond)
	if c.Trigger() {
		t.Fatal("Trigger() accepted during cooldown")
	}
	if len(*got) != 1 {
		t.Fatalf("expected settle before cooldown check, got %v", *got)
	}
	clock.Advance(200 * time.Millisecond)
	if !c.Trigger() {
		t.Fatal("Trigger() rejected after cooldown")
	}
}

func TestResetRejectedWhileSpinning(t *testing.T) {
	c, clock, _ := newTestController(t, Options{
		Rewards:  []string{"A", "B", "C"},
		Winner:   intPtr(2),
		Duration: time.Second,
	})

	c.Trigger()
	clock.Advance(500 * time.Millisecond)
	c.Advance()
	before := c.Snapshot()
	if err := c.Reset(); !errors.Is(err, ErrSpinning) {
		t.Fatalf("Reset() while spinning = %v, want ErrSpinning", err)
	}
	if after := c.Snapshot(); after.State != Spinning || after.Angle != before.Angle {
		t.Errorf("rejected reset changed state: %+v -> %+v", before, after)
	}

	// Settled but still cooling down.
	clock.Advance(600 * time.Millisecond)
	if err := c.Reset(); !errors.Is(err, ErrSpinning) {
		t.Fatalf("Reset() during cooldown = %v, want ErrSpinning", err)
	}

	clock.Advance(DefaultCooldown)
	if err := c.Reset(); err != nil {
		t.Fatalf("Reset() after settle = %v", err)
	}
	snap := c.Snapshot()
	if snap.State != Idle || snap.Winner != nil || snap.Angle != 0 {
		t.Errorf("snapshot after reset = %+v", snap)
	}
}

func TestResetDrawsFreshWinner(t *testing.T) {
	src := &fixedSource{0, 2, 1}
	c, clock, got := newTestController(t, Options{
		Rewards:  []string{"A", "B", "C"},
		Duration: time.Second,
		Source:   src,
	})
	if c.Winner() != 0 {
		t.Fatalf("initial winner = %d, want 0", c.Winner())
	}

	for i, want := range []int{0, 2, 1} {
		if i > 0 {
			if err := c.Reset(); err != nil {
				t.Fatalf("Reset() = %v", err)
			}
		}
		if !c.Trigger() {
			t.Fatalf("spin %d: Trigger() = false", i)
		}
		clock.Advance(2 * time.Second)
		c.Advance()
		last := (*got)[len(*got)-1]
		if last.index != want {
			t.Errorf("spin %d landed on %d, want %d", i, last.index, want)
		}
		if last.index < 0 || last.index >= 3 {
			t.Errorf("spin %d landed out of range: %d", i, last.index)
		}
	}
}

func TestTryAgain(t *testing.T) {
	c, clock, got := newTestController(t, Options{
		Rewards:   []string{"A", "B", "C", "D", "E"},
		Winner:    intPtr(4),
		Duration:  time.Second,
		Direction: CounterClockwise,
	})

	if err := c.TryAgain(); err != nil {
		t.Fatalf("TryAgain() on idle wheel = %v", err)
	}
	if c.Snapshot().State != Spinning {
		t.Fatal("TryAgain() did not start a spin")
	}
	if err := c.TryAgain(); !errors.Is(err, ErrSpinning) {
		t.Fatalf("TryAgain() while spinning = %v", err)
	}

	clock.Advance(2 * time.Second)
	if err := c.TryAgain(); err != nil {
		t.Fatalf("TryAgain() after settle = %v", err)
	}
	clock.Advance(2 * time.Second)
	c.Advance()
	if len(*got) != 2 {
		t.Fatalf("notifications = %v, want two", *got)
	}
	for _, n := range *got {
		if n != (notification{"E", 4}) {
			t.Errorf("notification = %+v, want {E 4}", n)
		}
	}
}

func TestDisabledWheelIgnoresTrigger(t *testing.T) {
	c, _, _ := newTestController(t, Options{
		Rewards:  []string{"A", "B"},
		Disabled: true,
	})

	if c.Trigger() {
		t.Fatal("disabled wheel accepted Trigger()")
	}
	if c.Snapshot().State != Idle {
		t.Fatal("disabled wheel left idle")
	}
	c.SetDisabled(false)
	if !c.Trigger() {
		t.Fatal("re-enabled wheel rejected Trigger()")
	}
}

func TestPinnedWinnerZero(t *testing.T) {
	c, clock, got := newTestController(t, Options{
		Rewards:  []string{"A", "B", "C"},
		Winner:   intPtr(0),
		Duration: time.Second,
		Source:   &fixedSource{2},
	})
	c.Trigger()
	clock.Advance(time.Second)
	c.Advance()
	if len(*got) != 1 || (*got)[0].index != 0 {
		t.Fatalf("notifications = %v, want index 0", *got)
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Error("New() with no rewards should fail")
	}
	if _, err := New(Options{Rewards: []string{"A", "B"}, Winner: intPtr(2)}); !errors.Is(err, ErrWinnerOutOfRange) {
		t.Errorf("winner 2 of 2: err = %v, want ErrWinnerOutOfRange", err)
	}
	if _, err := New(Options{Rewards: []string{"A"}, Winner: intPtr(-1)}); !errors.Is(err, ErrWinnerOutOfRange) {
		t.Errorf("winner -1: err = %v, want ErrWinnerOutOfRange", err)
	}
	rewards := make([]string, MaxSegments+1)
	for i := range rewards {
		rewards[i] = "x"
	}
	if _, err := New(Options{Rewards: rewards}); !errors.Is(err, ErrTooManySegments) {
		t.Errorf("too many segments: err = %v, want ErrTooManySegments", err)
	}
}

func TestNewCopiesInputs(t *testing.T) {
	rewards := []string{"A", "B"}
	w := 1
	c, err := New(Options{Rewards: rewards, Winner: &w})
	if err != nil {
		t.Fatal(err)
	}
	rewards[1] = "Z"
	w = 0
	if c.Winner() != 1 {
		t.Errorf("winner changed through caller pointer: %d", c.Winner())
	}
	if c.Segments()[1].Value != "B" {
		t.Errorf("segment value changed through caller slice: %q", c.Segments()[1].Value)
	}
}

func TestStateString(t *testing.T) {
	for s, want := range map[State]string{Idle: "idle", Spinning: "spinning", Settled: "settled"} {
		if s.String() != want {
			t.Errorf("%d.String() = %q", int(s), s.String())
		}
	}
}
