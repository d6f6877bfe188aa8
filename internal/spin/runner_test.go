package spin

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestRunnerSpinsToWinner(t *testing.T) {
	winners := make(chan notification, 4)
	r, err := Start(context.Background(), Options{
		Rewards:      []string{"A", "B", "C", "D"},
		Winner:       intPtr(2),
		Duration:     50 * time.Millisecond,
		Cooldown:     10 * time.Millisecond,
		TickInterval: 2 * time.Millisecond,
		OnWinner: func(value string, index int) {
			winners <- notification{value, index}
		},
	})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer r.Dispose()

	if !r.Trigger() {
		t.Fatal("Trigger() = false")
	}
	if r.Trigger() {
		t.Fatal("second Trigger() accepted while spinning")
	}

	select {
	case n := <-winners:
		if n != (notification{"C", 2}) {
			t.Errorf("winner = %+v, want {C 2}", n)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no winner notification")
	}

	waitFor(t, 2*time.Second, func() bool { return !r.State().Spinning })
	snap := r.State()
	if snap.State != Settled || snap.Winner == nil || *snap.Winner != 2 {
		t.Errorf("snapshot = %+v", snap)
	}

	if err := r.Reset(); err != nil {
		t.Fatalf("Reset() = %v", err)
	}
	if r.State().State != Idle {
		t.Error("not idle after reset")
	}
	select {
	case n := <-winners:
		t.Errorf("unexpected extra notification %+v", n)
	default:
	}
}

func TestRunnerDispose(t *testing.T) {
	r, err := Start(context.Background(), Options{Rewards: []string{"A", "B"}})
	if err != nil {
		t.Fatal(err)
	}
	r.Dispose()
	r.Dispose()

	if r.Trigger() {
		t.Error("Trigger() accepted after Dispose")
	}
	if err := r.Reset(); !errors.Is(err, ErrDisposed) {
		t.Errorf("Reset() after Dispose = %v, want ErrDisposed", err)
	}
	if err := r.TryAgain(); !errors.Is(err, ErrDisposed) {
		t.Errorf("TryAgain() after Dispose = %v, want ErrDisposed", err)
	}
	if err := r.SetDisabled(true); !errors.Is(err, ErrDisposed) {
		t.Errorf("SetDisabled() after Dispose = %v, want ErrDisposed", err)
	}
	if snap := r.State(); snap.Segments != 0 {
		t.Errorf("State() after Dispose = %+v, want zero", snap)
	}
}

func TestRunnerStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r, err := Start(ctx, Options{Rewards: []string{"A"}})
	if err != nil {
		t.Fatal(err)
	}
	cancel()
	select {
	case <-r.Done():
	case <-time.After(time.Second):
		t.Fatal("runner did not stop on context cancel")
	}
}

func TestRunnerDisabled(t *testing.T) {
	r, err := Start(context.Background(), Options{Rewards: []string{"A", "B"}, Disabled: true})
	if err != nil {
		t.Fatal(err)
	}
	defer r.Dispose()

	if r.Trigger() {
		t.Fatal("disabled runner accepted Trigger()")
	}
	if err := r.SetDisabled(false); err != nil {
		t.Fatal(err)
	}
	if !r.Trigger() {
		t.Fatal("re-enabled runner rejected Trigger()")
	}
}

func TestStartRejectsBadOptions(t *testing.T) {
	if _, err := Start(context.Background(), Options{Rewards: []string{"A"}, Winner: intPtr(3)}); !errors.Is(err, ErrWinnerOutOfRange) {
		t.Errorf("Start() error = %v, want ErrWinnerOutOfRange", err)
	}
}

func TestRunnerDoesNotTickWhileIdle(t *testing.T) {
	var reads atomic.Int64
	winners := make(chan notification, 1)
	r, err := Start(context.Background(), Options{
		Rewards:      []string{"A", "B", "C"},
		Winner:       intPtr(1),
		Duration:     20 * time.Millisecond,
		Cooldown:     5 * time.Millisecond,
		TickInterval: time.Millisecond,
		Clock: func() time.Time {
			reads.Add(1)
			return time.Now()
		},
		OnWinner: func(value string, index int) {
			winners <- notification{value, index}
		},
	})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer r.Dispose()

	time.Sleep(30 * time.Millisecond)
	if n := reads.Load(); n != 0 {
		t.Fatalf("idle runner read the clock %d times", n)
	}

	if !r.Trigger() {
		t.Fatal("Trigger() = false")
	}
	// No command is sent while spinning, so only ticks can settle it.
	select {
	case <-winners:
	case <-time.After(2 * time.Second):
		t.Fatal("busy runner did not tick to the winner")
	}
	waitFor(t, 2*time.Second, func() bool { return !r.State().Spinning })

	settled := reads.Load()
	time.Sleep(30 * time.Millisecond)
	if n := reads.Load(); n != settled {
		t.Fatalf("settled runner kept ticking: %d clock reads after settling", n-settled)
	}
}
