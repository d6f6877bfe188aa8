package spin

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/MJE43/wheel-of-fortune-go/internal/wheel"
)

const (
	DefaultDuration = 10 * time.Second
	DefaultCooldown = 300 * time.Millisecond

	// MaxSegments is the largest wheel whose segments stay distinguishable
	// after the resolver rounds the settled angle to whole degrees.
	MaxSegments = 359
)

var (
	ErrSpinning         = errors.New("spin: wheel is spinning")
	ErrWinnerOutOfRange = errors.New("spin: winner index out of range")
	ErrTooManySegments  = fmt.Errorf("spin: more than %d segments", MaxSegments)
	ErrDisposed         = errors.New("spin: handle disposed")
)

// Source picks a winner uniformly in [0, n).
type Source interface {
	Pick(n int) int
}

type mathSource struct{}

func (mathSource) Pick(n int) int { return rand.IntN(n) }

// State is the controller's lifecycle position.
type State int

const (
	Idle State = iota
	Spinning
	Settled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Spinning:
		return "spinning"
	case Settled:
		return "settled"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// MarshalText renders the state by name in JSON.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a state name written by MarshalText.
func (s *State) UnmarshalText(b []byte) error {
	for _, st := range []State{Idle, Spinning, Settled} {
		if st.String() == string(b) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("spin: unknown state %q", b)
}

// Options configures a wheel instance.
type Options struct {
	Rewards []string
	// Winner pins the landing segment. Nil draws one from Source on construction and every reset.
	Winner    *int
	Duration  time.Duration
	Direction Direction
	Easing    Easing
	Cooldown  time.Duration
	Disabled  bool
	Style     wheel.Style
	Source    Source
	Clock     func() time.Time
	// OnWinner fires once per completed spin with the landed reward and index.
	OnWinner func(value string, index int)

	// TickInterval drives Runner; the bare Controller ignores it.
	TickInterval time.Duration
}

func (o Options) withDefaults() Options {
	if o.Duration <= 0 {
		o.Duration = DefaultDuration
	}
	if o.Direction == "" {
		o.Direction = Clockwise
	}
	if o.Easing == "" {
		o.Easing = DefaultEasing
	}
	if o.Cooldown <= 0 {
		o.Cooldown = DefaultCooldown
	}
	if o.Source == nil {
		o.Source = mathSource{}
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	if o.TickInterval <= 0 {
		o.TickInterval = DefaultTickInterval
	}
	return o
}

// Snapshot is a read-only view of a controller.
type Snapshot struct {
	State       State   `json:"state"`
	Angle       float64 `json:"angle"`
	Target      float64 `json:"target_angle"`
	Spinning    bool    `json:"spinning"`
	Winner      *int    `json:"winner,omitempty"`
	WinnerValue string  `json:"winner_value,omitempty"`
	KnobTilt    float64 `json:"knob_tilt"`
	Spins       int     `json:"spins"`
	Segments    int     `json:"segments"`
}

// Controller is the spin state machine for one wheel. It is not safe for
// concurrent use; Runner owns one on a single goroutine.
type Controller struct {
	opts     Options
	segments []wheel.Segment
	winner   int

	state     State
	gate      bool
	angle     float64
	plan      Plan
	startedAt time.Time
	settledAt time.Time
	landed    *int
	spins     int
}

// New builds the segments and picks the winner for a wheel.
func New(opts Options) (*Controller, error) {
	opts = opts.withDefaults()
	n := len(opts.Rewards)
	if n == 0 {
		return nil, wheel.ErrNoRewards
	}
	if n > MaxSegments {
		return nil, ErrTooManySegments
	}
	if opts.Winner != nil && (*opts.Winner < 0 || *opts.Winner >= n) {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrWinnerOutOfRange, *opts.Winner, n)
	}
	opts.Rewards = append([]string(nil), opts.Rewards...)
	if opts.Winner != nil {
		w := *opts.Winner
		opts.Winner = &w
	}

	c := &Controller{opts: opts}
	if err := c.prepare(); err != nil {
		return nil, err
	}
	return c, nil
}

// prepare rebuilds geometry and re-derives the winner.
func (c *Controller) prepare() error {
	segs, err := wheel.BuildStyled(c.opts.Rewards, c.opts.Style)
	if err != nil {
		return err
	}
	c.segments = segs
	if c.opts.Winner != nil {
		c.winner = *c.opts.Winner
	} else {
		c.winner = c.opts.Source.Pick(len(segs))
	}
	return nil
}

// Trigger starts a spin. It is a no-op returning false while a spin or its
// cooldown is in flight, or while the wheel is disabled.
func (c *Controller) Trigger() bool {
	c.Advance()
	if c.opts.Disabled || c.gate {
		return false
	}
	c.plan = NewPlan(c.winner, len(c.segments), c.opts.Duration, c.opts.Direction, c.opts.Easing)
	c.state = Spinning
	c.gate = true
	c.angle = 0
	c.landed = nil
	c.startedAt = c.opts.Clock()
	return true
}

// Advance moves the animation to the current clock time. Settling fires
// OnWinner exactly once; the gate reopens after the cooldown.
func (c *Controller) Advance() {
	now := c.opts.Clock()
	if c.state == Spinning {
		elapsed := now.Sub(c.startedAt)
		c.angle = c.plan.AngleAt(elapsed)
		if elapsed >= c.plan.Duration {
			c.settle()
		}
	}
	if c.state == Settled && c.gate && !now.Before(c.settledAt.Add(c.opts.Cooldown)) {
		c.gate = false
	}
}

func (c *Controller) settle() {
	c.angle = c.plan.Target
	c.state = Settled
	c.settledAt = c.startedAt.Add(c.plan.Duration)
	idx := ResolveWinner(c.angle, len(c.segments))
	c.landed = &idx
	c.spins++
	if c.opts.OnWinner != nil {
		c.opts.OnWinner(c.segments[idx].Value, idx)
	}
}

// Reset returns a settled or idle wheel to Idle, clearing the displayed winner
// and drawing a fresh winner when none is pinned. It fails with ErrSpinning
// while the gate is closed and leaves the state untouched.
func (c *Controller) Reset() error {
	c.Advance()
	if c.gate {
		return ErrSpinning
	}
	if err := c.prepare(); err != nil {
		return err
	}
	c.state = Idle
	c.angle = 0
	c.plan = Plan{}
	c.landed = nil
	return nil
}

// TryAgain resets the wheel and immediately spins it again.
func (c *Controller) TryAgain() error {
	if err := c.Reset(); err != nil {
		return err
	}
	c.Trigger()
	return nil
}

// Busy reports whether a spin or its cooldown is in flight, i.e. whether
// Advance still has anything to do.
func (c *Controller) Busy() bool {
	return c.gate
}

// SetDisabled toggles whether triggers are accepted.
func (c *Controller) SetDisabled(disabled bool) {
	c.opts.Disabled = disabled
}

// Snapshot reports the current state.
func (c *Controller) Snapshot() Snapshot {
	snap := Snapshot{
		State:    c.state,
		Angle:    c.angle,
		Target:   c.plan.Target,
		Spinning: c.gate,
		KnobTilt: wheel.KnobTilt(c.angle, len(c.segments)),
		Spins:    c.spins,
		Segments: len(c.segments),
	}
	if c.landed != nil {
		idx := *c.landed
		snap.Winner = &idx
		snap.WinnerValue = c.segments[idx].Value
	}
	return snap
}

// Segments returns a copy of the current geometry.
func (c *Controller) Segments() []wheel.Segment {
	return append([]wheel.Segment(nil), c.segments...)
}

// Winner is the segment the next spin will land on.
func (c *Controller) Winner() int {
	return c.winner
}

// Plan is the plan of the current or last spin.
func (c *Controller) Plan() Plan {
	return c.plan
}
