package config

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MJE43/wheel-of-fortune-go/internal/spin"
	"github.com/MJE43/wheel-of-fortune-go/internal/wheel"
)

// RawFile mirrors wheels.yaml.
type RawFile struct {
	Defaults RawWheel   `yaml:"defaults"`
	Wheels   []RawWheel `yaml:"wheels"`
}

// RawWheel is one wheel as written. Unset fields inherit from defaults.
type RawWheel struct {
	ID          string      `yaml:"id"`
	Title       string      `yaml:"title,omitempty"`
	Rewards     []RawReward `yaml:"rewards"`
	Winner      *int        `yaml:"winner,omitempty"`
	DurationMs  *int        `yaml:"duration_ms,omitempty"`
	CooldownMs  *int        `yaml:"cooldown_ms,omitempty"`
	Easing      string      `yaml:"easing,omitempty"`
	Direction   string      `yaml:"direction,omitempty"`
	Disabled    *bool       `yaml:"disabled,omitempty"`
	LabelScript string      `yaml:"label_script,omitempty"`
	Style       *RawStyle   `yaml:"style,omitempty"`
}

type RawReward struct {
	Label  string `yaml:"label"`
	Amount string `yaml:"amount,omitempty"`
}

type RawStyle struct {
	Width           *float64 `yaml:"width,omitempty"`
	InnerRadius     *float64 `yaml:"inner_radius,omitempty"`
	TextColor       string   `yaml:"text_color,omitempty"`
	BackgroundColor string   `yaml:"background_color,omitempty"`
	BorderWidth     *float64 `yaml:"border_width,omitempty"`
	BorderColor     string   `yaml:"border_color,omitempty"`
	KnobSize        *float64 `yaml:"knob_size,omitempty"`
	KnobColor       string   `yaml:"knob_color,omitempty"`
	KnobImage       string   `yaml:"knob_image,omitempty"`
	Colors          []string `yaml:"colors,omitempty"`
}

// Reward is a normalized segment value. Display is what the wheel shows,
// after any label script ran.
type Reward struct {
	Label   string          `json:"label"`
	Display string          `json:"display"`
	Amount  decimal.Decimal `json:"amount"`
}

// Wheel is the normalized configuration of one wheel.
type Wheel struct {
	ID          string         `json:"id"`
	Title       string         `json:"title,omitempty"`
	Rewards     []Reward       `json:"rewards"`
	Winner      *int           `json:"winner,omitempty"`
	Duration    time.Duration  `json:"-"`
	Cooldown    time.Duration  `json:"-"`
	Easing      spin.Easing    `json:"easing"`
	Direction   spin.Direction `json:"direction"`
	Disabled    bool           `json:"disabled"`
	LabelScript string         `json:"label_script,omitempty"`
	Style       wheel.Style    `json:"style"`
}

// Labels returns the displayed value of every segment, in order.
func (w Wheel) Labels() []string {
	out := make([]string, len(w.Rewards))
	for i, r := range w.Rewards {
		out[i] = r.Display
	}
	return out
}

// Amount is the payout of segment i, zero when out of range.
func (w Wheel) Amount(i int) decimal.Decimal {
	if i < 0 || i >= len(w.Rewards) {
		return decimal.Zero
	}
	return w.Rewards[i].Amount
}

// SpinOptions builds controller options for this wheel. Callers add the
// source, clock and winner callback.
func (w Wheel) SpinOptions() spin.Options {
	opts := spin.Options{
		Rewards:   w.Labels(),
		Duration:  w.Duration,
		Cooldown:  w.Cooldown,
		Direction: w.Direction,
		Easing:    w.Easing,
		Disabled:  w.Disabled,
		Style:     w.Style,
	}
	if w.Winner != nil {
		winner := *w.Winner
		opts.Winner = &winner
	}
	return opts
}

// Segments builds the wheel geometry.
func (w Wheel) Segments() ([]wheel.Segment, error) {
	return wheel.BuildStyled(w.Labels(), w.Style)
}

// Catalog is an immutable set of wheels keyed by ID.
type Catalog struct {
	Wheels   []Wheel
	LoadedAt time.Time
	byID     map[string]int
}

func newCatalog(wheels []Wheel) *Catalog {
	c := &Catalog{
		Wheels:   wheels,
		LoadedAt: time.Now(),
		byID:     make(map[string]int, len(wheels)),
	}
	for i, w := range wheels {
		c.byID[w.ID] = i
	}
	return c
}

// Get looks a wheel up by ID.
func (c *Catalog) Get(id string) (Wheel, bool) {
	if c == nil {
		return Wheel{}, false
	}
	i, ok := c.byID[id]
	if !ok {
		return Wheel{}, false
	}
	return c.Wheels[i], true
}

// IDs lists wheel IDs in file order.
func (c *Catalog) IDs() []string {
	if c == nil {
		return nil
	}
	out := make([]string, len(c.Wheels))
	for i, w := range c.Wheels {
		out[i] = w.ID
	}
	return out
}
