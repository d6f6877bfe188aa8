package config

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/MJE43/wheel-of-fortune-go/internal/labelscript"
	"github.com/MJE43/wheel-of-fortune-go/internal/spin"
	"github.com/MJE43/wheel-of-fortune-go/internal/wheel"
)

// LoadFile reads, merges, validates and normalizes a wheels.yaml.
func LoadFile(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(b)
}

// Parse is LoadFile for YAML already in memory.
func Parse(b []byte) (*Catalog, error) {
	var raw RawFile
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("parse wheels: %w", err)
	}

	merged := make([]RawWheel, len(raw.Wheels))
	for i, w := range raw.Wheels {
		merged[i] = mergeRaw(raw.Defaults, w)
	}
	if err := ValidateRaw(merged); err != nil {
		return nil, err
	}

	wheels := make([]Wheel, len(merged))
	for i, w := range merged {
		nw, err := Normalize(w)
		if err != nil {
			return nil, fmt.Errorf("wheel %q: %w", w.ID, err)
		}
		wheels[i] = nw
	}
	return newCatalog(wheels), nil
}

// mergeRaw overlays b on a: every field b sets wins. Slices are replaced, not appended.
func mergeRaw(a, b RawWheel) RawWheel {
	out := a

	if b.ID != "" {
		out.ID = b.ID
	}
	if b.Title != "" {
		out.Title = b.Title
	}
	if len(b.Rewards) > 0 {
		out.Rewards = append([]RawReward(nil), b.Rewards...)
	}
	if b.Winner != nil {
		out.Winner = b.Winner
	}
	if b.DurationMs != nil {
		out.DurationMs = b.DurationMs
	}
	if b.CooldownMs != nil {
		out.CooldownMs = b.CooldownMs
	}
	if b.Easing != "" {
		out.Easing = b.Easing
	}
	if b.Direction != "" {
		out.Direction = b.Direction
	}
	if b.Disabled != nil {
		out.Disabled = b.Disabled
	}
	if b.LabelScript != "" {
		out.LabelScript = b.LabelScript
	}

	switch {
	case out.Style == nil && b.Style != nil:
		s := *b.Style
		out.Style = &s
	case out.Style != nil && b.Style != nil:
		s := mergeStyle(*out.Style, *b.Style)
		out.Style = &s
	case out.Style != nil:
		s := *out.Style
		out.Style = &s
	}

	return out
}

func mergeStyle(a, b RawStyle) RawStyle {
	out := a
	if b.Width != nil {
		out.Width = b.Width
	}
	if b.InnerRadius != nil {
		out.InnerRadius = b.InnerRadius
	}
	if b.TextColor != "" {
		out.TextColor = b.TextColor
	}
	if b.BackgroundColor != "" {
		out.BackgroundColor = b.BackgroundColor
	}
	if b.BorderWidth != nil {
		out.BorderWidth = b.BorderWidth
	}
	if b.BorderColor != "" {
		out.BorderColor = b.BorderColor
	}
	if b.KnobSize != nil {
		out.KnobSize = b.KnobSize
	}
	if b.KnobColor != "" {
		out.KnobColor = b.KnobColor
	}
	if b.KnobImage != "" {
		out.KnobImage = b.KnobImage
	}
	if len(b.Colors) > 0 {
		out.Colors = append([]string(nil), b.Colors...)
	}
	return out
}

// Normalize turns a merged, validated RawWheel into a Wheel, running its label script.
func Normalize(raw RawWheel) (Wheel, error) {
	w := Wheel{
		ID:          raw.ID,
		Title:       raw.Title,
		Duration:    spin.DefaultDuration,
		Cooldown:    spin.DefaultCooldown,
		LabelScript: raw.LabelScript,
	}
	if w.Title == "" {
		w.Title = raw.ID
	}
	if raw.Winner != nil {
		winner := *raw.Winner
		w.Winner = &winner
	}
	if raw.DurationMs != nil {
		w.Duration = time.Duration(*raw.DurationMs) * time.Millisecond
	}
	if raw.CooldownMs != nil && *raw.CooldownMs > 0 {
		w.Cooldown = time.Duration(*raw.CooldownMs) * time.Millisecond
	}
	if raw.Disabled != nil {
		w.Disabled = *raw.Disabled
	}

	var err error
	if w.Easing, err = spin.ParseEasing(raw.Easing); err != nil {
		return Wheel{}, err
	}
	if w.Direction, err = spin.ParseDirection(raw.Direction); err != nil {
		return Wheel{}, err
	}
	if raw.Style != nil {
		w.Style = normalizeStyle(*raw.Style)
	}
	w.Style = w.Style.WithDefaults()

	w.Rewards = make([]Reward, len(raw.Rewards))
	for i, r := range raw.Rewards {
		amount := decimal.Zero
		if r.Amount != "" {
			if amount, err = decimal.NewFromString(r.Amount); err != nil {
				return Wheel{}, fmt.Errorf("reward %d amount: %w", i, err)
			}
		}
		w.Rewards[i] = Reward{Label: r.Label, Display: r.Label, Amount: amount}
	}

	if raw.LabelScript != "" {
		if err := applyLabelScript(raw.LabelScript, w.Rewards); err != nil {
			return Wheel{}, err
		}
	}
	return w, nil
}

func normalizeStyle(raw RawStyle) wheel.Style {
	s := wheel.Style{
		TextColor:       raw.TextColor,
		BackgroundColor: raw.BackgroundColor,
		BorderColor:     raw.BorderColor,
		KnobColor:       raw.KnobColor,
		KnobImage:       raw.KnobImage,
		Colors:          append([]string(nil), raw.Colors...),
	}
	if raw.Width != nil {
		s.Width = *raw.Width
	}
	if raw.InnerRadius != nil {
		s.InnerRadius = *raw.InnerRadius
	}
	if raw.BorderWidth != nil {
		s.BorderWidth = *raw.BorderWidth
	}
	if raw.KnobSize != nil {
		s.KnobSize = *raw.KnobSize
	}
	return s
}

func applyLabelScript(script string, rewards []Reward) error {
	f, err := labelscript.Compile(script)
	if err != nil {
		return err
	}
	ins := make([]labelscript.Input, len(rewards))
	for i, r := range rewards {
		ins[i] = labelscript.Input{Label: r.Label, Amount: r.Amount}
	}
	labels, err := f.FormatAll(ins)
	if err != nil {
		return err
	}
	for i := range rewards {
		rewards[i].Display = labels[i]
	}
	return nil
}
