package config

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MJE43/wheel-of-fortune-go/internal/labelscript"
	"github.com/MJE43/wheel-of-fortune-go/internal/spin"
)

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

var knobImageExt = map[string]bool{".png": true, ".jpg": true, ".jpeg": true}

// ValidateRaw checks merged wheels and reports every problem at once.
func ValidateRaw(wheels []RawWheel) error {
	var errs []string

	if len(wheels) == 0 {
		errs = append(errs, "wheels must not be empty")
	}

	seen := make(map[string]bool, len(wheels))
	for i, w := range wheels {
		p := fmt.Sprintf("wheels[%d]", i)
		if w.ID != "" {
			p = fmt.Sprintf("wheels[%s]", w.ID)
		}

		switch {
		case w.ID == "":
			errs = append(errs, p+".id is required")
		case !idPattern.MatchString(w.ID):
			errs = append(errs, p+".id may only contain letters, digits, '-' and '_'")
		case seen[w.ID]:
			errs = append(errs, p+".id is duplicated")
		}
		seen[w.ID] = true

		n := len(w.Rewards)
		if n == 0 {
			errs = append(errs, p+".rewards must not be empty")
		}
		if n > spin.MaxSegments {
			errs = append(errs, fmt.Sprintf("%s.rewards must have at most %d entries", p, spin.MaxSegments))
		}
		for j, r := range w.Rewards {
			if strings.TrimSpace(r.Label) == "" {
				errs = append(errs, fmt.Sprintf("%s.rewards[%d].label is required", p, j))
			}
			if r.Amount != "" {
				if _, err := decimal.NewFromString(r.Amount); err != nil {
					errs = append(errs, fmt.Sprintf("%s.rewards[%d].amount must be a decimal number", p, j))
				}
			}
		}

		if w.Winner != nil && (*w.Winner < 0 || *w.Winner >= n) {
			errs = append(errs, fmt.Sprintf("%s.winner must satisfy 0 <= winner < %d", p, n))
		}
		if w.DurationMs != nil && *w.DurationMs <= 0 {
			errs = append(errs, p+".duration_ms must be > 0")
		}
		if w.CooldownMs != nil && *w.CooldownMs < 0 {
			errs = append(errs, p+".cooldown_ms must be >= 0")
		}
		if _, err := spin.ParseEasing(w.Easing); err != nil {
			errs = append(errs, p+".easing must be one of: linear, easeOutQuad, easeOutCubic, easeInOutCubic")
		}
		if _, err := spin.ParseDirection(w.Direction); err != nil {
			errs = append(errs, p+".direction must be one of: clockwise, counterclockwise")
		}

		if s := w.Style; s != nil {
			if s.Width != nil && *s.Width <= 0 {
				errs = append(errs, p+".style.width must be > 0")
			}
			if s.InnerRadius != nil && *s.InnerRadius < 0 {
				errs = append(errs, p+".style.inner_radius must be >= 0")
			}
			if s.Width != nil && s.InnerRadius != nil && *s.InnerRadius >= *s.Width/2 {
				errs = append(errs, p+".style.inner_radius must be smaller than width/2")
			}
			if s.BorderWidth != nil && *s.BorderWidth < 0 {
				errs = append(errs, p+".style.border_width must be >= 0")
			}
			if s.KnobSize != nil && *s.KnobSize < 0 {
				errs = append(errs, p+".style.knob_size must be >= 0")
			}
			if s.KnobImage != "" && !knobImageExt[strings.ToLower(filepath.Ext(s.KnobImage))] {
				errs = append(errs, p+".style.knob_image must be a .png, .jpg or .jpeg file")
			}
		}

		if w.LabelScript != "" {
			if _, err := labelscript.Compile(w.LabelScript); err != nil {
				errs = append(errs, fmt.Sprintf("%s.label_script does not compile: %v", p, err))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
