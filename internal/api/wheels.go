package api

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MJE43/wheel-of-fortune-go/internal/config"
	"github.com/MJE43/wheel-of-fortune-go/internal/render"
	"github.com/MJE43/wheel-of-fortune-go/internal/sound"
	"github.com/MJE43/wheel-of-fortune-go/internal/spin"
	"github.com/MJE43/wheel-of-fortune-go/internal/wheel"
)

// handleListWheels lists the catalog
func (s *Server) handleListWheels(w http.ResponseWriter, r *http.Request) {
	resp := WheelsResponse{Wheels: []WheelSummary{}, EngineVersion: EngineVersion}
	if s.catalog != nil {
		cat := s.catalog.Catalog()
		for _, wh := range cat.Wheels {
			resp.Wheels = append(resp.Wheels, WheelSummary{
				ID:       wh.ID,
				Title:    wh.Title,
				Segments: len(wh.Rewards),
				Disabled: wh.Disabled,
			})
		}
		resp.LoadedAt = cat.LoadedAt.UTC().Format(time.RFC3339)
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// handleGetWheel returns geometry, label layout and style
func (s *Server) handleGetWheel(w http.ResponseWriter, r *http.Request) {
	wh, ok := s.wheelFor(w, r)
	if !ok {
		return
	}
	segs, err := wh.Segments()
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	labels := make([]wheel.Label, len(segs))
	for i, seg := range segs {
		labels[i] = wheel.LayoutLabel(seg, len(segs))
	}

	s.writeJSON(w, http.StatusOK, WheelResponse{
		Wheel:         wh,
		Segments:      segs,
		Labels:        labels,
		DurationMs:    wh.Duration.Milliseconds(),
		CooldownMs:    wh.Cooldown.Milliseconds(),
		EngineVersion: EngineVersion,
	})
}

// frameAngle reads ?angle= or ?winner=; a winner shows the frame the spin settles on.
func (s *Server) frameAngle(w http.ResponseWriter, r *http.Request, wh config.Wheel) (float64, bool) {
	q := r.URL.Query()
	if raw := q.Get("winner"); raw != "" {
		winner, ok := s.winnerParam(w, r, wh, raw)
		if !ok {
			return 0, false
		}
		return spin.TargetAngle(winner, len(wh.Rewards), wh.Duration, wh.Direction), true
	}
	raw := q.Get("angle")
	if raw == "" {
		return 0, true
	}
	angle, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		s.errorHandler.HandleValidationError(w, r, "angle", "angle must be a number")
		return 0, false
	}
	if err := checkFiniteAngle(angle); err != nil {
		s.errorHandler.HandleValidationError(w, r, "angle", err.Error())
		return 0, false
	}
	return angle, true
}

func (s *Server) winnerParam(w http.ResponseWriter, r *http.Request, wh config.Wheel, raw string) (int, bool) {
	winner, err := strconv.Atoi(raw)
	if err != nil || winner < 0 || winner >= len(wh.Rewards) {
		s.errorHandler.HandleValidationError(w, r, "winner",
			fmt.Sprintf("winner must be an index in [0, %d)", len(wh.Rewards)))
		return 0, false
	}
	return winner, true
}

func (s *Server) handleImagePNG(w http.ResponseWriter, r *http.Request) {
	s.handleImage(w, r, "image/png", render.PNG)
}

func (s *Server) handleImageSVG(w http.ResponseWriter, r *http.Request) {
	s.handleImage(w, r, "image/svg+xml", render.SVG)
}

type frameRenderer func(w io.Writer, segs []wheel.Segment, style wheel.Style, angle float64) error

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request, contentType string, draw frameRenderer) {
	wh, ok := s.wheelFor(w, r)
	if !ok {
		return
	}
	angle, ok := s.frameAngle(w, r, wh)
	if !ok {
		return
	}
	segs, err := wh.Segments()
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := draw(&buf, segs, wh.Style, angle); err != nil {
		s.errorHandler.HandleError(w, r, NewError(ErrTypeRender, "render failed").
			WithContext("wheel_id", wh.ID).
			WithCause(err).
			Build())
		return
	}
	s.writeBlob(w, contentType, buf.Bytes())
}

// handleSound renders the soundtrack of a spin landing on ?winner= (default 0 or the configured winner)
func (s *Server) handleSound(w http.ResponseWriter, r *http.Request) {
	wh, ok := s.wheelFor(w, r)
	if !ok {
		return
	}
	winner := 0
	if wh.Winner != nil {
		winner = *wh.Winner
	}
	if raw := r.URL.Query().Get("winner"); raw != "" {
		if winner, ok = s.winnerParam(w, r, wh, raw); !ok {
			return
		}
	}

	plan := spin.NewPlan(winner, len(wh.Rewards), wh.Duration, wh.Direction, wh.Easing)
	data, err := sound.WAV(plan, sound.Options{})
	if err != nil {
		s.errorHandler.HandleError(w, r, NewError(ErrTypeRender, "sound render failed").
			WithContext("wheel_id", wh.ID).
			WithCause(err).
			Build())
		return
	}
	s.writeBlob(w, "audio/wav", data)
}

// handleStats aggregates recorded spins per segment
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	wh, ok := s.wheelFor(w, r)
	if !ok {
		return
	}
	stats, err := s.db.WheelStats(r.Context(), wh.ID)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}

	resp := StatsResponse{
		WheelID:       wh.ID,
		Stats:         stats,
		TotalPayout:   decimal.Zero,
		EngineVersion: EngineVersion,
	}
	for _, st := range stats {
		resp.TotalSpins += st.Count
		resp.TotalPayout = resp.TotalPayout.Add(st.Payout)
	}
	s.writeJSON(w, http.StatusOK, resp)
}
