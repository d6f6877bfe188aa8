package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MJE43/wheel-of-fortune-go/internal/config"
	"github.com/MJE43/wheel-of-fortune-go/internal/engine"
	"github.com/MJE43/wheel-of-fortune-go/internal/spin"
	"github.com/MJE43/wheel-of-fortune-go/internal/store"
)

func errFairUnavailable() error {
	return NewError(ErrTypeServiceUnavailable, "fair spins are disabled: no seed vault").Build()
}

// handleSpin plans an authoritative spin, records it and returns the plan
func (s *Server) handleSpin(w http.ResponseWriter, r *http.Request) {
	wh, ok := s.wheelFor(w, r)
	if !ok {
		return
	}
	var req SpinRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if err := ValidateSpinRequest(&req, len(wh.Rewards)); err != nil {
		s.errorHandler.HandleValidationError(w, r, "winner", err.Error())
		return
	}
	if wh.Disabled {
		s.errorHandler.HandleError(w, r, NewError(ErrTypeWheelDisabled, "wheel is disabled").
			WithContext("wheel_id", wh.ID).
			Build())
		return
	}

	resp, err := s.performSpin(r.Context(), wh, req)
	if err != nil {
		s.errorHandler.HandleSpinError(w, r, wh.ID, err)
		return
	}

	var nonce uint64
	var serverHash string
	if resp.Proof != nil {
		nonce, serverHash = resp.Proof.Nonce, resp.Proof.ServerSeedHash
	}
	s.securityLogger.LogSpinOperation(
		middleware.GetReqID(r.Context()), wh.ID, resp.Source, serverHash, req.ClientSeed, nonce, resp.Plan.Winner,
	)
	s.writeJSON(w, http.StatusOK, resp)
}

// performSpin picks the winner by precedence: requested, configured, fair, then crypto random.
func (s *Server) performSpin(ctx context.Context, wh config.Wheel, req SpinRequest) (SpinResponse, error) {
	n := len(wh.Rewards)
	rec := &store.Spin{
		WheelID:       wh.ID,
		Segments:      n,
		Direction:     string(wh.Direction),
		Easing:        string(wh.Easing),
		EngineVersion: EngineVersion,
	}
	var proof *engine.Proof

	switch {
	case req.Winner != nil:
		rec.WinnerIndex, rec.Source = *req.Winner, store.SourcePinned
	case wh.Winner != nil:
		rec.WinnerIndex, rec.Source = *wh.Winner, store.SourcePinned
	case req.ClientSeed != "":
		if s.vault == nil {
			return SpinResponse{}, errFairUnavailable()
		}
		// Hold the wheel until the spin is saved so the nonce is consumed exactly once.
		defer s.fairLocks.lock(wh.ID)()

		seed, err := s.vault.Active(wh.ID)
		if err != nil {
			return SpinResponse{}, fmt.Errorf("load server seed: %w", err)
		}
		hash := engine.HashServerSeed(seed)
		nonce, err := s.db.NextNonce(ctx, wh.ID, hash)
		if err != nil {
			return SpinResponse{}, fmt.Errorf("next nonce: %w", err)
		}
		picker := engine.FairPicker{Seeds: engine.Seeds{Server: seed, Client: req.ClientSeed}, Nonce: nonce}
		p := picker.Proof(n)
		proof = &p

		rec.WinnerIndex, rec.Source = p.Index, store.SourceFair
		rec.ServerSeedHash, rec.ClientSeed, rec.Nonce = hash, req.ClientSeed, nonce
	default:
		rec.WinnerIndex, rec.Source = engine.CryptoPicker{}.Pick(n), store.SourceRandom
	}

	plan := spin.NewPlan(rec.WinnerIndex, n, wh.Duration, wh.Direction, wh.Easing)
	if landed := plan.Landed(); landed != rec.WinnerIndex {
		return SpinResponse{}, fmt.Errorf("plan for %d lands on %d", rec.WinnerIndex, landed)
	}
	rec.WinnerValue = wh.Rewards[rec.WinnerIndex].Display
	rec.Amount = wh.Amount(rec.WinnerIndex)
	rec.TargetAngle = plan.Target
	rec.DurationMs = plan.DurationMs()

	if err := s.db.SaveSpin(ctx, rec); err != nil {
		return SpinResponse{}, fmt.Errorf("save spin: %w", err)
	}

	return SpinResponse{
		ID:            rec.ID,
		WheelID:       wh.ID,
		Plan:          plan,
		DurationMs:    plan.DurationMs(),
		WinnerValue:   rec.WinnerValue,
		Amount:        rec.Amount,
		Source:        rec.Source,
		Proof:         proof,
		EngineVersion: EngineVersion,
	}, nil
}

// handleVerify resolves a settled angle or replays a revealed fair spin
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	wh, ok := s.wheelFor(w, r)
	if !ok {
		return
	}
	var req VerifyRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	field, err := ValidateVerifyRequest(&req)
	if err != nil {
		s.errorHandler.HandleValidationError(w, r, field, err.Error())
		return
	}

	n := len(wh.Rewards)
	resp := VerifyResponse{WheelID: wh.ID, EngineVersion: EngineVersion}
	if req.Angle != nil {
		resp.Angle = req.Angle
		resp.Index = spin.ResolveWinner(*req.Angle, n)
	} else {
		seeds := engine.Seeds{Server: req.ServerSeed, Client: req.ClientSeed}
		proof := engine.Verify(seeds, req.Nonce, n)
		resp.Proof = &proof
		resp.Index = proof.Index
		s.securityLogger.LogVerifyOperation(middleware.GetReqID(r.Context()), wh.ID, seeds, req.Nonce, proof.Index)
	}
	resp.Value = wh.Rewards[resp.Index].Display
	s.writeJSON(w, http.StatusOK, resp)
}

// handleSeed publishes the active server seed hash and the next fair nonce
func (s *Server) handleSeed(w http.ResponseWriter, r *http.Request) {
	wh, ok := s.wheelFor(w, r)
	if !ok {
		return
	}
	if s.vault == nil {
		s.errorHandler.HandleError(w, r, errFairUnavailable())
		return
	}
	hash, err := s.vault.Hash(wh.ID)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	next, err := s.db.NextNonce(r.Context(), wh.ID, hash)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, SeedResponse{
		WheelID:        wh.ID,
		ServerSeedHash: hash,
		NextNonce:      next,
		EngineVersion:  EngineVersion,
	})
}

// handleRotateSeed reveals the active seed and commits to a new one
func (s *Server) handleRotateSeed(w http.ResponseWriter, r *http.Request) {
	wh, ok := s.wheelFor(w, r)
	if !ok {
		return
	}
	if s.vault == nil {
		s.errorHandler.HandleError(w, r, errFairUnavailable())
		return
	}

	unlock := s.fairLocks.lock(wh.ID)
	rot, err := s.vault.Rotate(wh.ID)
	unlock()
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}

	s.securityLogger.LogSeedRotation(middleware.GetReqID(r.Context()), wh.ID, rot.RevealedHash, rot.NextHash)
	s.writeJSON(w, http.StatusOK, RotateResponse{Rotation: rot, EngineVersion: EngineVersion})
}

// handleListSpins pages through the history, optionally for one wheel
func (s *Server) handleListSpins(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := store.SpinsQuery{WheelID: q.Get("wheel")}
	for _, p := range []struct {
		name string
		dst  *int
	}{{"page", &query.Page}, {"per_page", &query.PerPage}} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			s.errorHandler.HandleValidationError(w, r, p.name, p.name+" must be a positive integer")
			return
		}
		*p.dst = v
	}

	page, err := s.db.ListSpins(r.Context(), query)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, SpinsResponse{SpinsPage: page, EngineVersion: EngineVersion})
}

// handleGetSpin returns one recorded spin
func (s *Server) handleGetSpin(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := s.db.GetSpin(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		s.errorHandler.HandleNotFound(w, r, ErrTypeSpinNotFound, id)
		return
	}
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}
