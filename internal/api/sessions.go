package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MJE43/wheel-of-fortune-go/internal/config"
	"github.com/MJE43/wheel-of-fortune-go/internal/engine"
	"github.com/MJE43/wheel-of-fortune-go/internal/spin"
	"github.com/MJE43/wheel-of-fortune-go/internal/store"
)

const sessionSaveTimeout = 5 * time.Second

type session struct {
	id      string
	wheelID string
	handle  spin.Handle
	created time.Time
	// lastUsed is UnixNano of the latest request that touched the session.
	lastUsed atomic.Int64
}

func (s *session) touch(now time.Time) {
	s.lastUsed.Store(now.UnixNano())
}

func (s *session) idleSince() time.Time {
	return time.Unix(0, s.lastUsed.Load())
}

// sessionRegistry holds live wheels by ID.
type sessionRegistry struct {
	mu    sync.RWMutex
	items map[string]*session
}

func newSessionRegistry() *sessionRegistry {
	return &sessionRegistry{items: make(map[string]*session)}
}

// tryAdd registers s unless limit sessions are already live.
func (reg *sessionRegistry) tryAdd(s *session, limit int) bool {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if len(reg.items) >= limit {
		return false
	}
	reg.items[s.id] = s
	return true
}

func (reg *sessionRegistry) get(id string) (*session, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	s, ok := reg.items[id]
	return s, ok
}

func (reg *sessionRegistry) remove(id string) (*session, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	s, ok := reg.items[id]
	delete(reg.items, id)
	return s, ok
}

// Len is the number of live sessions.
func (reg *sessionRegistry) Len() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.items)
}

// prune disposes every session whose wheel keep rejects.
func (reg *sessionRegistry) prune(keep func(wheelID string) bool) int {
	return len(reg.removeWhere(func(s *session) bool { return !keep(s.wheelID) }))
}

// reap disposes sessions untouched since cutoff.
func (reg *sessionRegistry) reap(cutoff time.Time) []*session {
	return reg.removeWhere(func(s *session) bool { return s.idleSince().Before(cutoff) })
}

// removeWhere unregisters matching sessions and disposes them outside the lock.
func (reg *sessionRegistry) removeWhere(match func(*session) bool) []*session {
	reg.mu.Lock()
	var gone []*session
	for id, s := range reg.items {
		if match(s) {
			gone = append(gone, s)
			delete(reg.items, id)
		}
	}
	reg.mu.Unlock()

	for _, s := range gone {
		s.handle.Dispose()
	}
	return gone
}

func (reg *sessionRegistry) closeAll() {
	reg.mu.Lock()
	items := reg.items
	reg.items = make(map[string]*session)
	reg.mu.Unlock()

	for _, s := range items {
		s.handle.Dispose()
	}
}

// PruneSessions disposes live sessions whose wheel is missing from cat.
// Hook it to the catalog watcher's reloads.
func (s *Server) PruneSessions(cat *config.Catalog) int {
	n := s.sessions.prune(func(wheelID string) bool {
		_, ok := cat.Get(wheelID)
		return ok
	})
	if n > 0 {
		s.logger.Printf("sessions_pruned count=%d wheels=%d", n, len(cat.Wheels))
	}
	return n
}

// reapInterval polls at half the TTL, between 10ms and a minute.
func reapInterval(ttl time.Duration) time.Duration {
	return min(max(ttl/2, 10*time.Millisecond), time.Minute)
}

func (s *Server) runSessionReaper(interval time.Duration) {
	defer close(s.reaperDone)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.reaperStop:
			return
		case <-ticker.C:
			s.reapIdleSessions()
		}
	}
}

// reapIdleSessions disposes sessions idle for longer than the TTL.
func (s *Server) reapIdleSessions() int {
	now := s.now()
	gone := s.sessions.reap(now.Add(-s.sessionIdleTTL))
	for _, sess := range gone {
		s.logger.Printf("session_expired id=%s wheel=%s idle=%v", sess.id, sess.wheelID, now.Sub(sess.idleSince()))
	}
	return len(gone)
}

// handleCreateSession starts a live wheel that persists every settled spin
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req SessionRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if req.WheelID == "" {
		s.errorHandler.HandleValidationError(w, r, "wheel_id", "wheel_id is required")
		return
	}
	wh, ok := s.catalogWheel(req.WheelID)
	if !ok {
		s.errorHandler.HandleNotFound(w, r, ErrTypeWheelNotFound, req.WheelID)
		return
	}

	id := uuid.NewString()
	opts := wh.SpinOptions()
	if req.Winner != nil {
		winner := *req.Winner
		opts.Winner = &winner
	}
	opts.Source = engine.CryptoPicker{}
	opts.OnWinner = s.recordSessionSpin(id, wh, opts.Winner != nil)

	// The runner outlives the request.
	runner, err := spin.Start(context.Background(), opts)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	sess := &session{id: id, wheelID: wh.ID, handle: runner, created: s.now()}
	sess.touch(sess.created)
	if !s.sessions.tryAdd(sess, s.maxSessions) {
		runner.Dispose()
		s.logger.Printf("session_rejected wheel=%s reason=limit max=%d", wh.ID, s.maxSessions)
		s.errorHandler.HandleError(w, r, NewError(ErrTypeTooManySessions,
			fmt.Sprintf("session limit of %d reached", s.maxSessions)).
			WithContext("max_sessions", s.maxSessions).
			Build())
		return
	}
	s.logger.Printf("session_created id=%s wheel=%s pinned=%t", id, wh.ID, opts.Winner != nil)

	s.writeJSON(w, http.StatusCreated, SessionResponse{
		ID:            id,
		WheelID:       wh.ID,
		State:         runner.State(),
		EngineVersion: EngineVersion,
	})
}

func (s *Server) catalogWheel(id string) (config.Wheel, bool) {
	if s.catalog == nil {
		return config.Wheel{}, false
	}
	return s.catalog.Catalog().Get(id)
}

// recordSessionSpin builds the winner callback. It runs on the runner goroutine.
func (s *Server) recordSessionSpin(sessionID string, wh config.Wheel, pinned bool) func(string, int) {
	source := store.SourceRandom
	if pinned {
		source = store.SourcePinned
	}
	return func(value string, index int) {
		plan := spin.NewPlan(index, len(wh.Rewards), wh.Duration, wh.Direction, wh.Easing)
		rec := &store.Spin{
			WheelID:       wh.ID,
			SessionID:     sessionID,
			WinnerIndex:   index,
			WinnerValue:   value,
			Amount:        wh.Amount(index),
			Segments:      len(wh.Rewards),
			TargetAngle:   plan.Target,
			DurationMs:    plan.DurationMs(),
			Direction:     string(plan.Direction),
			Easing:        string(plan.Easing),
			Source:        source,
			EngineVersion: EngineVersion,
		}

		ctx, cancel := context.WithTimeout(context.Background(), sessionSaveTimeout)
		defer cancel()
		if err := s.db.SaveSpin(ctx, rec); err != nil {
			s.logger.Printf("session_spin_save_failed session=%s wheel=%s winner=%d err=%v", sessionID, wh.ID, index, err)
			return
		}
		s.logger.Printf("session_spin_settled session=%s wheel=%s winner=%d value=%q spin_id=%s", sessionID, wh.ID, index, value, rec.ID)
	}
}

// sessionFor resolves the {id} route parameter, writing a 404 when unknown.
func (s *Server) sessionFor(w http.ResponseWriter, r *http.Request) (*session, bool) {
	id := chi.URLParam(r, "id")
	sess, ok := s.sessions.get(id)
	if !ok {
		s.errorHandler.HandleNotFound(w, r, ErrTypeSessionNotFound, id)
		return nil, false
	}
	sess.touch(s.now())
	return sess, true
}

func (s *Server) writeSession(w http.ResponseWriter, status int, sess *session, triggered *bool) {
	s.writeJSON(w, status, SessionResponse{
		ID:            sess.id,
		WheelID:       sess.wheelID,
		Triggered:     triggered,
		State:         sess.handle.State(),
		EngineVersion: EngineVersion,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	if sess, ok := s.sessionFor(w, r); ok {
		s.writeSession(w, http.StatusOK, sess, nil)
	}
}

// handleSessionTrigger starts a spin; a spin already in flight is reported, not an error
func (s *Server) handleSessionTrigger(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFor(w, r)
	if !ok {
		return
	}
	triggered := sess.handle.Trigger()
	s.writeSession(w, http.StatusOK, sess, &triggered)
}

func (s *Server) handleSessionReset(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFor(w, r)
	if !ok {
		return
	}
	if err := sess.handle.Reset(); err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.writeSession(w, http.StatusOK, sess, nil)
}

func (s *Server) handleSessionTryAgain(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFor(w, r)
	if !ok {
		return
	}
	if err := sess.handle.TryAgain(); err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.writeSession(w, http.StatusOK, sess, nil)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, ok := s.sessions.remove(id)
	if !ok {
		s.errorHandler.HandleNotFound(w, r, ErrTypeSessionNotFound, id)
		return
	}
	sess.handle.Dispose()
	s.logger.Printf("session_disposed id=%s wheel=%s age=%v", id, sess.wheelID, time.Since(sess.created))
	w.Header().Set("X-Engine-Version", EngineVersion)
	w.WriteHeader(http.StatusNoContent)
}
