package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MJE43/wheel-of-fortune-go/internal/token"
)

const adminTokenHeader = "X-Admin-Token"

// SecurityLoggingMiddleware logs requests without exposing sensitive data
// and feeds per-route metrics to the health monitor.
func (s *Server) SecurityLoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		s.logger.Printf(
			"request_start method=%s path=%s request_id=%s remote_addr=%s user_agent=%q engine_version=%s",
			r.Method,
			r.URL.Path,
			requestID,
			r.RemoteAddr,
			r.UserAgent(),
			EngineVersion,
		)

		next.ServeHTTP(ww, r)

		duration := time.Since(start)
		s.logger.Printf(
			"request_completed method=%s path=%s status=%d duration=%v request_id=%s bytes_written=%d engine_version=%s",
			r.Method,
			r.URL.Path,
			ww.Status(),
			duration,
			requestID,
			ww.BytesWritten(),
			EngineVersion,
		)

		op := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				op = pattern
			}
		}
		s.monitor.Record(r.Method+" "+op, duration, ww.Status() < http.StatusInternalServerError)
	})
}

// corsMiddleware allows browser clients from the configured origins
func corsMiddleware(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", adminTokenHeader},
		ExposedHeaders:   []string{"X-Engine-Version", "X-Error-Type", "X-Error-Category"},
		AllowCredentials: false,
		MaxAge:           86400,
	})
}

// requireAdminToken accepts either the configured token in X-Admin-Token or
// an admin JWT signed with it in "Authorization: Bearer". An empty token
// leaves the route open.
func (s *Server) requireAdminToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.adminToken == "" || s.adminAuthorized(r) {
			next.ServeHTTP(w, r)
			return
		}

		requestID := middleware.GetReqID(r.Context())
		s.securityLogger.LogSecurityEvent(
			requestID,
			"admin_token_rejected",
			"missing or invalid admin credentials",
			map[string]interface{}{
				"path":   r.URL.Path,
				"header": r.Header.Get(adminTokenHeader) != "",
				"bearer": r.Header.Get("Authorization") != "",
			},
			r.RemoteAddr,
		)
		s.errorHandler.HandleError(w, r, NewError(ErrTypeUnauthorized, "missing or invalid admin credentials").
			WithRequestID(requestID).
			Build())
	})
}

func (s *Server) adminAuthorized(r *http.Request) bool {
	if got := r.Header.Get(adminTokenHeader); got != "" {
		return subtle.ConstantTimeCompare([]byte(got), []byte(s.adminToken)) == 1
	}
	bearer, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return false
	}
	_, err := token.VerifyAdmin(bearer, []byte(s.adminToken))
	return err == nil
}
