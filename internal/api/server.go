package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MJE43/wheel-of-fortune-go/internal/config"
	"github.com/MJE43/wheel-of-fortune-go/internal/seedvault"
	"github.com/MJE43/wheel-of-fortune-go/internal/store"
)

const (
	defaultRequestTimeout = 60 * time.Second
	maxBodyBytes          = 1 << 20

	DefaultMaxSessions    = 256
	DefaultSessionIdleTTL = 15 * time.Minute
)

// CatalogSource yields the wheel catalog in force. config.Watcher satisfies it.
type CatalogSource interface {
	Catalog() *config.Catalog
}

type staticCatalog struct{ c *config.Catalog }

func (s staticCatalog) Catalog() *config.Catalog { return s.c }

// StaticCatalog serves a fixed catalog.
func StaticCatalog(c *config.Catalog) CatalogSource {
	return staticCatalog{c: c}
}

// Config wires a Server. A nil Vault disables fair spins; an empty AdminToken
// leaves seed rotation open. Sessions untouched for SessionIdleTTL are disposed.
type Config struct {
	DB             store.DB
	Catalog        CatalogSource
	Vault          *seedvault.Vault
	AdminToken     string
	AllowedOrigins []string
	RequestTimeout time.Duration
	MaxSessions    int
	SessionIdleTTL time.Duration
	Logger         *log.Logger
}

// Server handles HTTP requests
type Server struct {
	db             store.DB
	catalog        CatalogSource
	vault          *seedvault.Vault
	sessions       *sessionRegistry
	fairLocks      *wheelLocks
	errorHandler   *ErrorHandler
	logger         *log.Logger
	securityLogger *SecurityLogger
	monitor        *HealthMonitor
	allowedOrigins []string
	adminToken     string
	requestTimeout time.Duration
	maxSessions    int
	sessionIdleTTL time.Duration
	now            func() time.Time

	reaperStop chan struct{}
	reaperDone chan struct{}
	stopOnce   sync.Once

	httpServer *http.Server
	listener   net.Listener
}

// NewServer creates a new API server
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(os.Stdout, "[API] ", log.LstdFlags|log.Lshortfile)
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = DefaultMaxSessions
	}
	if cfg.SessionIdleTTL <= 0 {
		cfg.SessionIdleTTL = DefaultSessionIdleTTL
	}
	securityLogger := NewSecurityLogger()

	s := &Server{
		db:             cfg.DB,
		catalog:        cfg.Catalog,
		vault:          cfg.Vault,
		sessions:       newSessionRegistry(),
		fairLocks:      newWheelLocks(),
		errorHandler:   NewErrorHandler(logger, securityLogger),
		logger:         logger,
		securityLogger: securityLogger,
		monitor:        NewHealthMonitor(),
		allowedOrigins: cfg.AllowedOrigins,
		adminToken:     cfg.AdminToken,
		requestTimeout: cfg.RequestTimeout,
		maxSessions:    cfg.MaxSessions,
		sessionIdleTTL: cfg.SessionIdleTTL,
		now:            time.Now,
		reaperStop:     make(chan struct{}),
		reaperDone:     make(chan struct{}),
	}
	go s.runSessionReaper(reapInterval(cfg.SessionIdleTTL))
	return s
}

// Routes sets up the HTTP routes with proper middleware
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.SecurityLoggingMiddleware)
	r.Use(s.errorHandler.RecoveryHandler)
	r.Use(corsMiddleware(s.allowedOrigins))

	r.Get("/health", s.handleHealthCheck)
	r.Get("/health/ready", s.handleReadiness)
	r.Get("/health/live", s.handleLiveness)
	r.Get("/metrics", s.handleMetrics)
	r.Get("/version", s.handleVersion)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(s.requestTimeout))

		r.Get("/wheels", s.handleListWheels)
		r.Route("/wheels/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetWheel)
			r.Post("/spin", s.handleSpin)
			r.Post("/verify", s.handleVerify)
			r.Get("/seed", s.handleSeed)
			r.With(s.requireAdminToken).Post("/seed/rotate", s.handleRotateSeed)
			r.Get("/image.png", s.handleImagePNG)
			r.Get("/image.svg", s.handleImageSVG)
			r.Get("/sound.wav", s.handleSound)
			r.Get("/stats", s.handleStats)
		})

		r.Get("/spins", s.handleListSpins)
		r.Get("/spins/export.csv", s.handleExportSpins)
		r.Get("/spins/{id}", s.handleGetSpin)

		r.Post("/sessions", s.handleCreateSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Post("/trigger", s.handleSessionTrigger)
			r.Post("/reset", s.handleSessionReset)
			r.Post("/try-again", s.handleSessionTryAgain)
		})
	})

	return r
}

// Start begins listening in a goroutine. It returns when the socket is bound.
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.listener = ln

	s.securityLogger.LogSystemStartup(ln.Addr().String(), map[string]interface{}{
		"wheels":          len(s.catalogIDs()),
		"database":        s.db != nil,
		"fair_spins":      s.vault != nil,
		"admin_token":     s.adminToken != "",
		"allowed_origins": s.allowedOrigins,
	})

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Printf("serve_failed addr=%s err=%v", ln.Addr(), err)
		}
	}()
	return nil
}

// Addr is the bound listen address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown gracefully stops the HTTP server and disposes every live session.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}
	s.stopOnce.Do(func() { close(s.reaperStop) })
	<-s.reaperDone
	s.sessions.closeAll()
	s.securityLogger.LogSystemShutdown("shutdown", s.monitor.Uptime())
	return err
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, GetVersionInfo())
}

func (s *Server) catalogIDs() []string {
	if s.catalog == nil {
		return nil
	}
	return s.catalog.Catalog().IDs()
}

// wheelFor resolves the {id} route parameter, writing a 404 when unknown.
func (s *Server) wheelFor(w http.ResponseWriter, r *http.Request) (config.Wheel, bool) {
	id := chi.URLParam(r, "id")
	if s.catalog != nil {
		if wh, ok := s.catalog.Catalog().Get(id); ok {
			return wh, true
		}
	}
	s.errorHandler.HandleNotFound(w, r, ErrTypeWheelNotFound, id)
	return config.Wheel{}, false
}

// decodeJSON reads an optional JSON body into dst. An empty body leaves dst untouched.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		s.errorHandler.HandleValidationError(w, r, "body", "invalid JSON: "+err.Error())
		return false
	}
	return true
}

// writeJSON writes a JSON response with proper headers
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Engine-Version", EngineVersion)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Printf("response_write_failed status=%d err=%v", status, err)
	}
}

// writeBlob writes a rendered asset
func (s *Server) writeBlob(w http.ResponseWriter, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("X-Engine-Version", EngineVersion)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.logger.Printf("response_write_failed content_type=%s err=%v", contentType, err)
	}
}

// wheelLocks serializes fair spins per wheel so that nonces are handed out once.
type wheelLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newWheelLocks() *wheelLocks {
	return &wheelLocks{locks: make(map[string]*sync.Mutex)}
}

func (l *wheelLocks) lock(wheelID string) func() {
	l.mu.Lock()
	m, ok := l.locks[wheelID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[wheelID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
