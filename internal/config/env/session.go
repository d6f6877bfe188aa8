package env

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/MJE43/wheel-of-fortune-go/internal/config"
)

const (
	maxSessionsEnvName    = "WHEEL_MAX_SESSIONS"
	sessionIdleTTLEnvName = "WHEEL_SESSION_IDLE_TTL"

	defaultMaxSessions    = 256
	defaultSessionIdleTTL = 15 * time.Minute
)

type sessionConfig struct {
	maxSessions int
	idleTTL     time.Duration
}

func NewSessionConfig() (config.SessionConfig, error) {
	maxSessions := defaultMaxSessions
	if raw := os.Getenv(maxSessionsEnvName); len(raw) > 0 {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("invalid %s %q: want a positive integer", maxSessionsEnvName, raw)
		}
		maxSessions = parsed
	}

	idleTTL := defaultSessionIdleTTL
	if raw := os.Getenv(sessionIdleTTLEnvName); len(raw) > 0 {
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("invalid %s %q: want a positive duration", sessionIdleTTLEnvName, raw)
		}
		idleTTL = parsed
	}

	return &sessionConfig{
		maxSessions: maxSessions,
		idleTTL:     idleTTL,
	}, nil
}

// MaxSessions caps concurrently live sessions.
func (cfg *sessionConfig) MaxSessions() int {
	return cfg.maxSessions
}

// IdleTTL is how long a session may go untouched before it is disposed.
func (cfg *sessionConfig) IdleTTL() time.Duration {
	return cfg.idleTTL
}
