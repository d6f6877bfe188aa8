package api

import (
	"github.com/shopspring/decimal"

	"github.com/MJE43/wheel-of-fortune-go/internal/config"
	"github.com/MJE43/wheel-of-fortune-go/internal/engine"
	"github.com/MJE43/wheel-of-fortune-go/internal/seedvault"
	"github.com/MJE43/wheel-of-fortune-go/internal/spin"
	"github.com/MJE43/wheel-of-fortune-go/internal/store"
	"github.com/MJE43/wheel-of-fortune-go/internal/wheel"
)

// EngineError represents a structured error response with context
type EngineError struct {
	Type      string                 `json:"type"`
	Message   string                 `json:"message"`
	Context   map[string]interface{} `json:"context,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	Timestamp string                 `json:"timestamp,omitempty"`
}

// Error implements the error interface
func (e EngineError) Error() string {
	return e.Message
}

// Error types with proper categorization
const (
	// Input validation errors
	ErrTypeInvalidSeed   = "invalid_seed"
	ErrTypeInvalidParams = "invalid_params"
	ErrTypeValidation    = "validation_error"

	// Wheel errors
	ErrTypeWheelNotFound   = "wheel_not_found"
	ErrTypeSpinNotFound    = "spin_not_found"
	ErrTypeSessionNotFound = "session_not_found"
	ErrTypeSpinInProgress  = "spin_in_progress"
	ErrTypeTooManySessions = "too_many_sessions"
	ErrTypeWheelDisabled   = "wheel_disabled"
	ErrTypeRender          = "render_error"

	// Access errors
	ErrTypeUnauthorized = "unauthorized"

	// System errors
	ErrTypeTimeout            = "timeout"
	ErrTypeInternal           = "internal_error"
	ErrTypeServiceUnavailable = "service_unavailable"
)

// ErrorCategory represents error categories for monitoring
type ErrorCategory string

const (
	CategoryValidation ErrorCategory = "validation"
	CategoryWheel      ErrorCategory = "wheel"
	CategorySystem     ErrorCategory = "system"
	CategoryTimeout    ErrorCategory = "timeout"
	CategorySecurity   ErrorCategory = "security"
)

// GetErrorCategory returns the category for an error type
func GetErrorCategory(errType string) ErrorCategory {
	switch errType {
	case ErrTypeInvalidSeed, ErrTypeInvalidParams, ErrTypeValidation:
		return CategoryValidation
	case ErrTypeWheelNotFound, ErrTypeSpinNotFound, ErrTypeSessionNotFound,
		ErrTypeSpinInProgress, ErrTypeWheelDisabled, ErrTypeRender, ErrTypeTooManySessions:
		return CategoryWheel
	case ErrTypeTimeout:
		return CategoryTimeout
	case ErrTypeUnauthorized:
		return CategorySecurity
	default:
		return CategorySystem
	}
}

// VersionInfo contains engine version information
type VersionInfo struct {
	EngineVersion string `json:"engine_version"`
	GitCommit     string `json:"git_commit,omitempty"`
	BuildTime     string `json:"build_time,omitempty"`
}

// WheelSummary is one catalog entry.
type WheelSummary struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Segments int    `json:"segments"`
	Disabled bool   `json:"disabled"`
}

// WheelsResponse lists the configured wheels
type WheelsResponse struct {
	Wheels        []WheelSummary `json:"wheels"`
	LoadedAt      string         `json:"loaded_at"`
	EngineVersion string         `json:"engine_version"`
}

// WheelResponse carries everything a client needs to draw a wheel
type WheelResponse struct {
	Wheel         config.Wheel    `json:"wheel"`
	Segments      []wheel.Segment `json:"segments"`
	Labels        []wheel.Label   `json:"labels"`
	DurationMs    int64           `json:"duration_ms"`
	CooldownMs    int64           `json:"cooldown_ms"`
	EngineVersion string          `json:"engine_version"`
}

// SpinRequest asks the server for an authoritative spin
type SpinRequest struct {
	ClientSeed string `json:"client_seed,omitempty"`
	Winner     *int   `json:"winner,omitempty"`
}

// SpinResponse is a plan clients animate; it always lands on Winner
type SpinResponse struct {
	ID            string          `json:"id"`
	WheelID       string          `json:"wheel_id"`
	Plan          spin.Plan       `json:"plan"`
	DurationMs    int64           `json:"duration_ms"`
	WinnerValue   string          `json:"winner_value"`
	Amount        decimal.Decimal `json:"amount"`
	Source        store.Source    `json:"source"`
	Proof         *engine.Proof   `json:"proof,omitempty"`
	EngineVersion string          `json:"engine_version"`
}

// VerifyRequest checks either a settled angle or a revealed fair spin
type VerifyRequest struct {
	Angle      *float64 `json:"angle,omitempty"`
	ServerSeed string   `json:"server_seed,omitempty"`
	ClientSeed string   `json:"client_seed,omitempty"`
	Nonce      uint64   `json:"nonce,omitempty"`
}

// VerifyResponse represents a verification result
type VerifyResponse struct {
	WheelID       string        `json:"wheel_id"`
	Index         int           `json:"index"`
	Value         string        `json:"value"`
	Angle         *float64      `json:"angle,omitempty"`
	Proof         *engine.Proof `json:"proof,omitempty"`
	EngineVersion string        `json:"engine_version"`
}

// SeedResponse publishes the active seed commitment
type SeedResponse struct {
	WheelID        string `json:"wheel_id"`
	ServerSeedHash string `json:"server_seed_hash"`
	NextNonce      uint64 `json:"next_nonce"`
	EngineVersion  string `json:"engine_version"`
}

// RotateResponse reveals the retired seed
type RotateResponse struct {
	seedvault.Rotation
	EngineVersion string `json:"engine_version"`
}

// StatsResponse aggregates a wheel's history
type StatsResponse struct {
	WheelID       string            `json:"wheel_id"`
	Stats         []store.IndexStat `json:"stats"`
	TotalSpins    int64             `json:"total_spins"`
	TotalPayout   decimal.Decimal   `json:"total_payout"`
	EngineVersion string            `json:"engine_version"`
}

// SpinsResponse is one page of history
type SpinsResponse struct {
	*store.SpinsPage
	EngineVersion string `json:"engine_version"`
}

// SessionRequest opens a live wheel
type SessionRequest struct {
	WheelID string `json:"wheel_id"`
	Winner  *int   `json:"winner,omitempty"`
}

// SessionResponse is a live wheel's state
type SessionResponse struct {
	ID            string        `json:"id"`
	WheelID       string        `json:"wheel_id"`
	Triggered     *bool         `json:"triggered,omitempty"`
	State         spin.Snapshot `json:"state"`
	EngineVersion string        `json:"engine_version"`
}
