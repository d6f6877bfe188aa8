package api

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/MJE43/wheel-of-fortune-go/internal/engine"
	"github.com/MJE43/wheel-of-fortune-go/internal/store"
)

// SecurityLogger handles security-conscious logging with no raw seed exposure
type SecurityLogger struct {
	logger *log.Logger
}

// NewSecurityLogger creates a new security logger
func NewSecurityLogger() *SecurityLogger {
	logger := log.New(os.Stdout, "[SECURITY] ", log.LstdFlags|log.LUTC)
	return &SecurityLogger{
		logger: logger,
	}
}

// LogSpinOperation records an authoritative spin. Client seeds are hashed.
func (sl *SecurityLogger) LogSpinOperation(
	requestID string,
	wheelID string,
	source store.Source,
	serverSeedHash string,
	clientSeed string,
	nonce uint64,
	winner int,
) {
	sl.logger.Printf(
		"spin_operation request_id=%s wheel=%s source=%s server_hash=%s client_hash=%s nonce=%d winner=%d engine_version=%s timestamp=%s",
		requestID,
		wheelID,
		source,
		truncateHash(serverSeedHash),
		sl.hashSeed(clientSeed),
		nonce,
		winner,
		EngineVersion,
		time.Now().UTC().Format(time.RFC3339),
	)
}

// LogVerifyOperation logs verify operations with security-safe parameters
func (sl *SecurityLogger) LogVerifyOperation(
	requestID string,
	wheelID string,
	seeds engine.Seeds,
	nonce uint64,
	index int,
) {
	sl.logger.Printf(
		"verify_operation request_id=%s wheel=%s server_hash=%s client_hash=%s nonce=%d index=%d engine_version=%s timestamp=%s",
		requestID,
		wheelID,
		sl.hashSeed(seeds.Server),
		sl.hashSeed(seeds.Client),
		nonce,
		index,
		EngineVersion,
		time.Now().UTC().Format(time.RFC3339),
	)
}

// LogSeedRotation logs a rotation by hashes only, even though the old seed is now public
func (sl *SecurityLogger) LogSeedRotation(requestID, wheelID, revealedHash, nextHash string) {
	sl.logger.Printf(
		"seed_rotation request_id=%s wheel=%s revealed_hash=%s next_hash=%s engine_version=%s timestamp=%s",
		requestID,
		wheelID,
		truncateHash(revealedHash),
		truncateHash(nextHash),
		EngineVersion,
		time.Now().UTC().Format(time.RFC3339),
	)
}

// LogSecurityEvent logs security-related events (failed validations, suspicious activity)
func (sl *SecurityLogger) LogSecurityEvent(
	requestID string,
	eventType string,
	description string,
	context map[string]interface{},
	remoteAddr string,
) {
	sl.logger.Printf(
		"security_event request_id=%s type=%s description=%q context=%+v remote_addr=%s engine_version=%s timestamp=%s",
		requestID,
		eventType,
		description,
		sl.sanitizeContext(context),
		remoteAddr,
		EngineVersion,
		time.Now().UTC().Format(time.RFC3339),
	)
}

// LogAuditEvent logs audit events for compliance and debugging
func (sl *SecurityLogger) LogAuditEvent(
	requestID string,
	action string,
	resource string,
	outcome string,
	details map[string]interface{},
) {
	sl.logger.Printf(
		"audit_event request_id=%s action=%s resource=%s outcome=%s details=%+v engine_version=%s timestamp=%s",
		requestID,
		action,
		resource,
		outcome,
		sl.sanitizeContext(details),
		EngineVersion,
		time.Now().UTC().Format(time.RFC3339),
	)
}

// LogSystemStartup logs system startup information
func (sl *SecurityLogger) LogSystemStartup(addr string, config map[string]interface{}) {
	sl.logger.Printf(
		"system_startup addr=%s config=%+v engine_version=%s git_commit=%s build_time=%s timestamp=%s",
		addr,
		sl.sanitizeContext(config),
		EngineVersion,
		GitCommit,
		BuildTime,
		time.Now().UTC().Format(time.RFC3339),
	)
}

// LogSystemShutdown logs system shutdown information
func (sl *SecurityLogger) LogSystemShutdown(reason string, uptime time.Duration) {
	sl.logger.Printf(
		"system_shutdown reason=%s uptime=%v engine_version=%s timestamp=%s",
		reason,
		uptime,
		EngineVersion,
		time.Now().UTC().Format(time.RFC3339),
	)
}

// hashSeed creates a SHA256 hash of a seed for logging (first 16 chars for brevity)
func (sl *SecurityLogger) hashSeed(seed string) string {
	return hashSeed(seed)
}

func truncateHash(h string) string {
	if len(h) > 16 {
		return h[:16]
	}
	if h == "" {
		return "none"
	}
	return h
}

// sanitizeContext removes sensitive data from context maps
func (sl *SecurityLogger) sanitizeContext(context map[string]interface{}) map[string]interface{} {
	if context == nil {
		return nil
	}

	sanitized := make(map[string]interface{}, len(context))
	for key, value := range context {
		switch key {
		case "server_seed", "serverSeed", "revealed_server_seed", "client_seed", "clientSeed":
			if strVal, ok := value.(string); ok {
				sanitized[key+"_hash"] = sl.hashSeed(strVal)
			} else {
				sanitized[key+"_hash"] = fmt.Sprintf("non_string_value_%T", value)
			}
		case "secret", "password", "token", "api_key", "authorization", "dsn":
			sanitized[key] = "[REDACTED]"
		case "seeds":
			if seeds, ok := value.(engine.Seeds); ok {
				sanitized["server_seed_hash"] = sl.hashSeed(seeds.Server)
				sanitized["client_seed_hash"] = sl.hashSeed(seeds.Client)
			} else {
				sanitized[key] = "[SEEDS_OBJECT]"
			}
		default:
			sanitized[key] = value
		}
	}

	return sanitized
}

// hashSeed creates a SHA256 hash of a seed for logging purposes
func hashSeed(seed string) string {
	if seed == "" {
		return "empty"
	}
	hash := sha256.Sum256([]byte(seed))
	return hex.EncodeToString(hash[:])[:16]
}
