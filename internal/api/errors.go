package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/MJE43/wheel-of-fortune-go/internal/spin"
	"github.com/MJE43/wheel-of-fortune-go/internal/store"
	"github.com/MJE43/wheel-of-fortune-go/internal/wheel"
)

// writeJSONError writes JSON error response
func writeJSONError(w http.ResponseWriter, data interface{}) error {
	return json.NewEncoder(w).Encode(data)
}

// ErrorBuilder helps construct structured errors with context
type ErrorBuilder struct {
	errType   string
	message   string
	context   map[string]interface{}
	requestID string
	cause     error
}

// NewError creates a new error builder
func NewError(errType, message string) *ErrorBuilder {
	return &ErrorBuilder{
		errType: errType,
		message: message,
		context: make(map[string]interface{}),
	}
}

// WithContext adds context information to the error
func (eb *ErrorBuilder) WithContext(key string, value interface{}) *ErrorBuilder {
	eb.context[key] = value
	return eb
}

// WithRequestID adds request ID to the error
func (eb *ErrorBuilder) WithRequestID(requestID string) *ErrorBuilder {
	eb.requestID = requestID
	return eb
}

// WithCause adds the underlying cause error
func (eb *ErrorBuilder) WithCause(err error) *ErrorBuilder {
	eb.cause = err
	if err != nil {
		eb.context["cause"] = err.Error()
	}
	return eb
}

// Build creates the final EngineError
func (eb *ErrorBuilder) Build() EngineError {
	return EngineError{
		Type:      eb.errType,
		Message:   eb.message,
		Context:   eb.context,
		RequestID: eb.requestID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// classify maps domain errors onto an error type and status.
func classify(err error) (string, int) {
	var engineErr EngineError
	switch {
	case errors.As(err, &engineErr):
		return engineErr.Type, statusForType(engineErr.Type)
	case errors.Is(err, store.ErrNotFound):
		return ErrTypeSpinNotFound, http.StatusNotFound
	case errors.Is(err, spin.ErrSpinning):
		return ErrTypeSpinInProgress, http.StatusConflict
	case errors.Is(err, spin.ErrDisposed):
		return ErrTypeSessionNotFound, http.StatusGone
	case errors.Is(err, spin.ErrWinnerOutOfRange),
		errors.Is(err, spin.ErrTooManySegments),
		errors.Is(err, wheel.ErrNoRewards):
		return ErrTypeValidation, http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return ErrTypeTimeout, http.StatusRequestTimeout
	}
	return ErrTypeInternal, http.StatusInternalServerError
}

func statusForType(errType string) int {
	switch errType {
	case ErrTypeInvalidSeed, ErrTypeInvalidParams, ErrTypeValidation:
		return http.StatusBadRequest
	case ErrTypeWheelNotFound, ErrTypeSpinNotFound, ErrTypeSessionNotFound:
		return http.StatusNotFound
	case ErrTypeSpinInProgress, ErrTypeWheelDisabled:
		return http.StatusConflict
	case ErrTypeUnauthorized:
		return http.StatusUnauthorized
	case ErrTypeTooManySessions:
		return http.StatusTooManyRequests
	case ErrTypeTimeout:
		return http.StatusRequestTimeout
	case ErrTypeServiceUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// ErrorHandler provides centralized error handling with logging
type ErrorHandler struct {
	logger         *log.Logger
	securityLogger *SecurityLogger
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *log.Logger, securityLogger *SecurityLogger) *ErrorHandler {
	return &ErrorHandler{
		logger:         logger,
		securityLogger: securityLogger,
	}
}

// HandleError classifies err and writes the matching HTTP response
func (eh *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetReqID(r.Context())
	errType, status := classify(err)

	var engineErr EngineError
	if errors.As(err, &engineErr) {
		if engineErr.RequestID == "" {
			engineErr.RequestID = requestID
		}
	} else {
		message := err.Error()
		if errType == ErrTypeInternal {
			message = "Internal server error"
		}
		engineErr = NewError(errType, message).
			WithRequestID(requestID).
			WithContext("path", r.URL.Path).
			WithContext("method", r.Method).
			WithCause(err).
			Build()
	}

	eh.logError(r, engineErr, status)
	eh.writeErrorResponse(w, status, engineErr)
}

// HandleValidationError handles validation-specific errors
func (eh *ErrorHandler) HandleValidationError(w http.ResponseWriter, r *http.Request, field, message string) {
	requestID := middleware.GetReqID(r.Context())

	engineErr := NewError(ErrTypeValidation, fmt.Sprintf("Validation failed: %s", message)).
		WithRequestID(requestID).
		WithContext("field", field).
		WithContext("path", r.URL.Path).
		WithContext("method", r.Method).
		Build()

	// Log security event for validation failure
	eh.securityLogger.LogSecurityEvent(
		requestID,
		"validation_failure",
		message,
		map[string]interface{}{
			"field": field,
			"path":  r.URL.Path,
		},
		r.RemoteAddr,
	)

	eh.logError(r, engineErr, http.StatusBadRequest)
	eh.writeErrorResponse(w, http.StatusBadRequest, engineErr)
}

// HandleNotFound reports a missing wheel, spin or session
func (eh *ErrorHandler) HandleNotFound(w http.ResponseWriter, r *http.Request, errType, id string) {
	requestID := middleware.GetReqID(r.Context())

	engineErr := NewError(errType, fmt.Sprintf("%q not found", id)).
		WithRequestID(requestID).
		WithContext("id", id).
		WithContext("path", r.URL.Path).
		Build()

	eh.logError(r, engineErr, http.StatusNotFound)
	eh.writeErrorResponse(w, http.StatusNotFound, engineErr)
}

// HandleSpinError handles failures while planning or persisting a spin
func (eh *ErrorHandler) HandleSpinError(w http.ResponseWriter, r *http.Request, wheelID string, err error) {
	requestID := middleware.GetReqID(r.Context())
	errType, status := classify(err)
	message := err.Error()
	if errType == ErrTypeInternal {
		message = "Spin failed"
	}

	engineErr := NewError(errType, message).
		WithRequestID(requestID).
		WithContext("wheel_id", wheelID).
		WithContext("path", r.URL.Path).
		WithCause(err).
		Build()

	eh.logError(r, engineErr, status)
	eh.writeErrorResponse(w, status, engineErr)
}

// logError logs the error with appropriate level and context
func (eh *ErrorHandler) logError(r *http.Request, engineErr EngineError, status int) {
	category := GetErrorCategory(engineErr.Type)

	logLevel := "ERROR"
	if category == CategoryValidation || status < http.StatusInternalServerError {
		logLevel = "WARN"
	}

	logFields := map[string]interface{}{
		"level":      logLevel,
		"type":       engineErr.Type,
		"category":   category,
		"message":    engineErr.Message,
		"status":     status,
		"request_id": engineErr.RequestID,
		"timestamp":  engineErr.Timestamp,
		"method":     r.Method,
		"path":       r.URL.Path,
		"remote_ip":  r.RemoteAddr,
	}

	// Never log raw seeds - only hashes
	for key, value := range eh.securityLogger.sanitizeContext(engineErr.Context) {
		logFields[key] = value
	}

	eh.logger.Printf(
		"error_occurred level=%s type=%s category=%s status=%d request_id=%s path=%s message=%q context=%+v",
		logLevel, engineErr.Type, category, status, engineErr.RequestID, r.URL.Path, engineErr.Message, logFields,
	)
}

// writeErrorResponse writes the error response as JSON
func (eh *ErrorHandler) writeErrorResponse(w http.ResponseWriter, status int, engineErr EngineError) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Engine-Version", EngineVersion)
	w.Header().Set("X-Error-Type", engineErr.Type)
	w.Header().Set("X-Error-Category", string(GetErrorCategory(engineErr.Type)))
	w.WriteHeader(status)

	if err := writeJSONError(w, engineErr); err != nil {
		eh.logger.Printf("error_response_write_failed type=%s err=%v", engineErr.Type, err)
	}
}

// RecoveryHandler provides panic recovery with structured error logging
func (eh *ErrorHandler) RecoveryHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rvr := recover(); rvr != nil {
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}
				requestID := middleware.GetReqID(r.Context())

				eh.logger.Printf(
					"panic_recovered request_id=%s path=%s method=%s panic=%v",
					requestID, r.URL.Path, r.Method, rvr,
				)

				engineErr := NewError(ErrTypeInternal, "Internal server error").
					WithRequestID(requestID).
					WithContext("panic", fmt.Sprintf("%v", rvr)).
					WithContext("path", r.URL.Path).
					WithContext("method", r.Method).
					Build()

				eh.writeErrorResponse(w, http.StatusInternalServerError, engineErr)
			}
		}()

		next.ServeHTTP(w, r)
	})
}
