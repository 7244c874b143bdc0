// Package errors provides standardized error handling patterns for UploadGuard
// components. It includes error classification, standard error variables, and
// helper functions for consistent error wrapping across the engine.
package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/c360/uploadguard/pkg/retry"
)

// ErrorClass represents the classification of errors for handling purposes
type ErrorClass int

const (
	// ErrorTransient represents temporary errors that may be retried
	ErrorTransient ErrorClass = iota
	// ErrorInvalid represents errors due to invalid input or configuration
	ErrorInvalid
	// ErrorFatal represents unrecoverable errors that should stop processing
	ErrorFatal
)

// String returns the string representation of ErrorClass
func (ec ErrorClass) String() string {
	switch ec {
	case ErrorTransient:
		return "transient"
	case ErrorInvalid:
		return "invalid"
	case ErrorFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Severity indicates how serious a fault is, independent of whether it can
// be retried. A low-severity fault may be non-retryable (a duplicate init)
// and a critical fault may still be retried (a backend crash mid-stream).
type Severity int

const (
	// SeverityLow represents benign faults with no data impact
	SeverityLow Severity = iota
	// SeverityMedium represents faults that degrade a single operation
	SeverityMedium
	// SeverityHigh represents faults that may lose analysis signal
	SeverityHigh
	// SeverityCritical represents faults that threaten the whole engine
	SeverityCritical
)

// String returns the string representation of Severity
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Standard error variables for common conditions
var (
	// Component lifecycle errors
	ErrAlreadyStarted = errors.New("component already started")
	ErrNotStarted     = errors.New("component not started")
	ErrShuttingDown   = errors.New("component is shutting down")

	// Operation lifecycle errors
	ErrDuplicateOperation = errors.New("operation id already exists")
	ErrOperationNotFound  = errors.New("operation not found")
	ErrInvalidState       = errors.New("operation in invalid state")
	ErrCapacityExceeded   = errors.New("operation capacity exceeded")
	ErrOperationTimeout   = errors.New("operation timed out")

	// Backend and handle errors
	ErrInvalidHandle      = errors.New("invalid backend handle")
	ErrBackendUnavailable = errors.New("analysis backend unavailable")
	ErrBackendShape       = errors.New("unrecognized backend result shape")
	ErrNoContent          = errors.New("no content processed")
	ErrChunkOutOfOrder    = errors.New("chunk index out of order")

	// Admission errors
	ErrFileTooLarge    = errors.New("file exceeds size ceiling")
	ErrInvalidFileType = errors.New("file type not allowed")

	// Message and transport errors
	ErrInvalidMessage  = errors.New("invalid message")
	ErrTransportFailed = errors.New("transport delivery failed")

	// Configuration errors
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrMissingConfig = errors.New("missing required configuration")

	// Resource errors
	ErrResourceExhausted  = errors.New("resource exhausted")
	ErrMaxRetriesExceeded = errors.New("maximum retries exceeded")
)

// ClassifiedError wraps an error with its classification
type ClassifiedError struct {
	Class     ErrorClass
	Severity  Severity
	Err       error
	Message   string
	Component string
	Operation string
}

// Error implements the error interface
func (ce *ClassifiedError) Error() string {
	if ce.Message != "" {
		return ce.Message
	}
	return ce.Err.Error()
}

// Unwrap returns the underlying error
func (ce *ClassifiedError) Unwrap() error {
	return ce.Err
}

// IsTransient checks if an error is transient and should be retried
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	// Check for classified error
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorTransient
	}

	// Check for known transient errors
	if errors.Is(err, ErrBackendUnavailable) ||
		errors.Is(err, ErrTransportFailed) ||
		errors.Is(err, ErrOperationTimeout) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	// Check error message for common transient patterns
	errStr := strings.ToLower(err.Error())
	transientPatterns := []string{
		"timeout",
		"connection",
		"transport",
		"temporary",
		"unavailable",
		"busy",
		"retry",
	}

	for _, pattern := range transientPatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}

	return false
}

// IsFatal checks if an error is fatal and should stop processing
func IsFatal(err error) bool {
	if err == nil {
		return false
	}

	// Check for classified error
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorFatal
	}

	// Check for known fatal errors
	if errors.Is(err, ErrInvalidConfig) ||
		errors.Is(err, ErrMissingConfig) ||
		errors.Is(err, ErrFileTooLarge) ||
		errors.Is(err, ErrInvalidFileType) ||
		errors.Is(err, ErrResourceExhausted) {
		return true
	}

	// Check error message for fatal patterns
	errStr := strings.ToLower(err.Error())
	fatalPatterns := []string{
		"fatal",
		"panic",
		"too large",
		"out of memory",
		"exhausted",
		"quota",
	}

	for _, pattern := range fatalPatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}

	return false
}

// IsInvalid checks if an error is due to invalid input
func IsInvalid(err error) bool {
	if err == nil {
		return false
	}

	// Check for classified error
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorInvalid
	}

	// Check for known invalid errors
	if errors.Is(err, ErrInvalidMessage) ||
		errors.Is(err, ErrInvalidState) ||
		errors.Is(err, ErrInvalidHandle) ||
		errors.Is(err, ErrDuplicateOperation) ||
		errors.Is(err, ErrBackendShape) ||
		errors.Is(err, ErrChunkOutOfOrder) {
		return true
	}

	return false
}

// Classify returns the error class for an error
func Classify(err error) ErrorClass {
	if err == nil {
		return ErrorTransient // Default for nil
	}

	if IsInvalid(err) {
		return ErrorInvalid
	}
	if IsFatal(err) {
		return ErrorFatal
	}
	if IsTransient(err) {
		return ErrorTransient
	}

	// Default to transient for unknown errors to allow retry
	return ErrorTransient
}

// newClassified creates a new classified error
// This is an internal helper - use WrapTransient(), WrapFatal(), or WrapInvalid() instead.
func newClassified(class ErrorClass, severity Severity, err error, component, operation, message string) *ClassifiedError {
	return &ClassifiedError{
		Class:     class,
		Severity:  severity,
		Err:       err,
		Message:   message,
		Component: component,
		Operation: operation,
	}
}

// Wrap creates a standardized error with context following the pattern:
// "component.method: action failed: %w"
func Wrap(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s.%s: %s failed: %w", component, method, action, err)
}

// WrapTransient wraps an error as transient with context
func WrapTransient(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorTransient, SeverityMedium, wrappedErr, component, method, wrappedErr.Error())
}

// WrapFatal wraps an error as fatal with context
func WrapFatal(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorFatal, SeverityCritical, wrappedErr, component, method, wrappedErr.Error())
}

// WrapInvalid wraps an error as invalid with context
func WrapInvalid(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorInvalid, SeverityLow, wrappedErr, component, method, wrappedErr.Error())
}

// SeverityOf extracts the severity from an error, falling back to a
// class-derived default for unclassified errors.
func SeverityOf(err error) Severity {
	if err == nil {
		return SeverityLow
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Severity
	}

	switch Classify(err) {
	case ErrorFatal:
		return SeverityCritical
	case ErrorInvalid:
		return SeverityLow
	default:
		return SeverityMedium
	}
}

// RetryConfig defines configuration for retry operations
type RetryConfig struct {
	MaxRetries int
	Schedule   []time.Duration
}

// DefaultRetryConfig returns the engine's progressive backoff defaults.
// The schedule is fixed rather than multiplicative: chunk producers on the
// far side of the transport expect stable, predictable retry timing.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		Schedule:   retry.ProgressiveSchedule(),
	}
}

// ShouldRetry determines if an error should be retried based on config
func (rc RetryConfig) ShouldRetry(err error, attempt int) bool {
	if err == nil || attempt >= rc.MaxRetries {
		return false
	}
	return IsTransient(err)
}

// BackoffDelay returns the delay before the given retry attempt.
// Attempts beyond the schedule reuse the final (capped) entry.
func (rc RetryConfig) BackoffDelay(attempt int) time.Duration {
	if len(rc.Schedule) == 0 {
		return 0
	}
	if attempt < 0 {
		attempt = 0
	}
	if attempt >= len(rc.Schedule) {
		attempt = len(rc.Schedule) - 1
	}
	return rc.Schedule[attempt]
}

// ToRetryConfig converts to the retry framework's Config type so callers
// can hand classified retry policy straight to retry.Do.
func (rc RetryConfig) ToRetryConfig() retry.Config {
	return retry.Config{
		MaxAttempts: rc.MaxRetries + 1, // MaxRetries is additional attempts beyond first
		Schedule:    rc.Schedule,
	}
}
