package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestErrorClass_String(t *testing.T) {
	tests := []struct {
		class    ErrorClass
		expected string
	}{
		{ErrorTransient, "transient"},
		{ErrorInvalid, "invalid"},
		{ErrorFatal, "fatal"},
		{ErrorClass(999), "unknown"},
	}

	for _, test := range tests {
		t.Run(test.expected, func(t *testing.T) {
			result := test.class.String()
			if result != test.expected {
				t.Errorf("expected %s, got %s", test.expected, result)
			}
		})
	}
}

func TestSeverity_String(t *testing.T) {
	tests := []struct {
		severity Severity
		expected string
	}{
		{SeverityLow, "low"},
		{SeverityMedium, "medium"},
		{SeverityHigh, "high"},
		{SeverityCritical, "critical"},
		{Severity(999), "unknown"},
	}

	for _, test := range tests {
		t.Run(test.expected, func(t *testing.T) {
			if got := test.severity.String(); got != test.expected {
				t.Errorf("expected %s, got %s", test.expected, got)
			}
		})
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"backend unavailable", ErrBackendUnavailable, true},
		{"transport failed", ErrTransportFailed, true},
		{"operation timeout", ErrOperationTimeout, true},
		{"context deadline exceeded", context.DeadlineExceeded, true},
		{"duplicate operation", ErrDuplicateOperation, false},
		{"file too large", ErrFileTooLarge, false},
		{"timeout in message", fmt.Errorf("connection timeout occurred"), true},
		{"unavailable in message", fmt.Errorf("service unavailable right now"), true},
		{"plain error", fmt.Errorf("something happened"), false},
		{"wrapped transient sentinel", fmt.Errorf("call: %w", ErrBackendUnavailable), true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := IsTransient(test.err); got != test.expected {
				t.Errorf("IsTransient(%v) = %v, expected %v", test.err, got, test.expected)
			}
		})
	}
}

func TestIsFatal(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"invalid config", ErrInvalidConfig, true},
		{"missing config", ErrMissingConfig, true},
		{"file too large", ErrFileTooLarge, true},
		{"invalid file type", ErrInvalidFileType, true},
		{"resource exhausted", ErrResourceExhausted, true},
		{"backend unavailable", ErrBackendUnavailable, false},
		{"fatal in message", fmt.Errorf("fatal condition encountered"), true},
		{"quota in message", fmt.Errorf("storage quota reached"), true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := IsFatal(test.err); got != test.expected {
				t.Errorf("IsFatal(%v) = %v, expected %v", test.err, got, test.expected)
			}
		})
	}
}

func TestIsInvalid(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"invalid message", ErrInvalidMessage, true},
		{"invalid state", ErrInvalidState, true},
		{"invalid handle", ErrInvalidHandle, true},
		{"duplicate operation", ErrDuplicateOperation, true},
		{"backend shape", ErrBackendShape, true},
		{"chunk out of order", ErrChunkOutOfOrder, true},
		{"transport failed", ErrTransportFailed, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := IsInvalid(test.err); got != test.expected {
				t.Errorf("IsInvalid(%v) = %v, expected %v", test.err, got, test.expected)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorClass
	}{
		{"nil defaults transient", nil, ErrorTransient},
		{"invalid wins", ErrInvalidState, ErrorInvalid},
		{"fatal", ErrFileTooLarge, ErrorFatal},
		{"transient", ErrBackendUnavailable, ErrorTransient},
		{"unknown defaults transient", fmt.Errorf("mystery"), ErrorTransient},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := Classify(test.err); got != test.expected {
				t.Errorf("Classify(%v) = %v, expected %v", test.err, got, test.expected)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	t.Run("nil passes through", func(t *testing.T) {
		if Wrap(nil, "Manager", "InitOperation", "admit") != nil {
			t.Error("expected nil for nil error")
		}
	})

	t.Run("formats component context", func(t *testing.T) {
		err := Wrap(ErrOperationNotFound, "Manager", "GetOperation", "lookup")
		want := "Manager.GetOperation: lookup failed: operation not found"
		if err.Error() != want {
			t.Errorf("got %q, want %q", err.Error(), want)
		}
		if !errors.Is(err, ErrOperationNotFound) {
			t.Error("expected wrapped sentinel to survive errors.Is")
		}
	})
}

func TestClassifiedWrappers(t *testing.T) {
	base := fmt.Errorf("boom")

	t.Run("transient", func(t *testing.T) {
		err := WrapTransient(base, "Adapter", "ProcessChunk", "call")
		if !IsTransient(err) {
			t.Error("expected transient classification")
		}
		if SeverityOf(err) != SeverityMedium {
			t.Errorf("expected medium severity, got %v", SeverityOf(err))
		}
	})

	t.Run("fatal", func(t *testing.T) {
		err := WrapFatal(base, "Manager", "InitOperation", "admit")
		if !IsFatal(err) {
			t.Error("expected fatal classification")
		}
		if SeverityOf(err) != SeverityCritical {
			t.Errorf("expected critical severity, got %v", SeverityOf(err))
		}
	})

	t.Run("invalid", func(t *testing.T) {
		err := WrapInvalid(base, "Dispatcher", "Dispatch", "parse")
		if !IsInvalid(err) {
			t.Error("expected invalid classification")
		}
		if SeverityOf(err) != SeverityLow {
			t.Errorf("expected low severity, got %v", SeverityOf(err))
		}
	})

	t.Run("classification survives further wrapping", func(t *testing.T) {
		err := fmt.Errorf("outer: %w", WrapFatal(base, "Manager", "InitOperation", "admit"))
		if !IsFatal(err) {
			t.Error("expected fatal classification through wrap")
		}
	})

	t.Run("message carries component context", func(t *testing.T) {
		err := WrapInvalid(ErrChunkOutOfOrder, "Manager", "ProcessChunk", "sequence check")
		if !strings.Contains(err.Error(), "Manager.ProcessChunk") {
			t.Errorf("expected component context in %q", err.Error())
		}
	})

	t.Run("nil passes through", func(t *testing.T) {
		if WrapTransient(nil, "a", "b", "c") != nil {
			t.Error("expected nil")
		}
		if WrapFatal(nil, "a", "b", "c") != nil {
			t.Error("expected nil")
		}
		if WrapInvalid(nil, "a", "b", "c") != nil {
			t.Error("expected nil")
		}
	})
}

func TestRetryConfig(t *testing.T) {
	cfg := DefaultRetryConfig()

	t.Run("progressive schedule", func(t *testing.T) {
		want := []time.Duration{time.Second, 2 * time.Second, 5 * time.Second, 10 * time.Second}
		if len(cfg.Schedule) != len(want) {
			t.Fatalf("expected %d entries, got %d", len(want), len(cfg.Schedule))
		}
		for i, d := range want {
			if cfg.Schedule[i] != d {
				t.Errorf("schedule[%d] = %v, want %v", i, cfg.Schedule[i], d)
			}
		}
	})

	t.Run("should retry transient under limit", func(t *testing.T) {
		if !cfg.ShouldRetry(ErrBackendUnavailable, 0) {
			t.Error("expected retry on first attempt")
		}
		if cfg.ShouldRetry(ErrBackendUnavailable, 3) {
			t.Error("expected no retry at max")
		}
		if cfg.ShouldRetry(ErrInvalidState, 0) {
			t.Error("expected no retry for invalid error")
		}
		if cfg.ShouldRetry(nil, 0) {
			t.Error("expected no retry for nil")
		}
	})

	t.Run("backoff clamps to schedule", func(t *testing.T) {
		if cfg.BackoffDelay(0) != time.Second {
			t.Errorf("attempt 0 = %v", cfg.BackoffDelay(0))
		}
		if cfg.BackoffDelay(99) != 10*time.Second {
			t.Errorf("attempt 99 = %v", cfg.BackoffDelay(99))
		}
		if cfg.BackoffDelay(-1) != time.Second {
			t.Errorf("negative attempt = %v", cfg.BackoffDelay(-1))
		}
	})

	t.Run("converts to retry config", func(t *testing.T) {
		rc := cfg.ToRetryConfig()
		if rc.MaxAttempts != 4 {
			t.Errorf("expected 4 attempts, got %d", rc.MaxAttempts)
		}
	})
}
