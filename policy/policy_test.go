package policy

import (
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/c360/uploadguard/errors"
)

func TestClassify_Sentinels(t *testing.T) {
	tests := []struct {
		name    string
		fault   error
		context string
		kind    Kind
	}{
		{"file too large", errors.ErrFileTooLarge, ContextInit, KindFileTooLarge},
		{"invalid file type", errors.ErrInvalidFileType, ContextChunk, KindInvalidFileType},
		{"resource exhausted", errors.ErrResourceExhausted, ContextChunk, KindResourceExhaustion},
		{"capacity exceeded", errors.ErrCapacityExceeded, ContextInit, KindResourceExhaustion},
		{"operation timeout", errors.ErrOperationTimeout, ContextChunk, KindTimeout},
		{"transport failed", errors.ErrTransportFailed, ContextChunk, KindTransportFailure},
		{"backend down at init", errors.ErrBackendUnavailable, ContextInit, KindBackendLoadFailure},
		{"backend down mid-stream", errors.ErrBackendUnavailable, ContextChunk, KindBackendLoadFailure},
		{"backend down at finalize", errors.ErrBackendUnavailable, ContextFinalize, KindBackendLoadFailure},
		{"backend down no context", errors.ErrBackendUnavailable, "", KindBackendLoadFailure},
		{"bad result shape", errors.ErrBackendShape, ContextFinalize, KindFinalizationFailure},
		{"no content", errors.ErrNoContent, ContextFinalize, KindFinalizationFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cl := Classify(tt.fault, tt.context)
			assert.Equal(t, tt.kind, cl.Kind)
			assert.Equal(t, tt.context, cl.Context)
		})
	}
}

func TestClassify_WrappedSentinels(t *testing.T) {
	wrapped := errors.WrapFatal(errors.ErrFileTooLarge, "Manager", "InitOperation", "admission")
	cl := Classify(wrapped, ContextInit)
	assert.Equal(t, KindFileTooLarge, cl.Kind)
	assert.False(t, cl.Retryable)
}

func TestClassify_Heuristics(t *testing.T) {
	tests := []struct {
		name    string
		message string
		context string
		kind    Kind
	}{
		{"size keyword", "payload too large for scan", ContextInit, KindFileTooLarge},
		{"mime keyword", "mime mismatch on first chunk", ContextChunk, KindInvalidFileType},
		{"memory keyword", "allocator out of memory", ContextChunk, KindResourceExhaustion},
		{"deadline keyword", "deadline exceeded waiting for backend", ContextChunk, KindTimeout},
		{"websocket keyword", "websocket write broken pipe", ContextChunk, KindTransportFailure},
		{"load keyword", "module failed to load", ContextInit, KindBackendLoadFailure},
		{"finalize keyword", "finalize rejected state", ContextFinalize, KindFinalizationFailure},
		{"context fallback init", "something odd", ContextInit, KindStreamInitFailure},
		{"context fallback chunk", "something odd", ContextChunk, KindChunkProcessingFailure},
		{"no signal at all", "something odd", "", KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cl := Classify(fmt.Errorf("%s", tt.message), tt.context)
			assert.Equal(t, tt.kind, cl.Kind)
		})
	}
}

func TestClassify_Retryability(t *testing.T) {
	t.Run("dead-end kinds never retry", func(t *testing.T) {
		assert.False(t, Classify(errors.ErrFileTooLarge, ContextInit).Retryable)
		assert.False(t, Classify(errors.ErrInvalidFileType, ContextChunk).Retryable)
		assert.False(t, Classify(errors.ErrCapacityExceeded, ContextInit).Retryable)
	})

	t.Run("transient backend faults retry", func(t *testing.T) {
		assert.True(t, Classify(errors.ErrBackendUnavailable, ContextChunk).Retryable)
		assert.True(t, Classify(errors.ErrOperationTimeout, ContextChunk).Retryable)
	})

	t.Run("invalid classification blocks retry", func(t *testing.T) {
		fault := errors.WrapInvalid(stderrors.New("duplicate"), "Manager", "InitOperation", "admission")
		assert.False(t, Classify(fault, ContextInit).Retryable)
	})

	t.Run("nil fault", func(t *testing.T) {
		cl := Classify(nil, ContextChunk)
		assert.Equal(t, KindUnknown, cl.Kind)
		assert.Empty(t, cl.Message)
	})
}

func TestDecide_RetryThenFallback(t *testing.T) {
	cl := Classify(errors.ErrBackendUnavailable, ContextChunk)

	// Progressive backoff while attempts remain
	expected := []time.Duration{time.Second, 2 * time.Second, 5 * time.Second}
	for attempts, delay := range expected {
		d := Decide(cl, attempts)
		assert.Equal(t, ActionRetry, d.Action, "attempt %d", attempts)
		assert.Equal(t, delay, d.Delay, "attempt %d", attempts)
	}

	// Retries spent: an unavailable backend degrades to word counting
	// no matter which phase surfaced it.
	d := Decide(cl, 3)
	assert.Equal(t, ActionFallback, d.Action)
	assert.Equal(t, FallbackWordCount, d.Fallback)

	mid := Classify(errors.ErrBackendUnavailable, ContextFinalize)
	assert.Equal(t, KindBackendLoadFailure, mid.Kind)
	assert.Equal(t, FallbackWordCount, Decide(mid, 3).Fallback)
}

func TestDecide_FallbackModes(t *testing.T) {
	tests := []struct {
		kind Kind
		mode FallbackMode
	}{
		{KindBackendLoadFailure, FallbackWordCount},
		{KindStreamInitFailure, FallbackWholeFile},
		{KindChunkProcessingFailure, FallbackHalveChunk},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			d := Decide(Classified{Kind: tt.kind, Retryable: false}, 0)
			assert.Equal(t, ActionFallback, d.Action)
			assert.Equal(t, tt.mode, d.Fallback)
		})
	}
}

func TestDecide_Aborts(t *testing.T) {
	for _, kind := range []Kind{KindFileTooLarge, KindInvalidFileType, KindResourceExhaustion} {
		t.Run(string(kind), func(t *testing.T) {
			d := Decide(Classified{Kind: kind, Retryable: false}, 0)
			assert.Equal(t, ActionAbort, d.Action)
			assert.Equal(t, FallbackNone, d.Fallback)
		})
	}

	t.Run("high severity without a path aborts", func(t *testing.T) {
		d := Decide(Classified{Kind: KindUnknown, Severity: errors.SeverityCritical}, 5)
		assert.Equal(t, ActionAbort, d.Action)
	})
}

func TestDecide_Ignore(t *testing.T) {
	d := Decide(Classified{Kind: KindUnknown, Severity: errors.SeverityLow}, 5)
	assert.Equal(t, ActionIgnore, d.Action)
}

func TestDecide_CustomRetryBudget(t *testing.T) {
	cl := Classified{Kind: KindTransportFailure, Retryable: true, MaxRetries: 1}

	assert.Equal(t, ActionRetry, Decide(cl, 0).Action)
	d := Decide(cl, 1)
	assert.NotEqual(t, ActionRetry, d.Action, "budget of one means one retry")
}
