package policy

import (
	stderrors "errors"
	"strings"
	"time"

	"github.com/c360/uploadguard/errors"
	"github.com/c360/uploadguard/pkg/retry"
)

// Kind identifies what went wrong, independent of where it surfaced
type Kind string

// Fault kinds
const (
	KindBackendLoadFailure     Kind = "backend-load-failure"
	KindStreamInitFailure      Kind = "stream-init-failure"
	KindChunkProcessingFailure Kind = "chunk-processing-failure"
	KindFinalizationFailure    Kind = "finalization-failure"
	KindFileTooLarge           Kind = "file-too-large"
	KindInvalidFileType        Kind = "invalid-file-type"
	KindTransportFailure       Kind = "transport-failure"
	KindTimeout                Kind = "timeout"
	KindResourceExhaustion     Kind = "resource-exhaustion"
	KindUnknown                Kind = "unknown"
)

// Action is the recovery decision for a classified fault
type Action string

// Recovery actions
const (
	ActionRetry    Action = "RETRY"
	ActionFallback Action = "FALLBACK"
	ActionAbort    Action = "ABORT"
	ActionIgnore   Action = "IGNORE"
)

// FallbackMode names the degraded path a FALLBACK decision selects
type FallbackMode string

// Fallback modes
const (
	// FallbackWordCount degrades to word-counting with a neutral score
	FallbackWordCount FallbackMode = "word-count"
	// FallbackWholeFile abandons chunked delivery for one-shot analysis
	FallbackWholeFile FallbackMode = "whole-file"
	// FallbackHalveChunk retries the chunk at half the chunk size
	FallbackHalveChunk FallbackMode = "halve-chunk"
	// FallbackNone means the decision carries no degraded path
	FallbackNone FallbackMode = ""
)

// Classified is the policy view of one fault
type Classified struct {
	Kind       Kind
	Severity   errors.Severity
	Retryable  bool
	MaxRetries int
	Message    string
	Context    string
}

// Decision is the outcome of policy evaluation for one fault occurrence
type Decision struct {
	Action   Action
	Fallback FallbackMode
	Delay    time.Duration // backoff before the retry, zero otherwise
}

// Operation context strings passed to Classify. They disambiguate kinds
// the error alone cannot: the same backend failure classifies differently
// during init than mid-stream.
const (
	ContextInit     = "init"
	ContextChunk    = "chunk"
	ContextFinalize = "finalize"
)

// Classify maps a fault and the phase it surfaced in to a policy view.
// Sentinel checks run first; keyword matching over the error text is the
// safety net for faults raised by layers that do not classify.
func Classify(fault error, context string) Classified {
	cl := Classified{
		Kind:       KindUnknown,
		Severity:   errors.SeverityOf(fault),
		Context:    context,
		MaxRetries: 3,
	}
	if fault == nil {
		cl.Severity = errors.SeverityLow
		return cl
	}
	cl.Message = fault.Error()

	switch {
	case stderrors.Is(fault, errors.ErrFileTooLarge):
		cl.Kind = KindFileTooLarge
	case stderrors.Is(fault, errors.ErrInvalidFileType):
		cl.Kind = KindInvalidFileType
	case stderrors.Is(fault, errors.ErrResourceExhausted),
		stderrors.Is(fault, errors.ErrCapacityExceeded):
		cl.Kind = KindResourceExhaustion
	case stderrors.Is(fault, errors.ErrOperationTimeout):
		cl.Kind = KindTimeout
	case stderrors.Is(fault, errors.ErrTransportFailed):
		cl.Kind = KindTransportFailure
	case stderrors.Is(fault, errors.ErrBackendUnavailable):
		// An unavailable backend is a load failure in every phase; the
		// word-count fallback is the only degraded path that works
		// without it.
		cl.Kind = KindBackendLoadFailure
	case stderrors.Is(fault, errors.ErrBackendShape),
		stderrors.Is(fault, errors.ErrNoContent):
		cl.Kind = KindFinalizationFailure
	default:
		cl.Kind = heuristicKind(cl.Message, context)
	}

	cl.Retryable = retryableKind(cl.Kind) && !errors.IsFatal(fault) && !errors.IsInvalid(fault)
	return cl
}

// heuristicKind is the keyword safety net, intentionally coarse
func heuristicKind(message, context string) Kind {
	msg := strings.ToLower(message)
	switch {
	case strings.Contains(msg, "too large"), strings.Contains(msg, "size ceiling"):
		return KindFileTooLarge
	case strings.Contains(msg, "file type"), strings.Contains(msg, "mime"):
		return KindInvalidFileType
	case strings.Contains(msg, "exhausted"), strings.Contains(msg, "out of memory"),
		strings.Contains(msg, "quota"), strings.Contains(msg, "capacity"):
		return KindResourceExhaustion
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "timed out"),
		strings.Contains(msg, "deadline"):
		return KindTimeout
	case strings.Contains(msg, "transport"), strings.Contains(msg, "connection"),
		strings.Contains(msg, "websocket"), strings.Contains(msg, "nats"):
		return KindTransportFailure
	case strings.Contains(msg, "load"), strings.Contains(msg, "instantiate"),
		strings.Contains(msg, "not loaded"):
		return KindBackendLoadFailure
	case strings.Contains(msg, "finali"):
		return KindFinalizationFailure
	case context == ContextInit:
		return KindStreamInitFailure
	case context == ContextChunk:
		return KindChunkProcessingFailure
	case context == ContextFinalize:
		return KindFinalizationFailure
	default:
		return KindUnknown
	}
}

// retryableKind reports whether retry can plausibly help a kind at all
func retryableKind(kind Kind) bool {
	switch kind {
	case KindFileTooLarge, KindInvalidFileType, KindResourceExhaustion:
		return false
	default:
		return true
	}
}

// fallbackFor maps a kind to its degraded path, if it has one
func fallbackFor(kind Kind) FallbackMode {
	switch kind {
	case KindBackendLoadFailure:
		return FallbackWordCount
	case KindStreamInitFailure:
		return FallbackWholeFile
	case KindChunkProcessingFailure:
		return FallbackHalveChunk
	default:
		return FallbackNone
	}
}

// Decide maps a classified fault and the attempts already made to a
// recovery action. Retry wins while attempts remain; kinds with a
// degraded path fall back once retries are spent; dead-end kinds abort.
func Decide(cl Classified, attempts int) Decision {
	if cl.Retryable && attempts < cl.MaxRetries {
		return Decision{
			Action: ActionRetry,
			Delay:  retry.ProgressiveSchedule()[scheduleIndex(attempts)],
		}
	}

	if mode := fallbackFor(cl.Kind); mode != FallbackNone {
		return Decision{Action: ActionFallback, Fallback: mode}
	}

	switch cl.Kind {
	case KindFileTooLarge, KindInvalidFileType, KindResourceExhaustion:
		return Decision{Action: ActionAbort}
	}

	if cl.Severity >= errors.SeverityHigh {
		return Decision{Action: ActionAbort}
	}
	return Decision{Action: ActionIgnore}
}

// scheduleIndex clamps an attempt count onto the progressive schedule
func scheduleIndex(attempts int) int {
	schedule := retry.ProgressiveSchedule()
	if attempts < 0 {
		return 0
	}
	if attempts >= len(schedule) {
		return len(schedule) - 1
	}
	return attempts
}
