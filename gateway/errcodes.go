package gateway

import (
	stderrors "errors"

	"github.com/c360/uploadguard/errors"
)

// Wire error codes carried in ErrorInfo.Code. Producers branch on these,
// so the set is closed and additions are a protocol change.
const (
	CodeFileTooLarge       = "FILE_TOO_LARGE"
	CodeInvalidFileType    = "INVALID_FILE_TYPE"
	CodeDuplicateOperation = "DUPLICATE_OPERATION"
	CodeOperationNotFound  = "OPERATION_NOT_FOUND"
	CodeInvalidState       = "INVALID_STATE"
	CodeCapacityExceeded   = "CAPACITY_EXCEEDED"
	CodeChunkOutOfOrder    = "CHUNK_OUT_OF_ORDER"
	CodeOperationTimeout   = "OPERATION_TIMEOUT"
	CodeBackendUnavailable = "BACKEND_UNAVAILABLE"
	CodeNoContent          = "NO_CONTENT"
	CodeInvalidMessage     = "INVALID_MESSAGE"
	CodeInvalidConfig      = "INVALID_CONFIG"
	CodeInternal           = "INTERNAL"
)

// errorCode maps an engine error to its wire code
func errorCode(err error) string {
	switch {
	case stderrors.Is(err, errors.ErrFileTooLarge):
		return CodeFileTooLarge
	case stderrors.Is(err, errors.ErrInvalidFileType):
		return CodeInvalidFileType
	case stderrors.Is(err, errors.ErrDuplicateOperation):
		return CodeDuplicateOperation
	case stderrors.Is(err, errors.ErrOperationNotFound):
		return CodeOperationNotFound
	case stderrors.Is(err, errors.ErrInvalidState):
		return CodeInvalidState
	case stderrors.Is(err, errors.ErrCapacityExceeded),
		stderrors.Is(err, errors.ErrResourceExhausted):
		return CodeCapacityExceeded
	case stderrors.Is(err, errors.ErrChunkOutOfOrder):
		return CodeChunkOutOfOrder
	case stderrors.Is(err, errors.ErrOperationTimeout):
		return CodeOperationTimeout
	case stderrors.Is(err, errors.ErrBackendUnavailable):
		return CodeBackendUnavailable
	case stderrors.Is(err, errors.ErrNoContent):
		return CodeNoContent
	case stderrors.Is(err, errors.ErrInvalidMessage):
		return CodeInvalidMessage
	case stderrors.Is(err, errors.ErrInvalidConfig), stderrors.Is(err, errors.ErrMissingConfig):
		return CodeInvalidConfig
	default:
		return CodeInternal
	}
}
