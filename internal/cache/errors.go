package cache

import (
	"fmt"

	"github.com/rohmanhakim/coffee-indicators/internal/metadata"
	"github.com/rohmanhakim/coffee-indicators/pkg/failure"
)

type CacheErrorCause string

const (
	ErrCauseConnectFailure CacheErrorCause = "backend unreachable"
	ErrCauseReadFailure    CacheErrorCause = "read failure"
	ErrCauseWriteFailure   CacheErrorCause = "write failure"
	ErrCauseEncodeFailure  CacheErrorCause = "encode failure"
	ErrCauseDecodeFailure  CacheErrorCause = "decode failure"
)

type CacheError struct {
	Message   string
	Retryable bool
	Cause     CacheErrorCause
	Key       string
}

func (e *CacheError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("cache error: %s: %s", e.Cause, e.Message)
	}
	return fmt.Sprintf("cache error: %s: %s: %s", e.Cause, e.Key, e.Message)
}

func (e *CacheError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *CacheError) IsRetryable() bool {
	return e.Retryable
}

// mapCacheErrorToMetadataCause maps cache-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapCacheErrorToMetadataCause(err *CacheError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseConnectFailure, ErrCauseReadFailure, ErrCauseWriteFailure,
		ErrCauseEncodeFailure, ErrCauseDecodeFailure:
		return metadata.CauseCacheFailure
	default:
		return metadata.CauseUnknown
	}
}

func readError(key string, err error) *CacheError {
	return &CacheError{
		Message:   err.Error(),
		Retryable: true,
		Cause:     ErrCauseReadFailure,
		Key:       key,
	}
}

func writeError(key string, err error) *CacheError {
	return &CacheError{
		Message:   err.Error(),
		Retryable: true,
		Cause:     ErrCauseWriteFailure,
		Key:       key,
	}
}
