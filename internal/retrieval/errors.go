package retrieval

import (
	"errors"
	"fmt"

	"github.com/rohmanhakim/coffee-indicators/internal/fetcher"
	"github.com/rohmanhakim/coffee-indicators/internal/metadata"
	"github.com/rohmanhakim/coffee-indicators/pkg/failure"
)

type RetrievalErrorCause string

const (
	ErrCauseCacheRead  RetrievalErrorCause = "cache read failed"
	ErrCauseCacheWrite RetrievalErrorCause = "cache write failed"
	ErrCauseExtraction RetrievalErrorCause = "upstream extraction failed"
)

// RetrievalError tells the caller which stage failed. Err is the underlying
// cache, fetch or extraction error and stays reachable through errors.As.
type RetrievalError struct {
	Message string
	Cause   RetrievalErrorCause
	Err     error
}

func (e *RetrievalError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("retrieval error: %s", e.Cause)
	}
	return fmt.Sprintf("retrieval error: %s: %v", e.Cause, e.Err)
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}

// Severity follows the underlying error; an unclassified cause is fatal.
func (e *RetrievalError) Severity() failure.Severity {
	var classified failure.ClassifiedError
	if errors.As(e.Err, &classified) {
		return classified.Severity()
	}
	return failure.SeverityFatal
}

// mapRetrievalErrorToMetadataCause maps retrieval-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapRetrievalErrorToMetadataCause(err *RetrievalError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseCacheRead, ErrCauseCacheWrite:
		return metadata.CauseCacheFailure
	case ErrCauseExtraction:
		var fetchErr *fetcher.FetchError
		if errors.As(err.Err, &fetchErr) {
			return metadata.CauseNetworkFailure
		}
		return metadata.CauseContentInvalid
	default:
		return metadata.CauseUnknown
	}
}
