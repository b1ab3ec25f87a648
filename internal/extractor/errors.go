package extractor

import (
	"fmt"

	"github.com/rohmanhakim/coffee-indicators/internal/metadata"
	"github.com/rohmanhakim/coffee-indicators/pkg/failure"
)

type ExtractionErrorCause string

const (
	// ErrCauseSelectorNotFound means the document structure changed: a ParseError.
	ErrCauseSelectorNotFound ExtractionErrorCause = "selector not found"
	ErrCauseMissingField     ExtractionErrorCause = "missing field"
	ErrCauseMoneyParse       ExtractionErrorCause = "malformed money value"
	ErrCauseDateParse        ExtractionErrorCause = "malformed date value"
	ErrCauseInvalidRecord    ExtractionErrorCause = "invalid record"
)

// ExtractionError is always fatal: the same document yields the same failure.
type ExtractionError struct {
	Message string
	Cause   ExtractionErrorCause
	Field   string
}

func (e *ExtractionError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("extraction error: %s: %s", e.Cause, e.Field)
	}
	return fmt.Sprintf("extraction error: %s", e.Cause)
}

func (e *ExtractionError) Severity() failure.Severity {
	return failure.SeverityFatal
}

func (e *ExtractionError) IsRetryable() bool {
	return false
}

// mapExtractionErrorToMetadataCause maps extractor-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapExtractionErrorToMetadataCause(err *ExtractionError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseSelectorNotFound, ErrCauseMoneyParse, ErrCauseDateParse:
		return metadata.CauseContentInvalid
	case ErrCauseMissingField, ErrCauseInvalidRecord:
		return metadata.CauseInvariantViolation
	default:
		return metadata.CauseUnknown
	}
}
