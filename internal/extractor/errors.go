package extractor

import (
	"fmt"

	"github.com/rohmanhakim/page-scraper/internal/metadata"
	"github.com/rohmanhakim/page-scraper/pkg/failure"
)

// SelectorSyntaxError reports a malformed CSS selector.
type SelectorSyntaxError struct {
	Selector string
	Message  string
}

func (e *SelectorSyntaxError) Error() string {
	return fmt.Sprintf("invalid selector %q: %s", e.Selector, e.Message)
}

func (e *SelectorSyntaxError) Severity() failure.Severity {
	return failure.SeverityFatal
}

func (e *SelectorSyntaxError) Kind() failure.Kind {
	return failure.KindExtraction
}

type ExtractionErrorCause string

const (
	ErrCauseSelectorSyntax    ExtractionErrorCause = "selector syntax"
	ErrCauseDocumentParse     ExtractionErrorCause = "document parse"
	ErrCauseConversionFailure ExtractionErrorCause = "conversion failed"
)

type ExtractionError struct {
	Message   string
	Retryable bool
	Cause     ExtractionErrorCause
	// Err is the underlying failure, a *SelectorSyntaxError for ErrCauseSelectorSyntax.
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction error: %s: %s", e.Cause, e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

func (e *ExtractionError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *ExtractionError) Kind() failure.Kind {
	return failure.KindExtraction
}

// mapExtractionErrorToMetadataCause maps extractor-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapExtractionErrorToMetadataCause(err *ExtractionError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseSelectorSyntax:
		return metadata.CauseSelectorInvalid
	case ErrCauseDocumentParse, ErrCauseConversionFailure:
		return metadata.CauseContentInvalid
	default:
		return metadata.CauseUnknown
	}
}
