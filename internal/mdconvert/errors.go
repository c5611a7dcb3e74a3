package mdconvert

import (
	"fmt"

	"github.com/rohmanhakim/page-scraper/internal/metadata"
	"github.com/rohmanhakim/page-scraper/pkg/failure"
)

type ConversionErrorCause string

const (
	ErrCauseConversionFailure ConversionErrorCause = "conversion failed"
)

type ConversionError struct {
	Message   string
	Retryable bool
	Cause     ConversionErrorCause
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("conversion error: %s: %s", e.Cause, e.Message)
}

func (e *ConversionError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *ConversionError) Kind() failure.Kind {
	return failure.KindExtraction
}

func mapConversionErrorToMetadataCause(err *ConversionError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseConversionFailure:
		return metadata.CauseContentInvalid
	default:
		return metadata.CauseUnknown
	}
}
