package exporter

import (
	"fmt"

	"github.com/rohmanhakim/page-scraper/internal/metadata"
	"github.com/rohmanhakim/page-scraper/pkg/failure"
)

type ExportErrorCause string

const (
	ErrCausePathError    ExportErrorCause = "path error"
	ErrCauseDiskFull     ExportErrorCause = "disk is full"
	ErrCauseWriteFailure ExportErrorCause = "write failed"
	ErrCauseEncoding     ExportErrorCause = "encoding failed"
)

// ExportError is the I/O failure of an export.
type ExportError struct {
	Message   string
	Retryable bool
	Cause     ExportErrorCause
	Path      string
	Err       error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export error: %s: %s", e.Cause, e.Message)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

func (e *ExportError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *ExportError) Kind() failure.Kind {
	return failure.KindIO
}

// mapExportErrorToMetadataCause maps exporter-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapExportErrorToMetadataCause(err *ExportError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseDiskFull, ErrCauseWriteFailure, ErrCausePathError:
		return metadata.CauseStorageFailure
	case ErrCauseEncoding:
		return metadata.CauseInvariantViolation
	default:
		return metadata.CauseUnknown
	}
}
