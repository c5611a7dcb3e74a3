package render

import (
	"fmt"

	"github.com/rohmanhakim/page-scraper/internal/metadata"
	"github.com/rohmanhakim/page-scraper/pkg/failure"
)

type RenderErrorCause string

const (
	ErrCauseBrowserLaunch     RenderErrorCause = "browser launch failed"
	ErrCausePageCreate        RenderErrorCause = "page creation failed"
	ErrCauseNavigationTimeout RenderErrorCause = "navigation timeout"
	ErrCauseNavigation        RenderErrorCause = "navigation failed"
	ErrCauseCancelled         RenderErrorCause = "cancelled"
	ErrCauseScript            RenderErrorCause = "script or DOM failure"
	ErrCauseClosed            RenderErrorCause = "renderer closed"
)

type RenderError struct {
	Message   string
	Retryable bool
	Cause     RenderErrorCause
	Err       error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render error: %s: %s", e.Cause, e.Message)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

func (e *RenderError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *RenderError) Kind() failure.Kind {
	return failure.KindRender
}

// mapRenderErrorToMetadataCause maps render-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapRenderErrorToMetadataCause(err *RenderError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseCancelled:
		return metadata.CauseUnknown
	case ErrCauseClosed:
		return metadata.CauseInvariantViolation
	default:
		return metadata.CauseRenderFailure
	}
}
