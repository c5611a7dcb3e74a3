package fetcher

import (
	"fmt"

	"github.com/rohmanhakim/page-scraper/internal/metadata"
	"github.com/rohmanhakim/page-scraper/pkg/failure"
)

type FetchErrorCause string

const (
	ErrCauseInvalidURL            FetchErrorCause = "invalid url"
	ErrCauseTimeout               FetchErrorCause = "timeout"
	ErrCauseCancelled             FetchErrorCause = "cancelled"
	ErrCauseNetworkFailure        FetchErrorCause = "network issues"
	ErrCauseReadResponseBodyError FetchErrorCause = "failed to read response body"
	ErrCauseBodyTooLarge          FetchErrorCause = "response body too large"
	ErrCauseRedirectLimitExceeded FetchErrorCause = "reached redirect limit"
	ErrCauseRequestPageForbidden  FetchErrorCause = "forbidden"
	ErrCauseRequest4xx            FetchErrorCause = "4xx"
	ErrCauseRequestTooMany        FetchErrorCause = "too many requests"
	ErrCauseRequest5xx            FetchErrorCause = "5xx"
)

type FetchError struct {
	Message   string
	Retryable bool
	Cause     FetchErrorCause
	// StatusCode is set when the server answered with a non-success status.
	StatusCode int
	// Err is the underlying transport error, if any.
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetcher error: %s: %s", e.Cause, e.Message)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func (e *FetchError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *FetchError) Kind() failure.Kind {
	return failure.KindTransport
}

// mapFetchErrorToMetadataCause maps fetcher-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapFetchErrorToMetadataCause(err *FetchError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseTimeout,
		ErrCauseNetworkFailure,
		ErrCauseReadResponseBodyError,
		ErrCauseRedirectLimitExceeded,
		ErrCauseRequestPageForbidden,
		ErrCauseRequest4xx,
		ErrCauseRequestTooMany,
		ErrCauseRequest5xx:
		return metadata.CauseNetworkFailure
	case ErrCauseBodyTooLarge:
		return metadata.CauseContentInvalid
	case ErrCauseInvalidURL:
		return metadata.CauseInvariantViolation
	default:
		return metadata.CauseUnknown
	}
}
