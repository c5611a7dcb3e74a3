package scrape

import (
	"errors"
	"fmt"

	"github.com/rohmanhakim/page-scraper/pkg/failure"
)

type ScrapeErrorCause string

const (
	ErrCausePacingInterrupted ScrapeErrorCause = "pacing interrupted"
	ErrCauseInvalidPageURL    ScrapeErrorCause = "invalid page url"
)

// ScrapeError is raised by the engine itself, outside of any pipeline stage.
type ScrapeError struct {
	Message string
	Cause   ScrapeErrorCause
	URL     string
	Err     error
}

func (e *ScrapeError) Error() string {
	return fmt.Sprintf("scrape error: %s: %s", e.Cause, e.Message)
}

func (e *ScrapeError) Unwrap() error {
	return e.Err
}

func (e *ScrapeError) Severity() failure.Severity {
	return failure.SeverityFatal
}

func (e *ScrapeError) Kind() failure.Kind {
	return failure.KindUnknown
}

// PageError reports which page of a paginated run failed. The pages before it
// are returned alongside.
type PageError struct {
	Page int
	URL  string
	Err  error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("page %d (%s): %v", e.Page, e.URL, e.Err)
}

func (e *PageError) Unwrap() error {
	return e.Err
}

func (e *PageError) Severity() failure.Severity {
	var classified failure.ClassifiedError
	if errors.As(e.Err, &classified) {
		return classified.Severity()
	}
	return failure.SeverityFatal
}

func (e *PageError) Kind() failure.Kind {
	return failure.KindOf(e.Err)
}
