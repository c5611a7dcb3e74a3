package fileutil

import (
	"fmt"

	"github.com/rohmanhakim/page-scraper/pkg/failure"
)

type FileErrorCause string

const (
	ErrCausePathError FileErrorCause = "path error"
)

type FileError struct {
	Message   string
	Retryable bool
	Cause     FileErrorCause
}

func (e *FileError) Error() string {
	return fmt.Sprintf("file error: %s: %s", e.Cause, e.Message)
}

func (e *FileError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *FileError) Kind() failure.Kind {
	return failure.KindIO
}
