package source

import (
	"errors"
	"fmt"

	"github.com/rohmanhakim/page-scraper/pkg/failure"
)

// RendererError reports that no document could be obtained.
// SubKind tells transport failures (HTTP path) from render-engine failures
// (browser path); Err is the backend's own error.
type RendererError struct {
	SubKind failure.Kind
	URL     string
	Mode    Mode
	Err     error
}

func (e *RendererError) Error() string {
	return fmt.Sprintf("renderer error (%s via %s) for %s: %v", e.SubKind, e.Mode, e.URL, e.Err)
}

func (e *RendererError) Unwrap() error {
	return e.Err
}

func (e *RendererError) Severity() failure.Severity {
	var classified failure.ClassifiedError
	if errors.As(e.Err, &classified) {
		return classified.Severity()
	}
	return failure.SeverityFatal
}

func (e *RendererError) Kind() failure.Kind {
	return e.SubKind
}
