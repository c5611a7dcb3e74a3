package source

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/rohmanhakim/page-scraper/internal/fetcher"
	"github.com/rohmanhakim/page-scraper/internal/render"
	"github.com/rohmanhakim/page-scraper/pkg/failure"
)

/*
Responsibilities
- Expose one "get document" operation over two backends
- Dispatch on Mode, never on backend type
- Surface every backend failure unchanged, wrapped in RendererError

The selector never retries and never inspects document content.
*/

type DocumentSource interface {
	GetDocument(ctx context.Context, pageUrl string, mode Mode) (RawDocument, failure.ClassifiedError)
}

// Compile-time interface check
var _ DocumentSource = (*Selector)(nil)

var (
	errNoFetcher  = errors.New("no HTTP fetcher configured")
	errNoRenderer = errors.New("no headless renderer configured")
)

type Selector struct {
	fetcher  fetcher.Fetcher
	renderer render.Renderer
}

// NewSelector wires the two backends. Either may be nil when the caller never
// uses the corresponding mode; asking for it then fails with a RendererError.
func NewSelector(f fetcher.Fetcher, r render.Renderer) *Selector {
	return &Selector{
		fetcher:  f,
		renderer: r,
	}
}

func (s *Selector) GetDocument(ctx context.Context, pageUrl string, mode Mode) (RawDocument, failure.ClassifiedError) {
	switch mode {
	case ModeHTTP:
		return s.fetch(ctx, pageUrl)
	case ModeRendered:
		return s.render(ctx, pageUrl)
	default:
		return RawDocument{}, &RendererError{
			SubKind: failure.KindUnknown,
			URL:     pageUrl,
			Mode:    mode,
			Err:     fmt.Errorf("unsupported mode %s", mode),
		}
	}
}

func (s *Selector) fetch(ctx context.Context, pageUrl string) (RawDocument, failure.ClassifiedError) {
	if s.fetcher == nil {
		return RawDocument{}, s.transportError(pageUrl, errNoFetcher)
	}

	parsed, err := url.Parse(pageUrl)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		if err == nil {
			err = fmt.Errorf("absolute http(s) URL required")
		}
		return RawDocument{}, s.transportError(pageUrl, &fetcher.FetchError{
			Message:   fmt.Sprintf("invalid URL %q: %v", pageUrl, err),
			Retryable: false,
			Cause:     fetcher.ErrCauseInvalidURL,
			Err:       err,
		})
	}

	result, fetchErr := s.fetcher.Fetch(ctx, *parsed)
	if fetchErr != nil {
		return RawDocument{}, s.transportError(pageUrl, fetchErr)
	}

	finalURL := result.URL()
	return NewRawDocument(finalURL.String(), result.Body(), result.Code(), ModeHTTP), nil
}

func (s *Selector) render(ctx context.Context, pageUrl string) (RawDocument, failure.ClassifiedError) {
	if s.renderer == nil {
		return RawDocument{}, &RendererError{
			SubKind: failure.KindRender,
			URL:     pageUrl,
			Mode:    ModeRendered,
			Err:     errNoRenderer,
		}
	}

	html, renderErr := s.renderer.Render(ctx, pageUrl)
	if renderErr != nil {
		return RawDocument{}, &RendererError{
			SubKind: failure.KindRender,
			URL:     pageUrl,
			Mode:    ModeRendered,
			Err:     renderErr,
		}
	}
	return NewRawDocument(pageUrl, []byte(html), 0, ModeRendered), nil
}

func (s *Selector) transportError(pageUrl string, err error) *RendererError {
	return &RendererError{
		SubKind: failure.KindTransport,
		URL:     pageUrl,
		Mode:    ModeHTTP,
		Err:     err,
	}
}
