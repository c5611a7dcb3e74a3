package render

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rohmanhakim/page-scraper/internal/metadata"
	"github.com/rohmanhakim/page-scraper/pkg/failure"
)

/*
Responsibilities
- Own one headless browser, launched on first use
- Load a URL in a fresh tab, let scripts run, serialize the DOM
- Bound every render by a navigation timeout
- Classify launch, navigation and script failures

Each Render opens and closes its own tab, so concurrent renders never
share page state. Close releases the browser process.
*/

const DefaultNavigationTimeout = 30 * time.Second

type Renderer interface {
	Render(ctx context.Context, pageUrl string) (string, failure.ClassifiedError)
}

// Compile-time interface check
var _ Renderer = (*RodRenderer)(nil)

type RodOptions struct {
	// Timeout bounds navigation, load and serialization of one page.
	Timeout time.Duration
	// Bin is the browser executable; empty means auto-detect (or download).
	Bin string
	// NoSandbox disables the Chromium sandbox, needed when running as root in containers.
	NoSandbox bool
	UserAgent string
}

type RodRenderer struct {
	metadataSink metadata.MetadataSink
	opts         RodOptions

	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
	closed   bool
}

func NewRodRenderer(metadataSink metadata.MetadataSink, opts RodOptions) *RodRenderer {
	if metadataSink == nil {
		metadataSink = &metadata.NoopSink{}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultNavigationTimeout
	}
	return &RodRenderer{
		metadataSink: metadataSink,
		opts:         opts,
	}
}

func (r *RodRenderer) Render(ctx context.Context, pageUrl string) (string, failure.ClassifiedError) {
	startTime := time.Now()

	html, err := r.render(ctx, pageUrl)

	r.metadataSink.RecordFetch(pageUrl, "rendered", 0, time.Since(startTime), len(html))
	if err != nil {
		r.metadataSink.RecordError(
			time.Now(),
			"render",
			"RodRenderer.Render",
			mapRenderErrorToMetadataCause(err),
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, pageUrl),
			},
		)
		return "", err
	}
	return html, nil
}

func (r *RodRenderer) render(ctx context.Context, pageUrl string) (string, *RenderError) {
	browser, err := r.ensureBrowser()
	if err != nil {
		return "", err
	}

	page, pageErr := browser.Page(proto.TargetCreateTarget{})
	if pageErr != nil {
		return "", &RenderError{
			Message:   fmt.Sprintf("failed to create page: %v", pageErr),
			Retryable: true,
			Cause:     ErrCausePageCreate,
			Err:       pageErr,
		}
	}
	defer page.Close()

	if r.opts.UserAgent != "" {
		if uaErr := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: r.opts.UserAgent}); uaErr != nil {
			return "", &RenderError{
				Message:   fmt.Sprintf("failed to set user agent: %v", uaErr),
				Retryable: false,
				Cause:     ErrCausePageCreate,
				Err:       uaErr,
			}
		}
	}

	bounded := page.Context(ctx).Timeout(r.opts.Timeout)
	defer bounded.CancelTimeout()

	if navErr := bounded.Navigate(pageUrl); navErr != nil {
		return "", classifyNavigationError(ctx, navErr)
	}
	if loadErr := bounded.WaitLoad(); loadErr != nil {
		return "", classifyNavigationError(ctx, loadErr)
	}

	html, htmlErr := bounded.HTML()
	if htmlErr != nil {
		if isContextError(htmlErr) {
			return "", classifyNavigationError(ctx, htmlErr)
		}
		return "", &RenderError{
			Message:   fmt.Sprintf("failed to serialize DOM: %v", htmlErr),
			Retryable: false,
			Cause:     ErrCauseScript,
			Err:       htmlErr,
		}
	}
	return html, nil
}

// ensureBrowser launches and connects the browser on first use.
func (r *RodRenderer) ensureBrowser() (*rod.Browser, *RenderError) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, &RenderError{
			Message:   "render called after Close",
			Retryable: false,
			Cause:     ErrCauseClosed,
		}
	}
	if r.browser != nil {
		return r.browser, nil
	}

	l := launcher.New().Headless(true).NoSandbox(r.opts.NoSandbox)
	if r.opts.Bin != "" {
		l = l.Bin(r.opts.Bin)
	} else if path, found := launcher.LookPath(); found {
		l = l.Bin(path)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, &RenderError{
			Message:   fmt.Sprintf("failed to launch browser: %v", err),
			Retryable: false,
			Cause:     ErrCauseBrowserLaunch,
			Err:       err,
		}
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, &RenderError{
			Message:   fmt.Sprintf("failed to connect to browser: %v", err),
			Retryable: false,
			Cause:     ErrCauseBrowserLaunch,
			Err:       err,
		}
	}

	r.browser = browser
	r.launcher = l
	return browser, nil
}

// Close shuts the browser down. It is safe to call more than once and
// on a renderer that never launched.
func (r *RodRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	var err error
	if r.browser != nil {
		err = r.browser.Close()
		r.browser = nil
	}
	if r.launcher != nil {
		r.launcher.Kill()
		r.launcher = nil
	}
	return err
}

func isContextError(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}

func classifyNavigationError(ctx context.Context, err error) *RenderError {
	if ctxErr := ctx.Err(); errors.Is(ctxErr, context.Canceled) {
		return &RenderError{
			Message:   "render cancelled",
			Retryable: false,
			Cause:     ErrCauseCancelled,
			Err:       ctxErr,
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &RenderError{
			Message:   fmt.Sprintf("navigation timed out: %v", err),
			Retryable: true,
			Cause:     ErrCauseNavigationTimeout,
			Err:       err,
		}
	}

	var navErr *rod.NavigationError
	if errors.As(err, &navErr) {
		return &RenderError{
			Message:   fmt.Sprintf("navigation failed: %s", navErr.Reason),
			Retryable: true,
			Cause:     ErrCauseNavigation,
			Err:       err,
		}
	}
	return &RenderError{
		Message:   fmt.Sprintf("navigation failed: %v", err),
		Retryable: false,
		Cause:     ErrCauseNavigation,
		Err:       err,
	}
}
