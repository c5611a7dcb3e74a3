package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/rohmanhakim/page-scraper/internal/metadata"
	"github.com/rohmanhakim/page-scraper/pkg/failure"
)

/*
Responsibilities

- Perform HTTP requests
- Apply headers and timeouts
- Handle redirects safely
- Classify responses

Fetch Semantics

- Only 2xx responses are returned as documents
- Redirect chains are bounded
- Response bodies are bounded
- All responses are logged with metadata

The fetcher never parses content; it only returns bytes and metadata.
*/

const (
	DefaultTimeout      = 30 * time.Second
	DefaultMaxRedirects = 10
	// DefaultMaxBodyBytes bounds the document so extraction stays bounded CPU work.
	DefaultMaxBodyBytes = 10 << 20
)

var errRedirectLimit = errors.New("stopped after too many redirects")

type Fetcher interface {
	Fetch(ctx context.Context, fetchUrl url.URL) (FetchResult, failure.ClassifiedError)
}

type HtmlFetcher struct {
	metadataSink metadata.MetadataSink
	httpClient   *http.Client
	userAgent    string
	maxBodyBytes int64
}

// NewHtmlFetcher returns a fetcher sending userAgent and giving up after timeout.
// A non-positive timeout uses DefaultTimeout.
func NewHtmlFetcher(
	metadataSink metadata.MetadataSink,
	userAgent string,
	timeout time.Duration,
) *HtmlFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if metadataSink == nil {
		metadataSink = &metadata.NoopSink{}
	}
	return &HtmlFetcher{
		metadataSink: metadataSink,
		userAgent:    userAgent,
		maxBodyBytes: DefaultMaxBodyBytes,
		httpClient: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= DefaultMaxRedirects {
					return errRedirectLimit
				}
				return nil
			},
		},
	}
}

// SetMaxBodyBytes overrides the response size limit.
func (h *HtmlFetcher) SetMaxBodyBytes(n int64) {
	if n > 0 {
		h.maxBodyBytes = n
	}
}

func (h *HtmlFetcher) Fetch(
	ctx context.Context,
	fetchUrl url.URL,
) (FetchResult, failure.ClassifiedError) {
	callerMethod := "HtmlFetcher.Fetch"
	startTime := time.Now()

	result, err := h.performFetch(ctx, fetchUrl)

	duration := time.Since(startTime)

	var statusCode int
	var contentLength int
	if err != nil {
		statusCode = err.StatusCode
	} else {
		statusCode = result.Code()
		contentLength = len(result.Body())
	}

	h.metadataSink.RecordFetch(
		fetchUrl.String(),
		"http",
		statusCode,
		duration,
		contentLength,
	)

	if err != nil {
		h.recordFetchError(callerMethod, fetchUrl, err)
		return FetchResult{}, err
	}

	return result, nil
}

func (h *HtmlFetcher) recordFetchError(callerMethod string, fetchUrl url.URL, err *FetchError) {
	h.metadataSink.RecordError(
		time.Now(),
		"fetcher",
		callerMethod,
		mapFetchErrorToMetadataCause(err),
		err.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrURL, fetchUrl.String()),
		},
	)
}

func (h *HtmlFetcher) performFetch(ctx context.Context, fetchUrl url.URL) (FetchResult, *FetchError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchUrl.String(), nil)
	if err != nil {
		return FetchResult{}, &FetchError{
			Message:   fmt.Sprintf("failed to create request: %v", err),
			Retryable: false,
			Cause:     ErrCauseInvalidURL,
			Err:       err,
		}
	}

	// Apply browser-like headers
	for key, value := range requestHeaders(h.userAgent) {
		req.Header.Set(key, value)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return FetchResult{}, classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	if statusErr := classifyStatus(resp.StatusCode); statusErr != nil {
		return FetchResult{}, statusErr
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, h.maxBodyBytes+1))
	if err != nil {
		fetchErr := classifyTransportError(ctx, err)
		if fetchErr.Cause == ErrCauseNetworkFailure {
			fetchErr.Cause = ErrCauseReadResponseBodyError
			fetchErr.Message = fmt.Sprintf("failed to read response body: %v", err)
		}
		return FetchResult{}, fetchErr
	}
	if int64(len(body)) > h.maxBodyBytes {
		return FetchResult{}, &FetchError{
			Message:   fmt.Sprintf("response exceeds %d bytes", h.maxBodyBytes),
			Retryable: false,
			Cause:     ErrCauseBodyTooLarge,
		}
	}

	// Build response headers map
	responseHeaders := make(map[string]string)
	for key, values := range resp.Header {
		if len(values) > 0 {
			responseHeaders[key] = values[0]
		}
	}

	finalURL := fetchUrl
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = *resp.Request.URL
	}

	return FetchResult{
		url:  finalURL,
		body: body,
		meta: ResponseMeta{
			statusCode:          resp.StatusCode,
			transferredSizeByte: uint64(len(body)),
			responseHeaders:     responseHeaders,
		},
	}, nil
}

func classifyTransportError(ctx context.Context, err error) *FetchError {
	switch {
	case errors.Is(err, errRedirectLimit):
		return &FetchError{
			Message:   fmt.Sprintf("redirect limit of %d exceeded", DefaultMaxRedirects),
			Retryable: false,
			Cause:     ErrCauseRedirectLimitExceeded,
			Err:       err,
		}
	case errors.Is(ctx.Err(), context.Canceled):
		return &FetchError{
			Message:   "request cancelled",
			Retryable: false,
			Cause:     ErrCauseCancelled,
			Err:       ctx.Err(),
		}
	case errors.Is(err, context.DeadlineExceeded) || isTimeout(err):
		return &FetchError{
			Message:   fmt.Sprintf("request timed out: %v", err),
			Retryable: true,
			Cause:     ErrCauseTimeout,
			Err:       err,
		}
	default:
		return &FetchError{
			Message:   fmt.Sprintf("request failed: %v", err),
			Retryable: true,
			Cause:     ErrCauseNetworkFailure,
			Err:       err,
		}
	}
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func classifyStatus(statusCode int) *FetchError {
	switch {
	case statusCode >= 500:
		return &FetchError{
			Message:    fmt.Sprintf("server error: %d", statusCode),
			Retryable:  true,
			Cause:      ErrCauseRequest5xx,
			StatusCode: statusCode,
		}
	case statusCode == http.StatusTooManyRequests:
		return &FetchError{
			Message:    "rate limited (429)",
			Retryable:  true,
			Cause:      ErrCauseRequestTooMany,
			StatusCode: statusCode,
		}
	case statusCode == http.StatusForbidden || statusCode == http.StatusUnauthorized:
		return &FetchError{
			Message:    fmt.Sprintf("access denied (%d)", statusCode),
			Retryable:  false,
			Cause:      ErrCauseRequestPageForbidden,
			StatusCode: statusCode,
		}
	case statusCode >= 400:
		return &FetchError{
			Message:    fmt.Sprintf("client error: %d", statusCode),
			Retryable:  false,
			Cause:      ErrCauseRequest4xx,
			StatusCode: statusCode,
		}
	case statusCode >= 300:
		// http.Client follows redirects; a 3xx here had no usable Location
		return &FetchError{
			Message:    fmt.Sprintf("unfollowable redirect: %d", statusCode),
			Retryable:  false,
			Cause:      ErrCauseRedirectLimitExceeded,
			StatusCode: statusCode,
		}
	case statusCode < 200:
		return &FetchError{
			Message:    fmt.Sprintf("unexpected status: %d", statusCode),
			Retryable:  false,
			Cause:      ErrCauseNetworkFailure,
			StatusCode: statusCode,
		}
	}
	return nil
}

func requestHeaders(userAgent string) map[string]string {
	return map[string]string{
		"User-Agent":      userAgent,
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.5",
	}
}
