package source_test

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/rohmanhakim/page-scraper/internal/fetcher"
	"github.com/rohmanhakim/page-scraper/internal/render"
	"github.com/rohmanhakim/page-scraper/internal/source"
	"github.com/rohmanhakim/page-scraper/pkg/failure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fetcherMock struct {
	mock.Mock
}

func (m *fetcherMock) Fetch(ctx context.Context, fetchUrl url.URL) (fetcher.FetchResult, failure.ClassifiedError) {
	args := m.Called(ctx, fetchUrl)
	var err failure.ClassifiedError
	if e := args.Get(1); e != nil {
		err = e.(failure.ClassifiedError)
	}
	return args.Get(0).(fetcher.FetchResult), err
}

type rendererMock struct {
	mock.Mock
}

func (m *rendererMock) Render(ctx context.Context, pageUrl string) (string, failure.ClassifiedError) {
	args := m.Called(ctx, pageUrl)
	var err failure.ClassifiedError
	if e := args.Get(1); e != nil {
		err = e.(failure.ClassifiedError)
	}
	return args.String(0), err
}

func TestGetDocument_HTTPUsesFetcherOnly(t *testing.T) {
	f := &fetcherMock{}
	r := &rendererMock{}
	target, _ := url.Parse("https://example.com/list?page=1")
	f.On("Fetch", mock.Anything, *target).
		Return(fetcher.NewFetchResultForTest(*target, []byte("<p>hi</p>"), 200, nil), nil).Once()

	doc, err := source.NewSelector(f, r).GetDocument(context.Background(), target.String(), source.ModeHTTP)
	require.Nil(t, err)

	assert.Equal(t, "<p>hi</p>", string(doc.Body()))
	assert.Equal(t, 200, doc.StatusCode())
	assert.Equal(t, source.ModeHTTP, doc.Mode())
	assert.Equal(t, target.String(), doc.URL())
	f.AssertExpectations(t)
	r.AssertNotCalled(t, "Render", mock.Anything, mock.Anything)
}

func TestGetDocument_RenderedUsesRendererOnly(t *testing.T) {
	f := &fetcherMock{}
	r := &rendererMock{}
	r.On("Render", mock.Anything, "https://example.com/app").Return("<div>rendered</div>", nil).Once()

	doc, err := source.NewSelector(f, r).GetDocument(context.Background(), "https://example.com/app", source.ModeRendered)
	require.Nil(t, err)

	assert.Equal(t, "<div>rendered</div>", string(doc.Body()))
	assert.Equal(t, 0, doc.StatusCode())
	assert.Equal(t, source.ModeRendered, doc.Mode())
	r.AssertExpectations(t)
	f.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
}

func TestGetDocument_TransportFailure(t *testing.T) {
	f := &fetcherMock{}
	cause := &fetcher.FetchError{Message: "server error: 503", Retryable: true, Cause: fetcher.ErrCauseRequest5xx, StatusCode: 503}
	f.On("Fetch", mock.Anything, mock.Anything).Return(fetcher.FetchResult{}, cause)

	_, err := source.NewSelector(f, nil).GetDocument(context.Background(), "https://example.com", source.ModeHTTP)
	require.NotNil(t, err)

	var rendererErr *source.RendererError
	require.True(t, errors.As(err, &rendererErr))
	assert.Equal(t, failure.KindTransport, rendererErr.SubKind)
	assert.Equal(t, failure.KindTransport, err.Kind())
	assert.Equal(t, failure.SeverityRecoverable, err.Severity())

	var fetchErr *fetcher.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Same(t, cause, fetchErr)
}

func TestGetDocument_RenderFailure(t *testing.T) {
	r := &rendererMock{}
	cause := &render.RenderError{Message: "timed out", Retryable: true, Cause: render.ErrCauseNavigationTimeout}
	r.On("Render", mock.Anything, mock.Anything).Return("", cause)

	_, err := source.NewSelector(nil, r).GetDocument(context.Background(), "https://example.com", source.ModeRendered)
	require.NotNil(t, err)

	var rendererErr *source.RendererError
	require.True(t, errors.As(err, &rendererErr))
	assert.Equal(t, failure.KindRender, rendererErr.SubKind)

	var renderErr *render.RenderError
	require.True(t, errors.As(err, &renderErr))
	assert.Equal(t, render.ErrCauseNavigationTimeout, renderErr.Cause)
}

func TestGetDocument_InvalidURLNeverReachesFetcher(t *testing.T) {
	for _, raw := range []string{"not a url", "/relative/path", "http://[::1"} {
		t.Run(raw, func(t *testing.T) {
			f := &fetcherMock{}

			_, err := source.NewSelector(f, nil).GetDocument(context.Background(), raw, source.ModeHTTP)
			require.NotNil(t, err)

			var fetchErr *fetcher.FetchError
			require.True(t, errors.As(err, &fetchErr))
			assert.Equal(t, fetcher.ErrCauseInvalidURL, fetchErr.Cause)
			assert.Equal(t, failure.KindTransport, failure.KindOf(err))
			f.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
		})
	}
}

func TestGetDocument_MissingBackends(t *testing.T) {
	s := source.NewSelector(nil, nil)

	_, err := s.GetDocument(context.Background(), "https://example.com", source.ModeHTTP)
	require.NotNil(t, err)
	assert.Equal(t, failure.KindTransport, err.Kind())

	_, err = s.GetDocument(context.Background(), "https://example.com", source.ModeRendered)
	require.NotNil(t, err)
	assert.Equal(t, failure.KindRender, err.Kind())
}

func TestGetDocument_UnknownMode(t *testing.T) {
	_, err := source.NewSelector(nil, nil).GetDocument(context.Background(), "https://example.com", source.Mode(9))
	require.NotNil(t, err)
	assert.Equal(t, failure.KindUnknown, err.Kind())
	assert.Contains(t, err.Error(), "mode(9)")
}
