package scrape_test

import (
	"context"
	"sync"
	"time"

	"github.com/rohmanhakim/page-scraper/internal/metadata"
	"github.com/rohmanhakim/page-scraper/internal/source"
	"github.com/rohmanhakim/page-scraper/pkg/failure"
	"github.com/stretchr/testify/mock"
)

type sourceMock struct {
	mock.Mock
}

func (m *sourceMock) GetDocument(ctx context.Context, pageUrl string, mode source.Mode) (source.RawDocument, failure.ClassifiedError) {
	args := m.Called(ctx, pageUrl, mode)
	var err failure.ClassifiedError
	if e := args.Get(1); e != nil {
		err = e.(failure.ClassifiedError)
	}
	return args.Get(0).(source.RawDocument), err
}

func htmlDoc(pageUrl string, body string) source.RawDocument {
	return source.NewRawDocument(pageUrl, []byte(body), 200, source.ModeHTTP)
}

// cacheSink records cache outcomes and errors; every other call is ignored.
type cacheSink struct {
	metadata.NoopSink
	mu       sync.Mutex
	outcomes []metadata.CacheOutcome
	errors   []string
}

func (s *cacheSink) RecordCache(key string, outcome metadata.CacheOutcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcomes = append(s.outcomes, outcome)
}

func (s *cacheSink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause metadata.ErrorCause,
	details string,
	attrs []metadata.Attribute,
) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = append(s.errors, packageName+": "+details)
}

func (s *cacheSink) Outcomes() []metadata.CacheOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]metadata.CacheOutcome(nil), s.outcomes...)
}
