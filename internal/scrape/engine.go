package scrape

import (
	"context"
	"fmt"
	"time"

	"github.com/rohmanhakim/page-scraper/internal/cache"
	"github.com/rohmanhakim/page-scraper/internal/extractor"
	"github.com/rohmanhakim/page-scraper/internal/metadata"
	"github.com/rohmanhakim/page-scraper/internal/source"
	"github.com/rohmanhakim/page-scraper/pkg/limiter"
	"github.com/rohmanhakim/page-scraper/pkg/timeutil"
	"github.com/rohmanhakim/page-scraper/pkg/urlutil"
)

/*
 Engine is the sole control-plane authority of a scrape.

 Guarantees:
 - A fresh cache entry is always served without touching the network
   or the pacer.
 - A cache entry is written only after a complete fetch and extraction.
   Failures leave the cache as it was.
 - Every fetch goes through the pacer, so two fetches of one engine are
   never closer than the configured interval.
 - Paginated runs fetch page n+1 only after page n completed.

 Pipeline stages classify and record their own failures. The engine
 never retries; it returns the first failure unchanged.

 Metadata emission is observational only and MUST NOT influence control flow.
*/

type Engine struct {
	source       source.DocumentSource
	extractor    extractor.Extractor
	mode         source.Mode
	cache        cache.Cache
	freshness    cache.FreshnessPolicy
	pacer        limiter.Pacer
	clock        timeutil.Clock
	baseDelay    time.Duration
	metadataSink metadata.MetadataSink
}

// NewEngine creates an engine that retrieves documents over plain HTTP.
func NewEngine(
	documentSource source.DocumentSource,
	ext extractor.Extractor,
	opts ...Option,
) *Engine {
	return newEngine(source.ModeHTTP, documentSource, ext, opts...)
}

// NewJSEngine creates an engine that retrieves documents through the headless
// renderer. It owns its cache and pacer unless options inject shared ones.
func NewJSEngine(
	documentSource source.DocumentSource,
	ext extractor.Extractor,
	opts ...Option,
) *Engine {
	return newEngine(source.ModeRendered, documentSource, ext, opts...)
}

func newEngine(
	mode source.Mode,
	documentSource source.DocumentSource,
	ext extractor.Extractor,
	opts ...Option,
) *Engine {
	e := &Engine{
		source:       documentSource,
		extractor:    ext,
		mode:         mode,
		freshness:    cache.AlwaysFresh{},
		clock:        timeutil.NewSystemClock(),
		metadataSink: &metadata.NoopSink{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.cache == nil {
		e.cache = cache.NewMemoryCache()
	}
	if e.pacer == nil {
		e.pacer = limiter.NewIntervalPacer(e.clock)
	}
	return e
}

func (e *Engine) Mode() source.Mode {
	return e.mode
}

func (e *Engine) Cache() cache.Cache {
	return e.cache
}

// ClearCache drops every cached result, including results other engines
// stored when the cache is shared.
func (e *Engine) ClearCache() {
	e.cache.Clear()
}

// Scrape blocks until url has been fetched (or served from cache) and
// selector applied to it. Zero matches is an empty, non-nil Result.
func (e *Engine) Scrape(ctx context.Context, url string, selector string) (Result, error) {
	return e.scrape(ctx, url, selector, e.baseDelay)
}

// ScrapeAsync runs Scrape on its own goroutine. The returned channel receives
// exactly one Outcome and is then closed.
func (e *Engine) ScrapeAsync(ctx context.Context, url string, selector string) <-chan Outcome {
	return e.launch(ctx, url, selector, e.baseDelay)
}

// ScrapeWithDelay is ScrapeAsync that, on a cache miss, first waits until
// delay has passed since this engine's previous fetch. The engine's base
// delay still applies when it is the longer of the two.
func (e *Engine) ScrapeWithDelay(ctx context.Context, url string, selector string, delay time.Duration) <-chan Outcome {
	interval := timeutil.MaxDuration([]time.Duration{e.baseDelay, delay})
	return e.launch(ctx, url, selector, interval)
}

// ScrapePaginated scrapes pages 1..pageCount of baseURL in order. On failure
// it returns the pages completed so far together with a *PageError.
func (e *Engine) ScrapePaginated(
	ctx context.Context,
	baseURL string,
	pageParam string,
	pageCount int,
	selector string,
) (PaginatedResult, error) {
	result := PaginatedResult{Pages: []PageResult{}}
	for page := 1; page <= pageCount; page++ {
		pageURL, err := urlutil.PageURL(baseURL, pageParam, page)
		if err != nil {
			return result, &PageError{
				Page: page,
				URL:  baseURL,
				Err: &ScrapeError{
					Message: err.Error(),
					Cause:   ErrCauseInvalidPageURL,
					URL:     baseURL,
					Err:     err,
				},
			}
		}

		items, err := e.scrape(ctx, pageURL, selector, e.baseDelay)
		if err != nil {
			return result, &PageError{Page: page, URL: pageURL, Err: err}
		}
		result.Pages = append(result.Pages, PageResult{
			Page:  page,
			URL:   pageURL,
			Items: items,
		})
	}
	return result, nil
}

func (e *Engine) launch(ctx context.Context, url string, selector string, interval time.Duration) <-chan Outcome {
	out := make(chan Outcome, 1)
	go func() {
		defer close(out)
		items, err := e.scrape(ctx, url, selector, interval)
		out <- Outcome{Result: items, Err: err}
	}()
	return out
}

// scrape is the one routine behind every public operation. It suspends only
// in the pacer and in document retrieval.
func (e *Engine) scrape(ctx context.Context, url string, selector string, interval time.Duration) (Result, error) {
	key := cache.NewFetchKey(url, selector)

	// 1. Serve a fresh cached result
	entry, found := e.cache.Get(key)
	switch {
	case found && e.freshness.IsFresh(entry, e.clock.Now()):
		e.metadataSink.RecordCache(key.String(), metadata.CacheHit)
		return Result(entry.Items()), nil
	case found:
		e.metadataSink.RecordCache(key.String(), metadata.CacheStale)
	default:
		e.metadataSink.RecordCache(key.String(), metadata.CacheMiss)
	}

	// 2. Reserve a fetch slot
	if err := e.pacer.Wait(ctx, interval); err != nil {
		scrapeErr := &ScrapeError{
			Message: fmt.Sprintf("waiting %s before fetching: %v", interval, err),
			Cause:   ErrCausePacingInterrupted,
			URL:     url,
			Err:     err,
		}
		e.metadataSink.RecordError(
			e.clock.Now(),
			"scrape",
			"Engine.scrape",
			metadata.CauseUnknown,
			scrapeErr.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, url),
				metadata.NewAttr(metadata.AttrMode, e.mode.String()),
			},
		)
		return nil, scrapeErr
	}

	// 3. Retrieve the document
	doc, err := e.source.GetDocument(ctx, url, e.mode)
	if err != nil {
		return nil, err
	}

	// 4. Extract
	items, err := e.extractor.Extract(doc.Body(), selector)
	if err != nil {
		return nil, err
	}

	// 5. Store
	e.cache.Put(key, cache.NewEntry(items, e.clock.Now()))
	return Result(items), nil
}
