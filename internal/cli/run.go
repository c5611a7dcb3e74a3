package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rohmanhakim/page-scraper/internal/cache"
	"github.com/rohmanhakim/page-scraper/internal/config"
	"github.com/rohmanhakim/page-scraper/internal/exporter"
	"github.com/rohmanhakim/page-scraper/internal/extractor"
	"github.com/rohmanhakim/page-scraper/internal/fetcher"
	"github.com/rohmanhakim/page-scraper/internal/metadata"
	"github.com/rohmanhakim/page-scraper/internal/render"
	"github.com/rohmanhakim/page-scraper/internal/scrape"
	"github.com/rohmanhakim/page-scraper/internal/source"
	"github.com/rohmanhakim/page-scraper/pkg/fileutil"
	"github.com/rohmanhakim/page-scraper/pkg/limiter"
	"golang.org/x/sync/errgroup"
)

/*
Responsibilities
- Wire the pipeline from a resolved Config
- Scrape every configured URL, up to Concurrency at a time
- Emit the concatenated results in URL order
- Flush metrics

Every URL gets its own engine (and pacer); all engines share one cache.
The first failing URL cancels the others.
*/

// Run executes one scrape job described by cfg. Results go to cfg.Output(),
// or to stdout when no output file is configured.
func Run(ctx context.Context, cfg config.Config, stdout io.Writer, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	logger, closeLog, err := setupLogger(cfg.LogLevel(), cfg.LogFile(), stderr)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer closeLog()

	registry := prometheus.NewRegistry()
	recorder := metadata.NewRecorder(logger, registry)

	items, err := scrapeAll(ctx, cfg, logger, recorder)
	if err == nil {
		err = emit(cfg, items, exporter.NewLocalExporter(recorder), logger, stdout)
	}

	if metricsErr := writeMetrics(cfg.MetricsFile(), registry); metricsErr != nil {
		logger.Error("failed to write metrics", "path", cfg.MetricsFile(), "error", metricsErr)
	}
	return err
}

func scrapeAll(
	ctx context.Context,
	cfg config.Config,
	logger *slog.Logger,
	recorder *metadata.Recorder,
) ([]string, error) {
	htmlFetcher := fetcher.NewHtmlFetcher(recorder, cfg.UserAgent(), cfg.Timeout())
	htmlFetcher.SetMaxBodyBytes(cfg.MaxBodyBytes())

	var renderer render.Renderer
	if cfg.JS() {
		rodRenderer := render.NewRodRenderer(recorder, render.RodOptions{
			Timeout:   cfg.RenderTimeout(),
			Bin:       cfg.BrowserBin(),
			NoSandbox: cfg.NoSandbox(),
			UserAgent: cfg.UserAgent(),
		})
		defer func() {
			if closeErr := rodRenderer.Close(); closeErr != nil {
				logger.Warn("failed to close browser", "error", closeErr)
			}
		}()
		renderer = rodRenderer
	}

	documentSource := source.NewSelector(htmlFetcher, renderer)
	selectorExtractor := extractor.NewSelectorExtractor(recorder, cfg.Mode())
	sharedCache := cache.NewMemoryCache()

	newEngine := func(index int) *scrape.Engine {
		pacer := limiter.NewIntervalPacer(nil)
		pacer.SetJitter(cfg.Jitter())
		pacer.SetRandomSeed(cfg.RandomSeed() + int64(index))

		opts := []scrape.Option{
			scrape.WithCache(sharedCache),
			scrape.WithPacer(pacer),
			scrape.WithBaseDelay(cfg.BaseDelay()),
			scrape.WithSink(recorder),
		}
		if cfg.CacheMaxAge() > 0 {
			opts = append(opts, scrape.WithFreshness(cache.MaxAge(cfg.CacheMaxAge())))
		}
		if cfg.JS() {
			return scrape.NewJSEngine(documentSource, selectorExtractor, opts...)
		}
		return scrape.NewEngine(documentSource, selectorExtractor, opts...)
	}

	urls := cfg.URLs()
	results := make([]scrape.Result, len(urls))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Concurrency())

	for i, target := range urls {
		g.Go(func() error {
			engine := newEngine(i)
			result, err := scrapeOne(gCtx, engine, cfg, target)
			if err != nil {
				logger.Error("scrape failed", "url", target, "error", err)
				return fmt.Errorf("scrape %s: %w", target, err)
			}
			logger.Info("scraped", "url", target, "items", len(result))
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	items := []string{}
	for _, result := range results {
		items = append(items, result...)
	}
	return items, nil
}

func scrapeOne(ctx context.Context, engine *scrape.Engine, cfg config.Config, target string) (scrape.Result, error) {
	if cfg.Pages() > 0 {
		paginated, err := engine.ScrapePaginated(ctx, target, cfg.PageParam(), cfg.Pages(), cfg.Selector())
		if err != nil {
			return nil, err
		}
		return paginated.Items(), nil
	}
	return engine.Scrape(ctx, target, cfg.Selector())
}

func emit(
	cfg config.Config,
	items []string,
	exp exporter.Exporter,
	logger *slog.Logger,
	stdout io.Writer,
) error {
	if cfg.Output() == "" {
		encoded, err := exporter.Encode(items, cfg.Format())
		if err != nil {
			return err
		}
		_, err = stdout.Write(encoded)
		return err
	}

	result, exportErr := exp.Export(items, cfg.Format(), cfg.Output())
	if exportErr != nil {
		return exportErr
	}
	logger.Info("results written",
		"path", result.Path(),
		"format", string(result.Format()),
		"items", result.Items(),
		"content_hash", result.ContentHash(),
	)
	return nil
}

func writeMetrics(path string, gatherer prometheus.Gatherer) error {
	if path == "" {
		return nil
	}
	if err := fileutil.EnsureParentDir(path); err != nil {
		return err
	}
	return prometheus.WriteToTextfile(path, gatherer)
}
