package metadata

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

/*
Metadata Collected
- Fetch timestamps, modes and durations
- HTTP status codes
- Cache hits and misses
- Classified errors
- Export artifacts

Structured logging is preferred.

Allowed:
- Primitive values
- Timestamps
- URLs and selectors (as values)
- Status codes
- Durations

Metadata is write-only.
No component may read metadata to influence scrape decisions.
*/

/*
Recorder captures structured scrape events as slog records and
Prometheus collectors.
It must not:
- perform I/O decisions
- affect control flow
Ordering guarantees:
- Events are recorded synchronously in the order they are received by one engine.
- No global ordering across engines is guaranteed.
*/
type Recorder struct {
	logger        *slog.Logger
	fetchTotal    *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	cacheLookups  *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	artifacts     *prometheus.CounterVec
}

// NewRecorder builds a recorder logging to logger and registering its
// collectors with reg. A nil logger falls back to slog.Default(); a nil reg
// leaves the collectors unregistered.
func NewRecorder(logger *slog.Logger, reg prometheus.Registerer) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Recorder{
		logger: logger,
		fetchTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "page_scraper_fetches_total",
				Help: "Total number of document fetches, labeled by mode and HTTP status.",
			},
			[]string{"mode", "status"},
		),
		fetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "page_scraper_fetch_duration_seconds",
				Help:    "Duration of document fetches in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"mode"},
		),
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "page_scraper_cache_lookups_total",
				Help: "Total number of cache lookups, labeled by outcome.",
			},
			[]string{"outcome"},
		),
		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "page_scraper_errors_total",
				Help: "Total number of recorded errors, labeled by package and cause.",
			},
			[]string{"package", "cause"},
		),
		artifacts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "page_scraper_artifacts_total",
				Help: "Total number of exported artifacts, labeled by kind.",
			},
			[]string{"kind"},
		),
	}
	if reg != nil {
		reg.MustRegister(r.fetchTotal, r.fetchDuration, r.cacheLookups, r.errorsTotal, r.artifacts)
	}
	return r
}

func (r *Recorder) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	errorString string,
	attrs []Attribute,
) {
	record := ErrorRecord{
		packageName: packageName,
		action:      action,
		cause:       cause,
		errorString: errorString,
		observedAt:  observedAt,
		attrs:       attrs,
	}
	r.errorsTotal.WithLabelValues(record.packageName, record.cause.String()).Inc()

	args := []any{
		slog.String("package", record.packageName),
		slog.String("action", record.action),
		slog.String("cause", record.cause.String()),
		slog.String("error", record.errorString),
		slog.Time("observed_at", record.observedAt),
	}
	r.logger.Error("scrape error", append(args, attrArgs(record.attrs)...)...)
}

func (r *Recorder) RecordFetch(
	fetchUrl string,
	mode string,
	httpStatus int,
	duration time.Duration,
	contentLength int,
) {
	event := FetchEvent{
		fetchUrl:      fetchUrl,
		mode:          mode,
		httpStatus:    httpStatus,
		duration:      duration,
		contentLength: contentLength,
	}
	r.fetchTotal.WithLabelValues(event.mode, statusLabel(event.httpStatus)).Inc()
	r.fetchDuration.WithLabelValues(event.mode).Observe(event.duration.Seconds())

	r.logger.Info("document fetched",
		slog.String(string(AttrURL), event.fetchUrl),
		slog.String(string(AttrMode), event.mode),
		slog.Int(string(AttrHTTPStatus), event.httpStatus),
		slog.Duration("duration", event.duration),
		slog.Int("bytes", event.contentLength),
	)
}

func (r *Recorder) RecordCache(key string, outcome CacheOutcome) {
	r.cacheLookups.WithLabelValues(string(outcome)).Inc()
	r.logger.Debug("cache lookup", slog.String("key", key), slog.String("outcome", string(outcome)))
}

func (r *Recorder) RecordArtifact(kind ArtifactKind, path string, attrs []Attribute) {
	r.artifacts.WithLabelValues(string(kind)).Inc()
	args := []any{
		slog.String("kind", string(kind)),
		slog.String(string(AttrWritePath), path),
	}
	r.logger.Info("artifact written", append(args, attrArgs(attrs)...)...)
}

func attrArgs(attrs []Attribute) []any {
	out := make([]any, 0, len(attrs))
	for _, a := range attrs {
		out = append(out, slog.String(string(a.Key), a.Value))
	}
	return out
}

// rendered documents carry no HTTP status
func statusLabel(status int) string {
	if status == 0 {
		return "none"
	}
	return strconv.Itoa(status)
}

type MetadataSink interface {
	RecordError(
		observedAt time.Time,
		packageName string,
		action string,
		cause ErrorCause,
		details string,
		attrs []Attribute,
	)

	RecordFetch(
		fetchUrl string,
		mode string,
		httpStatus int,
		duration time.Duration,
		contentLength int,
	)
	RecordCache(key string, outcome CacheOutcome)
	RecordArtifact(kind ArtifactKind, path string, attrs []Attribute)
}

// NoopSink, struct that implements metadata.MetadataSink but does nothing
// Engine (or Test) can decide whether to inject Recorder or NoopSink
// Purpose is to make metadata orthogonal

type NoopSink struct{}

func (n *NoopSink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	errorString string,
	attrs []Attribute,
) {

}

func (n *NoopSink) RecordFetch(
	fetchUrl string,
	mode string,
	httpStatus int,
	duration time.Duration,
	contentLength int,
) {
}

func (n *NoopSink) RecordCache(key string, outcome CacheOutcome) {}

func (n *NoopSink) RecordArtifact(kind ArtifactKind, path string, attrs []Attribute) {}
