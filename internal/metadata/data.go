package metadata

import (
	"time"
)

type FetchEvent struct {
	fetchUrl      string
	mode          string
	httpStatus    int
	duration      time.Duration
	contentLength int
}

func (f FetchEvent) URL() string {
	return f.fetchUrl
}

func (f FetchEvent) Mode() string {
	return f.mode
}

func (f FetchEvent) HTTPStatus() int {
	return f.httpStatus
}

func (f FetchEvent) Duration() time.Duration {
	return f.duration
}

func (f FetchEvent) ContentLength() int {
	return f.contentLength
}

/*
	ErrorCause is a closed, canonical classification used exclusively for
	observability (logging, metrics, reporting).

	Rules:
	 - ErrorCause MUST NOT influence control flow.
	 - ErrorCause values MUST have stable, package-agnostic semantics.
	 - Pipeline packages MAY map their local errors to ErrorCause,
	   but MUST NOT invent new meanings.
	Non-goals:
	 - ErrorCause does not encode severity.
	 - ErrorCause does not imply retryability.

If a failure does not clearly match a defined cause, CauseUnknown MUST be used.
*/
type ErrorCause int

/*
Canonical ErrorCause Table

# CauseUnknown

Meaning:
  - The failure does not map cleanly to any known category.

# CauseNetworkFailure

Meaning:
  - Failure caused by network transport or remote availability.

Examples:
  - TCP timeouts
  - DNS resolution failures
  - Non-2xx HTTP status

# CauseRenderFailure

Meaning:
  - The headless browser could not produce a document.

Examples:
  - Browser launch failure
  - Navigation timeout
  - Script or DOM serialization failure

# CauseContentInvalid

Meaning:
  - Content was fetched but could not be processed meaningfully.

Examples:
  - Document parse failure
  - Markdown conversion failure

# CauseSelectorInvalid

Meaning:
  - The caller supplied a syntactically malformed selector.

# CauseStorageFailure

Meaning:
  - Failure while writing exported results.

Examples:
  - Write permission errors
  - Filesystem I/O failures

# CauseInvariantViolation

Meaning:
  - A system-level invariant was violated.
*/
const (
	CauseUnknown ErrorCause = iota
	CauseNetworkFailure
	CauseRenderFailure
	CauseContentInvalid
	CauseSelectorInvalid
	CauseStorageFailure
	CauseInvariantViolation
)

func (c ErrorCause) String() string {
	switch c {
	case CauseNetworkFailure:
		return "network_failure"
	case CauseRenderFailure:
		return "render_failure"
	case CauseContentInvalid:
		return "content_invalid"
	case CauseSelectorInvalid:
		return "selector_invalid"
	case CauseStorageFailure:
		return "storage_failure"
	case CauseInvariantViolation:
		return "invariant_violation"
	default:
		return "unknown"
	}
}

type ErrorRecord struct {
	packageName string
	action      string
	cause       ErrorCause
	errorString string
	observedAt  time.Time
	attrs       []Attribute
}

// CacheOutcome classifies one cache lookup.
type CacheOutcome string

const (
	CacheHit   CacheOutcome = "hit"
	CacheMiss  CacheOutcome = "miss"
	CacheStale CacheOutcome = "stale"
)

type ArtifactKind string

const (
	ArtifactJSON ArtifactKind = "json"
	ArtifactCSV  ArtifactKind = "csv"
)

type Attribute struct {
	Key   AttributeKey
	Value string
}

func NewAttr(key AttributeKey, val string) Attribute {
	return Attribute{
		Key:   key,
		Value: val,
	}
}

type AttributeKey string

const (
	AttrURL        AttributeKey = "url"
	AttrSelector   AttributeKey = "selector"
	AttrPage       AttributeKey = "page"
	AttrMode       AttributeKey = "mode"
	AttrField      AttributeKey = "field"
	AttrHTTPStatus AttributeKey = "http_status"
	AttrWritePath  AttributeKey = "write_path"
	AttrItems      AttributeKey = "items"
)
