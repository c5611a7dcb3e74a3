package exporter_test

import (
	"time"

	"github.com/rohmanhakim/page-scraper/internal/metadata"
)

// metadataSinkMock is a mock for metadata.MetadataSink
type metadataSinkMock struct {
	recordErrorCalled      bool
	recordErrorPackageName string
	recordErrorAction      string
	recordErrorCause       metadata.ErrorCause
	recordErrorDetails     string
	recordErrorAttrs       []metadata.Attribute
	recordArtifactCalled   bool
	recordArtifactKind     metadata.ArtifactKind
	recordArtifactPath     string
	recordArtifactAttrs    []metadata.Attribute
}

func (m *metadataSinkMock) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause metadata.ErrorCause,
	details string,
	attrs []metadata.Attribute,
) {
	m.recordErrorCalled = true
	m.recordErrorPackageName = packageName
	m.recordErrorAction = action
	m.recordErrorCause = cause
	m.recordErrorDetails = details
	m.recordErrorAttrs = attrs
}

func (m *metadataSinkMock) RecordFetch(
	fetchUrl string,
	mode string,
	httpStatus int,
	duration time.Duration,
	contentLength int,
) {
}

func (m *metadataSinkMock) RecordCache(key string, outcome metadata.CacheOutcome) {}

func (m *metadataSinkMock) RecordArtifact(kind metadata.ArtifactKind, path string, attrs []metadata.Attribute) {
	m.recordArtifactCalled = true
	m.recordArtifactKind = kind
	m.recordArtifactPath = path
	m.recordArtifactAttrs = attrs
}

func findAttrValue(attrs []metadata.Attribute, key metadata.AttributeKey) string {
	for _, attr := range attrs {
		if attr.Key == key {
			return attr.Value
		}
	}
	return ""
}
