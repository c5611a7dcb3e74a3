package mdconvert

import (
	"bytes"
	"strings"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/rohmanhakim/page-scraper/internal/metadata"
	"github.com/rohmanhakim/page-scraper/pkg/failure"
	"golang.org/x/net/html"
)

/*
Design Principles
- Semantic fidelity over visual fidelity
- No inferred structure
- No code reformatting
- GitHub-Flavored Markdown compatibility

Conversion Rules
- Headings map directly (h1-h6 to # - ######)
- Code blocks preserved verbatim
- Tables converted structurally (GFM)
- Links and images preserved as-is (no resolution)
- DOM order preserved

Surrounding whitespace is trimmed so each extracted item is one clean value.
*/

// ConvertRule defines the interface for converting HTML to Markdown.
// Implementations must ensure semantic fidelity and deterministic output.
type ConvertRule interface {
	Convert(node *html.Node) (ConversionResult, failure.ClassifiedError)
	ConvertFragment(fragment string) (ConversionResult, failure.ClassifiedError)
}

// Compile-time interface check
var _ ConvertRule = (*StrictConversionRule)(nil)

type StrictConversionRule struct {
	metadataSink metadata.MetadataSink
}

func NewRule(metadataSink metadata.MetadataSink) *StrictConversionRule {
	if metadataSink == nil {
		metadataSink = &metadata.NoopSink{}
	}
	return &StrictConversionRule{
		metadataSink: metadataSink,
	}
}

// Convert converts a parsed node (and its subtree) to Markdown.
func (s *StrictConversionRule) Convert(node *html.Node) (ConversionResult, failure.ClassifiedError) {
	result, err := convertNode(node)
	if err != nil {
		s.recordError("StrictConversionRule.Convert", err)
		return ConversionResult{}, err
	}
	return result, nil
}

// ConvertFragment converts an HTML fragment, such as an element's inner HTML, to Markdown.
func (s *StrictConversionRule) ConvertFragment(fragment string) (ConversionResult, failure.ClassifiedError) {
	result, err := convertFragment(fragment)
	if err != nil {
		s.recordError("StrictConversionRule.ConvertFragment", err)
		return ConversionResult{}, err
	}
	return result, nil
}

func (s *StrictConversionRule) recordError(action string, err *ConversionError) {
	s.metadataSink.RecordError(
		time.Now(),
		"mdconvert",
		action,
		mapConversionErrorToMetadataCause(err),
		err.Error(),
		[]metadata.Attribute{},
	)
}

// newConverter creates a converter with plugins for commonmark, base, and table support.
// A converter is built per call so concurrent engines never share plugin state.
func newConverter() *converter.Converter {
	return converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
}

// convertNode is a stateless pure function that transforms an HTML node
// into a ConversionResult containing markdown content.
func convertNode(node *html.Node) (ConversionResult, *ConversionError) {
	if node == nil {
		return ConversionResult{}, &ConversionError{
			Message:   "cannot convert nil HTML node",
			Retryable: false,
			Cause:     ErrCauseConversionFailure,
		}
	}

	markdown, err := newConverter().ConvertNode(node)
	if err != nil {
		return ConversionResult{}, &ConversionError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseConversionFailure,
		}
	}
	return NewConversionResult(bytes.TrimSpace(markdown)), nil
}

func convertFragment(fragment string) (ConversionResult, *ConversionError) {
	markdown, err := newConverter().ConvertString(fragment)
	if err != nil {
		return ConversionResult{}, &ConversionError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseConversionFailure,
		}
	}
	return NewConversionResult([]byte(strings.TrimSpace(markdown))), nil
}
