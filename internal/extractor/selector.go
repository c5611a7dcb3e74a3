package extractor

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/rohmanhakim/page-scraper/internal/mdconvert"
	"github.com/rohmanhakim/page-scraper/internal/metadata"
	"github.com/rohmanhakim/page-scraper/pkg/failure"
	"golang.org/x/net/html"
)

/*
Responsibilities
- Validate the selector before touching the document
- Parse HTML into a DOM tree
- Map every match, in document order, to one string

Outcomes
- Malformed selector: ExtractionError wrapping SelectorSyntaxError
- Well-formed selector with no match: empty, non-nil slice
- Parsing never blocks on I/O; documents are bounded by the fetcher

The extractor holds no state between calls and is safe for concurrent use.
*/

type Extractor interface {
	Extract(document []byte, selector string) ([]string, failure.ClassifiedError)
}

// Compile-time interface check
var _ Extractor = (*SelectorExtractor)(nil)

type SelectorExtractor struct {
	metadataSink metadata.MetadataSink
	mode         Mode
	markdown     mdconvert.ConvertRule
}

func NewSelectorExtractor(
	metadataSink metadata.MetadataSink,
	mode Mode,
) *SelectorExtractor {
	if metadataSink == nil {
		metadataSink = &metadata.NoopSink{}
	}
	if mode == "" {
		mode = ModeText
	}
	return &SelectorExtractor{
		metadataSink: metadataSink,
		mode:         mode,
		markdown:     mdconvert.NewRule(metadataSink),
	}
}

func (s *SelectorExtractor) Mode() Mode {
	return s.mode
}

func (s *SelectorExtractor) Extract(
	document []byte,
	selector string,
) ([]string, failure.ClassifiedError) {
	items, err := s.extract(document, selector)
	if err != nil {
		s.metadataSink.RecordError(
			time.Now(),
			"extractor",
			"SelectorExtractor.Extract",
			mapExtractionErrorToMetadataCause(err),
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrSelector, selector),
				metadata.NewAttr(metadata.AttrMode, s.mode.String()),
			},
		)
		return nil, err
	}
	return items, nil
}

func (s *SelectorExtractor) extract(document []byte, selector string) ([]string, *ExtractionError) {
	if syntaxErr := validateSelector(selector); syntaxErr != nil {
		return nil, &ExtractionError{
			Message:   syntaxErr.Error(),
			Retryable: false,
			Cause:     ErrCauseSelectorSyntax,
			Err:       syntaxErr,
		}
	}

	root, err := html.Parse(bytes.NewReader(document))
	if err != nil {
		return nil, &ExtractionError{
			Message:   fmt.Sprintf("failed to parse HTML: %v", err),
			Retryable: false,
			Cause:     ErrCauseDocumentParse,
			Err:       err,
		}
	}

	matches := goquery.NewDocumentFromNode(root).Find(selector)
	items := make([]string, 0, matches.Length())
	for i := range matches.Nodes {
		item, itemErr := s.render(matches.Eq(i))
		if itemErr != nil {
			return nil, itemErr
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *SelectorExtractor) render(sel *goquery.Selection) (string, *ExtractionError) {
	switch s.mode {
	case ModeHTML:
		return innerHTML(sel)
	case ModeMarkdown:
		inner, err := innerHTML(sel)
		if err != nil {
			return "", err
		}
		result, convErr := s.markdown.ConvertFragment(inner)
		if convErr != nil {
			return "", &ExtractionError{
				Message:   convErr.Error(),
				Retryable: false,
				Cause:     ErrCauseConversionFailure,
				Err:       convErr,
			}
		}
		return result.String(), nil
	default:
		return strings.TrimSpace(sel.Text()), nil
	}
}

func innerHTML(sel *goquery.Selection) (string, *ExtractionError) {
	inner, err := sel.Html()
	if err != nil {
		return "", &ExtractionError{
			Message:   fmt.Sprintf("failed to render element: %v", err),
			Retryable: false,
			Cause:     ErrCauseDocumentParse,
			Err:       err,
		}
	}
	return inner, nil
}

// validateSelector parses selector strictly. goquery's Find silently
// matches nothing on a malformed selector, which would be indistinguishable
// from a valid selector with zero matches.
func validateSelector(selector string) *SelectorSyntaxError {
	if strings.TrimSpace(selector) == "" {
		return &SelectorSyntaxError{Selector: selector, Message: "selector is empty"}
	}
	if _, err := cascadia.ParseGroup(selector); err != nil {
		return &SelectorSyntaxError{Selector: selector, Message: err.Error()}
	}
	return nil
}
