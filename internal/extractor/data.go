package extractor

import "fmt"

// Mode selects how each matched element is turned into a string.
type Mode string

const (
	// ModeText yields the element's text content with surrounding whitespace trimmed.
	ModeText Mode = "text"
	// ModeHTML yields the element's inner HTML.
	ModeHTML Mode = "html"
	// ModeMarkdown yields the element's inner HTML converted to Markdown.
	ModeMarkdown Mode = "markdown"
)

func ParseMode(raw string) (Mode, error) {
	switch Mode(raw) {
	case "", ModeText:
		return ModeText, nil
	case ModeHTML:
		return ModeHTML, nil
	case ModeMarkdown:
		return ModeMarkdown, nil
	default:
		return "", fmt.Errorf("unknown extract mode %q (want text, html or markdown)", raw)
	}
}

func (m Mode) String() string {
	return string(m)
}
