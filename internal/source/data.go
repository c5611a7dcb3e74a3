package source

import "fmt"

// Mode selects how a document is obtained.
type Mode int

const (
	// ModeHTTP fetches the raw document over HTTP(S).
	ModeHTTP Mode = iota
	// ModeRendered loads the page in a headless browser and serializes the resulting DOM.
	ModeRendered
)

func (m Mode) String() string {
	switch m {
	case ModeHTTP:
		return "http"
	case ModeRendered:
		return "rendered"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// RawDocument is an unparsed document as returned by either backend.
type RawDocument struct {
	url        string
	body       []byte
	statusCode int
	mode       Mode
}

func NewRawDocument(url string, body []byte, statusCode int, mode Mode) RawDocument {
	return RawDocument{
		url:        url,
		body:       body,
		statusCode: statusCode,
		mode:       mode,
	}
}

// URL is the final document URL (after redirects for ModeHTTP).
func (d RawDocument) URL() string {
	return d.url
}

func (d RawDocument) Body() []byte {
	return d.body
}

// StatusCode is the HTTP status for ModeHTTP and 0 for ModeRendered.
func (d RawDocument) StatusCode() int {
	return d.statusCode
}

func (d RawDocument) Mode() Mode {
	return d.mode
}
