package exporter

import (
	"fmt"
	"strings"

	"github.com/rohmanhakim/page-scraper/pkg/fileutil"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

func ParseFormat(raw string) (Format, error) {
	switch Format(raw) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want json or csv)", raw)
	}
}

// FormatFromPath infers the format from the extension of path.
func FormatFromPath(path string) (Format, bool) {
	switch Format(strings.ToLower(fileutil.GetFileExtension(path))) {
	case FormatJSON:
		return FormatJSON, true
	case FormatCSV:
		return FormatCSV, true
	default:
		return "", false
	}
}

// Persistence

type WriteResult struct {
	path        string
	format      Format
	items       int
	contentHash string
}

func NewWriteResult(
	path string,
	format Format,
	items int,
	contentHash string,
) WriteResult {
	return WriteResult{
		path:        path,
		format:      format,
		items:       items,
		contentHash: contentHash,
	}
}

func (w *WriteResult) Path() string {
	return w.path
}

func (w *WriteResult) Format() Format {
	return w.format
}

func (w *WriteResult) Items() int {
	return w.items
}

func (w *WriteResult) ContentHash() string {
	return w.contentHash
}
