package exporter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/rohmanhakim/page-scraper/pkg/fileutil"
)

/*
Responsibilities
- Serialize a result sequence to JSON or CSV
- Write it to a caller-chosen path

Output Characteristics
- Order preserved
- JSON never HTML-escapes (<, >, & stay literal)
- CSV has one value per row and quotes only when needed
*/

// ToJSON returns items as a JSON array of strings. A nil slice encodes as [].
func ToJSON(items []string) string {
	encoded, _ := encodeJSON(items)
	return string(encoded)
}

// ToCSV writes items to path, one value per row.
func ToCSV(items []string, path string) error {
	encoded, err := encodeCSV(items)
	if err != nil {
		return err
	}
	return writeFile(path, encoded)
}

// WriteJSON writes ToJSON(items) followed by a newline to path.
func WriteJSON(items []string, path string) error {
	encoded, err := encodeJSON(items)
	if err != nil {
		return err
	}
	return writeFile(path, append(encoded, '\n'))
}

// Encode serializes items in format exactly as they are written to a file:
// JSON ends with a newline, CSV with one newline per row.
func Encode(items []string, format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		return encodeCSV(items)
	case FormatJSON:
		encoded, err := encodeJSON(items)
		if err != nil {
			return nil, err
		}
		return append(encoded, '\n'), nil
	default:
		return nil, &ExportError{
			Message:   "unsupported format " + string(format),
			Retryable: false,
			Cause:     ErrCauseEncoding,
		}
	}
}

func encodeJSON(items []string) ([]byte, error) {
	if items == nil {
		items = []string{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(items); err != nil {
		return nil, &ExportError{
			Message:   fmt.Sprintf("failed to encode JSON: %v", err),
			Retryable: false,
			Cause:     ErrCauseEncoding,
			Err:       err,
		}
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func encodeCSV(items []string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, item := range items {
		if err := w.Write([]string{item}); err != nil {
			return nil, &ExportError{
				Message:   fmt.Sprintf("failed to encode CSV: %v", err),
				Retryable: false,
				Cause:     ErrCauseEncoding,
				Err:       err,
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, &ExportError{
			Message:   fmt.Sprintf("failed to encode CSV: %v", err),
			Retryable: false,
			Cause:     ErrCauseEncoding,
			Err:       err,
		}
	}
	return buf.Bytes(), nil
}

func writeFile(path string, content []byte) error {
	if err := fileutil.EnsureParentDir(path); err != nil {
		return &ExportError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCausePathError,
			Path:      path,
			Err:       err,
		}
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		cause := ErrCauseWriteFailure
		retryable := false
		// Check if it's a disk full error (ENOSPC)
		if errors.Is(err, syscall.ENOSPC) {
			cause = ErrCauseDiskFull
			retryable = true
		}
		return &ExportError{
			Message:   err.Error(),
			Retryable: retryable,
			Cause:     cause,
			Path:      path,
			Err:       err,
		}
	}
	return nil
}
