package exporter_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rohmanhakim/page-scraper/internal/exporter"
	"github.com/rohmanhakim/page-scraper/internal/metadata"
	"github.com/rohmanhakim/page-scraper/pkg/failure"
	"github.com/rohmanhakim/page-scraper/pkg/hashutil"
)

func TestToJSON(t *testing.T) {
	tests := []struct {
		name  string
		items []string
		want  string
	}{
		{name: "two items", items: []string{"a", "b"}, want: `["a","b"]`},
		{name: "nil slice", items: nil, want: `[]`},
		{name: "empty slice", items: []string{}, want: `[]`},
		{name: "markup not escaped", items: []string{"<b>x & y</b>"}, want: `["<b>x & y</b>"]`},
		{name: "quotes escaped", items: []string{`say "hi"`}, want: `["say \"hi\""]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exporter.ToJSON(tt.items); got != tt.want {
				t.Errorf("ToJSON() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestToCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")

	if err := exporter.ToCSV([]string{"a", "b"}, path); err != nil {
		t.Fatalf("ToCSV() error = %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(content), "\n"), "\n")
	if len(lines) != 2 || lines[0] != "a" || lines[1] != "b" {
		t.Errorf("lines = %q, want [a b]", lines)
	}
}

func TestToCSV_QuotesWhenNeeded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	if err := exporter.ToCSV([]string{"plain", "with, comma", `with "quote"`}, path); err != nil {
		t.Fatalf("ToCSV() error = %v", err)
	}

	content, _ := os.ReadFile(path)
	want := "plain\n\"with, comma\"\n\"with \"\"quote\"\"\"\n"
	if string(content) != want {
		t.Errorf("content = %q, want %q", content, want)
	}
}

func TestToCSV_CreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "out.csv")

	if err := exporter.ToCSV([]string{"x"}, path); err != nil {
		t.Fatalf("ToCSV() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file at %s: %v", path, err)
	}
}

func TestToCSV_PathError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	err := exporter.ToCSV([]string{"a"}, filepath.Join(blocker, "sub", "out.csv"))
	if err == nil {
		t.Fatal("expected error when parent is a regular file")
	}

	var exportErr *exporter.ExportError
	if !errors.As(err, &exportErr) {
		t.Fatalf("expected *ExportError, got %T", err)
	}
	if exportErr.Cause != exporter.ErrCausePathError {
		t.Errorf("cause = %q, want %q", exportErr.Cause, exporter.ErrCausePathError)
	}
	if exportErr.Kind() != failure.KindIO {
		t.Errorf("kind = %v, want io", exportErr.Kind())
	}
	if exportErr.Severity() != failure.SeverityFatal {
		t.Errorf("path errors should be fatal")
	}
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")

	if err := exporter.WriteJSON([]string{"a", "b"}, path); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	content, _ := os.ReadFile(path)
	if string(content) != "[\"a\",\"b\"]\n" {
		t.Errorf("content = %q", content)
	}
}

func TestLocalExporter_Export_Success(t *testing.T) {
	tests := []struct {
		name     string
		format   exporter.Format
		file     string
		want     string
		wantKind metadata.ArtifactKind
	}{
		{
			name:     "json",
			format:   exporter.FormatJSON,
			file:     "out.json",
			want:     "[\"a\",\"b\"]\n",
			wantKind: metadata.ArtifactJSON,
		},
		{
			name:     "csv",
			format:   exporter.FormatCSV,
			file:     "out.csv",
			want:     "a\nb\n",
			wantKind: metadata.ArtifactCSV,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			mockSink := &metadataSinkMock{}
			exp := exporter.NewLocalExporter(mockSink)

			result, err := exp.Export([]string{"a", "b"}, tt.format, path)
			if err != nil {
				t.Fatalf("Export() error = %v", err)
			}

			content, readErr := os.ReadFile(path)
			if readErr != nil {
				t.Fatalf("failed to read output: %v", readErr)
			}
			if string(content) != tt.want {
				t.Errorf("content = %q, want %q", content, tt.want)
			}

			expectedHash := hashutil.HashBytes([]byte(tt.want))
			if result.ContentHash() != expectedHash {
				t.Errorf("ContentHash = %s, want %s", result.ContentHash(), expectedHash)
			}
			if result.Items() != 2 {
				t.Errorf("Items = %d, want 2", result.Items())
			}
			if result.Path() != path {
				t.Errorf("Path = %s, want %s", result.Path(), path)
			}
			if result.Format() != tt.format {
				t.Errorf("Format = %s, want %s", result.Format(), tt.format)
			}

			if mockSink.recordErrorCalled {
				t.Error("expected RecordError not to be called for successful export")
			}
			if !mockSink.recordArtifactCalled {
				t.Fatal("expected RecordArtifact to be called")
			}
			if mockSink.recordArtifactKind != tt.wantKind {
				t.Errorf("artifact kind = %s, want %s", mockSink.recordArtifactKind, tt.wantKind)
			}
			if mockSink.recordArtifactPath != path {
				t.Errorf("artifact path = %s, want %s", mockSink.recordArtifactPath, path)
			}
			if got := findAttrValue(mockSink.recordArtifactAttrs, metadata.AttrItems); got != "2" {
				t.Errorf("AttrItems = %q, want 2", got)
			}
		})
	}
}

func TestLocalExporter_Export_Failure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	path := filepath.Join(blocker, "out.json")

	mockSink := &metadataSinkMock{}
	exp := exporter.NewLocalExporter(mockSink)

	_, err := exp.Export([]string{"a"}, exporter.FormatJSON, path)
	if err == nil {
		t.Fatal("expected error")
	}

	if !mockSink.recordErrorCalled {
		t.Fatal("expected RecordError to be called on failure")
	}
	if mockSink.recordErrorPackageName != "exporter" {
		t.Errorf("packageName = %s, want exporter", mockSink.recordErrorPackageName)
	}
	if mockSink.recordErrorAction != "LocalExporter.Export" {
		t.Errorf("action = %s, want LocalExporter.Export", mockSink.recordErrorAction)
	}
	if mockSink.recordErrorCause != metadata.CauseStorageFailure {
		t.Errorf("cause = %v, want storage failure", mockSink.recordErrorCause)
	}
	if !strings.Contains(mockSink.recordErrorDetails, "export error") {
		t.Errorf("details = %q", mockSink.recordErrorDetails)
	}
	if got := findAttrValue(mockSink.recordErrorAttrs, metadata.AttrWritePath); got != path {
		t.Errorf("AttrWritePath = %q, want %q", got, path)
	}
	if mockSink.recordArtifactCalled {
		t.Error("expected RecordArtifact not to be called on failure")
	}
}

func TestLocalExporter_Export_UnknownFormat(t *testing.T) {
	exp := exporter.NewLocalExporter(nil)

	_, err := exp.Export([]string{"a"}, exporter.Format("xml"), filepath.Join(t.TempDir(), "out.xml"))
	if err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		raw     string
		want    exporter.Format
		wantErr bool
	}{
		{raw: "", want: exporter.FormatJSON},
		{raw: "json", want: exporter.FormatJSON},
		{raw: "csv", want: exporter.FormatCSV},
		{raw: "xml", wantErr: true},
	}
	for _, tt := range tests {
		got, err := exporter.ParseFormat(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) err = %v, wantErr %v", tt.raw, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path   string
		want   exporter.Format
		wantOK bool
	}{
		{path: "out/items.json", want: exporter.FormatJSON, wantOK: true},
		{path: "items.CSV", want: exporter.FormatCSV, wantOK: true},
		{path: "items.txt"},
		{path: "items"},
	}
	for _, tt := range tests {
		got, ok := exporter.FormatFromPath(tt.path)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("FormatFromPath(%q) = (%q, %v), want (%q, %v)", tt.path, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestEncode(t *testing.T) {
	jsonBytes, err := exporter.Encode([]string{"a", "b"}, exporter.FormatJSON)
	if err != nil {
		t.Fatalf("Encode json: %v", err)
	}
	if string(jsonBytes) != "[\"a\",\"b\"]\n" {
		t.Errorf("json = %q", jsonBytes)
	}

	csvBytes, err := exporter.Encode([]string{"a", "b"}, exporter.FormatCSV)
	if err != nil {
		t.Fatalf("Encode csv: %v", err)
	}
	if string(csvBytes) != "a\nb\n" {
		t.Errorf("csv = %q", csvBytes)
	}

	if _, err := exporter.Encode(nil, exporter.Format("xml")); err == nil {
		t.Error("expected error for unknown format")
	}
}
