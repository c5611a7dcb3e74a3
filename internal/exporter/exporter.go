package exporter

import (
	"errors"
	"strconv"
	"time"

	"github.com/rohmanhakim/page-scraper/internal/metadata"
	"github.com/rohmanhakim/page-scraper/pkg/failure"
	"github.com/rohmanhakim/page-scraper/pkg/hashutil"
)

type Exporter interface {
	Export(items []string, format Format, path string) (WriteResult, failure.ClassifiedError)
}

// LocalExporter writes results to the local filesystem and reports every
// written artifact (or failure) to the metadata sink.
type LocalExporter struct {
	metadataSink metadata.MetadataSink
}

func NewLocalExporter(metadataSink metadata.MetadataSink) *LocalExporter {
	if metadataSink == nil {
		metadataSink = &metadata.NoopSink{}
	}
	return &LocalExporter{
		metadataSink: metadataSink,
	}
}

func (l *LocalExporter) Export(items []string, format Format, path string) (WriteResult, failure.ClassifiedError) {
	result, err := export(items, format, path)
	if err != nil {
		l.metadataSink.RecordError(
			time.Now(),
			"exporter",
			"LocalExporter.Export",
			mapExportErrorToMetadataCause(err),
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrWritePath, path),
			},
		)
		return WriteResult{}, err
	}

	l.metadataSink.RecordArtifact(
		artifactKind(format),
		result.Path(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrItems, strconv.Itoa(result.Items())),
			metadata.NewAttr(metadata.AttrWritePath, result.Path()),
		},
	)
	return result, nil
}

func export(items []string, format Format, path string) (WriteResult, *ExportError) {
	encoded, err := Encode(items, format)
	if err == nil {
		err = writeFile(path, encoded)
	}
	if err != nil {
		var exportErr *ExportError
		if !errors.As(err, &exportErr) {
			exportErr = &ExportError{Message: err.Error(), Cause: ErrCauseWriteFailure, Err: err}
		}
		exportErr.Path = path
		return WriteResult{}, exportErr
	}

	contentHash := hashutil.HashBytes(encoded)
	return NewWriteResult(path, format, len(items), contentHash), nil
}

func artifactKind(format Format) metadata.ArtifactKind {
	if format == FormatCSV {
		return metadata.ArtifactCSV
	}
	return metadata.ArtifactJSON
}
