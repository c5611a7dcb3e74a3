package cmd

import (
	"io"
	"log/slog"
	"time"

	"github.com/rohmanhakim/page-scraper/pkg/fileutil"
	"gopkg.in/natefinch/lumberjack.v2"
)

// setupLogger builds the JSON logger of a run. Records go to stderr and, when
// logFile is set, to a size-rotated file. The returned func closes the file.
func setupLogger(level slog.Level, logFile string, stderr io.Writer) (*slog.Logger, func() error, error) {
	writer := stderr
	closeFn := func() error { return nil }

	if logFile != "" {
		if err := fileutil.EnsureParentDir(logFile); err != nil {
			return nil, nil, err
		}
		logRotator := &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    5,
			MaxBackups: 3,
			MaxAge:     30,
			Compress:   true,
		}
		writer = io.MultiWriter(stderr, logRotator)
		closeFn = logRotator.Close
	}

	handler := slog.NewJSONHandler(writer, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Value = slog.StringValue(a.Value.Time().Format(time.RFC3339Nano))
			}
			return a
		},
	}).WithAttrs([]slog.Attr{slog.String("service", "page-scraper")})

	return slog.New(handler), closeFn, nil
}
