// Package logging builds the process-wide zerolog logger: pretty console
// output, plus a rotated JSON file when a log path is configured.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New returns a logger writing to stderr in console format. When logFile
// is non-empty the same records also go to a size-rotated file as JSON.
func New(logFile string) zerolog.Logger {
	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.DateTime}

	var w io.Writer = console
	if logFile != "" {
		w = zerolog.MultiLevelWriter(console, &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    10, // megabytes
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		})
	}

	return zerolog.New(w).With().Timestamp().Logger()
}
