package log

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the module wide root logger. Until Configure is called it writes
// human readable output to stderr at info level, so library callers that
// never touch logging still get sensible diagnostics.
var Logger = newLogger(Options{})

// Options control how the root logger is built.
type Options struct {
	// Level filters events below the threshold, given as a zerolog level
	// name (debug, info, warn, error, ...). Unknown or empty strings mean
	// info.
	Level string

	// JSON switches from human readable console lines to one JSON object
	// per event, the format log aggregators ingest.
	JSON bool

	// Output receives the events. Defaults to stderr so notarized documents
	// printed on stdout stay machine readable.
	Output io.Writer
}

// Configure replaces the root logger. Call it once at startup, before any
// component loggers are created.
func Configure(opts Options) {
	Logger = newLogger(opts)
}

func newLogger(opts Options) zerolog.Logger {
	output := opts.Output
	if output == nil {
		output = os.Stderr
	}
	if !opts.JSON {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: time.RFC3339}
	}
	level, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}

// ForComponent returns a child logger tagged with the component name. The
// notary and its security module derive their loggers from this, adding
// their own context fields (account, protocol) at the call site.
func ForComponent(name string) zerolog.Logger {
	return Logger.With().Str("component", name).Logger()
}
