package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"newsdesk/config"
	"newsdesk/internal/oops"

	"github.com/rs/zerolog"
)

func init() {
	zerolog.ErrorStackMarshaler = oops.ZerologStackMarshaler
	zerolog.TimeFieldFormat = time.RFC3339
}

// New builds the service logger. LOG_FORMAT=pretty switches to the console writer.
func New(cfg config.LogConfig) zerolog.Logger {
	return NewWithWriter(cfg, os.Stdout)
}

func NewWithWriter(cfg config.LogConfig, out io.Writer) zerolog.Logger {
	if strings.EqualFold(cfg.Format, "pretty") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).
		Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Str("service", "newsdesk").
		Logger()
}

func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// LogPanicValue records a recovered panic value with a stack trace.
func LogPanicValue(logger zerolog.Logger, val interface{}, msg string) {
	if err, ok := val.(error); ok {
		l := logger.Error().Err(err)
		if _, ok := err.(*oops.Error); ok {
			l = l.Stack()
		} else {
			l = l.Interface(zerolog.ErrorStackFieldName, oops.Trace())
		}
		l.Msg(msg)
		return
	}
	logger.Error().
		Interface("recovered", val).
		Interface(zerolog.ErrorStackFieldName, oops.Trace()).
		Msg(msg)
}
