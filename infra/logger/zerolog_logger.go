package logger

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ZerologLogger adapts rs/zerolog to the core Logger interface. Every entry
// carries the component it was created for.
type ZerologLogger struct {
	log zerolog.Logger
}

// NewZerologLogger builds a component-tagged logger. APP_ENV=dev switches to
// the human-readable console writer; LOG_LEVEL (debug, info, warn, error)
// raises the threshold, anything unset or unknown logs everything.
func NewZerologLogger(component string) Logger {
	var out zerolog.Logger
	if strings.EqualFold(os.Getenv("APP_ENV"), "dev") {
		cw := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		out = zerolog.New(cw)
	} else {
		out = zerolog.New(os.Stdout)
	}
	out = out.Level(levelFromEnv()).With().Timestamp().Str("component", component).Logger()
	return &ZerologLogger{log: out}
}

func levelFromEnv() zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(os.Getenv("LOG_LEVEL")))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.TraceLevel
	}
	return lvl
}

func (l *ZerologLogger) Debugf(format string, args ...any) {
	l.log.Debug().Msgf(format, args...)
}

// Debugw logs a message with structured key/value fields.
func (l *ZerologLogger) Debugw(msg string, fields map[string]any) {
	ev := l.log.Debug()
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}

func (l *ZerologLogger) Infof(format string, args ...any) {
	l.log.Info().Msgf(format, args...)
}

func (l *ZerologLogger) Warnf(format string, args ...any) {
	l.log.Warn().Msgf(format, args...)
}

func (l *ZerologLogger) Errorf(format string, args ...any) {
	l.log.Error().Msgf(format, args...)
}
