// Package logger provides the key/value logger used across the service,
// backed by zerolog.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Fatal(msg string, keysAndValues ...interface{})
}

type zeroLogger struct {
	l zerolog.Logger
}

// New returns a JSON logger writing to stdout. Unknown levels fall back to info.
func New(level string) Logger {
	return NewWithWriter(os.Stdout, level)
}

// NewConsole returns a human-readable, colorized logger for development.
func NewConsole(level string) Logger {
	return NewWithWriter(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}, level)
}

func NewWithWriter(w io.Writer, level string) Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return &zeroLogger{l: zerolog.New(w).Level(lvl).With().Timestamp().Logger()}
}

// Nop discards everything.
func Nop() Logger {
	return &zeroLogger{l: zerolog.Nop()}
}

func (z *zeroLogger) Debug(msg string, keysAndValues ...interface{}) {
	z.l.Debug().Fields(pairs(keysAndValues)).Msg(msg)
}

func (z *zeroLogger) Info(msg string, keysAndValues ...interface{}) {
	z.l.Info().Fields(pairs(keysAndValues)).Msg(msg)
}

func (z *zeroLogger) Warn(msg string, keysAndValues ...interface{}) {
	z.l.Warn().Fields(pairs(keysAndValues)).Msg(msg)
}

func (z *zeroLogger) Error(msg string, keysAndValues ...interface{}) {
	z.l.Error().Fields(pairs(keysAndValues)).Msg(msg)
}

func (z *zeroLogger) Fatal(msg string, keysAndValues ...interface{}) {
	z.l.Fatal().Fields(pairs(keysAndValues)).Msg(msg)
}

// pairs turns a loose key/value list into a map zerolog can render.
// A dangling key gets the value "!MISSING".
func pairs(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, (len(keysAndValues)+1)/2)
	for i := 0; i < len(keysAndValues); i += 2 {
		key := fmt.Sprint(keysAndValues[i])
		if i+1 >= len(keysAndValues) {
			fields[key] = "!MISSING"
			break
		}
		value := keysAndValues[i+1]
		if err, ok := value.(error); ok && err != nil {
			value = err.Error()
		}
		fields[key] = value
	}
	return fields
}
