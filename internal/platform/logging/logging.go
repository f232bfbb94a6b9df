package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options selects where and how much the service logs.
type Options struct {
	Level string
	// Development switches stdout to zerolog's human readable console writer.
	Development bool
	// File, when set, receives a JSON copy of every line with size based
	// rotation.
	File string
}

// New builds the process logger. Stdout is always written. An unknown level
// falls back to info.
func New(opts Options) zerolog.Logger {
	return NewWithWriter(os.Stdout, opts)
}

func NewWithWriter(stdout io.Writer, opts Options) zerolog.Logger {
	var out io.Writer = stdout
	if opts.Development {
		out = zerolog.ConsoleWriter{Out: stdout, TimeFormat: time.RFC3339}
	}

	if opts.File != "" {
		out = zerolog.MultiLevelWriter(out, &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    100,
			MaxBackups: 5,
			MaxAge:     30,
			Compress:   true,
		})
	}

	return zerolog.New(out).
		Level(ParseLevel(opts.Level)).
		With().
		Timestamp().
		Str("service", "medication-server").
		Logger()
}

func ParseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
