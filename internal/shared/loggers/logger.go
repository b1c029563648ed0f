package loggers

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

const (
	FormatJSON    = "json"
	FormatConsole = "console"

	OutputStdout = "stdout"
	OutputStderr = "stderr"
)

type Logger = zerolog.Logger

func init() {
	zerolog.TimestampFunc = func() time.Time {
		return time.Now().UTC()
	}
}

// Options selects the level, encoding and destination of a logger. Empty fields fall back to
// info, JSON and stdout.
type Options struct {
	Level  string
	Format string
	Output string
}

// New builds the process logger. An unparsable level is returned as an error together with a no-op logger.
func New(opts Options) (Logger, error) {
	level := zerolog.InfoLevel
	if opts.Level != "" {
		parsed, err := zerolog.ParseLevel(opts.Level)
		if err != nil {
			return zerolog.Nop(), err
		}
		level = parsed
	}

	return NewWithWriter(writerFor(opts), level), nil
}

// NewWithWriter builds a logger that writes to w with a timestamp and caller on every event.
func NewWithWriter(w io.Writer, level zerolog.Level) Logger {
	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Caller().
		Logger()
}

func writerFor(opts Options) io.Writer {
	var out io.Writer = os.Stdout
	if opts.Output == OutputStderr {
		out = os.Stderr
	}
	if opts.Format == FormatConsole {
		return zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return out
}

// Ctx returns the logger attached to ctx, or a disabled logger when there is none.
var Ctx = func(ctx context.Context) *Logger {
	return zerolog.Ctx(ctx)
}
