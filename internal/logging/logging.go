package logging

import (
	"io"
	"os"

	"github.com/joshvoll/textindexer/internal/textindexer/index"
	"github.com/rs/zerolog"
)

// TimeFormat is the timestamp layout used by the console writer.
const TimeFormat = "15:04:05.000"

// Config is the configuration of the zerolog logger and writers.
type Config struct {
	// Output receives the log lines. Defaults to os.Stderr.
	Output io.Writer

	// EncodeLogsAsJSON makes the logger emit JSON instead of console lines.
	EncodeLogsAsJSON bool

	// WithColor enables console coloring.
	WithColor bool

	// Level is the minimum level that is logged. The zero value logs
	// everything from debug up.
	Level zerolog.Level
}

// Configure returns a logger writing to cfg.Output.
func Configure(cfg Config) zerolog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if !cfg.EncodeLogsAsJSON {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: TimeFormat, NoColor: !cfg.WithColor}
	}
	return zerolog.New(out).Level(cfg.Level).With().Timestamp().Logger()
}

// Failure logs err at error level. When err carries an index failure,
// its message and cause are emitted as separate fields.
func Failure(l zerolog.Logger, err error, msg string) {
	ev := l.Error()
	if f, ok := index.AsFailure(err); ok {
		ev = ev.Str("failure", f.Message())
		if cause := f.Cause(); cause != nil {
			ev = ev.AnErr("cause", cause)
		}
	}
	ev.Err(err).Msg(msg)
}
