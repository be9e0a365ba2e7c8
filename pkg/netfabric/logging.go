package netfabric

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// LogLevel controls the verbosity of a Network's event log.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LoggerConfig configures the structured logger a Network uses for its
// dispatcher and processors.
type LoggerConfig struct {
	Level  LogLevel
	Output io.Writer
}

// logger wraps zerolog the same way the rest of this codebase's
// retrieval pack does: a thin struct around a configured
// zerolog.Logger, never the global logger, so multiple *Network
// instances in the same process (e.g. in tests) don't share log state.
type logger struct {
	z zerolog.Logger
}

func newLogger(cfg LoggerConfig) *logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	z := zerolog.New(out).With().Timestamp().Logger()

	switch cfg.Level {
	case LogLevelDebug:
		z = z.Level(zerolog.DebugLevel)
	case LogLevelWarn:
		z = z.Level(zerolog.WarnLevel)
	case LogLevelError:
		z = z.Level(zerolog.ErrorLevel)
	case LogLevelInfo, "":
		z = z.Level(zerolog.InfoLevel)
	default:
		z = z.Level(zerolog.InfoLevel)
	}
	return &logger{z: z}
}

// disabledLogger returns a logger that drops every event. NewNetwork
// does not use it: a Network built without WithLogging logs at info
// level to stdout.
func disabledLogger() *logger {
	return &logger{z: zerolog.Nop()}
}

func (l *logger) processorEvent(requestID, endName, fqName string) *zerolog.Event {
	return l.z.Debug().
		Str("request_id", requestID).
		Str("end", endName).
		Str("fq_name", fqName)
}

func (l *logger) warn() *zerolog.Event { return l.z.Warn() }
func (l *logger) error() *zerolog.Event { return l.z.Error() }
