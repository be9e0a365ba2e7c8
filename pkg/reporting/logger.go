package reporting

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// LogLevel is the verbosity of a Logger.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LogFormat selects how log lines are rendered.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

// LoggerConfig configures a Logger.
type LoggerConfig struct {
	Level  LogLevel
	Format LogFormat
	Output io.Writer
}

// Field is one structured attribute attached to a log line. Use the
// constructors below rather than building one directly, so a call site
// can never pass a non-string key or an odd field out of a mismatched
// pair — both classes of mistake the demo CLI's earlier key/value
// variadic logging calls were prone to.
type Field struct {
	key   string
	value interface{}
}

// Str attaches a string field, e.g. a scenario name or file path.
func Str(key, value string) Field { return Field{key: key, value: value} }

// Int attaches an integer field, e.g. a server or client count.
func Int(key string, value int) Field { return Field{key: key, value: value} }

// Bool attaches a boolean field, e.g. a policy knob's new value.
func Bool(key string, value bool) Field { return Field{key: key, value: value} }

// Err attaches the error under the conventional "error" key.
func Err(err error) Field { return Field{key: "error", value: err.Error()} }

// Logger is a structured logger used by the demo CLI (cmd/netfabric-demo)
// to narrate a scenario run — separate from netfabric's own internal
// per-processor logger, which stays private to that package.
type Logger struct {
	logger zerolog.Logger
}

// NewLogger builds a Logger from cfg, defaulting to stdout/info.
func NewLogger(cfg LoggerConfig) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}

	var output io.Writer = cfg.Output
	if cfg.Format == LogFormatText {
		output = zerolog.ConsoleWriter{
			Out:        cfg.Output,
			TimeFormat: time.RFC3339,
			NoColor:    false,
		}
	}

	zlog := zerolog.New(output).With().Timestamp().Logger()

	switch cfg.Level {
	case LogLevelDebug:
		zlog = zlog.Level(zerolog.DebugLevel)
	case LogLevelWarn:
		zlog = zlog.Level(zerolog.WarnLevel)
	case LogLevelError:
		zlog = zlog.Level(zerolog.ErrorLevel)
	default:
		zlog = zlog.Level(zerolog.InfoLevel)
	}

	return &Logger{logger: zlog}
}

func (l *Logger) emit(event *zerolog.Event, msg string, fields []Field) {
	for _, f := range fields {
		event.Interface(f.key, f.value)
	}
	event.Msg(msg)
}

func (l *Logger) Debug(msg string, fields ...Field) { l.emit(l.logger.Debug(), msg, fields) }
func (l *Logger) Info(msg string, fields ...Field)  { l.emit(l.logger.Info(), msg, fields) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.emit(l.logger.Warn(), msg, fields) }
func (l *Logger) Error(msg string, fields ...Field) { l.emit(l.logger.Error(), msg, fields) }

// WithField returns a child Logger carrying one extra structured field,
// attached to every line it logs from here on — used to thread a run's
// RunID through a request-scoped logger without repeating it at every
// call site.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{logger: l.logger.With().Interface(key, value).Logger()}
}
