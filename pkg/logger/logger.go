package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog with typed fields and an optional buffered sink
// that mirrors entries into the dashboard's log center.
type Logger struct {
	zl   zerolog.Logger
	name string
	sink *BufferedSink
}

type Config struct {
	Level      string // debug, info, warn, error
	Format     string // json or console
	Output     string // stdout, stderr, or file path
	TimeFormat string
}

func New(cfg *Config) (*Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	zerolog.SetGlobalLevel(level)

	var output io.Writer
	switch cfg.Output {
	case "", "stdout":
		output = os.Stdout
	case "stderr":
		output = os.Stderr
	default:
		file, err := os.OpenFile(cfg.Output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("could not open log file: %w", err)
		}
		output = file
	}

	if cfg.TimeFormat == "" {
		cfg.TimeFormat = time.RFC3339Nano
	}
	zerolog.TimeFieldFormat = cfg.TimeFormat

	if cfg.Format == "console" {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: cfg.TimeFormat,
		}
	}

	zl := zerolog.New(output).With().Timestamp().Logger()
	return &Logger{zl: zl}, nil
}

// Named returns a child logger tagged with a component name. The name is
// stored with mirrored entries so the log center can filter on it.
func (l *Logger) Named(name string) *Logger {
	child := l.zl.With().Str("logger", name).Logger()
	return &Logger{zl: child, name: name, sink: l.sink}
}

// AttachSink mirrors info and above into the sink. Safe to call once at
// startup; children created afterwards inherit it.
func (l *Logger) AttachSink(sink *BufferedSink) {
	l.sink = sink
}

func (l *Logger) Debug(msg string, fields ...Field) {
	event := l.zl.Debug()
	for _, field := range fields {
		field.AddTo(event)
	}
	event.Msg(msg)
}

func (l *Logger) Info(msg string, fields ...Field) {
	event := l.zl.Info()
	for _, field := range fields {
		field.AddTo(event)
	}
	event.Msg(msg)
	l.mirror("INFO", msg, fields)
}

func (l *Logger) Warn(msg string, fields ...Field) {
	event := l.zl.Warn()
	for _, field := range fields {
		field.AddTo(event)
	}
	event.Msg(msg)
	l.mirror("WARNING", msg, fields)
}

func (l *Logger) Error(msg string, fields ...Field) {
	event := l.zl.Error()
	for _, field := range fields {
		field.AddTo(event)
	}
	event.Msg(msg)
	l.mirror("ERROR", msg, fields)
}

func (l *Logger) mirror(level, msg string, fields []Field) {
	if l.sink == nil {
		return
	}
	text := msg
	if len(fields) > 0 {
		parts := make([]string, 0, len(fields))
		for _, f := range fields {
			k, v := f.KeyValue()
			parts = append(parts, fmt.Sprintf("%s=%v", k, v))
		}
		text = msg + " " + strings.Join(parts, " ")
	}
	l.sink.Add(Entry{
		Timestamp: time.Now().UTC(),
		Level:     level,
		Logger:    l.name,
		Message:   text,
	})
}

// Field is a typed structured-logging field.
type Field interface {
	AddTo(event *zerolog.Event)
	KeyValue() (string, any)
}

type stringField struct {
	key   string
	value string
}

func (f stringField) AddTo(event *zerolog.Event) { event.Str(f.key, f.value) }
func (f stringField) KeyValue() (string, any)    { return f.key, f.value }

type intField struct {
	key   string
	value int64
}

func (f intField) AddTo(event *zerolog.Event) { event.Int64(f.key, f.value) }
func (f intField) KeyValue() (string, any)    { return f.key, f.value }

type floatField struct {
	key   string
	value float64
}

func (f floatField) AddTo(event *zerolog.Event) { event.Float64(f.key, f.value) }
func (f floatField) KeyValue() (string, any)    { return f.key, f.value }

type boolField struct {
	key   string
	value bool
}

func (f boolField) AddTo(event *zerolog.Event) { event.Bool(f.key, f.value) }
func (f boolField) KeyValue() (string, any)    { return f.key, f.value }

type errorField struct {
	value error
}

func (f errorField) AddTo(event *zerolog.Event) { event.Err(f.value) }
func (f errorField) KeyValue() (string, any)    { return "error", f.value.Error() }

type anyField struct {
	key   string
	value any
}

func (f anyField) AddTo(event *zerolog.Event) { event.Interface(f.key, f.value) }
func (f anyField) KeyValue() (string, any)    { return f.key, f.value }

func String(key, value string) Field { return stringField{key, value} }

func Int(key string, value int) Field { return intField{key, int64(value)} }

func Int64(key string, value int64) Field { return intField{key, value} }

func Float64(key string, value float64) Field { return floatField{key, value} }

func Bool(key string, value bool) Field { return boolField{key, value} }

func Error(err error) Field { return errorField{err} }

func Any(key string, value any) Field { return anyField{key, value} }

func Duration(key string, value time.Duration) Field {
	return stringField{key, value.String()}
}

func Strings(key string, value []string) Field {
	return stringField{key, strings.Join(value, ", ")}
}
