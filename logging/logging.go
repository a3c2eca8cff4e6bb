package logging

// Level represents the severity of a log message.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Fields holds structured key/value pairs attached to a log message.
type Fields map[string]any

// Logger is the logging interface the library writes against. Analysis
// code only ever logs through this interface so embedding applications can
// supply their own implementation via SetGlobalLogger.
type Logger interface {
	Debug(msg string, fields ...Fields)
	Info(msg string, fields ...Fields)
	Warn(msg string, fields ...Fields)
	Error(err error, msg string, fields ...Fields)

	// WithFields returns a logger with preset fields merged into every
	// subsequent message.
	WithFields(fields Fields) Logger

	// SetLevel sets the minimum level that will be emitted.
	SetLevel(level Level)
}

var globalLogger Logger = NewStdLogger()

// SetGlobalLogger replaces the process-wide logger. Passing nil installs
// the no-op logger.
func SetGlobalLogger(logger Logger) {
	if logger == nil {
		globalLogger = NoOpLogger{}
		return
	}
	globalLogger = logger
}

// GetGlobalLogger returns the current process-wide logger.
func GetGlobalLogger() Logger {
	return globalLogger
}

// Package-level helpers forwarding to the global logger.

func Debug(msg string, fields ...Fields) { globalLogger.Debug(msg, fields...) }

func Info(msg string, fields ...Fields) { globalLogger.Info(msg, fields...) }

func Warn(msg string, fields ...Fields) { globalLogger.Warn(msg, fields...) }

func Error(err error, msg string, fields ...Fields) { globalLogger.Error(err, msg, fields...) }

func WithFields(fields Fields) Logger { return globalLogger.WithFields(fields) }

func SetLevel(level Level) { globalLogger.SetLevel(level) }
