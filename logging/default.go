package logging

import (
	"fmt"
	"log"
	"maps"
	"os"
	"sort"
	"strings"
)

// StdLogger writes leveled messages to stderr through Go's standard log
// package, rendering fields as sorted key=value pairs so output is stable
// across runs.
type StdLogger struct {
	out    *log.Logger
	level  Level
	fields Fields
}

// NewStdLogger creates a logger at InfoLevel, or at the level named by the
// VOLTAGRAM_LOG environment variable (debug, info, warn, error) when set.
func NewStdLogger() *StdLogger {
	l := &StdLogger{
		out:    log.New(os.Stderr, "", log.LstdFlags),
		level:  InfoLevel,
		fields: make(Fields),
	}
	switch strings.ToLower(os.Getenv("VOLTAGRAM_LOG")) {
	case "debug":
		l.level = DebugLevel
	case "warn":
		l.level = WarnLevel
	case "error":
		l.level = ErrorLevel
	}
	return l
}

func (s *StdLogger) render(level Level, err error, msg string, fields []Fields) string {
	merged := make(Fields, len(s.fields))
	maps.Copy(merged, s.fields)
	for _, f := range fields {
		maps.Copy(merged, f)
	}

	var b strings.Builder
	b.WriteString("[")
	b.WriteString(level.String())
	b.WriteString("] ")
	b.WriteString(msg)
	if err != nil {
		b.WriteString(": ")
		b.WriteString(err.Error())
	}
	if len(merged) > 0 {
		keys := make([]string, 0, len(merged))
		for k := range merged {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, merged[k])
		}
	}
	return b.String()
}

func (s *StdLogger) log(level Level, err error, msg string, fields []Fields) {
	if level < s.level {
		return
	}
	s.out.Println(s.render(level, err, msg, fields))
}

func (s *StdLogger) Debug(msg string, fields ...Fields) { s.log(DebugLevel, nil, msg, fields) }

func (s *StdLogger) Info(msg string, fields ...Fields) { s.log(InfoLevel, nil, msg, fields) }

func (s *StdLogger) Warn(msg string, fields ...Fields) { s.log(WarnLevel, nil, msg, fields) }

func (s *StdLogger) Error(err error, msg string, fields ...Fields) {
	s.log(ErrorLevel, err, msg, fields)
}

func (s *StdLogger) WithFields(fields Fields) Logger {
	merged := make(Fields, len(s.fields)+len(fields))
	maps.Copy(merged, s.fields)
	maps.Copy(merged, fields)
	return &StdLogger{out: s.out, level: s.level, fields: merged}
}

func (s *StdLogger) SetLevel(level Level) { s.level = level }

// NoOpLogger discards everything. Tests and embedders that bring their own
// logging install it via SetGlobalLogger(nil).
type NoOpLogger struct{}

func (NoOpLogger) Debug(msg string, fields ...Fields)            {}
func (NoOpLogger) Info(msg string, fields ...Fields)             {}
func (NoOpLogger) Warn(msg string, fields ...Fields)             {}
func (NoOpLogger) Error(err error, msg string, fields ...Fields) {}
func (NoOpLogger) WithFields(fields Fields) Logger               { return NoOpLogger{} }
func (NoOpLogger) SetLevel(level Level)                          {}
