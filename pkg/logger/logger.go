package logger

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
)

// Logger is the logging surface shared by all modules.
type Logger interface {
	Debugf(format string, v ...interface{})
	Infof(format string, v ...interface{})
	Warnf(format string, v ...interface{})
	Errorf(format string, v ...interface{})
	Fatalf(format string, v ...interface{})

	WithModule(name string) Logger
	WithFields(fields map[string]interface{}) Logger
}

const (
	levelDebug = iota
	levelInfo
	levelWarn
	levelError
)

func NewLogger(level string) Logger {
	return &stdLogger{
		level: parseLevel(level),
		out:   log.New(os.Stdout, "", log.LstdFlags),
	}
}

type stdLogger struct {
	level  int
	module string
	fields map[string]interface{}
	out    *log.Logger
}

func parseLevel(l string) int {
	switch strings.ToLower(l) {
	case "debug":
		return levelDebug
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

func (s *stdLogger) WithModule(name string) Logger {
	clone := *s
	clone.module = name
	return &clone
}

func (s *stdLogger) WithFields(fields map[string]interface{}) Logger {
	clone := *s
	merged := make(map[string]interface{}, len(s.fields)+len(fields))
	for k, v := range s.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	clone.fields = merged
	return &clone
}

func (s *stdLogger) logf(minLevel int, tag, format string, v ...interface{}) {
	if s.level > minLevel {
		return
	}
	var b strings.Builder
	b.WriteString(tag)
	if s.module != "" {
		fmt.Fprintf(&b, " [%s]", s.module)
	}
	b.WriteString(" ")
	fmt.Fprintf(&b, format, v...)
	if len(s.fields) > 0 {
		keys := make([]string, 0, len(s.fields))
		for k := range s.fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, s.fields[k])
		}
	}
	s.out.Print(b.String())
}

func (s *stdLogger) Debugf(format string, v ...interface{}) { s.logf(levelDebug, "DEBUG", format, v...) }
func (s *stdLogger) Infof(format string, v ...interface{})  { s.logf(levelInfo, "INFO", format, v...) }
func (s *stdLogger) Warnf(format string, v ...interface{})  { s.logf(levelWarn, "WARN", format, v...) }
func (s *stdLogger) Errorf(format string, v ...interface{}) { s.logf(levelError, "ERROR", format, v...) }

func (s *stdLogger) Fatalf(format string, v ...interface{}) {
	s.logf(levelError, "FATAL", format, v...)
	os.Exit(1)
}

type ctxKey struct{}

// NewContext attaches a logger to the context so deeply nested modules can reuse it.
func NewContext(ctx context.Context, logg Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logg)
}

// FromContext returns the context logger, or a default info-level logger.
func FromContext(ctx context.Context) Logger {
	if logg, ok := ctx.Value(ctxKey{}).(Logger); ok {
		return logg
	}
	return NewLogger("info")
}
