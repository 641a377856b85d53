// Package logging provides a tiny abstraction over slog so downstream code
// can depend on a minimal interface (Logger) while allowing users to plug any
// structured logger. It also offers a richer GraphLogger with per-invocation
// context and domain specific helpers for supersteps and chain executions.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// LogLevel is a thin enum for user friendly level configuration decoupled
// from slog.
type LogLevel int

const (
	// LogLevelDebug is the debug logging level.
	LogLevelDebug LogLevel = iota
	// LogLevelInfo is the informational logging level.
	LogLevelInfo
	// LogLevelWarn is the warning logging level.
	LogLevelWarn
	// LogLevelError is the error logging level.
	LogLevelError
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger defines the minimal logging interface the engine depends on.
// Arguments follow slog's alternating key/value convention. Users can
// provide their own implementation or use the built-in adapters.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// SlogAdapter wraps *slog.Logger to implement the Logger interface.
type SlogAdapter struct {
	*slog.Logger
}

// Debug logs a debug message.
func (s *SlogAdapter) Debug(msg string, args ...any) { s.Logger.Debug(msg, args...) }

// Info logs an informational message.
func (s *SlogAdapter) Info(msg string, args ...any) { s.Logger.Info(msg, args...) }

// Warn logs a warning message.
func (s *SlogAdapter) Warn(msg string, args ...any) { s.Logger.Warn(msg, args...) }

// Error logs an error message.
func (s *SlogAdapter) Error(msg string, args ...any) { s.Logger.Error(msg, args...) }

// NewSlogAdapter creates a Logger from *slog.Logger.
func NewSlogAdapter(logger *slog.Logger) Logger {
	return &SlogAdapter{Logger: logger}
}

// NewDefaultSlogLogger creates a Logger using slog.Default().
func NewDefaultSlogLogger() Logger {
	return NewSlogAdapter(slog.Default())
}

// LoggerConfig configures construction of a GraphLogger.
type LoggerConfig struct {
	Level        LogLevel
	Format       string // json or text
	Output       io.Writer
	AddSource    bool
	Graph        string
	InvocationID string
}

// DefaultLoggerConfig returns a baseline JSON info level configuration.
func DefaultLoggerConfig() *LoggerConfig {
	return &LoggerConfig{Level: LogLevelInfo, Format: "json", Output: os.Stdout}
}

// NewLogger builds a GraphLogger from a config (or defaults if nil).
func NewLogger(cfg *LoggerConfig) *GraphLogger {
	if cfg == nil {
		cfg = DefaultLoggerConfig()
	}
	opts := &slog.HandlerOptions{Level: slogLevel(cfg.Level), AddSource: cfg.AddSource}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(cfg.Output, opts)
	} else {
		handler = slog.NewJSONHandler(cfg.Output, opts)
	}
	return &GraphLogger{logger: slog.New(handler), level: cfg.Level, graph: cfg.Graph, invocationID: cfg.InvocationID}
}

// NewSlogLogger creates a new GraphLogger with the specified level, format
// ("json" or "text") and source annotation.
func NewSlogLogger(level LogLevel, format string, addSource bool) *GraphLogger {
	cfg := DefaultLoggerConfig()
	cfg.Level = level
	if format != "" {
		cfg.Format = format
	}
	cfg.AddSource = addSource
	return NewLogger(cfg)
}

func slogLevel(l LogLevel) slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelInfo:
		return slog.LevelInfo
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// GraphLogger wraps slog.Logger adding per-invocation context and superstep
// convenience methods. It is cheap to copy via the With* methods.
type GraphLogger struct {
	logger       *slog.Logger
	level        LogLevel
	graph        string
	invocationID string
}

// WithGraph returns a copy with the graph name attached to every log entry.
func (l *GraphLogger) WithGraph(name string) *GraphLogger {
	nl := *l
	nl.graph = name
	return &nl
}

// WithInvocation returns a copy with the invocation identifier attached.
func (l *GraphLogger) WithInvocation(id string) *GraphLogger {
	nl := *l
	nl.invocationID = id
	return &nl
}

func (l *GraphLogger) kv(args []any) []any {
	out := make([]any, 0, len(args)+4)
	if l.graph != "" {
		out = append(out, "graph", l.graph)
	}
	if l.invocationID != "" {
		out = append(out, "invocation_id", l.invocationID)
	}
	return append(out, args...)
}

// Debug logs at debug level.
func (l *GraphLogger) Debug(msg string, args ...any) {
	if l.level > LogLevelDebug {
		return
	}
	l.logger.Log(context.Background(), slog.LevelDebug, msg, l.kv(args)...)
}

// Info logs at info level.
func (l *GraphLogger) Info(msg string, args ...any) {
	if l.level > LogLevelInfo {
		return
	}
	l.logger.Log(context.Background(), slog.LevelInfo, msg, l.kv(args)...)
}

// Warn logs at warn level.
func (l *GraphLogger) Warn(msg string, args ...any) {
	if l.level > LogLevelWarn {
		return
	}
	l.logger.Log(context.Background(), slog.LevelWarn, msg, l.kv(args)...)
}

// Error logs at error level.
func (l *GraphLogger) Error(msg string, args ...any) {
	if l.level > LogLevelError {
		return
	}
	l.logger.Log(context.Background(), slog.LevelError, msg, l.kv(args)...)
}

// LogStep records the outcome of one superstep barrier: the committed
// channels and the number of chains that ran.
func (l *GraphLogger) LogStep(step int, updated []string, active int, dur time.Duration) {
	if l.level > LogLevelDebug {
		return
	}
	l.logger.Log(context.Background(), slog.LevelDebug, "pregel.step",
		l.kv([]any{"step", step, "updated", updated, "active_chains", active, "duration", dur})...)
}

// LogChainRun records a single chain execution within a step.
func (l *GraphLogger) LogChainRun(chain string, step int, dur time.Duration, err error) {
	if err != nil {
		l.logger.Log(context.Background(), slog.LevelError, "pregel.chain.failed",
			l.kv([]any{"chain", chain, "step", step, "duration", dur, "error", err.Error()})...)
		return
	}
	if l.level > LogLevelDebug {
		return
	}
	l.logger.Log(context.Background(), slog.LevelDebug, "pregel.chain.run",
		l.kv([]any{"chain", chain, "step", step, "duration", dur})...)
}

// NoOpLogger discards all log messages. Useful for testing or when logging
// is disabled.
type NoOpLogger struct{}

// Debug logs a debug message.
func (NoOpLogger) Debug(string, ...any) {}

// Info logs an informational message.
func (NoOpLogger) Info(string, ...any) {}

// Warn logs a warning message.
func (NoOpLogger) Warn(string, ...any) {}

// Error logs an error message.
func (NoOpLogger) Error(string, ...any) {}
