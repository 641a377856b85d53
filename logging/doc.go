// Package logging provides a minimal logging interface and adapters for the
// graph engine.
//
// The Logger interface defines the standard logging methods (Debug, Info,
// Warn, Error) that the engine uses for observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - NoOpLogger for silent operation (testing, minimal setups)
//   - GraphLogger with per-invocation context and superstep helpers
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "text", false)
//	g := langgraph.New(func(o *langgraph.Options) { o.Logger = logger })
//
// The design intentionally keeps the interface minimal to avoid vendor
// lock-in while supporting structured logging where available.
package logging
