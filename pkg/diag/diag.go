// Package diag provides the leveled diagnostics sink used by the template
// resolver and file composer.
package diag

import (
	"context"
	"log/slog"
)

// LevelTrace is one step more verbose than slog.LevelDebug
const LevelTrace = slog.LevelDebug - 4

// Sink receives leveled diagnostic events. Args are slog-style key/value pairs.
type Sink interface {
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// slogSink routes events to a slog.Logger
type slogSink struct {
	logger *slog.Logger
}

// NewSlog adapts a slog.Logger. A nil logger uses slog.Default().
func NewSlog(logger *slog.Logger) Sink {
	if logger == nil {
		logger = slog.Default()
	}
	return &slogSink{logger: logger}
}

func (s *slogSink) Trace(msg string, args ...any) {
	s.logger.Log(context.Background(), LevelTrace, msg, args...)
}

func (s *slogSink) Debug(msg string, args ...any) { s.logger.Debug(msg, args...) }
func (s *slogSink) Info(msg string, args ...any)  { s.logger.Info(msg, args...) }
func (s *slogSink) Warn(msg string, args ...any)  { s.logger.Warn(msg, args...) }
func (s *slogSink) Error(msg string, args ...any) { s.logger.Error(msg, args...) }

type discard struct{}

func (discard) Trace(string, ...any) {}
func (discard) Debug(string, ...any) {}
func (discard) Info(string, ...any)  {}
func (discard) Warn(string, ...any)  {}
func (discard) Error(string, ...any) {}

// Discard returns a Sink that drops every event
func Discard() Sink {
	return discard{}
}

// OrDiscard returns s, or Discard() when s is nil
func OrDiscard(s Sink) Sink {
	if s == nil {
		return Discard()
	}
	return s
}

// LevelForVerbosity maps a -v count to a slog level: 0 warn, 1 info, 2 debug, 3+ trace
func LevelForVerbosity(verbosity int) slog.Level {
	switch {
	case verbosity <= 0:
		return slog.LevelWarn
	case verbosity == 1:
		return slog.LevelInfo
	case verbosity == 2:
		return slog.LevelDebug
	default:
		return LevelTrace
	}
}

// ReplaceLevelName renders LevelTrace as "TRACE" and drops the time attribute.
// Intended for slog.HandlerOptions.ReplaceAttr.
func ReplaceLevelName(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}
	switch a.Key {
	case slog.TimeKey:
		return slog.Attr{}
	case slog.LevelKey:
		if level, ok := a.Value.Any().(slog.Level); ok && level <= LevelTrace {
			a.Value = slog.StringValue("TRACE")
		}
	}
	return a
}
