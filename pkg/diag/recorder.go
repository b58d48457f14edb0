package diag

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// Event is a single recorded diagnostic
type Event struct {
	Level slog.Level
	Msg   string
	Args  []any
}

// Attr returns the value recorded for key, if any
func (e Event) Attr(key string) (any, bool) {
	for i := 0; i+1 < len(e.Args); i += 2 {
		if k, ok := e.Args[i].(string); ok && k == key {
			return e.Args[i+1], true
		}
	}
	return nil, false
}

// Recorder is a Sink that keeps every event in memory. Used in tests.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) record(level slog.Level, msg string, args []any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Level: level, Msg: msg, Args: args})
}

func (r *Recorder) Trace(msg string, args ...any) { r.record(LevelTrace, msg, args) }
func (r *Recorder) Debug(msg string, args ...any) { r.record(slog.LevelDebug, msg, args) }
func (r *Recorder) Info(msg string, args ...any)  { r.record(slog.LevelInfo, msg, args) }
func (r *Recorder) Warn(msg string, args ...any)  { r.record(slog.LevelWarn, msg, args) }
func (r *Recorder) Error(msg string, args ...any) { r.record(slog.LevelError, msg, args) }

// Events returns a copy of everything recorded so far
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// AtLevel returns the recorded events with exactly the given level
func (r *Recorder) AtLevel(level slog.Level) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

// String dumps the recorded events, one per line
func (r *Recorder) String() string {
	var b strings.Builder
	for _, e := range r.Events() {
		fmt.Fprintf(&b, "%s %s %v\n", e.Level, e.Msg, e.Args)
	}
	return b.String()
}
