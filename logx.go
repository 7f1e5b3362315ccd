package kinescope

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Logger is the structured logging interface spec §7 requires: "the
// engine never swallows an error silently — every recovered error is
// logged via the structured logging interface." Shaped after
// SentryShot's pkg/log chained-event API (itself hand-rolled, inspired
// by zerolog) rather than pulling in a third-party logging dependency —
// see DESIGN.md.
type Logger struct {
	mu     sync.Mutex
	out    io.Writer
	once   map[string]bool // AssetMissing: log once per key (spec §7)
	prefix string
}

// NewLogger creates a Logger writing to w with the given component
// prefix (e.g. "lottie", "director"), matching the teacher's
// "[willow] ..." convention in debug.go.
func NewLogger(w io.Writer, prefix string) *Logger {
	return &Logger{out: w, prefix: prefix, once: make(map[string]bool)}
}

// DefaultLogger writes to stderr with the "kinescope" prefix, for hosts
// that don't care to configure one explicitly.
func DefaultLogger() *Logger { return NewLogger(os.Stderr, "kinescope") }

// Event is a single log entry under construction. Zero value is unusable;
// obtain one from Logger.Error/Warn/Info.
type Event struct {
	logger *Logger
	level  string
	fields []string
	err    error
}

func (l *Logger) newEvent(level string) *Event {
	return &Event{logger: l, level: level}
}

// Error starts an error-level event.
func (l *Logger) Error() *Event { return l.newEvent("ERROR") }

// Warn starts a warning-level event.
func (l *Logger) Warn() *Event { return l.newEvent("WARN") }

// Info starts an info-level event.
func (l *Logger) Info() *Event { return l.newEvent("INFO") }

// Str attaches a string field to the event.
func (e *Event) Str(key, value string) *Event {
	e.fields = append(e.fields, fmt.Sprintf("%s=%q", key, value))
	return e
}

// Int attaches an integer field to the event.
func (e *Event) Int(key string, value int) *Event {
	e.fields = append(e.fields, fmt.Sprintf("%s=%d", key, value))
	return e
}

// Err attaches the triggering error to the event.
func (e *Event) Err(err error) *Event {
	e.err = err
	return e
}

// Msg renders and writes the event.
func (e *Event) Msg(msg string) {
	e.logger.mu.Lock()
	defer e.logger.mu.Unlock()
	line := fmt.Sprintf("[%s] %s: %s", e.logger.prefix, e.level, msg)
	for _, f := range e.fields {
		line += " " + f
	}
	if e.err != nil {
		line += " err=" + e.err.Error()
	}
	fmt.Fprintln(e.logger.out, line)
}

// Once logs msg at most once per distinct key for the lifetime of the
// Logger. Used for the AssetMissing "log once per key" policy (spec §7).
func (l *Logger) Once(key, msg string) {
	l.mu.Lock()
	logged := l.once[key]
	if !logged {
		l.once[key] = true
	}
	l.mu.Unlock()
	if !logged {
		l.Warn().Str("key", key).Msg(msg)
	}
}
