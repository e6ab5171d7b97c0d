package telemetry

import (
	"fmt"
	"log/slog"
)

// EventLog keeps the most recent narrative events, bounded in length, and
// mirrors each record to slog. Observers read it between cycles.
type EventLog struct {
	entries []string
	size    int
}

// NewEventLog creates a log holding at most size entries.
func NewEventLog(size int) *EventLog {
	if size < 1 {
		size = 1
	}
	return &EventLog{size: size}
}

// Record formats and appends an event, evicting the oldest past the bound.
func (l *EventLog) Record(cycle int64, kind, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	entry := fmt.Sprintf("[C%04d] %s: %s", cycle, kind, msg)
	l.entries = append(l.entries, entry)
	if len(l.entries) > l.size {
		l.entries = l.entries[len(l.entries)-l.size:]
	}
	slog.Debug("event", "cycle", cycle, "kind", kind, "message", msg)
}

// Entries returns a copy of the stored events, oldest-first.
func (l *EventLog) Entries() []string {
	return append([]string(nil), l.entries...)
}

// Len returns the number of stored events.
func (l *EventLog) Len() int {
	return len(l.entries)
}

// Restore replaces the log contents with entries, keeping at most the
// bounded tail. Entries are not re-mirrored to slog.
func (l *EventLog) Restore(entries []string) {
	if len(entries) > l.size {
		entries = entries[len(entries)-l.size:]
	}
	l.entries = append(l.entries[:0], entries...)
}

// Clear drops all entries.
func (l *EventLog) Clear() {
	l.entries = l.entries[:0]
}
