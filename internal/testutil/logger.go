package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
)

// NopLogger returns a logger that discards all output.
// Use this in tests to avoid log noise.
func NopLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// LogRecorder captures JSON log lines at every level for assertions
type LogRecorder struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// NewLogRecorder returns a recorder and a logger writing into it
func NewLogRecorder() (*LogRecorder, *slog.Logger) {
	r := &LogRecorder{}
	return r, slog.New(slog.NewJSONHandler(r, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func (r *LogRecorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buf.Write(p)
}

// Entries returns the decoded log lines recorded so far
func (r *LogRecorder) Entries() []map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()

	var entries []map[string]any
	dec := json.NewDecoder(bytes.NewReader(r.buf.Bytes()))
	for {
		var e map[string]any
		if err := dec.Decode(&e); err != nil {
			return entries
		}
		entries = append(entries, e)
	}
}

// Has reports whether a line with the given level and message was logged
func (r *LogRecorder) Has(level slog.Level, msg string) bool {
	for _, e := range r.Entries() {
		if e[slog.LevelKey] == level.String() && e[slog.MessageKey] == msg {
			return true
		}
	}
	return false
}

// AtLeast returns the recorded lines logged at level or above
func (r *LogRecorder) AtLeast(level slog.Level) []map[string]any {
	var matched []map[string]any
	for _, e := range r.Entries() {
		name, _ := e[slog.LevelKey].(string)
		var l slog.Level
		if err := l.UnmarshalText([]byte(name)); err != nil {
			continue
		}
		if l >= level {
			matched = append(matched, e)
		}
	}
	return matched
}
