// Package logging provides structured logging of control-plane API calls.
// Entries are emitted as JSON Lines to a caller-supplied writer. The logger
// is injected through constructors; the library holds no global logger.
package logging

import (
	"encoding/json"
	"io"
	"time"
)

// Logger records one entry per API round trip. Implementations record the
// service, operation, duration, and result of each call.
type Logger interface {
	Log(service, operation string, duration time.Duration, err error)
}

// Entry is a single API call log record.
type Entry struct {
	Timestamp  string `json:"timestamp"`
	Service    string `json:"service"`
	Operation  string `json:"operation"`
	DurationMs int64  `json:"duration_ms"`
	Result     string `json:"result"`
	Error      string `json:"error,omitempty"`
}

// writerLogger emits JSON Lines entries to w.
type writerLogger struct {
	w io.Writer
}

// NewWriterLogger creates a Logger that appends one JSON line per API call
// to w.
func NewWriterLogger(w io.Writer) Logger {
	return &writerLogger{w: w}
}

// Log writes a single call record. Logging failures are swallowed; they
// must never fail a control-plane call.
func (l *writerLogger) Log(service, operation string, duration time.Duration, err error) {
	entry := Entry{
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Service:    service,
		Operation:  operation,
		DurationMs: duration.Milliseconds(),
		Result:     "success",
	}
	if err != nil {
		entry.Result = "error"
		entry.Error = err.Error()
	}

	data, jsonErr := json.Marshal(entry)
	if jsonErr != nil {
		return
	}
	data = append(data, '\n')
	_, _ = l.w.Write(data)
}

// nopLogger discards all entries.
type nopLogger struct{}

// NewNopLogger returns a Logger that discards everything. It is the default
// when no logger is injected.
func NewNopLogger() Logger {
	return nopLogger{}
}

func (nopLogger) Log(string, string, time.Duration, error) {}
