package log

import (
	"encoding/json"
	"sync"
	"time"
)

// AuditLogger records the outcome of every tool call to a rotating NDJSON
// file, one entry per call. A nil AuditLogger is valid and means disabled;
// all methods are nil-safe.
type AuditLogger struct {
	mu     sync.Mutex
	writer *rotatingWriter
}

// auditEntry is the persisted shape of one tool call record.
type auditEntry struct {
	Timestamp  string `json:"timestamp"`
	CallID     string `json:"call_id"`
	Tool       string `json:"tool"`
	OK         bool   `json:"ok"`
	Code       string `json:"code,omitempty"`
	Mode       string `json:"mode,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

// NewAuditLogger creates an AuditLogger with the given configuration.
// Returns nil if FilePath is empty or the file cannot be opened (disabled).
func NewAuditLogger(config AuditConfig) *AuditLogger {
	if config.FilePath == "" {
		return nil
	}

	writer, err := newRotatingWriter(config.FilePath, config.MaxSize, config.MaxFiles)
	if err != nil {
		return nil
	}

	return &AuditLogger{writer: writer}
}

// LogCall records one completed tool call. code is the classified outcome
// code and mode is the governance mode applied to the response payload;
// either may be empty.
func (l *AuditLogger) LogCall(callID, tool string, ok bool, code, mode string, duration time.Duration) {
	if l == nil {
		return
	}

	entry := auditEntry{
		Timestamp:  time.Now().UTC().Format(time.RFC3339Nano),
		CallID:     callID,
		Tool:       tool,
		OK:         ok,
		Code:       code,
		Mode:       mode,
		DurationMS: duration.Milliseconds(),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	l.mu.Lock()
	l.writer.Write(append(data, '\n'))
	l.mu.Unlock()
}

// Close closes the audit logger. Safe on nil.
func (l *AuditLogger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.writer != nil {
		return l.writer.Close()
	}
	return nil
}
