package log

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestAuditLoggerDisabled(t *testing.T) {
	logger := NewAuditLogger(AuditConfig{})
	if logger != nil {
		t.Fatal("expected nil logger when FilePath is empty")
	}

	// Nil logger must be safe to use
	logger.LogCall("id", "list_indexes", true, "OK", "raw", time.Millisecond)
	if err := logger.Close(); err != nil {
		t.Errorf("nil Close returned error: %v", err)
	}
}

func TestAuditLoggerWritesNDJSON(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "audit.log")

	logger := NewAuditLogger(AuditConfig{FilePath: logPath})
	if logger == nil {
		t.Fatal("expected audit logger, got nil")
	}

	logger.LogCall("call-1", "create_index", true, "OK", "raw", 42*time.Millisecond)
	logger.LogCall("call-2", "search_documents", false, "RATE_LIMIT", "", 7*time.Millisecond)
	if err := logger.Close(); err != nil {
		t.Fatalf("failed to close: %v", err)
	}

	f, err := os.Open(logPath)
	if err != nil {
		t.Fatalf("failed to open audit log: %v", err)
	}
	defer f.Close()

	var entries []auditEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e auditEntry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatalf("invalid NDJSON line %q: %v", scanner.Text(), err)
		}
		entries = append(entries, e)
	}

	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Tool != "create_index" || !entries[0].OK || entries[0].DurationMS != 42 {
		t.Errorf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].Code != "RATE_LIMIT" || entries[1].OK {
		t.Errorf("unexpected second entry: %+v", entries[1])
	}
}
