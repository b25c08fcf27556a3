package insight

import (
	"errors"
	"fmt"
	"testing"
)

// remoteError is a test double for the typed errors the search client
// produces: a message plus an upstream status and retry header.
type remoteError struct {
	status     int
	msg        string
	retryAfter string
}

func (e *remoteError) Error() string            { return e.msg }
func (e *remoteError) StatusCode() int          { return e.status }
func (e *remoteError) RetryAfterHeader() string { return e.retryAfter }

func TestClassifyStatusCodes(t *testing.T) {
	c := NewClassifier(nil)

	tests := []struct {
		name      string
		err       error
		wantCode  Code
		wantRetry int
	}{
		{name: "throttled seconds header", err: &remoteError{status: 429, msg: "too many requests", retryAfter: "5"}, wantCode: CodeRateLimit, wantRetry: 5},
		{name: "throttled ms header", err: &remoteError{status: 429, msg: "too many requests", retryAfter: "2000ms"}, wantCode: CodeRateLimit, wantRetry: 2},
		{name: "throttled ms header rounds up", err: &remoteError{status: 429, msg: "too many requests", retryAfter: "1500ms"}, wantCode: CodeRateLimit, wantRetry: 2},
		{name: "service unavailable", err: &remoteError{status: 503, msg: "service unavailable"}, wantCode: CodeRateLimit},
		{name: "unauthorized", err: &remoteError{status: 401, msg: "unauthorized"}, wantCode: CodeAuth},
		{name: "forbidden", err: &remoteError{status: 403, msg: "forbidden"}, wantCode: CodeAuth},
		{name: "not found", err: &remoteError{status: 404, msg: "no index with the name 'products'"}, wantCode: CodeNotFound},
		{name: "conflict", err: &remoteError{status: 409, msg: "precondition failed"}, wantCode: CodeConflict},
		{name: "plain error falls back to network", err: errors.New("dial tcp: connection refused"), wantCode: CodeNetwork},
		{name: "unmapped status falls back to network", err: &remoteError{status: 500, msg: "internal error"}, wantCode: CodeNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.err, nil)
			if got.Code != tt.wantCode {
				t.Fatalf("want code %q, got %q", tt.wantCode, got.Code)
			}
			if got.OK {
				t.Fatal("failure classified as OK")
			}
			if got.RetryAfterSeconds != tt.wantRetry {
				t.Fatalf("want retryAfterSeconds %d, got %d", tt.wantRetry, got.RetryAfterSeconds)
			}
			if got.Message == "" {
				t.Fatal("message must always be populated")
			}
		})
	}
}

func TestClassifyHeuristicOverrides(t *testing.T) {
	c := NewClassifier(nil)

	tests := []struct {
		name     string
		err      error
		wantCode Code
	}{
		{
			name:     "schema change overrides conflict",
			err:      &remoteError{status: 409, msg: "Existing field 'title' cannot be changed unless the index is rebuilt; changing the analyzer requires an index rebuild"},
			wantCode: CodeDowntimeRequired,
		},
		{
			name:     "vector dimension mismatch overrides bad request",
			err:      &remoteError{status: 400, msg: "The vector field 'embedding' has 1536 dimensions but the query vector has 768 dimensions"},
			wantCode: CodeVectorDimMismatch,
		},
		{
			name:     "malformed filter overrides bad request",
			err:      &remoteError{status: 400, msg: "Invalid expression: syntax error in $filter at position 12"},
			wantCode: CodeBadFilter,
		},
		{
			name:     "storage quota overrides auth-ish 403",
			err:      &remoteError{status: 403, msg: "Cannot create document: the storage quota for this service has been exceeded"},
			wantCode: CodeStorageLimit,
		},
		{
			name:     "tier cap overrides auth-ish 403",
			err:      &remoteError{status: 403, msg: "Cannot create index: maximum number of indexes allowed for this service is 3"},
			wantCode: CodeTierLimit,
		},
		{
			name:     "cooldown overrides throttle",
			err:      &remoteError{status: 429, msg: "Indexer invocation limit reached, please try again in 86 seconds"},
			wantCode: CodeIndexerCooldown,
		},
		{
			name:     "heuristics apply without any status",
			err:      fmt.Errorf("run indexer: %w", errors.New("indexer invocation limit reached, please try again in 2 minutes")),
			wantCode: CodeIndexerCooldown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.err, nil)
			if got.Code != tt.wantCode {
				t.Fatalf("want code %q, got %q", tt.wantCode, got.Code)
			}
			if got.Recommendation == "" {
				t.Fatal("heuristic overrides must carry a recommendation")
			}
		})
	}
}

func TestClassifyCooldownDelayExtraction(t *testing.T) {
	c := NewClassifier(nil)

	got := c.Classify(&remoteError{status: 429, msg: "indexer invocation limit, try again in 86 seconds"}, nil)
	if got.RetryAfterSeconds != 86 {
		t.Fatalf("want retryAfterSeconds 86, got %d", got.RetryAfterSeconds)
	}

	got = c.Classify(errors.New("indexer invocation limit, try again in 3 minutes"), nil)
	if got.RetryAfterSeconds != 180 {
		t.Fatalf("want retryAfterSeconds 180, got %d", got.RetryAfterSeconds)
	}
}

func TestClassifyPreservesExtras(t *testing.T) {
	c := NewClassifier(nil)
	extras := map[string]any{"operation": "create_index", "index": "products"}

	got := c.Classify(&remoteError{status: 409, msg: "cannot be changed unless the index is rebuilt"}, extras)
	if got.Code != CodeDowntimeRequired {
		t.Fatalf("want code %q, got %q", CodeDowntimeRequired, got.Code)
	}
	if got.Extras["operation"] != "create_index" || got.Extras["index"] != "products" {
		t.Fatalf("extras not preserved through override: %v", got.Extras)
	}
	if got.Extras["status"] != 409 {
		t.Fatalf("upstream status not recorded in extras: %v", got.Extras)
	}

	// The caller's map must not be mutated.
	if _, ok := extras["status"]; ok {
		t.Fatal("caller's extras map was mutated")
	}
}

func TestClassifyNilError(t *testing.T) {
	c := NewClassifier(nil)
	got := c.Classify(nil, map[string]any{"operation": "list_indexes"})
	if !got.OK || got.Code != CodeOK {
		t.Fatalf("nil error must classify as OK, got %+v", got)
	}
}

func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		input  string
		want   int
		wantOK bool
	}{
		{"5", 5, true},
		{"0", 0, true},
		{"2000ms", 2, true},
		{"1500ms", 2, true},
		{"999ms", 1, true},
		{" 10 ", 10, true},
		{"", 0, false},
		{"soon", 0, false},
		{"-1", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := parseRetryAfter(tt.input)
			if ok != tt.wantOK || got != tt.want {
				t.Fatalf("parseRetryAfter(%q) = (%d, %v), want (%d, %v)", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
