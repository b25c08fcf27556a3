// Package testutil provides testing utilities for the searchguard packages.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// ControlPlane is an in-memory fake of the search control plane, served
// over httptest. It supports the index and indexer routes the client uses,
// plus scripted failures and indexer status sequences for exercising the
// classification and polling paths.
type ControlPlane struct {
	*httptest.Server

	mu       sync.Mutex
	indexes  map[string]json.RawMessage
	statuses []string // scripted indexer run statuses, consumed per request
	forced   *forcedResponse
	requests int
}

type forcedResponse struct {
	status     int
	body       string
	retryAfter string
	remaining  int
}

// NewControlPlane starts a fake control plane. Close it when done.
func NewControlPlane() *ControlPlane {
	cp := &ControlPlane{indexes: make(map[string]json.RawMessage)}
	cp.Server = httptest.NewServer(http.HandlerFunc(cp.handle))
	return cp
}

// AddIndex seeds an index definition.
func (cp *ControlPlane) AddIndex(name string, definition json.RawMessage) {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	cp.indexes[name] = definition
}

// HasIndex reports whether the named index exists.
func (cp *ControlPlane) HasIndex(name string) bool {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	_, ok := cp.indexes[name]
	return ok
}

// ScriptStatuses sets the sequence of indexer run statuses reported by the
// status route, one per request; the last entry repeats.
func (cp *ControlPlane) ScriptStatuses(statuses ...string) {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	cp.statuses = statuses
}

// FailNext forces the next n requests to fail with the given status and
// upstream error message. retryAfter, when non-empty, is sent as the
// Retry-After header.
func (cp *ControlPlane) FailNext(n, status int, message, retryAfter string) {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	cp.forced = &forcedResponse{
		status:     status,
		body:       fmt.Sprintf(`{"error":{"message":%q}}`, message),
		retryAfter: retryAfter,
		remaining:  n,
	}
}

// Requests returns how many requests the fake has served.
func (cp *ControlPlane) Requests() int {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	return cp.requests
}

func (cp *ControlPlane) handle(w http.ResponseWriter, r *http.Request) {
	cp.mu.Lock()
	cp.requests++
	if cp.forced != nil && cp.forced.remaining > 0 {
		cp.forced.remaining--
		forced := *cp.forced
		cp.mu.Unlock()
		if forced.retryAfter != "" {
			w.Header().Set("Retry-After", forced.retryAfter)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(forced.status)
		fmt.Fprint(w, forced.body)
		return
	}
	cp.mu.Unlock()

	path := strings.TrimSuffix(r.URL.Path, "/")
	switch {
	case path == "/indexes" && r.Method == http.MethodGet:
		cp.listIndexes(w)
	case path == "/indexes" && r.Method == http.MethodPost:
		cp.createIndex(w, r)
	case strings.HasPrefix(path, "/indexes/") && strings.HasSuffix(path, "/docs/search"):
		cp.searchDocuments(w, r)
	case strings.HasPrefix(path, "/indexes/") && strings.HasSuffix(path, "/docs/$count"):
		fmt.Fprint(w, "0")
	case strings.HasPrefix(path, "/indexes/"):
		cp.indexByName(w, r, strings.TrimPrefix(path, "/indexes/"))
	case strings.HasPrefix(path, "/indexers/") && strings.HasSuffix(path, "/status"):
		cp.indexerStatus(w)
	case strings.HasPrefix(path, "/indexers/") && strings.HasSuffix(path, "/run"):
		w.WriteHeader(http.StatusAccepted)
	case strings.HasPrefix(path, "/indexers/") && strings.HasSuffix(path, "/reset"):
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusNotFound, "no route for "+r.URL.Path)
	}
}

func (cp *ControlPlane) listIndexes(w http.ResponseWriter) {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	values := make([]json.RawMessage, 0, len(cp.indexes))
	for _, def := range cp.indexes {
		values = append(values, def)
	}
	writeJSON(w, map[string]any{"value": values})
}

func (cp *ControlPlane) createIndex(w http.ResponseWriter, r *http.Request) {
	var def struct {
		Name string `json:"name"`
	}
	body := json.RawMessage{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := json.Unmarshal(body, &def); err != nil || def.Name == "" {
		writeError(w, http.StatusBadRequest, "index definition requires a name")
		return
	}

	cp.mu.Lock()
	_, exists := cp.indexes[def.Name]
	if !exists {
		cp.indexes[def.Name] = body
	}
	cp.mu.Unlock()

	if exists {
		writeError(w, http.StatusConflict, fmt.Sprintf("index %q already exists", def.Name))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	w.Write(body)
}

func (cp *ControlPlane) indexByName(w http.ResponseWriter, r *http.Request, name string) {
	switch r.Method {
	case http.MethodGet:
		cp.mu.Lock()
		def, ok := cp.indexes[name]
		cp.mu.Unlock()
		if !ok {
			writeError(w, http.StatusNotFound, fmt.Sprintf("no index with the name %q", name))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(def)
	case http.MethodPut:
		body := json.RawMessage{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		cp.mu.Lock()
		cp.indexes[name] = body
		cp.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
	case http.MethodDelete:
		cp.mu.Lock()
		_, ok := cp.indexes[name]
		delete(cp.indexes, name)
		cp.mu.Unlock()
		if !ok {
			writeError(w, http.StatusNotFound, fmt.Sprintf("no index with the name %q", name))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (cp *ControlPlane) searchDocuments(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"value": []any{}, "@odata.count": 0})
}

func (cp *ControlPlane) indexerStatus(w http.ResponseWriter) {
	cp.mu.Lock()
	status := "inProgress"
	if len(cp.statuses) > 0 {
		status = cp.statuses[0]
		if len(cp.statuses) > 1 {
			cp.statuses = cp.statuses[1:]
		}
	}
	cp.mu.Unlock()
	writeJSON(w, map[string]any{
		"status":     "running",
		"lastResult": map[string]any{"status": status},
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"error":{"message":%q}}`, message)
}
