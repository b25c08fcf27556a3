package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/tidwall/gjson"
)

// MessagesFake is an httptest-backed fake of the Anthropic Messages API.
// It answers every POST with a single scripted text block, which is all the
// summarizer consumes, and records the prompts it received.
type MessagesFake struct {
	*httptest.Server

	mu      sync.Mutex
	reply   string
	status  int
	prompts []string
	models  []string
}

// NewMessagesFake starts a fake that replies with the given text.
// Close it when done.
func NewMessagesFake(reply string) *MessagesFake {
	f := &MessagesFake{reply: reply, status: http.StatusOK}
	f.Server = httptest.NewServer(http.HandlerFunc(f.handle))
	return f
}

// FailWith makes subsequent requests fail with the given HTTP status.
func (f *MessagesFake) FailWith(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = status
}

// Prompts returns the user-message text of each request seen so far.
func (f *MessagesFake) Prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}

// Models returns the model named by each request seen so far.
func (f *MessagesFake) Models() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.models...)
}

func (f *MessagesFake) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.prompts = append(f.prompts, gjson.GetBytes(body, "messages.0.content.0.text").String())
	f.models = append(f.models, gjson.GetBytes(body, "model").String())
	reply, status := f.reply, f.status
	f.mu.Unlock()

	if status != http.StatusOK {
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]any{
			"type":  "error",
			"error": map[string]any{"type": "api_error", "message": "scripted failure"},
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"id":            "msg_fake",
		"type":          "message",
		"role":          "assistant",
		"model":         gjson.GetBytes(body, "model").String(),
		"content":       []map[string]any{{"type": "text", "text": reply}},
		"stop_reason":   "end_turn",
		"stop_sequence": nil,
		"usage":         map[string]any{"input_tokens": 1, "output_tokens": 1},
	})
}
