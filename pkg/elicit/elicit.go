// Package elicit interactively collects missing call parameters from the
// calling client. A prompt is raced against a deadline: the client may
// answer, decline, or never respond, and the coordinator resolves in
// bounded time regardless.
package elicit

import (
	"context"
	"time"

	"github.com/user/searchguard/pkg/log"
)

// Action is the client's disposition toward an elicitation request.
type Action string

const (
	// ActionAccept means the client supplied values.
	ActionAccept Action = "accept"
	// ActionDecline means the client refused to supply values.
	ActionDecline Action = "decline"
	// ActionCancel means the client dismissed the request.
	ActionCancel Action = "cancel"
)

// PropertySpec describes one requested parameter.
type PropertySpec struct {
	Type        string   `json:"type"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Enum        []any    `json:"enum,omitempty"`
	Minimum     *float64 `json:"minimum,omitempty"`
	Maximum     *float64 `json:"maximum,omitempty"`
	MinLength   *int     `json:"minLength,omitempty"`
	MaxLength   *int     `json:"maxLength,omitempty"`
	Default     any      `json:"default,omitempty"`
}

// Schema is the structure of the values being requested.
type Schema struct {
	Type       string                  `json:"type"`
	Properties map[string]PropertySpec `json:"properties"`
	Required   []string                `json:"required,omitempty"`
}

// Request asks the client for a set of structured values.
type Request struct {
	Message         string `json:"message"`
	RequestedSchema Schema `json:"requestedSchema"`
}

// Response is the client's answer. Content is present only on accept.
type Response struct {
	Action  Action         `json:"action"`
	Content map[string]any `json:"content,omitempty"`
}

// PromptSurface is the prompt-capable collaborator, typically backed by the
// client side of the tool-call transport. Implementations may block until
// ctx is done; the coordinator tolerates surfaces that never answer.
type PromptSurface interface {
	Elicit(ctx context.Context, req Request) (Response, error)
}

// NoopSurface is the incapable-client implementation: it declines
// immediately, so callers fall back to ordinary parameter validation.
type NoopSurface struct{}

// Elicit declines every request.
func (NoopSurface) Elicit(ctx context.Context, req Request) (Response, error) {
	return Response{Action: ActionDecline}, nil
}

// DefaultTimeout bounds how long a prompt may stay unanswered.
const DefaultTimeout = 2 * time.Minute

// Coordinator collects missing parameters through a PromptSurface.
type Coordinator struct {
	surface PromptSurface
	timeout time.Duration
	log     log.Logger
}

// NewCoordinator creates a Coordinator. surface may be nil for an
// incapable client; timeout <= 0 selects DefaultTimeout; logger may be nil.
func NewCoordinator(surface PromptSurface, timeout time.Duration, logger log.Logger) *Coordinator {
	if surface == nil {
		surface = NoopSurface{}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = log.NopLogger{}
	}
	return &Coordinator{surface: surface, timeout: timeout, log: logger}
}
