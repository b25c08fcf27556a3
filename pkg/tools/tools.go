// Package tools implements the per-operation tool handlers exposed over
// the tool-call transport. Each handler is thin request/response glue: the
// reliability substance (classification, verification, governance,
// elicitation) lives in the insight, verify, govern, and elicit packages.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/user/searchguard/pkg/elicit"
	"github.com/user/searchguard/pkg/govern"
	"github.com/user/searchguard/pkg/insight"
	"github.com/user/searchguard/pkg/log"
	"github.com/user/searchguard/pkg/search"
	"github.com/user/searchguard/pkg/verify"
)

// Handler is the contract every tool implements.
type Handler interface {
	// Name returns the unique identifier for this tool.
	Name() string
	// Description returns a human-readable description of what the tool does.
	Description() string
	// Definition returns the tool definition for transport registration.
	Definition() mcp.Tool
	// Handle executes the tool. Failures are reported inside the result
	// envelope, never as a transport error.
	Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// Deps bundles the collaborators shared by all handlers.
type Deps struct {
	Search     *search.Client
	Classifier *insight.Classifier
	Governor   *govern.Governor
	Elicitor   *elicit.Coordinator
	Poll       verify.PollConfig
	Audit      *log.AuditLogger
	Log        log.Logger
}

// normalized fills optional collaborators so handlers can rely on them.
func (d Deps) normalized() Deps {
	if d.Classifier == nil {
		d.Classifier = insight.NewClassifier(d.Log)
	}
	if d.Governor == nil {
		d.Governor = govern.NewGovernor(govern.Budget{}, nil, d.Log)
	}
	if d.Elicitor == nil {
		d.Elicitor = elicit.NewCoordinator(nil, 0, d.Log)
	}
	if d.Log == nil {
		d.Log = log.NopLogger{}
	}
	return d
}

// All returns every handler wired against deps, in registration order.
func All(deps Deps) []Handler {
	deps = deps.normalized()
	return []Handler{
		NewListIndexesTool(deps),
		NewGetIndexTool(deps),
		NewCreateIndexTool(deps),
		NewUpdateIndexTool(deps),
		NewDeleteIndexTool(deps),
		NewSearchDocumentsTool(deps),
		NewCountDocumentsTool(deps),
		NewListIndexersTool(deps),
		NewGetIndexerTool(deps),
		NewRunIndexerTool(deps),
		NewResetIndexerTool(deps),
		NewIndexerStatusTool(deps),
	}
}

// Envelope is the standard response wrapper for all tool calls.
type Envelope struct {
	OK      bool             `json:"ok"`
	Meta    Meta             `json:"meta"`
	Result  json.RawMessage  `json:"result,omitempty"`
	Insight *insight.Insight `json:"insight,omitempty"`
}

// Meta carries per-call audit metadata.
type Meta struct {
	CallID            string         `json:"call_id"`
	Tool              string         `json:"tool"`
	Mode              govern.Mode    `json:"mode,omitempty"`
	OriginalSizeBytes int            `json:"original_size_bytes,omitempty"`
	Verification      *verify.Result `json:"verification,omitempty"`
}

// call tracks one tool invocation from arrival to envelope.
type call struct {
	deps  Deps
	tool  string
	id    string
	start time.Time
}

func newCall(deps Deps, tool string) *call {
	return &call{deps: deps, tool: tool, id: uuid.NewString(), start: time.Now()}
}

// collect fills missing required parameters through elicitation. When the
// client declines or cannot answer, it returns a plain parameter-validation
// result and the handler stops.
func (c *call) collect(ctx context.Context, args map[string]any, properties map[string]elicit.PropertySpec, required []string) (map[string]any, *mcp.CallToolResult) {
	if args == nil {
		args = map[string]any{}
	}
	merged, ok := c.deps.Elicitor.Collect(ctx, args, properties, required)
	if !ok {
		c.deps.Audit.LogCall(c.id, c.tool, false, "", "", time.Since(c.start))
		return nil, mcp.NewToolResultError(fmt.Sprintf("missing required parameters: %s", strings.Join(missingOf(args, required), ", ")))
	}
	return merged, nil
}

// success governs the payload and wraps it in an OK envelope.
func (c *call) success(ctx context.Context, payload any, verification *verify.Result) *mcp.CallToolResult {
	governed := c.deps.Governor.Govern(ctx, payload)
	env := Envelope{
		OK: true,
		Meta: Meta{
			CallID:            c.id,
			Tool:              c.tool,
			Mode:              governed.Mode,
			OriginalSizeBytes: governed.OriginalSizeBytes,
			Verification:      verification,
		},
		Result: governed.Payload,
	}
	c.deps.Audit.LogCall(c.id, c.tool, true, string(insight.CodeOK), string(governed.Mode), time.Since(c.start))
	return envelopeResult(env)
}

// failure classifies err and wraps the Insight in a failed envelope. The
// client always gets a classified outcome, never a raw error string.
func (c *call) failure(err error, extras map[string]any) *mcp.CallToolResult {
	if extras == nil {
		extras = map[string]any{}
	}
	extras["operation"] = c.tool
	ins := c.deps.Classifier.Classify(err, extras)
	env := Envelope{
		OK:      false,
		Meta:    Meta{CallID: c.id, Tool: c.tool},
		Insight: &ins,
	}
	c.deps.Log.Warn("server", "tool call failed",
		log.F("tool", c.tool), log.F("code", string(ins.Code)), log.F("error", err))
	c.deps.Audit.LogCall(c.id, c.tool, false, string(ins.Code), "", time.Since(c.start))
	return envelopeResult(env)
}

func envelopeResult(env Envelope) *mcp.CallToolResult {
	data, err := json.Marshal(env)
	if err != nil {
		return mcp.NewToolResultError("internal: failed to encode response envelope")
	}
	return mcp.NewToolResultText(string(data))
}

func missingOf(args map[string]any, required []string) []string {
	var missing []string
	for _, field := range required {
		if _, ok := args[field]; !ok {
			missing = append(missing, field)
		}
	}
	return missing
}

// stringArg reads a string argument, tolerating absent keys.
func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

// boolArg reads a bool argument with a default for absent keys.
func boolArg(args map[string]any, key string, def bool) bool {
	v, ok := args[key]
	if !ok {
		return def
	}
	b, ok := v.(bool)
	if !ok {
		return def
	}
	return b
}

// rawArg re-serializes an object argument for pass-through to the remote API.
func rawArg(args map[string]any, key string) (json.RawMessage, bool) {
	v, ok := args[key]
	if !ok {
		return nil, false
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, false
	}
	return data, true
}
