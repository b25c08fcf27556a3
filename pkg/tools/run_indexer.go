package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/user/searchguard/pkg/elicit"
	"github.com/user/searchguard/pkg/verify"
)

type runIndexerInput struct {
	Name string `json:"name" jsonschema:"description=Name of the indexer to run"`
	Wait bool   `json:"wait,omitempty" jsonschema:"description=Poll indexer status until the run reaches a terminal state,default=false"`
}

var runIndexerProperties = map[string]elicit.PropertySpec{
	"name": {
		Type:        "string",
		Title:       "Indexer name",
		Description: "Name of the indexer to run",
	},
}

// RunIndexerTool triggers an indexer run. With wait set, it polls the
// status endpoint until the run lands in a terminal state. The envelope
// stays OK as long as the trigger was accepted; the verification block
// carries the eventual run outcome.
type RunIndexerTool struct {
	deps Deps
}

func NewRunIndexerTool(deps Deps) *RunIndexerTool {
	return &RunIndexerTool{deps: deps}
}

func (t *RunIndexerTool) Name() string {
	return "run_indexer"
}

func (t *RunIndexerTool) Description() string {
	return "Trigger an indexer run, optionally waiting for it to finish."
}

func (t *RunIndexerTool) Definition() mcp.Tool {
	return mcp.NewToolWithRawSchema(t.Name(), t.Description(), inputSchema(&runIndexerInput{}))
}

func (t *RunIndexerTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	call := newCall(t.deps, t.Name())
	args, invalid := call.collect(ctx, req.GetArguments(), runIndexerProperties, []string{"name"})
	if invalid != nil {
		return invalid, nil
	}
	name := stringArg(args, "name")
	if err := t.deps.Search.RunIndexer(ctx, name); err != nil {
		return call.failure(err, map[string]any{"indexer": name}), nil
	}
	var verification *verify.Result
	if boolArg(args, "wait", false) {
		res := verify.PollUntilTerminal(ctx, func(ctx context.Context) ([]byte, error) {
			return t.deps.Search.GetIndexerStatus(ctx, name)
		}, t.deps.Poll)
		verification = &res
	}
	return call.success(ctx, map[string]any{"started": name}, verification), nil
}
