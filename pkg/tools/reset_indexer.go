package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/user/searchguard/pkg/elicit"
)

type resetIndexerInput struct {
	Name string `json:"name" jsonschema:"description=Name of the indexer to reset"`
}

var resetIndexerProperties = map[string]elicit.PropertySpec{
	"name": {
		Type:        "string",
		Title:       "Indexer name",
		Description: "Name of the indexer to reset",
	},
}

// ResetIndexerTool clears an indexer's change-tracking state so the next
// run re-reads the data source from scratch.
type ResetIndexerTool struct {
	deps Deps
}

func NewResetIndexerTool(deps Deps) *ResetIndexerTool {
	return &ResetIndexerTool{deps: deps}
}

func (t *ResetIndexerTool) Name() string {
	return "reset_indexer"
}

func (t *ResetIndexerTool) Description() string {
	return "Reset an indexer's change tracking state, forcing a full re-index on the next run."
}

func (t *ResetIndexerTool) Definition() mcp.Tool {
	return mcp.NewToolWithRawSchema(t.Name(), t.Description(), inputSchema(&resetIndexerInput{}))
}

func (t *ResetIndexerTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	call := newCall(t.deps, t.Name())
	args, invalid := call.collect(ctx, req.GetArguments(), resetIndexerProperties, []string{"name"})
	if invalid != nil {
		return invalid, nil
	}
	name := stringArg(args, "name")
	if err := t.deps.Search.ResetIndexer(ctx, name); err != nil {
		return call.failure(err, map[string]any{"indexer": name}), nil
	}
	return call.success(ctx, map[string]any{"reset": name}, nil), nil
}
