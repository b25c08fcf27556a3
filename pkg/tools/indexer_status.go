package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/user/searchguard/pkg/elicit"
)

type indexerStatusInput struct {
	Name string `json:"name" jsonschema:"description=Name of the indexer to inspect"`
}

var indexerStatusProperties = map[string]elicit.PropertySpec{
	"name": {
		Type:        "string",
		Title:       "Indexer name",
		Description: "Name of the indexer to inspect",
	},
}

// IndexerStatusTool reports the execution history of an indexer.
type IndexerStatusTool struct {
	deps Deps
}

func NewIndexerStatusTool(deps Deps) *IndexerStatusTool {
	return &IndexerStatusTool{deps: deps}
}

func (t *IndexerStatusTool) Name() string {
	return "indexer_status"
}

func (t *IndexerStatusTool) Description() string {
	return "Fetch the current status and recent execution history of an indexer."
}

func (t *IndexerStatusTool) Definition() mcp.Tool {
	return mcp.NewToolWithRawSchema(t.Name(), t.Description(), inputSchema(&indexerStatusInput{}))
}

func (t *IndexerStatusTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	call := newCall(t.deps, t.Name())
	args, invalid := call.collect(ctx, req.GetArguments(), indexerStatusProperties, []string{"name"})
	if invalid != nil {
		return invalid, nil
	}
	name := stringArg(args, "name")
	body, err := t.deps.Search.GetIndexerStatus(ctx, name)
	if err != nil {
		return call.failure(err, map[string]any{"indexer": name}), nil
	}
	return call.success(ctx, body, nil), nil
}
