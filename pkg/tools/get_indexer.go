package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/user/searchguard/pkg/elicit"
)

type getIndexerInput struct {
	Name string `json:"name" jsonschema:"description=Name of the indexer to fetch"`
}

var getIndexerProperties = map[string]elicit.PropertySpec{
	"name": {
		Type:        "string",
		Title:       "Indexer name",
		Description: "Name of the indexer to fetch",
	},
}

// GetIndexerTool fetches a single indexer definition.
type GetIndexerTool struct {
	deps Deps
}

func NewGetIndexerTool(deps Deps) *GetIndexerTool {
	return &GetIndexerTool{deps: deps}
}

func (t *GetIndexerTool) Name() string {
	return "get_indexer"
}

func (t *GetIndexerTool) Description() string {
	return "Fetch the full definition of a single indexer by name."
}

func (t *GetIndexerTool) Definition() mcp.Tool {
	return mcp.NewToolWithRawSchema(t.Name(), t.Description(), inputSchema(&getIndexerInput{}))
}

func (t *GetIndexerTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	call := newCall(t.deps, t.Name())
	args, invalid := call.collect(ctx, req.GetArguments(), getIndexerProperties, []string{"name"})
	if invalid != nil {
		return invalid, nil
	}
	name := stringArg(args, "name")
	body, err := t.deps.Search.GetIndexer(ctx, name)
	if err != nil {
		return call.failure(err, map[string]any{"indexer": name}), nil
	}
	return call.success(ctx, body, nil), nil
}
