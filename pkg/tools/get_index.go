package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/user/searchguard/pkg/elicit"
)

type getIndexInput struct {
	Name string `json:"name" jsonschema:"description=Name of the index to fetch"`
}

var getIndexProperties = map[string]elicit.PropertySpec{
	"name": {
		Type:        "string",
		Title:       "Index name",
		Description: "Name of the index to fetch",
	},
}

// GetIndexTool fetches a single index definition.
type GetIndexTool struct {
	deps Deps
}

func NewGetIndexTool(deps Deps) *GetIndexTool {
	return &GetIndexTool{deps: deps}
}

func (t *GetIndexTool) Name() string {
	return "get_index"
}

func (t *GetIndexTool) Description() string {
	return "Fetch the full definition of a single search index by name."
}

func (t *GetIndexTool) Definition() mcp.Tool {
	return mcp.NewToolWithRawSchema(t.Name(), t.Description(), inputSchema(&getIndexInput{}))
}

func (t *GetIndexTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	call := newCall(t.deps, t.Name())
	args, invalid := call.collect(ctx, req.GetArguments(), getIndexProperties, []string{"name"})
	if invalid != nil {
		return invalid, nil
	}
	name := stringArg(args, "name")
	body, err := t.deps.Search.GetIndex(ctx, name)
	if err != nil {
		return call.failure(err, map[string]any{"index": name}), nil
	}
	return call.success(ctx, body, nil), nil
}
