package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

type listIndexesInput struct {
}

// ListIndexesTool lists every index on the search service.
type ListIndexesTool struct {
	deps Deps
}

func NewListIndexesTool(deps Deps) *ListIndexesTool {
	return &ListIndexesTool{deps: deps}
}

func (t *ListIndexesTool) Name() string {
	return "list_indexes"
}

func (t *ListIndexesTool) Description() string {
	return "List all search indexes on the service, including their field definitions."
}

func (t *ListIndexesTool) Definition() mcp.Tool {
	return mcp.NewToolWithRawSchema(t.Name(), t.Description(), inputSchema(&listIndexesInput{}))
}

func (t *ListIndexesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	call := newCall(t.deps, t.Name())
	body, err := t.deps.Search.ListIndexes(ctx)
	if err != nil {
		return call.failure(err, nil), nil
	}
	return call.success(ctx, body, nil), nil
}
