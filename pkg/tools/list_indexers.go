package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

type listIndexersInput struct {
}

// ListIndexersTool lists every indexer on the search service.
type ListIndexersTool struct {
	deps Deps
}

func NewListIndexersTool(deps Deps) *ListIndexersTool {
	return &ListIndexersTool{deps: deps}
}

func (t *ListIndexersTool) Name() string {
	return "list_indexers"
}

func (t *ListIndexersTool) Description() string {
	return "List all indexers on the service with their schedules and targets."
}

func (t *ListIndexersTool) Definition() mcp.Tool {
	return mcp.NewToolWithRawSchema(t.Name(), t.Description(), inputSchema(&listIndexersInput{}))
}

func (t *ListIndexersTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	call := newCall(t.deps, t.Name())
	body, err := t.deps.Search.ListIndexers(ctx)
	if err != nil {
		return call.failure(err, nil), nil
	}
	return call.success(ctx, body, nil), nil
}
