package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/user/searchguard/pkg/elicit"
)

type countDocumentsInput struct {
	Index string `json:"index" jsonschema:"description=Name of the index to count"`
}

var countDocumentsProperties = map[string]elicit.PropertySpec{
	"index": {
		Type:        "string",
		Title:       "Index name",
		Description: "Name of the index to count",
	},
}

// CountDocumentsTool reports the document count of an index.
type CountDocumentsTool struct {
	deps Deps
}

func NewCountDocumentsTool(deps Deps) *CountDocumentsTool {
	return &CountDocumentsTool{deps: deps}
}

func (t *CountDocumentsTool) Name() string {
	return "count_documents"
}

func (t *CountDocumentsTool) Description() string {
	return "Return the number of documents currently in a search index."
}

func (t *CountDocumentsTool) Definition() mcp.Tool {
	return mcp.NewToolWithRawSchema(t.Name(), t.Description(), inputSchema(&countDocumentsInput{}))
}

func (t *CountDocumentsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	call := newCall(t.deps, t.Name())
	args, invalid := call.collect(ctx, req.GetArguments(), countDocumentsProperties, []string{"index"})
	if invalid != nil {
		return invalid, nil
	}
	index := stringArg(args, "index")
	body, err := t.deps.Search.CountDocuments(ctx, index)
	if err != nil {
		return call.failure(err, map[string]any{"index": index}), nil
	}
	return call.success(ctx, body, nil), nil
}
