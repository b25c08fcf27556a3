package tools

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/user/searchguard/pkg/elicit"
)

type searchDocumentsInput struct {
	Index string         `json:"index" jsonschema:"description=Name of the index to query"`
	Query map[string]any `json:"query,omitempty" jsonschema:"description=Search request body; defaults to match-all"`
}

var searchDocumentsProperties = map[string]elicit.PropertySpec{
	"index": {
		Type:        "string",
		Title:       "Index name",
		Description: "Name of the index to query",
	},
}

// SearchDocumentsTool runs a query against an index. Result sets routinely
// exceed the response budget, so governance matters most here.
type SearchDocumentsTool struct {
	deps Deps
}

func NewSearchDocumentsTool(deps Deps) *SearchDocumentsTool {
	return &SearchDocumentsTool{deps: deps}
}

func (t *SearchDocumentsTool) Name() string {
	return "search_documents"
}

func (t *SearchDocumentsTool) Description() string {
	return "Query documents in a search index. Omitting the query body returns a match-all sample."
}

func (t *SearchDocumentsTool) Definition() mcp.Tool {
	return mcp.NewToolWithRawSchema(t.Name(), t.Description(), inputSchema(&searchDocumentsInput{}))
}

func (t *SearchDocumentsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	call := newCall(t.deps, t.Name())
	args, invalid := call.collect(ctx, req.GetArguments(), searchDocumentsProperties, []string{"index"})
	if invalid != nil {
		return invalid, nil
	}
	index := stringArg(args, "index")
	query := json.RawMessage(`{"search":"*"}`)
	if _, present := args["query"]; present {
		raw, ok := rawArg(args, "query")
		if !ok {
			return call.failure(errors.New("query must be a JSON object"), map[string]any{"index": index}), nil
		}
		query = raw
	}
	body, err := t.deps.Search.SearchDocuments(ctx, index, query)
	if err != nil {
		return call.failure(err, map[string]any{"index": index}), nil
	}
	return call.success(ctx, body, nil), nil
}
