package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/user/searchguard/pkg/elicit"
	"github.com/user/searchguard/pkg/verify"
)

type deleteIndexInput struct {
	Name   string `json:"name" jsonschema:"description=Name of the index to delete"`
	Verify bool   `json:"verify,omitempty" jsonschema:"description=Confirm the index is gone with a read-back,default=true"`
}

var deleteIndexProperties = map[string]elicit.PropertySpec{
	"name": {
		Type:        "string",
		Title:       "Index name",
		Description: "Name of the index to delete",
	},
}

// DeleteIndexTool deletes an index and confirms the deletion with an
// inverted read-back: a 404 on the follow-up GET is the success signal.
type DeleteIndexTool struct {
	deps Deps
}

func NewDeleteIndexTool(deps Deps) *DeleteIndexTool {
	return &DeleteIndexTool{deps: deps}
}

func (t *DeleteIndexTool) Name() string {
	return "delete_index"
}

func (t *DeleteIndexTool) Description() string {
	return "Delete a search index and verify it no longer exists."
}

func (t *DeleteIndexTool) Definition() mcp.Tool {
	return mcp.NewToolWithRawSchema(t.Name(), t.Description(), inputSchema(&deleteIndexInput{}))
}

func (t *DeleteIndexTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	call := newCall(t.deps, t.Name())
	args, invalid := call.collect(ctx, req.GetArguments(), deleteIndexProperties, []string{"name"})
	if invalid != nil {
		return invalid, nil
	}
	name := stringArg(args, "name")
	if err := t.deps.Search.DeleteIndex(ctx, name); err != nil {
		return call.failure(err, map[string]any{"index": name}), nil
	}
	var verification *verify.Result
	if boolArg(args, "verify", true) {
		res := verify.VerifyDeleted(ctx, func(ctx context.Context) ([]byte, error) {
			return t.deps.Search.GetIndex(ctx, name)
		})
		verification = &res
	}
	return call.success(ctx, map[string]any{"deleted": name}, verification), nil
}
