package tools

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/tidwall/gjson"

	"github.com/user/searchguard/pkg/elicit"
	"github.com/user/searchguard/pkg/verify"
)

type createIndexInput struct {
	Definition map[string]any `json:"definition" jsonschema:"description=Full index definition including name and fields"`
	Verify     bool           `json:"verify,omitempty" jsonschema:"description=Read the index back after creation to confirm it exists,default=true"`
}

var createIndexProperties = map[string]elicit.PropertySpec{
	"definition": {
		Type:        "object",
		Title:       "Index definition",
		Description: "Full index definition including name and fields",
	},
}

// CreateIndexTool creates an index and, by default, verifies it exists
// afterwards with a read-back.
type CreateIndexTool struct {
	deps Deps
}

func NewCreateIndexTool(deps Deps) *CreateIndexTool {
	return &CreateIndexTool{deps: deps}
}

func (t *CreateIndexTool) Name() string {
	return "create_index"
}

func (t *CreateIndexTool) Description() string {
	return "Create a new search index from a full definition and verify it exists."
}

func (t *CreateIndexTool) Definition() mcp.Tool {
	return mcp.NewToolWithRawSchema(t.Name(), t.Description(), inputSchema(&createIndexInput{}))
}

func (t *CreateIndexTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	call := newCall(t.deps, t.Name())
	args, invalid := call.collect(ctx, req.GetArguments(), createIndexProperties, []string{"definition"})
	if invalid != nil {
		return invalid, nil
	}
	definition, ok := rawArg(args, "definition")
	if !ok {
		return call.failure(errors.New("definition must be a JSON object"), nil), nil
	}
	name := gjson.GetBytes(definition, "name").String()
	body, err := t.deps.Search.CreateIndex(ctx, definition)
	if err != nil {
		return call.failure(err, map[string]any{"index": name}), nil
	}
	var verification *verify.Result
	if boolArg(args, "verify", true) {
		res, err := verify.VerifyExists(ctx, func(ctx context.Context) ([]byte, error) {
			return t.deps.Search.GetIndex(ctx, name)
		})
		if err != nil {
			return call.failure(err, map[string]any{"index": name, "phase": "verify"}), nil
		}
		verification = &res
	}
	return call.success(ctx, body, verification), nil
}
