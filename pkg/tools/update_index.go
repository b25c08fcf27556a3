package tools

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/user/searchguard/pkg/elicit"
	"github.com/user/searchguard/pkg/verify"
)

type updateIndexInput struct {
	Name       string         `json:"name" jsonschema:"description=Name of the index to update"`
	Definition map[string]any `json:"definition" jsonschema:"description=Replacement index definition"`
	Verify     bool           `json:"verify,omitempty" jsonschema:"description=Read the index back after the update,default=true"`
}

var updateIndexProperties = map[string]elicit.PropertySpec{
	"name": {
		Type:        "string",
		Title:       "Index name",
		Description: "Name of the index to update",
	},
	"definition": {
		Type:        "object",
		Title:       "Index definition",
		Description: "Replacement index definition",
	},
}

// UpdateIndexTool replaces an index definition in place. Schema changes the
// service cannot apply online come back as DOWNTIME_REQUIRED insights.
type UpdateIndexTool struct {
	deps Deps
}

func NewUpdateIndexTool(deps Deps) *UpdateIndexTool {
	return &UpdateIndexTool{deps: deps}
}

func (t *UpdateIndexTool) Name() string {
	return "update_index"
}

func (t *UpdateIndexTool) Description() string {
	return "Replace an existing search index definition and verify the result."
}

func (t *UpdateIndexTool) Definition() mcp.Tool {
	return mcp.NewToolWithRawSchema(t.Name(), t.Description(), inputSchema(&updateIndexInput{}))
}

func (t *UpdateIndexTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	call := newCall(t.deps, t.Name())
	args, invalid := call.collect(ctx, req.GetArguments(), updateIndexProperties, []string{"name", "definition"})
	if invalid != nil {
		return invalid, nil
	}
	name := stringArg(args, "name")
	definition, ok := rawArg(args, "definition")
	if !ok {
		return call.failure(errors.New("definition must be a JSON object"), map[string]any{"index": name}), nil
	}
	body, err := t.deps.Search.UpdateIndex(ctx, name, definition)
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
