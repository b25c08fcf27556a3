package tools

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// inputSchema reflects a tool input struct into a JSON schema for the tool
// definition. Additional properties are rejected so malformed calls fail at
// the transport layer instead of reaching the remote API.
func inputSchema(v any) json.RawMessage {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	schema := reflector.Reflect(v)
	data, err := json.Marshal(schema)
	if err != nil {
		return json.RawMessage(`{"type":"object"}`)
	}
	return data
}
