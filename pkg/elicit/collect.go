package elicit

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/user/searchguard/pkg/log"
)

// Collect computes the required fields missing from partial and, if any,
// prompts the client for them. Explicit caller values always win over
// elicited ones. The second return is false when the client declined,
// answered unusably, or did not answer before the deadline; callers must
// then fall back to ordinary parameter-validation errors rather than
// proceeding with missing data.
//
// When nothing is missing, partial is returned unchanged and no prompt is
// issued: elicitation is strictly for gaps.
func (c *Coordinator) Collect(ctx context.Context, partial map[string]any, properties map[string]PropertySpec, required []string) (map[string]any, bool) {
	missing := missingFields(partial, required)
	if len(missing) == 0 {
		return partial, true
	}

	req := Request{
		Message: fmt.Sprintf("Missing required parameters: %s. Please provide them.", strings.Join(missing, ", ")),
		RequestedSchema: Schema{
			Type:       "object",
			Properties: pickProperties(properties, missing),
			Required:   missing,
		},
	}

	promptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	type outcome struct {
		resp Response
		err  error
	}
	ch := make(chan outcome, 1)
	go func() {
		resp, err := c.surface.Elicit(promptCtx, req)
		ch <- outcome{resp: resp, err: err}
	}()

	var resp Response
	select {
	case <-promptCtx.Done():
		c.log.Info("elicit", "prompt unanswered before deadline", log.F("missing", strings.Join(missing, ",")))
		return nil, false
	case o := <-ch:
		if o.err != nil {
			c.log.Warn("elicit", "prompt surface failed", log.F("error", o.err))
			return nil, false
		}
		resp = o.resp
	}

	if resp.Action != ActionAccept {
		c.log.Info("elicit", "client did not accept", log.F("action", string(resp.Action)))
		return nil, false
	}

	// An accept that omits required keys is treated as a decline.
	for _, field := range missing {
		if _, ok := resp.Content[field]; !ok {
			c.log.Warn("elicit", "accept missing required field, treating as decline", log.F("field", field))
			return nil, false
		}
	}

	if !c.contentValid(resp.Content, req.RequestedSchema) {
		return nil, false
	}

	merged := make(map[string]any, len(partial)+len(resp.Content))
	for k, v := range resp.Content {
		merged[k] = v
	}
	for k, v := range partial {
		// Explicit values take precedence over elicited ones.
		merged[k] = v
	}
	return merged, true
}

// contentValid checks the elicited values against the requested schema.
// A schema that fails to compile skips validation rather than failing the
// collection; invalid content is treated as a decline.
func (c *Coordinator) contentValid(content map[string]any, schema Schema) bool {
	raw, err := json.Marshal(schema)
	if err != nil {
		return true
	}
	compiled, err := jsonschema.CompileString("elicit.json", string(raw))
	if err != nil {
		c.log.Warn("elicit", "requested schema does not compile, skipping validation", log.F("error", err))
		return true
	}
	if err := compiled.Validate(anyMap(content)); err != nil {
		c.log.Warn("elicit", "elicited content fails schema validation, treating as decline", log.F("error", err))
		return false
	}
	return true
}

// anyMap re-types content for the validator, which wants plain interface
// values as produced by encoding/json.
func anyMap(content map[string]any) map[string]any {
	out := make(map[string]any, len(content))
	for k, v := range content {
		out[k] = v
	}
	return out
}

// missingFields returns required fields absent from partial, in stable order.
func missingFields(partial map[string]any, required []string) []string {
	var missing []string
	for _, field := range required {
		if _, ok := partial[field]; !ok {
			missing = append(missing, field)
		}
	}
	sort.Strings(missing)
	return missing
}

// pickProperties narrows a property map to the requested fields. Fields
// without a spec get a permissive string placeholder so the request is
// always well-formed.
func pickProperties(properties map[string]PropertySpec, fields []string) map[string]PropertySpec {
	out := make(map[string]PropertySpec, len(fields))
	for _, field := range fields {
		if spec, ok := properties[field]; ok {
			out[field] = spec
			continue
		}
		out[field] = PropertySpec{Type: "string"}
	}
	return out
}
