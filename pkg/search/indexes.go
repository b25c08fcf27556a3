package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"
)

// ListIndexes returns all index definitions.
func (c *Client) ListIndexes(ctx context.Context) (json.RawMessage, error) {
	body, err := c.do(ctx, http.MethodGet, "/indexes", nil)
	if err != nil {
		return nil, err
	}
	// The collection is wrapped in {"value":[...]}; callers want the list.
	if value := gjson.GetBytes(body, "value"); value.Exists() {
		return json.RawMessage(value.Raw), nil
	}
	return body, nil
}

// GetIndex returns one index definition.
func (c *Client) GetIndex(ctx context.Context, name string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, "/indexes/"+url.PathEscape(name), nil)
}

// CreateIndex creates an index from its raw definition.
func (c *Client) CreateIndex(ctx context.Context, definition json.RawMessage) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, "/indexes", definition)
}

// UpdateIndex creates or updates the named index in place.
func (c *Client) UpdateIndex(ctx context.Context, name string, definition json.RawMessage) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPut, "/indexes/"+url.PathEscape(name), definition)
}

// DeleteIndex removes the named index.
func (c *Client) DeleteIndex(ctx context.Context, name string) error {
	_, err := c.do(ctx, http.MethodDelete, "/indexes/"+url.PathEscape(name), nil)
	return err
}

// SearchDocuments runs a query against the named index. query is the raw
// request body; its schema belongs to the remote service, not this layer.
func (c *Client) SearchDocuments(ctx context.Context, index string, query json.RawMessage) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/indexes/%s/docs/search", url.PathEscape(index)), query)
}

// CountDocuments returns the document count body for the named index.
func (c *Client) CountDocuments(ctx context.Context, index string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, fmt.Sprintf("/indexes/%s/docs/$count", url.PathEscape(index)), nil)
}
