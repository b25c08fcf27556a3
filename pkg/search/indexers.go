package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"
)

// ListIndexers returns all indexer definitions.
func (c *Client) ListIndexers(ctx context.Context) (json.RawMessage, error) {
	body, err := c.do(ctx, http.MethodGet, "/indexers", nil)
	if err != nil {
		return nil, err
	}
	if value := gjson.GetBytes(body, "value"); value.Exists() {
		return json.RawMessage(value.Raw), nil
	}
	return body, nil
}

// GetIndexer returns one indexer definition.
func (c *Client) GetIndexer(ctx context.Context, name string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, "/indexers/"+url.PathEscape(name), nil)
}

// RunIndexer triggers an on-demand indexer run.
func (c *Client) RunIndexer(ctx context.Context, name string) error {
	_, err := c.do(ctx, http.MethodPost, "/indexers/"+url.PathEscape(name)+"/run", nil)
	return err
}

// ResetIndexer resets the change-tracking state of an indexer.
func (c *Client) ResetIndexer(ctx context.Context, name string) error {
	_, err := c.do(ctx, http.MethodPost, "/indexers/"+url.PathEscape(name)+"/reset", nil)
	return err
}

// GetIndexerStatus returns the execution status of an indexer, including
// the status of its most recent run under lastResult.
func (c *Client) GetIndexerStatus(ctx context.Context, name string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, "/indexers/"+url.PathEscape(name)+"/status", nil)
}
