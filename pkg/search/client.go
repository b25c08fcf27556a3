// Package search is a thin client for the search service control-plane
// REST API. It performs raw HTTP calls and shapes failures into typed
// errors; every reliability concern (classification, verification,
// governance, elicitation) lives in the layers above it.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/user/searchguard/pkg/log"
)

// DefaultAPIVersion is the control-plane API version requested by default.
const DefaultAPIVersion = "2024-07-01"

// APIError is a non-2xx response from the control plane. It exposes the
// upstream status and retry header so the classification layer can work
// without knowing URL shapes.
type APIError struct {
	// Status is the upstream HTTP status code.
	Status int
	// Message is the upstream error message, when one was supplied.
	Message string
	// RetryAfter is the raw Retry-After header value, possibly empty.
	// Providers denominate it in seconds or milliseconds.
	RetryAfter string
}

// Error returns the error message.
func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("search api: http %d", e.Status)
	}
	return fmt.Sprintf("search api: http %d: %s", e.Status, e.Message)
}

// StatusCode returns the upstream HTTP status.
func (e *APIError) StatusCode() int { return e.Status }

// RetryAfterHeader returns the raw Retry-After header value.
func (e *APIError) RetryAfterHeader() string { return e.RetryAfter }

// Client calls the search control plane.
type Client struct {
	endpoint   string
	apiKey     string
	apiVersion string
	http       *http.Client
	log        log.Logger
}

// NewClient creates a Client for the service at endpoint. logger may be nil.
func NewClient(endpoint, apiKey string, logger log.Logger) *Client {
	if logger == nil {
		logger = log.NopLogger{}
	}
	return &Client{
		endpoint:   strings.TrimRight(endpoint, "/"),
		apiKey:     apiKey,
		apiVersion: DefaultAPIVersion,
		http:       &http.Client{Timeout: 30 * time.Second},
		log:        logger,
	}
}

// do performs one control-plane request and returns the raw response body.
// Non-2xx responses become *APIError.
func (c *Client) do(ctx context.Context, method, path string, body json.RawMessage) (json.RawMessage, error) {
	u := fmt.Sprintf("%s%s?api-version=%s", c.endpoint, path, url.QueryEscape(c.apiVersion))

	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.apiKey)

	c.log.Debug("search", "control-plane request", log.F("method", method), log.F("path", path))

	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(res.Body); err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if res.StatusCode/100 != 2 {
		return nil, &APIError{
			Status:     res.StatusCode,
			Message:    extractErrorMessage(buf.Bytes()),
			RetryAfter: res.Header.Get("Retry-After"),
		}
	}

	return json.RawMessage(buf.Bytes()), nil
}

// extractErrorMessage pulls the message out of an upstream error body.
// The control plane wraps errors as {"error":{"code":...,"message":...}}.
func extractErrorMessage(body []byte) string {
	if msg := gjson.GetBytes(body, "error.message"); msg.Exists() {
		return msg.String()
	}
	return strings.TrimSpace(string(body))
}
