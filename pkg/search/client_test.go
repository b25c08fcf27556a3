package search

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/user/searchguard/pkg/testutil"
)

func TestClientListAndGet(t *testing.T) {
	cp := testutil.NewControlPlane()
	defer cp.Close()
	cp.AddIndex("products", json.RawMessage(`{"name":"products","fields":[]}`))

	c := NewClient(cp.URL, "test-key", nil)

	list, err := c.ListIndexes(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	var items []map[string]any
	if err := json.Unmarshal(list, &items); err != nil {
		t.Fatalf("list is not an unwrapped array: %v", err)
	}
	if len(items) != 1 || items[0]["name"] != "products" {
		t.Fatalf("unexpected list: %v", items)
	}

	got, err := c.GetIndex(context.Background(), "products")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	var def map[string]any
	if err := json.Unmarshal(got, &def); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if def["name"] != "products" {
		t.Fatalf("unexpected definition: %v", def)
	}
}

func TestClientCreateDelete(t *testing.T) {
	cp := testutil.NewControlPlane()
	defer cp.Close()

	c := NewClient(cp.URL, "test-key", nil)

	if _, err := c.CreateIndex(context.Background(), json.RawMessage(`{"name":"docs"}`)); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if !cp.HasIndex("docs") {
		t.Fatal("index was not created on the control plane")
	}

	if err := c.DeleteIndex(context.Background(), "docs"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if cp.HasIndex("docs") {
		t.Fatal("index still present after delete")
	}
}

func TestClientAPIError(t *testing.T) {
	cp := testutil.NewControlPlane()
	defer cp.Close()

	c := NewClient(cp.URL, "test-key", nil)

	_, err := c.GetIndex(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected error for missing index")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.StatusCode() != 404 {
		t.Fatalf("expected status 404, got %d", apiErr.StatusCode())
	}
	if apiErr.Message == "" {
		t.Fatal("upstream message was not extracted")
	}
}

func TestClientRetryAfterHeader(t *testing.T) {
	cp := testutil.NewControlPlane()
	defer cp.Close()
	cp.FailNext(1, 429, "too many requests", "2000ms")

	c := NewClient(cp.URL, "test-key", nil)

	_, err := c.ListIndexes(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.RetryAfterHeader() != "2000ms" {
		t.Fatalf("expected Retry-After 2000ms, got %q", apiErr.RetryAfterHeader())
	}
}

func TestClientConflictOnDuplicateCreate(t *testing.T) {
	cp := testutil.NewControlPlane()
	defer cp.Close()
	cp.AddIndex("products", json.RawMessage(`{"name":"products"}`))

	c := NewClient(cp.URL, "test-key", nil)

	_, err := c.CreateIndex(context.Background(), json.RawMessage(`{"name":"products"}`))
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != 409 {
		t.Fatalf("expected 409 conflict, got %v", err)
	}
}
