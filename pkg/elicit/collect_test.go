package elicit

import (
	"context"
	"errors"
	"testing"
	"time"
)

// scriptedSurface is a test double with a fixed response.
type scriptedSurface struct {
	resp  Response
	err   error
	block bool // never answer; wait for ctx
	calls int
	last  Request
}

func (s *scriptedSurface) Elicit(ctx context.Context, req Request) (Response, error) {
	s.calls++
	s.last = req
	if s.block {
		<-ctx.Done()
		return Response{}, ctx.Err()
	}
	return s.resp, s.err
}

var indexProperties = map[string]PropertySpec{
	"name":  {Type: "string", Description: "Index name"},
	"top":   {Type: "integer", Description: "Max results"},
	"order": {Type: "string", Enum: []any{"asc", "desc"}},
}

func TestCollectNothingMissing(t *testing.T) {
	surface := &scriptedSurface{}
	c := NewCoordinator(surface, time.Second, nil)
	partial := map[string]any{"name": "products"}

	merged, ok := c.Collect(context.Background(), partial, indexProperties, []string{"name"})

	if !ok {
		t.Fatal("expected ok when nothing is missing")
	}
	if len(merged) != 1 || merged["name"] != "products" {
		t.Fatalf("expected partial args unchanged, got %v", merged)
	}
	if surface.calls != 0 {
		t.Fatalf("no prompt may be issued when nothing is missing, got %d calls", surface.calls)
	}
}

func TestCollectAcceptMerges(t *testing.T) {
	surface := &scriptedSurface{resp: Response{
		Action:  ActionAccept,
		Content: map[string]any{"name": "products"},
	}}
	c := NewCoordinator(surface, time.Second, nil)
	partial := map[string]any{"top": float64(5)}

	merged, ok := c.Collect(context.Background(), partial, indexProperties, []string{"name"})

	if !ok {
		t.Fatal("expected ok on accept")
	}
	if merged["name"] != "products" || merged["top"] != float64(5) {
		t.Fatalf("unexpected merge result: %v", merged)
	}
	if surface.last.RequestedSchema.Properties["name"].Type != "string" {
		t.Fatalf("request did not carry the property spec: %+v", surface.last)
	}
}

func TestCollectExplicitValuesWin(t *testing.T) {
	// A surface that answers for a field the caller already set must not
	// overwrite the caller's value.
	surface := &scriptedSurface{resp: Response{
		Action:  ActionAccept,
		Content: map[string]any{"name": "products", "order": "desc"},
	}}
	c := NewCoordinator(surface, time.Second, nil)
	partial := map[string]any{"order": "asc"}

	merged, ok := c.Collect(context.Background(), partial, indexProperties, []string{"name", "order"})

	if !ok {
		t.Fatal("expected ok on accept")
	}
	if merged["order"] != "asc" {
		t.Fatalf("elicited value overwrote explicit value: %v", merged)
	}
}

func TestCollectDeclineAndCancel(t *testing.T) {
	for _, action := range []Action{ActionDecline, ActionCancel} {
		t.Run(string(action), func(t *testing.T) {
			surface := &scriptedSurface{resp: Response{Action: action}}
			c := NewCoordinator(surface, time.Second, nil)

			merged, ok := c.Collect(context.Background(), map[string]any{}, indexProperties, []string{"name"})
			if ok || merged != nil {
				t.Fatalf("expected (nil, false) on %s, got (%v, %v)", action, merged, ok)
			}
		})
	}
}

func TestCollectAcceptMissingRequiredIsDecline(t *testing.T) {
	surface := &scriptedSurface{resp: Response{
		Action:  ActionAccept,
		Content: map[string]any{"order": "asc"},
	}}
	c := NewCoordinator(surface, time.Second, nil)

	_, ok := c.Collect(context.Background(), map[string]any{}, indexProperties, []string{"name", "order"})
	if ok {
		t.Fatal("accept with missing required keys must be treated as decline")
	}
}

func TestCollectSchemaViolationIsDecline(t *testing.T) {
	surface := &scriptedSurface{resp: Response{
		Action:  ActionAccept,
		Content: map[string]any{"order": "sideways"},
	}}
	c := NewCoordinator(surface, time.Second, nil)

	_, ok := c.Collect(context.Background(), map[string]any{}, indexProperties, []string{"order"})
	if ok {
		t.Fatal("content violating the requested schema must be treated as decline")
	}
}

func TestCollectTimeoutResolvesInBoundedTime(t *testing.T) {
	surface := &scriptedSurface{block: true}
	timeout := 50 * time.Millisecond
	c := NewCoordinator(surface, timeout, nil)

	start := time.Now()
	merged, ok := c.Collect(context.Background(), map[string]any{}, indexProperties, []string{"name"})
	elapsed := time.Since(start)

	if ok || merged != nil {
		t.Fatalf("expected (nil, false) on timeout, got (%v, %v)", merged, ok)
	}
	if elapsed > timeout+200*time.Millisecond {
		t.Fatalf("collect resolved in %v, deadline was %v", elapsed, timeout)
	}
}

func TestCollectSurfaceErrorIsDecline(t *testing.T) {
	surface := &scriptedSurface{err: errors.New("transport closed")}
	c := NewCoordinator(surface, time.Second, nil)

	_, ok := c.Collect(context.Background(), map[string]any{}, indexProperties, []string{"name"})
	if ok {
		t.Fatal("surface error must resolve to decline")
	}
}

func TestNoopSurfaceDeclines(t *testing.T) {
	c := NewCoordinator(nil, time.Second, nil)

	start := time.Now()
	_, ok := c.Collect(context.Background(), map[string]any{}, indexProperties, []string{"name"})

	if ok {
		t.Fatal("noop surface must decline")
	}
	if time.Since(start) > 100*time.Millisecond {
		t.Fatal("noop surface must decline immediately, not wait for the deadline")
	}
}
