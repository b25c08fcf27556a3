package govern

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

// scriptedSummarizer is a test double with a fixed outcome.
type scriptedSummarizer struct {
	summary string
	err     error
	block   bool // wait for ctx cancellation instead of answering
	calls   int
}

func (s *scriptedSummarizer) Summarize(ctx context.Context, text string, targetChars int) (string, error) {
	s.calls++
	if s.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return s.summary, s.err
}

func oversizedList(n int) json.RawMessage {
	items := make([]string, n)
	for i := range items {
		items[i] = fmt.Sprintf(`{"name":"index-%04d","fields":%q}`, i, strings.Repeat("f", 200))
	}
	return json.RawMessage("[" + strings.Join(items, ",") + "]")
}

func TestGovernSmallPayloadPassesThrough(t *testing.T) {
	g := NewGovernor(Budget{}, nil, nil)
	payload := json.RawMessage(`{"name":"products","fields":["id","title"]}`)

	res := g.Govern(context.Background(), payload)

	if res.Mode != ModeRaw {
		t.Fatalf("expected raw mode, got %q", res.Mode)
	}
	if !bytes.Equal(res.Payload, payload) {
		t.Fatalf("raw payload must be byte-identical to input")
	}
	if res.OriginalSizeBytes != len(payload) {
		t.Fatalf("expected originalSizeBytes %d, got %d", len(payload), res.OriginalSizeBytes)
	}
}

func TestGovernOversizedArrayTruncates(t *testing.T) {
	g := NewGovernor(Budget{MaxRawBytes: 1024, MaxListItems: 10}, nil, nil)
	payload := oversizedList(50)

	res := g.Govern(context.Background(), payload)

	if res.Mode != ModeTruncated {
		t.Fatalf("expected truncated mode, got %q", res.Mode)
	}
	if res.OriginalSizeBytes != len(payload) {
		t.Fatalf("expected originalSizeBytes %d, got %d", len(payload), res.OriginalSizeBytes)
	}

	parsed := gjson.ParseBytes(res.Payload)
	if got := len(parsed.Get("items").Array()); got != 10 {
		t.Fatalf("expected 10 retained items, got %d", got)
	}
	if got := parsed.Get("elidedItems").Int(); got != 40 {
		t.Fatalf("expected 40 elided items, got %d", got)
	}
}

func TestGovernOversizedTextTruncates(t *testing.T) {
	budget := Budget{MaxRawBytes: 512, MaxChars: 1000}
	g := NewGovernor(budget, nil, nil)
	payload := map[string]string{"description": strings.Repeat("x", 5000)}

	res := g.Govern(context.Background(), payload)

	if res.Mode != ModeTruncated {
		t.Fatalf("expected truncated mode, got %q", res.Mode)
	}

	var text string
	if err := json.Unmarshal(res.Payload, &text); err != nil {
		t.Fatalf("truncated payload is not a JSON string: %v", err)
	}
	if len(text) > budget.MaxChars {
		t.Fatalf("truncated text has %d chars, ceiling is %d", len(text), budget.MaxChars)
	}
	if !strings.HasSuffix(text, truncationMarker) {
		t.Fatalf("expected explicit elision marker, got %q", text[len(text)-30:])
	}
}

func TestGovernSummarizerSuccess(t *testing.T) {
	sum := &scriptedSummarizer{summary: "3 indexes, all healthy"}
	g := NewGovernor(Budget{MaxRawBytes: 64}, sum, nil)
	payload := oversizedList(5)

	res := g.Govern(context.Background(), payload)

	if res.Mode != ModeSummarized {
		t.Fatalf("expected summarized mode, got %q", res.Mode)
	}
	if res.OriginalSizeBytes != len(payload) {
		t.Fatalf("expected originalSizeBytes %d, got %d", len(payload), res.OriginalSizeBytes)
	}

	var text string
	if err := json.Unmarshal(res.Payload, &text); err != nil {
		t.Fatalf("summary payload is not a JSON string: %v", err)
	}
	if text != "3 indexes, all healthy" {
		t.Fatalf("unexpected summary %q", text)
	}
}

func TestGovernSummarizerFailureFallsThrough(t *testing.T) {
	sum := &scriptedSummarizer{err: errors.New("model overloaded")}
	g := NewGovernor(Budget{MaxRawBytes: 64, MaxListItems: 2}, sum, nil)

	res := g.Govern(context.Background(), oversizedList(5))

	if res.Mode != ModeTruncated {
		t.Fatalf("summarizer failure must fall through to truncation, got %q", res.Mode)
	}
	if sum.calls != 1 {
		t.Fatalf("expected 1 summarizer call, got %d", sum.calls)
	}
}

func TestGovernSummarizerTimeoutFallsThrough(t *testing.T) {
	sum := &scriptedSummarizer{block: true}
	g := NewGovernor(Budget{MaxRawBytes: 64, SummarizeTimeout: 20 * time.Millisecond}, sum, nil)

	start := time.Now()
	res := g.Govern(context.Background(), oversizedList(5))

	if res.Mode != ModeTruncated {
		t.Fatalf("summarizer timeout must fall through to truncation, got %q", res.Mode)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("governance blocked for %v on a 20ms summarizer budget", elapsed)
	}
}

func TestGovernEmptySummaryFallsThrough(t *testing.T) {
	// Noop returns ("", nil); an empty summary is useless and must not be
	// passed off as a summarized payload.
	g := NewGovernor(Budget{MaxRawBytes: 64, MaxListItems: 3}, Noop{}, nil)

	res := g.Govern(context.Background(), oversizedList(5))

	if res.Mode != ModeTruncated {
		t.Fatalf("expected truncated mode, got %q", res.Mode)
	}
}

func TestGovernNeverFailsOnOddPayloads(t *testing.T) {
	g := NewGovernor(Budget{}, nil, nil)

	for name, payload := range map[string]any{
		"nil":          nil,
		"plain string": "hello",
		"channel":      make(chan int), // unmarshalable
	} {
		t.Run(name, func(t *testing.T) {
			res := g.Govern(context.Background(), payload)
			if !gjson.ValidBytes(res.Payload) {
				t.Fatalf("governed payload is not valid JSON: %s", res.Payload)
			}
		})
	}
}

func TestGovernTinyCharCeilingDoesNotPanic(t *testing.T) {
	// A ceiling smaller than the elision marker leaves no room to cut
	// into; it must be treated as unset, not slice below zero.
	g := NewGovernor(Budget{MaxRawBytes: 16, MaxChars: 10}, nil, nil)
	payload := map[string]string{"description": strings.Repeat("x", 200)}

	res := g.Govern(context.Background(), payload)

	if res.Mode != ModeTruncated {
		t.Fatalf("expected truncated mode, got %q", res.Mode)
	}
	var text string
	if err := json.Unmarshal(res.Payload, &text); err != nil {
		t.Fatalf("truncated payload is not a JSON string: %v", err)
	}
	if len(text) == 0 {
		t.Fatal("expected a non-empty payload")
	}
}

func TestGovernTruncationRespectsRuneBoundaries(t *testing.T) {
	budget := Budget{MaxRawBytes: 64, MaxChars: 100}
	g := NewGovernor(budget, nil, nil)
	payload := map[string]string{"description": strings.Repeat("日本語", 200)}

	res := g.Govern(context.Background(), payload)

	if res.Mode != ModeTruncated {
		t.Fatalf("expected truncated mode, got %q", res.Mode)
	}
	var text string
	if err := json.Unmarshal(res.Payload, &text); err != nil {
		t.Fatalf("truncated payload is not a JSON string: %v", err)
	}
	cut := strings.TrimSuffix(text, truncationMarker)
	if !utf8.ValidString(cut) {
		t.Fatalf("truncation split a rune: %q", cut[len(cut)-6:])
	}
}

func TestGovernSummaryClampRespectsRuneBoundaries(t *testing.T) {
	sum := &scriptedSummarizer{summary: strings.Repeat("é", 40)}
	g := NewGovernor(Budget{MaxRawBytes: 32, MaxChars: 25}, sum, nil)

	res := g.Govern(context.Background(), oversizedList(5))

	if res.Mode != ModeSummarized {
		t.Fatalf("expected summarized mode, got %q", res.Mode)
	}
	var text string
	if err := json.Unmarshal(res.Payload, &text); err != nil {
		t.Fatalf("summary payload is not a JSON string: %v", err)
	}
	if !utf8.ValidString(text) {
		t.Fatalf("clamp split a rune: %q", text)
	}
	if len(text) > 25 {
		t.Fatalf("clamped summary has %d bytes, ceiling is 25", len(text))
	}
}
